/* uhubctl - per-port USB hub power control
 *
 * Logging
 */

package main

import (
	"bytes"
	"fmt"
	"os"
	"sync"
)

// LogLevel enumerates possible log levels
type LogLevel int

const (
	LogError LogLevel = 1 << iota
	LogInfo
	LogDebug

	LogAll = LogError | LogInfo | LogDebug
)

// loggerMode enumerates possible Logger modes
type loggerMode int

const (
	loggerNoMode  loggerMode = iota // Mode not yet set; log is buffered
	loggerConsole                   // Log goes to console
)

// Logger implements logging facilities. Unlike the daemon this is
// descended from, there is no per-device log file and no rotation:
// every run is one-shot and everything goes to the console.
type Logger struct {
	LogMessage            // "Root" log message
	mode       loggerMode // Logger mode
	levels     LogLevel   // Mask of levels actually written
	lock       sync.Mutex // Write lock
	out        *os.File   // Output stream
	outhook    func(*os.File, LogLevel, []byte)
}

// Standard loggers
var (
	// Log is the default logger, used for diagnostics
	Log = NewLogger().ToConsole()

	// Console always writes to the console, regardless of Log's mode
	Console = NewLogger().ToConsole()
)

// NewLogger creates a new logger. Its mode is not yet set, so writes
// are buffered until a destination (ToConsole/ToColorConsole) is chosen.
func NewLogger() *Logger {
	l := &Logger{
		mode:   loggerNoMode,
		levels: LogAll,
		outhook: func(f *os.File, _ LogLevel, line []byte) {
			f.Write(line)
		},
	}

	l.LogMessage.logger = l

	return l
}

// ToConsole redirects the logger to stdout
func (l *Logger) ToConsole() *Logger {
	l.mode = loggerConsole
	l.out = os.Stdout
	return l
}

// ToColorConsole redirects the logger to stdout, using ANSI colors
// when stdout is a terminal
func (l *Logger) ToColorConsole() *Logger {
	l.mode = loggerConsole
	l.out = os.Stdout
	if logIsAtty(os.Stdout) {
		l.outhook = logColorConsoleWrite
	}
	return l
}

// ToStderr redirects the logger to the diagnostic stream
func (l *Logger) ToStderr() *Logger {
	l.mode = loggerConsole
	l.out = os.Stderr
	if logIsAtty(os.Stderr) {
		l.outhook = logColorConsoleWrite
	}
	return l
}

// SetLevels sets the mask of levels this logger actually writes
func (l *Logger) SetLevels(mask LogLevel) *Logger {
	l.levels = mask
	return l
}

// LogMessage represents a single (possibly multi-line) log message,
// which appears in the output atomically and is never interrupted in
// the middle by other log activity.
type LogMessage struct {
	logger *Logger       // Underlying logger
	parent *LogMessage   // Parent message, if this is a nested Begin()
	lines  []*logLineBuf // One buffer per line
}

// logMessagePool manages a pool of reusable LogMessages
var logMessagePool = sync.Pool{New: func() interface{} { return &LogMessage{} }}

// Begin returns a child (nested) LogMessage. Writes to the child are
// appended to the parent message when the child is committed.
func (msg *LogMessage) Begin() *LogMessage {
	msg2 := logMessagePool.Get().(*LogMessage)
	msg2.logger = msg.logger
	msg2.parent = msg
	return msg2
}

// Add appends a line to the message, with level and one-byte prefix
func (msg *LogMessage) Add(level LogLevel, prefix byte, format string, args ...interface{}) *LogMessage {
	buf := logLineBufAlloc(level, prefix)
	fmt.Fprintf(buf, format, args...)
	msg.lines = append(msg.lines, buf)

	if msg.parent == nil {
		msg.Flush()
	}

	return msg
}

// Nl adds an empty line to the message
func (msg *LogMessage) Nl(level LogLevel) *LogMessage {
	return msg.Add(level, ' ', "")
}

// Debug appends a LogDebug line
func (msg *LogMessage) Debug(prefix byte, format string, args ...interface{}) *LogMessage {
	return msg.Add(LogDebug, prefix, format, args...)
}

// Info appends a LogInfo line
func (msg *LogMessage) Info(prefix byte, format string, args ...interface{}) *LogMessage {
	return msg.Add(LogInfo, prefix, format, args...)
}

// Error appends a LogError line
func (msg *LogMessage) Error(prefix byte, format string, args ...interface{}) *LogMessage {
	return msg.Add(LogError, prefix, format, args...)
}

// Exit appends a LogError line, flushes the message and all its
// parents, and terminates the program with exit code 1
func (msg *LogMessage) Exit(prefix byte, format string, args ...interface{}) {
	if msg.logger.mode == loggerNoMode {
		msg.logger.ToConsole()
	}

	msg.Error(prefix, format, args...)
	for msg.parent != nil {
		msg.Flush()
		msg = msg.parent
	}
	os.Exit(1)
}

// Check calls msg.Exit(), if err is not nil
func (msg *LogMessage) Check(err error) {
	if err != nil {
		msg.Exit(0, "%s", err)
	}
}

// Commit flushes the message to the log and releases it
func (msg *LogMessage) Commit() {
	msg.Flush()
	msg.free()
}

// Flush writes accumulated content to the log. This differs from
// Commit() only in that the message pointer remains valid afterward;
// logical atomicity is not preserved across a Flush.
func (msg *LogMessage) Flush() {
	if len(msg.lines) == 0 {
		return
	}

	msg.logger.lock.Lock()
	defer msg.logger.lock.Unlock()

	if msg.parent != nil {
		msg.parent.lines = append(msg.parent.lines, msg.lines...)
		msg.lines = msg.lines[:0]

		if msg.parent.parent == nil {
			msg = msg.parent
		} else {
			return
		}
	}

	if msg.logger.out == nil {
		return
	}

	for _, l := range msg.lines {
		if l.level&msg.logger.levels == 0 {
			l.free()
			continue
		}

		l.trim()

		var buf bytes.Buffer
		if !l.empty() {
			buf.Write(l.Bytes())
		}
		buf.WriteByte('\n')

		msg.logger.outhook(msg.logger.out, l.level, buf.Bytes())
		l.free()
	}

	msg.lines = msg.lines[:0]
}

// free returns the LogMessage to the pool
func (msg *LogMessage) free() {
	for _, l := range msg.lines {
		l.free()
	}

	if len(msg.lines) < 16 {
		msg.lines = msg.lines[:0]
	} else {
		msg.lines = nil
	}

	msg.logger = nil
	logMessagePool.Put(msg)
}

// logLineBuf represents a single log line buffer
type logLineBuf struct {
	bytes.Buffer
	level LogLevel
}

var logLineBufPool = sync.Pool{New: func() interface{} {
	return &logLineBuf{}
}}

func logLineBufAlloc(level LogLevel, prefix byte) *logLineBuf {
	buf := logLineBufPool.Get().(*logLineBuf)
	buf.level = level
	if prefix != 0 {
		buf.Write([]byte{prefix, ' '})
	}
	return buf
}

func (buf *logLineBuf) free() {
	if buf.Cap() <= 256 {
		buf.Reset()
		logLineBufPool.Put(buf)
	}
}

// trim removes trailing whitespace
func (buf *logLineBuf) trim() {
	b := buf.Bytes()
	var i int

loop:
	for i = len(b); i > 0; i-- {
		switch b[i-1] {
		case '\t', '\n', '\v', '\f', '\r', ' ':
		default:
			break loop
		}
	}
	buf.Truncate(i)
}

func (buf *logLineBuf) empty() bool {
	return buf.Len() == 0
}
