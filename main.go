/* uhubctl - per-port USB hub power control
 *
 * The main function
 */

package main

import (
	"fmt"
	"os"
	"strconv"
)

// defaultQuirksFile returns opts.QuirksFile, or PathQuirksFile if the
// latter exists and no --quirks-file was given explicitly.
func defaultQuirksFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(PathQuirksFile); err == nil {
		return PathQuirksFile
	}
	return ""
}

const usageText = `Usage: %s [options]

Options:
    -l, --location <loc>    limit to hub at this location
    -L, --level <n>         limit to hubs at this depth (root = 1)
    -n, --vendor <vid:pid>  limit to hubs whose ID starts with this prefix
    -s, --search <substr>   limit to hub with attached device matching substr
    -H, --searchhub <substr> limit to hub whose own description matches substr
    -p, --ports <spec>      ports to act on: all, or e.g. 1,3-5
    -a, --action <action>   off|on|cycle|toggle|flash (default: status only)
    -d, --delay <seconds>   delay between off and on for cycle/flash (default 2.0)
    -r, --repeat <n>        repeat off action n times (default 1)
    -w, --wait <ms>         wait between repeated off attempts (default 20)
    -e, --exact             do not pair USB2/USB3 companion hubs
    -f, --force             act on hubs without per-port power switching
    -N, --nodesc            do not read device description strings
    -S, --nosysfs           do not use the Linux sysfs power control path
    -y, --sysdev <path>     not supported in this build; always rejected
    -R, --reset             reset hub after turning power on
    -j, --json              emit JSON instead of text
    --quirks-file <path>    additional platform rule table (INI format)
    -v, --version           print version and exit
    -h, --help              print this help and exit
`

const version = "2.0.0"

func usage() {
	fmt.Printf(usageText, os.Args[0])
}

func usageError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUsage, fmt.Sprintf(format, args...))
}

// parseArgv parses program arguments into Options and the requested action.
func parseArgv(argv []string) (Options, Action, error) {
	opts := Options{
		Ports:  "all",
		Action: "",
		Delay:  DefaultCycleDelay,
		Repeat: 1,
		Wait:   20,
	}

	next := func(i *int, flagName string) (string, error) {
		*i++
		if *i >= len(argv) {
			return "", usageError("%s requires an argument", flagName)
		}
		return argv[*i], nil
	}

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		switch arg {
		case "-h", "--help":
			usage()
			os.Exit(0)
		case "-v", "--version":
			fmt.Println(version)
			os.Exit(0)
		case "-l", "--location":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			opts.Location = v
		case "-L", "--level":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, ActionKeep, usageError("invalid level %q", v)
			}
			opts.Level = n
		case "-n", "--vendor":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			opts.Vendor = v
		case "-s", "--search":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			opts.Search = v
		case "-H", "--searchhub":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			opts.SearchHub = v
		case "-p", "--ports":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			opts.Ports = v
		case "-a", "--action":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			opts.Action = v
		case "-d", "--delay":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, ActionKeep, usageError("invalid delay %q", v)
			}
			opts.Delay = f
		case "-r", "--repeat":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, ActionKeep, usageError("invalid repeat %q", v)
			}
			opts.Repeat = n
		case "-w", "--wait":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, ActionKeep, usageError("invalid wait %q", v)
			}
			opts.Wait = n
		case "-e", "--exact":
			opts.Exact = true
		case "-f", "--force":
			opts.Force = true
		case "-N", "--nodesc":
			opts.NoDesc = true
		case "-S", "--nosysfs":
			opts.NoSysfs = true
		case "-y", "--sysdev":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			opts.SysDev = v
		case "-R", "--reset":
			opts.Reset = true
		case "-j", "--json":
			opts.JSON = true
		case "--quirks-file":
			v, err := next(&i, arg)
			if err != nil {
				return opts, ActionKeep, err
			}
			opts.QuirksFile = v
		default:
			return opts, ActionKeep, usageError("unrecognized argument %q", arg)
		}
	}

	action, err := parseAction(opts.Action)
	if err != nil {
		return opts, ActionKeep, err
	}

	return opts, action, nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	opts, action, err := parseArgv(argv)
	if err != nil {
		Log.Error('!', "%s", err)
		return 1
	}

	opts.QuirksFile = defaultQuirksFile(opts.QuirksFile)

	if opts.SysDev != "" {
		// gousb's public API has no equivalent of libusb_wrap_sys_device,
		// so an already-open sysfs device handle can't be adopted here.
		Log.Error('!', "%s: -y/--sysdev", ErrUnsupportedOption)
		return 1
	}

	dc, err := newDiscoveryContext(opts)
	if err != nil {
		Log.Error('!', "%s", err)
		return 1
	}
	defer dc.Close()

	if err := dc.Discover(); err != nil {
		Log.Error('!', "%s", err)
		return 1
	}

	portsMask, err := dc.Filter()
	if err != nil {
		Log.Error('!', "%s", err)
		return 1
	}

	dc.Pair()

	if dc.PhysicalHubCount() == 0 {
		Log.Error('!', "%s", ErrNoActionableHubs)
		return 1
	}

	if action == ActionKeep || opts.JSON {
		return reportStatus(dc, action, portsMask)
	}

	if err := dc.Run(action, portsMask, nil); err != nil {
		Log.Error('!', "%s", err)
		return 1
	}

	return 0
}

// reportStatus renders the text status report (no write action, no
// --json), the JSON status document (no write action, --json), or, for
// a write action with --json, runs the action and prints its JSON
// event stream one object per line.
func reportStatus(dc *DiscoveryContext, action Action, portsMask uint32) int {
	if !dc.Options.JSON {
		printTextStatus(dc, portsMask)
		return 0
	}

	if action != ActionKeep {
		var events jsonArray
		emit := func(o jsonObject) { events = append(events, o) }
		if err := dc.Run(action, portsMask, emit); err != nil {
			Log.Error('!', "%s", err)
			return 1
		}
		for _, e := range events {
			fmt.Println(encodeJSON(e))
		}
		return 0
	}

	fmt.Println(encodeJSON(dc.StatusDocument(portsMask)))
	return 0
}

// printTextStatus prints the console status report: one banner and a
// port-by-port summary per actionable hub.
func printTextStatus(dc *DiscoveryContext, portsMask uint32) {
	for _, h := range dc.Hubs {
		if h.Actionable == ActionableSkipped {
			continue
		}

		Console.Info(' ', "Current status for hub %s [%s]", h.Location, h.Description())

		mask := uint32((1<<uint(h.NPorts))-1) & portsMask
		for port := 1; port <= h.NPorts; port++ {
			if mask&(1<<uint(port-1)) == 0 {
				continue
			}

			ps, err := readPortStatus(h, port)
			if err != nil {
				Console.Error(' ', "  Port %d: %s", port, err)
				continue
			}

			line := fmt.Sprintf("  Port %d: %04x %s", port, ps.RawStatus, ps.Decoded())
			if ps.Connected {
				if ad, ok := dc.readChildDevice(h, port); ok {
					line += " " + ad.Description()
				}
			}
			Console.Info(' ', "%s", line)
		}
	}
}
