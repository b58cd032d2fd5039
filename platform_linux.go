//go:build linux

/* uhubctl - per-port USB hub power control
 *
 * Platform capability shims, Linux
 */

package main

import (
	"fmt"
	"os"
	"strings"
	"time"
)

func sleepMS(n int) {
	time.Sleep(time.Duration(n) * time.Millisecond)
}

// sysfsPortDisablePath is grounded on uhubctl.c's set_port_status_linux:
// each hub exposes one pseudo-file per port under its own sysfs device
// directory, named "<location>-port<N>/disable".
func sysfsPortDisablePath(location string, port int) string {
	return fmt.Sprintf("/sys/bus/usb/devices/%s/%s-port%d/disable", location, location, port)
}

// trySysfsSetPower attempts the native sysfs "disable" fallback before
// falling back to a control transfer. The bool result reports whether
// the sysfs path was attempted at all (false means "file not present",
// a silent, expected condition on older kernels).
func trySysfsSetPower(h *HubRecord, port int, on bool, noSysfs bool) (bool, error) {
	if noSysfs {
		return false, nil
	}

	path := sysfsPortDisablePath(h.Location, port)

	value := "1"
	if on {
		value = "0"
	}

	err := os.WriteFile(path, []byte(value), 0644)
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	default:
		return true, err
	}
}

// hostModel reads the Raspberry Pi style device-tree model string, used
// to gate the platform rule table (A3). Empty on hosts without one.
func hostModel() string {
	b, err := os.ReadFile("/proc/device-tree/model")
	if err != nil {
		return ""
	}
	return strings.TrimRight(string(b), "\x00\n")
}
