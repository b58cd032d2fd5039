/* uhubctl - per-port USB hub power control
 *
 * Port-spec bitmap parsing
 */

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// ports2bitmap parses a --ports spec ("all", a comma list, or a comma
// list of a-b ranges) into a bitmask of 1-based port numbers.
func ports2bitmap(spec string) (uint32, error) {
	if spec == "" || spec == "all" {
		return (uint32(1) << MaxHubPorts) - 1, nil
	}

	var mask uint32

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return 0, fmt.Errorf("%w: empty port spec element", ErrUsage)
		}

		var a, b int
		var err error

		if i := strings.IndexByte(part, '-'); i >= 0 {
			a, err = strconv.Atoi(part[:i])
			if err == nil {
				b, err = strconv.Atoi(part[i+1:])
			}
		} else {
			a, err = strconv.Atoi(part)
			b = a
		}

		if err != nil {
			return 0, fmt.Errorf("%w: %q: not a valid port or range", ErrUsage, part)
		}

		if a < 1 || b < a || b > MaxHubPorts {
			return 0, fmt.Errorf("%w: %q: out of range (1..%d)", ErrUsage, part, MaxHubPorts)
		}

		for p := a; p <= b; p++ {
			mask |= 1 << uint(p-1)
		}
	}

	return mask, nil
}
