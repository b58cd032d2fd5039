/* uhubctl - per-port USB hub power control
 *
 * Selection filter (C5)
 */

package main

import "strings"

// Filter applies the location/level/vendor/hub-description/attached-
// device filters to dc.Hubs, setting Actionable = ActionableSkipped on
// any hub that fails to match. It returns the effective port bitmask:
// the requested --ports spec, possibly narrowed by a --search match
// against an attached device (spec §4.5).
func (dc *DiscoveryContext) Filter() (uint32, error) {
	portsMask, err := ports2bitmap(dc.Options.Ports)
	if err != nil {
		return 0, err
	}

	for _, h := range dc.Hubs {
		if h.Actionable == ActionableSkipped {
			continue
		}

		if dc.Options.Location != "" &&
			!strings.EqualFold(h.Location, dc.Options.Location) {
			h.Actionable = ActionableSkipped
			continue
		}

		if dc.Options.Level != 0 && h.Level() != dc.Options.Level {
			h.Actionable = ActionableSkipped
			continue
		}

		if dc.Options.Vendor != "" &&
			!strings.HasPrefix(strings.ToLower(h.Vendor()), strings.ToLower(dc.Options.Vendor)) {
			h.Actionable = ActionableSkipped
			continue
		}

		if dc.Options.SearchHub != "" &&
			!strings.Contains(h.Description(), dc.Options.SearchHub) {
			h.Actionable = ActionableSkipped
			continue
		}
	}

	if dc.Options.Search != "" {
		portsMask, err = dc.filterBySearch(portsMask)
		if err != nil {
			return 0, err
		}
	}

	return portsMask, nil
}

// filterBySearch keeps only hubs with an immediate child device whose
// description contains the search string, narrowing portsMask to that
// child's single port bit. Multiple matches (across hubs or ports)
// leave the last matching port selected, per spec §4.5.
func (dc *DiscoveryContext) filterBySearch(portsMask uint32) (uint32, error) {
	narrowed := portsMask
	anyMatch := false

	for _, h := range dc.Hubs {
		if h.Actionable == ActionableSkipped {
			continue
		}

		matched := false

		for port := 1; port <= h.NPorts; port++ {
			if portsMask&(1<<uint(port-1)) == 0 {
				continue
			}

			ad, ok := dc.readChildDevice(h, port)
			if !ok {
				continue
			}

			if strings.Contains(ad.Description(), dc.Options.Search) {
				matched = true
				anyMatch = true
				narrowed = 1 << uint(port-1)
			}
		}

		if !matched {
			h.Actionable = ActionableSkipped
		}
	}

	if !anyMatch {
		narrowed = portsMask
		for _, h := range dc.Hubs {
			h.Actionable = ActionableSkipped
		}
	}

	return narrowed, nil
}
