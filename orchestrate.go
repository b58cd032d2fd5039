/* uhubctl - per-port USB hub power control
 *
 * Action orchestrator (C8)
 */

package main

import (
	"fmt"
)

// Action is one of the abstract actions a run can perform.
type Action int

const (
	ActionKeep Action = iota
	ActionOff
	ActionOn
	ActionCycle
	ActionToggle
	ActionFlash
)

func parseAction(s string) (Action, error) {
	switch s {
	case "", "keep":
		return ActionKeep, nil
	case "off", "0":
		return ActionOff, nil
	case "on", "1":
		return ActionOn, nil
	case "cycle", "2":
		return ActionCycle, nil
	case "toggle", "3":
		return ActionToggle, nil
	case "flash", "4":
		return ActionFlash, nil
	default:
		return ActionKeep, fmt.Errorf("%w: unrecognized action %q", ErrUsage, s)
	}
}

// runsPhase reports whether phase k (0 = off, 1 = on) runs at all for
// this action.
func (a Action) runsPhase(k int) bool {
	switch a {
	case ActionKeep:
		return false
	case ActionOff:
		return k == 0
	case ActionOn:
		return k == 1
	case ActionToggle:
		return k == 0 // toggle is a single pass, driven through phase 0
	default: // cycle, flash
		return true
	}
}

// Run drives the two-phase action sequence of spec §4.8 across every
// actionable hub. emit, if non-nil, receives one JSON event object per
// line (event-stream mode); otherwise events are reported to Log.
func (dc *DiscoveryContext) Run(action Action, portsMask uint32, emit func(jsonObject)) error {
	if action != ActionKeep && dc.PhysicalHubCount() > 1 {
		return ErrAmbiguousScope
	}

	for k := 0; k <= 1; k++ {
		if !action.runsPhase(k) {
			continue
		}

		anySuperSpeed := false

		for _, h := range dc.Hubs {
			if h.Actionable == ActionableSkipped {
				continue
			}

			mask := uint32((1<<uint(h.NPorts))-1) & portsMask
			if h.SuperSpeed {
				anySuperSpeed = true
			}

			if emit != nil {
				emit(hubStatusEvent(h))
			}

			for port := 1; port <= h.NPorts; port++ {
				if mask&(1<<uint(port-1)) == 0 {
					continue
				}
				if err := dc.runOnePort(h, port, action, k, emit); err != nil {
					Log.Error(' ', "%s: port %d: %s", h.Location, port, err)
				}
			}

			if k == 1 && action != ActionFlash && dc.Options.Reset {
				dc.resetHub(h, emit)
			}
		}

		if k == 0 && anySuperSpeed {
			sleepMS(int(SuperSpeedSettleDelay.Milliseconds()))
		}

		if k == 0 && (action == ActionCycle || action == ActionFlash) {
			seconds := dc.Options.Delay
			sleepMS(int(seconds * 1000))
			if emit != nil {
				reason := "power_cycle"
				if action == ActionFlash {
					reason = "power_flash"
				}
				emit(delayEvent(reason, seconds))
			}
		}
	}

	return nil
}

// runOnePort performs steps 1-5 of spec §4.8 for a single port in a
// single phase.
func (dc *DiscoveryContext) runOnePort(h *HubRecord, port int, action Action, k int, emit func(jsonObject)) error {
	before, err := readPortStatus(h, port)
	if err != nil {
		return err
	}

	var target bool
	switch action {
	case ActionToggle:
		target = !before.Powered
	case ActionFlash:
		target = k == 0 // flash is on then off: k=0 -> on, k=1 -> off
	default:
		target = k == 1
	}

	if before.Powered == target && action != ActionToggle {
		return nil
	}

	setErr := setPortPower(h, port, target, dc.Options.Repeat, dc.Options.Wait, dc.Options.NoSysfs)

	after := before
	if setErr == nil {
		after, _ = readPortStatus(h, port)
	}

	verb := "off"
	if target {
		verb = "on"
	}

	if emit != nil {
		emit(powerChangeEvent(h, port, verb, before, after, setErr == nil))
	} else if setErr != nil {
		Log.Error(' ', "%s: port %d: power %s failed: %s", h.Location, port, verb, setErr)
	} else {
		Log.Info(' ', "%s: port %d: power %s", h.Location, port, verb)
	}

	return nil
}

// resetHub issues a bus-level reset on h's device handle, per the
// optional --reset flag.
func (dc *DiscoveryContext) resetHub(h *HubRecord, emit func(jsonObject)) {
	err := h.Dev.Reset()
	if emit != nil {
		emit(hubResetEvent(h, err == nil))
		return
	}
	if err != nil {
		Log.Error(' ', "%s: reset failed: %s", h.Location, err)
	} else {
		Log.Info(' ', "%s: reset ok", h.Location)
	}
}

// StatusDocument builds the JSON status document (keep action) for
// every actionable hub's current port states.
func (dc *DiscoveryContext) StatusDocument(portsMask uint32) jsonObject {
	var hubs jsonArray

	for _, h := range dc.Hubs {
		if h.Actionable == ActionableSkipped {
			continue
		}

		mask := uint32((1<<uint(h.NPorts))-1) & portsMask
		var ports jsonArray

		for port := 1; port <= h.NPorts; port++ {
			if mask&(1<<uint(port-1)) == 0 {
				continue
			}

			ps, err := readPortStatus(h, port)
			if err != nil {
				continue
			}

			var dev *attachedDevice

			if ps.Connected {
				if ad, ok := dc.readChildDevice(h, port); ok {
					dev = &ad
				}
			}

			ports = append(ports, portObject(port, ps, dev))
		}

		hubs = append(hubs, hubObject(h, ports))
	}

	return statusDocument(hubs)
}
