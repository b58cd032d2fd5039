/* uhubctl - per-port USB hub power control
 *
 * Port controller (C7)
 */

package main

// readPortStatus issues GET_STATUS for one port and decodes it (C2).
func readPortStatus(h *HubRecord, port int) (PortState, error) {
	buf := make([]byte, 4)
	_, err := h.Dev.Control(reqTypeGetPortStatus, reqGetStatus, 0, uint16(port), buf)
	if err != nil {
		return PortState{}, &transferFailedError{op: "GET_STATUS(port)", err: err}
	}

	status := uint16(buf[0]) | uint16(buf[1])<<8
	return decodePortStatus(status, h.SuperSpeed), nil
}

// setPortPower sets port p of hub h to the requested power state. It
// tries the sysfs fallback first (Linux only, unless NoSysfs), then
// falls back to a SET_FEATURE/CLEAR_FEATURE control transfer. The off
// direction is retried up to repeat times, wait ms apart; on is always
// a single attempt.
func setPortPower(h *HubRecord, port int, on bool, repeat, wait int, noSysfs bool) error {
	attempts := 1
	if !on && repeat > 1 {
		attempts = repeat
	}

	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			sleepMS(wait)
		}

		attempted, err := trySysfsSetPower(h, port, on, noSysfs)
		if attempted {
			lastErr = err
			if err == nil {
				continue
			}
			Log.Error(' ', "%s: port %d: sysfs power control failed: %s",
				h.Location, port, err)
		}

		request := uint8(reqSetFeature)
		reqType := uint8(reqTypeSetPortFeature)
		if !on {
			request = reqClearFeature
			reqType = reqTypeClearPortFeature
		}

		_, err = h.Dev.Control(reqType, request, portFeaturePower, uint16(port), nil)
		lastErr = err
	}

	return lastErr
}
