/* uhubctl - per-port USB hub power control
 *
 * Port-status decoder (C2)
 */

package main

// LinkState is the USB 3.x physical-layer port link state, decoded
// from port-status bits 5-8.
type LinkState int

const (
	LinkU0 LinkState = iota
	LinkU1
	LinkU2
	LinkU3
	LinkSSDisabled
	LinkRxDetect
	LinkSSInactive
	LinkPolling
	LinkRecovery
	LinkHotReset
	LinkCompliance
	LinkLoopback
	LinkUnknown
)

var linkStateNames = map[LinkState]string{
	LinkU0:         "U0",
	LinkU1:         "U1",
	LinkU2:         "U2",
	LinkU3:         "U3",
	LinkSSDisabled: "SS.Disabled",
	LinkRxDetect:   "Rx.Detect",
	LinkSSInactive: "SS.Inactive",
	LinkPolling:    "Polling",
	LinkRecovery:   "Recovery",
	LinkHotReset:   "HotReset",
	LinkCompliance: "Compliance",
	LinkLoopback:   "Loopback",
	LinkUnknown:    "Unknown",
}

func (l LinkState) String() string {
	if s, ok := linkStateNames[l]; ok {
		return s
	}
	return "Unknown"
}

// linkStateTable maps the 4-bit tLinkState field (USB 3.x, table 10-12
// of the spec) to LinkState. Values with no defined meaning map to
// LinkUnknown.
var linkStateTable = [16]LinkState{
	0:  LinkU0,
	1:  LinkU1,
	2:  LinkU2,
	3:  LinkU3,
	4:  LinkSSDisabled,
	5:  LinkRxDetect,
	6:  LinkSSInactive,
	7:  LinkPolling,
	8:  LinkRecovery,
	9:  LinkHotReset,
	10: LinkCompliance,
	11: LinkLoopback,
}

// SpeedCode is the USB 3.x negotiated link speed, decoded from
// port-status bits 10-12.
type SpeedCode int

const (
	Speed5Gbps SpeedCode = iota
	Speed10Gbps
	Speed20Gbps
	Speed40Gbps
	Speed80Gbps
	SpeedUnknown
)

var speedCodeNames = map[SpeedCode]string{
	Speed5Gbps:   "5Gbps",
	Speed10Gbps:  "10Gbps",
	Speed20Gbps:  "20Gbps",
	Speed40Gbps:  "40Gbps",
	Speed80Gbps:  "80Gbps",
	SpeedUnknown: "Unknown",
}

func (s SpeedCode) String() string {
	if s, ok := speedCodeNames[s]; ok {
		return s
	}
	return "Unknown"
}

// speedCodeTable maps the 3-bit speed field to SpeedCode.
var speedCodeTable = [8]SpeedCode{
	0: Speed5Gbps,
	1: Speed10Gbps,
	2: Speed20Gbps,
	3: Speed40Gbps,
	4: Speed80Gbps,
	5: SpeedUnknown,
	6: SpeedUnknown,
	7: SpeedUnknown,
}

// PortState is the decoded interpretation of a single port-status
// word, for either a USB 2.0 or a USB 3.x hub.
type PortState struct {
	RawStatus uint16
	SuperSpeed bool

	Powered     bool
	Connected   bool
	Enabled     bool
	Suspended   bool
	OverCurrent bool
	InReset     bool

	// USB 2.0 only
	LowSpeed  bool
	HighSpeed bool
	Test      bool
	Indicator bool

	// USB 3.x only
	LinkState LinkState
	SpeedCode SpeedCode
}

// decodePortStatus is a pure function of (status, superSpeed): C2.
func decodePortStatus(status uint16, superSpeed bool) PortState {
	ps := PortState{RawStatus: status, SuperSpeed: superSpeed}

	powerMask := uint16(portStatusPowerUSB2)
	if superSpeed {
		powerMask = portStatusPowerUSB3
	}

	ps.Powered = status&powerMask != 0
	ps.Connected = status&portStatusConnection != 0
	ps.Enabled = status&portStatusEnable != 0
	ps.Suspended = status&portStatusSuspend != 0
	ps.OverCurrent = status&portStatusOverCurrent != 0
	ps.InReset = status&portStatusReset != 0

	if superSpeed {
		ps.LinkState = linkStateTable[(status&portStatusLinkStateMaskUSB3)>>portStatusLinkStateShift]
		ps.SpeedCode = speedCodeTable[(status&portStatusSpeedMaskUSB3)>>portStatusSpeedShift]
	} else {
		ps.LowSpeed = status&portStatusLowSpeedUSB2 != 0
		ps.HighSpeed = status&portStatusHighSpeedUSB2 != 0
		ps.Test = status&portStatusTestUSB2 != 0
		ps.Indicator = status&portStatusIndicatorUSB2 != 0
	}

	return ps
}

// Decoded returns the canonical textual summary, by priority:
// overcurrent > resetting > no_power > powered_no_device >
// device_connected_not_enabled > device_suspended > device_active.
func (ps PortState) Decoded() string {
	switch {
	case ps.OverCurrent:
		return "overcurrent"
	case ps.InReset:
		return "resetting"
	case !ps.Powered:
		return "no_power"
	case !ps.Connected:
		return "powered_no_device"
	case !ps.Enabled:
		return "device_connected_not_enabled"
	case ps.Suspended:
		return "device_suspended"
	default:
		return "device_active"
	}
}
