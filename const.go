/* uhubctl - per-port USB hub power control
 *
 * Configuration constants
 */

package main

import "time"

const (
	// MaxHubPorts is the largest port number a --ports spec may
	// name; "all" selects ports 1..MaxHubPorts. A hub's own nports
	// is taken from its descriptor as reported.
	MaxHubPorts = 14

	// MaxHubs bounds the hub table built during discovery, purely
	// as a safety net against a pathological device tree.
	MaxHubs = 128

	// HubNonVarSize is the size, in bytes, of the non-variable part
	// of the USB hub class descriptor (bDescLength through
	// bHubContrCurrent), common to both the USB 2.0 and SuperSpeed
	// variants.
	HubNonVarSize = 7

	// UsbCtrlTimeout is the timeout applied to every control transfer.
	UsbCtrlTimeout = 5 * time.Second

	// SuperSpeedSettleDelay is how long the orchestrator waits after
	// an off phase against a SuperSpeed hub, before the state is
	// considered settled enough to re-read.
	SuperSpeedSettleDelay = 150 * time.Millisecond

	// DefaultCycleDelay is the default --delay value, in seconds,
	// used between the off and on phases of cycle/flash.
	DefaultCycleDelay = 2.0
)

// USB hub class descriptor types (table in §6 of the spec, wValue high byte
// of GET_DESCRIPTOR)
const (
	descTypeHub           = 0x29 // USB 2.0 hub class descriptor
	descTypeSuperSpeedHub = 0x2a // SuperSpeed hub class descriptor
	descTypeBOS           = 0x0f // Binary Object Store descriptor
)

// BOS device capability types
const (
	capTypeContainerID = 0x04
)

// bmRequestType / bRequest values for the four class requests this
// program issues (on-wire protocol table in spec §6)
const (
	reqTypeGetHubDescriptor = 0xa0 // IN, class, device
	reqTypeGetPortStatus    = 0xa3 // IN, class, other
	reqTypeSetPortFeature   = 0x23 // OUT, class, other
	reqTypeClearPortFeature = 0x23 // OUT, class, other

	reqGetDescriptor = 0x06
	reqGetStatus     = 0x00
	reqSetFeature    = 0x03
	reqClearFeature  = 0x01

	portFeaturePower = 8
)

// wHubCharacteristics bit-field masks (spec §4.1)
const (
	hubCharLpsmMask    = 0x0003
	hubCharLpsmPerPort = 0x0001
	hubCharLpsmGanged  = 0x0000
	hubCharOcpmMask    = 0x0018
)

// Port status word bit masks, common to both speeds (spec §4.2)
const (
	portStatusConnection  = 0x0001
	portStatusEnable      = 0x0002
	portStatusSuspend     = 0x0004
	portStatusOverCurrent = 0x0008
	portStatusReset       = 0x0010

	portStatusPowerUSB2 = 0x0100
	portStatusPowerUSB3 = 0x0200

	portStatusLowSpeedUSB2  = 0x0200
	portStatusHighSpeedUSB2 = 0x0400
	portStatusTestUSB2      = 0x0800
	portStatusIndicatorUSB2 = 0x1000

	portStatusLinkStateMaskUSB3 = 0x01e0
	portStatusLinkStateShift    = 5

	portStatusSpeedMaskUSB3 = 0x1c00
	portStatusSpeedShift    = 10
)
