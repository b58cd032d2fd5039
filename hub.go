/* uhubctl - per-port USB hub power control
 *
 * Hub records
 */

package main

import (
	"fmt"
	"strings"

	"github.com/google/gousb"
)

// LPSM is a hub's Logical Power Switching Mode, decoded from
// wHubCharacteristics bits 0-1.
type LPSM int

const (
	LPSMGanged LPSM = iota
	LPSMPerPort
	LPSMNone
)

// String returns the lpsm-tag used in descriptions and JSON
// (spec ppps/ganged/nops vocabulary).
func (m LPSM) String() string {
	switch m {
	case LPSMPerPort:
		return "ppps"
	case LPSMGanged:
		return "ganged"
	default:
		return "nops"
	}
}

// Actionable enumerates why (or whether) a hub takes part in an action.
type Actionable int

const (
	ActionableSkipped Actionable = iota
	ActionablePrimary
	ActionablePartner
)

// descriptionStrings holds the human-readable identity of a hub, as
// read by the device descriptor reader (C3).
type descriptionStrings struct {
	Vendor   string
	Product  string
	Serial   string
	Composed string
}

// usbDevice is the subset of *gousb.Device that the port controller
// and orchestrator depend on. Declaring it as an interface (rather
// than storing *gousb.Device directly) lets tests drive setPortPower,
// readPortStatus and Run's repeat/toggle/flash logic against a fake,
// without real hardware.
type usbDevice interface {
	Control(rType, request uint8, val, idx uint16, data []byte) (int, error)
	Reset() error
	GetStringDescriptor(index int) (string, error)
}

// HubRecord describes one hub discovered on the USB bus.
type HubRecord struct {
	Dev usbDevice // Underlying device handle, opened during discovery

	Bus         int
	Address     int
	PortNumbers []int // Port path from the root, one entry per level
	Location    string

	BcdUSB     uint16
	SuperSpeed bool
	NPorts     int
	LPSM       LPSM
	OCPM       int

	ContainerID string
	VendorID    gousb.ID
	ProductID   gousb.ID

	Desc descriptionStrings

	Actionable Actionable
}

// Vendor returns the hub's "vvvv:pppp" string.
func (h *HubRecord) Vendor() string {
	return fmt.Sprintf("%04x:%04x", uint16(h.VendorID), uint16(h.ProductID))
}

// Level is the depth of the hub's location chain; root hubs are level 1.
func (h *HubRecord) Level() int {
	return len(h.PortNumbers) + 1
}

// locationString composes the canonical "B-p1.p2...pN" location string.
func locationString(bus int, portNumbers []int) string {
	if len(portNumbers) == 0 {
		return fmt.Sprintf("%d", bus)
	}

	parts := make([]string, len(portNumbers))
	for i, p := range portNumbers {
		parts[i] = fmt.Sprintf("%d", p)
	}
	return fmt.Sprintf("%d-%s", bus, strings.Join(parts, "."))
}

// Description returns the single-line description string composed by
// the device descriptor reader (spec §4.3): "vvvv:pppp [ vendor]
// [ product] [ serial][, USB x.yy, N ports, <lpsm-tag>]".
func (h *HubRecord) Description() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s", h.Vendor())

	if h.Desc.Vendor != "" {
		fmt.Fprintf(&b, " %s", h.Desc.Vendor)
	}
	if h.Desc.Product != "" {
		fmt.Fprintf(&b, " %s", h.Desc.Product)
	}
	if h.Desc.Serial != "" {
		fmt.Fprintf(&b, " %s", h.Desc.Serial)
	}

	fmt.Fprintf(&b, ", USB %s, %d ports, %s",
		usbVersionString(h.BcdUSB), h.NPorts, h.LPSM)

	return b.String()
}

// usbVersionString renders a BCD USB version (e.g. 0x0300) as "3.00".
func usbVersionString(bcd uint16) string {
	major := (bcd >> 8) & 0xff
	minor := bcd & 0xff
	return fmt.Sprintf("%d.%02x", major, minor)
}

// IsPhysicalHub reports whether this actionable hub counts toward the
// "one physical hub at a time" rule: every actionable hub counts under
// exact pairing, otherwise only non-SuperSpeed hubs count (a USB2/USB3
// dual pair counts once).
func (h *HubRecord) IsPhysicalHub(exact bool) bool {
	if h.Actionable == ActionableSkipped {
		return false
	}
	return exact || !h.SuperSpeed
}
