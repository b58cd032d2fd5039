/* uhubctl - per-port USB hub power control
 *
 * Hub class descriptor and BOS container-ID decoder (C1)
 */

package main

import (
	"github.com/google/gousb"
)

// decodeHub builds a partially populated HubRecord for dev: device
// class, hub class descriptor, wHubCharacteristics and BOS
// container-ID. Platform overrides (§4.1) are applied afterward by
// applyPlatformOverrides.
func decodeHub(dev *gousb.Device, desc *gousb.DeviceDesc) (*HubRecord, error) {
	if desc.Class != gousb.ClassHub {
		return nil, &notAHubError{class: int(desc.Class)}
	}

	h := &HubRecord{
		Dev:         dev,
		Bus:         desc.Bus,
		Address:     desc.Address,
		PortNumbers: append([]int(nil), desc.Path...),
		BcdUSB:      uint16(desc.Spec),
		VendorID:    desc.Vendor,
		ProductID:   desc.Product,
	}
	h.SuperSpeed = h.BcdUSB >= 0x0300
	h.Location = locationString(h.Bus, h.PortNumbers)

	descType := uint16(descTypeHub)
	if h.SuperSpeed {
		descType = descTypeSuperSpeedHub
	}

	buf := make([]byte, 64)
	n, err := dev.Control(
		reqTypeGetHubDescriptor, reqGetDescriptor,
		descType<<8, 0, buf)
	if err != nil {
		return nil, &transferFailedError{op: "GET_DESCRIPTOR(hub)", err: err}
	}
	if n < HubNonVarSize+2 {
		return nil, &descriptorShortError{got: n, want: HubNonVarSize + 2}
	}
	buf = buf[:n]

	h.NPorts = int(buf[2])
	hubChar := uint16(buf[3]) | uint16(buf[4])<<8

	switch hubChar & hubCharLpsmMask {
	case hubCharLpsmPerPort:
		h.LPSM = LPSMPerPort
	case hubCharLpsmGanged:
		h.LPSM = LPSMGanged
	default:
		h.LPSM = LPSMNone
	}
	h.OCPM = int((hubChar & hubCharOcpmMask) >> 3)

	// A single-port GANGED hub is, by construction, already per-port.
	if h.NPorts == 1 && h.LPSM == LPSMGanged {
		h.LPSM = LPSMPerPort
	}

	h.ContainerID = readContainerID(dev)

	return h, nil
}

// readContainerID issues GET_DESCRIPTOR(BOS) and walks its device
// capabilities for CONTAINER_ID. Returns "" if the device has no BOS
// descriptor or no such capability; this is never fatal to the caller.
func readContainerID(dev *gousb.Device) string {
	buf := make([]byte, 512)
	n, err := dev.Control(
		0x80, reqGetDescriptor, // IN, standard, device: BOS is not a class descriptor
		descTypeBOS<<8, 0, buf)
	if err != nil || n < 5 {
		return ""
	}
	buf = buf[:n]

	total := int(buf[2]) | int(buf[3])<<8
	if total < len(buf) {
		buf = buf[:total]
	}

	// Walk device capability descriptors starting right after the
	// 5-byte BOS header.
	off := 5
	for off+3 <= len(buf) {
		capLen := int(buf[off])
		if capLen < 3 || off+capLen > len(buf) {
			break
		}

		capType := buf[off+2]
		if capType == capTypeContainerID && capLen >= 20 {
			// byte layout: bLength, bDescriptorType, bDevCapabilityType,
			// bReserved, then a 16-byte UUID.
			return containerIDFromBytes(buf[off+4 : off+20])
		}

		off += capLen
	}

	return ""
}

// applyPlatformOverrides runs the platform rule table (A3) against h's
// decoded record, possibly synthesizing a container ID or forcing its
// LPSM. Whether a rule requires a root hub is a per-rule criterion
// (platformRule.RootOnly), not a blanket gate here: the RPi4B's
// onboard 2109:3431 hub, for instance, sits downstream of the SoC's
// root hubs and its GANGED->PER_PORT fix must still be allowed to run.
func applyPlatformOverrides(h *HubRecord, rules *platformRuleDb, model string) {
	isRoot := len(h.PortNumbers) == 0

	rule := rules.match(model, uint16(h.VendorID), uint16(h.ProductID), h.NPorts, isRoot)
	if rule == nil {
		return
	}

	if rule.ContainerID != "" && h.ContainerID == "" {
		h.ContainerID = rule.ContainerID
	}
	if rule.ForceLPSMSet {
		h.LPSM = rule.ForceLPSM
	}
}
