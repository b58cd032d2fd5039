/* uhubctl - per-port USB hub power control
 *
 * Locating a hub's immediate child device by port number
 */

package main

import "github.com/google/gousb"

// readChildDevice looks up the device directly attached to hub h's
// port, if any, and reads its descriptor (C3). ok is false if no
// device is attached at that port, or it could not be opened.
func (dc *DiscoveryContext) readChildDevice(h *HubRecord, port int) (attachedDevice, bool) {
	wantPath := append(append([]int(nil), h.PortNumbers...), port)

	devs, _ := dc.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if desc.Bus != h.Bus || len(desc.Path) != len(wantPath) {
			return false
		}
		for i := range wantPath {
			if desc.Path[i] != wantPath[i] {
				return false
			}
		}
		return true
	})

	var found *gousb.Device
	for _, dev := range devs {
		if found == nil {
			found = dev
		} else {
			dev.Close()
		}
	}

	if found == nil {
		return attachedDevice{}, false
	}
	defer found.Close()

	found.ControlTimeout = UsbCtrlTimeout

	return readAttachedDevice(found, found.Desc, dc.Options.NoDesc), true
}
