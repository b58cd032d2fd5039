/* uhubctl - per-port USB hub power control
 *
 * Device descriptor reader for attached downstream devices (C3)
 */

package main

import (
	"fmt"
	"strings"

	"github.com/google/gousb"
)

// attachedDevice is everything C3 extracts about a device connected
// to one hub port.
type attachedDevice struct {
	VendorID      gousb.ID
	ProductID     gousb.ID
	BcdUSB        uint16
	BcdDevice     uint16
	Class         gousb.Class
	Manufacturer  string
	Product       string
	Serial        string
	IsMassStorage bool

	// ifaceClasses holds every alt-setting class of the device's first
	// configuration, for the class-00 interface walk in ClassName.
	ifaceClasses []gousb.Class
}

// classNames gives the human label for the device-class priority
// table in spec §4.3: HID/Audio/Video/Printer/SmartCard/ContentSecurity
// are returned immediately; MassStorage/CDC override the default
// "Composite"; anything else falls back to "Composite Device".
var classNames = map[gousb.Class]string{
	gousb.ClassHID:             "Human Interface Device",
	gousb.ClassAudio:           "Audio",
	gousb.ClassVideo:           "Video",
	gousb.ClassPrinter:         "Printer",
	gousb.ClassSmartCard:       "Smart Card",
	gousb.ClassContentSecurity: "Content Security",
	gousb.ClassMassStorage:     "Mass Storage",
	gousb.ClassComm:            "Communications", // CDC
}

// className classifies a device by scanning its interface classes
// (for per-interface class-00 devices) or its device class directly.
func className(devClass gousb.Class, ifaceClasses []gousb.Class) string {
	immediate := []gousb.Class{
		gousb.ClassHID, gousb.ClassAudio, gousb.ClassVideo,
		gousb.ClassPrinter, gousb.ClassSmartCard, gousb.ClassContentSecurity,
	}

	candidates := ifaceClasses
	if devClass != gousb.ClassPerInterface {
		candidates = []gousb.Class{devClass}
	}

	for _, c := range candidates {
		for _, want := range immediate {
			if c == want {
				return classNames[c]
			}
		}
	}

	for _, c := range candidates {
		if c == gousb.ClassMassStorage || c == gousb.ClassComm {
			return classNames[c]
		}
	}

	return "Composite Device"
}

// isMassStorage reports whether any of the given interface alt-setting
// classes is 0x08 (Mass Storage).
func isMassStorage(ifaceClasses []gousb.Class) bool {
	for _, c := range ifaceClasses {
		if c == gousb.ClassMassStorage {
			return true
		}
	}
	return false
}

// interfaceClasses collects every alt-setting class from the device's
// first configuration.
func interfaceClasses(desc *gousb.DeviceDesc) []gousb.Class {
	var classes []gousb.Class

	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				classes = append(classes, alt.Class)
			}
		}
		break // first configuration only, per spec §4.3
	}

	return classes
}

// readAttachedDevice reads vendor/product/serial and class information
// for a device attached to a hub port. If noDesc is set, string
// descriptor reads (manufacturer/product/serial) are skipped entirely.
func readAttachedDevice(dev *gousb.Device, desc *gousb.DeviceDesc, noDesc bool) attachedDevice {
	ad := attachedDevice{
		VendorID:  desc.Vendor,
		ProductID: desc.Product,
		BcdUSB:    uint16(desc.Spec),
		BcdDevice: uint16(desc.Device),
		Class:     desc.Class,
	}

	ad.ifaceClasses = interfaceClasses(desc)
	ad.IsMassStorage = isMassStorage(ad.ifaceClasses)

	if !noDesc && dev != nil {
		ad.Manufacturer = readStringDescriptor(dev, 1)
		ad.Product = readStringDescriptor(dev, 2)
		ad.Serial = readStringDescriptor(dev, 3)
	}

	return ad
}

// readStringDescriptor reads and trims a device string descriptor,
// returning "" on any failure (missing index, device gone, etc).
func readStringDescriptor(dev usbDevice, index int) string {
	s, err := dev.GetStringDescriptor(index)
	if err != nil {
		return ""
	}
	return strings.TrimRight(s, " \t\r\n")
}

// ClassName returns the class label this device should be reported
// under, walking the interface classes of its first configuration for
// a class-00 (per-interface) device.
func (ad attachedDevice) ClassName() string {
	return className(ad.Class, ad.ifaceClasses)
}

// Description composes the single-line summary for an attached
// device: "vvvv:pppp [ vendor] [ product] [ serial]".
func (ad attachedDevice) Description() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04x:%04x", uint16(ad.VendorID), uint16(ad.ProductID))
	if ad.Manufacturer != "" {
		fmt.Fprintf(&b, " %s", ad.Manufacturer)
	}
	if ad.Product != "" {
		fmt.Fprintf(&b, " %s", ad.Product)
	}
	if ad.Serial != "" {
		fmt.Fprintf(&b, " %s", ad.Serial)
	}
	return b.String()
}
