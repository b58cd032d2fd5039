/* uhubctl - per-port USB hub power control
 *
 * Hub enumerator (C4) and the discovery context that replaces the
 * global hub/device arrays of the C original
 */

package main

import (
	"github.com/google/gousb"
)

// DiscoveryContext owns everything gathered during one discovery pass:
// the libusb context, the hub table, and whether a permission problem
// was observed along the way. It is built once per invocation and
// never mutated concurrently.
type DiscoveryContext struct {
	ctx       *gousb.Context
	Hubs      []*HubRecord
	PermFault bool
	Rules     *platformRuleDb

	Options Options
}

// Options bundles the CLI-derived knobs that discovery/filtering/the
// orchestrator all consult; see main.go for where it's populated.
type Options struct {
	Location    string
	Level       int
	Vendor      string
	Search      string
	SearchHub   string
	Ports       string
	Action      string
	Delay       float64
	Repeat      int
	Wait        int
	Exact       bool
	Force       bool
	NoDesc      bool
	NoSysfs     bool
	SysDev      string
	Reset       bool
	JSON        bool
	QuirksFile  string
}

// newDiscoveryContext opens a libusb context and loads the platform
// rule table.
func newDiscoveryContext(opts Options) (*DiscoveryContext, error) {
	rules, err := loadPlatformRules(opts.QuirksFile)
	if err != nil {
		return nil, err
	}

	return &DiscoveryContext{
		ctx:     gousb.NewContext(),
		Rules:   rules,
		Options: opts,
	}, nil
}

// Close releases the underlying libusb context.
func (dc *DiscoveryContext) Close() {
	if dc.ctx != nil {
		dc.ctx.Close()
	}
}

// Discover walks every USB device reachable through the libusb
// context, in enumeration order, keeping those that decode as hubs
// (C1+C3). Devices that fail to decode are skipped and PermFault is
// set, since any such failure may be a permission problem. Hubs
// whose LPSM is not PER_PORT are dropped unless Force is set.
func (dc *DiscoveryContext) Discover() error {
	model := hostModel()

	devs, err := dc.ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Class == gousb.ClassHub
	})
	if err != nil && len(devs) == 0 {
		dc.PermFault = true
	}

	for _, dev := range devs {
		if len(dc.Hubs) >= MaxHubs {
			dev.Close()
			continue
		}

		dev.ControlTimeout = UsbCtrlTimeout

		h, err := decodeHub(dev, dev.Desc)
		if err != nil {
			dc.PermFault = true
			dev.Close()
			continue
		}

		applyPlatformOverrides(h, dc.Rules, model)

		if h.LPSM != LPSMPerPort && !dc.Options.Force {
			dev.Close()
			continue
		}

		h.Desc = dc.describeHub(h)
		h.Actionable = ActionablePrimary

		dc.Hubs = append(dc.Hubs, h)
	}

	if dc.PermFault && !dc.anyActionable() {
		return ErrPermissionDenied
	}

	return nil
}

func (dc *DiscoveryContext) anyActionable() bool {
	for _, h := range dc.Hubs {
		if h.Actionable != ActionableSkipped {
			return true
		}
	}
	return false
}

// describeHub populates a HubRecord's description strings via C3.
func (dc *DiscoveryContext) describeHub(h *HubRecord) descriptionStrings {
	var ds descriptionStrings

	if dc.Options.NoDesc {
		return ds
	}

	ds.Vendor = readStringDescriptor(h.Dev, 1)
	ds.Product = readStringDescriptor(h.Dev, 2)
	ds.Serial = readStringDescriptor(h.Dev, 3)

	return ds
}
