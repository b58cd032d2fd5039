/* uhubctl - per-port USB hub power control
 *
 * Port controller tests
 */

package main

import "testing"

// fakeUSBDevice is a minimal usbDevice standing in for a real hub
// handle: it tracks power state per port and records every feature
// request it receives, so setPortPower/readPortStatus/Run's control
// flow can be exercised without real hardware.
type fakeUSBDevice struct {
	superSpeed bool
	powered    map[uint16]bool // port -> powered
	connected  map[uint16]bool // port -> has attached device

	setCalls   int
	clearCalls int

	resetCalls int
	resetErr   error
}

func newFakeUSBDevice(superSpeed bool) *fakeUSBDevice {
	return &fakeUSBDevice{
		superSpeed: superSpeed,
		powered:    map[uint16]bool{},
		connected:  map[uint16]bool{},
	}
}

func (f *fakeUSBDevice) Control(rType, request uint8, val, idx uint16, data []byte) (int, error) {
	switch request {
	case reqGetStatus:
		var status uint16
		if f.powered[idx] {
			if f.superSpeed {
				status |= portStatusPowerUSB3
			} else {
				status |= portStatusPowerUSB2
			}
		}
		if f.connected[idx] {
			status |= portStatusConnection | portStatusEnable
		}
		data[0] = byte(status)
		data[1] = byte(status >> 8)
		return len(data), nil
	case reqSetFeature:
		f.setCalls++
		if val == portFeaturePower {
			f.powered[idx] = true
		}
		return 0, nil
	case reqClearFeature:
		f.clearCalls++
		if val == portFeaturePower {
			f.powered[idx] = false
		}
		return 0, nil
	}
	return 0, nil
}

func (f *fakeUSBDevice) Reset() error {
	f.resetCalls++
	return f.resetErr
}

func (f *fakeUSBDevice) GetStringDescriptor(index int) (string, error) {
	return "", nil
}

func newTestHub(dev usbDevice, nports int, superSpeed bool) *HubRecord {
	return &HubRecord{
		Dev:        dev,
		Bus:        1,
		NPorts:     nports,
		SuperSpeed: superSpeed,
		Location:   "1",
		Actionable: ActionablePrimary,
	}
}

// TestSetPortPowerOffRepeatBudget covers spec §8 scenario 5: the off
// direction retries up to repeat times, wait ms apart; on is always a
// single attempt regardless of repeat.
func TestSetPortPowerOffRepeatBudget(t *testing.T) {
	dev := newFakeUSBDevice(false)
	h := newTestHub(dev, 4, false)

	if err := setPortPower(h, 1, false, 3, 0, true); err != nil {
		t.Fatalf("setPortPower: %s", err)
	}
	if dev.clearCalls != 3 {
		t.Fatalf("off with repeat=3 should issue 3 CLEAR_FEATURE requests, got %d", dev.clearCalls)
	}

	dev2 := newFakeUSBDevice(false)
	h2 := newTestHub(dev2, 4, false)
	if err := setPortPower(h2, 1, true, 3, 0, true); err != nil {
		t.Fatalf("setPortPower: %s", err)
	}
	if dev2.setCalls != 1 {
		t.Fatalf("on must always be a single attempt regardless of repeat, got %d", dev2.setCalls)
	}
}

func TestSetPortPowerSkipsSysfsWhenNoSysfs(t *testing.T) {
	dev := newFakeUSBDevice(false)
	h := newTestHub(dev, 4, false)

	// noSysfs=true must force every attempt through the control
	// transfer path, never touching the filesystem.
	if err := setPortPower(h, 3, true, 1, 0, true); err != nil {
		t.Fatalf("setPortPower: %s", err)
	}
	if dev.setCalls != 1 {
		t.Fatalf("expected exactly one SET_FEATURE, got %d", dev.setCalls)
	}
}

func TestReadPortStatusDecodesFakeResponse(t *testing.T) {
	dev := newFakeUSBDevice(true)
	dev.powered[2] = true
	dev.connected[2] = true
	h := newTestHub(dev, 4, true)

	ps, err := readPortStatus(h, 2)
	if err != nil {
		t.Fatalf("readPortStatus: %s", err)
	}
	if !ps.Powered || !ps.Connected || !ps.SuperSpeed {
		t.Fatalf("unexpected decode: %+v", ps)
	}
}
