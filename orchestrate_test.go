/* uhubctl - per-port USB hub power control
 *
 * Action orchestrator tests
 */

package main

import (
	"errors"
	"testing"
)

// TestRunAmbiguousScopeRefusal covers spec §8 scenario 4: a write
// action against more than one physical hub must be refused before
// any device I/O happens.
func TestRunAmbiguousScopeRefusal(t *testing.T) {
	h1 := newTestHub(nil, 4, false)
	h2 := newTestHub(nil, 4, false)
	dc := &DiscoveryContext{Hubs: []*HubRecord{h1, h2}}

	err := dc.Run(ActionOff, 0xffffffff, nil)
	if !errors.Is(err, ErrAmbiguousScope) {
		t.Fatalf("expected ErrAmbiguousScope, got %v", err)
	}
}

// TestRunToggleTargetsOppositeOfCurrentState exercises the toggle
// target-selection logic end to end against a fake device.
func TestRunToggleTargetsOppositeOfCurrentState(t *testing.T) {
	dev := newFakeUSBDevice(false)
	dev.powered[1] = true
	h := newTestHub(dev, 1, false)
	dc := &DiscoveryContext{Hubs: []*HubRecord{h}}

	if err := dc.Run(ActionToggle, 1, nil); err != nil {
		t.Fatalf("Run: %s", err)
	}
	if dev.powered[1] {
		t.Fatal("toggle against a powered port should have turned it off")
	}
}

// TestRunFlashOnThenOff exercises flash's two-phase sequence: on in
// phase 0, off in phase 1 (spec §8: "flash them (on -> delay -> off)").
func TestRunFlashOnThenOff(t *testing.T) {
	dev := newFakeUSBDevice(false)
	h := newTestHub(dev, 1, false)
	dc := &DiscoveryContext{Hubs: []*HubRecord{h}, Options: Options{Delay: 0}}

	if err := dc.Run(ActionFlash, 1, nil); err != nil {
		t.Fatalf("Run: %s", err)
	}
	if dev.setCalls != 1 || dev.clearCalls != 1 {
		t.Fatalf("flash should set power once then clear it once, got set=%d clear=%d",
			dev.setCalls, dev.clearCalls)
	}
	if dev.powered[1] {
		t.Fatal("flash should leave the port powered off")
	}
}

func TestResetHubReportsFailure(t *testing.T) {
	dev := newFakeUSBDevice(false)
	dev.resetErr = errors.New("reset failed")
	h := newTestHub(dev, 1, false)
	dc := &DiscoveryContext{Hubs: []*HubRecord{h}}

	var got jsonObject
	dc.resetHub(h, func(o jsonObject) { got = o })

	if dev.resetCalls != 1 {
		t.Fatalf("expected Reset to be called once, got %d", dev.resetCalls)
	}
	for _, f := range got {
		if f.Key == "success" && f.Val != jsonBool(false) {
			t.Fatalf("expected success=false in the reset event, got %+v", got)
		}
	}
}
