/* uhubctl - per-port USB hub power control
 *
 * Platform-override wiring tests
 */

package main

import "testing"

// TestApplyPlatformOverridesFixesDownstreamGangedHub is a regression
// test for the RPi4B onboard 2109:3431 hub: it sits one level below
// the SoC's 1d6b root hubs, so it must still pick up the
// GANGED->PER_PORT override despite having a non-empty port path.
func TestApplyPlatformOverridesFixesDownstreamGangedHub(t *testing.T) {
	rules, err := loadPlatformRules("")
	if err != nil {
		t.Fatalf("loadPlatformRules: %s", err)
	}

	h := &HubRecord{
		PortNumbers: []int{1, 1}, // downstream: non-empty port path, not a root hub
		VendorID:    0x2109,
		ProductID:   0x3431,
		NPorts:      4,
		LPSM:        LPSMGanged,
	}

	applyPlatformOverrides(h, rules, "Raspberry Pi 4 Model B Rev 1.4")

	if h.LPSM != LPSMPerPort {
		t.Fatalf("expected the onboard hub's GANGED report to be overridden to PER_PORT, got %v", h.LPSM)
	}
}

// TestApplyPlatformOverridesRootOnlyRuleSkipsDownstreamHub guards the
// other direction: a root-only rule (the rpi4b root-hub container-id
// synthesis) must not fire against a downstream hub even if its
// VID:PID happens to match.
func TestApplyPlatformOverridesRootOnlyRuleSkipsDownstreamHub(t *testing.T) {
	rules, err := loadPlatformRules("")
	if err != nil {
		t.Fatalf("loadPlatformRules: %s", err)
	}

	h := &HubRecord{
		PortNumbers: []int{1}, // downstream, not a root hub
		VendorID:    0x1d6b,
		ProductID:   0x0003,
		NPorts:      4,
		ContainerID: "",
	}

	applyPlatformOverrides(h, rules, "Raspberry Pi 4 Model B Rev 1.4")

	if h.ContainerID != "" {
		t.Fatalf("root-only container-id synthesis must not apply to a downstream hub, got %q", h.ContainerID)
	}
}

// TestApplyPlatformOverridesSynthesizesRootContainerID is the positive
// case: a true root hub does pick up the synthetic container id.
func TestApplyPlatformOverridesSynthesizesRootContainerID(t *testing.T) {
	rules, err := loadPlatformRules("")
	if err != nil {
		t.Fatalf("loadPlatformRules: %s", err)
	}

	h := &HubRecord{
		PortNumbers: nil,
		VendorID:    0x1d6b,
		ProductID:   0x0003,
		NPorts:      4,
	}

	applyPlatformOverrides(h, rules, "Raspberry Pi 4 Model B Rev 1.4")

	if h.ContainerID != "5cf3ee30d5074925b001802d79434c30" {
		t.Fatalf("expected the rpi4b root-hub synthetic container id, got %q", h.ContainerID)
	}
}
