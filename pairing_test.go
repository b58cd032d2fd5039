/* uhubctl - per-port USB hub power control
 *
 * Dual-pairing resolver tests
 */

package main

import "testing"

func TestPairScoreIdenticalPath(t *testing.T) {
	h1 := &HubRecord{Bus: 2, PortNumbers: []int{1}, SuperSpeed: true}
	h2 := &HubRecord{Bus: 1, PortNumbers: []int{1}, SuperSpeed: false}

	score := pairScore(h1, h2, false)
	if score < 4 {
		t.Fatalf("identical path should score at least 4, got %d", score)
	}
}

func TestPairScoreSameLengthMinusRoot(t *testing.T) {
	h1 := &HubRecord{Bus: 2, PortNumbers: []int{9, 1}, SuperSpeed: true}
	h2 := &HubRecord{Bus: 1, PortNumbers: []int{4, 1}, SuperSpeed: false}

	score := pairScore(h1, h2, false)
	if score != 2 {
		t.Fatalf("got score %d, want 2 (same length, identical tail)", score)
	}
}

func TestPairScoreNoMatch(t *testing.T) {
	h1 := &HubRecord{Bus: 2, PortNumbers: []int{1, 2}, SuperSpeed: true}
	h2 := &HubRecord{Bus: 1, PortNumbers: []int{5}, SuperSpeed: false}

	score := pairScore(h1, h2, false)
	if score != 1 {
		t.Fatalf("got score %d, want 1 (no tier matched, baseline candidate)", score)
	}
}

func TestPairScoreRpi4BHack(t *testing.T) {
	// USB3 hub one level shallower than its USB2 companion.
	h1 := &HubRecord{Bus: 2, PortNumbers: []int{1}, SuperSpeed: true}
	h2 := &HubRecord{Bus: 1, PortNumbers: []int{1, 1}, SuperSpeed: false}

	if got := pairScore(h1, h2, false); got >= 3 {
		t.Fatalf("the rpi4B tier must not fire when isRpi4B is false, got %d", got)
	}
	if got := pairScore(h1, h2, true); got < 3 {
		t.Fatalf("the rpi4B tier should fire here, got %d", got)
	}
}

func TestPairScoreEmptyPathsNoPanic(t *testing.T) {
	h1 := &HubRecord{Bus: 1, PortNumbers: nil, SuperSpeed: true}
	h2 := &HubRecord{Bus: 1, PortNumbers: nil, SuperSpeed: false}

	// Must not panic on zero-length port paths (root hubs).
	_ = pairScore(h1, h2, true)
}

func TestPairLinksCompanionHubs(t *testing.T) {
	h1 := &HubRecord{
		Bus: 1, PortNumbers: nil, SuperSpeed: false,
		ContainerID: "abc", NPorts: 4, Actionable: ActionablePrimary,
	}
	h2 := &HubRecord{
		Bus: 2, PortNumbers: nil, SuperSpeed: true,
		ContainerID: "abc", NPorts: 4, Actionable: ActionableSkipped,
	}

	dc := &DiscoveryContext{Hubs: []*HubRecord{h1, h2}}
	dc.Pair()

	if h2.Actionable != ActionablePartner {
		t.Fatalf("companion hub should have been marked ActionablePartner, got %v", h2.Actionable)
	}
	if dc.PhysicalHubCount() != 1 {
		t.Fatalf("a paired USB2/USB3 hub should count once, got %d", dc.PhysicalHubCount())
	}
}

func TestPairExactDisablesPairing(t *testing.T) {
	h1 := &HubRecord{
		Bus: 1, ContainerID: "abc", NPorts: 4,
		SuperSpeed: false, Actionable: ActionablePrimary,
	}
	h2 := &HubRecord{
		Bus: 2, ContainerID: "abc", NPorts: 4,
		SuperSpeed: true, Actionable: ActionableSkipped,
	}

	dc := &DiscoveryContext{Hubs: []*HubRecord{h1, h2}, Options: Options{Exact: true}}
	dc.Pair()

	if h2.Actionable != ActionableSkipped {
		t.Fatal("pairing must not run when Exact is set")
	}
	if dc.PhysicalHubCount() != 1 {
		t.Fatalf("under --exact only the primary counts, got %d", dc.PhysicalHubCount())
	}
}
