/* uhubctl - per-port USB hub power control
 *
 * Dual-pairing resolver (C6)
 */

package main

// Pair finds, for every actionable hub with a non-empty container ID,
// the best USB2/USB3 companion and marks it actionable as a derived
// partner (ActionablePartner). Skipped entirely when Exact is set.
func (dc *DiscoveryContext) Pair() {
	if dc.Options.Exact {
		return
	}

	isRpi4B := hostModelIs(dc, "Raspberry Pi 4 Model B")

	for i, h1 := range dc.Hubs {
		if h1.Actionable != ActionablePrimary || h1.ContainerID == "" {
			continue
		}

		var best *HubRecord
		bestScore := -1

		for j, h2 := range dc.Hubs {
			if i == j {
				continue
			}
			if h1.SuperSpeed == h2.SuperSpeed {
				continue
			}
			if h2.ContainerID == "" || h1.ContainerID != h2.ContainerID {
				continue
			}
			if h1.NPorts != h2.NPorts && h1.NPorts+h2.NPorts > 3 {
				continue
			}
			if h1.Desc.Serial != "" && h2.Desc.Serial != "" && h1.Desc.Serial != h2.Desc.Serial {
				continue
			}

			score := pairScore(h1, h2, isRpi4B)
			if score > bestScore {
				bestScore = score
				best = h2
			}
		}

		if best != nil && best.Actionable == ActionableSkipped {
			best.Actionable = ActionablePartner
		}
	}
}

// pairScore implements the 5-tier tie-break ranking of spec §4.6.
func pairScore(h1, h2 *HubRecord, isRpi4B bool) int {
	score := 1 // any surviving candidate scores at least 1

	p1, p2 := h1.PortNumbers, h2.PortNumbers
	l1, l2 := len(p1), len(p2)
	s1, s2 := boolToInt(h1.SuperSpeed), boolToInt(h2.SuperSpeed)

	// Tier 2: same length, identical after dropping the topmost level.
	if l1 >= 1 && l1 == l2 && intSliceEqual(p1[1:], p2[1:]) {
		score = max(score, 2)
	}

	// Tier 3: Raspberry Pi 4B hack (USB2 hub one level deeper than USB3).
	if isRpi4B && l1+s1 == l2+s2 && l1 >= s2 && l2 >= s1 &&
		intSliceEqual(p1[s2:l1], p2[s1:l2]) {
		score = max(score, 3)
	}

	// Tier 4: identical full path.
	if l1 == l2 && intSliceEqual(p1, p2) {
		score = max(score, 4)

		// Tier 5: identical path and Linux-specific sibling-bus heuristic.
		if h1.Bus-s1 == h2.Bus-s2 {
			score = max(score, 5)
		}
	}

	return score
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func intSliceEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// hostModelIs reports whether the running host's model string has the
// given prefix, used to gate the Raspberry Pi 4B pairing tie-break.
func hostModelIs(dc *DiscoveryContext, prefix string) bool {
	model := hostModel()
	return len(model) >= len(prefix) && model[:len(prefix)] == prefix
}

// PhysicalHubCount returns the number of actionable hubs that count
// toward the "one physical hub at a time" rule (spec §4.6/§4.8).
func (dc *DiscoveryContext) PhysicalHubCount() int {
	n := 0
	for _, h := range dc.Hubs {
		if h.IsPhysicalHub(dc.Options.Exact) {
			n++
		}
	}
	return n
}
