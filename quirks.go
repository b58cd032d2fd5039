/* uhubctl - per-port USB hub power control
 *
 * Platform rule table: model/vendor overrides for hubs whose firmware
 * doesn't report a usable container ID, or misreports its power
 * switching mode
 */

package main

import (
	_ "embed"
	"fmt"

	"gopkg.in/ini.v1"
)

// platformRule is a single named override, matched against a hub's
// host model string, vendor:product and port count after the generic
// decode rules in decodeHub have run (see applyPlatformOverrides).
type platformRule struct {
	Name         string // Rule name, for diagnostics
	ModelPattern string // Glob pattern against hostModel()
	HWID         *HWIDPattern
	NPorts       int    // Required nports, 0 means "any"
	RootOnly     bool   // Whether this rule only matches root hubs
	ForceLPSM    LPSM   // Switching mode to force, if ForceLPSMSet
	ForceLPSMSet bool   // Whether ForceLPSM should be applied
	ContainerID  string // Synthetic container ID to assign, if any
}

// platformRuleDb holds every loaded rule, built-in plus any merged in
// from a --quirks-file override.
type platformRuleDb struct {
	rules []*platformRule
}

//go:embed quirks_default.ini
var quirksDefaultINI string

// loadPlatformRules parses the embedded default rule table and, if
// path is non-empty, merges an additional user-supplied file on top.
func loadPlatformRules(path string) (*platformRuleDb, error) {
	db := &platformRuleDb{}

	if err := db.merge([]byte(quirksDefaultINI)); err != nil {
		return nil, fmt.Errorf("built-in quirks table: %s", err)
	}

	if path != "" {
		if err := db.merge(path); err != nil {
			return nil, fmt.Errorf("%s: %s", path, err)
		}
	}

	return db, nil
}

// merge parses an INI source (a []byte document, or a file path
// string) and appends its [section] rules. The section heading is the
// rule's identity for INI uniqueness; an optional "name" key gives the
// rule's diagnostic name when two sections belong to one logical rule
// (e.g. the two halves of a Raspberry Pi 5 root-hub pair). Recognized
// keys are model, hwid, nports, root-only, force-lpsm and container-id.
// root-only defaults to true: most platform quirks (synthetic
// container IDs) only make sense on a root hub, but a rule like the
// RPi4B's onboard 2109:3431 GANGED->PER_PORT fix targets a downstream
// hub and must set root-only = false to ever match.
func (db *platformRuleDb) merge(source interface{}) error {
	file, err := ini.Load(source)
	if err != nil {
		return err
	}

	for _, sec := range file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}

		rule := &platformRule{Name: sec.Name(), RootOnly: true}
		if k := sec.Key("name"); k.String() != "" {
			rule.Name = k.String()
		}

		if k := sec.Key("root-only"); k.String() != "" {
			b, err := k.Bool()
			if err != nil {
				return fmt.Errorf("[%s]: root-only = %q: %s",
					sec.Name(), k.String(), err)
			}
			rule.RootOnly = b
		}

		if k := sec.Key("model"); k.String() != "" {
			rule.ModelPattern = k.String()
		}

		if k := sec.Key("hwid"); k.String() != "" {
			rule.HWID = ParseHWIDPattern(k.String())
			if rule.HWID == nil {
				return fmt.Errorf("[%s]: hwid = %q: malformed",
					sec.Name(), k.String())
			}
		}

		if k := sec.Key("nports"); k.String() != "" {
			n, err := k.Int()
			if err != nil {
				return fmt.Errorf("[%s]: nports = %q: %s",
					sec.Name(), k.String(), err)
			}
			rule.NPorts = n
		}

		if k := sec.Key("force-lpsm"); k.String() != "" {
			switch k.String() {
			case "per_port":
				rule.ForceLPSM = LPSMPerPort
			case "ganged":
				rule.ForceLPSM = LPSMGanged
			default:
				return fmt.Errorf("[%s]: force-lpsm = %q: must be per_port or ganged",
					sec.Name(), k.String())
			}
			rule.ForceLPSMSet = true
		}

		if k := sec.Key("container-id"); k.String() != "" {
			id := containerIDNormalize(k.String())
			if id == "" {
				return fmt.Errorf("[%s]: container-id = %q: malformed",
					sec.Name(), k.String())
			}
			rule.ContainerID = id
		}

		db.rules = append(db.rules, rule)
	}

	return nil
}

// match returns the rule applicable to a hub with the given model
// string, vendor:product, port count and root/downstream position, or
// nil. isRoot is false for any hub with a non-empty port path; rules
// marked RootOnly never match such a hub.
func (db *platformRuleDb) match(model string, vid, pid uint16, nports int, isRoot bool) *platformRule {
	var best *platformRule
	bestWeight := -1

	for _, r := range db.rules {
		if r.RootOnly && !isRoot {
			continue
		}
		if r.NPorts != 0 && r.NPorts != nports {
			continue
		}

		weight := 0
		if r.HWID != nil {
			w := r.HWID.Match(vid, pid)
			if w < 0 {
				continue
			}
			weight += w
		}

		if r.ModelPattern != "" {
			w := GlobMatch(model, r.ModelPattern)
			if w < 0 {
				continue
			}
			weight += w
		}

		if weight > bestWeight {
			best = r
			bestWeight = weight
		}
	}

	return best
}
