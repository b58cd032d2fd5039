/* uhubctl - per-port USB hub power control
 *
 * Tests for the platform rule table
 */

package main

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTempFile writes content to a file under t.TempDir() and returns
// its path.
func writeTempFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "quirks.conf")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writeTempFile: %s", err)
	}
	return path
}

func TestLoadPlatformRulesBuiltin(t *testing.T) {
	db, err := loadPlatformRules("")
	if err != nil {
		t.Fatalf("loadPlatformRules: %s", err)
	}

	if len(db.rules) != 4 {
		t.Fatalf("expected 4 built-in rule sections, got %d", len(db.rules))
	}
}

func TestPlatformRuleMatchRpi4bRootHub(t *testing.T) {
	db, err := loadPlatformRules("")
	if err != nil {
		t.Fatalf("loadPlatformRules: %s", err)
	}

	r := db.match("Raspberry Pi 4 Model B Rev 1.4", 0x1d6b, 0x0003, 4, true)
	if r == nil {
		t.Fatal("expected a match for rpi4b root hub")
	}
	if r.Name != "rpi4b-root-hub" {
		t.Errorf("expected rule rpi4b-root-hub, got %s", r.Name)
	}
	if r.ContainerID != "5cf3ee30d5074925b001802d79434c30" {
		t.Errorf("unexpected container id %s", r.ContainerID)
	}
}

func TestPlatformRuleMatchRpi4bGanged(t *testing.T) {
	db, err := loadPlatformRules("")
	if err != nil {
		t.Fatalf("loadPlatformRules: %s", err)
	}

	// The onboard 2109:3431 hub is downstream of the SoC root hubs, so
	// this must match with isRoot=false — that's the real-hardware case.
	r := db.match("Raspberry Pi 4 Model B Rev 1.4", 0x2109, 0x3431, 4, false)
	if r == nil {
		t.Fatal("expected a match for rpi4b ganged override on a downstream hub")
	}
	if !r.ForceLPSMSet || r.ForceLPSM != LPSMPerPort {
		t.Errorf("expected force-lpsm=per_port, got set=%v val=%v",
			r.ForceLPSMSet, r.ForceLPSM)
	}

	// Root-only rules must not bleed over: a root hub presenting the
	// same VID:PID should not match a rule meant for the downstream one
	// unless its own root-only flag says otherwise. The ganged rule
	// itself is root-only=false, so it matches either way...
	if r2 := db.match("Raspberry Pi 4 Model B Rev 1.4", 0x2109, 0x3431, 4, true); r2 == nil {
		t.Fatal("root-only=false rule should also match when isRoot is true")
	}

	// ...but the root-hub rule must not match a downstream hub.
	if r3 := db.match("Raspberry Pi 4 Model B Rev 1.4", 0x1d6b, 0x0003, 4, false); r3 != nil {
		t.Errorf("rpi4b-root-hub is root-only and must not match a downstream hub, got %s", r3.Name)
	}
}

func TestPlatformRuleMatchRpi5Pair(t *testing.T) {
	db, err := loadPlatformRules("")
	if err != nil {
		t.Fatalf("loadPlatformRules: %s", err)
	}

	usb2 := db.match("Raspberry Pi 5", 0x1d6b, 0x0002, 2, true)
	usb3 := db.match("Raspberry Pi 5", 0x1d6b, 0x0003, 1, true)

	if usb2 == nil || usb3 == nil {
		t.Fatal("expected both halves of the rpi5 root pair to match")
	}
	if usb2.Name != "rpi5-root-pair" || usb3.Name != "rpi5-root-pair" {
		t.Errorf("expected both halves named rpi5-root-pair, got %s / %s",
			usb2.Name, usb3.Name)
	}
	if usb2.ContainerID == "" || usb2.ContainerID != usb3.ContainerID {
		t.Errorf("expected matching synthetic container ids, got %s / %s",
			usb2.ContainerID, usb3.ContainerID)
	}
}

func TestPlatformRuleNoMatch(t *testing.T) {
	db, err := loadPlatformRules("")
	if err != nil {
		t.Fatalf("loadPlatformRules: %s", err)
	}

	if r := db.match("Generic PC", 0x0424, 0x2514, 4, true); r != nil {
		t.Errorf("expected no match for a generic hub, got %s", r.Name)
	}
}

func TestPlatformRuleUserOverrideFile(t *testing.T) {
	path := writeTempFile(t, `
[custom-hub]
hwid = 0424:2514
force-lpsm = per_port
`)

	db, err := loadPlatformRules(path)
	if err != nil {
		t.Fatalf("loadPlatformRules: %s", err)
	}

	r := db.match("", 0x0424, 0x2514, 0, true)
	if r == nil || r.Name != "custom-hub" {
		t.Fatalf("expected custom-hub override to match, got %v", r)
	}
}
