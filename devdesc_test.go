/* uhubctl - per-port USB hub power control
 *
 * Attached-device class classification tests
 */

package main

import (
	"testing"

	"github.com/google/gousb"
)

// TestClassNameUsesStoredInterfaceClasses is a regression test: a
// class-00 (per-interface) device must report the class of its actual
// interfaces, not fall through to "Composite Device" because the
// interface classes never reached ClassName.
func TestClassNameUsesStoredInterfaceClasses(t *testing.T) {
	ad := attachedDevice{
		Class:        gousb.ClassPerInterface,
		ifaceClasses: []gousb.Class{gousb.ClassHID},
	}

	if got := ad.ClassName(); got != "Human Interface Device" {
		t.Fatalf("got %q, want Human Interface Device", got)
	}
}

func TestClassNameFallsBackToCompositeForUnknownInterfaces(t *testing.T) {
	ad := attachedDevice{
		Class:        gousb.ClassPerInterface,
		ifaceClasses: []gousb.Class{gousb.ClassVendorSpec},
	}

	if got := ad.ClassName(); got != "Composite Device" {
		t.Fatalf("got %q, want Composite Device", got)
	}
}
