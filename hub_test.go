/* uhubctl - per-port USB hub power control
 *
 * Hub record tests
 */

package main

import "testing"

func TestLocationString(t *testing.T) {
	cases := []struct {
		bus   int
		ports []int
		want  string
	}{
		{1, nil, "1"},
		{2, []int{1}, "2-1"},
		{2, []int{1, 3}, "2-1.3"},
	}

	for _, c := range cases {
		if got := locationString(c.bus, c.ports); got != c.want {
			t.Errorf("locationString(%d, %v) = %q, want %q", c.bus, c.ports, got, c.want)
		}
	}
}

func TestHubLevel(t *testing.T) {
	h := &HubRecord{PortNumbers: nil}
	if h.Level() != 1 {
		t.Fatalf("root hub level = %d, want 1", h.Level())
	}

	h.PortNumbers = []int{1, 2}
	if h.Level() != 3 {
		t.Fatalf("level = %d, want 3", h.Level())
	}
}

func TestIsPhysicalHub(t *testing.T) {
	skipped := &HubRecord{Actionable: ActionableSkipped}
	if skipped.IsPhysicalHub(false) {
		t.Fatal("a skipped hub must never count as physical")
	}

	usb2 := &HubRecord{Actionable: ActionablePrimary, SuperSpeed: false}
	if !usb2.IsPhysicalHub(false) {
		t.Fatal("a non-SuperSpeed actionable hub must count")
	}

	usb3 := &HubRecord{Actionable: ActionablePartner, SuperSpeed: true}
	if usb3.IsPhysicalHub(false) {
		t.Fatal("a paired SuperSpeed partner must not count again, under non-exact pairing")
	}
	if !usb3.IsPhysicalHub(true) {
		t.Fatal("under --exact, every actionable hub counts on its own")
	}
}

func TestUsbVersionString(t *testing.T) {
	if got := usbVersionString(0x0300); got != "3.00" {
		t.Fatalf("got %q, want 3.00", got)
	}
	if got := usbVersionString(0x0210); got != "2.10" {
		t.Fatalf("got %q, want 2.10", got)
	}
}

func TestHubDescription(t *testing.T) {
	h := &HubRecord{
		VendorID: 0x1d6b, ProductID: 0x0003,
		BcdUSB: 0x0300, NPorts: 4, LPSM: LPSMPerPort,
		Desc: descriptionStrings{Vendor: "Linux Foundation", Product: "3.0 root hub"},
	}
	want := "1d6b:0003 Linux Foundation 3.0 root hub, USB 3.00, 4 ports, ppps"
	if got := h.Description(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
