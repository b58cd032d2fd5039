/* uhubctl - per-port USB hub power control
 *
 * JSON emitter (C9): a tagged-variant value type and a small compact
 * encoder, replacing the original's variadic mkjson builder.
 */

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// jsonValue is any value that knows how to append its own compact JSON
// encoding to a builder. jsonString/jsonInt/jsonFloat/jsonBool/
// jsonObject/jsonArray are the tags of the variant.
type jsonValue interface {
	writeJSON(b *strings.Builder)
}

type jsonString string

func (v jsonString) writeJSON(b *strings.Builder) {
	b.WriteByte('"')
	b.WriteString(jsonEscape(string(v)))
	b.WriteByte('"')
}

type jsonInt int64

func (v jsonInt) writeJSON(b *strings.Builder) { fmt.Fprintf(b, "%d", int64(v)) }

type jsonFloat float64

func (v jsonFloat) writeJSON(b *strings.Builder) {
	b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
}

type jsonBool bool

func (v jsonBool) writeJSON(b *strings.Builder) {
	if v {
		b.WriteString("true")
	} else {
		b.WriteString("false")
	}
}

type jsonField struct {
	Key string
	Val jsonValue
}

// jsonObject is an ordered object: field order is preserved on output,
// matching the original's argument-order-is-output-order builder.
type jsonObject []jsonField

func (o *jsonObject) set(key string, val jsonValue) {
	*o = append(*o, jsonField{Key: key, Val: val})
}

func (o jsonObject) writeJSON(b *strings.Builder) {
	b.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('"')
		b.WriteString(jsonEscape(f.Key))
		b.WriteString("\": ")
		f.Val.writeJSON(b)
	}
	b.WriteByte('}')
}

type jsonArray []jsonValue

func (a jsonArray) writeJSON(b *strings.Builder) {
	b.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			b.WriteString(", ")
		}
		v.writeJSON(b)
	}
	b.WriteByte(']')
}

// encodeJSON renders v as a single compact JSON document.
func encodeJSON(v jsonValue) string {
	var b strings.Builder
	v.writeJSON(&b)
	return b.String()
}

// jsonEscape applies the escaping rules of spec §4.9: quotes,
// backslashes, the named C0 escapes, and \uXXXX for any other
// codepoint below 0x20.
func jsonEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

// portSpeedInfo mirrors get_port_speed: the textual speed label and
// the nominal link rate in bits per second, plus the optional short
// "port_speed" tag the original only sets for 5 Gbps SuperSpeed links.
func portSpeedInfo(ps PortState) (speed string, bps int64, portSpeed string) {
	if ps.SuperSpeed {
		switch ps.SpeedCode {
		case Speed5Gbps:
			return "5000 Mbps", 5_000_000_000, "5gbps"
		case Speed10Gbps:
			return "10 Gbps", 10_000_000_000, ""
		case Speed20Gbps:
			return "20 Gbps", 20_000_000_000, ""
		case Speed40Gbps:
			return "40 Gbps", 40_000_000_000, ""
		case Speed80Gbps:
			return "80 Gbps", 80_000_000_000, ""
		default:
			return "unknown", 0, ""
		}
	}
	switch {
	case ps.HighSpeed:
		return "480 Mbps", 480_000_000, ""
	case ps.LowSpeed:
		return "1.5 Mbps", 1_500_000, ""
	default:
		return "12 Mbps", 12_000_000, ""
	}
}

// statusBitsObject builds the "bits" sub-object: one named boolean per
// modeled status bit.
func statusBitsObject(ps PortState) jsonObject {
	var o jsonObject
	o.set("connection", jsonBool(ps.Connected))
	o.set("enabled", jsonBool(ps.Enabled))
	o.set("powered", jsonBool(ps.Powered))
	o.set("suspended", jsonBool(ps.Suspended))
	o.set("overcurrent", jsonBool(ps.OverCurrent))
	o.set("reset", jsonBool(ps.InReset))
	if !ps.SuperSpeed {
		o.set("lowspeed", jsonBool(ps.LowSpeed))
		o.set("highspeed", jsonBool(ps.HighSpeed))
	}
	o.set("test", jsonBool(ps.Test))
	o.set("indicator", jsonBool(ps.Indicator))
	return o
}

// activeFlagsObject and humanReadableObject both emit only the flags
// that are currently set, keyed by the flag names below (which differ
// from statusBitsObject's keys for enable, suspend and power),
// matching create_status_flags_json / create_human_readable_json.
var flagDescriptions = []struct {
	name string
	desc string
}{
	{"connection", "Device is connected"},
	{"enable", "Port is enabled"},
	{"suspend", "Port is suspended"},
	{"overcurrent", "Over-current condition exists"},
	{"reset", "Port is in reset state"},
	{"power", "Port power is enabled"},
	{"lowspeed", "Low-speed device attached"},
	{"highspeed", "High-speed device attached"},
	{"test", "Port is in test mode"},
	{"indicator", "Port indicator control"},
}

func flagSet(ps PortState, name string) bool {
	switch name {
	case "connection":
		return ps.Connected
	case "enable":
		return ps.Enabled
	case "suspend":
		return ps.Suspended
	case "overcurrent":
		return ps.OverCurrent
	case "reset":
		return ps.InReset
	case "power":
		return ps.Powered
	case "lowspeed":
		return !ps.SuperSpeed && ps.LowSpeed
	case "highspeed":
		return !ps.SuperSpeed && ps.HighSpeed
	case "test":
		return ps.Test
	case "indicator":
		return ps.Indicator
	default:
		return false
	}
}

func activeFlagsObject(ps PortState) jsonObject {
	var o jsonObject
	for _, fd := range flagDescriptions {
		if flagSet(ps, fd.name) {
			o.set(fd.name, jsonBool(true))
		}
	}
	return o
}

func humanReadableObject(ps PortState) jsonObject {
	var o jsonObject
	for _, fd := range flagDescriptions {
		if flagSet(ps, fd.name) {
			o.set(fd.name, jsonString(fd.desc))
		}
	}
	return o
}

// hubInfoObject builds a hub's "hub_info" sub-object.
func hubInfoObject(h *HubRecord) jsonObject {
	var o jsonObject
	o.set("vid", jsonString(fmt.Sprintf("0x%04x", uint16(h.VendorID))))
	o.set("pid", jsonString(fmt.Sprintf("0x%04x", uint16(h.ProductID))))
	o.set("address", jsonInt(int64(h.Address)))
	o.set("usb_version", jsonString(usbVersionString(h.BcdUSB)))
	o.set("nports", jsonInt(int64(h.NPorts)))
	o.set("ppps", jsonString(h.LPSM.String()))
	o.set("ocpm", jsonInt(int64(h.OCPM)))
	return o
}

// portObject builds one entry of a hub's "ports" array, optionally
// including an attached device's identifying fields.
func portObject(port int, ps PortState, dev *attachedDevice) jsonObject {
	var o jsonObject
	o.set("port", jsonInt(int64(port)))

	var status jsonObject
	status.set("raw", jsonInt(int64(ps.RawStatus)))
	status.set("decoded", jsonString(ps.Decoded()))
	status.set("bits", statusBitsObject(ps))
	o.set("status", status)

	o.set("flags", activeFlagsObject(ps))
	o.set("human_readable", humanReadableObject(ps))

	speed, bps, portSpeed := portSpeedInfo(ps)
	o.set("speed", jsonString(speed))
	o.set("speed_bps", jsonInt(bps))
	if portSpeed != "" {
		o.set("port_speed", jsonString(portSpeed))
	}
	if ps.SuperSpeed {
		o.set("link_state", jsonString(ps.LinkState.String()))
	}

	if dev != nil {
		o.set("vid", jsonString(fmt.Sprintf("0x%04x", uint16(dev.VendorID))))
		o.set("pid", jsonString(fmt.Sprintf("0x%04x", uint16(dev.ProductID))))
		if dev.Manufacturer != "" {
			o.set("vendor", jsonString(dev.Manufacturer))
		}
		if dev.Product != "" {
			o.set("product", jsonString(dev.Product))
		}
		o.set("device_class", jsonInt(int64(dev.Class)))
		o.set("class_name", jsonString(dev.ClassName()))
		o.set("usb_version", jsonString(usbVersionString(dev.BcdUSB)))
		o.set("device_version", jsonString(usbVersionString(dev.BcdDevice)))
		if dev.Serial != "" {
			o.set("serial", jsonString(dev.Serial))
		}
		if dev.IsMassStorage {
			o.set("is_mass_storage", jsonBool(true))
		}
		o.set("description", jsonString(dev.Description()))
	}

	return o
}

// hubObject builds one entry of the status document's "hubs" array.
func hubObject(h *HubRecord, ports jsonArray) jsonObject {
	var o jsonObject
	o.set("location", jsonString(h.Location))
	o.set("description", jsonString(h.Description()))
	o.set("hub_info", hubInfoObject(h))
	o.set("ports", ports)
	return o
}

// statusDocument builds the top-level {"hubs": [...]} object for the
// keep (status-only) action.
func statusDocument(hubs jsonArray) jsonObject {
	var o jsonObject
	o.set("hubs", hubs)
	return o
}

// hubStatusEvent, powerChangeEvent, delayEvent and hubResetEvent build
// the four event-stream object kinds of spec §4.9; each is emitted as
// its own line by the orchestrator.
func hubStatusEvent(h *HubRecord) jsonObject {
	var o jsonObject
	o.set("event", jsonString("hub_status"))
	o.set("hub", jsonString(h.Location))
	o.set("description", jsonString(h.Description()))
	return o
}

func powerChangeEvent(h *HubRecord, port int, action string, from, to PortState, success bool) jsonObject {
	var o jsonObject
	o.set("event", jsonString("power_change"))
	o.set("hub", jsonString(h.Location))
	o.set("port", jsonInt(int64(port)))
	o.set("action", jsonString(action))
	o.set("from_state", jsonString(from.Decoded()))
	o.set("to_state", jsonString(to.Decoded()))
	o.set("success", jsonBool(success))
	return o
}

func delayEvent(reason string, durationSeconds float64) jsonObject {
	var o jsonObject
	o.set("event", jsonString("delay"))
	o.set("reason", jsonString(reason))
	o.set("duration_seconds", jsonFloat(durationSeconds))
	return o
}

func hubResetEvent(h *HubRecord, success bool) jsonObject {
	var o jsonObject
	o.set("event", jsonString("hub_reset"))
	o.set("hub", jsonString(h.Location))
	o.set("success", jsonBool(success))
	status := "failed"
	if success {
		status = "successful"
	}
	o.set("status", jsonString(status))
	return o
}
