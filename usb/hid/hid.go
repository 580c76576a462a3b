// Package hid builds binary HID report descriptors from a small
// declarative item DSL, the way a USB HID class driver would hand-encode
// them, without re-deriving the short-item bit layout at every call site.
package hid

import "bytes"

// Item prefix tag types, per the HID 1.11 spec §6.2.2.
const (
	ItemTypeMain   = 0x00
	ItemTypeGlobal = 0x01
	ItemTypeLocal  = 0x02
)

// Main item data flag bits (Input/Output/Feature).
const (
	MainConst     = 1 << 0
	MainVar       = 1 << 1
	MainRel       = 1 << 2
	MainWrap      = 1 << 3
	MainNonLinear = 1 << 4
	MainNoPref    = 1 << 5
	MainNullState = 1 << 6
	MainVolatile  = 1 << 7
	MainBufBytes  = 1 << 8

	// MainData/MainAbs/MainArray are zero-valued complements of MainConst,
	// MainRel and MainVar respectively; named so call sites read as the
	// HID spec table does ("Data, Variable, Absolute").
	MainData  = 0
	MainAbs   = 0
	MainArray = 0
)

// Usage pages.
const (
	UsagePageGenericDesktop = 0x01
	UsagePageKeyboard       = 0x07
	UsagePageLEDs           = 0x08
	UsagePageButton         = 0x09
	UsagePageConsumer       = 0x0C
)

// Generic desktop usages.
const (
	UsagePointer  = 0x01
	UsageMouse    = 0x02
	UsageKeyboard = 0x06
	UsageGamePad  = 0x05
	UsageX        = 0x30
	UsageY        = 0x31
	UsageZ        = 0x32
	UsageRz       = 0x35
	UsageWheel    = 0x38
	UsageACPan    = 0x0238
)

// Collection kinds.
const (
	CollectionPhysical   = 0x00
	CollectionApplication = 0x01
)

// Item is anything that can serialize itself into the short-item byte
// stream of a HID report descriptor.
type Item interface {
	Build() []byte
}

// Data holds the literal payload bytes of an AnyItem, least-significant
// byte first, matching how HID short items pack 1/2/4-byte data.
type Data []byte

func shortItem(tag byte, itemType byte, data []byte) []byte {
	var size byte
	switch len(data) {
	case 0:
		size = 0
	case 1:
		size = 1
	case 2:
		size = 2
	case 4:
		size = 3
	default:
		// HID short items only carry 0/1/2/4 data bytes; anything else
		// is a caller bug in a hand-built descriptor.
		panic("hid: short item data must be 0, 1, 2 or 4 bytes")
	}
	prefix := (tag << 4) | (itemType << 2) | size
	return append([]byte{prefix}, data...)
}

func encodeUint(v uint32) []byte {
	switch {
	case v == 0:
		return nil
	case v <= 0xFF:
		return []byte{byte(v)}
	case v <= 0xFFFF:
		return []byte{byte(v), byte(v >> 8)}
	default:
		return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	}
}

func encodeInt(v int32) []byte {
	switch {
	case v >= 0 && v <= 0xFF:
		return []byte{byte(v)}
	case v >= -0x80 && v < 0:
		return []byte{byte(v)}
	case v >= -0x8000 && v <= 0x7FFF:
		return []byte{byte(v), byte(v >> 8)}
	default:
		return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	}
}

// AnyItem emits an arbitrary short item, for tags without a dedicated
// builder (e.g. the Report ID global item, tag 0x08).
type AnyItem struct {
	Type byte
	Tag  byte
	Data Data
}

func (i AnyItem) Build() []byte { return shortItem(i.Tag, i.Type, i.Data) }

// UsagePage is the global Usage Page item (tag 0x0).
type UsagePage struct{ Page uint32 }

func (i UsagePage) Build() []byte { return shortItem(0x0, ItemTypeGlobal, encodeUint(i.Page)) }

// LogicalMinimum is the global Logical Minimum item (tag 0x1).
type LogicalMinimum struct{ Min int32 }

func (i LogicalMinimum) Build() []byte { return shortItem(0x1, ItemTypeGlobal, encodeInt(i.Min)) }

// LogicalMaximum is the global Logical Maximum item (tag 0x2).
type LogicalMaximum struct{ Max int32 }

func (i LogicalMaximum) Build() []byte { return shortItem(0x2, ItemTypeGlobal, encodeInt(i.Max)) }

// ReportSize is the global Report Size item (tag 0x7), in bits.
type ReportSize struct{ Bits uint32 }

func (i ReportSize) Build() []byte { return shortItem(0x7, ItemTypeGlobal, encodeUint(i.Bits)) }

// ReportCount is the global Report Count item (tag 0x9).
type ReportCount struct{ Count uint32 }

func (i ReportCount) Build() []byte { return shortItem(0x9, ItemTypeGlobal, encodeUint(i.Count)) }

// Usage is the local Usage item (tag 0x0).
type Usage struct{ Usage uint32 }

func (i Usage) Build() []byte { return shortItem(0x0, ItemTypeLocal, encodeUint(i.Usage)) }

// UsageMinimum is the local Usage Minimum item (tag 0x1).
type UsageMinimum struct{ Min uint32 }

func (i UsageMinimum) Build() []byte { return shortItem(0x1, ItemTypeLocal, encodeUint(i.Min)) }

// UsageMaximum is the local Usage Maximum item (tag 0x2).
type UsageMaximum struct{ Max uint32 }

func (i UsageMaximum) Build() []byte { return shortItem(0x2, ItemTypeLocal, encodeUint(i.Max)) }

// Collection opens a Collection main item (tag 0xA) and emits its
// children followed by an End Collection item (tag 0xC).
type Collection struct {
	Kind  byte
	Items []Item
}

func (i Collection) Build() []byte {
	var b bytes.Buffer
	b.Write(shortItem(0xA, ItemTypeMain, []byte{i.Kind}))
	for _, item := range i.Items {
		b.Write(item.Build())
	}
	b.Write(shortItem(0xC, ItemTypeMain, nil))
	return b.Bytes()
}

// Input is the main Input item (tag 0x8).
type Input struct{ Flags uint32 }

func (i Input) Build() []byte { return shortItem(0x8, ItemTypeMain, encodeUint(i.Flags)) }

// Output is the main Output item (tag 0x9).
type Output struct{ Flags uint32 }

func (i Output) Build() []byte { return shortItem(0x9, ItemTypeMain, encodeUint(i.Flags)) }

// Feature is the main Feature item (tag 0xB).
type Feature struct{ Flags uint32 }

func (i Feature) Build() []byte { return shortItem(0xB, ItemTypeMain, encodeUint(i.Flags)) }

// Report is a full HID report descriptor built from top-level items.
type Report struct {
	Items []Item
}

// Bytes serializes the full descriptor into wire bytes suitable for a
// uhid UHID_CREATE2 rd_data payload or a USB HID class report descriptor.
func (r Report) Bytes() []byte {
	var b bytes.Buffer
	for _, item := range r.Items {
		b.Write(item.Build())
	}
	return b.Bytes()
}
