// Package uhid speaks the kernel's /dev/uhid character-device protocol
// directly: it is the transport a target device uses to present itself
// to the rest of the system as a real HID gamepad, the same way the
// teacher's usbip package spoke the USB/IP wire protocol to present a
// device to a USB/IP client. The wire layout mirrors
// include/uapi/linux/uhid.h.
package uhid

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Event types, matching enum uhid_event_type.
const (
	EventCreate          = 0
	EventDestroy         = 1
	EventStart           = 2
	EventStop            = 3
	EventOpen            = 4
	EventClose           = 5
	EventOutput          = 6
	eventOutputEVObsolete = 7
	eventInputObsolete    = 8
	EventGetReport       = 9
	EventGetReportReply  = 10
	EventCreate2         = 11
	EventInput2          = 12
	EventSetReport       = 13
	EventSetReportReply  = 14
)

// Bus types accepted by Create2.Bus, matching linux/input.h BUS_*.
const (
	BusUSB      uint16 = 0x03
	BusBluetooth uint16 = 0x05
)

// Report types for Get/SetReport, matching enum uhid_report_type.
const (
	ReportTypeFeature = 0
	ReportTypeOutput  = 1
	ReportTypeInput   = 2
)

const (
	dataMax    = 4096
	nameMax    = 128
	physMax    = 64
	uniqMax    = 64
	devicePath = "/dev/uhid"
)

// Create2 describes a new virtual HID device, mirroring struct uhid_create2_req.
type Create2 struct {
	Name    string
	Phys    string
	Uniq    string
	Bus     uint16
	Vendor  uint32
	Product uint32
	Version uint32
	Country uint32
	// RD is the HID report descriptor bytes (e.g. hid.Report{...}.Bytes()).
	RD []byte
}

func fixedString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func (c Create2) marshal() []byte {
	var b bytes.Buffer
	nameBuf := make([]byte, nameMax)
	physBuf := make([]byte, physMax)
	uniqBuf := make([]byte, uniqMax)
	fixedString(nameBuf, c.Name)
	fixedString(physBuf, c.Phys)
	fixedString(uniqBuf, c.Uniq)

	b.Write(nameBuf)
	b.Write(physBuf)
	b.Write(uniqBuf)
	_ = binary.Write(&b, binary.LittleEndian, uint16(len(c.RD)))
	_ = binary.Write(&b, binary.LittleEndian, c.Bus)
	_ = binary.Write(&b, binary.LittleEndian, c.Vendor)
	_ = binary.Write(&b, binary.LittleEndian, c.Product)
	_ = binary.Write(&b, binary.LittleEndian, c.Version)
	_ = binary.Write(&b, binary.LittleEndian, c.Country)
	rd := make([]byte, dataMax)
	copy(rd, c.RD)
	b.Write(rd)
	return b.Bytes()
}

// Input2 carries one input report, mirroring struct uhid_input2_req.
type Input2 struct {
	Data []byte
}

func (i Input2) marshal() []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, uint16(len(i.Data)))
	buf := make([]byte, dataMax)
	copy(buf, i.Data)
	b.Write(buf)
	return b.Bytes()
}

// GetReportReply answers a host GetReport request, mirroring struct
// uhid_get_report_reply_req.
type GetReportReply struct {
	ID   uint32
	Err  uint16
	Data []byte
}

func (r GetReportReply) marshal() []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, r.ID)
	_ = binary.Write(&b, binary.LittleEndian, r.Err)
	_ = binary.Write(&b, binary.LittleEndian, uint16(len(r.Data)))
	buf := make([]byte, dataMax)
	copy(buf, r.Data)
	b.Write(buf)
	return b.Bytes()
}

// SetReportReply answers a host SetReport request, mirroring struct
// uhid_set_report_reply_req.
type SetReportReply struct {
	ID  uint32
	Err uint16
}

func (r SetReportReply) marshal() []byte {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, r.ID)
	_ = binary.Write(&b, binary.LittleEndian, r.Err)
	return b.Bytes()
}

// GetReportRequest is a host->device feature/input report pull, decoded
// from struct uhid_get_report_req.
type GetReportRequest struct {
	ID    uint32
	RNum  uint8
	RType uint8
}

// SetReportRequest is a host->device feature/output report push, decoded
// from struct uhid_set_report_req.
type SetReportRequest struct {
	ID    uint32
	RNum  uint8
	RType uint8
	Data  []byte
}

// OutputRequest is an unsolicited host->device OUTPUT report (e.g.
// rumble/LED writes on an interrupt OUT endpoint equivalent), decoded
// from struct uhid_output_req.
type OutputRequest struct {
	Data  []byte
	RType uint8
}

func readEventPayload(eventType uint32, payload []byte) (any, error) {
	r := bytes.NewReader(payload)
	switch eventType {
	case EventGetReport:
		var id uint32
		var rnum, rtype uint8
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &rnum); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &rtype); err != nil {
			return nil, err
		}
		return GetReportRequest{ID: id, RNum: rnum, RType: rtype}, nil
	case EventSetReport:
		var id uint32
		var rnum, rtype uint8
		var size uint16
		if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &rnum); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &rtype); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		data := make([]byte, size)
		if _, err := r.Read(data); err != nil && size > 0 {
			return nil, err
		}
		return SetReportRequest{ID: id, RNum: rnum, RType: rtype, Data: data}, nil
	case EventOutput:
		full := make([]byte, dataMax)
		if _, err := r.Read(full); err != nil {
			return nil, err
		}
		var size uint16
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, err
		}
		var rtype uint8
		if err := binary.Read(r, binary.LittleEndian, &rtype); err != nil {
			return nil, err
		}
		if int(size) > len(full) {
			size = uint16(len(full))
		}
		return OutputRequest{Data: full[:size], RType: rtype}, nil
	case EventOpen, EventClose, EventStart, EventStop:
		return nil, nil
	default:
		return nil, fmt.Errorf("uhid: unexpected event type %d from kernel", eventType)
	}
}

// Device is one open /dev/uhid file descriptor hosting exactly one
// virtual HID device, created via Create2 and torn down via Destroy.
type Device struct {
	f *os.File
}

// Open opens /dev/uhid and sends the UHID_CREATE2 event describing the
// device. The kernel does not reply to CREATE2; subsequent ReadEvent
// calls deliver UHID_START/UHID_OPEN once a driver binds.
func Open(create Create2) (*Device, error) {
	fd, err := unix.Open(devicePath, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("uhid: open %s: %w", devicePath, err)
	}
	d := &Device{f: os.NewFile(uintptr(fd), devicePath)}
	if err := d.write(EventCreate2, create.marshal()); err != nil {
		_ = d.f.Close()
		return nil, fmt.Errorf("uhid: create2: %w", err)
	}
	return d, nil
}

func (d *Device) write(eventType uint32, payload []byte) error {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.LittleEndian, eventType)
	b.Write(payload)
	_, err := d.f.Write(b.Bytes())
	return err
}

// SendInput writes one input report to the kernel, to be delivered to
// whatever userspace program has the resulting /dev/input/eventN open.
func (d *Device) SendInput(data []byte) error {
	return d.write(EventInput2, Input2{Data: data}.marshal())
}

// ReplyGetReport answers a prior UHID_GET_REPORT with feature/input data.
func (d *Device) ReplyGetReport(id uint32, errCode uint16, data []byte) error {
	return d.write(EventGetReportReply, GetReportReply{ID: id, Err: errCode, Data: data}.marshal())
}

// ReplySetReport acknowledges a prior UHID_SET_REPORT.
func (d *Device) ReplySetReport(id uint32, errCode uint16) error {
	return d.write(EventSetReportReply, SetReportReply{ID: id, Err: errCode}.marshal())
}

// eventHeaderSize covers the leading uhid_event.type field.
const eventHeaderSize = 4

// eventBufSize must cover the largest union member (uhid_create2_req).
const eventBufSize = eventHeaderSize + nameMax + physMax + uniqMax + 2 + 2 + 4*4 + dataMax

// ReadEvent blocks until the kernel delivers the next uhid_event and
// decodes it into one of GetReportRequest, SetReportRequest,
// OutputRequest, or nil for lifecycle events (Open/Close/Start/Stop)
// that carry no payload the caller needs to act on.
func (d *Device) ReadEvent() (eventType uint32, payload any, err error) {
	buf := make([]byte, eventBufSize)
	n, err := d.f.Read(buf)
	if err != nil {
		return 0, nil, err
	}
	if n < eventHeaderSize {
		return 0, nil, fmt.Errorf("uhid: short read (%d bytes)", n)
	}
	eventType = binary.LittleEndian.Uint32(buf[:4])
	payload, err = readEventPayload(eventType, buf[4:n])
	return eventType, payload, err
}

// Destroy tells the kernel to tear down the virtual device.
func (d *Device) Destroy() error {
	return d.write(EventDestroy, nil)
}

// Close releases the underlying file descriptor. Callers should call
// Destroy first to cleanly unregister the device; Close alone also
// triggers kernel-side teardown as a side effect of the fd closing.
func (d *Device) Close() error {
	return d.f.Close()
}
