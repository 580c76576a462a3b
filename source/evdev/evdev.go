//go:build linux

// Package evdev decodes a kernel evdev gamepad/keyboard node
// (/dev/input/eventN) into the normalized capability.Event stream, and
// round-trips force-feedback uploads back onto that same node.
package evdev

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/andrieee44/mylib/linux/input"
	"github.com/andrieee44/mylib/linux/ioctl"
	"golang.org/x/sys/unix"

	"github.com/ShadowBlip/InputPlumber-sub000/capability"
	"github.com/ShadowBlip/InputPlumber-sub000/composite"
)

// rawEventSize is the on-wire size of one struct input_event on a 64-bit
// kernel: two 8-byte timeval fields plus type/code/value.
const rawEventSize = 24

// Device is one opened evdev node, owned exclusively by the composite
// device that added it as a source.
type Device struct {
	path string
	f    *os.File

	mu      sync.Mutex
	hatPrev map[uint16]int32
}

// Open opens path for exclusive read/write access and grabs it via
// EVIOCGRAB so the kernel stops delivering these events to any other
// listener (X11, another compositor) while this composite device owns it.
func Open(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("evdev: open %s: %w", path, err)
	}
	f := os.NewFile(uintptr(fd), path)
	grab := 1
	if err := ioctl.Any(f.Fd(), input.EVIOCGRAB(), &grab); err != nil {
		f.Close()
		return nil, composite.Classify(composite.KindDeviceGone, fmt.Errorf("evdev: grab %s: %w", path, err))
	}
	return &Device{path: path, f: f, hatPrev: make(map[uint16]int32)}, nil
}

// ID reports the node path this device was opened from.
func (d *Device) ID() string { return d.path }

// AbsInfo reports the kernel's calibration for one ABS_* axis, used to
// normalize raw axis values into the capability layer's [-1,1]/[0,1]
// ranges.
func (d *Device) AbsInfo(code uint16) (input.AbsInfo, error) {
	var info input.AbsInfo
	if err := ioctl.Any(d.f.Fd(), input.EVIOCGABS(uint(code)), &info); err != nil {
		return input.AbsInfo{}, composite.Classify(composite.KindTransientIO, err)
	}
	return info, nil
}

// Run reads raw input_event records until ctx is cancelled or the node
// disappears, decoding each into zero or more capability.Events. A
// pending Read is unblocked on cancellation by setting an
// already-elapsed read deadline, which os.File honors without requiring
// the fd itself to be closed out from under the goroutine.
func (d *Device) Run(ctx context.Context, out chan<- capability.Event) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = d.f.SetReadDeadline(time.Unix(0, 1))
		case <-done:
		}
	}()

	buf := make([]byte, rawEventSize)
	absCache := make(map[uint16]input.AbsInfo)

	for {
		if ctx.Err() != nil {
			return nil
		}
		n, err := io.ReadFull(d.f, buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			if errors.Is(err, syscall.ENODEV) {
				return composite.Classify(composite.KindDeviceGone, err)
			}
			return composite.Classify(composite.KindTransientIO, err)
		}
		if n != rawEventSize {
			return composite.Classify(composite.KindProtocol, fmt.Errorf("evdev: short read %d bytes", n))
		}

		evType := binary.LittleEndian.Uint16(buf[16:18])
		code := binary.LittleEndian.Uint16(buf[18:20])
		value := int32(binary.LittleEndian.Uint32(buf[20:24]))

		for _, ev := range d.decode(evType, code, value, absCache) {
			select {
			case out <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func (d *Device) decode(evType, code uint16, value int32, absCache map[uint16]input.AbsInfo) []capability.Event {
	switch evType {
	case EVKey:
		if cap, ok := buttonByCode[code]; ok {
			return []capability.Event{capability.NewEvent(d.path, cap, capability.NewBool(value != 0))}
		}
		return nil
	case EVAbs:
		if hp, ok := hatByCode[code]; ok {
			return d.decodeHat(code, value, hp)
		}
		if sa, ok := stickAxisByCode[code]; ok {
			info, err := d.cachedAbsInfo(code, absCache)
			if err != nil {
				return nil
			}
			norm := normalizeSigned(value, info)
			if sa.isX {
				return []capability.Event{capability.NewEvent(d.path, sa.cap, capability.NewVector2(norm, true, 0, false))}
			}
			return []capability.Event{capability.NewEvent(d.path, sa.cap, capability.NewVector2(0, false, norm, true))}
		}
		if cap, ok := triggerAxisByCode[code]; ok {
			info, err := d.cachedAbsInfo(code, absCache)
			if err != nil {
				return nil
			}
			return []capability.Event{capability.NewEvent(d.path, cap, capability.NewFloat(normalizeUnsigned(value, info)))}
		}
		return nil
	case EVSyn:
		return []capability.Event{capability.NewEvent(d.path, capability.Sync(), capability.NewNone())}
	default:
		return nil
	}
}

// decodeHat turns one EV_ABS hat axis sample into DPad button presses:
// a hat is -1/0/+1 (or the driver's min/mid/max), never a press-and-hold
// on both directions at once, so a transition to nonzero fires exactly
// one of the pair and a transition to zero releases whichever was held.
func (d *Device) decodeHat(code uint16, value int32, hp hatPair) []capability.Event {
	d.mu.Lock()
	prev := d.hatPrev[code]
	d.hatPrev[code] = value
	d.mu.Unlock()

	var events []capability.Event
	if prev < 0 && value >= 0 {
		events = append(events, capability.NewEvent(d.path, hp.neg, capability.NewBool(false)))
	}
	if prev > 0 && value <= 0 {
		events = append(events, capability.NewEvent(d.path, hp.pos, capability.NewBool(false)))
	}
	if value < 0 {
		events = append(events, capability.NewEvent(d.path, hp.neg, capability.NewBool(true)))
	}
	if value > 0 {
		events = append(events, capability.NewEvent(d.path, hp.pos, capability.NewBool(true)))
	}
	return events
}

func (d *Device) cachedAbsInfo(code uint16, cache map[uint16]input.AbsInfo) (input.AbsInfo, error) {
	if info, ok := cache[code]; ok {
		return info, nil
	}
	info, err := d.AbsInfo(code)
	if err != nil {
		return input.AbsInfo{}, err
	}
	cache[code] = info
	return info, nil
}

// normalizeSigned maps a raw axis sample onto [-1, 1] given the kernel's
// reported min/max, centering on the axis midpoint rather than assuming
// 0 is centered (some drivers report an asymmetric range).
func normalizeSigned(value int32, info input.AbsInfo) float64 {
	mid := float64(info.Maximum+info.Minimum) / 2
	span := float64(info.Maximum-info.Minimum) / 2
	if span == 0 {
		return 0
	}
	n := (float64(value) - mid) / span
	return clamp(n, -1, 1)
}

// normalizeUnsigned maps a raw trigger sample onto [0, 1].
func normalizeUnsigned(value int32, info input.AbsInfo) float64 {
	span := float64(info.Maximum - info.Minimum)
	if span == 0 {
		return 0
	}
	n := (float64(value) - float64(info.Minimum)) / span
	return clamp(n, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// UploadEffect asks the kernel driver to allocate a new ff_effect slot
// via EVIOCSFF, returning the id it assigned.
func (d *Device) UploadEffect(effect composite.FFEffect) (int16, error) {
	raw := toRawEffect(-1, effect)
	if err := ioctl.Any(d.f.Fd(), input.EVIOCSFF(), &raw); err != nil {
		return 0, composite.Classify(composite.KindTransientIO, err)
	}
	return raw.Id, nil
}

// UpdateEffect replaces an already-uploaded effect's parameters in place.
func (d *Device) UpdateEffect(id int16, effect composite.FFEffect) error {
	raw := toRawEffect(id, effect)
	if err := ioctl.Any(d.f.Fd(), input.EVIOCSFF(), &raw); err != nil {
		return composite.Classify(composite.KindTransientIO, err)
	}
	return nil
}

// EraseEffect releases a previously uploaded effect's slot via EVIOCRMFF.
func (d *Device) EraseEffect(id int16) error {
	v := int(id)
	if err := ioctl.Any(d.f.Fd(), input.EVIOCRMFF(), &v); err != nil {
		return composite.Classify(composite.KindTransientIO, err)
	}
	return nil
}

func toRawEffect(id int16, effect composite.FFEffect) input.FFEffect {
	raw := input.FFEffect{
		Id:        id,
		Direction: 0,
		Replay: input.FFReplay{
			Length: uint16(effect.Duration.Milliseconds()),
		},
	}
	switch effect.Kind {
	case composite.FFConstant:
		raw.Type = input.FF_CONSTANT
	case composite.FFPeriodic:
		raw.Type = input.FF_PERIODIC
	default:
		raw.Type = input.FF_RUMBLE
	}
	// ff_rumble_effect is {strong_magnitude, weak_magnitude} as two
	// little-endian u16 at the front of the union payload.
	binary.LittleEndian.PutUint16(raw.U[0:2], effect.StrongMagnitude)
	binary.LittleEndian.PutUint16(raw.U[2:4], effect.WeakMagnitude)
	return raw
}

// Close releases the grab and closes the node.
func (d *Device) Close() error {
	grab := 0
	_ = ioctl.Any(d.f.Fd(), input.EVIOCGRAB(), &grab)
	return d.f.Close()
}

var _ composite.Source = (*Device)(nil)
