//go:build linux

package evdev

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ShadowBlip/InputPlumber-sub000/capability"
	"github.com/ShadowBlip/InputPlumber-sub000/composite"
	"github.com/andrieee44/mylib/linux/input"
)

func TestDecodeKeyPress(t *testing.T) {
	d := &Device{path: "test0", hatPrev: make(map[uint16]int32)}
	events := d.decode(EVKey, btnSouth, 1, nil)
	if assert.Len(t, events, 1) {
		assert.Equal(t, capability.NewGamepadButton(capability.ButtonSouth), events[0].Capability)
		assert.True(t, events[0].Value.Bool())
	}
}

func TestDecodeUnknownKeyIsDropped(t *testing.T) {
	d := &Device{path: "test0", hatPrev: make(map[uint16]int32)}
	events := d.decode(EVKey, 0xffff, 1, nil)
	assert.Empty(t, events)
}

func TestDecodeHatPressAndRelease(t *testing.T) {
	d := &Device{path: "test0", hatPrev: make(map[uint16]int32)}
	cache := make(map[uint16]input.AbsInfo)

	pressed := d.decode(EVAbs, absHat0X, -1, cache)
	if assert.Len(t, pressed, 1) {
		assert.Equal(t, capability.NewGamepadButton(capability.ButtonDPadLeft), pressed[0].Capability)
		assert.True(t, pressed[0].Value.Bool())
	}

	released := d.decode(EVAbs, absHat0X, 0, cache)
	if assert.Len(t, released, 1) {
		assert.Equal(t, capability.NewGamepadButton(capability.ButtonDPadLeft), released[0].Capability)
		assert.False(t, released[0].Value.Bool())
	}
}

func TestNormalizeSignedCentersOnMidpoint(t *testing.T) {
	info := input.AbsInfo{Minimum: -32768, Maximum: 32767}
	assert.InDelta(t, 0.0, normalizeSigned(0, info), 0.01)
	assert.InDelta(t, 1.0, normalizeSigned(32767, info), 0.01)
	assert.InDelta(t, -1.0, normalizeSigned(-32768, info), 0.01)
}

func TestNormalizeUnsignedClampsToZeroOne(t *testing.T) {
	info := input.AbsInfo{Minimum: 0, Maximum: 255}
	assert.InDelta(t, 0.0, normalizeUnsigned(0, info), 0.01)
	assert.InDelta(t, 1.0, normalizeUnsigned(255, info), 0.01)
}

func TestToRawEffectEncodesRumbleMagnitudes(t *testing.T) {
	raw := toRawEffect(-1, composite.FFEffect{
		Kind:            composite.FFRumble,
		StrongMagnitude: 0x1234,
		WeakMagnitude:   0x5678,
	})
	assert.EqualValues(t, input.FF_RUMBLE, raw.Type)
	assert.Equal(t, int16(-1), raw.Id)
	assert.Equal(t, uint16(0x1234), binary.LittleEndian.Uint16(raw.U[0:2]))
	assert.Equal(t, uint16(0x5678), binary.LittleEndian.Uint16(raw.U[2:4]))
}
