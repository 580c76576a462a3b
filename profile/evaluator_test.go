package profile_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShadowBlip/InputPlumber-sub000/capability"
	"github.com/ShadowBlip/InputPlumber-sub000/profile"
)

func mustParse(t *testing.T, s string) capability.Capability {
	t.Helper()
	c, err := profile.ParseCapability(s)
	require.NoError(t, err)
	return c
}

func TestOnPressMapsButtonToButton(t *testing.T) {
	south := mustParse(t, "gamepad.button.south")
	east := mustParse(t, "gamepad.button.east")
	p := &profile.Profile{Mappings: []profile.Mapping{{Source: south, Target: east, Mode: profile.OnPress}}}
	ev := profile.NewEvaluator(p)

	now := time.Now()
	emit, _ := ev.Evaluate(capability.NewEvent("src0", south, capability.NewBool(true)), now)
	require.Len(t, emit, 1)
	assert.Equal(t, east, emit[0].Capability)
	assert.True(t, emit[0].Value.Bool())

	emit, _ = ev.Evaluate(capability.NewEvent("src0", south, capability.NewBool(false)), now.Add(time.Millisecond))
	require.Len(t, emit, 1)
	assert.False(t, emit[0].Value.Bool())
}

func TestTapFiresOnlyWithinWindow(t *testing.T) {
	south := mustParse(t, "gamepad.button.south")
	guide := mustParse(t, "gamepad.button.guide")
	p := &profile.Profile{Mappings: []profile.Mapping{{
		Source: south, Target: guide, Mode: profile.Tap, TapMaxDuration: 200 * time.Millisecond,
	}}}
	ev := profile.NewEvaluator(p)
	now := time.Now()

	ev.Evaluate(capability.NewEvent("src0", south, capability.NewBool(true)), now)
	emit, _ := ev.Evaluate(capability.NewEvent("src0", south, capability.NewBool(false)), now.Add(50*time.Millisecond))
	require.Len(t, emit, 2, "a quick tap should emit a synthesized press+release pair")
	assert.Equal(t, guide, emit[0].Capability)

	ev2 := profile.NewEvaluator(p)
	ev2.Evaluate(capability.NewEvent("src0", south, capability.NewBool(true)), now)
	emit2, _ := ev2.Evaluate(capability.NewEvent("src0", south, capability.NewBool(false)), now.Add(500*time.Millisecond))
	assert.Empty(t, emit2, "a held-too-long press must not fire the tap mapping")
}

func TestChordOnlyFiresWhenAllMembersActive(t *testing.T) {
	l1 := mustParse(t, "gamepad.button.left_bumper")
	r1 := mustParse(t, "gamepad.button.right_bumper")
	quickAccess := mustParse(t, "gamepad.button.quick_access")
	p := &profile.Profile{Mappings: []profile.Mapping{{
		Source: l1, Target: quickAccess, Mode: profile.Chord, ChordWith: []capability.Capability{r1},
	}}}
	ev := profile.NewEvaluator(p)
	now := time.Now()

	emit, _ := ev.Evaluate(capability.NewEvent("src0", l1, capability.NewBool(true)), now)
	assert.Empty(t, emit, "chord must not fire until the other member is active")

	ev.Evaluate(capability.NewEvent("src0", r1, capability.NewBool(true)), now)
	ev.Evaluate(capability.NewEvent("src0", l1, capability.NewBool(false)), now)
	emit, _ = ev.Evaluate(capability.NewEvent("src0", l1, capability.NewBool(true)), now)
	require.Len(t, emit, 1, "chord must fire once every member is active")
	assert.Equal(t, quickAccess, emit[0].Capability)
	assert.True(t, emit[0].Value.Bool())
}

func TestDialMomentaryTranslationSynthesizesPressRelease(t *testing.T) {
	dial := mustParse(t, "gamepad.dial.left_stick")
	mute := mustParse(t, "gamepad.button.mute")
	p := &profile.Profile{Mappings: []profile.Mapping{{Source: dial, Target: mute, Mode: profile.OnPress}}}
	ev := profile.NewEvaluator(p)

	emit, scheduled := ev.Evaluate(capability.NewEvent("src0", dial, capability.NewFloat(1)), time.Now())
	require.Len(t, emit, 1)
	assert.Equal(t, capability.ValueBool, emit[0].Value.Kind())
	assert.True(t, emit[0].Value.Bool())
	require.Len(t, scheduled, 1, "the press must be followed by a scheduled release")
	assert.Equal(t, mute, scheduled[0].Event.Capability)
	assert.False(t, scheduled[0].Event.Value.Bool())
}
