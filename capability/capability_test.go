package capability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ShadowBlip/InputPlumber-sub000/capability"
)

func TestCapabilityStringDisambiguatesSubVariants(t *testing.T) {
	south := capability.NewGamepadButton(capability.ButtonSouth)
	leftStick := capability.NewGamepadAxis(capability.AxisLeftStick)

	assert.Equal(t, "Gamepad(South)", south.String())
	assert.Equal(t, "Gamepad(LeftStick)", leftStick.String())
	assert.NotEqual(t, south, leftStick)
}

func TestCapabilityEqualIsValueEquality(t *testing.T) {
	a := capability.NewGamepadButton(capability.ButtonEast)
	b := capability.NewGamepadButton(capability.ButtonEast)
	c := capability.NewGamepadButton(capability.ButtonWest)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestIsMomentaryTranslation(t *testing.T) {
	dial := capability.NewGamepadDial(capability.DialLeftStick)
	axis := capability.NewGamepadAxis(capability.AxisLeftStick)
	button := capability.NewGamepadButton(capability.ButtonSouth)
	key := capability.NewKeyboard(capability.KeyA)
	mouseBtn := capability.NewMouseButton(capability.MouseBtnLeft)

	assert.True(t, dial.IsMomentaryTranslation(button))
	assert.True(t, dial.IsMomentaryTranslation(key))
	assert.True(t, dial.IsMomentaryTranslation(mouseBtn))
	assert.False(t, dial.IsMomentaryTranslation(axis))
	assert.False(t, axis.IsMomentaryTranslation(button))
}

func TestValueVector2PartialAxisUpdate(t *testing.T) {
	v := capability.NewVector2(0.5, true, 0, false)
	x, xOK, y, yOK := v.Vector2()
	assert.Equal(t, 0.5, x)
	assert.True(t, xOK)
	assert.False(t, yOK)
	assert.Equal(t, float64(0), y)
}

func TestLinuxKeyStringFallsBackToCode(t *testing.T) {
	assert.Equal(t, "A", capability.KeyA.String())
	assert.Equal(t, "Key(999)", capability.LinuxKey(999).String())
}
