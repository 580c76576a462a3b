package evdev

import "github.com/ShadowBlip/InputPlumber-sub000/capability"

// Linux evdev event types, from uapi/linux/input-event-codes.h.
const (
	EVSyn uint16 = 0x00
	EVKey uint16 = 0x01
	EVRel uint16 = 0x02
	EVAbs uint16 = 0x03
)

// A representative subset of BTN_*/KEY_* gamepad codes.
const (
	btnSouth  uint16 = 0x130 // BTN_SOUTH / BTN_A
	btnEast   uint16 = 0x131 // BTN_EAST / BTN_B
	btnNorth  uint16 = 0x133 // BTN_NORTH / BTN_X
	btnWest   uint16 = 0x134 // BTN_WEST / BTN_Y
	btnTL     uint16 = 0x136
	btnTR     uint16 = 0x137
	btnTL2    uint16 = 0x138
	btnTR2    uint16 = 0x139
	btnSelect uint16 = 0x13a
	btnStart  uint16 = 0x13b
	btnMode   uint16 = 0x13c // Guide
	btnThumbL uint16 = 0x13d
	btnThumbR uint16 = 0x13e
)

// ABS_* axis codes.
const (
	absX      uint16 = 0x00
	absY      uint16 = 0x01
	absZ      uint16 = 0x02 // left trigger on many xpad-class drivers
	absRX     uint16 = 0x03
	absRY     uint16 = 0x04
	absRZ     uint16 = 0x05 // right trigger
	absHat0X  uint16 = 0x10
	absHat0Y  uint16 = 0x11
)

// buttonByCode maps BTN_* codes to the closed capability vocabulary.
var buttonByCode = map[uint16]capability.Capability{
	btnSouth:  capability.NewGamepadButton(capability.ButtonSouth),
	btnEast:   capability.NewGamepadButton(capability.ButtonEast),
	btnNorth:  capability.NewGamepadButton(capability.ButtonNorth),
	btnWest:   capability.NewGamepadButton(capability.ButtonWest),
	btnTL:     capability.NewGamepadButton(capability.ButtonLeftBumper),
	btnTR:     capability.NewGamepadButton(capability.ButtonRightBumper),
	btnTL2:    capability.NewGamepadButton(capability.ButtonLeftTrigger),
	btnTR2:    capability.NewGamepadButton(capability.ButtonRightTrigger),
	btnSelect: capability.NewGamepadButton(capability.ButtonSelect),
	btnStart:  capability.NewGamepadButton(capability.ButtonStart),
	btnMode:   capability.NewGamepadButton(capability.ButtonGuide),
	btnThumbL: capability.NewGamepadButton(capability.ButtonLeftStick),
	btnThumbR: capability.NewGamepadButton(capability.ButtonRightStick),
}

// stickAxis is what stickAxisByCode maps a non-hat ABS_* code to:
// (stick, isX).
type stickAxis struct {
	cap capability.Capability
	isX bool
}

var stickAxisByCode = map[uint16]stickAxis{
	absX:  {capability.NewGamepadAxis(capability.AxisLeftStick), true},
	absY:  {capability.NewGamepadAxis(capability.AxisLeftStick), false},
	absRX: {capability.NewGamepadAxis(capability.AxisRightStick), true},
	absRY: {capability.NewGamepadAxis(capability.AxisRightStick), false},
}

var triggerAxisByCode = map[uint16]capability.Capability{
	absZ:  capability.NewGamepadTrigger(capability.TriggerLeft),
	absRZ: capability.NewGamepadTrigger(capability.TriggerRight),
}

// hatPair names the two button capabilities a hat axis
// decomposes into: negative direction, positive direction.
type hatPair struct{ neg, pos capability.Capability }

var hatByCode = map[uint16]hatPair{
	absHat0X: {capability.NewGamepadButton(capability.ButtonDPadLeft), capability.NewGamepadButton(capability.ButtonDPadRight)},
	absHat0Y: {capability.NewGamepadButton(capability.ButtonDPadUp), capability.NewGamepadButton(capability.ButtonDPadDown)},
}
