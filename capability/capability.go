// Package capability defines the closed, versioned vocabulary of input
// capabilities that flow through a composite device: what a source can
// emit, what a profile can remap, and what a target can accept.
package capability

// Kind discriminates the top-level variant of a Capability.
type Kind uint8

const (
	// KindNone purposefully disables a capability (a mapping target of
	// "drop this input").
	KindNone Kind = iota
	// KindNotImplemented marks an input a source driver saw but does not
	// yet decode into a semantic capability.
	KindNotImplemented
	// KindSync is the evdev frame-boundary synchronization pseudo-event.
	KindSync
	KindDBus
	KindGamepad
	KindMouse
	KindKeyboard
	KindTouchpad
	KindTouchscreen
	KindInputLayer
)

// GamepadKind discriminates the Gamepad sub-variant.
type GamepadKind uint8

const (
	GamepadButton GamepadKind = iota
	GamepadAxis
	GamepadTrigger
	GamepadAccelerometer
	GamepadGyro
	GamepadDial
)

// Button names gamepad buttons by action (South/East/North/West), never
// by a specific controller's face-button legend.
type Button uint8

const (
	ButtonSouth Button = iota
	ButtonEast
	ButtonNorth
	ButtonWest
	ButtonStart
	ButtonSelect
	ButtonGuide
	ButtonQuickAccess
	ButtonQuickAccess2
	ButtonKeyboard
	ButtonScreenshot
	ButtonMute
	ButtonDPadUp
	ButtonDPadDown
	ButtonDPadLeft
	ButtonDPadRight
	ButtonLeftBumper
	ButtonLeftTop
	ButtonLeftTrigger
	ButtonLeftPaddle1
	ButtonLeftPaddle2
	ButtonLeftPaddle3
	ButtonLeftStick
	ButtonLeftStickTouch
	ButtonRightBumper
	ButtonRightTop
	ButtonRightTrigger
	ButtonRightPaddle1
	ButtonRightPaddle2
	ButtonRightPaddle3
	ButtonRightStick
	ButtonRightStickTouch
)

// Axis names a 2D gamepad stick or a directional hat.
type Axis uint8

const (
	AxisLeftStick Axis = iota
	AxisRightStick
	AxisHat0
	AxisHat1
	AxisHat2
	AxisHat3
)

// Trigger names an analog squeeze input, including capacitive force
// sensors layered on top of sticks/touchpads on some handhelds.
type Trigger uint8

const (
	TriggerLeft Trigger = iota
	TriggerLeftTouchpadForce
	TriggerLeftStickForce
	TriggerRight
	TriggerRightTouchpadForce
	TriggerRightStickForce
)

// Dial names a relative rotary input (e.g. the Zotac Zone's paddle
// dials), which behaves like a mouse wheel rather than an absolute axis.
type Dial uint8

const (
	DialLeftStick Dial = iota
	DialRightStick
)

// MouseKind discriminates the Mouse sub-variant.
type MouseKind uint8

const (
	MouseMotion MouseKind = iota
	MouseButton
)

// MouseBtn names a mouse button or wheel-direction pseudo-button.
type MouseBtn uint8

const (
	MouseBtnLeft MouseBtn = iota
	MouseBtnRight
	MouseBtnMiddle
	MouseBtnWheelUp
	MouseBtnWheelDown
	MouseBtnWheelLeft
	MouseBtnWheelRight
	MouseBtnExtra
	MouseBtnSide
)

// InputLayerOp names an intercept-layer control action (e.g. toggling
// profile-intercept mode from a chord), kept separate from DBus actions
// since it originates from the composite device itself, not a UI client.
type InputLayerOp uint8

const (
	InputLayerToggleIntercept InputLayerOp = iota
	InputLayerCycleTarget
)

// Capability is the closed, versioned tagged union flowing through the
// event bus. The zero value is the None sentinel.
type Capability struct {
	kind Kind

	gamepadKind GamepadKind
	button      Button
	axis        Axis
	trigger     Trigger
	dial        Dial

	mouseKind MouseKind
	mouseBtn  MouseBtn

	key LinuxKey

	dbusAction string
	layerOp    InputLayerOp
}

// Kind reports the top-level discriminant.
func (c Capability) Kind() Kind { return c.kind }

// None is the explicit "drop this input" sentinel.
func None() Capability { return Capability{kind: KindNone} }

// NotImplemented marks an undecoded source input.
func NotImplemented() Capability { return Capability{kind: KindNotImplemented} }

// Sync is the evdev EV_SYN frame boundary pseudo-capability.
func Sync() Capability { return Capability{kind: KindSync} }

// NewGamepadButton builds a Gamepad(Button) capability.
func NewGamepadButton(b Button) Capability {
	return Capability{kind: KindGamepad, gamepadKind: GamepadButton, button: b}
}

// Button reports the button this capability names; only meaningful when
// GamepadKind() == GamepadButton.
func (c Capability) Button() Button { return c.button }

// NewGamepadAxis builds a Gamepad(Axis) capability.
func NewGamepadAxis(a Axis) Capability {
	return Capability{kind: KindGamepad, gamepadKind: GamepadAxis, axis: a}
}

// Axis reports the axis this capability names; only meaningful when
// GamepadKind() == GamepadAxis.
func (c Capability) Axis() Axis { return c.axis }

// NewGamepadTrigger builds a Gamepad(Trigger) capability.
func NewGamepadTrigger(t Trigger) Capability {
	return Capability{kind: KindGamepad, gamepadKind: GamepadTrigger, trigger: t}
}

// Trigger reports the trigger this capability names; only meaningful when
// GamepadKind() == GamepadTrigger.
func (c Capability) Trigger() Trigger { return c.trigger }

// NewGamepadAccelerometer builds the Gamepad(Accelerometer) capability.
func NewGamepadAccelerometer() Capability {
	return Capability{kind: KindGamepad, gamepadKind: GamepadAccelerometer}
}

// NewGamepadGyro builds the Gamepad(Gyro) capability.
func NewGamepadGyro() Capability {
	return Capability{kind: KindGamepad, gamepadKind: GamepadGyro}
}

// NewGamepadDial builds a Gamepad(Dial) capability.
func NewGamepadDial(d Dial) Capability {
	return Capability{kind: KindGamepad, gamepadKind: GamepadDial, dial: d}
}

// Dial reports the dial this capability names; only meaningful when
// GamepadKind() == GamepadDial.
func (c Capability) Dial() Dial { return c.dial }

// GamepadKind reports which Gamepad sub-variant a Gamepad capability
// holds. Only meaningful when Kind() == KindGamepad.
func (c Capability) GamepadKind() GamepadKind { return c.gamepadKind }

// NewMouseMotion builds the Mouse(Motion) capability.
func NewMouseMotion() Capability { return Capability{kind: KindMouse, mouseKind: MouseMotion} }

// NewMouseButton builds a Mouse(Button) capability.
func NewMouseButton(b MouseBtn) Capability {
	return Capability{kind: KindMouse, mouseKind: MouseButton, mouseBtn: b}
}

// MouseButton reports the mouse button this capability names; only
// meaningful when MouseKind() == MouseButton.
func (c Capability) MouseButton() MouseBtn { return c.mouseBtn }

// MouseKind reports which Mouse sub-variant a Mouse capability holds.
func (c Capability) MouseKind() MouseKind { return c.mouseKind }

// NewKeyboard builds a Keyboard capability wrapping a Linux key code.
func NewKeyboard(k LinuxKey) Capability { return Capability{kind: KindKeyboard, key: k} }

// Key reports the Linux key code this capability names; only meaningful
// when Kind() == KindKeyboard.
func (c Capability) Key() LinuxKey { return c.key }

// NewDBus builds a DBus action capability; only decoded by DBus target
// devices (the message-bus RPC surface is out of scope here, but the
// capability variant is preserved so profiles referencing it still parse).
func NewDBus(action string) Capability { return Capability{kind: KindDBus, dbusAction: action} }

// DBusAction reports the action name; only meaningful when Kind() == KindDBus.
func (c Capability) DBusAction() string { return c.dbusAction }

// NewInputLayer builds an InputLayer control capability.
func NewInputLayer(op InputLayerOp) Capability {
	return Capability{kind: KindInputLayer, layerOp: op}
}

// InputLayerOp reports the control action; only meaningful when
// Kind() == KindInputLayer.
func (c Capability) InputLayerOp() InputLayerOp { return c.layerOp }

// NewTouchpad builds the Touchpad capability (a single multitouch surface
// distinct from the whole-screen Touchscreen capability).
func NewTouchpad() Capability { return Capability{kind: KindTouchpad} }

// NewTouchscreen builds the Touchscreen capability.
func NewTouchscreen() Capability { return Capability{kind: KindTouchscreen} }

// IsMomentaryTranslation reports whether mapping this capability onto
// target requires synthesizing a momentary press: a relative dial (or
// mouse-wheel-like input) mapped onto a discrete button/key target only
// ever emits a nonzero tick, never a held state, so the profile layer
// must synthesize a press/release pair itself.
func (c Capability) IsMomentaryTranslation(target Capability) bool {
	if c.kind != KindGamepad || c.gamepadKind != GamepadDial {
		return false
	}
	switch target.kind {
	case KindGamepad:
		return target.gamepadKind == GamepadButton
	case KindMouse:
		return target.mouseKind == MouseButton
	case KindKeyboard:
		return true
	default:
		return false
	}
}

// Equal reports whether two capabilities name the same thing.
func (c Capability) Equal(o Capability) bool { return c == o }

// String renders a capability the way logs and profile error messages
// want to see it: compact, disambiguated, never "Gamepad(0)".
func (c Capability) String() string {
	switch c.kind {
	case KindNone:
		return "None"
	case KindNotImplemented:
		return "NotImplemented"
	case KindSync:
		return "Sync"
	case KindDBus:
		return "DBus(" + c.dbusAction + ")"
	case KindGamepad:
		return "Gamepad(" + c.gamepadString() + ")"
	case KindMouse:
		return "Mouse(" + c.mouseString() + ")"
	case KindKeyboard:
		return "Keyboard(" + c.key.String() + ")"
	case KindTouchpad:
		return "Touchpad"
	case KindTouchscreen:
		return "Touchscreen"
	case KindInputLayer:
		switch c.layerOp {
		case InputLayerToggleIntercept:
			return "InputLayer(ToggleIntercept)"
		case InputLayerCycleTarget:
			return "InputLayer(CycleTarget)"
		}
		return "InputLayer"
	default:
		return "Unknown"
	}
}

func (c Capability) gamepadString() string {
	switch c.gamepadKind {
	case GamepadButton:
		return buttonNames[c.button]
	case GamepadAxis:
		return axisNames[c.axis]
	case GamepadTrigger:
		return triggerNames[c.trigger]
	case GamepadAccelerometer:
		return "Accelerometer"
	case GamepadGyro:
		return "Gyro"
	case GamepadDial:
		return dialNames[c.dial]
	default:
		return "?"
	}
}

func (c Capability) mouseString() string {
	if c.mouseKind == MouseMotion {
		return "Motion"
	}
	return mouseBtnNames[c.mouseBtn]
}

var buttonNames = map[Button]string{
	ButtonSouth: "South", ButtonEast: "East", ButtonNorth: "North", ButtonWest: "West",
	ButtonStart: "Start", ButtonSelect: "Select", ButtonGuide: "Guide",
	ButtonQuickAccess: "QuickAccess", ButtonQuickAccess2: "QuickAccess2",
	ButtonKeyboard: "Keyboard", ButtonScreenshot: "Screenshot", ButtonMute: "Mute",
	ButtonDPadUp: "DPadUp", ButtonDPadDown: "DPadDown", ButtonDPadLeft: "DPadLeft", ButtonDPadRight: "DPadRight",
	ButtonLeftBumper: "LeftBumper", ButtonLeftTop: "LeftTop", ButtonLeftTrigger: "LeftTrigger",
	ButtonLeftPaddle1: "LeftPaddle1", ButtonLeftPaddle2: "LeftPaddle2", ButtonLeftPaddle3: "LeftPaddle3",
	ButtonLeftStick: "LeftStick", ButtonLeftStickTouch: "LeftStickTouch",
	ButtonRightBumper: "RightBumper", ButtonRightTop: "RightTop", ButtonRightTrigger: "RightTrigger",
	ButtonRightPaddle1: "RightPaddle1", ButtonRightPaddle2: "RightPaddle2", ButtonRightPaddle3: "RightPaddle3",
	ButtonRightStick: "RightStick", ButtonRightStickTouch: "RightStickTouch",
}

var axisNames = map[Axis]string{
	AxisLeftStick: "LeftStick", AxisRightStick: "RightStick",
	AxisHat0: "Hat0", AxisHat1: "Hat1", AxisHat2: "Hat2", AxisHat3: "Hat3",
}

var triggerNames = map[Trigger]string{
	TriggerLeft: "LeftTrigger", TriggerLeftTouchpadForce: "LeftTouchpadForce", TriggerLeftStickForce: "LeftStickForce",
	TriggerRight: "RightTrigger", TriggerRightTouchpadForce: "RightTouchpadForce", TriggerRightStickForce: "RightStickForce",
}

var dialNames = map[Dial]string{
	DialLeftStick: "LeftStickDial", DialRightStick: "RightStickDial",
}

var mouseBtnNames = map[MouseBtn]string{
	MouseBtnLeft: "Left", MouseBtnRight: "Right", MouseBtnMiddle: "Middle",
	MouseBtnWheelUp: "WheelUp", MouseBtnWheelDown: "WheelDown",
	MouseBtnWheelLeft: "WheelLeft", MouseBtnWheelRight: "WheelRight",
	MouseBtnExtra: "Extra", MouseBtnSide: "Side",
}
