package profile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ShadowBlip/InputPlumber-sub000/capability"
)

// ParseCapability decodes a profile file's dotted capability name (e.g.
// "gamepad.button.south", "keyboard.a", "mouse.button.left") into the
// corresponding capability.Capability. This is the wire format profile
// YAML files actually use; it exists so a human can write a
// mapping file without knowing the internal Capability struct layout.
func ParseCapability(s string) (capability.Capability, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), ".")
	if len(parts) == 0 {
		return capability.Capability{}, fmt.Errorf("profile: empty capability reference")
	}
	switch parts[0] {
	case "none":
		return capability.None(), nil
	case "sync":
		return capability.Sync(), nil
	case "gamepad":
		return parseGamepad(parts[1:], s)
	case "mouse":
		return parseMouse(parts[1:], s)
	case "keyboard":
		return parseKeyboard(parts[1:], s)
	case "touchpad":
		return capability.NewTouchpad(), nil
	case "touchscreen":
		return capability.NewTouchscreen(), nil
	case "dbus":
		return capability.NewDBus(strings.Join(parts[1:], ".")), nil
	case "inputlayer":
		return parseInputLayer(parts[1:], s)
	default:
		return capability.Capability{}, fmt.Errorf("profile: unknown capability reference %q", s)
	}
}

func parseGamepad(parts []string, orig string) (capability.Capability, error) {
	if len(parts) < 2 {
		return capability.Capability{}, fmt.Errorf("profile: incomplete gamepad capability %q", orig)
	}
	switch parts[0] {
	case "button":
		if b, ok := buttonByName[parts[1]]; ok {
			return capability.NewGamepadButton(b), nil
		}
	case "axis":
		if a, ok := axisByName[parts[1]]; ok {
			return capability.NewGamepadAxis(a), nil
		}
	case "trigger":
		if t, ok := triggerByName[parts[1]]; ok {
			return capability.NewGamepadTrigger(t), nil
		}
	case "dial":
		if d, ok := dialByName[parts[1]]; ok {
			return capability.NewGamepadDial(d), nil
		}
	case "accelerometer":
		return capability.NewGamepadAccelerometer(), nil
	case "gyro":
		return capability.NewGamepadGyro(), nil
	}
	return capability.Capability{}, fmt.Errorf("profile: unknown gamepad capability %q", orig)
}

func parseMouse(parts []string, orig string) (capability.Capability, error) {
	if len(parts) == 1 && parts[0] == "motion" {
		return capability.NewMouseMotion(), nil
	}
	if len(parts) == 2 && parts[0] == "button" {
		if b, ok := mouseButtonByName[parts[1]]; ok {
			return capability.NewMouseButton(b), nil
		}
	}
	return capability.Capability{}, fmt.Errorf("profile: unknown mouse capability %q", orig)
}

func parseKeyboard(parts []string, orig string) (capability.Capability, error) {
	if len(parts) != 1 {
		return capability.Capability{}, fmt.Errorf("profile: unknown keyboard capability %q", orig)
	}
	if k, ok := keyByName[parts[0]]; ok {
		return capability.NewKeyboard(k), nil
	}
	if n, err := strconv.Atoi(parts[0]); err == nil {
		return capability.NewKeyboard(capability.LinuxKey(n)), nil
	}
	return capability.Capability{}, fmt.Errorf("profile: unknown keyboard key %q", orig)
}

func parseInputLayer(parts []string, orig string) (capability.Capability, error) {
	if len(parts) != 1 {
		return capability.Capability{}, fmt.Errorf("profile: unknown input-layer capability %q", orig)
	}
	switch parts[0] {
	case "toggle_intercept":
		return capability.NewInputLayer(capability.InputLayerToggleIntercept), nil
	case "cycle_target":
		return capability.NewInputLayer(capability.InputLayerCycleTarget), nil
	default:
		return capability.Capability{}, fmt.Errorf("profile: unknown input-layer capability %q", orig)
	}
}

var buttonByName = map[string]capability.Button{
	"south": capability.ButtonSouth, "east": capability.ButtonEast,
	"north": capability.ButtonNorth, "west": capability.ButtonWest,
	"start": capability.ButtonStart, "select": capability.ButtonSelect,
	"guide": capability.ButtonGuide, "quick_access": capability.ButtonQuickAccess,
	"quick_access2": capability.ButtonQuickAccess2, "keyboard": capability.ButtonKeyboard,
	"screenshot": capability.ButtonScreenshot, "mute": capability.ButtonMute,
	"dpad_up": capability.ButtonDPadUp, "dpad_down": capability.ButtonDPadDown,
	"dpad_left": capability.ButtonDPadLeft, "dpad_right": capability.ButtonDPadRight,
	"left_bumper": capability.ButtonLeftBumper, "left_top": capability.ButtonLeftTop,
	"left_trigger": capability.ButtonLeftTrigger, "left_paddle1": capability.ButtonLeftPaddle1,
	"left_paddle2": capability.ButtonLeftPaddle2, "left_paddle3": capability.ButtonLeftPaddle3,
	"left_stick": capability.ButtonLeftStick, "left_stick_touch": capability.ButtonLeftStickTouch,
	"right_bumper": capability.ButtonRightBumper, "right_top": capability.ButtonRightTop,
	"right_trigger": capability.ButtonRightTrigger, "right_paddle1": capability.ButtonRightPaddle1,
	"right_paddle2": capability.ButtonRightPaddle2, "right_paddle3": capability.ButtonRightPaddle3,
	"right_stick": capability.ButtonRightStick, "right_stick_touch": capability.ButtonRightStickTouch,
}

var axisByName = map[string]capability.Axis{
	"left_stick": capability.AxisLeftStick, "right_stick": capability.AxisRightStick,
	"hat0": capability.AxisHat0, "hat1": capability.AxisHat1,
	"hat2": capability.AxisHat2, "hat3": capability.AxisHat3,
}

var triggerByName = map[string]capability.Trigger{
	"left": capability.TriggerLeft, "left_touchpad_force": capability.TriggerLeftTouchpadForce,
	"left_stick_force": capability.TriggerLeftStickForce, "right": capability.TriggerRight,
	"right_touchpad_force": capability.TriggerRightTouchpadForce, "right_stick_force": capability.TriggerRightStickForce,
}

var dialByName = map[string]capability.Dial{
	"left_stick": capability.DialLeftStick, "right_stick": capability.DialRightStick,
}

var mouseButtonByName = map[string]capability.MouseBtn{
	"left": capability.MouseBtnLeft, "right": capability.MouseBtnRight, "middle": capability.MouseBtnMiddle,
	"wheel_up": capability.MouseBtnWheelUp, "wheel_down": capability.MouseBtnWheelDown,
	"wheel_left": capability.MouseBtnWheelLeft, "wheel_right": capability.MouseBtnWheelRight,
	"extra": capability.MouseBtnExtra, "side": capability.MouseBtnSide,
}

var keyByName = map[string]capability.LinuxKey{
	"esc": capability.KeyEsc, "1": capability.Key1, "2": capability.Key2, "3": capability.Key3,
	"4": capability.Key4, "5": capability.Key5, "6": capability.Key6, "7": capability.Key7,
	"8": capability.Key8, "9": capability.Key9, "0": capability.Key0,
	"tab": capability.KeyTab, "q": capability.KeyQ, "w": capability.KeyW, "e": capability.KeyE,
	"r": capability.KeyR, "t": capability.KeyT, "y": capability.KeyY, "u": capability.KeyU,
	"i": capability.KeyI, "o": capability.KeyO, "p": capability.KeyP, "enter": capability.KeyEnter,
	"a": capability.KeyA, "s": capability.KeyS, "d": capability.KeyD, "f": capability.KeyF,
	"g": capability.KeyG, "h": capability.KeyH, "j": capability.KeyJ, "k": capability.KeyK,
	"l": capability.KeyL, "z": capability.KeyZ, "x": capability.KeyX, "c": capability.KeyC,
	"v": capability.KeyV, "b": capability.KeyB, "n": capability.KeyN, "m": capability.KeyM,
	"space": capability.KeySpace, "up": capability.KeyUp, "down": capability.KeyDown,
	"left": capability.KeyLeft, "right": capability.KeyRight,
}
