package capability

import "strconv"

// LinuxKey is a Linux evdev KEY_* code (include/uapi/linux/input-event-codes.h).
// Keyboard capabilities wrap this directly rather than re-enumerating every
// key as its own Capability variant: the vocabulary is already closed and
// versioned by the kernel's uapi header, and a wrapped code survives new
// keys being added upstream without a breaking change to this package.
type LinuxKey uint16

// A representative subset of KEY_* codes; sources and targets needing
// codes outside this set still work, they just render as "Key(<code>)".
const (
	KeyEsc       LinuxKey = 1
	Key1         LinuxKey = 2
	Key2         LinuxKey = 3
	Key3         LinuxKey = 4
	Key4         LinuxKey = 5
	Key5         LinuxKey = 6
	Key6         LinuxKey = 7
	Key7         LinuxKey = 8
	Key8         LinuxKey = 9
	Key9         LinuxKey = 10
	Key0         LinuxKey = 11
	KeyMinus     LinuxKey = 12
	KeyEqual     LinuxKey = 13
	KeyBackspace LinuxKey = 14
	KeyTab       LinuxKey = 15
	KeyQ         LinuxKey = 16
	KeyW         LinuxKey = 17
	KeyE         LinuxKey = 18
	KeyR         LinuxKey = 19
	KeyT         LinuxKey = 20
	KeyY         LinuxKey = 21
	KeyU         LinuxKey = 22
	KeyI         LinuxKey = 23
	KeyO         LinuxKey = 24
	KeyP         LinuxKey = 25
	KeyEnter     LinuxKey = 28
	KeyLeftCtrl  LinuxKey = 29
	KeyA         LinuxKey = 30
	KeyS         LinuxKey = 31
	KeyD         LinuxKey = 32
	KeyF         LinuxKey = 33
	KeyG         LinuxKey = 34
	KeyH         LinuxKey = 35
	KeyJ         LinuxKey = 36
	KeyK         LinuxKey = 37
	KeyL         LinuxKey = 38
	KeyLeftShift LinuxKey = 42
	KeyZ         LinuxKey = 44
	KeyX         LinuxKey = 45
	KeyC         LinuxKey = 46
	KeyV         LinuxKey = 47
	KeyB         LinuxKey = 48
	KeyN         LinuxKey = 49
	KeyM         LinuxKey = 50
	KeyLeftAlt   LinuxKey = 56
	KeySpace     LinuxKey = 57
	KeyCapsLock  LinuxKey = 58
	KeyF1        LinuxKey = 59
	KeyF2        LinuxKey = 60
	KeyF3        LinuxKey = 61
	KeyF4        LinuxKey = 62
	KeyHome      LinuxKey = 102
	KeyUp        LinuxKey = 103
	KeyPageUp    LinuxKey = 104
	KeyLeft      LinuxKey = 105
	KeyRight     LinuxKey = 106
	KeyEnd       LinuxKey = 107
	KeyDown      LinuxKey = 108
	KeyPageDown  LinuxKey = 109
	KeyInsert    LinuxKey = 110
	KeyDelete    LinuxKey = 111
	KeyLeftMeta  LinuxKey = 125
)

var keyNames = map[LinuxKey]string{
	KeyEsc: "Esc", Key1: "1", Key2: "2", Key3: "3", Key4: "4", Key5: "5",
	Key6: "6", Key7: "7", Key8: "8", Key9: "9", Key0: "0",
	KeyMinus: "Minus", KeyEqual: "Equal", KeyBackspace: "Backspace", KeyTab: "Tab",
	KeyQ: "Q", KeyW: "W", KeyE: "E", KeyR: "R", KeyT: "T", KeyY: "Y", KeyU: "U",
	KeyI: "I", KeyO: "O", KeyP: "P", KeyEnter: "Enter", KeyLeftCtrl: "LeftCtrl",
	KeyA: "A", KeyS: "S", KeyD: "D", KeyF: "F", KeyG: "G", KeyH: "H", KeyJ: "J",
	KeyK: "K", KeyL: "L", KeyLeftShift: "LeftShift", KeyZ: "Z", KeyX: "X",
	KeyC: "C", KeyV: "V", KeyB: "B", KeyN: "N", KeyM: "M", KeyLeftAlt: "LeftAlt",
	KeySpace: "Space", KeyCapsLock: "CapsLock", KeyF1: "F1", KeyF2: "F2",
	KeyF3: "F3", KeyF4: "F4", KeyHome: "Home", KeyUp: "Up", KeyPageUp: "PageUp",
	KeyLeft: "Left", KeyRight: "Right", KeyEnd: "End", KeyDown: "Down",
	KeyPageDown: "PageDown", KeyInsert: "Insert", KeyDelete: "Delete",
	KeyLeftMeta: "LeftMeta",
}

// String renders a known key by name, falling back to its numeric code.
func (k LinuxKey) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "Key(" + strconv.Itoa(int(k)) + ")"
}
