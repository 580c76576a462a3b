package capability

// ValueKind discriminates the Value tagged union.
type ValueKind uint8

const (
	ValueNone ValueKind = iota
	ValueBool
	ValueFloat
	ValueVector2
	ValueVector3
	ValueTouch
)

// Value is the normalized payload carried by an Event: everything a
// source decodes and everything a target consumes is one of these
// shapes, regardless of the physical wire encoding on either side.
type Value struct {
	kind ValueKind

	b bool
	f float64

	x, y, z       float64
	xSet, ySet, zSet bool

	touch Touch
}

// Touch carries a single contact's state for Touchpad/Touchscreen
// capabilities: multiple simultaneous contacts are multiple Events with
// distinct Index values in the same frame.
type Touch struct {
	Index      uint8
	IsTouching bool
	Pressure   float64
	X, Y       float64
}

// NewBool builds a boolean Value (button/key press state).
func NewBool(v bool) Value { return Value{kind: ValueBool, b: v} }

// Bool reports the boolean payload; only meaningful when Kind() == ValueBool.
func (v Value) Bool() bool { return v.b }

// NewFloat builds a scalar Value normalized to [-1, 1] or [0, 1] depending
// on the capability (triggers/axes use [0,1]/[-1,1] respectively; dials
// carry unnormalized relative ticks).
func NewFloat(f float64) Value { return Value{kind: ValueFloat, f: f} }

// Float reports the scalar payload; only meaningful when Kind() == ValueFloat.
func (v Value) Float() float64 { return v.f }

// NewVector2 builds a 2D Value. Either axis may be "unset" (absent from
// this particular source update) by passing ok=false for that axis,
// letting a source report partial updates without implying the other
// axis snapped to zero.
func NewVector2(x float64, xOK bool, y float64, yOK bool) Value {
	return Value{kind: ValueVector2, x: x, xSet: xOK, y: y, ySet: yOK}
}

// Vector2 reports the (x, y, xOK, yOK) payload.
func (v Value) Vector2() (x float64, xOK bool, y float64, yOK bool) {
	return v.x, v.xSet, v.y, v.ySet
}

// NewVector3 builds a 3D Value (accelerometer/gyro sample).
func NewVector3(x float64, xOK bool, y float64, yOK bool, z float64, zOK bool) Value {
	return Value{kind: ValueVector3, x: x, xSet: xOK, y: y, ySet: yOK, z: z, zSet: zOK}
}

// Vector3 reports the (x, y, z, ...OK) payload.
func (v Value) Vector3() (x float64, xOK bool, y float64, yOK bool, z float64, zOK bool) {
	return v.x, v.xSet, v.y, v.ySet, v.z, v.zSet
}

// NewTouch builds a Touch Value.
func NewTouch(t Touch) Value { return Value{kind: ValueTouch, touch: t} }

// Touch reports the touch payload; only meaningful when Kind() == ValueTouch.
func (v Value) Touch() Touch { return v.touch }

// NewNone builds the empty Value, paired with capability.None()/Sync().
func NewNone() Value { return Value{kind: ValueNone} }

// Kind reports the tagged union discriminant.
func (v Value) Kind() ValueKind { return v.kind }
