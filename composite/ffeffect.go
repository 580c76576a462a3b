package composite

import "time"

// FFEffectKind names the force-feedback waveform family, mirroring the
// small set of effect types evdev's ff_effect.type actually carries
// across consumer gamepads.
type FFEffectKind uint8

const (
	FFRumble FFEffectKind = iota
	FFPeriodic
	FFConstant
)

// FFEffect is the normalized payload describing one force-feedback
// effect, independent of whatever wire encoding the target protocol or
// the source kernel driver use.
type FFEffect struct {
	Kind          FFEffectKind
	StrongMagnitude uint16
	WeakMagnitude   uint16
	Duration      time.Duration
}

// FFOp names what a target wants done with an upstream effect slot.
type FFOp uint8

const (
	FFOpUpload FFOp = iota
	FFOpUpdate
	FFOpPlay
	FFOpStop
	FFOpErase
)

// FFUpload is a target->composite force-feedback request, carrying the
// upstream effect id the target's own protocol numbered it with.
type FFUpload struct {
	UpstreamID int16
	Op         FFOp
	Effect     FFEffect
}
