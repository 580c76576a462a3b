package composite

import (
	"context"

	"github.com/ShadowBlip/InputPlumber-sub000/capability"
)

// Source is a physical input device owned exclusively by a composite
// device: an evdev gamepad/keyboard/touchscreen node, a hidraw vendor
// protocol, an IIO sensor, or a sysfs mode-switch writer.
type Source interface {
	// ID uniquely identifies this source within its composite device
	// (e.g. the evdev node path or hidraw node path it was opened from).
	ID() string

	// Run reads the physical device until ctx is cancelled or an
	// unrecoverable error occurs, decoding every input into a
	// capability.Event pushed onto out. Run must itself classify any
	// error via Classify before returning it, and must return nil on a
	// clean ctx-cancellation shutdown.
	Run(ctx context.Context, out chan<- capability.Event) error

	// UploadEffect asks the physical device to allocate and render a new
	// force-feedback effect, returning the source-local effect id the
	// device assigned.
	UploadEffect(effect FFEffect) (int16, error)

	// UpdateEffect replaces the parameters of a previously uploaded
	// effect without reallocating its slot.
	UpdateEffect(id int16, effect FFEffect) error

	// EraseEffect releases a previously uploaded effect's slot.
	EraseEffect(id int16) error

	// Close releases the underlying file descriptor(s). Close must be
	// safe to call after Run has already returned due to ctx
	// cancellation (every exit path tears down exactly once).
	Close() error
}
