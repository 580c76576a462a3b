package composite

import (
	"context"

	"github.com/ShadowBlip/InputPlumber-sub000/capability"
)

// Target is a virtual device the composite device drives: it consumes
// translated capability.Events and turns them into whatever protocol the
// emulated controller speaks (a uhid input report, in every target this
// repository implements).
type Target interface {
	// ID uniquely identifies this target within its composite device.
	ID() string

	// Capabilities reports every capability this target can render. The
	// composite device does not call it: its capability map is installed
	// with SetCapabilityMap, not derived from its targets.
	Capabilities() []capability.Capability

	// Run consumes events from in and renders them to the underlying
	// virtual device until ctx is cancelled. Any force-feedback requests
	// the emulated protocol receives from the host are pushed onto fx for
	// the composite device to route back to the owning source(s).
	Run(ctx context.Context, in <-chan capability.Event, fx chan<- FFUpload) error

	// Close tears down the underlying virtual device.
	Close() error
}
