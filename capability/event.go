package capability

import "time"

// Event is one normalized (Capability, Value) pair crossing a bus, time
// stamped at the moment a source decoded it so downstream coalescing
// (frame windows, tap/hold timers) can reason about real elapsed time
// rather than queue-processing order.
type Event struct {
	Capability Capability
	Value      Value
	Timestamp  time.Time
	// SourceID identifies which source device produced this event, used
	// by the composite device to resolve per-source blocked/passthrough
	// state and to route force-feedback replies back to the right source.
	SourceID string
}

// NewEvent stamps a new Event at the current time.
func NewEvent(sourceID string, c Capability, v Value) Event {
	return Event{Capability: c, Value: v, Timestamp: time.Now(), SourceID: sourceID}
}

// ScheduledEvent is a deferred emission the composite device's event loop
// must re-check on every iteration (frame-coalesced releases, chord hold
// timeouts, tap-window expiry) rather than dispatch immediately.
type ScheduledEvent struct {
	Event Event
	// FireAt is when this event becomes due. The event loop drains all
	// scheduled events with FireAt <= now on every pass.
	FireAt time.Time
	// Cancel, if non-nil, is checked before firing: a cancelled scheduled
	// event (superseded by a newer real input) is dropped silently.
	Cancel func() bool
	// OnFire, if non-nil, is invoked once the event actually fires (after
	// the Cancel check), before its Event is dispatched — e.g. so an
	// evaluator can mark its originating press state as fired.
	OnFire func()
}

// Due reports whether this scheduled event should fire at instant now.
// It does not itself distinguish "cancelled" from "not yet due" — callers
// that need to drop a cancelled event rather than keep re-checking it
// forever should use Cancelled in addition to Due.
func (s ScheduledEvent) Due(now time.Time) bool {
	if s.Cancel != nil && s.Cancel() {
		return false
	}
	return !now.Before(s.FireAt)
}

// Cancelled reports whether this scheduled event has been superseded and
// should be dropped without ever firing.
func (s ScheduledEvent) Cancelled() bool {
	return s.Cancel != nil && s.Cancel()
}
