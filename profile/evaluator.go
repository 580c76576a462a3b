package profile

import (
	"sync"
	"time"

	"github.com/ShadowBlip/InputPlumber-sub000/capability"
)

// pressState tracks one source capability's current activation, for edge
// detection (press/release), hold timing, and tap-window timing.
type pressState struct {
	active    bool
	since     time.Time
	holdFired bool
}

func isActive(v capability.Value) bool {
	switch v.Kind() {
	case capability.ValueBool:
		return v.Bool()
	case capability.ValueFloat:
		return v.Float() != 0
	default:
		return false
	}
}

// Evaluator applies a Profile's Mappings against a stream of source
// events, tracking per-capability press state across calls so Hold/Tap/
// Chord mappings can reason about elapsed time between calls to
// Evaluate, not just the single event currently in hand.
type Evaluator struct {
	mu            sync.Mutex
	profile       *Profile
	press         map[capability.Capability]*pressState
	suppressUntil map[capability.Capability]time.Time
}

// NewEvaluator builds an Evaluator bound to profile p.
func NewEvaluator(p *Profile) *Evaluator {
	return &Evaluator{
		profile:       p,
		press:         make(map[capability.Capability]*pressState),
		suppressUntil: make(map[capability.Capability]time.Time),
	}
}

// Evaluate processes one source Event at instant now, returning any
// target events to emit immediately and any deferred target events that
// must be checked again by the caller's scheduled-event drain loop
// (e.g. a pending Hold that hasn't reached its threshold yet).
func (e *Evaluator) Evaluate(ev capability.Event, now time.Time) ([]capability.Event, []capability.ScheduledEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.press[ev.Capability]
	if !ok {
		st = &pressState{}
		e.press[ev.Capability] = st
	}
	wasActive := st.active
	nowActive := isActive(ev.Value)
	pressedEdge := !wasActive && nowActive
	releasedEdge := wasActive && !nowActive

	if pressedEdge {
		st.since = now
		st.holdFired = false
	}
	st.active = nowActive

	var emit []capability.Event
	var scheduled []capability.ScheduledEvent

	for i := range e.profile.Mappings {
		m := &e.profile.Mappings[i]
		if !m.Source.Equal(ev.Capability) {
			// A chord member going inactive while the chord's source is
			// still held releases the chord's target.
			if src := e.press[m.Source]; m.Mode == Chord && releasedEdge && src != nil && src.active {
				for _, member := range m.ChordWith {
					if member.Equal(ev.Capability) {
						emit = append(emit, capability.NewEvent(ev.SourceID, m.Target, capability.NewBool(false)))
						break
					}
				}
			}
			continue
		}
		if until, suppressed := e.suppressUntil[ev.Capability]; suppressed && now.Before(until) {
			continue
		}

		switch m.Mode {
		case OnPress:
			if pressedEdge {
				emit = append(emit, e.targetEvent(ev, m, true, now))
				if ev.Capability.IsMomentaryTranslation(m.Target) {
					// A dial tick has no release of its own: schedule one and
					// let the next tick register as a fresh press.
					scheduled = append(scheduled, capability.ScheduledEvent{
						Event:  e.targetEvent(ev, m, false, now),
						FireAt: now.Add(momentaryDuration),
					})
					st.active = false
				}
			} else if releasedEdge {
				emit = append(emit, e.targetEvent(ev, m, false, now))
			}
		case OnRelease:
			if releasedEdge {
				emit = append(emit, e.targetEvent(ev, m, true, now))
			}
		case Hold:
			if pressedEdge {
				mm := m
				source := ev.Capability
				scheduled = append(scheduled, capability.ScheduledEvent{
					Event:  e.targetEvent(ev, mm, true, now),
					FireAt: now.Add(mm.HoldDuration),
					Cancel: func() bool {
						e.mu.Lock()
						defer e.mu.Unlock()
						s := e.press[source]
						return s == nil || !s.active
					},
					OnFire: func() {
						e.FireScheduled(source)
					},
				})
			} else if releasedEdge && st.holdFired {
				emit = append(emit, e.targetEvent(ev, m, false, now))
			}
		case Tap:
			if releasedEdge && now.Sub(st.since) <= m.TapMaxDuration {
				emit = append(emit, e.momentaryPair(ev, m, now)...)
			}
		case Chord:
			if pressedEdge && e.chordSatisfied(m, now) {
				emit = append(emit, e.targetEvent(ev, m, true, now))
				e.suppressMembers(m, now)
			} else if releasedEdge {
				emit = append(emit, e.targetEvent(ev, m, false, now))
			}
		}
	}

	return emit, scheduled
}

// FireScheduled is called by the composite device's scheduled-event
// drain when s becomes due; it marks the originating Hold as fired so a
// later release still emits the matching target release.
func (e *Evaluator) FireScheduled(source capability.Capability) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.press[source]; ok {
		st.holdFired = true
	}
}

func (e *Evaluator) chordSatisfied(m *Mapping, now time.Time) bool {
	for _, member := range m.ChordWith {
		st, ok := e.press[member]
		if !ok || !st.active {
			return false
		}
	}
	return true
}

func (e *Evaluator) suppressMembers(m *Mapping, now time.Time) {
	until := now.Add(DefaultChordSuppressionWindow)
	for _, member := range m.ChordWith {
		e.suppressUntil[member] = until
	}
}

// momentaryDuration is how long a dial->discrete momentary press is held
// before its scheduled release fires. Tap mappings do not use it:
// momentaryPair returns their press and release together.
const momentaryDuration = 60 * time.Millisecond

func (e *Evaluator) momentaryPair(ev capability.Event, m *Mapping, now time.Time) []capability.Event {
	return []capability.Event{
		e.targetEvent(ev, m, true, now),
		capability.NewEvent(ev.SourceID, m.Target, capability.NewBool(false)),
	}
}

func (e *Evaluator) targetEvent(ev capability.Event, m *Mapping, active bool, now time.Time) capability.Event {
	if ev.Capability.IsMomentaryTranslation(m.Target) {
		return capability.NewEvent(ev.SourceID, m.Target, capability.NewBool(active))
	}
	switch ev.Value.Kind() {
	case capability.ValueFloat:
		if !active {
			return capability.NewEvent(ev.SourceID, m.Target, capability.NewFloat(0))
		}
		return capability.NewEvent(ev.SourceID, m.Target, ev.Value)
	default:
		return capability.NewEvent(ev.SourceID, m.Target, capability.NewBool(active))
	}
}
