// Package composite implements the CompositeDevice event loop: the
// single-threaded core that owns a set of source devices and a set of
// target devices, translates every source event through the active
// profile, and fans the result out to every target.
package composite

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ShadowBlip/InputPlumber-sub000/capability"
	"github.com/ShadowBlip/InputPlumber-sub000/effecttable"
	"github.com/ShadowBlip/InputPlumber-sub000/profile"
)

// inboundDepth is the source->composite event bus capacity. Sized well
// above any single frame's worth of events so a burst (e.g. a touch
// frame with several simultaneous contacts) never blocks a source's
// Run loop against the composite device's own processing latency.
const inboundDepth = 2048

// outboundDepth is each composite->target channel's capacity. Kept
// small and deliberately tighter than inboundDepth: once a target that
// can't keep up (a wedged uhid fd) has filled it, dispatch drops further
// events for that target rather than let translated events queue
// arbitrarily far from when they were produced.
const outboundDepth = 16

// CapabilityMap is a flat v1-style source->target capability rename,
// applied before profile evaluation and independent of any chord/hold/
// tap logic: it exists for the common case of "this source's button
// layout doesn't match this target's, but every mapping is a simple
// 1:1 rename."
type CapabilityMap map[capability.Capability]capability.Capability

// Translate renames c if present in the map, otherwise returns c unchanged.
func (m CapabilityMap) Translate(c capability.Capability) capability.Capability {
	if t, ok := m[c]; ok {
		return t
	}
	return c
}

// Device is one CompositeDevice: a set of owned sources, a set of
// driven targets, and the single-threaded loop translating between them.
type Device struct {
	logger *slog.Logger

	sources *registry[Source]
	targets *registry[Target]

	mu            sync.Mutex
	capMap        CapabilityMap
	evaluator     *profile.Evaluator
	effects       *effecttable.Table
	intercept     bool
	subscribers   []chan capability.Event
	targetOutputs map[string]chan capability.Event

	inbound chan capability.Event

	runCtx    context.Context
	runCancel context.CancelFunc
}

// New builds a Device with no sources, no targets, and capability
// translation disabled (pass-through) until a profile is loaded.
func New(logger *slog.Logger) *Device {
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{
		logger:        logger,
		sources:       newRegistry[Source](),
		targets:       newRegistry[Target](),
		effects:       effecttable.New(),
		capMap:        CapabilityMap{},
		targetOutputs: make(map[string]chan capability.Event),
		inbound:       make(chan capability.Event, inboundDepth),
	}
}

// AddSource registers and starts a source device under id.
func (d *Device) AddSource(parent context.Context, id string, src Source) error {
	ctx, err := d.sources.Add(parent, id, src)
	if err != nil {
		return err
	}
	go func() {
		if runErr := src.Run(ctx, d.inbound); runErr != nil {
			kind := KindOf(runErr)
			d.logger.Error("source device exited", "source", id, "kind", kind.String(), "error", runErr)
			if kind == KindDeviceGone {
				d.RemoveSource(id)
			}
		}
		_ = src.Close()
	}()
	return nil
}

// RemoveSource cancels a source's context and unregisters it. Safe to
// call more than once or for an id that is no longer registered.
func (d *Device) RemoveSource(id string) {
	d.sources.Remove(id)
}

// ListSourceDevices returns every currently-registered source id.
func (d *Device) ListSourceDevices() []string {
	return d.sources.IDs()
}

// AddTarget registers and starts a target device under id, giving it its
// own bounded outbound channel and its own fx channel, drained into the
// effect table by pumpTargetEffects.
func (d *Device) AddTarget(parent context.Context, id string, tgt Target) error {
	ctx, err := d.targets.Add(parent, id, tgt)
	if err != nil {
		return err
	}
	out := make(chan capability.Event, outboundDepth)
	fx := make(chan FFUpload, outboundDepth)

	d.mu.Lock()
	d.targetOutputs[id] = out
	d.mu.Unlock()

	go d.pumpTargetEffects(ctx, id, fx)
	go func() {
		if runErr := tgt.Run(ctx, out, fx); runErr != nil {
			kind := KindOf(runErr)
			d.logger.Error("target device exited", "target", id, "kind", kind.String(), "error", runErr)
		}
		_ = tgt.Close()
		d.mu.Lock()
		delete(d.targetOutputs, id)
		d.mu.Unlock()
	}()
	return nil
}

// RemoveTarget cancels a target's context and unregisters it.
func (d *Device) RemoveTarget(id string) {
	d.targets.Remove(id)
}

// SetTargetDevices is the control-surface operation: it removes every
// currently-registered target not named in keep, leaving the rest (and
// any already-registered source devices) untouched.
func (d *Device) SetTargetDevices(keep []string) {
	keepSet := make(map[string]bool, len(keep))
	for _, k := range keep {
		keepSet[k] = true
	}
	for _, id := range d.targets.IDs() {
		if !keepSet[id] {
			d.RemoveTarget(id)
		}
	}
}

// LoadProfile installs p as the active profile, replacing any prior one.
func (d *Device) LoadProfile(p *profile.Profile) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.evaluator = profile.NewEvaluator(p)
}

// SetCapabilityMap installs a flat v1-style rename table, applied before
// profile (v2) evaluation on every event.
func (d *Device) SetCapabilityMap(m CapabilityMap) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.capMap = m
}

// SetInterceptMode toggles whether raw (unmapped) events are suppressed
// from reaching targets, forwarded only to SubscribeIntercepted
// subscribers instead — the mode a profile-editing UI uses to "capture"
// the next input without it also driving the game.
func (d *Device) SetInterceptMode(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.intercept = on
}

// SubscribeIntercepted returns a channel receiving every event while
// intercept mode is active. The returned channel is buffered
// (outboundDepth events); once it is full, a slow subscriber drops
// events rather than blocking the event loop.
func (d *Device) SubscribeIntercepted() <-chan capability.Event {
	ch := make(chan capability.Event, outboundDepth)
	d.mu.Lock()
	d.subscribers = append(d.subscribers, ch)
	d.mu.Unlock()
	return ch
}

// Run drives the single-threaded event loop until ctx is cancelled or
// Stop is called, and then returns nil. Errors from sources and targets
// are logged by their own goroutines and never end the loop, whatever
// their Kind, including KindFatal. Sources and targets may be added or
// removed concurrently from other goroutines; only event *processing*
// (translation, dispatch, scheduled-event drains) is serialized here.
func (d *Device) Run(ctx context.Context) error {
	d.runCtx, d.runCancel = context.WithCancel(ctx)
	defer d.runCancel()

	var scheduled []capability.ScheduledEvent
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-d.runCtx.Done():
			return nil
		case ev := <-d.inbound:
			more := d.handleEvent(ev, time.Now())
			scheduled = append(scheduled, more...)
		case now := <-ticker.C:
			scheduled = d.drainScheduled(scheduled, now)
		}
	}
}

// Stop cancels the running event loop and closes the source and target
// registries, which cancels every registered device's derived context.
func (d *Device) Stop() {
	if d.runCancel != nil {
		d.runCancel()
	}
	d.sources.Close()
	d.targets.Close()
}

func (d *Device) handleEvent(ev capability.Event, now time.Time) []capability.ScheduledEvent {
	d.mu.Lock()
	intercept := d.intercept
	evaluator := d.evaluator
	capMap := d.capMap
	if intercept {
		for _, sub := range d.subscribers {
			select {
			case sub <- ev:
			default:
			}
		}
	}
	d.mu.Unlock()

	if intercept {
		return nil
	}

	translated := ev
	translated.Capability = capMap.Translate(ev.Capability)

	var toEmit []capability.Event
	var scheduled []capability.ScheduledEvent
	if evaluator != nil {
		toEmit, scheduled = evaluator.Evaluate(translated, now)
	} else {
		toEmit = []capability.Event{translated}
	}

	d.dispatch(toEmit)
	return scheduled
}

func (d *Device) dispatch(events []capability.Event) {
	d.mu.Lock()
	outputs := make([]chan capability.Event, 0, len(d.targetOutputs))
	for _, out := range d.targetOutputs {
		outputs = append(outputs, out)
	}
	d.mu.Unlock()

	for _, ev := range events {
		for _, out := range outputs {
			select {
			case out <- ev:
			default:
				d.logger.Warn("target output channel full, dropping event", "capability", ev.Capability.String())
			}
		}
	}
}

func (d *Device) drainScheduled(scheduled []capability.ScheduledEvent, now time.Time) []capability.ScheduledEvent {
	remaining := scheduled[:0]
	for _, s := range scheduled {
		if s.Cancelled() {
			continue
		}
		if s.Due(now) {
			if s.OnFire != nil {
				s.OnFire()
			}
			d.dispatch([]capability.Event{s.Event})
			continue
		}
		remaining = append(remaining, s)
	}
	return remaining
}

// pumpTargetEffects routes a target's force-feedback requests to every
// source currently bound to this composite device, allocating/erasing
// upstream effect-table slots as the target's protocol requests them.
func (d *Device) pumpTargetEffects(ctx context.Context, targetID string, fx <-chan FFUpload) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-fx:
			if !ok {
				return
			}
			d.handleFFUpload(targetID, req)
		}
	}
}

func (d *Device) handleFFUpload(targetID string, req FFUpload) {
	switch req.Op {
	case FFOpUpload:
		id, err := d.effects.Allocate()
		if err != nil {
			d.logger.Warn("effect table exhausted", "target", targetID, "error", err)
			return
		}
		for _, srcID := range d.sources.IDs() {
			src, ok := d.sources.Get(srcID)
			if !ok {
				continue
			}
			sid, err := src.UploadEffect(req.Effect)
			if err != nil {
				d.logger.Warn("source rejected effect upload", "source", srcID, "error", err)
				continue
			}
			_ = d.effects.BindSource(id, srcID, sid)
		}
	case FFOpUpdate:
		srcIDs, err := d.effects.SourcesFor(req.UpstreamID)
		if err != nil {
			return
		}
		for _, srcID := range srcIDs {
			src, ok := d.sources.Get(srcID)
			if !ok {
				continue
			}
			sid, _ := d.effects.SourceEffectID(req.UpstreamID, srcID)
			_ = src.UpdateEffect(sid, req.Effect)
		}
	case FFOpErase:
		srcIDs, err := d.effects.SourcesFor(req.UpstreamID)
		if err != nil {
			return
		}
		for _, srcID := range srcIDs {
			src, ok := d.sources.Get(srcID)
			if !ok {
				continue
			}
			sid, _ := d.effects.SourceEffectID(req.UpstreamID, srcID)
			_ = src.EraseEffect(sid)
		}
		_ = d.effects.Erase(req.UpstreamID)
	}
}
