// Package effecttable bookkeeps force-feedback effect IDs flowing
// upstream from a target device (a game assigning an effect slot over
// the emulated gamepad's protocol) down to whichever physical source
// device(s) must actually render it.
package effecttable

import "fmt"

// SlotCount is the number of concurrent effect slots a composite device
// exposes upstream, matching the Linux evdev FF_MAX_EFFECTS convention
// most gamepad drivers advertise.
const SlotCount = 64

// Table maps an upstream effect id (as the target protocol numbers it,
// 0..SlotCount-1) to the per-source effect id each source device
// allocated for the same logical effect.
type Table struct {
	free    [SlotCount]bool
	sources [SlotCount]map[string]int16
}

// New returns an empty table with all slots free.
func New() *Table {
	t := &Table{}
	for i := range t.free {
		t.free[i] = true
	}
	return t
}

// ErrNoFreeSlot is returned by Allocate when all SlotCount slots are in use.
var ErrNoFreeSlot = fmt.Errorf("effecttable: no free slot (all %d in use)", SlotCount)

// Allocate reserves the lowest-numbered free upstream slot and returns it.
func (t *Table) Allocate() (int16, error) {
	for i, free := range t.free {
		if free {
			t.free[i] = false
			t.sources[i] = map[string]int16{}
			return int16(i), nil
		}
	}
	return -1, ErrNoFreeSlot
}

// BindSource records which effect id a given source assigned for the
// upload of upstream slot id.
func (t *Table) BindSource(id int16, sourceID string, sourceEffectID int16) error {
	if err := t.checkID(id); err != nil {
		return err
	}
	t.sources[id][sourceID] = sourceEffectID
	return nil
}

// SourceEffectID returns the effect id a given source assigned for
// upstream slot id, and whether that source has an effect bound there.
func (t *Table) SourceEffectID(id int16, sourceID string) (int16, bool) {
	if err := t.checkID(id); err != nil {
		return -1, false
	}
	v, ok := t.sources[id][sourceID]
	return v, ok
}

// SourcesFor returns every source id currently holding an effect for
// upstream slot id, so Erase/Update can fan out to all of them.
func (t *Table) SourcesFor(id int16) ([]string, error) {
	if err := t.checkID(id); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(t.sources[id]))
	for src := range t.sources[id] {
		ids = append(ids, src)
	}
	return ids, nil
}

// Erase releases an upstream slot, forgetting all of its source bindings.
func (t *Table) Erase(id int16) error {
	if err := t.checkID(id); err != nil {
		return err
	}
	t.free[id] = true
	t.sources[id] = nil
	return nil
}

// InUse reports whether id is currently allocated.
func (t *Table) InUse(id int16) bool {
	if id < 0 || int(id) >= SlotCount {
		return false
	}
	return !t.free[id]
}

func (t *Table) checkID(id int16) error {
	if id < 0 || int(id) >= SlotCount {
		return fmt.Errorf("effecttable: id %d out of range [0, %d)", id, SlotCount)
	}
	if t.free[id] {
		return fmt.Errorf("effecttable: id %d is not allocated", id)
	}
	return nil
}
