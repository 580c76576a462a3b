// Package profile implements the chord/hold/tap mapping state machine a
// composite device evaluates incoming source events against: profiles
// are user-authored YAML documents (decoded with gopkg.in/yaml.v3, the
// same library the teacher's own config scaffolding uses) naming one or
// more Mappings from a source Capability to a target Capability.
package profile

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ShadowBlip/InputPlumber-sub000/capability"
)

// Mode names how a Mapping's target should be driven relative to the
// source capability's press/release edges.
type Mode int

const (
	// OnPress fires the target the instant the source goes active.
	OnPress Mode = iota
	// OnRelease fires the target the instant the source goes inactive.
	OnRelease
	// Hold fires the target only once the source has stayed active for
	// at least HoldDuration.
	Hold
	// Tap fires the target if the source went active then inactive
	// again within TapMaxDuration — a quick tap, as opposed to a hold.
	Tap
	// Chord fires the target only while every capability in ChordWith is
	// also currently active alongside the source capability.
	Chord
)

// Mapping is one source->target translation rule.
type Mapping struct {
	Source         capability.Capability
	Target         capability.Capability
	Mode           Mode
	HoldDuration   time.Duration
	TapMaxDuration time.Duration
	ChordWith      []capability.Capability
}

type yamlMapping struct {
	Source         string        `yaml:"source"`
	Target         string        `yaml:"target"`
	Mode           string        `yaml:"mode"`
	HoldDuration   time.Duration `yaml:"hold_duration"`
	TapMaxDuration time.Duration `yaml:"tap_max_duration"`
	ChordWith      []string      `yaml:"chord_with"`
}

// UnmarshalYAML decodes a Mapping from its wire (dotted-name) form.
func (m *Mapping) UnmarshalYAML(unmarshal func(any) error) error {
	var y yamlMapping
	if err := unmarshal(&y); err != nil {
		return err
	}
	src, err := ParseCapability(y.Source)
	if err != nil {
		return fmt.Errorf("profile: mapping source: %w", err)
	}
	tgt, err := ParseCapability(y.Target)
	if err != nil {
		return fmt.Errorf("profile: mapping target: %w", err)
	}
	mode, err := parseMode(y.Mode)
	if err != nil {
		return err
	}
	chord := make([]capability.Capability, 0, len(y.ChordWith))
	for _, c := range y.ChordWith {
		cc, err := ParseCapability(c)
		if err != nil {
			return fmt.Errorf("profile: chord_with: %w", err)
		}
		chord = append(chord, cc)
	}
	*m = Mapping{
		Source: src, Target: tgt, Mode: mode,
		HoldDuration: y.HoldDuration, TapMaxDuration: y.TapMaxDuration,
		ChordWith: chord,
	}
	return nil
}

func parseMode(s string) (Mode, error) {
	switch s {
	case "", "on_press":
		return OnPress, nil
	case "on_release":
		return OnRelease, nil
	case "hold":
		return Hold, nil
	case "tap":
		return Tap, nil
	case "chord":
		return Chord, nil
	default:
		return 0, fmt.Errorf("profile: unknown mapping mode %q", s)
	}
}

// Profile is a full set of mapping rules, as loaded from a profile file.
type Profile struct {
	Name     string    `yaml:"name"`
	Mappings []Mapping `yaml:"mappings"`
}

// Load decodes a Profile from YAML bytes.
func Load(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile: decode: %w", err)
	}
	return &p, nil
}

// DefaultChordSuppressionWindow is how long, after a chord fires, the
// individual member capabilities that made it up are suppressed from
// also producing their own un-chorded mapping — long enough to absorb
// normal input-event jitter between physically simultaneous presses,
// short enough that a deliberate next press is never eaten.
const DefaultChordSuppressionWindow = 30 * time.Millisecond
