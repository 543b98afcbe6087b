package ugen

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-discs/dsp/core"
	"github.com/cwbudde/algo-discs/dsp/synth"
)

// ErrUnknownKind is returned when a unit kind name is not registered.
var ErrUnknownKind = errors.New("ugen: unknown kind")

// Kind identifies a unit generator.
type Kind int

// Unit kinds. Input and the oscillator kinds Sine through Saw are sources:
// they never receive a wire.
const (
	Input Kind = iota
	BitCrusher
	Chorus
	Delay
	Distortion
	Looper
	RingMod
	Reverb
	Tremolo
	Sine
	Square
	Triangle
	Saw

	numKinds
)

// Bounds is the inclusive range of one parameter.
type Bounds struct {
	Min, Max float64
}

// Clamp limits v to b. NaN maps to Min.
func (b Bounds) Clamp(v float64) float64 { return core.Clamp(v, b.Min, b.Max) }

type kindInfo struct {
	name     string
	p1, p2   Bounds
	d1, d2   float64
	floor1   bool
	floor2   bool
	p1Label  string
	p2Label  string
	waveform synth.Waveform
}

var kinds = [numKinds]kindInfo{
	Input:      {name: "input", p1: Bounds{0, 1}, p2: Bounds{0, 1}, d1: 1, p1Label: "volume"},
	BitCrusher: {name: "bitcrusher", p1: Bounds{1, 16}, p2: Bounds{1, 16}, d1: 8, d2: 1, floor1: true, floor2: true, p1Label: "bits", p2Label: "downsample"},
	Chorus:     {name: "chorus", p1: Bounds{0, 1}, p2: Bounds{0, 1}, d1: 0.5, d2: 0.25, p1Label: "rate", p2Label: "depth"},
	Delay:      {name: "delay", p1: Bounds{0, 2}, p2: Bounds{0, 1}, d1: 0.25, d2: 0.3, p1Label: "time", p2Label: "feedback"},
	Distortion: {name: "distortion", p1: Bounds{1, 50}, p2: Bounds{0, 1}, d1: 5, d2: 0.5, p1Label: "pre", p2Label: "post"},
	Looper:     {name: "looper", p1: Bounds{40, 240}, p2: Bounds{1, 16}, d1: 120, d2: 4, floor2: true, p1Label: "bpm", p2Label: "beats"},
	RingMod:    {name: "ringmod", p1: Bounds{0, 1}, p2: Bounds{0, 1}, d1: 0.1, p1Label: "rate"},
	Reverb:     {name: "reverb", p1: Bounds{0, 1}, p2: Bounds{0, 1}, d1: 0.5, d2: 0.5, p1Label: "room", p2Label: "damp"},
	Tremolo:    {name: "tremolo", p1: Bounds{0, 1}, p2: Bounds{0, 1}, d1: 0.5, d2: 0.5, p1Label: "rate", p2Label: "depth"},
	Sine:       midiKind("sine", synth.Sine),
	Square:     midiKind("square", synth.Square),
	Triangle:   midiKind("triangle", synth.Triangle),
	Saw:        midiKind("saw", synth.Saw),
}

func midiKind(name string, w synth.Waveform) kindInfo {
	return kindInfo{
		name:     name,
		p1:       Bounds{0.001, 2},
		p2:       Bounds{0.05, 10},
		d1:       0.01,
		d2:       1,
		p1Label:  "attack",
		p2Label:  "sustain",
		waveform: w,
	}
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind resolves a kind name, ignoring case and surrounding space.
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k := range numKinds {
		if kinds[k].name == n {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k >= 0 && k < numKinds }

// String returns the kind name.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].name
}

// IsInput reports whether k takes external audio.
func (k Kind) IsInput() bool { return k == Input }

// IsMIDI reports whether k is an oscillator voice kind driven by note events.
func (k Kind) IsMIDI() bool { return k >= Sine && k <= Saw }

// IsSource reports whether k produces signal without any input wire.
func (k Kind) IsSource() bool { return k.IsInput() || k.IsMIDI() }

// IsLooper reports whether k is the looper.
func (k Kind) IsLooper() bool { return k == Looper }

// Bounds returns the parameter ranges of k.
func (k Kind) Bounds() (p1, p2 Bounds) {
	if !k.Valid() {
		return Bounds{}, Bounds{}
	}
	return kinds[k].p1, kinds[k].p2
}

// Defaults returns the initial parameters of k.
func (k Kind) Defaults() (p1, p2 float64) {
	if !k.Valid() {
		return 0, 0
	}
	return kinds[k].d1, kinds[k].d2
}

// Labels names the two parameters of k. Unused parameters have an empty
// label.
func (k Kind) Labels() (p1, p2 string) {
	if !k.Valid() {
		return "", ""
	}
	return kinds[k].p1Label, kinds[k].p2Label
}
