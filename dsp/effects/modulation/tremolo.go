package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
	vecmath "github.com/cwbudde/algo-vecmath"
)

const (
	defaultTremoloRateHz = 4.0
	defaultTremoloDepth  = 0.5
)

// Tremolo modulates amplitude by x * ((1-depth) + depth*sin(phase)).
type Tremolo struct {
	sampleRate float64
	rateHz     float64
	depth      float64
	lfo        sineLFO
	scratch    []float64
}

// NewTremolo creates a tremolo at 4 Hz with depth 0.5.
func NewTremolo(sampleRate float64) (*Tremolo, error) {
	if err := core.ValidateSampleRate("tremolo", sampleRate); err != nil {
		return nil, err
	}
	t := &Tremolo{sampleRate: sampleRate, rateHz: defaultTremoloRateHz, depth: defaultTremoloDepth}
	t.lfo.setFrequency(t.rateHz, sampleRate)
	return t, nil
}

// SetRate sets the modulation rate in Hz.
func (t *Tremolo) SetRate(hz float64) error {
	if hz < 0 || hz >= t.sampleRate/2 || math.IsNaN(hz) {
		return fmt.Errorf("tremolo rate must be in [0, %g): %f", t.sampleRate/2, hz)
	}
	t.rateHz = hz
	t.lfo.setFrequency(hz, t.sampleRate)
	return nil
}

// SetDepth sets the modulation depth in [0, 1].
func (t *Tremolo) SetDepth(depth float64) error {
	if depth < 0 || depth > 1 || math.IsNaN(depth) {
		return fmt.Errorf("tremolo depth must be in [0, 1]: %f", depth)
	}
	t.depth = depth
	return nil
}

// ProcessSample processes one sample.
func (t *Tremolo) ProcessSample(x float64) float64 {
	return x * ((1 - t.depth) + t.depth*t.lfo.next())
}

// ProcessBlock processes src into dst. dst and src may alias.
func (t *Tremolo) ProcessBlock(dst, src []float64) {
	t.scratch = growScratch(t.scratch, len(src))
	for i := range t.scratch {
		t.scratch[i] = (1 - t.depth) + t.depth*t.lfo.next()
	}
	vecmath.MulBlock(dst[:len(src)], src, t.scratch)
}

// Reset restarts the modulation phase.
func (t *Tremolo) Reset() { t.lfo.reset() }

// Rate returns the modulation rate in Hz.
func (t *Tremolo) Rate() float64 { return t.rateHz }

// Depth returns the modulation depth.
func (t *Tremolo) Depth() float64 { return t.depth }
