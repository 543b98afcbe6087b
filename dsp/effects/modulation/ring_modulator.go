package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
	vecmath "github.com/cwbudde/algo-vecmath"
)

const defaultRingModCarrierHz = 440.0

// RingModulator multiplies the input by a sine carrier.
type RingModulator struct {
	sampleRate float64
	carrierHz  float64
	carrier    sineLFO
	scratch    []float64
}

// NewRingModulator creates a ring modulator with a 440 Hz carrier.
func NewRingModulator(sampleRate float64) (*RingModulator, error) {
	if err := core.ValidateSampleRate("ring modulator", sampleRate); err != nil {
		return nil, err
	}
	r := &RingModulator{sampleRate: sampleRate, carrierHz: defaultRingModCarrierHz}
	r.carrier.setFrequency(r.carrierHz, sampleRate)
	return r, nil
}

// SetCarrierHz sets the carrier frequency in (0, sampleRate/2).
func (r *RingModulator) SetCarrierHz(hz float64) error {
	if hz <= 0 || hz >= r.sampleRate/2 || math.IsNaN(hz) {
		return fmt.Errorf("ring modulator carrier must be in (0, %g): %f", r.sampleRate/2, hz)
	}
	r.carrierHz = hz
	r.carrier.setFrequency(hz, r.sampleRate)
	return nil
}

// ProcessSample processes one sample.
func (r *RingModulator) ProcessSample(x float64) float64 {
	return x * r.carrier.next()
}

// ProcessBlock processes src into dst. dst and src may alias.
func (r *RingModulator) ProcessBlock(dst, src []float64) {
	r.scratch = growScratch(r.scratch, len(src))
	for i := range r.scratch {
		r.scratch[i] = r.carrier.next()
	}
	vecmath.MulBlock(dst[:len(src)], src, r.scratch)
}

// Reset restarts the carrier phase.
func (r *RingModulator) Reset() { r.carrier.reset() }

// CarrierHz returns the carrier frequency.
func (r *RingModulator) CarrierHz() float64 { return r.carrierHz }
