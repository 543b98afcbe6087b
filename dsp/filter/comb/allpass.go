package comb

import "fmt"

// DefaultAllpassGain is the Freeverb allpass coefficient.
const DefaultAllpassGain = 0.5

// Allpass is the Freeverb allpass approximation:
//
//	out    = buf[i] - x
//	buf[i] = x + g*buf[i]
//
// It is not a true allpass for g != 0.5 but colors the signal far less than
// a comb.
type Allpass struct {
	buf  []float64
	pos  int
	gain float64
}

// NewAllpass returns an allpass with a delay of size samples.
func NewAllpass(size int, gain float64) (*Allpass, error) {
	if size <= 0 {
		return nil, fmt.Errorf("allpass size must be > 0: %d", size)
	}
	return &Allpass{buf: make([]float64, size), gain: gain}, nil
}

// Tick advances the allpass by one sample.
func (a *Allpass) Tick(x float64) float64 {
	stored := a.buf[a.pos]
	out := stored - x
	a.buf[a.pos] = x + a.gain*stored

	a.pos++
	if a.pos == len(a.buf) {
		a.pos = 0
	}
	return out
}

// Len returns the delay in samples.
func (a *Allpass) Len() int { return len(a.buf) }

// Reset clears the ring buffer.
func (a *Allpass) Reset() {
	clear(a.buf)
	a.pos = 0
}
