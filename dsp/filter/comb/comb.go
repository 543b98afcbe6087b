package comb

import (
	"fmt"

	"github.com/cwbudde/algo-discs/dsp/filter/biquad"
)

// Comb is a feedback comb filter with damping.
//
//	out    = buf[i]
//	buf[i] = x + feedback * lp(out)
//
// where lp is a single-pole lowpass with pole at damp and pole gain 1-damp.
type Comb struct {
	buf      []float64
	pos      int
	feedback float64
	damp     float64
	lp       *biquad.Filter
}

// New returns a comb with a delay of size samples.
func New(size int, feedback, damp float64) (*Comb, error) {
	if size <= 0 {
		return nil, fmt.Errorf("comb size must be > 0: %d", size)
	}

	c := &Comb{
		buf:      make([]float64, size),
		feedback: feedback,
		damp:     damp,
		lp:       biquad.New(biquad.SinglePole, damp, 1-damp, 1, 1),
	}
	return c, nil
}

// Tick advances the comb by one sample.
func (c *Comb) Tick(x float64) float64 {
	out := c.buf[c.pos]
	c.buf[c.pos] = x + c.feedback*c.lp.Tick(out)

	c.pos++
	if c.pos == len(c.buf) {
		c.pos = 0
	}
	return out
}

// SetFeedback sets the loop gain. Values >= 1 make the comb unstable.
func (c *Comb) SetFeedback(feedback float64) { c.feedback = feedback }

// SetDamp moves the damping pole. 0 disables damping.
func (c *Comb) SetDamp(damp float64) {
	c.damp = damp
	c.lp.SetParams(damp, 1-damp, 1)
}

// Feedback returns the loop gain.
func (c *Comb) Feedback() float64 { return c.feedback }

// Damp returns the damping pole.
func (c *Comb) Damp() float64 { return c.damp }

// Len returns the delay in samples.
func (c *Comb) Len() int { return len(c.buf) }

// Reset clears the ring buffer and the damping filter.
func (c *Comb) Reset() {
	clear(c.buf)
	c.pos = 0
	c.lp.Reset()
}
