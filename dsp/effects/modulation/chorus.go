package modulation

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
	"github.com/cwbudde/algo-discs/dsp/delay"
)

const (
	// ChorusBlend, ChorusFeedforward and ChorusFeedback are the Dattorro
	// white-chorus coefficients.
	ChorusBlend       = 0.7071
	ChorusFeedforward = 1.0
	ChorusFeedback    = -0.7071

	defaultChorusRateHz  = 0.5
	defaultChorusDepth   = 0.003
	maxChorusDepth       = 0.0125
	chorusBaseDelaySecs  = 0.001
	minChorusRateHz      = 0.0
	chorusLinePadSamples = 3

	// chorusGlideStep bounds how far the center tap and the sweep amplitude
	// each move per sample after a depth change, in samples.
	chorusGlideStep = 0.25
)

// Chorus is a feedback/feedforward comb whose feedforward tap sweeps
// sinusoidally around a fixed center tap:
//
//	v[n] = x[n] + fb * d(center)
//	y[n] = blend * v[n] + ff * d(center + depth*sin(phase))
//
// where d(t) reads the line t seconds back with linear interpolation and
// center = 1ms + depth.
type Chorus struct {
	sampleRate float64
	rateHz     float64
	depth      float64

	center float64
	swing  float64

	targetCenter float64
	targetSwing  float64

	lfo  sineLFO
	line *delay.Line
}

// NewChorus creates a chorus at 0.5 Hz with a 3 ms depth.
func NewChorus(sampleRate float64) (*Chorus, error) {
	if err := core.ValidateSampleRate("chorus", sampleRate); err != nil {
		return nil, err
	}

	c := &Chorus{sampleRate: sampleRate, rateHz: defaultChorusRateHz, depth: defaultChorusDepth}
	c.center, c.swing = c.tapsFor(c.depth)
	c.targetCenter, c.targetSwing = c.center, c.swing
	line, err := delay.New(c.lineSize(c.depth))
	if err != nil {
		return nil, err
	}
	c.line = line
	c.lfo.setFrequency(c.rateHz, sampleRate)
	return c, nil
}

// SetRate sets the sweep rate in Hz.
func (c *Chorus) SetRate(hz float64) error {
	if hz < minChorusRateHz || hz >= c.sampleRate/2 || math.IsNaN(hz) {
		return fmt.Errorf("chorus rate must be in [0, %g): %f", c.sampleRate/2, hz)
	}
	c.rateHz = hz
	c.lfo.setFrequency(hz, c.sampleRate)
	return nil
}

// SetDepth sets the sweep depth in seconds, in [0, 0.0125].
//
// The taps glide to the new depth at no more than chorusGlideStep samples
// per sample, so the read position never jumps. A deeper setting grows the
// line at once; a shallower one shrinks it once the glide has landed.
func (c *Chorus) SetDepth(seconds float64) error {
	if seconds < 0 || seconds > maxChorusDepth || math.IsNaN(seconds) {
		return fmt.Errorf("chorus depth must be in [0, %g]: %f", maxChorusDepth, seconds)
	}
	if seconds == c.depth {
		return nil
	}

	c.depth = seconds
	c.targetCenter, c.targetSwing = c.tapsFor(seconds)
	if size := c.lineSize(seconds); size > c.line.Len() {
		c.resizeLine(size)
	}
	return nil
}

// ProcessSample processes one sample.
func (c *Chorus) ProcessSample(x float64) float64 {
	if c.center != c.targetCenter || c.swing != c.targetSwing {
		c.glide()
	}
	mod := c.line.ReadLinear(c.center + c.swing*c.lfo.next())
	v := x + ChorusFeedback*c.line.ReadLinear(c.center)
	c.line.Write(core.FlushDenormals(v))
	return ChorusBlend*v + ChorusFeedforward*mod
}

func (c *Chorus) glide() {
	c.center = approach(c.center, c.targetCenter, chorusGlideStep)
	c.swing = approach(c.swing, c.targetSwing, chorusGlideStep)
	if c.center == c.targetCenter && c.swing == c.targetSwing {
		if size := c.lineSize(c.depth); size < c.line.Len() {
			c.resizeLine(size)
		}
	}
}

// resizeLine reallocates the line keeping every held sample at its age.
// The taps stay inside the kept range, so nothing they read changes.
func (c *Chorus) resizeLine(size int) {
	tap := max(1, int(math.Round(c.center)))
	c.line.Resize(size, tap, tap)
}

func approach(v, target, step float64) float64 {
	switch {
	case v < target-step:
		return v + step
	case v > target+step:
		return v - step
	default:
		return target
	}
}

// ProcessBlock processes src into dst. dst and src may alias.
func (c *Chorus) ProcessBlock(dst, src []float64) {
	for i, x := range src {
		dst[i] = c.ProcessSample(x)
	}
}

// Reset clears the line and the sweep phase and settles any pending depth
// glide.
func (c *Chorus) Reset() {
	c.center, c.swing = c.targetCenter, c.targetSwing
	if size := c.lineSize(c.depth); size != c.line.Len() {
		c.resizeLine(size)
	}
	c.line.Reset()
	c.lfo.reset()
}

// Rate returns the sweep rate in Hz.
func (c *Chorus) Rate() float64 { return c.rateHz }

// Depth returns the sweep depth in seconds.
func (c *Chorus) Depth() float64 { return c.depth }

// SampleRate returns the sample rate in Hz.
func (c *Chorus) SampleRate() float64 { return c.sampleRate }

// tapsFor returns the center tap and the sweep amplitude in samples.
func (c *Chorus) tapsFor(depth float64) (center, swing float64) {
	return (chorusBaseDelaySecs + depth) * c.sampleRate, depth * c.sampleRate
}

func (c *Chorus) lineSize(depth float64) int {
	return int(math.Ceil((chorusBaseDelaySecs+2*depth)*c.sampleRate)) + chorusLinePadSamples
}
