package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
	"github.com/cwbudde/algo-discs/dsp/delay"
)

const (
	defaultDelayTime     = 0.25
	defaultDelayFeedback = 0.3
	maxDelayTime         = 2.0
)

// Delay is a feedback delay. Its output is the delayed signal only; mixing
// with the dry input is left to the caller.
//
// The tap is read before the input is written, so a delay of d samples
// returns x[n-d]. Changing the time resizes the line with a crossfade.
type Delay struct {
	sampleRate float64
	time       float64
	feedback   float64
	tap        float64
	line       *delay.Line
}

// NewDelay creates a delay with a 250 ms time and 0.3 feedback.
func NewDelay(sampleRate float64) (*Delay, error) {
	if err := core.ValidateSampleRate("delay", sampleRate); err != nil {
		return nil, err
	}

	d := &Delay{sampleRate: sampleRate, feedback: defaultDelayFeedback}
	d.time = defaultDelayTime
	d.tap = d.tapFor(defaultDelayTime)

	line, err := delay.New(lineSizeFor(d.tap))
	if err != nil {
		return nil, err
	}
	d.line = line
	return d, nil
}

// SetTime sets the delay time in seconds, in [0, 2]. The effective time is
// at least one sample.
func (d *Delay) SetTime(seconds float64) error {
	if seconds < 0 || seconds > maxDelayTime || math.IsNaN(seconds) {
		return fmt.Errorf("delay time must be in [0, %g]: %f", maxDelayTime, seconds)
	}
	tap := d.tapFor(seconds)
	if tap != d.tap {
		d.line.Resize(lineSizeFor(tap), int(math.Round(d.tap)), int(math.Round(tap)))
	}
	d.time = seconds
	d.tap = tap
	return nil
}

// SetFeedback sets the feedback gain in [0, 1].
func (d *Delay) SetFeedback(feedback float64) error {
	if feedback < 0 || feedback > 1 || math.IsNaN(feedback) {
		return fmt.Errorf("delay feedback must be in [0, 1]: %f", feedback)
	}
	d.feedback = feedback
	return nil
}

// ProcessSample processes one sample.
func (d *Delay) ProcessSample(x float64) float64 {
	out := d.line.ReadLinear(d.tap)
	d.line.Write(core.FlushDenormals(x + d.feedback*out))
	return out
}

// ProcessBlock processes src into dst. dst and src may alias.
func (d *Delay) ProcessBlock(dst, src []float64) {
	for i, x := range src {
		dst[i] = d.ProcessSample(x)
	}
}

// Reset clears the delay line.
func (d *Delay) Reset() { d.line.Reset() }

// Time returns the configured delay time in seconds.
func (d *Delay) Time() float64 { return d.time }

// Feedback returns the feedback gain.
func (d *Delay) Feedback() float64 { return d.feedback }

// DelaySamples returns the effective delay in samples.
func (d *Delay) DelaySamples() float64 { return d.tap }

func (d *Delay) tapFor(seconds float64) float64 {
	return math.Max(1, seconds*d.sampleRate)
}

// lineSizeFor leaves room for the interpolation neighbour.
func lineSizeFor(tap float64) int {
	return int(math.Ceil(tap)) + 2
}
