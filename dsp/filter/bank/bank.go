package bank

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/filter/biquad"
	vecmath "github.com/cwbudde/algo-vecmath"
)

const (
	defaultFollowerHz = 5.0
	defaultFollowerQ  = 0.7071067811865476
)

// Ticker is a single-sample filter stage.
type Ticker interface {
	Tick(x float64) float64
	Reset()
}

// Bank is a parallel filter bank with an envelope follower on its sum.
type Bank struct {
	filters  []Ticker
	follower *biquad.Filter
	gain     float64
}

type bankConfig struct {
	followerHz float64
	followerQ  float64
	gain       float64
}

// Option configures a Bank.
type Option func(*bankConfig) error

// WithFollower sets the envelope follower's corner frequency and Q.
func WithFollower(hz, q float64) Option {
	return func(cfg *bankConfig) error {
		if hz <= 0 || math.IsNaN(hz) || math.IsInf(hz, 0) {
			return fmt.Errorf("bank follower frequency must be > 0 and finite: %f", hz)
		}
		if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
			return fmt.Errorf("bank follower Q must be > 0 and finite: %f", q)
		}
		cfg.followerHz = hz
		cfg.followerQ = q
		return nil
	}
}

// WithOutputGain scales the summed output. The follower always sees the
// unscaled sum.
func WithOutputGain(gain float64) Option {
	return func(cfg *bankConfig) error {
		if math.IsNaN(gain) || math.IsInf(gain, 0) {
			return fmt.Errorf("bank output gain must be finite: %f", gain)
		}
		cfg.gain = gain
		return nil
	}
}

// New returns a bank over filters running at sampleRate.
func New(sampleRate float64, filters []Ticker, opts ...Option) (*Bank, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("bank sample rate must be > 0 and finite: %f", sampleRate)
	}
	cfg := bankConfig{
		followerHz: defaultFollowerHz,
		followerQ:  defaultFollowerQ,
		gain:       1,
	}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.followerHz >= sampleRate/2 {
		return nil, fmt.Errorf("bank follower frequency must be < %f: %f", sampleRate/2, cfg.followerHz)
	}

	follower := biquad.New(biquad.Lowpass, cfg.followerHz, cfg.followerQ, 1, sampleRate)
	follower.Normalize()

	return &Bank{
		filters:  append([]Ticker(nil), filters...),
		follower: follower,
		gain:     cfg.gain,
	}, nil
}

// Tick feeds x to every filter and returns the scaled sum.
func (b *Bank) Tick(x float64) float64 {
	return b.tick(x) * b.gain
}

func (b *Bank) tick(x float64) float64 {
	var sum float64
	for _, f := range b.filters {
		sum += f.Tick(x)
	}
	b.follower.Tick(sum * sum)
	return sum
}

// ProcessBlock runs Tick over src into dst. dst and src may alias.
func (b *Bank) ProcessBlock(dst, src []float64) {
	for i, x := range src {
		dst[i] = b.tick(x)
	}
	if b.gain != 1 {
		vecmath.ScaleBlock(dst[:len(src)], dst[:len(src)], b.gain)
	}
}

// Envelope returns the follower's latest output.
func (b *Bank) Envelope() float64 { return b.follower.Last() }

// GainEstimate returns the follower's latest output divided by its own
// gain: a slowly varying estimate of the summed signal power.
func (b *Bank) GainEstimate() float64 {
	return b.follower.Last() / b.follower.Gain()
}

// Filter returns the i-th filter.
func (b *Bank) Filter(i int) Ticker { return b.filters[i] }

// Len returns the number of filters.
func (b *Bank) Len() int { return len(b.filters) }

// SetOutputGain changes the output scale.
func (b *Bank) SetOutputGain(gain float64) { b.gain = gain }

// Reset clears every filter and the follower.
func (b *Bank) Reset() {
	for _, f := range b.filters {
		f.Reset()
	}
	b.follower.Reset()
}
