package graph

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
)

const (
	// DefaultMaxConnectionRadius is the centre distance below which two
	// discs may be wired.
	DefaultMaxConnectionRadius = 300.0
	// DefaultHighpassHz removes DC and rumble from the mix.
	DefaultHighpassHz = 20.0
	// DefaultLowpassHz band-limits the mix.
	DefaultLowpassHz = 18000.0

	outputFilterQ = 0.7071067811865476
)

type config struct {
	sampleRate float64
	blockSize  int
	maxRadius  float64
	highpassHz float64
	lowpassHz  float64
	// filtersSet marks corner frequencies chosen by WithOutputFilters.
	filtersSet bool
}

func defaultConfig() config {
	proc := core.DefaultProcessorConfig()
	return config{
		sampleRate: proc.SampleRate,
		blockSize:  proc.BlockSize,
		maxRadius:  DefaultMaxConnectionRadius,
		highpassHz: DefaultHighpassHz,
		lowpassHz:  DefaultLowpassHz,
	}
}

// Option configures a Builder.
type Option func(*config) error

// WithSampleRate sets the engine sample rate in Hz.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *config) error {
		if err := core.ValidateSampleRate("graph", sampleRate); err != nil {
			return err
		}
		cfg.sampleRate = sampleRate
		return nil
	}
}

// WithBlockSize sets the nominal buffer length used to preallocate node
// buffers. Longer buffers still work but allocate on first use.
func WithBlockSize(n int) Option {
	return func(cfg *config) error {
		if n <= 0 {
			return fmt.Errorf("graph block size must be > 0: %d", n)
		}
		cfg.blockSize = n
		return nil
	}
}

// WithMaxConnectionRadius sets the wiring distance limit.
func WithMaxConnectionRadius(r float64) Option {
	return func(cfg *config) error {
		if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
			return fmt.Errorf("graph max connection radius must be > 0 and finite: %f", r)
		}
		cfg.maxRadius = r
		return nil
	}
}

// WithOutputFilters sets the corner frequencies of the output highpass and
// lowpass. The lowpass must lie below Nyquist.
func WithOutputFilters(highpassHz, lowpassHz float64) Option {
	return func(cfg *config) error {
		if highpassHz <= 0 || math.IsNaN(highpassHz) || lowpassHz <= highpassHz || math.IsNaN(lowpassHz) {
			return fmt.Errorf("graph output filters must satisfy 0 < highpass < lowpass: %f, %f",
				highpassHz, lowpassHz)
		}
		cfg.highpassHz = highpassHz
		cfg.lowpassHz = lowpassHz
		cfg.filtersSet = true
		return nil
	}
}

// maxDefaultLowpass is the fraction of the sample rate the default lowpass
// corner is pulled down to at low sample rates.
const maxDefaultLowpass = 0.45

func (cfg *config) validate() error {
	if !cfg.filtersSet {
		cfg.lowpassHz = min(cfg.lowpassHz, maxDefaultLowpass*cfg.sampleRate)
	}
	if cfg.lowpassHz >= cfg.sampleRate/2 {
		return fmt.Errorf("graph output lowpass must be below Nyquist (%g Hz): %f",
			cfg.sampleRate/2, cfg.lowpassHz)
	}
	if cfg.highpassHz >= cfg.lowpassHz {
		return fmt.Errorf("graph output highpass must be below the lowpass (%g Hz): %f",
			cfg.lowpassHz, cfg.highpassHz)
	}
	return nil
}
