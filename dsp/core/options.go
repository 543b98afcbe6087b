package core

import (
	"fmt"
	"math"
)

const (
	// DefaultSampleRate is the engine rate. The reverb tunings are calibrated
	// for it and are rescaled for other rates.
	DefaultSampleRate = 44100.0
	// DefaultBlockSize is the nominal audio-device period in frames.
	DefaultBlockSize = 512
)

// ProcessorConfig holds the settings every processor shares.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
}

// DefaultProcessorConfig returns the engine defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: DefaultSampleRate,
		BlockSize:  DefaultBlockSize,
	}
}

// ValidateSampleRate returns an error naming what if sampleRate is not a
// positive finite number.
func ValidateSampleRate(what string, sampleRate float64) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%s sample rate must be > 0 and finite: %f", what, sampleRate)
	}
	return nil
}
