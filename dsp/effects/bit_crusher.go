package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
)

const (
	defaultBitCrusherBits       = 8
	defaultBitCrusherDownsample = 1
	minBitCrusherBits           = 1
	maxBitCrusherBits           = 16
	maxBitCrusherDownsample     = 16
)

// BitCrusher reduces amplitude resolution and effective sample rate.
//
// Every Downsample-th input is quantized and held for the following
// Downsample outputs. With Bits >= 2 the held value snaps to one of 2^Bits
// levels spread evenly across [-1, 1]; inputs outside that range clip to
// the outermost level. Bits == 1 disables requantization, so Bits=1 with
// Downsample=1 is an exact passthrough.
type BitCrusher struct {
	sampleRate float64
	bits       int
	downsample int
	step       float64

	holdCounter int
	holdValue   float64
}

// NewBitCrusher creates a bit crusher with 8 bits and no downsampling.
func NewBitCrusher(sampleRate float64) (*BitCrusher, error) {
	if err := core.ValidateSampleRate("bit crusher", sampleRate); err != nil {
		return nil, err
	}
	bc := &BitCrusher{sampleRate: sampleRate}
	if err := bc.SetBits(defaultBitCrusherBits); err != nil {
		return nil, err
	}
	if err := bc.SetDownsample(defaultBitCrusherDownsample); err != nil {
		return nil, err
	}
	return bc, nil
}

// SetBits sets the bit depth in [1, 16].
func (bc *BitCrusher) SetBits(bits int) error {
	if bits < minBitCrusherBits || bits > maxBitCrusherBits {
		return fmt.Errorf("bit crusher bits must be in [%d, %d]: %d",
			minBitCrusherBits, maxBitCrusherBits, bits)
	}
	bc.bits = bits
	if bits > 1 {
		bc.step = 2 / (math.Exp2(float64(bits)) - 1)
	} else {
		bc.step = 0
	}
	return nil
}

// SetDownsample sets the hold factor in [1, 16].
func (bc *BitCrusher) SetDownsample(factor int) error {
	if factor < 1 || factor > maxBitCrusherDownsample {
		return fmt.Errorf("bit crusher downsample factor must be in [1, %d]: %d",
			maxBitCrusherDownsample, factor)
	}
	bc.downsample = factor
	return nil
}

// Reset clears the sample-and-hold state.
func (bc *BitCrusher) Reset() {
	bc.holdCounter = 0
	bc.holdValue = 0
}

// ProcessSample processes one sample.
func (bc *BitCrusher) ProcessSample(input float64) float64 {
	if bc.holdCounter == 0 {
		bc.holdValue = bc.quantize(input)
	}
	bc.holdCounter++
	if bc.holdCounter >= bc.downsample {
		bc.holdCounter = 0
	}
	return bc.holdValue
}

// ProcessBlock processes src into dst. dst and src may alias.
func (bc *BitCrusher) ProcessBlock(dst, src []float64) {
	for i, x := range src {
		dst[i] = bc.ProcessSample(x)
	}
}

// Bits returns the bit depth.
func (bc *BitCrusher) Bits() int { return bc.bits }

// Downsample returns the hold factor.
func (bc *BitCrusher) Downsample() int { return bc.downsample }

// SampleRate returns the sample rate in Hz.
func (bc *BitCrusher) SampleRate() float64 { return bc.sampleRate }

func (bc *BitCrusher) quantize(x float64) float64 {
	if bc.step == 0 {
		return x
	}
	x = core.Clamp(x, -1, 1)
	return math.Round((x+1)/bc.step)*bc.step - 1
}
