package testutil

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Spectrum returns the magnitudes of bins [0, N/2] of the Hann-windowed
// signal zero-padded to the next power of two, together with the bin width.
func Spectrum(signal []float64, sampleRate float64) ([]float64, float64, error) {
	if len(signal) == 0 {
		return nil, 0, fmt.Errorf("spectrum of empty signal")
	}
	n := 1
	for n < len(signal) {
		n <<= 1
	}

	in := make([]complex128, n)
	for i, v := range signal {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(len(signal)))
		in[i] = complex(v*w, 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return nil, 0, err
	}
	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return nil, 0, err
	}

	mags := make([]float64, n/2+1)
	for i := range mags {
		mags[i] = cmplx.Abs(out[i])
	}
	return mags, sampleRate / float64(n), nil
}

// DominantFrequency returns the centre frequency of the strongest non-DC bin.
func DominantFrequency(signal []float64, sampleRate float64) (float64, error) {
	mags, binHz, err := Spectrum(signal, sampleRate)
	if err != nil {
		return 0, err
	}
	best := 1
	for i := 2; i < len(mags); i++ {
		if mags[i] > mags[best] {
			best = i
		}
	}
	return float64(best) * binHz, nil
}

// BandMagnitude returns the largest bin magnitude within [loHz, hiHz].
func BandMagnitude(signal []float64, sampleRate, loHz, hiHz float64) (float64, error) {
	mags, binHz, err := Spectrum(signal, sampleRate)
	if err != nil {
		return 0, err
	}
	var peak float64
	for i, m := range mags {
		if f := float64(i) * binHz; f >= loHz && f <= hiHz {
			peak = math.Max(peak, m)
		}
	}
	return peak, nil
}
