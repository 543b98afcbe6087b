package synth

import (
	"fmt"
	"math"
	"strings"
)

// MaxHarmonics caps the partials of the additive waveforms.
const MaxHarmonics = 32

// Waveform selects the oscillator shape.
type Waveform int

const (
	// Sine is a single partial.
	Sine Waveform = iota
	// Square sums odd partials at 1/k.
	Square
	// Triangle sums odd partials at 1/k^2 with alternating sign.
	Triangle
	// Saw sums all partials at 1/k with alternating sign.
	Saw
)

// String returns the waveform name.
func (w Waveform) String() string {
	switch w {
	case Sine:
		return "sine"
	case Square:
		return "square"
	case Triangle:
		return "triangle"
	case Saw:
		return "saw"
	default:
		return fmt.Sprintf("Waveform(%d)", int(w))
	}
}

// ParseWaveform parses a waveform name.
func ParseWaveform(s string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sine":
		return Sine, nil
	case "square":
		return Square, nil
	case "triangle":
		return Triangle, nil
	case "saw", "sawtooth":
		return Saw, nil
	default:
		return 0, fmt.Errorf("unknown waveform %q", s)
	}
}

// partials fills coeffs with the Fourier sine-series coefficients c[k-1] for
// harmonic k of w at fundamental freqHz, keeping only harmonics below Nyquist
// and at most MaxHarmonics of them. It returns the used prefix.
func partials(coeffs *[MaxHarmonics]float64, w Waveform, freqHz, sampleRate float64) []float64 {
	limit := int(math.Ceil(sampleRate/2/freqHz)) - 1
	if w == Sine || limit < 1 {
		coeffs[0] = 1
		return coeffs[:1]
	}
	limit = min(limit, MaxHarmonics)

	*coeffs = [MaxHarmonics]float64{}
	for k := 1; k <= limit; k++ {
		fk := float64(k)
		switch w {
		case Square:
			if k%2 == 1 {
				coeffs[k-1] = 4 / math.Pi / fk
			}
		case Triangle:
			if k%2 == 1 {
				sign := 1.0
				if (k/2)%2 == 1 {
					sign = -1
				}
				coeffs[k-1] = sign * 8 / (math.Pi * math.Pi) / (fk * fk)
			}
		case Saw:
			sign := 1.0
			if k%2 == 0 {
				sign = -1
			}
			coeffs[k-1] = sign * 2 / math.Pi / fk
		}
	}
	return coeffs[:limit]
}

// additive evaluates sum c[k-1]*sin(k*phase) with the Chebyshev recurrence
// sin(k x) = 2 cos(x) sin((k-1) x) - sin((k-2) x).
func additive(coeffs []float64, phase float64) float64 {
	s1 := math.Sin(phase)
	if len(coeffs) == 1 {
		return coeffs[0] * s1
	}
	c2 := 2 * math.Cos(phase)
	var s0 float64
	out := coeffs[0] * s1
	for k := 1; k < len(coeffs); k++ {
		s := c2*s1 - s0
		s0, s1 = s1, s
		out += coeffs[k] * s
	}
	return out
}
