package biquad

import "math"

// CalculateCoefficients derives A and B from the filter kind, center, q and
// sample rate using a bilinear-transform discretization. It is the only
// place the coefficients are written.
func (f *Filter) CalculateCoefficients() {
	var a, b [3]float64

	switch f.kind {
	case Lowpass, Highpass:
		wc := 2 * math.Pi * f.center
		g0 := 4.0
		g1 := 2 * wc / f.q / f.sampleRate
		g2 := (wc / f.sampleRate) * (wc / f.sampleRate)

		a = [3]float64{g0 + g1 + g2, 2 * (g2 - g0), g0 - g1 + g2}
		if f.kind == Lowpass {
			b = [3]float64{g2, 2 * g2, g2}
		} else {
			b = [3]float64{g0, -2 * g0, g0}
		}

	case Bandpass, Bandstop:
		wc := 2 * math.Pi * f.center
		bw := wc / f.q
		wl := wc - bw/2
		wh := wc + bw/2

		g0 := 4.0
		g1 := 2 * bw / f.sampleRate
		g2 := wl * wh / (f.sampleRate * f.sampleRate)

		a = [3]float64{g0 + g1 + g2, 2 * (g2 - g0), g0 - g1 + g2}
		if f.kind == Bandpass {
			b = [3]float64{g1, 0, -g1}
		} else {
			beta := 2 * (g2 - g0)
			b = [3]float64{g0 + g2, beta, g0 + g2}
		}

	case SinglePole:
		a = [3]float64{1, -f.center, 0}
		b = [3]float64{f.q, 0, 0}

	default:
		a = [3]float64{1, 0, 0}
		b = [3]float64{1, 0, 0}
	}

	inv := 1 / a[0]
	for i := range a {
		f.A[i] = a[i] * inv
		f.B[i] = b[i] * inv
	}
}

// DCGain returns the unscaled gain at 0 Hz: (b0+b1+b2)/(a0+a1+a2).
func (f *Filter) DCGain() float64 {
	return (f.B[0] + f.B[1] + f.B[2]) / (f.A[0] + f.A[1] + f.A[2])
}

// HighFrequencyGain returns the unscaled gain at Nyquist:
// (b0-b1+b2)/(a0-a1+a2).
func (f *Filter) HighFrequencyGain() float64 {
	return (f.B[0] - f.B[1] + f.B[2]) / (f.A[0] - f.A[1] + f.A[2])
}

// Normalize sets the output scale to 1/DCGain so the passband of a lowpass
// has exactly unity gain.
func (f *Filter) Normalize() {
	if dc := f.DCGain(); dc != 0 && !math.IsNaN(dc) && !math.IsInf(dc, 0) {
		f.gain = 1 / dc
	}
}
