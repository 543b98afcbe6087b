package biquad

import (
	"math"
	"math/cmplx"
)

// Response computes the complex frequency response H(e^jw), including the
// output gain, at freqHz.
func (f *Filter) Response(freqHz float64) complex128 {
	w := 2 * math.Pi * freqHz / f.sampleRate
	ejw := cmplx.Exp(complex(0, -w))
	ej2w := cmplx.Exp(complex(0, -2*w))

	num := complex(f.B[0], 0) + complex(f.B[1], 0)*ejw + complex(f.B[2], 0)*ej2w
	den := complex(f.A[0], 0) + complex(f.A[1], 0)*ejw + complex(f.A[2], 0)*ej2w
	return complex(f.gain, 0) * num / den
}

// MagnitudeSquared returns |H(f)|^2 using the closed form for a0 == 1,
// including the output gain.
func (f *Filter) MagnitudeSquared(freqHz float64) float64 {
	cw := 2 * math.Cos(2*math.Pi*freqHz/f.sampleRate)
	b0, b1, b2 := f.B[0], f.B[1], f.B[2]
	a1, a2 := f.A[1], f.A[2]

	num := (b0-b2)*(b0-b2) + b1*b1 + (b1*(b0+b2)+b0*b2*cw)*cw
	den := (1-a2)*(1-a2) + a1*a1 + (a1*(a2+1)+cw*a2)*cw
	return f.gain * f.gain * num / den
}

// MagnitudeDB returns 10*log10(|H(f)|^2).
func (f *Filter) MagnitudeDB(freqHz float64) float64 {
	return 10 * math.Log10(f.MagnitudeSquared(freqHz))
}
