package core

import "math"

// Clamp limits value to [lo, hi], swapping the bounds if they are reversed.
// NaN maps to lo so a bad control value never reaches a kernel.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case value < lo || math.IsNaN(value):
		return lo
	case value > hi:
		return hi
	default:
		return value
	}
}

// FlushDenormals returns 0 for magnitudes below 1e-30. Feedback paths call
// it on the value they store.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}
	return x
}

// LinearMap maps t in [0, 1] linearly onto [lo, hi].
func LinearMap(t, lo, hi float64) float64 {
	return lo + (hi-lo)*t
}

// LinearUnmap is the inverse of LinearMap. A degenerate range maps to 0.
func LinearUnmap(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

// ExpMap maps t in [0, 1] exponentially onto [lo, hi]; lo and hi must be > 0.
func ExpMap(t, lo, hi float64) float64 {
	return lo * math.Pow(hi/lo, t)
}

// NoteToHz converts a MIDI note number to frequency (A4 = 69 = 440 Hz).
func NoteToHz(note float64) float64 {
	return 440 * math.Exp2((note-69)/12)
}

// LinearToDB converts an amplitude to dB (20*log10). It returns -Inf for
// zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	switch {
	case linear < 0:
		return math.NaN()
	case linear == 0:
		return math.Inf(-1)
	default:
		return 20 * math.Log10(linear)
	}
}
