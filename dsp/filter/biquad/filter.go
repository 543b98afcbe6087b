package biquad

import "fmt"

// Kind selects the coefficient derivation of a Filter.
type Kind int

const (
	// Lowpass is a 2-pole lowpass.
	Lowpass Kind = iota
	// Highpass is a 2-pole highpass.
	Highpass
	// Bandpass passes the band wc ± (wc/Q)/2.
	Bandpass
	// Bandstop notches the band wc ± (wc/Q)/2.
	Bandstop
	// SinglePole is a direct one-pole IIR. Center is the pole location and
	// Q is the pole gain.
	SinglePole
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Lowpass:
		return "lowpass"
	case Highpass:
		return "highpass"
	case Bandpass:
		return "bandpass"
	case Bandstop:
		return "bandstop"
	case SinglePole:
		return "single-pole"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Filter is a single second-order IIR stage in direct form I.
//
// A holds the feedback and B the feed-forward coefficients, both normalized
// so that A[0] == 1. The x and y arrays hold the three most recent input and
// (unscaled) output samples, index 0 being the newest.
type Filter struct {
	A, B [3]float64

	x, y [3]float64

	kind       Kind
	center     float64
	q          float64
	gain       float64
	sampleRate float64
}

// New returns a filter of the given kind with coefficients derived from
// center (Hz), q and sampleRate. The output of every Tick is scaled by gain.
//
// Arguments are not validated: Q must be > 0 and center must lie in
// (0, sampleRate/2) for the pass/stop kinds, otherwise the coefficients are
// unstable or contain Inf/NaN. Callers validate at their construction site.
func New(kind Kind, center, q, gain, sampleRate float64) *Filter {
	f := &Filter{
		kind:       kind,
		center:     center,
		q:          q,
		gain:       gain,
		sampleRate: sampleRate,
	}
	f.CalculateCoefficients()
	return f
}

// Tick filters one sample:
//
//	y0 = -a1*y1 - a2*y2 + b0*x0 + b1*x1 + b2*x2
//
// and returns gain*y0. The history keeps the unscaled y0.
func (f *Filter) Tick(sample float64) float64 {
	f.x[2], f.x[1], f.x[0] = f.x[1], f.x[0], sample
	f.y[2], f.y[1] = f.y[1], f.y[0]

	f.y[0] = -f.A[1]*f.y[1] - f.A[2]*f.y[2] +
		f.B[0]*f.x[0] + f.B[1]*f.x[1] + f.B[2]*f.x[2]

	return f.y[0] * f.gain
}

// ProcessBlock filters src into dst. Both slices must have the same length;
// they may alias.
func (f *Filter) ProcessBlock(dst, src []float64) {
	for i, x := range src {
		dst[i] = f.Tick(x)
	}
}

// SetParams updates center, q and gain and recomputes the coefficients.
// The sample history is kept so a parameter sweep does not restart the filter.
func (f *Filter) SetParams(center, q, gain float64) {
	f.center = center
	f.q = q
	f.gain = gain
	f.CalculateCoefficients()
}

// SetGain changes the output scale only.
func (f *Filter) SetGain(gain float64) { f.gain = gain }

// Reset clears the sample history.
func (f *Filter) Reset() {
	f.x = [3]float64{}
	f.y = [3]float64{}
}

// Last returns the most recent output, scaled by gain.
func (f *Filter) Last() float64 { return f.y[0] * f.gain }

// Kind returns the filter kind.
func (f *Filter) Kind() Kind { return f.kind }

// Center returns the corner/center frequency (or pole location for SinglePole).
func (f *Filter) Center() float64 { return f.center }

// Q returns the quality factor (or pole gain for SinglePole).
func (f *Filter) Q() float64 { return f.q }

// Gain returns the output scale.
func (f *Filter) Gain() float64 { return f.gain }

// SampleRate returns the sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }
