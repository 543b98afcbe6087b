// Package biquad provides a direct-form-I second-order IIR filter whose
// coefficients are derived in place from a filter kind, a center frequency,
// a quality factor and the sample rate.
//
// The filter keeps a 3-sample input and output history and scales every
// output by a gain term, which lets a lowpass be normalized to unity DC gain
// and used as an envelope follower (see dsp/filter/bank).
//
// Coefficient derivation does not validate its inputs; see [New].
package biquad
