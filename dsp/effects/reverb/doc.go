// Package reverb provides a Freeverb-style mono reverb: eight damped
// feedback combs summed in a filter bank, followed by four allpasses in
// series. Delay lengths are the classic 44.1 kHz tunings rescaled to the
// configured sample rate.
package reverb
