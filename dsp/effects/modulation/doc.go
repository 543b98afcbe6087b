// Package modulation provides LFO and carrier driven effects.
//
//   - Chorus: Dattorro "white chorus" comb with a swept read tap.
//   - RingModulator: multiplication by a sine carrier.
//   - Tremolo: sine amplitude modulation with adjustable depth.
//
// Block processing of RingModulator and Tremolo renders the modulator into a
// reusable scratch buffer and multiplies with algo-vecmath.
package modulation
