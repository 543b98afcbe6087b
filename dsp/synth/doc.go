// Package synth provides the MIDI-driven oscillator voices of the engine:
// note events and their wire decoding, a three-stage envelope, band-limited
// additive waveforms, and a fixed-size polyphonic voice manager.
package synth
