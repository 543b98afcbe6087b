// Package comb provides the two fixed-topology delay networks of a
// Schroeder/Moorer reverb tank: a feedback comb with a one-pole lowpass in
// its feedback path, and the one-pole/one-zero allpass approximation used by
// Freeverb.
//
// Both keep their own ring buffer and advance one sample per Tick.
package comb
