// Package interp provides the interpolation primitives used by the delay
// based blocks: 2-point linear and 4-point Hermite interpolation, and a
// linear block resampler used to stretch recorded loops.
package interp
