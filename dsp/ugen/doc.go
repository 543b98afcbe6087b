// Package ugen wraps every effect and instrument kernel behind one closed
// tagged type, Unit, with a uniform two-parameter control surface.
//
// Each Kind has fixed parameter bounds. Parameters are clamped into them on
// every write and then mapped onto the kernel's own controls, for example
// the chorus rate parameter in [0, 1] becomes 0.02*500^p Hz. SetNormalized
// maps [0, 1] linearly onto the bounds for UI-style control.
//
// Process dispatches with a single switch on the kind; no kernel is reached
// through an interface on the audio path.
package ugen
