// Package level tracks output peak, RMS and clipping of rendered buffers.
//
// A Meter reports clipping but never alters the signal.
package level
