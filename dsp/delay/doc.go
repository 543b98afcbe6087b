// Package delay provides a circular delay line with fractional reads and a
// resize operation that crossfades the read position instead of cutting it.
package delay
