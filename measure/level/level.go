package level

import (
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
)

// ClipThreshold is the magnitude above which a sample counts as clipped.
const ClipThreshold = 1.0

// ToDB converts an amplitude to decibels: 20*log10(|value|). It returns -Inf
// for zero.
func ToDB(value float64) float64 {
	return core.LinearToDB(math.Abs(value))
}

// Peak returns the largest absolute sample of signal.
func Peak(signal []float64) float64 {
	var peak float64
	for _, x := range signal {
		if a := math.Abs(x); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS returns the root-mean-square of signal, or 0 when it is empty.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}
	return math.Sqrt(sumSq / float64(len(signal)))
}

// Meter accumulates level statistics across blocks. It is not safe for
// concurrent use.
type Meter struct {
	peak    float64
	rms     float64
	clipped int
	samples int64
	// nonFinite counts NaN and Inf samples.
	nonFinite int
}

// NewMeter returns a cleared meter.
func NewMeter() *Meter { return &Meter{} }

// Update folds block into the running statistics. RMS describes block
// alone; peak and counters run until Reset.
func (m *Meter) Update(block []float64) {
	var sumSq float64
	finite := 0
	for _, x := range block {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			m.nonFinite++
			m.clipped++
			continue
		}
		a := math.Abs(x)
		if a > m.peak {
			m.peak = a
		}
		if a > ClipThreshold {
			m.clipped++
		}
		sumSq += x * x
		finite++
	}
	m.samples += int64(len(block))
	if finite > 0 {
		m.rms = math.Sqrt(sumSq / float64(finite))
	} else {
		m.rms = 0
	}
}

// Peak returns the largest finite magnitude seen since Reset.
func (m *Meter) Peak() float64 { return m.peak }

// PeakDB returns Peak in dBFS.
func (m *Meter) PeakDB() float64 { return ToDB(m.peak) }

// RMS returns the RMS of the most recent block.
func (m *Meter) RMS() float64 { return m.rms }

// RMSDB returns RMS in dBFS.
func (m *Meter) RMSDB() float64 { return ToDB(m.rms) }

// Clipped returns how many samples exceeded ClipThreshold or were not finite.
func (m *Meter) Clipped() int { return m.clipped }

// NonFinite returns how many NaN or Inf samples were seen.
func (m *Meter) NonFinite() int { return m.nonFinite }

// Samples returns the number of samples metered since Reset.
func (m *Meter) Samples() int64 { return m.samples }

// Reset clears every statistic.
func (m *Meter) Reset() { *m = Meter{} }
