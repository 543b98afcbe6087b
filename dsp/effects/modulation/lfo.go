package modulation

import "math"

const twoPi = 2 * math.Pi

// sineLFO is a phase-accumulating sine source.
type sineLFO struct {
	phase float64
	inc   float64
}

func (o *sineLFO) setFrequency(hz, sampleRate float64) {
	o.inc = twoPi * hz / sampleRate
}

func (o *sineLFO) next() float64 {
	v := math.Sin(o.phase)
	o.phase += o.inc
	if o.phase >= twoPi {
		o.phase -= twoPi
	}
	return v
}

func (o *sineLFO) reset() { o.phase = 0 }

// growScratch resizes buf to n, keeping capacity once grown.
func growScratch(buf []float64, n int) []float64 {
	if cap(buf) >= n {
		return buf[:n]
	}
	return make([]float64, n)
}
