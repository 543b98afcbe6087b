package delay

import (
	"fmt"

	"github.com/cwbudde/algo-discs/dsp/interp"
)

// MaxCrossfade is the longest window over which Resize blends old and new
// delay content.
const MaxCrossfade = 64

// Line is a circular delay line.
//
// Delays count writes: Read(1) returns the most recently written sample and
// Read(Len()) the oldest one still held.
type Line struct {
	buffer   []float64
	writePos int
}

// New returns a delay line of fixed size.
func New(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay size must be > 0: %d", size)
	}
	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns internal buffer size.
func (d *Line) Len() int {
	return len(d.buffer)
}

// Write writes one sample.
func (d *Line) Write(sample float64) {
	d.buffer[d.writePos] = sample
	d.writePos++
	if d.writePos >= len(d.buffer) {
		d.writePos = 0
	}
}

// Read reads an integer delay in samples, clamped to [1, Len()].
func (d *Line) Read(delay int) float64 {
	size := len(d.buffer)
	if delay < 1 {
		delay = 1
	} else if delay > size {
		delay = size
	}
	return d.buffer[(d.writePos-delay+size)%size]
}

// ReadLinear reads a fractional delay with linear interpolation, clamped to
// [1, Len()-1] so both neighbours are held.
func (d *Line) ReadLinear(delay float64) float64 {
	size := len(d.buffer)
	if size < 2 {
		return d.buffer[0]
	}
	if delay < 1 {
		delay = 1
	}
	if maxDelay := float64(size - 1); delay > maxDelay {
		delay = maxDelay
	}

	p := int(delay)
	return interp.Linear2(delay-float64(p), d.Read(p), d.Read(p+1))
}

// Resize reallocates the line to size samples, keeping the newest
// min(Len(), size) samples at their ages.
//
// A reader that was tapping fromDelay and will tap toDelay from now on
// reaches the samples of age toDelay, toDelay-1, ... next. Over a window of
// up to MaxCrossfade of those samples the content is blended from what the
// old tap would have produced into what the new tap holds, so the output
// glides instead of jumping. Ages that were never held read as silence, and
// when the new tap starts inside that silence the oldest kept samples are
// faded in.
func (d *Line) Resize(size, fromDelay, toDelay int) {
	if size <= 0 {
		size = 1
	}
	oldLen := len(d.buffer)

	oldAt := func(age int) float64 {
		if age < 1 || age > oldLen {
			return 0
		}
		return d.buffer[(d.writePos-age+oldLen)%oldLen]
	}

	next := make([]float64, size)
	keep := min(oldLen, size)
	for age := 1; age <= keep; age++ {
		next[size-age] = oldAt(age)
	}

	if toDelay > keep {
		fade := min(MaxCrossfade, keep)
		for j := 0; j < fade; j++ {
			next[size-(keep-j)] *= float64(j+1) / float64(fade)
		}
	}

	window := min(MaxCrossfade, fromDelay, toDelay, size)
	for k := 0; k < window; k++ {
		w := float64(k) / float64(window)
		age := toDelay - k
		if age < 1 || age > size {
			continue
		}
		next[size-age] = (1-w)*oldAt(fromDelay-k) + w*next[size-age]
	}

	d.buffer = next
	d.writePos = 0
}

// Reset clears line state.
func (d *Line) Reset() {
	clear(d.buffer)
	d.writePos = 0
}
