// Package stream adapts a buffer renderer to an io.Reader of float32
// little-endian mono PCM for pull-based audio devices.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/cwbudde/algo-discs/measure/level"
)

// BytesPerSample is the size of one float32 sample.
const BytesPerSample = 4

// Renderer fills out with the next len(out) frames.
type Renderer interface {
	LoadBuffer(out []float64)
}

// Option configures a Reader.
type Option func(*Reader) error

// WithBlockHook registers fn to run before each block is rendered, with the
// block's frame count. It is where input audio is handed to the engine.
func WithBlockHook(fn func(frames int)) Option {
	return func(r *Reader) error {
		r.hook = fn
		return nil
	}
}

// WithLimit stops the stream with io.EOF after frames frames. Zero means
// unlimited.
func WithLimit(frames int64) Option {
	return func(r *Reader) error {
		if frames < 0 {
			return fmt.Errorf("stream limit must be >= 0: %d", frames)
		}
		r.limit = frames
		return nil
	}
}

// Reader renders blocks on demand and serves them as bytes. It is safe to
// query the meter while a device goroutine reads.
type Reader struct {
	mu       sync.Mutex
	renderer Renderer
	hook     func(frames int)
	block    []float64
	encoded  []byte
	pending  []byte
	meter    *level.Meter
	frames   int64
	limit    int64
	closed   bool
}

// NewReader returns a Reader rendering blockSize frames at a time.
func NewReader(renderer Renderer, blockSize int, opts ...Option) (*Reader, error) {
	if renderer == nil {
		return nil, fmt.Errorf("stream renderer must not be nil")
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("stream block size must be > 0: %d", blockSize)
	}
	r := &Reader{
		renderer: renderer,
		block:    make([]float64, blockSize),
		encoded:  make([]byte, blockSize*BytesPerSample),
		meter:    level.NewMeter(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Read fills p with encoded samples, rendering new blocks as needed.
func (r *Reader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			if r.closed || (r.limit > 0 && r.frames >= r.limit) {
				break
			}
			r.renderLocked()
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

func (r *Reader) renderLocked() {
	frames := len(r.block)
	if r.limit > 0 {
		frames = int(min(int64(frames), r.limit-r.frames))
	}
	block := r.block[:frames]

	if r.hook != nil {
		r.hook(frames)
	}
	r.renderer.LoadBuffer(block)
	r.meter.Update(block)
	r.frames += int64(frames)

	out := r.encoded[:frames*BytesPerSample]
	Encode(out, block)
	r.pending = out
}

// Encode writes src as float32 little-endian into dst, which must hold
// len(src)*BytesPerSample bytes.
func Encode(dst []byte, src []float64) {
	for i, x := range src {
		binary.LittleEndian.PutUint32(dst[i*BytesPerSample:], math.Float32bits(float32(x)))
	}
}

// Clipped returns the number of clipped samples rendered so far.
func (r *Reader) Clipped() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meter.Clipped()
}

// Peak returns the largest rendered magnitude.
func (r *Reader) Peak() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.meter.Peak()
}

// Frames returns the number of frames rendered so far.
func (r *Reader) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close ends the stream after the buffered bytes drain.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}
