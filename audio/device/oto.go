//go:build !headless

package device

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoOutput plays mono float32 PCM through the system audio device.
type OtoOutput struct {
	mu      sync.Mutex
	ctx     *oto.Context
	player  *oto.Player
	started bool
	closed  bool
}

// NewOtoOutput opens the output device at sampleRate and prepares a player
// reading from src. Only one output can be open per process.
func NewOtoOutput(sampleRate int, bufferSize time.Duration, src io.Reader) (*OtoOutput, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("oto sample rate must be > 0: %d", sampleRate)
	}
	if src == nil {
		return nil, fmt.Errorf("oto source must not be nil")
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("open oto context: %w", err)
	}
	<-ready

	debug("oto output open: %d Hz, buffer %v", sampleRate, bufferSize)
	return &OtoOutput{ctx: ctx, player: ctx.NewPlayer(src)}, nil
}

// Start begins playback.
func (o *OtoOutput) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrClosed
	}
	if !o.started {
		o.player.Play()
		o.started = true
		debug("oto playback started")
	}
	return nil
}

// IsPlaying reports whether the player is still consuming its source.
func (o *OtoOutput) IsPlaying() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.closed && o.player.IsPlaying()
}

// Close stops playback and releases the player.
func (o *OtoOutput) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.started = false
	debug("oto output closed")
	return o.player.Close()
}
