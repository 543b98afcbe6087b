//go:build headless

package device

import (
	"io"
	"time"
)

// OtoOutput is unavailable in headless builds.
type OtoOutput struct{}

// NewOtoOutput returns ErrNotEnabled.
func NewOtoOutput(sampleRate int, bufferSize time.Duration, src io.Reader) (*OtoOutput, error) {
	return nil, ErrNotEnabled
}

// Start returns ErrNotEnabled.
func (o *OtoOutput) Start() error { return ErrNotEnabled }

// IsPlaying is always false.
func (o *OtoOutput) IsPlaying() bool { return false }

// Close is a no-op.
func (o *OtoOutput) Close() error { return nil }
