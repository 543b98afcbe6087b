//go:build !jack

package device

// JackClient is unavailable without the jack build tag.
type JackClient struct{}

// NewJackClient returns ErrNotEnabled. Rebuild with -tags jack and the JACK
// development headers installed.
func NewJackClient(name string) (*JackClient, error) {
	return nil, ErrNotEnabled
}

// SampleRate is always 0.
func (jc *JackClient) SampleRate() int { return 0 }

// Start returns ErrNotEnabled.
func (jc *JackClient) Start(engine Engine) error { return ErrNotEnabled }

// Close is a no-op.
func (jc *JackClient) Close() error { return nil }
