//go:build headless

package device

import (
	"bytes"
	"errors"
	"testing"
)

func TestOtoHeadless(t *testing.T) {
	if _, err := NewOtoOutput(44100, 0, &bytes.Buffer{}); !errors.Is(err, ErrNotEnabled) {
		t.Fatalf("NewOtoOutput() error = %v, want ErrNotEnabled", err)
	}
	var o OtoOutput
	if o.IsPlaying() {
		t.Fatal("headless output reports playing")
	}
}
