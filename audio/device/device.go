// Package device connects the engine to audio hardware.
//
// OtoOutput plays an io.Reader of float32 mono PCM and is replaced by a stub
// in headless builds. JackClient runs the engine inside a JACK process
// callback and is only built with the jack tag.
package device

import (
	"errors"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-discs/dsp/synth"
)

var debug = debuggo.Debug("discs:device")

var (
	// ErrNotEnabled is returned by backends compiled out of this build.
	ErrNotEnabled = errors.New("device: backend not enabled in this build")
	// ErrClosed is returned when a closed device is used.
	ErrClosed = errors.New("device: closed")
)

// Engine is the part of the graph Builder a duplex device drives.
type Engine interface {
	LoadBuffer(out []float64)
	HandoffAudio(samples []float64) error
	HandoffMIDI(events []synth.Event) error
}
