//go:build jack

package device

import (
	"fmt"
	"sync"

	"github.com/xthexder/go-jack"

	"github.com/cwbudde/algo-discs/dsp/synth"
)

// JackClient is a JACK client with one audio input, one audio output and one
// MIDI input. Its process callback hands the input to the engine and renders
// the output.
type JackClient struct {
	mu       sync.Mutex
	client   *jack.Client
	engine   Engine
	audioIn  *jack.Port
	audioOut *jack.Port
	midiIn   *jack.Port

	in     []float64
	out    []float64
	events []synth.Event
	closed bool
}

// NewJackClient connects to a running JACK server as name and registers the
// ports. The engine is attached by Start, so it can be built at the server's
// sample rate.
func NewJackClient(name string) (*JackClient, error) {
	debug("opening JACK client %s", name)

	client, status := jack.ClientOpen(name, jack.NoStartServer)
	if status != 0 || client == nil {
		return nil, fmt.Errorf("open JACK client: %s", jack.StrError(status))
	}

	jc := &JackClient{client: client}
	jc.audioIn = client.PortRegister("audio_in", jack.DEFAULT_AUDIO_TYPE, jack.PortIsInput, 0)
	jc.audioOut = client.PortRegister("audio_out", jack.DEFAULT_AUDIO_TYPE, jack.PortIsOutput, 0)
	jc.midiIn = client.PortRegister("midi_in", jack.DEFAULT_MIDI_TYPE, jack.PortIsInput, 0)
	if jc.audioIn == nil || jc.audioOut == nil || jc.midiIn == nil {
		client.Close()
		return nil, fmt.Errorf("register JACK ports for %s", name)
	}

	size := int(client.GetBufferSize())
	jc.in = make([]float64, size)
	jc.out = make([]float64, size)
	jc.events = make([]synth.Event, 0, 64)

	if code := client.SetProcessCallback(jc.process); code != 0 {
		client.Close()
		return nil, fmt.Errorf("set JACK process callback: %s", jack.StrError(code))
	}

	debug("JACK client %s ready: %d Hz, %d frames", name, client.GetSampleRate(), size)
	return jc, nil
}

// SampleRate returns the server sample rate.
func (jc *JackClient) SampleRate() int { return int(jc.client.GetSampleRate()) }

// Start attaches engine and activates processing.
func (jc *JackClient) Start(engine Engine) error {
	jc.mu.Lock()
	defer jc.mu.Unlock()

	if jc.closed {
		return ErrClosed
	}
	if engine == nil {
		return fmt.Errorf("JACK engine must not be nil")
	}
	jc.engine = engine
	if code := jc.client.Activate(); code != 0 {
		return fmt.Errorf("activate JACK client: %s", jack.StrError(code))
	}
	debug("JACK client active")
	return nil
}

// Close disconnects from the server.
func (jc *JackClient) Close() error {
	jc.mu.Lock()
	defer jc.mu.Unlock()

	if jc.closed {
		return nil
	}
	jc.closed = true
	if code := jc.client.Close(); code != 0 {
		return fmt.Errorf("close JACK client: %s", jack.StrError(code))
	}
	debug("JACK client closed")
	return nil
}

func (jc *JackClient) process(nframes uint32) int {
	n := int(nframes)
	if cap(jc.in) < n {
		jc.in = make([]float64, n)
		jc.out = make([]float64, n)
	}
	in, out := jc.in[:n], jc.out[:n]

	for i, s := range jc.audioIn.GetBuffer(nframes) {
		in[i] = float64(s)
	}
	if err := jc.engine.HandoffAudio(in); err != nil {
		return 1
	}

	jc.events = jc.events[:0]
	for _, ev := range jc.midiIn.GetMidiEvents(nframes) {
		if e, ok := synth.ParseMIDI(ev.Buffer); ok {
			jc.events = append(jc.events, e)
		}
	}
	if len(jc.events) > 0 {
		if err := jc.engine.HandoffMIDI(jc.events); err != nil {
			return 1
		}
	}

	jc.engine.LoadBuffer(out)
	dst := jc.audioOut.GetBuffer(nframes)
	for i := range dst {
		dst[i] = jack.AudioSample(out[i])
	}
	return 0
}
