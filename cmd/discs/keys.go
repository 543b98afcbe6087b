package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/cwbudde/algo-discs/dsp/synth"
)

// keyNoteLength is how long a key press sounds; terminals report no
// key release.
const keyNoteLength = 300 * time.Millisecond

// keyRow maps the home row to a chromatic octave starting at C4, piano
// style: white keys on asdf..., black keys on the row above.
var keyRow = map[byte]uint8{
	'a': 60, 'w': 61, 's': 62, 'e': 63, 'd': 64, 'f': 65, 't': 66,
	'g': 67, 'y': 68, 'h': 69, 'u': 70, 'j': 71, 'k': 72,
}

// keyPitch returns the pitch for key shifted by octave, or false for keys
// outside the layout or pitches outside MIDI range.
func keyPitch(key byte, octave int) (uint8, bool) {
	p, ok := keyRow[key]
	if !ok {
		return 0, false
	}
	v := int(p) + 12*octave
	if v < 0 || v > 127 {
		return 0, false
	}
	return uint8(v), true
}

// keyboard turns raw terminal key presses into note events.
type keyboard struct {
	fd     int
	old    *term.State
	octave int
	send   func([]synth.Event) error

	mu     sync.Mutex
	timers map[uint8]*time.Timer
}

func openKeyboard(send func([]synth.Event) error) (*keyboard, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("-keys needs a terminal on stdin")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}
	return &keyboard{fd: fd, old: old, send: send, timers: map[uint8]*time.Timer{}}, nil
}

// run reads keys until q, Ctrl-C or a read error, then calls quit. z and x
// shift the octave.
func (k *keyboard) run(quit func()) {
	defer quit()
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		switch b := buf[0]; b {
		case 'q', 3:
			return
		case 'z':
			k.octave = max(k.octave-1, -4)
		case 'x':
			k.octave = min(k.octave+1, 4)
		default:
			if p, ok := keyPitch(b, k.octave); ok {
				k.press(p)
			}
		}
	}
}

func (k *keyboard) press(pitch uint8) {
	if err := k.send([]synth.Event{synth.On(pitch, 100)}); err != nil {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	if t, ok := k.timers[pitch]; ok {
		t.Stop()
	}
	k.timers[pitch] = time.AfterFunc(keyNoteLength, func() {
		_ = k.send([]synth.Event{synth.Off(pitch)})
	})
}

func (k *keyboard) Close() error {
	k.mu.Lock()
	for _, t := range k.timers {
		t.Stop()
	}
	k.mu.Unlock()
	return term.Restore(k.fd, k.old)
}
