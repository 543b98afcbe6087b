package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
)

const (
	// MaxVoices is the polyphony limit. The oldest voice is stolen beyond it.
	MaxVoices = 16

	// VoiceGain scales velocity/127 into a per-voice amplitude.
	VoiceGain = 0.25

	minAttackSeconds  = 0.001
	maxAttackSeconds  = 2.0
	minSustainSeconds = 0.05
	maxSustainSeconds = 10.0

	defaultAttackSeconds  = 0.01
	defaultSustainSeconds = 1.0
)

type voice struct {
	active  bool
	pitch   uint8
	started uint64
	amp     float64
	phase   float64
	inc     float64
	env     Envelope
	coeffs  [MaxHarmonics]float64
	partial []float64
}

// Synth is a polyphonic oscillator with a fixed voice pool.
type Synth struct {
	sampleRate float64
	waveform   Waveform
	attack     float64
	sustain    float64

	voices [MaxVoices]voice
	clock  uint64
}

// New returns a silent synth.
func New(sampleRate float64, waveform Waveform) (*Synth, error) {
	if err := core.ValidateSampleRate("synth", sampleRate); err != nil {
		return nil, err
	}
	if waveform < Sine || waveform > Saw {
		return nil, fmt.Errorf("synth waveform invalid: %v", waveform)
	}
	return &Synth{
		sampleRate: sampleRate,
		waveform:   waveform,
		attack:     defaultAttackSeconds,
		sustain:    defaultSustainSeconds,
	}, nil
}

// SetTimes sets the attack time in [0.001, 2] s and the maximum sustain time
// in [0.05, 10] s for notes started afterwards.
func (s *Synth) SetTimes(attack, sustain float64) error {
	if attack < minAttackSeconds || attack > maxAttackSeconds || math.IsNaN(attack) {
		return fmt.Errorf("synth attack must be in [%g, %g]: %f", minAttackSeconds, maxAttackSeconds, attack)
	}
	if sustain < minSustainSeconds || sustain > maxSustainSeconds || math.IsNaN(sustain) {
		return fmt.Errorf("synth sustain must be in [%g, %g]: %f", minSustainSeconds, maxSustainSeconds, sustain)
	}
	s.attack = attack
	s.sustain = sustain
	return nil
}

// NoteOn starts a voice. Velocity 0 releases the pitch instead.
func (s *Synth) NoteOn(pitch, velocity uint8) {
	if velocity == 0 {
		s.NoteOff(pitch)
		return
	}

	v := s.freeVoice()
	freq := core.NoteToHz(float64(pitch & 0x7F))
	s.clock++
	*v = voice{
		active:  true,
		pitch:   pitch,
		started: s.clock,
		amp:     float64(min(velocity, 127)) / 127 * VoiceGain,
		inc:     2 * math.Pi * freq / s.sampleRate,
		env:     NewEnvelope(s.sampleRate, s.attack, s.sustain),
	}
	v.partial = partials(&v.coeffs, s.waveform, freq, s.sampleRate)
}

// NoteOff releases every held voice at pitch.
func (s *Synth) NoteOff(pitch uint8) {
	for i := range s.voices {
		if v := &s.voices[i]; v.active && v.pitch == pitch {
			v.env.Release()
		}
	}
}

// Handle applies one event.
func (s *Synth) Handle(e Event) {
	switch e.Type {
	case NoteOn:
		s.NoteOn(e.Pitch, e.Velocity)
	case NoteOff:
		s.NoteOff(e.Pitch)
	}
}

// AllNotesOff releases every voice.
func (s *Synth) AllNotesOff() {
	for i := range s.voices {
		s.voices[i].env.Release()
	}
}

// ProcessBlock overwrites dst with the sum of all active voices. Voices
// whose envelope finished are freed.
func (s *Synth) ProcessBlock(dst []float64) {
	clear(dst)
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active {
			continue
		}
		for j := range dst {
			level := v.env.Next()
			dst[j] += v.amp * level * additive(v.partial, v.phase)
			v.phase += v.inc
			if v.phase >= 2*math.Pi {
				v.phase -= 2 * math.Pi
			}
			if v.env.Done() {
				v.active = false
				break
			}
		}
	}
}

// ActiveVoices returns the number of sounding voices.
func (s *Synth) ActiveVoices() int {
	n := 0
	for i := range s.voices {
		if s.voices[i].active {
			n++
		}
	}
	return n
}

// Reset silences every voice immediately.
func (s *Synth) Reset() {
	for i := range s.voices {
		s.voices[i].active = false
	}
}

// Waveform returns the oscillator shape.
func (s *Synth) Waveform() Waveform { return s.waveform }

// Times returns the attack and sustain times in seconds.
func (s *Synth) Times() (attack, sustain float64) { return s.attack, s.sustain }

// freeVoice returns an inactive voice, or the oldest one when all are busy.
func (s *Synth) freeVoice() *voice {
	oldest := &s.voices[0]
	for i := range s.voices {
		v := &s.voices[i]
		if !v.active {
			return v
		}
		if v.started < oldest.started {
			oldest = v
		}
	}
	return oldest
}
