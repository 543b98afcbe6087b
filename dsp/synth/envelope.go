package synth

import (
	"fmt"
	"math"
)

// ReleaseSeconds is the fixed length of the release ramp.
const ReleaseSeconds = 0.05

// Stage is an envelope phase.
type Stage int

const (
	// Attack ramps linearly from 0 to 1.
	Attack Stage = iota
	// Sustain holds full level while the note is held, for at most the
	// sustain time.
	Sustain
	// Release ramps linearly from the current level to 0.
	Release
	// Done is reached once the release completes.
	Done
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case Attack:
		return "attack"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	case Done:
		return "done"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Envelope is an attack, sustain, release amplitude envelope.
type Envelope struct {
	attack  int
	sustain int
	release int

	stage   Stage
	pos     int
	level   float64
	from    float64
	pending bool
}

// NewEnvelope returns an envelope in its attack stage.
func NewEnvelope(sampleRate, attackSeconds, sustainSeconds float64) Envelope {
	return Envelope{
		attack:  max(1, int(math.Round(attackSeconds*sampleRate))),
		sustain: max(1, int(math.Round(sustainSeconds*sampleRate))),
		release: max(1, int(math.Round(ReleaseSeconds*sampleRate))),
	}
}

// Next advances the envelope by one sample and returns its level.
func (e *Envelope) Next() float64 {
	switch e.stage {
	case Attack:
		e.pos++
		e.level = float64(e.pos) / float64(e.attack)
		if e.pos >= e.attack {
			e.stage = Sustain
			e.pos = 0
			e.level = 1
			if e.pending {
				e.startRelease()
			}
		}
	case Sustain:
		e.pos++
		if e.pos >= e.sustain {
			e.Release()
		}
	case Release:
		e.pos++
		e.level = e.from * (1 - float64(e.pos)/float64(e.release))
		if e.pos >= e.release {
			e.level = 0
			e.stage = Done
		}
	}
	return e.level
}

// Release starts the release ramp from the current level. During the attack
// the release is held until the attack peaks, so even a note released before
// its first sample sounds. It has no effect once releasing.
func (e *Envelope) Release() {
	switch e.stage {
	case Attack:
		e.pending = true
	case Sustain:
		e.startRelease()
	}
}

func (e *Envelope) startRelease() {
	e.stage = Release
	e.pos = 0
	e.from = e.level
}

// Stage returns the current stage.
func (e *Envelope) Stage() Stage { return e.stage }

// Level returns the most recent level.
func (e *Envelope) Level() float64 { return e.level }

// Done reports whether the envelope has finished.
func (e *Envelope) Done() bool { return e.stage == Done }
