package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
	"github.com/cwbudde/algo-discs/dsp/interp"
)

const (
	minLooperBPM   = 40.0
	maxLooperBPM   = 240.0
	minLooperBeats = 1
	maxLooperBeats = 16

	defaultLooperBPM   = 120.0
	defaultLooperBeats = 4

	// LooperFade is the number of samples faded in and out at the loop
	// boundary during playback.
	LooperFade = 10

	looperBlipHz        = 1000.0
	looperBlipSeconds   = 0.03
	looperBlipAmplitude = 0.3
)

// LooperState is the phase of the looper state machine.
type LooperState int

const (
	// LooperIdle holds no loop and outputs silence.
	LooperIdle LooperState = iota
	// LooperCountingDown waits one beat, sounding a metronome blip at its
	// start.
	LooperCountingDown
	// LooperRecording fills the loop buffer from the input.
	LooperRecording
	// LooperPlaying repeats the loop buffer.
	LooperPlaying
)

// String returns the state name.
func (s LooperState) String() string {
	switch s {
	case LooperIdle:
		return "idle"
	case LooperCountingDown:
		return "counting-down"
	case LooperRecording:
		return "recording"
	case LooperPlaying:
		return "playing"
	default:
		return fmt.Sprintf("LooperState(%d)", int(s))
	}
}

// Looper records a loop of a fixed number of beats and plays it back.
//
// Trigger starts a one-beat count-in from Idle, after which the input is
// recorded until the loop buffer is full and playback starts on its own.
// Triggering while counting in, recording, or playing returns to Idle and
// drops the loop.
//
// The loop length is round(60*beats/bpm*sampleRate) samples. Changing the
// tempo or beat count of an existing loop resamples it into the new length.
type Looper struct {
	sampleRate float64
	bpm        float64
	beats      int

	state     LooperState
	loop      []float64
	pos       int
	countdown int
	blipLen   int
	blipPhase float64
	blipInc   float64
}

// NewLooper creates an idle looper at 120 bpm and 4 beats.
func NewLooper(sampleRate float64) (*Looper, error) {
	if err := core.ValidateSampleRate("looper", sampleRate); err != nil {
		return nil, err
	}
	return &Looper{
		sampleRate: sampleRate,
		bpm:        defaultLooperBPM,
		beats:      defaultLooperBeats,
		blipLen:    int(looperBlipSeconds * sampleRate),
		blipInc:    2 * math.Pi * looperBlipHz / sampleRate,
	}, nil
}

// SetTiming sets tempo in [40, 240] bpm and loop length in [1, 16] beats.
func (l *Looper) SetTiming(bpm float64, beats int) error {
	if bpm < minLooperBPM || bpm > maxLooperBPM || math.IsNaN(bpm) {
		return fmt.Errorf("looper bpm must be in [%g, %g]: %f", minLooperBPM, maxLooperBPM, bpm)
	}
	if beats < minLooperBeats || beats > maxLooperBeats {
		return fmt.Errorf("looper beats must be in [%d, %d]: %d", minLooperBeats, maxLooperBeats, beats)
	}
	if bpm == l.bpm && beats == l.beats {
		return nil
	}

	l.bpm = bpm
	l.beats = beats

	if l.loop == nil {
		return nil
	}
	n := l.LoopLength()
	if n == len(l.loop) {
		return nil
	}

	resized := make([]float64, n)
	interp.ResampleLinear(resized, l.loop)
	l.pos = int(float64(l.pos) * float64(n) / float64(len(l.loop)))
	if l.pos >= n {
		l.pos = n - 1
	}
	l.loop = resized
	return nil
}

// LoopLength returns the loop length in samples for the current timing.
func (l *Looper) LoopLength() int {
	n := int(math.Round(60 * float64(l.beats) / l.bpm * l.sampleRate))
	return max(n, 1)
}

// BeatLength returns one beat in samples.
func (l *Looper) BeatLength() int {
	return max(int(math.Round(60/l.bpm*l.sampleRate)), 1)
}

// Trigger advances the state machine: Idle starts the count-in, any other
// state returns to Idle.
func (l *Looper) Trigger() {
	if l.state != LooperIdle {
		l.Reset()
		return
	}
	l.state = LooperCountingDown
	l.countdown = l.BeatLength()
	l.blipPhase = 0
	l.loop = make([]float64, l.LoopLength())
	l.pos = 0
}

// State returns the current state.
func (l *Looper) State() LooperState { return l.state }

// Loop returns the recorded loop buffer. It aliases internal state.
func (l *Looper) Loop() []float64 { return l.loop }

// ProcessSample processes one sample.
func (l *Looper) ProcessSample(x float64) float64 {
	switch l.state {
	case LooperCountingDown:
		elapsed := l.BeatLength() - l.countdown
		var out float64
		if elapsed < l.blipLen {
			out = looperBlipAmplitude * math.Sin(l.blipPhase)
			l.blipPhase += l.blipInc
		}
		l.countdown--
		if l.countdown <= 0 {
			l.state = LooperRecording
			l.pos = 0
		}
		return out

	case LooperRecording:
		l.loop[l.pos] = x
		l.pos++
		if l.pos == len(l.loop) {
			l.state = LooperPlaying
			l.pos = 0
		}
		return 0

	case LooperPlaying:
		out := l.loop[l.pos] * l.fade(l.pos)
		l.pos++
		if l.pos == len(l.loop) {
			l.pos = 0
		}
		return out

	default:
		return 0
	}
}

// ProcessBlock processes src into dst. dst and src may alias.
func (l *Looper) ProcessBlock(dst, src []float64) {
	for i, x := range src {
		dst[i] = l.ProcessSample(x)
	}
}

// Reset returns to Idle and drops the loop.
func (l *Looper) Reset() {
	l.state = LooperIdle
	l.loop = nil
	l.pos = 0
	l.countdown = 0
}

// BPM returns the tempo.
func (l *Looper) BPM() float64 { return l.bpm }

// Beats returns the loop length in beats.
func (l *Looper) Beats() int { return l.beats }

// fade is the playback gain at loop index i.
func (l *Looper) fade(i int) float64 {
	n := len(l.loop)
	g := math.Min(float64(i+1)/LooperFade, float64(n-i)/LooperFade)
	return math.Min(1, g)
}
