package effects

import (
	"math"
	"testing"
)

func newTestLooper(t *testing.T, fs, bpm float64, beats int) *Looper {
	t.Helper()
	l, err := NewLooper(fs)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.SetTiming(bpm, beats); err != nil {
		t.Fatal(err)
	}
	return l
}

func TestLooperValidation(t *testing.T) {
	l, err := NewLooper(48000)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.SetTiming(30, 4); err == nil {
		t.Fatal("expected error for bpm < 40")
	}
	if err := l.SetTiming(120, 17); err == nil {
		t.Fatal("expected error for beats > 16")
	}
}

func TestLooperLoopLength(t *testing.T) {
	l := newTestLooper(t, 44100, 120, 4)
	if got := l.LoopLength(); got != 88200 {
		t.Fatalf("LoopLength() = %d, want 88200", got)
	}
	if got := l.BeatLength(); got != 22050 {
		t.Fatalf("BeatLength() = %d, want 22050", got)
	}
}

func TestLooperRecordAndPlay(t *testing.T) {
	const fs = 8000.0
	// 60 bpm, one beat: one second count-in and a one second loop.
	l := newTestLooper(t, fs, 60, 1)
	loopLen := l.LoopLength()

	l.Trigger()
	if l.State() != LooperCountingDown {
		t.Fatalf("state = %v, want counting-down", l.State())
	}

	var blipEnergy float64
	for range l.BeatLength() {
		y := l.ProcessSample(0)
		blipEnergy += y * y
	}
	if blipEnergy == 0 {
		t.Fatal("count-in produced no metronome blip")
	}
	if l.State() != LooperRecording {
		t.Fatalf("state = %v, want recording", l.State())
	}

	wave := func(i int) float64 { return math.Sin(2 * math.Pi * 220 * float64(i) / fs) }
	for i := range loopLen {
		if y := l.ProcessSample(wave(i)); y != 0 {
			t.Fatalf("recording output %v, want 0", y)
		}
	}
	if l.State() != LooperPlaying {
		t.Fatalf("state = %v, want playing", l.State())
	}

	// Two full cycles: exact copy away from the boundary, faded within 10
	// samples of it.
	for cycle := range 2 {
		for i := range loopLen {
			got := l.ProcessSample(0)
			want := wave(i)
			switch {
			case i < LooperFade:
				want *= float64(i+1) / LooperFade
			case i >= loopLen-LooperFade:
				want *= float64(loopLen-i) / LooperFade
			}
			if math.Abs(got-want) > 1e-12 {
				t.Fatalf("cycle %d sample %d: got %v want %v", cycle, i, got, want)
			}
		}
	}

	l.Trigger()
	if l.State() != LooperIdle || l.Loop() != nil {
		t.Fatalf("trigger while playing: state %v, loop %d samples", l.State(), len(l.Loop()))
	}
}

func TestLooperTimingChangeResamples(t *testing.T) {
	l := newTestLooper(t, 1000, 60, 2)
	l.Trigger()
	for range l.BeatLength() {
		l.ProcessSample(0)
	}
	for i := range l.LoopLength() {
		l.ProcessSample(float64(i) / float64(l.LoopLength()-1))
	}
	if l.State() != LooperPlaying {
		t.Fatalf("state = %v, want playing", l.State())
	}

	// Doubling the tempo halves the length; the ramp survives end to end.
	if err := l.SetTiming(120, 2); err != nil {
		t.Fatal(err)
	}
	loop := l.Loop()
	if len(loop) != 1000 {
		t.Fatalf("resampled length = %d, want 1000", len(loop))
	}
	if loop[0] != 0 || math.Abs(loop[len(loop)-1]-1) > 1e-12 {
		t.Fatalf("resampled ends = %v, %v; want 0, 1", loop[0], loop[len(loop)-1])
	}
	if math.Abs(loop[500]-500.0/999) > 1e-9 {
		t.Fatalf("resampled midpoint = %v", loop[500])
	}
}

func TestLooperTriggerCancelsCountIn(t *testing.T) {
	l := newTestLooper(t, 1000, 120, 1)
	l.Trigger()
	l.ProcessSample(0)
	l.Trigger()
	if l.State() != LooperIdle {
		t.Fatalf("state = %v, want idle", l.State())
	}
	if y := l.ProcessSample(1); y != 0 {
		t.Fatalf("idle output %v, want 0", y)
	}
}
