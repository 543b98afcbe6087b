package synth

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-discs/internal/testutil"
)

func TestParseMIDI(t *testing.T) {
	tests := []struct {
		name string
		msg  []byte
		want Event
		ok   bool
	}{
		{name: "note on", msg: []byte{0x90, 60, 100}, want: On(60, 100), ok: true},
		{name: "note on channel 5", msg: []byte{0x94, 61, 1}, want: On(61, 1), ok: true},
		{name: "note on zero velocity", msg: []byte{0x90, 60, 0}, want: Off(60), ok: true},
		{name: "note off", msg: []byte{0x80, 64, 40}, want: Off(64), ok: true},
		{name: "control change", msg: []byte{0xB0, 7, 100}},
		{name: "short", msg: []byte{0x90, 60}},
		{name: "empty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseMIDI(tc.msg)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("ParseMIDI(%v) = %+v, %v; want %+v, %v", tc.msg, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestEnvelopeStages(t *testing.T) {
	// 1 kHz: 10 sample attack, 20 sample sustain, 50 sample release.
	e := NewEnvelope(1000, 0.01, 0.02)

	for i := 1; i <= 10; i++ {
		if got := e.Next(); math.Abs(got-float64(i)/10) > 1e-12 {
			t.Fatalf("attack %d = %v", i, got)
		}
	}
	if e.Stage() != Sustain {
		t.Fatalf("stage = %v, want sustain", e.Stage())
	}
	for range 19 {
		if got := e.Next(); got != 1 {
			t.Fatalf("sustain level %v", got)
		}
	}
	e.Next()
	if e.Stage() != Release {
		t.Fatalf("stage = %v after max sustain, want release", e.Stage())
	}

	n := 0
	prev := 1.0
	for !e.Done() {
		got := e.Next()
		if got > prev {
			t.Fatalf("release rose from %v to %v", prev, got)
		}
		prev = got
		n++
		if n > 100 {
			t.Fatal("release never finished")
		}
	}
	if n != 50 {
		t.Fatalf("release took %d samples, want 50", n)
	}
}

func TestEnvelopeEarlyRelease(t *testing.T) {
	e := NewEnvelope(1000, 0.01, 1)
	for range 5 {
		e.Next()
	}
	e.Release()
	// The attack still reaches full level, then ramps to 0 in 50 samples.
	for i := 6; i <= 10; i++ {
		if got := e.Next(); math.Abs(got-float64(i)/10) > 1e-12 {
			t.Fatalf("attack %d = %v after release", i, got)
		}
	}
	if e.Stage() != Release {
		t.Fatalf("stage = %v at attack peak, want release", e.Stage())
	}
	if got := e.Next(); math.Abs(got-0.98) > 1e-12 {
		t.Fatalf("first release sample %v, want 0.98", got)
	}
	e.Release()
	if e.Stage() != Release {
		t.Fatalf("second Release changed stage to %v", e.Stage())
	}
}

func TestEnvelopeReleaseBeforeFirstSample(t *testing.T) {
	e := NewEnvelope(1000, 0.01, 1)
	e.Release()

	var peak float64
	n := 0
	for !e.Done() {
		peak = math.Max(peak, e.Next())
		n++
	}
	if peak != 1 {
		t.Fatalf("peak = %v, want 1", peak)
	}
	if n != 60 {
		t.Fatalf("envelope lasted %d samples, want 10 attack + 50 release", n)
	}
}

func TestSynthTapWithinOneBlockSounds(t *testing.T) {
	s, _ := New(1000, Sine)
	s.Handle(On(69, 127))
	s.Handle(Off(69))

	buf := make([]float64, 100)
	s.ProcessBlock(buf)
	if rms := testutil.RMS(buf); rms == 0 {
		t.Fatal("note released before its first sample was silent")
	}
	if s.ActiveVoices() != 0 {
		t.Fatalf("tapped voice still active: %d", s.ActiveVoices())
	}
}

func TestPartialsBelowNyquist(t *testing.T) {
	var c [MaxHarmonics]float64
	if got := partials(&c, Saw, 100, 44100); len(got) != MaxHarmonics {
		t.Fatalf("low note: %d partials, want %d", len(got), MaxHarmonics)
	}
	if got := partials(&c, Square, 5000, 44100); len(got) != 4 {
		t.Fatalf("5 kHz: %d partials, want 4", len(got))
	}
	if got := partials(&c, Sine, 100, 44100); len(got) != 1 || got[0] != 1 {
		t.Fatalf("sine partials %v", got)
	}
}

func TestAdditiveMatchesDirectSum(t *testing.T) {
	var c [MaxHarmonics]float64
	coeffs := partials(&c, Triangle, 220, 44100)
	for _, ph := range []float64{0, 0.3, 1.7, 3, 5.5} {
		var want float64
		for k, ck := range coeffs {
			want += ck * math.Sin(float64(k+1)*ph)
		}
		if got := additive(coeffs, ph); math.Abs(got-want) > 1e-9 {
			t.Fatalf("phase %v: got %v want %v", ph, got, want)
		}
	}
}

func TestSynthPitchAndAmplitude(t *testing.T) {
	const fs = 8000.0
	s, err := New(fs, Sine)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetTimes(0.001, 10); err != nil {
		t.Fatal(err)
	}

	s.NoteOn(69, 127)
	buf := make([]float64, 4096)
	s.ProcessBlock(buf)

	f, err := testutil.DominantFrequency(buf, fs)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-440) > 2*fs/4096 {
		t.Fatalf("A4 at %v Hz, want 440", f)
	}

	peak := 0.0
	for _, v := range buf {
		peak = math.Max(peak, math.Abs(v))
	}
	if math.Abs(peak-VoiceGain) > 1e-3 {
		t.Fatalf("peak %v, want %v", peak, VoiceGain)
	}
}

func TestSynthVoicesSelfTerminate(t *testing.T) {
	s, err := New(1000, Square)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetTimes(0.001, 0.05); err != nil {
		t.Fatal(err)
	}

	s.Handle(On(60, 100))
	s.Handle(On(64, 100))
	if s.ActiveVoices() != 2 {
		t.Fatalf("ActiveVoices = %d, want 2", s.ActiveVoices())
	}

	buf := make([]float64, 200)
	s.ProcessBlock(buf)
	if s.ActiveVoices() != 0 {
		t.Fatalf("voices still active after sustain+release: %d", s.ActiveVoices())
	}
	s.ProcessBlock(buf)
	if testutil.RMS(buf) != 0 {
		t.Fatal("finished voices still sound")
	}
}

func TestSynthNoteOffReleases(t *testing.T) {
	s, _ := New(1000, Saw)
	s.NoteOn(60, 100)
	buf := make([]float64, 20)
	s.ProcessBlock(buf)

	s.Handle(Off(60))
	s.ProcessBlock(make([]float64, 60))
	if s.ActiveVoices() != 0 {
		t.Fatalf("voice survived release: %d active", s.ActiveVoices())
	}
	s.NoteOn(62, 0)
	if s.ActiveVoices() != 0 {
		t.Fatal("velocity 0 started a voice")
	}
}

func TestSynthStealsOldestVoice(t *testing.T) {
	s, _ := New(44100, Sine)
	for p := range MaxVoices {
		s.NoteOn(uint8(40+p), 100)
	}
	s.NoteOn(100, 100)

	if s.ActiveVoices() != MaxVoices {
		t.Fatalf("ActiveVoices = %d, want %d", s.ActiveVoices(), MaxVoices)
	}
	for _, v := range s.voices {
		if v.pitch == 40 {
			t.Fatal("oldest voice was not stolen")
		}
	}
}

func TestSynthValidation(t *testing.T) {
	if _, err := New(0, Sine); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	if _, err := New(44100, Waveform(9)); err == nil {
		t.Fatal("expected error for unknown waveform")
	}
	s, _ := New(44100, Sine)
	if err := s.SetTimes(3, 1); err == nil {
		t.Fatal("expected error for attack > 2 s")
	}
	if err := s.SetTimes(0.1, 0.01); err == nil {
		t.Fatal("expected error for sustain < 50 ms")
	}
	if _, err := ParseWaveform("noise"); err == nil {
		t.Fatal("expected error for unknown waveform name")
	}
	if w, err := ParseWaveform(" Sawtooth "); err != nil || w != Saw {
		t.Fatalf("ParseWaveform = %v, %v", w, err)
	}
}
