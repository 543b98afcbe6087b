package graph

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-discs/dsp/synth"
	"github.com/cwbudde/algo-discs/dsp/ugen"
	"github.com/cwbudde/algo-discs/internal/testutil"
)

// render hands each block of in to the builder and collects the output.
func render(t *testing.T, b *Builder, in []float64, block int) []float64 {
	t.Helper()
	out := make([]float64, 0, len(in))
	buf := make([]float64, block)
	for _, chunk := range testutil.Blocks(in, block) {
		if err := b.HandoffAudio(chunk); err != nil {
			t.Fatalf("HandoffAudio() error = %v", err)
		}
		b.LoadBuffer(buf[:len(chunk)])
		out = append(out, buf[:len(chunk)]...)
	}
	return out
}

func TestInputThroughTransparentCrusher(t *testing.T) {
	in := testutil.DeterministicSine(440, 44100, 0.5, 1024)

	ref := newTestBuilder(t)
	mustAdd(t, ref, ugen.Input, 0, 0, 10)
	want := render(t, ref, in, 64)

	b := newTestBuilder(t)
	mustAdd(t, b, ugen.Input, 0, 0, 10)
	if _, err := b.Add(ugen.BitCrusher, 150, 0, 10, 1, 1); err != nil {
		t.Fatalf("Add(BitCrusher) error = %v", err)
	}
	if w := b.Wires(); len(w) != 1 {
		t.Fatalf("Wires() = %v, want one", w)
	}
	got := render(t, b, in, 64)

	testutil.RequireSliceNearlyEqual(t, got, want, 1e-12)
}

func TestFanOutScaling(t *testing.T) {
	in := testutil.DeterministicSine(1000, 44100, 0.25, 512)

	ref := newTestBuilder(t)
	mustAdd(t, ref, ugen.Input, 0, 0, 10)
	single := render(t, ref, in, 64)

	b := newTestBuilder(t)
	src := mustAdd(t, b, ugen.Input, 0, 0, 10)
	for _, y := range []float64{50, -50} {
		if _, err := b.Add(ugen.BitCrusher, 0, y, 10, 1, 1); err != nil {
			t.Fatalf("Add(BitCrusher) error = %v", err)
		}
	}
	for _, w := range b.Wires() {
		if w.From != src {
			t.Fatalf("wire %v does not start at the input", w)
		}
	}
	got := render(t, b, in, 64)

	// Two branches of 1/sqrt(2) each.
	for i := range got {
		if math.Abs(got[i]-math.Sqrt2*single[i]) > 1e-12 {
			t.Fatalf("sample %d = %g, want %g", i, got[i], math.Sqrt2*single[i])
		}
	}
}

func TestWetLevel(t *testing.T) {
	b := newTestBuilder(t)
	a := mustAdd(t, b, ugen.Delay, 0, 0, 10)
	c := mustAdd(t, b, ugen.Reverb, 160, 0, 10)

	tests := []struct {
		x    float64
		want float64
	}{
		{x: 5, want: 1},
		{x: 20, want: 1},
		{x: 160, want: 0.5},
		{x: 300, want: 0},
		{x: 1000, want: 0},
	}
	for _, tt := range tests {
		if err := b.SetPosition(c, tt.x, 0); err != nil {
			t.Fatalf("SetPosition() error = %v", err)
		}
		got, err := b.WetLevel(a, c)
		if err != nil {
			t.Fatalf("WetLevel() error = %v", err)
		}
		if math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("WetLevel at %g = %g, want %g", tt.x, got, tt.want)
		}
	}
}

func TestDryPathBypassesUnit(t *testing.T) {
	in := testutil.DeterministicSine(500, 44100, 0.5, 1024)

	ref := newTestBuilder(t)
	mustAdd(t, ref, ugen.Input, 0, 0, 10)
	want := render(t, ref, in, 64)

	// At the connection radius the wire is fully dry: the muted distortion
	// adds nothing and the dry path carries the input.
	b := newTestBuilder(t, WithMaxConnectionRadius(300))
	mustAdd(t, b, ugen.Input, 0, 0, 10)
	if _, err := b.Add(ugen.Distortion, 299.9999999, 0, 10, 50, 0); err != nil {
		t.Fatalf("Add(Distortion) error = %v", err)
	}
	got := render(t, b, in, 64)

	diff, err := testutil.MaxAbsDiff(got, want)
	if err != nil {
		t.Fatalf("MaxAbsDiff() error = %v", err)
	}
	if diff > 1e-6 {
		t.Fatalf("max diff = %g, want dry passthrough", diff)
	}
}

func TestVisitsMatchNodeCount(t *testing.T) {
	b := newTestBuilder(t)
	mustAdd(t, b, ugen.Input, 0, 0, 10)
	mustAdd(t, b, ugen.Chorus, 60, 0, 10)
	mustAdd(t, b, ugen.Looper, 120, 0, 10)
	mustAdd(t, b, ugen.Reverb, 2000, 0, 10)

	out := make([]float64, 64)
	for i := 0; i < 3; i++ {
		b.LoadBuffer(out)
		if s := b.Stats(); s.Visits != 4 {
			t.Fatalf("pull %d visits = %d, want 4", i, s.Visits)
		}
	}
}

func TestSharedUpstreamEvaluatedOnce(t *testing.T) {
	b := newTestBuilder(t)
	mustAdd(t, b, ugen.Input, 0, 0, 10)
	for _, y := range []float64{50, -50} {
		if _, err := b.Add(ugen.BitCrusher, 0, y, 10, 1, 1); err != nil {
			t.Fatalf("Add(BitCrusher) error = %v", err)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sinks) != 2 {
		t.Fatalf("sinks = %v, want both crushers", b.sinks)
	}
	for _, i := range b.order {
		n := b.slots[i].node
		n.computed = false
		n.ensureBuffers(64)
	}
	b.scratch = make([]float64, 64)
	b.stats.Visits = 0

	// Pull only the sinks, last first: both reach the shared input.
	for j := len(b.sinks) - 1; j >= 0; j-- {
		b.evaluateLocked(b.slots[b.sinks[j]].node)
	}
	if b.stats.Visits != 3 {
		t.Fatalf("visits = %d, want 3", b.stats.Visits)
	}

	b.evaluateLocked(b.slots[b.sinks[0]].node)
	if b.stats.Visits != 3 {
		t.Fatalf("repeated pull visits = %d, want 3", b.stats.Visits)
	}
}

func TestOscillatorPeak(t *testing.T) {
	b := newTestBuilder(t)
	mustAdd(t, b, ugen.Sine, 0, 0, 10)
	if err := b.HandoffMIDI([]synth.Event{synth.On(69, 127)}); err != nil {
		t.Fatalf("HandoffMIDI() error = %v", err)
	}

	out := make([]float64, 8192)
	for _, chunk := range testutil.Blocks(out, 256) {
		b.LoadBuffer(chunk)
	}
	testutil.RequireFinite(t, out)

	freq, err := testutil.DominantFrequency(out, 44100)
	if err != nil {
		t.Fatalf("DominantFrequency() error = %v", err)
	}
	if math.Abs(freq-440) > 10 {
		t.Fatalf("dominant frequency = %.1f Hz, want 440", freq)
	}
}

func TestOutputHighpassRemovesDC(t *testing.T) {
	b := newTestBuilder(t)
	mustAdd(t, b, ugen.Input, 0, 0, 10)

	got := render(t, b, testutil.DC(0.5, 44100), 512)
	tail := got[len(got)-512:]
	if rms := testutil.RMS(tail); rms > 1e-3 {
		t.Fatalf("DC tail rms = %g, want ~0", rms)
	}
}

func TestLoadBufferLongerThanBlock(t *testing.T) {
	b := newTestBuilder(t, WithBlockSize(16))
	mustAdd(t, b, ugen.Sine, 0, 0, 10)
	mustAdd(t, b, ugen.Reverb, 50, 0, 10)
	if err := b.HandoffMIDI([]synth.Event{synth.On(60, 100)}); err != nil {
		t.Fatalf("HandoffMIDI() error = %v", err)
	}

	out := make([]float64, 1000)
	b.LoadBuffer(out)
	testutil.RequireFinite(t, out)
	if testutil.RMS(out) == 0 {
		t.Fatal("expected sound from the oscillator")
	}
}
