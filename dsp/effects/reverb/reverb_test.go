package reverb

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-discs/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
	r, err := New(44100)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetRoomSize(1.1); err == nil {
		t.Fatal("expected error for room > 1")
	}
	if err := r.SetDamp(-0.1); err == nil {
		t.Fatal("expected error for damp < 0")
	}
}

func TestTuningsScaleWithSampleRate(t *testing.T) {
	r, err := New(88200)
	if err != nil {
		t.Fatal(err)
	}
	got := r.CombLengths()
	for i, n := range combTunings {
		if got[i] != 2*n {
			t.Fatalf("comb %d length %d, want %d", i, got[i], 2*n)
		}
	}
}

func TestImpulseResponseDecays(t *testing.T) {
	r, err := New(44100)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetRoomSize(0.5); err != nil {
		t.Fatal(err)
	}

	n := 44100 * 3
	out := make([]float64, n)
	r.ProcessBlock(out, testutil.Impulse(n, 0))
	testutil.RequireFinite(t, out)

	// Nothing arrives before the shortest comb plus the allpass chain has
	// released energy, but the tail is audible.
	early := testutil.RMS(out[:1000])
	first := testutil.RMS(out[2000:22050])
	last := testutil.RMS(out[n-22050:])
	if early != 0 {
		t.Fatalf("output before the first comb echo: rms %v", early)
	}
	if first == 0 || last >= first/10 {
		t.Fatalf("tail does not decay: first %v last %v", first, last)
	}
}

func TestLargerRoomRingsLonger(t *testing.T) {
	tail := func(room float64) float64 {
		r, err := New(44100)
		if err != nil {
			t.Fatal(err)
		}
		if err := r.SetRoomSize(room); err != nil {
			t.Fatal(err)
		}
		out := make([]float64, 44100*2)
		r.ProcessBlock(out, testutil.Impulse(len(out), 0))
		return testutil.RMS(out[44100:])
	}
	if small, large := tail(0.1), tail(0.9); large <= small {
		t.Fatalf("room 0.9 tail %v not longer than room 0.1 tail %v", large, small)
	}
}

func TestBlockMatchesSample(t *testing.T) {
	a, _ := New(44100)
	b, _ := New(44100)
	in := testutil.DeterministicNoise(11, 0.5, 4096)

	want := make([]float64, len(in))
	for i, x := range in {
		want[i] = a.ProcessSample(x)
	}
	var got []float64
	for _, blk := range testutil.Blocks(in, 300) {
		out := make([]float64, len(blk))
		b.ProcessBlock(out, blk)
		got = append(got, out...)
	}

	d, err := testutil.MaxAbsDiff(got, want)
	if err != nil {
		t.Fatal(err)
	}
	if d > 1e-12 {
		t.Fatalf("block/sample mismatch %v", d)
	}
	if math.Abs(a.GainEstimate()-b.GainEstimate()) > 1e-12 {
		t.Fatalf("gain estimates differ: %v vs %v", a.GainEstimate(), b.GainEstimate())
	}
}

func TestResetSilences(t *testing.T) {
	r, _ := New(44100)
	buf := testutil.DeterministicNoise(5, 1, 2048)
	r.ProcessBlock(buf, buf)
	r.Reset()
	out := make([]float64, 2048)
	r.ProcessBlock(out, make([]float64, 2048))
	if testutil.RMS(out) != 0 {
		t.Fatal("Reset left a tail")
	}
}
