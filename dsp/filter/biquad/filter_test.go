package biquad

import (
	"math"
	"testing"
)

const sampleRate = 44100.0

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDCGainMatchesCoefficientRatio(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{Lowpass, Highpass, Bandpass, Bandstop, SinglePole} {
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			center, q := 1000.0, 0.9
			if kind == SinglePole {
				center, q = 0.5, 0.5
			}
			f := New(kind, center, q, 1, sampleRate)

			want := (f.B[0] + f.B[1] + f.B[2]) / (f.A[0] + f.A[1] + f.A[2])
			if got := f.DCGain(); got != want {
				t.Fatalf("DCGain() = %v, want %v", got, want)
			}
			if f.A[0] != 1 {
				t.Fatalf("a0 = %v, want normalized 1", f.A[0])
			}
		})
	}
}

func TestLowpassSettlesToDCGain(t *testing.T) {
	t.Parallel()

	f := New(Lowpass, 500, 1, 1, sampleRate)
	var y float64
	for range 20000 {
		y = f.Tick(1)
	}
	if !almostEqual(y, f.DCGain(), 1e-9) {
		t.Fatalf("settled output = %v, want DCGain %v", y, f.DCGain())
	}
	if !almostEqual(f.DCGain(), 1, 1e-12) {
		t.Fatalf("lowpass DCGain = %v, want 1", f.DCGain())
	}
}

func TestHighpassGains(t *testing.T) {
	t.Parallel()

	f := New(Highpass, 200, 0.707, 1, sampleRate)
	if !almostEqual(f.DCGain(), 0, 1e-12) {
		t.Fatalf("highpass DCGain = %v, want 0", f.DCGain())
	}
	if !almostEqual(f.HighFrequencyGain(), 1, 1e-12) {
		t.Fatalf("highpass HighFrequencyGain = %v, want 1", f.HighFrequencyGain())
	}
}

func TestBandpassRejectsEdges(t *testing.T) {
	t.Parallel()

	f := New(Bandpass, 2000, 2, 1, sampleRate)
	if !almostEqual(f.DCGain(), 0, 1e-12) || !almostEqual(f.HighFrequencyGain(), 0, 1e-12) {
		t.Fatalf("bandpass edge gains DC=%v HF=%v, want 0", f.DCGain(), f.HighFrequencyGain())
	}
	if f.MagnitudeSquared(2000) <= f.MagnitudeSquared(200) {
		t.Fatalf("bandpass passes 200 Hz (%v) more than 2 kHz (%v)",
			f.MagnitudeSquared(200), f.MagnitudeSquared(2000))
	}
}

func TestBandstopNotch(t *testing.T) {
	t.Parallel()

	center, q := 3000.0, 1.5
	f := New(Bandstop, center, q, 1, sampleRate)
	if !almostEqual(f.DCGain(), 1, 1e-12) || !almostEqual(f.HighFrequencyGain(), 1, 1e-12) {
		t.Fatalf("bandstop edge gains DC=%v HF=%v, want 1", f.DCGain(), f.HighFrequencyGain())
	}

	// The analog notch sits at sqrt(wl*wh) and is warped by the bilinear map.
	wc := 2 * math.Pi * center
	bw := wc / q
	w0 := math.Sqrt((wc - bw/2) * (wc + bw/2))
	notchHz := sampleRate / math.Pi * math.Atan(w0/(2*sampleRate))
	if m := f.MagnitudeSquared(notchHz); m > 1e-12 {
		t.Fatalf("|H|^2 at notch %.2f Hz = %g, want ~0", notchHz, m)
	}
}

func TestSinglePoleDifferenceEquation(t *testing.T) {
	t.Parallel()

	// y[n] = q*x[n] + p*y[n-1] with p = 0.5, q = 0.25.
	f := New(SinglePole, 0.5, 0.25, 1, sampleRate)
	want := []float64{0.25, 0.125, 0.0625, 0.03125}
	for i, w := range want {
		x := 0.0
		if i == 0 {
			x = 1
		}
		if got := f.Tick(x); !almostEqual(got, w, 1e-15) {
			t.Fatalf("sample %d: got %v, want %v", i, got, w)
		}
	}
	if !almostEqual(f.DCGain(), 0.5, 1e-15) {
		t.Fatalf("DCGain = %v, want 0.5", f.DCGain())
	}
}

func TestGainScalesOutputNotHistory(t *testing.T) {
	t.Parallel()

	ref := New(Lowpass, 800, 0.707, 1, sampleRate)
	scaled := New(Lowpass, 800, 0.707, 3, sampleRate)
	for i := range 256 {
		x := math.Sin(float64(i) * 0.1)
		a, b := ref.Tick(x), scaled.Tick(x)
		if !almostEqual(3*a, b, 1e-12) {
			t.Fatalf("sample %d: scaled %v, want %v", i, b, 3*a)
		}
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	f := New(SinglePole, 0.99, 0.5, 1, sampleRate)
	f.Normalize()
	var y float64
	for range 5000 {
		y = f.Tick(1)
	}
	if !almostEqual(y, 1, 1e-9) {
		t.Fatalf("normalized steady state = %v, want 1", y)
	}
}

func TestSetParamsKeepsHistory(t *testing.T) {
	t.Parallel()

	f := New(Lowpass, 500, 0.707, 1, sampleRate)
	for range 100 {
		f.Tick(1)
	}
	before := f.Last()
	f.SetParams(600, 0.707, 1)
	if f.Last() != before {
		t.Fatalf("SetParams changed history: %v -> %v", before, f.Last())
	}
	f.Reset()
	if f.Last() != 0 {
		t.Fatalf("Reset left output %v", f.Last())
	}
}

func TestResponseMatchesMagnitudeSquared(t *testing.T) {
	t.Parallel()

	for _, kind := range []Kind{Lowpass, Highpass, Bandpass, Bandstop} {
		f := New(kind, 1500, 1.2, 0.8, sampleRate)
		for _, hz := range []float64{50, 700, 1500, 5000, 15000} {
			h := f.Response(hz)
			mag2 := real(h)*real(h) + imag(h)*imag(h)
			if !almostEqual(mag2, f.MagnitudeSquared(hz), 1e-9) {
				t.Fatalf("%v @ %v Hz: |Response|^2 = %v, MagnitudeSquared = %v",
					kind, hz, mag2, f.MagnitudeSquared(hz))
			}
		}
	}
}

func TestKindString(t *testing.T) {
	if Bandstop.String() != "bandstop" || Kind(42).String() != "Kind(42)" {
		t.Fatalf("unexpected names %q %q", Bandstop.String(), Kind(42).String())
	}
}
