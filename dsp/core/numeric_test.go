package core

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		v, lo, hi, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-1, 0, 1, 0},
		{2, 0, 1, 1},
		{2, 1, 0, 1},
		{math.NaN(), 0, 1, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestMaps(t *testing.T) {
	if got := LinearMap(0.5, 100, 5000); got != 2550 {
		t.Fatalf("LinearMap = %v, want 2550", got)
	}
	if got := LinearUnmap(2550, 100, 5000); got != 0.5 {
		t.Fatalf("LinearUnmap = %v, want 0.5", got)
	}
	if got := LinearUnmap(3, 2, 2); got != 0 {
		t.Fatalf("degenerate LinearUnmap = %v, want 0", got)
	}
	if got := ExpMap(0, 0.02, 10); math.Abs(got-0.02) > 1e-12 {
		t.Fatalf("ExpMap(0) = %v", got)
	}
	if got := ExpMap(1, 0.02, 10); math.Abs(got-10) > 1e-12 {
		t.Fatalf("ExpMap(1) = %v", got)
	}
	if got := NoteToHz(69); got != 440 {
		t.Fatalf("NoteToHz(69) = %v", got)
	}
	if got := NoteToHz(81); math.Abs(got-880) > 1e-9 {
		t.Fatalf("NoteToHz(81) = %v", got)
	}
}

func TestFlushDenormals(t *testing.T) {
	if FlushDenormals(1e-35) != 0 {
		t.Fatal("tiny value not flushed")
	}
	if FlushDenormals(1e-3) != 1e-3 {
		t.Fatal("normal value changed")
	}
}

func TestLinearToDB(t *testing.T) {
	if got := LinearToDB(0.5); math.Abs(got+6.0206) > 1e-4 {
		t.Fatalf("LinearToDB(0.5) = %v", got)
	}
	if !math.IsInf(LinearToDB(0), -1) || !math.IsNaN(LinearToDB(-1)) {
		t.Fatal("LinearToDB edge cases wrong")
	}
}
