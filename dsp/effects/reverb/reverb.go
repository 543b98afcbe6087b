package reverb

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
	"github.com/cwbudde/algo-discs/dsp/filter/bank"
	"github.com/cwbudde/algo-discs/dsp/filter/comb"
	vecmath "github.com/cwbudde/algo-vecmath"
)

const (
	tuningRate = 44100.0

	inputGain = 0.015
	wetGain   = 3.0

	roomScale  = 0.28
	roomOffset = 0.7
	dampScale  = 0.4

	defaultRoom = 0.5
	defaultDamp = 0.5
)

var (
	combTunings    = [...]int{1116, 1188, 1277, 1356, 1422, 1491, 1557, 1617}
	allpassTunings = [...]int{556, 441, 341, 225}
)

// Reverb is a Freeverb-style reverb. Its output is the wet signal only.
type Reverb struct {
	sampleRate float64
	room       float64
	damp       float64

	combs     []*comb.Comb
	bank      *bank.Bank
	allpasses []*comb.Allpass
}

// New creates a reverb with room size and damping 0.5.
func New(sampleRate float64) (*Reverb, error) {
	if err := core.ValidateSampleRate("reverb", sampleRate); err != nil {
		return nil, err
	}

	r := &Reverb{sampleRate: sampleRate, room: defaultRoom, damp: defaultDamp}
	feedback, damp := r.combCoefficients()

	tickers := make([]bank.Ticker, 0, len(combTunings))
	for _, n := range combTunings {
		c, err := comb.New(scaleTuning(n, sampleRate), feedback, damp)
		if err != nil {
			return nil, fmt.Errorf("reverb comb: %w", err)
		}
		r.combs = append(r.combs, c)
		tickers = append(tickers, c)
	}

	b, err := bank.New(sampleRate, tickers)
	if err != nil {
		return nil, fmt.Errorf("reverb bank: %w", err)
	}
	r.bank = b

	for _, n := range allpassTunings {
		a, err := comb.NewAllpass(scaleTuning(n, sampleRate), comb.DefaultAllpassGain)
		if err != nil {
			return nil, fmt.Errorf("reverb allpass: %w", err)
		}
		r.allpasses = append(r.allpasses, a)
	}
	return r, nil
}

// SetRoomSize sets the room size in [0, 1]. Comb feedback is 0.28*room+0.7.
func (r *Reverb) SetRoomSize(room float64) error {
	if room < 0 || room > 1 || math.IsNaN(room) {
		return fmt.Errorf("reverb room size must be in [0, 1]: %f", room)
	}
	r.room = room
	r.updateCombs()
	return nil
}

// SetDamp sets the high-frequency damping in [0, 1]. The comb damping pole
// is 0.4*damp.
func (r *Reverb) SetDamp(damp float64) error {
	if damp < 0 || damp > 1 || math.IsNaN(damp) {
		return fmt.Errorf("reverb damping must be in [0, 1]: %f", damp)
	}
	r.damp = damp
	r.updateCombs()
	return nil
}

// ProcessSample processes one sample.
func (r *Reverb) ProcessSample(x float64) float64 {
	y := r.bank.Tick(x * inputGain)
	for _, a := range r.allpasses {
		y = a.Tick(y)
	}
	return y * wetGain
}

// ProcessBlock processes src into dst. dst and src may alias.
func (r *Reverb) ProcessBlock(dst, src []float64) {
	dst = dst[:len(src)]
	vecmath.ScaleBlock(dst, src, inputGain)
	r.bank.ProcessBlock(dst, dst)
	for i, y := range dst {
		for _, a := range r.allpasses {
			y = a.Tick(y)
		}
		dst[i] = y
	}
	vecmath.ScaleBlock(dst, dst, wetGain)
}

// Reset clears every comb and allpass.
func (r *Reverb) Reset() {
	r.bank.Reset()
	for _, a := range r.allpasses {
		a.Reset()
	}
}

// RoomSize returns the room size.
func (r *Reverb) RoomSize() float64 { return r.room }

// Damp returns the damping amount.
func (r *Reverb) Damp() float64 { return r.damp }

// GainEstimate returns the comb bank's running power estimate.
func (r *Reverb) GainEstimate() float64 { return r.bank.GainEstimate() }

// CombLengths returns the comb delays in samples.
func (r *Reverb) CombLengths() []int {
	out := make([]int, len(r.combs))
	for i, c := range r.combs {
		out[i] = c.Len()
	}
	return out
}

func (r *Reverb) combCoefficients() (feedback, damp float64) {
	return roomScale*r.room + roomOffset, dampScale * r.damp
}

func (r *Reverb) updateCombs() {
	feedback, damp := r.combCoefficients()
	for _, c := range r.combs {
		c.SetFeedback(feedback)
		c.SetDamp(damp)
	}
}

func scaleTuning(n int, sampleRate float64) int {
	return max(1, int(math.Round(float64(n)*sampleRate/tuningRate)))
}
