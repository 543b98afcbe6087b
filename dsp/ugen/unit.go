package ugen

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/core"
	"github.com/cwbudde/algo-discs/dsp/effects"
	"github.com/cwbudde/algo-discs/dsp/effects/modulation"
	"github.com/cwbudde/algo-discs/dsp/effects/reverb"
	"github.com/cwbudde/algo-discs/dsp/synth"
)

// ErrUnsupported is returned when an operation does not apply to a unit's
// kind, such as triggering a reverb.
var ErrUnsupported = errors.New("ugen: operation not supported by kind")

const (
	chorusMinRateHz  = 0.02
	chorusMaxRateHz  = 10.0
	chorusMaxDepth   = 0.0125
	ringModMinHz     = 100.0
	ringModSpanHz    = 4900.0
	tremoloMinRateHz = 0.1
	tremoloRateRatio = 150.0

	// maxCarrierRatio keeps the ring modulator carrier below Nyquist at low
	// sample rates.
	maxCarrierRatio = 0.49
)

type inputState struct {
	block  []float64
	last   float64
	volume float64
}

// Unit is one unit generator. Exactly one kernel field is populated, the
// one matching kind.
type Unit struct {
	kind       Kind
	sampleRate float64
	p1, p2     float64

	input      *inputState
	crusher    *effects.BitCrusher
	chorus     *modulation.Chorus
	delay      *effects.Delay
	distortion *effects.Distortion
	looper     *effects.Looper
	ringMod    *modulation.RingModulator
	reverb     *reverb.Reverb
	tremolo    *modulation.Tremolo
	synth      *synth.Synth
}

// New builds a unit of kind at sampleRate and applies p1 and p2, clamped to
// the kind's bounds.
func New(kind Kind, sampleRate float64, p1, p2 float64) (*Unit, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownKind, kind)
	}
	if err := core.ValidateSampleRate("unit", sampleRate); err != nil {
		return nil, err
	}

	u := &Unit{kind: kind, sampleRate: sampleRate}
	var err error
	switch kind {
	case Input:
		u.input = &inputState{}
	case BitCrusher:
		u.crusher, err = effects.NewBitCrusher(sampleRate)
	case Chorus:
		u.chorus, err = modulation.NewChorus(sampleRate)
	case Delay:
		u.delay, err = effects.NewDelay(sampleRate)
	case Distortion:
		u.distortion, err = effects.NewDistortion(sampleRate)
	case Looper:
		u.looper, err = effects.NewLooper(sampleRate)
	case RingMod:
		u.ringMod, err = modulation.NewRingModulator(sampleRate)
	case Reverb:
		u.reverb, err = reverb.New(sampleRate)
	case Tremolo:
		u.tremolo, err = modulation.NewTremolo(sampleRate)
	case Sine, Square, Triangle, Saw:
		u.synth, err = synth.New(sampleRate, kinds[kind].waveform)
	}
	if err != nil {
		return nil, fmt.Errorf("ugen %v: %w", kind, err)
	}

	if err := u.SetParams(p1, p2); err != nil {
		return nil, err
	}
	// A fresh unit starts at its parameters, not gliding toward them.
	u.Reset()
	return u, nil
}

// NewDefault builds a unit with the kind's default parameters.
func NewDefault(kind Kind, sampleRate float64) (*Unit, error) {
	p1, p2 := kind.Defaults()
	return New(kind, sampleRate, p1, p2)
}

// Kind returns the unit kind.
func (u *Unit) Kind() Kind { return u.kind }

// SampleRate returns the sample rate in Hz.
func (u *Unit) SampleRate() float64 { return u.sampleRate }

// Params returns the stored, clamped parameters.
func (u *Unit) Params() (p1, p2 float64) { return u.p1, u.p2 }

// SetParams clamps p1 and p2 to the kind's bounds, stores them, and derives
// the kernel controls. Floored parameters are stored floored.
func (u *Unit) SetParams(p1, p2 float64) error {
	info := &kinds[u.kind]
	p1 = info.p1.Clamp(p1)
	p2 = info.p2.Clamp(p2)
	if info.floor1 {
		p1 = math.Floor(p1)
	}
	if info.floor2 {
		p2 = math.Floor(p2)
	}

	if err := u.apply(p1, p2); err != nil {
		return fmt.Errorf("ugen %v: %w", u.kind, err)
	}
	u.p1, u.p2 = p1, p2
	return nil
}

func (u *Unit) apply(p1, p2 float64) error {
	switch u.kind {
	case Input:
		u.input.volume = p1
		return nil
	case BitCrusher:
		if err := u.crusher.SetBits(int(p1)); err != nil {
			return err
		}
		return u.crusher.SetDownsample(int(p2))
	case Chorus:
		if err := u.chorus.SetRate(core.ExpMap(p1, chorusMinRateHz, chorusMaxRateHz)); err != nil {
			return err
		}
		return u.chorus.SetDepth(p2 * chorusMaxDepth)
	case Delay:
		if err := u.delay.SetTime(p1); err != nil {
			return err
		}
		return u.delay.SetFeedback(p2)
	case Distortion:
		if err := u.distortion.SetPre(p1); err != nil {
			return err
		}
		return u.distortion.SetPost(p2)
	case Looper:
		return u.looper.SetTiming(p1, int(p2))
	case RingMod:
		hz := math.Min(ringModMinHz+p1*ringModSpanHz, maxCarrierRatio*u.sampleRate)
		return u.ringMod.SetCarrierHz(hz)
	case Reverb:
		if err := u.reverb.SetRoomSize(p1); err != nil {
			return err
		}
		return u.reverb.SetDamp(p2)
	case Tremolo:
		if err := u.tremolo.SetRate(tremoloMinRateHz * math.Pow(tremoloRateRatio, p1)); err != nil {
			return err
		}
		return u.tremolo.SetDepth(p2)
	case Sine, Square, Triangle, Saw:
		return u.synth.SetTimes(p1, p2)
	}
	return nil
}

// Normalized returns the parameters mapped linearly from their bounds onto
// [0, 1].
func (u *Unit) Normalized() (n1, n2 float64) {
	b1, b2 := u.kind.Bounds()
	return core.LinearUnmap(u.p1, b1.Min, b1.Max), core.LinearUnmap(u.p2, b2.Min, b2.Max)
}

// SetNormalized maps n1 and n2 from [0, 1] linearly onto the bounds and
// applies them through SetParams.
func (u *Unit) SetNormalized(n1, n2 float64) error {
	b1, b2 := u.kind.Bounds()
	return u.SetParams(
		core.LinearMap(core.Clamp(n1, 0, 1), b1.Min, b1.Max),
		core.LinearMap(core.Clamp(n2, 0, 1), b2.Min, b2.Max),
	)
}

// Process renders one block into dst from src. dst and src must have the
// same length and may alias. Source kinds ignore src.
func (u *Unit) Process(dst, src []float64) {
	switch u.kind {
	case Input:
		u.processInput(dst)
	case BitCrusher:
		u.crusher.ProcessBlock(dst, src)
	case Chorus:
		u.chorus.ProcessBlock(dst, src)
	case Delay:
		u.delay.ProcessBlock(dst, src)
	case Distortion:
		u.distortion.ProcessBlock(dst, src)
	case Looper:
		u.looper.ProcessBlock(dst, src)
	case RingMod:
		u.ringMod.ProcessBlock(dst, src)
	case Reverb:
		u.reverb.ProcessBlock(dst, src)
	case Tremolo:
		u.tremolo.ProcessBlock(dst, src)
	case Sine, Square, Triangle, Saw:
		u.synth.ProcessBlock(dst)
	}
}

// processInput plays the handed-off block, holding its last sample when the
// block runs short, and consumes it.
func (u *Unit) processInput(dst []float64) {
	in := u.input
	n := min(len(in.block), len(dst))
	for i := 0; i < n; i++ {
		dst[i] = in.block[i] * in.volume
	}
	if n > 0 {
		in.last = in.block[n-1]
	}
	for i := n; i < len(dst); i++ {
		dst[i] = in.last * in.volume
	}
	in.block = in.block[:0]
}

// HandoffAudio stores the next block of external audio for an Input unit.
// The samples are copied.
func (u *Unit) HandoffAudio(samples []float64) error {
	if u.kind != Input {
		return fmt.Errorf("%w: handoff audio to %v", ErrUnsupported, u.kind)
	}
	u.input.block = append(u.input.block[:0], samples...)
	return nil
}

// HandoffMIDI delivers note events to an oscillator unit.
func (u *Unit) HandoffMIDI(events []synth.Event) error {
	if !u.kind.IsMIDI() {
		return fmt.Errorf("%w: handoff MIDI to %v", ErrUnsupported, u.kind)
	}
	for _, e := range events {
		u.synth.Handle(e)
	}
	return nil
}

// Trigger advances a Looper's state machine.
func (u *Unit) Trigger() error {
	if u.kind != Looper {
		return fmt.Errorf("%w: trigger %v", ErrUnsupported, u.kind)
	}
	u.looper.Trigger()
	return nil
}

// LooperState returns the looper state, or LooperIdle for other kinds.
func (u *Unit) LooperState() effects.LooperState {
	if u.looper == nil {
		return effects.LooperIdle
	}
	return u.looper.State()
}

// ActiveVoices returns the sounding voices of an oscillator unit, or 0.
func (u *Unit) ActiveVoices() int {
	if u.synth == nil {
		return 0
	}
	return u.synth.ActiveVoices()
}

// Reset clears the kernel state.
func (u *Unit) Reset() {
	switch u.kind {
	case Input:
		u.input.block = u.input.block[:0]
		u.input.last = 0
	case BitCrusher:
		u.crusher.Reset()
	case Chorus:
		u.chorus.Reset()
	case Delay:
		u.delay.Reset()
	case Distortion:
		u.distortion.Reset()
	case Looper:
		u.looper.Reset()
	case RingMod:
		u.ringMod.Reset()
	case Reverb:
		u.reverb.Reset()
	case Tremolo:
		u.tremolo.Reset()
	case Sine, Square, Triangle, Saw:
		u.synth.Reset()
	}
}
