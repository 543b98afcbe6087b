package graph

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/GeoffreyPlitt/debuggo"

	"github.com/cwbudde/algo-discs/dsp/filter/biquad"
	"github.com/cwbudde/algo-discs/dsp/synth"
	"github.com/cwbudde/algo-discs/dsp/ugen"
)

var debug = debuggo.Debug("discs:graph")

var (
	// ErrUnknownNode is returned for a handle that was never issued or whose
	// node has been removed.
	ErrUnknownNode = errors.New("graph: unknown node")
	// ErrClosed is returned by every mutating call after Close.
	ErrClosed = errors.New("graph: builder closed")
)

// Stats describes the current topology and the most recent LoadBuffer.
type Stats struct {
	Nodes    int
	Wires    int
	Sinks    int
	Islands  int
	Rebuilds int
	// Visits counts node evaluations in the last LoadBuffer.
	Visits int
}

// Builder owns the nodes, derives the wiring from their layout and renders
// the mix. It is safe for concurrent use.
type Builder struct {
	mu     sync.Mutex
	cfg    config
	closed bool

	slots []slot
	free  []int

	wires []Wire
	sinks []int
	order []int
	stats Stats

	highpass *biquad.Filter
	lowpass  *biquad.Filter
	scratch  []float64

	scratchLive []int
}

// New returns an empty Builder.
func New(opts ...Option) (*Builder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		cfg:      cfg,
		highpass: biquad.New(biquad.Highpass, cfg.highpassHz, outputFilterQ, 1, cfg.sampleRate),
		lowpass:  biquad.New(biquad.Lowpass, cfg.lowpassHz, outputFilterQ, 1, cfg.sampleRate),
		scratch:  make([]float64, cfg.blockSize),
	}
	b.lowpass.Normalize()
	return b, nil
}

// SampleRate returns the engine sample rate in Hz.
func (b *Builder) SampleRate() float64 { return b.cfg.sampleRate }

// BlockSize returns the nominal buffer length.
func (b *Builder) BlockSize() int { return b.cfg.blockSize }

// MaxConnectionRadius returns the wiring distance limit.
func (b *Builder) MaxConnectionRadius() float64 { return b.cfg.maxRadius }

// Add creates a node of kind at (x, y) with the given disc radius and
// parameters, then rebuilds the topology.
func (b *Builder) Add(kind ugen.Kind, x, y, radius, p1, p2 float64) (NodeID, error) {
	if err := validatePlacement(x, y, radius); err != nil {
		return 0, err
	}
	unit, err := ugen.New(kind, b.cfg.sampleRate, p1, p2)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	var index int
	if k := len(b.free); k > 0 {
		index = b.free[k-1]
		b.free = b.free[:k-1]
	} else {
		index = len(b.slots)
		b.slots = append(b.slots, slot{})
	}
	s := &b.slots[index]
	s.gen++

	n := &node{
		id:     makeNodeID(index, s.gen),
		unit:   unit,
		pos:    Vec2{X: x, Y: y},
		radius: radius,
	}
	n.ensureBuffers(b.cfg.blockSize)
	s.node = n

	debug("add %v %v at (%.1f, %.1f) r=%.1f", n.id, kind, x, y, radius)
	b.rebuildLocked()
	return n.id, nil
}

// Remove deletes a node and rebuilds the topology. The handle becomes
// invalid.
func (b *Builder) Remove(id NodeID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.lookupLocked(id); err != nil {
		return err
	}
	index := id.Index()
	b.slots[index].node = nil
	b.free = append(b.free, index)

	debug("remove %v", id)
	b.rebuildLocked()
	return nil
}

// SetPosition moves a node. Wet levels follow immediately; the wiring changes
// on the next Rebuild.
func (b *Builder) SetPosition(id NodeID, x, y float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return fmt.Errorf("graph position must be finite: (%f, %f)", x, y)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.lookupLocked(id)
	if err != nil {
		return err
	}
	n.pos = Vec2{X: x, Y: y}
	return nil
}

// Position returns the node position.
func (b *Builder) Position(id NodeID) (Vec2, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.lookupLocked(id)
	if err != nil {
		return Vec2{}, err
	}
	return n.pos, nil
}

// SetRadius changes a node's disc radius.
func (b *Builder) SetRadius(id NodeID, radius float64) error {
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return fmt.Errorf("graph node radius must be > 0 and finite: %f", radius)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.lookupLocked(id)
	if err != nil {
		return err
	}
	n.radius = radius
	return nil
}

// SetParams sets a node's parameters in engineering units. Values are
// clamped to the kind's bounds.
func (b *Builder) SetParams(id NodeID, p1, p2 float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.lookupLocked(id)
	if err != nil {
		return err
	}
	return n.unit.SetParams(p1, p2)
}

// Params returns a node's parameters in engineering units.
func (b *Builder) Params(id NodeID) (p1, p2 float64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.lookupLocked(id)
	if err != nil {
		return 0, 0, err
	}
	p1, p2 = n.unit.Params()
	return p1, p2, nil
}

// SetNormalized sets a node's parameters from [0, 1] controls.
func (b *Builder) SetNormalized(id NodeID, n1, n2 float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.lookupLocked(id)
	if err != nil {
		return err
	}
	return n.unit.SetNormalized(n1, n2)
}

// Normalized returns a node's parameters mapped to [0, 1].
func (b *Builder) Normalized(id NodeID) (n1, n2 float64, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.lookupLocked(id)
	if err != nil {
		return 0, 0, err
	}
	n1, n2 = n.unit.Normalized()
	return n1, n2, nil
}

// Trigger advances a looper node's state machine.
func (b *Builder) Trigger(id NodeID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.lookupLocked(id)
	if err != nil {
		return err
	}
	return n.unit.Trigger()
}

// LooperState returns the state of a looper node.
func (b *Builder) LooperState(id NodeID) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.lookupLocked(id)
	if err != nil {
		return "", err
	}
	if !n.isLooper() {
		return "", fmt.Errorf("%w: looper state of %v", ugen.ErrUnsupported, n.kind())
	}
	return n.unit.LooperState().String(), nil
}

// Rebuild recomputes the wiring from the current layout.
func (b *Builder) Rebuild() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.rebuildLocked()
	return nil
}

// HandoffAudio delivers the next block of external audio to every Input
// node. The samples are copied.
func (b *Builder) HandoffAudio(samples []float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	for _, s := range b.slots {
		if s.node != nil && s.node.kind().IsInput() {
			if err := s.node.unit.HandoffAudio(samples); err != nil {
				return err
			}
		}
	}
	return nil
}

// HandoffMIDI delivers note events to every oscillator node.
func (b *Builder) HandoffMIDI(events []synth.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	for _, s := range b.slots {
		if s.node != nil && s.node.kind().IsMIDI() {
			if err := s.node.unit.HandoffMIDI(events); err != nil {
				return err
			}
		}
	}
	return nil
}

// Wires returns a copy of the current directed wires, sorted by their
// normalised endpoint pair.
func (b *Builder) Wires() []Wire {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Wire, len(b.wires))
	copy(out, b.wires)
	return out
}

// Sinks returns the handles of the nodes summed into the output.
func (b *Builder) Sinks() []NodeID {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]NodeID, len(b.sinks))
	for i, s := range b.sinks {
		out[i] = b.slots[s].node.id
	}
	return out
}

// Nodes returns a snapshot of every node in handle order.
func (b *Builder) Nodes() []NodeInfo {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []NodeInfo
	for _, s := range b.slots {
		if s.node == nil {
			continue
		}
		p1, p2 := s.node.unit.Params()
		out = append(out, NodeInfo{
			ID:     s.node.id,
			Kind:   s.node.kind(),
			Pos:    s.node.pos,
			Radius: s.node.radius,
			P1:     p1,
			P2:     p2,
		})
	}
	return out
}

// Stats returns topology and evaluation counters.
func (b *Builder) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// Close releases every node. Later calls return ErrClosed and LoadBuffer
// renders silence.
func (b *Builder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.slots = nil
	b.free = nil
	b.wires = nil
	b.sinks = nil
	b.order = nil
	b.stats = Stats{Rebuilds: b.stats.Rebuilds}
	debug("closed")
	return nil
}

func (b *Builder) lookupLocked(id NodeID) (*node, error) {
	if b.closed {
		return nil, ErrClosed
	}
	i := id.Index()
	if id.Generation() == 0 || i >= len(b.slots) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownNode, id)
	}
	s := b.slots[i]
	if s.node == nil || s.gen != id.Generation() {
		return nil, fmt.Errorf("%w: %v", ErrUnknownNode, id)
	}
	return s.node, nil
}

func validatePlacement(x, y, radius float64) error {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return fmt.Errorf("graph position must be finite: (%f, %f)", x, y)
	}
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return fmt.Errorf("graph node radius must be > 0 and finite: %f", radius)
	}
	return nil
}
