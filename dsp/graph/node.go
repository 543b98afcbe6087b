package graph

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-discs/dsp/ugen"
)

// NodeID is a stable handle into the node arena. The low 32 bits are the
// slot index and the high 32 bits the slot generation, so a handle to a
// removed node never aliases its successor. The zero NodeID is never valid.
type NodeID uint64

func makeNodeID(index int, gen uint32) NodeID {
	return NodeID(uint64(gen)<<32 | uint64(uint32(index)))
}

// Index returns the slot index. Handles order by index.
func (id NodeID) Index() int { return int(uint32(id)) }

// Generation returns the slot generation.
func (id NodeID) Generation() uint32 { return uint32(id >> 32) }

// String formats the handle as index.generation.
func (id NodeID) String() string {
	return fmt.Sprintf("%d.%d", id.Index(), id.Generation())
}

// Vec2 is a position in layout units.
type Vec2 struct {
	X, Y float64
}

// Dist returns the Euclidean distance between a and b.
func (a Vec2) Dist(b Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Wire is a directed connection produced by a rebuild.
type Wire struct {
	From, To NodeID
}

// NodeInfo is a snapshot of one node.
type NodeInfo struct {
	ID     NodeID
	Kind   ugen.Kind
	Pos    Vec2
	Radius float64
	P1, P2 float64
}

type node struct {
	id     NodeID
	unit   *ugen.Unit
	pos    Vec2
	radius float64

	// in and out index into Builder.wires.
	in, out  []int
	computed bool

	result []float64
	wet    []float64
	dry    []float64
}

func (n *node) kind() ugen.Kind { return n.unit.Kind() }

func (n *node) isSource() bool { return n.unit.Kind().IsSource() }

func (n *node) isLooper() bool { return n.unit.Kind().IsLooper() }

func (n *node) ensureBuffers(size int) {
	if cap(n.result) < size {
		n.result = make([]float64, size)
		n.wet = make([]float64, size)
		n.dry = make([]float64, size)
	}
	n.result = n.result[:size]
	n.wet = n.wet[:size]
	n.dry = n.dry[:size]
}

type slot struct {
	gen  uint32
	node *node
}
