package graph

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-discs/dsp/core"
)

// LoadBuffer renders len(out) frames of the mix into out.
func (b *Builder) LoadBuffer(out []float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	core.Zero(out)
	if b.closed || len(out) == 0 {
		return
	}

	if cap(b.scratch) < len(out) {
		b.scratch = make([]float64, len(out))
	}
	b.scratch = b.scratch[:len(out)]

	for _, i := range b.order {
		n := b.slots[i].node
		n.computed = false
		n.ensureBuffers(len(out))
	}

	b.stats.Visits = 0
	for _, i := range b.order {
		b.evaluateLocked(b.slots[i].node)
	}

	for _, i := range b.sinks {
		vecmath.AddBlockInPlace(out, b.slots[i].node.result)
	}

	b.highpass.ProcessBlock(out, out)
	b.lowpass.ProcessBlock(out, out)
}

// evaluateLocked computes a node's result for the current pull at most once.
// It pulls each upstream node through the same memoized path, mixes the
// incoming wires and runs the unit. Stats.Visits counts the evaluations.
func (b *Builder) evaluateLocked(n *node) {
	if n.computed {
		return
	}
	b.stats.Visits++

	for _, w := range n.in {
		b.evaluateLocked(b.slots[b.wires[w].From.Index()].node)
	}

	core.Zero(n.wet)
	core.Zero(n.dry)
	for _, w := range n.in {
		up := b.slots[b.wires[w].From.Index()].node
		wet := b.wetLevel(up, n)
		scale := 1 / math.Sqrt(float64(len(up.out)))

		vecmath.ScaleBlock(b.scratch, up.result, wet*scale)
		vecmath.AddBlockInPlace(n.wet, b.scratch)
		vecmath.ScaleBlock(b.scratch, up.result, (1-wet)*scale)
		vecmath.AddBlockInPlace(n.dry, b.scratch)
	}

	n.unit.Process(n.result, n.wet)
	if !n.isSource() {
		vecmath.AddBlockInPlace(n.result, n.dry)
	}
	n.computed = true
}

// wetLevel is 1 while the discs overlap and falls linearly to 0 as the gap
// between them reaches the connection radius.
func (b *Builder) wetLevel(from, to *node) float64 {
	combined := from.radius + to.radius
	span := b.cfg.maxRadius - combined
	if span <= 0 {
		return 1
	}
	d := from.pos.Dist(to.pos)
	return core.Clamp(1-(d-combined)/span, 0, 1)
}

// WetLevel returns the wet level of the wire between two nodes as it would
// be applied now.
func (b *Builder) WetLevel(from, to NodeID) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	nf, err := b.lookupLocked(from)
	if err != nil {
		return 0, err
	}
	nt, err := b.lookupLocked(to)
	if err != nil {
		return 0, err
	}
	return b.wetLevel(nf, nt), nil
}
