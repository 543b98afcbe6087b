package graph

import (
	"math"
	"slices"
)

// edge is an undirected spanning edge between slot indices a < b.
type edge struct {
	a, b int
}

// liveLocked returns the slot indices of live nodes in handle order.
func (b *Builder) liveLocked() []int {
	live := b.scratchLive[:0]
	for i, s := range b.slots {
		if s.node != nil {
			live = append(live, i)
		}
	}
	b.scratchLive = live
	return live
}

// rebuildLocked recomputes wires, sinks and evaluation order from the
// current layout.
func (b *Builder) rebuildLocked() {
	live := b.liveLocked()
	for _, i := range live {
		n := b.slots[i].node
		n.in = n.in[:0]
		n.out = n.out[:0]
	}

	edges, islands := b.spanLocked(live)
	b.wires = b.orientLocked(edges)
	for w, wire := range b.wires {
		from := b.slots[wire.From.Index()].node
		to := b.slots[wire.To.Index()].node
		from.out = append(from.out, w)
		to.in = append(to.in, w)
	}

	b.sinks = b.sinks[:0]
	for _, i := range live {
		n := b.slots[i].node
		if len(n.out) == 0 || (len(n.out) == 1 && b.slots[b.wires[n.out[0]].To.Index()].node.isLooper()) {
			b.sinks = append(b.sinks, i)
		}
	}

	b.order = b.sortLocked(live)
	b.stats.Nodes = len(live)
	b.stats.Wires = len(b.wires)
	b.stats.Sinks = len(b.sinks)
	b.stats.Islands = islands
	b.stats.Rebuilds++

	debug("rebuild %d: %d nodes, %d wires, %d sinks, %d islands",
		b.stats.Rebuilds, len(live), len(b.wires), len(b.sinks), islands)
}

// spanLocked grows a spanning forest over live from the lowest handle. Each
// unmarked node tracks its closest eligible marked partner; the unmarked node
// with the smallest such distance joins next. When no unmarked node has an
// eligible partner the lowest unmarked handle is marked without an edge and
// starts a new island.
func (b *Builder) spanLocked(live []int) ([]edge, int) {
	if len(live) == 0 {
		return nil, 0
	}

	type candidate struct {
		marked  bool
		dist    float64
		partner int
	}

	cand := make(map[int]*candidate, len(live))
	for _, i := range live {
		cand[i] = &candidate{dist: math.Inf(1), partner: -1}
	}

	mark := func(m int) {
		cand[m].marked = true
		mn := b.slots[m].node
		for _, u := range live {
			c := cand[u]
			if c.marked {
				continue
			}
			un := b.slots[u].node
			if mn.isSource() && un.isSource() {
				continue
			}
			d := mn.pos.Dist(un.pos)
			if d >= b.cfg.maxRadius {
				continue
			}
			if d < c.dist || (d == c.dist && m < c.partner) {
				c.dist = d
				c.partner = m
			}
		}
	}

	var edges []edge
	mark(live[0])
	islands := 1

	for remaining := len(live) - 1; remaining > 0; remaining-- {
		next := -1
		for _, u := range live {
			c := cand[u]
			if c.marked || c.partner < 0 {
				continue
			}
			if next < 0 || c.dist < cand[next].dist {
				next = u
			}
		}

		if next < 0 {
			for _, u := range live {
				if !cand[u].marked {
					next = u
					break
				}
			}
			islands++
		} else {
			p := cand[next].partner
			edges = append(edges, edge{a: min(p, next), b: max(p, next)})
		}
		mark(next)
	}

	slices.SortFunc(edges, func(x, y edge) int {
		if x.a != y.a {
			return x.a - y.a
		}
		return x.b - y.b
	})
	return edges, islands
}

// orientLocked assigns a direction to every edge. Sources emit and loopers
// receive; the rest follows signal propagation from the carriers.
func (b *Builder) orientLocked(edges []edge) []Wire {
	const undecided = 0
	const forward, backward = 1, -1

	dir := make([]int, len(edges))
	// carry holds the rank at which a node started carrying signal, or -1.
	carry := make(map[int]int, 2*len(edges))
	rank := func(i int) int {
		if r, ok := carry[i]; ok {
			return r
		}
		return -1
	}
	next := 1
	startCarrying := func(i int) {
		if rank(i) < 0 {
			carry[i] = next
			next++
		}
	}

	for e, ed := range edges {
		na, nb := b.slots[ed.a].node, b.slots[ed.b].node
		if na.isSource() {
			carry[ed.a] = 0
		}
		if nb.isSource() {
			carry[ed.b] = 0
		}
		switch {
		case na.isSource():
			dir[e] = forward
		case nb.isSource():
			dir[e] = backward
		case nb.isLooper() && !na.isLooper():
			dir[e] = forward
		case na.isLooper() && !nb.isLooper():
			dir[e] = backward
		}
	}

	dst := func(e int) int {
		if dir[e] == forward {
			return edges[e].b
		}
		return edges[e].a
	}

	for {
		for e := range edges {
			if dir[e] != undecided {
				startCarrying(dst(e))
			}
		}

		pending, progress := 0, false
		for e, ed := range edges {
			if dir[e] != undecided {
				continue
			}
			ra, rb := rank(ed.a), rank(ed.b)
			switch {
			case ra >= 0 && (rb < 0 || ra <= rb):
				dir[e] = forward
			case rb >= 0:
				dir[e] = backward
			default:
				pending++
				continue
			}
			progress = true
			startCarrying(dst(e))
		}

		if pending == 0 {
			break
		}
		if !progress {
			for e := range edges {
				if dir[e] == undecided {
					dir[e] = forward
					break
				}
			}
		}
	}

	wires := make([]Wire, len(edges))
	for e, ed := range edges {
		from, to := ed.a, ed.b
		if dir[e] == backward {
			from, to = to, from
		}
		wires[e] = Wire{From: b.slots[from].node.id, To: b.slots[to].node.id}
	}
	return wires
}

// sortLocked returns live in a topological order of the wires using Kahn's
// algorithm, seeded and drained in handle order.
func (b *Builder) sortLocked(live []int) []int {
	indeg := make(map[int]int, len(live))
	queue := make([]int, 0, len(live))
	for _, i := range live {
		indeg[i] = len(b.slots[i].node.in)
		if indeg[i] == 0 {
			queue = append(queue, i)
		}
	}

	order := b.order[:0]
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		order = append(order, i)
		for _, w := range b.slots[i].node.out {
			to := b.wires[w].To.Index()
			indeg[to]--
			if indeg[to] == 0 {
				queue = append(queue, to)
			}
		}
	}
	return order
}
