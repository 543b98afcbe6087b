// Package graph routes audio between positioned unit generators ("discs").
//
// A Builder owns an arena of nodes, each a ugen.Unit with a 2-D position and
// radius. Rebuild derives a directed forest from the layout:
//
//  1. Prim-style spanning from the lowest handle: repeatedly join the
//     closest unmarked node to the marked set when the centre distance is
//     below the maximum connection radius and the pair is not two sources.
//     When nothing is in reach the lowest unmarked node starts a new island.
//  2. Edges are normalised to (lower, higher) handle and sorted.
//  3. Sources (Input, MIDI) always emit; loopers always receive. The rest is
//     settled by propagation: a node that carries signal emits on its
//     undecided edges. A pass without progress orients the first undecided
//     edge from lower to higher handle.
//  4. Sinks are nodes with no outgoing wire, or a single one into a looper.
//
// LoadBuffer evaluates every node once in topological order. Each incoming
// wire contributes its upstream result split into a wet part, fed through
// the unit, and a dry part added after it (skipped for sources). The wet
// level falls linearly with the gap between the discs' rims and every
// upstream result is scaled by 1/sqrt(fan-out). Sinks are summed and passed
// through a fixed highpass and lowpass.
//
// One mutex covers every public method, so a rebuild never interleaves with
// a buffer pull.
package graph
