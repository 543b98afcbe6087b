package device

import "github.com/cwbudde/algo-discs/dsp/graph"

// The graph Builder is the engine every backend drives.
var _ Engine = (*graph.Builder)(nil)
