package scene

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/cwbudde/algo-discs/dsp/graph"
	"github.com/cwbudde/algo-discs/dsp/ugen"
)

func newBuilder(t *testing.T) *graph.Builder {
	t.Helper()
	b, err := graph.New(graph.WithSampleRate(44100), graph.WithBlockSize(64))
	if err != nil {
		t.Fatalf("graph.New() error = %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

const chainScript = `
input = disc("input", 0, 0)
delay = disc("delay", 100, 0, 20, 0.5, 0.1)
loop = disc("looper", 200, 0)

function update(t)
  move(delay, 100 + t * 1000, 0)
  if t >= 1 then
    rebuild()
  end
end
`

func TestLoadStringBuildsGraph(t *testing.T) {
	b := newBuilder(t)
	s, err := LoadString(b, "chain", chainScript)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	defer s.Close()

	nodes := b.Nodes()
	if len(nodes) != 3 {
		t.Fatalf("nodes = %d, want 3", len(nodes))
	}
	kinds := []ugen.Kind{nodes[0].Kind, nodes[1].Kind, nodes[2].Kind}
	if !slices.Equal(kinds, []ugen.Kind{ugen.Input, ugen.Delay, ugen.Looper}) {
		t.Fatalf("kinds = %v", kinds)
	}
	if nodes[1].Radius != 20 || nodes[1].P1 != 0.5 || nodes[1].P2 != 0.1 {
		t.Fatalf("delay = %+v", nodes[1])
	}
	if nodes[2].Radius != DefaultRadius || nodes[2].P1 != 120 || nodes[2].P2 != 4 {
		t.Fatalf("looper defaults = %+v", nodes[2])
	}
	if !s.HasUpdate() {
		t.Fatal("HasUpdate() = false")
	}
}

func TestStepMovesAndRebuilds(t *testing.T) {
	b := newBuilder(t)
	s, err := LoadString(b, "chain", chainScript)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	defer s.Close()

	before := b.Stats().Rebuilds
	if err := s.Step(0.5); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	delay := b.Nodes()[1].ID
	pos, err := b.Position(delay)
	if err != nil {
		t.Fatalf("Position() error = %v", err)
	}
	if pos.X != 600 {
		t.Fatalf("delay x = %g, want 600", pos.X)
	}
	if b.Stats().Rebuilds != before {
		t.Fatal("update rebuilt before t >= 1")
	}

	if err := s.Step(1); err != nil {
		t.Fatalf("Step() error = %v", err)
	}
	if b.Stats().Rebuilds != before+1 {
		t.Fatalf("rebuilds = %d, want %d", b.Stats().Rebuilds, before+1)
	}
	if s.Steps() != 2 {
		t.Fatalf("Steps() = %d, want 2", s.Steps())
	}
}

func TestNotesReachOscillators(t *testing.T) {
	b := newBuilder(t)
	s, err := LoadString(b, "notes", `
osc = disc("saw", 0, 0)
note_on(60, 90)
`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	defer s.Close()

	out := make([]float64, 256)
	b.LoadBuffer(out)
	var energy float64
	for _, x := range out {
		energy += x * x
	}
	if energy == 0 {
		t.Fatal("expected the note to sound")
	}
}

func TestTriggerAndRemove(t *testing.T) {
	b := newBuilder(t)
	s, err := LoadString(b, "looper", `
l = disc("looper", 0, 0)
trigger(l)
d = disc("reverb", 50, 0)
remove(d)
`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	defer s.Close()

	nodes := b.Nodes()
	if len(nodes) != 1 {
		t.Fatalf("nodes = %d, want 1", len(nodes))
	}
	state, err := b.LooperState(nodes[0].ID)
	if err != nil || state != "counting-down" {
		t.Fatalf("LooperState() = %q, %v", state, err)
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown kind", `disc("theremin", 0, 0)`, "theremin"},
		{"bad radius", `disc("delay", 0, 0, -1)`, "radius"},
		{"stale id", `d = disc("delay", 0, 0); remove(d); move(d, 1, 1)`, "unknown node"},
		{"syntax", `disc(`, "chain"},
		{"pitch range", `note_on(300)`, "127"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuilder(t)
			_, err := LoadString(b, "chain", tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestUpdateErrorIsReported(t *testing.T) {
	b := newBuilder(t)
	s, err := LoadString(b, "broken", `function update(t) error("boom") end`)
	if err != nil {
		t.Fatalf("LoadString() error = %v", err)
	}
	defer s.Close()
	if err := s.Step(0); err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("Step() error = %v, want boom", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.lua")
	if err := os.WriteFile(path, []byte(`disc("tremolo", 0, 0)`), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	b := newBuilder(t)
	s, err := Load(b, path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer s.Close()
	if s.HasUpdate() {
		t.Fatal("HasUpdate() = true for a script without update")
	}
	if err := s.Step(1); err != nil {
		t.Fatalf("Step() without update error = %v", err)
	}
	if len(b.Nodes()) != 1 {
		t.Fatalf("nodes = %d, want 1", len(b.Nodes()))
	}
}
