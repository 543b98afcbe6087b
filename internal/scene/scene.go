// Package scene drives a graph from a Lua script. The script places discs,
// moves them over time and plays notes, standing in for an interactive
// front end.
//
// Globals available to scripts:
//
//	disc(kind, x, y [, radius, p1, p2]) -> id
//	move(id, x, y)
//	radius(id, r)
//	params(id, p1, p2)
//	remove(id)
//	trigger(id)
//	rebuild()
//	note_on(pitch [, velocity])
//	note_off(pitch)
//	log(msg)
//
// A script may define update(t), which Step calls with the scene time in
// seconds. Handles are passed to Lua as numbers and are exact while the
// slot generation stays below 2^21.
package scene

import (
	"fmt"

	"github.com/GeoffreyPlitt/debuggo"
	lua "github.com/yuin/gopher-lua"

	"github.com/cwbudde/algo-discs/dsp/graph"
	"github.com/cwbudde/algo-discs/dsp/synth"
	"github.com/cwbudde/algo-discs/dsp/ugen"
)

var debug = debuggo.Debug("discs:scene")

// DefaultRadius is the disc radius used when a script omits it.
const DefaultRadius = 30.0

// Target is the graph surface a scene controls.
type Target interface {
	Add(kind ugen.Kind, x, y, radius, p1, p2 float64) (graph.NodeID, error)
	Remove(id graph.NodeID) error
	SetPosition(id graph.NodeID, x, y float64) error
	SetRadius(id graph.NodeID, radius float64) error
	SetParams(id graph.NodeID, p1, p2 float64) error
	Trigger(id graph.NodeID) error
	Rebuild() error
	HandoffMIDI(events []synth.Event) error
}

// Scene is a loaded script bound to a Target. It is not safe for concurrent
// use.
type Scene struct {
	name   string
	state  *lua.LState
	target Target
	update *lua.LFunction
	steps  int
}

// Load runs the script at path against target.
func Load(target Target, path string) (*Scene, error) {
	s := newScene(target, path)
	if err := s.state.DoFile(path); err != nil {
		s.Close()
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	s.bindUpdate()
	return s, nil
}

// LoadString runs src, labelled name in errors, against target.
func LoadString(target Target, name, src string) (*Scene, error) {
	s := newScene(target, name)
	if err := s.state.DoString(src); err != nil {
		s.Close()
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}
	s.bindUpdate()
	return s, nil
}

func newScene(target Target, name string) *Scene {
	s := &Scene{name: name, state: lua.NewState(), target: target}
	for fname, fn := range map[string]lua.LGFunction{
		"disc":     s.luaDisc,
		"move":     s.luaMove,
		"radius":   s.luaRadius,
		"params":   s.luaParams,
		"remove":   s.luaRemove,
		"trigger":  s.luaTrigger,
		"rebuild":  s.luaRebuild,
		"note_on":  s.luaNoteOn,
		"note_off": s.luaNoteOff,
		"log":      s.luaLog,
	} {
		s.state.SetGlobal(fname, s.state.NewFunction(fn))
	}
	return s
}

func (s *Scene) bindUpdate() {
	if fn, ok := s.state.GetGlobal("update").(*lua.LFunction); ok {
		s.update = fn
	}
	debug("scene %s loaded (update=%t)", s.name, s.update != nil)
}

// HasUpdate reports whether the script defines update(t).
func (s *Scene) HasUpdate() bool { return s.update != nil }

// Step calls update(t) if the script defines it.
func (s *Scene) Step(t float64) error {
	if s.update == nil {
		return nil
	}
	s.steps++
	err := s.state.CallByParam(lua.P{Fn: s.update, NRet: 0, Protect: true}, lua.LNumber(t))
	if err != nil {
		return fmt.Errorf("scene %s update(%g): %w", s.name, t, err)
	}
	return nil
}

// Steps returns how many times update has been called.
func (s *Scene) Steps() int { return s.steps }

// Close releases the Lua state.
func (s *Scene) Close() {
	if s.state != nil {
		s.state.Close()
		s.state = nil
	}
}

func checkID(L *lua.LState, n int) graph.NodeID {
	return graph.NodeID(uint64(L.CheckNumber(n)))
}

func raise(L *lua.LState, err error) int {
	L.RaiseError("%v", err)
	return 0
}

func (s *Scene) luaDisc(L *lua.LState) int {
	kind, err := ugen.ParseKind(L.CheckString(1))
	if err != nil {
		return raise(L, err)
	}
	x := float64(L.CheckNumber(2))
	y := float64(L.CheckNumber(3))
	r := float64(L.OptNumber(4, DefaultRadius))
	d1, d2 := kind.Defaults()
	p1 := float64(L.OptNumber(5, lua.LNumber(d1)))
	p2 := float64(L.OptNumber(6, lua.LNumber(d2)))

	id, err := s.target.Add(kind, x, y, r, p1, p2)
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LNumber(float64(id)))
	return 1
}

func (s *Scene) luaMove(L *lua.LState) int {
	if err := s.target.SetPosition(checkID(L, 1), float64(L.CheckNumber(2)), float64(L.CheckNumber(3))); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *Scene) luaRadius(L *lua.LState) int {
	if err := s.target.SetRadius(checkID(L, 1), float64(L.CheckNumber(2))); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *Scene) luaParams(L *lua.LState) int {
	if err := s.target.SetParams(checkID(L, 1), float64(L.CheckNumber(2)), float64(L.CheckNumber(3))); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *Scene) luaRemove(L *lua.LState) int {
	if err := s.target.Remove(checkID(L, 1)); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *Scene) luaTrigger(L *lua.LState) int {
	if err := s.target.Trigger(checkID(L, 1)); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *Scene) luaRebuild(L *lua.LState) int {
	if err := s.target.Rebuild(); err != nil {
		return raise(L, err)
	}
	return 0
}

func checkByte(L *lua.LState, n int, def int) uint8 {
	v := L.OptInt(n, def)
	if v < 0 || v > 127 {
		L.ArgError(n, "must be in [0, 127]")
	}
	return uint8(v)
}

func (s *Scene) luaNoteOn(L *lua.LState) int {
	pitch := checkByte(L, 1, -1)
	velocity := checkByte(L, 2, 100)
	if err := s.target.HandoffMIDI([]synth.Event{synth.On(pitch, velocity)}); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *Scene) luaNoteOff(L *lua.LState) int {
	pitch := checkByte(L, 1, -1)
	if err := s.target.HandoffMIDI([]synth.Event{synth.Off(pitch)}); err != nil {
		return raise(L, err)
	}
	return 0
}

func (s *Scene) luaLog(L *lua.LState) int {
	debug("%s: %s", s.name, L.CheckString(1))
	return 0
}
