// Package grid provides an in-memory discrete 3D world that fulfils the
// signal.Environment contract: grid adjacency, omnidirectional power
// sources, conduit cells excluded from aggregation, change notification
// fan-out, and a cooperative tick scheduler. It is the reference host
// used by the CLI, the scenario runner, and the tests.
package grid

import (
	"errors"
	"fmt"
	"sort"

	"github.com/avren/wiremesh/mesh"
	"github.com/avren/wiremesh/signal"
)

// Sentinel errors for world operations.
var (
	// ErrCellOccupied indicates the position already holds an anchor,
	// a source, or a conduit.
	ErrCellOccupied = errors.New("grid: cell occupied")

	// ErrBadPower indicates a source power outside 0..MaxPower.
	ErrBadPower = errors.New("grid: power out of range")

	// ErrNoSource indicates no source exists at the position.
	ErrNoSource = errors.New("grid: no source at position")
)

// scheduledTick is a one-shot update request queued by ScheduleTick.
type scheduledTick struct {
	pos mesh.Position
	due int
}

// World is an unbounded 3D grid hosting one wiremesh engine. Non-empty
// cells are sources (emitting power toward every neighbor), conduits
// (the excluded peer medium), and the engine's anchors.
//
// The world is the engine's external scheduler: Step advances one
// discrete tick, firing due one-shot ticks and the per-anchor periodic
// tick.
type World struct {
	eng *signal.Engine
	msh *mesh.Mesh

	sources  map[mesh.Position]mesh.Power
	conduits map[mesh.Position]struct{}

	now     int
	pending []scheduledTick
}

// NewWorld builds a World around m and creates its engine with the given
// options. The world registers itself as the engine's environment.
func NewWorld(m *mesh.Mesh, opts ...signal.EngineOption) (*World, error) {
	w := &World{
		msh:      m,
		sources:  make(map[mesh.Position]mesh.Power),
		conduits: make(map[mesh.Position]struct{}),
	}
	eng, err := signal.NewEngine(m, w, opts...)
	if err != nil {
		return nil, err
	}
	w.eng = eng
	return w, nil
}

// Engine returns the hosted engine.
func (w *World) Engine() *signal.Engine { return w.eng }

// Mesh returns the hosted mesh.
func (w *World) Mesh() *mesh.Mesh { return w.msh }

// Now returns the current tick number.
func (w *World) Now() int { return w.now }

//----------------------------------------------------------------------------//
// Cell management
//----------------------------------------------------------------------------//

// PlaceAnchor puts a new anchor at p.
func (w *World) PlaceAnchor(p mesh.Position) error {
	if w.occupied(p) {
		return fmt.Errorf("%w: %s", ErrCellOccupied, p)
	}
	return w.eng.PlaceAnchor(p)
}

// RemoveAnchor removes the anchor at p with link cascade.
func (w *World) RemoveAnchor(p mesh.Position) error {
	return w.eng.RemoveAnchor(p)
}

// SetSource places or re-powers an omnidirectional power source at p and
// notifies adjacent anchors. Power must be within 0..MaxPower.
func (w *World) SetSource(p mesh.Position, power mesh.Power) error {
	if power > mesh.MaxPower {
		return fmt.Errorf("%w: %d at %s", ErrBadPower, power, p)
	}
	if w.msh.HasAnchor(p) {
		return fmt.Errorf("%w: %s", ErrCellOccupied, p)
	}
	w.sources[p] = power
	w.NotifyChanged(p)
	return nil
}

// ClearSource removes the source at p and notifies adjacent anchors.
func (w *World) ClearSource(p mesh.Position) error {
	if _, ok := w.sources[p]; !ok {
		return fmt.Errorf("%w: %s", ErrNoSource, p)
	}
	delete(w.sources, p)
	w.NotifyChanged(p)
	return nil
}

// PlaceConduit marks p as a conduit cell (peer medium, never aggregated).
func (w *World) PlaceConduit(p mesh.Position) error {
	if w.occupied(p) {
		return fmt.Errorf("%w: %s", ErrCellOccupied, p)
	}
	w.conduits[p] = struct{}{}
	return nil
}

// Link creates the bidirectional link a↔b through the engine.
func (w *World) Link(a, b mesh.Position) error { return w.eng.AddLink(a, b) }

// Unlink removes the link a↔b through the engine.
func (w *World) Unlink(a, b mesh.Position) { w.eng.RemoveLink(a, b) }

// Signal returns the distributed signal at p.
func (w *World) Signal(p mesh.Position) mesh.Power { return w.eng.Signal(p) }

func (w *World) occupied(p mesh.Position) bool {
	if w.msh.HasAnchor(p) {
		return true
	}
	if _, ok := w.sources[p]; ok {
		return true
	}
	_, ok := w.conduits[p]
	return ok
}

//----------------------------------------------------------------------------//
// signal.Environment
//----------------------------------------------------------------------------//

// Neighbors returns the six grid-adjacent cells of p; the grid is
// unbounded, so all six always exist.
func (w *World) Neighbors(p mesh.Position) []signal.Neighbor {
	out := make([]signal.Neighbor, 0, len(mesh.Directions))
	for _, d := range mesh.Directions {
		out = append(out, signal.Neighbor{Pos: p.Offset(d), Dir: d})
	}
	return out
}

// PowerFrom answers the "incoming from" power query: a source offers its
// full strength toward every direction; everything else offers nothing.
func (w *World) PowerFrom(p mesh.Position, _ mesh.Direction) mesh.Power {
	return w.sources[p]
}

// IsConduit reports whether p holds the peer signal medium.
func (w *World) IsConduit(p mesh.Position) bool {
	_, ok := w.conduits[p]
	return ok
}

// NotifyChanged re-evaluates the surroundings of p: every adjacent
// anchor receives a neighbor-change trigger. Triggers for anchors of the
// component currently updating are absorbed by the engine's phase guard.
func (w *World) NotifyChanged(p mesh.Position) {
	for _, d := range mesh.Directions {
		w.eng.NeighborChanged(p.Offset(d))
	}
}

// ScheduleTick queues a one-shot update for p after delay ticks.
func (w *World) ScheduleTick(p mesh.Position, delay int) {
	if delay < 1 {
		delay = 1
	}
	w.pending = append(w.pending, scheduledTick{pos: p, due: w.now + delay})
}

//----------------------------------------------------------------------------//
// Tick driver
//----------------------------------------------------------------------------//

// Step advances one tick: fires due one-shot ticks, then the periodic
// per-anchor tick that drives self-healing updates.
func (w *World) Step() {
	w.now++

	due := w.pending[:0]
	var fire []mesh.Position
	for _, t := range w.pending {
		if t.due <= w.now {
			fire = append(fire, t.pos)
			continue
		}
		due = append(due, t)
	}
	w.pending = due
	sort.Slice(fire, func(i, j int) bool { return fire[i].Less(fire[j]) })
	for _, p := range fire {
		w.eng.NeighborChanged(p) // no-op if the anchor is gone
	}

	for _, p := range w.msh.Anchors() {
		w.eng.Tick(p)
	}
}

// Run advances n ticks.
func (w *World) Run(n int) {
	for i := 0; i < n; i++ {
		w.Step()
	}
}
