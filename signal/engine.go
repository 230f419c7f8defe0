package signal

import (
	"log/slog"

	"github.com/avren/wiremesh/mesh"
	"github.com/avren/wiremesh/network"
)

// Engine is the update orchestrator and the public surface of wiremesh.
// It owns each anchor's distributed signal value and periodic tick
// counter, and routes every topology change, neighbor notification, and
// periodic tick through one guarded update pass per component.
type Engine struct {
	mesh    *mesh.Mesh
	tracker *network.Tracker
	env     Environment
	log     *slog.Logger

	lossDelay      int
	updateInterval int

	// Per-anchor distributed value and self-healing counter. These are
	// the anchor-owned cached scalars; component-level state lives on
	// the shared network.Component records.
	signals      map[mesh.Position]mesh.Power
	tickCounters map[mesh.Position]int

	optErr error
}

// NewEngine creates an Engine over m, consuming env for external
// queries. The mesh must not be mutated except through the engine.
func NewEngine(m *mesh.Mesh, env Environment, opts ...EngineOption) (*Engine, error) {
	if m == nil {
		return nil, ErrNilMesh
	}
	if env == nil {
		return nil, ErrNilEnvironment
	}
	e := &Engine{
		mesh:           m,
		tracker:        network.NewTracker(m),
		env:            env,
		log:            slog.New(slog.DiscardHandler),
		lossDelay:      DefaultSignalLossDelay,
		updateInterval: DefaultUpdateInterval,
		signals:        make(map[mesh.Position]mesh.Power),
		tickCounters:   make(map[mesh.Position]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.optErr != nil {
		return nil, e.optErr
	}
	// Anchors that predate the engine (e.g. a mesh loaded from storage)
	// start with no component record, so their membership is rebuilt on
	// first use. Schedule an early pass for each of them.
	for _, p := range m.Anchors() {
		e.signals[p] = 0
		e.env.ScheduleTick(p, 1)
	}
	return e, nil
}

// Mesh returns the underlying mesh.
func (e *Engine) Mesh() *mesh.Mesh { return e.mesh }

// Tracker returns the component tracker.
func (e *Engine) Tracker() *network.Tracker { return e.tracker }

// PlaceAnchor registers a new anchor at p and schedules its first update
// for the next tick. Returns mesh.ErrAnchorExists on collision.
func (e *Engine) PlaceAnchor(p mesh.Position) error {
	if err := e.mesh.AddAnchor(p); err != nil {
		return err
	}
	e.signals[p] = 0
	e.env.ScheduleTick(p, 1)
	return nil
}

// RemoveAnchor deletes the anchor at p, cascading removal of every
// far-side link entry, and re-settles each severed neighbor's component.
func (e *Engine) RemoveAnchor(p mesh.Position) error {
	severed, err := e.mesh.RemoveAnchor(p)
	if err != nil {
		return err
	}
	e.tracker.Drop(p)
	delete(e.signals, p)
	delete(e.tickCounters, p)
	for _, far := range severed {
		e.tracker.Invalidate(far)
	}
	for _, far := range severed {
		e.Update(far)
	}
	e.env.NotifyChanged(p)
	return nil
}

// AddLink validates and creates the bidirectional link a↔b, merging the
// two components, then runs one update pass over the merged component.
// Policy rejections (mesh.ErrSelfLink, mesh.ErrDuplicateLink,
// mesh.ErrDegreeLimit, mesh.ErrLinkTooFar) are returned for user-facing
// messaging and leave all state unchanged.
func (e *Engine) AddLink(a, b mesh.Position) error {
	if err := e.tracker.Connect(a, b); err != nil {
		return err
	}
	e.Update(a)
	e.env.NotifyChanged(a)
	e.env.NotifyChanged(b)
	return nil
}

// RemoveLink removes the link a↔b, if present, and re-settles both
// sides independently: the removal may have split the component in two.
// Removing an absent link is a no-op.
func (e *Engine) RemoveLink(a, b mesh.Position) {
	if !e.tracker.Disconnect(a, b) {
		return
	}
	e.Update(a)
	e.Update(b)
	e.env.NotifyChanged(a)
	e.env.NotifyChanged(b)
}

// RemoveAllLinks removes every link of a (used by the connector tool's
// clear gesture) and re-settles a and each severed neighbor.
func (e *Engine) RemoveAllLinks(a mesh.Position) {
	severed := e.tracker.DisconnectAll(a)
	if len(severed) == 0 {
		return
	}
	e.Update(a)
	for _, far := range severed {
		e.Update(far)
		e.env.NotifyChanged(far)
	}
	e.env.NotifyChanged(a)
}

// Links returns the ordered link targets of the anchor at p; the
// renderer draws one curve per unique unordered pair.
func (e *Engine) Links(p mesh.Position) ([]mesh.Position, error) {
	return e.mesh.Links(p)
}

// Signal returns the distributed signal value of the anchor at p
// (zero for absent anchors; consumed for color and for power queries).
func (e *Engine) Signal(p mesh.Position) mesh.Power {
	return e.signals[p]
}

// NeighborChanged is the environment's notification that a non-anchor
// cell adjacent to p changed; it triggers an update pass for p's
// component. Notifications for non-anchor positions are ignored.
func (e *Engine) NeighborChanged(p mesh.Position) {
	if !e.mesh.HasAnchor(p) {
		return
	}
	e.Update(p)
}

// Tick advances p's periodic counter; every updateInterval ticks it runs
// a self-healing update pass, correcting any missed event-driven trigger.
func (e *Engine) Tick(p mesh.Position) {
	if !e.mesh.HasAnchor(p) {
		return
	}
	e.tickCounters[p]++
	if e.tickCounters[p] < e.updateInterval {
		return
	}
	e.tickCounters[p] = 0
	e.Update(p)
}

// Update runs one orchestrated pass for the component containing p:
//
//  1. resolve the component, lazily rebuilding a stale member set;
//  2. enter the Updating phase — if the component is already updating,
//     decline silently and rely on the outer pass (or the next periodic
//     tick) to reconcile;
//  3. aggregate the maximum external input over all members;
//  4. debounce: rising edge applies immediately, falling edge only after
//     lossDelay inputless passes;
//  5. write the settled value into every member whose stored value
//     differs and notify the environment for each.
//
// The phase guard is released on every exit path.
func (e *Engine) Update(p mesh.Position) {
	comp, err := e.tracker.ComponentOf(p)
	if err != nil {
		return // anchor vanished between trigger and pass
	}
	if !comp.Begin() {
		return
	}
	defer comp.End()

	input := e.aggregate(comp)
	settled := comp.Observe(input, e.lossDelay)
	e.log.Debug("network update",
		"root", p.String(),
		"members", comp.Len(),
		"input", uint8(input),
		"signal", uint8(settled))
	e.distribute(comp, settled)
}

// distribute writes the settled value into each member that differs and
// flags it for external notification.
func (e *Engine) distribute(comp *network.Component, v mesh.Power) {
	for _, member := range comp.Members() {
		if e.signals[member] == v {
			continue
		}
		e.signals[member] = v
		e.env.NotifyChanged(member)
	}
}
