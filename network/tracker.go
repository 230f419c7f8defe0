package network

import (
	"fmt"

	"github.com/avren/wiremesh/mesh"
)

// Tracker owns the mapping from anchor positions to shared component
// records and keeps it consistent across link and anchor mutations.
//
// Invariant: whenever a record is Fresh, its member set equals the BFS
// closure of each member's links. Connect preserves the invariant by
// unioning two fresh closures (the union of two valid closures joined by
// a new link is itself the valid closure). Disconnect cannot tell whether
// the component split, so it only marks the shared record Stale; the next
// ComponentOf resolves the split with a fresh BFS.
type Tracker struct {
	mesh  *mesh.Mesh
	comps map[mesh.Position]*Component
}

// NewTracker creates a Tracker over m. The mesh must be mutated through
// the tracker (or the signal engine above it) from then on, so link
// changes and component records never diverge.
func NewTracker(m *mesh.Mesh) *Tracker {
	return &Tracker{
		mesh:  m,
		comps: make(map[mesh.Position]*Component),
	}
}

// Mesh returns the underlying mesh.
func (t *Tracker) Mesh() *mesh.Mesh { return t.mesh }

// Connect validates and adds the link a↔b, then merges the two endpoint
// components. Policy rejections (duplicate, degree, distance, self-link)
// are returned unchanged from the validator and leave all state intact.
//
// Merge strategy: both endpoint closures are resolved first (lazily
// rebuilding if stale), the smaller set is unioned into a copy of the
// larger, and every member is pointed at the union — O(n) versus the
// O(n²) of a from-scratch rebuild per member. The union record inherits
// the stronger of the two debounced inputs and the younger decay counter,
// so an already-powered side keeps its signal until the next update pass
// settles the merged component.
func (t *Tracker) Connect(a, b mesh.Position) error {
	if err := t.mesh.CanLink(a, b); err != nil {
		return err
	}

	// Resolve both closures before linking: the merge argument requires
	// two components that are individually valid.
	ca, err := t.ComponentOf(a)
	if err != nil {
		return err
	}
	cb, err := t.ComponentOf(b)
	if err != nil {
		return err
	}

	if err = t.mesh.Link(a, b); err != nil {
		// CanLink passed above; reaching here means the mesh was mutated
		// behind the tracker's back.
		return err
	}

	if ca == cb {
		// Already one component via another path; membership is unchanged.
		return nil
	}

	larger, smaller := ca, cb
	if smaller.Len() > larger.Len() {
		larger, smaller = smaller, larger
	}
	union := make(map[mesh.Position]struct{}, larger.Len()+smaller.Len())
	for p := range larger.members {
		union[p] = struct{}{}
	}
	for p := range smaller.members {
		union[p] = struct{}{}
	}
	merged := newComponent(union)
	merged.input = max(ca.input, cb.input)
	merged.ticksWithoutInput = min(ca.ticksWithoutInput, cb.ticksWithoutInput)
	for p := range union {
		t.comps[p] = merged
	}
	return nil
}

// Disconnect removes the link a↔b and marks both endpoint records stale,
// since the removal may have split one component into two disjoint ones
// that only a fresh BFS can distinguish. Reports whether a link was
// actually removed; removing an absent link changes nothing.
func (t *Tracker) Disconnect(a, b mesh.Position) bool {
	if !t.mesh.Unlink(a, b) {
		return false
	}
	t.Invalidate(a)
	t.Invalidate(b)
	return true
}

// DisconnectAll removes every link of a and returns the far-side
// positions that lost one. All affected records are marked stale.
func (t *Tracker) DisconnectAll(a mesh.Position) []mesh.Position {
	severed := t.mesh.LinkedAnchors(a)
	for _, far := range severed {
		t.mesh.Unlink(a, far)
		t.Invalidate(far)
	}
	t.Invalidate(a)
	return severed
}

// Invalidate marks p's component record stale. Because the record is
// shared by every member, one mark covers the whole component; anchors
// without a record simply build one on first use.
func (t *Tracker) Invalidate(p mesh.Position) {
	if c, ok := t.comps[p]; ok {
		c.freshness = Stale
	}
}

// Drop discards p's record association, marking the shared record stale
// first so surviving members rebuild without p. Called when the anchor
// itself is removed from the mesh.
func (t *Tracker) Drop(p mesh.Position) {
	t.Invalidate(p)
	delete(t.comps, p)
}

// ComponentOf returns the component record of the anchor at p, rebuilding
// it from a BFS closure iff the cached record is missing or stale. A
// linkless anchor yields a singleton component. The rebuilt record
// inherits the previous record's debounced signal state, so hysteresis
// survives a split.
// Returns mesh.ErrAnchorNotFound if no anchor exists at p.
func (t *Tracker) ComponentOf(p mesh.Position) (*Component, error) {
	if !t.mesh.HasAnchor(p) {
		return nil, fmt.Errorf("%w: %s", mesh.ErrAnchorNotFound, p)
	}
	if c, ok := t.comps[p]; ok && c.freshness == Fresh {
		return c, nil
	}
	prev := t.comps[p]
	c := newComponent(Closure(t.mesh, p))
	if prev != nil {
		c.input = prev.input
		c.ticksWithoutInput = prev.ticksWithoutInput
	}
	for m := range c.members {
		t.comps[m] = c
	}
	return c, nil
}

// Members returns the deterministic member list of p's component,
// rebuilding it if necessary.
func (t *Tracker) Members(p mesh.Position) ([]mesh.Position, error) {
	c, err := t.ComponentOf(p)
	if err != nil {
		return nil, err
	}
	return c.Members(), nil
}
