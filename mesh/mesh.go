package mesh

import (
	"fmt"
	"sort"
)

// anchor is the per-position record. The mesh owns it exclusively; the
// ordered link list is the only persisted state (everything else in the
// system derives from it).
type anchor struct {
	pos   Position
	links []Position // insertion order, up to maxDegree entries
}

// Mesh is the registry of anchors in one world. It owns every anchor's
// link list and enforces the link policy via CanLink.
//
// The mesh is a plain single-owner structure: the engine is strictly
// single-threaded (cooperative, tick-driven), so no locking is done here.
type Mesh struct {
	anchors map[Position]*anchor

	maxDegree       int
	maxLinkDistance int

	optErr error // recorded by an invalid option, surfaced by New
}

// New creates an empty Mesh with the given options.
// Returns ErrOptionViolation if any option carries an out-of-range value.
func New(opts ...MeshOption) (*Mesh, error) {
	m := &Mesh{
		anchors:         make(map[Position]*anchor),
		maxDegree:       DefaultMaxDegree,
		maxLinkDistance: DefaultMaxLinkDistance,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.optErr != nil {
		return nil, m.optErr
	}
	return m, nil
}

// MaxDegree returns the per-anchor link limit.
func (m *Mesh) MaxDegree() int { return m.maxDegree }

// MaxLinkDistance returns the link distance limit in grid units.
func (m *Mesh) MaxLinkDistance() int { return m.maxLinkDistance }

// AddAnchor registers a new anchor at p.
// Returns ErrAnchorExists if the position is already occupied.
func (m *Mesh) AddAnchor(p Position) error {
	if _, ok := m.anchors[p]; ok {
		return fmt.Errorf("%w: %s", ErrAnchorExists, p)
	}
	m.anchors[p] = &anchor{pos: p}
	return nil
}

// RemoveAnchor deletes the anchor at p and cascades: every far-side anchor
// that lists p drops that entry. Returns the positions that lost a link,
// so the caller can invalidate the affected components.
// Returns ErrAnchorNotFound if no anchor exists at p.
func (m *Mesh) RemoveAnchor(p Position) ([]Position, error) {
	a, ok := m.anchors[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAnchorNotFound, p)
	}
	severed := make([]Position, 0, len(a.links))
	for _, t := range a.links {
		far, ok := m.anchors[t]
		if !ok {
			continue // stale target, nothing to unlink
		}
		if far.unlink(p) {
			severed = append(severed, t)
		}
	}
	delete(m.anchors, p)
	return severed, nil
}

// HasAnchor reports whether an anchor exists at p.
func (m *Mesh) HasAnchor(p Position) bool {
	_, ok := m.anchors[p]
	return ok
}

// Anchors returns every anchor position in deterministic (sorted) order.
// Complexity: O(n log n).
func (m *Mesh) Anchors() []Position {
	out := make([]Position, 0, len(m.anchors))
	for p := range m.anchors {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Len returns the number of registered anchors.
func (m *Mesh) Len() int { return len(m.anchors) }

// Links returns the raw ordered link targets of the anchor at p.
// Targets are reported as stored, including ones whose far-side anchor no
// longer exists; renderers and persistence consume this list verbatim.
// Returns ErrAnchorNotFound if no anchor exists at p.
func (m *Mesh) Links(p Position) ([]Position, error) {
	a, ok := m.anchors[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAnchorNotFound, p)
	}
	out := make([]Position, len(a.links))
	copy(out, a.links)
	return out, nil
}

// LinkedAnchors returns the link targets of p that still resolve to a live
// anchor. Stale references are filtered here, never treated as an error;
// traversal code (component rebuild, invalidation) must use this view.
func (m *Mesh) LinkedAnchors(p Position) []Position {
	a, ok := m.anchors[p]
	if !ok {
		return nil
	}
	out := make([]Position, 0, len(a.links))
	for _, t := range a.links {
		if _, live := m.anchors[t]; live {
			out = append(out, t)
		}
	}
	return out
}

// Degree returns the number of stored links at p (zero if p is absent).
func (m *Mesh) Degree(p Position) int {
	a, ok := m.anchors[p]
	if !ok {
		return 0
	}
	return len(a.links)
}

// Linked reports whether a stores a link to b.
func (m *Mesh) Linked(a, b Position) bool {
	an, ok := m.anchors[a]
	if !ok {
		return false
	}
	for _, t := range an.links {
		if t == b {
			return true
		}
	}
	return false
}

// Link appends the mutual entries a→b and b→a after a validator pass.
// On rejection the mesh is left unchanged and the policy sentinel is
// returned. Use the network.Tracker for the full connect operation
// (link + component merge); this primitive only mutates link lists.
func (m *Mesh) Link(a, b Position) error {
	if err := m.CanLink(a, b); err != nil {
		return err
	}
	m.anchors[a].links = append(m.anchors[a].links, b)
	m.anchors[b].links = append(m.anchors[b].links, a)
	return nil
}

// Unlink removes the mutual entries a→b and b→a.
// Removing an absent link is a no-op reported by the false return.
func (m *Mesh) Unlink(a, b Position) bool {
	an, okA := m.anchors[a]
	bn, okB := m.anchors[b]
	removed := false
	if okA && an.unlink(b) {
		removed = true
	}
	if okB && bn.unlink(a) {
		removed = true
	}
	return removed
}

// RestoreLink appends one raw directed entry p→target without a
// validator pass. Persistence uses it to reload stored link lists
// verbatim: limits may have changed since the save, and the stored pair
// is trusted to be mutual. Returns ErrAnchorNotFound if p is absent.
func (m *Mesh) RestoreLink(p, target Position) error {
	a, ok := m.anchors[p]
	if !ok {
		return fmt.Errorf("%w: %s", ErrAnchorNotFound, p)
	}
	a.links = append(a.links, target)
	return nil
}

// unlink drops target t from the anchor's link list, preserving order.
func (a *anchor) unlink(t Position) bool {
	for i, cur := range a.links {
		if cur == t {
			a.links = append(a.links[:i], a.links[i+1:]...)
			return true
		}
	}
	return false
}
