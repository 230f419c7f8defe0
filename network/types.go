// Package network maintains the partition of mesh anchors into connected
// components. Every anchor points at a shared *Component record; records
// are merged on connect, marked stale on disconnect, and lazily rebuilt
// by BFS the next time a component's membership is needed.
//
// The component record also carries the signal state shared by its
// members: the cached external input and the ticks-without-input counter
// that implements decay hysteresis, plus the update-phase guard used by
// the orchestrator. Freshness and phase are explicit enums so that an
// anchor cannot be simultaneously "clean" and "pending rebuild".
//
// Lookup failures surface the mesh layer's sentinels (for example
// mesh.ErrAnchorNotFound); match them with errors.Is.
package network

import (
	"sort"

	"github.com/avren/wiremesh/mesh"
)

// Freshness states of a component's cached member set.
type Freshness uint8

const (
	// Stale means the member set may not reflect the link topology;
	// it must be rebuilt before use.
	Stale Freshness = iota

	// Fresh means the member set equals the BFS closure of its links.
	Fresh
)

// Phase states of a component's update pass.
type Phase uint8

const (
	// Idle means no update pass is running for this component.
	Idle Phase = iota

	// Updating means an update pass is in progress; re-entry is a no-op.
	Updating
)

// Component is the shared record of one connected network of anchors.
// All members of a component point at the same record, so marking it
// stale invalidates every member at once.
type Component struct {
	members   map[mesh.Position]struct{}
	freshness Freshness
	phase     Phase

	// Debounced signal state shared by the whole component.
	input             mesh.Power
	ticksWithoutInput int
}

// newComponent builds a Fresh record over the given member set.
func newComponent(members map[mesh.Position]struct{}) *Component {
	return &Component{members: members, freshness: Fresh}
}

// Len returns the number of member anchors.
func (c *Component) Len() int { return len(c.members) }

// Contains reports whether p is a member of this component.
func (c *Component) Contains(p mesh.Position) bool {
	_, ok := c.members[p]
	return ok
}

// Members returns the member positions in deterministic (sorted) order.
func (c *Component) Members() []mesh.Position {
	out := make([]mesh.Position, 0, len(c.members))
	for p := range c.members {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Freshness returns the cache state of the member set.
func (c *Component) Freshness() Freshness { return c.freshness }

// Input returns the component's debounced signal value.
func (c *Component) Input() mesh.Power { return c.input }

// Begin enters the Updating phase. It returns false if an update pass is
// already running, in which case the caller must decline to re-run.
func (c *Component) Begin() bool {
	if c.phase == Updating {
		return false
	}
	c.phase = Updating
	return true
}

// End leaves the Updating phase. Callers pair it with Begin via defer so
// the guard is released on every exit path.
func (c *Component) End() { c.phase = Idle }

// Observe feeds one aggregated external input reading into the debounce
// state and returns the settled signal. A rising edge takes effect
// immediately; a falling edge is held until lossDelay consecutive
// readings without input have been observed, suppressing flicker from
// momentary source interruptions.
func (c *Component) Observe(input mesh.Power, lossDelay int) mesh.Power {
	if input > 0 {
		c.input = input
		c.ticksWithoutInput = 0
		return c.input
	}
	c.ticksWithoutInput++
	if c.ticksWithoutInput >= lossDelay {
		c.input = 0
	}
	return c.input
}
