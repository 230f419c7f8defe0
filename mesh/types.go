// Package mesh defines the anchor/link data model for wiremesh:
// positions in a discrete 3D world, grid directions, the Power scale,
// and the Mesh registry that owns every anchor's ordered link list.
//
// This file declares Position, Direction, Power, MeshOption,
// sentinel errors, and the New constructor.
//
// Errors:
//
//	ErrAnchorNotFound - operation referenced a position with no anchor.
//	ErrAnchorExists   - an anchor is already present at the position.
//	ErrSelfLink       - attempt to link an anchor to itself.
//	ErrDuplicateLink  - the two anchors are already linked.
//	ErrDegreeLimit    - an endpoint already carries MaxDegree links.
//	ErrLinkTooFar     - endpoints are farther apart than MaxLinkDistance.
//	ErrOptionViolation - an option carries an out-of-range value.
package mesh

import (
	"errors"
	"strconv"
)

// Sentinel errors for mesh operations. Link-policy rejections
// (ErrSelfLink, ErrDuplicateLink, ErrDegreeLimit, ErrLinkTooFar) are
// refusals, not failures: the mesh is left unchanged and callers surface
// them as user-facing messages via errors.Is.
var (
	// ErrAnchorNotFound indicates an operation referenced a non-existent anchor.
	ErrAnchorNotFound = errors.New("mesh: anchor not found")

	// ErrAnchorExists indicates an anchor is already registered at the position.
	ErrAnchorExists = errors.New("mesh: anchor already exists")

	// ErrSelfLink indicates a link from an anchor to itself was attempted.
	ErrSelfLink = errors.New("mesh: self-link not allowed")

	// ErrDuplicateLink indicates the two anchors are already linked.
	ErrDuplicateLink = errors.New("mesh: link already exists")

	// ErrDegreeLimit indicates an endpoint has reached its link limit.
	ErrDegreeLimit = errors.New("mesh: link limit reached")

	// ErrLinkTooFar indicates the endpoints exceed the distance limit.
	ErrLinkTooFar = errors.New("mesh: link distance exceeded")

	// ErrOptionViolation indicates an invalid MeshOption was supplied.
	ErrOptionViolation = errors.New("mesh: invalid option supplied")
)

// Default limits, applied by New unless overridden via options.
const (
	// DefaultMaxDegree is the default number of links one anchor may carry.
	DefaultMaxDegree = 5

	// DefaultMaxLinkDistance is the default Euclidean distance limit
	// (in grid units) between two linked anchors.
	DefaultMaxLinkDistance = 24
)

// Power is a discrete signal strength in the inclusive range 0..MaxPower.
type Power uint8

// MaxPower is the strongest representable signal.
const MaxPower Power = 15

// Position identifies an anchor by its integer world coordinates.
// Positions are comparable and used directly as map keys.
type Position struct {
	X, Y, Z int
}

// Offset returns the position one grid step away in direction d.
func (p Position) Offset(d Direction) Position {
	o := directionOffsets[d]
	return Position{X: p.X + o[0], Y: p.Y + o[1], Z: p.Z + o[2]}
}

// DistSqr returns the squared Euclidean distance to q.
// Kept squared so distance limits compare without a square root.
func (p Position) DistSqr(q Position) int64 {
	dx := int64(p.X - q.X)
	dy := int64(p.Y - q.Y)
	dz := int64(p.Z - q.Z)
	return dx*dx + dy*dy + dz*dz
}

// Less orders positions lexicographically (X, then Y, then Z).
// Used for deterministic iteration in queries and tests.
func (p Position) Less(q Position) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	if p.Y != q.Y {
		return p.Y < q.Y
	}
	return p.Z < q.Z
}

// String renders the position as "(x, y, z)".
func (p Position) String() string {
	buf := make([]byte, 0, 16)
	buf = append(buf, '(')
	buf = strconv.AppendInt(buf, int64(p.X), 10)
	buf = append(buf, ',', ' ')
	buf = strconv.AppendInt(buf, int64(p.Y), 10)
	buf = append(buf, ',', ' ')
	buf = strconv.AppendInt(buf, int64(p.Z), 10)
	buf = append(buf, ')')
	return string(buf)
}

// Direction enumerates the six orthogonal grid directions.
type Direction int

const (
	Down Direction = iota
	Up
	North
	South
	West
	East
)

// Directions lists all six directions in a fixed order for iteration.
var Directions = [6]Direction{Down, Up, North, South, West, East}

// directionOffsets maps each Direction to its (dx, dy, dz) step.
var directionOffsets = [6][3]int{
	Down:  {0, -1, 0},
	Up:    {0, 1, 0},
	North: {0, 0, -1},
	South: {0, 0, 1},
	West:  {-1, 0, 0},
	East:  {1, 0, 0},
}

// Opposite returns the geometric inverse of d.
func (d Direction) Opposite() Direction {
	// Pairs are laid out adjacently: Down/Up, North/South, West/East.
	return d ^ 1
}

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Up:
		return "up"
	case North:
		return "north"
	case South:
		return "south"
	case West:
		return "west"
	case East:
		return "east"
	default:
		return "direction(" + strconv.Itoa(int(d)) + ")"
	}
}

// MeshOption configures limits of a Mesh before creation.
type MeshOption func(*Mesh)

// WithMaxDegree overrides the per-anchor link limit (must be ≥ 1).
func WithMaxDegree(n int) MeshOption {
	return func(m *Mesh) {
		if n < 1 {
			m.optErr = ErrOptionViolation
			return
		}
		m.maxDegree = n
	}
}

// WithMaxLinkDistance overrides the link distance limit in grid units
// (must be ≥ 1).
func WithMaxLinkDistance(n int) MeshOption {
	return func(m *Mesh) {
		if n < 1 {
			m.optErr = ErrOptionViolation
			return
		}
		m.maxLinkDistance = n
	}
}
