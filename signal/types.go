// Package signal aggregates external input power per network component
// and distributes it back with hysteresis. It hosts the Environment
// contract consumed from the surrounding world, the per-component input
// aggregator, and the Engine update orchestrator that composes mesh,
// tracker, aggregation, and debounce into one guarded update pass.
//
// The engine is strictly single-threaded: it is driven cooperatively by
// an external scheduler (one call per discrete tick) and never blocks.
package signal

import (
	"errors"
	"log/slog"

	"github.com/avren/wiremesh/mesh"
)

// Sentinel errors for engine construction.
var (
	// ErrNilEnvironment is returned if no Environment is supplied.
	ErrNilEnvironment = errors.New("signal: environment is nil")

	// ErrNilMesh is returned if no mesh is supplied.
	ErrNilMesh = errors.New("signal: mesh is nil")

	// ErrOptionViolation is returned when an invalid EngineOption is supplied.
	ErrOptionViolation = errors.New("signal: invalid option supplied")
)

// Defaults for the engine's timing knobs.
const (
	// DefaultSignalLossDelay is the number of consecutive inputless update
	// passes a component tolerates before its signal decays to zero.
	DefaultSignalLossDelay = 1

	// DefaultUpdateInterval is the number of ticks between periodic
	// self-healing updates per anchor.
	DefaultUpdateInterval = 20
)

// Neighbor is one grid-adjacent position together with the direction
// that leads to it from the anchor being probed.
type Neighbor struct {
	Pos mesh.Position
	Dir mesh.Direction
}

// Environment is the contract the surrounding world fulfils for the
// engine. All queries are synchronous; the engine calls them only from
// within an update pass.
//
// PowerFrom follows the "incoming from" convention: it answers what
// power the cell at p offers to a taker approaching from direction
// incoming. The aggregator therefore passes the geometric inverse of the
// direction it probes.
type Environment interface {
	// Neighbors returns the up-to-six grid-adjacent cells of p.
	Neighbors(p mesh.Position) []Neighbor

	// PowerFrom returns the power the cell at p offers toward direction
	// incoming, in 0..MaxPower.
	PowerFrom(p mesh.Position, incoming mesh.Direction) mesh.Power

	// IsConduit reports whether the cell at p carries a peer signal
	// medium. Conduits are excluded from aggregation to prevent
	// feedback loops between the two media.
	IsConduit(p mesh.Position) bool

	// NotifyChanged asks the environment to re-evaluate, redraw, and
	// re-propagate around p after its signal value changed.
	NotifyChanged(p mesh.Position)

	// ScheduleTick requests a one-shot tick for p after delay ticks.
	ScheduleTick(p mesh.Position, delay int)
}

// EngineOption configures an Engine before creation.
type EngineOption func(*Engine)

// WithSignalLossDelay overrides the decay delay in ticks (must be ≥ 0;
// zero decays on the first inputless pass).
func WithSignalLossDelay(n int) EngineOption {
	return func(e *Engine) {
		if n < 0 {
			e.optErr = ErrOptionViolation
			return
		}
		e.lossDelay = n
	}
}

// WithUpdateInterval overrides the periodic self-healing interval in
// ticks (must be ≥ 1).
func WithUpdateInterval(n int) EngineOption {
	return func(e *Engine) {
		if n < 1 {
			e.optErr = ErrOptionViolation
			return
		}
		e.updateInterval = n
	}
}

// WithLogger attaches a structured logger. The engine logs update passes
// at Debug level; by default everything is discarded.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l == nil {
			e.optErr = ErrOptionViolation
			return
		}
		e.log = l
	}
}
