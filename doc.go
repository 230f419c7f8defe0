// Package wiremesh maintains networks of point-like anchors embedded in
// a discrete 3D world, wired together by bounded-length, bounded-degree
// links and carrying one shared signal value sourced from the
// surrounding environment.
//
// 🔌 What is wiremesh?
//
//	An engine for long-range signal wiring over a grid world:
//		• Anchor/link model: ordered link lists, degree & distance limits
//		• Component tracking: merge on connect, lazy BFS rebuild on split
//		• Signal aggregation: strongest external source wins, shared uniformly
//		• Hysteresis: rising edges apply immediately, falling edges decay late
//		• Self-healing: periodic ticks reconcile missed event triggers
//
// Everything is organized under topic packages:
//
//	mesh/     — positions, directions, anchors, link validation
//	network/  — connected-component tracking and BFS closures
//	signal/   — aggregation, debounce, and the update orchestrator
//	grid/     — reference world: sources, conduits, tick driver
//	persist/  — SQLite save/load of the link lists
//	scenario/ — declarative HCL world scripts and their runner
//	config/   — YAML configuration for the CLI edge
//
// Quick ASCII example (bird's eye view, one Y layer):
//
//	S───A ~~~~~~~~ B
//	    A is fed by source S; A and B are one network: both read 15.
//
// The engine is strictly single-threaded and cooperative: an external
// scheduler drives it one discrete tick at a time, and no operation
// blocks or runs concurrently.
package wiremesh
