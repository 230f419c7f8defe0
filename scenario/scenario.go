// Package scenario loads and runs declarative world scripts written in
// HCL. A scenario file describes the initial world (anchors, sources,
// conduits, links) followed by an ordered list of act blocks that mutate
// the world and advance ticks; running it yields a report of per-anchor
// signals and any rejected links.
//
// Example:
//
//	name = "lever and lamp"
//
//	anchor { at = [0, 0, 0] }
//	anchor { at = [0, 0, 10] }
//	source { at = [1, 0, 0]  power = 15 }
//	link   { from = [0, 0, 0]  to = [0, 0, 10] }
//
//	act { op = "step"  ticks = 2 }
//	act { op = "clear_source"  at = [1, 0, 0] }
//	act { op = "step"  ticks = 3 }
package scenario

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/avren/wiremesh/mesh"
)

// Sentinel errors for scenario loading and execution.
var (
	// ErrBadPosition indicates a position attribute without exactly
	// three integer coordinates.
	ErrBadPosition = errors.New("scenario: position needs exactly [x, y, z]")

	// ErrUnknownOp indicates an act block with an unsupported op.
	ErrUnknownOp = errors.New("scenario: unknown act op")

	// ErrMissingField indicates an act block lacking a field its op needs.
	ErrMissingField = errors.New("scenario: act is missing a required field")
)

// AnchorBlock places one anchor.
type AnchorBlock struct {
	At []int `hcl:"at"`
}

// SourceBlock places one omnidirectional power source.
type SourceBlock struct {
	At    []int `hcl:"at"`
	Power int   `hcl:"power"`
}

// ConduitBlock places one peer-medium cell.
type ConduitBlock struct {
	At []int `hcl:"at"`
}

// LinkBlock links two anchors. Rejected links are reported, not fatal.
type LinkBlock struct {
	From []int `hcl:"from"`
	To   []int `hcl:"to"`
}

// Act is one scripted step. Op selects the action; the remaining fields
// are op-specific:
//
//	step         — Ticks
//	set_source   — At, Power
//	clear_source — At
//	link         — From, To
//	unlink       — From, To
//	remove       — At (anchor removal with cascade)
type Act struct {
	Op    string `hcl:"op"`
	Ticks *int   `hcl:"ticks,optional"`
	At    []int  `hcl:"at,optional"`
	Power *int   `hcl:"power,optional"`
	From  []int  `hcl:"from,optional"`
	To    []int  `hcl:"to,optional"`
}

// Scenario is one parsed scenario file.
type Scenario struct {
	Name     string         `hcl:"name,optional"`
	Anchors  []AnchorBlock  `hcl:"anchor,block"`
	Sources  []SourceBlock  `hcl:"source,block"`
	Conduits []ConduitBlock `hcl:"conduit,block"`
	Links    []LinkBlock    `hcl:"link,block"`
	Acts     []Act          `hcl:"act,block"`
}

// evalContext exposes a few named constants to scenario expressions,
// e.g. `power = max_power`.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"max_power": cty.NumberIntVal(int64(mesh.MaxPower)),
			"off":       cty.NumberIntVal(0),
		},
	}
}

// Load parses the scenario file at path.
func Load(path string) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("scenario: parse %s: %w", path, diags)
	}
	return decode(file, path)
}

// LoadBytes parses scenario source held in memory; filename is used for
// diagnostics only.
func LoadBytes(src []byte, filename string) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("scenario: parse %s: %w", filename, diags)
	}
	return decode(file, filename)
}

func decode(file *hcl.File, name string) (*Scenario, error) {
	var sc Scenario
	if diags := gohcl.DecodeBody(file.Body, evalContext(), &sc); diags.HasErrors() {
		return nil, fmt.Errorf("scenario: decode %s: %w", name, diags)
	}
	return &sc, nil
}

// position converts a three-element coordinate list.
func position(xyz []int) (mesh.Position, error) {
	if len(xyz) != 3 {
		return mesh.Position{}, fmt.Errorf("%w: got %v", ErrBadPosition, xyz)
	}
	return mesh.Position{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}
