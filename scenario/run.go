package scenario

import (
	"errors"
	"fmt"

	"github.com/avren/wiremesh/grid"
	"github.com/avren/wiremesh/mesh"
	"github.com/avren/wiremesh/signal"
)

// AnchorSignal is one anchor's settled signal in a report.
type AnchorSignal struct {
	Pos    mesh.Position `json:"pos"`
	Signal mesh.Power    `json:"signal"`
	Links  int           `json:"links"`
}

// Report summarizes one scenario run. Rejections collects the
// user-facing messages of link attempts refused by policy; they do not
// abort the run, matching the connector tool's behavior.
type Report struct {
	Name       string         `json:"name,omitempty"`
	Ticks      int            `json:"ticks"`
	Anchors    []AnchorSignal `json:"anchors"`
	Rejections []string       `json:"rejections,omitempty"`
}

// Run executes sc on a fresh world: setup blocks first (anchors,
// conduits, links, sources), then each act in file order. Structural
// errors (bad positions, unknown ops, occupied cells) abort the run;
// link-policy rejections are collected into the report instead.
func Run(sc *Scenario, meshOpts []mesh.MeshOption, engOpts []signal.EngineOption) (*Report, error) {
	rep, _, err := RunWorld(sc, meshOpts, engOpts)
	return rep, err
}

// RunWorld is Run exposing the final world as well, for callers that
// persist or further inspect the resulting mesh.
func RunWorld(sc *Scenario, meshOpts []mesh.MeshOption, engOpts []signal.EngineOption) (*Report, *grid.World, error) {
	m, err := mesh.New(meshOpts...)
	if err != nil {
		return nil, nil, err
	}
	w, err := grid.NewWorld(m, engOpts...)
	if err != nil {
		return nil, nil, err
	}

	rep := &Report{Name: sc.Name}

	for _, blk := range sc.Anchors {
		p, err := position(blk.At)
		if err != nil {
			return nil, nil, err
		}
		if err = w.PlaceAnchor(p); err != nil {
			return nil, nil, err
		}
	}
	for _, blk := range sc.Conduits {
		p, err := position(blk.At)
		if err != nil {
			return nil, nil, err
		}
		if err = w.PlaceConduit(p); err != nil {
			return nil, nil, err
		}
	}
	for _, blk := range sc.Links {
		if err := runLink(w, rep, blk.From, blk.To); err != nil {
			return nil, nil, err
		}
	}
	for _, blk := range sc.Sources {
		p, err := position(blk.At)
		if err != nil {
			return nil, nil, err
		}
		pw, err := powerOf(blk.Power)
		if err != nil {
			return nil, nil, err
		}
		if err = w.SetSource(p, pw); err != nil {
			return nil, nil, err
		}
	}

	for i := range sc.Acts {
		if err := runAct(w, rep, &sc.Acts[i]); err != nil {
			return nil, nil, fmt.Errorf("act %d (%s): %w", i+1, sc.Acts[i].Op, err)
		}
	}

	rep.Ticks = w.Now()
	for _, p := range w.Mesh().Anchors() {
		rep.Anchors = append(rep.Anchors, AnchorSignal{
			Pos:    p,
			Signal: w.Signal(p),
			Links:  w.Mesh().Degree(p),
		})
	}
	return rep, w, nil
}

// runLink attempts one link; policy refusals become report entries.
func runLink(w *grid.World, rep *Report, from, to []int) error {
	a, err := position(from)
	if err != nil {
		return err
	}
	b, err := position(to)
	if err != nil {
		return err
	}
	if err = w.Link(a, b); err != nil {
		if isPolicyRejection(err) {
			rep.Rejections = append(rep.Rejections, err.Error())
			return nil
		}
		return err
	}
	return nil
}

func runAct(w *grid.World, rep *Report, act *Act) error {
	switch act.Op {
	case "step":
		if act.Ticks == nil {
			return fmt.Errorf("%w: ticks", ErrMissingField)
		}
		w.Run(*act.Ticks)
		return nil

	case "set_source":
		if act.Power == nil {
			return fmt.Errorf("%w: power", ErrMissingField)
		}
		p, err := position(act.At)
		if err != nil {
			return err
		}
		pw, err := powerOf(*act.Power)
		if err != nil {
			return err
		}
		return w.SetSource(p, pw)

	case "clear_source":
		p, err := position(act.At)
		if err != nil {
			return err
		}
		return w.ClearSource(p)

	case "link":
		return runLink(w, rep, act.From, act.To)

	case "unlink":
		a, err := position(act.From)
		if err != nil {
			return err
		}
		b, err := position(act.To)
		if err != nil {
			return err
		}
		w.Unlink(a, b)
		return nil

	case "remove":
		p, err := position(act.At)
		if err != nil {
			return err
		}
		return w.RemoveAnchor(p)

	default:
		return fmt.Errorf("%w: %q", ErrUnknownOp, act.Op)
	}
}

// powerOf range-checks an integer power before narrowing it.
func powerOf(n int) (mesh.Power, error) {
	if n < 0 || n > int(mesh.MaxPower) {
		return 0, fmt.Errorf("%w: %d", grid.ErrBadPower, n)
	}
	return mesh.Power(n), nil
}

// isPolicyRejection distinguishes link-policy refusals from structural
// errors.
func isPolicyRejection(err error) bool {
	return errors.Is(err, mesh.ErrSelfLink) ||
		errors.Is(err, mesh.ErrDuplicateLink) ||
		errors.Is(err, mesh.ErrDegreeLimit) ||
		errors.Is(err, mesh.ErrLinkTooFar)
}
