package boxlayout

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/layout"
	"github.com/matzehuels/boxlayout/pkg/observability"
)

// Result summarizes a finished run.
type Result struct {
	RunID          string        `json:"run_id"`
	Algorithm      string        `json:"algorithm"`
	Boxes          []string      `json:"boxes"`
	SyntheticEdges int           `json:"synthetic_edges"`
	Detached       int           `json:"detached"`
	Anomalies      []Anomaly     `json:"anomalies,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// runner holds the state of one run. Everything here is discarded when the
// run ends.
type runner struct {
	g     *compound.Graph
	eles  *compound.Collection
	plan  *plan
	bus   *layout.Bus
	log   *log.Logger
	hooks observability.LayoutHooks

	gen       *edgeGenerator
	removed   *compound.Removed
	synthetic []string
	boxes     []string // frozen boxes, innermost first
	captured  []string // children holding a relative position

	result *Result
}

// Run lays out the elements eles of g (all of g when eles is nil). Boxes are
// laid out internally type by type, innermost first; the flattened graph is
// then laid out with the default algorithm and every child is put back at
// its box's final position plus its offset inside the box.
//
// Configuration errors are returned before g is touched. A failing
// sub-layout, or ctx ending while sub-layouts run, rolls g back. Once the
// outer layout has started, restoration always completes; an outer failure
// leaves the flattened nodes at the origin.
//
// Runs over overlapping elements of one graph must not overlap in time.
func Run(ctx context.Context, g *compound.Graph, eles *compound.Collection, opts Options) (*Result, error) {
	start := time.Now()
	p, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "invalid graph")
	}
	if eles == nil {
		eles = g.Elements()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	r := &runner{
		g:       g,
		eles:    eles,
		plan:    p,
		bus:     opts.Bus,
		log:     logger,
		hooks:   observability.Layout(),
		gen:     newEdgeGenerator(g),
		removed: compound.NewRemoved(),
		result: &Result{
			RunID:     uuid.NewString(),
			Algorithm: p.outer.algo.Name(),
		},
	}

	boxCount := len(g.FilterNodes(eles, (*compound.Node).IsBox).Nodes())
	r.hooks.OnRunStart(ctx, r.result.RunID, boxCount)
	r.log.Debug("box layout started", "run", r.result.RunID, "plan", p, "boxes", boxCount)

	err = r.run(ctx)

	r.result.Boxes = r.boxes
	r.result.SyntheticEdges = len(r.synthetic)
	r.result.Duration = time.Since(start)
	r.hooks.OnRunComplete(ctx, r.result.RunID, r.result.Duration, err)
	if err != nil {
		return r.result, err
	}
	r.log.Debug("box layout finished", "run", r.result.RunID, "boxes", len(r.boxes),
		"synthetic_edges", len(r.synthetic), "anomalies", len(r.result.Anomalies), "duration", r.result.Duration)
	return r.result, nil
}

func (r *runner) run(ctx context.Context) error {
	for _, t := range r.plan.order {
		if err := ctx.Err(); err != nil {
			r.rollback()
			return errors.Wrap(errors.ErrCodeTimeout, err, "box layout interrupted")
		}
		boxes := r.selectBoxes(t)
		if len(boxes) == 0 {
			continue
		}
		if err := r.layoutBoxes(ctx, t, boxes); err != nil {
			r.rollback()
			return err
		}
		for _, b := range boxes {
			r.freeze(b)
			if err := r.proxyEdges(b); err != nil {
				r.rollback()
				return err
			}
		}
		r.detach(boxes)
	}
	return r.layoutOuter(ctx)
}

// layoutOuter runs the default algorithm over the flattened graph and
// restores the children from its stop listener. It waits for the stop
// unconditionally; ctx only reaches the algorithm.
func (r *runner) layoutOuter(ctx context.Context) error {
	synthetic := compound.NewCollection(nil, r.synthetic)
	eles := r.eles.Union(synthetic).Subtract(r.removed.Collection())
	for _, id := range eles.Nodes() {
		if n, ok := r.g.Node(id); ok && !r.g.HasChildren(id) {
			n.Position = compound.Point{}
		}
	}

	in := layout.InputFrom(r.g, eles)
	run := layout.NewRun(r.plan.outer.algo, in, r.plan.outer.params, r.bus)

	var outerErr, restoreErr error
	start := time.Now()
	run.One(layout.EventStop, func(_ layout.Event, lr *layout.Run) {
		res, err := lr.Result()
		if err == nil {
			err = res.Apply(r.g)
		}
		outerErr = err
		restoreErr = r.restore(ctx)
	})
	run.Start(ctx)
	<-run.Done()

	elapsed := time.Since(start)
	r.hooks.OnOuterLayout(ctx, r.plan.outer.algo.Name(), len(in.Nodes), elapsed, outerErr)
	r.log.Debug("outer layout complete", "algorithm", r.plan.outer.algo.Name(),
		"nodes", len(in.Nodes), "edges", len(in.Edges), "duration", elapsed)

	if outerErr != nil {
		return layoutFailure(ctx, outerErr, "outer layout %s", r.plan.outer.algo.Name())
	}
	return restoreErr
}

// layoutFailure wraps a failed layout as LAYOUT_FAILED, or as TIMEOUT when it
// ended because ctx did.
func layoutFailure(ctx context.Context, err error, format string, args ...any) error {
	code := errors.ErrCodeLayoutFailed
	if ctx.Err() != nil && (stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(err, context.Canceled)) {
		code = errors.ErrCodeTimeout
	}
	return errors.Wrap(code, err, format, args...)
}
