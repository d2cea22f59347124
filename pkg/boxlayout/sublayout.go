package boxlayout

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/errors"
	"github.com/matzehuels/boxlayout/pkg/layout"
)

// selectBoxes returns the live boxes of type t among the run's elements.
func (r *runner) selectBoxes(t compound.BoxType) []string {
	return r.g.FilterNodes(r.eles, func(n *compound.Node) bool { return n.Box == t }).Nodes()
}

// subLayout is the internal layout of one box.
type subLayout struct {
	box string
	run *layout.Run
	res layout.Result
}

// layoutBoxes runs the sub-layouts of boxes concurrently, waits for all of
// them, then applies their results in box order and captures every child's
// position relative to its box.
func (r *runner) layoutBoxes(ctx context.Context, t compound.BoxType, boxes []string) error {
	st := r.plan.boxes[t]

	subs := make([]*subLayout, len(boxes))
	for i, id := range boxes {
		kids := compound.NewCollection(r.g.Children(id), nil)
		eles := kids.Union(r.g.EdgesWithin(kids))
		run := layout.NewRun(st.algo, layout.InputFrom(r.g, eles), st.params, r.bus).Suppress()
		subs[i] = &subLayout{box: id, run: run}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	for _, s := range subs {
		eg.Go(func() error {
			start := time.Now()
			s.run.Start(egCtx)
			res, err := s.run.Wait(egCtx)
			elapsed := time.Since(start)

			r.hooks.OnBoxLayout(ctx, s.box, string(t), st.algo.Name(), elapsed, err)
			if err != nil {
				return layoutFailure(ctx, err, "%s box %s", t, s.box)
			}
			r.log.Debug("box layout complete", "box", s.box, "type", t,
				"algorithm", st.algo.Name(), "children", len(s.run.Input().Nodes), "duration", elapsed)
			s.res = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, s := range subs {
		if err := s.res.Apply(r.g); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "%s box %s", t, s.box)
		}
		r.captureRelative(s.box)
	}
	return nil
}

// captureRelative stores each child's offset from the box's top-left in the
// child's scratch record.
func (r *runner) captureRelative(box string) {
	for _, id := range r.g.Children(box) {
		rel, ok := r.g.RelativePosition(id)
		if !ok {
			continue
		}
		n, _ := r.g.Node(id)
		n.Scratch().RelativePosition = &rel
		r.captured = append(r.captured, id)
	}
}
