package boxlayout

import (
	"context"

	"github.com/matzehuels/boxlayout/pkg/compound"
	"github.com/matzehuels/boxlayout/pkg/errors"
)

// Anomaly is a child that could not be repositioned during restore.
type Anomaly struct {
	Node   string `json:"node"`
	Box    string `json:"box"`
	Reason string `json:"reason"`
}

const (
	reasonNoSnapshot = "box has no position snapshot"
	reasonNoRelative = "child has no relative position"
	reasonNoStyle    = "box has no style backup"
	reasonDetached   = "box is not in the graph"
)

// proxyEdges replaces every edge touching a child of box by a synthetic edge
// between normalized endpoints.
func (r *runner) proxyEdges(box string) error {
	for _, child := range r.g.Children(box) {
		for _, eid := range r.g.ConnectedEdges(child) {
			e, _ := r.g.Edge(eid)
			proxy, ok := r.gen.edge(e.Source, e.Target)
			if !ok {
				continue
			}
			if err := r.g.AddEdge(proxy); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "synthetic edge %s", proxy.ID)
			}
			r.synthetic = append(r.synthetic, proxy.ID)
		}
	}
	return nil
}

// detach removes the children of boxes, with their edges, as one batch and
// merges it into the run's removed set.
func (r *runner) detach(boxes []string) {
	kids := compound.NewCollection(nil, nil)
	for _, b := range boxes {
		for _, c := range r.g.Children(b) {
			kids.AddNode(c)
		}
	}
	batch := r.g.Remove(kids)
	r.log.Debug("detached box children", "nodes", batch.NodeCount(), "edges", batch.EdgeCount())
	r.result.Detached += batch.NodeCount()
	r.removed.Merge(batch)
}

// boxNode returns a processed box whether it is live or detached.
func (r *runner) boxNode(id string) (*compound.Node, bool) {
	if n, ok := r.g.Node(id); ok {
		return n, true
	}
	return r.removed.Node(id)
}

// restore brings every detached child back to its box's final position plus
// its captured offset. Boxes are handled innermost first; moving an outer
// box's child translates whatever was already placed inside it.
func (r *runner) restore(ctx context.Context) error {
	for _, id := range r.boxes {
		n, ok := r.boxNode(id)
		if !ok {
			continue
		}
		pos := r.g.Position(id)
		if !r.g.HasNode(id) {
			pos = n.Position
		}
		n.Scratch().PositionSnapshot = &pos
	}

	var restoreErr error
	if err := r.g.Restore(r.removed); err != nil {
		restoreErr = errors.Wrap(errors.ErrCodeInternal, err, "restore detached elements")
	}
	r.g.RemoveEdges(r.synthetic)

	for _, box := range r.boxes {
		n, ok := r.g.Node(box)
		if !ok {
			r.anomaly(ctx, "", box, reasonDetached)
			continue
		}
		snap := n.Scratch().PositionSnapshot
		for _, child := range r.g.Children(box) {
			cn, _ := r.g.Node(child)
			rel := cn.Scratch().RelativePosition
			cn.Scratch().RelativePosition = nil
			switch {
			case snap == nil:
				r.anomaly(ctx, child, box, reasonNoSnapshot)
			case rel == nil:
				r.anomaly(ctx, child, box, reasonNoRelative)
			default:
				if err := r.g.SetPosition(child, snap.Add(*rel)); err != nil {
					r.anomaly(ctx, child, box, err.Error())
				}
			}
		}
	}

	for _, box := range r.boxes {
		if n, ok := r.boxNode(box); ok && !unfreeze(n) {
			r.anomaly(ctx, "", box, reasonNoStyle)
		}
	}
	r.clearCaptured()
	return restoreErr
}

// rollback undoes a run that failed before the outer layout: children come
// back where their sub-layouts put them, synthetic edges go away and box
// styles are restored.
func (r *runner) rollback() {
	if err := r.g.Restore(r.removed); err != nil {
		r.log.Error("rollback could not restore detached elements", "err", err)
	}
	r.g.RemoveEdges(r.synthetic)
	for _, box := range r.boxes {
		if n, ok := r.boxNode(box); ok {
			unfreeze(n)
		}
	}
	r.clearCaptured()
	r.log.Debug("rolled back box layout", "boxes", len(r.boxes), "synthetic_edges", len(r.synthetic))
}

// clearCaptured drops relative positions left on children, live or not.
func (r *runner) clearCaptured() {
	for _, id := range r.captured {
		n, ok := r.g.Node(id)
		if !ok {
			n, ok = r.removed.Node(id)
		}
		if ok {
			n.Scratch().RelativePosition = nil
		}
	}
}

func (r *runner) anomaly(ctx context.Context, node, box, reason string) {
	r.log.Warn("restore skipped", "node", node, "box", box, "reason", reason)
	r.hooks.OnRestoreAnomaly(ctx, node, box, reason)
	r.result.Anomalies = append(r.result.Anomalies, Anomaly{Node: node, Box: box, Reason: reason})
}
