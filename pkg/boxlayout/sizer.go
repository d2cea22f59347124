package boxlayout

import "github.com/matzehuels/boxlayout/pkg/compound"

// freeze backs up the box's style, then fixes its size to its current
// bounding box and its shape to a rectangle. The stored position is pinned to
// the bounding box so the box keeps its place once its children are gone.
func (r *runner) freeze(box string) {
	n, ok := r.g.Node(box)
	if !ok {
		return
	}
	bb := r.g.BoundingBox(box)

	backup := n.Style
	n.Scratch().StyleBackup = &backup
	n.Style = compound.Style{Shape: compound.ShapeRectangle, Width: bb.W(), Height: bb.H()}
	n.Position = bb.TopLeft()
	n.AddClass(BoxNodeClass)

	r.boxes = append(r.boxes, box)
}

// unfreeze reapplies the style backup and drops the marker class and the
// box's scratch record.
func unfreeze(n *compound.Node) bool {
	restored := false
	if b := n.Scratch().StyleBackup; b != nil {
		n.Style = *b
		restored = true
	}
	n.RemoveClass(BoxNodeClass)
	n.Scratch().Clear()
	return restored
}
