package compound

import "math"

// Point is a 2-D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a width and height.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Rect is an axis-aligned rectangle given by its corners.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// W returns the rectangle's width.
func (r Rect) W() float64 { return r.X2 - r.X1 }

// H returns the rectangle's height.
func (r Rect) H() float64 { return r.Y2 - r.Y1 }

// TopLeft returns the rectangle's origin.
func (r Rect) TopLeft() Point { return Point{X: r.X1, Y: r.Y1} }

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		X1: math.Min(r.X1, o.X1),
		Y1: math.Min(r.Y1, o.Y1),
		X2: math.Max(r.X2, o.X2),
		Y2: math.Max(r.Y2, o.Y2),
	}
}

// Shape is the visual outline of a node.
type Shape string

const (
	ShapeEllipse        Shape = "ellipse"
	ShapeRectangle      Shape = "rectangle"
	ShapeRoundRectangle Shape = "round-rectangle"
	ShapeTriangle       Shape = "triangle"
	ShapeDiamond        Shape = "diamond"
	ShapeHexagon        Shape = "hexagon"
	ShapeBarrel         Shape = "barrel"
)

// Style is the small set of visual attributes the layout cares about.
// A zero Width or Height means automatic sizing.
type Style struct {
	Shape  Shape   `json:"shape,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// DefaultNodeSize is used for nodes that have neither an explicit size nor
// children to derive one from.
var DefaultNodeSize = Size{W: 40, H: 40}

// Size returns the node's current size. A box with live children takes the
// size of its children's bounding box; any other node uses its style size,
// falling back to [DefaultNodeSize] per dimension.
func (g *Graph) Size(id string) Size {
	n, ok := g.nodes[id]
	if !ok {
		return Size{}
	}
	if g.HasChildren(id) {
		bb := g.BoundingBox(id)
		return Size{W: bb.W(), H: bb.H()}
	}
	s := Size{W: n.Style.Width, H: n.Style.Height}
	if s.W <= 0 {
		s.W = DefaultNodeSize.W
	}
	if s.H <= 0 {
		s.H = DefaultNodeSize.H
	}
	return s
}

// BoundingBox returns the minimum rectangle enclosing the node. For a box
// with live children that is the union of the children's bounding boxes.
func (g *Graph) BoundingBox(id string) Rect {
	n, ok := g.nodes[id]
	if !ok {
		return Rect{}
	}
	kids := g.children[id]
	if len(kids) == 0 {
		s := g.Size(id)
		return Rect{X1: n.Position.X, Y1: n.Position.Y, X2: n.Position.X + s.W, Y2: n.Position.Y + s.H}
	}
	bb := g.BoundingBox(kids[0])
	for _, c := range kids[1:] {
		bb = bb.Union(g.BoundingBox(c))
	}
	return bb
}

// Position returns the node's top-left corner. A box with live children is
// positioned at the top-left of its bounding box.
func (g *Graph) Position(id string) Point {
	n, ok := g.nodes[id]
	if !ok {
		return Point{}
	}
	if g.HasChildren(id) {
		return g.BoundingBox(id).TopLeft()
	}
	return n.Position
}

// SetPosition moves the node's top-left corner to p. Moving a box with live
// children translates all of its descendants by the same delta.
func (g *Graph) SetPosition(id string, p Point) error {
	n, ok := g.nodes[id]
	if !ok {
		return ErrUnknownNode
	}
	if g.HasChildren(id) {
		delta := p.Sub(g.Position(id))
		for _, c := range g.children[id] {
			if err := g.SetPosition(c, g.Position(c).Add(delta)); err != nil {
				return err
			}
		}
	}
	n.Position = p
	return nil
}

// RelativePosition returns the node's position relative to the top-left of
// its live parent box.
func (g *Graph) RelativePosition(id string) (Point, bool) {
	parent, ok := g.Parent(id)
	if !ok {
		return Point{}, false
	}
	return g.Position(id).Sub(g.Position(parent)), true
}
