package compound

// Scratch is the per-node bookkeeping record used while a box layout runs.
// Each field is optional; a nil field means the entry is absent.
type Scratch struct {
	// RelativePosition is the node's offset from its box's top-left, captured
	// when the box's internal layout finished.
	RelativePosition *Point
	// PositionSnapshot is a box's absolute position captured right before its
	// children are restored.
	PositionSnapshot *Point
	// StyleBackup is a box's style from before it was frozen to its bounding box.
	StyleBackup *Style
}

// Empty reports whether no entry is present.
func (s Scratch) Empty() bool {
	return s.RelativePosition == nil && s.PositionSnapshot == nil && s.StyleBackup == nil
}

// Clear removes every entry.
func (s *Scratch) Clear() { *s = Scratch{} }

func (s Scratch) clone() Scratch {
	out := Scratch{}
	if s.RelativePosition != nil {
		p := *s.RelativePosition
		out.RelativePosition = &p
	}
	if s.PositionSnapshot != nil {
		p := *s.PositionSnapshot
		out.PositionSnapshot = &p
	}
	if s.StyleBackup != nil {
		st := *s.StyleBackup
		out.StyleBackup = &st
	}
	return out
}
