package snapshot

import "github.com/matzehuels/layoutview/pkg/odb"

// castBox copies box into a fresh rect with the given id and keeps box for
// the layer and via resolution of the link pass. A nil box yields a zeroed
// rect so callers can always dereference the result.
func (a *arena) castBox(box odb.Box, id int) *Rect {
	r := a.newRect()
	r.ID = id
	r.ShapeType = ShapeTypeUnset
	if box == nil {
		return r
	}
	b := box.Rect()
	r.XMin, r.YMin, r.XMax, r.YMax = b.XMin, b.YMin, b.XMax, b.YMax
	r.native = box
	return r
}

// castRect copies a plain rectangle. The result has no native box.
func (a *arena) castRect(rect odb.Rect, id int) *Rect {
	r := a.newRect()
	r.ID = id
	r.ShapeType = ShapeTypeUnset
	r.XMin, r.YMin, r.XMax, r.YMax = rect.XMin, rect.YMin, rect.XMax, rect.YMax
	return r
}
