package memdb

import (
	errs "github.com/matzehuels/layoutview/pkg/errors"
	"github.com/matzehuels/layoutview/pkg/odb"
)

// Decoder linearizes memdb wires. Edges come back in the order the
// document stored them.
type Decoder struct{}

var _ odb.Decoder = Decoder{}

// Decode returns the edges of w. A nil wire decodes to no edges.
func (Decoder) Decode(w odb.Wire) ([]odb.RouteEdge, error) {
	if w == nil {
		return nil, nil
	}
	mw, ok := w.(*wire)
	if !ok {
		return nil, errs.New(errs.ErrCodeUnsupported, "wire %d was not loaded by memdb", w.ID())
	}
	out := make([]odb.RouteEdge, len(mw.edges))
	for i, e := range mw.edges {
		out[i] = e
	}
	return out, nil
}
