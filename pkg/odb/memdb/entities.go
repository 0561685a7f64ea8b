package memdb

import "github.com/matzehuels/layoutview/pkg/odb"

// The accessors below return nil interfaces, never typed nils, for absent
// links so callers can compare against nil.

func layerOrNil(l *layer) odb.TechLayer {
	if l == nil {
		return nil
	}
	return l
}

func techViaOrNil(v *techVia) odb.TechVia {
	if v == nil {
		return nil
	}
	return v
}

func blockViaOrNil(v *blockVia) odb.Via {
	if v == nil {
		return nil
	}
	return v
}

func boxOrNil(b *box) odb.Box {
	if b == nil {
		return nil
	}
	return b
}

func netOrNil(n *net) odb.Net {
	if n == nil {
		return nil
	}
	return n
}

// =============================================================================
// Shapes
// =============================================================================

type box struct {
	id       int
	rect     odb.Rect
	layer    *layer
	techVia  *techVia
	blockVia *blockVia
	shape    odb.WireShapeType
}

func (b *box) ID() int                          { return b.id }
func (b *box) Rect() odb.Rect                   { return b.rect }
func (b *box) TechLayer() odb.TechLayer         { return layerOrNil(b.layer) }
func (b *box) TechVia() odb.TechVia             { return techViaOrNil(b.techVia) }
func (b *box) BlockVia() odb.Via                { return blockViaOrNil(b.blockVia) }
func (b *box) WireShapeType() odb.WireShapeType { return b.shape }

// =============================================================================
// Technology
// =============================================================================

type layer struct {
	id        int
	name      string
	alias     string
	width     int
	spacing   int
	area      float64
	typ       odb.LayerType
	direction odb.LayerDir
	upper     *layer
	lower     *layer
}

func (l *layer) ID() int                 { return l.id }
func (l *layer) Name() string            { return l.name }
func (l *layer) Alias() string           { return l.alias }
func (l *layer) Width() int              { return l.width }
func (l *layer) Spacing() int            { return l.spacing }
func (l *layer) Area() float64           { return l.area }
func (l *layer) Type() odb.LayerType     { return l.typ }
func (l *layer) Direction() odb.LayerDir { return l.direction }
func (l *layer) Upper() odb.TechLayer    { return layerOrNil(l.upper) }
func (l *layer) Lower() odb.TechLayer    { return layerOrNil(l.lower) }

type viaDef struct {
	id     int
	name   string
	bbox   *box
	top    *layer
	bottom *layer
	cut    *layer
}

func (v *viaDef) ID() int                 { return v.id }
func (v *viaDef) Name() string            { return v.name }
func (v *viaDef) BBox() odb.Box           { return boxOrNil(v.bbox) }
func (v *viaDef) Top() odb.TechLayer      { return layerOrNil(v.top) }
func (v *viaDef) Bottom() odb.TechLayer   { return layerOrNil(v.bottom) }
func (v *viaDef) CutLayer() odb.TechLayer { return layerOrNil(v.cut) }

type techVia struct {
	viaDef
}

type blockVia struct {
	viaDef
	isBlock bool
	isTech  bool
}

func (v *blockVia) IsBlockVia() bool { return v.isBlock }
func (v *blockVia) IsTechVia() bool  { return v.isTech }

type tech struct {
	name   string
	dbu    int
	layers []*layer
}

func (t *tech) Name() string          { return t.name }
func (t *tech) DbUnitsPerMicron() int { return t.dbu }

func (t *tech) Layers() []odb.TechLayer {
	out := make([]odb.TechLayer, len(t.layers))
	for i, l := range t.layers {
		out[i] = l
	}
	return out
}

// =============================================================================
// Libraries
// =============================================================================

type site struct {
	id   int
	name string
}

func (s *site) ID() int      { return s.id }
func (s *site) Name() string { return s.name }

type mpin struct {
	id    int
	boxes []*box
}

func (p *mpin) ID() int { return p.id }

func (p *mpin) Geometry() []odb.Box { return boxes(p.boxes) }

type mterm struct {
	id     int
	name   string
	io     odb.IoType
	sig    odb.SigType
	master *master
	mpins  []*mpin
}

func (t *mterm) ID() int            { return t.id }
func (t *mterm) Name() string       { return t.name }
func (t *mterm) Master() odb.Master { return t.master }

func (t *mterm) MPins() []odb.MPin {
	out := make([]odb.MPin, len(t.mpins))
	for i, p := range t.mpins {
		out[i] = p
	}
	return out
}

type master struct {
	id        int
	name      string
	width     int
	height    int
	typ       odb.MasterType
	filler    bool
	placeable bool
	obs       []*box
	mterms    []*mterm
}

func (m *master) ID() int                   { return m.id }
func (m *master) Name() string              { return m.name }
func (m *master) Width() int                { return m.width }
func (m *master) Height() int               { return m.height }
func (m *master) Type() odb.MasterType      { return m.typ }
func (m *master) IsFiller() bool            { return m.filler }
func (m *master) IsCoreAutoPlaceable() bool { return m.placeable }
func (m *master) Obstructions() []odb.Box   { return boxes(m.obs) }

func (m *master) MTerms() []odb.MTerm {
	out := make([]odb.MTerm, len(m.mterms))
	for i, t := range m.mterms {
		out[i] = t
	}
	return out
}

type lib struct {
	name    string
	sites   []*site
	masters []*master
}

func (l *lib) Name() string { return l.name }

func (l *lib) Sites() []odb.Site {
	out := make([]odb.Site, len(l.sites))
	for i, s := range l.sites {
		out[i] = s
	}
	return out
}

func (l *lib) Masters() []odb.Master {
	out := make([]odb.Master, len(l.masters))
	for i, m := range l.masters {
		out[i] = m
	}
	return out
}

// =============================================================================
// Block
// =============================================================================

type inst struct {
	id       int
	name     string
	location odb.Point
	origin   odb.Point
	orient   odb.Orient
	master   *master
	placed   bool
	bbox     *box
	halo     *box
	iterms   []*iterm
}

func (i *inst) ID() int             { return i.id }
func (i *inst) Name() string        { return i.name }
func (i *inst) Location() odb.Point { return i.location }
func (i *inst) Origin() odb.Point   { return i.origin }
func (i *inst) Orient() odb.Orient  { return i.orient }
func (i *inst) Master() odb.Master  { return i.master }
func (i *inst) IsPlaced() bool      { return i.placed }
func (i *inst) BBox() odb.Box       { return boxOrNil(i.bbox) }
func (i *inst) Halo() odb.Box       { return boxOrNil(i.halo) }

func (i *inst) ITerms() []odb.ITerm { return iterms(i.iterms) }

// iterm returns the terminal instantiating the mterm called name, or nil.
func (i *inst) iterm(name string) *iterm {
	for _, t := range i.iterms {
		if t.mterm.name == name {
			return t
		}
	}
	return nil
}

type iterm struct {
	id      int
	mterm   *mterm
	inst    *inst
	net     *net
	special bool
}

func (t *iterm) ID() int              { return t.id }
func (t *iterm) MTerm() odb.MTerm     { return t.mterm }
func (t *iterm) Inst() odb.Inst       { return t.inst }
func (t *iterm) Net() odb.Net         { return netOrNil(t.net) }
func (t *iterm) IoType() odb.IoType   { return t.mterm.io }
func (t *iterm) SigType() odb.SigType { return t.mterm.sig }
func (t *iterm) IsSpecial() bool      { return t.special }

// AvgXY averages the centers of the terminal's shapes, translated by the
// instance location. Orientation is not applied.
func (t *iterm) AvgXY() odb.Point {
	var sx, sy, n int
	for _, p := range t.mterm.mpins {
		for _, b := range p.boxes {
			sx += (b.rect.XMin + b.rect.XMax) / 2
			sy += (b.rect.YMin + b.rect.YMax) / 2
			n++
		}
	}
	if n == 0 {
		return t.inst.location
	}
	return odb.Point{X: t.inst.location.X + sx/n, Y: t.inst.location.Y + sy/n}
}

type bpin struct {
	id    int
	boxes []*box
}

func (p *bpin) ID() int          { return p.id }
func (p *bpin) Boxes() []odb.Box { return boxes(p.boxes) }

type bterm struct {
	id      int
	name    string
	io      odb.IoType
	sig     odb.SigType
	special bool
	net     *net
	bpins   []*bpin
}

func (t *bterm) ID() int              { return t.id }
func (t *bterm) Name() string         { return t.name }
func (t *bterm) IoType() odb.IoType   { return t.io }
func (t *bterm) SigType() odb.SigType { return t.sig }
func (t *bterm) IsSpecial() bool      { return t.special }
func (t *bterm) Net() odb.Net         { return netOrNil(t.net) }

func (t *bterm) BPins() []odb.BPin {
	out := make([]odb.BPin, len(t.bpins))
	for i, p := range t.bpins {
		out[i] = p
	}
	return out
}

// routeEdge is a stored, already-linearized routing edge.
type routeEdge struct {
	typ     odb.EdgeType
	rect    odb.Rect
	layer   *layer
	via     *blockVia
	techVia *techVia
}

func (e *routeEdge) Type() odb.EdgeType         { return e.typ }
func (e *routeEdge) BBox() odb.Rect             { return e.rect }
func (e *routeEdge) SourceLayer() odb.TechLayer { return layerOrNil(e.layer) }
func (e *routeEdge) Via() odb.Via               { return blockViaOrNil(e.via) }
func (e *routeEdge) TechVia() odb.TechVia       { return techViaOrNil(e.techVia) }

type wire struct {
	id    int
	edges []*routeEdge
}

func (w *wire) ID() int { return w.id }

type swire struct {
	id    int
	boxes []*box
}

func (s *swire) ID() int { return s.id }

func (s *swire) Wires() []odb.SBox {
	out := make([]odb.SBox, len(s.boxes))
	for i, b := range s.boxes {
		out[i] = b
	}
	return out
}

type net struct {
	id       int
	name     string
	special  bool
	wireType odb.WireType
	wire     *wire
	swires   []*swire
	iterms   []*iterm
	bterms   []*bterm
}

func (n *net) ID() int                { return n.id }
func (n *net) Name() string           { return n.name }
func (n *net) IsSpecial() bool        { return n.special }
func (n *net) WireType() odb.WireType { return n.wireType }

func (n *net) Wire() odb.Wire {
	if n.wire == nil {
		return nil
	}
	return n.wire
}

func (n *net) SWires() []odb.SWire {
	out := make([]odb.SWire, len(n.swires))
	for i, s := range n.swires {
		out[i] = s
	}
	return out
}

func (n *net) ITerms() []odb.ITerm { return iterms(n.iterms) }

func (n *net) BTerms() []odb.BTerm {
	out := make([]odb.BTerm, len(n.bterms))
	for i, t := range n.bterms {
		out[i] = t
	}
	return out
}

type row struct {
	id        int
	name      string
	site      *site
	orient    odb.Orient
	direction odb.RowDir
	origin    odb.Point
	spacing   int
	bbox      odb.Rect
}

func (r *row) ID() int               { return r.id }
func (r *row) Name() string          { return r.name }
func (r *row) Site() odb.Site        { return r.site }
func (r *row) Orient() odb.Orient    { return r.orient }
func (r *row) Direction() odb.RowDir { return r.direction }
func (r *row) Origin() odb.Point     { return r.origin }
func (r *row) Spacing() int          { return r.spacing }
func (r *row) BBox() odb.Rect        { return r.bbox }

type grid struct {
	id        int
	layer     *layer
	x, y      []int
	patternsX []odb.GridPattern
	patternsY []odb.GridPattern
}

func (g *grid) ID() int                      { return g.id }
func (g *grid) GridX() []int                 { return g.x }
func (g *grid) GridY() []int                 { return g.y }
func (g *grid) PatternsX() []odb.GridPattern { return g.patternsX }
func (g *grid) PatternsY() []odb.GridPattern { return g.patternsY }
func (g *grid) TechLayer() odb.TechLayer     { return layerOrNil(g.layer) }

type block struct {
	name   string
	insts  []*inst
	iterms []*iterm
	bterms []*bterm
	nets   []*net
	vias   []*blockVia
	tracks []*grid
	gcell  *grid
	rows   []*row
	bbox   *box
	die    odb.Rect
	core   odb.Rect
}

func (b *block) Name() string        { return b.name }
func (b *block) DieArea() odb.Rect   { return b.die }
func (b *block) CoreArea() odb.Rect  { return b.core }
func (b *block) BBox() odb.Box       { return boxOrNil(b.bbox) }
func (b *block) ITerms() []odb.ITerm { return iterms(b.iterms) }

func (b *block) Insts() []odb.Inst {
	out := make([]odb.Inst, len(b.insts))
	for i, in := range b.insts {
		out[i] = in
	}
	return out
}

func (b *block) BTerms() []odb.BTerm {
	out := make([]odb.BTerm, len(b.bterms))
	for i, t := range b.bterms {
		out[i] = t
	}
	return out
}

func (b *block) Nets() []odb.Net {
	out := make([]odb.Net, len(b.nets))
	for i, n := range b.nets {
		out[i] = n
	}
	return out
}

func (b *block) Vias() []odb.Via {
	out := make([]odb.Via, len(b.vias))
	for i, v := range b.vias {
		out[i] = v
	}
	return out
}

func (b *block) TrackGrids() []odb.TrackGrid {
	out := make([]odb.TrackGrid, len(b.tracks))
	for i, g := range b.tracks {
		out[i] = g
	}
	return out
}

func (b *block) GCellGrid() odb.Grid {
	if b.gcell == nil {
		return nil
	}
	return b.gcell
}

func (b *block) Rows() []odb.Row {
	out := make([]odb.Row, len(b.rows))
	for i, r := range b.rows {
		out[i] = r
	}
	return out
}

type chip struct {
	block *block
}

func (c *chip) Block() odb.Block { return c.block }

// =============================================================================
// Slice Helpers
// =============================================================================

func boxes(in []*box) []odb.Box {
	out := make([]odb.Box, len(in))
	for i, b := range in {
		out[i] = b
	}
	return out
}

func iterms(in []*iterm) []odb.ITerm {
	out := make([]odb.ITerm, len(in))
	for i, t := range in {
		out[i] = t
	}
	return out
}
