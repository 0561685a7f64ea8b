package snapshot

// CompactDesign is the cycle-free form of a Design the viewer consumes.
// Every cross-reference is replaced by an id-only stub with InComplete set;
// the viewer resolves stubs against the top-level collections. Row sites
// are the exception and keep their name.
//
// A CompactDesign shares nothing with the Design it was made from and
// stays valid after that Design is released.
type CompactDesign struct {
	Name           string
	Instances      []*Instance
	Nets           []*Net
	InstancePins   []*Pin
	BlockPins      []*Pin
	RoutingVias    []*Via
	ViaDefinitions []*Via
	Layers         []*Layer
	CoreArea       float64
	DieArea        float64
	DesignArea     float64
	Utilization    float64
	BoundingBox    *Rect
	Core           *Rect
	Die            *Rect
	Rows           []*Row
	Tracks         []*Grid
	Sites          []*Site
	GCell          *Grid `json:",omitempty"`
	Geometries     []*Geometry
}

// Compact returns the cycle-free copy of d. Collections are never nil, so
// empty ones encode as [].
func (d *Design) Compact() *CompactDesign {
	if d == nil {
		return nil
	}
	return &CompactDesign{
		Name:           d.Name,
		Instances:      mapSlice(d.Instances, compactInstance),
		Nets:           mapSlice(d.Nets, compactNet),
		InstancePins:   mapSlice(d.InstancePins, compactPin),
		BlockPins:      mapSlice(d.BlockPins, compactPin),
		RoutingVias:    mapSlice(d.RoutingVias, compactVia),
		ViaDefinitions: mapSlice(d.ViaDefinitions, compactVia),
		Layers:         mapSlice(d.Layers, compactLayer),
		CoreArea:       d.CoreArea,
		DieArea:        d.DieArea,
		DesignArea:     d.DesignArea,
		Utilization:    d.Utilization,
		BoundingBox:    compactRect(d.BoundingBox),
		Core:           compactRect(d.Core),
		Die:            compactRect(d.Die),
		Rows:           mapSlice(d.Rows, compactRow),
		Tracks:         mapSlice(d.Tracks, compactGrid),
		Sites:          mapSlice(d.Sites, compactSite),
		GCell:          compactGrid(d.GCell),
		Geometries:     mapSlice(d.Geometries, compactGeometry),
	}
}

func mapSlice[T any](in []*T, fn func(*T) *T) []*T {
	out := make([]*T, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// =============================================================================
// Stubs
// =============================================================================

func layerStub(l *Layer) *Layer {
	if l == nil {
		return nil
	}
	return &Layer{ID: l.ID, InComplete: true}
}

func viaStub(v *Via) *Via {
	if v == nil {
		return nil
	}
	return &Via{ID: v.ID, InComplete: true}
}

func pinStub(p *Pin) *Pin {
	return &Pin{ID: p.ID, InComplete: true}
}

func geometryStub(g *Geometry) *Geometry {
	if g == nil {
		return nil
	}
	return &Geometry{ID: g.ID, InComplete: true}
}

// =============================================================================
// Copies
// =============================================================================

func compactPoint(p *Point) *Point {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func compactRect(r *Rect) *Rect {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Layer = layerStub(r.Layer)
	cp.Via = viaStub(r.Via)
	cp.native = nil
	return &cp
}

func compactGeometry(g *Geometry) *Geometry {
	cp := *g
	cp.Boxes = mapSlice(g.Boxes, compactRect)
	return &cp
}

func compactInstance(in *Instance) *Instance {
	cp := *in
	cp.Location = compactPoint(in.Location)
	cp.Origin = compactPoint(in.Origin)
	cp.Pins = mapSlice(in.Pins, pinStub)
	cp.BoundingBox = compactRect(in.BoundingBox)
	cp.Halo = compactRect(in.Halo)
	cp.Obstructions = geometryStub(in.Obstructions)
	cp.native = nil
	return &cp
}

func compactPin(p *Pin) *Pin {
	cp := *p
	cp.Instance = nil
	cp.Net = nil
	cp.Location = compactPoint(p.Location)
	cp.Geometries = mapSlice(p.Geometries, geometryStub)
	cp.iterm = nil
	cp.bterm = nil
	return &cp
}

func compactNet(n *Net) *Net {
	cp := *n
	cp.Pins = mapSlice(n.Pins, pinStub)
	cp.Edges = mapSlice(n.Edges, compactEdge)
	cp.SpecialBoxes = mapSlice(n.SpecialBoxes, geometryStub)
	cp.native = nil
	return &cp
}

func compactEdge(e *Edge) *Edge {
	return &Edge{
		Type:  e.Type,
		Rect:  compactRect(e.Rect),
		Via:   viaStub(e.Via),
		Layer: layerStub(e.Layer),
	}
}

func compactVia(v *Via) *Via {
	cp := *v
	cp.Rect = compactRect(v.Rect)
	cp.TopLayer = layerStub(v.TopLayer)
	cp.CutLayer = layerStub(v.CutLayer)
	cp.BottomLayer = layerStub(v.BottomLayer)
	return &cp
}

func compactLayer(l *Layer) *Layer {
	cp := *l
	cp.UpperLayer = layerStub(l.UpperLayer)
	cp.LowerLayer = layerStub(l.LowerLayer)
	cp.native = nil
	return &cp
}

func compactSite(s *Site) *Site {
	cp := *s
	return &cp
}

func compactGrid(g *Grid) *Grid {
	if g == nil {
		return nil
	}
	cp := *g
	cp.Layer = layerStub(g.Layer)
	cp.GridX = cloneInts(g.GridX)
	cp.GridY = cloneInts(g.GridY)
	cp.GridXPatternOrigins = cloneInts(g.GridXPatternOrigins)
	cp.GridXPatternLineCounts = cloneInts(g.GridXPatternLineCounts)
	cp.GridXPatternSteps = cloneInts(g.GridXPatternSteps)
	cp.GridYPatternOrigins = cloneInts(g.GridYPatternOrigins)
	cp.GridYPatternLineCounts = cloneInts(g.GridYPatternLineCounts)
	cp.GridYPatternSteps = cloneInts(g.GridYPatternSteps)
	return &cp
}

func compactRow(r *Row) *Row {
	cp := *r
	cp.BoundingBox = compactRect(r.BoundingBox)
	if r.Site != nil {
		cp.Site = &Site{ID: r.Site.ID, Name: r.Site.Name}
	}
	return &cp
}
