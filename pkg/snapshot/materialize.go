package snapshot

import (
	"fmt"

	"github.com/matzehuels/layoutview/pkg/odb"
)

// =============================================================================
// Technology
// =============================================================================

func (f *flattener) materializeLayers(layers []odb.TechLayer) {
	d := f.design
	d.Layers = make([]*Layer, 0, len(layers))
	for _, tl := range layers {
		l := f.arena.newLayer()
		l.ID = tl.ID()
		l.Name = tl.Name()
		l.Alias = tl.Alias()
		l.Width = tl.Width()
		l.Spacing = tl.Spacing()
		l.Area = tl.Area()
		l.Type = translateLayerType(tl.Type())
		l.Direction = translateLayerDir(tl.Direction())
		l.native = tl

		d.Layers = append(d.Layers, l)
		f.layers[l.ID] = l
	}
}

// layerRef resolves a native layer through the layer table. A nil layer is
// not a miss; an unknown one is.
func (f *flattener) layerRef(tl odb.TechLayer, keyvals ...any) *Layer {
	if tl == nil {
		return nil
	}
	if l, ok := f.layers[tl.ID()]; ok {
		return l
	}
	f.miss("unresolved layer", append([]any{"layer", tl.Name(), "id", tl.ID()}, keyvals...)...)
	return nil
}

// =============================================================================
// Instances and Pins
// =============================================================================

func (f *flattener) materializeInstances(insts []odb.Inst) {
	d := f.design
	d.Instances = make([]*Instance, 0, len(insts))
	for _, in := range insts {
		m := in.Master()
		inst := f.arena.newInstance()
		inst.ID = in.ID()
		inst.Name = in.Name()
		loc, origin := in.Location(), in.Origin()
		inst.Location = f.arena.newPoint(loc.X, loc.Y)
		inst.Origin = f.arena.newPoint(origin.X, origin.Y)
		inst.Orientation = translateOrient(in.Orient())
		inst.Master = m.Name()
		inst.MasterType = translateMaster(m.Type())
		inst.IsFiller = m.IsFiller()
		inst.IsPlaced = in.IsPlaced()
		inst.BoundingBox = f.arena.castBox(in.BBox(), f.rectID())
		inst.Halo = f.arena.castBox(in.Halo(), f.rectID())
		inst.Obstructions = f.obstructionsOf(m)
		inst.native = in

		d.Instances = append(d.Instances, inst)
		f.instances[inst.ID] = inst
	}
}

// obstructionsOf returns the obstruction geometry of m, creating it on the
// first instance of m. Masters without obstructions still get an (empty)
// geometry so every instance carries one.
func (f *flattener) obstructionsOf(m odb.Master) *Geometry {
	if g, ok := f.obstructions[m.ID()]; ok {
		return g
	}
	g := f.newGeometry(m.Obstructions())
	f.obstructions[m.ID()] = g
	return g
}

// newGeometry casts boxes into a new geometry.
func (f *flattener) newGeometry(boxes []odb.Box) *Geometry {
	g := f.arena.newGeometry()
	g.ID = f.geometryID()
	g.Boxes = make([]*Rect, 0, len(boxes))
	for _, b := range boxes {
		g.Boxes = append(g.Boxes, f.arena.castBox(b, f.rectID()))
	}
	return g
}

func (f *flattener) materializeInstancePins(iterms []odb.ITerm) {
	d := f.design
	d.InstancePins = make([]*Pin, 0, len(iterms))
	for _, it := range iterms {
		p := f.arena.newPin()
		p.ID = it.ID()
		p.Direction = translateIO(it.IoType())
		p.SignalType = translateSignal(it.SigType())
		p.IsSpecial = it.IsSpecial()
		xy := it.AvgXY()
		p.Location = f.arena.newPoint(xy.X, xy.Y)
		if mt := it.MTerm(); mt != nil {
			p.Name = mt.Name()
			p.Geometries = f.pinShapesOf(mt)
		}
		p.iterm = it

		d.InstancePins = append(d.InstancePins, p)
		f.instPins[p.ID] = p
	}
}

// pinShapesOf returns one geometry per physical pin of mt. The geometries
// are shared by every instance of the master.
func (f *flattener) pinShapesOf(mt odb.MTerm) []*Geometry {
	master := 0
	if m := mt.Master(); m != nil {
		master = m.ID()
	}
	mpins := mt.MPins()
	out := make([]*Geometry, 0, len(mpins))
	for _, mp := range mpins {
		key := pinShapeKey{master: master, mpin: mp.ID()}
		g, ok := f.pinShapes[key]
		if !ok {
			g = f.newGeometry(mp.Geometry())
			f.pinShapes[key] = g
		}
		out = append(out, g)
	}
	return out
}

// materializeBlockPins gives each block pin a single geometry holding the
// boxes of all its physical pins.
func (f *flattener) materializeBlockPins(bterms []odb.BTerm) {
	d := f.design
	d.BlockPins = make([]*Pin, 0, len(bterms))
	for _, bt := range bterms {
		p := f.arena.newPin()
		p.ID = bt.ID()
		p.Name = bt.Name()
		p.Direction = translateIO(bt.IoType())
		p.SignalType = translateSignal(bt.SigType())
		p.IsSpecial = bt.IsSpecial()
		p.IsBlock = true
		p.bterm = bt

		var boxes []odb.Box
		for _, bp := range bt.BPins() {
			boxes = append(boxes, bp.Boxes()...)
		}
		p.Geometries = []*Geometry{f.newGeometry(boxes)}

		d.BlockPins = append(d.BlockPins, p)
		f.blockPins[p.ID] = p
	}
}

// =============================================================================
// Vias and Nets
// =============================================================================

func (f *flattener) materializeViaDefinitions(vias []odb.Via) {
	d := f.design
	d.ViaDefinitions = make([]*Via, 0, len(vias))
	for _, v := range vias {
		via := f.newVia(v)
		via.IsBlock = v.IsBlockVia()
		via.IsTech = v.IsTechVia()
		d.ViaDefinitions = append(d.ViaDefinitions, via)
		f.vias[via.ID] = via
	}
}

// newVia copies what technology and block vias have in common.
func (f *flattener) newVia(v odb.ViaDef) *Via {
	via := f.arena.newVia()
	via.ID = v.ID()
	via.Name = v.Name()
	via.Rect = f.arena.castBox(v.BBox(), f.rectID())
	via.TopLayer = f.layerRef(v.Top(), "via", via.Name)
	via.BottomLayer = f.layerRef(v.Bottom(), "via", via.Name)
	via.CutLayer = f.layerRef(v.CutLayer(), "via", via.Name)
	return via
}

// routingVia returns the via registered for v, materializing it as a
// routing via the first time a route uses it.
func (f *flattener) routingVia(v odb.ViaDef, isBlock, isTech bool) *Via {
	if via, ok := f.vias[v.ID()]; ok {
		return via
	}
	via := f.newVia(v)
	via.IsBlock = isBlock
	via.IsTech = isTech
	f.vias[via.ID] = via
	f.routingVias = append(f.routingVias, via)
	return via
}

// viaRef resolves a via that must already be registered.
func (f *flattener) viaRef(v odb.ViaDef, keyvals ...any) *Via {
	if via, ok := f.vias[v.ID()]; ok {
		return via
	}
	f.miss("unresolved via", append([]any{"via", v.Name(), "id", v.ID()}, keyvals...)...)
	return nil
}

func (f *flattener) materializeNets(nets []odb.Net) error {
	d := f.design
	d.Nets = make([]*Net, 0, len(nets))
	for _, n := range nets {
		net := f.arena.newNet()
		net.ID = n.ID()
		net.Name = n.Name()
		net.IsSpecial = n.IsSpecial()
		wt := n.WireType()
		net.WireType = translateWire(wt)
		net.native = n

		d.Nets = append(d.Nets, net)
		f.nets[net.ID] = net

		w := n.Wire()
		net.IsRouted = w != nil || wt == odb.WireRouted
		if w != nil {
			edges, err := f.dec.Decode(w)
			if err != nil {
				return fmt.Errorf("decode net %s: %w", net.Name, err)
			}
			net.Edges = make([]*Edge, 0, len(edges))
			for _, e := range edges {
				net.Edges = append(net.Edges, f.materializeEdge(e, net.Name))
			}
		}

		swires := n.SWires()
		net.SpecialBoxes = make([]*Geometry, 0, len(swires))
		for _, sw := range swires {
			net.SpecialBoxes = append(net.SpecialBoxes, f.materializeSWire(sw, net.Name))
		}
	}
	return nil
}

func (f *flattener) materializeEdge(e odb.RouteEdge, net string) *Edge {
	edge := f.arena.newEdge()
	edge.Type = translateEdge(e.Type())
	edge.Rect = f.arena.castRect(e.BBox(), f.rectID())
	edge.Layer = f.layerRef(e.SourceLayer(), "net", net)

	switch edge.Type {
	case EdgeTypeTechVia:
		if tv := e.TechVia(); tv != nil {
			edge.Via = f.routingVia(tv, false, true)
		}
	case EdgeTypeVia:
		if v := e.Via(); v != nil {
			edge.Via = f.routingVia(v, v.IsBlockVia(), v.IsTechVia())
		}
	}
	return edge
}

// materializeSWire casts the shapes of one special wire. A shape's via
// comes from its technology via first, then from its block via.
func (f *flattener) materializeSWire(sw odb.SWire, net string) *Geometry {
	shapes := sw.Wires()
	g := f.arena.newGeometry()
	g.ID = f.geometryID()
	g.Boxes = make([]*Rect, 0, len(shapes))
	for _, sb := range shapes {
		r := f.arena.castBox(sb, f.rectID())
		r.ShapeType = translateShape(sb.WireShapeType())
		if tv := sb.TechVia(); tv != nil {
			r.Via = f.viaRef(tv, "net", net)
		} else if bv := sb.BlockVia(); bv != nil {
			r.Via = f.viaRef(bv, "net", net)
		}
		g.Boxes = append(g.Boxes, r)
	}
	return g
}

// =============================================================================
// Sites and Grids
// =============================================================================

// materializeSites registers every site of every library once. Libraries
// may share a site; the first one seen wins.
func (f *flattener) materializeSites(libs []odb.Lib) {
	for _, lib := range libs {
		for _, s := range lib.Sites() {
			if _, ok := f.sites[s.ID()]; ok {
				continue
			}
			site := f.arena.newSite()
			site.ID = s.ID()
			site.Name = s.Name()
			f.sites[site.ID] = site
		}
	}
}

func (f *flattener) materializeTracks(grids []odb.TrackGrid) {
	d := f.design
	d.Tracks = make([]*Grid, 0, len(grids))
	for _, tg := range grids {
		g := f.newGrid(tg)
		g.Layer = f.layerRef(tg.TechLayer(), "track", tg.ID())
		d.Tracks = append(d.Tracks, g)
	}
}

func (f *flattener) materializeGCell(grid odb.Grid) {
	if grid == nil {
		return
	}
	f.design.GCell = f.newGrid(grid)
}

// newGrid copies explicit coordinates and pattern columns as reported.
func (f *flattener) newGrid(src odb.Grid) *Grid {
	g := f.arena.newGrid()
	g.ID = src.ID()
	g.GridX = cloneInts(src.GridX())
	g.GridY = cloneInts(src.GridY())
	g.GridXPatternOrigins, g.GridXPatternLineCounts, g.GridXPatternSteps = patternColumns(src.PatternsX())
	g.GridYPatternOrigins, g.GridYPatternLineCounts, g.GridYPatternSteps = patternColumns(src.PatternsY())
	return g
}

func patternColumns(patterns []odb.GridPattern) (origins, counts, steps []int) {
	origins = make([]int, len(patterns))
	counts = make([]int, len(patterns))
	steps = make([]int, len(patterns))
	for i, p := range patterns {
		origins[i], counts[i], steps[i] = p.Origin, p.LineCount, p.Step
	}
	return origins, counts, steps
}

// cloneInts never returns nil, so empty grids encode as [].
func cloneInts(s []int) []int {
	out := make([]int, len(s))
	copy(out, s)
	return out
}

func (f *flattener) materializeRows(rows []odb.Row) {
	d := f.design
	d.Rows = make([]*Row, 0, len(rows))
	for _, r := range rows {
		row := f.arena.newRow()
		row.ID = r.ID()
		row.Name = r.Name()
		row.Orientation = translateOrient(r.Orient())
		row.Direction = translateRowDir(r.Direction())
		origin := r.Origin()
		row.OriginX, row.OriginY = origin.X, origin.Y
		row.Spacing = r.Spacing()
		if s := r.Site(); s != nil {
			if site, ok := f.sites[s.ID()]; ok {
				row.Site = site
			} else {
				f.miss("unresolved site", "site", s.Name(), "id", s.ID(), "row", row.Name)
			}
		}
		row.BoundingBox = f.arena.castRect(r.BBox(), f.rectID())
		d.Rows = append(d.Rows, row)
	}
}
