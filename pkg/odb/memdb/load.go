package memdb

import (
	errs "github.com/matzehuels/layoutview/pkg/errors"
	"github.com/matzehuels/layoutview/pkg/odb"
)

// loader resolves the name references of one document. Failures carry the
// error code of the file kind being read.
type loader struct {
	db   *DB
	code errs.Code
	vias map[string]*blockVia
}

func (l *loader) errorf(format string, args ...any) error {
	return errs.New(l.code, format, args...)
}

// id claims an entity id from c, failing when a document reuses one.
func (l *loader) id(c *counter, kind, name string, explicit int) (int, error) {
	id, ok := c.take(explicit)
	if !ok {
		return 0, l.errorf("%s %s: id %d is already in use", kind, name, explicit)
	}
	return id, nil
}

func (l *loader) layer(name string) (*layer, error) {
	if name == "" {
		return nil, nil
	}
	ly, ok := l.db.layers[name]
	if !ok {
		return nil, l.errorf("unknown layer %q", name)
	}
	return ly, nil
}

func (l *loader) techVia(name string) (*techVia, error) {
	if name == "" {
		return nil, nil
	}
	v, ok := l.db.techVias[name]
	if !ok {
		return nil, l.errorf("unknown technology via %q", name)
	}
	return v, nil
}

func (l *loader) blockVia(name string) (*blockVia, error) {
	if name == "" {
		return nil, nil
	}
	v, ok := l.vias[name]
	if !ok {
		return nil, l.errorf("unknown via %q", name)
	}
	return v, nil
}

func (l *loader) box(d ShapeDoc) (*box, error) {
	b := &box{
		id:    l.db.ids.box.next(),
		rect:  d.Rect,
		shape: orDefault(d.Shape, odb.ShapeNone),
	}
	var err error
	if b.layer, err = l.layer(d.Layer); err != nil {
		return nil, err
	}
	if b.techVia, err = l.techVia(d.TechVia); err != nil {
		return nil, err
	}
	if b.blockVia, err = l.blockVia(d.Via); err != nil {
		return nil, err
	}
	return b, nil
}

func (l *loader) boxes(docs []ShapeDoc) ([]*box, error) {
	out := make([]*box, 0, len(docs))
	for _, d := range docs {
		b, err := l.box(d)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// viaDef fills the fields shared by technology and block vias. The bbox
// shape is owned by the via; the caller links it back.
func (l *loader) viaDef(d ViaDoc) (viaDef, error) {
	v := viaDef{name: d.Name}
	if d.Name == "" {
		return v, l.errorf("via without a name")
	}
	var err error
	if v.id, err = l.id(&l.db.ids.via, "via", d.Name, d.ID); err != nil {
		return v, err
	}
	if v.top, err = l.layer(d.Top); err != nil {
		return v, err
	}
	if v.bottom, err = l.layer(d.Bottom); err != nil {
		return v, err
	}
	if v.cut, err = l.layer(d.Cut); err != nil {
		return v, err
	}
	v.bbox = &box{id: l.db.ids.box.next(), rect: d.BBox.Rect, shape: odb.ShapeNone}
	if v.bbox.layer, err = l.layer(d.BBox.Layer); err != nil {
		return v, err
	}
	return v, nil
}

// =============================================================================
// Technology
// =============================================================================

func (db *DB) loadTech(d *TechDoc) (odb.Tech, error) {
	l := &loader{db: db, code: errs.ErrCodeTechParse}
	if db.tech != nil {
		return nil, l.errorf("technology %q is already loaded", db.tech.name)
	}
	if d.DbuPerMicron <= 0 {
		return nil, l.errorf("technology %q: dbu_per_micron must be positive", d.Name)
	}

	t := &tech{name: d.Name, dbu: d.DbuPerMicron}
	for _, ld := range d.Layers {
		if ld.Name == "" {
			return nil, l.errorf("layer without a name")
		}
		if _, dup := db.layers[ld.Name]; dup {
			return nil, l.errorf("duplicate layer %q", ld.Name)
		}
		id, err := l.id(&db.ids.layer, "layer", ld.Name, ld.ID)
		if err != nil {
			return nil, err
		}
		ly := &layer{
			id:        id,
			name:      ld.Name,
			alias:     ld.Alias,
			width:     ld.Width,
			spacing:   ld.Spacing,
			area:      ld.Area,
			typ:       orDefault(ld.Type, odb.LayerNone),
			direction: orDefault(ld.Direction, odb.DirNone),
		}
		db.layers[ld.Name] = ly
		if !ld.Detached {
			t.layers = append(t.layers, ly)
		}
	}

	// Attached layers stack in declaration order; explicit names win.
	for i, ly := range t.layers {
		if i > 0 {
			ly.lower = t.layers[i-1]
		}
		if i+1 < len(t.layers) {
			ly.upper = t.layers[i+1]
		}
	}
	for _, ld := range d.Layers {
		ly := db.layers[ld.Name]
		var err error
		if ld.Upper != "" {
			if ly.upper, err = l.layer(ld.Upper); err != nil {
				return nil, err
			}
		}
		if ld.Lower != "" {
			if ly.lower, err = l.layer(ld.Lower); err != nil {
				return nil, err
			}
		}
	}

	for _, vd := range d.Vias {
		if _, dup := db.techVias[vd.Name]; dup {
			return nil, l.errorf("duplicate technology via %q", vd.Name)
		}
		def, err := l.viaDef(vd)
		if err != nil {
			return nil, err
		}
		v := &techVia{viaDef: def}
		v.bbox.techVia = v
		db.techVias[vd.Name] = v
	}

	db.tech = t
	return t, nil
}

// =============================================================================
// Libraries
// =============================================================================

func (db *DB) loadLib(name string, d *LibDoc, code errs.Code) (odb.Lib, error) {
	l := &loader{db: db, code: code}
	if db.tech == nil {
		return nil, errs.New(errs.ErrCodeNoTechnology, "cannot load library %s without a technology", name)
	}
	if name == "" {
		name = d.Name
	}

	out := &lib{name: name}
	for _, sd := range d.Sites {
		// Sites are shared by name across libraries.
		s, ok := db.sites[sd.Name]
		if !ok {
			id, err := l.id(&db.ids.site, "site", sd.Name, sd.ID)
			if err != nil {
				return nil, err
			}
			s = &site{id: id, name: sd.Name}
			db.sites[sd.Name] = s
		}
		out.sites = append(out.sites, s)
	}

	for _, md := range d.Masters {
		if md.Name == "" {
			return nil, l.errorf("library %s: master without a name", name)
		}
		if _, dup := db.masters[md.Name]; dup {
			return nil, l.errorf("library %s: duplicate master %q", name, md.Name)
		}
		id, err := l.id(&db.ids.master, "master", md.Name, md.ID)
		if err != nil {
			return nil, err
		}
		m := &master{
			id:        id,
			name:      md.Name,
			width:     md.Width,
			height:    md.Height,
			typ:       orDefault(md.Type, odb.MasterCore),
			filler:    md.Filler,
			placeable: md.Placeable,
		}
		if m.obs, err = l.boxes(md.Obstructions); err != nil {
			return nil, err
		}
		for _, pd := range md.Pins {
			t := &mterm{
				id:     db.ids.mterm.next(),
				name:   pd.Name,
				io:     orDefault(pd.IO, odb.IoInput),
				sig:    orDefault(pd.Signal, odb.SigSignal),
				master: m,
			}
			for _, g := range pd.Shapes {
				p := &mpin{id: db.ids.mpin.next()}
				if p.boxes, err = l.boxes(g.Boxes); err != nil {
					return nil, err
				}
				t.mpins = append(t.mpins, p)
			}
			m.mterms = append(m.mterms, t)
		}
		db.masters[md.Name] = m
		out.masters = append(out.masters, m)
	}

	db.libs = append(db.libs, out)
	return out, nil
}

// =============================================================================
// Design
// =============================================================================

func (db *DB) loadDesign(d *DesignDoc, libs []odb.Lib) (odb.Chip, error) {
	l := &loader{db: db, code: errs.ErrCodeDEFParse, vias: make(map[string]*blockVia)}
	if db.tech == nil {
		return nil, errs.New(errs.ErrCodeNoTechnology, "cannot load design %s without a technology", d.Name)
	}

	masters := make(map[string]*master)
	for _, lb := range libs {
		ml, ok := lb.(*lib)
		if !ok {
			return nil, errs.New(errs.ErrCodeUnsupported, "library %s does not belong to this database", lb.Name())
		}
		for _, m := range ml.masters {
			masters[m.name] = m
		}
	}

	b := &block{name: d.Name, die: d.Die, core: d.Core}
	bbox := d.Die
	if d.BBox != nil {
		bbox = *d.BBox
	}
	b.bbox = &box{id: db.ids.box.next(), rect: bbox, shape: odb.ShapeNone}

	for _, vd := range d.Vias {
		if _, dup := l.vias[vd.Name]; dup {
			return nil, l.errorf("duplicate via %q", vd.Name)
		}
		def, err := l.viaDef(vd)
		if err != nil {
			return nil, err
		}
		v := &blockVia{viaDef: def, isBlock: vd.IsBlock, isTech: vd.IsTech}
		v.bbox.blockVia = v
		l.vias[vd.Name] = v
		b.vias = append(b.vias, v)
	}

	insts, err := l.instances(b, d.Instances, masters)
	if err != nil {
		return nil, err
	}
	nets, err := l.nets(b, d.Nets, insts)
	if err != nil {
		return nil, err
	}
	if err := l.bterms(b, d.Pins, nets); err != nil {
		return nil, err
	}
	if err := l.grids(b, d); err != nil {
		return nil, err
	}

	db.chip = &chip{block: b}
	return db.chip, nil
}

func (l *loader) instances(b *block, docs []InstDoc, masters map[string]*master) (map[string]*inst, error) {
	ids := &l.db.ids
	insts := make(map[string]*inst, len(docs))
	for _, d := range docs {
		m, ok := masters[d.Master]
		if !ok {
			return nil, l.errorf("instance %s: unknown master %q", d.Name, d.Master)
		}
		if _, dup := insts[d.Name]; dup {
			return nil, l.errorf("duplicate instance %q", d.Name)
		}
		id, err := l.id(&ids.inst, "instance", d.Name, d.ID)
		if err != nil {
			return nil, err
		}
		in := &inst{
			id:       id,
			name:     d.Name,
			location: d.Location,
			origin:   d.Origin,
			orient:   orDefault(d.Orient, odb.OrientR0),
			master:   m,
			placed:   d.Placed,
		}
		bbox := odb.Rect{
			XMin: d.Location.X,
			YMin: d.Location.Y,
			XMax: d.Location.X + m.width,
			YMax: d.Location.Y + m.height,
		}
		if d.BBox != nil {
			bbox = *d.BBox
		}
		in.bbox = &box{id: ids.box.next(), rect: bbox, shape: odb.ShapeNone}
		if d.Halo != nil {
			in.halo = &box{id: ids.box.next(), rect: *d.Halo, shape: odb.ShapeNone}
		}
		for _, t := range m.mterms {
			it := &iterm{id: ids.iterm.next(), mterm: t, inst: in}
			in.iterms = append(in.iterms, it)
			b.iterms = append(b.iterms, it)
		}
		insts[d.Name] = in
		b.insts = append(b.insts, in)
	}
	return insts, nil
}

func (l *loader) nets(b *block, docs []NetDoc, insts map[string]*inst) (map[string]*net, error) {
	ids := &l.db.ids
	nets := make(map[string]*net, len(docs))
	for _, d := range docs {
		if _, dup := nets[d.Name]; dup {
			return nil, l.errorf("duplicate net %q", d.Name)
		}
		id, err := l.id(&ids.net, "net", d.Name, d.ID)
		if err != nil {
			return nil, err
		}
		n := &net{
			id:       id,
			name:     d.Name,
			special:  d.Special,
			wireType: orDefault(d.WireType, odb.WireNone),
		}

		for _, c := range d.Connections {
			in, ok := insts[c.Inst]
			if !ok {
				return nil, l.errorf("net %s: unknown instance %q", d.Name, c.Inst)
			}
			it := in.iterm(c.Pin)
			if it == nil {
				return nil, l.errorf("net %s: instance %s has no pin %q", d.Name, c.Inst, c.Pin)
			}
			if it.net != nil {
				return nil, l.errorf("net %s: pin %s/%s is already on net %s", d.Name, c.Inst, c.Pin, it.net.name)
			}
			it.net = n
			it.special = c.Special
			n.iterms = append(n.iterms, it)
		}

		if len(d.Wire) > 0 {
			w := &wire{id: ids.wire.next()}
			for _, ed := range d.Wire {
				e := &routeEdge{typ: orDefault(ed.Type, odb.EdgeSegment), rect: ed.Rect}
				var err error
				if e.layer, err = l.layer(ed.Layer); err != nil {
					return nil, err
				}
				if e.typ == odb.EdgeTechVia {
					e.techVia, err = l.techVia(ed.Via)
				} else {
					e.via, err = l.blockVia(ed.Via)
				}
				if err != nil {
					return nil, err
				}
				w.edges = append(w.edges, e)
			}
			n.wire = w
		}

		for _, sd := range d.SWires {
			s := &swire{id: ids.swire.next()}
			var err error
			if s.boxes, err = l.boxes(sd.Wires); err != nil {
				return nil, err
			}
			n.swires = append(n.swires, s)
		}

		nets[d.Name] = n
		b.nets = append(b.nets, n)
	}
	return nets, nil
}

func (l *loader) bterms(b *block, docs []BTermDoc, nets map[string]*net) error {
	ids := &l.db.ids
	for _, d := range docs {
		id, err := l.id(&ids.bterm, "pin", d.Name, d.ID)
		if err != nil {
			return err
		}
		t := &bterm{
			id:      id,
			name:    d.Name,
			io:      orDefault(d.IO, odb.IoInput),
			sig:     orDefault(d.Signal, odb.SigSignal),
			special: d.Special,
		}
		if d.Net != "" {
			n, ok := nets[d.Net]
			if !ok {
				return l.errorf("pin %s: unknown net %q", d.Name, d.Net)
			}
			t.net = n
			n.bterms = append(n.bterms, t)
		}
		for _, g := range d.Shapes {
			p := &bpin{id: ids.bpin.next()}
			if p.boxes, err = l.boxes(g.Boxes); err != nil {
				return err
			}
			t.bpins = append(t.bpins, p)
		}
		b.bterms = append(b.bterms, t)
	}
	return nil
}

func (l *loader) grids(b *block, d *DesignDoc) error {
	ids := &l.db.ids
	for _, rd := range d.Rows {
		s, ok := l.db.sites[rd.Site]
		if !ok {
			return l.errorf("row %s: unknown site %q", rd.Name, rd.Site)
		}
		id, err := l.id(&ids.row, "row", rd.Name, rd.ID)
		if err != nil {
			return err
		}
		b.rows = append(b.rows, &row{
			id:        id,
			name:      rd.Name,
			site:      s,
			orient:    orDefault(rd.Orient, odb.OrientR0),
			direction: orDefault(rd.Direction, odb.RowHorizontal),
			origin:    rd.Origin,
			spacing:   rd.Spacing,
			bbox:      rd.BBox,
		})
	}

	for _, gd := range d.Tracks {
		g, err := l.grid(gd)
		if err != nil {
			return err
		}
		b.tracks = append(b.tracks, g)
	}
	if d.GCell != nil {
		g, err := l.grid(*d.GCell)
		if err != nil {
			return err
		}
		g.layer = nil
		b.gcell = g
	}
	return nil
}

func (l *loader) grid(d GridDoc) (*grid, error) {
	id, err := l.id(&l.db.ids.grid, "grid", d.Layer, d.ID)
	if err != nil {
		return nil, err
	}
	g := &grid{
		id:        id,
		x:         d.X,
		y:         d.Y,
		patternsX: d.PatternsX,
		patternsY: d.PatternsY,
	}
	if g.layer, err = l.layer(d.Layer); err != nil {
		return nil, err
	}
	return g, nil
}
