package snapshot

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutview/pkg/odb"
	"github.com/matzehuels/layoutview/pkg/odb/memdb"
	"github.com/matzehuels/layoutview/pkg/odb/memdb/memdbtest"
)

func quietBuilder(dec odb.Decoder) *Builder {
	return NewBuilder(dec, log.New(io.Discard))
}

// build flattens the fixture (or the given design) and releases the
// snapshot when the test ends.
func build(t *testing.T, design ...string) *Design {
	t.Helper()
	d, err := quietBuilder(memdb.Decoder{}).Build(memdbtest.Load(t, design...))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { d.Release() })
	return d
}

func findInstance(t *testing.T, d *Design, name string) *Instance {
	t.Helper()
	for _, in := range d.Instances {
		if in.Name == name {
			return in
		}
	}
	t.Fatalf("instance %q not found", name)
	return nil
}

func findNet(t *testing.T, d *Design, name string) *Net {
	t.Helper()
	for _, n := range d.Nets {
		if n.Name == name {
			return n
		}
	}
	t.Fatalf("net %q not found", name)
	return nil
}

func findLayer(t *testing.T, d *Design, name string) *Layer {
	t.Helper()
	for _, l := range d.Layers {
		if l.Name == name {
			return l
		}
	}
	t.Fatalf("layer %q not found", name)
	return nil
}

func pinNamed(t *testing.T, in *Instance, name string) *Pin {
	t.Helper()
	for _, p := range in.Pins {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("pin %s/%s not found", in.Name, name)
	return nil
}

func TestBuildCollections(t *testing.T) {
	d := build(t)

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"instances", len(d.Instances), 3},
		{"instance pins", len(d.InstancePins), 4},
		{"block pins", len(d.BlockPins), 2},
		{"nets", len(d.Nets), 4},
		{"layers", len(d.Layers), 3},
		{"via definitions", len(d.ViaDefinitions), 1},
		{"routing vias", len(d.RoutingVias), 1},
		{"sites", len(d.Sites), 2},
		{"rows", len(d.Rows), 2},
		{"tracks", len(d.Tracks), 3},
		{"geometries", len(d.Geometries), 8},
		{"rects", d.Stats.Rects, 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("len = %d, want %d", tt.got, tt.want)
			}
		})
	}

	if d.Name != "synth_top" {
		t.Errorf("Name = %q, want synth_top", d.Name)
	}
	if d.GCell == nil {
		t.Fatal("GCell = nil")
	}
	if got := d.GCell.GridXPatternLineCounts; len(got) != 1 || got[0] != 5 {
		t.Errorf("GCell x counts = %v, want [5]", got)
	}
	if d.Sites[0].Name != "CoreSite" || d.Sites[1].Name != "IOSite" {
		t.Errorf("Sites = %s, %s; want CoreSite, IOSite", d.Sites[0].Name, d.Sites[1].Name)
	}
	if d.RoutingVias[0].Name != "VIA12" || !d.RoutingVias[0].IsTech || d.RoutingVias[0].IsBlock {
		t.Errorf("routing via = %+v, want tech via VIA12", d.RoutingVias[0])
	}
}

func TestInstanceFields(t *testing.T) {
	d := build(t)

	u2 := findInstance(t, d, "u2")
	if u2.Orientation != OrientationMX {
		t.Errorf("Orientation = %v, want MX", u2.Orientation)
	}
	if u2.MasterType != MasterTypeCore || u2.Master != "INV" || !u2.IsPlaced {
		t.Errorf("u2 = %+v", u2)
	}
	if *u2.Location != (Point{3000, 1000}) {
		t.Errorf("Location = %+v", *u2.Location)
	}
	if u2.Halo == nil || *u2.Halo != (Rect{ID: u2.Halo.ID, ShapeType: ShapeTypeUnset}) {
		t.Errorf("Halo = %+v, want zeroed rect", u2.Halo)
	}

	u1 := findInstance(t, d, "u1")
	if u1.BoundingBox.ID != 1 || u1.Halo.ID != 2 {
		t.Errorf("u1 rect ids = %d, %d; want 1, 2", u1.BoundingBox.ID, u1.Halo.ID)
	}
	if u1.Halo.XMin != 900 || u1.Halo.YMax != 3100 {
		t.Errorf("u1 halo = %+v", u1.Halo)
	}

	f1 := findInstance(t, d, "f1")
	if !f1.IsFiller {
		t.Error("f1.IsFiller = false")
	}
}

func TestObstructionsAreShared(t *testing.T) {
	d := build(t)

	u1, u2 := findInstance(t, d, "u1"), findInstance(t, d, "u2")
	if u1.Obstructions != u2.Obstructions {
		t.Fatal("instances of INV do not share obstruction geometry")
	}
	if n := len(u1.Obstructions.Boxes); n != 2 {
		t.Errorf("obstruction boxes = %d, want 2", n)
	}
	for _, r := range u1.Obstructions.Boxes {
		if r.Layer == nil || r.Layer.Name != "metal1" {
			t.Errorf("obstruction %d layer = %v, want metal1", r.ID, r.Layer)
		}
	}

	f1 := findInstance(t, d, "f1")
	if f1.Obstructions == nil || len(f1.Obstructions.Boxes) != 0 {
		t.Errorf("FILL obstructions = %+v, want empty geometry", f1.Obstructions)
	}
}

func TestPinGeometryIsShared(t *testing.T) {
	d := build(t)

	u1, u2 := findInstance(t, d, "u1"), findInstance(t, d, "u2")
	a1, a2 := pinNamed(t, u1, "A"), pinNamed(t, u2, "A")
	if len(a1.Geometries) != 1 || a1.Geometries[0] != a2.Geometries[0] {
		t.Fatal("pin A geometry not shared between instances")
	}
	y1 := pinNamed(t, u1, "Y")
	if n := len(y1.Geometries[0].Boxes); n != 2 {
		t.Errorf("Y boxes = %d, want 2", n)
	}
	if *y1.Location != (Point{1770, 2000}) {
		t.Errorf("Y location = %+v, want {1770 2000}", *y1.Location)
	}
	if y1.Direction != IOTypeOutput {
		t.Errorf("Y direction = %v, want OUTPUT", y1.Direction)
	}
}

func TestBlockPinGeometry(t *testing.T) {
	d := build(t)

	for _, p := range d.BlockPins {
		if !p.IsBlock {
			t.Errorf("%s: IsBlock = false", p.Name)
		}
		if len(p.Geometries) != 1 {
			t.Fatalf("%s: geometries = %d, want 1", p.Name, len(p.Geometries))
		}
		if n := len(p.Geometries[0].Boxes); n != 2 {
			t.Errorf("%s: boxes = %d, want 2", p.Name, n)
		}
		if p.Location != nil {
			t.Errorf("%s: Location = %+v, want nil", p.Name, p.Location)
		}
	}
}

func TestIDsAreUnique(t *testing.T) {
	d := build(t)

	for i, r := range d.Rects() {
		if r.ID != i+1 {
			t.Fatalf("rect %d has id %d, want %d", i, r.ID, i+1)
		}
	}
	for i, g := range d.Geometries {
		if g.ID != i+1 {
			t.Fatalf("geometry %d has id %d, want %d", i, g.ID, i+1)
		}
	}

	unique := func(kind string, ids []int) {
		seen := make(map[int]bool)
		for _, id := range ids {
			if seen[id] {
				t.Errorf("%s id %d appears twice", kind, id)
			}
			seen[id] = true
		}
	}
	var ids []int
	for _, in := range d.Instances {
		ids = append(ids, in.ID)
	}
	unique("instance", ids)

	ids = ids[:0]
	for _, n := range d.Nets {
		ids = append(ids, n.ID)
	}
	unique("net", ids)

	ids = ids[:0]
	for _, v := range append(append([]*Via{}, d.ViaDefinitions...), d.RoutingVias...) {
		ids = append(ids, v.ID)
	}
	unique("via", ids)
}

func TestReferentialClosure(t *testing.T) {
	d := build(t)

	layers := setOf(d.Layers)
	vias := setOf(append(append([]*Via{}, d.ViaDefinitions...), d.RoutingVias...))
	pins := setOf(append(append([]*Pin{}, d.InstancePins...), d.BlockPins...))
	insts := setOf(d.Instances)
	nets := setOf(d.Nets)
	sites := setOf(d.Sites)
	geoms := setOf(d.Geometries)
	rects := setOf(d.Rects())

	check := func(ok bool, what string, args ...any) {
		t.Helper()
		if !ok {
			t.Errorf("dangling "+what, args...)
		}
	}
	rect := func(r *Rect, owner string) {
		t.Helper()
		if r == nil {
			return
		}
		check(rects[r], "rect %d in %s", r.ID, owner)
		check(r.Layer == nil || layers[r.Layer], "layer on rect %d", r.ID)
		check(r.Via == nil || vias[r.Via], "via on rect %d", r.ID)
	}

	for _, in := range d.Instances {
		rect(in.BoundingBox, in.Name)
		rect(in.Halo, in.Name)
		check(geoms[in.Obstructions], "obstructions of %s", in.Name)
		for _, p := range in.Pins {
			check(pins[p], "pin of %s", in.Name)
		}
	}
	for _, p := range append(append([]*Pin{}, d.InstancePins...), d.BlockPins...) {
		check(p.Instance == nil || insts[p.Instance], "instance of pin %d", p.ID)
		check(p.Net == nil || nets[p.Net], "net of pin %d", p.ID)
		for _, g := range p.Geometries {
			check(geoms[g], "geometry of pin %d", p.ID)
		}
	}
	for _, n := range d.Nets {
		for _, p := range n.Pins {
			check(pins[p], "pin of net %s", n.Name)
		}
		for _, e := range n.Edges {
			rect(e.Rect, n.Name)
			check(e.Via == nil || vias[e.Via], "via of edge in %s", n.Name)
			check(e.Layer == nil || layers[e.Layer], "layer of edge in %s", n.Name)
		}
		for _, g := range n.SpecialBoxes {
			check(geoms[g], "special geometry of %s", n.Name)
		}
	}
	for v := range vias {
		rect(v.Rect, v.Name)
		for _, l := range []*Layer{v.TopLayer, v.BottomLayer, v.CutLayer} {
			check(l == nil || layers[l], "layer of via %s", v.Name)
		}
	}
	for _, l := range d.Layers {
		check(l.UpperLayer == nil || layers[l.UpperLayer], "upper of %s", l.Name)
		check(l.LowerLayer == nil || layers[l.LowerLayer], "lower of %s", l.Name)
	}
	for _, g := range d.Geometries {
		for _, r := range g.Boxes {
			rect(r, "geometry")
		}
	}
	for _, r := range d.Rows {
		check(r.Site == nil || sites[r.Site], "site of row %s", r.Name)
		rect(r.BoundingBox, r.Name)
	}
	for _, g := range d.Tracks {
		check(g.Layer == nil || layers[g.Layer], "layer of track %d", g.ID)
	}
	rect(d.BoundingBox, "design")
	rect(d.Core, "design")
	rect(d.Die, "design")
}

func setOf[T any](s []*T) map[*T]bool {
	m := make(map[*T]bool, len(s))
	for _, v := range s {
		m[v] = true
	}
	return m
}

func TestPinNetSymmetry(t *testing.T) {
	d := build(t)

	for _, p := range append(append([]*Pin{}, d.InstancePins...), d.BlockPins...) {
		if p.Net == nil {
			continue
		}
		found := false
		for _, q := range p.Net.Pins {
			if q == p {
				found = true
			}
		}
		if !found {
			t.Errorf("pin %d names net %s, which does not list it", p.ID, p.Net.Name)
		}
	}
	for _, n := range d.Nets {
		for _, p := range n.Pins {
			if p.Net != n {
				t.Errorf("net %s lists pin %d, whose net is %v", n.Name, p.ID, p.Net)
			}
		}
	}

	mid := findNet(t, d, "n_mid")
	if len(mid.Pins) != 2 {
		t.Errorf("n_mid pins = %d, want 2", len(mid.Pins))
	}
	in := findNet(t, d, "n_in")
	if len(in.Pins) != 2 || in.Pins[0].IsBlock || !in.Pins[1].IsBlock {
		t.Errorf("n_in pins should be the iterm followed by the bterm")
	}
}

func TestInstancePinBackLinks(t *testing.T) {
	d := build(t)

	for _, in := range d.Instances {
		for _, p := range in.Pins {
			if p.Instance != in {
				t.Errorf("pin %s of %s links to %v", p.Name, in.Name, p.Instance)
			}
		}
	}
}

func TestEdgeOrderIsPreserved(t *testing.T) {
	d := build(t)

	n := findNet(t, d, "n_in")
	want := []struct {
		typ   EdgeType
		xmin  int
		layer string
		via   string
	}{
		{EdgeTypeSegment, 0, "metal1", ""},
		{EdgeTypeTechVia, 1030, "metal1", "VIA12"},
		{EdgeTypeSegment, 1030, "metal2", ""},
		{EdgeTypeVia, 1000, "metal2", "VIA12_GEN"},
	}
	if len(n.Edges) != len(want) {
		t.Fatalf("edges = %d, want %d", len(n.Edges), len(want))
	}
	for i, w := range want {
		e := n.Edges[i]
		if e.Type != w.typ || e.Rect.XMin != w.xmin {
			t.Errorf("edge %d = %v at %d, want %v at %d", i, e.Type, e.Rect.XMin, w.typ, w.xmin)
		}
		if e.Layer == nil || e.Layer.Name != w.layer {
			t.Errorf("edge %d layer = %v, want %s", i, e.Layer, w.layer)
		}
		gotVia := ""
		if e.Via != nil {
			gotVia = e.Via.Name
		}
		if gotVia != w.via {
			t.Errorf("edge %d via = %q, want %q", i, gotVia, w.via)
		}
	}
	if n.Edges[3].Via != d.ViaDefinitions[0] {
		t.Error("VIA edge does not reuse the via definition")
	}
	if !n.IsRouted || n.WireType != WireTypeRouted {
		t.Errorf("n_in routed = %v, wire type = %v", n.IsRouted, n.WireType)
	}

	out := findNet(t, d, "n_out")
	if !out.IsRouted || len(out.Edges) != 0 {
		t.Errorf("n_out routed = %v, edges = %d; want routed without edges", out.IsRouted, len(out.Edges))
	}
	if findNet(t, d, "n_mid").IsRouted {
		t.Error("n_mid should not be routed")
	}
}

func TestSpecialWires(t *testing.T) {
	d := build(t)

	vdd := findNet(t, d, "VDD")
	if !vdd.IsSpecial || vdd.IsRouted {
		t.Errorf("VDD special = %v, routed = %v", vdd.IsSpecial, vdd.IsRouted)
	}
	if len(vdd.SpecialBoxes) != 2 {
		t.Fatalf("special boxes = %d, want 2", len(vdd.SpecialBoxes))
	}
	stripe, follow := vdd.SpecialBoxes[0], vdd.SpecialBoxes[1]
	if stripe.Boxes[0].ShapeType != ShapeTypeStripe || follow.Boxes[0].ShapeType != ShapeTypeFollowPin {
		t.Errorf("shape types = %v, %v", stripe.Boxes[0].ShapeType, follow.Boxes[0].ShapeType)
	}
	if v := stripe.Boxes[1].Via; v == nil || v.Name != "VIA12" {
		t.Errorf("stripe via = %v, want VIA12", v)
	}
	if v := follow.Boxes[1].Via; v != nil {
		t.Errorf("VIAPWR shape via = %v, want nil", v)
	}
	if v := follow.Boxes[2].Via; v == nil || v.Name != "VIA12_GEN" {
		t.Errorf("block via shape = %v, want VIA12_GEN", v)
	}
	if r := d.Instances[0].BoundingBox; r.ShapeType != ShapeTypeUnset {
		t.Errorf("instance bbox shape type = %v, want unset", r.ShapeType)
	}
}

func TestUnresolvedReferences(t *testing.T) {
	d := build(t)

	// metal2 -> pad, the pad track, and the VIAPWR shape. The rect pass
	// does not look up the special-wire via again.
	if d.Stats.Unresolved != 3 {
		t.Errorf("Unresolved = %d, want 3", d.Stats.Unresolved)
	}
	metal2 := findLayer(t, d, "metal2")
	if metal2.UpperLayer != nil {
		t.Errorf("metal2 upper = %v, want nil", metal2.UpperLayer)
	}
	if metal2.LowerLayer == nil || metal2.LowerLayer.Name != "via1" {
		t.Errorf("metal2 lower = %v, want via1", metal2.LowerLayer)
	}
	if d.Tracks[2].Layer != nil {
		t.Errorf("pad track layer = %v, want nil", d.Tracks[2].Layer)
	}
}

func TestUnresolvedIsLogged(t *testing.T) {
	var buf strings.Builder
	b := NewBuilder(memdb.Decoder{}, log.New(&buf))
	d, err := b.Build(memdbtest.Load(t))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer d.Release()

	out := buf.String()
	if got := strings.Count(out, "unresolved"); got != d.Stats.Unresolved {
		t.Errorf("logged %d misses, counted %d", got, d.Stats.Unresolved)
	}
	if got := strings.Count(out, "VIAPWR"); got != 1 {
		t.Errorf("VIAPWR logged %d times, want 1:\n%s", got, out)
	}
}

func TestMetrics(t *testing.T) {
	d := build(t)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"core", d.CoreArea, 6.4e-11},
		{"die", d.DieArea, 1e-10},
		{"design", d.DesignArea, 4e-12},
		{"utilization", d.Utilization, 0.0625},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > 1e-9*tt.want {
				t.Errorf("%s = %g, want %g", tt.name, tt.got, tt.want)
			}
		})
	}

	if d.Core.XMin != 1000 || d.Die.XMax != 10000 {
		t.Errorf("core = %+v, die = %+v", d.Core, d.Die)
	}
	if d.BoundingBox.ID != 29 || d.Core.ID != 30 || d.Die.ID != 31 {
		t.Errorf("design rect ids = %d %d %d, want 29 30 31", d.BoundingBox.ID, d.Core.ID, d.Die.ID)
	}
}

func TestMetricsWithoutPlaceableInstances(t *testing.T) {
	d := build(t, memdbtest.EmptyDesign)

	if d.DesignArea != 0 || d.Utilization != 0 {
		t.Errorf("design area = %g, utilization = %g; want 0, 0", d.DesignArea, d.Utilization)
	}
	if d.CoreArea <= 0 {
		t.Errorf("CoreArea = %g, want > 0", d.CoreArea)
	}
	if len(d.Instances) != 0 || d.Stats.Rects != 3 {
		t.Errorf("instances = %d, rects = %d; want 0, 3", len(d.Instances), d.Stats.Rects)
	}
}

const zeroCoreDesign = `
design:
  name: zero_core
  die: {xmin: 0, ymin: 0, xmax: 4000, ymax: 4000}
  core: {xmin: 0, ymin: 0, xmax: 0, ymax: 0}
  instances:
    - name: u1
      master: INV
      location: {x: 0, y: 0}
      placed: true
`

func TestMetricsZeroCore(t *testing.T) {
	d := build(t, zeroCoreDesign)

	if !math.IsInf(d.Utilization, 1) {
		t.Errorf("Utilization = %g, want +Inf", d.Utilization)
	}
}

func TestBuildErrors(t *testing.T) {
	techOnly, err := memdb.Load([]byte(memdbtest.Tech), []byte(memdbtest.Libs))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		db   odb.Database
		dec  odb.Decoder
		want error
	}{
		{"nil database", nil, memdb.Decoder{}, ErrNoTech},
		{"empty database", memdb.New(), memdb.Decoder{}, ErrNoTech},
		{"no design", techOnly, memdb.Decoder{}, ErrNoBlock},
		{"no decoder", memdbtest.Load(t), nil, ErrNoDecoder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := quietBuilder(tt.dec).Build(tt.db)
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
			if d != nil {
				t.Errorf("Build() design = %v, want nil", d)
			}
		})
	}
}

var errCorrupt = errors.New("corrupt wire")

type failingDecoder struct{}

func (failingDecoder) Decode(odb.Wire) ([]odb.RouteEdge, error) { return nil, errCorrupt }

func TestDecoderErrorAborts(t *testing.T) {
	_, err := quietBuilder(failingDecoder{}).Build(memdbtest.Load(t))
	if !errors.Is(err, errCorrupt) {
		t.Fatalf("Build() error = %v, want %v", err, errCorrupt)
	}
	if !strings.Contains(err.Error(), "n_in") {
		t.Errorf("error %q does not name the net", err)
	}
}

func TestMaterializeUsesDefaults(t *testing.T) {
	d, err := Materialize(memdbtest.Load(t), memdb.Decoder{})
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	defer d.Release()
	if len(d.Instances) != 3 {
		t.Errorf("instances = %d, want 3", len(d.Instances))
	}
}
