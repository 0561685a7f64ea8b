package snapshot

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/layoutview/pkg/odb/memdb"
	"github.com/matzehuels/layoutview/pkg/odb/memdb/memdbtest"
)

func TestLiveDesignIsCyclic(t *testing.T) {
	d := build(t)
	if _, err := json.Marshal(d); err == nil {
		t.Fatal("json.Marshal(live design) succeeded, want cycle error")
	}
}

func TestCompactEncodes(t *testing.T) {
	d := build(t)
	c := d.Compact()

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("json.Marshal(compact) error = %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	for _, key := range []string{
		"Name", "Instances", "Nets", "InstancePins", "BlockPins", "RoutingVias",
		"ViaDefinitions", "Layers", "CoreArea", "DieArea", "DesignArea",
		"Utilization", "BoundingBox", "Core", "Die", "Rows", "Tracks", "Sites",
		"GCell", "Geometries",
	} {
		if _, ok := doc[key]; !ok {
			t.Errorf("compact JSON lacks %q", key)
		}
	}
	if _, ok := doc["Stats"]; ok {
		t.Error("compact JSON carries build stats")
	}
}

func TestCompactStubs(t *testing.T) {
	d := build(t)
	c := d.Compact()

	for _, in := range c.Instances {
		for _, p := range in.Pins {
			if !p.InComplete || p.Name != "" {
				t.Errorf("instance %s pin = %+v, want id stub", in.Name, p)
			}
		}
		if in.Obstructions == nil || !in.Obstructions.InComplete || in.Obstructions.Boxes != nil {
			t.Errorf("instance %s obstructions = %+v, want id stub", in.Name, in.Obstructions)
		}
	}
	for _, p := range c.InstancePins {
		if p.Instance != nil || p.Net != nil {
			t.Errorf("pin %d keeps links", p.ID)
		}
		for _, g := range p.Geometries {
			if !g.InComplete {
				t.Errorf("pin %d geometry %d is not a stub", p.ID, g.ID)
			}
		}
	}
	for _, n := range c.Nets {
		for _, e := range n.Edges {
			if e.Layer != nil && !e.Layer.InComplete {
				t.Errorf("net %s edge layer is not a stub", n.Name)
			}
			if e.Via != nil && !e.Via.InComplete {
				t.Errorf("net %s edge via is not a stub", n.Name)
			}
		}
	}
	for _, l := range c.Layers {
		if l.LowerLayer != nil && (!l.LowerLayer.InComplete || l.LowerLayer.Name != "") {
			t.Errorf("layer %s lower = %+v, want id stub", l.Name, l.LowerLayer)
		}
	}
	for _, r := range c.Rows {
		if r.Site == nil || r.Site.InComplete || r.Site.Name != "CoreSite" {
			t.Errorf("row %s site = %+v, want named site", r.Name, r.Site)
		}
	}
	for _, g := range c.Geometries {
		if g.InComplete {
			t.Errorf("geometry %d is a stub in the geometry list", g.ID)
		}
		for _, r := range g.Boxes {
			if r.Layer != nil && !r.Layer.InComplete {
				t.Errorf("geometry %d rect layer is not a stub", g.ID)
			}
		}
	}
}

func TestCompactOutlivesRelease(t *testing.T) {
	d, err := quietBuilder(memdb.Decoder{}).Build(memdbtest.Load(t))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	c := d.Compact()
	d.Release()

	if c.Name != "synth_top" || len(c.Instances) != 3 || c.Instances[0].BoundingBox == nil {
		t.Fatalf("compact design damaged by release: %+v", c)
	}
	if _, err := json.Marshal(c); err != nil {
		t.Errorf("json.Marshal() after release error = %v", err)
	}
}

func TestCompactEmptyCollections(t *testing.T) {
	d := build(t, memdbtest.EmptyDesign)
	data, err := EncodeJSON(d, false)
	if err != nil {
		t.Fatalf("EncodeJSON() error = %v", err)
	}
	for _, want := range []string{`"Instances":[]`, `"Nets":[]`, `"RoutingVias":[]`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("encoding lacks %s", want)
		}
	}
	if bytes.Contains(data, []byte(`"GCell"`)) {
		t.Error("encoding carries an absent gcell grid")
	}
	if (*Design)(nil).Compact() != nil {
		t.Error("nil Compact() != nil")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := build(t)

	for _, compress := range []bool{false, true} {
		name := "plain"
		if compress {
			name = "gzip"
		}
		t.Run(name, func(t *testing.T) {
			data, err := EncodeJSON(d, compress)
			if err != nil {
				t.Fatalf("EncodeJSON() error = %v", err)
			}
			if gz := len(data) > 2 && data[0] == 0x1f && data[1] == 0x8b; gz != compress {
				t.Errorf("gzip magic = %v, want %v", gz, compress)
			}
			c, err := DecodeCompact(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("DecodeCompact() error = %v", err)
			}
			if c.Name != d.Name || len(c.Nets) != len(d.Nets) || len(c.Geometries) != len(d.Geometries) {
				t.Errorf("decoded %s with %d nets, %d geometries", c.Name, len(c.Nets), len(c.Geometries))
			}
			if c.Utilization != d.Utilization {
				t.Errorf("Utilization = %g, want %g", c.Utilization, d.Utilization)
			}
			if e := c.Nets[0].Edges[1]; e.Type != EdgeTypeTechVia || e.Via == nil || e.Via.ID != d.RoutingVias[0].ID {
				t.Errorf("decoded edge = %+v", e)
			}
		})
	}
}

func TestDecodeCompactErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
	}{
		{"empty", nil},
		{"not json", []byte("DESIGN top ;")},
		{"broken gzip", []byte{0x1f, 0x8b, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeCompact(bytes.NewReader(tt.input)); err == nil {
				t.Error("DecodeCompact() error = nil")
			}
		})
	}
}

func TestExportJSON(t *testing.T) {
	d := build(t)
	path := filepath.Join(t.TempDir(), "design.json")
	if err := ExportJSON(d, path, false); err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"Name":"synth_top"`) {
		t.Errorf("export lacks the design name")
	}
}

// A zero core area is kept in the snapshot but has no JSON encoding.
func TestEncodeZeroCoreFails(t *testing.T) {
	d := build(t, zeroCoreDesign)

	_, err := EncodeJSON(d, false)
	if err == nil || !strings.Contains(err.Error(), "unsupported value") {
		t.Errorf("EncodeJSON() error = %v, want unsupported value", err)
	}
}
