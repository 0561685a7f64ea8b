package memdb_test

import (
	"os"
	"path/filepath"
	"testing"

	errs "github.com/matzehuels/layoutview/pkg/errors"
	"github.com/matzehuels/layoutview/pkg/odb"
	"github.com/matzehuels/layoutview/pkg/odb/memdb"
	"github.com/matzehuels/layoutview/pkg/odb/memdb/memdbtest"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoadFixture(t *testing.T) {
	db := memdbtest.Load(t)

	if !db.HasTech() {
		t.Fatal("HasTech() = false, want true")
	}
	tech := db.Tech()
	if got := len(tech.Layers()); got != 3 {
		t.Errorf("len(Layers()) = %d, want 3 (detached layer excluded)", got)
	}
	if got := len(db.Libs()); got != 2 {
		t.Errorf("len(Libs()) = %d, want 2", got)
	}

	block := db.Chip().Block()
	if block.Name() != "synth_top" {
		t.Errorf("Block().Name() = %q, want synth_top", block.Name())
	}
	if got := len(block.Insts()); got != 3 {
		t.Errorf("len(Insts()) = %d, want 3", got)
	}
	// u1 and u2 have A and Y; f1 has none.
	if got := len(block.ITerms()); got != 4 {
		t.Errorf("len(ITerms()) = %d, want 4", got)
	}
	if got := len(block.Nets()); got != 4 {
		t.Errorf("len(Nets()) = %d, want 4", got)
	}
	if got := len(block.TrackGrids()); got != 3 {
		t.Errorf("len(TrackGrids()) = %d, want 3", got)
	}
	if block.GCellGrid() == nil {
		t.Error("GCellGrid() = nil, want grid")
	}
	if got := block.BBox().Rect(); got != block.DieArea() {
		t.Errorf("BBox() = %v, want die %v", got, block.DieArea())
	}
}

func TestLayerStack(t *testing.T) {
	db := memdbtest.Load(t)
	layers := db.Tech().Layers()
	m1, v1, m2 := layers[0], layers[1], layers[2]

	if m1.Lower() != nil {
		t.Errorf("metal1.Lower() = %v, want nil", m1.Lower().Name())
	}
	if m1.Upper().Name() != "via1" {
		t.Errorf("metal1.Upper() = %q, want via1", m1.Upper().Name())
	}
	if v1.Lower().Name() != "metal1" || v1.Upper().Name() != "metal2" {
		t.Errorf("via1 adjacency = %q/%q, want metal1/metal2", v1.Lower().Name(), v1.Upper().Name())
	}
	if m2.Upper().Name() != "pad" {
		t.Errorf("metal2.Upper() = %q, want pad", m2.Upper().Name())
	}
	if m2.Alias() != "M2" {
		t.Errorf("metal2.Alias() = %q, want M2", m2.Alias())
	}
	if v1.Direction() != odb.DirNone {
		t.Errorf("via1.Direction() = %v, want %v", v1.Direction(), odb.DirNone)
	}
}

func TestIdsAreAssignedPerKind(t *testing.T) {
	db := memdbtest.Load(t)
	block := db.Chip().Block()

	for i, in := range block.Insts() {
		if in.ID() != i+1 {
			t.Errorf("Insts()[%d].ID() = %d, want %d", i, in.ID(), i+1)
		}
	}
	for i, n := range block.Nets() {
		if n.ID() != i+1 {
			t.Errorf("Nets()[%d].ID() = %d, want %d", i, n.ID(), i+1)
		}
	}

	// Sites are shared across libraries.
	cells, io := db.Libs()[0], db.Libs()[1]
	if cells.Sites()[0] != io.Sites()[0] {
		t.Error("CoreSite is not shared between libraries")
	}
	if got := io.Sites()[1].ID(); got != 2 {
		t.Errorf("IOSite.ID() = %d, want 2", got)
	}

	// Block via ids continue after technology vias.
	if got := block.Vias()[0].ID(); got != 3 {
		t.Errorf("VIA12_GEN.ID() = %d, want 3", got)
	}
}

func TestConnectivity(t *testing.T) {
	block := memdbtest.Load(t).Chip().Block()
	nets := block.Nets()

	nIn := nets[0]
	if got := len(nIn.ITerms()); got != 1 {
		t.Fatalf("n_in ITerms = %d, want 1", got)
	}
	if got := len(nIn.BTerms()); got != 1 || nIn.BTerms()[0].Name() != "in" {
		t.Errorf("n_in BTerms = %d, want [in]", got)
	}
	if nIn.ITerms()[0].Net() != nIn {
		t.Error("iterm.Net() does not point back to n_in")
	}

	f1 := block.Insts()[2]
	if got := len(f1.ITerms()); got != 0 {
		t.Errorf("f1 ITerms = %d, want 0", got)
	}

	u2 := block.Insts()[1]
	if u2.Orient() != odb.OrientMX {
		t.Errorf("u2.Orient() = %v, want MX", u2.Orient())
	}
	if u2.Halo() != nil {
		t.Error("u2.Halo() != nil, want nil")
	}
	want := odb.Rect{XMin: 3000, YMin: 1000, XMax: 4000, YMax: 3000}
	if got := u2.BBox().Rect(); got != want {
		t.Errorf("u2.BBox() = %v, want %v", got, want)
	}
}

func TestAvgXY(t *testing.T) {
	u1 := memdbtest.Load(t).Chip().Block().Insts()[0]
	var y odb.ITerm
	for _, it := range u1.ITerms() {
		if it.MTerm().Name() == "Y" {
			y = it
		}
	}
	if y == nil {
		t.Fatal("u1 has no Y terminal")
	}
	want := odb.Point{X: 1770, Y: 2000}
	if got := y.AvgXY(); got != want {
		t.Errorf("AvgXY() = %v, want %v", got, want)
	}
	if y.IoType() != odb.IoOutput {
		t.Errorf("IoType() = %v, want OUTPUT", y.IoType())
	}
}

func TestDecoderPreservesOrder(t *testing.T) {
	block := memdbtest.Load(t).Chip().Block()
	nIn := block.Nets()[0]

	edges, err := memdb.Decoder{}.Decode(nIn.Wire())
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := []odb.EdgeType{odb.EdgeSegment, odb.EdgeTechVia, odb.EdgeSegment, odb.EdgeVia}
	if len(edges) != len(want) {
		t.Fatalf("len(edges) = %d, want %d", len(edges), len(want))
	}
	for i, e := range edges {
		if e.Type() != want[i] {
			t.Errorf("edges[%d].Type() = %v, want %v", i, e.Type(), want[i])
		}
	}
	if edges[1].TechVia() == nil || edges[1].TechVia().Name() != "VIA12" {
		t.Error("tech-via edge does not reference VIA12")
	}
	if edges[3].Via() == nil || edges[3].Via().Name() != "VIA12_GEN" {
		t.Error("via edge does not reference VIA12_GEN")
	}
	if edges[0].Via() != nil || edges[0].TechVia() != nil {
		t.Error("segment edge references a via")
	}

	if edges, err := (memdb.Decoder{}).Decode(nil); err != nil || edges != nil {
		t.Errorf("Decode(nil) = %v, %v, want nil, nil", edges, err)
	}
	if block.Nets()[1].Wire() != nil {
		t.Error("unrouted net has a wire")
	}
}

func TestDbuToMeters(t *testing.T) {
	db := memdbtest.Load(t)
	if got := db.DbuToMeters(2000); got != 2e-6 {
		t.Errorf("DbuToMeters(2000) = %v, want 2e-6", got)
	}
	if got := memdb.New().DbuToMeters(2000); got != 0 {
		t.Errorf("DbuToMeters() without tech = %v, want 0", got)
	}
}

func TestFileLoaders(t *testing.T) {
	dir := t.TempDir()
	techPath := writeFile(t, dir, "tech.yaml", memdbtest.Tech)
	designPath := writeFile(t, dir, "top.yaml", memdbtest.Design)
	libPath := writeFile(t, dir, "cells.yaml", `
lib:
  name: ignored
  sites:
    - name: CoreSite
  masters:
    - {name: INV, width: 1000, height: 2000, placeable: true, pins: [{name: A}, {name: Y}]}
    - {name: FILL, width: 500, height: 2000}
`)

	db := memdb.New()
	if _, err := db.ReadLib("cells", libPath); !errs.Is(err, errs.ErrCodeNoTechnology) {
		t.Errorf("ReadLib() before tech error = %v, want NO_TECHNOLOGY", err)
	}
	if _, err := db.ReadDesign(designPath, nil); !errs.Is(err, errs.ErrCodeNoTechnology) {
		t.Errorf("ReadDesign() before tech error = %v, want NO_TECHNOLOGY", err)
	}

	if _, err := db.ReadTech(techPath); err != nil {
		t.Fatalf("ReadTech() error = %v", err)
	}
	if _, err := db.ReadTech(techPath); !errs.Is(err, errs.ErrCodeTechParse) {
		t.Errorf("second ReadTech() error = %v, want TECH_PARSE", err)
	}

	lib, err := db.ReadLib("cells", libPath)
	if err != nil {
		t.Fatalf("ReadLib() error = %v", err)
	}
	if lib.Name() != "cells" {
		t.Errorf("lib.Name() = %q, want cells", lib.Name())
	}
	if got := lib.Masters()[0].Type(); got != odb.MasterCore {
		t.Errorf("default master type = %v, want CORE", got)
	}

	chip, err := db.ReadDesign(designPath, []odb.Lib{lib})
	if err != nil {
		t.Fatalf("ReadDesign() error = %v", err)
	}
	if chip != db.Chip() {
		t.Error("ReadDesign() chip is not the database chip")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		docs []string
		code errs.Code
	}{
		{
			name: "lib without tech",
			docs: []string{memdbtest.Libs},
			code: errs.ErrCodeNoTechnology,
		},
		{
			name: "bad dbu",
			docs: []string{"tech: {name: t, dbu_per_micron: 0}"},
			code: errs.ErrCodeTechParse,
		},
		{
			name: "unknown layer in tech",
			docs: []string{"tech: {name: t, dbu_per_micron: 1000, layers: [{name: m1, upper: m9}]}"},
			code: errs.ErrCodeTechParse,
		},
		{
			name: "unknown master",
			docs: []string{memdbtest.Tech, memdbtest.Libs, "design: {name: d, instances: [{name: x, master: NAND}]}"},
			code: errs.ErrCodeDEFParse,
		},
		{
			name: "unknown net pin",
			docs: []string{memdbtest.Tech, memdbtest.Libs, "design: {name: d, instances: [{name: x, master: INV}], nets: [{name: n, connections: [{inst: x, pin: Z}]}]}"},
			code: errs.ErrCodeDEFParse,
		},
		{
			name: "unknown obstruction layer",
			docs: []string{memdbtest.Tech, "lib: {name: l, masters: [{name: M, obstructions: [{layer: poly}]}]}"},
			code: errs.ErrCodeLEFParse,
		},
		{
			name: "duplicate explicit instance id",
			docs: []string{memdbtest.Tech, memdbtest.Libs, "design: {name: d, instances: [{name: a, master: INV, id: 1}, {name: b, master: INV, id: 1}]}"},
			code: errs.ErrCodeDEFParse,
		},
		{
			name: "explicit id reuses an assigned one",
			docs: []string{memdbtest.Tech, memdbtest.Libs, "design: {name: d, instances: [{name: a, master: INV}, {name: b, master: INV, id: 1}]}"},
			code: errs.ErrCodeDEFParse,
		},
		{
			name: "duplicate explicit layer id",
			docs: []string{"tech: {name: t, dbu_per_micron: 1000, layers: [{name: m1, id: 7}, {name: m2, id: 7}]}"},
			code: errs.ErrCodeTechParse,
		},
		{
			name: "malformed yaml",
			docs: []string{"tech: ["},
			code: errs.ErrCodeInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := make([][]byte, len(tt.docs))
			for i, d := range tt.docs {
				docs[i] = []byte(d)
			}
			_, err := memdb.Load(docs...)
			if !errs.Is(err, tt.code) {
				t.Errorf("Load() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestExplicitIDs(t *testing.T) {
	db, err := memdb.Load([]byte(memdbtest.Tech), []byte(memdbtest.Libs),
		[]byte("design: {name: d, instances: [{name: a, master: INV, id: 5}, {name: b, master: INV}]}"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	insts := db.Chip().Block().Insts()
	if len(insts) != 2 {
		t.Fatalf("instances = %d, want 2", len(insts))
	}
	if got := insts[0].ID(); got != 5 {
		t.Errorf("explicit id = %d, want 5", got)
	}
	if got := insts[1].ID(); got != 6 {
		t.Errorf("implicit id after explicit = %d, want 6", got)
	}
}

func TestReadMissingFile(t *testing.T) {
	_, err := memdb.New().ReadTech(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("ReadTech() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestCloseDropsContent(t *testing.T) {
	db := memdbtest.Load(t)
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if db.HasTech() || db.Chip() != nil || len(db.Libs()) != 0 {
		t.Error("Close() left content behind")
	}
}
