// Package memdbtest provides a small synthetic layout for tests.
//
// The layout covers the shapes the flattener has to handle: an empty
// master, two instances sharing an obstructed master, a routed net with a
// mixed segment/via/tech-via edge sequence, an unrouted net, a power net
// with two special-wire groups, and a few references the technology does
// not know about.
package memdbtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/layoutview/pkg/layoutfile"

	"github.com/matzehuels/layoutview/pkg/odb/memdb"
)

// Tech is a three-layer technology with one detached layer.
const Tech = `
tech:
  name: synth
  dbu_per_micron: 1000
  layers:
    - name: metal1
      type: ROUTING
      direction: HORIZONTAL
      width: 140
      spacing: 140
      area: 0.06
    - name: via1
      type: CUT
      width: 140
    - name: metal2
      alias: M2
      type: ROUTING
      direction: VERTICAL
      width: 140
      spacing: 140
      area: 0.06
      upper: pad
    - name: pad
      type: ROUTING
      detached: true
  vias:
    - name: VIA12
      top: metal2
      bottom: metal1
      cut: via1
      bbox: {rect: {xmin: -70, ymin: -70, xmax: 70, ymax: 70}, layer: via1}
    - name: VIAPWR
      top: metal2
      bottom: metal1
      bbox: {rect: {xmin: -200, ymin: -200, xmax: 200, ymax: 200}, layer: via1}
`

// Libs declares two libraries sharing the CoreSite site.
const Libs = `
libs:
  - name: cells
    sites:
      - name: CoreSite
    masters:
      - name: INV
        type: CORE
        width: 1000
        height: 2000
        placeable: true
        obstructions:
          - {rect: {xmin: 0, ymin: 0, xmax: 1000, ymax: 100}, layer: metal1}
          - {rect: {xmin: 0, ymin: 1900, xmax: 1000, ymax: 2000}, layer: metal1}
        pins:
          - name: A
            io: INPUT
            shapes:
              - boxes:
                  - {rect: {xmin: 100, ymin: 800, xmax: 240, ymax: 1200}, layer: metal1}
          - name: Y
            io: OUTPUT
            shapes:
              - boxes:
                  - {rect: {xmin: 700, ymin: 600, xmax: 840, ymax: 1000}, layer: metal1}
                  - {rect: {xmin: 700, ymin: 1000, xmax: 840, ymax: 1400}, layer: metal1}
      - name: FILL
        type: CORE_SPACER
        width: 500
        height: 2000
        filler: true
  - name: io
    sites:
      - name: CoreSite
      - name: IOSite
    masters:
      - name: PADIN
        type: PAD_INPUT
        width: 5000
        height: 5000
`

// Lib is the cells library of [Libs] as a single-library document, the
// form ReadLib reads.
const Lib = `
lib:
  name: cells
  sites:
    - name: CoreSite
  masters:
    - name: INV
      type: CORE
      width: 1000
      height: 2000
      placeable: true
      obstructions:
        - {rect: {xmin: 0, ymin: 0, xmax: 1000, ymax: 100}, layer: metal1}
        - {rect: {xmin: 0, ymin: 1900, xmax: 1000, ymax: 2000}, layer: metal1}
      pins:
        - name: A
          io: INPUT
          shapes:
            - boxes:
                - {rect: {xmin: 100, ymin: 800, xmax: 240, ymax: 1200}, layer: metal1}
        - name: Y
          io: OUTPUT
          shapes:
            - boxes:
                - {rect: {xmin: 700, ymin: 600, xmax: 840, ymax: 1000}, layer: metal1}
                - {rect: {xmin: 700, ymin: 1000, xmax: 840, ymax: 1400}, layer: metal1}
    - name: FILL
      type: CORE_SPACER
      width: 500
      height: 2000
      filler: true
`

// Design is the synthetic block. It is loaded against [Tech] and [Libs].
const Design = `
design:
  name: synth_top
  die: {xmin: 0, ymin: 0, xmax: 10000, ymax: 10000}
  core: {xmin: 1000, ymin: 1000, xmax: 9000, ymax: 9000}
  vias:
    - name: VIA12_GEN
      top: metal2
      bottom: metal1
      cut: via1
      tech_via: true
      bbox: {rect: {xmin: -100, ymin: -70, xmax: 100, ymax: 70}, layer: via1}
  instances:
    - name: u1
      master: INV
      location: {x: 1000, y: 1000}
      placed: true
      halo: {xmin: 900, ymin: 900, xmax: 2100, ymax: 3100}
    - name: u2
      master: INV
      location: {x: 3000, y: 1000}
      orient: MX
      placed: true
    - name: f1
      master: FILL
      location: {x: 5000, y: 1000}
      placed: true
  pins:
    - name: in
      io: INPUT
      net: n_in
      shapes:
        - boxes:
            - {rect: {xmin: 0, ymin: 1000, xmax: 140, ymax: 1140}, layer: metal2}
            - {rect: {xmin: 0, ymin: 1200, xmax: 140, ymax: 1340}, layer: metal2}
    - name: out
      io: OUTPUT
      net: n_out
      shapes:
        - boxes:
            - {rect: {xmin: 9860, ymin: 1000, xmax: 10000, ymax: 1140}, layer: metal2}
        - boxes:
            - {rect: {xmin: 9860, ymin: 1200, xmax: 10000, ymax: 1340}, layer: metal2}
  nets:
    - name: n_in
      wire_type: ROUTED
      connections:
        - {inst: u1, pin: A}
      wire:
        - {type: SEGMENT, rect: {xmin: 0, ymin: 1000, xmax: 1100, ymax: 1140}, layer: metal1}
        - {type: TECH_VIA, rect: {xmin: 1030, ymin: 1000, xmax: 1170, ymax: 1140}, layer: metal1, via: VIA12}
        - {type: SEGMENT, rect: {xmin: 1030, ymin: 1000, xmax: 1170, ymax: 1900}, layer: metal2}
        - {type: VIA, rect: {xmin: 1000, ymin: 1830, xmax: 1200, ymax: 1970}, layer: metal2, via: VIA12_GEN}
    - name: n_mid
      connections:
        - {inst: u1, pin: Y}
        - {inst: u2, pin: A}
    - name: n_out
      wire_type: ROUTED
      connections:
        - {inst: u2, pin: Y}
    - name: VDD
      special: true
      wire_type: FIXED
      swires:
        - wires:
            - {rect: {xmin: 1000, ymin: 2900, xmax: 9000, ymax: 3100}, layer: metal1, shape: STRIPE}
            - {rect: {xmin: 1930, ymin: 2930, xmax: 2070, ymax: 3070}, layer: via1, tech_via: VIA12, shape: STRIPE}
        - wires:
            - {rect: {xmin: 1000, ymin: 960, xmax: 9000, ymax: 1040}, layer: metal1, shape: FOLLOWPIN}
            - {rect: {xmin: 4000, ymin: 800, xmax: 4400, ymax: 1200}, tech_via: VIAPWR}
            - {rect: {xmin: 6000, ymin: 930, xmax: 6200, ymax: 1070}, layer: via1, via: VIA12_GEN}
  rows:
    - name: ROW_0
      site: CoreSite
      origin: {x: 1000, y: 1000}
      spacing: 200
      bbox: {xmin: 1000, ymin: 1000, xmax: 9000, ymax: 3000}
    - name: ROW_1
      site: CoreSite
      orient: MX
      origin: {x: 1000, y: 3000}
      spacing: 200
      bbox: {xmin: 1000, ymin: 3000, xmax: 9000, ymax: 5000}
  tracks:
    - layer: metal1
      y_patterns: [{origin: 70, count: 50, step: 200}]
      y: [70, 270, 470]
    - layer: metal2
      x_patterns: [{origin: 70, count: 50, step: 200}]
    - layer: pad
      x_patterns: [{origin: 0, count: 2, step: 5000}]
  gcell:
    x_patterns: [{origin: 0, count: 5, step: 2000}]
    y_patterns: [{origin: 0, count: 5, step: 2000}]
`

// EmptyDesign has no instances, pins or nets.
const EmptyDesign = `
design:
  name: empty
  die: {xmin: 0, ymin: 0, xmax: 1000, ymax: 1000}
  core: {xmin: 100, ymin: 100, xmax: 900, ymax: 900}
`

// Load returns a database holding [Tech], [Libs] and the given design.
// It defaults to [Design].
func Load(tb testing.TB, design ...string) *memdb.DB {
	tb.Helper()
	docs := [][]byte{[]byte(Tech), []byte(Libs)}
	if len(design) == 0 {
		design = []string{Design}
	}
	for _, d := range design {
		docs = append(docs, []byte(d))
	}
	db, err := memdb.Load(docs...)
	if err != nil {
		tb.Fatalf("memdb.Load() error = %v", err)
	}
	return db
}

// WriteFiles writes [Tech], [Lib] and a design (default [Design]) to dir
// as an upload would store them and returns the classified file set.
func WriteFiles(tb testing.TB, dir string, design ...string) *layoutfile.DesignFiles {
	tb.Helper()
	d := Design
	if len(design) > 0 {
		d = design[0]
	}
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			tb.Fatalf("write %s: %v", name, err)
		}
		return path
	}
	return &layoutfile.DesignFiles{
		DEF: &layoutfile.DesignFile{ID: 3, Type: layoutfile.TypeDEF, FileName: "top.def", FilePath: write("top.def", d)},
		LEF: []*layoutfile.DesignFile{
			{ID: 1, Type: layoutfile.TypeLEF, FileName: "tech.lef", FilePath: write("tech.lef", Tech), IsTech: true},
			{ID: 2, Type: layoutfile.TypeLEF, FileName: "cells.lef", FilePath: write("cells.lef", Lib), IsLibrary: true},
		},
	}
}
