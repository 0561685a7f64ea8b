package memdb

import "github.com/matzehuels/layoutview/pkg/odb"

// Document is the YAML interchange form read by the loaders. A document may
// carry any combination of sections; each loader reads the sections it is
// responsible for and ignores the rest.
type Document struct {
	Tech   *TechDoc   `yaml:"tech"`
	Lib    *LibDoc    `yaml:"lib"`
	Libs   []LibDoc   `yaml:"libs"`
	Design *DesignDoc `yaml:"design"`
}

// TechDoc describes a technology.
type TechDoc struct {
	Name         string     `yaml:"name"`
	DbuPerMicron int        `yaml:"dbu_per_micron"`
	Layers       []LayerDoc `yaml:"layers"`
	Vias         []ViaDoc   `yaml:"vias"`
}

// LayerDoc describes a layer. Layers are stacked in declaration order
// unless Upper/Lower name them explicitly. A detached layer can be
// referenced by shapes but is not part of the technology's layer list.
type LayerDoc struct {
	ID        int           `yaml:"id"`
	Name      string        `yaml:"name"`
	Alias     string        `yaml:"alias"`
	Type      odb.LayerType `yaml:"type"`
	Direction odb.LayerDir  `yaml:"direction"`
	Width     int           `yaml:"width"`
	Spacing   int           `yaml:"spacing"`
	Area      float64       `yaml:"area"`
	Upper     string        `yaml:"upper"`
	Lower     string        `yaml:"lower"`
	Detached  bool          `yaml:"detached"`
}

// ViaDoc describes a technology or block via.
type ViaDoc struct {
	ID     int      `yaml:"id"`
	Name   string   `yaml:"name"`
	Top    string   `yaml:"top"`
	Bottom string   `yaml:"bottom"`
	Cut    string   `yaml:"cut"`
	BBox   ShapeDoc `yaml:"bbox"`

	// Block-via classification flags; ignored for technology vias.
	IsBlock bool `yaml:"block_via"`
	IsTech  bool `yaml:"tech_via"`
}

// ShapeDoc is a rectangle with optional layer, via and shape class.
type ShapeDoc struct {
	Rect    odb.Rect          `yaml:"rect"`
	Layer   string            `yaml:"layer"`
	Via     string            `yaml:"via"`
	TechVia string            `yaml:"tech_via"`
	Shape   odb.WireShapeType `yaml:"shape"`
}

// LibDoc describes a cell library.
type LibDoc struct {
	Name    string      `yaml:"name"`
	Sites   []SiteDoc   `yaml:"sites"`
	Masters []MasterDoc `yaml:"masters"`
}

// SiteDoc describes a placement site.
type SiteDoc struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

// MasterDoc describes a library cell.
type MasterDoc struct {
	ID           int            `yaml:"id"`
	Name         string         `yaml:"name"`
	Type         odb.MasterType `yaml:"type"`
	Width        int            `yaml:"width"`
	Height       int            `yaml:"height"`
	Filler       bool           `yaml:"filler"`
	Placeable    bool           `yaml:"placeable"`
	Obstructions []ShapeDoc     `yaml:"obstructions"`
	Pins         []MTermDoc     `yaml:"pins"`
}

// MTermDoc describes a terminal definition and its shape groups.
type MTermDoc struct {
	Name   string       `yaml:"name"`
	IO     odb.IoType   `yaml:"io"`
	Signal odb.SigType  `yaml:"signal"`
	Shapes []ShapeGroup `yaml:"shapes"`
}

// ShapeGroup is one physical pin: a group of rectangles.
type ShapeGroup struct {
	Boxes []ShapeDoc `yaml:"boxes"`
}

// DesignDoc describes a placed and routed block.
type DesignDoc struct {
	Name      string     `yaml:"name"`
	Die       odb.Rect   `yaml:"die"`
	Core      odb.Rect   `yaml:"core"`
	BBox      *odb.Rect  `yaml:"bbox"`
	Vias      []ViaDoc   `yaml:"vias"`
	Instances []InstDoc  `yaml:"instances"`
	Pins      []BTermDoc `yaml:"pins"`
	Nets      []NetDoc   `yaml:"nets"`
	Rows      []RowDoc   `yaml:"rows"`
	Tracks    []GridDoc  `yaml:"tracks"`
	GCell     *GridDoc   `yaml:"gcell"`
}

// InstDoc describes a placed cell.
type InstDoc struct {
	ID       int        `yaml:"id"`
	Name     string     `yaml:"name"`
	Master   string     `yaml:"master"`
	Location odb.Point  `yaml:"location"`
	Origin   odb.Point  `yaml:"origin"`
	Orient   odb.Orient `yaml:"orient"`
	Placed   bool       `yaml:"placed"`
	BBox     *odb.Rect  `yaml:"bbox"`
	Halo     *odb.Rect  `yaml:"halo"`
}

// BTermDoc describes a block terminal.
type BTermDoc struct {
	ID      int          `yaml:"id"`
	Name    string       `yaml:"name"`
	IO      odb.IoType   `yaml:"io"`
	Signal  odb.SigType  `yaml:"signal"`
	Special bool         `yaml:"special"`
	Net     string       `yaml:"net"`
	Shapes  []ShapeGroup `yaml:"shapes"`
}

// ConnDoc connects an instance terminal to a net.
type ConnDoc struct {
	Inst    string `yaml:"inst"`
	Pin     string `yaml:"pin"`
	Special bool   `yaml:"special"`
}

// EdgeDoc is one stored routing edge.
type EdgeDoc struct {
	Type  odb.EdgeType `yaml:"type"`
	Rect  odb.Rect     `yaml:"rect"`
	Layer string       `yaml:"layer"`
	Via   string       `yaml:"via"`
}

// SWireDoc is a group of special-wire shapes.
type SWireDoc struct {
	Wires []ShapeDoc `yaml:"wires"`
}

// NetDoc describes a net.
type NetDoc struct {
	ID          int          `yaml:"id"`
	Name        string       `yaml:"name"`
	Special     bool         `yaml:"special"`
	WireType    odb.WireType `yaml:"wire_type"`
	Connections []ConnDoc    `yaml:"connections"`
	Wire        []EdgeDoc    `yaml:"wire"`
	SWires      []SWireDoc   `yaml:"swires"`
}

// RowDoc describes a placement row.
type RowDoc struct {
	ID        int        `yaml:"id"`
	Name      string     `yaml:"name"`
	Site      string     `yaml:"site"`
	Orient    odb.Orient `yaml:"orient"`
	Direction odb.RowDir `yaml:"direction"`
	Origin    odb.Point  `yaml:"origin"`
	Spacing   int        `yaml:"spacing"`
	BBox      odb.Rect   `yaml:"bbox"`
}

// GridDoc describes a track or gcell grid.
type GridDoc struct {
	ID        int               `yaml:"id"`
	Layer     string            `yaml:"layer"`
	X         []int             `yaml:"x"`
	Y         []int             `yaml:"y"`
	PatternsX []odb.GridPattern `yaml:"x_patterns"`
	PatternsY []odb.GridPattern `yaml:"y_patterns"`
}
