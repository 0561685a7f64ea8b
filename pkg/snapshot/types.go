package snapshot

import "github.com/matzehuels/layoutview/pkg/odb"

// Snapshot entities mirror the viewer's wire format: field names are the
// JSON keys. Pointer fields are either owned (documented as such) or weak
// links into one of the Design's owning pools.
//
// InComplete marks an id-only stub produced by Compact.

// Point is a location in database units.
type Point struct {
	X int
	Y int
}

// Rect is an axis-aligned box in database units. Every Rect is owned by
// the Design's rect pool; entities that hold one merely reference it.
type Rect struct {
	ID         int
	XMin       int
	YMin       int
	XMax       int
	YMax       int
	ShapeType  WireShapeType
	Layer      *Layer
	Via        *Via
	InComplete bool

	native odb.Box
}

// Geometry is a group of rects. Obstruction and pin geometries are shared
// by every instance of the same master.
type Geometry struct {
	ID         int
	Boxes      []*Rect
	InComplete bool
}

// Edge is one routing edge of a net, in the decoder's traversal order.
type Edge struct {
	Type  EdgeType
	Rect  *Rect
	Via   *Via
	Layer *Layer
}

// Instance is a placed cell.
type Instance struct {
	ID           int
	Name         string    `json:",omitempty"`
	Location     *Point    `json:",omitempty"`
	Origin       *Point    `json:",omitempty"`
	Orientation  Orientation
	Master       string    `json:",omitempty"`
	Pins         []*Pin    `json:",omitempty"`
	IsPlaced     bool
	BoundingBox  *Rect     `json:",omitempty"`
	Halo         *Rect     `json:",omitempty"`
	IsFiller     bool
	MasterType   MasterType
	Obstructions *Geometry `json:",omitempty"`
	InComplete   bool

	native odb.Inst
}

// Pin is an instance terminal or a block terminal.
type Pin struct {
	ID         int
	Name       string      `json:",omitempty"`
	Instance   *Instance   `json:",omitempty"`
	Net        *Net        `json:",omitempty"`
	Direction  IOType
	Location   *Point      `json:",omitempty"`
	Geometries []*Geometry `json:",omitempty"`
	SignalType SignalType
	IsBlock    bool
	IsSpecial  bool
	InComplete bool

	iterm odb.ITerm
	bterm odb.BTerm
}

// Net is a connectivity group.
type Net struct {
	ID           int
	Name         string  `json:",omitempty"`
	IsSpecial    bool
	IsRouted     bool
	WireType     WireType
	Pins         []*Pin  `json:",omitempty"`
	Edges        []*Edge `json:",omitempty"`
	SpecialBoxes []*Geometry
	InComplete   bool

	native odb.Net
}

// Layer is a technology layer.
type Layer struct {
	ID         int
	Name       string `json:",omitempty"`
	Alias      string `json:",omitempty"`
	Width      int
	Spacing    int
	Area       float64
	Type       LayerType
	Direction  Direction
	UpperLayer *Layer `json:",omitempty"`
	LowerLayer *Layer `json:",omitempty"`
	InComplete bool

	native odb.TechLayer
}

// Via is a via definition or a via placed by routing.
type Via struct {
	ID          int
	Name        string `json:",omitempty"`
	Rect        *Rect  `json:",omitempty"`
	TopLayer    *Layer `json:",omitempty"`
	CutLayer    *Layer `json:",omitempty"`
	BottomLayer *Layer `json:",omitempty"`
	IsBlock     bool
	IsTech      bool
	InComplete  bool
}

// Site is a placement site.
type Site struct {
	ID         int
	Name       string `json:",omitempty"`
	InComplete bool
}

// Grid is a track grid or the gcell grid. Both the explicit coordinates
// and the pattern columns are kept as the database reports them; they are
// not cross-checked.
type Grid struct {
	ID                     int
	Layer                  *Layer `json:",omitempty"`
	GridX                  []int
	GridY                  []int
	GridXPatternOrigins    []int
	GridXPatternLineCounts []int
	GridXPatternSteps      []int
	GridYPatternOrigins    []int
	GridYPatternLineCounts []int
	GridYPatternSteps      []int
	InComplete             bool
}

// Row is a placement row.
type Row struct {
	ID          int
	Name        string `json:",omitempty"`
	Site        *Site  `json:",omitempty"`
	Direction   Direction
	Orientation Orientation
	OriginX     int
	OriginY     int
	Spacing     int
	BoundingBox *Rect
	InComplete  bool
}

// =============================================================================
// Design
// =============================================================================

// Design is a flattened, self-contained layout snapshot. It is immutable
// once built and must be released with Release when no longer needed.
type Design struct {
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
	GCell          *Grid
	Geometries     []*Geometry

	// Stats describes the build.
	Stats Stats `json:"-"`

	arena *arena
}

// Stats summarizes one build.
type Stats struct {
	// Unresolved counts references that could not be resolved and were
	// left nil. Each one was also logged.
	Unresolved int
	Rects      int
	Geometries int
}

// Rects returns the rect pool in id order.
func (d *Design) Rects() []*Rect {
	if d == nil || d.arena == nil {
		return nil
	}
	return d.arena.rects
}

// Allocated reports how many entities of each kind the build allocated.
func (d *Design) Allocated() Counts {
	if d == nil || d.arena == nil {
		return Counts{}
	}
	return d.arena.allocated
}
