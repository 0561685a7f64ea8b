package odb

// =============================================================================
// Shapes
// =============================================================================

// Box is a stored shape: a rectangle that may sit on a layer and may be the
// footprint of a via.
type Box interface {
	ID() int
	Rect() Rect
	// TechLayer returns the layer the shape is drawn on, or nil.
	TechLayer() TechLayer
	// TechVia returns the technology via the shape instantiates, or nil.
	TechVia() TechVia
	// BlockVia returns the block via the shape instantiates, or nil.
	BlockVia() Via
}

// SBox is a special-wire shape.
type SBox interface {
	Box
	WireShapeType() WireShapeType
}

// =============================================================================
// Technology
// =============================================================================

// TechLayer is a fabrication layer.
type TechLayer interface {
	ID() int
	Name() string
	// Alias returns the layer's alternate name, or "".
	Alias() string
	Width() int
	Spacing() int
	Area() float64
	Type() LayerType
	Direction() LayerDir
	// Upper returns the next layer up the stack, or nil.
	Upper() TechLayer
	// Lower returns the next layer down the stack, or nil.
	Lower() TechLayer
}

// ViaDef holds what technology and block vias have in common.
type ViaDef interface {
	ID() int
	Name() string
	BBox() Box
	Top() TechLayer
	Bottom() TechLayer
	// CutLayer returns the cut layer from the via's generation
	// parameters. It is nil when the via has no parameters.
	CutLayer() TechLayer
}

// TechVia is a via defined by the technology.
type TechVia interface {
	ViaDef
}

// Via is a via defined in a block.
type Via interface {
	ViaDef
	// IsBlockVia reports whether the via references another block's via.
	IsBlockVia() bool
	// IsTechVia reports whether the via is backed by a technology via.
	IsTechVia() bool
}

// Tech is the technology of a database.
type Tech interface {
	Name() string
	DbUnitsPerMicron() int
	Layers() []TechLayer
}

// =============================================================================
// Libraries
// =============================================================================

// Site is a placement site.
type Site interface {
	ID() int
	Name() string
}

// Master is a library cell.
type Master interface {
	ID() int
	Name() string
	Width() int
	Height() int
	Type() MasterType
	IsFiller() bool
	IsCoreAutoPlaceable() bool
	Obstructions() []Box
	MTerms() []MTerm
}

// MTerm is a terminal definition on a master.
type MTerm interface {
	ID() int
	Name() string
	Master() Master
	MPins() []MPin
}

// MPin is one physical shape group of a terminal definition.
type MPin interface {
	ID() int
	Geometry() []Box
}

// Lib is a cell library.
type Lib interface {
	Name() string
	Sites() []Site
	Masters() []Master
}

// =============================================================================
// Block
// =============================================================================

// Inst is a placed cell.
type Inst interface {
	ID() int
	Name() string
	Location() Point
	Origin() Point
	Orient() Orient
	Master() Master
	IsPlaced() bool
	BBox() Box
	// Halo returns the placement halo, or nil.
	Halo() Box
	ITerms() []ITerm
}

// ITerm is a terminal of an instance.
type ITerm interface {
	ID() int
	MTerm() MTerm
	Inst() Inst
	// Net returns the connected net, or nil.
	Net() Net
	IoType() IoType
	SigType() SigType
	AvgXY() Point
	IsSpecial() bool
}

// BTerm is a terminal on the block boundary.
type BTerm interface {
	ID() int
	Name() string
	IoType() IoType
	SigType() SigType
	IsSpecial() bool
	// Net returns the connected net, or nil.
	Net() Net
	BPins() []BPin
}

// BPin is one physical pin of a block terminal.
type BPin interface {
	ID() int
	Boxes() []Box
}

// Wire is a net's encoded routing. Only a [Decoder] looks inside.
type Wire interface {
	ID() int
}

// SWire is a group of special-wire shapes on a net.
type SWire interface {
	ID() int
	Wires() []SBox
}

// Net is a connectivity group.
type Net interface {
	ID() int
	Name() string
	IsSpecial() bool
	WireType() WireType
	// Wire returns the net's routing, or nil if the net is unrouted.
	Wire() Wire
	SWires() []SWire
	ITerms() []ITerm
	BTerms() []BTerm
}

// Row is a placement row.
type Row interface {
	ID() int
	Name() string
	Site() Site
	Orient() Orient
	Direction() RowDir
	Origin() Point
	Spacing() int
	BBox() Rect
}

// Grid is a regular or patterned coordinate grid.
type Grid interface {
	ID() int
	GridX() []int
	GridY() []int
	PatternsX() []GridPattern
	PatternsY() []GridPattern
}

// TrackGrid is a routing track grid on one layer.
type TrackGrid interface {
	Grid
	TechLayer() TechLayer
}

// Block is the top-level design of a chip.
type Block interface {
	Name() string
	Insts() []Inst
	ITerms() []ITerm
	BTerms() []BTerm
	Nets() []Net
	Vias() []Via
	TrackGrids() []TrackGrid
	// GCellGrid returns the global-routing cell grid, or nil.
	GCellGrid() Grid
	Rows() []Row
	BBox() Box
	DieArea() Rect
	CoreArea() Rect
}

// Chip holds a loaded design.
type Chip interface {
	Block() Block
}

// =============================================================================
// Routing Decoder
// =============================================================================

// RouteEdge is one decoded edge of a net's routing tree.
type RouteEdge interface {
	Type() EdgeType
	BBox() Rect
	// SourceLayer returns the layer of the edge's source terminal, or nil.
	SourceLayer() TechLayer
	// Via returns the block via of a VIA edge, or nil.
	Via() Via
	// TechVia returns the technology via of a TECH_VIA edge, or nil.
	TechVia() TechVia
}

// Decoder linearizes a wire into an ordered sequence of edges.
// The order is a physical traversal order and is preserved by consumers.
type Decoder interface {
	Decode(w Wire) ([]RouteEdge, error)
}

// =============================================================================
// Database
// =============================================================================

// Database is an open layout database handle.
type Database interface {
	// Tech returns the attached technology, or nil.
	Tech() Tech
	HasTech() bool
	Libs() []Lib
	// Chip returns the loaded design, or nil.
	Chip() Chip

	// DbuToMeters converts a distance in database units to meters.
	DbuToMeters(dist int) float64

	// ReadTech loads a technology file.
	ReadTech(path string) (Tech, error)
	// ReadLib loads a library file as a new library called name.
	ReadLib(name, path string) (Lib, error)
	// ReadTechAndLib loads a combined technology and library file.
	ReadTechAndLib(name, path string) (Lib, error)
	// ReadDesign loads a design file against the given libraries.
	ReadDesign(path string, libs []Lib) (Chip, error)

	Close() error
}

// Opener creates a new, empty database.
type Opener func() (Database, error)
