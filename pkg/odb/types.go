package odb

import "strings"

// =============================================================================
// Geometry Values
// =============================================================================

// Point is a location in database units.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Rect is an axis-aligned rectangle in database units.
type Rect struct {
	XMin int `yaml:"xmin"`
	YMin int `yaml:"ymin"`
	XMax int `yaml:"xmax"`
	YMax int `yaml:"ymax"`
}

// Dx returns the rectangle width.
func (r Rect) Dx() int { return r.XMax - r.XMin }

// Dy returns the rectangle height.
func (r Rect) Dy() int { return r.YMax - r.YMin }

// GridPattern describes LineCount lines starting at Origin, Step apart.
type GridPattern struct {
	Origin    int `yaml:"origin"`
	LineCount int `yaml:"count"`
	Step      int `yaml:"step"`
}

// =============================================================================
// Native Enums
// =============================================================================

// Orient is an instance or row placement orientation.
type Orient string

const (
	OrientR0    Orient = "R0"
	OrientR90   Orient = "R90"
	OrientR180  Orient = "R180"
	OrientR270  Orient = "R270"
	OrientMY    Orient = "MY"
	OrientMYR90 Orient = "MYR90"
	OrientMX    Orient = "MX"
	OrientMXR90 Orient = "MXR90"
)

// IoType is a terminal signal direction.
type IoType string

const (
	IoInput    IoType = "INPUT"
	IoOutput   IoType = "OUTPUT"
	IoInout    IoType = "INOUT"
	IoFeedthru IoType = "FEEDTHRU"
)

// SigType is a terminal or net signal class.
type SigType string

const (
	SigSignal SigType = "SIGNAL"
	SigPower  SigType = "POWER"
	SigGround SigType = "GROUND"
	SigClock  SigType = "CLOCK"
	SigAnalog SigType = "ANALOG"
	SigReset  SigType = "RESET"
	SigScan   SigType = "SCAN"
	SigTieoff SigType = "TIEOFF"
)

// WireType is the routing status of a net.
type WireType string

const (
	WireNone     WireType = "NONE"
	WireCover    WireType = "COVER"
	WireFixed    WireType = "FIXED"
	WireRouted   WireType = "ROUTED"
	WireShield   WireType = "SHIELD"
	WireNoShield WireType = "NOSHIELD"
)

// WireShapeType classifies a special-wire shape.
type WireShapeType string

const (
	ShapeNone         WireShapeType = "NONE"
	ShapeRing         WireShapeType = "RING"
	ShapePadRing      WireShapeType = "PADRING"
	ShapeBlockRing    WireShapeType = "BLOCKRING"
	ShapeStripe       WireShapeType = "STRIPE"
	ShapeFollowPin    WireShapeType = "FOLLOWPIN"
	ShapeIOWire       WireShapeType = "IOWIRE"
	ShapeCoreWire     WireShapeType = "COREWIRE"
	ShapeBlockWire    WireShapeType = "BLOCKWIRE"
	ShapeBlockageWire WireShapeType = "BLOCKAGEWIRE"
	ShapeFillWire     WireShapeType = "FILLWIRE"
	ShapeDRCFill      WireShapeType = "DRCFILL"
)

// MasterType is a LEF macro class, optionally with its subclass
// (e.g. "CORE_TIEHIGH", "PAD_INPUT", "ENDCAP_PRE").
type MasterType string

const (
	MasterCore   MasterType = "CORE"
	MasterBlock  MasterType = "BLOCK"
	MasterPad    MasterType = "PAD"
	MasterEndCap MasterType = "ENDCAP"
	MasterCover  MasterType = "COVER"
	MasterRing   MasterType = "RING"
)

func (t MasterType) is(class MasterType) bool {
	s := string(t)
	return s == string(class) || strings.HasPrefix(s, string(class)+"_")
}

// IsBlock reports whether t is BLOCK or one of its subclasses.
func (t MasterType) IsBlock() bool { return t.is(MasterBlock) }

// IsCore reports whether t is CORE or one of its subclasses.
func (t MasterType) IsCore() bool { return t.is(MasterCore) }

// IsPad reports whether t is PAD or one of its subclasses.
func (t MasterType) IsPad() bool { return t.is(MasterPad) }

// IsEndCap reports whether t is ENDCAP or one of its subclasses.
func (t MasterType) IsEndCap() bool { return t.is(MasterEndCap) }

// LayerType is a technology layer class.
type LayerType string

const (
	LayerRouting     LayerType = "ROUTING"
	LayerCut         LayerType = "CUT"
	LayerMasterslice LayerType = "MASTERSLICE"
	LayerOverlap     LayerType = "OVERLAP"
	LayerImplant     LayerType = "IMPLANT"
	LayerNone        LayerType = "NONE"
)

// LayerDir is a preferred routing direction.
type LayerDir string

const (
	DirNone       LayerDir = "NONE"
	DirHorizontal LayerDir = "HORIZONTAL"
	DirVertical   LayerDir = "VERTICAL"
)

// RowDir is a placement row direction.
type RowDir string

const (
	RowHorizontal RowDir = "HORIZONTAL"
	RowVertical   RowDir = "VERTICAL"
)

// EdgeType is the kind of a decoded routing edge.
type EdgeType string

const (
	EdgeSegment EdgeType = "SEGMENT"
	EdgeTechVia EdgeType = "TECH_VIA"
	EdgeVia     EdgeType = "VIA"
	EdgeShort   EdgeType = "SHORT"
	EdgeVWire   EdgeType = "VWIRE"
)
