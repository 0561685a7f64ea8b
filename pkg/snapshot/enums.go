package snapshot

import "github.com/matzehuels/layoutview/pkg/odb"

// The snapshot carries enumerated properties as small stable integer codes.
// Each translator below is total: a native value it does not recognize maps
// to the type's documented fallback, without logging or failing.

// =============================================================================
// Orientation
// =============================================================================

// Orientation is an instance or row placement orientation.
type Orientation int

const (
	OrientationR0 Orientation = iota
	OrientationR90
	OrientationR180
	OrientationR270
	OrientationMY
	OrientationMYR90
	OrientationMX
	OrientationMXR90
)

var orientationNames = [...]string{"R0", "R90", "R180", "R270", "MY", "MYR90", "MX", "MXR90"}

func (o Orientation) String() string {
	if o >= 0 && int(o) < len(orientationNames) {
		return orientationNames[o]
	}
	return "Unknown"
}

// translateOrient falls back to MX.
func translateOrient(o odb.Orient) Orientation {
	switch o {
	case odb.OrientR0:
		return OrientationR0
	case odb.OrientR90:
		return OrientationR90
	case odb.OrientR180:
		return OrientationR180
	case odb.OrientR270:
		return OrientationR270
	case odb.OrientMY:
		return OrientationMY
	case odb.OrientMYR90:
		return OrientationMYR90
	case odb.OrientMX:
		return OrientationMX
	case odb.OrientMXR90:
		return OrientationMXR90
	default:
		return OrientationMX
	}
}

// =============================================================================
// Terminals
// =============================================================================

// IOType is a pin signal direction.
type IOType int

const (
	IOTypeInput IOType = iota
	IOTypeOutput
	IOTypeInout
	IOTypeFeedthru
)

var ioTypeNames = [...]string{"INPUT", "OUTPUT", "INOUT", "FEEDTHRU"}

func (t IOType) String() string {
	if t >= 0 && int(t) < len(ioTypeNames) {
		return ioTypeNames[t]
	}
	return "Unknown"
}

// translateIO falls back to INPUT.
func translateIO(t odb.IoType) IOType {
	switch t {
	case odb.IoOutput:
		return IOTypeOutput
	case odb.IoInout:
		return IOTypeInout
	case odb.IoFeedthru:
		return IOTypeFeedthru
	default:
		return IOTypeInput
	}
}

// SignalType is a pin signal class.
type SignalType int

const (
	SignalTypeSignal SignalType = iota
	SignalTypePower
	SignalTypeGround
	SignalTypeClock
	SignalTypeAnalog
	SignalTypeReset
	SignalTypeScan
	SignalTypeTieoff
)

var signalTypeNames = [...]string{"SIGNAL", "POWER", "GROUND", "CLOCK", "ANALOG", "RESET", "SCAN", "TIEOFF"}

func (t SignalType) String() string {
	if t >= 0 && int(t) < len(signalTypeNames) {
		return signalTypeNames[t]
	}
	return "Unknown"
}

// translateSignal falls back to SIGNAL.
func translateSignal(t odb.SigType) SignalType {
	switch t {
	case odb.SigPower:
		return SignalTypePower
	case odb.SigGround:
		return SignalTypeGround
	case odb.SigClock:
		return SignalTypeClock
	case odb.SigAnalog:
		return SignalTypeAnalog
	case odb.SigReset:
		return SignalTypeReset
	case odb.SigScan:
		return SignalTypeScan
	case odb.SigTieoff:
		return SignalTypeTieoff
	default:
		return SignalTypeSignal
	}
}

// =============================================================================
// Wiring
// =============================================================================

// WireType is the routing status of a net.
type WireType int

const (
	WireTypeNone WireType = iota
	WireTypeCover
	WireTypeFixed
	WireTypeRouted
	WireTypeShield
	WireTypeNoShield
)

var wireTypeNames = [...]string{"NONE", "COVER", "FIXED", "ROUTED", "SHIELD", "NOSHIELD"}

func (t WireType) String() string {
	if t >= 0 && int(t) < len(wireTypeNames) {
		return wireTypeNames[t]
	}
	return "Unknown"
}

// translateWire falls back to NONE.
func translateWire(t odb.WireType) WireType {
	switch t {
	case odb.WireCover:
		return WireTypeCover
	case odb.WireFixed:
		return WireTypeFixed
	case odb.WireRouted:
		return WireTypeRouted
	case odb.WireShield:
		return WireTypeShield
	case odb.WireNoShield:
		return WireTypeNoShield
	default:
		return WireTypeNone
	}
}

// WireShapeType classifies a special-wire shape.
type WireShapeType int

// ShapeTypeUnset is carried by rects that are not special-wire shapes.
const ShapeTypeUnset WireShapeType = -1

const (
	ShapeTypeNone WireShapeType = iota
	ShapeTypeRing
	ShapeTypePadRing
	ShapeTypeBlockRing
	ShapeTypeStripe
	ShapeTypeFollowPin
	ShapeTypeIOWire
	ShapeTypeCoreWire
	ShapeTypeBlockWire
	ShapeTypeBlockageWire
	ShapeTypeFillWire
	ShapeTypeDRCFill
)

var shapeTypeNames = [...]string{
	"NONE", "RING", "PADRING", "BLOCKRING", "STRIPE", "FOLLOWPIN",
	"IOWIRE", "COREWIRE", "BLOCKWIRE", "BLOCKAGEWIRE", "FILLWIRE", "DRCFILL",
}

func (t WireShapeType) String() string {
	if t >= 0 && int(t) < len(shapeTypeNames) {
		return shapeTypeNames[t]
	}
	return "Unset"
}

// translateShape falls back to NONE.
func translateShape(t odb.WireShapeType) WireShapeType {
	switch t {
	case odb.ShapeRing:
		return ShapeTypeRing
	case odb.ShapePadRing:
		return ShapeTypePadRing
	case odb.ShapeBlockRing:
		return ShapeTypeBlockRing
	case odb.ShapeStripe:
		return ShapeTypeStripe
	case odb.ShapeFollowPin:
		return ShapeTypeFollowPin
	case odb.ShapeIOWire:
		return ShapeTypeIOWire
	case odb.ShapeCoreWire:
		return ShapeTypeCoreWire
	case odb.ShapeBlockWire:
		return ShapeTypeBlockWire
	case odb.ShapeBlockageWire:
		return ShapeTypeBlockageWire
	case odb.ShapeFillWire:
		return ShapeTypeFillWire
	case odb.ShapeDRCFill:
		return ShapeTypeDRCFill
	default:
		return ShapeTypeNone
	}
}

// EdgeType is the kind of a routing edge.
type EdgeType int

const (
	EdgeTypeSegment EdgeType = iota
	EdgeTypeTechVia
	EdgeTypeVia
	EdgeTypeShort
	EdgeTypeVWire
)

var edgeTypeNames = [...]string{"SEGMENT", "TECH_VIA", "VIA", "SHORT", "VWIRE"}

func (t EdgeType) String() string {
	if t >= 0 && int(t) < len(edgeTypeNames) {
		return edgeTypeNames[t]
	}
	return "Unknown"
}

// translateEdge falls back to SEGMENT.
func translateEdge(t odb.EdgeType) EdgeType {
	switch t {
	case odb.EdgeTechVia:
		return EdgeTypeTechVia
	case odb.EdgeVia:
		return EdgeTypeVia
	case odb.EdgeShort:
		return EdgeTypeShort
	case odb.EdgeVWire:
		return EdgeTypeVWire
	default:
		return EdgeTypeSegment
	}
}

// =============================================================================
// Cells and Layers
// =============================================================================

// MasterType is the coarse class of a library cell.
type MasterType int

const (
	MasterTypeBlock MasterType = iota
	MasterTypeCore
	MasterTypePad
	MasterTypeEndCap
)

var masterTypeNames = [...]string{"BLOCK", "CORE", "PAD", "ENDCAP"}

func (t MasterType) String() string {
	if t >= 0 && int(t) < len(masterTypeNames) {
		return masterTypeNames[t]
	}
	return "Unknown"
}

// translateMaster collapses LEF subclasses onto their class and falls back
// to CORE for classes without a code (COVER, RING).
func translateMaster(t odb.MasterType) MasterType {
	switch {
	case t.IsBlock():
		return MasterTypeBlock
	case t.IsCore():
		return MasterTypeCore
	case t.IsEndCap():
		return MasterTypeEndCap
	case t.IsPad():
		return MasterTypePad
	default:
		return MasterTypeCore
	}
}

// LayerType is a technology layer class.
type LayerType int

const (
	LayerTypeRouting LayerType = iota
	LayerTypeCut
	LayerTypeMasterslice
	LayerTypeOverlap
	LayerTypeImplant
	LayerTypeNone
)

var layerTypeNames = [...]string{"ROUTING", "CUT", "MASTERSLICE", "OVERLAP", "IMPLANT", "NONE"}

func (t LayerType) String() string {
	if t >= 0 && int(t) < len(layerTypeNames) {
		return layerTypeNames[t]
	}
	return "NONE"
}

// translateLayerType falls back to NONE.
func translateLayerType(t odb.LayerType) LayerType {
	switch t {
	case odb.LayerRouting:
		return LayerTypeRouting
	case odb.LayerCut:
		return LayerTypeCut
	case odb.LayerMasterslice:
		return LayerTypeMasterslice
	case odb.LayerOverlap:
		return LayerTypeOverlap
	case odb.LayerImplant:
		return LayerTypeImplant
	default:
		return LayerTypeNone
	}
}

// Direction is a layer's preferred routing direction or a row direction.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionHorizontal
	DirectionVertical
)

var directionNames = [...]string{"NONE", "HORIZONTAL", "VERTICAL"}

func (d Direction) String() string {
	if d >= 0 && int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "NONE"
}

// translateLayerDir falls back to NONE.
func translateLayerDir(d odb.LayerDir) Direction {
	switch d {
	case odb.DirHorizontal:
		return DirectionHorizontal
	case odb.DirVertical:
		return DirectionVertical
	default:
		return DirectionNone
	}
}

// translateRowDir falls back to NONE.
func translateRowDir(d odb.RowDir) Direction {
	switch d {
	case odb.RowHorizontal:
		return DirectionHorizontal
	case odb.RowVertical:
		return DirectionVertical
	default:
		return DirectionNone
	}
}
