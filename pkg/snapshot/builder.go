package snapshot

import (
	"errors"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutview/pkg/odb"
)

var (
	// ErrNoTech is returned when the database has no technology attached.
	ErrNoTech = errors.New("snapshot: database has no technology")

	// ErrNoBlock is returned when the database has no chip or the chip has
	// no block.
	ErrNoBlock = errors.New("snapshot: database has no design")

	// ErrNoDecoder is returned when a Builder has no route decoder.
	ErrNoDecoder = errors.New("snapshot: no route decoder")
)

// Builder flattens a layout database into a Design.
//
// A Builder holds configuration only; every Build call works on fresh
// state, so one Builder may serve many databases. The database must not be
// mutated while a build runs.
type Builder struct {
	Decoder odb.Decoder
	Logger  *log.Logger
}

// NewBuilder creates a builder. If logger is nil, log.Default() is used.
func NewBuilder(dec odb.Decoder, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{Decoder: dec, Logger: logger}
}

// Materialize builds a snapshot of db with the default logger.
func Materialize(db odb.Database, dec odb.Decoder) (*Design, error) {
	return NewBuilder(dec, nil).Build(db)
}

// Build flattens the technology, libraries and block of db into a new
// Design. References that cannot be resolved are logged, counted in
// Design.Stats.Unresolved and left nil; only a missing technology, a
// missing block or a decoder failure abort the build.
func (b *Builder) Build(db odb.Database) (*Design, error) {
	if db == nil || !db.HasTech() || db.Tech() == nil {
		return nil, ErrNoTech
	}
	chip := db.Chip()
	if chip == nil || chip.Block() == nil {
		return nil, ErrNoBlock
	}
	if b.Decoder == nil {
		return nil, ErrNoDecoder
	}
	logger := b.Logger
	if logger == nil {
		logger = log.Default()
	}

	f := newFlattener(db, b.Decoder, logger)
	d, err := f.run(chip.Block())
	if err != nil {
		f.arena.release()
		return nil, err
	}
	logger.Debug("snapshot built",
		"design", d.Name,
		"instances", len(d.Instances),
		"nets", len(d.Nets),
		"rects", d.Stats.Rects,
		"unresolved", d.Stats.Unresolved)
	return d, nil
}

// =============================================================================
// Flattener state
// =============================================================================

type pinShapeKey struct {
	master int
	mpin   int
}

// flattener carries the state of one build. The id tables map native ids
// to the single snapshot entity created for them.
type flattener struct {
	db     odb.Database
	dec    odb.Decoder
	logger *log.Logger
	arena  *arena
	design *Design

	lastRect int
	lastGeom int

	layers    map[int]*Layer
	instances map[int]*Instance
	instPins  map[int]*Pin
	blockPins map[int]*Pin
	nets      map[int]*Net
	vias      map[int]*Via
	sites     map[int]*Site

	obstructions map[int]*Geometry
	pinShapes    map[pinShapeKey]*Geometry
	routingVias  []*Via

	unresolved int
}

func newFlattener(db odb.Database, dec odb.Decoder, logger *log.Logger) *flattener {
	a := &arena{}
	return &flattener{
		db:           db,
		dec:          dec,
		logger:       logger,
		arena:        a,
		design:       &Design{arena: a},
		layers:       make(map[int]*Layer),
		instances:    make(map[int]*Instance),
		instPins:     make(map[int]*Pin),
		blockPins:    make(map[int]*Pin),
		nets:         make(map[int]*Net),
		vias:         make(map[int]*Via),
		sites:        make(map[int]*Site),
		obstructions: make(map[int]*Geometry),
		pinShapes:    make(map[pinShapeKey]*Geometry),
	}
}

func (f *flattener) rectID() int {
	f.lastRect++
	return f.lastRect
}

func (f *flattener) geometryID() int {
	f.lastGeom++
	return f.lastGeom
}

// miss records a reference that could not be resolved.
func (f *flattener) miss(msg string, keyvals ...any) {
	f.unresolved++
	f.logger.Warn(msg, keyvals...)
}

// run executes the passes in their fixed order. Rect and geometry ids are
// handed out as entities are created, so reordering passes changes ids.
func (f *flattener) run(block odb.Block) (*Design, error) {
	d := f.design
	d.Name = block.Name()

	f.materializeLayers(f.db.Tech().Layers())
	f.materializeInstances(block.Insts())
	f.materializeInstancePins(block.ITerms())
	f.materializeBlockPins(block.BTerms())
	f.materializeViaDefinitions(block.Vias())
	if err := f.materializeNets(block.Nets()); err != nil {
		return nil, err
	}
	f.materializeSites(f.db.Libs())
	f.materializeTracks(block.TrackGrids())
	f.materializeRows(block.Rows())
	f.materializeGCell(block.GCellGrid())

	f.link()
	f.computeMetrics(block)

	d.BoundingBox = f.arena.castBox(block.BBox(), f.rectID())
	d.Core = f.arena.castRect(block.CoreArea(), f.rectID())
	d.Die = f.arena.castRect(block.DieArea(), f.rectID())

	f.linkRects()
	f.assemble()
	return d, nil
}

// assemble fills the id-ordered collections and the build stats.
func (f *flattener) assemble() {
	d := f.design

	d.RoutingVias = f.routingVias
	sort.Slice(d.RoutingVias, func(i, j int) bool { return d.RoutingVias[i].ID < d.RoutingVias[j].ID })

	d.Sites = make([]*Site, 0, len(f.sites))
	for _, s := range f.sites {
		d.Sites = append(d.Sites, s)
	}
	sort.Slice(d.Sites, func(i, j int) bool { return d.Sites[i].ID < d.Sites[j].ID })

	// Geometry ids are assigned at allocation, so the pool is in id order.
	d.Geometries = append([]*Geometry(nil), f.arena.geometries...)

	d.Stats = Stats{
		Unresolved: f.unresolved,
		Rects:      len(f.arena.rects),
		Geometries: len(f.arena.geometries),
	}
}
