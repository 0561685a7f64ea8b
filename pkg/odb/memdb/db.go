// Package memdb is an in-memory layout database implementing the odb
// contract.
//
// Databases are populated from YAML interchange documents. A document may
// carry a technology, one or more libraries, and a design; the loaders read
// the section they are responsible for:
//
//	db := memdb.New()
//	if _, err := db.ReadTech("tech.yaml"); err != nil { ... }
//	lib, err := db.ReadLib("cells", "cells.yaml")
//	chip, err := db.ReadDesign("gcd.yaml", []odb.Lib{lib})
//
// Entity ids are assigned per kind in declaration order starting at 1,
// unless a document supplies an explicit id. Reusing an id within a kind is
// a load error.
package memdb

import (
	"os"

	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/layoutview/pkg/errors"
	"github.com/matzehuels/layoutview/pkg/odb"
)

// DB is an in-memory layout database. It is not safe for concurrent use.
type DB struct {
	tech     *tech
	layers   map[string]*layer
	techVias map[string]*techVia
	sites    map[string]*site
	masters  map[string]*master
	libs     []*lib
	chip     *chip
	ids      idSpace
}

var _ odb.Database = (*DB)(nil)

// New returns an empty database.
func New() *DB {
	return &DB{
		layers:   make(map[string]*layer),
		techVias: make(map[string]*techVia),
		sites:    make(map[string]*site),
		masters:  make(map[string]*master),
	}
}

// Open returns an empty database. It satisfies odb.Opener.
func Open() (odb.Database, error) {
	return New(), nil
}

// Load builds a database from documents applied in order. Within a
// document the technology is read first, then libraries, then the design;
// the design is resolved against every library loaded so far.
func Load(docs ...[]byte) (*DB, error) {
	db := New()
	for _, data := range docs {
		var doc Document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode document")
		}
		if doc.Tech != nil {
			if _, err := db.loadTech(doc.Tech); err != nil {
				return nil, err
			}
		}
		libs := doc.Libs
		if doc.Lib != nil {
			libs = append([]LibDoc{*doc.Lib}, libs...)
		}
		for i := range libs {
			if _, err := db.loadLib(libs[i].Name, &libs[i], errs.ErrCodeLEFParse); err != nil {
				return nil, err
			}
		}
		if doc.Design != nil {
			if _, err := db.loadDesign(doc.Design, db.Libs()); err != nil {
				return nil, err
			}
		}
	}
	return db, nil
}

// =============================================================================
// Queries
// =============================================================================

// Tech returns the attached technology, or nil.
func (db *DB) Tech() odb.Tech {
	if db.tech == nil {
		return nil
	}
	return db.tech
}

// HasTech reports whether a technology is attached.
func (db *DB) HasTech() bool { return db.tech != nil }

// Libs returns the loaded libraries in load order.
func (db *DB) Libs() []odb.Lib {
	out := make([]odb.Lib, len(db.libs))
	for i, l := range db.libs {
		out[i] = l
	}
	return out
}

// Chip returns the loaded design, or nil.
func (db *DB) Chip() odb.Chip {
	if db.chip == nil {
		return nil
	}
	return db.chip
}

// DbuToMeters converts a distance in database units to meters. It
// returns 0 when no technology is attached.
func (db *DB) DbuToMeters(dist int) float64 {
	if db.tech == nil || db.tech.dbu == 0 {
		return 0
	}
	return float64(dist) / (float64(db.tech.dbu) * 1e6)
}

// Close drops all loaded content.
func (db *DB) Close() error {
	*db = *New()
	return nil
}

// =============================================================================
// File Loaders
// =============================================================================

// ReadTech loads the technology section of the file at path.
func (db *DB) ReadTech(path string) (odb.Tech, error) {
	doc, err := readDocument(path, errs.ErrCodeTechParse)
	if err != nil {
		return nil, err
	}
	if doc.Tech == nil {
		return nil, errs.New(errs.ErrCodeTechParse, "%s: no technology section", path)
	}
	return db.loadTech(doc.Tech)
}

// ReadLib loads the library section of the file at path as a new library
// called name. A technology must already be attached.
func (db *DB) ReadLib(name, path string) (odb.Lib, error) {
	if db.tech == nil {
		return nil, errs.New(errs.ErrCodeNoTechnology, "cannot read library %s without a technology", name)
	}
	doc, err := readDocument(path, errs.ErrCodeLEFParse)
	if err != nil {
		return nil, err
	}
	if doc.Lib == nil {
		return nil, errs.New(errs.ErrCodeLEFParse, "%s: no library section", path)
	}
	return db.loadLib(name, doc.Lib, errs.ErrCodeLEFParse)
}

// ReadTechAndLib loads a file carrying both a technology and a library.
func (db *DB) ReadTechAndLib(name, path string) (odb.Lib, error) {
	doc, err := readDocument(path, errs.ErrCodeLEFParse)
	if err != nil {
		return nil, err
	}
	if doc.Tech == nil || doc.Lib == nil {
		return nil, errs.New(errs.ErrCodeLEFParse, "%s: technology and library sections are required", path)
	}
	if _, err := db.loadTech(doc.Tech); err != nil {
		return nil, err
	}
	return db.loadLib(name, doc.Lib, errs.ErrCodeLEFParse)
}

// ReadDesign loads the design section of the file at path. Masters are
// resolved against libs only. The new chip replaces any previous one.
func (db *DB) ReadDesign(path string, libs []odb.Lib) (odb.Chip, error) {
	if db.tech == nil {
		return nil, errs.New(errs.ErrCodeNoTechnology, "cannot read design %s without a technology", path)
	}
	doc, err := readDocument(path, errs.ErrCodeDEFParse)
	if err != nil {
		return nil, err
	}
	if doc.Design == nil {
		return nil, errs.New(errs.ErrCodeDEFParse, "%s: no design section", path)
	}
	return db.loadDesign(doc.Design, libs)
}

func readDocument(path string, code errs.Code) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "read %s", path)
		}
		return nil, errs.Wrap(code, err, "read %s", path)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(code, err, "decode %s", path)
	}
	return &doc, nil
}

// =============================================================================
// Id Assignment
// =============================================================================

// counter hands out ids for one entity kind. Explicit ids are honored and
// advance the counter so later implicit ids stay above them; an id is never
// handed out twice.
type counter struct {
	last int
	used map[int]struct{}
}

func (c *counter) next() int {
	c.last++
	c.mark(c.last)
	return c.last
}

// take claims explicit, or the next free id when explicit is not positive.
// It reports false when explicit is already in use.
func (c *counter) take(explicit int) (int, bool) {
	if explicit <= 0 {
		return c.next(), true
	}
	if _, dup := c.used[explicit]; dup {
		return explicit, false
	}
	c.mark(explicit)
	if explicit > c.last {
		c.last = explicit
	}
	return explicit, true
}

func (c *counter) mark(id int) {
	if c.used == nil {
		c.used = make(map[int]struct{})
	}
	c.used[id] = struct{}{}
}

// idSpace holds one counter per entity kind. Technology and block vias
// share a counter so their ids never collide.
type idSpace struct {
	layer, via, box, site, master, mterm, mpin counter
	inst, iterm, bterm, bpin, net, wire, swire counter
	row, grid                                  counter
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}
