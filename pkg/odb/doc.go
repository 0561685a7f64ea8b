// Package odb defines the contract layoutview consumes from a layout database.
//
// A layout database owns the physical design of a chip: the technology
// (layers, vias, units), the cell libraries (masters, sites) and the placed
// and routed block (instances, pins, nets, rows, grids). This package does
// not implement one. It only names the typed collections, accessors and
// loaders the flattening engine in [snapshot] reads from.
//
// # Identity
//
// Every entity exposes a stable integer ID. IDs are unique per entity kind
// within one database, which is what the flattener keys its dedup tables on.
//
// # Enums
//
// Native enumerated properties are string types spelled the way the
// database spells them (e.g. [Orient] "MXR90", [SigType] "POWER"). Values
// outside the documented set are legal; consumers decide how to map them.
//
// # Implementations
//
//   - [memdb]: in-memory database loaded from a YAML interchange form
//
// [snapshot]: https://pkg.go.dev/github.com/matzehuels/layoutview/pkg/snapshot
// [memdb]: https://pkg.go.dev/github.com/matzehuels/layoutview/pkg/odb/memdb
package odb
