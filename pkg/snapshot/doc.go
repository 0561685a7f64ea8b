// Package snapshot flattens a layout database into a self-contained,
// pointer-linked Design that outlives the database.
//
// # Building
//
// [Materialize] (or [Builder.Build] with a custom logger) walks the
// database once per entity kind and creates exactly one snapshot entity per
// native object, keyed by native id. Shared shapes are deduplicated: all
// instances of a master point at one obstruction geometry, and pin shapes
// are cached per (master, pin). A second pass links instances, pins, nets
// and layers to each other.
//
// References that leave the snapshot (a layer the technology does not
// list, a via nothing registered) are logged at warn level, counted in
// [Stats.Unresolved] and left nil. The build only fails without a
// technology, without a block, or when a net's routing cannot be decoded.
//
// # Ownership
//
// Every entity is owned by exactly one pool of the Design; all other
// pointers to it are weak links. [Design.Release] walks the pools, frees
// each entity once and reports per-kind counts that match
// [Design.Allocated].
//
// # Export
//
// The live Design is cyclic. [Design.Compact] produces the id-stub form the
// browser viewer reads, and [WriteJSON] encodes it, optionally gzipped.
package snapshot
