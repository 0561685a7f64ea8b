// Package pkg provides the core libraries of layoutview, a viewer backend
// for placed and routed chip layouts.
//
// # Overview
//
// layoutview loads a design from LEF and DEF files, flattens the layout
// database into a self-contained snapshot and serializes it as the compact
// JSON document the browser viewer draws. The pkg directory is organized
// into these areas:
//
//  1. [odb] - The layout database contract and its in-memory implementation
//  2. [snapshot] - Flattening, linking, compaction and export
//  3. [layoutfile] - LEF/DEF file sets and header classification
//  4. [pipeline] - Orchestration (validate → load → snapshot → encode → cache)
//  5. [cache] - File, Redis and null snapshot caches
//  6. [render/nodelink] - Layer stack and net diagrams via Graphviz
//  7. [observability] - Pipeline, cache and server hooks (Prometheus)
//  8. [errors] - Coded errors and input validation
//
// # Architecture
//
// The typical data flow:
//
//	LEF (tech) + LEF (libs) + DEF
//	         ↓
//	    [layoutfile] package (classify and validate the file set)
//	         ↓
//	    [odb/memdb] package (parse into a layout database)
//	         ↓
//	    [snapshot] package (flatten, link, compact)
//	         ↓
//	    JSON (optionally gzip) → cache → viewer
//
// # Quick Start
//
// Build the viewer JSON for a design:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/layoutview/pkg/cache"
//	    "github.com/matzehuels/layoutview/pkg/layoutfile"
//	    "github.com/matzehuels/layoutview/pkg/pipeline"
//	)
//
//	var files layoutfile.DesignFiles
//	files.Add(layoutfile.DesignFile{Type: layoutfile.TypeLEF, FilePath: "tech.lef", IsTech: true})
//	files.Add(layoutfile.DesignFile{Type: layoutfile.TypeLEF, FilePath: "cells.lef", IsLibrary: true})
//	files.Add(layoutfile.DesignFile{Type: layoutfile.TypeDEF, FilePath: "top.def"})
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil, nil, nil)
//	defer runner.Close()
//	res, err := runner.Execute(context.Background(), pipeline.Options{Files: files})
//
// The layoutview command line tool (cmd/layoutview) and the upload service
// (internal/server) are thin layers over [pipeline.Runner].
package pkg
