// Package pipeline turns an uploaded design into viewer JSON.
//
// This package implements the load → materialize → export pipeline shared
// by the CLI and the HTTP service, so both report the same errors and hit
// the same cache.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read the LEF files (by classification) and the DEF file into a
//     fresh layout database
//  2. Materialize: flatten the database into a [snapshot.Design]
//  3. Export: compact the snapshot and encode it as (optionally gzipped) JSON
//
// Encoded results are cached under a key derived from the files' content.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, memdb.Open, memdb.Decoder{}, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Files:    files,
//	    Compress: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w.Write(result.JSON)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layoutview/pkg/layoutfile"
	"github.com/matzehuels/layoutview/pkg/snapshot"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the configuration of one pipeline run.
type Options struct {
	// Files is the design to load.
	Files *layoutfile.DesignFiles

	// Compress gzips the encoded JSON.
	Compress bool

	// Refresh skips the cache lookup. The new result is still cached.
	Refresh bool

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// JSON is the encoded compact snapshot.
	JSON []byte

	// Key is the cache key of JSON.
	Key string

	// CacheHit reports whether JSON came from the cache.
	CacheHit bool

	// Summary describes the design.
	Summary Summary

	// Stats contains timing and size information. Stage timings are zero
	// on a cache hit.
	Stats Stats
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LoadTime        time.Duration
	MaterializeTime time.Duration
	ExportTime      time.Duration
	Bytes           int

	// Allocated and Freed are the snapshot's per-kind entity counts.
	Allocated snapshot.Counts
	Freed     snapshot.Counts
}

// Summary is a short description of a design, small enough for a log line
// or a table.
type Summary struct {
	Design       string
	Layers       int
	Instances    int
	Nets         int
	InstancePins int
	BlockPins    int
	Rows         int
	CoreArea     float64
	DieArea      float64
	Utilization  float64
	// Unresolved is zero for summaries read back from the cache.
	Unresolved int
}

// Summarize describes a live snapshot.
func Summarize(d *snapshot.Design) Summary {
	return Summary{
		Design:       d.Name,
		Layers:       len(d.Layers),
		Instances:    len(d.Instances),
		Nets:         len(d.Nets),
		InstancePins: len(d.InstancePins),
		BlockPins:    len(d.BlockPins),
		Rows:         len(d.Rows),
		CoreArea:     d.CoreArea,
		DieArea:      d.DieArea,
		Utilization:  d.Utilization,
		Unresolved:   d.Stats.Unresolved,
	}
}

// SummarizeCompact describes an exported snapshot.
func SummarizeCompact(c *snapshot.CompactDesign) Summary {
	return Summary{
		Design:       c.Name,
		Layers:       len(c.Layers),
		Instances:    len(c.Instances),
		Nets:         len(c.Nets),
		InstancePins: len(c.InstancePins),
		BlockPins:    len(c.BlockPins),
		Rows:         len(c.Rows),
		CoreArea:     c.CoreArea,
		DieArea:      c.DieArea,
		Utilization:  c.Utilization,
	}
}
