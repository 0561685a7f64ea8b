// Package nodelink renders parts of a layout snapshot as node-link
// diagrams.
//
// # Overview
//
// The viewer draws geometry; this package draws structure. Two diagrams
// are available:
//
//   - [LayerStackDOT]: the technology layers from bottom to top, with via
//     definitions as dashed edges between the layers they join
//   - [NetDOT]: the pins of one net, grouped by instance
//
// # Usage
//
// Convert a snapshot to DOT format, then render to SVG:
//
//	dot := nodelink.LayerStackDOT(design, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
