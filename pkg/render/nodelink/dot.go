package nodelink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/layoutview/pkg/snapshot"
)

// ErrNetNotFound is returned by NetDOT for an unknown net name.
var ErrNetNotFound = errors.New("net not found")

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes layer rules and routing counts in node labels.
	// When false, only names are shown.
	Detailed bool
}

// LayerStackDOT converts the layer stack of a design to Graphviz DOT. Layers
// are drawn bottom to top, linked by their upper/lower adjacency; every via
// definition adds a dashed edge from its bottom to its top layer.
func LayerStackDOT(d *snapshot.Design, opts Options) string {
	var buf bytes.Buffer
	writeHeader(&buf, "BT")

	for _, l := range d.Layers {
		attrs := []string{fmt.Sprintf("label=%q", layerLabel(l, opts.Detailed))}
		if fill := layerFill(l.Type); fill != "" {
			attrs = append(attrs, "fillcolor="+fill)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", layerNode(l), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, l := range d.Layers {
		if l.UpperLayer != nil {
			fmt.Fprintf(&buf, "  %q -> %q;\n", layerNode(l), layerNode(l.UpperLayer))
		}
	}
	for _, v := range d.ViaDefinitions {
		if v.BottomLayer == nil || v.TopLayer == nil {
			continue
		}
		label := v.Name
		if v.CutLayer != nil {
			label += " (" + v.CutLayer.Name + ")"
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, style=dashed];\n",
			layerNode(v.BottomLayer), layerNode(v.TopLayer), label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// NetDOT converts the connectivity of one net to Graphviz DOT. Instance
// pins are grouped by instance; block pins stand alone.
func NetDOT(d *snapshot.Design, netName string, opts Options) (string, error) {
	var net *snapshot.Net
	for _, n := range d.Nets {
		if n.Name == netName {
			net = n
			break
		}
	}
	if net == nil {
		return "", fmt.Errorf("%w: %s", ErrNetNotFound, netName)
	}

	var buf bytes.Buffer
	writeHeader(&buf, "LR")

	label := net.Name
	if opts.Detailed {
		label += fmt.Sprintf("\n%s, %d edges", net.WireType, len(net.Edges))
	}
	fmt.Fprintf(&buf, "  \"net\" [label=%q, shape=ellipse, fillcolor=lightyellow];\n\n", label)

	// Clusters keep the order in which instances first appear.
	var order []*snapshot.Instance
	byInst := make(map[*snapshot.Instance][]*snapshot.Pin)
	var loose []*snapshot.Pin
	for _, p := range net.Pins {
		if p.IsBlock || p.Instance == nil {
			loose = append(loose, p)
			continue
		}
		if _, ok := byInst[p.Instance]; !ok {
			order = append(order, p.Instance)
		}
		byInst[p.Instance] = append(byInst[p.Instance], p)
	}

	for _, inst := range order {
		fmt.Fprintf(&buf, "  subgraph \"cluster_inst_%d\" {\n", inst.ID)
		fmt.Fprintf(&buf, "    label=%q;\n", inst.Name+" ("+inst.Master+")")
		for _, p := range byInst[inst] {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", pinNode(p), p.Name)
		}
		buf.WriteString("  }\n")
	}
	for _, p := range loose {
		attrs := fmt.Sprintf("label=%q", p.Name)
		if p.IsBlock {
			attrs += ", shape=house"
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", pinNode(p), attrs)
	}

	buf.WriteString("\n")
	for _, p := range net.Pins {
		fmt.Fprintf(&buf, "  %q -> \"net\" [dir=none, tooltip=%q];\n", pinNode(p), p.Direction.String())
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func writeHeader(buf *bytes.Buffer, rankdir string) {
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
}

func layerNode(l *snapshot.Layer) string { return "layer_" + strconv.Itoa(l.ID) }

func pinNode(p *snapshot.Pin) string {
	if p.IsBlock {
		return "bpin_" + strconv.Itoa(p.ID)
	}
	return "ipin_" + strconv.Itoa(p.ID)
}

func layerLabel(l *snapshot.Layer, detailed bool) string {
	name := l.Name
	if l.Alias != "" {
		name += " / " + l.Alias
	}
	if !detailed {
		return name
	}
	parts := []string{l.Type.String()}
	if l.Direction != snapshot.DirectionNone {
		parts = append(parts, l.Direction.String())
	}
	if l.Width > 0 {
		parts = append(parts, fmt.Sprintf("width: %d", l.Width))
	}
	if l.Spacing > 0 {
		parts = append(parts, fmt.Sprintf("spacing: %d", l.Spacing))
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func layerFill(t snapshot.LayerType) string {
	switch t {
	case snapshot.LayerTypeRouting:
		return "lightblue"
	case snapshot.LayerTypeCut:
		return "lightgrey"
	case snapshot.LayerTypeImplant, snapshot.LayerTypeMasterslice:
		return "mistyrose"
	}
	return ""
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with one that
// scales in a browser.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
