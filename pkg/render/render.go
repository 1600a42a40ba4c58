// Package render exports a page's connectivity as a Graphviz drawing.
//
// The export is diagnostic, not a faithful reproduction: geometry,
// styles and waypoints stay with the codec, while this package lays the
// elements out as a directed graph. Shapes and groups become nodes
// (groups as cluster subgraphs around their members), connectors become
// edges, and endpoints that do not resolve are drawn as point markers
// so broken references are visible at a glance.
//
// Convert a page to DOT, then render:
//
//	dot := render.ToDOT(page, render.Options{})
//	svg, err := render.SVG(dot)
//	png, err := render.PNG(dot)
package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/inklet/inklet/pkg/model"
)

// Options configures the DOT export.
type Options struct {
	// Detailed includes element IDs and kinds in node labels.
	// When false, only the label (or the ID for unlabeled elements)
	// is shown.
	Detailed bool
}

// ToDOT converts a page to Graphviz DOT. The resulting string renders
// with [SVG] or [PNG], or with external Graphviz tooling.
func ToDOT(p *model.Page, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n")
	buf.WriteString("\n")

	for _, el := range p.Elements() {
		if el.Parent == "" {
			writeNode(&buf, p, el, opts, 1)
		}
	}

	buf.WriteString("\n")
	for _, el := range p.Elements() {
		if el.Kind == model.KindConnector && el.Visible {
			writeEdge(&buf, p, el)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, p *model.Page, el *model.Element, opts Options, depth int) {
	if !el.Visible || el.Kind == model.KindConnector {
		return
	}
	ind := strings.Repeat("  ", depth)

	if el.Kind == model.KindGroup {
		fmt.Fprintf(buf, "%ssubgraph \"cluster_%s\" {\n", ind, el.ID)
		fmt.Fprintf(buf, "%s  label=%q;\n", ind, nodeLabel(el, opts))
		fmt.Fprintf(buf, "%s  style=dashed;\n", ind)
		for _, childID := range el.Group.Children {
			if child, ok := p.Element(childID); ok {
				writeNode(buf, p, child, opts, depth+1)
			}
		}
		fmt.Fprintf(buf, "%s}\n", ind)
		return
	}

	attrs := []string{fmt.Sprintf("label=%q", nodeLabel(el, opts))}
	if s := dotShape(el.Shape.Type); s != "" {
		attrs = append(attrs, "shape="+s)
	}
	fmt.Fprintf(buf, "%s%q [%s];\n", ind, el.ID, strings.Join(attrs, ", "))
}

func writeEdge(buf *bytes.Buffer, p *model.Page, el *model.Element) {
	from := endpointNode(buf, p, el, el.Connector.Source, el.Connector.SourceDangling, "src")
	to := endpointNode(buf, p, el, el.Connector.Target, el.Connector.TargetDangling, "dst")
	if el.Label != "" {
		fmt.Fprintf(buf, "  %q -> %q [label=%q];\n", from, to, el.Label)
	} else {
		fmt.Fprintf(buf, "  %q -> %q;\n", from, to)
	}
}

// endpointNode resolves one connector end to a node name, emitting a
// point marker for floating and dangling ends.
func endpointNode(buf *bytes.Buffer, p *model.Page, el *model.Element, ref string, dangling bool, side string) string {
	if ref != "" && !dangling {
		if _, ok := p.Element(ref); ok {
			return ref
		}
	}
	name := el.ID + "." + side
	fmt.Fprintf(buf, "  %q [shape=point, label=\"\"];\n", name)
	return name
}

func nodeLabel(el *model.Element, opts Options) string {
	label := el.Label
	if label == "" {
		label = el.ID
	}
	if opts.Detailed {
		label += fmt.Sprintf("\n%s %s", el.Kind, el.ID)
	}
	return label
}

func dotShape(shapeType string) string {
	switch shapeType {
	case "ellipse":
		return "ellipse"
	case "diamond":
		return "diamond"
	case "triangle":
		return "triangle"
	default:
		return ""
	}
}

// SVG renders a DOT graph to SVG using Graphviz in process.
func SVG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.SVG)
}

// PNG renders a DOT graph to PNG using Graphviz in process.
func PNG(dot string) ([]byte, error) {
	return renderFormat(dot, graphviz.PNG)
}

func renderFormat(dot string, format graphviz.Format) ([]byte, error) {
	ctx := context.Background()
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
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
