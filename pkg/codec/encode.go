package codec

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/inklet/inklet/pkg/model"
)

// WriteOptions controls encoding behavior.
type WriteOptions struct {
	// Compress stores each page's graph model as a base64-encoded
	// raw-deflate payload instead of inline XML.
	Compress bool
}

// Write encodes the diagram to w uncompressed. See [WriteWith].
func Write(d *model.Diagram, w io.Writer) error {
	return WriteWith(d, w, WriteOptions{})
}

// WriteWith encodes the diagram to w as an mxfile document.
//
// Pages are written in order, elements in z-order. Styles serialize
// through [style.Style.String], so untouched styles reproduce their
// source text byte for byte, and attributes preserved at decode time
// are re-emitted after the recognized ones. Dangling connector
// endpoints keep their original reference.
func WriteWith(d *model.Diagram, w io.Writer, opts WriteOptions) error {
	var b strings.Builder
	b.WriteString(`<mxfile`)
	if d.Name() != "" {
		writeAttr(&b, "name", d.Name())
	}
	if d.Version() != "" {
		writeAttr(&b, "version", d.Version())
	}
	meta := d.MetaMap()
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		writeAttr(&b, k, meta[k])
	}
	b.WriteString(">\n")

	for _, p := range d.Pages() {
		if err := encodePage(&b, p, opts); err != nil {
			return err
		}
	}
	for _, raw := range d.ExtraXML() {
		b.WriteString("  " + raw + "\n")
	}
	b.WriteString("</mxfile>\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportFile writes the diagram to a file at path.
func ExportFile(d *model.Diagram, path string, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteWith(d, f, opts)
}

func encodePage(b *strings.Builder, p *model.Page, opts WriteOptions) error {
	b.WriteString(`  <diagram`)
	writeAttr(b, "id", p.ID())
	writeAttr(b, "name", p.Name())
	for _, a := range p.Envelope() {
		writeAttr(b, a.Name, a.Value)
	}

	mdl := encodeModel(p, opts.Compress)
	if opts.Compress {
		payload, err := deflateBase64([]byte(mdl))
		if err != nil {
			return fmt.Errorf("page %s: %w", p.Name(), err)
		}
		b.WriteString(">" + payload)
		for _, raw := range p.EnvelopeXML() {
			b.WriteString(raw)
		}
		b.WriteString("</diagram>\n")
		return nil
	}
	b.WriteString(">\n")
	b.WriteString(mdl)
	for _, raw := range p.EnvelopeXML() {
		b.WriteString("    " + raw + "\n")
	}
	b.WriteString("  </diagram>\n")
	return nil
}

// encodeModel renders a page's mxGraphModel element. Compressed pages
// drop the pretty-print indentation since nobody reads the payload.
func encodeModel(p *model.Page, compact bool) string {
	indent := func(depth int) string {
		if compact {
			return ""
		}
		return strings.Repeat("  ", depth)
	}
	nl := "\n"
	if compact {
		nl = ""
	}

	var b strings.Builder
	b.WriteString(indent(2) + `<mxGraphModel`)
	grid := p.Grid()
	if grid.Enabled {
		writeAttr(&b, "grid", "1")
	} else {
		writeAttr(&b, "grid", "0")
	}
	writeAttr(&b, "gridSize", fnum(grid.Size))
	if p.Background() != "" {
		writeAttr(&b, "background", p.Background())
	}
	for _, a := range p.Extra() {
		writeAttr(&b, a.Name, a.Value)
	}
	b.WriteString(">" + nl)
	b.WriteString(indent(3) + "<root>" + nl)
	b.WriteString(indent(4) + `<mxCell id="0" />` + nl)
	b.WriteString(indent(4) + `<mxCell id="1" parent="0" />` + nl)
	for _, el := range p.Elements() {
		encodeCell(&b, el, indent(4), indent(5), nl)
	}
	for _, raw := range p.ExtraXML() {
		b.WriteString(indent(4) + raw + nl)
	}
	b.WriteString(indent(3) + "</root>" + nl)
	b.WriteString(indent(2) + "</mxGraphModel>" + nl)
	return b.String()
}

func encodeCell(b *strings.Builder, el *model.Element, ind, childInd, nl string) {
	if el.WrapperName == "" {
		encodeCellTag(b, el, ind, childInd, nl, false)
		return
	}

	// The wrapper owns the id and label; the nested cell re-emits
	// without them, mirroring the decoded form.
	b.WriteString(ind + "<" + el.WrapperName)
	writeAttr(b, "id", el.ID)
	if el.Label != "" {
		writeAttr(b, "label", el.Label)
	}
	for _, a := range el.Wrapper {
		writeAttr(b, a.Name, a.Value)
	}
	b.WriteString(">" + nl)
	grandInd := childInd
	if nl != "" {
		grandInd = childInd + "  "
	}
	encodeCellTag(b, el, childInd, grandInd, nl, true)
	for _, raw := range el.WrapperXML {
		b.WriteString(childInd + raw + nl)
	}
	b.WriteString(ind + "</" + el.WrapperName + ">" + nl)
}

func encodeCellTag(b *strings.Builder, el *model.Element, ind, childInd, nl string, wrapped bool) {
	b.WriteString(ind + `<mxCell`)
	if !wrapped {
		writeAttr(b, "id", el.ID)
		if el.Label != "" {
			writeAttr(b, "value", el.Label)
		}
	}
	if s := el.Style.String(); s != "" {
		writeAttr(b, "style", s)
	}
	parent := el.Parent
	if parent == "" {
		parent = "1"
	}
	writeAttr(b, "parent", parent)

	switch el.Kind {
	case model.KindConnector:
		writeAttr(b, "edge", "1")
		if el.Connector.Source != "" {
			writeAttr(b, "source", el.Connector.Source)
		}
		if el.Connector.Target != "" {
			writeAttr(b, "target", el.Connector.Target)
		}
	default:
		writeAttr(b, "vertex", "1")
	}
	if el.Kind == model.KindShape && el.Shape.Rotation != 0 {
		writeAttr(b, "rotation", fnum(el.Shape.Rotation))
	}
	if el.Kind == model.KindGroup && el.Group.Collapsed {
		writeAttr(b, "collapsed", "1")
	}
	if !el.Visible {
		writeAttr(b, "visible", "0")
	}
	if el.Locked {
		writeAttr(b, "locked", "1")
	}
	for _, a := range el.Extra {
		writeAttr(b, a.Name, a.Value)
	}

	geometry := encodeGeometry(el, childInd, nl)
	if geometry == "" && len(el.ExtraXML) == 0 {
		b.WriteString(" />" + nl)
		return
	}
	b.WriteString(">" + nl)
	b.WriteString(geometry)
	for _, raw := range el.ExtraXML {
		b.WriteString(childInd + raw + nl)
	}
	b.WriteString(ind + "</mxCell>" + nl)
}

func encodeGeometry(el *model.Element, ind, nl string) string {
	var b strings.Builder
	b.WriteString(ind + `<mxGeometry`)

	if el.Kind == model.KindConnector {
		writeAttr(&b, "relative", "1")
		for _, a := range el.GeometryExtra {
			writeAttr(&b, a.Name, a.Value)
		}
		writeAttr(&b, "as", "geometry")
		c := el.Connector
		if c.SourcePoint == nil && c.TargetPoint == nil && len(c.Waypoints) == 0 {
			b.WriteString(" />" + nl)
			return b.String()
		}
		b.WriteString(">" + nl)
		pointInd := ind
		if nl != "" {
			pointInd = ind + "  "
		}
		if c.SourcePoint != nil {
			writePoint(&b, pointInd, *c.SourcePoint, "sourcePoint", nl)
		}
		if c.TargetPoint != nil {
			writePoint(&b, pointInd, *c.TargetPoint, "targetPoint", nl)
		}
		for _, pt := range c.Waypoints {
			writePoint(&b, pointInd, pt, "", nl)
		}
		b.WriteString(ind + "</mxGeometry>" + nl)
		return b.String()
	}

	writeAttr(&b, "x", fnum(el.Geometry.X))
	writeAttr(&b, "y", fnum(el.Geometry.Y))
	writeAttr(&b, "width", fnum(el.Geometry.Width))
	writeAttr(&b, "height", fnum(el.Geometry.Height))
	for _, a := range el.GeometryExtra {
		writeAttr(&b, a.Name, a.Value)
	}
	writeAttr(&b, "as", "geometry")
	b.WriteString(" />" + nl)
	return b.String()
}

func writePoint(b *strings.Builder, ind string, pt model.Point, as, nl string) {
	b.WriteString(ind + `<mxPoint`)
	writeAttr(b, "x", fnum(pt.X))
	writeAttr(b, "y", fnum(pt.Y))
	if as != "" {
		writeAttr(b, "as", as)
	}
	b.WriteString(" />" + nl)
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteString(" " + name + `="` + escapeAttr(value) + `"`)
}

func escapeAttr(s string) string {
	var b strings.Builder
	// strings.Builder never returns a write error.
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func fnum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
