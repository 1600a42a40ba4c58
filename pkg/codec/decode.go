package codec

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/inklet/inklet/pkg/model"
	"github.com/inklet/inklet/pkg/style"
)

// ReadOptions controls decoding behavior.
type ReadOptions struct {
	// StrictReferences makes connector endpoints that name a missing
	// element fail the read with [ErrUnresolvedReference]. The default
	// keeps such endpoints verbatim and marks them dangling so the
	// document survives a round trip untouched.
	StrictReferences bool
}

// Read decodes a document from r with default options. See [ReadWith].
func Read(r io.Reader) (*model.Diagram, error) {
	return ReadWith(r, ReadOptions{})
}

// ReadWith decodes a document from r.
//
// The input is an mxfile envelope with one diagram element per page.
// Each page holds its graph model either inline or as a base64-encoded
// raw-deflate payload; both forms may appear in the same file. Cells
// translate to shapes, connectors and groups, reserved structural cells
// are skipped, and unrecognized attributes and cell children are
// preserved opaquely so a later [Write] reproduces them.
//
// ReadWith returns an error when:
//   - the XML is not well-formed or a numeric attribute does not parse
//     ([ErrMalformedXML])
//   - a compressed payload is not valid base64 raw-deflate
//     ([ErrMalformedCompression])
//   - a page or cell ID is repeated ([model.ErrDuplicateID])
//   - a cell's parent attribute does not resolve to a group on the same
//     page ([ErrUnresolvedReference], also [model.ErrGroupCycle] for
//     cyclic parent chains)
//   - an endpoint does not resolve and opts.StrictReferences is set
//     ([ErrUnresolvedReference])
//
// Errors are wrapped with the page and cell that caused the problem.
// The returned diagram is independent of r; ReadWith does not close r.
func ReadWith(r io.Reader, opts ReadOptions) (*model.Diagram, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var file xmlFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrMalformedXML, err)
	}

	d := model.NewDiagram(file.Name)
	d.SetVersion(file.Version)
	for _, a := range file.Attrs {
		if err := d.SetMeta(attrName(a), a.Value); err != nil {
			return nil, err
		}
	}

	d.SetExtraXML(rawNodes(file.Rest))

	for i, page := range file.Diagrams {
		if err := decodePage(d, page, i, opts); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ImportFile reads the document at path with default options.
func ImportFile(path string) (*model.Diagram, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

func decodePage(d *model.Diagram, page xmlDiagram, index int, opts ReadOptions) error {
	pageRef := page.Name
	if pageRef == "" {
		pageRef = fmt.Sprintf("#%d", index)
	}

	mdl := page.Model
	if mdl == nil {
		payload := strings.TrimSpace(page.Content)
		if payload != "" {
			raw, err := inflateBase64(payload)
			if err != nil {
				return fmt.Errorf("page %s: %w", pageRef, err)
			}
			var inner xmlModel
			if err := xml.Unmarshal(raw, &inner); err != nil {
				return fmt.Errorf("%w: page %s: inflated payload: %v", ErrMalformedXML, pageRef, err)
			}
			mdl = &inner
		}
	}

	p := model.NewPage(page.ID, page.Name)
	p.SetEnvelope(modelAttrs(page.Attrs))
	p.SetEnvelopeXML(rawNodes(page.Rest))
	if mdl != nil {
		grid := p.Grid()
		if mdl.Grid != "" {
			grid.Enabled = mdl.Grid != "0"
		}
		if mdl.GridSize != "" {
			size, err := strconv.ParseFloat(mdl.GridSize, 64)
			if err != nil {
				return fmt.Errorf("%w: page %s: gridSize %q", ErrMalformedXML, pageRef, mdl.GridSize)
			}
			grid.Size = size
		}
		p.SetGrid(grid)
		p.SetBackground(mdl.Background)
		p.SetExtra(modelAttrs(mdl.Attrs))
	}
	if err := d.AttachPage(p); err != nil {
		return fmt.Errorf("page %s: %w", pageRef, err)
	}
	if mdl == nil {
		return nil
	}

	// First pass: translate every cell so forward references within the
	// page resolve regardless of cell order.
	var elements []*model.Element
	var foreign []string
	ids := make(map[string]bool)
	for _, child := range mdl.Root.Children {
		var el *model.Element
		var err error
		switch {
		case child.Cell != nil:
			if child.Cell.ID == "0" || child.Cell.ID == "1" {
				continue
			}
			el, err = decodeCell(*child.Cell, pageRef)
		case child.Object != nil:
			el, err = decodeObject(*child.Object, pageRef)
			if el == nil && err == nil {
				foreign = append(foreign, rawObject(*child.Object))
				continue
			}
		case child.Raw != nil:
			foreign = append(foreign, rawNodes([]xmlNode{*child.Raw})...)
			continue
		}
		if err != nil {
			return err
		}
		elements = append(elements, el)
		ids[el.ID] = true
	}
	p.SetExtraXML(foreign)

	for _, el := range elements {
		if el.Kind != model.KindConnector {
			continue
		}
		c := el.Connector
		if c.Source != "" && !ids[c.Source] {
			if opts.StrictReferences {
				return fmt.Errorf("%w: page %s: connector %s: source %q", ErrUnresolvedReference, pageRef, el.ID, c.Source)
			}
			c.SourceDangling = true
		}
		if c.Target != "" && !ids[c.Target] {
			if opts.StrictReferences {
				return fmt.Errorf("%w: page %s: connector %s: target %q", ErrUnresolvedReference, pageRef, el.ID, c.Target)
			}
			c.TargetDangling = true
		}
	}

	// Second pass: insert in file order, which is the z-order, then link
	// group membership once every member exists.
	parentOf := make(map[string]string)
	for _, el := range elements {
		if el.Parent != "" {
			parentOf[el.ID] = el.Parent
			el.Parent = ""
		}
		if err := d.InsertElement(p.ID(), el, -1); err != nil {
			return fmt.Errorf("page %s: cell %s: %w", pageRef, el.ID, err)
		}
	}
	for _, el := range elements {
		parentID, ok := parentOf[el.ID]
		if !ok {
			continue
		}
		if cyclic(parentOf, el.ID) {
			return fmt.Errorf("page %s: cell %s: parent %q: %w", pageRef, el.ID, parentID, model.ErrGroupCycle)
		}
		parent, ok := p.Element(parentID)
		if !ok {
			return fmt.Errorf("%w: page %s: cell %s: parent %q", ErrUnresolvedReference, pageRef, el.ID, parentID)
		}
		if parent.Kind != model.KindGroup {
			return fmt.Errorf("page %s: cell %s: parent %q: %w", pageRef, el.ID, parentID, model.ErrNotGroup)
		}
		el.Parent = parentID
		parent.Group.Children = append(parent.Group.Children, el.ID)
	}
	return nil
}

func decodeCell(cell xmlCell, pageRef string) (*model.Element, error) {
	st, err := style.Parse(cell.Style)
	if err != nil {
		st = style.Opaque(cell.Style)
	}

	parent := cell.Parent
	if parent == "0" || parent == "1" {
		parent = ""
	}

	el := &model.Element{
		ID:       cell.ID,
		Label:    cell.Value,
		Style:    st,
		Parent:   parent,
		Visible:  cell.Visible != "0",
		Locked:   cell.Locked == "1",
		Extra:    modelAttrs(cell.Attrs),
		ExtraXML: rawNodes(cell.Rest),
	}

	geo := cell.Geometry
	if geo != nil {
		rect, err := decodeRect(geo, pageRef, cell.ID)
		if err != nil {
			return nil, err
		}
		el.Geometry = rect
		el.GeometryExtra = modelAttrs(geo.Attrs)
		if geo.Relative != "" && cell.Edge != "1" {
			el.GeometryExtra = append(el.GeometryExtra, model.Attr{Name: "relative", Value: geo.Relative})
		}
	}

	switch {
	case cell.Edge == "1":
		el.Kind = model.KindConnector
		routing, _ := st.Get("edgeStyle")
		c := &model.Connector{
			Source:  cell.Source,
			Target:  cell.Target,
			Routing: routing,
		}
		if geo != nil {
			for _, pt := range geo.Points {
				point, err := decodePoint(pt, pageRef, cell.ID)
				if err != nil {
					return nil, err
				}
				switch pt.As {
				case "sourcePoint":
					c.SourcePoint = &point
				case "targetPoint":
					c.TargetPoint = &point
				default:
					c.Waypoints = append(c.Waypoints, point)
				}
			}
		}
		el.Connector = c
	case st.IsFlag("group"):
		el.Kind = model.KindGroup
		el.Group = &model.Group{Collapsed: cell.Collapsed == "1"}
	default:
		el.Kind = model.KindShape
		sh := &model.Shape{Type: shapeType(st)}
		if cell.Rotation != "" {
			deg, err := strconv.ParseFloat(cell.Rotation, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: page %s: cell %s: rotation %q", ErrMalformedXML, pageRef, cell.ID, cell.Rotation)
			}
			sh.Rotation = deg
		}
		el.Shape = sh
	}
	return el, nil
}

// decodeObject unwraps an attribute-carrying wrapper around a cell. The
// wrapper owns the element's id and label; any other wrapper attribute
// and non-cell wrapper child rides along on the element for
// re-emission. A wrapper without a nested cell decodes to (nil, nil)
// and is preserved opaquely by the caller.
func decodeObject(obj xmlObject, pageRef string) (*model.Element, error) {
	if obj.Cell == nil {
		return nil, nil
	}
	cell := *obj.Cell
	var wrapper []model.Attr
	for _, a := range obj.Attrs {
		switch name := attrName(a); name {
		case "id":
			if cell.ID == "" {
				cell.ID = a.Value
			}
		case "label":
			if cell.Value == "" {
				cell.Value = a.Value
			}
		default:
			wrapper = append(wrapper, model.Attr{Name: name, Value: a.Value})
		}
	}

	el, err := decodeCell(cell, pageRef)
	if err != nil {
		return nil, err
	}
	el.WrapperName = obj.Name
	el.Wrapper = wrapper
	el.WrapperXML = rawNodes(obj.Rest)
	return el, nil
}

// rawObject reserializes a cell-less wrapper verbatim.
func rawObject(obj xmlObject) string {
	n := xmlNode{XMLName: xml.Name{Local: obj.Name}, Attrs: obj.Attrs, Inner: strings.TrimSpace(obj.Inner)}
	return rawNodes([]xmlNode{n})[0]
}

func decodeRect(geo *xmlGeometry, pageRef, cellID string) (model.Rect, error) {
	var rect model.Rect
	for _, f := range []struct {
		raw string
		dst *float64
	}{
		{geo.X, &rect.X},
		{geo.Y, &rect.Y},
		{geo.Width, &rect.Width},
		{geo.Height, &rect.Height},
	} {
		if f.raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return model.Rect{}, fmt.Errorf("%w: page %s: cell %s: geometry %q", ErrMalformedXML, pageRef, cellID, f.raw)
		}
		*f.dst = v
	}
	return rect, nil
}

func decodePoint(pt xmlPoint, pageRef, cellID string) (model.Point, error) {
	var p model.Point
	for _, f := range []struct {
		raw string
		dst *float64
	}{
		{pt.X, &p.X},
		{pt.Y, &p.Y},
	} {
		if f.raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return model.Point{}, fmt.Errorf("%w: page %s: cell %s: point %q", ErrMalformedXML, pageRef, cellID, f.raw)
		}
		*f.dst = v
	}
	return p, nil
}

// shapeType derives the shape tag from the style. A shape key wins,
// known form flags follow, anything else renders as a rectangle.
func shapeType(st style.Style) string {
	if v, ok := st.Get("shape"); ok {
		return v
	}
	switch {
	case st.IsFlag("ellipse"):
		return "ellipse"
	case st.IsFlag("triangle"):
		return "triangle"
	case st.IsFlag("rhombus"):
		return "diamond"
	default:
		return "rectangle"
	}
}

// cyclic reports whether following parent links from id revisits a
// node, which would make group membership circular.
func cyclic(parentOf map[string]string, id string) bool {
	seen := map[string]bool{id: true}
	for cur := parentOf[id]; cur != ""; cur = parentOf[cur] {
		if seen[cur] {
			return true
		}
		seen[cur] = true
	}
	return false
}

// attrName rebuilds a qualified attribute name. encoding/xml resolves
// prefixes to namespace URIs and discards the source prefix, so a
// namespaced foreign attribute re-encodes with its URI as the
// qualifier instead of the original prefix. The value and local name
// survive untouched.
func attrName(a xml.Attr) string {
	if a.Name.Space != "" {
		return a.Name.Space + ":" + a.Name.Local
	}
	return a.Name.Local
}

func modelAttrs(attrs []xml.Attr) []model.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]model.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = model.Attr{Name: attrName(a), Value: a.Value}
	}
	return out
}

// rawNodes reserializes unrecognized cell children verbatim.
func rawNodes(nodes []xmlNode) []string {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]string, len(nodes))
	for i, n := range nodes {
		var b strings.Builder
		b.WriteString("<" + n.XMLName.Local)
		for _, a := range n.Attrs {
			b.WriteString(" " + attrName(a) + `="` + escapeAttr(a.Value) + `"`)
		}
		if n.Inner == "" {
			b.WriteString(" />")
		} else {
			b.WriteString(">" + n.Inner + "</" + n.XMLName.Local + ">")
		}
		out[i] = b.String()
	}
	return out
}
