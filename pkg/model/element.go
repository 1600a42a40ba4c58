package model

import (
	"github.com/google/uuid"

	"github.com/inklet/inklet/pkg/style"
)

// Kind selects the element variant. Elements share a common attribute
// head (ID, geometry, style, parent, flags) and carry exactly one
// variant payload matching their kind.
type Kind int

const (
	// KindShape is a vertex with a label and a shape-type tag.
	KindShape Kind = iota
	// KindConnector is an edge with weak source/target references.
	KindConnector
	// KindGroup is an ordered collection of member element IDs.
	KindGroup
)

// String returns the lowercase variant name.
func (k Kind) String() string {
	switch k {
	case KindShape:
		return "shape"
	case KindConnector:
		return "connector"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Attr is an attribute preserved from the interchange format that this
// implementation assigns no semantics to. Attrs keep their source order
// so re-encoding reproduces them verbatim.
type Attr struct {
	Name  string
	Value string
}

// Element is a node in a page's element tree. The variant payload
// (Shape, Connector or Group) matching Kind is non-nil; the other two
// are nil.
//
// Elements are mutated through validated [Diagram] operations, never by
// direct field assignment from outside the model boundary. The fields
// are exported for the codec and for read access; treat them as
// read-only views.
type Element struct {
	ID       string
	Kind     Kind
	Label    string
	Style    style.Style
	Geometry Rect

	// Parent identifies the enclosing group, or is empty for a
	// page-level element. This is a membership link, not ownership:
	// the page owns every element regardless of grouping.
	Parent string

	Visible bool
	Locked  bool

	Shape     *Shape
	Connector *Connector
	Group     *Group

	// Extra holds unknown interchange attributes in source order.
	// GeometryExtra holds unknown attributes of the geometry node and
	// ExtraXML holds serialized unknown child nodes, both in source order.
	Extra         []Attr
	GeometryExtra []Attr
	ExtraXML      []string

	// WrapperName is set when the element arrived inside a foreign
	// wrapper node such as the metadata-carrying "object". Wrapper holds
	// the wrapper's attributes other than id and label, and WrapperXML
	// its serialized non-cell children.
	WrapperName string
	Wrapper     []Attr
	WrapperXML  []string
}

// Shape is the payload of a KindShape element.
type Shape struct {
	// Type tags the visual form: "rectangle", "ellipse", "triangle",
	// "diamond", or any tag a foreign file carries.
	Type string
	// Rotation is the clockwise rotation in degrees, normalized to [0,360).
	Rotation float64
}

// Connector is the payload of a KindConnector element.
//
// Source and Target are weak references: element IDs resolved through
// the owning page. An empty ID is a floating endpoint pinned at the
// corresponding explicit point. A non-empty ID flagged dangling did not
// resolve at decode time and is preserved verbatim for round-trip
// fidelity rather than discarded.
type Connector struct {
	Source string
	Target string

	SourceDangling bool
	TargetDangling bool

	// SourcePoint and TargetPoint pin floating endpoints. They are nil
	// while the corresponding reference resolves.
	SourcePoint *Point
	TargetPoint *Point

	// Waypoints route the connector through intermediate points,
	// in order from source to target.
	Waypoints []Point

	// Routing tags the routing style (e.g. "orthogonalEdgeStyle").
	Routing string
}

// Group is the payload of a KindGroup element. Children lists member
// element IDs in order; the references are weak and never imply
// ownership, which stays with the page.
type Group struct {
	Children  []string
	Collapsed bool
}

// NewShape creates a shape element with the default style for its
// shape type. An empty id is replaced with a generated UUID.
func NewShape(id, label, shapeType string) *Element {
	return &Element{
		ID:       orGenerated(id),
		Kind:     KindShape,
		Label:    label,
		Style:    defaultShapeStyle(shapeType),
		Geometry: Rect{Width: 100, Height: 60},
		Visible:  true,
		Shape:    &Shape{Type: shapeType},
	}
}

// NewConnector creates a connector element between two element IDs.
// Either end may be empty for a floating endpoint. An empty id is
// replaced with a generated UUID.
func NewConnector(id, label, source, target string) *Element {
	return &Element{
		ID:      orGenerated(id),
		Kind:    KindConnector,
		Label:   label,
		Style:   defaultConnectorStyle(),
		Visible: true,
		Connector: &Connector{
			Source:  source,
			Target:  target,
			Routing: "orthogonalEdgeStyle",
		},
	}
}

// NewGroup creates an empty group element. An empty id is replaced
// with a generated UUID. Members are attached through [Diagram.Group]
// or [Diagram.AddToGroup].
func NewGroup(id, label string) *Element {
	return &Element{
		ID:      orGenerated(id),
		Kind:    KindGroup,
		Label:   label,
		Style:   defaultGroupStyle(),
		Visible: true,
		Group:   &Group{},
	}
}

// Clone returns a deep copy of the element, sharing nothing with the
// original. Used by the undo machinery to capture pre-state.
func (e *Element) Clone() *Element {
	c := *e
	c.Style = e.Style.Clone()
	if e.Shape != nil {
		s := *e.Shape
		c.Shape = &s
	}
	if e.Connector != nil {
		conn := *e.Connector
		if e.Connector.SourcePoint != nil {
			p := *e.Connector.SourcePoint
			conn.SourcePoint = &p
		}
		if e.Connector.TargetPoint != nil {
			p := *e.Connector.TargetPoint
			conn.TargetPoint = &p
		}
		conn.Waypoints = append([]Point(nil), e.Connector.Waypoints...)
		c.Connector = &conn
	}
	if e.Group != nil {
		g := *e.Group
		g.Children = append([]string(nil), e.Group.Children...)
		c.Group = &g
	}
	c.Extra = append([]Attr(nil), e.Extra...)
	c.GeometryExtra = append([]Attr(nil), e.GeometryExtra...)
	c.ExtraXML = append([]string(nil), e.ExtraXML...)
	c.Wrapper = append([]Attr(nil), e.Wrapper...)
	c.WrapperXML = append([]string(nil), e.WrapperXML...)
	return &c
}

// references reports the element IDs this connector points at,
// skipping empty and dangling ends.
func (c *Connector) references() []string {
	var refs []string
	if c.Source != "" && !c.SourceDangling {
		refs = append(refs, c.Source)
	}
	if c.Target != "" && !c.TargetDangling {
		refs = append(refs, c.Target)
	}
	return refs
}

func orGenerated(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func defaultShapeStyle(shapeType string) style.Style {
	var st style.Style
	switch shapeType {
	case "ellipse", "triangle":
		st.SetFlag(shapeType)
	case "diamond":
		st.SetFlag("rhombus")
	default:
		st.Set("rounded", "0")
	}
	st.Set("whiteSpace", "wrap")
	st.Set("html", "1")
	return st
}

func defaultConnectorStyle() style.Style {
	var st style.Style
	st.Set("edgeStyle", "orthogonalEdgeStyle")
	st.Set("rounded", "0")
	st.Set("orthogonalLoop", "1")
	st.Set("jettySize", "auto")
	st.Set("html", "1")
	return st
}

func defaultGroupStyle() style.Style {
	var st style.Style
	st.SetFlag("group")
	st.Set("fillColor", "none")
	st.Set("strokeColor", "#666666")
	st.Set("dashed", "1")
	return st
}
