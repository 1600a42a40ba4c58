package model

import "slices"

// Grid holds a page's grid settings.
type Grid struct {
	Enabled bool
	Size    float64
}

// Page is an ordered collection of elements with page-level settings.
// Slice position is the z-order: index 0 draws first (bottom), the last
// element draws on top. Because order is positional, z-indices are a
// dense permutation of [0, n) by construction.
//
// Pages are owned exclusively by their diagram and mutated through
// [Diagram] operations.
type Page struct {
	id   string
	name string

	elements []*Element
	byID     map[string]*Element

	grid       Grid
	background string

	// extra holds unknown graph-model-node attributes; envelope holds
	// unknown attributes of the page's wrapper node. Both keep source
	// order for round-trip fidelity.
	extra    []Attr
	envelope []Attr

	// extraXML holds serialized foreign children of the element root;
	// envelopeXML holds foreign children of the page's wrapper node.
	extraXML    []string
	envelopeXML []string
}

// NewPage creates an empty page. An empty id is replaced with a
// generated UUID. The page takes effect once attached to a diagram
// with [Diagram.AttachPage] or created through [Diagram.AddPage].
func NewPage(id, name string) *Page {
	return &Page{
		id:   orGenerated(id),
		name: name,
		byID: make(map[string]*Element),
		grid: Grid{Enabled: true, Size: 10},
	}
}

// ID returns the page's identifier, unique within its diagram.
func (p *Page) ID() string { return p.id }

// Name returns the page's display name.
func (p *Page) Name() string { return p.name }

// Grid returns the page's grid settings.
func (p *Page) Grid() Grid { return p.grid }

// Background returns the page background tag ("" = default).
func (p *Page) Background() string { return p.background }

// SetGrid sets the page's grid settings directly. Used by the codec
// during load; interactive edits go through [Diagram.SetPageGrid].
func (p *Page) SetGrid(g Grid) { p.grid = g }

// SetBackground sets the page background tag. Used by the codec.
func (p *Page) SetBackground(bg string) { p.background = bg }

// Extra returns the unknown page-node attributes in source order.
func (p *Page) Extra() []Attr { return slices.Clone(p.extra) }

// SetExtra stores unknown page-node attributes for round-trip
// fidelity. Used by the codec during load.
func (p *Page) SetExtra(attrs []Attr) { p.extra = slices.Clone(attrs) }

// Envelope returns the unknown attributes of the page's wrapper node.
func (p *Page) Envelope() []Attr { return slices.Clone(p.envelope) }

// SetEnvelope stores unknown wrapper-node attributes. Used by the
// codec during load.
func (p *Page) SetEnvelope(attrs []Attr) { p.envelope = slices.Clone(attrs) }

// ExtraXML returns serialized foreign children of the element root.
func (p *Page) ExtraXML() []string { return slices.Clone(p.extraXML) }

// SetExtraXML stores foreign root children verbatim. Used by the codec
// during load.
func (p *Page) SetExtraXML(raw []string) { p.extraXML = slices.Clone(raw) }

// EnvelopeXML returns serialized foreign children of the page's
// wrapper node.
func (p *Page) EnvelopeXML() []string { return slices.Clone(p.envelopeXML) }

// SetEnvelopeXML stores foreign wrapper-node children verbatim. Used by
// the codec during load.
func (p *Page) SetEnvelopeXML(raw []string) { p.envelopeXML = slices.Clone(raw) }

// Len returns the number of elements on the page.
func (p *Page) Len() int { return len(p.elements) }

// Elements returns the elements in z-order. The slice is a copy but the
// pointers refer to live elements; treat them as read-only views and
// mutate through [Diagram] operations.
func (p *Page) Elements() []*Element {
	return slices.Clone(p.elements)
}

// Element returns the element with the given ID and true, or nil and
// false when the ID does not resolve on this page.
func (p *Page) Element(id string) (*Element, bool) {
	e, ok := p.byID[id]
	return e, ok
}

// IndexOf returns the z-order index of the element, or -1 when the ID
// does not resolve on this page.
func (p *Page) IndexOf(id string) int {
	return slices.IndexFunc(p.elements, func(e *Element) bool { return e.ID == id })
}

// Connectors returns the page's connector elements in z-order.
func (p *Page) Connectors() []*Element {
	var out []*Element
	for _, e := range p.elements {
		if e.Kind == KindConnector {
			out = append(out, e)
		}
	}
	return out
}

// Dangling returns the connectors with at least one endpoint reference
// that did not resolve at decode time.
func (p *Page) Dangling() []*Element {
	var out []*Element
	for _, e := range p.elements {
		if e.Kind == KindConnector && (e.Connector.SourceDangling || e.Connector.TargetDangling) {
			out = append(out, e)
		}
	}
	return out
}

// insert adds el at the given z-order index (-1 appends). The caller
// has already validated ID uniqueness.
func (p *Page) insert(el *Element, at int) {
	if at < 0 || at > len(p.elements) {
		at = len(p.elements)
	}
	p.elements = slices.Insert(p.elements, at, el)
	p.byID[el.ID] = el
}

// remove detaches the element from the z-order and index. The caller
// handles dependent connectors and group membership.
func (p *Page) remove(id string) {
	if i := p.IndexOf(id); i >= 0 {
		p.elements = slices.Delete(p.elements, i, i+1)
	}
	delete(p.byID, id)
}

// referencing returns the connectors whose resolved source or target
// is the given element ID.
func (p *Page) referencing(id string) []*Element {
	var out []*Element
	for _, e := range p.elements {
		if e.Kind != KindConnector {
			continue
		}
		if slices.Contains(e.Connector.references(), id) {
			out = append(out, e)
		}
	}
	return out
}

// groupOf returns the group element whose child list names id, or nil.
func (p *Page) groupOf(id string) *Element {
	for _, e := range p.elements {
		if e.Kind == KindGroup && slices.Contains(e.Group.Children, id) {
			return e
		}
	}
	return nil
}

// wouldCycle reports whether putting member under group would make the
// containment relation cyclic. It walks up the parent chain from group
// looking for member.
func (p *Page) wouldCycle(groupID, memberID string) bool {
	if groupID == memberID {
		return true
	}
	seen := map[string]bool{}
	for cur := groupID; cur != "" && !seen[cur]; {
		seen[cur] = true
		e, ok := p.byID[cur]
		if !ok {
			return false
		}
		if e.Parent == memberID {
			return true
		}
		cur = e.Parent
	}
	return false
}
