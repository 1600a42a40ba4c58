// Package model implements the diagram document model: a diagram owning
// ordered pages, each page owning an ordered tree of shape, connector
// and group elements.
//
// All mutation goes through validated [Diagram] operations. An operation
// either commits fully and notifies subscribed observers, or fails with
// a sentinel error and leaves the model exactly as it was - no partial
// mutation is ever observable. See [IsInvariantViolation] for the
// structural failure class.
//
// The model is single-threaded: it is not safe for concurrent mutation.
// Hosts that decode or encode in the background must do so on a fresh
// Diagram instance and hand over the completed result.
package model

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Diagram is a multi-page diagram document. It owns its pages
// exclusively and is the only mutation and observation entry point.
type Diagram struct {
	id      string
	name    string
	version string

	pages []*Page
	byID  map[string]*Page

	// meta holds document metadata (author, modified, host and any
	// other root-envelope attribute carried by the interchange format).
	meta map[string]string

	// extraXML holds serialized foreign children of the document
	// envelope, in source order.
	extraXML []string

	bus bus
}

// NewDiagram creates an empty diagram with a generated ID.
func NewDiagram(name string) *Diagram {
	return &Diagram{
		id:   uuid.NewString(),
		name: name,
		byID: make(map[string]*Page),
		meta: make(map[string]string),
	}
}

// ID returns the diagram's generated identifier.
func (d *Diagram) ID() string { return d.id }

// Name returns the document name.
func (d *Diagram) Name() string { return d.name }

// Version returns the document's format version tag, as carried by the
// interchange envelope.
func (d *Diagram) Version() string { return d.version }

// SetVersion records the format version tag. Used by the codec during
// load and by hosts before save.
func (d *Diagram) SetVersion(v string) { d.version = v }

// SetName renames the document.
func (d *Diagram) SetName(name string) error {
	if err := d.guard(); err != nil {
		return err
	}
	d.name = name
	d.bus.publish(Event{Kind: ChangeDiagramRenamed})
	return nil
}

// Meta returns the document metadata value stored under key.
func (d *Diagram) Meta(key string) (string, bool) {
	v, ok := d.meta[key]
	return v, ok
}

// MetaMap returns a copy of the document metadata.
func (d *Diagram) MetaMap() map[string]string {
	out := make(map[string]string, len(d.meta))
	for k, v := range d.meta {
		out[k] = v
	}
	return out
}

// SetMeta stores a document metadata value.
func (d *Diagram) SetMeta(key, value string) error {
	if err := d.guard(); err != nil {
		return err
	}
	d.meta[key] = value
	d.bus.publish(Event{Kind: ChangeMetadata})
	return nil
}

// DeleteMeta removes a document metadata key. Deleting an absent key is
// a no-op.
func (d *Diagram) DeleteMeta(key string) error {
	if err := d.guard(); err != nil {
		return err
	}
	delete(d.meta, key)
	d.bus.publish(Event{Kind: ChangeMetadata})
	return nil
}

// ExtraXML returns serialized foreign children of the document
// envelope.
func (d *Diagram) ExtraXML() []string { return slices.Clone(d.extraXML) }

// SetExtraXML stores foreign envelope children verbatim. Used by the
// codec during load.
func (d *Diagram) SetExtraXML(raw []string) { d.extraXML = slices.Clone(raw) }

// Subscribe registers an observer for change events and returns its
// unsubscribe function. Observers are notified in registration order,
// synchronously, before the mutating call returns.
func (d *Diagram) Subscribe(o Observer) func() {
	return d.bus.subscribe(o)
}

// =============================================================================
// Page operations
// =============================================================================

// AddPage creates a page and appends it. An empty id is replaced with a
// generated UUID. Returns ErrDuplicateID when the ID is already used by
// another page.
func (d *Diagram) AddPage(id, name string) (*Page, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	p := NewPage(id, name)
	if _, exists := d.byID[p.id]; exists {
		return nil, fmt.Errorf("page %s: %w", p.id, ErrDuplicateID)
	}
	d.pages = append(d.pages, p)
	d.byID[p.id] = p
	d.bus.publish(Event{Kind: ChangePageAdded, PageID: p.id})
	return p, nil
}

// AttachPage appends a pre-built page. Used by the codec during load.
// Returns ErrDuplicateID when the page's ID is already in use.
func (d *Diagram) AttachPage(p *Page) error {
	if err := d.guard(); err != nil {
		return err
	}
	if _, exists := d.byID[p.id]; exists {
		return fmt.Errorf("page %s: %w", p.id, ErrDuplicateID)
	}
	d.pages = append(d.pages, p)
	d.byID[p.id] = p
	d.bus.publish(Event{Kind: ChangePageAdded, PageID: p.id})
	return nil
}

// RemovePage deletes the page and everything on it.
func (d *Diagram) RemovePage(id string) error {
	if err := d.guard(); err != nil {
		return err
	}
	i := slices.IndexFunc(d.pages, func(p *Page) bool { return p.id == id })
	if i < 0 {
		return fmt.Errorf("page %s: %w", id, ErrUnknownPage)
	}
	d.pages = slices.Delete(d.pages, i, i+1)
	delete(d.byID, id)
	d.bus.publish(Event{Kind: ChangePageRemoved, PageID: id})
	return nil
}

// RenamePage changes a page's display name.
func (d *Diagram) RenamePage(id, name string) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, err := d.page(id)
	if err != nil {
		return err
	}
	p.name = name
	d.bus.publish(Event{Kind: ChangePageRenamed, PageID: id})
	return nil
}

// MovePage moves the page to the given position in the page order.
// Out-of-range positions clamp to the ends.
func (d *Diagram) MovePage(id string, to int) error {
	if err := d.guard(); err != nil {
		return err
	}
	from := slices.IndexFunc(d.pages, func(p *Page) bool { return p.id == id })
	if from < 0 {
		return fmt.Errorf("page %s: %w", id, ErrUnknownPage)
	}
	to = max(0, min(to, len(d.pages)-1))
	p := d.pages[from]
	d.pages = slices.Delete(d.pages, from, from+1)
	d.pages = slices.Insert(d.pages, to, p)
	d.bus.publish(Event{Kind: ChangePageSettings, PageID: id})
	return nil
}

// SetPageGrid updates a page's grid settings.
func (d *Diagram) SetPageGrid(id string, g Grid) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, err := d.page(id)
	if err != nil {
		return err
	}
	p.grid = g
	d.bus.publish(Event{Kind: ChangePageSettings, PageID: id})
	return nil
}

// Page returns the page with the given ID and true, or nil and false.
func (d *Diagram) Page(id string) (*Page, bool) {
	p, ok := d.byID[id]
	return p, ok
}

// PageByName returns the first page with the given name, or nil.
func (d *Diagram) PageByName(name string) *Page {
	for _, p := range d.pages {
		if p.name == name {
			return p
		}
	}
	return nil
}

// PageAt returns the page at the given position, or nil when out of range.
func (d *Diagram) PageAt(i int) *Page {
	if i < 0 || i >= len(d.pages) {
		return nil
	}
	return d.pages[i]
}

// Pages returns the pages in document order. The slice is a copy; the
// pages are live.
func (d *Diagram) Pages() []*Page { return slices.Clone(d.pages) }

// PageCount returns the number of pages.
func (d *Diagram) PageCount() int { return len(d.pages) }

// =============================================================================
// Internal helpers
// =============================================================================

// guard rejects mutations issued from inside an observer callback.
func (d *Diagram) guard() error {
	if d.bus.notifying {
		return ErrReentrantMutation
	}
	return nil
}

func (d *Diagram) page(id string) (*Page, error) {
	p, ok := d.byID[id]
	if !ok {
		return nil, fmt.Errorf("page %s: %w", id, ErrUnknownPage)
	}
	return p, nil
}

func (d *Diagram) element(pageID, id string) (*Page, *Element, error) {
	p, err := d.page(pageID)
	if err != nil {
		return nil, nil, err
	}
	el, ok := p.byID[id]
	if !ok {
		return nil, nil, fmt.Errorf("element %s on page %s: %w", id, pageID, ErrUnknownElement)
	}
	return p, el, nil
}

// unlocked is the element lookup for mutating operations: it resolves
// the element and rejects locked targets.
func (d *Diagram) unlocked(pageID, id string) (*Page, *Element, error) {
	p, el, err := d.element(pageID, id)
	if err != nil {
		return nil, nil, err
	}
	if el.Locked {
		return nil, nil, fmt.Errorf("element %s: %w", id, ErrElementLocked)
	}
	return p, el, nil
}
