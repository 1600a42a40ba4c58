package history

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/inklet/inklet/pkg/model"
	"github.com/inklet/inklet/pkg/style"
)

// Constructors in this file wrap every element-level [model.Diagram]
// operation as a [Command]. Structural edits (anything that can touch
// more than one element) revert by restoring a deep snapshot of the
// page taken at Apply time; scalar edits capture and restore the single
// prior value.

// =============================================================================
// Snapshot plumbing
// =============================================================================

type pageSnapshot struct {
	elements []*model.Element
}

func snapshotPage(d *model.Diagram, pageID string) (*pageSnapshot, error) {
	p, ok := d.Page(pageID)
	if !ok {
		return nil, fmt.Errorf("page %s: %w", pageID, model.ErrUnknownPage)
	}
	live := p.Elements()
	els := make([]*model.Element, len(live))
	for i, el := range live {
		els[i] = el.Clone()
	}
	return &pageSnapshot{elements: els}, nil
}

// restore hands clones to the page so the snapshot stays pristine for a
// later redo/undo cycle.
func (s *pageSnapshot) restore(d *model.Diagram, pageID string) error {
	els := make([]*model.Element, len(s.elements))
	for i, el := range s.elements {
		els[i] = el.Clone()
	}
	return d.ReplaceElements(pageID, els)
}

// structural is a command whose inverse is a page snapshot restore.
type structural struct {
	name   string
	d      *model.Diagram
	pageID string
	do     func() error
	before *pageSnapshot
}

func (c *structural) Name() string { return c.name }

func (c *structural) Apply() error {
	snap, err := snapshotPage(c.d, c.pageID)
	if err != nil {
		return err
	}
	if err := c.do(); err != nil {
		return err
	}
	c.before = snap
	return nil
}

func (c *structural) Revert() error { return c.before.restore(c.d, c.pageID) }

func lookup(d *model.Diagram, pageID, id string) (*model.Element, error) {
	p, ok := d.Page(pageID)
	if !ok {
		return nil, fmt.Errorf("page %s: %w", pageID, model.ErrUnknownPage)
	}
	el, ok := p.Element(id)
	if !ok {
		return nil, fmt.Errorf("element %s: %w", id, model.ErrUnknownElement)
	}
	return el, nil
}

// orGenerated resolves generated IDs at construction time so a redo
// recreates the element under the same ID the undo removed.
func orGenerated(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// =============================================================================
// Creation and removal
// =============================================================================

// CreateShape returns a command adding a shape via
// [model.Diagram.CreateShape]. An empty id is resolved to a generated
// UUID immediately so the command is replayable.
func CreateShape(d *model.Diagram, pageID, id, label, shapeType string, geom model.Rect) Command {
	id = orGenerated(id)
	return &structural{
		name: "create shape", d: d, pageID: pageID,
		do: func() error {
			_, err := d.CreateShape(pageID, id, label, shapeType, geom)
			return err
		},
	}
}

// CreateConnector returns a command adding a connector via
// [model.Diagram.CreateConnector].
func CreateConnector(d *model.Diagram, pageID, id, label, source, target string) Command {
	id = orGenerated(id)
	return &structural{
		name: "create connector", d: d, pageID: pageID,
		do: func() error {
			_, err := d.CreateConnector(pageID, id, label, source, target)
			return err
		},
	}
}

// CreateGroup returns a command adding an empty group via
// [model.Diagram.CreateGroup].
func CreateGroup(d *model.Diagram, pageID, id, label string) Command {
	id = orGenerated(id)
	return &structural{
		name: "create group", d: d, pageID: pageID,
		do: func() error {
			_, err := d.CreateGroup(pageID, id, label)
			return err
		},
	}
}

// DeleteElement returns a command removing an element via
// [model.Diagram.DeleteElement]. Undo restores the element together
// with everything the removal touched: cascaded connectors, detached
// endpoints, promoted group members.
func DeleteElement(d *model.Diagram, pageID, id string, policy model.DetachPolicy) Command {
	return &structural{
		name: "delete element", d: d, pageID: pageID,
		do:   func() error { return d.DeleteElement(pageID, id, policy) },
	}
}

// =============================================================================
// Scalar edits
// =============================================================================

type moveElement struct {
	d          *model.Diagram
	pageID, id string
	to, from   model.Point
}

// MoveElement returns a command repositioning an element.
func MoveElement(d *model.Diagram, pageID, id string, to model.Point) Command {
	return &moveElement{d: d, pageID: pageID, id: id, to: to}
}

func (c *moveElement) Name() string { return "move element" }

func (c *moveElement) Apply() error {
	el, err := lookup(c.d, c.pageID, c.id)
	if err != nil {
		return err
	}
	from := model.Point{X: el.Geometry.X, Y: el.Geometry.Y}
	if err := c.d.MoveElement(c.pageID, c.id, c.to); err != nil {
		return err
	}
	c.from = from
	return nil
}

func (c *moveElement) Revert() error { return c.d.MoveElement(c.pageID, c.id, c.from) }

type resizeElement struct {
	d             *model.Diagram
	pageID, id    string
	width, height float64
	oldW, oldH    float64
}

// ResizeElement returns a command changing an element's extent.
func ResizeElement(d *model.Diagram, pageID, id string, width, height float64) Command {
	return &resizeElement{d: d, pageID: pageID, id: id, width: width, height: height}
}

func (c *resizeElement) Name() string { return "resize element" }

func (c *resizeElement) Apply() error {
	el, err := lookup(c.d, c.pageID, c.id)
	if err != nil {
		return err
	}
	oldW, oldH := el.Geometry.Width, el.Geometry.Height
	if err := c.d.ResizeElement(c.pageID, c.id, c.width, c.height); err != nil {
		return err
	}
	c.oldW, c.oldH = oldW, oldH
	return nil
}

func (c *resizeElement) Revert() error {
	return c.d.ResizeElement(c.pageID, c.id, c.oldW, c.oldH)
}

type restyleElement struct {
	d          *model.Diagram
	pageID, id string
	style      style.Style
	old        style.Style
}

// RestyleElement returns a command replacing an element's style.
func RestyleElement(d *model.Diagram, pageID, id string, st style.Style) Command {
	return &restyleElement{d: d, pageID: pageID, id: id, style: st}
}

func (c *restyleElement) Name() string { return "restyle element" }

func (c *restyleElement) Apply() error {
	el, err := lookup(c.d, c.pageID, c.id)
	if err != nil {
		return err
	}
	old := el.Style.Clone()
	if err := c.d.RestyleElement(c.pageID, c.id, c.style); err != nil {
		return err
	}
	c.old = old
	return nil
}

func (c *restyleElement) Revert() error {
	return c.d.RestyleElement(c.pageID, c.id, c.old)
}

type setLabel struct {
	d          *model.Diagram
	pageID, id string
	label, old string
}

// SetLabel returns a command changing an element's label text.
func SetLabel(d *model.Diagram, pageID, id, label string) Command {
	return &setLabel{d: d, pageID: pageID, id: id, label: label}
}

func (c *setLabel) Name() string { return "edit label" }

func (c *setLabel) Apply() error {
	el, err := lookup(c.d, c.pageID, c.id)
	if err != nil {
		return err
	}
	old := el.Label
	if err := c.d.SetLabel(c.pageID, c.id, c.label); err != nil {
		return err
	}
	c.old = old
	return nil
}

func (c *setLabel) Revert() error { return c.d.SetLabel(c.pageID, c.id, c.old) }

type setRotation struct {
	d            *model.Diagram
	pageID, id   string
	degrees, old float64
}

// SetRotation returns a command rotating a shape.
func SetRotation(d *model.Diagram, pageID, id string, degrees float64) Command {
	return &setRotation{d: d, pageID: pageID, id: id, degrees: degrees}
}

func (c *setRotation) Name() string { return "rotate shape" }

func (c *setRotation) Apply() error {
	el, err := lookup(c.d, c.pageID, c.id)
	if err != nil {
		return err
	}
	var old float64
	if el.Kind == model.KindShape {
		old = el.Shape.Rotation
	}
	if err := c.d.SetRotation(c.pageID, c.id, c.degrees); err != nil {
		return err
	}
	c.old = old
	return nil
}

func (c *setRotation) Revert() error { return c.d.SetRotation(c.pageID, c.id, c.old) }

type setFlag struct {
	d          *model.Diagram
	pageID, id string
	name       string
	value, old bool
	get        func(*model.Element) bool
	set        func(pageID, id string, v bool) error
}

// SetElementVisible returns a command toggling visibility.
func SetElementVisible(d *model.Diagram, pageID, id string, visible bool) Command {
	return &setFlag{
		d: d, pageID: pageID, id: id, name: "set visibility", value: visible,
		get: func(el *model.Element) bool { return el.Visible },
		set: d.SetElementVisible,
	}
}

// SetElementLocked returns a command toggling the edit lock.
func SetElementLocked(d *model.Diagram, pageID, id string, locked bool) Command {
	return &setFlag{
		d: d, pageID: pageID, id: id, name: "set lock", value: locked,
		get: func(el *model.Element) bool { return el.Locked },
		set: d.SetElementLocked,
	}
}

func (c *setFlag) Name() string { return c.name }

func (c *setFlag) Apply() error {
	el, err := lookup(c.d, c.pageID, c.id)
	if err != nil {
		return err
	}
	old := c.get(el)
	if err := c.set(c.pageID, c.id, c.value); err != nil {
		return err
	}
	c.old = old
	return nil
}

func (c *setFlag) Revert() error { return c.set(c.pageID, c.id, c.old) }

// =============================================================================
// Connectivity
// =============================================================================

// Connect returns a command rewiring both connector endpoints via
// [model.Diagram.Connect]. Undo restores the prior endpoint state,
// including pinned points and dangling marks.
func Connect(d *model.Diagram, pageID, connectorID, source, target string) Command {
	return &structural{
		name: "connect", d: d, pageID: pageID,
		do:   func() error { return d.Connect(pageID, connectorID, source, target) },
	}
}

// Disconnect returns a command detaching one connector end, pinning it
// at the former endpoint's center.
func Disconnect(d *model.Diagram, pageID, connectorID string, end model.End) Command {
	return &structural{
		name: "disconnect", d: d, pageID: pageID,
		do:   func() error { return d.Disconnect(pageID, connectorID, end) },
	}
}

type setWaypoints struct {
	d          *model.Diagram
	pageID, id string
	points     []model.Point
	old        []model.Point
}

// SetWaypoints returns a command replacing a connector's route.
func SetWaypoints(d *model.Diagram, pageID, connectorID string, pts []model.Point) Command {
	return &setWaypoints{d: d, pageID: pageID, id: connectorID, points: pts}
}

func (c *setWaypoints) Name() string { return "set waypoints" }

func (c *setWaypoints) Apply() error {
	el, err := lookup(c.d, c.pageID, c.id)
	if err != nil {
		return err
	}
	var old []model.Point
	if el.Kind == model.KindConnector {
		old = append(old, el.Connector.Waypoints...)
	}
	if err := c.d.SetWaypoints(c.pageID, c.id, c.points); err != nil {
		return err
	}
	c.old = old
	return nil
}

func (c *setWaypoints) Revert() error { return c.d.SetWaypoints(c.pageID, c.id, c.old) }

// =============================================================================
// Grouping and z-order
// =============================================================================

// Group returns a command collecting top-level elements into a new
// group via [model.Diagram.Group].
func Group(d *model.Diagram, pageID, groupID, label string, memberIDs []string) Command {
	groupID = orGenerated(groupID)
	return &structural{
		name: "group elements", d: d, pageID: pageID,
		do: func() error {
			_, err := d.Group(pageID, groupID, label, memberIDs)
			return err
		},
	}
}

// Ungroup returns a command dissolving a group, promoting its members.
func Ungroup(d *model.Diagram, pageID, groupID string) Command {
	return &structural{
		name: "ungroup", d: d, pageID: pageID,
		do:   func() error { return d.Ungroup(pageID, groupID) },
	}
}

// AddToGroup returns a command attaching an element to a group.
func AddToGroup(d *model.Diagram, pageID, groupID, memberID string) Command {
	return &structural{
		name: "add to group", d: d, pageID: pageID,
		do:   func() error { return d.AddToGroup(pageID, groupID, memberID) },
	}
}

// RemoveFromGroup returns a command detaching an element from a group.
func RemoveFromGroup(d *model.Diagram, pageID, groupID, memberID string) Command {
	return &structural{
		name: "remove from group", d: d, pageID: pageID,
		do:   func() error { return d.RemoveFromGroup(pageID, groupID, memberID) },
	}
}

// Reorder returns a command moving an element to a z-order position.
func Reorder(d *model.Diagram, pageID, id string, to int) Command {
	return &structural{
		name: "reorder", d: d, pageID: pageID,
		do:   func() error { return d.Reorder(pageID, id, to) },
	}
}
