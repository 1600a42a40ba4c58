package model

import (
	"fmt"
	"math"
	"slices"

	"github.com/inklet/inklet/pkg/style"
)

// DetachPolicy selects what happens to connectors referencing an
// element when that element is deleted.
type DetachPolicy int

const (
	// DetachEndpoints nulls the reference and pins the connector end at
	// the removed element's last known geometry. This is the default,
	// data-preserving policy.
	DetachEndpoints DetachPolicy = iota
	// CascadeConnectors deletes dependent connectors along with the
	// element, transitively.
	CascadeConnectors
)

// End selects a connector endpoint.
type End int

const (
	// SourceEnd is the connector's source endpoint.
	SourceEnd End = iota
	// TargetEnd is the connector's target endpoint.
	TargetEnd
)

// =============================================================================
// Creation
// =============================================================================

// CreateShape creates a shape element and appends it to the page's
// z-order. An empty id is replaced with a generated UUID.
func (d *Diagram) CreateShape(pageID, id, label, shapeType string, geom Rect) (*Element, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	p, err := d.page(pageID)
	if err != nil {
		return nil, err
	}
	if geom.Width <= 0 || geom.Height <= 0 {
		return nil, fmt.Errorf("shape %gx%g: %w", geom.Width, geom.Height, ErrInvalidGeometry)
	}
	el := NewShape(id, label, shapeType)
	el.Geometry = geom
	if _, exists := p.byID[el.ID]; exists {
		return nil, fmt.Errorf("element %s: %w", el.ID, ErrDuplicateID)
	}
	p.insert(el, -1)
	d.bus.publish(Event{Kind: ChangeElementAdded, PageID: pageID, ElementIDs: []string{el.ID}})
	return el, nil
}

// CreateConnector creates a connector element between two elements of
// the page. Either endpoint may be empty for a floating end pinned at
// the corresponding point. Non-empty endpoints must resolve on the
// page, otherwise the operation fails with ErrUnknownElement and the
// model is unchanged.
func (d *Diagram) CreateConnector(pageID, id, label, source, target string) (*Element, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	p, err := d.page(pageID)
	if err != nil {
		return nil, err
	}
	for _, ref := range []string{source, target} {
		if ref == "" {
			continue
		}
		if _, ok := p.byID[ref]; !ok {
			return nil, fmt.Errorf("endpoint %s: %w", ref, ErrUnknownElement)
		}
	}
	el := NewConnector(id, label, source, target)
	if _, exists := p.byID[el.ID]; exists {
		return nil, fmt.Errorf("element %s: %w", el.ID, ErrDuplicateID)
	}
	p.insert(el, -1)
	d.bus.publish(Event{Kind: ChangeElementAdded, PageID: pageID, ElementIDs: []string{el.ID}})
	return el, nil
}

// CreateGroup creates an empty group element on the page. Use
// [Diagram.Group] to create a group around existing members in one
// operation.
func (d *Diagram) CreateGroup(pageID, id, label string) (*Element, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	p, err := d.page(pageID)
	if err != nil {
		return nil, err
	}
	el := NewGroup(id, label)
	if _, exists := p.byID[el.ID]; exists {
		return nil, fmt.Errorf("element %s: %w", el.ID, ErrDuplicateID)
	}
	p.insert(el, -1)
	d.bus.publish(Event{Kind: ChangeElementAdded, PageID: pageID, ElementIDs: []string{el.ID}})
	return el, nil
}

// InsertElement places a pre-built element at the given z-order index
// (-1 appends). This is the load and restore path: the codec uses it to
// translate file content, and undo uses it to revive deleted elements.
//
// ID uniqueness, parent-group linkage and containment acyclicity are
// validated. Connector endpoint resolution is not: the caller is
// responsible for endpoint integrity (the codec marks unresolved
// references dangling; commands go through [Diagram.CreateConnector]
// and [Diagram.Connect], which do validate).
func (d *Diagram) InsertElement(pageID string, el *Element, at int) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, err := d.page(pageID)
	if err != nil {
		return err
	}
	if _, exists := p.byID[el.ID]; exists {
		return fmt.Errorf("element %s: %w", el.ID, ErrDuplicateID)
	}
	if el.Parent != "" {
		parent, ok := p.byID[el.Parent]
		if !ok {
			return fmt.Errorf("parent %s: %w", el.Parent, ErrUnknownElement)
		}
		if parent.Kind != KindGroup {
			return fmt.Errorf("parent %s: %w", el.Parent, ErrNotGroup)
		}
		if p.wouldCycle(el.Parent, el.ID) {
			return fmt.Errorf("parent %s: %w", el.Parent, ErrGroupCycle)
		}
	}
	p.insert(el, at)
	if el.Parent != "" {
		parent := p.byID[el.Parent]
		if !slices.Contains(parent.Group.Children, el.ID) {
			parent.Group.Children = append(parent.Group.Children, el.ID)
		}
	}
	d.bus.publish(Event{Kind: ChangeElementAdded, PageID: pageID, ElementIDs: []string{el.ID}})
	return nil
}

// =============================================================================
// Removal
// =============================================================================

// DeleteElement removes the element from its page. Connectors whose
// resolved endpoints reference the element are handled per policy:
// detached with the end pinned at the removed element's center
// (DetachEndpoints, the default), or removed along with it
// (CascadeConnectors, transitive). Group members of a deleted group are
// promoted to the group's own parent. The element is also removed from
// any group's child list.
//
// The operation is atomic: if any removed element, or any surviving
// connector that would be detached, is locked, nothing changes and
// ErrElementLocked is returned.
func (d *Diagram) DeleteElement(pageID, id string, policy DetachPolicy) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, _, err := d.element(pageID, id)
	if err != nil {
		return err
	}

	// Plan the removal set first so the operation can fail atomically.
	doomed := []string{id}
	if policy == CascadeConnectors {
		for i := 0; i < len(doomed); i++ {
			for _, dep := range p.referencing(doomed[i]) {
				if !slices.Contains(doomed, dep.ID) {
					doomed = append(doomed, dep.ID)
				}
			}
		}
	}
	isDoomed := func(id string) bool { return slices.Contains(doomed, id) }

	for _, victim := range doomed {
		if p.byID[victim].Locked {
			return fmt.Errorf("element %s: %w", victim, ErrElementLocked)
		}
		// A locked connector cannot be rewired, so detaching it from a
		// removed endpoint must veto the whole delete.
		for _, dep := range p.referencing(victim) {
			if !isDoomed(dep.ID) && dep.Locked {
				return fmt.Errorf("element %s: %w", dep.ID, ErrElementLocked)
			}
		}
	}

	// Detach surviving connectors that reference a removed element.
	for _, victim := range doomed {
		gone := p.byID[victim]
		for _, dep := range p.referencing(victim) {
			if isDoomed(dep.ID) {
				continue
			}
			pin := gone.Geometry.Center()
			c := dep.Connector
			if c.Source == victim {
				c.Source = ""
				c.SourceDangling = false
				c.SourcePoint = &Point{X: pin.X, Y: pin.Y}
			}
			if c.Target == victim {
				c.Target = ""
				c.TargetDangling = false
				c.TargetPoint = &Point{X: pin.X, Y: pin.Y}
			}
		}
	}

	// Promote members of removed groups and prune membership links.
	for _, victim := range doomed {
		gone := p.byID[victim]
		if gone.Kind == KindGroup {
			for _, childID := range gone.Group.Children {
				if child, ok := p.byID[childID]; ok && !isDoomed(childID) {
					child.Parent = gone.Parent
					if gone.Parent != "" {
						grand := p.byID[gone.Parent]
						grand.Group.Children = append(grand.Group.Children, childID)
					}
				}
			}
		}
		if owner := p.groupOf(victim); owner != nil && !isDoomed(owner.ID) {
			owner.Group.Children = slices.DeleteFunc(owner.Group.Children,
				func(c string) bool { return c == victim })
		}
	}

	for _, victim := range doomed {
		p.remove(victim)
	}

	d.bus.publish(Event{Kind: ChangeElementRemoved, PageID: pageID, ElementIDs: doomed})
	return nil
}

// =============================================================================
// Geometry, style, label, flags
// =============================================================================

// MoveElement repositions the element's top-left corner.
func (d *Diagram) MoveElement(pageID, id string, to Point) error {
	if err := d.guard(); err != nil {
		return err
	}
	_, el, err := d.unlocked(pageID, id)
	if err != nil {
		return err
	}
	el.Geometry.X, el.Geometry.Y = to.X, to.Y
	d.bus.publish(Event{Kind: ChangeElementMoved, PageID: pageID, ElementIDs: []string{id}})
	return nil
}

// ResizeElement sets the element's width and height. Non-positive
// dimensions fail with ErrInvalidGeometry.
func (d *Diagram) ResizeElement(pageID, id string, width, height float64) error {
	if err := d.guard(); err != nil {
		return err
	}
	_, el, err := d.unlocked(pageID, id)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("resize to %gx%g: %w", width, height, ErrInvalidGeometry)
	}
	el.Geometry.Width, el.Geometry.Height = width, height
	d.bus.publish(Event{Kind: ChangeElementResized, PageID: pageID, ElementIDs: []string{id}})
	return nil
}

// RestyleElement replaces the element's style record.
func (d *Diagram) RestyleElement(pageID, id string, st style.Style) error {
	if err := d.guard(); err != nil {
		return err
	}
	_, el, err := d.unlocked(pageID, id)
	if err != nil {
		return err
	}
	el.Style = st.Clone()
	d.bus.publish(Event{Kind: ChangeElementRestyled, PageID: pageID, ElementIDs: []string{id}})
	return nil
}

// SetLabel changes the element's label text.
func (d *Diagram) SetLabel(pageID, id, label string) error {
	if err := d.guard(); err != nil {
		return err
	}
	_, el, err := d.unlocked(pageID, id)
	if err != nil {
		return err
	}
	el.Label = label
	d.bus.publish(Event{Kind: ChangeElementRelabeled, PageID: pageID, ElementIDs: []string{id}})
	return nil
}

// SetRotation sets a shape's rotation in degrees, normalized to [0,360).
func (d *Diagram) SetRotation(pageID, id string, degrees float64) error {
	if err := d.guard(); err != nil {
		return err
	}
	_, el, err := d.unlocked(pageID, id)
	if err != nil {
		return err
	}
	if el.Kind != KindShape {
		return fmt.Errorf("element %s is a %s: %w", id, el.Kind, ErrNotShape)
	}
	el.Shape.Rotation = math.Mod(math.Mod(degrees, 360)+360, 360)
	d.bus.publish(Event{Kind: ChangeElementResized, PageID: pageID, ElementIDs: []string{id}})
	return nil
}

// SetElementVisible toggles the element's visibility flag.
func (d *Diagram) SetElementVisible(pageID, id string, visible bool) error {
	if err := d.guard(); err != nil {
		return err
	}
	_, el, err := d.element(pageID, id)
	if err != nil {
		return err
	}
	el.Visible = visible
	d.bus.publish(Event{Kind: ChangeElementFlags, PageID: pageID, ElementIDs: []string{id}})
	return nil
}

// SetElementLocked toggles the element's lock flag. Locked elements
// reject geometry, style, label and endpoint mutations until unlocked.
func (d *Diagram) SetElementLocked(pageID, id string, locked bool) error {
	if err := d.guard(); err != nil {
		return err
	}
	_, el, err := d.element(pageID, id)
	if err != nil {
		return err
	}
	el.Locked = locked
	d.bus.publish(Event{Kind: ChangeElementFlags, PageID: pageID, ElementIDs: []string{id}})
	return nil
}

// =============================================================================
// Connector endpoints
// =============================================================================

// Connect wires the connector's endpoints to the given element IDs.
// An empty ID leaves that end floating (any existing pinned point is
// kept). Non-empty IDs must resolve on the page. Dangling marks on an
// end being rewired are cleared.
func (d *Diagram) Connect(pageID, connectorID, source, target string) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, el, err := d.unlocked(pageID, connectorID)
	if err != nil {
		return err
	}
	if el.Kind != KindConnector {
		return fmt.Errorf("element %s: %w", connectorID, ErrNotConnector)
	}
	for _, ref := range []string{source, target} {
		if ref == "" {
			continue
		}
		if _, ok := p.byID[ref]; !ok {
			return fmt.Errorf("endpoint %s: %w", ref, ErrUnknownElement)
		}
	}
	c := el.Connector
	c.Source, c.Target = source, target
	c.SourceDangling, c.TargetDangling = false, false
	if source != "" {
		c.SourcePoint = nil
	}
	if target != "" {
		c.TargetPoint = nil
	}
	d.bus.publish(Event{Kind: ChangeConnectorRewired, PageID: pageID, ElementIDs: []string{connectorID}})
	return nil
}

// Disconnect nulls one endpoint of the connector, pinning it at the
// former element's center when that element still resolves.
func (d *Diagram) Disconnect(pageID, connectorID string, end End) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, el, err := d.unlocked(pageID, connectorID)
	if err != nil {
		return err
	}
	if el.Kind != KindConnector {
		return fmt.Errorf("element %s: %w", connectorID, ErrNotConnector)
	}
	c := el.Connector
	ref := c.Source
	if end == TargetEnd {
		ref = c.Target
	}
	var pin *Point
	if prev, ok := p.byID[ref]; ok {
		center := prev.Geometry.Center()
		pin = &center
	}
	if end == SourceEnd {
		c.Source, c.SourceDangling, c.SourcePoint = "", false, pin
	} else {
		c.Target, c.TargetDangling, c.TargetPoint = "", false, pin
	}
	d.bus.publish(Event{Kind: ChangeConnectorRewired, PageID: pageID, ElementIDs: []string{connectorID}})
	return nil
}

// SetWaypoints replaces the connector's routing waypoints.
func (d *Diagram) SetWaypoints(pageID, connectorID string, pts []Point) error {
	if err := d.guard(); err != nil {
		return err
	}
	_, el, err := d.unlocked(pageID, connectorID)
	if err != nil {
		return err
	}
	if el.Kind != KindConnector {
		return fmt.Errorf("element %s: %w", connectorID, ErrNotConnector)
	}
	el.Connector.Waypoints = slices.Clone(pts)
	d.bus.publish(Event{Kind: ChangeConnectorRewired, PageID: pageID, ElementIDs: []string{connectorID}})
	return nil
}

// =============================================================================
// Grouping
// =============================================================================

// Group creates a group element containing the given members, in one
// atomic operation. Members must exist on the page and not already
// belong to another group (ErrScopeViolation otherwise). The group's
// geometry is the bounding box of its members.
func (d *Diagram) Group(pageID, groupID, label string, memberIDs []string) (*Element, error) {
	if err := d.guard(); err != nil {
		return nil, err
	}
	p, err := d.page(pageID)
	if err != nil {
		return nil, err
	}
	if len(memberIDs) == 0 {
		return nil, fmt.Errorf("group needs members: %w", ErrScopeViolation)
	}

	g := NewGroup(groupID, label)
	if _, exists := p.byID[g.ID]; exists {
		return nil, fmt.Errorf("element %s: %w", g.ID, ErrDuplicateID)
	}

	var bounds *Rect
	for _, mid := range memberIDs {
		m, ok := p.byID[mid]
		if !ok {
			return nil, fmt.Errorf("member %s: %w", mid, ErrUnknownElement)
		}
		if m.Parent != "" {
			return nil, fmt.Errorf("member %s already grouped under %s: %w", mid, m.Parent, ErrScopeViolation)
		}
		if mid == g.ID {
			return nil, fmt.Errorf("group %s: %w", g.ID, ErrGroupCycle)
		}
		if m.Kind != KindConnector {
			if bounds == nil {
				r := m.Geometry
				bounds = &r
			} else {
				u := bounds.Union(m.Geometry)
				bounds = &u
			}
		}
	}

	if bounds != nil {
		g.Geometry = *bounds
	}
	g.Group.Children = slices.Clone(memberIDs)
	p.insert(g, -1)
	for _, mid := range memberIDs {
		p.byID[mid].Parent = g.ID
	}
	d.bus.publish(Event{Kind: ChangeGroupMembership, PageID: pageID,
		ElementIDs: append([]string{g.ID}, memberIDs...)})
	return g, nil
}

// AddToGroup appends an existing element to a group's member list.
// Fails with ErrGroupCycle when the membership would make the group
// contain itself, directly or transitively, leaving the model unchanged.
func (d *Diagram) AddToGroup(pageID, groupID, memberID string) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, g, err := d.element(pageID, groupID)
	if err != nil {
		return err
	}
	if g.Kind != KindGroup {
		return fmt.Errorf("element %s: %w", groupID, ErrNotGroup)
	}
	m, ok := p.byID[memberID]
	if !ok {
		return fmt.Errorf("member %s: %w", memberID, ErrUnknownElement)
	}
	if p.wouldCycle(groupID, memberID) {
		return fmt.Errorf("member %s under group %s: %w", memberID, groupID, ErrGroupCycle)
	}
	if m.Parent != "" {
		return fmt.Errorf("member %s already grouped under %s: %w", memberID, m.Parent, ErrScopeViolation)
	}
	g.Group.Children = append(g.Group.Children, memberID)
	m.Parent = groupID
	d.bus.publish(Event{Kind: ChangeGroupMembership, PageID: pageID, ElementIDs: []string{groupID, memberID}})
	return nil
}

// RemoveFromGroup detaches a member from its group, keeping the member
// on the page at top level.
func (d *Diagram) RemoveFromGroup(pageID, groupID, memberID string) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, g, err := d.element(pageID, groupID)
	if err != nil {
		return err
	}
	if g.Kind != KindGroup {
		return fmt.Errorf("element %s: %w", groupID, ErrNotGroup)
	}
	m, ok := p.byID[memberID]
	if !ok || m.Parent != groupID {
		return fmt.Errorf("member %s not in group %s: %w", memberID, groupID, ErrScopeViolation)
	}
	g.Group.Children = slices.DeleteFunc(g.Group.Children, func(c string) bool { return c == memberID })
	m.Parent = ""
	d.bus.publish(Event{Kind: ChangeGroupMembership, PageID: pageID, ElementIDs: []string{groupID, memberID}})
	return nil
}

// Ungroup dissolves a group: members are promoted to the group's own
// parent (top level for an un-nested group) and the group element is
// removed. Member elements themselves stay on the page.
func (d *Diagram) Ungroup(pageID, groupID string) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, g, err := d.unlocked(pageID, groupID)
	if err != nil {
		return err
	}
	if g.Kind != KindGroup {
		return fmt.Errorf("element %s: %w", groupID, ErrNotGroup)
	}

	affected := append([]string{groupID}, g.Group.Children...)
	for _, childID := range g.Group.Children {
		if child, ok := p.byID[childID]; ok {
			child.Parent = g.Parent
			if g.Parent != "" {
				grand := p.byID[g.Parent]
				grand.Group.Children = append(grand.Group.Children, childID)
			}
		}
	}
	if owner := p.groupOf(groupID); owner != nil {
		owner.Group.Children = slices.DeleteFunc(owner.Group.Children,
			func(c string) bool { return c == groupID })
	}
	p.remove(groupID)
	d.bus.publish(Event{Kind: ChangeGroupMembership, PageID: pageID, ElementIDs: affected})
	return nil
}

// =============================================================================
// Z-order
// =============================================================================

// Reorder moves the element to the given z-order position. Positions
// clamp to [0, n). The page's z-order stays a dense permutation.
func (d *Diagram) Reorder(pageID, id string, to int) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, _, err := d.element(pageID, id)
	if err != nil {
		return err
	}
	from := p.IndexOf(id)
	to = max(0, min(to, len(p.elements)-1))
	if from == to {
		return nil
	}
	el := p.elements[from]
	p.elements = slices.Delete(p.elements, from, from+1)
	p.elements = slices.Insert(p.elements, to, el)
	d.bus.publish(Event{Kind: ChangeElementReordered, PageID: pageID, ElementIDs: []string{id}})
	return nil
}

// =============================================================================
// Wholesale restore
// =============================================================================

// ReplaceElements swaps the page's entire element list for els, which
// becomes the new z-order. The page takes ownership of the elements;
// callers restoring a snapshot should pass clones. Validation covers ID
// uniqueness and group linkage; connector endpoints are accepted as
// given, like [Diagram.InsertElement]. On error the page is unchanged.
//
// This is the restore path for undo machinery, not an editing surface.
func (d *Diagram) ReplaceElements(pageID string, els []*Element) error {
	if err := d.guard(); err != nil {
		return err
	}
	p, err := d.page(pageID)
	if err != nil {
		return err
	}
	byID := make(map[string]*Element, len(els))
	for _, el := range els {
		if _, dup := byID[el.ID]; dup {
			return fmt.Errorf("element %s: %w", el.ID, ErrDuplicateID)
		}
		byID[el.ID] = el
	}
	for _, el := range els {
		if el.Parent == "" {
			continue
		}
		parent, ok := byID[el.Parent]
		if !ok {
			return fmt.Errorf("element %s: parent %s: %w", el.ID, el.Parent, ErrUnknownElement)
		}
		if parent.Kind != KindGroup {
			return fmt.Errorf("element %s: parent %s: %w", el.ID, el.Parent, ErrNotGroup)
		}
	}
	for _, el := range els {
		seen := map[string]bool{el.ID: true}
		for cur := byID[el.Parent]; cur != nil; cur = byID[cur.Parent] {
			if seen[cur.ID] {
				return fmt.Errorf("element %s: %w", el.ID, ErrGroupCycle)
			}
			seen[cur.ID] = true
		}
	}
	p.elements = slices.Clone(els)
	p.byID = byID
	d.bus.publish(Event{Kind: ChangePageReset, PageID: pageID})
	return nil
}
