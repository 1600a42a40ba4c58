package model

// ChangeKind identifies what a committed mutation did.
type ChangeKind string

// Change kinds emitted by diagram operations.
const (
	ChangeElementAdded     ChangeKind = "element_added"
	ChangeElementRemoved   ChangeKind = "element_removed"
	ChangeElementMoved     ChangeKind = "element_moved"
	ChangeElementResized   ChangeKind = "element_resized"
	ChangeElementRestyled  ChangeKind = "element_restyled"
	ChangeElementRelabeled ChangeKind = "element_relabeled"
	ChangeElementReordered ChangeKind = "element_reordered"
	ChangeElementFlags     ChangeKind = "element_flags"
	ChangeConnectorRewired ChangeKind = "connector_rewired"
	ChangeGroupMembership  ChangeKind = "group_membership"
	ChangePageReset        ChangeKind = "page_reset"
	ChangePageAdded        ChangeKind = "page_added"
	ChangePageRemoved      ChangeKind = "page_removed"
	ChangePageRenamed      ChangeKind = "page_renamed"
	ChangePageSettings     ChangeKind = "page_settings"
	ChangeDiagramRenamed   ChangeKind = "diagram_renamed"
	ChangeMetadata         ChangeKind = "metadata"
)

// Event describes one committed mutation. Events are delivered
// synchronously, in observer registration order, before the mutating
// call returns.
type Event struct {
	Kind ChangeKind
	// PageID is the affected page, or empty for diagram-level changes.
	PageID string
	// ElementIDs lists the affected elements, or is empty for page and
	// diagram level changes.
	ElementIDs []string
}

// Observer receives change events from a diagram.
//
// Handlers run on the mutating goroutine and must not mutate the
// diagram: any mutation attempted during delivery fails with
// [ErrReentrantMutation].
type Observer interface {
	DiagramChanged(Event)
}

// ObserverFunc adapts a plain function to the [Observer] interface.
type ObserverFunc func(Event)

// DiagramChanged calls f(e).
func (f ObserverFunc) DiagramChanged(e Event) { f(e) }

// busEntry pairs an observer with a registration token so that
// function-typed observers can be unsubscribed.
type busEntry struct {
	id int
	o  Observer
}

// bus is the synchronous, in-process change notification fan-out.
type bus struct {
	observers []busEntry
	nextID    int
	notifying bool
}

func (b *bus) subscribe(o Observer) func() {
	b.nextID++
	id := b.nextID
	b.observers = append(b.observers, busEntry{id: id, o: o})
	return func() {
		for i, e := range b.observers {
			if e.id == id {
				b.observers = append(b.observers[:i], b.observers[i+1:]...)
				return
			}
		}
	}
}

// publish delivers e to every observer in registration order. The
// notifying flag makes mutation entry points fail while delivery is
// in progress.
func (b *bus) publish(e Event) {
	if len(b.observers) == 0 {
		return
	}
	b.notifying = true
	defer func() { b.notifying = false }()
	for _, entry := range b.observers {
		entry.o.DiagramChanged(e)
	}
}
