package model

import "errors"

var (
	// ErrUnknownPage is returned when a page ID does not resolve within
	// the diagram.
	ErrUnknownPage = errors.New("unknown page")

	// ErrDuplicateID is returned when an element ID collides within its
	// page, or a page ID collides within the diagram. IDs are unique
	// per containing scope.
	ErrDuplicateID = errors.New("duplicate ID")

	// ErrUnknownElement is returned when an element ID does not resolve
	// within its page. For connector endpoints this is the detached
	// reference case.
	ErrUnknownElement = errors.New("unknown element")

	// ErrNotConnector is returned by endpoint operations on an element
	// that is not a connector.
	ErrNotConnector = errors.New("element is not a connector")

	// ErrNotShape is returned by [Diagram.SetRotation] when the element
	// is not a shape.
	ErrNotShape = errors.New("element is not a shape")

	// ErrNotGroup is returned by membership operations on an element
	// that is not a group.
	ErrNotGroup = errors.New("element is not a group")

	// ErrGroupCycle is returned when an operation would make a group
	// contain itself, directly or transitively. Group containment must
	// stay acyclic.
	ErrGroupCycle = errors.New("group containment cycle")

	// ErrScopeViolation is returned when an operation crosses ownership
	// scopes: grouping an element that already belongs to another group,
	// or referencing an element through the wrong page.
	ErrScopeViolation = errors.New("ownership scope violation")

	// ErrElementLocked is returned when a mutation targets an element
	// whose lock flag is set. Clear the flag with
	// [Diagram.SetElementLocked] first.
	ErrElementLocked = errors.New("element is locked")

	// ErrInvalidGeometry is returned when a resize would produce a
	// non-positive width or height.
	ErrInvalidGeometry = errors.New("invalid geometry")

	// ErrReentrantMutation is returned when a change observer attempts
	// to mutate the diagram from inside its notification handler.
	// Observers must treat the model as read-only during delivery.
	ErrReentrantMutation = errors.New("re-entrant mutation from observer")
)

// IsInvariantViolation reports whether err is one of the structural
// invariant failures: ID collision, detached reference, group cycle,
// scope violation, or degenerate geometry. Operations failing with an
// invariant violation leave the model unchanged.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrDuplicateID) ||
		errors.Is(err, ErrUnknownElement) ||
		errors.Is(err, ErrGroupCycle) ||
		errors.Is(err, ErrScopeViolation) ||
		errors.Is(err, ErrInvalidGeometry)
}
