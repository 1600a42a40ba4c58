// Package history provides undoable commands over a diagram document.
//
// # Commands
//
// Every editing operation of [model.Diagram] has a matching constructor
// here (for example [CreateShape], [DeleteElement], [Connect],
// [RenamePage]). A command validates nothing up front: Apply delegates
// to the model operation, captures the pre-state it needs, and reports
// the model's error verbatim on failure.
//
// Scalar edits (move, resize, label, flags) remember the single prior
// value. Structural edits (create, delete, grouping, rewiring,
// z-reorder) remember a deep snapshot of the owning page and revert by
// restoring it wholesale, so an undo of a cascading delete brings back
// removed connectors, detached endpoints and promoted group members in
// one step.
//
// # Manager
//
// A [Manager] executes commands and keeps a linear history with a
// cursor:
//
//	mgr := history.NewManager(100)
//	err := mgr.Execute(history.CreateShape(d, pageID, "", "Box", "rectangle", geom))
//	...
//	err = mgr.Undo()
//	err = mgr.Redo()
//
// Executing after an undo discards the undone tail. A command whose
// Apply fails leaves the history untouched. Undo past the oldest entry
// returns [ErrNothingToUndo]; redo past the newest returns
// [ErrNothingToRedo].
//
// The package is single-threaded like the model it edits: a manager
// and its document belong to one goroutine at a time.
package history
