package history_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/inklet/inklet/pkg/codec"
	"github.com/inklet/inklet/pkg/history"
	"github.com/inklet/inklet/pkg/model"
)

func newDoc(t *testing.T) (*model.Diagram, string) {
	t.Helper()
	d := model.NewDiagram("doc")
	p, err := d.AddPage("main", "Main")
	if err != nil {
		t.Fatal(err)
	}
	return d, p.ID()
}

// fingerprint serializes the document so states can be compared for
// exact equality.
func fingerprint(t *testing.T, d *model.Diagram) string {
	t.Helper()
	var b strings.Builder
	if err := codec.Write(d, &b); err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
	return b.String()
}

func TestExecuteUndoRedoCycle(t *testing.T) {
	d, pageID := newDoc(t)
	mgr := history.NewManager(0)

	empty := fingerprint(t, d)

	steps := []history.Command{
		history.CreateShape(d, pageID, "a", "A", "rectangle", model.Rect{Width: 100, Height: 60}),
		history.CreateShape(d, pageID, "b", "B", "ellipse", model.Rect{X: 200, Width: 100, Height: 60}),
		history.CreateConnector(d, pageID, "ab", "", "a", "b"),
	}
	var states []string
	for _, cmd := range steps {
		if err := mgr.Execute(cmd); err != nil {
			t.Fatalf("Execute(%s): %v", cmd.Name(), err)
		}
		states = append(states, fingerprint(t, d))
	}

	// Walk back to the empty page, checking each intermediate state.
	for i := len(steps) - 1; i >= 0; i-- {
		if err := mgr.Undo(); err != nil {
			t.Fatalf("Undo step %d: %v", i, err)
		}
		want := empty
		if i > 0 {
			want = states[i-1]
		}
		if got := fingerprint(t, d); got != want {
			t.Fatalf("state after undoing step %d diverged:\n%s", i, got)
		}
	}
	if err := mgr.Undo(); !errors.Is(err, history.ErrNothingToUndo) {
		t.Fatalf("exhausted undo = %v, want ErrNothingToUndo", err)
	}

	// And forward again.
	for i := range steps {
		if err := mgr.Redo(); err != nil {
			t.Fatalf("Redo step %d: %v", i, err)
		}
		if got := fingerprint(t, d); got != states[i] {
			t.Fatalf("state after redoing step %d diverged:\n%s", i, got)
		}
	}
	if err := mgr.Redo(); !errors.Is(err, history.ErrNothingToRedo) {
		t.Fatalf("exhausted redo = %v, want ErrNothingToRedo", err)
	}
}

func TestExecuteTruncatesRedoTail(t *testing.T) {
	d, pageID := newDoc(t)
	mgr := history.NewManager(0)

	for _, id := range []string{"a", "b"} {
		cmd := history.CreateShape(d, pageID, id, id, "rectangle", model.Rect{Width: 10, Height: 10})
		if err := mgr.Execute(cmd); err != nil {
			t.Fatal(err)
		}
	}
	if err := mgr.Undo(); err != nil {
		t.Fatal(err)
	}
	if !mgr.CanRedo() {
		t.Fatal("expected a redoable tail")
	}

	cmd := history.CreateShape(d, pageID, "c", "C", "rectangle", model.Rect{Width: 10, Height: 10})
	if err := mgr.Execute(cmd); err != nil {
		t.Fatal(err)
	}
	if mgr.CanRedo() {
		t.Error("redo tail should be discarded by a fresh Execute")
	}
	if mgr.Len() != 2 {
		t.Errorf("history length = %d, want 2", mgr.Len())
	}
}

func TestFailedCommandNotRecorded(t *testing.T) {
	d, pageID := newDoc(t)
	mgr := history.NewManager(0)

	before := fingerprint(t, d)
	cmd := history.CreateConnector(d, pageID, "dangle", "", "nope", "")
	if err := mgr.Execute(cmd); !errors.Is(err, model.ErrUnknownElement) {
		t.Fatalf("Execute = %v, want ErrUnknownElement", err)
	}
	if mgr.CanUndo() {
		t.Error("failed command must not enter the history")
	}
	if got := fingerprint(t, d); got != before {
		t.Error("failed command mutated the document")
	}
}

func TestBoundedHistoryDropsOldest(t *testing.T) {
	d, pageID := newDoc(t)
	mgr := history.NewManager(2)

	for _, id := range []string{"a", "b", "c"} {
		cmd := history.CreateShape(d, pageID, id, id, "rectangle", model.Rect{Width: 10, Height: 10})
		if err := mgr.Execute(cmd); err != nil {
			t.Fatal(err)
		}
	}
	if mgr.Len() != 2 {
		t.Fatalf("history length = %d, want 2", mgr.Len())
	}
	if err := mgr.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Undo(); !errors.Is(err, history.ErrNothingToUndo) {
		t.Fatalf("undo beyond the bound = %v, want ErrNothingToUndo", err)
	}
	// The oldest command fell off, so "a" survives the full unwind.
	p, _ := d.Page(pageID)
	if _, ok := p.Element("a"); !ok {
		t.Error("element created by the evicted command should remain")
	}
}

func TestDeleteUndoRestoresCascade(t *testing.T) {
	d, pageID := newDoc(t)
	mgr := history.NewManager(0)

	if _, err := d.CreateShape(pageID, "a", "A", "rectangle", model.Rect{Width: 100, Height: 60}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateShape(pageID, "b", "B", "rectangle", model.Rect{X: 200, Width: 100, Height: 60}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateConnector(pageID, "ab", "", "a", "b"); err != nil {
		t.Fatal(err)
	}
	before := fingerprint(t, d)

	if err := mgr.Execute(history.DeleteElement(d, pageID, "a", model.CascadeConnectors)); err != nil {
		t.Fatal(err)
	}
	p, _ := d.Page(pageID)
	if p.Len() != 1 {
		t.Fatalf("cascade left %d elements, want 1", p.Len())
	}

	if err := mgr.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := fingerprint(t, d); got != before {
		t.Fatalf("undo of cascading delete diverged:\n%s", got)
	}
	ab, ok := p.Element("ab")
	if !ok {
		t.Fatal("cascaded connector not restored")
	}
	if ab.Connector.Source != "a" || ab.Connector.Target != "b" {
		t.Errorf("restored endpoints = %+v", ab.Connector)
	}
}

func TestDeleteUndoRestoresDetachedEndpoint(t *testing.T) {
	d, pageID := newDoc(t)
	mgr := history.NewManager(0)

	if _, err := d.CreateShape(pageID, "a", "A", "rectangle", model.Rect{Width: 100, Height: 60}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateShape(pageID, "b", "B", "rectangle", model.Rect{X: 200, Width: 100, Height: 60}); err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateConnector(pageID, "ab", "", "a", "b"); err != nil {
		t.Fatal(err)
	}
	before := fingerprint(t, d)

	if err := mgr.Execute(history.DeleteElement(d, pageID, "b", model.DetachEndpoints)); err != nil {
		t.Fatal(err)
	}
	p, _ := d.Page(pageID)
	ab, _ := p.Element("ab")
	if ab.Connector.Target != "" || ab.Connector.TargetPoint == nil {
		t.Fatalf("detach did not pin the freed end: %+v", ab.Connector)
	}

	if err := mgr.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := fingerprint(t, d); got != before {
		t.Fatal("undo of detaching delete diverged")
	}
}

func TestScalarCommandRoundTrips(t *testing.T) {
	d, pageID := newDoc(t)
	mgr := history.NewManager(0)
	if _, err := d.CreateShape(pageID, "a", "A", "rectangle", model.Rect{Width: 100, Height: 60}); err != nil {
		t.Fatal(err)
	}
	before := fingerprint(t, d)

	cmds := []history.Command{
		history.MoveElement(d, pageID, "a", model.Point{X: 40, Y: 50}),
		history.ResizeElement(d, pageID, "a", 200, 120),
		history.SetLabel(d, pageID, "a", "renamed"),
		history.SetRotation(d, pageID, "a", 90),
		history.SetElementVisible(d, pageID, "a", false),
		history.SetElementLocked(d, pageID, "a", true),
	}
	for _, cmd := range cmds {
		if err := mgr.Execute(cmd); err != nil {
			t.Fatalf("Execute(%s): %v", cmd.Name(), err)
		}
	}
	for mgr.CanUndo() {
		if err := mgr.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	if got := fingerprint(t, d); got != before {
		t.Fatalf("scalar undo chain diverged:\n%s", got)
	}
}

func TestRemovePageUndoRestoresEverything(t *testing.T) {
	d, _ := newDoc(t)
	mgr := history.NewManager(0)

	p2, err := d.AddPage("second", "Second")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.CreateShape(p2.ID(), "s", "S", "rectangle", model.Rect{Width: 50, Height: 50}); err != nil {
		t.Fatal(err)
	}
	if err := d.SetPageGrid(p2.ID(), model.Grid{Enabled: false, Size: 25}); err != nil {
		t.Fatal(err)
	}
	before := fingerprint(t, d)

	if err := mgr.Execute(history.RemovePage(d, "second")); err != nil {
		t.Fatal(err)
	}
	if d.PageCount() != 1 {
		t.Fatalf("pages = %d, want 1", d.PageCount())
	}
	if err := mgr.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := fingerprint(t, d); got != before {
		t.Fatalf("page restore diverged:\n%s", got)
	}
}

func TestGroupCommandsUndo(t *testing.T) {
	d, pageID := newDoc(t)
	mgr := history.NewManager(0)

	for _, id := range []string{"a", "b"} {
		if _, err := d.CreateShape(pageID, id, id, "rectangle", model.Rect{Width: 50, Height: 50}); err != nil {
			t.Fatal(err)
		}
	}
	before := fingerprint(t, d)

	if err := mgr.Execute(history.Group(d, pageID, "grp", "pair", []string{"a", "b"})); err != nil {
		t.Fatal(err)
	}
	p, _ := d.Page(pageID)
	a, _ := p.Element("a")
	if a.Parent != "grp" {
		t.Fatalf("a parent = %q, want grp", a.Parent)
	}

	if err := mgr.Execute(history.Ungroup(d, pageID, "grp")); err != nil {
		t.Fatal(err)
	}
	if a.Parent != "" {
		t.Fatalf("a parent after ungroup = %q", a.Parent)
	}

	if err := mgr.Undo(); err != nil {
		t.Fatal(err)
	}
	a, _ = p.Element("a")
	if a.Parent != "grp" {
		t.Error("undo of ungroup did not restore membership")
	}
	if err := mgr.Undo(); err != nil {
		t.Fatal(err)
	}
	if got := fingerprint(t, d); got != before {
		t.Fatal("undo of group did not restore the flat page")
	}
}

func TestSetMetaUndoRemovesFreshKey(t *testing.T) {
	d, _ := newDoc(t)
	mgr := history.NewManager(0)

	if err := mgr.Execute(history.SetMeta(d, "author", "sam")); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Execute(history.SetMeta(d, "author", "alex")); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Undo(); err != nil {
		t.Fatal(err)
	}
	if v, _ := d.Meta("author"); v != "sam" {
		t.Errorf("author = %q, want sam", v)
	}
	if err := mgr.Undo(); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Meta("author"); ok {
		t.Error("undo of the first set should remove the key")
	}
}
