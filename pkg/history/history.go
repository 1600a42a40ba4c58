package history

import "errors"

var (
	// ErrNothingToUndo is returned by [Manager.Undo] when the cursor is
	// at the start of the history.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned by [Manager.Redo] when no undone
	// command remains ahead of the cursor.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Command is a reversible document edit. Apply performs the edit and
// captures whatever pre-state Revert needs; Revert restores the
// document to the state Apply observed. A command is applied and
// reverted only through a [Manager], which guarantees the calls
// alternate and arrive in stack order.
type Command interface {
	Name() string
	Apply() error
	Revert() error
}

// Manager executes commands and keeps a bounded linear history of them.
//
// The cursor sits between the applied prefix and the undone tail.
// Executing a new command truncates the undone tail, so a divergent
// redo branch is discarded the moment the user edits again. A command
// whose Apply fails is not recorded and the cursor does not move.
type Manager struct {
	limit   int
	entries []Command
	cursor  int
}

// NewManager returns a manager keeping at most limit applied commands.
// A non-positive limit keeps the history unbounded.
func NewManager(limit int) *Manager {
	return &Manager{limit: limit}
}

// Execute applies cmd and appends it to the history. On failure the
// error is returned and the history is untouched.
func (m *Manager) Execute(cmd Command) error {
	if err := cmd.Apply(); err != nil {
		return err
	}
	m.entries = append(m.entries[:m.cursor], cmd)
	m.cursor = len(m.entries)
	if m.limit > 0 && len(m.entries) > m.limit {
		drop := len(m.entries) - m.limit
		m.entries = m.entries[drop:]
		m.cursor -= drop
	}
	return nil
}

// Undo reverts the most recent applied command.
func (m *Manager) Undo() error {
	if m.cursor == 0 {
		return ErrNothingToUndo
	}
	if err := m.entries[m.cursor-1].Revert(); err != nil {
		return err
	}
	m.cursor--
	return nil
}

// Redo re-applies the most recently undone command.
func (m *Manager) Redo() error {
	if m.cursor == len(m.entries) {
		return ErrNothingToRedo
	}
	if err := m.entries[m.cursor].Apply(); err != nil {
		return err
	}
	m.cursor++
	return nil
}

// CanUndo reports whether Undo would revert a command.
func (m *Manager) CanUndo() bool { return m.cursor > 0 }

// CanRedo reports whether Redo would re-apply a command.
func (m *Manager) CanRedo() bool { return m.cursor < len(m.entries) }

// UndoName returns the name of the command Undo would revert, or "".
func (m *Manager) UndoName() string {
	if m.cursor == 0 {
		return ""
	}
	return m.entries[m.cursor-1].Name()
}

// RedoName returns the name of the command Redo would re-apply, or "".
func (m *Manager) RedoName() string {
	if m.cursor == len(m.entries) {
		return ""
	}
	return m.entries[m.cursor].Name()
}

// Len returns the number of recorded commands, applied and undone.
func (m *Manager) Len() int { return len(m.entries) }

// Clear drops the entire history.
func (m *Manager) Clear() {
	m.entries = nil
	m.cursor = 0
}
