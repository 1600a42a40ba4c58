package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/inklet/inklet/pkg/codec"
	"github.com/inklet/inklet/pkg/history"
	"github.com/inklet/inklet/pkg/model"
)

// Editor styles
var (
	editSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	editNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	editDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	editTabStyle      = lipgloss.NewStyle().Foreground(colorGray)
	editActiveTab     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Underline(true)
	editStatusStyle   = lipgloss.NewStyle().Foreground(colorGreen)
	editErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// editCommand creates the edit command: an interactive terminal editor
// over a document with full undo/redo history.
func (c *CLI) editCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit a document interactively",
		Long: `Edit opens a document in a terminal editor. Elements can be renamed,
deleted, hidden, and reordered; every change is undoable. Writing out
uses the configured payload encoding.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := codec.ImportFile(args[0])
			if err != nil {
				return err
			}
			if d.PageCount() == 0 {
				return fmt.Errorf("%s has no pages", args[0])
			}

			m := newEditorModel(d, args[0], c.Config, limit)
			prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			final, err := prog.Run()
			if err != nil {
				return err
			}

			if em, ok := final.(editorModel); ok && em.dirty {
				printWarning("unsaved changes discarded")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "history", 100, "maximum undo depth (0 = unlimited)")

	return cmd
}

// editorModel is the bubbletea model for the document editor.
type editorModel struct {
	doc    *model.Diagram
	mgr    *history.Manager
	cfg    *Config
	path   string
	pageIx int
	cursor int
	offset int
	height int

	renaming bool
	input    string

	dirty  bool
	status string
	failed bool
}

func newEditorModel(d *model.Diagram, path string, cfg *Config, limit int) editorModel {
	return editorModel{
		doc:    d,
		mgr:    history.NewManager(limit),
		cfg:    cfg,
		path:   path,
		height: 15,
	}
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.renaming {
			return m.updateRename(msg), nil
		}
		return m.updateBrowse(msg)
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

// updateBrowse handles keys in the normal browsing mode.
func (m editorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			if m.cursor < m.offset {
				m.offset = m.cursor
			}
		}
	case "down", "j":
		if m.cursor < m.page().Len()-1 {
			m.cursor++
			if m.cursor >= m.offset+m.height {
				m.offset = m.cursor - m.height + 1
			}
		}

	case "tab":
		m.pageIx = (m.pageIx + 1) % m.doc.PageCount()
		m.cursor, m.offset = 0, 0
	case "shift+tab":
		m.pageIx = (m.pageIx + m.doc.PageCount() - 1) % m.doc.PageCount()
		m.cursor, m.offset = 0, 0

	case "r":
		if el := m.selected(); el != nil {
			m.renaming = true
			m.input = el.Label
		}

	case "d":
		if el := m.selected(); el != nil {
			m.exec(history.DeleteElement(m.doc, m.page().ID(), el.ID, m.cfg.detachPolicy()))
			if m.cursor >= m.page().Len() && m.cursor > 0 {
				m.cursor--
			}
		}

	case "h":
		if el := m.selected(); el != nil {
			m.exec(history.SetElementVisible(m.doc, m.page().ID(), el.ID, !el.Visible))
		}

	case "K":
		if el := m.selected(); el != nil && m.cursor > 0 {
			m.exec(history.Reorder(m.doc, m.page().ID(), el.ID, m.cursor-1))
			m.cursor--
		}
	case "J":
		if el := m.selected(); el != nil && m.cursor < m.page().Len()-1 {
			m.exec(history.Reorder(m.doc, m.page().ID(), el.ID, m.cursor+1))
			m.cursor++
		}

	case "u":
		if m.mgr.CanUndo() {
			name := m.mgr.UndoName()
			if err := m.mgr.Undo(); err != nil {
				m.fail(err)
			} else {
				m.note("undid " + name)
				m.clamp()
			}
		} else {
			m.note("nothing to undo")
		}
	case "ctrl+r":
		if m.mgr.CanRedo() {
			name := m.mgr.RedoName()
			if err := m.mgr.Redo(); err != nil {
				m.fail(err)
			} else {
				m.note("redid " + name)
				m.clamp()
			}
		} else {
			m.note("nothing to redo")
		}

	case "s":
		opts := codec.WriteOptions{Compress: m.cfg.Compress}
		if err := codec.ExportFile(m.doc, m.path, opts); err != nil {
			m.fail(err)
		} else {
			m.dirty = false
			m.note("saved " + m.path)
		}
	}
	return m, nil
}

// updateRename handles keys while typing a new label.
func (m editorModel) updateRename(msg tea.KeyMsg) tea.Model {
	switch msg.String() {
	case "esc":
		m.renaming = false
	case "enter":
		m.renaming = false
		if el := m.selected(); el != nil && m.input != el.Label {
			m.exec(history.SetLabel(m.doc, m.page().ID(), el.ID, m.input))
		}
	case "backspace":
		if len(m.input) > 0 {
			runes := []rune(m.input)
			m.input = string(runes[:len(runes)-1])
		}
	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			m.input += string(msg.Runes)
		}
	}
	return m
}

func (m editorModel) View() string {
	var b strings.Builder

	title := m.doc.Name()
	if m.dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.viewTabs())
	b.WriteString("\n\n")

	p := m.page()
	els := p.Elements()
	if len(els) == 0 {
		b.WriteString(editDimStyle.Render("  (empty page)"))
		b.WriteString("\n")
	}

	end := m.offset + m.height
	if end > len(els) {
		end = len(els)
	}
	for i := m.offset; i < end; i++ {
		b.WriteString(m.viewRow(els[i], i))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.renaming {
		b.WriteString(editSelectedStyle.Render("rename: ") + m.input + "▎")
	} else if m.failed {
		b.WriteString(editErrorStyle.Render(m.status))
	} else if m.status != "" {
		b.WriteString(editStatusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(editDimStyle.Render("↑/↓ move  ⇥ page  r rename  d delete  h hide  J/K reorder  u undo  ^r redo  s save  q quit"))
	return b.String()
}

// viewTabs renders the page name strip.
func (m editorModel) viewTabs() string {
	var parts []string
	for i, p := range m.doc.Pages() {
		style := editTabStyle
		if i == m.pageIx {
			style = editActiveTab
		}
		parts = append(parts, style.Render(p.Name()))
	}
	return strings.Join(parts, editDimStyle.Render(" · "))
}

// viewRow renders one element line.
func (m editorModel) viewRow(el *model.Element, i int) string {
	cursor := "  "
	if i == m.cursor {
		cursor = "▸ "
	}

	label := el.Label
	if label == "" {
		label = "(unlabeled)"
	}
	line := fmt.Sprintf("%-10s %s", el.Kind, label)
	if !el.Visible {
		line += " " + editDimStyle.Render("hidden")
	}
	if el.Locked {
		line += " " + editDimStyle.Render("locked")
	}

	style := editNormalStyle
	if i == m.cursor {
		style = editSelectedStyle
	}
	return cursor + style.Render(line) + "  " + editDimStyle.Render(el.ID)
}

// page returns the currently selected page.
func (m *editorModel) page() *model.Page {
	return m.doc.PageAt(m.pageIx)
}

// selected returns the element under the cursor, or nil on an empty page.
func (m *editorModel) selected() *model.Element {
	els := m.page().Elements()
	if m.cursor < 0 || m.cursor >= len(els) {
		return nil
	}
	return els[m.cursor]
}

// exec runs a command through the history manager and records the outcome.
func (m *editorModel) exec(cmd history.Command) {
	if err := m.mgr.Execute(cmd); err != nil {
		m.fail(err)
		return
	}
	m.dirty = true
	m.note(cmd.Name())
}

// clamp keeps the cursor inside the page after undo/redo changed its size.
func (m *editorModel) clamp() {
	m.dirty = true
	if n := m.page().Len(); m.cursor >= n {
		m.cursor = n - 1
		if m.cursor < 0 {
			m.cursor = 0
		}
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

func (m *editorModel) note(msg string) {
	m.status, m.failed = msg, false
}

func (m *editorModel) fail(err error) {
	m.status, m.failed = err.Error(), true
}
