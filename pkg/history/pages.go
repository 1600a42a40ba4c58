package history

import (
	"fmt"
	"slices"

	"github.com/inklet/inklet/pkg/model"
)

// =============================================================================
// Page commands
// =============================================================================

type addPage struct {
	d        *model.Diagram
	id, name string
}

// AddPage returns a command appending an empty page. An empty id is
// resolved to a generated UUID immediately.
func AddPage(d *model.Diagram, id, name string) Command {
	return &addPage{d: d, id: orGenerated(id), name: name}
}

func (c *addPage) Name() string { return "add page" }

func (c *addPage) Apply() error {
	_, err := c.d.AddPage(c.id, c.name)
	return err
}

func (c *addPage) Revert() error { return c.d.RemovePage(c.id) }

type removePage struct {
	d      *model.Diagram
	pageID string

	name        string
	grid        model.Grid
	background  string
	extra       []model.Attr
	envelope    []model.Attr
	extraXML    []string
	envelopeXML []string
	index       int
	elements    *pageSnapshot
}

// RemovePage returns a command deleting a page and everything on it.
// Undo rebuilds the page with its settings, contents and position.
func RemovePage(d *model.Diagram, pageID string) Command {
	return &removePage{d: d, pageID: pageID}
}

func (c *removePage) Name() string { return "remove page" }

func (c *removePage) Apply() error {
	p, ok := c.d.Page(c.pageID)
	if !ok {
		return fmt.Errorf("page %s: %w", c.pageID, model.ErrUnknownPage)
	}
	snap, err := snapshotPage(c.d, c.pageID)
	if err != nil {
		return err
	}
	c.name = p.Name()
	c.grid = p.Grid()
	c.background = p.Background()
	c.extra = p.Extra()
	c.envelope = p.Envelope()
	c.extraXML = p.ExtraXML()
	c.envelopeXML = p.EnvelopeXML()
	c.index = slices.IndexFunc(c.d.Pages(), func(q *model.Page) bool { return q.ID() == c.pageID })
	c.elements = snap
	return c.d.RemovePage(c.pageID)
}

func (c *removePage) Revert() error {
	p := model.NewPage(c.pageID, c.name)
	p.SetGrid(c.grid)
	p.SetBackground(c.background)
	p.SetExtra(c.extra)
	p.SetEnvelope(c.envelope)
	p.SetExtraXML(c.extraXML)
	p.SetEnvelopeXML(c.envelopeXML)
	if err := c.d.AttachPage(p); err != nil {
		return err
	}
	if err := c.elements.restore(c.d, c.pageID); err != nil {
		return err
	}
	return c.d.MovePage(c.pageID, c.index)
}

type renamePage struct {
	d         *model.Diagram
	pageID    string
	name, old string
}

// RenamePage returns a command changing a page's display name.
func RenamePage(d *model.Diagram, pageID, name string) Command {
	return &renamePage{d: d, pageID: pageID, name: name}
}

func (c *renamePage) Name() string { return "rename page" }

func (c *renamePage) Apply() error {
	p, ok := c.d.Page(c.pageID)
	if !ok {
		return fmt.Errorf("page %s: %w", c.pageID, model.ErrUnknownPage)
	}
	old := p.Name()
	if err := c.d.RenamePage(c.pageID, c.name); err != nil {
		return err
	}
	c.old = old
	return nil
}

func (c *renamePage) Revert() error { return c.d.RenamePage(c.pageID, c.old) }

type movePage struct {
	d       *model.Diagram
	pageID  string
	to, old int
}

// MovePage returns a command reordering a page within the document.
func MovePage(d *model.Diagram, pageID string, to int) Command {
	return &movePage{d: d, pageID: pageID, to: to}
}

func (c *movePage) Name() string { return "move page" }

func (c *movePage) Apply() error {
	old := slices.IndexFunc(c.d.Pages(), func(q *model.Page) bool { return q.ID() == c.pageID })
	if old < 0 {
		return fmt.Errorf("page %s: %w", c.pageID, model.ErrUnknownPage)
	}
	if err := c.d.MovePage(c.pageID, c.to); err != nil {
		return err
	}
	c.old = old
	return nil
}

func (c *movePage) Revert() error { return c.d.MovePage(c.pageID, c.old) }

type setPageGrid struct {
	d         *model.Diagram
	pageID    string
	grid, old model.Grid
}

// SetPageGrid returns a command changing a page's grid settings.
func SetPageGrid(d *model.Diagram, pageID string, grid model.Grid) Command {
	return &setPageGrid{d: d, pageID: pageID, grid: grid}
}

func (c *setPageGrid) Name() string { return "set page grid" }

func (c *setPageGrid) Apply() error {
	p, ok := c.d.Page(c.pageID)
	if !ok {
		return fmt.Errorf("page %s: %w", c.pageID, model.ErrUnknownPage)
	}
	old := p.Grid()
	if err := c.d.SetPageGrid(c.pageID, c.grid); err != nil {
		return err
	}
	c.old = old
	return nil
}

func (c *setPageGrid) Revert() error { return c.d.SetPageGrid(c.pageID, c.old) }

// =============================================================================
// Document commands
// =============================================================================

type renameDiagram struct {
	d         *model.Diagram
	name, old string
}

// RenameDiagram returns a command changing the document name.
func RenameDiagram(d *model.Diagram, name string) Command {
	return &renameDiagram{d: d, name: name}
}

func (c *renameDiagram) Name() string { return "rename document" }

func (c *renameDiagram) Apply() error {
	old := c.d.Name()
	if err := c.d.SetName(c.name); err != nil {
		return err
	}
	c.old = old
	return nil
}

func (c *renameDiagram) Revert() error { return c.d.SetName(c.old) }

type setMeta struct {
	d          *model.Diagram
	key, value string
	old        string
	had        bool
}

// SetMeta returns a command storing a document metadata value. Undo
// restores the prior value, or removes the key if it was absent.
func SetMeta(d *model.Diagram, key, value string) Command {
	return &setMeta{d: d, key: key, value: value}
}

func (c *setMeta) Name() string { return "set metadata" }

func (c *setMeta) Apply() error {
	old, had := c.d.Meta(c.key)
	if err := c.d.SetMeta(c.key, c.value); err != nil {
		return err
	}
	c.old, c.had = old, had
	return nil
}

func (c *setMeta) Revert() error {
	if !c.had {
		return c.d.DeleteMeta(c.key)
	}
	return c.d.SetMeta(c.key, c.old)
}
