package history_test

import (
	"fmt"

	"github.com/inklet/inklet/pkg/history"
	"github.com/inklet/inklet/pkg/model"
)

func ExampleManager() {
	d := model.NewDiagram("demo")
	p, _ := d.AddPage("main", "Main")

	mgr := history.NewManager(100)
	_ = mgr.Execute(history.CreateShape(d, p.ID(), "box", "Box", "rectangle",
		model.Rect{Width: 100, Height: 60}))
	_ = mgr.Execute(history.SetLabel(d, p.ID(), "box", "Renamed"))

	fmt.Println("undoable:", mgr.UndoName())
	_ = mgr.Undo()

	el, _ := p.Element("box")
	fmt.Println("label:", el.Label)

	_ = mgr.Redo()
	el, _ = p.Element("box")
	fmt.Println("label:", el.Label)
	// Output:
	// undoable: edit label
	// label: Box
	// label: Renamed
}
