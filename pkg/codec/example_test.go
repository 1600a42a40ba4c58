package codec_test

import (
	"fmt"
	"strings"

	"github.com/inklet/inklet/pkg/codec"
	"github.com/inklet/inklet/pkg/model"
)

func ExampleRead() {
	const doc = `<mxfile name="demo">
  <diagram id="p1" name="Page 1">
    <mxGraphModel>
      <root>
        <mxCell id="0" />
        <mxCell id="1" parent="0" />
        <mxCell id="a" value="Start" style="ellipse;" parent="1" vertex="1">
          <mxGeometry x="0" y="0" width="80" height="80" as="geometry" />
        </mxCell>
        <mxCell id="b" value="Done" style="rounded=0;" parent="1" vertex="1">
          <mxGeometry x="200" y="0" width="100" height="60" as="geometry" />
        </mxCell>
        <mxCell id="ab" style="edgeStyle=orthogonalEdgeStyle;" parent="1" edge="1" source="a" target="b">
          <mxGeometry relative="1" as="geometry" />
        </mxCell>
      </root>
    </mxGraphModel>
  </diagram>
</mxfile>`

	d, err := codec.Read(strings.NewReader(doc))
	if err != nil {
		fmt.Println("read failed:", err)
		return
	}

	p := d.PageAt(0)
	fmt.Println("Document:", d.Name())
	fmt.Println("Elements:", p.Len())
	for _, el := range p.Elements() {
		fmt.Printf("%s: %s\n", el.Kind, el.ID)
	}
	// Output:
	// Document: demo
	// Elements: 3
	// shape: a
	// shape: b
	// connector: ab
}

func ExampleWrite() {
	d := model.NewDiagram("sketch")
	p, _ := d.AddPage("main", "Main")
	_, _ = d.CreateShape(p.ID(), "box", "Box", "rectangle", model.Rect{Width: 100, Height: 60})

	var out strings.Builder
	if err := codec.Write(d, &out); err != nil {
		fmt.Println("write failed:", err)
		return
	}
	fmt.Println(strings.Contains(out.String(), `<diagram id="main" name="Main">`))
	fmt.Println(strings.Contains(out.String(), `value="Box"`))
	// Output:
	// true
	// true
}
