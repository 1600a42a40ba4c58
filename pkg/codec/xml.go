package codec

import "encoding/xml"

// Wire structs for decoding. Numeric attributes stay strings here so
// parse failures can be reported with the owning cell's location.
// Encoding is hand-built in encode.go for control over attribute order
// and verbatim re-emission of preserved foreign content.

type xmlFile struct {
	XMLName  xml.Name     `xml:"mxfile"`
	Name     string       `xml:"name,attr"`
	Version  string       `xml:"version,attr"`
	Diagrams []xmlDiagram `xml:"diagram"`
	Rest     []xmlNode    `xml:",any"`
	Attrs    []xml.Attr   `xml:",any,attr"`
}

// xmlDiagram is one page wrapper. A compressed page carries its payload
// as character data and has no inline model; an uncompressed page nests
// the model element directly.
type xmlDiagram struct {
	ID      string     `xml:"id,attr"`
	Name    string     `xml:"name,attr"`
	Model   *xmlModel  `xml:"mxGraphModel"`
	Content string     `xml:",chardata"`
	Rest    []xmlNode  `xml:",any"`
	Attrs   []xml.Attr `xml:",any,attr"`
}

type xmlModel struct {
	XMLName    xml.Name   `xml:"mxGraphModel"`
	Grid       string     `xml:"grid,attr"`
	GridSize   string     `xml:"gridSize,attr"`
	Background string     `xml:"background,attr"`
	Root       xmlRoot    `xml:"root"`
	Attrs      []xml.Attr `xml:",any,attr"`
}

// xmlRoot keeps the root's children in document order, which is the
// page z-order. Struct-field dispatch would split cells, wrapped cells
// and foreign nodes into separate slices and lose the interleaving, so
// the children are decoded token by token instead.
type xmlRoot struct {
	Children []xmlRootChild
}

// xmlRootChild is a tagged union: exactly one field is set.
type xmlRootChild struct {
	Cell   *xmlCell
	Object *xmlObject
	Raw    *xmlNode
}

func (r *xmlRoot) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "mxCell":
				c := new(xmlCell)
				if err := dec.DecodeElement(c, &t); err != nil {
					return err
				}
				r.Children = append(r.Children, xmlRootChild{Cell: c})
			case "object", "UserObject":
				o := new(xmlObject)
				if err := dec.DecodeElement(o, &t); err != nil {
					return err
				}
				o.Name = t.Name.Local
				r.Children = append(r.Children, xmlRootChild{Object: o})
			default:
				n := new(xmlNode)
				if err := dec.DecodeElement(n, &t); err != nil {
					return err
				}
				r.Children = append(r.Children, xmlRootChild{Raw: n})
			}
		case xml.EndElement:
			return nil
		}
	}
}

// xmlObject is an attribute-carrying wrapper around a cell ("object" or
// "UserObject"). The wrapper owns the element's id and label; the
// nested cell carries style, geometry and topology. Inner preserves the
// full body for wrappers without a cell.
type xmlObject struct {
	Name  string     `xml:"-"`
	Cell  *xmlCell   `xml:"mxCell"`
	Rest  []xmlNode  `xml:",any"`
	Inner string     `xml:",innerxml"`
	Attrs []xml.Attr `xml:",any,attr"`
}

type xmlCell struct {
	ID        string       `xml:"id,attr"`
	Value     string       `xml:"value,attr"`
	Style     string       `xml:"style,attr"`
	Parent    string       `xml:"parent,attr"`
	Vertex    string       `xml:"vertex,attr"`
	Edge      string       `xml:"edge,attr"`
	Source    string       `xml:"source,attr"`
	Target    string       `xml:"target,attr"`
	Visible   string       `xml:"visible,attr"`
	Locked    string       `xml:"locked,attr"`
	Collapsed string       `xml:"collapsed,attr"`
	Rotation  string       `xml:"rotation,attr"`
	Geometry  *xmlGeometry `xml:"mxGeometry"`
	Rest      []xmlNode    `xml:",any"`
	Attrs     []xml.Attr   `xml:",any,attr"`
}

type xmlGeometry struct {
	X        string     `xml:"x,attr"`
	Y        string     `xml:"y,attr"`
	Width    string     `xml:"width,attr"`
	Height   string     `xml:"height,attr"`
	Relative string     `xml:"relative,attr"`
	As       string     `xml:"as,attr"`
	Points   []xmlPoint `xml:"mxPoint"`
	Attrs    []xml.Attr `xml:",any,attr"`
}

type xmlPoint struct {
	X  string `xml:"x,attr"`
	Y  string `xml:"y,attr"`
	As string `xml:"as,attr"`
}

// xmlNode captures an unrecognized cell child verbatim so encoding can
// reproduce it.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}
