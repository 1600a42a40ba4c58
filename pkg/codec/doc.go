// Package codec reads and writes diagram documents in the draw.io
// interchange format.
//
// # Format
//
// A document is an XML envelope with one child element per page:
//
//	<mxfile name="sketch" version="1">
//	  <diagram id="p1" name="Page 1">
//	    <mxGraphModel grid="1" gridSize="10">
//	      <root>
//	        <mxCell id="0" />
//	        <mxCell id="1" parent="0" />
//	        <mxCell id="a" value="Box" style="rounded=0" parent="1" vertex="1">
//	          <mxGeometry x="0" y="0" width="100" height="60" as="geometry" />
//	        </mxCell>
//	      </root>
//	    </mxGraphModel>
//	  </diagram>
//	</mxfile>
//
// A page may instead carry its graph model as character data: the model
// XML compressed with raw deflate and encoded as standard base64. Both
// forms can appear in one file, and [WriteOptions.Compress] selects the
// output form per document.
//
// The first two cells are structural: cell "0" is the hidden root and
// cell "1" the default layer. They are skipped on read and synthesized
// on write. Every other cell is a shape (vertex), connector (edge) or
// group (vertex whose style carries the group flag).
//
// # Fidelity
//
// Reading and re-writing a document must not lose information the model
// assigns no meaning to:
//
//   - Unrecognized attributes on any node are kept in source order and
//     re-emitted.
//   - Unrecognized cell children are kept as verbatim XML, as are
//     unrecognized children of the root, diagram and envelope nodes.
//   - A cell inside an attribute-carrying "object" or "UserObject"
//     wrapper decodes to a regular element that remembers its wrapper;
//     the wrapper's id and label become the element's, everything else
//     rides along and the wrapper is rebuilt on write. A wrapper with
//     no cell inside is kept as verbatim XML.
//   - Style strings reproduce their source text byte for byte unless
//     the style was edited.
//   - Connector endpoints that reference a missing element are marked
//     dangling and written back with the original reference.
//
// One caveat: Go's XML decoder resolves attribute namespace prefixes to
// their URIs, so a namespaced foreign attribute re-encodes qualified by
// the URI rather than the source prefix. Values and local names are
// unaffected.
//
// # Reading and Writing
//
// Use [Read] or [ImportFile] to decode and [Write] or [ExportFile] to
// encode:
//
//	d, err := codec.ImportFile("sketch.drawio")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = codec.ExportFile(d, "out.drawio", codec.WriteOptions{Compress: true})
//
// [ReadWith] takes [ReadOptions]; setting StrictReferences turns
// dangling endpoints into [ErrUnresolvedReference] failures for callers
// that validate rather than edit.
package codec
