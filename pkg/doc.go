// Package pkg provides the core libraries for Inklet diagram documents.
//
// # Overview
//
// Inklet reads, edits, and writes XML diagram documents of the kind
// produced by drawing tools: multi-page files whose pages hold shapes,
// connectors, and groups. The pkg directory is organized into five areas:
//
//  1. [model] - Domain logic (document, pages, elements, change events)
//  2. [style] - Style string parsing and mutation
//  3. [codec] - XML wire format with optional deflate compression
//  4. [history] - Undoable commands over the document model
//  5. [store], [render] - Persistence backends and Graphviz views
//
// # Architecture
//
// The typical data flow through Inklet:
//
//	XML document file
//	         ↓
//	    [codec] package (decode pages and cells)
//	         ↓
//	    [model] package (diagram, pages, elements)
//	         ↓
//	    [history] package (apply and revert edits)
//	         ↓
//	    [codec] / [render] / [store] output
//
// # Quick Start
//
// Load a document, edit it with undo support, and write it back:
//
//	import (
//	    "github.com/inklet/inklet/pkg/codec"
//	    "github.com/inklet/inklet/pkg/history"
//	)
//
//	// 1. Decode
//	d, _ := codec.ImportFile("flow.drawio")
//
//	// 2. Edit through the history manager
//	mgr := history.NewManager(100)
//	page := d.PageAt(0)
//	_ = mgr.Execute(history.SetLabel(d, page.ID(), "intake", "Inbox"))
//
//	// 3. Undo is always available
//	_ = mgr.Undo()
//
//	// 4. Encode
//	_ = codec.ExportFile(d, "flow.drawio", codec.WriteOptions{Compress: true})
//
// # Main Packages
//
// [model] - The document model. A Diagram owns ordered Pages; a Page owns
// z-ordered Elements (shapes, connectors, groups). All mutation goes through
// Diagram methods, which validate invariants and publish change events to
// subscribed observers.
//
// [style] - Key/value style strings ("rounded=1;fillColor=#dae8fc;").
// Unrecognized entries survive parse and re-serialization byte for byte.
//
// [codec] - The mxfile wire format: one XML diagram node per page, with the
// page payload either inline XML or base64-encoded raw deflate. Unknown
// attributes and foreign child nodes are preserved across a round trip.
//
// [history] - Command objects with Apply/Revert pairs and a bounded
// undo/redo manager. Structural commands snapshot the affected page so
// cascading edits revert exactly.
//
// [store] - Named document persistence. FileStore for the CLI, MemoryStore
// for tests, RedisStore and MongoStore for server deployments.
//
// [render] - Read-only Graphviz projections of a page (DOT, SVG, PNG).
package pkg
