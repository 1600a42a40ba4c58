package codec

import "errors"

var (
	// ErrMalformedXML is returned by [Read] when the input is not
	// well-formed XML, lacks the expected envelope structure, or carries
	// numeric attributes that do not parse. The error message names the
	// page and cell that caused the problem.
	ErrMalformedXML = errors.New("malformed document XML")

	// ErrMalformedCompression is returned by [Read] when a compressed
	// page payload is not valid base64 or does not inflate as raw
	// deflate data.
	ErrMalformedCompression = errors.New("malformed compressed payload")

	// ErrUnresolvedReference is returned by [ReadWith] for a connector
	// endpoint that names a missing element when
	// [ReadOptions.StrictReferences] is set, and by [Read] regardless of
	// options when a cell's parent does not resolve to a group on the
	// same page. Non-strict reads keep unresolved endpoints verbatim and
	// mark them dangling instead.
	ErrUnresolvedReference = errors.New("unresolved element reference")
)
