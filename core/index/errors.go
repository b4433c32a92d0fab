package index

import "errors"

var (
	// ErrClosed is returned by operations on an index that is not open.
	ErrClosed = errors.New("index is not open")
	// ErrAlreadyOpen is returned when defining tables on an open index.
	ErrAlreadyOpen = errors.New("index is already open")
	// ErrUnknownTable is returned when querying a table that was never defined.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownIndex is returned when ordering by an undeclared secondary index.
	ErrUnknownIndex = errors.New("unknown secondary index")
	// ErrInvalidSchema is returned by Define when a table schema does not compile.
	ErrInvalidSchema = errors.New("invalid table schema")
	// ErrInvalidDocument marks a document that failed to parse or validate.
	ErrInvalidDocument = errors.New("invalid document")
)
