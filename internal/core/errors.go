package core

import "errors"

// Common errors returned by the core package.
var (
	// ErrInvalidSortColumn is returned when sorting by a negative or
	// out-of-range column index.
	ErrInvalidSortColumn = errors.New("invalid sort column")

	// ErrInvalidRow is returned when a row index is out of range.
	ErrInvalidRow = errors.New("invalid row index")

	// ErrInvalidColumn is returned when a column index is out of range.
	ErrInvalidColumn = errors.New("invalid column index")

	// ErrInvalidPage is returned for a page or page size below 1.
	ErrInvalidPage = errors.New("invalid page")

	// ErrMissingData is returned when a response body has no data field.
	ErrMissingData = errors.New("malformed response: missing data field")

	// ErrTableNotFound is returned when a table key is not registered.
	ErrTableNotFound = errors.New("table not found")
)
