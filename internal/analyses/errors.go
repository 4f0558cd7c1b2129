package analyses

import "errors"

var (
	// ErrNotFound indicates the analysis does not exist or is not visible
	// to the caller.
	ErrNotFound = errors.New("analysis not found")
	// ErrInvalidInput indicates the request failed validation.
	ErrInvalidInput = errors.New("invalid input")
)
