package document

import "errors"

// Sentinel errors returned by store operations.
var (
	ErrNotTracked     = errors.New("document not tracked")
	ErrAlreadyTracked = errors.New("document already tracked")
	ErrIsDirectory    = errors.New("path is a directory")
	ErrBinaryFile     = errors.New("binary content")
	ErrTooLarge       = errors.New("file too large")
	ErrViewNotFound   = errors.New("view not found")
)

// PathError wraps an error with the operation and path it occurred on.
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}
