package duckblog

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested post does not exist.
	ErrNotFound = errors.New("duckblog: content not found")

	// ErrMissingHeader means the document has no front matter block.
	ErrMissingHeader = errors.New("duckblog: missing front matter header")

	// ErrMalformedHeader means the front matter could not be decoded or lacks
	// a required field.
	ErrMalformedHeader = errors.New("duckblog: malformed front matter header")

	// ErrDirectoryMissing means the content directory does not exist. This is
	// a deployment error and fatal at startup.
	ErrDirectoryMissing = errors.New("duckblog: content directory missing")
)

// ParseError describes a front matter failure. It matches ErrMissingHeader or
// ErrMalformedHeader with errors.Is.
type ParseError struct {
	Kind   error
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Is(target error) bool { return target == e.Kind }

func (e *ParseError) Unwrap() error { return e.Err }

// ContentError ties a load failure to the content key that caused it.
type ContentError struct {
	Key string
	Err error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("duckblog: load %q: %v", e.Key, e.Err)
}

func (e *ContentError) Unwrap() error { return e.Err }
