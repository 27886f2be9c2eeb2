package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded marks lookups for a dataset name no one has loaded.
	ErrNotLoaded = errors.New("dataset not loaded")
	// ErrAlreadyLoaded marks an Ensure whose name is already bound to a
	// different source file. The cache only resets on process restart.
	ErrAlreadyLoaded = errors.New("dataset already loaded from a different file")
)

// LoadError reports a failed ingest: which file, a short reason suitable
// for operators, and the underlying cause.
type LoadError struct {
	Path   string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Reason)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
