package store

import (
	"errors"
	"fmt"
)

var (
	ErrValidation  = errors.New("title and description cannot be empty")
	ErrNotFound    = errors.New("task not found")
	ErrAmbiguousID = errors.New("id prefix matches more than one task")

	// ErrNoChange is informational: an edit was submitted with the current values.
	ErrNoChange = errors.New("no changes made")
)

// StorageError reports a backing file that could not be read or written.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s task file %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
