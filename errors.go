package textbook

import "errors"

// Sentinel errors for library operations.
var (
	// Configuration errors, fatal before any notebook is processed.
	ErrInvalidExecutionFilter = errors.New("invalid execution filter")
	ErrInvalidCommitSpec      = errors.New("invalid dev build commit")
	ErrContentRootNotFound    = errors.New("content root not found")

	// ErrNoNotebooks is reported as an advisory, not returned.
	ErrNoNotebooks = errors.New("no notebooks found")

	// Per-notebook errors.
	ErrDuplicateNotebook = errors.New("duplicate notebook file name")
	ErrNotebookFailures  = errors.New("one or more notebooks could not be processed")
)
