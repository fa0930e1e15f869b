package main

import (
	"errors"
	"os"

	textbook "github.com/alnah/go-textbook"
	"github.com/alnah/go-textbook/internal/config"
	"github.com/alnah/go-textbook/internal/logging"
	"github.com/alnah/go-textbook/internal/state"
)

// Exit codes for the textbook CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess   = 0 // Build finished, warnings included
	ExitGeneral   = 1 // General/unexpected error, failed version check
	ExitUsage     = 2 // Invalid flags, config, or state files
	ExitIO        = 3 // File not found, permission denied
	ExitNotebooks = 4 // One or more notebooks could not be processed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, textbook.ErrNotebookFailures) {
		return ExitNotebooks
	}

	// Usage/config/state errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrExecutionCommand) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, logging.ErrInvalidLogOption) ||
		errors.Is(err, textbook.ErrInvalidExecutionFilter) ||
		errors.Is(err, textbook.ErrInvalidCommitSpec) ||
		errors.Is(err, textbook.ErrContentRootNotFound) ||
		errors.Is(err, state.ErrSkipListNotFound) ||
		errors.Is(err, state.ErrSkipListParse) ||
		errors.Is(err, state.ErrHashFileParse) {
		return ExitUsage
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	return ExitGeneral
}
