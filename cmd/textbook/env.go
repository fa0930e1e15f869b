package main

import (
	"io"
	"os"
	"time"

	textbook "github.com/alnah/go-textbook"
	"github.com/alnah/go-textbook/internal/executor"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer

	// Runner runs external commands (version command, doctor probes).
	Runner executor.CommandRunner
	// Executor overrides the notebook engine built from the config.
	Executor textbook.NotebookExecutor
	// LookPath resolves a program on PATH.
	LookPath func(string) (string, error)
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:      time.Now,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Runner:   &executor.ExecRunner{},
		LookPath: lookPath,
	}
}
