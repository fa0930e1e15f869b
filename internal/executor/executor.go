// Package executor runs notebooks through an external execution engine
// (jupyter nbconvert by default) and reports whether every code cell ran.
//
// Execution problems never surface as returned errors: a notebook that
// fails, times out or is cancelled yields a Result with FullySuccessful
// false and Err describing why, so one bad notebook cannot stop a build.
package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-textbook/internal/fileutil"
	"github.com/alnah/go-textbook/internal/notebook"
)

// Sentinel errors carried in Result.Err.
var (
	ErrExecutionFailed  = errors.New("notebook execution failed")
	ErrExecutionTimeout = errors.New("notebook cell timed out")
)

// Defaults for Options.
const (
	DefaultCellTimeout = 10 * time.Minute
	DefaultKernel      = "python3"
)

// DefaultCommand is the execution engine invocation the notebook
// arguments are appended to.
var DefaultCommand = []string{"jupyter", "nbconvert"}

// outputName is the base name nbconvert writes the executed copy under.
const outputName = "executed"

// Options configures an Executor.
type Options struct {
	Command     []string      // engine command, DefaultCommand when empty
	CellTimeout time.Duration // per-cell limit passed to the engine
	Kernel      string        // kernel name passed to the engine
	WriteBack   bool          // replace the source notebook with the executed copy
	TempDir     string        // parent for scratch directories, os.TempDir when empty
}

func (o Options) withDefaults() Options {
	if len(o.Command) == 0 {
		o.Command = DefaultCommand
	}
	if o.CellTimeout <= 0 {
		o.CellTimeout = DefaultCellTimeout
	}
	// The engine takes whole seconds; zero would mean no limit.
	if o.CellTimeout < time.Second {
		o.CellTimeout = time.Second
	}
	if o.Kernel == "" {
		o.Kernel = DefaultKernel
	}
	return o
}

// Result is the outcome of one execution attempt.
type Result struct {
	// Notebook is the executed notebook, or the source notebook when the
	// engine produced nothing. Nil only if neither could be read.
	Notebook        *notebook.Notebook
	Initiated       bool
	FullySuccessful bool
	Err             error
	Stderr          string
	Duration        time.Duration
}

// Executor runs notebooks.
type Executor struct {
	runner CommandRunner
	opts   Options
}

// New returns an Executor. A nil runner uses ExecRunner.
func New(opts Options, runner CommandRunner) *Executor {
	if runner == nil {
		runner = &ExecRunner{}
	}
	return &Executor{runner: runner, opts: opts.withDefaults()}
}

// Options returns the effective options.
func (e *Executor) Options() Options {
	return e.opts
}

// Args returns the engine arguments for executing path into outDir.
func (e *Executor) Args(path, outDir string) []string {
	args := append([]string{}, e.opts.Command[1:]...)
	return append(args,
		"--to", "notebook",
		"--execute",
		"--ExecutePreprocessor.timeout="+strconv.Itoa(int(e.opts.CellTimeout/time.Second)),
		"--ExecutePreprocessor.kernel_name="+e.opts.Kernel,
		"--output-dir", outDir,
		"--output", outputName,
		path,
	)
}

// Run executes the notebook at path. The engine runs in the notebook's
// directory so relative data paths resolve as they do interactively.
func (e *Executor) Run(ctx context.Context, path string) (res Result) {
	start := time.Now()
	res = Result{Initiated: true}
	defer func() { res.Duration = time.Since(start) }()

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	scratch, err := os.MkdirTemp(e.opts.TempDir, "textbook-exec-*")
	if err != nil {
		res.Err = fmt.Errorf("%w: creating scratch directory: %v", ErrExecutionFailed, err)
		res.Notebook, _ = notebook.Load(path)
		return res
	}
	defer func() { _ = os.RemoveAll(scratch) }()

	_, stderr, runErr := e.runner.Run(ctx, filepath.Dir(abs), e.opts.Command[0], e.Args(abs, scratch)...)
	res.Stderr = stderr

	executedPath := filepath.Join(scratch, outputName+notebook.Extension)
	executed, loadErr := notebook.Load(executedPath)
	switch {
	case loadErr == nil:
		executed.Path = path
		executed.Name = filepath.Base(path)
		res.Notebook = executed
		if e.opts.WriteBack {
			if err := fileutil.CopyFileAtomic(executedPath, path); err != nil {
				res.Err = fmt.Errorf("%w: writing back: %v", ErrExecutionFailed, err)
			}
		}
	default:
		res.Notebook, _ = notebook.Load(path)
	}

	if runErr != nil {
		res.Err = classify(ctx, runErr, stderr)
		return res
	}
	if loadErr != nil {
		res.Err = fmt.Errorf("%w: reading executed notebook: %v", ErrExecutionFailed, loadErr)
		return res
	}

	res.FullySuccessful = res.Err == nil && executed.IsFullyExecuted()
	return res
}

// classify maps an engine failure onto the package sentinels.
func classify(ctx context.Context, runErr error, stderr string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrExecutionFailed, ctxErr)
	}
	if strings.Contains(stderr, "TimeoutError") {
		return fmt.Errorf("%w: %s", ErrExecutionTimeout, lastLine(stderr))
	}
	if line := lastLine(stderr); line != "" {
		return fmt.Errorf("%w: %v: %s", ErrExecutionFailed, runErr, line)
	}
	return fmt.Errorf("%w: %v", ErrExecutionFailed, runErr)
}

// lastLine returns the last non-blank line of s, where engines put the
// exception summary.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n\r\t "), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
