package textbook

import (
	"fmt"
	"time"

	"github.com/alnah/go-textbook/internal/notebook"
	"github.com/alnah/go-textbook/internal/state"
)

// NotebookResult is the outcome of processing one notebook.
type NotebookResult struct {
	Notebook    string // file name, the notebook's identity
	Path        string
	Fingerprint notebook.Fingerprint
	Decision    Decision
	Advisories  []Advisory

	// Initiated is true when an execution was attempted in this build.
	Initiated     bool
	FullyExecuted bool
	ExecutedCells int // counted on the notebook that was rendered
	CodeCells     int
	Version       state.VersionRecord
	Commit        string

	SidecarPath string
	Err         error
	Duration    time.Duration
}

// Report summarises a build. Notebooks are in processing order.
type Report struct {
	Mode             BuildMode
	Filter           ExecutionFilter
	InstalledVersion string
	Notebooks        []NotebookResult
	Advisories       []Advisory // build-level
	Duration         time.Duration
}

// Executed counts notebooks whose execution was initiated.
func (r *Report) Executed() int {
	n := 0
	for _, nb := range r.Notebooks {
		if nb.Initiated {
			n++
		}
	}
	return n
}

// Failed returns the notebooks that could not be processed.
func (r *Report) Failed() []NotebookResult {
	var failed []NotebookResult
	for _, nb := range r.Notebooks {
		if nb.Err != nil {
			failed = append(failed, nb)
		}
	}
	return failed
}

// AllAdvisories returns build-level advisories followed by per-notebook
// ones in processing order.
func (r *Report) AllAdvisories() []Advisory {
	all := append([]Advisory(nil), r.Advisories...)
	for _, nb := range r.Notebooks {
		all = append(all, nb.Advisories...)
	}
	return all
}

// Warnings counts warning-level advisories.
func (r *Report) Warnings() int {
	n := 0
	for _, a := range r.AllAdvisories() {
		if a.IsWarning() {
			n++
		}
	}
	return n
}

// Err returns ErrNotebookFailures when any notebook failed.
func (r *Report) Err() error {
	if failed := r.Failed(); len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrNotebookFailures, len(failed), len(r.Notebooks))
	}
	return nil
}
