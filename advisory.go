package textbook

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/alnah/go-textbook/internal/executor"
	"github.com/alnah/go-textbook/internal/hints"
	"github.com/alnah/go-textbook/internal/version"
)

// AdvisoryKind classifies an operator-facing notice.
type AdvisoryKind int

const (
	// Raised under no-execution.
	AdvisoryNew AdvisoryKind = iota
	AdvisoryChanged
	AdvisoryStaleVersion
	AdvisoryPreviouslyIncomplete

	// Raised for skip-listed notebooks.
	AdvisorySkippedIncomplete
	AdvisorySkippedNeverExecuted

	// Raised after an execution attempt.
	AdvisoryExecutionIncomplete

	// Build-level, stable builds only.
	AdvisoryVersionAhead
	AdvisoryVersionMismatch

	// Build-level.
	AdvisoryNoNotebooks
)

var advisoryNames = [...]string{
	AdvisoryNew:                  "new",
	AdvisoryChanged:              "changed",
	AdvisoryStaleVersion:         "stale-version",
	AdvisoryPreviouslyIncomplete: "previously-incomplete",
	AdvisorySkippedIncomplete:    "skipped-incomplete",
	AdvisorySkippedNeverExecuted: "skipped-never-executed",
	AdvisoryExecutionIncomplete:  "execution-incomplete",
	AdvisoryVersionAhead:         "version-ahead",
	AdvisoryVersionMismatch:      "version-mismatch",
	AdvisoryNoNotebooks:          "no-notebooks",
}

func (k AdvisoryKind) String() string {
	if k < 0 || int(k) >= len(advisoryNames) {
		return fmt.Sprintf("AdvisoryKind(%d)", int(k))
	}
	return advisoryNames[k]
}

// Advisory is a notice or warning for the operator. Notebook is empty for
// build-level advisories.
type Advisory struct {
	Kind             AdvisoryKind
	Notebook         string
	RecordedVersion  string
	InstalledVersion string
	LatestVersion    string
	Detail           string
	Cause            error
}

func newAdvisory(kind AdvisoryKind, f Facts) Advisory {
	recorded, _ := f.Prior.Version.Version()
	return Advisory{
		Kind:             kind,
		Notebook:         f.Notebook,
		RecordedVersion:  recorded,
		InstalledVersion: f.InstalledVersion,
	}
}

// Level is slog.LevelInfo for notices and slog.LevelWarn for warnings.
func (a Advisory) Level() slog.Level {
	switch a.Kind {
	case AdvisoryNew, AdvisoryChanged:
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}

// IsWarning reports whether the advisory is a warning.
func (a Advisory) IsWarning() bool { return a.Level() >= slog.LevelWarn }

// Message describes the advisory without the hint.
func (a Advisory) Message() string {
	switch a.Kind {
	case AdvisoryNew:
		return fmt.Sprintf("%s is new and has not been executed", a.Notebook)
	case AdvisoryChanged:
		return fmt.Sprintf("%s changed since its last execution", a.Notebook)
	case AdvisoryStaleVersion:
		return fmt.Sprintf("%s was last executed with version %s, installed is %s",
			a.Notebook, a.RecordedVersion, a.InstalledVersion)
	case AdvisoryPreviouslyIncomplete:
		return fmt.Sprintf("%s did not fully execute last time", a.Notebook)
	case AdvisorySkippedIncomplete:
		return fmt.Sprintf("%s is on the skip list but has not been fully executed", a.Notebook)
	case AdvisorySkippedNeverExecuted:
		return fmt.Sprintf("%s is on the skip list but has never been executed", a.Notebook)
	case AdvisoryExecutionIncomplete:
		msg := fmt.Sprintf("%s did not fully execute", a.Notebook)
		if a.Detail != "" {
			msg += ": " + a.Detail
		}
		return msg
	case AdvisoryVersionAhead:
		return fmt.Sprintf("installed version %s is newer than the latest release %s",
			a.InstalledVersion, a.LatestVersion)
	case AdvisoryVersionMismatch:
		return fmt.Sprintf("installed version %s does not match the latest release %s",
			a.InstalledVersion, a.LatestVersion)
	case AdvisoryNoNotebooks:
		return "no notebooks found under " + a.Detail
	default:
		return a.Kind.String()
	}
}

// Hint returns the remediation for the advisory, formatted by the hints
// package. It may be empty.
func (a Advisory) Hint() string {
	switch a.Kind {
	case AdvisoryNew, AdvisoryChanged, AdvisoryPreviouslyIncomplete:
		return hints.ForRerun(ExecuteUpdatedUnskipped.String())
	case AdvisoryStaleVersion:
		return hints.ForRerun(ExecuteAllUnskipped.String())
	case AdvisorySkippedIncomplete, AdvisorySkippedNeverExecuted:
		return hints.ForSkippedUnexecuted(ExecuteAbsolutelyAll.String())
	case AdvisoryExecutionIncomplete:
		if errors.Is(a.Cause, executor.ErrExecutionTimeout) {
			return hints.ForTimeout()
		}
		return hints.ForRerun(ExecuteUpdatedUnskipped.String())
	case AdvisoryVersionAhead:
		return hints.ForVersionDrift(true)
	case AdvisoryVersionMismatch:
		return hints.ForVersionDrift(false)
	case AdvisoryNoNotebooks:
		return hints.ForContentRoot()
	default:
		return ""
	}
}

func (a Advisory) String() string {
	return a.Message() + a.Hint()
}

// versionAdvisories returns the build-level advisory for a stable build
// whose installed version differs from the latest release.
func versionAdvisories(mode BuildMode, installed, latest string) []Advisory {
	if mode.IsDev() {
		return nil
	}
	var kind AdvisoryKind
	switch version.StableDrift(installed, latest) {
	case version.DriftAhead:
		kind = AdvisoryVersionAhead
	case version.DriftMismatch:
		kind = AdvisoryVersionMismatch
	default:
		return nil
	}
	return []Advisory{{Kind: kind, InstalledVersion: installed, LatestVersion: latest}}
}
