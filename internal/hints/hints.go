// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"strings"
)

// ForExecutionFilter lists the accepted execution filters.
func ForExecutionFilter(valid []string) string {
	if len(valid) == 0 {
		return ""
	}
	return format("valid filters: " + strings.Join(valid, ", "))
}

// ForRerun names the filter that would execute a notebook.
func ForRerun(filter string) string {
	if filter == "" {
		return ""
	}
	return format("re-run with --execution-filter=" + filter)
}

// ForSkipListNotFound explains how to provide the skip list.
func ForSkipListNotFound(path string) string {
	return format(`create ` + path + ` containing {"skip_if_dev": [], "skip_if_stable": []} or pass --skip-list`)
}

// ForSkippedUnexecuted tells the operator how to resolve a skip-listed
// notebook without a successful execution on record.
func ForSkippedUnexecuted(filter string) string {
	return formatHints([]string{
		"remove the notebook from the skip list",
		"or re-run with --execution-filter=" + filter,
	})
}

// ForConfigNotFound suggests the --config flag.
func ForConfigNotFound() string {
	return format("use --config /path/to/textbook.yaml or create textbook.yaml in the build root")
}

// ForContentRoot suggests pointing --root at the checkout.
func ForContentRoot() string {
	return format("use --root to point at the textbook checkout, or set content in textbook.yaml")
}

// ForCommitSpec shows the accepted --build-on-dev forms.
func ForCommitSpec() string {
	return format("use --build-on-dev=master or --build-on-dev=<owner>:<commit>")
}

// ForTimeout returns a hint about increasing the per-cell timeout.
func ForTimeout() string {
	return format("for slow cells, use the --timeout flag")
}

// ForExecutionCommand suggests how to make the execution engine available.
func ForExecutionCommand(program string) string {
	if program == "jupyter" {
		return format("install it with: pip install jupyter nbconvert, or set execution.command")
	}
	return format("check execution.command in textbook.yaml")
}

// ForVersionDrift explains the stable-build version advisories.
func ForVersionDrift(ahead bool) string {
	if ahead {
		return format("use --build-on-dev when building on a version newer than the latest release")
	}
	return format("update the installed toolchain, or use --build-on-dev for a commit or branch install")
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
