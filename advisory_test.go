package textbook

import (
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/alnah/go-textbook/internal/executor"
)

func TestAdvisory_Level(t *testing.T) {
	t.Parallel()

	notices := []AdvisoryKind{AdvisoryNew, AdvisoryChanged}
	warnings := []AdvisoryKind{
		AdvisoryStaleVersion, AdvisoryPreviouslyIncomplete, AdvisorySkippedIncomplete,
		AdvisorySkippedNeverExecuted, AdvisoryExecutionIncomplete, AdvisoryVersionAhead,
		AdvisoryVersionMismatch, AdvisoryNoNotebooks,
	}
	for _, k := range notices {
		if a := (Advisory{Kind: k}); a.Level() != slog.LevelInfo || a.IsWarning() {
			t.Errorf("%s: Level() = %v, want info", k, a.Level())
		}
	}
	for _, k := range warnings {
		if a := (Advisory{Kind: k}); !a.IsWarning() {
			t.Errorf("%s: Level() = %v, want warn", k, a.Level())
		}
	}
}

// ---------------------------------------------------------------------------
// TestAdvisory_Hint - every notebook-level advisory names a fix
// ---------------------------------------------------------------------------

func TestAdvisory_Hint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		advisory Advisory
		contains string
	}{
		{Advisory{Kind: AdvisoryNew}, "--execution-filter=execute-updated-unskipped"},
		{Advisory{Kind: AdvisoryChanged}, "--execution-filter=execute-updated-unskipped"},
		{Advisory{Kind: AdvisoryPreviouslyIncomplete}, "--execution-filter=execute-updated-unskipped"},
		{Advisory{Kind: AdvisoryStaleVersion}, "--execution-filter=execute-all-unskipped"},
		{Advisory{Kind: AdvisorySkippedIncomplete}, "--execution-filter=execute-absolutely-all"},
		{Advisory{Kind: AdvisorySkippedNeverExecuted}, "remove the notebook from the skip list"},
		{Advisory{Kind: AdvisoryExecutionIncomplete}, "--execution-filter=execute-updated-unskipped"},
		{
			Advisory{Kind: AdvisoryExecutionIncomplete, Cause: fmt.Errorf("%w: cell 3", executor.ErrExecutionTimeout)},
			"--timeout",
		},
		{Advisory{Kind: AdvisoryVersionAhead}, "--build-on-dev"},
		{Advisory{Kind: AdvisoryVersionMismatch}, "update the installed toolchain"},
		{Advisory{Kind: AdvisoryNoNotebooks}, "--root"},
	}

	for _, tt := range tests {
		t.Run(tt.advisory.Kind.String(), func(t *testing.T) {
			t.Parallel()

			hint := tt.advisory.Hint()
			if !strings.HasPrefix(hint, "\n  hint: ") || !strings.Contains(hint, tt.contains) {
				t.Errorf("Hint() = %q, want it to contain %q", hint, tt.contains)
			}
		})
	}
}

func TestAdvisory_Message(t *testing.T) {
	t.Parallel()

	a := Advisory{Kind: AdvisoryStaleVersion, Notebook: "plot.ipynb", RecordedVersion: "0.3", InstalledVersion: "0.4.1"}
	want := "plot.ipynb was last executed with version 0.3, installed is 0.4.1"
	if got := a.Message(); got != want {
		t.Errorf("Message() = %q, want %q", got, want)
	}

	a = Advisory{Kind: AdvisoryExecutionIncomplete, Notebook: "plot.ipynb", Detail: "cell 3 raised"}
	if got := a.Message(); !strings.HasSuffix(got, ": cell 3 raised") {
		t.Errorf("Message() = %q", got)
	}
	if got := a.String(); !strings.Contains(got, "hint:") {
		t.Errorf("String() = %q, want message plus hint", got)
	}
}

func TestVersionAdvisories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mode      BuildMode
		installed string
		want      []AdvisoryKind
	}{
		{"stable match", StableMode(), "0.4.1", nil},
		{"stable ahead", StableMode(), "0.5.0", []AdvisoryKind{AdvisoryVersionAhead}},
		{"stable behind", StableMode(), "0.4.0", []AdvisoryKind{AdvisoryVersionMismatch}},
		{"dev ignores drift", mustDev(t, "master"), "0.5.dev0", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got []AdvisoryKind
			for _, a := range versionAdvisories(tt.mode, tt.installed, "0.4.1") {
				got = append(got, a.Kind)
			}
			if len(got) != len(tt.want) || (len(got) > 0 && got[0] != tt.want[0]) {
				t.Errorf("versionAdvisories() = %v, want %v", got, tt.want)
			}
		})
	}
}
