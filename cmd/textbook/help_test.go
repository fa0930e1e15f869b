package main

import (
	"bytes"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunHelp - Per-command help
// ---------------------------------------------------------------------------

func TestRunHelp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantStdout string
		wantStderr string
	}{
		{"no args", nil, "Commands:", ""},
		{"build", []string{"build"}, "--build-on-dev <spec>", ""},
		{"check-versions", []string{"check-versions"}, "Usage: textbook check-versions", ""},
		{"doctor", []string{"doctor"}, "--json", ""},
		{"version", []string{"version"}, "Usage: textbook version", ""},
		{"help", []string{"help"}, "Usage: textbook help", ""},
		{"unknown", []string{"convert"}, "", "Unknown command: convert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var stdout, stderr bytes.Buffer
			runHelp(tt.args, &Environment{Stdout: &stdout, Stderr: &stderr})

			if !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

// TestBuildUsage_ListsEveryFilter keeps the help text in step with the
// accepted filter names.
func TestBuildUsage_ListsEveryFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	printBuildUsage(&buf)
	for _, name := range []string{"no-execution", "execute-updated-unskipped", "execute-all-unskipped", "execute-absolutely-all"} {
		if !strings.Contains(buf.String(), name) {
			t.Errorf("build usage missing filter %q", name)
		}
	}
}
