package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	textbook "github.com/alnah/go-textbook"
)

func sampleReport() *textbook.Report {
	dev, _ := textbook.DevMode("master")
	return &textbook.Report{
		Mode:   dev,
		Filter: textbook.ExecuteUpdatedUnskipped,
		Notebooks: []textbook.NotebookResult{
			{
				Notebook:      "dipole.ipynb",
				Decision:      textbook.Decision{Action: textbook.Execute, Reason: textbook.ReasonNew},
				Initiated:     true,
				FullyExecuted: true,
				Duration:      1234 * time.Millisecond,
			},
			{
				Notebook:      "erp.ipynb",
				Decision:      textbook.Decision{Action: textbook.Execute, Reason: textbook.ReasonChanged},
				Initiated:     true,
				ExecutedCells: 1,
				CodeCells:     2,
				Advisories: []textbook.Advisory{
					{Kind: textbook.AdvisoryExecutionIncomplete, Notebook: "erp.ipynb", Detail: "NameError"},
				},
			},
			{
				Notebook: "intro.ipynb",
				Decision: textbook.Decision{Action: textbook.Skip, Reason: textbook.ReasonUpToDate},
			},
			{
				Notebook: "broken.ipynb",
				Err:      errors.New("parsing notebook"),
			},
		},
		Duration: 3 * time.Second,
	}
}

// ---------------------------------------------------------------------------
// TestReportPrinter_Print - Operator-facing report
// ---------------------------------------------------------------------------

func TestReportPrinter_Print(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   commonFlags
		want    []string
		wantNot []string
	}{
		{
			name:  "default",
			flags: commonFlags{noColor: true},
			want: []string{
				"executed  dipole.ipynb (new notebook, 1.2s)",
				"partial   erp.ipynb (content changed, 1/2 cells,",
				"failed    broken.ipynb: parsing notebook",
				"warning: erp.ipynb did not fully execute: NameError",
				"hint: re-run with --execution-filter=execute-updated-unskipped",
				"dev@master build, execute-updated-unskipped: 4 notebooks, 2 executed, 1 failed, 1 warnings in 3s",
			},
			wantNot: []string{"intro.ipynb"},
		},
		{
			name:  "verbose lists skipped",
			flags: commonFlags{noColor: true, verbose: true},
			want:  []string{"skipped   intro.ipynb (up to date)"},
		},
		{
			name:    "quiet",
			flags:   commonFlags{noColor: true, quiet: true},
			want:    []string{"failed    broken.ipynb"},
			wantNot: []string{"executed", "warning:", "notebooks,"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			newReportPrinter(&buf, tt.flags).Print(sampleReport())
			out := buf.String()

			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, not := range tt.wantNot {
				if strings.Contains(out, not) {
					t.Errorf("output contains %q:\n%s", not, out)
				}
			}
			if strings.Contains(out, "\x1b[") {
				t.Error("output contains ANSI escapes with --no-color")
			}
		})
	}
}

func TestRoundDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want time.Duration
	}{
		{1234567 * time.Nanosecond, time.Millisecond},
		{1234 * time.Millisecond, 1200 * time.Millisecond},
		{0, 0},
	}
	for _, tt := range tests {
		if got := roundDuration(tt.in); got != tt.want {
			t.Errorf("roundDuration(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
