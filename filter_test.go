package textbook

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseExecutionFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    ExecutionFilter
		wantErr error
	}{
		{"no-execution", NoExecution, nil},
		{"execute-updated-unskipped", ExecuteUpdatedUnskipped, nil},
		{"execute-all-unskipped", ExecuteAllUnskipped, nil},
		{"execute-absolutely-all", ExecuteAbsolutelyAll, nil},
		{"execute-all-unskipped-notebooks", ExecuteAllUnskipped, nil},
		{"  Execute-Updated-Unskipped ", ExecuteUpdatedUnskipped, nil},
		{"no-execution-notebooks", NoExecution, nil},
		{"execute-absolutely-all-notebooks", ExecuteAbsolutelyAll, nil},
		{"execute-everything", NoExecution, ErrInvalidExecutionFilter},
		{"", NoExecution, ErrInvalidExecutionFilter},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseExecutionFilter(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseExecutionFilter(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseExecutionFilter(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExecutionFilter_String(t *testing.T) {
	t.Parallel()

	for _, f := range allFilters {
		parsed, err := ParseExecutionFilter(f.String())
		if err != nil || parsed != f {
			t.Errorf("ParseExecutionFilter(%q) = %v, %v, want %v", f.String(), parsed, err, f)
		}
	}
	if got := ExecutionFilter(9).String(); got != "ExecutionFilter(9)" {
		t.Errorf("String() = %q", got)
	}
	if ExecutionFilter(9).Valid() || ExecutionFilter(-1).Valid() {
		t.Error("out-of-range filter reported valid")
	}
}

func TestExecutionFilter_Text(t *testing.T) {
	t.Parallel()

	var f ExecutionFilter
	if err := f.UnmarshalText([]byte("execute-all-unskipped")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if f != ExecuteAllUnskipped {
		t.Errorf("UnmarshalText() = %v", f)
	}
	if err := f.UnmarshalText([]byte("bogus")); !errors.Is(err, ErrInvalidExecutionFilter) {
		t.Errorf("UnmarshalText(bogus) error = %v", err)
	}
	if _, err := ExecutionFilter(7).MarshalText(); !errors.Is(err, ErrInvalidExecutionFilter) {
		t.Errorf("MarshalText(7) error = %v", err)
	}
}

func TestExecutionFilterNames(t *testing.T) {
	t.Parallel()

	want := []string{"no-execution", "execute-updated-unskipped", "execute-all-unskipped", "execute-absolutely-all"}
	names := ExecutionFilterNames()
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("ExecutionFilterNames() mismatch (-want +got):\n%s", diff)
	}

	names[0] = "mutated"
	if ExecutionFilterNames()[0] != "no-execution" {
		t.Error("ExecutionFilterNames() returned shared storage")
	}
}

// ---------------------------------------------------------------------------
// TestDevMode - commit spec validation
// ---------------------------------------------------------------------------

func TestDevMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"master", false},
		{"jonescompneurolab:9e14b99", false},
		{" jonescompneurolab:9e14b99 ", false},
		{"", true},
		{"main", true},
		{"9e14b99", true},
		{":9e14b99", true},
		{"jonescompneurolab:", true},
		{"a:b:c", true},
		{"jones lab:9e14b99", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			t.Parallel()

			m, err := DevMode(tt.spec)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCommitSpec) {
					t.Errorf("DevMode(%q) error = %v, want ErrInvalidCommitSpec", tt.spec, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DevMode(%q) error = %v", tt.spec, err)
			}
			if !m.IsDev() || m.Commit() == "" {
				t.Errorf("DevMode(%q) = %v", tt.spec, m)
			}
		})
	}
}

func TestStableMode(t *testing.T) {
	t.Parallel()

	m := StableMode()
	if m.IsDev() || m.Commit() != "" || m.String() != "stable" {
		t.Errorf("StableMode() = %+v", m)
	}
	if got := mustDev(t, "master").String(); got != "dev@master" {
		t.Errorf("String() = %q, want dev@master", got)
	}
}
