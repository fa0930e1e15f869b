package textbook

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-textbook/internal/state"
)

// Notes:
// - Decide is pure, so every case builds Facts directly without touching
//   the filesystem.
// - Properties are checked across every filter and a grid of notebook
//   states rather than a single example.

const (
	fpCurrent = "aaaa"
	fpOld     = "bbbb"
)

var allFilters = []ExecutionFilter{NoExecution, ExecuteUpdatedUnskipped, ExecuteAllUnskipped, ExecuteAbsolutelyAll}

func executed(v string) state.Metadata {
	return state.Metadata{FullyExecuted: true, Version: state.Recorded(v)}
}

func mustDev(t *testing.T, spec string) BuildMode {
	t.Helper()
	m, err := DevMode(spec)
	if err != nil {
		t.Fatalf("DevMode(%q) error = %v", spec, err)
	}
	return m
}

// stateGrid returns notebook states covering new, changed, unchanged,
// incomplete and never-executed combinations.
func stateGrid() []Facts {
	metas := []state.Metadata{
		state.NoMetadata(),
		{Version: state.NeverExecuted()},
		executed("0.4.1"),
		{FullyExecuted: false, Version: state.Recorded("0.4.1")},
		{FullyExecuted: true, Version: state.Recorded("0.3"), Commit: "jonescompneurolab:9e14b99"},
	}
	var grid []Facts
	for _, meta := range metas {
		for _, stored := range []struct {
			hash string
			ok   bool
		}{{"", false}, {fpCurrent, true}, {fpOld, true}} {
			grid = append(grid, Facts{
				Notebook:         "nb.ipynb",
				Fingerprint:      fpCurrent,
				StoredHash:       stored.hash,
				HasStoredHash:    stored.ok,
				Prior:            meta,
				InstalledVersion: "0.4.1",
			})
		}
	}
	return grid
}

// ---------------------------------------------------------------------------
// TestDecide_Scenarios - reference decisions
// ---------------------------------------------------------------------------

func TestDecide_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		facts Facts
		want  Decision
	}{
		{
			name: "new notebook executes",
			facts: Facts{
				Notebook:    "foo.ipynb",
				Fingerprint: fpCurrent,
				Prior:       state.NoMetadata(),
				Filter:      ExecuteUpdatedUnskipped,
				Mode:        StableMode(),
			},
			want: Decision{Action: Execute, Reason: ReasonNew},
		},
		{
			name: "unchanged and complete skips",
			facts: Facts{
				Notebook:      "bar.ipynb",
				Fingerprint:   fpCurrent,
				StoredHash:    fpCurrent,
				HasStoredHash: true,
				Prior:         executed("0.4.1"),
				Filter:        ExecuteUpdatedUnskipped,
				Mode:          StableMode(),
			},
			want: Decision{Action: Skip, Reason: ReasonUpToDate},
		},
		{
			name: "unchanged but incomplete retries",
			facts: Facts{
				Notebook:      "bar.ipynb",
				Fingerprint:   fpCurrent,
				StoredHash:    fpCurrent,
				HasStoredHash: true,
				Prior:         state.Metadata{Version: state.Recorded("0.4.1")},
				Filter:        ExecuteUpdatedUnskipped,
				Mode:          StableMode(),
			},
			want: Decision{Action: Execute, Reason: ReasonPreviouslyIncomplete},
		},
		{
			name: "skip list dominates all-unskipped",
			facts: Facts{
				Notebook:   "baz.ipynb",
				SkipListed: true,
				Prior:      executed("0.4.1"),
				Filter:     ExecuteAllUnskipped,
			},
			want: Decision{Action: Skip, Reason: ReasonSkipListed},
		},
		{
			name: "no-execution skips a new notebook",
			facts: Facts{
				Notebook:    "foo.ipynb",
				Fingerprint: fpCurrent,
				Prior:       state.NoMetadata(),
				Filter:      NoExecution,
			},
			want: Decision{Action: Skip, Reason: ReasonNoExecution},
		},
		{
			name: "changed content executes",
			facts: Facts{
				Notebook:      "bar.ipynb",
				Fingerprint:   fpCurrent,
				StoredHash:    fpOld,
				HasStoredHash: true,
				Prior:         executed("0.4.1"),
				Filter:        ExecuteUpdatedUnskipped,
			},
			want: Decision{Action: Execute, Reason: ReasonChanged},
		},
		{
			name: "all-unskipped executes unchanged notebooks",
			facts: Facts{
				Notebook:      "bar.ipynb",
				Fingerprint:   fpCurrent,
				StoredHash:    fpCurrent,
				HasStoredHash: true,
				Prior:         executed("0.4.1"),
				Filter:        ExecuteAllUnskipped,
			},
			want: Decision{Action: Execute, Reason: ReasonAllUnskipped},
		},
		{
			name: "absolutely-all overrides the skip list",
			facts: Facts{
				Notebook:   "baz.ipynb",
				SkipListed: true,
				Prior:      executed("0.4.1"),
				Filter:     ExecuteAbsolutelyAll,
			},
			want: Decision{Action: Execute, Reason: ReasonForcedAll},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Decide(tt.facts).Decision
			if got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDecide_DevCommit - dev builds pinned to another commit
// ---------------------------------------------------------------------------

func TestDecide_DevCommit(t *testing.T) {
	t.Parallel()

	base := Facts{
		Notebook:      "bar.ipynb",
		Fingerprint:   fpCurrent,
		StoredHash:    fpCurrent,
		HasStoredHash: true,
		Filter:        ExecuteUpdatedUnskipped,
	}

	tests := []struct {
		name  string
		mode  BuildMode
		prior state.Metadata
		want  Decision
	}{
		{
			name:  "commit differs",
			mode:  mustDev(t, "jonescompneurolab:1413550"),
			prior: state.Metadata{FullyExecuted: true, Version: state.Recorded("0.5.dev0"), Commit: "jonescompneurolab:9e14b99"},
			want:  Decision{Action: Execute, Reason: ReasonDevCommitMismatch},
		},
		{
			name:  "no commit recorded",
			mode:  mustDev(t, "master"),
			prior: executed("0.4.1"),
			want:  Decision{Action: Execute, Reason: ReasonDevCommitMismatch},
		},
		{
			name:  "same commit and complete",
			mode:  mustDev(t, "master"),
			prior: state.Metadata{FullyExecuted: true, Version: state.Recorded("0.5.dev0"), Commit: "master"},
			want:  Decision{Action: Skip, Reason: ReasonUpToDate},
		},
		{
			name:  "same commit but incomplete",
			mode:  mustDev(t, "master"),
			prior: state.Metadata{Version: state.Recorded("0.5.dev0"), Commit: "master"},
			want:  Decision{Action: Execute, Reason: ReasonPreviouslyIncomplete},
		},
		{
			name:  "stable build ignores recorded commit",
			mode:  StableMode(),
			prior: state.Metadata{FullyExecuted: true, Version: state.Recorded("0.4.1"), Commit: "master"},
			want:  Decision{Action: Skip, Reason: ReasonUpToDate},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := base
			f.Mode = tt.mode
			f.Prior = tt.prior
			if got := Decide(f).Decision; got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDecide_Properties - invariants across filters and states
// ---------------------------------------------------------------------------

func TestDecide_Properties(t *testing.T) {
	t.Parallel()

	modes := []BuildMode{StableMode(), mustDev(t, "master")}

	t.Run("no-execution never executes", func(t *testing.T) {
		t.Parallel()

		for _, mode := range modes {
			for _, f := range stateGrid() {
				for _, skipped := range []bool{false, true} {
					f.Filter, f.Mode, f.SkipListed = NoExecution, mode, skipped
					if Decide(f).Decision.Execute() {
						t.Errorf("Decide(%+v) executed under no-execution", f)
					}
				}
			}
		}
	})

	t.Run("skip list dominates except absolutely-all", func(t *testing.T) {
		t.Parallel()

		for _, filter := range allFilters {
			for _, f := range stateGrid() {
				f.Filter, f.SkipListed = filter, true
				got := Decide(f).Decision.Execute()
				want := filter == ExecuteAbsolutelyAll
				if got != want {
					t.Errorf("filter %s: Decide(%+v).Execute() = %v, want %v", filter, f, got, want)
				}
			}
		}
	})

	t.Run("absolutely-all executes everything", func(t *testing.T) {
		t.Parallel()

		for _, mode := range modes {
			for _, f := range stateGrid() {
				for _, skipped := range []bool{false, true} {
					f.Filter, f.Mode, f.SkipListed = ExecuteAbsolutelyAll, mode, skipped
					if !Decide(f).Decision.Execute() {
						t.Errorf("Decide(%+v) skipped under execute-absolutely-all", f)
					}
				}
			}
		}
	})

	t.Run("fingerprint change executes", func(t *testing.T) {
		t.Parallel()

		for _, mode := range modes {
			for _, f := range stateGrid() {
				if f.HasStoredHash && f.StoredHash == string(f.Fingerprint) {
					continue
				}
				f.Filter, f.Mode = ExecuteUpdatedUnskipped, mode
				if !Decide(f).Decision.Execute() {
					t.Errorf("Decide(%+v) skipped a new or changed notebook", f)
				}
			}
		}
	})

	t.Run("decide is deterministic", func(t *testing.T) {
		t.Parallel()

		for _, filter := range allFilters {
			for _, f := range stateGrid() {
				f.Filter = filter
				first, second := Decide(f), Decide(f)
				if diff := cmp.Diff(first, second, cmp.AllowUnexported(state.VersionRecord{}, BuildMode{})); diff != "" {
					t.Errorf("Decide() not deterministic (-first +second):\n%s", diff)
				}
			}
		}
	})
}

// ---------------------------------------------------------------------------
// TestDecide_Advisories - notices and warnings raised while deciding
// ---------------------------------------------------------------------------

func TestDecide_Advisories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		facts Facts
		want  []AdvisoryKind
	}{
		{
			name:  "no-execution new",
			facts: Facts{Filter: NoExecution, Fingerprint: fpCurrent, Prior: state.NoMetadata()},
			want:  []AdvisoryKind{AdvisoryNew},
		},
		{
			name: "no-execution changed wins over stale version",
			facts: Facts{
				Filter: NoExecution, Fingerprint: fpCurrent, StoredHash: fpOld, HasStoredHash: true,
				Prior: executed("0.3"), InstalledVersion: "0.4.1",
			},
			want: []AdvisoryKind{AdvisoryChanged},
		},
		{
			name: "no-execution stale version",
			facts: Facts{
				Filter: NoExecution, Fingerprint: fpCurrent, StoredHash: fpCurrent, HasStoredHash: true,
				Prior: executed("0.3"), InstalledVersion: "0.4.1",
			},
			want: []AdvisoryKind{AdvisoryStaleVersion},
		},
		{
			name: "no-execution incomplete with a current version still advises",
			facts: Facts{
				Filter: NoExecution, Fingerprint: fpCurrent, StoredHash: fpCurrent, HasStoredHash: true,
				Prior: state.Metadata{Version: state.Recorded("0.4.1")}, InstalledVersion: "0.4.1",
			},
			want: []AdvisoryKind{AdvisoryPreviouslyIncomplete},
		},
		{
			name: "no-execution up to date is silent",
			facts: Facts{
				Filter: NoExecution, Fingerprint: fpCurrent, StoredHash: fpCurrent, HasStoredHash: true,
				Prior: executed("0.4.1"), InstalledVersion: "0.4.1",
			},
		},
		{
			name: "no-execution unknown installed version is not stale",
			facts: Facts{
				Filter: NoExecution, Fingerprint: fpCurrent, StoredHash: fpCurrent, HasStoredHash: true,
				Prior: executed("0.3"), InstalledVersion: "unknown",
			},
		},
		{
			name:  "skip-listed without metadata",
			facts: Facts{Filter: ExecuteAllUnskipped, SkipListed: true, Prior: state.NoMetadata()},
			want:  []AdvisoryKind{AdvisorySkippedIncomplete},
		},
		{
			name: "skip-listed never executed",
			facts: Facts{
				Filter: ExecuteUpdatedUnskipped, SkipListed: true,
				Prior: state.Metadata{FullyExecuted: true, Version: state.NeverExecuted()},
			},
			want: []AdvisoryKind{AdvisorySkippedNeverExecuted},
		},
		{
			name:  "skip-listed and executed is silent",
			facts: Facts{Filter: ExecuteUpdatedUnskipped, SkipListed: true, Prior: executed("0.4.1")},
		},
		{
			name:  "executing raises nothing",
			facts: Facts{Filter: ExecuteUpdatedUnskipped, Fingerprint: fpCurrent, Prior: state.NoMetadata()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got []AdvisoryKind
			for _, a := range Decide(tt.facts).Advisories {
				got = append(got, a.Kind)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("advisories mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
