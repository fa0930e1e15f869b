// Package textbook decides which notebooks of a textbook build need to be
// re-executed, executes them, and renders each one into a JSON sidecar
// consumed by the static-site generator.
//
// # Quick Start
//
//	b := textbook.NewBuilder("content", "scripts/nb_hashes.json", "scripts/nbs_to_skip.json",
//	    textbook.WithFilter(textbook.ExecuteUpdatedUnskipped),
//	    textbook.WithInstalledVersion("0.4.1"),
//	)
//	report, err := b.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, a := range report.AllAdvisories() {
//	    fmt.Println(a)
//	}
//
// # Decisions
//
// Every notebook is decided by an ordered list of rules; the first match
// wins:
//
//  1. execute-absolutely-all executes everything
//  2. no-execution executes nothing and reports what is out of date
//  3. skip-listed notebooks are skipped
//  4. execute-all-unskipped executes the rest
//  5. execute-updated-unskipped executes new and changed notebooks, dev
//     builds pinned to another commit, and notebooks whose last execution
//     was incomplete
//
// The decision is a pure function of Facts, see Decide.
//
// # State
//
// Two files are carried between builds. The hash record maps notebook file
// names to the fingerprint seen when each was last processed, executed or
// not, and is rewritten once per build. Each
// notebook's sidecar records whether it fully executed, the toolchain
// version and, for dev builds, the commit it was executed against.
// Notebooks that are not executed carry their prior state forward.
//
// # Parallel Processing
//
// Notebooks are processed by a bounded worker pool, see WithWorkers and
// ResolvePoolSize. Results are reported in discovery order regardless of
// scheduling.
package textbook
