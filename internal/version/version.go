// Package version compares toolchain versions and audits the versions
// recorded in notebook sidecars.
//
// Versions are accepted with or without a leading "v". Strings that are
// not semantic versions (development tags, commit pins) never compare as
// newer, so they produce no staleness warnings.
package version

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/mod/semver"

	"github.com/alnah/go-textbook/internal/executor"
)

// Unknown is reported when the installed version cannot be determined.
const Unknown = "unknown"

// ErrVersionCommand indicates the configured version command failed.
var ErrVersionCommand = errors.New("version command failed")

// canonical returns the semver form of v, or "" when v is not a version.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	return semver.Canonical(v)
}

// Valid reports whether v parses as a semantic version.
func Valid(v string) bool {
	return canonical(v) != ""
}

// Compare returns -1, 0 or +1 comparing a and b. ok is false when either
// is not a semantic version.
func Compare(a, b string) (cmp int, ok bool) {
	ca, cb := canonical(a), canonical(b)
	if ca == "" || cb == "" {
		return 0, false
	}
	return semver.Compare(ca, cb), true
}

// IsNewer reports whether installed is strictly newer than recorded.
func IsNewer(installed, recorded string) bool {
	c, ok := Compare(installed, recorded)
	return ok && c > 0
}

// Installed resolves the installed toolchain version: a static value wins,
// otherwise the first line printed by command is used. Without either the
// result is Unknown.
func Installed(ctx context.Context, static string, command []string, runner executor.CommandRunner) (string, error) {
	if v := strings.TrimSpace(static); v != "" {
		return v, nil
	}
	if len(command) == 0 {
		return Unknown, nil
	}
	if runner == nil {
		runner = &executor.ExecRunner{}
	}

	stdout, stderr, err := runner.Run(ctx, "", command[0], command[1:]...)
	if err != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			msg = err.Error()
		}
		return Unknown, fmt.Errorf("%w: %s: %s", ErrVersionCommand, strings.Join(command, " "), msg)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(stdout), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return Unknown, fmt.Errorf("%w: %s printed nothing", ErrVersionCommand, strings.Join(command, " "))
	}
	return line, nil
}

// Drift describes how the installed version relates to the latest stable
// release in a stable build.
type Drift int

const (
	DriftNone     Drift = iota // matches, or nothing to compare
	DriftAhead                 // installed is newer than the latest release
	DriftMismatch              // installed differs and is not newer
)

func (d Drift) String() string {
	switch d {
	case DriftAhead:
		return "ahead"
	case DriftMismatch:
		return "mismatch"
	default:
		return "none"
	}
}

// StableDrift compares the installed version with the latest stable one.
// An empty or unknown side yields DriftNone.
func StableDrift(installed, latest string) Drift {
	if installed == "" || installed == Unknown || latest == "" {
		return DriftNone
	}
	if IsNewer(installed, latest) {
		return DriftAhead
	}
	if c, ok := Compare(installed, latest); ok {
		if c == 0 {
			return DriftNone
		}
		return DriftMismatch
	}
	if installed != latest {
		return DriftMismatch
	}
	return DriftNone
}
