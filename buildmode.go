package textbook

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultDevBranch is the commit spec that pins a dev build to the tip of
// the upstream default branch.
const DefaultDevBranch = "master"

// BuildMode says whether a build is pinned to the latest release (stable)
// or to an upstream commit of the toolchain (dev).
type BuildMode struct {
	dev    bool
	commit string
}

// StableMode returns the stable build mode.
func StableMode() BuildMode {
	return BuildMode{}
}

// DevMode returns a dev build pinned to spec, which is either
// DefaultDevBranch or "<owner>:<commit>".
func DevMode(spec string) (BuildMode, error) {
	spec = strings.TrimSpace(spec)
	if err := validateCommitSpec(spec); err != nil {
		return BuildMode{}, err
	}
	return BuildMode{dev: true, commit: spec}, nil
}

// IsDev reports whether the build is a dev build.
func (m BuildMode) IsDev() bool { return m.dev }

// Commit returns the dev build's commit spec; empty for stable builds.
func (m BuildMode) Commit() string { return m.commit }

func (m BuildMode) String() string {
	if m.dev {
		return "dev@" + m.commit
	}
	return "stable"
}

func validateCommitSpec(spec string) error {
	if spec == "" {
		return fmt.Errorf("%w: empty", ErrInvalidCommitSpec)
	}
	if strings.IndexFunc(spec, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidCommitSpec, spec)
	}
	if spec == DefaultDevBranch {
		return nil
	}
	owner, commit, ok := strings.Cut(spec, ":")
	if !ok || owner == "" || commit == "" || strings.Contains(commit, ":") {
		return fmt.Errorf("%w: %q (want %s or <owner>:<commit>)", ErrInvalidCommitSpec, spec, DefaultDevBranch)
	}
	return nil
}
