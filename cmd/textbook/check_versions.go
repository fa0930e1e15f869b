package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"

	textbook "github.com/alnah/go-textbook"
	"github.com/alnah/go-textbook/internal/hints"
)

// ErrVersionCheckFailed indicates notebooks were not all executed with the
// latest stable version.
var ErrVersionCheckFailed = errors.New("notebooks not executed with the latest version")

// runCheckVersions audits the versions recorded in sidecars.
func runCheckVersions(_ context.Context, args []string, env *Environment) error {
	f, err := parseToolFlags("check-versions", args, env.Stderr, nil)
	if err != nil {
		return err
	}
	s, err := resolveSettings(f, env)
	if err != nil {
		return err
	}

	latest := s.cfg.Toolchain.LatestStable
	if latest == "" {
		return fmt.Errorf("%w: latest stable version unknown, set toolchain.latestStable or --latest-version", ErrUsage)
	}
	name := s.cfg.Toolchain.Name

	b := textbook.NewBuilder(s.paths.Content, s.paths.Hashes, s.paths.SkipList,
		textbook.WithLogger(s.logger),
		textbook.WithMode(s.mode),
		textbook.WithStableDir(s.paths.StableDir),
		textbook.WithDevDir(s.paths.DevDir),
		textbook.WithLatestStable(latest),
	)
	audit, err := b.AuditVersions()
	if err != nil {
		return withHint(err, s)
	}

	ok, warn := color.New(color.FgGreen), color.New(color.FgYellow)
	if f.common.noColor {
		ok.DisableColor()
		warn.DisableColor()
	}

	for _, nb := range audit.Missing {
		warn.Fprintf(env.Stdout, "Version key not found for %s\n", nb)
	}
	if audit.Passed {
		ok.Fprintf(env.Stdout, "All notebooks were executed with the latest %s==%s\n", name, latest)
		return nil
	}
	fmt.Fprintf(env.Stdout, "Latest version of %s: %s\n", name, latest)
	fmt.Fprintf(env.Stdout, "Versions of %s used in executed notebooks: [%s]\n", name, strings.Join(audit.Versions, ", "))
	warn.Fprintln(env.Stdout, "Notebooks should be re-executed using the latest version")
	return fmt.Errorf("%w%s", ErrVersionCheckFailed, hints.ForRerun(textbook.ExecuteAllUnskipped.String()))
}
