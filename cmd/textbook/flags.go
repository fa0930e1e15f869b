package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// Sentinel errors for flag handling.
var (
	ErrUsage              = errors.New("invalid usage")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	root    string
	config  string
	quiet   bool
	verbose bool
	noColor bool
}

// logFlags holds structured logging flags.
type logFlags struct {
	level  string
	format string
}

// stateFlags overrides the state file locations.
type stateFlags struct {
	hashes   string
	skipList string
}

// executionFlags holds flags that shape notebook execution.
type executionFlags struct {
	filter     string
	buildOnDev string
	workers    int
	timeout    string
	kernel     string
	noWrite    bool
}

// versionFlags supplies the toolchain versions without running commands.
type versionFlags struct {
	tool   string
	latest string
}

// outputFlags holds rendering output flags.
type outputFlags struct {
	inlineImages   bool
	standaloneHTML bool
}

// buildFlags holds all flags for the build command.
type buildFlags struct {
	common    commonFlags
	log       logFlags
	state     stateFlags
	execution executionFlags
	versions  versionFlags
	output    outputFlags
	watch     bool

	// set records which flags were given explicitly.
	set map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVar(&f.root, "root", "", "textbook checkout (default \".\")")
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show every notebook and debug logs")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored output")
}

// addLogFlags adds logging flags to a FlagSet.
func addLogFlags(fs *flag.FlagSet, f *logFlags) {
	fs.StringVar(&f.level, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.format, "log-format", "", "log format: text, json")
}

// addStateFlags adds state file flags to a FlagSet.
func addStateFlags(fs *flag.FlagSet, f *stateFlags) {
	fs.StringVar(&f.hashes, "hashes", "", "hash record file")
	fs.StringVar(&f.skipList, "skip-list", "", "skip list file")
}

// addExecutionFlags adds execution flags to a FlagSet.
func addExecutionFlags(fs *flag.FlagSet, f *executionFlags) {
	fs.StringVar(&f.filter, "execution-filter", "", "no-execution, execute-updated-unskipped, execute-all-unskipped, execute-absolutely-all")
	fs.StringVar(&f.buildOnDev, "build-on-dev", "", "dev build pinned to master or <owner>:<commit>")
	fs.IntVarP(&f.workers, "workers", "w", 0, "notebooks executed at once (0 = config)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-cell timeout (e.g., 90s, 10m)")
	fs.StringVar(&f.kernel, "kernel", "", "kernel name")
	fs.BoolVar(&f.noWrite, "no-write-back", false, "keep source notebooks unchanged after execution")
}

// addVersionFlags adds toolchain version flags to a FlagSet.
func addVersionFlags(fs *flag.FlagSet, f *versionFlags) {
	fs.StringVar(&f.tool, "tool-version", "", "installed toolchain version")
	fs.StringVar(&f.latest, "latest-version", "", "latest stable toolchain version")
}

// addOutputFlags adds output flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.inlineImages, "inline-images", false, "embed figures as base64")
	fs.BoolVar(&f.standaloneHTML, "standalone-html", false, "also write <stem>.html previews")
}

// parseBuildFlags parses build command flags. Positional arguments are
// rejected.
func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, error) {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &buildFlags{}

	addCommonFlags(fs, &f.common)
	addLogFlags(fs, &f.log)
	addStateFlags(fs, &f.state)
	addExecutionFlags(fs, &f.execution)
	addVersionFlags(fs, &f.versions)
	addOutputFlags(fs, &f.output)
	fs.BoolVar(&f.watch, "watch", false, "rebuild when notebooks change")

	fs.Usage = func() { printBuildUsage(stderr) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}
	if f.execution.workers < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkerCount, f.execution.workers)
	}

	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// parseToolFlags parses the flags shared by check-versions and doctor.
func parseToolFlags(name string, args []string, stderr io.Writer, extra func(*flag.FlagSet)) (*buildFlags, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	f := &buildFlags{}

	addCommonFlags(fs, &f.common)
	addStateFlags(fs, &f.state)
	addVersionFlags(fs, &f.versions)
	fs.StringVar(&f.execution.buildOnDev, "build-on-dev", "", "audit the dev build pinned to this commit spec")
	if extra != nil {
		extra(fs)
	}
	fs.Usage = func() { runHelp([]string{name}, &Environment{Stdout: stderr, Stderr: stderr}) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q", ErrUsage, fs.Arg(0))
	}

	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}
