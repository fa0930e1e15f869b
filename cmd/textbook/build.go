package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	textbook "github.com/alnah/go-textbook"
	"github.com/alnah/go-textbook/internal/config"
	"github.com/alnah/go-textbook/internal/executor"
	"github.com/alnah/go-textbook/internal/hints"
	"github.com/alnah/go-textbook/internal/logging"
	"github.com/alnah/go-textbook/internal/state"
	"github.com/alnah/go-textbook/internal/version"
)

// ErrExecutionCommand indicates the notebook engine is not installed.
var ErrExecutionCommand = errors.New("execution command not found")

// settings is the resolved configuration of one invocation.
type settings struct {
	root       string
	configPath string // empty when running on defaults
	cfg        *config.Config
	paths      config.Paths
	filter     textbook.ExecutionFilter
	mode       textbook.BuildMode
	logger     *slog.Logger
}

// resolveSettings applies defaults, the config file, the environment and
// the flags, in increasing order of precedence.
func resolveSettings(f *buildFlags, env *Environment) (*settings, error) {
	s := &settings{root: f.common.root}
	if s.root == "" {
		s.root = os.Getenv("TEXTBOOK_ROOT")
	}
	if s.root == "" {
		s.root = "."
	}

	if err := loadDotEnv(s.root); err != nil {
		return nil, err
	}
	envCfg := loadEnvConfig()
	if !f.common.quiet {
		warnUnknownEnvVars(env.Stderr)
	}

	cfg, path, err := loadConfig(s.root, f.common.config, envCfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	s.configPath = path

	applyEnvConfig(envCfg, cfg)
	if err := mergeFlags(f, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s.cfg = cfg
	s.paths = cfg.Resolve(s.root)

	s.filter, err = textbook.ParseExecutionFilter(cfg.Execution.Filter)
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, hints.ForExecutionFilter(textbook.ExecutionFilterNames()))
	}

	spec := envCfg.BuildOnDev
	if f.set["build-on-dev"] {
		spec = f.execution.buildOnDev
	}
	s.mode = textbook.StableMode()
	if f.set["build-on-dev"] || spec != "" {
		s.mode, err = textbook.DevMode(spec)
		if err != nil {
			return nil, fmt.Errorf("%w%s", err, hints.ForCommitSpec())
		}
	}

	s.logger, err = newLogger(f, envCfg, env)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// loadConfig loads the explicit config path, else textbook.yaml in root,
// else the defaults.
func loadConfig(root, flagPath, envPath string) (*config.Config, string, error) {
	path := flagPath
	if path == "" {
		path = envPath
	}
	if path != "" {
		cfg, err := config.LoadConfig(path)
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, "", fmt.Errorf("%w%s", err, hints.ForConfigNotFound())
		}
		return cfg, path, err
	}
	if found, ok := config.Find(root); ok {
		cfg, err := config.LoadConfig(found)
		return cfg, found, err
	}
	return config.DefaultConfig(), "", nil
}

// mergeFlags applies explicitly set flags over cfg.
func mergeFlags(f *buildFlags, cfg *config.Config) error {
	if f.set["execution-filter"] {
		cfg.Execution.Filter = f.execution.filter
	}
	if f.set["timeout"] {
		cfg.Execution.CellTimeout = f.execution.timeout
	}
	if f.set["kernel"] {
		cfg.Execution.Kernel = f.execution.kernel
	}
	if f.set["workers"] {
		cfg.Execution.Workers = f.execution.workers
	}
	if f.execution.noWrite {
		writeBack := false
		cfg.Execution.WriteBack = &writeBack
	}
	if f.set["tool-version"] {
		cfg.Toolchain.Version = f.versions.tool
	}
	if f.set["latest-version"] {
		cfg.Toolchain.LatestStable = f.versions.latest
	}
	if f.output.inlineImages {
		cfg.Output.InlineImages = true
	}
	if f.output.standaloneHTML {
		cfg.Output.StandaloneHTML = true
	}

	// State paths given on the command line are relative to the working
	// directory, not the root.
	if f.set["hashes"] {
		abs, err := absFlagPath("hashes", f.state.hashes)
		if err != nil {
			return err
		}
		cfg.State.Hashes = abs
	}
	if f.set["skip-list"] {
		abs, err := absFlagPath("skip-list", f.state.skipList)
		if err != nil {
			return err
		}
		cfg.State.SkipList = abs
	}
	return nil
}

func absFlagPath(name, value string) (string, error) {
	if value == "" {
		return "", fmt.Errorf("%w: --%s must not be empty", ErrUsage, name)
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("%w: --%s: %v", ErrUsage, name, err)
	}
	return abs, nil
}

// newLogger builds the structured diagnostics logger. Advisories reach the
// operator through the report, so logs default to errors only; -v and -q
// override the level.
func newLogger(f *buildFlags, envCfg *envConfig, env *Environment) (*slog.Logger, error) {
	level := firstNonEmpty(f.log.level, envCfg.LogLevel, "error")
	switch {
	case f.common.verbose:
		level = "debug"
	case f.common.quiet:
		level = "error"
	}
	format := firstNonEmpty(f.log.format, envCfg.LogFormat, "text")
	return logging.New(level, format, env.Stderr)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// newBuilder creates the Builder for s. The installed version is resolved
// once; a failing version command only prints a warning.
func newBuilder(ctx context.Context, s *settings, env *Environment) (*textbook.Builder, error) {
	installed, err := version.Installed(ctx, s.cfg.Toolchain.Version, s.cfg.Toolchain.VersionCommand, env.Runner)
	if err != nil {
		fmt.Fprintf(env.Stderr, "warning: could not determine installed %s version: %v\n", s.cfg.Toolchain.Name, err)
	}

	exec := env.Executor
	if exec == nil {
		if s.filter != textbook.NoExecution {
			program := engineCommand(s.cfg)[0]
			if _, err := env.LookPath(program); err != nil {
				return nil, fmt.Errorf("%w: %s%s", ErrExecutionCommand, program, hints.ForExecutionCommand(program))
			}
		}
		timeout, _ := s.cfg.CellTimeout()
		exec = executor.New(executor.Options{
			Command:     s.cfg.Execution.Command,
			CellTimeout: timeout,
			Kernel:      s.cfg.Execution.Kernel,
			WriteBack:   s.cfg.WriteBack(),
		}, env.Runner)
	}

	return textbook.NewBuilder(s.paths.Content, s.paths.Hashes, s.paths.SkipList,
		textbook.WithLogger(s.logger),
		textbook.WithFilter(s.filter),
		textbook.WithMode(s.mode),
		textbook.WithWorkers(s.cfg.Execution.Workers),
		textbook.WithExecutor(exec),
		textbook.WithStableDir(s.paths.StableDir),
		textbook.WithDevDir(s.paths.DevDir),
		textbook.WithInlineImages(s.cfg.Output.InlineImages),
		textbook.WithStandaloneHTML(s.cfg.Output.StandaloneHTML),
		textbook.WithInstalledVersion(installed),
		textbook.WithLatestStable(s.cfg.Toolchain.LatestStable),
	), nil
}

// engineCommand returns the configured engine invocation, or the
// executor's default when none is set.
func engineCommand(cfg *config.Config) []string {
	if len(cfg.Execution.Command) == 0 {
		return executor.DefaultCommand
	}
	return cfg.Execution.Command
}

// withHint appends the remediation for configuration errors found while
// building.
func withHint(err error, s *settings) error {
	switch {
	case errors.Is(err, state.ErrSkipListNotFound):
		return fmt.Errorf("%w%s", err, hints.ForSkipListNotFound(s.paths.SkipList))
	case errors.Is(err, textbook.ErrContentRootNotFound):
		return fmt.Errorf("%w%s", err, hints.ForContentRoot())
	default:
		return err
	}
}

// runBuild executes the build command.
func runBuild(ctx context.Context, args []string, env *Environment) error {
	f, err := parseBuildFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	s, err := resolveSettings(f, env)
	if err != nil {
		return err
	}
	b, err := newBuilder(ctx, s, env)
	if err != nil {
		return err
	}

	p := newReportPrinter(env.Stdout, f.common)
	if f.watch {
		return runWatch(ctx, s, b, p, env)
	}

	report, err := b.Build(ctx)
	if report != nil {
		p.Print(report)
	}
	if err != nil {
		return withHint(err, s)
	}
	return report.Err()
}
