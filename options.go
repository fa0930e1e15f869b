package textbook

import (
	"log/slog"
)

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the structured logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithFilter sets the execution filter. The default is NoExecution.
func WithFilter(f ExecutionFilter) Option {
	return func(b *Builder) {
		b.filter = f
	}
}

// WithMode sets the build mode. The default is StableMode.
func WithMode(m BuildMode) Option {
	return func(b *Builder) {
		b.mode = m
	}
}

// WithWorkers sets how many notebooks are processed at once.
// Zero or negative uses ResolvePoolSize.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		b.workers = n
	}
}

// WithExecutor replaces the notebook execution engine.
func WithExecutor(e NotebookExecutor) Option {
	return func(b *Builder) {
		if e != nil {
			b.executor = e
		}
	}
}

// WithStableDir sets the directory stable builds mirror the content tree
// into. Empty writes outputs next to each notebook.
func WithStableDir(dir string) Option {
	return func(b *Builder) {
		b.stableDir = dir
	}
}

// WithDevDir sets the directory dev builds mirror the content tree into.
func WithDevDir(dir string) Option {
	return func(b *Builder) {
		if dir != "" {
			b.devDir = dir
		}
	}
}

// WithInlineImages embeds figures in the HTML instead of writing files.
func WithInlineImages(inline bool) Option {
	return func(b *Builder) {
		b.inlineImages = inline
	}
}

// WithStandaloneHTML also writes <stem>.html next to each sidecar.
func WithStandaloneHTML(enabled bool) Option {
	return func(b *Builder) {
		b.standaloneHTML = enabled
	}
}

// WithInstalledVersion sets the toolchain version recorded on execution.
func WithInstalledVersion(v string) Option {
	return func(b *Builder) {
		if v != "" {
			b.installedVersion = v
		}
	}
}

// WithLatestStable sets the latest released toolchain version, compared
// against the installed version in stable builds.
func WithLatestStable(v string) Option {
	return func(b *Builder) {
		b.latestStable = v
	}
}
