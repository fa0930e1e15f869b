package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	textbook "github.com/alnah/go-textbook"
	"github.com/alnah/go-textbook/internal/notebook"
)

// watchDebounce groups the burst of events an editor save produces.
const watchDebounce = 500 * time.Millisecond

// watcher rebuilds when notebooks or the skip list change.
type watcher struct {
	fs       *fsnotify.Watcher
	skipList string
	debounce time.Duration
	rebuild  func(context.Context)
	logger   *slog.Logger
}

// runWatch builds once, then rebuilds on every change until ctx is done.
func runWatch(ctx context.Context, s *settings, b *textbook.Builder, p *reportPrinter, env *Environment) error {
	build := func(ctx context.Context) {
		fmt.Fprintf(env.Stderr, "[%s] building %s\n", env.Now().Format("15:04:05"), s.paths.Content)
		report, err := b.Build(ctx)
		if report != nil {
			p.Print(report)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintln(env.Stderr, "error:", withHint(err, s))
		}
	}

	w, err := newWatcher(s.paths.Content, s.paths.SkipList, build, s.logger)
	if err != nil {
		return err
	}
	defer func() { _ = w.fs.Close() }() // Best effort cleanup

	build(ctx)
	fmt.Fprintf(env.Stderr, "\nWatching %s for changes... (Press Ctrl+C to exit)\n", s.paths.Content)
	w.loop(ctx)
	fmt.Fprintln(env.Stderr, "\nStopped watching.")
	return nil
}

// newWatcher watches every directory under contentRoot and the skip list's
// directory.
func newWatcher(contentRoot, skipList string, rebuild func(context.Context), logger *slog.Logger) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	w := &watcher{fs: fw, skipList: filepath.Clean(skipList), debounce: watchDebounce, rebuild: rebuild, logger: logger}

	if err := w.addTree(contentRoot); err != nil {
		_ = fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(w.skipList)); err != nil {
		logger.Warn("not watching skip list", "path", w.skipList, "error", err)
	}
	return w, nil
}

// addTree adds root and its subdirectories; fsnotify is not recursive.
func (w *watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".ipynb_checkpoints" {
			return filepath.SkipDir
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// relevant reports whether an event should trigger a rebuild.
func (w *watcher) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	if filepath.Clean(ev.Name) == w.skipList {
		return true
	}
	if strings.Contains(ev.Name, ".ipynb_checkpoints") {
		return false
	}
	return strings.EqualFold(filepath.Ext(ev.Name), notebook.Extension)
}

// loop debounces events into rebuilds until ctx is done. Events caused by
// a rebuild itself, such as executed notebooks written back, are drained
// after it finishes.
func (w *watcher) loop(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				// New chapter directories must be watched too.
				_ = w.addTree(ev.Name)
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)
			pending = timer.C
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", "error", err)
		case <-pending:
			pending = nil
			w.rebuild(ctx)
			w.drain(ctx)
		}
	}
}

// drain discards events until no relevant one has arrived for a debounce
// window, or ctx is done.
func (w *watcher) drain(ctx context.Context) {
	quiet := time.NewTimer(w.debounce)
	defer quiet.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-quiet.C:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				_ = w.addTree(ev.Name)
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("ignoring change from rebuild", "path", ev.Name, "op", ev.Op.String())
			if !quiet.Stop() {
				select {
				case <-quiet.C:
				default:
				}
			}
			quiet.Reset(w.debounce)
		}
	}
}
