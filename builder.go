package textbook

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alnah/go-textbook/internal/executor"
	"github.com/alnah/go-textbook/internal/fileutil"
	"github.com/alnah/go-textbook/internal/logging"
	"github.com/alnah/go-textbook/internal/notebook"
	"github.com/alnah/go-textbook/internal/render"
	"github.com/alnah/go-textbook/internal/state"
	"github.com/alnah/go-textbook/internal/version"
)

// checkpointDir holds editor autosaves that are never part of the book.
const checkpointDir = ".ipynb_checkpoints"

// NotebookExecutor runs one notebook.
type NotebookExecutor interface {
	Run(ctx context.Context, path string) executor.Result
}

// Compile-time interface implementation check.
var _ NotebookExecutor = (*executor.Executor)(nil)

// Builder decides, executes and renders every notebook under a content
// root, then persists the hash record.
type Builder struct {
	contentRoot string
	hashes      *state.HashStore
	skipFile    string

	filter           ExecutionFilter
	mode             BuildMode
	workers          int
	executor         NotebookExecutor
	stableDir        string
	devDir           string
	inlineImages     bool
	standaloneHTML   bool
	installedVersion string
	latestStable     string
	logger           *slog.Logger
}

// NewBuilder returns a Builder for the notebooks under contentRoot, using
// the hash record at hashFile and the skip list at skipFile.
func NewBuilder(contentRoot, hashFile, skipFile string, opts ...Option) *Builder {
	b := &Builder{
		contentRoot:      contentRoot,
		hashes:           state.NewHashStore(hashFile),
		skipFile:         skipFile,
		mode:             StableMode(),
		devDir:           filepath.Join(filepath.Dir(filepath.Clean(contentRoot)), "dev"),
		installedVersion: version.Unknown,
		logger:           logging.Discard(),
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.executor == nil {
		b.executor = executor.New(executor.Options{WriteBack: true}, nil)
	}
	return b
}

// Filter returns the configured execution filter.
func (b *Builder) Filter() ExecutionFilter { return b.filter }

// Mode returns the configured build mode.
func (b *Builder) Mode() BuildMode { return b.mode }

// Build processes every notebook once. Configuration errors abort before
// any notebook is touched. Per-notebook failures are recorded in the
// report and never abort the batch. The hash record is saved once at the
// end, including when ctx is cancelled, and the returned error is then
// ctx.Err().
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()

	if !b.filter.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidExecutionFilter, int(b.filter))
	}
	if !dirExists(b.contentRoot) {
		return nil, errContentRoot(b.contentRoot)
	}

	skipList, err := state.LoadSkipList(b.skipFile)
	if err != nil {
		return nil, err
	}
	skip := skipList.ForMode(b.mode.IsDev())

	prior, err := b.hashes.Load()
	if err != nil {
		return nil, err
	}

	paths, err := Discover(b.contentRoot)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Mode:             b.mode,
		Filter:           b.filter,
		InstalledVersion: b.installedVersion,
	}
	report.Advisories = versionAdvisories(b.mode, b.installedVersion, b.latestStable)
	if len(paths) == 0 {
		report.Advisories = append(report.Advisories, Advisory{Kind: AdvisoryNoNotebooks, Detail: b.contentRoot})
	}
	for _, a := range report.Advisories {
		b.logger.Log(ctx, a.Level(), a.Message(), "kind", a.Kind.String())
	}

	b.logger.Info("build started",
		"mode", b.mode.String(),
		"filter", b.filter.String(),
		"notebooks", len(paths),
		"skipped", len(skip),
		"version", b.installedVersion)

	dup := duplicates(paths)
	workers := ResolvePoolSize(b.workers)
	report.Notebooks = runBatch(ctx, len(paths), workers,
		func(i int) NotebookResult {
			if dup[i] {
				return NotebookResult{
					Notebook: filepath.Base(paths[i]),
					Path:     paths[i],
					Err:      fmt.Errorf("%w: %s", ErrDuplicateNotebook, paths[i]),
				}
			}
			return b.processNotebook(ctx, paths[i], prior, skip)
		},
		func(i int, err error) NotebookResult {
			return NotebookResult{Notebook: filepath.Base(paths[i]), Path: paths[i], Err: err}
		},
	)

	updated := nextHashRecord(prior, report.Notebooks)
	if err := b.hashes.Save(updated); err != nil {
		return report, err
	}
	report.Duration = time.Since(start)

	b.logger.Info("build finished",
		"executed", report.Executed(),
		"failed", len(report.Failed()),
		"warnings", report.Warnings(),
		"duration", report.Duration.Round(time.Millisecond).String())

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// nextHashRecord starts from prior and stores the current fingerprint of
// every notebook processed without error, executed or not. Entries of
// notebooks no longer present are kept.
func nextHashRecord(prior state.HashRecord, results []NotebookResult) state.HashRecord {
	next := prior.Clone()
	for _, r := range results {
		if r.Err == nil && r.Fingerprint != "" {
			next[r.Notebook] = string(r.Fingerprint)
		}
	}
	return next
}

// processNotebook runs the decide, execute and render steps for one
// notebook. Any error leaves its hash and metadata untouched.
func (b *Builder) processNotebook(ctx context.Context, path string, prior state.HashRecord, skip state.SkipSet) NotebookResult {
	start := time.Now()
	name := filepath.Base(path)
	result := NotebookResult{Notebook: name, Path: path}
	log := b.logger.With("notebook", name)

	fail := func(err error) NotebookResult {
		result.Err = err
		result.Duration = time.Since(start)
		log.Error("notebook failed", "error", err)
		return result
	}

	source, err := notebook.Load(path)
	if err != nil {
		return fail(err)
	}
	fp, err := source.Fingerprint()
	if err != nil {
		return fail(err)
	}
	result.Fingerprint = fp

	outDir, err := b.outputDir(path)
	if err != nil {
		return fail(err)
	}
	sidecarPath := state.SidecarPath(outDir, name)
	meta, _, err := state.ReadMetadata(sidecarPath)
	if err != nil {
		return fail(err)
	}

	stored, hasStored := prior[name]
	outcome := Decide(Facts{
		Notebook:         name,
		Fingerprint:      fp,
		StoredHash:       stored,
		HasStoredHash:    hasStored,
		Prior:            meta,
		SkipListed:       skip.Contains(name),
		Filter:           b.filter,
		Mode:             b.mode,
		InstalledVersion: b.installedVersion,
	})
	result.Decision = outcome.Decision
	result.Advisories = outcome.Advisories
	log.Debug("decided", "action", outcome.Decision.Action.String(), "reason", outcome.Decision.Reason.String())

	rendered := source
	fully := meta.FullyExecuted
	if outcome.Decision.Execute() {
		log.Info("executing", "reason", outcome.Decision.Reason.String())
		res := b.executor.Run(ctx, path)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fail(fmt.Errorf("execution interrupted: %w", ctxErr))
		}
		if res.Notebook == nil {
			return fail(res.Err)
		}
		result.Initiated = res.Initiated
		fully = res.FullySuccessful
		rendered = res.Notebook
		if !fully {
			adv := Advisory{Kind: AdvisoryExecutionIncomplete, Notebook: name, Cause: res.Err}
			if res.Err != nil {
				adv.Detail = res.Err.Error()
			}
			result.Advisories = append(result.Advisories, adv)
		}
		log.Info("executed",
			"fully_executed", fully,
			"cells", fmt.Sprintf("%d/%d", rendered.ExecutedCells(), rendered.CodeCells()),
			"duration", res.Duration.Round(time.Millisecond).String())
	}

	for _, a := range result.Advisories {
		log.Log(ctx, a.Level(), a.Message(), "kind", a.Kind.String())
	}

	next := state.Metadata{
		FullyExecuted: fully,
		Version:       state.NextVersion(result.Initiated, b.installedVersion, meta.Version),
		Commit:        meta.Commit,
	}
	if result.Initiated && b.mode.IsDev() {
		next.Commit = b.mode.Commit()
	}
	result.FullyExecuted = next.FullyExecuted
	result.ExecutedCells = rendered.ExecutedCells()
	result.CodeCells = rendered.CodeCells()
	result.Version = next.Version
	result.Commit = next.Commit

	renderer := render.New(render.Options{InlineImages: b.inlineImages})
	page, err := renderer.Render(ctx, rendered, outDir)
	if err != nil {
		return fail(err)
	}

	sidecar := state.Sidecar{
		Metadata: next,
		Notebook: name,
		Sections: render.SplitSections(page.HTML),
	}
	if err := state.WriteSidecar(sidecarPath, sidecar); err != nil {
		return fail(err)
	}
	result.SidecarPath = sidecarPath

	if b.standaloneHTML {
		htmlPath := filepath.Join(outDir, fileutil.Stem(name)+".html")
		if err := fileutil.WriteFileAtomic(htmlPath, []byte(render.Standalone(page.HTML)), fileutil.FilePermissions); err != nil {
			return fail(fmt.Errorf("writing standalone HTML: %w", err))
		}
	}

	result.Duration = time.Since(start)
	return result
}

// outputDir returns where the notebook's sidecar and figures go: next to
// the notebook, or mirrored under the stable or dev output directory.
func (b *Builder) outputDir(path string) (string, error) {
	base := b.stableDir
	if b.mode.IsDev() {
		base = b.devDir
	}
	dir := filepath.Dir(path)
	if base == "" {
		return dir, nil
	}
	return fileutil.MirrorDir(b.contentRoot, dir, base)
}

func dirExists(path string) bool { return fileutil.DirExists(path) }

func errContentRoot(path string) error {
	return fmt.Errorf("%w: %s", ErrContentRootNotFound, path)
}

// Discover returns every notebook under root, sorted by file name and then
// by path. Editor checkpoint directories are ignored.
func Discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == checkpointDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), notebook.Extension) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errContentRoot(root)
		}
		return nil, fmt.Errorf("discovering notebooks: %w", err)
	}

	sort.Slice(paths, func(i, j int) bool {
		ni, nj := filepath.Base(paths[i]), filepath.Base(paths[j])
		if ni != nj {
			return ni < nj
		}
		return paths[i] < paths[j]
	})
	return paths, nil
}

// duplicates marks every path whose file name already appeared earlier in
// the sorted list.
func duplicates(paths []string) []bool {
	dup := make([]bool, len(paths))
	seen := make(map[string]struct{}, len(paths))
	for i, p := range paths {
		name := filepath.Base(p)
		if _, ok := seen[name]; ok {
			dup[i] = true
			continue
		}
		seen[name] = struct{}{}
	}
	return dup
}
