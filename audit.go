package textbook

import (
	"path/filepath"

	"github.com/alnah/go-textbook/internal/state"
	"github.com/alnah/go-textbook/internal/version"
)

// AuditVersions reads the toolchain version recorded by every notebook
// that has a hash on record and is not skip-listed for the build mode, and
// checks them against the latest stable version. It never executes.
func (b *Builder) AuditVersions() (version.Audit, error) {
	if !dirExists(b.contentRoot) {
		return version.Audit{}, errContentRoot(b.contentRoot)
	}
	skipList, err := state.LoadSkipList(b.skipFile)
	if err != nil {
		return version.Audit{}, err
	}
	skip := skipList.ForMode(b.mode.IsDev())

	hashes, err := b.hashes.Load()
	if err != nil {
		return version.Audit{}, err
	}

	paths, err := Discover(b.contentRoot)
	if err != nil {
		return version.Audit{}, err
	}

	var records []version.Recorded
	for _, path := range paths {
		name := filepath.Base(path)
		if _, ok := hashes[name]; !ok || skip.Contains(name) {
			continue
		}
		outDir, err := b.outputDir(path)
		if err != nil {
			return version.Audit{}, err
		}
		meta, found, err := state.ReadMetadata(state.SidecarPath(outDir, name))
		if err != nil {
			return version.Audit{}, err
		}
		if !found || meta.Version.IsAbsent() {
			records = append(records, version.Recorded{Notebook: name, Missing: true})
			continue
		}
		records = append(records, version.Recorded{Notebook: name, Version: meta.Version.Wire()})
	}

	return version.AuditVersions(records, b.latestStable), nil
}
