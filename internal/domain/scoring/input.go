package scoring

import (
	"path"
	"strings"

	"github.com/openkraft/excess/internal/domain"
)

// entryStems are file names that act as entry points at a package root or
// directly under its src/ directory.
var entryStems = map[string]bool{
	"index": true, "main": true, "cli": true, "server": true, "app": true,
}

// entryDirs hold files loaded by a runtime or framework rather than imported:
// executables, scripts, file-system routes.
var entryDirs = map[string]bool{
	"bin": true, "scripts": true, "pages": true, "app": true, "routes": true,
}

// Input is the read-only state shared by the three collectors for one run.
// It replaces any package-level cache: each audit builds its own.
type Input struct {
	Snapshot   *domain.Snapshot
	Thresholds domain.Thresholds

	entries map[string]bool
}

// NewInput derives the entry point set once for the given snapshot.
func NewInput(snap *domain.Snapshot, th domain.Thresholds) *Input {
	return &Input{Snapshot: snap, Thresholds: th, entries: entryPoints(snap)}
}

// IsEntryPoint reports whether a file is loaded from outside the import
// graph: manifest entries, conventional entry files, tests, configs.
func (in *Input) IsEntryPoint(p string) bool {
	return in.entries[p]
}

// EntryPoints returns the entry point paths in sorted order.
func (in *Input) EntryPoints() []string {
	return sortedKeys(in.entries)
}

func entryPoints(snap *domain.Snapshot) map[string]bool {
	entries := make(map[string]bool)
	for _, p := range snap.Packages {
		for _, ep := range p.EntryPoints {
			if _, ok := snap.File(ep); ok {
				entries[ep] = true
			}
		}
	}
	for _, f := range snap.Files {
		if isConventionalEntry(snap, f) || domain.MatchGlobs(snap.EntryGlobs, f.Path) {
			entries[f.Path] = true
		}
	}
	return entries
}

func isConventionalEntry(snap *domain.Snapshot, f *domain.SourceFile) bool {
	if f.IsTest || f.IsDeclarationFile() || strings.Contains(path.Base(f.Path), ".config.") {
		return true
	}
	rel := f.Path
	if pkg, ok := snap.PackageFor(f.Path); ok {
		rel = relTo(pkg.Dir, f.Path)
	}
	dir := path.Dir(rel)
	if (dir == "." || dir == "src") && entryStems[stem(rel)] {
		return true
	}
	for _, seg := range strings.Split(dir, "/") {
		if entryDirs[seg] {
			return true
		}
	}
	return false
}
