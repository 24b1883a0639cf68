package domain

import (
	"strings"

	"github.com/openkraft/excess/internal/domain/graph"
)

// Snapshot is the immutable result of one enumeration pass. Collectors only
// read it; nothing re-walks the filesystem after it is built.
type Snapshot struct {
	Root     string             `json:"root"`
	Files    []*SourceFile      `json:"files"`
	Graph    *graph.ImportGraph `json:"-"`
	Packages []Package          `json:"packages"`
	Skipped  []SkippedFile      `json:"skipped,omitempty"`
	// EntryGlobs are user-configured entry point patterns.
	EntryGlobs []string `json:"entry_globs,omitempty"`

	byPath map[string]*SourceFile
}

// NewSnapshot indexes files by path. Files must already be sorted by path.
func NewSnapshot(root string, files []*SourceFile, g *graph.ImportGraph, pkgs []Package, skipped []SkippedFile) *Snapshot {
	s := &Snapshot{
		Root:     root,
		Files:    files,
		Graph:    g,
		Packages: pkgs,
		Skipped:  skipped,
		byPath:   make(map[string]*SourceFile, len(files)),
	}
	for _, f := range files {
		s.byPath[f.Path] = f
	}
	if s.Graph == nil {
		s.Graph = graph.New()
	}
	return s
}

// File looks up a file by its root-relative path.
func (s *Snapshot) File(path string) (*SourceFile, bool) {
	f, ok := s.byPath[path]
	return f, ok
}

// TotalLines sums line counts across every file.
func (s *Snapshot) TotalLines() int {
	total := 0
	for _, f := range s.Files {
		total += f.Lines
	}
	return total
}

// PackageFor returns the innermost package containing the file.
func (s *Snapshot) PackageFor(file string) (Package, bool) {
	best, bestDepth := -1, -1
	for i, p := range s.Packages {
		if !p.Contains(file) {
			continue
		}
		if d := dirDepth(p.Dir); d > bestDepth {
			best, bestDepth = i, d
		}
	}
	if best == -1 {
		return Package{}, false
	}
	return s.Packages[best], true
}

func dirDepth(dir string) int {
	if dir == "" || dir == "." {
		return 0
	}
	return strings.Count(dir, "/") + 1
}
