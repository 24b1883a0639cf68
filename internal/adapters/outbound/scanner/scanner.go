package scanner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/openkraft/excess/internal/adapters/outbound/detector"
	"github.com/openkraft/excess/internal/adapters/outbound/parser"
	"github.com/openkraft/excess/internal/adapters/outbound/resolver"
	"github.com/openkraft/excess/internal/domain"
	"github.com/openkraft/excess/internal/domain/graph"
)

// FileScanner implements domain.ProjectScanner by walking the filesystem
// once and building the immutable snapshot every collector reads.
type FileScanner struct {
	logger   *slog.Logger
	detector *detector.PackageDetector
}

func New(logger *slog.Logger) *FileScanner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileScanner{logger: logger, detector: detector.New()}
}

// walkResult is what enumeration found before any file is read.
type walkResult struct {
	all     []string // every non-ignored file, for package detection
	sources []string // source files inside the focus set
	known   []string // every non-ignored source file, for resolution
}

func (s *FileScanner) Scan(ctx context.Context, cfg domain.AuditConfig) (*domain.Snapshot, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("audit root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("audit root %s is not a directory", root)
	}

	w := &walker{cfg: cfg, logger: s.logger, visited: make(map[string]bool)}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		w.visited[real] = true
	}
	if err := w.walk(ctx, root, "", 0); err != nil {
		return nil, err
	}
	found := w.result

	pkgs, skipped := s.detector.Detect(root, found.all)

	files, readSkipped, err := s.parseAll(ctx, root, cfg, found.sources)
	if err != nil {
		return nil, err
	}
	skipped = append(skipped, readSkipped...)
	sort.Slice(skipped, func(i, j int) bool { return skipped[i].Path < skipped[j].Path })

	res := resolver.New(found.known, cfg.Aliases)
	g := s.buildGraph(res, files)
	resolveEntryPoints(res, pkgs)

	s.logger.Debug("scan complete",
		"root", root,
		"files", len(files),
		"edges", g.EdgeCount(),
		"packages", len(pkgs),
		"skipped", len(skipped))

	snap := domain.NewSnapshot(root, files, g, pkgs, skipped)
	snap.EntryGlobs = cfg.EntryPoints
	return snap, nil
}

type walker struct {
	cfg     domain.AuditConfig
	logger  *slog.Logger
	visited map[string]bool
	result  walkResult
}

// walk descends into dir. rel is dir relative to the root ("" for the root
// itself). Symlinked directories are entered once per real path.
func (w *walker) walk(ctx context.Context, dir, rel string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		w.logger.Warn("skipping unreadable directory", "path", rel, "reason", err)
		return nil
	}

	for _, e := range entries {
		childRel := e.Name()
		if rel != "" {
			childRel = rel + "/" + e.Name()
		}
		if w.cfg.Ignored(childRel) {
			continue
		}
		abs := filepath.Join(dir, e.Name())

		isDir := e.IsDir()
		if e.Type()&os.ModeSymlink != 0 {
			target, err := os.Stat(abs)
			if err != nil {
				w.logger.Debug("skipping broken symlink", "path", childRel)
				continue
			}
			isDir = target.IsDir()
		}

		if isDir {
			if depth+1 >= w.cfg.MaxDepth {
				w.logger.Debug("max depth reached", "path", childRel)
				continue
			}
			real, err := filepath.EvalSymlinks(abs)
			if err != nil || w.visited[real] {
				continue
			}
			w.visited[real] = true
			if err := w.walk(ctx, abs, childRel, depth+1); err != nil {
				return err
			}
			continue
		}

		if !e.Type().IsRegular() && e.Type()&os.ModeSymlink == 0 {
			continue
		}
		w.result.all = append(w.result.all, childRel)
		if parser.IsSourceFile(e.Name()) {
			w.result.known = append(w.result.known, childRel)
			if w.cfg.InFocus(childRel) {
				w.result.sources = append(w.result.sources, childRel)
			}
		}
	}
	return nil
}

// parseAll reads and parses every source file in parallel. Each goroutine
// writes only its own slot; results are compacted in path order.
func (s *FileScanner) parseAll(ctx context.Context, root string, cfg domain.AuditConfig, rels []string) ([]*domain.SourceFile, []domain.SkippedFile, error) {
	sort.Strings(rels)
	p := parser.New(parser.Options{MinLiteralLength: cfg.Thresholds.MinLiteralLength})

	parsed := make([]*domain.SourceFile, len(rels))
	reasons := make([]string, len(rels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, rel := range rels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, reason := readSource(filepath.Join(root, filepath.FromSlash(rel)), cfg.MaxFileBytes)
			if reason != "" {
				reasons[i] = reason
				return nil
			}
			parsed[i] = p.ParseFile(rel, data)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	files := make([]*domain.SourceFile, 0, len(rels))
	var skipped []domain.SkippedFile
	for i, rel := range rels {
		if reasons[i] != "" {
			s.logger.Debug("skipping file", "path", rel, "reason", reasons[i])
			skipped = append(skipped, domain.SkippedFile{Path: rel, Reason: reasons[i]})
			continue
		}
		files = append(files, parsed[i])
	}
	return files, skipped, nil
}

// readSource returns the file contents, or a non-empty reason when the
// file must be skipped.
func readSource(p string, maxBytes int64) ([]byte, string) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, err.Error()
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Sprintf("file exceeds max_file_bytes (%d > %d)", info.Size(), maxBytes)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err.Error()
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, "binary content"
	}
	return data, ""
}

// buildGraph resolves every import in place and records edges, external
// packages and unresolved specifiers.
func (s *FileScanner) buildGraph(res *resolver.Resolver, files []*domain.SourceFile) *graph.ImportGraph {
	g := graph.New()
	parsed := make(map[string]bool, len(files))
	for _, f := range files {
		g.AddFile(f.Path)
		parsed[f.Path] = true
	}

	for _, f := range files {
		for i := range f.Imports {
			ref := &f.Imports[i]
			r, ok := res.Resolve(f.Path, ref.Specifier)
			if !ok {
				s.logger.Debug("unresolved import", "path", f.Path, "specifier", ref.Specifier)
				g.AddUnresolved(f.Path, ref.Specifier)
				continue
			}
			if r.External {
				ref.External = true
				ref.Builtin = r.Builtin
				ref.Package = r.Package
				if !r.Builtin {
					g.AddExternal(f.Path, r.Package)
				}
				continue
			}
			ref.Resolved = r.Path
			// Targets outside the focus set resolve but are not nodes.
			if parsed[r.Path] {
				g.AddEdge(f.Path, r.Path)
			}
		}
	}
	g.Seal()
	return g
}

// resolveEntryPoints maps manifest entries onto scanned files with the
// resolver's probing, so "./dist/index.js" also finds "dist/index.ts".
// Entries that name no scanned file are dropped.
func resolveEntryPoints(res *resolver.Resolver, pkgs []domain.Package) {
	for i := range pkgs {
		p := &pkgs[i]
		if len(p.EntryPoints) == 0 {
			continue
		}
		manifest := path.Join(p.Dir, "package.json")
		var resolved []string
		seen := make(map[string]bool)
		for _, ep := range p.EntryPoints {
			rel := ep
			if p.Dir != "." {
				rel = strings.TrimPrefix(ep, p.Dir+"/")
			}
			r, ok := res.Resolve(manifest, "./"+rel)
			if !ok || r.External || seen[r.Path] {
				continue
			}
			seen[r.Path] = true
			resolved = append(resolved, r.Path)
		}
		sort.Strings(resolved)
		p.EntryPoints = resolved
	}
}
