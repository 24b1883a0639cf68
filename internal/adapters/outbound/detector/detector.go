package detector

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/openkraft/excess/internal/domain"
)

// manifest is the subset of package.json the audit reads.
type manifest struct {
	Name             string            `json:"name"`
	Main             string            `json:"main"`
	Module           string            `json:"module"`
	Types            string            `json:"types"`
	Typings          string            `json:"typings"`
	Bin              json.RawMessage   `json:"bin"`
	Exports          json.RawMessage   `json:"exports"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
	Scripts          map[string]string `json:"scripts"`
}

// PackageDetector finds package.json manifests and derives one
// domain.Package per manifest directory.
type PackageDetector struct{}

func New() *PackageDetector {
	return &PackageDetector{}
}

// Detect builds packages from the root-relative file list of a scan. A
// manifest that fails to parse still yields a package (without
// dependencies) and a skipped-file record. When no manifest exists the
// root directory is treated as the single package.
func (d *PackageDetector) Detect(root string, files []string) ([]domain.Package, []domain.SkippedFile) {
	var (
		pkgs    []domain.Package
		skipped []domain.SkippedFile
	)

	for _, f := range files {
		if path.Base(f) != "package.json" {
			continue
		}
		dir := path.Dir(f)
		pkg := domain.Package{Dir: dir, Manifest: f}

		m, err := readManifest(filepath.Join(root, filepath.FromSlash(f)))
		if err != nil {
			skipped = append(skipped, domain.SkippedFile{Path: f, Reason: err.Error()})
			pkgs = append(pkgs, pkg)
			continue
		}
		pkg.Name = m.Name
		pkg.Dependencies = m.Dependencies
		pkg.DevDependencies = m.DevDependencies
		pkg.PeerDependencies = m.PeerDependencies
		pkg.Scripts = m.Scripts
		pkg.EntryPoints = entryPoints(dir, m)
		pkgs = append(pkgs, pkg)
	}

	if len(pkgs) == 0 {
		pkgs = append(pkgs, domain.Package{Dir: "."})
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].Dir < pkgs[j].Dir })
	markArtifacts(pkgs, files)
	return pkgs, skipped
}

func readManifest(p string) (*manifest, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return &m, nil
}

// entryPoints collects the files a manifest names as public entries,
// relative to the audit root.
func entryPoints(dir string, m *manifest) []string {
	var raw []string
	for _, v := range []string{m.Main, m.Module, m.Types, m.Typings} {
		if v != "" {
			raw = append(raw, v)
		}
	}
	raw = append(raw, stringLeaves(m.Bin)...)
	raw = append(raw, stringLeaves(m.Exports)...)

	seen := make(map[string]bool)
	var out []string
	for _, v := range raw {
		if strings.Contains(v, "*") {
			continue
		}
		p := path.Join(dir, v)
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// stringLeaves returns every string reachable in a JSON value: a plain
// string, or the leaves of nested objects and arrays.
func stringLeaves(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	var out []string
	var walk func(any)
	walk = func(v any) {
		switch t := v.(type) {
		case string:
			out = append(out, t)
		case []any:
			for _, e := range t {
				walk(e)
			}
		case map[string]any:
			keys := make([]string, 0, len(t))
			for k := range t {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				walk(t[k])
			}
		}
	}
	walk(v)
	return out
}

// markArtifacts records source directory, tests and README presence on the
// innermost package containing each file.
func markArtifacts(pkgs []domain.Package, files []string) {
	for _, f := range files {
		idx := innermost(pkgs, f)
		if idx < 0 {
			continue
		}
		p := &pkgs[idx]
		rel := f
		if p.Dir != "." {
			rel = strings.TrimPrefix(f, p.Dir+"/")
		}

		if strings.HasPrefix(rel, "src/") || strings.HasPrefix(rel, "lib/") {
			p.HasSourceDir = true
		}
		if domain.IsTestPath(rel) {
			p.HasTests = true
		}
		if !strings.Contains(rel, "/") && strings.HasPrefix(strings.ToLower(rel), "readme") {
			p.HasReadme = true
		}
	}
}

func innermost(pkgs []domain.Package, file string) int {
	best, bestLen := -1, -1
	for i, p := range pkgs {
		if !p.Contains(file) {
			continue
		}
		l := len(p.Dir)
		if p.Dir == "." {
			l = 0
		}
		if l > bestLen {
			best, bestLen = i, l
		}
	}
	return best
}
