package scoring

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/openkraft/excess/internal/domain"
)

// scriptBinaries maps packages whose executable name differs from the
// package name.
var scriptBinaries = map[string][]string{
	"typescript":           {"tsc", "tsserver"},
	"@biomejs/biome":       {"biome"},
	"@playwright/test":     {"playwright"},
	"@changesets/cli":      {"changeset"},
	"@angular/cli":         {"ng"},
	"@nestjs/cli":          {"nest"},
	"@vue/cli-service":     {"vue-cli-service"},
	"npm-run-all":          {"run-s", "run-p", "npm-run-all"},
	"@storybook/cli":       {"storybook", "sb"},
	"@graphql-codegen/cli": {"graphql-codegen"},
}

// CollectRams finds imports, exports, dependencies and files that do not
// earn their place.
func CollectRams(in *Input) domain.RamsMetrics {
	snap := in.Snapshot
	if len(snap.Files) == 0 {
		return domain.RamsMetrics{}
	}
	th := in.Thresholds

	var m domain.RamsMetrics
	m.UnusedImports = findUnusedImports(snap.Files)
	m.DeadExports = findDeadExports(in)
	m.UnusedDependencies = findUnusedDependencies(snap)

	largeWeight := 0.0
	for _, f := range snap.Files {
		if sev, large := largeFileSeverity(f.Lines, th); large {
			m.LargeFiles = append(m.LargeFiles, domain.LargeFile{File: f.Path, Lines: f.Lines})
			largeWeight += largeFileWeight(sev)
			m.Violations = append(m.Violations, domain.Violation{
				Type:       domain.ViolationLargeFile,
				Severity:   sev,
				Message:    fmt.Sprintf("%d lines (limit %d)", f.Lines, th.LargeFileLines),
				File:       f.Path,
				Lines:      f.Lines,
				Suggestion: "Split the file along its responsibilities.",
			})
		}
		if f.IsBlank() {
			m.EmptyFiles = append(m.EmptyFiles, f.Path)
			m.Violations = append(m.Violations, domain.Violation{
				Type:       domain.ViolationEmptyFile,
				Severity:   domain.SeverityLow,
				Message:    "file is empty",
				File:       f.Path,
				Suggestion: "Delete the file or give it content.",
			})
		}
	}

	for _, u := range m.UnusedImports {
		m.Violations = append(m.Violations, domain.Violation{
			Type:       domain.ViolationUnusedImport,
			Severity:   domain.SeverityLow,
			Message:    fmt.Sprintf("%s imported from %q is never used", u.Symbol, u.Specifier),
			File:       u.File,
			Suggestion: "Remove the unused import.",
		})
	}
	for _, d := range m.DeadExports {
		m.Violations = append(m.Violations, domain.Violation{
			Type:       domain.ViolationDeadExport,
			Severity:   domain.SeverityMedium,
			Message:    fmt.Sprintf("export %s is never imported", d.Export),
			File:       d.File,
			Suggestion: "Remove the export or the code behind it.",
		})
	}
	for _, d := range m.UnusedDependencies {
		sev := domain.SeverityLow
		if d.Type == domain.DependencyRuntime {
			sev = domain.SeverityMedium
		}
		m.Violations = append(m.Violations, domain.Violation{
			Type:       domain.ViolationUnusedDependency,
			Severity:   sev,
			Message:    fmt.Sprintf("%s %s is never imported", d.Type, d.Name),
			File:       d.Manifest,
			Suggestion: "Remove the dependency from the manifest.",
		})
	}
	sortViolations(m.Violations)

	m.Score = levelScore(
		cappedPenalty(len(m.UnusedImports), 0.1, 2),
		cappedPenalty(len(m.DeadExports), 0.2, 3),
		cappedPenalty(len(m.UnusedDependencies), 0.5, 2),
		min(2.5, largeWeight),
		cappedPenalty(len(m.EmptyFiles), 0.25, 0.5),
	)
	return m
}

// findUnusedImports flags bound names with no reference in the file body.
func findUnusedImports(files []*domain.SourceFile) []domain.UnusedImport {
	var out []domain.UnusedImport
	for _, f := range files {
		if f.IsDeclarationFile() || len(f.Imports) == 0 {
			continue
		}
		refs := referencedIdentifiers(f.Body)
		ext := path.Ext(f.Path)
		jsx := (ext == ".jsx" || ext == ".tsx") && hasJSX(f.Body)

		for _, imp := range f.Imports {
			for _, name := range imp.Bindings() {
				if refs[name] || (jsx && name == "React") {
					continue
				}
				out = append(out, domain.UnusedImport{
					File:      f.Path,
					Symbol:    name,
					Specifier: imp.Specifier,
					Line:      imp.Line,
				})
			}
		}
	}
	return out
}

// findDeadExports matches every export against the resolved imports that
// point at its file. Re-exports count as uses of their target, so a name
// travelling through a barrel is checked again at the barrel.
func findDeadExports(in *Input) []domain.DeadExport {
	snap := in.Snapshot
	used := make(map[string]map[string]bool)
	whole := make(map[string]bool)
	use := func(file, name string) {
		if used[file] == nil {
			used[file] = make(map[string]bool)
		}
		used[file][name] = true
	}

	for _, f := range snap.Files {
		for _, imp := range f.Imports {
			if imp.Resolved == "" || imp.Resolved == f.Path {
				continue
			}
			target := imp.Resolved
			if imp.ImportsWholeModule() {
				whole[target] = true
				continue
			}
			if imp.Default != "" {
				// A default import of a module without a default export
				// receives its CommonJS exports object.
				if t, ok := snap.File(target); ok && !hasExport(t, "default") {
					whole[target] = true
				} else {
					use(target, "default")
				}
			}
			for _, n := range imp.Named {
				use(target, n.Imported)
			}
		}
	}

	var out []domain.DeadExport
	for _, f := range snap.Files {
		if whole[f.Path] || in.IsEntryPoint(f.Path) || f.IsTest || f.IsDeclarationFile() {
			continue
		}
		for _, e := range f.Exports {
			if !used[f.Path][e] {
				out = append(out, domain.DeadExport{File: f.Path, Export: e})
			}
		}
	}
	return out
}

func hasExport(f *domain.SourceFile, name string) bool {
	for _, e := range f.Exports {
		if e == name {
			return true
		}
	}
	return false
}

// findUnusedDependencies compares each manifest against the external
// packages imported by the files it owns. Files of nested packages belong
// to the nested package.
func findUnusedDependencies(snap *domain.Snapshot) []domain.UnusedDependency {
	usedBy := make(map[string]map[string]bool)
	hasTS := make(map[string]bool)
	for _, f := range snap.Files {
		pkg, ok := snap.PackageFor(f.Path)
		if !ok {
			continue
		}
		if usedBy[pkg.Dir] == nil {
			usedBy[pkg.Dir] = make(map[string]bool)
		}
		for _, imp := range f.Imports {
			if imp.External && imp.Package != "" {
				usedBy[pkg.Dir][imp.Package] = true
			}
		}
		if ext := path.Ext(f.Path); ext == ".ts" || ext == ".tsx" || ext == ".mts" || ext == ".cts" {
			hasTS[pkg.Dir] = true
		}
	}

	var out []domain.UnusedDependency
	for _, pkg := range snap.Packages {
		if pkg.Manifest == "" {
			continue
		}
		used := usedBy[pkg.Dir]
		scripts := scriptWords(pkg.Scripts)
		check := func(deps map[string]string, kind string) {
			for _, name := range sortedKeys(deps) {
				if dependencyUsed(name, kind, used, scripts, hasTS[pkg.Dir]) {
					continue
				}
				out = append(out, domain.UnusedDependency{Name: name, Type: kind, Manifest: pkg.Manifest})
			}
		}
		check(pkg.Dependencies, domain.DependencyRuntime)
		check(pkg.DevDependencies, domain.DependencyDev)
		check(pkg.PeerDependencies, domain.DependencyPeer)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Manifest < out[j].Manifest })
	return out
}

func dependencyUsed(name, kind string, used, scripts map[string]bool, hasTS bool) bool {
	if used[name] {
		return true
	}
	if typed, ok := strings.CutPrefix(name, "@types/"); ok {
		if strings.Contains(typed, "__") {
			typed = "@" + strings.Replace(typed, "__", "/", 1)
		}
		return typed == "node" || used[typed]
	}
	if name == "typescript" && hasTS {
		return true
	}
	if kind != domain.DependencyDev || len(scripts) == 0 {
		return false
	}
	names := append([]string{name, path.Base(name)}, scriptBinaries[name]...)
	for _, n := range names {
		if scripts[n] {
			return true
		}
	}
	return false
}

// scriptWords splits every script into words made of name characters. A
// word that continues with '.', '/' or '@' also contributes the part before
// it, so "eslint.config.js" mentions eslint while "./bin/eslint" does not.
func scriptWords(scripts map[string]string) map[string]bool {
	words := make(map[string]bool)
	for _, script := range scripts {
		for _, w := range strings.FieldsFunc(script, func(r rune) bool { return !isScriptNameRune(r) }) {
			words[w] = true
			for i := 1; i < len(w); i++ {
				if c := w[i]; c == '.' || c == '/' || c == '@' {
					words[w[:i]] = true
				}
			}
		}
	}
	return words
}

func isScriptNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return r == '_' || r == '-' || r == '@' || r == '/' || r == '.'
}
