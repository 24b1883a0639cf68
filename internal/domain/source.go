package domain

import (
	"path"
	"strings"
)

// Import kinds recognised by the lexical extractor.
const (
	ImportES         = "import"
	ImportRequire    = "require"
	ImportDynamic    = "dynamic"
	ImportReExport   = "reexport"
	ImportSideEffect = "side-effect"
)

// ImportedName is one named binding: `import { Imported as Local }`.
type ImportedName struct {
	Imported string `json:"imported"`
	Local    string `json:"local"`
}

// ImportRef is one import/require/re-export statement.
type ImportRef struct {
	Specifier string         `json:"specifier"`
	Kind      string         `json:"kind"`
	Default   string         `json:"default,omitempty"`
	Namespace string         `json:"namespace,omitempty"`
	Named     []ImportedName `json:"named,omitempty"`
	// ExportAll is set for `export * from`.
	ExportAll bool `json:"export_all,omitempty"`
	TypeOnly  bool `json:"type_only,omitempty"`
	Line      int  `json:"line"`

	// Filled by the resolver.
	Resolved string `json:"resolved,omitempty"`
	External bool   `json:"external,omitempty"`
	Builtin  bool   `json:"builtin,omitempty"`
	Package  string `json:"package,omitempty"`
}

// Bindings returns the local names this import introduces into the file.
func (r ImportRef) Bindings() []string {
	if r.Kind == ImportReExport || r.Kind == ImportSideEffect {
		return nil
	}
	var names []string
	if r.Default != "" {
		names = append(names, r.Default)
	}
	if r.Namespace != "" {
		names = append(names, r.Namespace)
	}
	for _, n := range r.Named {
		names = append(names, n.Local)
	}
	return names
}

// ImportsWholeModule reports whether every export of the target is reachable
// through this import (namespace import, bare require, dynamic import,
// `export *`).
func (r ImportRef) ImportsWholeModule() bool {
	switch r.Kind {
	case ImportDynamic:
		return true
	case ImportReExport:
		return r.ExportAll
	case ImportRequire:
		return len(r.Named) == 0
	}
	return r.Namespace != ""
}

// Literal is a string literal found in a file.
type Literal struct {
	Value string `json:"value"`
	Line  int    `json:"line"`
}

// Declaration kinds.
const (
	DeclFunction  = "function"
	DeclClass     = "class"
	DeclInterface = "interface"
	DeclType      = "type"
	DeclEnum      = "enum"
)

// Declaration is a named top-level or nested declaration.
type Declaration struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Line      int    `json:"line"`
	EndLine   int    `json:"end_line"`
	Body      string `json:"-"`
	Component bool   `json:"component,omitempty"`
}

// SourceFile holds everything the collectors need about one file. Created
// once per scan and read-only afterwards.
type SourceFile struct {
	Path         string        `json:"path"`
	Lines        int           `json:"lines"`
	Text         string        `json:"-"`
	Exports      []string      `json:"exports"`
	Imports      []ImportRef   `json:"imports"`
	Literals     []Literal     `json:"literals"`
	Declarations []Declaration `json:"declarations"`
	HasModuleDoc bool          `json:"has_module_doc"`
	IsTest       bool          `json:"is_test"`
	// Code is Text with comments blanked. Line structure is preserved.
	Code string `json:"-"`
	// Body is the code with comments removed, string contents blanked and
	// import statements blanked. Used for identifier reference checks.
	Body string `json:"-"`
}

// Dir returns the slash-separated directory of the file.
func (f *SourceFile) Dir() string {
	return path.Dir(f.Path)
}

// IsDeclarationFile reports whether this is a TypeScript .d.ts file.
func (f *SourceFile) IsDeclarationFile() bool {
	return strings.HasSuffix(f.Path, ".d.ts") || strings.HasSuffix(f.Path, ".d.mts") || strings.HasSuffix(f.Path, ".d.cts")
}

// IsBlank reports whether the file has no non-whitespace content.
func (f *SourceFile) IsBlank() bool {
	return strings.TrimSpace(f.Text) == ""
}

// SkippedFile records a file the scanner could not read.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Package is a directory with a package.json (or the audit root).
type Package struct {
	Dir              string            `json:"dir"`
	Name             string            `json:"name,omitempty"`
	Manifest         string            `json:"manifest,omitempty"`
	Dependencies     map[string]string `json:"dependencies,omitempty"`
	DevDependencies  map[string]string `json:"dev_dependencies,omitempty"`
	PeerDependencies map[string]string `json:"peer_dependencies,omitempty"`
	Scripts          map[string]string `json:"scripts,omitempty"`
	// EntryPoints are root-relative files named by main/module/types/bin/exports.
	EntryPoints []string `json:"entry_points,omitempty"`
	HasSourceDir bool    `json:"has_source_dir"`
	HasTests     bool    `json:"has_tests"`
	HasReadme    bool    `json:"has_readme"`
}

// Contains reports whether a root-relative path lies inside this package dir.
func (p Package) Contains(file string) bool {
	if p.Dir == "." || p.Dir == "" {
		return true
	}
	return file == p.Dir || strings.HasPrefix(file, p.Dir+"/")
}

// IsTestPath reports whether a root-relative path names a test file:
// *.test.* / *.spec.* files, or anything under a __tests__, test, tests or
// spec directory.
func IsTestPath(p string) bool {
	base := path.Base(p)
	if strings.Contains(base, ".test.") || strings.Contains(base, ".spec.") {
		return true
	}
	for _, seg := range strings.Split(path.Dir(p), "/") {
		switch seg {
		case "__tests__", "test", "tests", "spec":
			return true
		}
	}
	return false
}
