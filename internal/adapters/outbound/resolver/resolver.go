// Package resolver maps import specifiers to files inside the audit root.
package resolver

import (
	"path"
	"sort"
	"strings"
)

// candidateExtensions are tried in order when a specifier has no usable extension.
var candidateExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts", ".d.ts"}

// tsSources maps an emitted extension to the TypeScript sources that
// produce it, for ESM imports written as "./x.js".
var tsSources = map[string][]string{
	".js":  {".ts", ".tsx"},
	".jsx": {".tsx"},
	".mjs": {".mts"},
	".cjs": {".cts"},
}

var builtins = map[string]bool{
	"assert": true, "async_hooks": true, "buffer": true, "child_process": true,
	"cluster": true, "console": true, "constants": true, "crypto": true,
	"dgram": true, "diagnostics_channel": true, "dns": true, "domain": true,
	"events": true, "fs": true, "http": true, "http2": true, "https": true,
	"inspector": true, "module": true, "net": true, "os": true, "path": true,
	"perf_hooks": true, "process": true, "punycode": true, "querystring": true,
	"readline": true, "repl": true, "stream": true, "string_decoder": true,
	"sys": true, "timers": true, "tls": true, "trace_events": true, "tty": true,
	"url": true, "util": true, "v8": true, "vm": true, "wasi": true,
	"worker_threads": true, "zlib": true, "test": true,
}

// Result describes where a specifier points.
type Result struct {
	// Path is the root-relative file for internal specifiers.
	Path     string
	External bool
	Builtin  bool
	// Package is the npm package name for external specifiers.
	Package string
}

type alias struct {
	prefix string
	dir    string
}

// Resolver resolves specifiers against a fixed file set.
type Resolver struct {
	files   map[string]bool
	aliases []alias
}

// New builds a resolver over root-relative, slash-separated file paths.
// aliases maps a specifier prefix (e.g. "@/") to a root-relative directory.
func New(files []string, aliases map[string]string) *Resolver {
	r := &Resolver{files: make(map[string]bool, len(files))}
	for _, f := range files {
		r.files[f] = true
	}
	for prefix, dir := range aliases {
		r.aliases = append(r.aliases, alias{prefix: prefix, dir: dir})
	}
	// Longest prefix wins.
	sort.Slice(r.aliases, func(i, j int) bool {
		if len(r.aliases[i].prefix) != len(r.aliases[j].prefix) {
			return len(r.aliases[i].prefix) > len(r.aliases[j].prefix)
		}
		return r.aliases[i].prefix < r.aliases[j].prefix
	})
	return r
}

// Resolve maps spec, imported from the file from, to a Result. ok is false
// when the specifier is internal (relative, root-absolute or aliased) but
// matches no file.
func (r *Resolver) Resolve(from, spec string) (Result, bool) {
	if i := strings.IndexAny(spec, "?#"); i > 0 {
		spec = spec[:i]
	}

	switch {
	case isRelative(spec):
		return r.lookup(path.Join(path.Dir(from), spec))
	case strings.HasPrefix(spec, "/"):
		return r.lookup(path.Clean(strings.TrimPrefix(spec, "/")))
	}

	for _, a := range r.aliases {
		if spec == strings.TrimSuffix(a.prefix, "/") || strings.HasPrefix(spec, a.prefix) {
			rest := strings.TrimPrefix(strings.TrimPrefix(spec, strings.TrimSuffix(a.prefix, "/")), "/")
			return r.lookup(path.Join(a.dir, rest))
		}
	}

	if strings.HasPrefix(spec, "node:") {
		return Result{Builtin: true, External: true, Package: strings.TrimPrefix(spec, "node:")}, true
	}
	name := PackageName(spec)
	if builtins[name] {
		return Result{Builtin: true, External: true, Package: name}, true
	}
	return Result{External: true, Package: name}, true
}

func (r *Resolver) lookup(target string) (Result, bool) {
	if target == "." || target == "" {
		target = "index"
	} else if r.files[target] {
		return Result{Path: target}, true
	}

	ext := path.Ext(target)
	if alts, ok := tsSources[ext]; ok {
		stem := strings.TrimSuffix(target, ext)
		for _, alt := range alts {
			if r.files[stem+alt] {
				return Result{Path: stem + alt}, true
			}
		}
	}

	for _, e := range candidateExtensions {
		if r.files[target+e] {
			return Result{Path: target + e}, true
		}
	}
	if target != "index" {
		for _, e := range candidateExtensions {
			if p := target + "/index" + e; r.files[p] {
				return Result{Path: p}, true
			}
		}
	}
	return Result{}, false
}

func isRelative(spec string) bool {
	return spec == "." || spec == ".." || strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../")
}

// PackageName returns the npm package a bare specifier refers to:
// "@scope/name/sub" -> "@scope/name", "lodash/fp" -> "lodash".
func PackageName(spec string) string {
	parts := strings.Split(spec, "/")
	if strings.HasPrefix(spec, "@") && len(parts) > 1 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}
