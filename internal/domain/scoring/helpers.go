package scoring

import (
	"path"
	"sort"
	"strings"

	"github.com/openkraft/excess/internal/domain"
)

// sortViolations orders violations by severity, then type, file and message,
// so two runs over the same tree produce identical lists.
func sortViolations(vs []domain.Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Message < b.Message
	})
}

// normalizeLine collapses runs of whitespace and trims the ends.
func normalizeLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizedContent returns the non-blank, whitespace-normalized lines of
// code joined with newlines.
func normalizedContent(code string) string {
	var b strings.Builder
	for _, line := range strings.Split(code, "\n") {
		n := normalizeLine(line)
		if n == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(n)
	}
	return b.String()
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c >= 0x80
}

// referencedIdentifiers collects every identifier in body that is not a
// property access. "obj.name" yields obj; "...rest" still yields rest.
func referencedIdentifiers(body string) map[string]bool {
	refs := make(map[string]bool)
	for i := 0; i < len(body); {
		if !isIdentByte(body[i]) {
			i++
			continue
		}
		start := i
		for i < len(body) && isIdentByte(body[i]) {
			i++
		}
		if body[start] >= '0' && body[start] <= '9' {
			continue
		}
		if isPropertyAccess(body, start) {
			continue
		}
		refs[body[start:i]] = true
	}
	return refs
}

func isPropertyAccess(s string, at int) bool {
	j := at - 1
	for j >= 0 && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
		j--
	}
	if j < 0 || s[j] != '.' {
		return false
	}
	return j == 0 || s[j-1] != '.'
}

// hasJSX reports whether a body looks like it contains JSX elements.
func hasJSX(body string) bool {
	return strings.Contains(body, "/>") || strings.Contains(body, "</")
}

// relTo returns p relative to dir, both root-relative and slash-separated.
func relTo(dir, p string) string {
	if dir == "" || dir == "." {
		return p
	}
	return strings.TrimPrefix(p, dir+"/")
}

// stem returns a file name up to its first dot: "index.test.ts" -> "index".
func stem(p string) string {
	base := path.Base(p)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// disjointSet is a union-find over the integers 0..n-1.
type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	d := &disjointSet{parent: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
	}
	return d
}

func (d *disjointSet) find(x int) int {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

// union joins the sets of a and b. The smaller root wins so roots are
// stable across runs.
func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	switch {
	case ra < rb:
		d.parent[rb] = ra
	case rb < ra:
		d.parent[ra] = rb
	}
}
