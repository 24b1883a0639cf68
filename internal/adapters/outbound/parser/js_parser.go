package parser

import (
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/openkraft/excess/internal/domain"
)

// SourceExtensions are the file extensions the parser understands.
var SourceExtensions = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".mjs": true, ".cjs": true, ".mts": true, ".cts": true,
}

// IsSourceFile reports whether name has a JS/TS source extension.
func IsSourceFile(name string) bool {
	return SourceExtensions[path.Ext(name)]
}

// Options tunes extraction.
type Options struct {
	// MinLiteralLength drops shorter string literals.
	MinLiteralLength int
}

// JSParser extracts imports, exports, declarations and literals from
// JavaScript and TypeScript sources with lexical heuristics.
type JSParser struct {
	opts Options
}

func New(opts Options) *JSParser {
	if opts.MinLiteralLength <= 0 {
		opts.MinLiteralLength = domain.DefaultThresholds().MinLiteralLength
	}
	return &JSParser{opts: opts}
}

const ident = `[A-Za-z_$][\w$]*`

var (
	reImport      = regexp.MustCompile(`(?m)^[ \t]*import[ \t]+(type[ \t]+)?([^;'"` + "`" + `]*?)[ \t\r\n]*\bfrom[ \t]*['"]([^'"\n]+)['"][ \t]*;?`)
	reSideEffect  = regexp.MustCompile(`(?m)^[ \t]*import[ \t]*['"]([^'"\n]+)['"][ \t]*;?`)
	reDynamic     = regexp.MustCompile(`\bimport[ \t]*\([ \t\r\n]*['"]([^'"\n]+)['"][ \t\r\n]*\)`)
	reRequireBind = regexp.MustCompile(`\b(?:const|let|var|import)[ \t]+(\{[^}]*\}|` + ident + `)[ \t]*=[ \t]*require[ \t]*\([ \t]*['"]([^'"\n]+)['"][ \t]*\)((?:[ \t]*\.[ \t]*` + ident + `)?)[ \t]*;?`)
	reRequire     = regexp.MustCompile(`\brequire[ \t]*\([ \t]*['"]([^'"\n]+)['"][ \t]*\)`)
	reReExport    = regexp.MustCompile(`(?m)^[ \t]*export[ \t]+(type[ \t]+)?(\*(?:[ \t]+as[ \t]+(` + ident + `))?|\{[^}]*\})[ \t\r\n]*from[ \t]*['"]([^'"\n]+)['"][ \t]*;?`)

	reExportDecl    = regexp.MustCompile(`(?m)^[ \t]*export[ \t]+(?:declare[ \t]+)?(?:async[ \t]+)?(?:abstract[ \t]+)?(?:const[ \t]+enum|function[ \t]*\*?|class|const|let|var|interface|type|enum|namespace)[ \t]+(` + ident + `)`)
	reExportDefault = regexp.MustCompile(`(?m)^[ \t]*export[ \t]+default\b`)
	reExportList    = regexp.MustCompile(`(?m)^[ \t]*export[ \t]+(?:type[ \t]+)?\{([^}]*)\}`)
	reCJSExport     = regexp.MustCompile(`(?m)^[ \t]*(?:module\.)?exports\.(` + ident + `)[ \t]*=[^=]`)
	reCJSModule     = regexp.MustCompile(`(?m)^[ \t]*module\.exports[ \t]*=[ \t]*`)
	reObjectKey     = regexp.MustCompile(`^(?:async[ \t]+)?\*?[ \t]*(` + ident + `)`)

	reFuncDecl  = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:default[ \t]+)?(?:async[ \t]+)?function[ \t]*\*?[ \t]*(` + ident + `)[ \t]*(?:<[^>{]*>)?[ \t]*\(`)
	reConstFunc = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:const|let|var)[ \t]+(` + ident + `)[ \t]*(?::[^=\n]+)?=[ \t]*(?:async[ \t]*)?(?:<[^>\n]*>[ \t]*)?(\(|` + ident + `[ \t]*=>|function\b)`)
	reClass     = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:default[ \t]+)?(?:declare[ \t]+)?(?:abstract[ \t]+)?class[ \t]+(` + ident + `)`)
	reInterface = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:declare[ \t]+)?interface[ \t]+(` + ident + `)`)
	reTypeAlias = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:declare[ \t]+)?type[ \t]+(` + ident + `)[ \t]*(?:<[^>\n]*>)?[ \t]*=`)
	reEnum      = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:declare[ \t]+)?(?:const[ \t]+)?enum[ \t]+(` + ident + `)`)
)

// ParseFile builds the SourceFile for one file. relPath must be
// slash-separated and relative to the audit root. Extraction never fails;
// unrecognised syntax is simply not reported.
func (p *JSParser) ParseFile(relPath string, src []byte) *domain.SourceFile {
	text := string(src)
	lx := lex(text)

	f := &domain.SourceFile{
		Path:         relPath,
		Lines:        countLines(text),
		Text:         text,
		Code:         lx.code,
		HasModuleDoc: hasLeadingComment(text),
		IsTest:       domain.IsTestPath(relPath),
	}

	x := newExtractor(lx.code, lx.body)
	x.extractImports()
	x.extractExports()
	ext := path.Ext(relPath)
	f.Declarations = x.extractDeclarations(ext == ".jsx" || ext == ".tsx")
	f.Imports = x.imports
	f.Exports = x.exports
	f.Body = string(x.blanked)

	for _, l := range lx.literals {
		if x.specs[l.offset] || len(l.value) < p.opts.MinLiteralLength {
			continue
		}
		f.Literals = append(f.Literals, domain.Literal{Value: l.value, Line: l.line})
	}
	return f
}

type extractor struct {
	code    string
	body    string
	blanked []byte
	nl      []int
	// specs holds offsets of module specifier strings so they are not
	// reported as literals.
	specs   map[int]bool
	imports []domain.ImportRef
	exports []string
	seen    map[string]bool
}

func newExtractor(code, body string) *extractor {
	x := &extractor{
		code:    code,
		body:    body,
		blanked: []byte(body),
		specs:   make(map[int]bool),
		seen:    make(map[string]bool),
	}
	for i := 0; i < len(code); i++ {
		if code[i] == '\n' {
			x.nl = append(x.nl, i)
		}
	}
	return x
}

func (x *extractor) lineAt(off int) int {
	return sort.SearchInts(x.nl, off) + 1
}

// live reports whether the match starting at off is real code rather than
// text inside a string, template or regex literal.
func (x *extractor) live(off int) bool {
	for off < len(x.code) && (x.code[off] == ' ' || x.code[off] == '\t') {
		off++
	}
	return off < len(x.body) && x.body[off] != ' '
}

func (x *extractor) blank(start, end int) {
	for i := start; i < end; i++ {
		if x.blanked[i] != '\n' {
			x.blanked[i] = ' '
		}
	}
}

func (x *extractor) addImport(ref domain.ImportRef, specOff int) {
	x.specs[specOff] = true
	x.imports = append(x.imports, ref)
}

func (x *extractor) addExport(name string) {
	if name == "" || x.seen[name] {
		return
	}
	x.seen[name] = true
	x.exports = append(x.exports, name)
}

func (x *extractor) extractImports() {
	for _, m := range reImport.FindAllStringSubmatchIndex(x.code, -1) {
		if !x.live(m[0]) {
			continue
		}
		ref := domain.ImportRef{
			Specifier: x.code[m[6]:m[7]],
			Kind:      domain.ImportES,
			TypeOnly:  m[2] >= 0,
			Line:      x.lineAt(m[0]),
		}
		ref.Default, ref.Namespace, ref.Named = parseImportClause(x.code[m[4]:m[5]])
		x.addImport(ref, m[6])
		x.blank(m[0], m[1])
	}

	for _, m := range reSideEffect.FindAllStringSubmatchIndex(x.code, -1) {
		if !x.live(m[0]) || x.specs[m[2]] {
			continue
		}
		x.addImport(domain.ImportRef{
			Specifier: x.code[m[2]:m[3]],
			Kind:      domain.ImportSideEffect,
			Line:      x.lineAt(m[0]),
		}, m[2])
		x.blank(m[0], m[1])
	}

	for _, m := range reReExport.FindAllStringSubmatchIndex(x.code, -1) {
		if !x.live(m[0]) {
			continue
		}
		clause := x.code[m[4]:m[5]]
		ref := domain.ImportRef{
			Specifier: x.code[m[8]:m[9]],
			Kind:      domain.ImportReExport,
			TypeOnly:  m[2] >= 0,
			Line:      x.lineAt(m[0]),
		}
		if strings.HasPrefix(clause, "*") {
			ref.ExportAll = true
			if m[6] >= 0 {
				ref.Namespace = x.code[m[6]:m[7]]
				x.addExport(ref.Namespace)
			}
		} else {
			ref.Named = parseNamedList(strings.Trim(clause, "{}"), " as ")
			for _, n := range ref.Named {
				x.addExport(n.Local)
			}
		}
		x.addImport(ref, m[8])
		x.blank(m[0], m[1])
	}

	for _, m := range reRequireBind.FindAllStringSubmatchIndex(x.code, -1) {
		if !x.live(m[0]) {
			continue
		}
		binding := x.code[m[2]:m[3]]
		ref := domain.ImportRef{
			Specifier: x.code[m[4]:m[5]],
			Kind:      domain.ImportRequire,
			Line:      x.lineAt(m[0]),
		}
		member := strings.TrimLeft(x.code[m[6]:m[7]], " \t.")
		switch {
		case strings.HasPrefix(binding, "{"):
			ref.Named = parseNamedList(strings.Trim(binding, "{}"), ":")
		case member != "":
			ref.Named = []domain.ImportedName{{Imported: member, Local: binding}}
		default:
			ref.Default = binding
		}
		x.addImport(ref, m[4])
		x.blank(m[0], m[1])
	}

	for _, m := range reRequire.FindAllStringSubmatchIndex(x.code, -1) {
		if x.specs[m[2]] || !x.live(m[0]) || precededByDot(x.code, m[0]) {
			continue
		}
		x.addImport(domain.ImportRef{
			Specifier: x.code[m[2]:m[3]],
			Kind:      domain.ImportRequire,
			Line:      x.lineAt(m[0]),
		}, m[2])
	}

	for _, m := range reDynamic.FindAllStringSubmatchIndex(x.code, -1) {
		if x.specs[m[2]] || !x.live(m[0]) || precededByDot(x.code, m[0]) {
			continue
		}
		x.addImport(domain.ImportRef{
			Specifier: x.code[m[2]:m[3]],
			Kind:      domain.ImportDynamic,
			Line:      x.lineAt(m[0]),
		}, m[2])
	}

	sort.SliceStable(x.imports, func(i, j int) bool {
		return x.imports[i].Line < x.imports[j].Line
	})
}

func (x *extractor) extractExports() {
	for _, m := range reExportDecl.FindAllStringSubmatchIndex(x.code, -1) {
		if x.live(m[0]) {
			x.addExport(x.code[m[2]:m[3]])
		}
	}
	for _, m := range reExportDefault.FindAllStringIndex(x.code, -1) {
		if x.live(m[0]) {
			x.addExport("default")
		}
	}
	for _, m := range reExportList.FindAllStringSubmatchIndex(x.code, -1) {
		if !x.live(m[0]) || followedByFrom(x.code, m[1]) {
			continue
		}
		for _, n := range parseNamedList(x.code[m[2]:m[3]], " as ") {
			x.addExport(n.Local)
		}
	}
	for _, m := range reCJSExport.FindAllStringSubmatchIndex(x.code, -1) {
		if x.live(m[0]) {
			x.addExport(x.code[m[2]:m[3]])
		}
	}
	for _, m := range reCJSModule.FindAllStringIndex(x.code, -1) {
		if !x.live(m[0]) {
			continue
		}
		open := m[1]
		if open < len(x.body) && x.body[open] == '{' {
			if end := matchPair(x.body, open, '{', '}'); end > open {
				for _, key := range objectKeys(x.body[open+1 : end]) {
					x.addExport(key)
				}
				continue
			}
		}
		x.addExport("default")
	}
}

func (x *extractor) extractDeclarations(jsx bool) []domain.Declaration {
	var decls []domain.Declaration
	seen := make(map[string]bool)
	add := func(d domain.Declaration) {
		key := d.Name + "@" + strconv.Itoa(d.Line)
		if seen[key] {
			return
		}
		seen[key] = true
		decls = append(decls, d)
	}

	for _, m := range reFuncDecl.FindAllStringSubmatchIndex(x.code, -1) {
		if !x.live(m[0]) {
			continue
		}
		name := x.code[m[2]:m[3]]
		paren := m[1] - 1
		start, end := x.functionBody(paren)
		add(x.declaration(name, domain.DeclFunction, m[0], start, end, jsx))
	}

	for _, m := range reConstFunc.FindAllStringSubmatchIndex(x.code, -1) {
		if !x.live(m[0]) {
			continue
		}
		name := x.code[m[2]:m[3]]
		head := x.code[m[4]:m[5]]
		var start, end int
		switch {
		case head == "(":
			closeParen := matchPair(x.body, m[4], '(', ')')
			if closeParen < 0 {
				continue
			}
			arrow := x.arrowAfter(closeParen + 1)
			if arrow < 0 {
				continue
			}
			start, end = x.arrowBody(arrow + 2)
		case strings.HasPrefix(head, "function"):
			open := strings.IndexByte(x.body[m[5]:], '(')
			if open < 0 {
				continue
			}
			start, end = x.functionBody(m[5] + open)
		default:
			start, end = x.arrowBody(m[5])
		}
		add(x.declaration(name, domain.DeclFunction, m[0], start, end, jsx))
	}

	braced := []struct {
		re   *regexp.Regexp
		kind string
	}{
		{reClass, domain.DeclClass},
		{reInterface, domain.DeclInterface},
		{reEnum, domain.DeclEnum},
	}
	for _, b := range braced {
		for _, m := range b.re.FindAllStringSubmatchIndex(x.code, -1) {
			if !x.live(m[0]) {
				continue
			}
			start, end := -1, -1
			if open := strings.IndexByte(x.body[m[1]:], '{'); open >= 0 {
				start = m[1] + open
				end = matchPair(x.body, start, '{', '}')
			}
			add(x.declaration(x.code[m[2]:m[3]], b.kind, m[0], start, end, false))
		}
	}

	for _, m := range reTypeAlias.FindAllStringSubmatchIndex(x.code, -1) {
		if x.live(m[0]) {
			add(x.declaration(x.code[m[2]:m[3]], domain.DeclType, m[0], -1, -1, false))
		}
	}

	sort.SliceStable(decls, func(i, j int) bool {
		if decls[i].Line != decls[j].Line {
			return decls[i].Line < decls[j].Line
		}
		return decls[i].Name < decls[j].Name
	})
	return decls
}

func (x *extractor) declaration(name, kind string, at, start, end int, jsx bool) domain.Declaration {
	d := domain.Declaration{Name: name, Kind: kind, Line: x.lineAt(at)}
	d.EndLine = d.Line
	if start >= 0 && end > start {
		d.Body = x.code[start : end+1]
		d.EndLine = x.lineAt(end)
	}
	if jsx && kind == domain.DeclFunction && isPascal(name) {
		d.Component = true
	}
	return d
}

// functionBody returns the brace span of the body that follows the
// parameter list opening at paren.
func (x *extractor) functionBody(paren int) (int, int) {
	closeParen := matchPair(x.body, paren, '(', ')')
	if closeParen < 0 {
		return -1, -1
	}
	open := strings.IndexByte(x.body[closeParen:], '{')
	if open < 0 {
		return -1, -1
	}
	open += closeParen
	return open, matchPair(x.body, open, '{', '}')
}

// arrowAfter returns the offset of "=>" following a parameter list, allowing
// a return type annotation on the same line.
func (x *extractor) arrowAfter(from int) int {
	i := skipSpace(x.body, from)
	if strings.HasPrefix(x.body[i:], "=>") {
		return i
	}
	if i < len(x.body) && x.body[i] == ':' {
		eol := strings.IndexByte(x.body[i:], '\n')
		if eol < 0 {
			eol = len(x.body) - i
		}
		if k := strings.Index(x.body[i:i+eol], "=>"); k >= 0 {
			return i + k
		}
	}
	return -1
}

// arrowBody returns the span of an arrow function body starting right after
// its "=>". Expression bodies end at the line break unless parenthesised.
func (x *extractor) arrowBody(from int) (int, int) {
	i := skipSpace(x.body, from)
	if i >= len(x.body) {
		return -1, -1
	}
	switch x.body[i] {
	case '{':
		return i, matchPair(x.body, i, '{', '}')
	case '(':
		return i, matchPair(x.body, i, '(', ')')
	}
	eol := strings.IndexByte(x.body[i:], '\n')
	if eol < 0 {
		return i, len(x.body) - 1
	}
	return i, i + eol - 1
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\r' || s[i] == '\n') {
		i++
	}
	return i
}

// matchPair returns the offset of the bracket closing the one at open, or
// -1 when unbalanced. s must be masked so strings cannot unbalance it.
func matchPair(s string, open int, l, r byte) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case l:
			depth++
		case r:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func precededByDot(s string, at int) bool {
	for i := at - 1; i >= 0; i-- {
		switch s[i] {
		case ' ', '\t':
			continue
		case '.':
			return true
		}
		return false
	}
	return false
}

func followedByFrom(s string, at int) bool {
	i := skipSpace(s, at)
	return strings.HasPrefix(s[i:], "from") && (i+4 >= len(s) || !isIdentByte(s[i+4]))
}

// parseImportClause splits `Default, * as ns` / `Default, { a, b as c }`.
func parseImportClause(clause string) (def, ns string, named []domain.ImportedName) {
	clause = strings.TrimSpace(clause)
	if i := strings.IndexByte(clause, '{'); i >= 0 {
		j := strings.LastIndexByte(clause, '}')
		if j < i {
			j = len(clause)
			named = parseNamedList(clause[i+1:], " as ")
		} else {
			named = parseNamedList(clause[i+1:j], " as ")
			j++
		}
		clause = clause[:i] + clause[j:]
	}
	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
		case strings.HasPrefix(part, "*"):
			fields := strings.Fields(strings.TrimPrefix(part, "*"))
			if len(fields) == 2 && fields[0] == "as" {
				ns = fields[1]
			}
		default:
			def = part
		}
	}
	return def, ns, named
}

// parseNamedList parses `a, b as c, type d` (sep " as ") or a destructuring
// pattern `a, b: c` (sep ":").
func parseNamedList(list, sep string) []domain.ImportedName {
	var out []domain.ImportedName
	for _, item := range strings.Split(list, ",") {
		item = strings.Join(strings.Fields(item), " ")
		item = strings.TrimPrefix(item, "type ")
		if item == "" || strings.HasPrefix(item, "...") {
			continue
		}
		imported, local := item, item
		if k := strings.Index(item, sep); k >= 0 {
			imported = strings.TrimSpace(item[:k])
			local = strings.TrimSpace(item[k+len(sep):])
		}
		// destructuring defaults: `a = 1`
		if k := strings.IndexByte(local, '='); k >= 0 {
			local = strings.TrimSpace(local[:k])
		}
		if !isIdentifier(local) {
			continue
		}
		if !isIdentifier(imported) {
			imported = local
		}
		out = append(out, domain.ImportedName{Imported: imported, Local: local})
	}
	return out
}

// objectKeys lists the top-level keys of an object literal body.
func objectKeys(obj string) []string {
	var keys []string
	depth, start := 0, 0
	flush := func(end int) {
		entry := strings.TrimSpace(obj[start:end])
		if entry == "" || strings.HasPrefix(entry, "...") {
			return
		}
		if m := reObjectKey.FindStringSubmatch(entry); m != nil {
			keys = append(keys, m[1])
		}
	}
	for i := 0; i < len(obj); i++ {
		switch obj[i] {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			depth--
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(obj))
	return keys
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isIdentByte(c) || (i == 0 && c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

func isPascal(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}
