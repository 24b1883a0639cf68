package parser

import "strings"

const (
	stNormal = iota
	stLineComment
	stBlockComment
	stString
	stTemplate
	stRegex
)

// rawLiteral is a string literal found by the lexer. Offset points at the
// first byte of the literal's content.
type rawLiteral struct {
	value  string
	line   int
	offset int
}

// lexed is the masked view of one source file. code and body have exactly
// the same length and newline positions as the input.
type lexed struct {
	code     string // comments blanked
	body     string // comments blanked, string/template/regex contents blanked
	literals []rawLiteral
}

// regexKeywords may precede a regex literal.
var regexKeywords = map[string]bool{
	"return": true, "typeof": true, "case": true, "do": true, "else": true,
	"in": true, "of": true, "new": true, "delete": true, "void": true,
	"throw": true, "instanceof": true, "yield": true, "await": true,
}

type templateLit struct {
	start, line int
	dirty       bool
}

// lex masks comments and string contents in one pass. Template literal
// substitutions stay code; regex literals are detected from the previous
// significant token.
func lex(src string) lexed {
	n := len(src)
	code := []byte(src)
	body := []byte(src)
	var lits []rawLiteral

	blankBody := func(i int) {
		if src[i] != '\n' {
			body[i] = ' '
		}
	}
	blankBoth := func(i int) {
		if src[i] != '\n' {
			body[i] = ' '
			code[i] = ' '
		}
	}

	state := stNormal
	if strings.HasPrefix(src, "#!") {
		state = stLineComment
	}
	line := 1
	var (
		quote     byte
		litStart  int
		litLine   int
		depth     int
		lastSig   byte
		lastWord  string
		wordStart = -1
		inClass   bool
		exprStack []int
		tmplStack []templateLit
	)

	for i := 0; i < n; {
		c := src[i]
		var next byte
		if i+1 < n {
			next = src[i+1]
		}

		switch state {
		case stNormal:
			if isIdentByte(c) {
				if wordStart < 0 {
					wordStart = i
				}
				i++
				continue
			}
			if wordStart >= 0 {
				lastWord = src[wordStart:i]
				lastSig = src[i-1]
				wordStart = -1
			}

			switch {
			case c == '/' && next == '/':
				blankBoth(i)
				blankBoth(i + 1)
				state = stLineComment
				i += 2
				continue
			case c == '/' && next == '*':
				blankBoth(i)
				blankBoth(i + 1)
				state = stBlockComment
				i += 2
				continue
			case c == '/':
				if regexAllowed(lastSig, lastWord) {
					state = stRegex
					inClass = false
				} else {
					lastSig, lastWord = c, ""
				}
			case c == '\'' || c == '"':
				state = stString
				quote = c
				litStart = i + 1
				litLine = line
			case c == '`':
				state = stTemplate
				tmplStack = append(tmplStack, templateLit{start: i + 1, line: line})
			case c == '{':
				depth++
				lastSig, lastWord = c, ""
			case c == '}':
				if k := len(exprStack); k > 0 && exprStack[k-1] == depth {
					exprStack = exprStack[:k-1]
					state = stTemplate
				} else {
					depth--
					lastSig, lastWord = c, ""
				}
			case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			default:
				lastSig, lastWord = c, ""
			}

		case stLineComment:
			if c == '\n' {
				state = stNormal
			} else {
				blankBoth(i)
			}

		case stBlockComment:
			blankBoth(i)
			if c == '*' && next == '/' {
				blankBoth(i + 1)
				state = stNormal
				i += 2
				continue
			}

		case stString:
			switch c {
			case '\\':
				blankBody(i)
				if i+1 < n {
					blankBody(i + 1)
					if next == '\n' {
						line++
					}
				}
				i += 2
				continue
			case quote:
				lits = append(lits, rawLiteral{value: src[litStart:i], line: litLine, offset: litStart})
				state = stNormal
				lastSig, lastWord = c, ""
			case '\n':
				// unterminated string
				state = stNormal
			default:
				blankBody(i)
			}

		case stTemplate:
			switch {
			case c == '\\':
				blankBody(i)
				if i+1 < n {
					blankBody(i + 1)
					if next == '\n' {
						line++
					}
				}
				i += 2
				continue
			case c == '`':
				k := len(tmplStack) - 1
				t := tmplStack[k]
				tmplStack = tmplStack[:k]
				if !t.dirty {
					lits = append(lits, rawLiteral{value: src[t.start:i], line: t.line, offset: t.start})
				}
				state = stNormal
				lastSig, lastWord = c, ""
			case c == '$' && next == '{':
				tmplStack[len(tmplStack)-1].dirty = true
				exprStack = append(exprStack, depth)
				state = stNormal
				lastSig, lastWord = '{', ""
				i += 2
				continue
			default:
				blankBody(i)
			}

		case stRegex:
			switch {
			case c == '\\':
				blankBody(i)
				if i+1 < n {
					blankBody(i + 1)
					if next == '\n' {
						line++
					}
				}
				i += 2
				continue
			case c == '\n':
				state = stNormal
			case c == '[':
				inClass = true
				blankBody(i)
			case c == ']':
				inClass = false
				blankBody(i)
			case c == '/' && !inClass:
				state = stNormal
				lastSig, lastWord = ')', ""
			default:
				blankBody(i)
			}
		}

		if c == '\n' {
			line++
		}
		i++
	}

	return lexed{code: string(code), body: string(body), literals: lits}
}

func regexAllowed(lastSig byte, lastWord string) bool {
	if lastWord != "" {
		return regexKeywords[lastWord]
	}
	if lastSig == 0 {
		return true
	}
	return strings.IndexByte("(,=:[!&|?{};+-*%~^", lastSig) >= 0
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') || c >= 0x80
}

// hasLeadingComment reports whether the first token after an optional BOM
// and shebang line is a comment.
func hasLeadingComment(src string) bool {
	s := strings.TrimPrefix(src, "\ufeff")
	if strings.HasPrefix(s, "#!") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			return false
		}
	}
	s = strings.TrimLeft(s, " \t\r\n")
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, "/*")
}

// countLines counts lines the way editors do: a trailing newline does not
// start a new line.
func countLines(src string) int {
	if src == "" {
		return 0
	}
	n := strings.Count(src, "\n")
	if !strings.HasSuffix(src, "\n") {
		n++
	}
	return n
}
