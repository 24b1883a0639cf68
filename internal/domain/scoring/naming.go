package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/camelcase"

	"github.com/openkraft/excess/internal/domain"
)

// words splits an identifier into its camel-case and underscore parts,
// ignoring leading/trailing underscores and dollar signs used as privacy
// markers.
func words(name string) []string {
	return camelcase.Split(strings.Trim(name, "_$"))
}

// IsLowerCamel reports whether name is lowerCamelCase: parseInput, toHTML.
func IsLowerCamel(name string) bool {
	ws := words(name)
	if len(ws) == 0 || !startsWith(ws[0], unicode.IsLower) {
		return false
	}
	for _, w := range ws {
		if !isAlnum(w) {
			return false
		}
	}
	return true
}

// IsPascalCase reports whether name is PascalCase: UserStore, HTTPClient.
func IsPascalCase(name string) bool {
	ws := words(name)
	if len(ws) == 0 || !startsWith(ws[0], unicode.IsUpper) {
		return false
	}
	for _, w := range ws {
		if !isAlnum(w) {
			return false
		}
	}
	return true
}

// IsSnakeCase reports whether name is lower snake_case: parse_input.
func IsSnakeCase(name string) bool {
	ws := words(name)
	if len(ws) == 0 || !startsWith(ws[0], unicode.IsLower) {
		return false
	}
	for _, w := range ws {
		if strings.Trim(w, "_") == "" {
			continue
		}
		for _, r := range w {
			if !unicode.IsLower(r) && !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

// NameConforms applies the naming rules for one declaration: functions are
// lowerCamel or snake_case (PascalCase components are allowed), types are
// PascalCase.
func NameConforms(d domain.Declaration) bool {
	if d.Kind == domain.DeclFunction {
		return d.Component || IsLowerCamel(d.Name) || IsSnakeCase(d.Name)
	}
	return IsPascalCase(d.Name)
}

// NamingConsistency returns the share of conforming declarations and the
// names that do not conform.
func NamingConsistency(decls []domain.Declaration) (float64, []string) {
	if len(decls) == 0 {
		return 1, nil
	}
	var offenders []string
	for _, d := range decls {
		if !NameConforms(d) {
			offenders = append(offenders, d.Name)
		}
	}
	return float64(len(decls)-len(offenders)) / float64(len(decls)), offenders
}

func startsWith(w string, pred func(rune) bool) bool {
	r, size := utf8.DecodeRuneInString(w)
	return size > 0 && pred(r)
}

func isAlnum(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
