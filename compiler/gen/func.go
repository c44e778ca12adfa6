package gen

import (
	"go/token"
	"strings"
	"text/template"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Funcs are the predefined template functions used by the mock templates.
var Funcs = template.FuncMap{
	"lower":     strings.ToLower,
	"upper":     strings.ToUpper,
	"snake":     snake,
	"receiver":  receiver,
	"plural":    plural,
	"title":     title,
	"escape":    escapeKeyword,
	"join":      strings.Join,
	"hasPrefix": strings.HasPrefix,
}

var rules = ruleset()

// reserved holds the names the generated code uses for itself. Receivers
// and parameters must not shadow them.
var reserved = map[string]struct{}{
	"client": {}, "context": {}, "ctx": {}, "err": {}, "errors": {},
	"fmt": {}, "json": {}, "q": {}, "rows": {}, "sql": {}, "tablegen": {},
	"time": {}, "uuid": {}, "res": {}, "n": {}, "v": {}, "limit": {},
	"offset": {}, "next": {}, "fn": {}, "m": {}, "key": {}, "r": {},
	"c": {}, "i": {},
}

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	for _, w := range []string{"ID", "UUID", "URL", "HTTP", "SQL", "JSON", "API"} {
		rules.AddAcronym(w)
	}
	return rules
}

// plural returns the plural form of a type name. Names that have no
// distinct plural get a "Slice" suffix.
func plural(name string) string {
	p := rules.Pluralize(name)
	if p == name {
		p += "Slice"
	}
	return p
}

// snake converts the given struct or field name into a snake_case.
//
//	Username => username
//	FullName => full_name
//	HTTPCode => http_code
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is uppercase,
		// and previous is lowercase (cases like: "UserInfo"), or next letter is also
		// a lowercase and previous letter is not "_".
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// receiver returns the receiver name of the given type.
//
//	[]T       => t
//	[1]T      => t
//	User      => u
//	UserQuery => uq
func receiver(s string) string {
	s = strings.Trim(s, "[]*&0123456789")
	var b strings.Builder
	for _, w := range strings.Split(snake(s), "_") {
		if w != "" {
			b.WriteByte(w[0])
		}
	}
	return escapeKeyword(b.String())
}

// title returns a human readable label of an identifier, used in doc comments.
//
//	employee_addresses => Employee Addresses
//	HTTPStatus         => Http Status
func title(s string) string {
	words := strings.FieldsFunc(snake(s), func(r rune) bool { return r == '_' })
	// A Caser keeps state and is not shared between generator workers.
	return cases.Title(language.English).String(strings.Join(words, " "))
}

// escapeKeyword appends an underscore to Go keywords and to names the
// generated code uses for itself.
func escapeKeyword(s string) string {
	if _, ok := reserved[s]; ok || token.IsKeyword(s) {
		return s + "_"
	}
	return s
}
