package gen

import (
	"fmt"
	"strings"

	"github.com/syssam/tablegen"
)

// Identifier holds the two naming forms derived from a raw schema name.
type Identifier struct {
	// Upper is the upper-case initial form, used for exported identifiers.
	Upper string
	// Lower is the lower-case initial form, used for parameters and locals.
	Lower string
}

// nameClass is the naming convention a raw name was written in.
type nameClass uint8

const (
	// ordinaryMixed is camelCase or PascalCase: lastName, EmployeeId.
	ordinaryMixed nameClass = iota
	// shoutingCase has no lower-case letters: EMPLOYEE_ID, ID.
	shoutingCase
	// acronymPrefixed starts with two upper-case letters and has lower-case
	// letters later on: HTTPStatusCode.
	acronymPrefixed
)

func (c nameClass) String() string {
	switch c {
	case shoutingCase:
		return "shouting"
	case acronymPrefixed:
		return "acronym"
	default:
		return "mixed"
	}
}

// DeriveIdentifier converts a raw table or column name into its upper and
// lower identifier forms.
//
//	EMPLOYEE_ID    -> {EmployeeID, employeeID}
//	lastName       -> {LastName, lastName}
//	HTTPStatusCode -> {HTTPStatusCode, httpstatusCode}
//	id, ID         -> {ID, id}
//
// A name that is empty, starts with anything but an ASCII letter or contains
// characters other than ASCII letters, digits and underscores is returned
// verbatim in both forms together with a *tablegen.NameError.
func DeriveIdentifier(raw string) (Identifier, error) {
	if reason := invalidName(raw); reason != "" {
		return Identifier{Upper: raw, Lower: raw}, &tablegen.NameError{Raw: raw, Reason: reason}
	}
	if strings.ToLower(raw) == "id" {
		return Identifier{Upper: "ID", Lower: "id"}, nil
	}
	switch classify(raw) {
	case shoutingCase:
		folded := foldShouting(raw)
		return Identifier{Upper: upperFirst(folded), Lower: folded}, nil
	case acronymPrefixed:
		return Identifier{Upper: raw, Lower: lowerFirst(foldAcronym(raw))}, nil
	default:
		return Identifier{Upper: upperFirst(raw), Lower: lowerFirst(raw)}, nil
	}
}

// invalidName returns the reason raw is rejected, or "" if it is valid.
func invalidName(raw string) string {
	if raw == "" {
		return "name is empty"
	}
	if !isLetter(raw[0]) {
		return "name must start with an ASCII letter"
	}
	for i := 1; i < len(raw); i++ {
		if c := raw[i]; !isLetter(c) && !isDigit(c) && c != '_' {
			return fmt.Sprintf("invalid character %q at offset %d", rune(c), i)
		}
	}
	return ""
}

// classify expects a validated name.
func classify(raw string) nameClass {
	if strings.IndexFunc(raw, func(r rune) bool { return r >= 'a' && r <= 'z' }) < 0 {
		return shoutingCase
	}
	if len(raw) > 1 && isUpper(raw[0]) && isUpper(raw[1]) {
		return acronymPrefixed
	}
	return ordinaryMixed
}

// foldShouting turns SHOUTING_CASE into camelCase. The character after each
// run of underscores is upper-cased, a trailing underscore is dropped and a
// trailing "Id" becomes "ID".
func foldShouting(raw string) string {
	var (
		b     strings.Builder
		upper bool
	)
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c == '_':
			upper = true
		case upper:
			b.WriteByte(toUpper(c))
			upper = false
		default:
			b.WriteByte(toLower(c))
		}
	}
	s := b.String()
	if strings.HasSuffix(s, "Id") {
		s = s[:len(s)-1] + "D"
	}
	return s
}

// foldAcronym lower-cases raw from index 1 up to, not including, the first
// lower-case letter: HTTPStatus -> Httpstatus, URLs -> Urls.
func foldAcronym(raw string) string {
	k := strings.IndexFunc(raw, func(r rune) bool { return r >= 'a' && r <= 'z' })
	if k < 2 {
		return raw
	}
	b := []byte(raw)
	for i := 1; i < k; i++ {
		b[i] = toLower(b[i])
	}
	return string(b)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return string(toUpper(s[0])) + s[1:]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return string(toLower(s[0])) + s[1:]
}

func isLetter(c byte) bool { return isUpper(c) || c >= 'a' && c <= 'z' }
func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

func toUpper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func toLower(c byte) byte {
	if isUpper(c) {
		return c - 'A' + 'a'
	}
	return c
}
