// Package inflect transforms field and entity names between the snake_case
// used in payloads and mapping files and the PascalCase used by Go accessor
// methods, and produces candidate singular forms for pluralized names.
package inflect

import (
	"strings"
	"unicode"
)

// Camelize transforms a snake_case name into PascalCase. Each
// underscore-delimited segment has its first letter uppercased; the rest of
// the segment is preserved verbatim, so segments that already carry interior
// capitals keep them: "first_name" becomes "FirstName", "parentID" becomes
// "ParentID". Empty segments are dropped.
func Camelize(name string) string {
	parts := splitName(name)
	var b strings.Builder
	for _, part := range parts {
		runes := []rune(part)
		b.WriteRune(unicode.ToUpper(runes[0]))
		for _, r := range runes[1:] {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// commonAcronyms maps lowercased name segments to their conventional Go
// spelling. Used by CamelizeAcronyms when probing for accessor methods
// written with uppercase acronyms.
var commonAcronyms = map[string]string{
	"id":   "ID",
	"ids":  "IDs",
	"url":  "URL",
	"uri":  "URI",
	"uuid": "UUID",
	"api":  "API",
	"http": "HTTP",
	"json": "JSON",
	"sql":  "SQL",
}

// CamelizeAcronyms is Camelize with conventional Go acronym casing:
// "parent_id" becomes "ParentID", "avatar_url" becomes "AvatarURL".
// Segments that are not known acronyms are camelized as in Camelize.
func CamelizeAcronyms(name string) string {
	parts := splitName(name)
	var b strings.Builder
	for _, part := range parts {
		if acronym, ok := commonAcronyms[strings.ToLower(part)]; ok {
			b.WriteString(acronym)
			continue
		}
		runes := []rune(part)
		b.WriteRune(unicode.ToUpper(runes[0]))
		for _, r := range runes[1:] {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Snake transforms a PascalCase or camelCase name into snake_case.
// Acronym runs stay together: "ParentID" becomes "parent_id",
// "HTTPStatus" becomes "http_status".
func Snake(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

func splitName(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
}
