package inflect

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

// ambiguousSingulars lists plurals with more than one defensible singular
// form, ordered most likely first. Keys and values are lowercase; the lookup
// matches the final word of a PascalCase name and restores its casing.
var ambiguousSingulars = map[string][]string{
	"axes":     {"axis", "axe", "ax"},
	"bases":    {"base", "basis"},
	"leaves":   {"leaf", "leave"},
	"data":     {"datum", "data"},
	"media":    {"medium", "media"},
	"criteria": {"criterion", "criteria"},
	"dice":     {"die", "dice"},
}

// SingularCandidates returns the candidate singular forms of a plural word,
// ordered most likely first. Ambiguous plurals yield several candidates
// ("Axes" yields "Axis", "Axe", "Ax"); regular plurals yield one; a word
// that cannot be inflected yields itself. Multi-word PascalCase names are
// singularized on their final word ("BookTags" yields "BookTag").
func SingularCandidates(word string) []string {
	if word == "" {
		return nil
	}
	prefix, last := splitLastWord(word)
	if forms, ok := ambiguousSingulars[strings.ToLower(last)]; ok {
		out := make([]string, len(forms))
		for i, f := range forms {
			out[i] = prefix + matchCase(f, last)
		}
		return out
	}
	s := inflection.Singular(word)
	if s == "" || s == word {
		return []string{word}
	}
	return []string{s}
}

// splitLastWord splits a PascalCase name before its final capitalized word.
// Names with no interior capital split into an empty prefix and themselves.
func splitLastWord(word string) (prefix, last string) {
	runes := []rune(word)
	for i := len(runes) - 1; i > 0; i-- {
		if unicode.IsUpper(runes[i]) {
			return string(runes[:i]), string(runes[i:])
		}
	}
	return "", word
}

// matchCase uppercases the first rune of s when model starts uppercase.
func matchCase(s, model string) string {
	if s == "" || model == "" {
		return s
	}
	if unicode.IsUpper([]rune(model)[0]) {
		runes := []rune(s)
		runes[0] = unicode.ToUpper(runes[0])
		return string(runes)
	}
	return s
}
