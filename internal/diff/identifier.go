package diff

import (
	"strings"
	"unicode"
)

// MaxIdentifierLength caps identifiers, in characters.
const MaxIdentifierLength = 100

// Identify derives the cross-version key of a section from its first line.
// Punctuation, case and whitespace runs do not affect the key; wording does.
// A first line made only of punctuation yields an empty identifier.
func Identify(section string) string {
	first, _, _ := strings.Cut(section, "\n")
	id := collapseSpace(strings.Map(keepWordRune, strings.ToLower(first)))
	if r := []rune(id); len(r) > MaxIdentifierLength {
		id = string(r[:MaxIdentifierLength])
	}
	return id
}

// keepWordRune keeps letters, digits, underscores and any Unicode space.
func keepWordRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '_' || unicode.IsSpace(r) {
		return r
	}
	return -1
}

// collapseSpace trims s and replaces every run of Unicode whitespace with
// a single ASCII space.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
