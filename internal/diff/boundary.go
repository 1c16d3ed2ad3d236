package diff

import (
	"regexp"
	"strings"
)

// Boundary decides whether a line starts a new section.
type Boundary interface {
	Name() string
	Match(line string) bool
}

type patternBoundary struct {
	name string
	re   *regexp.Regexp
}

func (b patternBoundary) Name() string { return b.name }

func (b patternBoundary) Match(line string) bool {
	return b.re.MatchString(strings.TrimSpace(line))
}

func newBoundary(name, pattern string) Boundary {
	return patternBoundary{name: name, re: regexp.MustCompile(pattern)}
}

var (
	// DecimalHeading matches "2.1 Fees" and "3. Scope".
	DecimalHeading = newBoundary("decimal", `^\d+\.\d*\s+[A-Z]`)
	// TaggedHeading matches "[SECTION 4]" and "ARTICLE IX".
	TaggedHeading = newBoundary("tagged", `^(\[SECTION|ARTICLE)`)
	// UppercaseHeading matches a line of capitals and spaces only.
	UppercaseHeading = newBoundary("uppercase", `^[A-Z][A-Z ]+$`)
	// RomanHeading matches "IV. Penalties".
	RomanHeading = newBoundary("roman", `^[IVX]+\.(\s|$)`)
	// LetterEnumerator matches "(a) Eligibility".
	LetterEnumerator = newBoundary("letter", `^\([A-Za-z]\)(\s|$)`)
	// MarkdownHeading matches ATX headings such as "## Fees".
	MarkdownHeading = newBoundary("markdown", `^#{1,6}\s+\S`)
)

// DefaultBoundaries is the heading heuristic set for plain text, in the
// order they are tried.
func DefaultBoundaries() []Boundary {
	return []Boundary{DecimalHeading, TaggedHeading, UppercaseHeading, RomanHeading, LetterEnumerator}
}

// StructuredBoundaries adds ATX headings for documents converted from
// formats that carry explicit heading markup.
func StructuredBoundaries() []Boundary {
	return append(DefaultBoundaries(), MarkdownHeading)
}
