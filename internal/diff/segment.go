package diff

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinParagraphLength is the trimmed length a chunk must exceed to count as
// a paragraph. Shorter chunks are page numbers or stray punctuation.
const MinParagraphLength = 10

// Segmenter splits document text into sections using an ordered list of
// boundary heuristics.
type Segmenter struct {
	name       string
	boundaries []Boundary
}

// NewSegmenter returns a segmenter that tries boundaries in order.
func NewSegmenter(name string, boundaries ...Boundary) *Segmenter {
	return &Segmenter{name: name, boundaries: boundaries}
}

var (
	// PlainText recognizes the numbering and capitalization conventions of
	// plain-text regulatory documents.
	PlainText = NewSegmenter("plain", DefaultBoundaries()...)
	// Markup also recognizes ATX headings rendered from Markdown, HTML or DOCX.
	Markup = NewSegmenter("markup", StructuredBoundaries()...)
)

// Name identifies the heuristic set; hosts include it in cache keys.
func (s *Segmenter) Name() string { return s.name }

// Boundaries returns the names of the boundaries in the order they are tried.
func (s *Segmenter) Boundaries() []string {
	names := make([]string, len(s.boundaries))
	for i, b := range s.boundaries {
		names[i] = b.Name()
	}
	return names
}

// BoundaryFor returns the first boundary matching line, or nil.
func (s *Segmenter) BoundaryFor(line string) Boundary {
	for _, b := range s.boundaries {
		if b.Match(line) {
			return b
		}
	}
	return nil
}

// Sections splits text into trimmed, non-empty raw sections in document
// order. A section starts at a non-blank line that follows a blank line and
// matches one of the boundaries; text before the first boundary forms its
// own section.
func (s *Segmenter) Sections(text string) []string {
	lines := strings.Split(text, "\n")

	var sections []string
	start := 0
	for i := 1; i < len(lines); i++ {
		if !isBlank(lines[i-1]) || isBlank(lines[i]) {
			continue
		}
		if s.BoundaryFor(lines[i]) == nil {
			continue
		}
		sections = appendTrimmed(sections, strings.Join(lines[start:i], "\n"))
		start = i
	}
	return appendTrimmed(sections, strings.Join(lines[start:], "\n"))
}

// Segment returns the sections of text with their identifiers.
func (s *Segmenter) Segment(text string) []Section {
	raw := s.Sections(text)
	out := make([]Section, 0, len(raw))
	for _, r := range raw {
		out = append(out, Section{Identifier: Identify(r), RawText: r})
	}
	return out
}

// SegmentSections splits text with the plain-text heuristics.
func SegmentSections(text string) []string {
	return PlainText.Sections(text)
}

var paragraphSplit = regexp.MustCompile(`\n\s*\n|\n\s*[-*•]\s+`)

// SegmentParagraphs splits a section on blank lines and bullet markers and
// drops chunks of MinParagraphLength characters or fewer.
func SegmentParagraphs(section string) []string {
	var out []string
	for _, chunk := range paragraphSplit.Split(strings.TrimSpace(section), -1) {
		chunk = strings.TrimSpace(chunk)
		if utf8.RuneCountInString(chunk) > MinParagraphLength {
			out = append(out, chunk)
		}
	}
	return out
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func appendTrimmed(dst []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		dst = append(dst, s)
	}
	return dst
}
