// Package diff compares two versions of a structured text document at
// section and paragraph granularity.
//
// Every function in this package is pure: results depend only on the input
// text, so comparisons may run concurrently without coordination.
package diff

import "slices"

// Section is one heading-delimited segment of a document version.
type Section struct {
	Identifier string `json:"identifier"`
	RawText    string `json:"raw_text"`
}

// SectionChange is a section present in exactly one version.
// Title holds the derived identifier, not the literal heading.
type SectionChange struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ParagraphChange is a deletion (OldParagraph only), an addition
// (NewParagraph only) or a modification (both, plus Similarity).
type ParagraphChange struct {
	OldParagraph *string  `json:"old_paragraph,omitempty"`
	NewParagraph *string  `json:"new_paragraph,omitempty"`
	Similarity   *float64 `json:"similarity,omitempty"`
}

// Deleted builds a deletion record.
func Deleted(text string) ParagraphChange {
	return ParagraphChange{OldParagraph: &text}
}

// Added builds an addition record.
func Added(text string) ParagraphChange {
	return ParagraphChange{NewParagraph: &text}
}

// Modified builds a modification record.
func Modified(oldText, newText string, ratio float64) ParagraphChange {
	return ParagraphChange{OldParagraph: &oldText, NewParagraph: &newText, Similarity: &ratio}
}

// SectionComparisonResult is the public outcome of the section pass.
type SectionComparisonResult struct {
	Added   []SectionChange `json:"added"`
	Deleted []SectionChange `json:"deleted"`
}

// ParagraphComparisonResult is the outcome of the paragraph pass for one
// section identifier.
type ParagraphComparisonResult struct {
	Added    []ParagraphChange `json:"added"`
	Deleted  []ParagraphChange `json:"deleted"`
	Modified []ParagraphChange `json:"modified"`
}

// Empty reports whether no paragraph changed.
func (r ParagraphComparisonResult) Empty() bool {
	return len(r.Added) == 0 && len(r.Deleted) == 0 && len(r.Modified) == 0
}

// SectionComparison bundles the public result with the state a host keeps
// for the paragraph pass.
type SectionComparison struct {
	Result SectionComparisonResult

	// Common lists identifiers present in both versions, in old-document order.
	Common []string
	// Old and New map identifiers to raw section text.
	Old map[string]string
	New map[string]string
	// Duplicates lists identifiers that occurred more than once within one
	// version; only the last such section is kept in Old or New.
	Duplicates []string
}

// Changed returns the common identifiers whose raw text differs, in
// old-document order.
func (c SectionComparison) Changed() []string {
	var out []string
	for _, id := range c.Common {
		if c.Old[id] != c.New[id] {
			out = append(out, id)
		}
	}
	return out
}

// IsCommon reports whether id exists in both versions.
func (c SectionComparison) IsCommon(id string) bool {
	return slices.Contains(c.Common, id)
}
