package diff

import (
	"strings"

	"github.com/dgallion1/regdiff/internal/align"
)

// Ratios at or below MinModifiedRatio mean the paragraphs are unrelated;
// ratios at or above MaxModifiedRatio mean only formatting changed. Only
// the band strictly between counts as an edit.
const (
	MinModifiedRatio = 0.3
	MaxModifiedRatio = 0.9
)

// Similarity scores two paragraphs after normalizing case and whitespace.
// Identical normalized text returns (false, 1.0).
func Similarity(oldParagraph, newParagraph string) (modified bool, ratio float64) {
	a, b := normalizeParagraph(oldParagraph), normalizeParagraph(newParagraph)
	if a == b {
		return false, 1.0
	}
	ratio = align.Ratio(a, b)
	return ratio > MinModifiedRatio && ratio < MaxModifiedRatio, ratio
}

func normalizeParagraph(s string) string {
	return collapseSpace(strings.ToLower(s))
}
