package diff

import "github.com/dgallion1/regdiff/internal/align"

// DiffParagraphs compares two versions of one section paragraph by paragraph.
func DiffParagraphs(oldSection, newSection string) ParagraphComparisonResult {
	return Default.DiffParagraphs(oldSection, newSection)
}

// DiffParagraphs aligns the paragraphs of both versions and classifies every
// non-equal region. Inside a replace region each old paragraph is scored
// against each new one: a pair in the edit band is reported as modified,
// any other pair as an independent deletion plus addition. A paragraph may
// therefore appear in more than one record.
func (e Engine) DiffParagraphs(oldSection, newSection string) ParagraphComparisonResult {
	oldParas := SegmentParagraphs(oldSection)
	newParas := SegmentParagraphs(newSection)

	res := ParagraphComparisonResult{
		Added:    []ParagraphChange{},
		Deleted:  []ParagraphChange{},
		Modified: []ParagraphChange{},
	}
	for _, op := range align.Opcodes(oldParas, newParas) {
		switch op.Tag {
		case align.Delete:
			for _, p := range oldParas[op.I1:op.I2] {
				res.Deleted = append(res.Deleted, Deleted(p))
			}
		case align.Insert:
			for _, p := range newParas[op.J1:op.J2] {
				res.Added = append(res.Added, Added(p))
			}
		case align.Replace:
			for _, o := range oldParas[op.I1:op.I2] {
				for _, n := range newParas[op.J1:op.J2] {
					if modified, ratio := Similarity(o, n); modified {
						res.Modified = append(res.Modified, Modified(o, n, ratio))
					} else {
						res.Deleted = append(res.Deleted, Deleted(o))
						res.Added = append(res.Added, Added(n))
					}
				}
			}
		}
	}
	return res
}
