package diff

// Engine runs both comparison passes with one segmenter.
type Engine struct {
	Segmenter *Segmenter
}

var (
	// Default compares plain-text documents.
	Default = Engine{Segmenter: PlainText}
	// Structured compares documents converted from heading-aware formats.
	Structured = Engine{Segmenter: Markup}
)

// DiffSections compares two plain-text document versions section by section.
func DiffSections(oldText, newText string) SectionComparison {
	return Default.DiffSections(oldText, newText)
}

// DiffSections matches sections across versions by identifier. Added and
// deleted lists follow document order. When two sections of one version
// share an identifier the later one wins and the identifier is reported in
// Duplicates.
func (e Engine) DiffSections(oldText, newText string) SectionComparison {
	oldOrder, oldMap, oldDups := e.index(oldText)
	newOrder, newMap, newDups := e.index(newText)

	cmp := SectionComparison{
		Result: SectionComparisonResult{
			Added:   []SectionChange{},
			Deleted: []SectionChange{},
		},
		Common:     []string{},
		Old:        oldMap,
		New:        newMap,
		Duplicates: append(oldDups, newDups...),
	}

	for _, id := range oldOrder {
		if _, ok := newMap[id]; ok {
			cmp.Common = append(cmp.Common, id)
		} else {
			cmp.Result.Deleted = append(cmp.Result.Deleted, SectionChange{Title: id, Content: oldMap[id]})
		}
	}
	for _, id := range newOrder {
		if _, ok := oldMap[id]; !ok {
			cmp.Result.Added = append(cmp.Result.Added, SectionChange{Title: id, Content: newMap[id]})
		}
	}
	return cmp
}

// index builds the identifier map of one version, the order in which
// identifiers first appear and the identifiers seen more than once.
func (e Engine) index(text string) (order []string, byID map[string]string, dups []string) {
	byID = make(map[string]string)
	for _, s := range e.segmenter().Segment(text) {
		if _, seen := byID[s.Identifier]; seen {
			dups = append(dups, s.Identifier)
		} else {
			order = append(order, s.Identifier)
		}
		byID[s.Identifier] = s.RawText
	}
	return order, byID, dups
}

// Name identifies the segmenter, so results of different engines are not confused.
func (e Engine) Name() string { return e.segmenter().Name() }

// Boundaries lists the segmenter's boundary names in match order.
func (e Engine) Boundaries() []string { return e.segmenter().Boundaries() }

func (e Engine) segmenter() *Segmenter {
	if e.Segmenter == nil {
		return PlainText
	}
	return e.Segmenter
}
