package diff

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scopeFeesNew = "1.0 Scope\nThis applies to all vendors and contractors.\n\n3.0 Penalties\nLate fees incur a 5% penalty."

func titles(changes []SectionChange) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.Title)
	}
	return out
}

func TestIdentify(t *testing.T) {
	tests := []struct {
		section string
		want    string
	}{
		{"1.0 Scope\nbody", "10 scope"},
		{"  GENERAL   PROVISIONS  ", "general provisions"},
		{"(a) Eligibility; Scope!", "a eligibility scope"},
		{"## Fees & Charges", "fees charges"},
		{"Über Gebühren", "über gebühren"},
		{"---", ""},
		{strings.Repeat("word ", 40), strings.Repeat("word ", 20)},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Identify(tc.section), "section %q", tc.section)
	}
}

func TestIdentify_StableAcrossPunctuationAndCase(t *testing.T) {
	assert.Equal(t, Identify("2.1 Fees and Charges:"), Identify("2.1   FEES, and charges"))
	assert.NotEqual(t, Identify("2.1 Fees and Charges"), Identify("2.1 Fees and Penalties"))
}

func TestIdentify_UnicodeWhitespace(t *testing.T) {
	assert.Equal(t, "21 fees and charges", Identify("2.1\u00a0Fees\u2003and\u00a0\u00a0Charges"))
	assert.Equal(t, Identify("2.1 Fees and Charges"), Identify("2.1\u00a0Fees and\u202fCharges\u3000"))
}

func TestDiffSections_NonBreakingSpaceKeepsSectionIdentity(t *testing.T) {
	old := "2.1 Fees and Charges\nFees are due monthly."
	upd := "2.1\u00a0Fees and\u00a0Charges\nFees are due monthly."
	cmp := Engine{}.DiffSections(old, upd)
	assert.Empty(t, cmp.Result.Added)
	assert.Empty(t, cmp.Result.Deleted)
	assert.Equal(t, []string{"21 fees and charges"}, cmp.Common)
	assert.Equal(t, []string{"21 fees and charges"}, cmp.Changed())
	assert.True(t, cmp.IsCommon("21 fees and charges"))
}

func TestDiffSections_ScopeFeesScenario(t *testing.T) {
	cmp := DiffSections(scopeFeesOld, scopeFeesNew)

	assert.ElementsMatch(t, []string{"30 penalties"}, titles(cmp.Result.Added))
	assert.ElementsMatch(t, []string{"20 fees"}, titles(cmp.Result.Deleted))
	assert.Equal(t, []string{"10 scope"}, cmp.Common)
	assert.Equal(t, []string{"10 scope"}, cmp.Changed())
	assert.Equal(t, "3.0 Penalties\nLate fees incur a 5% penalty.", cmp.Result.Added[0].Content)
	assert.Equal(t, "2.0 Fees\nFees are due monthly.", cmp.Result.Deleted[0].Content)

	res := DiffParagraphs(cmp.Old["10 scope"], cmp.New["10 scope"])
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Deleted)
	require.Len(t, res.Modified, 1)
	sim := *res.Modified[0].Similarity
	assert.Greater(t, sim, MinModifiedRatio)
	assert.Less(t, sim, MaxModifiedRatio)
	assert.InDelta(t, 76.0/92.0, sim, 1e-9)
}

func TestDiffSections_SelfIsEmpty(t *testing.T) {
	texts := []string{
		"",
		scopeFeesOld,
		"Preamble.\n\nI. First\nBody.\n\nII. Second\nBody.\n\n(a) Detail\nMore detail here.",
	}
	for _, text := range texts {
		cmp := DiffSections(text, text)
		assert.Empty(t, cmp.Result.Added)
		assert.Empty(t, cmp.Result.Deleted)
		assert.Empty(t, cmp.Changed())

		var ids []string
		for _, s := range PlainText.Segment(text) {
			ids = append(ids, s.Identifier)
		}
		assert.ElementsMatch(t, ids, cmp.Common)
	}
}

func TestDiffSections_DuplicateIdentifierKeepsLast(t *testing.T) {
	old := "NOTES\nfirst notes body\n\nNOTES\nsecond notes body"
	cmp := DiffSections(old, "")
	require.Len(t, cmp.Result.Deleted, 1)
	assert.Equal(t, "NOTES\nsecond notes body", cmp.Result.Deleted[0].Content)
	assert.Equal(t, []string{"notes"}, cmp.Duplicates)
}

func TestDiffSections_OrderFollowsDocument(t *testing.T) {
	newText := "ALPHA SECTION\nbody\n\nBETA SECTION\nbody\n\nGAMMA SECTION\nbody"
	cmp := DiffSections("", newText)
	assert.Equal(t, []string{"alpha section", "beta section", "gamma section"}, titles(cmp.Result.Added))
	assert.False(t, cmp.IsCommon("alpha section"))
}

func TestSimilarity(t *testing.T) {
	modified, ratio := Similarity("The cat sat.", "The cat sat.")
	assert.False(t, modified)
	assert.Equal(t, 1.0, ratio)

	modified, ratio = Similarity("  The CAT\n sat. ", "the cat sat.")
	assert.False(t, modified)
	assert.Equal(t, 1.0, ratio)

	modified, ratio = Similarity("Fees are\u00a0due\u2003monthly.", "fees are due monthly.")
	assert.False(t, modified)
	assert.Equal(t, 1.0, ratio)

	modified, ratio = Similarity("Quorum: 7 of 12 members.", "Vendors must submit invoices within sixty days of delivery and acceptance.")
	assert.False(t, modified)
	assert.LessOrEqual(t, ratio, MinModifiedRatio)

	modified, ratio = Similarity("Vendors must submit invoices within thirty days of delivery.", "Vendors must submit invoices within sixty days of delivery and acceptance.")
	assert.True(t, modified)
	assert.InDelta(t, 0.850746, ratio, 1e-6)

	// Formatting noise is not an edit.
	modified, ratio = Similarity("The committee meets every Tuesday at noon.", "The committee meets every Tuesday at noon!")
	assert.False(t, modified)
	assert.GreaterOrEqual(t, ratio, MaxModifiedRatio)
}

func TestDiffParagraphs_SelfIsEmpty(t *testing.T) {
	section := "1.0 Scope\nThis applies to all vendors.\n\nSecond paragraph of scope.\n- bullet item number one"
	assert.True(t, DiffParagraphs(section, section).Empty())
}

func TestDiffParagraphs_InsertAndDelete(t *testing.T) {
	old := "Shared opening paragraph.\n\nParagraph that will be removed."
	upd := "Shared opening paragraph.\n\nParagraph that will be removed.\n\nBrand new closing paragraph."
	res := DiffParagraphs(old, upd)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "Brand new closing paragraph.", *res.Added[0].NewParagraph)
	assert.Nil(t, res.Added[0].OldParagraph)
	assert.Empty(t, res.Deleted)

	res = DiffParagraphs(upd, "Shared opening paragraph.")
	require.Len(t, res.Deleted, 2)
	assert.Equal(t, "Paragraph that will be removed.", *res.Deleted[0].OldParagraph)
	assert.Equal(t, "Brand new closing paragraph.", *res.Deleted[1].OldParagraph)
	assert.Empty(t, res.Added)
	assert.Empty(t, res.Modified)
}

func TestDiffParagraphs_UnrelatedReplacement(t *testing.T) {
	res := DiffParagraphs("Quorum: 7 of 12 members.", "Vendors must submit invoices within sixty days of delivery and acceptance.")
	assert.Empty(t, res.Modified)
	require.Len(t, res.Deleted, 1)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "Quorum: 7 of 12 members.", *res.Deleted[0].OldParagraph)
}

// A replace block is scored as a full cross-product, so one paragraph can
// be both part of a modified pair and part of an unrelated delete/add pair.
func TestDiffParagraphs_ReplaceCrossProduct(t *testing.T) {
	old := "Vendors must submit invoices within thirty days of delivery.\n\nQuorum: 7 of 12 members."
	upd := "Vendors must submit invoices within sixty days of delivery and acceptance."

	res := DiffParagraphs(old, upd)
	require.Len(t, res.Modified, 1)
	assert.Equal(t, "Vendors must submit invoices within thirty days of delivery.", *res.Modified[0].OldParagraph)
	assert.Equal(t, upd, *res.Modified[0].NewParagraph)

	require.Len(t, res.Deleted, 1)
	assert.Equal(t, "Quorum: 7 of 12 members.", *res.Deleted[0].OldParagraph)
	require.Len(t, res.Added, 1)
	assert.Equal(t, upd, *res.Added[0].NewParagraph)
}

func TestEngine_StructuredSegmenter(t *testing.T) {
	old := "# Handbook\n\n## Fees\nFees are due monthly by wire.\n\n## Leave\nStaff accrue leave monthly."
	upd := "# Handbook\n\n## Fees\nFees are due monthly by wire.\n\n## Travel\nTravel requires approval."

	cmp := Structured.DiffSections(old, upd)
	assert.Equal(t, []string{"travel"}, titles(cmp.Result.Added))
	assert.Equal(t, []string{"leave"}, titles(cmp.Result.Deleted))
	assert.ElementsMatch(t, []string{"handbook", "fees"}, cmp.Common)
	assert.Empty(t, cmp.Changed())

	// The zero Engine falls back to plain-text heuristics, which see one section.
	assert.Equal(t, []string{"handbook"}, Engine{}.DiffSections(old, upd).Changed())
}

func TestResultJSONShape(t *testing.T) {
	res := DiffParagraphs("", "")
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"added":[],"deleted":[],"modified":[]}`, string(b))

	b, err = json.Marshal(Deleted("gone paragraph"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"old_paragraph":"gone paragraph"}`, string(b))

	b, err = json.Marshal(Modified("a", "b", 0.5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"old_paragraph":"a","new_paragraph":"b","similarity":0.5}`, string(b))

	b, err = json.Marshal(DiffSections("", "").Result)
	require.NoError(t, err)
	assert.JSONEq(t, `{"added":[],"deleted":[]}`, string(b))
}
