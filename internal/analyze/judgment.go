package analyze

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Judgment is the model's verdict on one section change.
type Judgment struct {
	SectionID     string   `json:"section_id,omitempty"`
	ChangeSummary string   `json:"change_summary"`
	ChangeType    string   `json:"change_type"`
	ChangeImpact  string   `json:"change_impact,omitempty"`
	Confidence    *float64 `json:"confidence,omitempty"`
}

const (
	failedSummary = "Analysis failed"
	unknown       = "Unknown"

	maxSummaryChars = 300
)

// Unavailable is the judgment reported when every attempt for a section failed.
func Unavailable(sectionID string) Judgment {
	return Judgment{
		SectionID:     sectionID,
		ChangeSummary: failedSummary,
		ChangeType:    unknown,
		ChangeImpact:  unknown,
	}
}

// IsUnavailable reports whether j is the failure sentinel.
func (j Judgment) IsUnavailable() bool {
	return j.ChangeSummary == failedSummary && j.ChangeType == unknown
}

var changeTypes = []string{
	"New Requirement",
	"Clarification of Existing Requirement",
	"Clarification",
	"Deletion of Requirement",
	"Stricter Requirement",
	"Looser Requirement",
	"Minor Edit",
}

var impacts = []string{"Low", "Medium", "High"}

var injectionPattern = regexp.MustCompile(
	`(?i)(ignore\s+(previous|all|above)|system\s*prompt|you\s+are\s+now|` +
		`act\s+as\s+|pretend\s+|forget\s+(everything|all)|` +
		`new\s+instructions)`,
)

// ValidateJudgment normalizes j in place and reports whether it is usable.
// Change types and impacts are matched case-insensitively; unknown values
// become "Unknown" (impact is dropped). Confidence is clamped to [0, 1].
func ValidateJudgment(j *Judgment) bool {
	if j == nil {
		return false
	}
	j.SectionID = strings.TrimSpace(j.SectionID)
	summary := strings.Join(strings.Fields(j.ChangeSummary), " ")
	if len(summary) < 3 {
		return false
	}
	if injectionPattern.MatchString(summary) {
		return false
	}
	j.ChangeSummary = truncateRunes(summary, maxSummaryChars)
	j.ChangeType = canonical(changeTypes, j.ChangeType, unknown)
	j.ChangeImpact = canonical(impacts, j.ChangeImpact, "")
	if j.Confidence != nil {
		c := min(max(*j.Confidence, 0), 1)
		j.Confidence = &c
	}
	return true
}

func canonical(allowed []string, v, fallback string) string {
	v = strings.TrimSpace(v)
	i := slices.IndexFunc(allowed, func(s string) bool { return strings.EqualFold(s, v) })
	if i < 0 {
		return fallback
	}
	return allowed[i]
}

// parseJudgments decodes a model reply. Accepted shapes: a JSON array of
// judgments, a single judgment object, or an object wrapping an array
// (JSON-mode models often return {"changes": [...]}).
func parseJudgments(reply string) ([]Judgment, error) {
	text := stripCodeBlock(reply)
	if text == "" {
		return nil, fmt.Errorf("empty reply")
	}

	if text[0] == '[' {
		var js []Judgment
		if err := json.Unmarshal([]byte(text), &js); err != nil {
			return nil, fmt.Errorf("parse judgments json: %w (raw: %s)", err, truncate(text, 200))
		}
		if len(js) == 0 {
			return nil, fmt.Errorf("empty judgment array")
		}
		return js, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("parse judgment json: %w (raw: %s)", err, truncate(text, 200))
	}
	if _, ok := obj["change_summary"]; ok {
		var j Judgment
		if err := json.Unmarshal([]byte(text), &j); err != nil {
			return nil, fmt.Errorf("parse judgment json: %w", err)
		}
		return []Judgment{j}, nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		var js []Judgment
		if err := json.Unmarshal(obj[k], &js); err == nil && len(js) > 0 {
			return js, nil
		}
	}
	return nil, fmt.Errorf("no judgments in reply (raw: %s)", truncate(text, 200))
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
