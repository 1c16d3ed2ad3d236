package analyze

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/regdiff/internal/metrics"
)

// GenerateFunc produces a model reply for a prompt.
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// FallbackPolicy resolves one batch of modified sections. It makes a single
// batched call, then one call per section the batch left unresolved, and
// reports Unavailable for sections whose own call also failed. Every section
// in the batch gets exactly one judgment.
type FallbackPolicy struct {
	Generate  GenerateFunc
	OnOutcome func(outcome string)
	Log       *slog.Logger
}

// Resolve returns a judgment for every pair in batch, keyed by section id.
func (p FallbackPolicy) Resolve(ctx context.Context, batch []Pair) map[string]Judgment {
	out := make(map[string]Judgment, len(batch))
	pending := batch

	if len(batch) > 1 {
		resolved, err := p.call(ctx, batch)
		if err != nil {
			p.log().Warn("batch analysis failed, falling back to single sections", "sections", len(batch), "error", err)
		}
		pending = nil
		for _, pair := range batch {
			if j, ok := resolved[pair.SectionID]; ok {
				out[pair.SectionID] = j
				p.outcome(metrics.OutcomeBatch)
				continue
			}
			pending = append(pending, pair)
		}
	}

	for _, pair := range pending {
		resolved, err := p.call(ctx, []Pair{pair})
		if j, ok := resolved[pair.SectionID]; ok {
			out[pair.SectionID] = j
			p.outcome(metrics.OutcomeSingle)
			continue
		}
		if err == nil {
			err = fmt.Errorf("no usable judgment in reply")
		}
		p.log().Warn("section analysis failed", "section", pair.SectionID, "error", err)
		out[pair.SectionID] = Unavailable(pair.SectionID)
		p.outcome(metrics.OutcomeSentinel)
	}
	return out
}

// call asks for judgments on pairs and keeps the valid ones whose id belongs
// to the request. A single-section reply without an id is attributed to it.
func (p FallbackPolicy) call(ctx context.Context, pairs []Pair) (map[string]Judgment, error) {
	reply, err := p.Generate(ctx, BuildModifiedPrompt(pairs))
	if err != nil {
		return nil, err
	}
	js, err := parseJudgments(reply)
	if err != nil {
		return nil, err
	}

	want := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		want[pair.SectionID] = true
	}
	if len(pairs) == 1 && len(js) == 1 && js[0].SectionID == "" {
		js[0].SectionID = pairs[0].SectionID
	}

	resolved := make(map[string]Judgment, len(js))
	for _, j := range js {
		if !ValidateJudgment(&j) || !want[j.SectionID] {
			continue
		}
		resolved[j.SectionID] = j
	}
	return resolved, nil
}

func (p FallbackPolicy) outcome(o string) {
	if p.OnOutcome != nil {
		p.OnOutcome(o)
	}
}

func (p FallbackPolicy) log() *slog.Logger {
	if p.Log == nil {
		return slog.Default()
	}
	return p.Log
}
