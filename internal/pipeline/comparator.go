package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/regdiff/internal/analyze"
	"github.com/dgallion1/regdiff/internal/cache"
	"github.com/dgallion1/regdiff/internal/diff"
	"github.com/dgallion1/regdiff/internal/doctree"
	"github.com/dgallion1/regdiff/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// ErrAnalysisDisabled is returned by the analysis passes when no analyzer is configured.
var ErrAnalysisDisabled = errors.New("text analysis is disabled")

// Input is a parsed document pair.
type Input struct {
	Old *doctree.Document
	New *doctree.Document
}

// Engine picks the structured segmenter when either side carries headings.
func (in Input) Engine() diff.Engine {
	if in.Old.Structured() || in.New.Structured() {
		return diff.Structured
	}
	return diff.Default
}

// AddedAnalysis pairs an added section with its judgment.
type AddedAnalysis struct {
	SectionTitle   string           `json:"section_title"`
	SectionContent string           `json:"section_content"`
	Analysis       analyze.Judgment `json:"analysis"`
}

// ModifiedAnalysis is a modified section's judgment plus content snippets.
type ModifiedAnalysis struct {
	analyze.Judgment
	OldContent string `json:"old_content"`
	NewContent string `json:"new_content"`
}

// Comparator runs the comparison passes for a document pair, sharing one
// cached section pass between them.
type Comparator struct {
	cache        *cache.Store
	analyzer     *analyze.Analyzer
	recorder     metrics.Recorder
	log          *slog.Logger
	snippetChars int
}

// NewComparator builds a comparator. analyzer may be nil, which disables the
// analysis passes.
func NewComparator(store *cache.Store, analyzer *analyze.Analyzer, rec metrics.Recorder, log *slog.Logger, snippetChars int) *Comparator {
	if store == nil {
		store = cache.New(time.Hour, 256)
	}
	if log == nil {
		log = slog.Default()
	}
	if snippetChars <= 0 {
		snippetChars = 500
	}
	return &Comparator{
		cache:        store,
		analyzer:     analyzer,
		recorder:     metrics.OrNoop(rec),
		log:          log,
		snippetChars: snippetChars,
	}
}

// Analyzer returns the configured analyzer, or nil.
func (c *Comparator) Analyzer() *analyze.Analyzer { return c.analyzer }

// Cache returns the comparison cache.
func (c *Comparator) Cache() *cache.Store { return c.cache }

// Sections returns the section comparison, computing and caching it on a miss.
func (c *Comparator) Sections(in Input) diff.SectionComparison {
	engine := in.Engine()
	oldText, newText := in.Old.Render(), in.New.Render()
	key := cache.NewKey(oldText, newText, engine.Name())

	if cmp, ok := c.cache.Get(key); ok {
		c.recorder.IncCacheHit()
		return cmp
	}
	c.recorder.IncCacheMiss()

	start := time.Now()
	cmp := engine.DiffSections(oldText, newText)
	c.recorder.ObserveComparison(metrics.PassSections, time.Since(start))

	if len(cmp.Duplicates) > 0 {
		c.log.Warn("duplicate section identifiers, later sections win",
			"cache_key", key.Short(), "duplicates", cmp.Duplicates)
	}
	c.log.Info("compared sections",
		"cache_key", key.Short(),
		"segmenter", engine.Name(),
		"boundaries", engine.Boundaries(),
		"added", len(cmp.Result.Added),
		"deleted", len(cmp.Result.Deleted),
		"common", len(cmp.Common),
	)
	c.cache.Put(key, cmp)
	return cmp
}

// Paragraphs runs the paragraph pass for every common section whose text
// changed. A non-empty filter restricts the pass to those identifiers;
// identifiers that are not common to both versions are ignored.
func (c *Comparator) Paragraphs(ctx context.Context, in Input, filter []string) (map[string]diff.ParagraphComparisonResult, error) {
	cmp := c.Sections(in)
	engine := in.Engine()

	ids := cmp.Changed()
	if len(filter) > 0 {
		ids = slices.DeleteFunc(ids, func(id string) bool { return !slices.Contains(filter, id) })
	}

	out := make(map[string]diff.ParagraphComparisonResult, len(ids))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res := engine.DiffParagraphs(cmp.Old[id], cmp.New[id])
			c.recorder.ObserveComparison(metrics.PassParagraphs, time.Since(start))
			mu.Lock()
			out[id] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// AnalyzeAdded asks the analyzer about every added section.
func (c *Comparator) AnalyzeAdded(ctx context.Context, in Input) ([]AddedAnalysis, error) {
	if c.analyzer == nil {
		return nil, ErrAnalysisDisabled
	}
	added := c.Sections(in).Result.Added
	judgments := c.analyzer.AnalyzeAdded(ctx, added)

	out := make([]AddedAnalysis, len(added))
	for i, s := range added {
		out[i] = AddedAnalysis{
			SectionTitle:   s.Title,
			SectionContent: s.Content,
			Analysis:       judgments[i],
		}
	}
	return out, ctx.Err()
}

// AnalyzeModified asks the analyzer about every changed common section.
// batchSize <= 0 uses the analyzer's configured batch size.
func (c *Comparator) AnalyzeModified(ctx context.Context, in Input, batchSize int) (map[string]ModifiedAnalysis, error) {
	if c.analyzer == nil {
		return nil, ErrAnalysisDisabled
	}
	cmp := c.Sections(in)
	changed := cmp.Changed()
	pairs := make([]analyze.Pair, len(changed))
	for i, id := range changed {
		pairs[i] = analyze.Pair{SectionID: id, Old: cmp.Old[id], New: cmp.New[id]}
	}

	judgments := c.analyzer.AnalyzeModified(ctx, pairs, batchSize)
	out := make(map[string]ModifiedAnalysis, len(judgments))
	for _, p := range pairs {
		j, ok := judgments[p.SectionID]
		if !ok {
			j = analyze.Unavailable(p.SectionID)
		}
		out[p.SectionID] = ModifiedAnalysis{
			Judgment:   j,
			OldContent: snippet(p.Old, c.snippetChars),
			NewContent: snippet(p.New, c.snippetChars),
		}
	}
	return out, ctx.Err()
}

// snippet cuts s to n characters, marking the cut with "...".
func snippet(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
