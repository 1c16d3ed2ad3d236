package analyze

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/dgallion1/regdiff/internal/diff"
	"github.com/dgallion1/regdiff/internal/metrics"
	"golang.org/x/sync/errgroup"
)

// Analyzer runs analysis requests against a Backend with bounded concurrency,
// retrying transient failures and never failing a whole request because one
// section could not be judged.
type Analyzer struct {
	backend  Backend
	cfg      Config
	stats    *CallStats
	recorder metrics.Recorder
	log      *slog.Logger
	backoff  func(attempt int) time.Duration
}

func NewAnalyzer(backend Backend, cfg Config, stats *CallStats, rec metrics.Recorder, log *slog.Logger) *Analyzer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 3
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if stats == nil {
		stats = NewCallStats(time.Hour)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Analyzer{
		backend:  backend,
		cfg:      cfg,
		stats:    stats,
		recorder: metrics.OrNoop(rec),
		log:      log,
		backoff:  Backoff,
	}
}

// Model returns the configured model identifier.
func (a *Analyzer) Model() string { return a.cfg.Model }

// Stats returns a snapshot of backend call statistics.
func (a *Analyzer) Stats() StatsSnapshot { return a.stats.Snapshot() }

// AnalyzeAdded judges each added section. Results are in input order; a
// section whose analysis failed gets Unavailable.
func (a *Analyzer) AnalyzeAdded(ctx context.Context, sections []diff.SectionChange) []Judgment {
	out := make([]Judgment, len(sections))
	var g errgroup.Group
	g.SetLimit(a.cfg.WorkerCount)
	for i, s := range sections {
		g.Go(func() error {
			out[i] = a.judgeAdded(ctx, s)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (a *Analyzer) judgeAdded(ctx context.Context, s diff.SectionChange) Judgment {
	reply, err := a.generate(ctx, BuildAddedPrompt(s.Title, s.Content))
	if err == nil {
		var js []Judgment
		if js, err = parseJudgments(reply); err == nil {
			j := js[0]
			if ValidateJudgment(&j) {
				j.SectionID = s.Title
				a.outcome(metrics.OutcomeSingle)
				return j
			}
			err = errors.New("invalid judgment")
		}
	}
	a.log.Warn("added section analysis failed", "section", s.Title, "error", err)
	a.outcome(metrics.OutcomeSentinel)
	return Unavailable(s.Title)
}

// AnalyzeModified judges modified sections in batches of batchSize (the
// configured size when batchSize <= 0). Every pair gets an entry.
func (a *Analyzer) AnalyzeModified(ctx context.Context, pairs []Pair, batchSize int) map[string]Judgment {
	if batchSize <= 0 {
		batchSize = a.cfg.BatchSize
	}
	policy := FallbackPolicy{
		Generate:  a.generate,
		OnOutcome: a.outcome,
		Log:       a.log,
	}

	out := make(map[string]Judgment, len(pairs))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(a.cfg.WorkerCount)
	for batch := range slices.Chunk(pairs, batchSize) {
		g.Go(func() error {
			res := policy.Resolve(ctx, batch)
			mu.Lock()
			maps.Copy(out, res)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// generate calls the backend, retrying RetryableError up to MaxRetries times.
func (a *Analyzer) generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= a.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			a.recorder.IncAnalysisRetry()
			select {
			case <-time.After(retryDelay(a.backoff, attempt-1, lastErr)):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		start := time.Now()
		reply, err := a.backend.Generate(ctx, prompt)
		a.stats.Record(time.Since(start), err)
		if err == nil {
			return reply, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
		a.log.Warn("retryable analysis error", "attempt", attempt, "error", err)
	}
	return "", lastErr
}

func (a *Analyzer) outcome(o string) {
	a.stats.RecordOutcome(o)
	a.recorder.IncAnalysisOutcome(o)
}
