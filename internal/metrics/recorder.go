// Package metrics records comparison, cache, analysis and job metrics.
// Components hold a Recorder and default to NoopRecorder, so metrics can be
// switched on in main without touching call sites.
package metrics

import "time"

// Pass labels for comparison metrics.
const (
	PassSections   = "sections"
	PassParagraphs = "paragraphs"
)

// Analysis outcomes: how a section judgment was finally produced.
const (
	OutcomeBatch    = "batch"
	OutcomeSingle   = "single"
	OutcomeSentinel = "sentinel"
)

// Recorder is the set of metrics operations used across the service.
type Recorder interface {
	ObserveComparison(pass string, d time.Duration)
	IncCacheHit()
	IncCacheMiss()
	IncAnalysisOutcome(outcome string)
	IncAnalysisRetry()
	IncJobResult(kind, status string)
}

// NoopRecorder discards everything.
type NoopRecorder struct{}

func (NoopRecorder) ObserveComparison(string, time.Duration) {}
func (NoopRecorder) IncCacheHit()                            {}
func (NoopRecorder) IncCacheMiss()                           {}
func (NoopRecorder) IncAnalysisOutcome(string)               {}
func (NoopRecorder) IncAnalysisRetry()                       {}
func (NoopRecorder) IncJobResult(string, string)             {}

// OrNoop returns r, or NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
