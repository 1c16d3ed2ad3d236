package analyze

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
	failed     bool
}

// StatsSnapshot aggregates backend calls within the rolling window plus
// lifetime judgment outcome counts.
type StatsSnapshot struct {
	Count    int              `json:"count"`
	Failures int              `json:"failures"`
	MinMs    int64            `json:"min_ms"`
	MaxMs    int64            `json:"max_ms"`
	AvgMs    float64          `json:"avg_ms"`
	P50Ms    float64          `json:"p50_ms"`
	P95Ms    float64          `json:"p95_ms"`
	P99Ms    float64          `json:"p99_ms"`
	Outcomes map[string]int64 `json:"outcomes"`
}

// CallStats tracks recent backend call latencies and how judgments were produced.
type CallStats struct {
	mu       sync.Mutex
	samples  []sample
	maxAge   time.Duration
	outcomes map[string]int64
}

func NewCallStats(maxAge time.Duration) *CallStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &CallStats{
		samples:  make([]sample, 0, 256),
		maxAge:   maxAge,
		outcomes: make(map[string]int64),
	}
}

// Record adds one backend call. Negative durations count as zero.
func (s *CallStats) Record(d time.Duration, err error) {
	durationMs := max(d.Milliseconds(), 0)
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationMs: durationMs,
		failed:     err != nil,
	})
}

// RecordOutcome counts one judgment produced by outcome (batch, single, sentinel).
func (s *CallStats) RecordOutcome(outcome string) {
	s.mu.Lock()
	s.outcomes[outcome]++
	s.mu.Unlock()
}

func (s *CallStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := StatsSnapshot{Outcomes: make(map[string]int64, len(s.outcomes))}
	for k, v := range s.outcomes {
		snap.Outcomes[k] = v
	}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		if sm.failed {
			snap.Failures++
		}
	}
	slices.Sort(values)

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *CallStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	s.samples = slices.DeleteFunc(s.samples, func(sm sample) bool {
		return sm.timestamp.Before(cutoff)
	})
}

// percentile interpolates linearly between the two closest ranks.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
