package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	comparisons     *prom.CounterVec
	passDuration    *prom.HistogramVec
	cacheHits       prom.Counter
	cacheMisses     prom.Counter
	analysisOutcome *prom.CounterVec
	analysisRetries prom.Counter
	jobResults      *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		comparisons: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "regdiff",
			Name:      "comparisons_total",
			Help:      "Comparisons computed, by pass",
		}, []string{"pass"}),
		passDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "regdiff",
			Name:      "comparison_duration_seconds",
			Help:      "Duration of a comparison pass",
			Buckets:   prom.DefBuckets,
		}, []string{"pass"}),
		cacheHits: prom.NewCounter(prom.CounterOpts{
			Namespace: "regdiff",
			Name:      "cache_hits_total",
			Help:      "Section comparisons served from cache",
		}),
		cacheMisses: prom.NewCounter(prom.CounterOpts{
			Namespace: "regdiff",
			Name:      "cache_misses_total",
			Help:      "Section comparisons computed because the cache had no entry",
		}),
		analysisOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "regdiff",
			Name:      "analysis_judgments_total",
			Help:      "Section judgments by how they were produced",
		}, []string{"outcome"}),
		analysisRetries: prom.NewCounter(prom.CounterOpts{
			Namespace: "regdiff",
			Name:      "analysis_retries_total",
			Help:      "Analysis backend calls retried after a transient failure",
		}),
		jobResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "regdiff",
			Name:      "jobs_total",
			Help:      "Finished analysis jobs by kind and final status",
		}, []string{"kind", "status"}),
	}
	reg.MustRegister(pr.comparisons, pr.passDuration, pr.cacheHits, pr.cacheMisses,
		pr.analysisOutcome, pr.analysisRetries, pr.jobResults)
	return pr
}

func (p *PrometheusRecorder) ObserveComparison(pass string, d time.Duration) {
	if p == nil {
		return
	}
	p.comparisons.WithLabelValues(pass).Inc()
	p.passDuration.WithLabelValues(pass).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheHit() {
	if p == nil {
		return
	}
	p.cacheHits.Inc()
}

func (p *PrometheusRecorder) IncCacheMiss() {
	if p == nil {
		return
	}
	p.cacheMisses.Inc()
}

func (p *PrometheusRecorder) IncAnalysisOutcome(outcome string) {
	if p == nil {
		return
	}
	p.analysisOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncAnalysisRetry() {
	if p == nil {
		return
	}
	p.analysisRetries.Inc()
}

func (p *PrometheusRecorder) IncJobResult(kind, status string) {
	if p == nil {
		return
	}
	p.jobResults.WithLabelValues(kind, status).Inc()
}

// HTTPHandler serves the metrics gathered by g.
func HTTPHandler(g prom.Gatherer) http.Handler {
	if g == nil {
		g = prom.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
