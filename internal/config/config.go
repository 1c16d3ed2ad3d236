package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/regdiff/internal/analyze"
)

type Config struct {
	Port string

	// Upload limits
	MaxUploadBytes int64

	// Comparison cache
	CacheTTL           time.Duration
	CacheMaxEntries    int
	CacheSweepInterval time.Duration

	// Text analysis
	AnalysisProvider   string // ollama, anthropic or none
	AnalysisEndpoint   string
	AnalysisModel      string
	AnthropicAPIKey    string
	AnalysisBatchSize  int
	AnalysisWorkers    int
	AnalysisTimeout    time.Duration
	AnalysisMaxRetries int
	SnippetChars       int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		CacheTTL:           envDuration("CACHE_TTL", 1*time.Hour),
		CacheMaxEntries:    envInt("CACHE_MAX_ENTRIES", 256),
		CacheSweepInterval: envDuration("CACHE_SWEEP_INTERVAL", 5*time.Minute),

		AnalysisProvider:   strings.ToLower(envOr("ANALYSIS_PROVIDER", analyze.ProviderOllama)),
		AnalysisEndpoint:   os.Getenv("ANALYSIS_ENDPOINT"),
		AnalysisModel:      os.Getenv("ANALYSIS_MODEL"),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnalysisBatchSize:  envInt("ANALYSIS_BATCH_SIZE", 3),
		AnalysisWorkers:    envInt("ANALYSIS_WORKERS", 4),
		AnalysisTimeout:    envDuration("ANALYSIS_TIMEOUT", 60*time.Second),
		AnalysisMaxRetries: envInt("ANALYSIS_MAX_RETRIES", 2),
		SnippetChars:       envInt("SNIPPET_CHARS", 500),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 1 * time.Hour
	}
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = 256
	}
	if cfg.CacheSweepInterval <= 0 {
		cfg.CacheSweepInterval = 5 * time.Minute
	}
	if cfg.AnalysisEndpoint == "" {
		cfg.AnalysisEndpoint = analyze.DefaultEndpoint(cfg.AnalysisProvider)
	}
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = analyze.DefaultModel(cfg.AnalysisProvider)
	}
	if cfg.AnalysisBatchSize <= 0 {
		cfg.AnalysisBatchSize = 3
	}
	if cfg.AnalysisWorkers <= 0 {
		cfg.AnalysisWorkers = 4
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = 60 * time.Second
	}
	if cfg.AnalysisMaxRetries < 0 {
		cfg.AnalysisMaxRetries = 0
	}
	if cfg.SnippetChars <= 0 {
		cfg.SnippetChars = 500
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	switch c.AnalysisProvider {
	case analyze.ProviderOllama, analyze.ProviderNone:
	case analyze.ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when ANALYSIS_PROVIDER=anthropic")
		}
	default:
		return fmt.Errorf("ANALYSIS_PROVIDER must be ollama, anthropic or none, got %q", c.AnalysisProvider)
	}
	return nil
}

// Analysis returns the settings handed to the analysis collaborator.
func (c Config) Analysis() analyze.Config {
	return analyze.Config{
		Provider:    c.AnalysisProvider,
		Endpoint:    c.AnalysisEndpoint,
		Model:       c.AnalysisModel,
		APIKey:      c.AnthropicAPIKey,
		BatchSize:   c.AnalysisBatchSize,
		WorkerCount: c.AnalysisWorkers,
		Timeout:     c.AnalysisTimeout,
		MaxRetries:  c.AnalysisMaxRetries,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
