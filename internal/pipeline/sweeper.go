package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/regdiff/internal/cache"
	"github.com/go-co-op/gocron/v2"
)

// Sweeper periodically evicts expired cache entries and finished jobs.
type Sweeper struct {
	scheduler gocron.Scheduler
	cache     *cache.Store
	jobs      *JobStore
	log       *slog.Logger
}

// NewSweeper schedules both sweeps every interval. Call Start to begin.
func NewSweeper(store *cache.Store, jobs *JobStore, interval time.Duration, log *slog.Logger) (*Sweeper, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	sw := &Sweeper{scheduler: s, cache: store, jobs: jobs, log: log}

	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(sw.Sweep),
		gocron.WithName("sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create sweep job: %w", err)
	}
	return sw, nil
}

// Start begins the schedule.
func (s *Sweeper) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for a running sweep.
func (s *Sweeper) Stop() error {
	return s.scheduler.Shutdown()
}

// Sweep runs one pass over the cache and the job store.
func (s *Sweeper) Sweep() {
	var entries, jobs int
	if s.cache != nil {
		entries = s.cache.Sweep()
	}
	if s.jobs != nil {
		jobs = s.jobs.Cleanup()
	}
	if entries > 0 || jobs > 0 {
		s.log.Info("swept expired state", "cache_entries", entries, "jobs", jobs)
	}
}
