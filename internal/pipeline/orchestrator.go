package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgallion1/regdiff/internal/metrics"
)

// Orchestrator runs analysis jobs on a fixed pool of workers fed by a
// bounded queue.
type Orchestrator struct {
	jobs       *JobStore
	queue      chan *Job
	comparator *Comparator
	recorder   metrics.Recorder
	log        *slog.Logger

	workerCount int
	maxQueue    int

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	stopped bool
}

// ErrStopped is returned by Submit once Stop has been called.
var ErrStopped = errors.New("orchestrator is stopped")

// NewOrchestrator creates the pipeline. Call Start to launch the workers.
func NewOrchestrator(c *Comparator, jobs *JobStore, workerCount, maxQueue int, rec metrics.Recorder, log *slog.Logger) *Orchestrator {
	if workerCount <= 0 {
		workerCount = 4
	}
	if maxQueue <= 0 {
		maxQueue = 100
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		jobs:        jobs,
		queue:       make(chan *Job, maxQueue),
		comparator:  c,
		recorder:    metrics.OrNoop(rec),
		log:         log,
		workerCount: workerCount,
		maxQueue:    maxQueue,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.workerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.comparator, o.recorder, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}
}

// Stop cancels running jobs and waits for the workers to exit. Later
// submissions fail with ErrStopped. Stop is safe to call more than once.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if !o.stopped {
		o.stopped = true
		close(o.queue)
	}
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.AddError(ErrStopped.Error())
		job.SetStatus(StatusFailed, "stopped")
		return ErrStopped
	}
	select {
	case o.queue <- job:
		return nil
	default:
		job.AddError("job queue is full")
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.maxQueue)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
