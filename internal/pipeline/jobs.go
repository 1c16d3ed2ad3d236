package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusComparing JobStatus = "comparing"
	StatusAnalyzing JobStatus = "analyzing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// JobKind selects which analysis pass a job runs.
type JobKind string

const (
	KindAdded    JobKind = "added"
	KindModified JobKind = "modified"
)

// ParseJobKind validates a kind received from a client.
func ParseJobKind(s string) (JobKind, error) {
	switch k := JobKind(s); k {
	case KindAdded, KindModified:
		return k, nil
	}
	return "", fmt.Errorf("unknown job kind %q (want added or modified)", s)
}

// Job tracks one asynchronous analysis of a document pair.
type Job struct {
	mu sync.Mutex

	ID        string
	Kind      JobKind
	OldName   string
	NewName   string
	BatchSize int

	Status    JobStatus
	Phase     string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Internal: not serialized.
	input  Input
	result any
	errors []string
}

// NewJob creates a queued job with a fresh id.
func NewJob(kind JobKind, oldName, newName string, in Input) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Kind:      kind,
		OldName:   oldName,
		NewName:   newName,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		input:     in,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes jobs idle for longer than the TTL and returns how many.
func (s *JobStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.UpdatedAt = time.Now()
}

// Complete stores the result and marks the job completed.
func (j *Job) Complete(result any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = result
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// takeInput returns the document pair and releases it from the job, so a
// finished job does not pin both documents in memory.
func (j *Job) takeInput() Input {
	j.mu.Lock()
	defer j.mu.Unlock()
	in := j.input
	j.input = Input{}
	return in
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Kind      JobKind   `json:"kind"`
	OldName   string    `json:"old_version"`
	NewName   string    `json:"new_version"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Errors    []string  `json:"errors"`
	Result    any       `json:"result,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.errors...)
	return JobSnapshot{
		ID:        j.ID,
		Kind:      j.Kind,
		OldName:   j.OldName,
		NewName:   j.NewName,
		Status:    j.Status,
		Phase:     j.Phase,
		Errors:    errs,
		Result:    j.result,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
