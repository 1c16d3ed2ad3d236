package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/regdiff/internal/metrics"
)

// Worker processes a single analysis job.
type Worker struct {
	comparator *Comparator
	recorder   metrics.Recorder
	log        *slog.Logger
}

func NewWorker(c *Comparator, rec metrics.Recorder, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{comparator: c, recorder: metrics.OrNoop(rec), log: log}
}

// Process compares the job's documents and runs the requested analysis.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "kind", job.Kind)
	in := job.takeInput()
	if in.Old == nil || in.New == nil {
		w.fail(log, job, "comparing", errors.New("job has no documents"))
		return
	}

	job.SetStatus(StatusComparing, "comparing sections")
	cmp := w.comparator.Sections(in)
	log.Info("sections compared", "added", len(cmp.Result.Added), "changed", len(cmp.Changed()))

	job.SetStatus(StatusAnalyzing, "analyzing "+string(job.Kind)+" sections")
	var (
		result any
		err    error
	)
	switch job.Kind {
	case KindAdded:
		result, err = w.comparator.AnalyzeAdded(ctx, in)
	case KindModified:
		result, err = w.comparator.AnalyzeModified(ctx, in, job.BatchSize)
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}
	if err != nil {
		w.fail(log, job, "analyzing", err)
		return
	}

	job.Complete(result)
	w.recorder.IncJobResult(string(job.Kind), string(StatusCompleted))
	log.Info("job completed")
}

func (w *Worker) fail(log *slog.Logger, job *Job, phase string, err error) {
	log.Error("job failed", "phase", phase, "error", err)
	job.AddError(err.Error())
	job.SetStatus(StatusFailed, phase)
	w.recorder.IncJobResult(string(job.Kind), string(StatusFailed))
}
