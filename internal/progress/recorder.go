package progress

import (
	"context"
	"log"
	"time"

	"prodimport/internal/tracker"
)

// HistoryStore is the part of the import history the recorder writes to.
type HistoryStore interface {
	UpdateProgress(ctx context.Context, jobID string, percent float64, message string) error
	Complete(ctx context.Context, jobID, message string) error
	FailJob(ctx context.Context, jobID, errorMsg string) error
}

// Recorder persists tracker callbacks into the local import history.
type Recorder struct {
	store   HistoryStore
	timeout time.Duration
}

func NewRecorder(store HistoryStore) *Recorder {
	return &Recorder{store: store, timeout: 5 * time.Second}
}

func (r *Recorder) OnProgress(p tracker.Progress) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.UpdateProgress(ctx, p.JobID, p.Percent, p.Message); err != nil {
		log.Printf("history: failed to record progress for job %s: %v", p.JobID, err)
	}
}

func (r *Recorder) OnComplete(p tracker.Progress) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.store.Complete(ctx, p.JobID, p.Message); err != nil {
		log.Printf("history: failed to record completion for job %s: %v", p.JobID, err)
	}
}

func (r *Recorder) OnFailed(jobID string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if ferr := r.store.FailJob(ctx, jobID, err.Error()); ferr != nil {
		log.Printf("history: failed to record failure for job %s: %v", jobID, ferr)
	}
}
