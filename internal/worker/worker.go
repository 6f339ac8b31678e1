package worker

import (
	"context"
	"log"
	"sync"
	"time"
)

// Cleaner removes finished import sessions older than a number of days
type Cleaner interface {
	CleanupFinished(ctx context.Context, olderThanDays int) (int64, error)
}

// Worker periodically prunes the local import history
type Worker struct {
	history       Cleaner
	retentionDays int
	interval      time.Duration
	stop          chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
}

// NewWorker creates a new worker that keeps retentionDays of finished sessions
func NewWorker(history Cleaner, retentionDays int) *Worker {
	return &Worker{
		history:       history,
		retentionDays: retentionDays,
		interval:      1 * time.Hour,
		stop:          make(chan struct{}),
	}
}

// SetInterval sets the sweep interval
func (w *Worker) SetInterval(interval time.Duration) {
	if interval > 0 {
		w.interval = interval
	}
}

// Start sweeps once immediately and then every interval
func (w *Worker) Start(ctx context.Context) {
	w.wg.Add(1)
	go w.run(ctx)
	log.Printf("History worker started (retention %d days)", w.retentionDays)
}

// Stop gracefully stops the worker
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
	log.Println("History worker stopped")
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *Worker) sweep(ctx context.Context) {
	if w.retentionDays <= 0 {
		return
	}
	n, err := w.history.CleanupFinished(ctx, w.retentionDays)
	if err != nil {
		log.Printf("Error cleaning up import history: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Removed %d finished import sessions older than %d days", n, w.retentionDays)
	}
}
