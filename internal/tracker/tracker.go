package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"prodimport/internal/models"
)

// DefaultInterval is the period between status checks.
const DefaultInterval = 500 * time.Millisecond

// MeterName is the instrumentation scope for polling counters.
const MeterName = "prodimport/tracker"

// ErrEmptyJobID is returned by Start when no job identifier is given.
var ErrEmptyJobID = errors.New("tracker: job id is required")

// StatusFetcher queries the remote status of an import job.
type StatusFetcher interface {
	ImportStatus(ctx context.Context, jobID string) (*models.ImportStatus, error)
}

// Options configures a Tracker.
type Options struct {
	// Interval between status checks. Defaults to DefaultInterval.
	Interval time.Duration
	// MaxConsecutiveFailures stops tracking and reports OnFailed after that
	// many failed checks in a row. Zero retries forever.
	MaxConsecutiveFailures int
}

// Tracker polls one import job at a time until the server reports it
// COMPLETED. Starting a new job replaces whatever was being tracked.
type Tracker struct {
	fetcher     StatusFetcher
	observer    Observer
	interval    time.Duration
	maxFailures int

	mu     sync.Mutex
	jobID  string
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}

	ticks    metric.Int64Counter
	failures metric.Int64Counter
}

// New creates an idle tracker.
func New(fetcher StatusFetcher, observer Observer, opts *Options) *Tracker {
	t := &Tracker{
		fetcher:  fetcher,
		observer: observer,
		interval: DefaultInterval,
	}
	if opts != nil {
		if opts.Interval > 0 {
			t.interval = opts.Interval
		}
		if opts.MaxConsecutiveFailures > 0 {
			t.maxFailures = opts.MaxConsecutiveFailures
		}
	}
	if t.observer == nil {
		t.observer = Observers(nil)
	}

	meter := otel.Meter(MeterName)
	var err error
	if t.ticks, err = meter.Int64Counter("import.poll.checks",
		metric.WithDescription("Status checks issued for import jobs")); err != nil {
		t.ticks = noop.Int64Counter{}
	}
	if t.failures, err = meter.Int64Counter("import.poll.failures",
		metric.WithDescription("Status checks that failed and were retried")); err != nil {
		t.failures = noop.Int64Counter{}
	}
	return t
}

// Start begins checking jobID every interval. Any cycle already running is
// cancelled first and has exited by the time Start returns.
func (t *Tracker) Start(ctx context.Context, jobID string) error {
	if jobID == "" {
		return ErrEmptyJobID
	}

	t.mu.Lock()
	prev := t.releaseLocked()
	t.gen++
	gen := t.gen
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.jobID = jobID
	t.cancel = cancel
	t.done = done
	t.mu.Unlock()

	if prev != nil {
		<-prev
	}

	log.Printf("Tracking import job %s (every %s)", jobID, t.interval)
	go t.run(loopCtx, gen, jobID, done)
	return nil
}

// Stop cancels the active cycle, if any, and forgets the job. An in-flight
// status request is aborted and its result discarded. Safe to call when idle.
func (t *Tracker) Stop() {
	t.mu.Lock()
	jobID := t.jobID
	prev := t.releaseLocked()
	t.mu.Unlock()

	if prev != nil {
		<-prev
		log.Printf("Stopped tracking import job %s", jobID)
	}
}

// JobID returns the job currently tracked, or "" when idle.
func (t *Tracker) JobID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.jobID
}

// Active reports whether a cycle is running.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cancel != nil
}

// Wait blocks until the current cycle ends or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// releaseLocked cancels the active cycle and returns its done channel.
func (t *Tracker) releaseLocked() chan struct{} {
	if t.cancel == nil {
		return nil
	}
	t.cancel()
	done := t.done
	t.cancel = nil
	t.done = nil
	t.jobID = ""
	t.gen++
	return done
}

// finish releases the cycle identified by gen. It reports false when the
// cycle was already superseded or stopped.
func (t *Tracker) finish(gen uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen || t.cancel == nil {
		return false
	}
	t.cancel()
	t.cancel = nil
	t.done = nil
	t.jobID = ""
	return true
}

func (t *Tracker) run(ctx context.Context, gen uint64, jobID string, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	consecutive := 0
	for {
		select {
		case <-ctx.Done():
			t.finish(gen)
			return
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			t.finish(gen)
			return
		}

		// Checks are serialized: a slow request delays the next tick instead
		// of overlapping with it, and ticks missed meanwhile are dropped.
		status, err := t.fetcher.ImportStatus(ctx, jobID)
		if ctx.Err() != nil {
			t.finish(gen)
			return
		}
		t.ticks.Add(ctx, 1, metric.WithAttributes(attribute.Bool("error", err != nil)))

		if err != nil {
			consecutive++
			t.failures.Add(ctx, 1)
			log.Printf("progress poll error: job %s: %v", jobID, err)
			if t.maxFailures > 0 && consecutive >= t.maxFailures {
				if t.finish(gen) {
					t.observer.OnFailed(jobID,
						fmt.Errorf("giving up after %d consecutive failed checks: %w", consecutive, err))
				}
				return
			}
			continue
		}
		consecutive = 0

		p := Evaluate(jobID, status)
		if p.Completed {
			if t.finish(gen) {
				log.Printf("Import job %s completed", jobID)
				t.observer.OnComplete(p)
			}
			return
		}
		t.observer.OnProgress(p)
	}
}
