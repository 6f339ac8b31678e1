package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"prodimport/internal/memorydb"
	"prodimport/internal/tracker"
)

// DefaultTTL is how long a mirrored snapshot lives.
const DefaultTTL = 24 * time.Hour

// Store is the key-value store snapshots are kept in. A missing key is
// reported with an error that memorydb.IsMissing recognizes.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Snapshot is the JSON stored for each tracked job.
type Snapshot struct {
	JobID     string    `json:"job_id"`
	Status    string    `json:"status"`
	Percent   float64   `json:"percent"`
	Message   string    `json:"message"`
	Completed bool      `json:"completed"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Mirror copies the latest state of each job into a key-value store so
// other processes can read it.
type Mirror struct {
	store Store
	ttl   time.Duration
}

func NewMirror(store Store, ttl time.Duration) *Mirror {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Mirror{store: store, ttl: ttl}
}

// Key returns the key a job's snapshot is stored under.
func Key(jobID string) string {
	return "import:" + jobID
}

func (m *Mirror) OnProgress(p tracker.Progress) {
	m.write(fromProgress(p))
}

func (m *Mirror) OnComplete(p tracker.Progress) {
	m.write(fromProgress(p))
}

func (m *Mirror) OnFailed(jobID string, err error) {
	m.write(Snapshot{
		JobID:     jobID,
		Status:    "FAILED",
		Error:     err.Error(),
		UpdatedAt: time.Now().UTC(),
	})
}

// Load returns the stored snapshot of jobID, or nil when there is none.
func (m *Mirror) Load(ctx context.Context, jobID string) (*Snapshot, error) {
	data, err := m.store.Get(ctx, Key(jobID))
	if memorydb.IsMissing(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("mirror: bad snapshot for job %s: %w", jobID, err)
	}
	return &s, nil
}

// Forget removes the snapshot of each job.
func (m *Mirror) Forget(ctx context.Context, jobIDs ...string) error {
	if len(jobIDs) == 0 {
		return nil
	}
	keys := make([]string, len(jobIDs))
	for i, id := range jobIDs {
		keys[i] = Key(id)
	}
	return m.store.Del(ctx, keys...)
}

// Event converts a snapshot back into the event a live tracker would
// have published for it.
func (s *Snapshot) Event() Event {
	e := Event{JobID: s.JobID, At: s.UpdatedAt}
	switch {
	case s.Error != "":
		e.Type = EventFailed
		e.Error = s.Error
	case s.Completed:
		e.Type = EventCompleted
	default:
		e.Type = EventProgress
	}
	if e.Type != EventFailed {
		e.Progress = &tracker.Progress{
			JobID:     s.JobID,
			Status:    s.Status,
			Percent:   s.Percent,
			Message:   s.Message,
			Completed: s.Completed,
			At:        s.UpdatedAt,
		}
	}
	return e
}

func fromProgress(p tracker.Progress) Snapshot {
	return Snapshot{
		JobID:     p.JobID,
		Status:    p.Status,
		Percent:   p.Percent,
		Message:   p.Message,
		Completed: p.Completed,
		UpdatedAt: p.At.UTC(),
	}
}

func (m *Mirror) write(s Snapshot) {
	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("mirror: failed to encode job %s: %v", s.JobID, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := m.store.Set(ctx, Key(s.JobID), string(data), m.ttl); err != nil {
		log.Printf("mirror: failed to store job %s: %v", s.JobID, err)
	}
}
