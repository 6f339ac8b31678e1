package progress

import (
	"sync"
	"time"

	"prodimport/internal/tracker"
)

type EventType string

const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventStopped   EventType = "stopped"
)

// Event is what the console streams to browsers.
type Event struct {
	Type     EventType         `json:"type"`
	JobID    string            `json:"job_id"`
	Progress *tracker.Progress `json:"progress,omitempty"`
	Error    string            `json:"error,omitempty"`
	At       time.Time         `json:"at"`
}

// Hub keeps the latest event and fans events out to subscribers.
// Subscribers that fall behind lose events rather than block the tracker.
type Hub struct {
	mu     sync.RWMutex
	latest *Event
	subs   map[chan Event]struct{}
	buffer int
}

func NewHub() *Hub {
	return &Hub{
		subs:   make(map[chan Event]struct{}),
		buffer: 16,
	}
}

// Subscribe registers a new listener. The returned func unsubscribes and
// closes the channel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, h.buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Latest returns the most recent event, if any.
func (h *Hub) Latest() (Event, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.latest == nil {
		return Event{}, false
	}
	return *h.latest, true
}

// Publish records e as the latest event and delivers it to subscribers.
func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest = &e
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the number of active listeners.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) OnProgress(p tracker.Progress) {
	h.Publish(Event{Type: EventProgress, JobID: p.JobID, Progress: &p, At: p.At})
}

func (h *Hub) OnComplete(p tracker.Progress) {
	h.Publish(Event{Type: EventCompleted, JobID: p.JobID, Progress: &p, At: p.At})
}

func (h *Hub) OnFailed(jobID string, err error) {
	h.Publish(Event{Type: EventFailed, JobID: jobID, Error: err.Error()})
}
