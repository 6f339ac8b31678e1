package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodimport/internal/tracker"
)

type fakeHistory struct {
	mu       sync.Mutex
	progress []string
	complete []string
	failed   []string
	err      error
}

func (f *fakeHistory) UpdateProgress(_ context.Context, jobID string, percent float64, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progress = append(f.progress, jobID+":"+message)
	return f.err
}

func (f *fakeHistory) Complete(_ context.Context, jobID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.complete = append(f.complete, jobID+":"+message)
	return f.err
}

func (f *fakeHistory) FailJob(_ context.Context, jobID, errorMsg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = append(f.failed, jobID+":"+errorMsg)
	return f.err
}

func TestRecorder(t *testing.T) {
	store := &fakeHistory{}
	r := NewRecorder(store)

	r.OnProgress(tracker.Progress{JobID: "42", Percent: 40, Message: "parsing"})
	r.OnComplete(tracker.Progress{JobID: "42", Percent: 100, Message: "done"})
	r.OnFailed("43", errors.New("unreachable"))

	assert.Equal(t, []string{"42:parsing"}, store.progress)
	assert.Equal(t, []string{"42:done"}, store.complete)
	assert.Equal(t, []string{"43:unreachable"}, store.failed)
}

func TestRecorderSwallowsStoreErrors(t *testing.T) {
	store := &fakeHistory{err: errors.New("disk full")}
	r := NewRecorder(store)

	assert.NotPanics(t, func() {
		r.OnProgress(tracker.Progress{JobID: "42"})
		r.OnComplete(tracker.Progress{JobID: "42"})
	})
}

func TestHubBroadcastsAndKeepsLatest(t *testing.T) {
	h := NewHub()
	_, ok := h.Latest()
	assert.False(t, ok)

	a, unsubA := h.Subscribe()
	b, unsubB := h.Subscribe()
	defer unsubB()
	assert.Equal(t, 2, h.Subscribers())

	h.OnProgress(tracker.Progress{JobID: "42", Percent: 10})

	for _, ch := range []<-chan Event{a, b} {
		e := <-ch
		assert.Equal(t, EventProgress, e.Type)
		assert.Equal(t, "42", e.JobID)
		require.NotNil(t, e.Progress)
		assert.Equal(t, 10.0, e.Progress.Percent)
	}

	unsubA()
	unsubA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, h.Subscribers())

	h.OnComplete(tracker.Progress{JobID: "42", Percent: 100, Completed: true})
	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, EventCompleted, latest.Type)
	assert.Equal(t, EventCompleted, (<-b).Type)
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	h := NewHub()
	ch, unsub := h.Subscribe()
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.OnProgress(tracker.Progress{JobID: "42", Percent: float64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Len(t, ch, h.buffer)
	latest, _ := h.Latest()
	assert.Equal(t, 99.0, latest.Progress.Percent)
}

func TestHubFailedEvent(t *testing.T) {
	h := NewHub()
	h.OnFailed("42", errors.New("gave up"))

	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, EventFailed, latest.Type)
	assert.Equal(t, "gave up", latest.Error)
	assert.Nil(t, latest.Progress)
	assert.False(t, latest.At.IsZero())
}

type fakeStore struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.values, k)
		delete(f.ttls, k)
	}
	return nil
}

func (f *fakeStore) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.values == nil {
		f.values = map[string]string{}
		f.ttls = map[string]time.Duration{}
	}
	f.values[key] = value.(string)
	f.ttls[key] = expiration
	return nil
}

func TestMirrorWritesSnapshots(t *testing.T) {
	store := &fakeStore{}
	m := NewMirror(store, 0)

	m.OnProgress(tracker.Progress{JobID: "42", Percent: 55, Message: "importing", Status: "IMPORTING", At: time.Now()})

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(store.values["import:42"]), &snap))
	assert.Equal(t, 55.0, snap.Percent)
	assert.Equal(t, "IMPORTING", snap.Status)
	assert.False(t, snap.Completed)
	assert.Equal(t, DefaultTTL, store.ttls["import:42"])

	m.OnComplete(tracker.Progress{JobID: "42", Percent: 100, Status: "COMPLETED", Completed: true, At: time.Now()})
	require.NoError(t, json.Unmarshal([]byte(store.values["import:42"]), &snap))
	assert.True(t, snap.Completed)
	assert.Equal(t, 100.0, snap.Percent)

	m.OnFailed("43", errors.New("gave up"))
	require.NoError(t, json.Unmarshal([]byte(store.values[Key("43")]), &snap))
	assert.Equal(t, "FAILED", snap.Status)
	assert.Equal(t, "gave up", snap.Error)
}

func TestMirrorLoadAndForget(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}
	m := NewMirror(store, time.Hour)

	snap, err := m.Load(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, snap)

	m.OnProgress(tracker.Progress{JobID: "42", Percent: 30, Message: "parsing", At: time.Now()})
	m.OnFailed("43", errors.New("gave up"))

	snap, err = m.Load(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, snap)
	e := snap.Event()
	assert.Equal(t, EventProgress, e.Type)
	require.NotNil(t, e.Progress)
	assert.Equal(t, 30.0, e.Progress.Percent)
	assert.Equal(t, "parsing", e.Progress.Message)

	snap, err = m.Load(ctx, "43")
	require.NoError(t, err)
	e = snap.Event()
	assert.Equal(t, EventFailed, e.Type)
	assert.Equal(t, "gave up", e.Error)
	assert.Nil(t, e.Progress)

	require.NoError(t, m.Forget(ctx, "42", "43"))
	assert.Empty(t, store.values)

	store.values["import:44"] = "{not json"
	_, err = m.Load(ctx, "44")
	assert.Error(t, err)
}

func TestMirrorIgnoresStoreErrors(t *testing.T) {
	m := NewMirror(&fakeStore{err: errors.New("connection refused")}, time.Minute)
	assert.NotPanics(t, func() {
		m.OnProgress(tracker.Progress{JobID: "42"})
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestLine(t *testing.T) {
	assert.Equal(t, "[------------------------------]   0% completed", Line(tracker.Progress{}))
	assert.Equal(t, "[###############---------------]  50% completed  halfway",
		Line(tracker.Progress{Percent: 50, Message: "halfway"}))
	assert.Equal(t, "[##############################] 100% completed", Line(tracker.Progress{Percent: 100}))
}

func TestPrinterText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText)

	p.OnProgress(tracker.Progress{JobID: "42", Percent: 50})
	p.OnComplete(tracker.Progress{JobID: "42", Percent: 100, Completed: true})

	out := buf.String()
	assert.Contains(t, out, "\r[###############---------------]  50% completed")
	assert.True(t, strings.HasSuffix(out, "100% completed\n"))
}

func TestPrinterTextFailure(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText)

	p.OnProgress(tracker.Progress{JobID: "42", Percent: 10})
	p.OnFailed("42", errors.New("gave up"))

	assert.True(t, strings.HasSuffix(buf.String(), "completed\nImport 42 failed: gave up\n"))
}

func TestPrinterJSONLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON)

	p.OnProgress(tracker.Progress{JobID: "42", Percent: 20, Message: "parsing"})
	p.OnComplete(tracker.Progress{JobID: "42", Percent: 100, Completed: true})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "progress", first["event"])
	assert.Equal(t, "42", first["job_id"])
	assert.Equal(t, 20.0, first["percent"])
	assert.Equal(t, "parsing", first["message"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "completed", second["event"])
	assert.Equal(t, true, second["completed"])
}
