package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodimport/internal/apiclient"
	"prodimport/internal/models"
	"prodimport/internal/progress"
	"prodimport/internal/storage"
	"prodimport/internal/tracker"
)

type testConsole struct {
	e       *echo.Echo
	tracker *tracker.Tracker
	hub     *progress.Hub
	history *storage.ImportRepository
	mirror  *progress.Mirror
}

// memoryStore is an in-process stand-in for Redis.
type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values == nil {
		m.values = map[string]string{}
	}
	m.values[key] = value.(string)
	return nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func newTestConsole(t *testing.T, remote http.HandlerFunc) *testConsole {
	t.Helper()
	return newTestConsoleWithMirror(t, remote, nil)
}

func newTestConsoleWithMirror(t *testing.T, remote http.HandlerFunc, mirror *progress.Mirror) *testConsole {
	t.Helper()

	srv := httptest.NewServer(remote)
	t.Cleanup(srv.Close)

	client, err := apiclient.NewClient(&apiclient.Options{BaseURL: srv.URL + "/api"})
	require.NoError(t, err)

	db, err := storage.Open(filepath.Join(t.TempDir(), "console.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	history := storage.NewImportRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := progress.NewHub()
	observers := tracker.Observers{progress.NewRecorder(history), hub}
	if mirror != nil {
		observers = append(observers, mirror)
	}
	tr := tracker.New(client, observers, &tracker.Options{Interval: 5 * time.Millisecond})
	t.Cleanup(tr.Stop)

	e := echo.New()
	Register(e, &Console{
		Client:   client,
		Hub:      hub,
		Pages:    NewPageHandler(client, history),
		Imports:  NewImportHandler(ctx, client, tr, hub, history, mirror),
		Products: NewProductHandler(client),
		Webhooks: NewWebhookHandler(client),
	})

	return &testConsole{e: e, tracker: tr, hub: hub, history: history, mirror: mirror}
}

func (tc *testConsole) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	tc.e.ServeHTTP(rec, req)
	return rec
}

func uploadRequest(t *testing.T, name, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestUploadTracksJobToCompletion(t *testing.T) {
	var polls atomic.Int32
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/imports/":
			writeJSON(w, http.StatusAccepted, map[string]any{"job_id": "42", "message": "queued"})
		case r.URL.Path == "/api/imports/status/42/":
			if polls.Add(1) < 3 {
				writeJSON(w, http.StatusOK, map[string]any{"status": "IMPORTING", "percent": 50, "message": "Importing"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"status": "COMPLETED", "percent": 99, "message": "Import complete"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	rec := tc.do(uploadRequest(t, "products.csv", "sku,name\nA-1,Widget\nA-2,Gadget\n"))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "42", resp.JobID)
	assert.Equal(t, 2, resp.Rows)
	assert.Equal(t, []string{"sku", "name"}, resp.Columns)
	assert.False(t, resp.Converted)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tc.tracker.Wait(ctx))
	assert.False(t, tc.tracker.Active())

	session, err := tc.history.GetByJobID(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, models.SessionStatusCompleted, session.Status)
	assert.Equal(t, 100.0, session.Percent)
	assert.Equal(t, "Import complete", session.Message)

	rec = tc.do(httptest.NewRequest(http.MethodGet, "/api/imports/current", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "completed", body["type"])
	assert.Equal(t, false, body["active"])
	assert.Equal(t, 100.0, body["progress"].(map[string]any)["percent"])
}

func TestUploadFailureDoesNotStartTracking(t *testing.T) {
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Invalid CSV"})
	})

	rec := tc.do(uploadRequest(t, "products.csv", "sku\nA-1\n"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Invalid CSV", decodeBody(t, rec)["error"])
	assert.False(t, tc.tracker.Active())

	sessions, err := tc.history.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, models.SessionStatusFailed, sessions[0].Status)
	assert.Equal(t, "Invalid CSV", sessions[0].Error)

	rec = tc.do(httptest.NewRequest(http.MethodGet, "/api/imports/current", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadRejectsFileWithoutSKU(t *testing.T) {
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("remote must not be called")
	})

	rec := tc.do(uploadRequest(t, "products.csv", "name\nWidget\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = tc.do(httptest.NewRequest(http.MethodPost, "/api/imports", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadReplacesTrackedImport(t *testing.T) {
	var uploads, firstPolls, secondPolls atomic.Int32
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			jobID := "100"
			if uploads.Add(1) > 1 {
				jobID = "200"
			}
			writeJSON(w, http.StatusAccepted, map[string]any{"job_id": jobID})
		case r.URL.Path == "/api/imports/status/100/":
			firstPolls.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{"status": "RUNNING", "percent": 30})
		case r.URL.Path == "/api/imports/status/200/":
			secondPolls.Add(1)
			writeJSON(w, http.StatusOK, map[string]any{"status": "RUNNING", "percent": 5})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	ctx := context.Background()

	rec := tc.do(uploadRequest(t, "first.csv", "sku\nA-1\n"))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Eventually(t, func() bool { return firstPolls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	rec = tc.do(uploadRequest(t, "second.csv", "sku\nB-1\n"))
	require.Equal(t, http.StatusAccepted, rec.Code)

	// the first job's loop has exited, so the newest event is already the second job's
	latest, ok := tc.hub.Latest()
	require.True(t, ok)
	assert.Equal(t, "200", latest.JobID)
	assert.Equal(t, "200", tc.tracker.JobID())

	time.Sleep(20 * time.Millisecond)
	settled := firstPolls.Load()
	require.Eventually(t, func() bool { return secondPolls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, settled, firstPolls.Load())

	first, err := tc.history.GetByJobID(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, first.Status)
	second, err := tc.history.GetByJobID(ctx, "200")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusTracking, second.Status)

	rec = tc.do(httptest.NewRequest(http.MethodGet, "/api/imports/current", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "200", body["job_id"])
	assert.Equal(t, true, body["active"])
}

func TestStopCurrent(t *testing.T) {
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			writeJSON(w, http.StatusAccepted, map[string]any{"job_id": 7})
		default:
			writeJSON(w, http.StatusOK, map[string]any{"status": "PARSING", "percent": 0})
		}
	})

	rec := tc.do(httptest.NewRequest(http.MethodDelete, "/api/imports/current", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = tc.do(uploadRequest(t, "products.csv", "sku\nA-1\n"))
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, tc.tracker.Active())

	rec = tc.do(httptest.NewRequest(http.MethodDelete, "/api/imports/current", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", decodeBody(t, rec)["job_id"])
	assert.False(t, tc.tracker.Active())

	session, err := tc.history.GetByJobID(context.Background(), "7")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, session.Status)

	latest, ok := tc.hub.Latest()
	require.True(t, ok)
	assert.Equal(t, progress.EventStopped, latest.Type)
}

func TestHistoryAndStats(t *testing.T) {
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {})
	ctx := context.Background()

	for _, name := range []string{"a.csv", "b.csv"} {
		s := &models.ImportSession{FileName: name}
		require.NoError(t, tc.history.Create(ctx, s))
		require.NoError(t, tc.history.Fail(ctx, s.ID, "boom"))
	}

	rec := tc.do(httptest.NewRequest(http.MethodGet, "/api/imports/history?limit=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var sessions []models.ImportSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
	assert.Len(t, sessions, 1)

	rec = tc.do(httptest.NewRequest(http.MethodGet, "/api/imports/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, decodeBody(t, rec)["failed"])
}

func TestHistorySessionLookupAndDelete(t *testing.T) {
	mirror := progress.NewMirror(&memoryStore{}, time.Hour)
	tc := newTestConsoleWithMirror(t, func(w http.ResponseWriter, r *http.Request) {}, mirror)
	ctx := context.Background()

	s := &models.ImportSession{FileName: "a.csv", Rows: 3}
	require.NoError(t, tc.history.Create(ctx, s))
	require.NoError(t, tc.history.AttachJob(ctx, s.ID, "55"))
	require.NoError(t, tc.history.Cancel(ctx, "55"))
	mirror.OnProgress(tracker.Progress{JobID: "55", Percent: 70, Message: "importing", At: time.Now()})

	rec := tc.do(httptest.NewRequest(http.MethodGet, "/api/imports/history/"+s.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "55", decodeBody(t, rec)["job_id"])

	rec = tc.do(httptest.NewRequest(http.MethodGet, "/api/imports/history/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// nothing tracked since start, so the snapshot of the last upload is served
	rec = tc.do(httptest.NewRequest(http.MethodGet, "/api/imports/current", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "progress", body["type"])
	assert.Equal(t, "55", body["job_id"])
	assert.Equal(t, false, body["active"])
	assert.Equal(t, 70.0, body["progress"].(map[string]any)["percent"])

	rec = tc.do(httptest.NewRequest(http.MethodDelete, "/api/imports/history/"+s.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	snap, err := mirror.Load(ctx, "55")
	require.NoError(t, err)
	assert.Nil(t, snap)
	got, err := tc.history.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	rec = tc.do(httptest.NewRequest(http.MethodGet, "/api/imports/current", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteTrackedSessionConflicts(t *testing.T) {
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusAccepted, map[string]any{"job_id": 8})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "PARSING"})
	})

	rec := tc.do(uploadRequest(t, "products.csv", "sku\nA-1\n"))
	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = tc.do(httptest.NewRequest(http.MethodDelete, "/api/imports/history/"+resp.SessionID, nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProductRelay(t *testing.T) {
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/products/" && r.Method == http.MethodGet:
			assert.Equal(t, "2", r.URL.Query().Get("page"))
			assert.Equal(t, "lamp", r.URL.Query().Get("name"))
			writeJSON(w, http.StatusOK, map[string]any{"results": []any{}, "count": 0})
		case r.URL.Path == "/api/products/missing/":
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not found."})
		case r.URL.Path == "/api/products/" && r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/products/" && r.Method == http.MethodPost:
			writeJSON(w, http.StatusCreated, map[string]any{"id": "9", "sku": "Z-1"})
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	})

	rec := tc.do(httptest.NewRequest(http.MethodGet, "/api/products?page=2&name=lamp", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decodeBody(t, rec)["total_pages"])

	rec = tc.do(httptest.NewRequest(http.MethodGet, "/api/products/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found.", decodeBody(t, rec)["error"])

	rec = tc.do(httptest.NewRequest(http.MethodDelete, "/api/products", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"sku":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = tc.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.ErrEmptySKU.Error(), decodeBody(t, rec)["error"])

	req = httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"sku":"Z-1","name":"Zed"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = tc.do(req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestRemoteUnreachableIsBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	client, err := apiclient.NewClient(&apiclient.Options{BaseURL: srv.URL + "/api", Timeout: time.Second})
	require.NoError(t, err)
	srv.Close()

	e := echo.New()
	h := NewProductHandler(client)
	e.GET("/api/products", h.List)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestWebhookRelay(t *testing.T) {
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/webhooks/3/test/":
			writeJSON(w, http.StatusOK, map[string]any{"status": 500, "response": "oops"})
		case "/api/webhooks/4/test/":
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "timed out"})
		case "/api/webhooks/3/":
			assert.Equal(t, http.MethodPut, r.Method)
			writeJSON(w, http.StatusOK, map[string]any{"id": 3, "url": "https://hooks.example.com/x", "event": "product.deleted", "enabled": false})
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	})

	rec := tc.do(httptest.NewRequest(http.MethodGet, "/api/webhooks/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = tc.do(httptest.NewRequest(http.MethodPost, "/api/webhooks/3/test", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 500.0, body["status"])
	assert.Equal(t, false, body["passed"])

	rec = tc.do(httptest.NewRequest(http.MethodPost, "/api/webhooks/4/test", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "timed out", decodeBody(t, rec)["error"])

	req := httptest.NewRequest(http.MethodPut, "/api/webhooks/3",
		strings.NewReader(`{"url":"https://hooks.example.com/x","event":"product.deleted"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = tc.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "product.deleted", decodeBody(t, rec)["event"])

	req = httptest.NewRequest(http.MethodPost, "/api/webhooks",
		strings.NewReader(`{"url":"not a url","event":"product.created"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = tc.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPagesAndHealth(t *testing.T) {
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/":
			writeJSON(w, http.StatusOK, []map[string]any{{"id": "1", "sku": "A-1", "name": "Widget"}})
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})

	rec := tc.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No imports yet.")

	rec = tc.do(httptest.NewRequest(http.MethodGet, "/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Widget")

	rec = tc.do(httptest.NewRequest(http.MethodGet, "/webhooks", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="error"`)

	rec = tc.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["api"])
	assert.Equal(t, "disabled", body["redis"])
	assert.Equal(t, 0.0, body["watchers"])
}

func TestStreamSendsHubEvents(t *testing.T) {
	tc := newTestConsole(t, func(w http.ResponseWriter, r *http.Request) {})
	tc.hub.OnProgress(tracker.Progress{JobID: "42", Percent: 10})

	srv := httptest.NewServer(tc.e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/imports/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first progress.Event
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, progress.EventProgress, first.Type)
	assert.Equal(t, 10.0, first.Progress.Percent)

	require.Eventually(t, func() bool { return tc.hub.Subscribers() == 1 }, 2*time.Second, 5*time.Millisecond)
	tc.hub.OnComplete(tracker.Progress{JobID: "42", Percent: 100, Completed: true})

	var next progress.Event
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, progress.EventCompleted, next.Type)
}
