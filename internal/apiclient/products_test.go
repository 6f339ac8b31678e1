package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodimport/internal/models"
)

func TestListProductsSendsOnlyNonEmptyFilters(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "3", q.Get("page"))
		assert.Equal(t, "A-1", q.Get("sku"))
		assert.Equal(t, "true", q.Get("active"))
		assert.False(t, q.Has("name"))
		assert.False(t, q.Has("description"))

		writeJSON(w, http.StatusOK, map[string]any{
			"results": []map[string]any{{"id": "7", "sku": "A-1", "name": "Widget", "active": true}},
			"count":   45,
		})
	})

	page, err := c.ListProducts(context.Background(), 3, models.ProductFilter{SKU: " A-1 ", Name: "  ", Active: "true"})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 45, page.Count)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Widget", page.Results[0].Name)
	assert.True(t, page.HasPrev())
	assert.False(t, page.HasNext())
}

func TestDecodeProductPage(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantLen   int
		wantPages int
	}{
		{"bare array", `[{"id":"1","sku":"a"},{"id":"2","sku":"b"}]`, 2, 1},
		{"reported total", `{"results":[],"count":0,"total_pages":4}`, 0, 4},
		{"count only", `{"results":[{"id":"1","sku":"a"}],"count":21}`, 1, 2},
		{"empty object", `{}`, 0, 1},
		{"null results", `{"results":null}`, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := decodeProductPage(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.NotNil(t, page.Results)
			assert.Len(t, page.Results, tt.wantLen)
			assert.Equal(t, tt.wantPages, page.TotalPages)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 7, totalPages(7, 0, 0))
	assert.Equal(t, 1, totalPages(0, 20, 20))
	assert.Equal(t, 2, totalPages(0, 21, 20))
	assert.Equal(t, 1, totalPages(0, 0, 5))
	assert.Equal(t, 1, totalPages(0, 0, 0))
}

func TestProductCRUD(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, map[string]any{"id": "7", "sku": "A-1"})
		case http.MethodPost, http.MethodPatch:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var in models.ProductInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "A-1", in.SKU)
			writeJSON(w, http.StatusOK, map[string]any{"id": "7", "sku": in.SKU, "name": in.Name})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		}
	})
	ctx := context.Background()

	p, err := c.GetProduct(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, "A-1", p.SKU)

	p, err = c.CreateProduct(ctx, models.ProductInput{SKU: " A-1 ", Name: "Widget"})
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)

	_, err = c.UpdateProduct(ctx, "7", models.ProductInput{SKU: "A-1"})
	require.NoError(t, err)

	require.NoError(t, c.DeleteProduct(ctx, "7"))
	require.NoError(t, c.DeleteAllProducts(ctx))

	assert.Equal(t, []string{
		"GET /api/products/7/",
		"POST /api/products/",
		"PATCH /api/products/7/",
		"DELETE /api/products/7/",
		"DELETE /api/products/",
	}, calls)
}

func TestCreateProductRequiresSKU(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})
	_, err := c.CreateProduct(context.Background(), models.ProductInput{SKU: "   "})
	assert.ErrorIs(t, err, models.ErrEmptySKU)
}

func TestWebhookCalls(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch {
		case r.URL.Path == "/api/webhooks/" && r.Method == http.MethodGet:
			writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "url": "https://hooks.example.com", "event": "product.created", "enabled": true}})
		case strings.HasSuffix(r.URL.Path, "/test/"):
			writeJSON(w, http.StatusOK, map[string]any{"status": 204, "response": ""})
		case r.Method == http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			body, _ := io.ReadAll(r.Body)
			var in models.WebhookInput
			require.NoError(t, json.Unmarshal(body, &in))
			writeJSON(w, http.StatusOK, map[string]any{"id": 1, "url": in.URL, "event": in.Event, "enabled": in.Enabled})
		}
	})
	ctx := context.Background()

	hooks, err := c.ListWebhooks(ctx)
	require.NoError(t, err)
	require.Len(t, hooks, 1)
	assert.Equal(t, int64(1), hooks[0].ID)

	w, err := c.CreateWebhook(ctx, models.WebhookInput{URL: "https://hooks.example.com"})
	require.NoError(t, err)
	assert.Equal(t, models.EventProductCreated, w.Event)

	w, err = c.UpdateWebhook(ctx, 1, models.WebhookInput{URL: "https://hooks.example.com", Event: models.EventImportCompleted, Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, models.EventImportCompleted, w.Event)

	result, err := c.TestWebhook(ctx, 1)
	require.NoError(t, err)
	assert.True(t, result.Passed())

	require.NoError(t, c.DeleteWebhook(ctx, 1))

	assert.Equal(t, []string{
		"GET /api/webhooks/",
		"POST /api/webhooks/",
		"PUT /api/webhooks/1/",
		"POST /api/webhooks/1/test/",
		"DELETE /api/webhooks/1/",
	}, calls)
}

func TestTestWebhookUnreachableReceiver(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "connection refused"})
	})

	result, err := c.TestWebhook(context.Background(), 3)
	require.NoError(t, err)
	assert.False(t, result.Passed())
	assert.Equal(t, "connection refused", result.Error)
}

func TestCreateWebhookValidates(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request must not be sent")
	})
	_, err := c.CreateWebhook(context.Background(), models.WebhookInput{URL: "ftp://x", Event: models.EventProductDeleted})
	assert.ErrorIs(t, err, models.ErrInvalidURL)

	_, err = c.CreateWebhook(context.Background(), models.WebhookInput{URL: "https://x.example.com", Event: "product.exploded"})
	assert.ErrorIs(t, err, models.ErrInvalidEvent)
}
