package components

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"prodimport/internal/models"
)

func TestHomeEscapesSessionFields(t *testing.T) {
	var buf bytes.Buffer
	err := Home([]models.ImportSession{{
		FileName:  "<script>x</script>.csv",
		Rows:      3,
		Status:    models.SessionStatusCompleted,
		Percent:   100,
		CreatedAt: time.Now(),
	}}).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "&lt;script&gt;x&lt;/script&gt;.csv")
	assert.Contains(t, out, "<td>100%</td>")
	assert.Contains(t, out, `<a href="/" class="active">`)
	assert.Contains(t, out, "<title>Import · prodimport</title>")
}

func TestHomeShowsPercentUnrounded(t *testing.T) {
	var buf bytes.Buffer
	err := Home([]models.ImportSession{{
		FileName:  "products.csv",
		Status:    models.SessionStatusTracking,
		Percent:   42.5,
		CreatedAt: time.Now(),
	}}).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<td>42.5%</td>")
	assert.Contains(t, out, "Number(p.percent ?? 0)")
	assert.NotContains(t, out, "Math.round")
}

func TestPercentText(t *testing.T) {
	assert.Equal(t, "0%", percentText(0))
	assert.Equal(t, "33.3%", percentText(33.3))
	assert.Equal(t, "100%", percentText(100))
}

func TestProductsPager(t *testing.T) {
	var buf bytes.Buffer
	page := &models.ProductPage{
		Results:    []models.Product{{ID: "1", SKU: "A-1", Name: "Widget", Active: true}},
		Page:       2,
		TotalPages: 3,
	}
	err := Products(page, models.ProductFilter{Name: "wid"}, "").Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Page 2 of 3")
	assert.Contains(t, out, "/products?name=wid&amp;page=1")
	assert.Contains(t, out, "/products?name=wid&amp;page=3")
	assert.Contains(t, out, `value="wid"`)
	assert.Contains(t, out, `<option value="" selected>Any</option>`)
}

func TestProductsEditorControls(t *testing.T) {
	var buf bytes.Buffer
	page := &models.ProductPage{
		Results:    []models.Product{{ID: "p-9", SKU: "A-1", Name: "Widget"}},
		Page:       1,
		TotalPages: 1,
	}
	err := Products(page, models.ProductFilter{Active: "false"}, "").Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `<button type="button" class="product-edit" data-id="p-9">Edit</button>`)
	assert.Contains(t, out, `class="product-delete danger" data-id="p-9"`)
	assert.Contains(t, out, `id="product-delete-all"`)
	assert.Contains(t, out, `<form id="product-form" class="editor" hidden>`)
	assert.Contains(t, out, `<option value="false" selected>Inactive</option>`)
	assert.Contains(t, out, `send("PATCH", "/api/products/" + id, body)`)
	assert.NotContains(t, out, "&larr; Prev")
	assert.NotContains(t, out, "Next &rarr;")
}

func TestProductsWithoutPage(t *testing.T) {
	var buf bytes.Buffer
	err := Products(nil, models.ProductFilter{}, "remote api unavailable").Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `<div class="error">remote api unavailable</div>`)
	assert.NotContains(t, out, "No products found.")
	assert.NotContains(t, out, "<table>")
}

func TestWebhooksError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Webhooks(nil, "connection refused").Render(context.Background(), &buf))
	assert.Contains(t, buf.String(), `<div class="error">connection refused</div>`)
	assert.NotContains(t, buf.String(), "No webhooks configured")
}

func TestWebhooksEditorControls(t *testing.T) {
	var buf bytes.Buffer
	hooks := []models.Webhook{{ID: 7, URL: "https://example.com/hook", Event: models.EventProductUpdated, Enabled: true}}
	require.NoError(t, Webhooks(hooks, "").Render(context.Background(), &buf))

	out := buf.String()
	assert.Contains(t, out, `<button type="button" class="webhook-test" data-id="7">Test</button>`)
	assert.Contains(t, out, `class="webhook-edit" data-id="7"`)
	assert.Contains(t, out, `class="webhook-delete danger" data-id="7"`)
	for _, event := range models.WebhookEvents {
		assert.Contains(t, out, `<option value="`+event+`">`+event+`</option>`)
	}
	assert.Contains(t, out, `"/api/webhooks/" + b.dataset.id + "/test"`)
	assert.NotContains(t, out, "No webhooks configured")
}
