package apiclient

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"prodimport/internal/models"
)

func webhookPath(id int64) string {
	return "/webhooks/" + strconv.FormatInt(id, 10) + "/"
}

// ListWebhooks returns every configured webhook.
func (c *Client) ListWebhooks(ctx context.Context) ([]models.Webhook, error) {
	hooks := []models.Webhook{}
	if err := c.do(ctx, &request{method: http.MethodGet, path: "/webhooks/"}, &hooks); err != nil {
		return nil, err
	}
	return hooks, nil
}

// GetWebhook fetches a single webhook.
func (c *Client) GetWebhook(ctx context.Context, id int64) (*models.Webhook, error) {
	var w models.Webhook
	if err := c.do(ctx, &request{method: http.MethodGet, path: webhookPath(id)}, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// CreateWebhook registers a new webhook.
func (c *Client) CreateWebhook(ctx context.Context, in models.WebhookInput) (*models.Webhook, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	req, err := c.jsonRequest(http.MethodPost, "/webhooks/", in)
	if err != nil {
		return nil, err
	}
	var w models.Webhook
	if err := c.do(ctx, req, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// UpdateWebhook replaces a webhook's url, event and enabled flag.
func (c *Client) UpdateWebhook(ctx context.Context, id int64, in models.WebhookInput) (*models.Webhook, error) {
	if err := in.Normalize(); err != nil {
		return nil, err
	}
	req, err := c.jsonRequest(http.MethodPut, webhookPath(id), in)
	if err != nil {
		return nil, err
	}
	var w models.Webhook
	if err := c.do(ctx, req, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWebhook removes a webhook.
func (c *Client) DeleteWebhook(ctx context.Context, id int64) error {
	return c.do(ctx, &request{method: http.MethodDelete, path: webhookPath(id)}, nil)
}

// TestWebhook asks the server to send a test event to the webhook's url.
// The returned Status is the receiver's HTTP status, not the API's. When the
// receiver could not be reached the API answers 500 with {"error": ...},
// which is reported in Error rather than as a failed call.
func (c *Client) TestWebhook(ctx context.Context, id int64) (*models.WebhookTestResult, error) {
	var result models.WebhookTestResult
	req := &request{method: http.MethodPost, path: webhookPath(id) + "test/"}
	if err := c.do(ctx, req, &result); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusInternalServerError {
			if body, ok := apiErr.Body.(map[string]any); ok {
				if msg, ok := body["error"].(string); ok {
					return &models.WebhookTestResult{Error: msg}, nil
				}
			}
		}
		return nil, err
	}
	return &result, nil
}
