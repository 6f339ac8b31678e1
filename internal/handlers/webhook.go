package handlers

import (
	"net/http"
	"strconv"

	"prodimport/internal/apiclient"
	"prodimport/internal/models"

	"github.com/labstack/echo/v4"
)

// WebhookHandler はWebhook APIの中継ハンドラー
type WebhookHandler struct {
	client *apiclient.Client
}

// NewWebhookHandler は新しいWebhookHandlerを作成
func NewWebhookHandler(client *apiclient.Client) *WebhookHandler {
	return &WebhookHandler{client: client}
}

// List はWebhook一覧を取得
func (h *WebhookHandler) List(c echo.Context) error {
	hooks, err := h.client.ListWebhooks(c.Request().Context())
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusOK, hooks)
}

// Get はWebhookを取得
func (h *WebhookHandler) Get(c echo.Context) error {
	id, ok := webhookID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid webhook id"})
	}

	hook, err := h.client.GetWebhook(c.Request().Context(), id)
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusOK, hook)
}

// Create はWebhookを作成
func (h *WebhookHandler) Create(c echo.Context) error {
	var req models.WebhookInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	hook, err := h.client.CreateWebhook(c.Request().Context(), req)
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusCreated, hook)
}

// Update はWebhookを更新
func (h *WebhookHandler) Update(c echo.Context) error {
	id, ok := webhookID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid webhook id"})
	}

	var req models.WebhookInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	hook, err := h.client.UpdateWebhook(c.Request().Context(), id, req)
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusOK, hook)
}

// Delete はWebhookを削除
func (h *WebhookHandler) Delete(c echo.Context) error {
	id, ok := webhookID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid webhook id"})
	}

	if err := h.client.DeleteWebhook(c.Request().Context(), id); err != nil {
		return relayError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Test はWebhookにテストイベントを送信
func (h *WebhookHandler) Test(c echo.Context) error {
	id, ok := webhookID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid webhook id"})
	}

	result, err := h.client.TestWebhook(c.Request().Context(), id)
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":   result.Status,
		"response": result.Response,
		"error":    result.Error,
		"passed":   result.Passed(),
	})
}

func webhookID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
