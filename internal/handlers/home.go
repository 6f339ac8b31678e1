package handlers

import (
	"net/http"

	"prodimport/internal/apiclient"
	"prodimport/internal/storage"
	"prodimport/web/components"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// PageHandler はコンソール画面のハンドラー
type PageHandler struct {
	client  *apiclient.Client
	history *storage.ImportRepository
}

// NewPageHandler は新しいPageHandlerを作成
func NewPageHandler(client *apiclient.Client, history *storage.ImportRepository) *PageHandler {
	return &PageHandler{client: client, history: history}
}

// Home はアップロード画面を表示
func (h *PageHandler) Home(c echo.Context) error {
	ctx := c.Request().Context()
	sessions, err := h.history.ListRecent(ctx, 10)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	return render(c, components.Home(sessions))
}

// Products は商品一覧画面を表示
func (h *PageHandler) Products(c echo.Context) error {
	ctx := c.Request().Context()
	filter, page := productQuery(c)

	result, err := h.client.ListProducts(ctx, page, filter)
	if err != nil {
		return render(c, components.Products(nil, filter, errorMessage(err)))
	}
	return render(c, components.Products(result, filter, ""))
}

// Webhooks はWebhook一覧画面を表示
func (h *PageHandler) Webhooks(c echo.Context) error {
	ctx := c.Request().Context()
	hooks, err := h.client.ListWebhooks(ctx)
	if err != nil {
		return render(c, components.Webhooks(nil, errorMessage(err)))
	}
	return render(c, components.Webhooks(hooks, ""))
}

func render(c echo.Context, component templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return component.Render(c.Request().Context(), c.Response())
}
