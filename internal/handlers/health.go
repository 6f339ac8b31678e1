package handlers

import (
	"context"
	"net/http"
	"time"

	"prodimport/internal/apiclient"
	"prodimport/internal/progress"
	"prodimport/internal/version"

	"github.com/labstack/echo/v4"
)

// Pinger は疎通確認できる依存先
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health はサーバーと依存先の状態を返す
func Health(client *apiclient.Client, hub *progress.Hub, cache Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
		defer cancel()

		api := "ok"
		if err := client.Ping(ctx); err != nil {
			api = "unreachable"
		}
		redis := "disabled"
		if cache != nil {
			redis = "ok"
			if err := cache.Ping(ctx); err != nil {
				redis = "unreachable"
			}
		}
		watchers := 0
		if hub != nil {
			watchers = hub.Subscribers()
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "ok",
			"version":  version.Version,
			"api":      api,
			"redis":    redis,
			"watchers": watchers,
		})
	}
}
