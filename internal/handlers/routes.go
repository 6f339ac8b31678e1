package handlers

import (
	"prodimport/internal/apiclient"
	"prodimport/internal/progress"

	"github.com/labstack/echo/v4"
)

// Console はコンソールの全ハンドラー
type Console struct {
	Client   *apiclient.Client
	Hub      *progress.Hub
	Cache    Pinger // Redis 未設定時は nil
	Pages    *PageHandler
	Imports  *ImportHandler
	Products *ProductHandler
	Webhooks *WebhookHandler
}

// Register はルートを登録する
func Register(e *echo.Echo, con *Console) {
	// 画面
	e.GET("/", con.Pages.Home)
	e.GET("/products", con.Pages.Products)
	e.GET("/webhooks", con.Pages.Webhooks)
	e.GET("/health", Health(con.Client, con.Hub, con.Cache))

	api := e.Group("/api")

	// インポート
	api.POST("/imports", con.Imports.Upload)
	api.GET("/imports/current", con.Imports.Current)
	api.DELETE("/imports/current", con.Imports.Stop)
	api.GET("/imports/ws", con.Imports.Stream)
	api.GET("/imports/history", con.Imports.History)
	api.GET("/imports/history/:id", con.Imports.Session)
	api.DELETE("/imports/history/:id", con.Imports.DeleteSession)
	api.GET("/imports/stats", con.Imports.Stats)

	// 商品
	api.GET("/products", con.Products.List)
	api.POST("/products", con.Products.Create)
	api.DELETE("/products", con.Products.DeleteAll)
	api.GET("/products/:id", con.Products.Get)
	api.PATCH("/products/:id", con.Products.Update)
	api.DELETE("/products/:id", con.Products.Delete)

	// Webhook
	api.GET("/webhooks", con.Webhooks.List)
	api.POST("/webhooks", con.Webhooks.Create)
	api.GET("/webhooks/:id", con.Webhooks.Get)
	api.PUT("/webhooks/:id", con.Webhooks.Update)
	api.DELETE("/webhooks/:id", con.Webhooks.Delete)
	api.POST("/webhooks/:id/test", con.Webhooks.Test)
}
