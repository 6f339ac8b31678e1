package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"prodimport/internal/apiclient"
	"prodimport/internal/config"
	"prodimport/internal/handlers"
	"prodimport/internal/memorydb"
	"prodimport/internal/progress"
	"prodimport/internal/storage"
	"prodimport/internal/tracker"
	"prodimport/internal/version"
	"prodimport/internal/worker"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env と環境変数から設定を読み込む
	cfg := config.Load()

	db, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	history := storage.NewImportRepository(db)

	client, err := apiclient.NewClient(&apiclient.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: "prodimport-console/" + version.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	// 進捗の通知先
	hub := progress.NewHub()
	observers := tracker.Observers{progress.NewRecorder(history), hub}

	var (
		mirror *progress.Mirror
		cache  handlers.Pinger
	)
	if cfg.Redis.URL != "" {
		redisClient, err := memorydb.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("Redis unavailable, progress mirror disabled: %v", err)
		} else {
			defer redisClient.Close()
			mirror = progress.NewMirror(redisClient, cfg.Progress.TTL)
			cache = redisClient
			observers = append(observers, mirror)
			log.Printf("Mirroring import progress to Redis")
		}
	}

	tr := tracker.New(client, observers, &tracker.Options{
		Interval:               cfg.Poll.Interval,
		MaxConsecutiveFailures: cfg.Poll.MaxFailures,
	})
	defer tr.Stop()

	// 古い履歴の掃除
	w := worker.NewWorker(history, cfg.Storage.RetentionDays)
	w.SetInterval(cfg.Storage.SweepInterval)
	w.Start(ctx)
	defer w.Stop()

	// Echoインスタンスの作成
	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.AppEnv == "development"

	// ミドルウェアの設定
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// ルートの登録
	handlers.Register(e, &handlers.Console{
		Client:   client,
		Hub:      hub,
		Cache:    cache,
		Pages:    handlers.NewPageHandler(client, history),
		Imports:  handlers.NewImportHandler(ctx, client, tr, hub, history, mirror),
		Products: handlers.NewProductHandler(client),
		Webhooks: handlers.NewWebhookHandler(client),
	})

	// サーバー起動
	go func() {
		log.Printf("Starting prodimport console v%s (%s) on port %s (API %s)", version.Version, cfg.AppEnv, cfg.Server.Port, client.BaseURL())
		if err := e.Start(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
