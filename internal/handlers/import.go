package handlers

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"prodimport/internal/apiclient"
	"prodimport/internal/ingestion"
	"prodimport/internal/models"
	"prodimport/internal/progress"
	"prodimport/internal/storage"
	"prodimport/internal/tracker"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// ImportHandler はCSVインポートのハンドラー
type ImportHandler struct {
	baseCtx context.Context
	client  *apiclient.Client
	tracker *tracker.Tracker
	hub     *progress.Hub
	history *storage.ImportRepository
	mirror  *progress.Mirror

	upgrader websocket.Upgrader
}

// NewImportHandler は新しいImportHandlerを作成
// ctx はサーバーの寿命で、追跡ループはこれが終わると止まる
// mirror は Redis 未設定時は nil
func NewImportHandler(ctx context.Context, client *apiclient.Client, tr *tracker.Tracker, hub *progress.Hub, history *storage.ImportRepository, mirror *progress.Mirror) *ImportHandler {
	return &ImportHandler{
		baseCtx: ctx,
		client:  client,
		tracker: tr,
		hub:     hub,
		history: history,
		mirror:  mirror,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// UploadResponse はアップロード受付時のレスポンス
type UploadResponse struct {
	JobID     string `json:"job_id"`
	SessionID string `json:"session_id"`
	FileName  string   `json:"file_name"`
	Rows      int      `json:"rows"`
	Columns   []string `json:"columns"`
	Converted bool     `json:"converted"`
	Message   string   `json:"message,omitempty"`
}

// Upload はファイルをリモートAPIへ送り、ジョブの追跡を開始する
func (h *ImportHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	defer src.Close()

	file, err := ingestion.PrepareReader(fh.Filename, src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	log.Printf("Uploading %s: %d rows, %d bytes, columns %s", file.Name, file.Rows, file.Size(), strings.Join(file.Header, ","))

	session := &models.ImportSession{FileName: file.Name, Rows: file.Rows}
	if err := h.history.Create(ctx, session); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	resp, err := h.client.Upload(ctx, file.Name, file.Reader())
	if err != nil {
		// アップロード失敗時は追跡を開始しない
		if ferr := h.history.Fail(ctx, session.ID, errorMessage(err)); ferr != nil {
			log.Printf("history: failed to record upload failure: %v", ferr)
		}
		return c.JSON(http.StatusBadGateway, map[string]string{"error": errorMessage(err)})
	}
	jobID := resp.JobID.String()

	if err := h.history.AttachJob(ctx, session.ID, jobID); err != nil {
		log.Printf("history: failed to attach job %s: %v", jobID, err)
	}

	// 前のジョブは置き換えられる
	if prev := h.tracker.JobID(); prev != "" && prev != jobID {
		if err := h.history.Cancel(ctx, prev); err != nil {
			log.Printf("history: failed to cancel job %s: %v", prev, err)
		}
	}

	// Start は前のループの終了を待つので、その後に最初のイベントを流す
	if err := h.tracker.Start(h.baseCtx, jobID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	h.hub.Publish(progress.Event{
		Type:     progress.EventProgress,
		JobID:    jobID,
		Progress: &tracker.Progress{JobID: jobID, Message: resp.Message, At: time.Now()},
	})

	return c.JSON(http.StatusAccepted, UploadResponse{
		JobID:     jobID,
		SessionID: session.ID,
		FileName:  file.Name,
		Rows:      file.Rows,
		Columns:   file.Header,
		Converted: file.Converted,
		Message:   resp.Message,
	})
}

// CurrentResponse は最新の進捗
type CurrentResponse struct {
	progress.Event
	Active bool `json:"active"`
}

// Current は最新の進捗を取得
// 再起動直後などでまだイベントが無い場合は、最後のアップロードのスナップショットを Redis から読む
func (h *ImportHandler) Current(c echo.Context) error {
	if latest, ok := h.hub.Latest(); ok {
		return c.JSON(http.StatusOK, CurrentResponse{Event: latest, Active: h.tracker.Active()})
	}

	if h.mirror != nil {
		ctx := c.Request().Context()
		sessions, err := h.history.ListRecent(ctx, 1)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		if len(sessions) > 0 && sessions[0].JobID != "" {
			snap, err := h.mirror.Load(ctx, sessions[0].JobID)
			if err != nil {
				log.Printf("mirror: %v", err)
			} else if snap != nil {
				return c.JSON(http.StatusOK, CurrentResponse{Event: snap.Event(), Active: false})
			}
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"error": "no import has been tracked"})
}

// Stop は現在のジョブの追跡を止める（サーバー側のジョブは止まらない）
func (h *ImportHandler) Stop(c echo.Context) error {
	ctx := c.Request().Context()
	jobID := h.tracker.JobID()
	if jobID == "" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no import is being tracked"})
	}

	h.tracker.Stop()
	if err := h.history.Cancel(ctx, jobID); err != nil {
		log.Printf("history: failed to cancel job %s: %v", jobID, err)
	}
	h.hub.Publish(progress.Event{Type: progress.EventStopped, JobID: jobID})

	return c.JSON(http.StatusOK, map[string]string{
		"job_id": jobID,
		"status": models.SessionStatusCancelled,
	})
}

// History はインポート履歴を取得
func (h *ImportHandler) History(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 50
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	sessions, err := h.history.ListRecent(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, sessions)
}

// Session は履歴を1件取得
func (h *ImportHandler) Session(c echo.Context) error {
	session, err := h.history.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "import not found"})
	}
	return c.JSON(http.StatusOK, session)
}

// DeleteSession は履歴を削除する（追跡中のものは削除できない）
func (h *ImportHandler) DeleteSession(c echo.Context) error {
	ctx := c.Request().Context()
	session, err := h.history.GetByID(ctx, c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if session == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "import not found"})
	}
	if session.JobID != "" && session.JobID == h.tracker.JobID() {
		return c.JSON(http.StatusConflict, map[string]string{"error": "import is being tracked"})
	}

	if err := h.history.Delete(ctx, session.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if h.mirror != nil && session.JobID != "" {
		if err := h.mirror.Forget(ctx, session.JobID); err != nil {
			log.Printf("mirror: failed to forget job %s: %v", session.JobID, err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Stats はステータスごとの件数を取得
func (h *ImportHandler) Stats(c echo.Context) error {
	counts, err := h.history.CountByStatus(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	stats := make(map[string]int64)
	for _, row := range counts {
		stats[row.Status] = row.Count
	}
	return c.JSON(http.StatusOK, stats)
}

// Stream は進捗イベントをWebSocketで配信する
func (h *ImportHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return nil
	}
	defer conn.Close()

	events, unsubscribe := h.hub.Subscribe()
	defer unsubscribe()

	// クライアントからの切断を検知する
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if latest, ok := h.hub.Latest(); ok {
		if err := conn.WriteJSON(latest); err != nil {
			return nil
		}
	}

	for {
		select {
		case <-closed:
			return nil
		case <-h.baseCtx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(e); err != nil {
				return nil
			}
		}
	}
}
