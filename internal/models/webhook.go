package models

import (
	"errors"
	"net/url"
	"strings"
)

// Webhook はイベント通知の購読設定
type Webhook struct {
	ID      int64  `json:"id"`
	URL     string `json:"url"`
	Event   string `json:"event"`
	Enabled bool   `json:"enabled"`
}

// WebhookInput はWebhookの作成・更新リクエスト
type WebhookInput struct {
	URL     string `json:"url"`
	Event   string `json:"event"`
	Enabled bool   `json:"enabled"`
}

// Webhookイベント
const (
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventImportCompleted = "product.import.completed"
)

// WebhookEvents はサーバーが受け付けるイベントの一覧
var WebhookEvents = []string{
	EventProductCreated,
	EventProductUpdated,
	EventProductDeleted,
	EventImportCompleted,
}

var (
	ErrInvalidEvent = errors.New("unknown webhook event")
	ErrInvalidURL   = errors.New("webhook url must be an absolute http(s) url")
)

// ValidEvent はイベント名が既知かどうか
func ValidEvent(event string) bool {
	for _, e := range WebhookEvents {
		if e == event {
			return true
		}
	}
	return false
}

// Normalize は入力を整形・検証する（イベント未指定時は product.created）
func (in *WebhookInput) Normalize() error {
	in.URL = strings.TrimSpace(in.URL)
	in.Event = strings.TrimSpace(in.Event)
	if in.Event == "" {
		in.Event = EventProductCreated
	}
	if !ValidEvent(in.Event) {
		return ErrInvalidEvent
	}
	u, err := url.Parse(in.URL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ErrInvalidURL
	}
	return nil
}

// WebhookTestResult は POST /webhooks/{id}/test/ の結果
type WebhookTestResult struct {
	Status   int    `json:"status,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Passed はテスト送信先が2xxを返したか
func (r *WebhookTestResult) Passed() bool {
	return r.Status >= 200 && r.Status < 300
}
