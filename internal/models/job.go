package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// JobID はサーバーが払い出すインポートジョブの識別子
// JSON では文字列・数値のどちらでも受け付ける
type JobID string

// UnmarshalJSON は文字列または数値のジョブIDを読み込む
func (id *JobID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = JobID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("job_id must be a string or number: %w", err)
	}
	*id = JobID(n.String())
	return nil
}

func (id JobID) String() string {
	return string(id)
}

// UploadResponse は POST /imports/ のレスポンス
type UploadResponse struct {
	JobID   JobID  `json:"job_id"`
	Message string `json:"message,omitempty"`
}

// ImportStatus は GET /imports/status/{job_id}/ のレスポンス
// percent・message・status はサーバー側で型が保証されないため生のまま保持する
// それ以外のフィールドは読まない
type ImportStatus struct {
	Status  json.RawMessage `json:"status,omitempty"`
	Percent json.RawMessage `json:"percent,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
}

// StatusText は status が文字列の場合のみその値を返す
func (s *ImportStatus) StatusText() (string, bool) {
	if s == nil {
		return "", false
	}
	raw := bytes.TrimSpace(s.Status)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var text string
	if err := json.Unmarshal(s.Status, &text); err != nil {
		return "", false
	}
	return text, true
}

// MessageText は message を表示用の文字列にする
// 欠落・null・偽値は空文字
func (s *ImportStatus) MessageText() string {
	if s == nil {
		return ""
	}
	raw := bytes.TrimSpace(s.Message)
	if len(raw) == 0 {
		return ""
	}
	switch string(raw) {
	case "null", "false", `""`:
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
		if f == 0 {
			return ""
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return string(raw)
}

// サーバーが報告するジョブステータス
const (
	ImportStatusParsing   = "PARSING"
	ImportStatusImporting = "IMPORTING"
	ImportStatusCompleted = "COMPLETED"
)

// ImportSession はローカルに記録するアップロード1回分の履歴
type ImportSession struct {
	ID          string     `json:"id"`
	JobID       string     `json:"job_id,omitempty"`
	FileName    string     `json:"file_name"`
	Rows        int        `json:"rows"`
	Status      string     `json:"status"`
	Percent     float64    `json:"percent"`
	Message     string     `json:"message,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ローカルセッションのステータス
const (
	SessionStatusUploading = "uploading"
	SessionStatusTracking  = "tracking"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
	SessionStatusCancelled = "cancelled"
)

// Finished は終了済みのステータスかどうか
func (s *ImportSession) Finished() bool {
	switch s.Status {
	case SessionStatusCompleted, SessionStatusFailed, SessionStatusCancelled:
		return true
	}
	return false
}
