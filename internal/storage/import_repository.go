package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"prodimport/internal/models"
)

// ImportRepository はインポート履歴のデータアクセス層
type ImportRepository struct {
	db *DB
}

// NewImportRepository は新しいImportRepositoryを作成
func NewImportRepository(db *DB) *ImportRepository {
	return &ImportRepository{db: db}
}

const sessionColumns = `id, job_id, file_name, row_count, status, percent, message, error, created_at, updated_at, completed_at`

// Create は新しいセッションを作成
func (r *ImportRepository) Create(ctx context.Context, s *models.ImportSession) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Status == "" {
		s.Status = models.SessionStatusUploading
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO import_sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, nullString(s.JobID), s.FileName, s.Rows, s.Status, s.Percent, s.Message, s.Error,
		s.CreatedAt, s.UpdatedAt, s.CompletedAt,
	)
	return err
}

// GetByID はIDでセッションを取得
func (r *ImportRepository) GetByID(ctx context.Context, id string) (*models.ImportSession, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM import_sessions WHERE id = ?`, id)
	return scanOne(row)
}

// GetByJobID はジョブIDで最新のセッションを取得
func (r *ImportRepository) GetByJobID(ctx context.Context, jobID string) (*models.ImportSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM import_sessions WHERE job_id = ? ORDER BY created_at DESC LIMIT 1`, jobID)
	return scanOne(row)
}

// AttachJob はアップロード成功時にジョブIDを紐付け、追跡中にする
func (r *ImportRepository) AttachJob(ctx context.Context, id, jobID string) error {
	return r.exec(ctx,
		`UPDATE import_sessions SET job_id = ?, status = ?, updated_at = ? WHERE id = ?`,
		jobID, models.SessionStatusTracking, time.Now().UTC(), id)
}

// UpdateProgress はジョブの進捗を更新（終了済みのセッションは変更しない）
func (r *ImportRepository) UpdateProgress(ctx context.Context, jobID string, percent float64, message string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE import_sessions SET percent = ?, message = ?, updated_at = ?
		 WHERE job_id = ? AND status = ?`,
		percent, message, time.Now().UTC(), jobID, models.SessionStatusTracking)
	return err
}

// Complete はジョブを完了状態にする
func (r *ImportRepository) Complete(ctx context.Context, jobID, message string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE import_sessions SET status = ?, percent = 100, message = ?, updated_at = ?, completed_at = ?
		 WHERE job_id = ? AND status = ?`,
		models.SessionStatusCompleted, message, now, now, jobID, models.SessionStatusTracking)
	return err
}

// Fail はセッションを失敗状態にする
func (r *ImportRepository) Fail(ctx context.Context, id string, errorMsg string) error {
	now := time.Now().UTC()
	return r.exec(ctx,
		`UPDATE import_sessions SET status = ?, error = ?, updated_at = ?, completed_at = ? WHERE id = ?`,
		models.SessionStatusFailed, errorMsg, now, now, id)
}

// FailJob はジョブIDで追跡中のセッションを失敗状態にする
func (r *ImportRepository) FailJob(ctx context.Context, jobID string, errorMsg string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE import_sessions SET status = ?, error = ?, updated_at = ?, completed_at = ?
		 WHERE job_id = ? AND status = ?`,
		models.SessionStatusFailed, errorMsg, now, now, jobID, models.SessionStatusTracking)
	return err
}

// Cancel は追跡を途中で止めたセッションを記録する
func (r *ImportRepository) Cancel(ctx context.Context, jobID string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE import_sessions SET status = ?, updated_at = ?, completed_at = ?
		 WHERE job_id = ? AND status = ?`,
		models.SessionStatusCancelled, now, now, jobID, models.SessionStatusTracking)
	return err
}

// ListRecent は最近のセッション一覧を取得
func (r *ImportRepository) ListRecent(ctx context.Context, limit int) ([]models.ImportSession, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM import_sessions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []models.ImportSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// Delete はセッションを削除
func (r *ImportRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, `DELETE FROM import_sessions WHERE id = ?`, id)
}

// CleanupFinished は終了済みセッションを削除（指定日数より古いもの）
func (r *ImportRepository) CleanupFinished(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM import_sessions WHERE status IN (?, ?, ?) AND completed_at < ?`,
		models.SessionStatusCompleted, models.SessionStatusFailed, models.SessionStatusCancelled, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StatusCount はステータスごとの件数
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CountByStatus はステータスごとのセッション数を取得
func (r *ImportRepository) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM import_sessions GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// ErrSessionNotFound は対象のセッションが存在しない場合のエラー
var ErrSessionNotFound = errors.New("import session not found")

func (r *ImportRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row *sql.Row) (*models.ImportSession, error) {
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanSession(sc scanner) (*models.ImportSession, error) {
	var (
		s           models.ImportSession
		jobID       sql.NullString
		completedAt sql.NullTime
	)
	err := sc.Scan(&s.ID, &jobID, &s.FileName, &s.Rows, &s.Status, &s.Percent, &s.Message, &s.Error,
		&s.CreatedAt, &s.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	s.JobID = jobID.String
	if completedAt.Valid {
		t := completedAt.Time
		s.CompletedAt = &t
	}
	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
