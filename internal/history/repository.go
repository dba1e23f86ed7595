// Package history records uploads and export attempts in the local database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/heimdex/heimdex-editor/internal/session"
)

type Repository interface {
	session.Recorder

	ListMedia(ctx context.Context, limit int) ([]*MediaRecord, error)
	GetExport(ctx context.Context, id string) (*ExportRecord, error)
	ListExports(ctx context.Context, limit int) ([]*ExportRecord, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordMedia stores the media loaded into a session. A session loads media
// once, so a repeat write replaces the row.
func (r *SQLiteRepository) RecordMedia(ctx context.Context, sessionID string, m session.Media) error {
	uploadedAt := m.LoadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO media (session_id, filename, url, thumbnail_count, uploaded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			filename = excluded.filename,
			url = excluded.url,
			thumbnail_count = excluded.thumbnail_count,
			uploaded_at = excluded.uploaded_at
	`, sessionID, m.Filename, m.URL, len(m.Thumbnails), uploadedAt.UTC().Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) ListMedia(ctx context.Context, limit int) ([]*MediaRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT session_id, filename, url, thumbnail_count, uploaded_at
		FROM media ORDER BY uploaded_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*MediaRecord
	for rows.Next() {
		var m MediaRecord
		var uploadedAt string
		if err := rows.Scan(&m.SessionID, &m.Filename, &m.URL, &m.ThumbnailCount, &uploadedAt); err != nil {
			return nil, err
		}
		m.UploadedAt, _ = time.Parse(time.RFC3339, uploadedAt)
		out = append(out, &m)
	}
	return out, rows.Err()
}

// BeginExport stores a running export and returns its id.
func (r *SQLiteRepository) BeginExport(ctx context.Context, sessionID, filename string, clipCount int) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exports (id, session_id, filename, clip_count, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, sessionID, filename, clipCount, ExportStatusRunning, now, now)
	if err != nil {
		return "", err
	}
	return id, nil
}

// FinishExport marks an export completed, or failed when exportErr is set.
func (r *SQLiteRepository) FinishExport(ctx context.Context, id string, exportErr error) error {
	status, msg := ExportStatusCompleted, ""
	if exportErr != nil {
		status, msg = ExportStatusFailed, exportErr.Error()
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE exports SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, nullString(msg), time.Now().UTC().Format(time.RFC3339), id)
	return err
}

// GetExport returns nil, nil when id is unknown.
func (r *SQLiteRepository) GetExport(ctx context.Context, id string) (*ExportRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, filename, clip_count, status, error, created_at, updated_at
		FROM exports WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exports, err := scanExports(rows)
	if err != nil || len(exports) == 0 {
		return nil, err
	}
	return exports[0], nil
}

// ListExports returns the most recent exports first.
func (r *SQLiteRepository) ListExports(ctx context.Context, limit int) ([]*ExportRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, session_id, filename, clip_count, status, error, created_at, updated_at
		FROM exports ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanExports(rows)
}

func scanExports(rows *sql.Rows) ([]*ExportRecord, error) {
	var exports []*ExportRecord
	for rows.Next() {
		var e ExportRecord
		var errMsg sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&e.ID, &e.SessionID, &e.Filename, &e.ClipCount, &e.Status, &errMsg, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		e.Error = errMsg.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		exports = append(exports, &e)
	}
	return exports, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
