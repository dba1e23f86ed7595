package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/heimdex/heimdex-editor/internal/db"
	"github.com/heimdex/heimdex-editor/internal/session"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewRepository(database.Conn())
}

func TestRepository_RecordMedia(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	media := session.Media{
		URL:        "http://127.0.0.1:8788/media/talk.mp4",
		Filename:   "talk.mp4",
		Thumbnails: []string{"a.jpg", "b.jpg"},
		LoadedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := repo.RecordMedia(ctx, "sess-1", media); err != nil {
		t.Fatalf("RecordMedia() error = %v", err)
	}

	got, err := repo.ListMedia(ctx, 10)
	if err != nil {
		t.Fatalf("ListMedia() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListMedia() len = %d, want 1", len(got))
	}
	if got[0].SessionID != "sess-1" || got[0].ThumbnailCount != 2 || !got[0].UploadedAt.Equal(media.LoadedAt) {
		t.Errorf("media record = %+v", got[0])
	}
}

func TestRepository_ExportLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name       string
		exportErr  error
		wantStatus string
		wantError  string
	}{
		{"success", nil, ExportStatusCompleted, ""},
		{"failure", errors.New("export returned 502"), ExportStatusFailed, "export returned 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := repo.BeginExport(ctx, "sess-1", "talk.mp4", 3)
			if err != nil {
				t.Fatalf("BeginExport() error = %v", err)
			}

			running, err := repo.GetExport(ctx, id)
			if err != nil || running == nil {
				t.Fatalf("GetExport() = %v, %v", running, err)
			}
			if running.Status != ExportStatusRunning || running.ClipCount != 3 {
				t.Errorf("running export = %+v", running)
			}

			if err := repo.FinishExport(ctx, id, tt.exportErr); err != nil {
				t.Fatalf("FinishExport() error = %v", err)
			}

			done, _ := repo.GetExport(ctx, id)
			if done.Status != tt.wantStatus || done.Error != tt.wantError {
				t.Errorf("finished export = %+v, want status %s error %q", done, tt.wantStatus, tt.wantError)
			}
		})
	}

	list, err := repo.ListExports(ctx, 10)
	if err != nil {
		t.Fatalf("ListExports() error = %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("ListExports() len = %d, want 2", len(list))
	}
	if list[0].Status != ExportStatusFailed {
		t.Errorf("newest export status = %s, want failed", list[0].Status)
	}
}

func TestRepository_GetExportUnknown(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetExport(context.Background(), "missing")
	if err != nil || got != nil {
		t.Fatalf("GetExport(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestRepository_Config(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if v, err := repo.GetConfig(ctx, KeyAuthToken); err != nil || v != "" {
		t.Fatalf("GetConfig(unset) = %q, %v", v, err)
	}

	repo.SetConfig(ctx, KeyAuthToken, "first")
	repo.SetConfig(ctx, KeyAuthToken, "second")

	if v, _ := repo.GetConfig(ctx, KeyAuthToken); v != "second" {
		t.Errorf("GetConfig() = %q, want second", v)
	}
}
