package history

import "time"

const (
	ExportStatusRunning   = "running"
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// MediaRecord is one successful upload.
type MediaRecord struct {
	SessionID      string    `json:"session_id"`
	Filename       string    `json:"filename"`
	URL            string    `json:"url"`
	ThumbnailCount int       `json:"thumbnail_count"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// ExportRecord is one export attempt. Clip ranges are not kept.
type ExportRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Filename  string    `json:"filename"`
	ClipCount int       `json:"clip_count"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// KeyAuthToken is the config key holding the editor API bearer token.
const KeyAuthToken = "auth_token"
