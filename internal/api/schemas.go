package api

import (
	"time"

	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	Sessions int    `json:"sessions"`
}

type ClipRequest struct {
	Start *float64 `json:"start" validate:"required"`
	End   *float64 `json:"end" validate:"required"`
}

// Pointer event types accepted by POST /sessions/{id}/pointer.
const (
	PointerPressBody      = "press_body"
	PointerPressLeft      = "press_left"
	PointerPressRight     = "press_right"
	PointerMove           = "move"
	PointerRelease        = "release"
	PointerDoubleActivate = "double_activate"
)

// PointerRequest carries one pointer event. Index is required for presses
// and double activation. Move takes x relative to the timeline, or client_x
// together with the timeline's left edge.
type PointerRequest struct {
	Type         string   `json:"type" validate:"required,oneof=press_body press_left press_right move release double_activate"`
	Index        *int     `json:"index"`
	X            *float64 `json:"x"`
	ClientX      *float64 `json:"client_x"`
	TimelineLeft float64  `json:"timeline_left"`
}

type PointerResponse struct {
	Applied bool            `json:"applied"`
	Session SessionResponse `json:"session"`
}

type SeekRequest struct {
	Time *float64 `json:"time" validate:"required"`
}

// PlayerPositionRequest is the page player's report. A missing time, or
// ready=false, means the position is unknown.
type PlayerPositionRequest struct {
	Time  *float64 `json:"time"`
	Ready bool     `json:"ready"`
}

type PlayerSeekResponse struct {
	Pending bool    `json:"pending"`
	Time    float64 `json:"time"`
}

type MediaResponse struct {
	URL        string   `json:"url"`
	Filename   string   `json:"filename"`
	Thumbnails []string `json:"thumbnails"`
	LoadedAt   string   `json:"loaded_at"`
}

type ClipResponse struct {
	Index       int     `json:"index"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Left        float64 `json:"left_px"`
	Width       float64 `json:"width_px"`
	Overlapping bool    `json:"overlapping"`
}

type PlaybackResponse struct {
	Time         float64 `json:"time"`
	Known        bool    `json:"known"`
	CursorPixels float64 `json:"cursor_px"`
}

type SessionResponse struct {
	ID              string                 `json:"id"`
	Media           *MediaResponse         `json:"media"`
	Clips           []ClipResponse         `json:"clips"`
	Ticks           []string               `json:"ticks"`
	Selection       *int                   `json:"selection"`
	ActiveDrag      *interaction.DragInfo  `json:"active_drag"`
	Playback        PlaybackResponse       `json:"playback"`
	PixelsPerSecond float64                `json:"pixels_per_second"`
	Uploading       bool                   `json:"uploading"`
	Exporting       bool                   `json:"exporting"`
	Notifications   []session.Notification `json:"notifications"`
}

type SelectResponse struct {
	Index int     `json:"index"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type ExportResultResponse struct {
	Status  string   `json:"status"`
	Outputs []string `json:"outputs,omitempty"`
}

type ExportRecordResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Filename  string `json:"filename"`
	ClipCount int    `json:"clip_count"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type ExportsResponse struct {
	Exports []ExportRecordResponse `json:"exports"`
}

func SnapshotToResponse(snap session.Snapshot) SessionResponse {
	resp := SessionResponse{
		ID:              snap.ID,
		Clips:           make([]ClipResponse, len(snap.Clips)),
		Ticks:           snap.Ticks,
		Selection:       snap.Selection,
		ActiveDrag:      snap.ActiveDrag,
		PixelsPerSecond: snap.PixelsPerSecond,
		Uploading:       snap.Uploading,
		Exporting:       snap.Exporting,
		Notifications:   snap.Notifications,
		Playback: PlaybackResponse{
			Time:         snap.PlaybackTime,
			Known:        snap.PlaybackKnown,
			CursorPixels: snap.CursorPixels,
		},
	}
	if resp.Notifications == nil {
		resp.Notifications = []session.Notification{}
	}

	if m := snap.Media; m != nil {
		resp.Media = &MediaResponse{
			URL:        m.URL,
			Filename:   m.Filename,
			Thumbnails: m.Thumbnails,
			LoadedAt:   m.LoadedAt.Format(time.RFC3339),
		}
	}

	for i, c := range snap.Clips {
		resp.Clips[i] = ClipResponse{
			Index:       c.Index,
			Start:       c.Start,
			End:         c.End,
			Left:        c.Left,
			Width:       c.Width,
			Overlapping: c.Overlapping,
		}
	}
	return resp
}

func ExportRecordToResponse(e *history.ExportRecord) ExportRecordResponse {
	return ExportRecordResponse{
		ID:        e.ID,
		SessionID: e.SessionID,
		Filename:  e.Filename,
		ClipCount: e.ClipCount,
		Status:    e.Status,
		Error:     e.Error,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}
