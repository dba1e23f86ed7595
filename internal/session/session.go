// Package session is the composition root of one editing session: the clip
// store, the interaction controller, the playback tracker and the loaded
// media, plus the calls out to the upload/export backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/heimdex/heimdex-editor/internal/backend"
	"github.com/heimdex/heimdex-editor/internal/export"
	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/metrics"
	"github.com/heimdex/heimdex-editor/internal/playback"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// Media identifies the video loaded into a session. It is set once.
type Media struct {
	URL        string
	Filename   string
	Thumbnails []string
	LoadedAt   time.Time
}

// Recorder keeps a log of uploads and export attempts outside the session.
// It never sees clip ranges.
type Recorder interface {
	RecordMedia(ctx context.Context, sessionID string, media Media) error
	BeginExport(ctx context.Context, sessionID, filename string, clipCount int) (string, error)
	FinishExport(ctx context.Context, exportID string, exportErr error) error
}

// Session owns the editor state of one user. Timeline operations are
// serialized by mu; backend calls run without it so the timeline stays
// usable while they are outstanding.
type Session struct {
	id        string
	createdAt time.Time
	axis      timeline.Axis
	backend   backend.Client
	recorder  Recorder
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu    sync.Mutex
	media *Media
	clips *timeline.Store
	ctrl  *interaction.Controller
	notes []Notification

	player  *playback.RemotePlayer
	tracker *playback.Tracker
	stop    context.CancelFunc

	uploading atomic.Bool
	exporting atomic.Bool
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

func (s *Session) Axis() timeline.Axis {
	return s.axis
}

// AddClip appends a clip and leaves the editor in "add" mode.
func (s *Session) AddClip(start, end float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, err := s.clips.Add(start, end)
	s.metrics.ClipEdit("add", err)
	if err != nil {
		s.notify(LevelError, "Start time must be less than end time.")
		return 0, err
	}
	return idx, nil
}

// UpdateClip replaces a clip's range and leaves "edit" mode.
func (s *Session) UpdateClip(index int, start, end float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.clips.Update(index, start, end)
	s.metrics.ClipEdit("update", err)
	if errors.Is(err, timeline.ErrInvalidRange) {
		s.notify(LevelError, "Start time must be less than end time.")
	}
	return err
}

// SelectClip enters "edit" mode for index and returns the range to pre-fill.
func (s *Session) SelectClip(index int) (timeline.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clip, err := s.clips.Select(index)
	s.metrics.ClipEdit("select", err)
	return clip, err
}

// ClearSelection returns to "add" mode without changing any clip.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clips.ClearSelection()
}

func (s *Session) PressBody(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.PointerEvent("press_body")
	return s.ctrl.PressBody(index)
}

func (s *Session) PressEdge(index int, edge interaction.Edge) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.PointerEvent("press_" + edge.String())
	return s.ctrl.PressEdge(index, edge)
}

// Move applies a pointer x offset, relative to the timeline's left edge.
func (s *Session) Move(x float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.PointerEvent("move")
	return s.ctrl.Move(x)
}

func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.PointerEvent("release")
	s.ctrl.Release()
}

func (s *Session) DoubleActivate(index int) (timeline.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics.PointerEvent("double_activate")
	return s.ctrl.DoubleActivate(index)
}

// Seek asks the player to jump to seconds.
func (s *Session) Seek(seconds float64) {
	s.tracker.Seek(seconds)
}

// PlayClip seeks the player to the start of clip index.
func (s *Session) PlayClip(index int) error {
	s.mu.Lock()
	clip, ok := s.clips.Clip(index)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", timeline.ErrIndex, index)
	}
	s.tracker.Seek(clip.Start)
	return nil
}

// ReportPlayer records the position reported by the page's player.
func (s *Session) ReportPlayer(seconds float64, ready bool) {
	s.player.Report(seconds, ready)
}

// TakeSeek returns the seek command the page should apply next, if any.
func (s *Session) TakeSeek() (float64, bool) {
	return s.player.TakeSeek()
}

// Upload sends the media to the backend and then fetches its thumbnails. The
// session's media is only set once both calls succeed.
func (s *Session) Upload(ctx context.Context, name string, media io.Reader) (Media, error) {
	s.mu.Lock()
	loaded := s.media != nil
	s.mu.Unlock()
	if loaded {
		return Media{}, ErrMediaLoaded
	}

	if !s.uploading.CompareAndSwap(false, true) {
		return Media{}, ErrInFlight
	}
	defer s.uploading.Store(false)
	defer s.metrics.Track(backend.OpUpload)()

	s.logger.Info("uploading media", "name", name)

	up, err := s.backend.Upload(ctx, name, media)
	if err != nil {
		return Media{}, s.uploadFailed(err)
	}

	thumbs, err := s.backend.Thumbnails(ctx, up.Filename)
	if err != nil {
		return Media{}, s.uploadFailed(err)
	}

	loadedMedia := Media{
		URL:        up.URL,
		Filename:   up.Filename,
		Thumbnails: thumbs,
		LoadedAt:   time.Now(),
	}

	s.mu.Lock()
	if s.media != nil {
		s.mu.Unlock()
		return Media{}, ErrMediaLoaded
	}
	s.media = &loadedMedia
	s.mu.Unlock()

	s.metrics.Upload(metrics.ResultOK)
	s.logger.Info("media loaded", "filename", up.Filename, "thumbnails", len(thumbs))

	if s.recorder != nil {
		if err := s.recorder.RecordMedia(ctx, s.id, loadedMedia); err != nil {
			s.logger.Warn("failed to record upload", "error", err)
		}
	}
	return loadedMedia, nil
}

func (s *Session) uploadFailed(err error) error {
	s.metrics.Upload(metrics.ResultError)
	s.logger.Error("upload failed", "error", err, "retryable", backend.Retryable(err))

	s.mu.Lock()
	s.notify(LevelError, "Upload failed.")
	s.mu.Unlock()
	return err
}

// Export submits the current clip set. It is rejected before any network
// call when no media is loaded or there are no clips. A failed export leaves
// the clips untouched so the user can retry.
func (s *Session) Export(ctx context.Context) (*backend.ExportResponse, error) {
	s.mu.Lock()
	media := s.media
	clips := s.clips.Clips()
	if media == nil || len(clips) == 0 {
		s.notify(LevelError, "Upload a video and add clips.")
		s.mu.Unlock()
		s.metrics.Export(metrics.ResultRejected)
		if media == nil {
			return nil, ErrNoMedia
		}
		return nil, ErrNoClips
	}
	s.mu.Unlock()

	if !s.exporting.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer s.exporting.Store(false)
	defer s.metrics.Track(backend.OpExport)()

	req := backend.ExportRequest{
		Filename: media.Filename,
		Clips:    make([]backend.ExportClip, len(clips)),
	}
	for i, c := range clips {
		req.Clips[i] = backend.ExportClip{Start: c.Start, End: c.End}
	}

	exportID := s.beginExport(ctx, media.Filename, len(clips))
	resp, err := s.backend.Export(ctx, req)
	s.finishExport(ctx, exportID, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.metrics.Export(metrics.ResultError)
		s.logger.Error("export failed", "filename", media.Filename, "error", err, "retryable", backend.Retryable(err))
		s.notify(LevelError, "Export failed.")
		return nil, err
	}

	s.metrics.Export(metrics.ResultOK)
	s.logger.Info("export complete", "filename", media.Filename, "clip_count", len(clips))
	s.notify(LevelInfo, "Exported successfully!")
	return resp, nil
}

func (s *Session) beginExport(ctx context.Context, filename string, clipCount int) string {
	if s.recorder == nil {
		return ""
	}
	id, err := s.recorder.BeginExport(ctx, s.id, filename, clipCount)
	if err != nil {
		s.logger.Warn("failed to record export", "error", err)
		return ""
	}
	return id
}

func (s *Session) finishExport(ctx context.Context, exportID string, exportErr error) {
	if s.recorder == nil || exportID == "" {
		return
	}
	// the request context may already be done when the backend failed
	ctx = context.WithoutCancel(ctx)
	if err := s.recorder.FinishExport(ctx, exportID, exportErr); err != nil {
		s.logger.Warn("failed to record export result", "export_id", exportID, "error", err)
	}
}

// EDL renders the current clip set as an edit decision list.
func (s *Session) EDL(title string, frameRate float64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.media == nil {
		return "", ErrNoMedia
	}
	clips := s.clips.Clips()
	if len(clips) == 0 {
		return "", ErrNoClips
	}

	if title = export.SanitizeName(title, 120); title == "" {
		title = export.SanitizeName(s.media.Filename, 120)
	}

	edlClips := make([]export.EDLClip, len(clips))
	for i, c := range clips {
		edlClips[i] = export.EDLClip{
			Name:      export.ClipName(s.media.Filename, i),
			MediaPath: s.media.URL,
			Start:     c.Start,
			End:       c.End,
		}
	}
	return export.GenerateEDL(edlClips, title, frameRate), nil
}

// Media returns the loaded media; ok is false before a successful upload.
func (s *Session) Media() (Media, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.media == nil {
		return Media{}, false
	}
	return *s.media, true
}

func (s *Session) Uploading() bool {
	return s.uploading.Load()
}

func (s *Session) Exporting() bool {
	return s.exporting.Load()
}

// close stops the playback tracker. The session must not be used afterwards.
func (s *Session) close() {
	if s.stop != nil {
		s.stop()
	}
}
