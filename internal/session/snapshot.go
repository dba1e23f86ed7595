package session

import (
	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// ClipView is a clip as the timeline draws it.
type ClipView struct {
	Index       int
	Start       float64
	End         float64
	Left        float64
	Width       float64
	Overlapping bool
}

// Snapshot is a read-only copy of a session's editor state.
type Snapshot struct {
	ID              string
	Media           *Media
	Clips           []ClipView
	Ticks           []string
	Selection       *int
	ActiveDrag      *interaction.DragInfo
	PlaybackTime    float64
	PlaybackKnown   bool
	CursorPixels    float64
	PixelsPerSecond float64
	Uploading       bool
	Exporting       bool
	Notifications   []Notification
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:              s.id,
		PixelsPerSecond: s.axis.PixelsPerSecond(),
		Uploading:       s.uploading.Load(),
		Exporting:       s.exporting.Load(),
		Notifications:   append([]Notification(nil), s.notes...),
		Ticks:           []string{},
	}

	if s.media != nil {
		m := *s.media
		m.Thumbnails = append([]string(nil), s.media.Thumbnails...)
		snap.Media = &m
		snap.Ticks = timeline.Ticks(len(m.Thumbnails))
	}

	clips := s.clips.Clips()
	flags := s.clips.OverlapFlags()
	snap.Clips = make([]ClipView, len(clips))
	for i, c := range clips {
		snap.Clips[i] = ClipView{
			Index:       i,
			Start:       c.Start,
			End:         c.End,
			Left:        s.axis.PixelsFromTime(c.Start),
			Width:       s.axis.PixelsFromTime(c.Duration()),
			Overlapping: flags[i],
		}
	}

	if idx, ok := s.clips.Selection(); ok {
		snap.Selection = &idx
	}
	if drag, ok := s.ctrl.ActiveDrag(); ok {
		snap.ActiveDrag = &drag
	}

	snap.PlaybackTime, snap.PlaybackKnown = s.tracker.Current()
	snap.CursorPixels = s.tracker.CursorPixels(s.axis)
	return snap
}
