package playback

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// DefaultPollInterval is how often the tracker asks the player for its position.
const DefaultPollInterval = 500 * time.Millisecond

// Player is the external video player. CurrentTime reports ok=false while the
// player cannot tell its position. SeekTo must not block.
type Player interface {
	CurrentTime() (seconds float64, ok bool)
	SeekTo(seconds float64)
}

// Tracker polls a Player and keeps the last known playback position for the
// timeline cursor. The polling goroutine is the only writer of the position.
type Tracker struct {
	player   Player
	interval time.Duration
	logger   *slog.Logger

	mu       sync.RWMutex
	position float64
	known    bool

	running atomic.Bool
}

func NewTracker(player Player, interval time.Duration, logger *slog.Logger) *Tracker {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Tracker{
		player:   player,
		interval: interval,
		logger:   logger,
	}
}

// Start polls until ctx is cancelled. A second call while running returns
// immediately.
func (t *Tracker) Start(ctx context.Context) {
	if t.running.Swap(true) {
		return
	}
	defer t.running.Store(false)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if t.logger != nil {
				t.logger.Debug("playback tracker stopping")
			}
			return
		case <-ticker.C:
			t.Poll()
		}
	}
}

// Poll reads the player once. Unknown positions leave the last value in place.
func (t *Tracker) Poll() {
	seconds, ok := t.player.CurrentTime()
	if !ok || seconds < 0 {
		return
	}

	t.mu.Lock()
	t.position = seconds
	t.known = true
	t.mu.Unlock()
}

// Current returns the last known position; ok is false until the player has
// reported one.
func (t *Tracker) Current() (seconds float64, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.position, t.known
}

// CursorPixels is the cursor offset on the timeline, zero until known.
func (t *Tracker) CursorPixels(axis timeline.Axis) float64 {
	seconds, _ := t.Current()
	return axis.PixelsFromTime(seconds)
}

// Seek forwards to the player without waiting for it.
func (t *Tracker) Seek(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	t.player.SeekTo(seconds)
}

func (t *Tracker) IsRunning() bool {
	return t.running.Load()
}

// RemotePlayer stands in for a player that lives in the browser. The page
// reports its position and collects seek commands; only the latest pending
// seek is kept.
type RemotePlayer struct {
	mu       sync.Mutex
	position float64
	known    bool
	seek     float64
	hasSeek  bool
}

func NewRemotePlayer() *RemotePlayer {
	return &RemotePlayer{}
}

// Report records the position the page last observed. ready=false marks the
// player as not ready yet.
func (p *RemotePlayer) Report(seconds float64, ready bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !ready || seconds < 0 {
		p.known = false
		return
	}
	p.position = seconds
	p.known = true
}

func (p *RemotePlayer) CurrentTime() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position, p.known
}

func (p *RemotePlayer) SeekTo(seconds float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seek = seconds
	p.hasSeek = true
}

// TakeSeek pops the pending seek command, if any.
func (p *RemotePlayer) TakeSeek() (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.hasSeek {
		return 0, false
	}
	p.hasSeek = false
	return p.seek, true
}
