package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/heimdex/heimdex-editor/internal/backend"
	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/metrics"
	"github.com/heimdex/heimdex-editor/internal/playback"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

type Options struct {
	Backend      backend.Client
	Recorder     Recorder
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
	Axis         timeline.Axis
	PollInterval time.Duration
}

// Manager holds the open sessions. Ending a session discards its state.
type Manager struct {
	opts Options
	ctx  context.Context

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns a Manager whose session trackers stop when ctx ends.
func NewManager(ctx context.Context, opts Options) *Manager {
	if opts.PollInterval <= 0 {
		opts.PollInterval = playback.DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Manager{
		opts:     opts,
		ctx:      ctx,
		sessions: make(map[string]*Session),
	}
}

// Create opens an empty session and starts its playback tracker.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	logger := logging.WithSessionID(m.opts.Logger, id)

	store := timeline.NewStore()
	player := playback.NewRemotePlayer()
	s := &Session{
		id:        id,
		createdAt: time.Now(),
		axis:      m.opts.Axis,
		backend:   m.opts.Backend,
		recorder:  m.opts.Recorder,
		metrics:   m.opts.Metrics,
		logger:    logger,
		clips:     store,
		ctrl:      interaction.NewController(store, m.opts.Axis),
		player:    player,
		tracker:   playback.NewTracker(player, m.opts.PollInterval, logger),
	}

	ctx, cancel := context.WithCancel(m.ctx)
	s.stop = cancel
	go s.tracker.Start(ctx)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.opts.Metrics.SessionOpened()
	logger.Info("session opened")
	return s
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// End closes a session and forgets it.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.close()
	m.opts.Metrics.SessionClosed()
	s.logger.Info("session ended")
	return nil
}

// List returns open sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].createdAt.Before(out[j].createdAt) })
	return out
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// InFlight counts sessions with an outstanding upload or export.
func (m *Manager) InFlight() (uploads, exports int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.Uploading() {
			uploads++
		}
		if s.Exporting() {
			exports++
		}
	}
	return uploads, exports
}

// CloseAll ends every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
		m.opts.Metrics.SessionClosed()
	}
}
