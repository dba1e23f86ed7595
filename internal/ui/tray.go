package ui

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getlantern/systray"
)

const refreshInterval = 2 * time.Second

// SessionSource reports what the editor is doing. *session.Manager satisfies it.
type SessionSource interface {
	Count() int
	InFlight() (uploads, exports int)
}

type Tray struct {
	sessions SessionSource
	logger   *slog.Logger
	apiURL   string

	statusItem   *systray.MenuItem
	sessionsItem *systray.MenuItem

	mu     sync.Mutex
	cancel context.CancelFunc

	onShowURL func(url string) error
	onQuit    func()
}

type TrayConfig struct {
	Sessions  SessionSource
	Logger    *slog.Logger
	APIURL    string
	OnShowURL func(url string) error
	OnQuit    func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		sessions:  cfg.Sessions,
		logger:    cfg.Logger,
		apiURL:    cfg.APIURL,
		onShowURL: cfg.OnShowURL,
		onQuit:    cfg.OnQuit,
	}
}

// Run blocks on the systray event loop.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("Heimdex")
	systray.SetTooltip("Heimdex Editor")

	t.statusItem = systray.AddMenuItem(statusLine(0, 0), "Backend operations in progress")
	t.statusItem.Disable()

	t.sessionsItem = systray.AddMenuItem(sessionsLine(0), "Open editor sessions")
	t.sessionsItem.Disable()

	systray.AddSeparator()

	urlItem := systray.AddMenuItem("Editor API: "+t.apiURL, "Log the editor API address")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit Heimdex Editor")

	ctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	go t.refreshLoop(ctx)

	go func() {
		for {
			select {
			case <-urlItem.ClickedCh:
				t.handleShowURL()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.mu.Unlock()
	t.logger.Info("system tray exiting")
}

func (t *Tray) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		t.refresh()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (t *Tray) refresh() {
	if t.sessions == nil {
		return
	}
	uploads, exports := t.sessions.InFlight()
	count := t.sessions.Count()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.statusItem.SetTitle(statusLine(uploads, exports))
	t.sessionsItem.SetTitle(sessionsLine(count))
}

func (t *Tray) handleShowURL() {
	if t.onShowURL != nil {
		if err := t.onShowURL(t.apiURL); err != nil {
			t.logger.Error("failed to show api url", "error", err)
		}
	}
}

func (t *Tray) Quit() {
	systray.Quit()
}

func statusLine(uploads, exports int) string {
	switch {
	case uploads == 0 && exports == 0:
		return "Status: Idle"
	case exports == 0:
		return fmt.Sprintf("Status: Uploading (%d)", uploads)
	case uploads == 0:
		return fmt.Sprintf("Status: Exporting (%d)", exports)
	default:
		return fmt.Sprintf("Status: Uploading (%d), Exporting (%d)", uploads, exports)
	}
}

func sessionsLine(count int) string {
	if count == 1 {
		return "1 session open"
	}
	return fmt.Sprintf("%d sessions open", count)
}
