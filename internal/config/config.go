// Package config provides configuration management for the Heimdex editor.
// Configuration is read from an optional YAML file and then from environment
// variables, which take precedence.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// Default values
	DefaultPort            = 8787
	DefaultBackendPort     = 8788
	DefaultLogLevel        = "info"
	DefaultDataDir         = ".heimdex-editor"
	DefaultBackendURL      = "http://127.0.0.1:8788"
	DefaultPixelsPerSecond = 10
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultFFmpegPath      = "ffmpeg"

	// Environment variable names
	EnvConfigFile      = "HEIMDEX_CONFIG"
	EnvPort            = "HEIMDEX_PORT"
	EnvLogLevel        = "HEIMDEX_LOG_LEVEL"
	EnvDataDir         = "HEIMDEX_DATA_DIR"
	EnvHeadless        = "HEIMDEX_HEADLESS"
	EnvAllowedOrigins  = "HEIMDEX_ALLOWED_ORIGINS"
	EnvPixelsPerSecond = "HEIMDEX_PIXELS_PER_SECOND"
	EnvPollMillis      = "HEIMDEX_PLAYBACK_POLL_MS"

	// Media backend environment variable names
	EnvBackendURL      = "HEIMDEX_BACKEND_URL"
	EnvBackendTimeout  = "HEIMDEX_BACKEND_TIMEOUT_S"
	EnvBackendPort     = "HEIMDEX_BACKEND_PORT"
	EnvBackendPublic   = "HEIMDEX_BACKEND_PUBLIC_URL"
	EnvFFmpegPath      = "HEIMDEX_FFMPEG"
	EnvExportDir       = "HEIMDEX_EXPORT_DIR"
	EnvExportBucket    = "HEIMDEX_EXPORT_BUCKET"
	EnvExportKeyPrefix = "HEIMDEX_EXPORT_PREFIX"

	// Database filename
	DBFilename = "history.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	Headless() bool
	AllowedOrigins() []string
	PixelsPerSecond() float64
	PollInterval() time.Duration

	BackendURL() string
	BackendTimeout() time.Duration
	BackendPort() int
	BackendPublicURL() string
	MediaDir() string
	FFmpegPath() string
	ExportDir() string
	ExportBucket() string
	ExportKeyPrefix() string
}

// EnvConfig holds configuration resolved from the YAML file and environment.
type EnvConfig struct {
	port            int
	logLevel        string
	dataDir         string
	headless        bool
	allowedOrigins  []string
	pixelsPerSecond float64
	pollInterval    time.Duration

	backendURL       string
	backendTimeout   time.Duration
	backendPort      int
	backendPublicURL string
	ffmpegPath       string
	exportDir        string
	exportBucket     string
	exportKeyPrefix  string
}

var _ Config = (*EnvConfig)(nil)

// New resolves configuration from the file named by HEIMDEX_CONFIG, if any,
// and the environment.
func New() (*EnvConfig, error) {
	return NewFromFile(os.Getenv(EnvConfigFile))
}

// NewFromFile resolves configuration from path (skipped when empty) and the
// environment.
func NewFromFile(path string) (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		pixelsPerSecond: DefaultPixelsPerSecond,
		pollInterval:    DefaultPollInterval,
		backendURL:      DefaultBackendURL,
		backendPort:     DefaultBackendPort,
		ffmpegPath:      DefaultFFmpegPath,
	}

	if path != "" {
		fc, err := Load(path)
		if err != nil {
			return nil, err
		}
		if err := cfg.applyFile(fc); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EnvConfig) applyEnv() error {
	if p := os.Getenv(EnvPort); p != "" {
		port, err := parsePort(EnvPort, p)
		if err != nil {
			return err
		}
		c.port = port
	}

	if p := os.Getenv(EnvBackendPort); p != "" {
		port, err := parsePort(EnvBackendPort, p)
		if err != nil {
			return err
		}
		c.backendPort = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		c.dataDir = dd
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		c.headless = headless
	}

	if o := os.Getenv(EnvAllowedOrigins); o != "" {
		c.allowedOrigins = splitList(o)
	}

	if v := os.Getenv(EnvPixelsPerSecond); v != "" {
		pps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPixelsPerSecond, err)
		}
		if err := validatePixelsPerSecond(pps); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPixelsPerSecond, err)
		}
		c.pixelsPerSecond = pps
	}

	if v := os.Getenv(EnvPollMillis); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPollMillis, err)
		}
		if ms <= 0 {
			return fmt.Errorf("invalid %s: must be positive", EnvPollMillis)
		}
		c.pollInterval = time.Duration(ms) * time.Millisecond
	}

	if u := os.Getenv(EnvBackendURL); u != "" {
		c.backendURL = u
	}

	if v := os.Getenv(EnvBackendTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvBackendTimeout, err)
		}
		if secs < 0 {
			return fmt.Errorf("invalid %s: must not be negative", EnvBackendTimeout)
		}
		c.backendTimeout = time.Duration(secs) * time.Second
	}

	if u := os.Getenv(EnvBackendPublic); u != "" {
		c.backendPublicURL = u
	}
	if f := os.Getenv(EnvFFmpegPath); f != "" {
		c.ffmpegPath = f
	}
	if d := os.Getenv(EnvExportDir); d != "" {
		c.exportDir = d
	}
	if b := os.Getenv(EnvExportBucket); b != "" {
		c.exportBucket = b
	}
	if p := os.Getenv(EnvExportKeyPrefix); p != "" {
		c.exportKeyPrefix = p
	}
	return nil
}

// Port returns the editor API port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite history database
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

func (c *EnvConfig) Headless() bool {
	return c.headless
}

// AllowedOrigins lists the browser origins allowed by CORS. Empty means
// same-origin only.
func (c *EnvConfig) AllowedOrigins() []string {
	return c.allowedOrigins
}

func (c *EnvConfig) PixelsPerSecond() float64 {
	return c.pixelsPerSecond
}

func (c *EnvConfig) PollInterval() time.Duration {
	return c.pollInterval
}

func (c *EnvConfig) BackendURL() string {
	return c.backendURL
}

// BackendTimeout bounds each backend call. Zero means no timeout.
func (c *EnvConfig) BackendTimeout() time.Duration {
	return c.backendTimeout
}

func (c *EnvConfig) BackendPort() int {
	return c.backendPort
}

// BackendPublicURL is the base URL the media backend puts in upload
// responses. It defaults to the loopback address of BackendPort.
func (c *EnvConfig) BackendPublicURL() string {
	if c.backendPublicURL != "" {
		return strings.TrimSuffix(c.backendPublicURL, "/")
	}
	return fmt.Sprintf("http://127.0.0.1:%d", c.backendPort)
}

// MediaDir is where the media backend keeps uploads and thumbnails.
func (c *EnvConfig) MediaDir() string {
	return filepath.Join(c.dataDir, "media")
}

func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

// ExportDir is where exported clips are published when no bucket is set.
func (c *EnvConfig) ExportDir() string {
	if c.exportDir != "" {
		return c.exportDir
	}
	return filepath.Join(c.dataDir, "exports")
}

func (c *EnvConfig) ExportBucket() string {
	return c.exportBucket
}

func (c *EnvConfig) ExportKeyPrefix() string {
	return c.exportKeyPrefix
}

func parsePort(name, v string) (int, error) {
	port, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid %s: port must be between 1 and 65535", name)
	}
	return port, nil
}

func validatePixelsPerSecond(pps float64) error {
	if pps <= 0 || math.IsNaN(pps) || math.IsInf(pps, 0) {
		return fmt.Errorf("pixels per second must be a positive number")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
