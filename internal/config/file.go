package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML layout of the optional config file. Zero values
// leave the default in place.
type FileConfig struct {
	Server   ServerFile   `yaml:"server"`
	Timeline TimelineFile `yaml:"timeline"`
	Backend  BackendFile  `yaml:"backend"`
	Export   ExportFile   `yaml:"export"`
}

type ServerFile struct {
	Port           int      `yaml:"port"`
	LogLevel       string   `yaml:"log_level"`
	DataDir        string   `yaml:"data_dir"`
	Headless       bool     `yaml:"headless"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type TimelineFile struct {
	PixelsPerSecond float64 `yaml:"pixels_per_second"`
	PollMillis      int     `yaml:"poll_ms"`
}

type BackendFile struct {
	URL            string `yaml:"url"`
	TimeoutSeconds int    `yaml:"timeout_s"`
	Port           int    `yaml:"port"`
	PublicURL      string `yaml:"public_url"`
	FFmpegPath     string `yaml:"ffmpeg"`
}

type ExportFile struct {
	Dir       string `yaml:"dir"`
	Bucket    string `yaml:"bucket"`
	KeyPrefix string `yaml:"key_prefix"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &fc, nil
}

func (c *EnvConfig) applyFile(fc *FileConfig) error {
	if p := fc.Server.Port; p != 0 {
		if p < 1 || p > 65535 {
			return fmt.Errorf("server.port must be between 1 and 65535")
		}
		c.port = p
	}
	if fc.Server.LogLevel != "" {
		c.logLevel = fc.Server.LogLevel
	}
	if fc.Server.DataDir != "" {
		c.dataDir = fc.Server.DataDir
	}
	c.headless = fc.Server.Headless
	if len(fc.Server.AllowedOrigins) > 0 {
		c.allowedOrigins = fc.Server.AllowedOrigins
	}

	if pps := fc.Timeline.PixelsPerSecond; pps != 0 {
		if err := validatePixelsPerSecond(pps); err != nil {
			return fmt.Errorf("timeline.pixels_per_second: %w", err)
		}
		c.pixelsPerSecond = pps
	}
	if ms := fc.Timeline.PollMillis; ms != 0 {
		if ms < 0 {
			return fmt.Errorf("timeline.poll_ms must be positive")
		}
		c.pollInterval = time.Duration(ms) * time.Millisecond
	}

	if fc.Backend.URL != "" {
		c.backendURL = fc.Backend.URL
	}
	if s := fc.Backend.TimeoutSeconds; s != 0 {
		if s < 0 {
			return fmt.Errorf("backend.timeout_s must not be negative")
		}
		c.backendTimeout = time.Duration(s) * time.Second
	}
	if p := fc.Backend.Port; p != 0 {
		if p < 1 || p > 65535 {
			return fmt.Errorf("backend.port must be between 1 and 65535")
		}
		c.backendPort = p
	}
	if fc.Backend.PublicURL != "" {
		c.backendPublicURL = fc.Backend.PublicURL
	}
	if fc.Backend.FFmpegPath != "" {
		c.ffmpegPath = fc.Backend.FFmpegPath
	}

	if fc.Export.Dir != "" {
		c.exportDir = fc.Export.Dir
	}
	if fc.Export.Bucket != "" {
		c.exportBucket = fc.Export.Bucket
	}
	if fc.Export.KeyPrefix != "" {
		c.exportKeyPrefix = fc.Export.KeyPrefix
	}
	return nil
}
