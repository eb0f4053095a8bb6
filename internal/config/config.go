// Package config holds the viewer's runtime settings.
//
// Settings are read from a JSON file; a missing file means defaults.
// Out-of-range values are clamped by Validate rather than rejected, so a
// hand-edited file never keeps the viewer from starting.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// LogLevelEnv overrides Config.LogLevel when set.
const LogLevelEnv = "LIVETEXT_LOG_LEVEL"

// Backend names accepted in Config.Backend.
const (
	BackendAuto      = "auto"
	BackendTesseract = "tesseract"
	BackendHeuristic = "heuristic"
)

// Config holds runtime configuration for the viewer and live text.
type Config struct {
	// Transform engine
	ViewportWidth  int     `json:"viewport_width"`
	ViewportHeight int     `json:"viewport_height"`
	MinZoom        float64 `json:"min_zoom"`
	MaxZoom        float64 `json:"max_zoom"`
	SettleDelayMS  int     `json:"settle_delay_ms"`

	// Live text
	Backend        string `json:"backend"`
	Language       string `json:"language"`
	OCRLevel       string `json:"ocr_level"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
	Accelerator    string `json:"accelerator"`
	Device         int    `json:"device"`

	// Files
	PersistRotation bool   `json:"persist_rotation"`
	ThumbnailDir    string `json:"thumbnail_dir,omitempty"`
	ThumbnailSize   int    `json:"thumbnail_size"`

	// Rendering
	HighlightColor string  `json:"highlight_color,omitempty"`
	SelectionColor string  `json:"selection_color,omitempty"`
	HighlightAlpha float64 `json:"highlight_alpha"`

	// Desktop
	NotifyOnCopy bool `json:"notify_on_copy"`

	LogLevel string `json:"log_level"`
}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		ViewportWidth:   1280,
		ViewportHeight:  800,
		MinZoom:         0.5,
		MaxZoom:         10,
		SettleDelayMS:   500,
		Backend:         BackendAuto,
		Language:        "eng",
		OCRLevel:        "line",
		Accelerator:     "gpu-vulkan",
		Device:          0,
		PersistRotation: true,
		ThumbnailSize:   256,
		HighlightAlpha:  0.35,
		NotifyOnCopy:    false,
		LogLevel:        "info",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 1280
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 800
	}
	if c.MinZoom <= 0 {
		c.MinZoom = 0.5
	}
	if c.MaxZoom <= 0 || c.MaxZoom < c.MinZoom {
		c.MaxZoom = c.MinZoom * 20
	}
	if c.SettleDelayMS <= 0 {
		c.SettleDelayMS = 500
	}
	switch c.Backend = strings.ToLower(strings.TrimSpace(c.Backend)); c.Backend {
	case BackendAuto, BackendTesseract, BackendHeuristic:
	default:
		c.Backend = BackendAuto
	}
	if c.Language == "" {
		c.Language = "eng"
	}
	switch c.OCRLevel = strings.ToLower(strings.TrimSpace(c.OCRLevel)); c.OCRLevel {
	case "line", "block":
	default:
		c.OCRLevel = "line"
	}
	if c.Accelerator == "" {
		c.Accelerator = "none"
	}
	if c.Device < 0 {
		c.Device = 0
	}
	if c.ThumbnailSize <= 0 {
		c.ThumbnailSize = 256
	}
	if c.HighlightAlpha <= 0 || c.HighlightAlpha > 1 {
		c.HighlightAlpha = 0.35
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		c.LogLevel = "info"
	}
	return nil
}

// ApplyEnv applies environment overrides.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(LogLevelEnv)); v != "" {
		c.LogLevel = v
	}
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	if err := dec.Decode(cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	l, _ := ParseLevel(c.LogLevel)
	return l
}
