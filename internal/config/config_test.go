package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	before := *cfg
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if *cfg != before {
		t.Errorf("defaults changed by Validate: %+v", cfg)
	}
}

func TestValidate_Clamps(t *testing.T) {
	cfg := &Config{
		MinZoom:       -1,
		MaxZoom:       0.1,
		SettleDelayMS: 0,
		Backend:       " Tesseract ",
		OCRLevel:      "word",
		Device:        -3,
		LogLevel:      "chatty",
	}
	_ = cfg.Validate()

	if cfg.MinZoom != 0.5 || cfg.MaxZoom != 10 {
		t.Errorf("zoom limits: got [%v, %v]", cfg.MinZoom, cfg.MaxZoom)
	}
	if cfg.SettleDelayMS != 500 {
		t.Errorf("settle delay: got %d", cfg.SettleDelayMS)
	}
	if cfg.Backend != BackendTesseract {
		t.Errorf("backend: got %q", cfg.Backend)
	}
	if cfg.OCRLevel != "line" {
		t.Errorf("ocr level: got %q", cfg.OCRLevel)
	}
	if cfg.Language != "eng" || cfg.Accelerator != "none" || cfg.Device != 0 {
		t.Errorf("live text defaults: got %+v", cfg)
	}
	if cfg.ThumbnailSize != 256 || cfg.LogLevel != "info" {
		t.Errorf("got thumbnail %d, log level %q", cfg.ThumbnailSize, cfg.LogLevel)
	}
	if cfg.ViewportWidth != 1280 || cfg.ViewportHeight != 800 || cfg.HighlightAlpha != 0.35 {
		t.Errorf("got viewport %dx%d, alpha %v", cfg.ViewportWidth, cfg.ViewportHeight, cfg.HighlightAlpha)
	}

	cfg.Backend = "gpu-magic"
	_ = cfg.Validate()
	if cfg.Backend != BackendAuto {
		t.Errorf("unknown backend should fall back to auto, got %q", cfg.Backend)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(dir, "missing.json"))
		if err != nil {
			t.Fatal(err)
		}
		if *cfg != *DefaultConfig() {
			t.Errorf("got %+v, want defaults", cfg)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		if _, err := Load(""); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("partial file", func(t *testing.T) {
		path := filepath.Join(dir, "partial.json")
		if err := os.WriteFile(path, []byte(`{"max_zoom": 4, "backend": "heuristic"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.MaxZoom != 4 || cfg.Backend != BackendHeuristic || cfg.MinZoom != 0.5 {
			t.Errorf("got %+v", cfg)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(path, []byte(`{"max_zoom": `), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err == nil {
			t.Fatal("expected a parse error")
		}
		if *cfg != *DefaultConfig() {
			t.Errorf("parse error should return defaults, got %+v", cfg)
		}
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := DefaultConfig()
	cfg.MaxZoom = 6
	cfg.ThumbnailDir = "/tmp/thumbs"
	cfg.NotifyOnCopy = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *cfg {
		t.Errorf("got %+v, want %+v", loaded, cfg)
	}
}

func TestApplyEnvAndLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "debug")
	cfg := DefaultConfig()
	cfg.ApplyEnv()
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("got %v, want debug", cfg.Level())
	}

	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"warn", slog.LevelWarn, false},
		{"ERROR", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, %v", tt.in, got, err)
		}
	}
}
