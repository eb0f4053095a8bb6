package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"github.com/ironsheep/livetext-viewer/internal/config"
	"github.com/ironsheep/livetext-viewer/internal/desktop"
	"github.com/ironsheep/livetext-viewer/internal/detection"
	"github.com/ironsheep/livetext-viewer/internal/imaging"
	"github.com/ironsheep/livetext-viewer/internal/livetext"
	"github.com/ironsheep/livetext-viewer/internal/ocr"
	"github.com/ironsheep/livetext-viewer/internal/render"
	"github.com/ironsheep/livetext-viewer/internal/server"
	"github.com/ironsheep/livetext-viewer/internal/transform"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

const name = "livetext-viewer"

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("%s %s\n", name, Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	configPath := flag.String("config", "", "path to a JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v (using defaults)\n", name, err)
	}
	cfg.ApplyEnv()
	_ = cfg.Validate()

	// Logs go to stderr; stdout carries the protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	logger.Debug("starting", "version", Version, "built", BuildTime, "commit", GitCommit)

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	backend, backendName, info := selectBackend(cfg, logger)

	engine := transform.New(
		image.Rect(0, 0, cfg.ViewportWidth, cfg.ViewportHeight),
		transform.WithZoomLimits(cfg.MinZoom, cfg.MaxZoom),
		transform.WithSettleDelay(time.Duration(cfg.SettleDelayMS)*time.Millisecond),
		transform.WithLogger(logger.With("component", "transform")),
	)
	analyzer := livetext.New(backend,
		livetext.WithLogger(logger.With("component", "livetext")),
		livetext.WithHardware(livetext.Hardware{
			Accelerator: livetext.Accelerator(cfg.Accelerator),
			Device:      cfg.Device,
		}),
	)
	defer analyzer.Close()

	style, err := render.ParseStyle(cfg.HighlightColor, cfg.SelectionColor, cfg.HighlightAlpha)
	if err != nil {
		logger.Warn("invalid highlight style, using defaults", "error", err)
		style = render.DefaultStyle()
	}

	cache := imaging.NewImageCache()
	deps := server.Deps{
		Engine:   engine,
		Analyzer: analyzer,
		Cache:    cache,
		Copier:   desktop.NewCopier(cfg.NotifyOnCopy, logger.With("component", "desktop")),
		Style:    style,
		Logger:   logger,
		Name:     name,
		Version:  Version,
		Backend:  backendName,
		OCR:      info,
	}
	if cfg.PersistRotation {
		var thumbs *imaging.ThumbnailStore
		if cfg.ThumbnailDir != "" {
			thumbs, err = imaging.NewThumbnailStore(cfg.ThumbnailDir, cfg.ThumbnailSize)
			if err != nil {
				logger.Warn("thumbnails disabled", "dir", cfg.ThumbnailDir, "error", err)
				thumbs = nil
			}
		}
		deps.Persister = imaging.NewPersister(cache, thumbs, logger.With("component", "persist"))
	}

	srv := server.New(deps)
	defer srv.Close()

	logger.Info("ready", "backend", backendName, "viewport", engine.Viewport().String())
	return srv.Run(os.Stdin, os.Stdout)
}

// selectBackend picks the live text backend named in cfg. In auto mode
// Tesseract is preferred and the heuristic detector is the fallback.
func selectBackend(cfg *config.Config, logger *slog.Logger) (livetext.Backend, string, ocr.Info) {
	level, err := ocr.ParseLevel(cfg.OCRLevel)
	if err != nil {
		logger.Warn("invalid ocr level", "error", err)
	}
	opts := ocr.Options{
		Language:       cfg.Language,
		Level:          level,
		TessdataPrefix: cfg.TessdataPrefix,
	}
	info := ocr.GetInfo(opts)

	if cfg.Backend != config.BackendHeuristic {
		t, err := ocr.New(opts)
		if err == nil {
			return t, config.BackendTesseract, info
		}
		if cfg.Backend == config.BackendTesseract || !errors.Is(err, ocr.ErrNotEnabled) {
			logger.Warn("tesseract unavailable, falling back to heuristic detection", "error", err)
		}
	}
	return detection.NewHeuristic(), config.BackendHeuristic, info
}

func printHelp() {
	fmt.Printf("%s - image viewer with live text over JSON-RPC\n", name)
	fmt.Println()
	fmt.Printf("Usage: %s [-config path]\n", name)
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -config path     Read settings from a JSON file")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Printf("  %s=debug    Override the configured log level\n", config.LogLevelEnv)
	fmt.Println()
	fmt.Println("Requests are read from stdin and responses written to stdout, one JSON object per line.")
	fmt.Println("OCR needs a cgo build on Linux with Tesseract installed; otherwise text regions are detected without recognition.")
}
