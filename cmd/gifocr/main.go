package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/akamensky/argparse"
	"github.com/lmittmann/tint"

	"github.com/ivlev/gifocr/internal/config"
	"github.com/ivlev/gifocr/internal/engine"
	"github.com/ivlev/gifocr/internal/recognizer"
	"github.com/ivlev/gifocr/internal/source"
	"github.com/ivlev/gifocr/internal/system"
)

type options struct {
	gif, cred, config string
	format, lang      string
	backend, endpoint string
	workers, quality  int
	dpi               int
	stats, verbose    bool
}

func main() {
	parser := argparse.NewParser("gifocr", "Extracts subtitle and player-name text from every frame of an animated image")
	gifPath := parser.String("g", "gif", &argparse.Options{Required: true, Help: "Path to the GIF file to conduct OCR on"})
	credPath := parser.String("c", "cred", &argparse.Options{Help: "Path to the Google Cloud Platform credential JSON file (default: the JSON file in ./cred)"})
	configPath := parser.String("", "config", &argparse.Options{Help: "YAML file with zones, language hint and other settings"})
	format := parser.Selector("f", "format", []string{config.FormatJSON, config.FormatYAML, config.FormatText}, &argparse.Options{Help: "Output format"})
	workers := parser.Int("w", "workers", &argparse.Options{Help: "Parallel JPEG encoders (default: number of CPUs)"})
	quality := parser.Int("q", "quality", &argparse.Options{Help: "JPEG quality 1-100 of the uploaded frames"})
	lang := parser.String("l", "lang", &argparse.Options{Help: "OCR language hint"})
	backend := parser.Selector("", "backend", []string{config.BackendGRPC, config.BackendREST}, &argparse.Options{Help: "Vision API transport"})
	endpoint := parser.String("", "endpoint", &argparse.Options{Help: "Vision REST endpoint"})
	dpi := parser.Int("", "dpi", &argparse.Options{Help: "Rasterization DPI for PDF input"})
	stats := parser.Flag("", "stats", &argparse.Options{Help: "Log a performance report"})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Debug logging"})

	if err := parser.Parse(os.Args); err != nil {
		fmt.Fprint(os.Stderr, parser.Usage(err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))

	opts := options{
		gif: *gifPath, cred: *credPath, config: *configPath,
		format: *format, lang: *lang,
		backend: *backend, endpoint: *endpoint,
		workers: *workers, quality: *quality, dpi: *dpi,
		stats: *stats, verbose: *verbose,
	}

	err := run(context.Background(), logger, opts)
	switch {
	case err == nil:
	case errors.Is(err, system.ErrNoCredentials):
		fmt.Fprintln(os.Stderr, "Make sure to put the GCP credential JSON file in the 'cred' directory, or pass one with --cred.")
		os.Exit(1)
	default:
		logger.Error("gifocr failed", "err", err)
		os.Exit(1)
	}
}

func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()
	if opts.config != "" {
		var err error
		if cfg, err = config.Load(opts.config); err != nil {
			return nil, err
		}
	}

	cfg.InputPath = opts.gif
	cfg.CredentialsPath = opts.cred
	if opts.format != "" {
		cfg.Format = opts.format
	}
	if opts.lang != "" {
		cfg.LanguageHint = opts.lang
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if opts.endpoint != "" {
		cfg.Endpoint = opts.endpoint
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.quality > 0 {
		cfg.JPEGQuality = opts.quality
	}
	if opts.dpi > 0 {
		cfg.DPI = opts.dpi
	}
	if opts.stats {
		cfg.ShowStats = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, logger *slog.Logger, opts options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if cfg.CredentialsPath == "" {
		path, ambiguous, err := system.FindCredentials(cfg.CredentialsDir)
		if err != nil {
			return err
		}
		if ambiguous {
			logger.Warn("several credential files found, using the first", "dir", cfg.CredentialsDir, "path", path)
		}
		cfg.CredentialsPath = path
	}

	creds, err := recognizer.LoadCredentials(ctx, cfg.CredentialsPath)
	if err != nil {
		return err
	}

	src, err := source.Open(cfg.InputPath, cfg)
	if err != nil {
		return err
	}
	defer src.Close()

	rec, err := recognizer.New(ctx, cfg, creds, logger)
	if err != nil {
		return err
	}
	defer rec.Close()

	logger.Debug("starting", "input", cfg.InputPath, "backend", cfg.Backend, "lang", cfg.LanguageHint)
	return engine.NewProject(cfg, src, rec, logger).Run(ctx, os.Stdout)
}
