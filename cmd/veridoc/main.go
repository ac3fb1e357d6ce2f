package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/veridoc/veridoc/internal/assistant"
	"github.com/veridoc/veridoc/internal/authenticity"
	"github.com/veridoc/veridoc/internal/config"
	"github.com/veridoc/veridoc/internal/ocr"
	"github.com/veridoc/veridoc/internal/pipeline"
	"github.com/veridoc/veridoc/internal/scoring"
	"github.com/veridoc/veridoc/internal/server"
	"github.com/veridoc/veridoc/internal/storage"
	"github.com/veridoc/veridoc/internal/textract"
	"github.com/veridoc/veridoc/internal/watcher"
	"github.com/veridoc/veridoc/pkg/utils"
)

const version = "1.0.0"

func main() {
	// Credentials for the authenticity service live in .env during development.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "server":
		runServer(os.Args[2:])
	case "assess":
		runAssess(os.Args[2:])
	case "watch":
		runWatch(os.Args[2:])
	case "version":
		fmt.Println("veridoc " + version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `veridoc - document risk assessment

Usage:
  veridoc server [-config path]            run the HTTP service
  veridoc assess [-config path] file...    assess files and print results
  veridoc watch  [-config path] [dir...]   assess files dropped into directories
  veridoc version                          print the version
`)
}

// loadConfig reads the config file, falling back to ./config.yaml and then
// to built-in defaults when no file exists.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return config.Load(candidate)
		}
	}
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg, nil
}

func buildAssessor(cfg *config.Config, logger *zap.Logger) *pipeline.Assessor {
	engine := ocr.NewTesseract(cfg.OCR.Language)
	extractor := textract.New(engine,
		textract.WithLogger(logger),
		textract.WithFastPathMinChars(cfg.Pipeline.FastPathMinChars),
		textract.WithRasterDPI(cfg.Pipeline.RasterDPI),
		textract.WithMaxWorkers(cfg.Pipeline.MaxWorkers),
		textract.WithEnhance(cfg.OCR.Enhance),
	)
	auth := authenticity.NewFromEnv(cfg.Authenticity.URL,
		time.Duration(cfg.Authenticity.TimeoutSeconds)*time.Second, logger)
	fraud := scoring.NewFraudEngine(
		scoring.Config{ManipulationScore: cfg.Fraud.ManipulationScore}, auth, logger)
	return pipeline.New(extractor, fraud, logger)
}

func runServer(args []string) {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := storage.New(cfg.Storage.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close()

	assessor := buildAssessor(cfg, logger)
	responder := assistant.New(store, logger)
	srv := server.New(cfg.Server, assessor, store, responder, version, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}

func runAssess(args []string) {
	fs := flag.NewFlagSet("assess", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	noSave := fs.Bool("no-save", false, "skip writing audit rows")
	fs.Parse(args)

	files := fs.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "assess: at least one file is required")
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var store storage.Store
	if !*noSave {
		s, err := storage.New(cfg.Storage.DatabasePath, logger)
		if err != nil {
			logger.Fatal("failed to open storage", zap.Error(err))
		}
		defer s.Close()
		store = s
	}

	assessor := buildAssessor(cfg, logger)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	failed := false
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Error("failed to read file", zap.String("file", file), zap.Error(err))
			failed = true
			continue
		}
		record, err := assessor.Assess(ctx, content, filepath.Base(file))
		if err != nil {
			logger.Error("assessment failed", zap.String("file", file), zap.Error(err))
			failed = true
			continue
		}
		if store != nil {
			if err := store.SaveAssessment(ctx, record); err != nil {
				logger.Error("failed to save audit row", zap.String("file", file), zap.Error(err))
			}
		}
		if err := enc.Encode(record); err != nil {
			logger.Error("failed to encode record", zap.Error(err))
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	dirs := append(append([]string(nil), cfg.Watch.Directories...), fs.Args()...)
	if len(dirs) == 0 {
		fmt.Fprintln(os.Stderr, "watch: no directories configured; pass them as arguments or set watch.directories")
		os.Exit(2)
	}

	store, err := storage.New(cfg.Storage.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer store.Close()

	assessor := buildAssessor(cfg, logger)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	onDocument := func(path string) {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read dropped file", zap.String("path", path), zap.Error(err))
			return
		}
		record, err := assessor.Assess(ctx, content, filepath.Base(path))
		if err != nil {
			logger.Error("assessment failed", zap.String("path", path), zap.Error(err))
			return
		}
		if err := store.SaveAssessment(ctx, record); err != nil {
			logger.Error("failed to save audit row", zap.String("path", path), zap.Error(err))
			return
		}
		logger.Info("document assessed",
			zap.String("path", path),
			zap.String("type", string(record.DocumentType)),
			zap.String("risk", string(record.RiskAssessment.RiskLevel)))
	}

	inbox := watcher.New(dirs, cfg.Watch.RecursiveOrDefault(), onDocument,
		watcher.WithLogger(logger))
	if err := inbox.Start(ctx); err != nil {
		logger.Fatal("failed to start inbox watcher", zap.Error(err))
	}
	defer inbox.Stop()
	inbox.SyncExisting()

	<-ctx.Done()
	logger.Info("shutting down")
}
