package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/chmview/internal/api"
	"github.com/dgallion1/chmview/internal/chmfs"
	"github.com/dgallion1/chmview/internal/config"
	"github.com/dgallion1/chmview/internal/parser"
	"github.com/dgallion1/chmview/internal/search"
	"github.com/dgallion1/chmview/internal/session"
	"github.com/dgallion1/chmview/internal/textenc"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	detector := textenc.Detector{SampleSize: cfg.DetectSampleBytes}
	matcher := chmfs.NewMatcher(cfg.DocumentPatterns)
	engine := &search.Engine{
		Detector: detector,
		Matcher:  matcher,
		Workers:  cfg.SearchWorkers,
		Radius:   cfg.SnippetRadius,
		Log:      log,
	}

	// Initialize session registry.
	sessions := session.NewStore(cfg.MaxSessions, cfg.SessionTTL, session.Options{
		Detector: detector,
		Matcher:  matcher,
		Engine:   engine,
		BaseDir:  cfg.RootsDir,
		Log:      log,
	})
	go sessions.Run(ctx, 5*time.Minute)

	if cfg.Root != "" {
		sess, err := sessions.Create(ctx, cfg.Root)
		if err != nil {
			log.Error("failed to open source", "root", cfg.Root, "error", err)
			os.Exit(1)
		}
		log.Info("source preloaded", "session_id", sess.ID, "root", sess.Root())
	}

	extractor := &parser.Extractor{
		Detector:          detector,
		MaxBytes:          cfg.MaxTextBytes,
		FallbackPdftotext: cfg.PDFFallbackPdftotext,
	}

	// Initialize HTTP server.
	srv := api.NewServer(sessions, extractor, log, cfg)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting chmview", "addr", cfg.Addr(), "roots_dir", cfg.RootsDir, "auth", cfg.APIKey != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
