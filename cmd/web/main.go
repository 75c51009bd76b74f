package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"thirdcoast.systems/darkroom/cmd/web/auth"
	"thirdcoast.systems/darkroom/cmd/web/internal/preview"
	"thirdcoast.systems/darkroom/cmd/web/internal/web"
	"thirdcoast.systems/darkroom/internal/application"
	"thirdcoast.systems/darkroom/internal/config"
	"thirdcoast.systems/darkroom/internal/db"
	"thirdcoast.systems/darkroom/internal/editor"
	"thirdcoast.systems/darkroom/internal/effects"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting web service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var store editor.Store = editor.NewMemoryStore()
	if conf.DatabaseDSN != "" {
		pool, err := application.OpenDBPoolWithRetry(ctx, *conf)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		dbc, err := db.NewDatabaseConnection(ctx, pool)
		if err != nil {
			slog.Error("failed to create database connection", "error", err)
			os.Exit(1)
		}
		defer dbc.Close()

		sessions := db.NewSessionStore(dbc)
		prune(ctx, sessions, conf.SessionIdleTimeout)
		go pruneLoop(ctx, sessions, conf.SessionIdleTimeout)
		store = sessions
	} else {
		slog.Info("DATABASE_DSN not set; sessions are kept in memory")
	}

	mgr := editor.NewManager(editor.Options{
		Store:       store,
		Dispatcher:  effects.NewClient(conf.EffectsBaseURL, conf.EffectsTimeout),
		IdleTimeout: conf.SessionIdleTimeout,
		Quality:     conf.ExportQuality,
		Logger:      slog.Default(),
	})
	go mgr.Run(ctx)

	e, err := web.NewWebserver(ctx, web.Options{
		SessionManager: auth.NewSessionManager(conf.SessionSecret, conf.SessionIdleTimeout),
		Editor:         mgr,
		PreviewHub:     preview.NewHub(),
		UploadMaxBytes: conf.UploadMaxBytes,
	})
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.WebServerPort)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "addr", addr, "effects", conf.EffectsBaseURL)
	if err := e.Start(addr); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Echo returns an error on Shutdown; treat it as normal if context is done.
		if ctx.Err() != nil {
			return
		}
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

const pruneInterval = time.Hour

func prune(ctx context.Context, sessions *db.SessionStore, idle time.Duration) {
	if n, err := sessions.Prune(ctx, time.Now().Add(-idle)); err != nil {
		slog.Warn("failed to prune stale sessions", "error", err)
	} else if n > 0 {
		slog.Info("pruned stale sessions", "count", n)
	}
}

// pruneLoop removes persisted sessions that outlived the idle timeout.
func pruneLoop(ctx context.Context, sessions *db.SessionStore, idle time.Duration) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune(ctx, sessions, idle)
		}
	}
}
