/*
Package main is the entry point for the GeoChat relay.

It is responsible for loading configuration, initializing the global logging system,
wiring the presence registry, moderation policy, session coordinator and WebSocket hub,
setting up the HTTP server, and gracefully handling operating system interrupt signals
(SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"geochat/internal/app/chat"
	"geochat/internal/app/moderation"
	"geochat/internal/app/presence"
	"geochat/internal/app/session"
	"geochat/internal/configs"
	"geochat/internal/handler"
	"geochat/internal/pkg/logx"
	"geochat/internal/pkg/metrics"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("public_dir", cfg.PublicDir).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Int("extra_blocked_words", len(cfg.ExtraBlockedWords)).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder()
	hub := chat.NewHub(recorder)
	coordinator := session.NewCoordinator(
		presence.NewRegistry(),
		hub,
		moderation.DefaultPolicy(cfg.ExtraBlockedWords...),
		session.WithMetrics(recorder),
	)

	router := handler.Router(ctx, &handler.AppDeps{
		Hub:         hub,
		Coordinator: coordinator,
		Config:      cfg,
		Metrics:     recorder,
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Server is up on port %d", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	// hijacked WebSocket connections are not tracked by Shutdown; close them through the hub
	hub.Shutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}
