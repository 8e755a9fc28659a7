/*
Package handler provides the HTTP handlers and routing setup for the chat relay.

This file defines the main Router, applying middleware like logging, CORS and recovery,
IP-based rate limiting on the WebSocket endpoint, and serving the static client UI.
*/
package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"geochat/internal/pkg/limiter"
	"geochat/internal/pkg/logx"
	"geochat/internal/pkg/resp"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "GeoChat Server"

// Router sets up the main HTTP routing table (chi.Router) for the application.
// ctx bounds the lifetime of the background rate limiter cleanup.
func Router(ctx context.Context, deps *AppDeps) http.Handler {
	connectLimiter := limiter.NewIPRateLimiter(ctx, rate.Limit(deps.Config.ConnectRate), deps.Config.ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, map[string]any{
			"status":      "ok",
			"service":     ServiceName,
			"connections": deps.Hub.Count(),
			"users":       deps.Coordinator.Registry().Count(),
		})
	})

	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/rooms", HandleListRooms(deps))
		api.Get("/rooms/{room}/users", HandleRoomUsers(deps))
	})

	r.With(connectLimiter.Middleware).Get("/ws", HandleWebSocket(deps, wsUpgrader))

	if deps.Config.PublicDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(deps.Config.PublicDir)))
	}

	return r
}
