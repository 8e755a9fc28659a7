package handler

import (
	"geochat/internal/app/chat"
	"geochat/internal/app/session"
	"geochat/internal/configs"
	"geochat/internal/pkg/metrics"
)

// AppDeps carries the shared components the HTTP handlers need.
type AppDeps struct {
	Hub         *chat.Hub
	Coordinator *session.Coordinator
	Config      *configs.AppConfig
	Metrics     *metrics.Recorder
}
