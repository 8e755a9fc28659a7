/*
Package handler provides the HTTP handler function for WebSocket connection upgrading and initialization.

This file contains the HandleWebSocket function, which upgrades the HTTP connection to
WebSocket, registers the client with the Hub and runs the client lifecycle. Room
selection happens later, through the join event.
*/
package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"geochat/internal/app/chat"
	"geochat/internal/pkg/logx"
)

// HandleWebSocket creates an HTTP HandlerFunc to process WebSocket connection requests.
func HandleWebSocket(deps *AppDeps, upgrader websocket.Upgrader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Warn("Failed to upgrade connection to WebSocket", "error", err.Error())
			return
		}

		limiter := rate.NewLimiter(rate.Limit(deps.Config.MessageRate), deps.Config.MessageBurst)
		client := chat.NewClient(deps.Hub, deps.Coordinator, conn, limiter)

		if !deps.Hub.Register(client) {
			logx.Info("WebSocket connection refused: server shutting down")
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
			return
		}

		logx.Info("WebSocket connection established", "connection_id", client.ID())

		go client.WritePump()

		client.ReadPump()
	}
}
