package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"typerace/internal/app"
)

// Handler handles WebSocket connections
type Handler struct {
	hub      *app.Hub
	session  *app.RaceSession
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler that accepts browser connections from allowedOrigin
func NewHandler(hub *app.Hub, session *app.RaceSession, allowedOrigin string, logger *slog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		session: session,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(allowedOrigin),
		},
		logger: logger,
	}
}

// checkOrigin accepts the configured origin, any origin when configured as "*",
// and requests without an Origin header (terminal clients)
func checkOrigin(allowedOrigin string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowedOrigin == "*" {
			return true
		}
		return origin == allowedOrigin
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	connectionID := uuid.New().String()
	client := NewClient(conn, h.hub, h.session, connectionID, h.logger)

	// Registered clients receive broadcasts before they join
	h.hub.Register(client)

	h.logger.Info("websocket connected",
		"connectionID", connectionID,
		"remoteAddr", r.RemoteAddr,
	)

	client.Run()
}
