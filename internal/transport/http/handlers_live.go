package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"ballotbox/internal/broadcast"
	"ballotbox/internal/platform/middleware"
)

// LiveHandler upgrades /ws requests and hands the connection to the hub.
type LiveHandler struct {
	hub      *broadcast.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewLiveHandler accepts any origin when allowedOrigin is "*".
func NewLiveHandler(hub *broadcast.Hub, allowedOrigin string, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}
				origin := r.Header.Get("Origin")
				return origin == "" || origin == allowedOrigin
			},
		},
		logger: logger,
	}
}

func (h *LiveHandler) Register(r chi.Router) {
	r.Get("/ws", h.handleWS)
}

func (h *LiveHandler) handleWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.WarnContext(ctx, "websocket upgrade failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		return
	}
	conn := broadcast.NewWSConn(ws)
	if err := broadcast.Serve(ctx, h.hub, conn); err != nil {
		h.logger.DebugContext(ctx, "observer disconnected",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
	}
}
