package handlers

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/dom/personal-blog/internal/api/middleware"
	"github.com/dom/personal-blog/internal/service"
	"github.com/dom/personal-blog/internal/websocket"
	ws "github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub      *websocket.Hub
	upgrader ws.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler accepts upgrades from same-origin pages and from the
// configured CORS origins.
func NewWebSocketHandler(hub *websocket.Hub, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return &WebSocketHandler{
		hub:    hub,
		logger: logger,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowed[origin] {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// Handle subscribes an authenticated caller to a room's live chat feed.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "userId", identity.UserID, "error", err)
		return
	}

	roomID := service.NormalizeRoomID(r.URL.Query().Get("roomId"))
	client := websocket.NewClient(h.hub, conn, roomID, identity.UserID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
