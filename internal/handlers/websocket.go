package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/client"
)

// ClientHub registers websocket clients for schedule updates
type ClientHub interface {
	client.Hub
	Register(c *client.Client)
	GetClientCount() int
}

// WebSocketHandler upgrades connections and hands them to the hub
type WebSocketHandler struct {
	hub      ClientHub
	ctx      context.Context
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewWebSocketHandler creates a websocket handler. Client pumps run on ctx,
// not the request context, so they outlive the upgrade request.
func NewWebSocketHandler(ctx context.Context, h ClientHub, allowedOrigins []string, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: h,
		ctx: ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With().Str("component", "websocket").Logger(),
	}
}

// HandleWebSocket upgrades HTTP connections to WebSocket
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	clientID := uuid.New().String()
	c := client.NewClient(clientID, conn, h.hub, h.logger)

	h.hub.Register(c)

	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)

	h.logger.Debug().Str("client_id", clientID).Msg("websocket connection established")
}

// originChecker allows any origin when the list is empty or contains "*"
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}
