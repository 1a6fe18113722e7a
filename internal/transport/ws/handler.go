package ws

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"spyfall/internal/app"
	"spyfall/internal/domain"
)

// HandlerOptions configures the WebSocket endpoint
type HandlerOptions struct {
	AllowedOrigins    []string      // empty accepts any origin
	HeartbeatInterval time.Duration // advertised to clients in the connected message
}

// Handler handles WebSocket connections
type Handler struct {
	hub       *app.GameHub
	upgrader  websocket.Upgrader
	heartbeat time.Duration
	logger    *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *app.GameHub, opts HandlerOptions, logger *slog.Logger) *Handler {
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = 30 * time.Second
	}
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin(opts.AllowedOrigins),
		},
		heartbeat: opts.HeartbeatInterval,
		logger:    logger,
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// ServeHTTP handles WebSocket upgrade requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomCode := r.URL.Query().Get("roomCode")
	if roomCode == "" {
		http.Error(w, "roomCode is required", http.StatusBadRequest)
		return
	}

	name, err := domain.NormalizeName(r.URL.Query().Get("name"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Get the room session
	session, err := h.hub.GetSession(roomCode)
	if err != nil {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}

	// Seat the player before upgrading so a refusal is a plain HTTP status
	if _, err := session.Join(name); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, domain.ErrGameAlreadyStarted) {
			status = http.StatusConflict
		}
		http.Error(w, DescribeError(err).Message, status)
		return
	}

	// Upgrade connection to WebSocket
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		if _, ok := session.GetClient(name); !ok {
			session.Disconnect(name)
		}
		return
	}

	client := NewClient(conn, session, name, uuid.NewString(), h.logger)

	// connected is queued first so it always precedes room events
	client.sendConnected(h.heartbeat)
	session.RegisterClient(client)

	h.logger.Info("websocket connected",
		"roomCode", session.GetRoomCode(),
		"player", name,
		"conn", client.GetConnID(),
	)

	client.Run()
}
