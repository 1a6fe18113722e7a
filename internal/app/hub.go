package app

import (
	"crypto/rand"
	"log/slog"
	mathrand "math/rand"
	"sync"
	"time"

	"spyfall/internal/domain"
)

// RoomCodeChars are characters used for room codes (no ambiguous chars)
const RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// maxCodeAttempts bounds room code generation on collisions
const maxCodeAttempts = 10

// HubConfig holds hub-wide settings applied to every room
type HubConfig struct {
	Settings        domain.Settings
	Session         SessionOptions
	RoomTTL         time.Duration
	CleanupInterval time.Duration
}

// DefaultHubConfig returns the standard configuration
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Settings:        domain.DefaultSettings(),
		RoomTTL:         2 * time.Hour,
		CleanupInterval: 10 * time.Minute,
	}
}

// GameHub manages all active room sessions
type GameHub struct {
	sessions map[string]*RoomSession
	mu       sync.RWMutex
	cfg      HubConfig
	mirror   Mirror
	logger   *slog.Logger
	done     chan struct{}
	once     sync.Once

	generateCode func() string
}

// NewGameHub creates a new game hub
func NewGameHub(cfg HubConfig, mirror Mirror, logger *slog.Logger) *GameHub {
	if mirror == nil {
		mirror = NopMirror{}
	}
	if cfg.Settings == (domain.Settings{}) {
		cfg.Settings = domain.DefaultSettings()
	}
	if cfg.RoomTTL <= 0 {
		cfg.RoomTTL = 2 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 10 * time.Minute
	}

	hub := &GameHub{
		sessions:     make(map[string]*RoomSession),
		cfg:          cfg,
		mirror:       mirror,
		logger:       logger,
		done:         make(chan struct{}),
		generateCode: generateRoomCode,
	}

	// Start cleanup goroutine
	go hub.cleanupLoop()

	return hub
}

// CreateRoom opens a new room with the given host already seated
func (h *GameHub) CreateRoom(host string) (*RoomSession, error) {
	host, err := domain.NormalizeName(host)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// Generate unique room code
	var roomCode string
	for attempts := 0; attempts < maxCodeAttempts; attempts++ {
		candidate := h.generateCode()
		if _, exists := h.sessions[candidate]; !exists {
			roomCode = candidate
			break
		}
	}
	if roomCode == "" {
		return nil, domain.ErrRoomCodeExhausted
	}

	now := h.clock()()
	room, err := domain.NewRoom(roomCode, host, h.cfg.Settings, now)
	if err != nil {
		return nil, err
	}
	// The host counts as online from their first /ws join. A host who never
	// connects is swept like any other stale player.
	if err := room.Disconnect(host, now); err != nil {
		return nil, err
	}

	opts := h.cfg.Session
	opts.Mirror = h.mirror
	session := NewRoomSession(room, opts, h.logger)
	h.sessions[roomCode] = session

	h.logger.Info("room created", "roomCode", roomCode, "host", host)

	return session, nil
}

// GetSession returns a room session by code. Codes are matched case-insensitively.
func (h *GameHub) GetSession(roomCode string) (*RoomSession, error) {
	code, err := domain.NormalizeRoomCode(roomCode)
	if err != nil {
		return nil, domain.ErrRoomNotFound
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	session, ok := h.sessions[code]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	return session, nil
}

// DeleteSession removes a room session
func (h *GameHub) DeleteSession(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, ok := h.sessions[roomCode]; ok {
		h.teardownLocked(roomCode, session)
		h.logger.Info("room deleted", "roomCode", roomCode)
	}
}

// GetSessionCount returns the number of active rooms
func (h *GameHub) GetSessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// GetTotalPlayerCount returns the total number of seated players across all rooms
func (h *GameHub) GetTotalPlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.GetPlayerCount()
	}
	return total
}

// GetOnlinePlayerCount returns the number of online players across all rooms
func (h *GameHub) GetOnlinePlayerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, session := range h.sessions {
		total += session.GetOnlineCount()
	}
	return total
}

// GetPhaseCounts returns how many rooms are in each phase
func (h *GameHub) GetPhaseCounts() map[domain.Phase]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	counts := make(map[domain.Phase]int)
	for _, session := range h.sessions {
		counts[session.GetPhase()]++
	}
	return counts
}

// Close shuts down the hub and all sessions
func (h *GameHub) Close() {
	h.once.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()

	for code, session := range h.sessions {
		h.teardownLocked(code, session)
	}
}

func (h *GameHub) teardownLocked(roomCode string, session *RoomSession) {
	session.Close()
	delete(h.sessions, roomCode)
	h.mirror.Delete(roomCode)
}

func (h *GameHub) clock() func() time.Time {
	if h.cfg.Session.Clock != nil {
		return h.cfg.Session.Clock
	}
	return time.Now
}

// generateRoomCode generates a random room code
func generateRoomCode() string {
	b := make([]byte, domain.RoomCodeLength)
	rand.Read(b)

	code := make([]byte, domain.RoomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code)
}

func newRand() *mathrand.Rand {
	return mathrand.New(mathrand.NewSource(time.Now().UnixNano()))
}

// cleanupLoop periodically cleans up idle rooms
func (h *GameHub) cleanupLoop() {
	ticker := time.NewTicker(h.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.done:
			return
		case <-ticker.C:
			h.cleanupStaleRooms()
		}
	}
}

// cleanupStaleRooms removes rooms nobody is connected to that have been idle for too long
func (h *GameHub) cleanupStaleRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.clock()()
	for roomCode, session := range h.sessions {
		if session.ClientCount() == 0 && now.Sub(session.GetLastActivity()) > h.cfg.RoomTTL {
			h.teardownLocked(roomCode, session)
			h.logger.Info("stale room cleaned up", "roomCode", roomCode)
		}
	}
}
