package domain

import "time"

// EventType represents the type of room event
type EventType string

const (
	EventRoomState          EventType = "ROOM_STATE"
	EventRoundStarted       EventType = "ROUND_STARTED"
	EventRoundEnded         EventType = "ROUND_ENDED"
	EventPlayerDisconnected EventType = "PLAYER_DISCONNECTED"
	EventHint               EventType = "HINT"
)

// GameEvent represents an event that occurred in a room
type GameEvent struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode"`
	Player    string      `json:"player,omitempty"` // If event is player-specific
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a new room-wide event
func NewEvent(eventType EventType, roomCode string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// NewPlayerEvent creates a new player-specific event
func NewPlayerEvent(eventType EventType, roomCode, player string, payload interface{}) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Player:    player,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}

// Payload types for different events

// PlayerDisconnectedPayload announces players who just went offline
type PlayerDisconnectedPayload struct {
	Players   []string `json:"players"`
	DismissMs int64    `json:"dismissMs"`
}

// HintPayload is sent only to the spy
type HintPayload struct {
	Hint string `json:"hint"`
}

// ErrorPayload is sent when an error occurs
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
