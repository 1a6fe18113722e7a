package ws

import (
	"encoding/json"
	"time"

	"spyfall/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgToggleReady MessageType = "toggle_ready"
	MsgStartGame   MessageType = "start_game"
	MsgCallVote    MessageType = "call_vote"
	MsgCastVote    MessageType = "cast_vote"
	MsgSpyGuess    MessageType = "spy_guess"
	MsgRequestHint MessageType = "request_hint"
	MsgChat        MessageType = "chat"
	MsgHeartbeat   MessageType = "heartbeat"
	MsgPing        MessageType = "ping"
)

// Server → Client message types
const (
	MsgConnected          MessageType = "connected"
	MsgError              MessageType = "error"
	MsgRoomState          MessageType = "room_state"
	MsgRoundStarted       MessageType = "round_started"
	MsgRoundResults       MessageType = "round_results"
	MsgPlayerDisconnected MessageType = "player_disconnected"
	MsgHint               MessageType = "hint"
	MsgPong               MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

var eventMessageTypes = map[domain.EventType]MessageType{
	domain.EventRoomState:          MsgRoomState,
	domain.EventRoundStarted:       MsgRoundStarted,
	domain.EventRoundEnded:         MsgRoundResults,
	domain.EventPlayerDisconnected: MsgPlayerDisconnected,
	domain.EventHint:               MsgHint,
}

// messageFromEvent converts a room event to its wire form
func messageFromEvent(event *domain.GameEvent) *ServerMessage {
	msgType, ok := eventMessageTypes[event.Type]
	if !ok {
		msgType = MessageType(event.Type)
	}
	return &ServerMessage{
		Type:      msgType,
		Payload:   event.Payload,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// CastVotePayload is the payload for cast_vote message
type CastVotePayload struct {
	Accused string `json:"accused"`
}

// SpyGuessPayload is the payload for spy_guess message
type SpyGuessPayload struct {
	Location string `json:"location"`
}

// ChatPayload is the payload for chat message
type ChatPayload struct {
	Text string `json:"text"`
}

// Server message payloads

// ConnectedPayload is the payload for connected message
type ConnectedPayload struct {
	Player       string          `json:"player"`
	RoomCode     string          `json:"roomCode"`
	ConnectionID string          `json:"connectionId"`
	HeartbeatMs  int64           `json:"heartbeatMs"`
	State        domain.RoomView `json:"state"`
}

// ErrorPayload is the payload for error message
type ErrorPayload = domain.ErrorPayload
