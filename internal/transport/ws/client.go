package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"spyfall/internal/app"
	"spyfall/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256
)

// Client represents a WebSocket client connection
type Client struct {
	conn       *websocket.Conn
	session    *app.RoomSession
	playerName string
	connID     string
	send       chan []byte
	done       chan struct{}
	logger     *slog.Logger
	mu         sync.Mutex
	closed     bool
}

// NewClient creates a new WebSocket client
func NewClient(conn *websocket.Conn, session *app.RoomSession, playerName, connID string, logger *slog.Logger) *Client {
	return &Client{
		conn:       conn,
		session:    session,
		playerName: playerName,
		connID:     connID,
		send:       make(chan []byte, sendBufferSize),
		done:       make(chan struct{}),
		logger:     logger.With("player", playerName, "conn", connID),
	}
}

// GetPlayerName returns the player this connection belongs to
func (c *Client) GetPlayerName() string {
	return c.playerName
}

// GetConnID returns the unique id of this connection
func (c *Client) GetConnID() string {
	return c.connID
}

// Send implements app.ClientConnection interface
func (c *Client) Send(message interface{}) error {
	if event, ok := message.(*domain.GameEvent); ok {
		message = messageFromEvent(event)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped")
		return nil
	}
}

// Close implements app.ClientConnection interface
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.session.DisconnectClient(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes an incoming message from the client
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	var err error
	switch msg.Type {
	case MsgToggleReady:
		err = c.handleToggleReady()
	case MsgStartGame:
		err = c.session.StartGame(c.playerName)
	case MsgCallVote:
		err = c.session.CallVote(c.playerName)
	case MsgCastVote:
		var p CastVotePayload
		if !c.decode(msg.Payload, &p) || p.Accused == "" {
			c.sendError(ErrCodeInvalidMessage, "Choose who to vote for")
			return
		}
		err = c.session.CastVote(c.playerName, p.Accused)
	case MsgSpyGuess:
		var p SpyGuessPayload
		if !c.decode(msg.Payload, &p) || p.Location == "" {
			c.sendError(ErrCodeInvalidMessage, "Name a location to guess")
			return
		}
		_, err = c.session.SpyGuess(c.playerName, p.Location)
	case MsgRequestHint:
		_, err = c.session.RequestHint(c.playerName)
	case MsgChat:
		var p ChatPayload
		if !c.decode(msg.Payload, &p) {
			c.sendError(ErrCodeInvalidMessage, "Invalid payload")
			return
		}
		err = c.session.SendMessage(c.playerName, p.Text)
	case MsgHeartbeat:
		err = c.session.Heartbeat(c.playerName)
	case MsgPing:
		c.sendPong()
	default:
		c.sendError(ErrCodeInvalidMessage, "Unknown message type")
	}

	if err != nil {
		c.logger.Debug("intent rejected", "type", msg.Type, "error", err)
		p := DescribeError(err)
		c.sendError(p.Code, p.Message)
	}
}

func (c *Client) decode(raw json.RawMessage, v interface{}) bool {
	if len(raw) == 0 {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// handleToggleReady handles a toggle_ready message
func (c *Client) handleToggleReady() error {
	ready, err := c.session.ToggleReady(c.playerName)
	if err != nil {
		return err
	}
	c.logger.Debug("ready toggled", "ready", ready)
	return nil
}

// sendConnected sends the connected message to the client
func (c *Client) sendConnected(heartbeat time.Duration) {
	payload := &ConnectedPayload{
		Player:       c.playerName,
		RoomCode:     c.session.GetRoomCode(),
		ConnectionID: c.connID,
		HeartbeatMs:  heartbeat.Milliseconds(),
		State:        c.session.View(c.playerName),
	}

	msg := NewServerMessage(MsgConnected, payload)
	c.Send(msg)
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	msg := NewServerMessage(MsgError, payload)
	c.Send(msg)
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	msg := NewServerMessage(MsgPong, nil)
	c.Send(msg)
}
