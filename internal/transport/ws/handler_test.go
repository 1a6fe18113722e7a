package ws

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spyfall/internal/app"
	"spyfall/internal/domain"
)

type rawMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type testEnv struct {
	hub    *app.GameHub
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := app.NewGameHub(app.HubConfig{
		Settings: domain.DefaultSettings(),
		Session: app.SessionOptions{
			TickInterval:   time.Hour,
			AutoStartDelay: time.Hour,
			SweepInterval:  time.Hour,
			NoticeTTL:      time.Hour,
		},
	}, nil, logger)
	server := httptest.NewServer(NewHandler(hub, HandlerOptions{HeartbeatInterval: 15 * time.Second}, logger))
	t.Cleanup(func() {
		server.Close()
		hub.Close()
	})
	return &testEnv{hub: hub, server: server}
}

func (e *testEnv) url(roomCode, name string) string {
	q := url.Values{"roomCode": {roomCode}, "name": {name}}
	return "ws" + strings.TrimPrefix(e.server.URL, "http") + "/?" + q.Encode()
}

type testConn struct {
	t       *testing.T
	conn    *websocket.Conn
	pending []rawMessage
}

func (e *testEnv) dial(t *testing.T, roomCode, name string) *testConn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(e.url(roomCode, name), nil)
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })

	c := &testConn{t: t, conn: conn}
	connected := c.next()
	require.Equal(t, MsgConnected, connected.Type)
	return c
}

func (c *testConn) write(msgType MessageType, payload interface{}) {
	c.t.Helper()
	msg := map[string]interface{}{"type": msgType}
	if payload != nil {
		msg["payload"] = payload
	}
	require.NoError(c.t, c.conn.WriteJSON(msg))
}

// next returns the next server message. Frames may carry several messages separated by newlines.
func (c *testConn) next() rawMessage {
	c.t.Helper()
	for len(c.pending) == 0 {
		require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := c.conn.ReadMessage()
		require.NoError(c.t, err)
		for _, line := range bytes.Split(data, []byte{'\n'}) {
			var msg rawMessage
			require.NoError(c.t, json.Unmarshal(line, &msg))
			c.pending = append(c.pending, msg)
		}
	}
	msg := c.pending[0]
	c.pending = c.pending[1:]
	return msg
}

// await reads until a message of the given type satisfies match
func (c *testConn) await(msgType MessageType, match func(json.RawMessage) bool) json.RawMessage {
	c.t.Helper()
	for {
		msg := c.next()
		if msg.Type == msgType && (match == nil || match(msg.Payload)) {
			return msg.Payload
		}
	}
}

func statusMatches(status domain.Phase) func(json.RawMessage) bool {
	return func(raw json.RawMessage) bool {
		var view domain.RoomView
		return json.Unmarshal(raw, &view) == nil && view.Status == status
	}
}

func TestHandler_RejectsBeforeUpgrade(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.hub.CreateRoom("Alice")
	require.NoError(t, err)

	tests := []struct {
		name       string
		roomCode   string
		player     string
		wantStatus int
	}{
		{"missing room code", "", "Bob", http.StatusBadRequest},
		{"bad name", s.GetRoomCode(), "B", http.StatusBadRequest},
		{"unknown room", "ZZZ999", "Bob", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(env.url(tt.roomCode, tt.player), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestHandler_NewcomerMidRoundConflicts(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.hub.CreateRoom("Alice")
	require.NoError(t, err)
	for _, name := range []string{"Alice", "Bob", "Cara"} {
		_, err := s.Join(name)
		require.NoError(t, err)
	}
	require.NoError(t, s.StartGame("Alice"))

	_, resp, err := websocket.DefaultDialer.Dial(env.url(s.GetRoomCode(), "Dan"), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Known players can still reconnect.
	bob := env.dial(t, s.GetRoomCode(), "Bob")
	bob.write(MsgPing, nil)
	bob.await(MsgPong, nil)
}

func TestHandler_ConnectedCarriesState(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.hub.CreateRoom("Alice")
	require.NoError(t, err)

	conn, resp, err := websocket.DefaultDialer.Dial(env.url(strings.ToLower(s.GetRoomCode()), " Bob "), nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	c := &testConn{t: t, conn: conn}
	msg := c.next()
	require.Equal(t, MsgConnected, msg.Type)

	var payload ConnectedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "Bob", payload.Player)
	assert.Equal(t, s.GetRoomCode(), payload.RoomCode)
	assert.NotEmpty(t, payload.ConnectionID)
	assert.Equal(t, int64(15000), payload.HeartbeatMs)
	assert.Equal(t, domain.PhaseLobby, payload.State.Status)
	// The host has not connected yet, so only Bob is listed.
	require.Len(t, payload.State.Players, 1)
	assert.Equal(t, "Bob", payload.State.Players[0].Name)
}

func TestHandler_ErrorsAreCoded(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.hub.CreateRoom("Alice")
	require.NoError(t, err)
	bob := env.dial(t, s.GetRoomCode(), "Bob")

	bob.write(MsgStartGame, nil)
	var p ErrorPayload
	require.NoError(t, json.Unmarshal(bob.await(MsgError, nil), &p))
	assert.Equal(t, ErrCodeNotHost, p.Code)

	bob.write("dance", nil)
	require.NoError(t, json.Unmarshal(bob.await(MsgError, nil), &p))
	assert.Equal(t, ErrCodeInvalidMessage, p.Code)

	require.NoError(t, bob.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	require.NoError(t, json.Unmarshal(bob.await(MsgError, nil), &p))
	assert.Equal(t, ErrCodeInvalidMessage, p.Code)

	bob.write(MsgCastVote, nil)
	require.NoError(t, json.Unmarshal(bob.await(MsgError, nil), &p))
	assert.Equal(t, ErrCodeInvalidMessage, p.Code)
}

func TestHandler_PlayRound(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.hub.CreateRoom("Alice")
	require.NoError(t, err)
	code := s.GetRoomCode()

	conns := map[string]*testConn{}
	for _, name := range []string{"Alice", "Bob", "Cara"} {
		conns[name] = env.dial(t, code, name)
	}

	conns["Alice"].write(MsgStartGame, nil)
	for _, c := range conns {
		c.await(MsgRoomState, statusMatches(domain.PhasePlaying))
	}

	spy := s.Snapshot()
	var spyName string
	for name, role := range spy.Roles {
		if role.IsSpy {
			spyName = name
		}
	}
	require.NotEmpty(t, spyName)

	// Chat reaches everyone.
	conns["Alice"].write(MsgChat, ChatPayload{Text: "hello"})
	conns["Cara"].await(MsgRoomState, func(raw json.RawMessage) bool {
		var view domain.RoomView
		return json.Unmarshal(raw, &view) == nil && len(view.Messages) == 1 && view.Messages[0].Text == "hello"
	})

	conns[spyName].write(MsgSpyGuess, SpyGuessPayload{Location: s.Snapshot().Roles[otherThan(spy.Roles, spyName)].LocationName()})

	for name, c := range conns {
		raw := c.await(MsgRoundResults, nil)
		var result domain.RoundResult
		require.NoError(t, json.Unmarshal(raw, &result), name)
		assert.True(t, result.SpyWon, name)
		assert.Equal(t, spyName, result.Spy, name)
	}

	assert.Equal(t, domain.PhaseLobby, s.GetPhase())
	assert.Equal(t, 2, s.Snapshot().Players[spyName].Score)
}

func otherThan(roles map[string]domain.RoleAssignment, name string) string {
	for n := range roles {
		if n != name {
			return n
		}
	}
	return ""
}

func TestHandler_CloseMarksOffline(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.hub.CreateRoom("Alice")
	require.NoError(t, err)
	code := s.GetRoomCode()

	alice := env.dial(t, code, "Alice")
	bob := env.dial(t, code, "Bob")

	require.NoError(t, bob.conn.Close())

	raw := alice.await(MsgPlayerDisconnected, nil)
	var p domain.PlayerDisconnectedPayload
	require.NoError(t, json.Unmarshal(raw, &p))
	assert.Equal(t, []string{"Bob"}, p.Players)

	require.Eventually(t, func() bool {
		return !s.Snapshot().Players["Bob"].IsOnline()
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_ReconnectSurvivesStaleClose(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.hub.CreateRoom("Alice")
	require.NoError(t, err)
	code := s.GetRoomCode()

	first := env.dial(t, code, "Bob")
	second := env.dial(t, code, "Bob")

	// The first connection is closed by the server once replaced.
	require.NoError(t, first.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		if _, _, err := first.conn.ReadMessage(); err != nil {
			break
		}
	}

	second.write(MsgPing, nil)
	second.await(MsgPong, nil)
	assert.True(t, s.Snapshot().Players["Bob"].IsOnline())
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err      error
		wantCode string
		wantMsg  string
	}{
		{&domain.CooldownError{Remaining: 30 * time.Second}, ErrCodeVoteCooldown, "please wait 30 seconds before calling another vote"},
		{&domain.NameError{Reason: "name must be at least 2 characters"}, ErrCodeInvalidName, "name must be at least 2 characters"},
		{&domain.HintLockedError{UnlocksAt: 240, Timer: 300}, ErrCodeHintUnavailable, "hint unlocks in 60 seconds"},
		{&domain.PlayersNeededError{Need: 4, Online: 3}, ErrCodeNotEnoughPlayers, "at least 4 players are needed to start"},
		{domain.ErrNotEnoughPlayers, ErrCodeNotEnoughPlayers, "not enough players to start"},
		{domain.ErrGameAlreadyStarted, ErrCodeGameAlreadyStarted, "Game already started"},
		{io.EOF, ErrCodeInternalError, "Something went wrong, please try again"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			got := DescribeError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantMsg, got.Message)
		})
	}
}
