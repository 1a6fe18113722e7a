package app

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"spyfall/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type scriptedRand struct {
	vals []int
	i    int
}

func (s *scriptedRand) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

// fakeClient records every event it is sent
type fakeClient struct {
	name string
	id   string

	mu     sync.Mutex
	events []*domain.GameEvent
	closed bool
}

func newFakeClient(name string) *fakeClient {
	return &fakeClient{name: name, id: uuid.NewString()}
}

func (c *fakeClient) Send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ev, ok := message.(*domain.GameEvent); ok {
		c.events = append(c.events, ev)
	}
	return nil
}

func (c *fakeClient) GetPlayerName() string { return c.name }
func (c *fakeClient) GetConnID() string     { return c.id }

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeClient) received(eventType domain.EventType) []*domain.GameEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*domain.GameEvent
	for _, ev := range c.events {
		if ev.Type == eventType {
			out = append(out, ev)
		}
	}
	return out
}

// recordingMirror keeps the last snapshot saved per room
type recordingMirror struct {
	mu      sync.Mutex
	saved   map[string]domain.RoomSnapshot
	deleted []string
}

func newRecordingMirror() *recordingMirror {
	return &recordingMirror{saved: make(map[string]domain.RoomSnapshot)}
}

func (m *recordingMirror) Save(snap domain.RoomSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved[snap.Code] = snap
}

func (m *recordingMirror) Delete(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saved, code)
	m.deleted = append(m.deleted, code)
}

func (m *recordingMirror) last(code string) (domain.RoomSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.saved[code]
	return snap, ok
}

// quietOptions keeps every background timer out of the way unless a test shortens it.
func quietOptions() SessionOptions {
	return SessionOptions{
		TickInterval:   time.Hour,
		AutoStartDelay: time.Hour,
		SweepInterval:  time.Hour,
		NoticeTTL:      time.Hour,
	}
}

func newTestSession(t *testing.T, opts SessionOptions, players ...string) *RoomSession {
	t.Helper()
	return newTestSessionWith(t, domain.DefaultSettings(), opts, players...)
}

func newTestSessionWith(t *testing.T, settings domain.Settings, opts SessionOptions, players ...string) *RoomSession {
	t.Helper()
	require.NotEmpty(t, players)

	room, err := domain.NewRoom("ABC123", players[0], settings, time.Now())
	require.NoError(t, err)

	s := NewRoomSession(room, opts, testLogger())
	t.Cleanup(s.Close)

	for _, name := range players[1:] {
		_, err := s.Join(name)
		require.NoError(t, err)
	}
	return s
}

func readyAll(t *testing.T, s *RoomSession, names ...string) {
	t.Helper()
	for _, name := range names {
		ready, err := s.ToggleReady(name)
		require.NoError(t, err)
		require.True(t, ready)
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
