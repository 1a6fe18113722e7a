package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepStale(t *testing.T) {
	r := newTestRoom(t, "Alice", "Bob", "Cara", "Dan")
	now := t0.Add(10 * time.Minute)

	require.NoError(t, r.Disconnect("Bob", now.Add(-121*time.Second)))
	require.NoError(t, r.Disconnect("Cara", now.Add(-60*time.Second)))
	require.NoError(t, r.Heartbeat("Dan", now.Add(-time.Hour)))

	removed, err := r.SweepStale(now)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bob"}, removed)
	assert.NotContains(t, r.Players, "Bob")
	assert.Contains(t, r.Players, "Cara")
	// Online players are never swept, however old their heartbeat.
	assert.Contains(t, r.Players, "Dan")
}

func TestSweepStale_SkipsZeroLastSeen(t *testing.T) {
	r := newTestRoom(t, "Alice", "Bob")
	r.Players["Bob"].SetOnline(false)
	r.Players["Bob"].LastSeen = time.Time{}

	removed, err := r.SweepStale(t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Contains(t, r.Players, "Bob")
}

func TestSweepStale_OnlyInLobby(t *testing.T) {
	r := newTestRoom(t, "Alice", "Bob", "Cara", "Dan")
	startWith(t, r, "Bob")
	require.NoError(t, r.Disconnect("Dan", t0))

	removed, err := r.SweepStale(t0.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.Empty(t, removed)
	assert.Contains(t, r.Players, "Dan")
}

func TestSweptHostStaysHost(t *testing.T) {
	r := newTestRoom(t, "Alice", "Bob", "Cara")
	require.NoError(t, r.Disconnect("Alice", t0))

	removed, err := r.SweepStale(t0.Add(5 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice"}, removed)
	assert.Equal(t, "Alice", r.Host)
}

func TestHeartbeat_UnknownPlayer(t *testing.T) {
	r := newTestRoom(t, "Alice")
	assert.ErrorIs(t, r.Heartbeat("Zed", t0), ErrPlayerNotFound)
	assert.ErrorIs(t, r.Disconnect("Zed", t0), ErrPlayerNotFound)
}

func TestPlayer_UnsetOnlineCountsAsOnline(t *testing.T) {
	p := &Player{Name: "Legacy"}
	assert.True(t, p.IsOnline())

	p.Disconnect(t0)
	assert.False(t, p.IsOnline())
	assert.Equal(t, t0, p.LastSeen)

	p.Reconnect(t0.Add(time.Second))
	assert.True(t, p.IsOnline())
}

func TestNewlyOffline(t *testing.T) {
	r := newTestRoom(t, "Alice", "Bob", "Cara")
	before := r.OnlinePlayerNames()

	require.NoError(t, r.Disconnect("Cara", t0))
	assert.Equal(t, []string{"Cara"}, NewlyOffline(before, r.Snapshot()))

	// Already offline before: not reported again.
	assert.Empty(t, NewlyOffline(r.OnlinePlayerNames(), r.Snapshot()))
}

func TestNotifier(t *testing.T) {
	n := NewNotifier(5 * time.Second)

	assert.Equal(t, []string{"Bob"}, n.Raise([]string{"Bob"}, t0))
	assert.Empty(t, n.Raise([]string{"Bob"}, t0.Add(time.Second)), "duplicate while showing")
	assert.Equal(t, []string{"Cara"}, n.Raise([]string{"Bob", "Cara"}, t0.Add(2*time.Second)))

	assert.Equal(t, []string{"Bob", "Cara"}, n.Active(t0.Add(4*time.Second)))
	assert.Equal(t, []string{"Cara"}, n.Active(t0.Add(5*time.Second)))
	assert.Empty(t, n.Active(t0.Add(7*time.Second)))

	// Once expired the same name can be raised again.
	assert.Equal(t, []string{"Bob"}, n.Raise([]string{"Bob"}, t0.Add(8*time.Second)))
	assert.Equal(t, 5*time.Second, n.TTL())
}
