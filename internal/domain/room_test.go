package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	r, err := NewRoom("abc123", "  Alice ", DefaultSettings(), t0)
	require.NoError(t, err)

	assert.Equal(t, "ABC123", r.Code)
	assert.Equal(t, "Alice", r.Host)
	assert.Equal(t, PhaseLobby, r.Status)
	assert.Equal(t, 480, r.Timer)
	require.Contains(t, r.Players, "Alice")
	assert.True(t, r.Players["Alice"].IsOnline())
	assert.Equal(t, 0, r.Players["Alice"].Score)
}

func TestNewRoom_RejectsBadInput(t *testing.T) {
	_, err := NewRoom("ABC12", "Alice", DefaultSettings(), t0)
	assert.ErrorIs(t, err, ErrInvalidRoomCode)

	_, err = NewRoom("ABC123", "A", DefaultSettings(), t0)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestJoin(t *testing.T) {
	r := newTestRoom(t, "Alice")

	p, err := r.Join("Bob", t0)
	require.NoError(t, err)
	assert.False(t, p.Ready)
	assert.True(t, p.IsOnline())

	t.Run("duplicate name merges", func(t *testing.T) {
		r.Players["Bob"].Score = 4
		r.Players["Bob"].Disconnect(t0)

		p, err := r.Join("Bob", t0.Add(time.Minute))
		require.NoError(t, err)
		assert.Len(t, r.Players, 2)
		assert.Equal(t, 4, p.Score)
		assert.True(t, p.IsOnline())
		assert.Equal(t, t0.Add(time.Minute), p.LastSeen)
	})

	t.Run("newcomer refused mid-round", func(t *testing.T) {
		_, err := r.Join("Cara", t0)
		require.NoError(t, err)
		startWith(t, r, "Bob")

		_, err = r.Join("Dan", t0)
		assert.ErrorIs(t, err, ErrGameAlreadyStarted)
		assert.NotContains(t, r.Players, "Dan")
	})

	t.Run("known player may reconnect mid-round", func(t *testing.T) {
		require.NoError(t, r.Disconnect("Cara", t0))
		_, err := r.Join("Cara", t0)
		assert.NoError(t, err)
	})
}

func TestToggleReady(t *testing.T) {
	r := newTestRoom(t, "Alice", "Bob")

	ready, err := r.ToggleReady("Bob")
	require.NoError(t, err)
	assert.True(t, ready)

	ready, err = r.ToggleReady("Bob")
	require.NoError(t, err)
	assert.False(t, ready)

	_, err = r.ToggleReady("Nobody")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestCanAutoStart(t *testing.T) {
	r := newTestRoom(t, "Alice", "Bob")
	for name := range r.Players {
		require.NoError(t, r.SetReady(name, true))
	}
	assert.False(t, r.CanAutoStart(), "two players are not enough")

	_, err := r.Join("Cara", t0)
	require.NoError(t, err)
	assert.False(t, r.CanAutoStart(), "Cara is not ready")

	require.NoError(t, r.SetReady("Cara", true))
	assert.True(t, r.CanAutoStart())

	// Offline players are ignored either way.
	_, err = r.Join("Dan", t0)
	require.NoError(t, err)
	require.NoError(t, r.Disconnect("Dan", t0))
	assert.True(t, r.CanAutoStart())
}

func TestViewFor_HidesOtherRoles(t *testing.T) {
	r := newTestRoom(t, "Alice", "Bob", "Cara")
	startWith(t, r, "Bob")

	view := r.ViewFor("Alice")
	require.NotNil(t, view.MyRole)
	assert.False(t, view.MyRole.IsSpy)
	assert.Equal(t, "Hub", view.MyRole.LocationName())
	assert.Len(t, view.Players, 3)

	spyView := r.ViewFor("Bob")
	require.NotNil(t, spyView.MyRole)
	assert.True(t, spyView.MyRole.IsSpy)
	assert.Nil(t, spyView.MyRole.Location)
}

func TestSnapshot_IsDetached(t *testing.T) {
	r := newTestRoom(t, "Alice", "Bob", "Cara")
	snap := r.Snapshot()

	r.Players["Alice"].Score = 10
	r.Players["Alice"].Disconnect(t0)

	assert.Equal(t, 0, snap.Players["Alice"].Score)
	assert.True(t, snap.Players["Alice"].IsOnline())
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "trimmed", in: "  Bob  ", want: "Bob"},
		{name: "allowed charset", in: "x_y-z 9", want: "x_y-z 9"},
		{name: "too short", in: "B", wantErr: true},
		{name: "empty", in: "   ", wantErr: true},
		{name: "too long", in: "abcdefghijklmnopqrstu", wantErr: true},
		{name: "max length", in: "abcdefghijklmnopqrst", want: "abcdefghijklmnopqrst"},
		{name: "bad charset", in: "bob!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeName(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	code, err := NormalizeRoomCode(" ab12cd ")
	require.NoError(t, err)
	assert.Equal(t, "AB12CD", code)

	for _, bad := range []string{"", "ABC", "ABCDEFG", "AB-12C"} {
		_, err := NormalizeRoomCode(bad)
		assert.ErrorIs(t, err, ErrInvalidRoomCode, bad)
	}
}

func TestPhaseTransitions(t *testing.T) {
	assert.True(t, PhaseLobby.CanTransitionTo(PhasePlaying))
	assert.True(t, PhasePlaying.CanTransitionTo(PhaseVoting))
	assert.True(t, PhasePlaying.CanTransitionTo(PhaseLobby))
	assert.True(t, PhaseVoting.CanTransitionTo(PhaseLobby))
	assert.False(t, PhaseLobby.CanTransitionTo(PhaseVoting))
	assert.False(t, PhaseVoting.CanTransitionTo(PhasePlaying))
}
