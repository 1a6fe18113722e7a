package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// scriptedRand returns its values in order, each reduced modulo n.
type scriptedRand struct {
	vals []int
	i    int
}

func (s *scriptedRand) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

func newTestRoom(t *testing.T, host string, others ...string) *Room {
	t.Helper()
	r, err := NewRoom("ABC123", host, DefaultSettings(), t0)
	require.NoError(t, err)
	for _, name := range others {
		_, err := r.Join(name, t0)
		require.NoError(t, err)
	}
	return r
}

// startWith starts a round at the Hub with the given spy.
func startWith(t *testing.T, r *Room, spy string) {
	t.Helper()
	online := r.OnlinePlayerNames()
	idx := -1
	for i, n := range online {
		if n == spy {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx, "spy %q not online", spy)
	require.NoError(t, r.StartRound(DefaultCatalog(), &scriptedRand{vals: []int{0, idx}}))
}
