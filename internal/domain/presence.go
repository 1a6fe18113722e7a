package domain

import (
	"slices"
	"time"
)

// Heartbeat refreshes a player's last-seen time
func (r *Room) Heartbeat(name string, now time.Time) error {
	player, err := r.GetPlayer(name)
	if err != nil {
		return err
	}
	player.LastSeen = now
	return nil
}

// Disconnect marks a player offline as of now
func (r *Room) Disconnect(name string, now time.Time) error {
	player, err := r.GetPlayer(name)
	if err != nil {
		return err
	}
	player.Disconnect(now)
	return nil
}

// SweepStale removes players who have been offline longer than StaleAfter.
// It only runs in the lobby, where no roles or votes can reference them.
func (r *Room) SweepStale(now time.Time) ([]string, error) {
	if r.Status != PhaseLobby {
		return nil, ErrInvalidPhase
	}

	var removed []string
	for name, p := range r.Players {
		if p.IsOnline() || p.LastSeen.IsZero() {
			continue
		}
		if now.Sub(p.LastSeen) > r.Settings.StaleAfter {
			delete(r.Players, name)
			removed = append(removed, name)
		}
	}
	slices.Sort(removed)
	return removed, nil
}

// NewlyOffline lists players that were online before and are offline in snap
func NewlyOffline(prevOnline []string, snap RoomSnapshot) []string {
	var gone []string
	for _, name := range prevOnline {
		if p, ok := snap.Players[name]; ok && !p.IsOnline() {
			gone = append(gone, name)
		}
	}
	return gone
}

// Notifier keeps the short-lived "player disconnected" notices, one per name
type Notifier struct {
	ttl     time.Duration
	notices map[string]time.Time // name -> expiry
}

// NewNotifier creates a notifier whose notices last ttl
func NewNotifier(ttl time.Duration) *Notifier {
	return &Notifier{
		ttl:     ttl,
		notices: make(map[string]time.Time),
	}
}

// Raise adds notices for the given names. A name already showing is not duplicated
// and keeps its first expiry. Returns the names that were newly raised.
func (n *Notifier) Raise(names []string, now time.Time) []string {
	var raised []string
	for _, name := range names {
		if exp, ok := n.notices[name]; ok && now.Before(exp) {
			continue
		}
		n.notices[name] = now.Add(n.ttl)
		raised = append(raised, name)
	}
	return raised
}

// Active returns the names whose notices have not expired, dropping the rest
func (n *Notifier) Active(now time.Time) []string {
	active := make([]string, 0, len(n.notices))
	for name, exp := range n.notices {
		if !now.Before(exp) {
			delete(n.notices, name)
			continue
		}
		active = append(active, name)
	}
	slices.Sort(active)
	return active
}

// TTL returns how long a notice stays up
func (n *Notifier) TTL() time.Duration {
	return n.ttl
}
