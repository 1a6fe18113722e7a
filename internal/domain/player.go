package domain

import "time"

// Player represents a player in a room
type Player struct {
	Name     string    `json:"name"`
	Ready    bool      `json:"ready"`
	Score    int       `json:"score"`
	Online   *bool     `json:"online,omitempty"`
	LastSeen time.Time `json:"lastSeen"`
}

// NewPlayer creates an online player with a zero score
func NewPlayer(name string, now time.Time) *Player {
	p := &Player{
		Name:     name,
		Ready:    false,
		Score:    0,
		LastSeen: now,
	}
	p.SetOnline(true)
	return p
}

// IsOnline reports presence; an unset flag counts as online
func (p *Player) IsOnline() bool {
	return p.Online == nil || *p.Online
}

// SetOnline stores the presence flag
func (p *Player) SetOnline(online bool) {
	p.Online = &online
}

// Disconnect marks the player offline as of now
func (p *Player) Disconnect(now time.Time) {
	p.SetOnline(false)
	p.LastSeen = now
}

// Reconnect marks the player online as of now
func (p *Player) Reconnect(now time.Time) {
	p.SetOnline(true)
	p.LastSeen = now
}

// PlayerInfo is the public view of a player
type PlayerInfo struct {
	Name     string `json:"name"`
	Ready    bool   `json:"ready"`
	Score    int    `json:"score"`
	Online   bool   `json:"online"`
	LastSeen int64  `json:"lastSeen"`
	IsHost   bool   `json:"isHost"`
}

// ToInfo converts a Player to PlayerInfo
func (p *Player) ToInfo(host string) PlayerInfo {
	return PlayerInfo{
		Name:     p.Name,
		Ready:    p.Ready,
		Score:    p.Score,
		Online:   p.IsOnline(),
		LastSeen: p.LastSeen.UnixMilli(),
		IsHost:   p.Name == host,
	}
}

func (p *Player) clone() *Player {
	cp := *p
	if p.Online != nil {
		online := *p.Online
		cp.Online = &online
	}
	return &cp
}
