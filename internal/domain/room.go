package domain

import (
	"slices"
	"time"
)

// Settings holds the rules a room plays by
type Settings struct {
	MinPlayers       int           `json:"minPlayers"`
	RoundDuration    int           `json:"roundDuration"` // seconds
	VoteCooldown     time.Duration `json:"voteCooldown"`
	StaleAfter       time.Duration `json:"staleAfter"`
	HintAfter        int           `json:"hintAfter"` // hint unlocks once the timer is at or below this
	MaxMessageLength int           `json:"maxMessageLength"`
}

// DefaultSettings returns the standard rules
func DefaultSettings() Settings {
	return Settings{
		MinPlayers:       3,
		RoundDuration:    480,
		VoteCooldown:     120 * time.Second,
		StaleAfter:       120 * time.Second,
		HintAfter:        240,
		MaxMessageLength: 200,
	}
}

// Randomizer is the source of every random pick a room makes.
// *math/rand.Rand satisfies it.
type Randomizer interface {
	Intn(n int) int
}

// Room is the shared record of one game instance
type Room struct {
	Code             string                    `json:"code"`
	Host             string                    `json:"host"`
	Players          map[string]*Player        `json:"players"`
	Status           Phase                     `json:"status"`
	Timer            int                       `json:"timer"`
	TimerRunning     bool                      `json:"timerRunning"`
	CurrentRound     int                       `json:"currentRound"`
	Roles            map[string]RoleAssignment `json:"roles,omitempty"`
	Votes            map[string]string         `json:"votes,omitempty"`
	Messages         []ChatMessage             `json:"messages,omitempty"`
	SpyHintUsed      bool                      `json:"spyHintUsed"`
	LastVoteCallTime time.Time                 `json:"lastVoteCallTime"`
	Settings         Settings                  `json:"settings"`
	CreatedAt        time.Time                 `json:"createdAt"`
	LastActivity     time.Time                 `json:"lastActivity"`

	// scoredRound is the last round whose outcome was applied.
	scoredRound int
}

// NewRoom creates a lobby with the host already seated
func NewRoom(code, host string, settings Settings, now time.Time) (*Room, error) {
	code, err := NormalizeRoomCode(code)
	if err != nil {
		return nil, err
	}
	host, err = NormalizeName(host)
	if err != nil {
		return nil, err
	}

	return &Room{
		Code:         code,
		Host:         host,
		Players:      map[string]*Player{host: NewPlayer(host, now)},
		Status:       PhaseLobby,
		Timer:        settings.RoundDuration,
		Settings:     settings,
		CreatedAt:    now,
		LastActivity: now,
	}, nil
}

// Touch records activity for expiry purposes
func (r *Room) Touch(now time.Time) {
	r.LastActivity = now
}

// IsHost checks if the given player is the host
func (r *Room) IsHost(name string) bool {
	return r.Host == name
}

// GetPlayer returns a player by name
func (r *Room) GetPlayer(name string) (*Player, error) {
	player, ok := r.Players[name]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return player, nil
}

// Join seats a player, or brings an existing one back online.
// Newcomers are only accepted in the lobby; a reused name merges into the existing seat.
func (r *Room) Join(name string, now time.Time) (*Player, error) {
	if player, ok := r.Players[name]; ok {
		player.Reconnect(now)
		return player, nil
	}

	if r.Status != PhaseLobby {
		return nil, ErrGameAlreadyStarted
	}

	player := NewPlayer(name, now)
	r.Players[name] = player
	return player, nil
}

// SetReady sets a player's ready flag
func (r *Room) SetReady(name string, ready bool) error {
	if r.Status != PhaseLobby {
		return ErrInvalidPhase
	}
	player, err := r.GetPlayer(name)
	if err != nil {
		return err
	}
	player.Ready = ready
	return nil
}

// ToggleReady flips a player's ready flag and returns the new value
func (r *Room) ToggleReady(name string) (bool, error) {
	player, err := r.GetPlayer(name)
	if err != nil {
		return false, err
	}
	if err := r.SetReady(name, !player.Ready); err != nil {
		return false, err
	}
	return player.Ready, nil
}

// OnlinePlayerNames returns the online players sorted by name
func (r *Room) OnlinePlayerNames() []string {
	names := make([]string, 0, len(r.Players))
	for name, p := range r.Players {
		if p.IsOnline() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// AllReady reports whether every online player is ready, with at least MinPlayers online
func (r *Room) AllReady() bool {
	online := r.OnlinePlayerNames()
	if len(online) < r.Settings.MinPlayers {
		return false
	}
	for _, name := range online {
		if !r.Players[name].Ready {
			return false
		}
	}
	return true
}

// CanAutoStart reports whether the lobby should start a round on its own
func (r *Room) CanAutoStart() bool {
	return r.Status == PhaseLobby && r.AllReady()
}

// SpyName returns the current spy, if a round is underway
func (r *Room) SpyName() string {
	for name, role := range r.Roles {
		if role.IsSpy {
			return name
		}
	}
	return ""
}

// RoundLocation returns the location shared by the non-spies this round
func (r *Room) RoundLocation() string {
	for _, role := range r.Roles {
		if !role.IsSpy {
			return role.LocationName()
		}
	}
	return ""
}

// RoomSnapshot is a detached copy of the full room record
type RoomSnapshot struct {
	Code             string                    `json:"code"`
	Host             string                    `json:"host"`
	Players          map[string]*Player        `json:"players"`
	Status           Phase                     `json:"status"`
	Timer            int                       `json:"timer"`
	TimerRunning     bool                      `json:"timerRunning"`
	CurrentRound     int                       `json:"currentRound"`
	Roles            map[string]RoleAssignment `json:"roles,omitempty"`
	Votes            map[string]string         `json:"votes,omitempty"`
	Messages         []ChatMessage             `json:"messages,omitempty"`
	SpyHintUsed      bool                      `json:"spyHintUsed"`
	LastVoteCallTime int64                     `json:"lastVoteCallTime"`
}

// Snapshot deep-copies the room
func (r *Room) Snapshot() RoomSnapshot {
	players := make(map[string]*Player, len(r.Players))
	for name, p := range r.Players {
		players[name] = p.clone()
	}

	var lastCall int64
	if !r.LastVoteCallTime.IsZero() {
		lastCall = r.LastVoteCallTime.UnixMilli()
	}

	snap := RoomSnapshot{
		Code:             r.Code,
		Host:             r.Host,
		Players:          players,
		Status:           r.Status,
		Timer:            r.Timer,
		TimerRunning:     r.TimerRunning,
		CurrentRound:     r.CurrentRound,
		SpyHintUsed:      r.SpyHintUsed,
		LastVoteCallTime: lastCall,
		Messages:         r.SortedMessages(),
	}
	if r.Roles != nil {
		snap.Roles = make(map[string]RoleAssignment, len(r.Roles))
		for name, role := range r.Roles {
			snap.Roles[name] = role
		}
	}
	if r.Votes != nil {
		snap.Votes = make(map[string]string, len(r.Votes))
		for voter, accused := range r.Votes {
			snap.Votes[voter] = accused
		}
	}
	return snap
}

// OnlineNames lists the snapshot's online players sorted by name
func (s RoomSnapshot) OnlineNames() []string {
	names := make([]string, 0, len(s.Players))
	for name, p := range s.Players {
		if p.IsOnline() {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// RoomView is what a single player is shown
type RoomView struct {
	Code             string            `json:"code"`
	Host             string            `json:"host"`
	Status           Phase             `json:"status"`
	Players          []PlayerInfo      `json:"players"`
	Timer            int               `json:"timer"`
	TimerRunning     bool              `json:"timerRunning"`
	CurrentRound     int               `json:"currentRound"`
	MyRole           *RoleAssignment   `json:"myRole,omitempty"`
	Votes            map[string]string `json:"votes,omitempty"`
	VoteCount        int               `json:"voteCount"`
	Messages         []ChatMessage     `json:"messages"`
	SpyHintUsed      bool              `json:"spyHintUsed"`
	LastVoteCallTime int64             `json:"lastVoteCallTime"`
	AllReady         bool              `json:"allReady"`
	RecentlyLeft     []string          `json:"recentlyLeft,omitempty"`
}

// ViewFor builds the view for one player. Only that player's own role is included.
func (r *Room) ViewFor(name string) RoomView {
	snap := r.Snapshot()

	players := make([]PlayerInfo, 0, len(snap.Players))
	for _, n := range snap.OnlineNames() {
		players = append(players, snap.Players[n].ToInfo(r.Host))
	}

	view := RoomView{
		Code:             snap.Code,
		Host:             snap.Host,
		Status:           snap.Status,
		Players:          players,
		Timer:            snap.Timer,
		TimerRunning:     snap.TimerRunning,
		CurrentRound:     snap.CurrentRound,
		Votes:            snap.Votes,
		VoteCount:        len(snap.Votes),
		Messages:         snap.Messages,
		SpyHintUsed:      snap.SpyHintUsed,
		LastVoteCallTime: snap.LastVoteCallTime,
		AllReady:         r.AllReady(),
	}
	if view.Messages == nil {
		view.Messages = []ChatMessage{}
	}
	if role, ok := snap.Roles[name]; ok {
		view.MyRole = &role
	}
	return view
}
