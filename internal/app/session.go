package app

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"spyfall/internal/domain"
)

// ClientConnection represents a connected client
type ClientConnection interface {
	Send(message interface{}) error
	GetPlayerName() string
	GetConnID() string
	Close() error
}

// SessionOptions holds the timings and collaborators of a room session
type SessionOptions struct {
	TickInterval   time.Duration
	AutoStartDelay time.Duration
	SweepInterval  time.Duration
	NoticeTTL      time.Duration

	Catalog domain.Catalog
	Rand    domain.Randomizer
	Clock   func() time.Time
	Mirror  Mirror
}

func (o *SessionOptions) withDefaults() {
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.AutoStartDelay <= 0 {
		o.AutoStartDelay = 2 * time.Second
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = 60 * time.Second
	}
	if o.NoticeTTL <= 0 {
		o.NoticeTTL = 5 * time.Second
	}
	if o.Catalog == nil {
		o.Catalog = domain.DefaultCatalog()
	}
	if o.Rand == nil {
		o.Rand = newRand()
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Mirror == nil {
		o.Mirror = NopMirror{}
	}
}

// RoomSession is the single coordinator of one room. Every intent goes
// through it, so state changes are applied one at a time.
type RoomSession struct {
	room     *domain.Room
	opts     SessionOptions
	notifier *domain.Notifier
	mu       sync.Mutex

	clients   map[string]ClientConnection // player name -> latest connection
	clientsMu sync.RWMutex
	logger    *slog.Logger

	// Timers
	roundDone   chan struct{}
	autoStart   *time.Timer
	noticeTimer *time.Timer

	// Event channel for broadcasting
	events chan *domain.GameEvent
	done   chan struct{}
}

// NewRoomSession creates a new room session and starts its background loops
func NewRoomSession(room *domain.Room, opts SessionOptions, logger *slog.Logger) *RoomSession {
	opts.withDefaults()

	session := &RoomSession{
		room:     room,
		opts:     opts,
		notifier: domain.NewNotifier(opts.NoticeTTL),
		clients:  make(map[string]ClientConnection),
		logger:   logger.With("roomCode", room.Code),
		events:   make(chan *domain.GameEvent, 256),
		done:     make(chan struct{}),
	}

	go session.eventLoop()
	go session.sweepLoop()

	session.opts.Mirror.Save(room.Snapshot())

	return session
}

// GetRoomCode returns the room code
func (s *RoomSession) GetRoomCode() string {
	return s.room.Code
}

// GetHost returns the host's name
func (s *RoomSession) GetHost() string {
	return s.room.Host
}

// GetCreatedAt returns when the room was created
func (s *RoomSession) GetCreatedAt() time.Time {
	return s.room.CreatedAt
}

// GetLastActivity returns the time of the last accepted intent
func (s *RoomSession) GetLastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.LastActivity
}

// GetPlayerCount returns the number of seated players, online or not
func (s *RoomSession) GetPlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.room.Players)
}

// GetOnlineCount returns the number of online players
func (s *RoomSession) GetOnlineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.room.OnlinePlayerNames())
}

// GetPhase returns the current phase
func (s *RoomSession) GetPhase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Status
}

// Snapshot returns a detached copy of the full room record
func (s *RoomSession) Snapshot() domain.RoomSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room.Snapshot()
}

// View returns what the named player currently sees
func (s *RoomSession) View(name string) domain.RoomView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked(name)
}

// RoomSummary is the public, role-free description of a room
type RoomSummary struct {
	Code         string       `json:"code"`
	Host         string       `json:"host"`
	Status       domain.Phase `json:"status"`
	PlayerCount  int          `json:"playerCount"`
	OnlineCount  int          `json:"onlineCount"`
	CurrentRound int          `json:"currentRound"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Summary describes the room without revealing anything secret
func (s *RoomSession) Summary() RoomSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return RoomSummary{
		Code:         s.room.Code,
		Host:         s.room.Host,
		Status:       s.room.Status,
		PlayerCount:  len(s.room.Players),
		OnlineCount:  len(s.room.OnlinePlayerNames()),
		CurrentRound: s.room.CurrentRound,
		CreatedAt:    s.room.CreatedAt,
	}
}

// RegisterClient registers the connection for a player, replacing any older one
func (s *RoomSession) RegisterClient(client ClientConnection) {
	s.clientsMu.Lock()
	old, had := s.clients[client.GetPlayerName()]
	s.clients[client.GetPlayerName()] = client
	s.clientsMu.Unlock()

	if had && old.GetConnID() != client.GetConnID() {
		s.logger.Debug("replacing connection", "player", client.GetPlayerName(), "oldConn", old.GetConnID())
		old.Close()
	}
}

// UnregisterClient removes a connection. It reports false when a newer
// connection has already taken the player's slot.
func (s *RoomSession) UnregisterClient(client ClientConnection) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	current, ok := s.clients[client.GetPlayerName()]
	if !ok || current.GetConnID() != client.GetConnID() {
		return false
	}
	delete(s.clients, client.GetPlayerName())
	return true
}

// GetClient returns the client for a player
func (s *RoomSession) GetClient(name string) (ClientConnection, bool) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	client, ok := s.clients[name]
	return client, ok
}

// ClientCount returns the number of open connections
func (s *RoomSession) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Join seats a player or brings a known one back online
func (s *RoomSession) Join(name string) (*domain.PlayerInfo, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.room.Join(name, s.now())
	if err != nil {
		return nil, err
	}
	s.changedLocked()

	info := player.ToInfo(s.room.Host)
	s.logger.Info("player joined", "player", name)
	return &info, nil
}

// DisconnectClient handles a closed connection. The player only goes offline
// if this was still their current connection.
func (s *RoomSession) DisconnectClient(client ClientConnection) {
	if !s.UnregisterClient(client) {
		return
	}
	s.Disconnect(client.GetPlayerName())
}

// Disconnect marks a player offline
func (s *RoomSession) Disconnect(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	before := s.room.OnlinePlayerNames()
	if err := s.room.Disconnect(name, now); err != nil {
		return
	}

	if gone := domain.NewlyOffline(before, s.room.Snapshot()); len(gone) > 0 {
		s.raiseNoticesLocked(gone, now)
	}
	s.logger.Info("player disconnected", "player", name)

	// The leaver may have been the last vote outstanding.
	if s.room.AllVoted() {
		s.resolveVotesLocked()
	}
	s.changedLocked()
}

// Heartbeat refreshes a player's presence
func (s *RoomSession) Heartbeat(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.room.GetPlayer(name)
	if err != nil {
		return err
	}
	if !player.IsOnline() {
		player.Reconnect(s.now())
		s.changedLocked()
		return nil
	}
	return s.room.Heartbeat(name, s.now())
}

// ToggleReady flips a player's ready flag
func (s *RoomSession) ToggleReady(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ready, err := s.room.ToggleReady(name)
	if err != nil {
		return false, err
	}
	s.changedLocked()
	return ready, nil
}

// StartGame starts a round on the host's request
func (s *RoomSession) StartGame(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.room.IsHost(name) {
		return domain.ErrNotHost
	}
	return s.startRoundLocked()
}

// CallVote ends the discussion and opens voting
func (s *RoomSession) CallVote(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.CallVote(name, s.now()); err != nil {
		return err
	}
	s.stopRoundTimerLocked()
	s.logger.Info("vote called", "player", name)
	s.changedLocked()
	return nil
}

// CastVote records a vote and resolves the round once everyone has voted
func (s *RoomSession) CastVote(voter, accused string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.room.CastVote(voter, accused); err != nil {
		return err
	}
	if s.room.AllVoted() {
		s.resolveVotesLocked()
	}
	s.changedLocked()
	return nil
}

// SpyGuess ends the round with the spy's guess
func (s *RoomSession) SpyGuess(name, guess string) (*domain.RoundResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.room.SpyGuess(name, guess, s.opts.Catalog)
	if err != nil {
		return nil, err
	}
	s.roundEndedLocked(result)
	s.changedLocked()
	return result, nil
}

// RequestHint gives the spy a hint, delivered to them alone
func (s *RoomSession) RequestHint(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hint, err := s.room.RequestHint(name, s.opts.Catalog, s.opts.Rand)
	if err != nil {
		return "", err
	}
	s.queueEvent(domain.NewPlayerEvent(domain.EventHint, s.room.Code, name, &domain.HintPayload{Hint: hint}))
	s.changedLocked()
	return hint, nil
}

// SendMessage posts a chat line
func (s *RoomSession) SendMessage(name, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.room.SendMessage(name, text, s.now()); err != nil {
		return err
	}
	s.changedLocked()
	return nil
}

// startRoundLocked deals a new round and starts its timer (caller must hold lock)
func (s *RoomSession) startRoundLocked() error {
	if err := s.room.StartRound(s.opts.Catalog, s.opts.Rand); err != nil {
		return err
	}
	s.cancelAutoStartLocked()

	s.roundDone = make(chan struct{})
	go s.roundCountdown(s.roundDone)

	s.logger.Info("round started", "round", s.room.CurrentRound, "players", len(s.room.Roles))
	s.queueEvent(domain.NewEvent(domain.EventRoundStarted, s.room.Code, nil))
	s.changedLocked()
	return nil
}

// roundCountdown runs the round timer until it expires or is stopped
func (s *RoomSession) roundCountdown(stop <-chan struct{}) {
	ticker := time.NewTicker(s.opts.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-s.done:
			return
		case <-ticker.C:
			if s.tick(stop) {
				return
			}
		}
	}
}

// tick advances the round timer once. It reports whether the countdown is over.
func (s *RoomSession) tick(stop <-chan struct{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-stop:
		return true
	default:
	}

	expired := s.room.Tick()
	if !s.room.TimerRunning {
		s.roundDone = nil
	}
	if expired {
		s.logger.Info("round timer expired", "round", s.room.CurrentRound)
	}
	s.broadcastStateLocked()
	return !s.room.TimerRunning
}

func (s *RoomSession) stopRoundTimerLocked() {
	if s.roundDone != nil {
		close(s.roundDone)
		s.roundDone = nil
	}
}

func (s *RoomSession) resolveVotesLocked() {
	result, err := s.room.ResolveVotes()
	if err != nil {
		if !errors.Is(err, domain.ErrVotesPending) {
			s.logger.Error("failed to resolve votes", "error", err)
		}
		return
	}
	s.roundEndedLocked(result)
}

func (s *RoomSession) roundEndedLocked(result *domain.RoundResult) {
	s.stopRoundTimerLocked()
	s.logger.Info("round ended",
		"round", result.Round,
		"reason", result.Reason,
		"spyWon", result.SpyWon,
	)
	s.queueEvent(domain.NewEvent(domain.EventRoundEnded, s.room.Code, result))
}

// changedLocked runs after every accepted mutation (caller must hold lock)
func (s *RoomSession) changedLocked() {
	s.room.Touch(s.now())
	s.evaluateAutoStartLocked()
	s.broadcastStateLocked()
}

// evaluateAutoStartLocked arms the auto-start grace timer while the lobby is
// ready and disarms it as soon as it is not.
func (s *RoomSession) evaluateAutoStartLocked() {
	if !s.room.CanAutoStart() {
		s.cancelAutoStartLocked()
		return
	}
	if s.autoStart != nil {
		return
	}
	s.autoStart = time.AfterFunc(s.opts.AutoStartDelay, s.autoStartFired)
}

func (s *RoomSession) cancelAutoStartLocked() {
	if s.autoStart != nil {
		s.autoStart.Stop()
		s.autoStart = nil
	}
}

func (s *RoomSession) autoStartFired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isClosed() {
		return
	}
	s.autoStart = nil
	if !s.room.CanAutoStart() {
		return
	}
	if err := s.startRoundLocked(); err != nil {
		s.logger.Warn("auto-start failed", "error", err)
	}
}

func (s *RoomSession) raiseNoticesLocked(names []string, now time.Time) {
	raised := s.notifier.Raise(names, now)
	if len(raised) == 0 {
		return
	}
	s.queueEvent(domain.NewEvent(domain.EventPlayerDisconnected, s.room.Code, &domain.PlayerDisconnectedPayload{
		Players:   raised,
		DismissMs: s.notifier.TTL().Milliseconds(),
	}))

	if s.noticeTimer != nil {
		s.noticeTimer.Stop()
	}
	s.noticeTimer = time.AfterFunc(s.notifier.TTL(), s.noticesExpired)
}

func (s *RoomSession) noticesExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isClosed() {
		return
	}
	s.noticeTimer = nil
	s.broadcastStateLocked()
	if len(s.notifier.Active(s.now())) > 0 {
		s.noticeTimer = time.AfterFunc(s.notifier.TTL(), s.noticesExpired)
	}
}

// sweepLoop periodically removes players who went offline a while ago
func (s *RoomSession) sweepLoop() {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *RoomSession) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.room.Status != domain.PhaseLobby {
		return
	}
	removed, err := s.room.SweepStale(s.now())
	if err != nil || len(removed) == 0 {
		return
	}
	s.logger.Info("stale players removed", "players", removed)
	s.evaluateAutoStartLocked()
	s.broadcastStateLocked()
}

func (s *RoomSession) viewLocked(name string) domain.RoomView {
	view := s.room.ViewFor(name)
	if active := s.notifier.Active(s.now()); len(active) > 0 {
		view.RecentlyLeft = active
	}
	return view
}

// broadcastStateLocked queues a personal view for each connected player
// and mirrors the full snapshot (caller must hold lock)
func (s *RoomSession) broadcastStateLocked() {
	s.clientsMu.RLock()
	names := make([]string, 0, len(s.clients))
	for name := range s.clients {
		names = append(names, name)
	}
	s.clientsMu.RUnlock()

	for _, name := range names {
		view := s.viewLocked(name)
		s.queueEvent(domain.NewPlayerEvent(domain.EventRoomState, s.room.Code, name, &view))
	}

	s.opts.Mirror.Save(s.room.Snapshot())
}

// queueEvent adds an event to the broadcast queue
func (s *RoomSession) queueEvent(event *domain.GameEvent) {
	select {
	case s.events <- event:
	default:
		s.logger.Warn("event queue full, dropping event", "type", event.Type)
	}
}

// eventLoop processes events and broadcasts to clients
func (s *RoomSession) eventLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.events:
			s.broadcastEvent(event)
		}
	}
}

// broadcastEvent sends an event to appropriate clients
func (s *RoomSession) broadcastEvent(event *domain.GameEvent) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	// If player-specific, send only to that player
	if event.Player != "" {
		if client, ok := s.clients[event.Player]; ok {
			if err := client.Send(event); err != nil {
				s.logger.Debug("failed to send to client", "player", event.Player, "error", err)
			}
		}
		return
	}

	for name, client := range s.clients {
		if err := client.Send(event); err != nil {
			s.logger.Debug("failed to send to client", "player", name, "error", err)
		}
	}
}

func (s *RoomSession) now() time.Time {
	return s.opts.Clock()
}

func (s *RoomSession) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close shuts down the session
func (s *RoomSession) Close() {
	s.mu.Lock()
	if s.isClosed() {
		s.mu.Unlock()
		return
	}
	close(s.done)
	s.stopRoundTimerLocked()
	s.cancelAutoStartLocked()
	if s.noticeTimer != nil {
		s.noticeTimer.Stop()
		s.noticeTimer = nil
	}
	s.mu.Unlock()

	// Close all client connections
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clients = make(map[string]ClientConnection)
	s.clientsMu.Unlock()
}
