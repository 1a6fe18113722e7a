package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors
var (
	// Validation
	ErrInvalidName        = errors.New("invalid player name")
	ErrInvalidRoomCode    = errors.New("invalid room code")
	ErrRoomNotFound       = errors.New("room not found")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrRoomCodeExhausted  = errors.New("failed to generate unique room code")

	// Preconditions
	ErrNotEnoughPlayers     = errors.New("not enough players to start")
	ErrInvalidPhase         = errors.New("invalid action for current phase")
	ErrPlayerNotFound       = errors.New("player not found")
	ErrNotHost              = errors.New("only host can perform this action")
	ErrNotInRound           = errors.New("player has no role this round")
	ErrAlreadyVoted         = errors.New("already voted this round")
	ErrCannotVoteSelf       = errors.New("cannot vote for yourself")
	ErrInvalidTarget        = errors.New("invalid vote target")
	ErrVotesPending         = errors.New("not every player has voted")
	ErrVoteCooldown         = errors.New("vote was called too recently")
	ErrNotSpy               = errors.New("only the spy can do this")
	ErrUnknownLocation      = errors.New("unknown location")
	ErrHintUsed             = errors.New("hint already used this round")
	ErrHintTooEarly         = errors.New("hint not available yet")
	ErrEmptyMessage         = errors.New("message cannot be empty")
	ErrMessageTooLong       = errors.New("message too long")
	ErrRoundAlreadyResolved = errors.New("round already resolved")
)

// CooldownError reports a refused vote call together with the time left.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d seconds before calling another vote", e.SecondsLeft())
}

func (e *CooldownError) Unwrap() error { return ErrVoteCooldown }

// SecondsLeft rounds the remaining cooldown up to whole seconds.
func (e *CooldownError) SecondsLeft() int {
	return int((e.Remaining + time.Second - 1) / time.Second)
}

// PlayersNeededError reports a round start refused for lack of online players.
type PlayersNeededError struct {
	Need   int
	Online int
}

func (e *PlayersNeededError) Error() string {
	return fmt.Sprintf("at least %d players are needed to start", e.Need)
}

func (e *PlayersNeededError) Unwrap() error { return ErrNotEnoughPlayers }

// HintLockedError reports a hint request made before the hint unlocks.
type HintLockedError struct {
	UnlocksAt int // timer value at which the hint unlocks
	Timer     int
}

func (e *HintLockedError) Error() string {
	return fmt.Sprintf("hint unlocks in %d seconds", e.SecondsLeft())
}

func (e *HintLockedError) Unwrap() error { return ErrHintTooEarly }

// SecondsLeft returns how long until the hint unlocks.
func (e *HintLockedError) SecondsLeft() int {
	if e.Timer <= e.UnlocksAt {
		return 0
	}
	return e.Timer - e.UnlocksAt
}

// NameError carries the reason a display name was rejected.
type NameError struct {
	Reason string
}

func (e *NameError) Error() string { return e.Reason }

func (e *NameError) Unwrap() error { return ErrInvalidName }
