package ws

import (
	"errors"

	"spyfall/internal/domain"
)

// Error codes
const (
	ErrCodeInvalidMessage     = "INVALID_MESSAGE"
	ErrCodeInvalidName        = "INVALID_NAME"
	ErrCodeInvalidRoomCode    = "INVALID_ROOM_CODE"
	ErrCodeRoomNotFound       = "ROOM_NOT_FOUND"
	ErrCodeGameAlreadyStarted = "GAME_ALREADY_STARTED"
	ErrCodeRoomCodeExhausted  = "ROOM_CODE_EXHAUSTED"
	ErrCodeNotEnoughPlayers   = "NOT_ENOUGH_PLAYERS"
	ErrCodeInvalidAction      = "INVALID_ACTION"
	ErrCodeNotHost            = "NOT_HOST"
	ErrCodePlayerNotFound     = "PLAYER_NOT_FOUND"
	ErrCodeNotInRound         = "NOT_IN_ROUND"
	ErrCodeAlreadyVoted       = "ALREADY_VOTED"
	ErrCodeCannotVoteSelf     = "CANNOT_VOTE_SELF"
	ErrCodeInvalidTarget      = "INVALID_TARGET"
	ErrCodeVotesPending       = "VOTES_PENDING"
	ErrCodeVoteCooldown       = "VOTE_COOLDOWN"
	ErrCodeNotSpy             = "NOT_SPY"
	ErrCodeUnknownLocation    = "UNKNOWN_LOCATION"
	ErrCodeHintUnavailable    = "HINT_UNAVAILABLE"
	ErrCodeMessageRejected    = "MESSAGE_REJECTED"
	ErrCodeRoundResolved      = "ROUND_RESOLVED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

var errorCodes = []struct {
	err  error
	code string
	msg  string
}{
	{domain.ErrInvalidName, ErrCodeInvalidName, ""},
	{domain.ErrInvalidRoomCode, ErrCodeInvalidRoomCode, "Room code must be 6 letters or digits"},
	{domain.ErrRoomNotFound, ErrCodeRoomNotFound, "Room not found"},
	{domain.ErrGameAlreadyStarted, ErrCodeGameAlreadyStarted, "Game already started"},
	{domain.ErrRoomCodeExhausted, ErrCodeRoomCodeExhausted, "Could not create a room, please try again"},
	{domain.ErrNotEnoughPlayers, ErrCodeNotEnoughPlayers, ""},
	{domain.ErrInvalidPhase, ErrCodeInvalidAction, "You can't do that right now"},
	{domain.ErrNotHost, ErrCodeNotHost, "Only the host can start the game"},
	{domain.ErrPlayerNotFound, ErrCodePlayerNotFound, "Player not found"},
	{domain.ErrNotInRound, ErrCodeNotInRound, "You are not playing this round"},
	{domain.ErrAlreadyVoted, ErrCodeAlreadyVoted, "You have already voted"},
	{domain.ErrCannotVoteSelf, ErrCodeCannotVoteSelf, "You can't vote for yourself"},
	{domain.ErrInvalidTarget, ErrCodeInvalidTarget, "That player is not in this round"},
	{domain.ErrVotesPending, ErrCodeVotesPending, "Waiting for everyone to vote"},
	{domain.ErrVoteCooldown, ErrCodeVoteCooldown, ""},
	{domain.ErrNotSpy, ErrCodeNotSpy, "Only the spy can do that"},
	{domain.ErrUnknownLocation, ErrCodeUnknownLocation, "Unknown location"},
	{domain.ErrHintUsed, ErrCodeHintUnavailable, "You already used your hint this round"},
	{domain.ErrHintTooEarly, ErrCodeHintUnavailable, ""},
	{domain.ErrEmptyMessage, ErrCodeMessageRejected, "Message cannot be empty"},
	{domain.ErrMessageTooLong, ErrCodeMessageRejected, "Message is too long"},
	{domain.ErrRoundAlreadyResolved, ErrCodeRoundResolved, "This round is already over"},
}

// DescribeError maps an error to a stable code and a message fit to show a player
func DescribeError(err error) ErrorPayload {
	for _, e := range errorCodes {
		if !errors.Is(err, e.err) {
			continue
		}
		msg := e.msg
		if msg == "" {
			msg = err.Error()
		}
		return ErrorPayload{Code: e.code, Message: msg}
	}
	return ErrorPayload{Code: ErrCodeInternalError, Message: "Something went wrong, please try again"}
}
