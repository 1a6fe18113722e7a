package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinNameLength  = 2
	MaxNameLength  = 20
	RoomCodeLength = 6
)

var (
	namePattern     = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)
	roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)
)

// NormalizeName trims and validates a display name.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return "", &NameError{Reason: "please enter your name"}
	case n < MinNameLength:
		return "", &NameError{Reason: "name must be at least 2 characters"}
	case n > MaxNameLength:
		return "", &NameError{Reason: "name must be at most 20 characters"}
	}
	if !namePattern.MatchString(name) {
		return "", &NameError{Reason: "name can only contain letters, numbers, spaces, _ and -"}
	}
	return name, nil
}

// NormalizeRoomCode upper-cases and validates a room code.
func NormalizeRoomCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !roomCodePattern.MatchString(code) {
		return "", ErrInvalidRoomCode
	}
	return code, nil
}
