package app

import "spyfall/internal/domain"

// Mirror receives a copy of every room snapshot after it changes.
// Implementations must not block the caller.
type Mirror interface {
	Save(snap domain.RoomSnapshot)
	Delete(roomCode string)
}

// NopMirror discards everything
type NopMirror struct{}

func (NopMirror) Save(domain.RoomSnapshot) {}

func (NopMirror) Delete(string) {}
