package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// ChatMessage is one line of the round's discussion
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessage appends a message to the round's chat
func (r *Room) SendMessage(sender, text string, now time.Time) (ChatMessage, error) {
	if r.Status != PhasePlaying && r.Status != PhaseVoting {
		return ChatMessage{}, ErrInvalidPhase
	}
	if _, err := r.GetPlayer(sender); err != nil {
		return ChatMessage{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ChatMessage{}, ErrEmptyMessage
	}
	if r.Settings.MaxMessageLength > 0 && utf8.RuneCountInString(text) > r.Settings.MaxMessageLength {
		return ChatMessage{}, ErrMessageTooLong
	}

	msg := ChatMessage{Sender: sender, Text: text, Timestamp: now}
	r.Messages = append(r.Messages, msg)
	return msg, nil
}

// SortedMessages returns a copy of the chat ordered by timestamp
func (r *Room) SortedMessages() []ChatMessage {
	if len(r.Messages) == 0 {
		return nil
	}
	msgs := make([]ChatMessage, len(r.Messages))
	copy(msgs, r.Messages)
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs
}
