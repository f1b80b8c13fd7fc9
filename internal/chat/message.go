package chat

import (
	"errors"
	"time"
)

const maxMessageLength = 500

var (
	ErrEmptyMessage   = errors.New("chat message is empty")
	ErrMessageTooLong = errors.New("chat message too long")
)

type Message struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"characterId,omitempty"`
	Sender      string    `json:"sender"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"createdAt"`
}
