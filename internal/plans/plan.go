package plans

import (
	"errors"
	"time"
)

var ErrNoPlan = errors.New("no workout plan yet")

// Plan is a generated workout plan for one hunter.
type Plan struct {
	ID          string    `json:"id"`
	CharacterID string    `json:"characterId"`
	Goal        string    `json:"goal"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}
