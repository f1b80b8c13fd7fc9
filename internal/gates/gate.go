package gates

import (
	"errors"
	"time"
)

var (
	ErrUnknownGate     = errors.New("unknown gate")
	ErrGateLocked      = errors.New("gate locked, level too low")
	ErrInvalidDuration = errors.New("invalid workout duration")
)

// Gate is a workout dungeon. Clearing one grants its experience reward.
type Gate struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Rank             string `json:"rank"`
	Description      string `json:"description"`
	RecommendedLevel int    `json:"recommendedLevel"`
	RewardExperience int    `json:"rewardExp"`
}

var knownGates = []Gate{
	{ID: "g1", Name: "Goblin's Den", Rank: "E", Description: "Light cardio session, 20 minutes minimum.", RecommendedLevel: 1, RewardExperience: 40},
	{ID: "g2", Name: "Spider's Nest", Rank: "D", Description: "Full body circuit, 3 rounds.", RecommendedLevel: 5, RewardExperience: 80},
	{ID: "g3", Name: "Orc Stronghold", Rank: "C", Description: "Strength session, compound lifts.", RecommendedLevel: 10, RewardExperience: 150},
	{ID: "g4", Name: "Demon Castle", Rank: "B", Description: "High intensity intervals, 30 minutes.", RecommendedLevel: 18, RewardExperience: 250},
	{ID: "g5", Name: "Red Gate", Rank: "A", Description: "Long endurance run, 10km or more.", RecommendedLevel: 25, RewardExperience: 400},
	{ID: "g6", Name: "Monarch's Domain", Rank: "S", Description: "Competition day simulation, all out.", RecommendedLevel: 35, RewardExperience: 600},
}

func KnownGate(id string) (Gate, bool) {
	for _, gate := range knownGates {
		if gate.ID == id {
			return gate, true
		}
	}
	return Gate{}, false
}

func KnownGates() []Gate {
	return append([]Gate{}, knownGates...)
}

// Run is a single cleared gate.
type Run struct {
	ID              string    `json:"id"`
	CharacterID     string    `json:"characterId"`
	GateID          string    `json:"gateId"`
	DurationMinutes int       `json:"durationMinutes"`
	ClearedAt       time.Time `json:"clearedAt"`
}
