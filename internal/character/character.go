package character

import (
	"time"

	"github.com/arisefit/hunterhub/internal/progression"
)

type QuestStatus string

const (
	QuestStatusAvailable QuestStatus = "available"
	QuestStatusActive    QuestStatus = "active"
	QuestStatusCompleted QuestStatus = "completed"
)

// QuestState is the per-hunter state of a single quest. Entries are
// created lazily; a quest with no entry is available.
type QuestState struct {
	Status   QuestStatus `json:"status"`
	Progress int         `json:"progress"` // 0 - 100
}

const (
	StatStrength = "strength"
	StatVitality = "vitality"
	StatAgility  = "agility"
)

// Character is the per-hunter progression record.
type Character struct {
	ID                    string                `json:"id"`
	HunterName            string                `json:"hunterName"`
	Level                 int                   `json:"level"`
	Experience            int                   `json:"experience"`
	ExperienceToNextLevel int                   `json:"experienceToNextLevel"`
	StatPoints            int                   `json:"statPoints"`
	HitPoints             int                   `json:"hitPoints"`
	MaxHitPoints          int                   `json:"maxHitPoints"`
	Strength              int                   `json:"strength"`
	Vitality              int                   `json:"vitality"`
	Agility               int                   `json:"agility"`
	EquippedShadows       []string              `json:"equippedShadows"`
	Quests                map[string]QuestState `json:"quests"`
	CreatedAt             time.Time             `json:"createdAt"`
	UpdatedAt             time.Time             `json:"updatedAt"`
}

// NewDefault returns the character every hunter starts with.
func NewDefault(id, hunterName string) *Character {
	now := time.Now()
	return &Character{
		ID:                    id,
		HunterName:            hunterName,
		Level:                 1,
		Experience:            0,
		ExperienceToNextLevel: 100,
		StatPoints:            0,
		HitPoints:             100,
		MaxHitPoints:          100,
		Strength:              5,
		Vitality:              5,
		Agility:               5,
		EquippedShadows:       []string{},
		Quests:                map[string]QuestState{},
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func (c *Character) ProgressionState() progression.State {
	return progression.State{
		Level:                 c.Level,
		Experience:            c.Experience,
		ExperienceToNextLevel: c.ExperienceToNextLevel,
		StatPoints:            c.StatPoints,
		MaxHitPoints:          c.MaxHitPoints,
	}
}

// QuestState returns the state for the given quest id,
// defaulting to available when no entry exists yet.
func (c *Character) QuestState(questID string) QuestState {
	if state, ok := c.Quests[questID]; ok {
		return state
	}
	return QuestState{Status: QuestStatusAvailable, Progress: 0}
}

func (c *Character) HasShadowEquipped(shadowID string) bool {
	for _, id := range c.EquippedShadows {
		if id == shadowID {
			return true
		}
	}
	return false
}

func (c *Character) StatValue(stat string) (int, bool) {
	switch stat {
	case StatStrength:
		return c.Strength, true
	case StatVitality:
		return c.Vitality, true
	case StatAgility:
		return c.Agility, true
	default:
		return 0, false
	}
}

// Clone returns a deep copy, so snapshots handed out by the service
// can be mutated by callers without data races.
func (c *Character) Clone() *Character {
	clone := *c
	clone.EquippedShadows = make([]string, len(c.EquippedShadows))
	copy(clone.EquippedShadows, c.EquippedShadows)
	clone.Quests = make(map[string]QuestState, len(c.Quests))
	for id, state := range c.Quests {
		clone.Quests[id] = state
	}
	return &clone
}
