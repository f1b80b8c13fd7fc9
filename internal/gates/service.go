package gates

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/internal/character"
	"github.com/arisefit/hunterhub/internal/progression"
)

type runsRepo interface {
	AddRun(ctx context.Context, run Run) error
	Runs(ctx context.Context, characterID string) ([]Run, error)
	ClearCounts(ctx context.Context, characterID string) (map[string]int, error)
}

type characters interface {
	Character(ctx context.Context, id string) (*character.Character, error)
	GrantExperience(ctx context.Context, id string, amount int) (*progression.Result, error)
}

// ClearOutcome is what clearing a gate produced.
type ClearOutcome struct {
	Run     Run                 `json:"run"`
	Gate    Gate                `json:"gate"`
	Rewards *progression.Result `json:"rewards,omitempty"`
}

// GateInfo is a gate together with how often this hunter cleared it.
type GateInfo struct {
	Gate
	TimesCleared int  `json:"timesCleared"`
	Locked       bool `json:"locked"`
}

type Service struct {
	repo    runsRepo
	hunters characters
}

func NewService(repo runsRepo, hunters characters) *Service {
	return &Service{
		repo:    repo,
		hunters: hunters,
	}
}

// Gates lists all gates with the hunter's clear counts and lock state.
func (s *Service) Gates(ctx context.Context, characterID string) ([]GateInfo, error) {
	c, err := s.hunters.Character(ctx, characterID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.ClearCounts(ctx, characterID)
	if err != nil {
		return nil, err
	}

	all := KnownGates()
	infos := make([]GateInfo, 0, len(all))
	for _, gate := range all {
		infos = append(infos, GateInfo{
			Gate:         gate,
			TimesCleared: counts[gate.ID],
			Locked:       c.Level < gate.RecommendedLevel,
		})
	}
	return infos, nil
}

func (s *Service) Runs(ctx context.Context, characterID string) ([]Run, error) {
	return s.repo.Runs(ctx, characterID)
}

// Clear records a gate run and grants the gate's experience reward.
// A gate above the hunter's level is locked and can not be cleared.
func (s *Service) Clear(ctx context.Context, characterID, gateID string, durationMinutes int) (*ClearOutcome, error) {
	gate, ok := KnownGate(gateID)
	if !ok {
		return nil, ErrUnknownGate
	}
	if durationMinutes < 0 {
		return nil, ErrInvalidDuration
	}

	c, err := s.hunters.Character(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if c.Level < gate.RecommendedLevel {
		return nil, ErrGateLocked
	}

	run := Run{
		ID:              uuid.NewString(),
		CharacterID:     characterID,
		GateID:          gateID,
		DurationMinutes: durationMinutes,
		ClearedAt:       time.Now(),
	}
	if err := s.repo.AddRun(ctx, run); err != nil {
		return nil, err
	}

	outcome := &ClearOutcome{Run: run, Gate: gate}
	// the run is durable; a failed grant is logged, not rolled back
	rewards, err := s.hunters.GrantExperience(ctx, characterID, gate.RewardExperience)
	if err != nil {
		log.Errorf("clear gate %s for %s: grant experience: %s", gateID, characterID, err)
		return outcome, nil
	}
	outcome.Rewards = rewards
	return outcome, nil
}
