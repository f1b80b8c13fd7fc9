package plans

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/internal/character"
)

type plansRepo interface {
	Add(ctx context.Context, plan Plan) error
	Latest(ctx context.Context, characterID string) (*Plan, error)
}

type aiClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service generates workout plans from the hunter's current build. When
// the AI upstream is down a static plan matching the goal is used.
type Service struct {
	repo plansRepo
	ai   aiClient
}

func NewService(repo plansRepo, ai aiClient) *Service {
	return &Service{
		repo: repo,
		ai:   ai,
	}
}

func (s *Service) Generate(ctx context.Context, c *character.Character, goal string) (*Plan, error) {
	if goal == "" {
		goal = "general fitness"
	}

	content, err := s.ai.Generate(ctx, buildPrompt(c, goal))
	if err != nil {
		log.Errorf("generate workout plan for %s: %s", c.ID, err)
		content = fallbackPlan(c, goal)
	}

	plan := Plan{
		ID:          uuid.NewString(),
		CharacterID: c.ID,
		Goal:        goal,
		Content:     content,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Add(ctx, plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *Service) Latest(ctx context.Context, characterID string) (*Plan, error) {
	return s.repo.Latest(ctx, characterID)
}

func buildPrompt(c *character.Character, goal string) string {
	return fmt.Sprintf(
		"Write a one week workout plan for a hunter at level %d "+
			"(strength %d, vitality %d, agility %d) whose goal is %q. "+
			"Structure it per day, keep it under 300 words.",
		c.Level, c.Strength, c.Vitality, c.Agility, goal,
	)
}

func fallbackPlan(c *character.Character, goal string) string {
	intensity := "light"
	switch {
	case c.Level >= 20:
		intensity = "high"
	case c.Level >= 8:
		intensity = "moderate"
	}
	return fmt.Sprintf(
		"Goal: %s (%s intensity)\n"+
			"Mon: full body strength, 3 rounds\n"+
			"Tue: 30 min cardio\n"+
			"Wed: rest and stretching\n"+
			"Thu: upper body strength, 3 rounds\n"+
			"Fri: intervals, 20 min\n"+
			"Sat: lower body strength, 3 rounds\n"+
			"Sun: rest",
		goal, intensity,
	)
}
