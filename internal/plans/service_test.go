package plans

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arisefit/hunterhub/internal/character"
)

type repoMock struct {
	mutex sync.Mutex
	plans []Plan
}

func (m *repoMock) Add(_ context.Context, plan Plan) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.plans = append(m.plans, plan)
	return nil
}

func (m *repoMock) Latest(_ context.Context, characterID string) (*Plan, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for i := len(m.plans) - 1; i >= 0; i-- {
		if m.plans[i].CharacterID == characterID {
			plan := m.plans[i]
			return &plan, nil
		}
	}
	return nil, ErrNoPlan
}

type aiClientFunc func(ctx context.Context, prompt string) (string, error)

func (f aiClientFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	repo := &repoMock{}

	var seenPrompt string
	service := NewService(repo, aiClientFunc(func(_ context.Context, prompt string) (string, error) {
		seenPrompt = prompt
		return "Mon: squats. Tue: rest.", nil
	}))

	c := character.NewDefault("h1", "Jinwoo")
	c.Level = 12
	c.Strength = 9

	plan, err := service.Generate(ctx, c, "build strength")
	require.NoError(t, err)
	assert.Equal(t, "h1", plan.CharacterID)
	assert.Equal(t, "build strength", plan.Goal)
	assert.Equal(t, "Mon: squats. Tue: rest.", plan.Content)
	assert.NotEmpty(t, plan.ID)

	assert.Contains(t, seenPrompt, "level 12")
	assert.Contains(t, seenPrompt, "strength 9")
	assert.Contains(t, seenPrompt, "build strength")

	latest, err := service.Latest(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, plan.ID, latest.ID)
}

func TestGenerate_fallback(t *testing.T) {
	ctx := context.Background()
	repo := &repoMock{}
	service := NewService(repo, aiClientFunc(func(context.Context, string) (string, error) {
		return "", errors.New("upstream down")
	}))

	plan, err := service.Generate(ctx, character.NewDefault("h1", "Jinwoo"), "")
	require.NoError(t, err)
	assert.Equal(t, "general fitness", plan.Goal)
	assert.Contains(t, plan.Content, "general fitness")
	assert.Contains(t, plan.Content, "light intensity")
}

func TestLatest_none(t *testing.T) {
	service := NewService(&repoMock{}, aiClientFunc(func(context.Context, string) (string, error) {
		return "", nil
	}))
	_, err := service.Latest(context.Background(), "h1")
	assert.ErrorIs(t, err, ErrNoPlan)
}
