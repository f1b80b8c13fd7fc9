package character

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/arisefit/hunterhub/internal/quests"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testQuestsJson = `[
	{"id": "q1", "title": "Push Yourself to the Limit", "type": "daily", "rewardExp": 100},
	{"id": "q2", "title": "Endurance Training", "type": "weekly", "rewardExp": 200, "rewardPoints": 1},
	{"id": "q4", "title": "Recovery Day", "type": "daily", "rewardExp": 50}
]`

type levelUpRecorder struct {
	mutex  sync.Mutex
	events []LevelUp
}

func (r *levelUpRecorder) record(levelUp LevelUp) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.events = append(r.events, levelUp)
}

func (r *levelUpRecorder) all() []LevelUp {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]LevelUp{}, r.events...)
}

func newTestService(t *testing.T) (*Service, *repoMock, *levelUpRecorder) {
	t.Helper()
	catalog, err := quests.NewCatalog(strings.NewReader(testQuestsJson))
	require.NoError(t, err)

	repo := newRepoMock()
	recorder := &levelUpRecorder{}
	service := NewService(repo, catalog, 3, recorder.record)
	t.Cleanup(service.Close)
	return service, repo, recorder
}

func TestGrantExperience(t *testing.T) {
	ctx := context.Background()
	service, _, recorder := newTestService(t)

	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	res, err := service.GrantExperience(ctx, "h1", 50)
	require.NoError(t, err)
	assert.False(t, res.DidLevelUp)
	assert.Equal(t, 50, res.RemainingExperience)
	assert.Equal(t, 100, res.NewExperienceThreshold)
	assert.Empty(t, recorder.all())

	res, err = service.GrantExperience(ctx, "h1", 60)
	require.NoError(t, err)
	assert.True(t, res.DidLevelUp)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 10, res.RemainingExperience)
	assert.Equal(t, 170, res.NewExperienceThreshold)

	c, err := service.Character(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, 10, c.Experience)
	assert.Equal(t, 170, c.ExperienceToNextLevel)
	assert.Equal(t, 2, c.StatPoints)
	assert.Equal(t, 110, c.MaxHitPoints)
	assert.Equal(t, 110, c.HitPoints)

	events := recorder.all()
	require.Len(t, events, 1)
	assert.Equal(t, "h1", events[0].CharacterID)
	assert.Equal(t, 2, events[0].NewLevel)
}

func TestGrantExperience_invalid(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	_, err = service.GrantExperience(ctx, "h1", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = service.GrantExperience(ctx, "h1", -10)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = service.GrantExperience(ctx, "nope", 10)
	assert.ErrorIs(t, err, ErrCharacterNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, "h1"))

	_, err = service.Character(ctx, "h1")
	assert.ErrorIs(t, err, ErrCharacterNotFound)

	assert.ErrorIs(t, service.Delete(ctx, "nope"), ErrCharacterNotFound)
}

func TestAllocateStatPoint(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	// no points yet: the points check comes before stat name validation
	_, err = service.AllocateStatPoint(ctx, "h1", "luck")
	assert.ErrorIs(t, err, ErrNoPointsAvailable)
	_, err = service.AllocateStatPoint(ctx, "h1", StatStrength)
	assert.ErrorIs(t, err, ErrNoPointsAvailable)

	// level up to earn 2 points
	_, err = service.GrantExperience(ctx, "h1", 100)
	require.NoError(t, err)

	_, err = service.AllocateStatPoint(ctx, "h1", "luck")
	assert.ErrorIs(t, err, ErrInvalidStat)

	c, err := service.AllocateStatPoint(ctx, "h1", StatStrength)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Strength)
	assert.Equal(t, 1, c.StatPoints)

	c, err = service.AllocateStatPoint(ctx, "h1", StatAgility)
	require.NoError(t, err)
	assert.Equal(t, 6, c.Agility)
	assert.Equal(t, 0, c.StatPoints)

	_, err = service.AllocateStatPoint(ctx, "h1", StatVitality)
	assert.ErrorIs(t, err, ErrNoPointsAvailable)
}

func TestQuestLifecycle(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	assert.ErrorIs(t, service.AcceptQuest(ctx, "h1", "nope"), ErrUnknownQuest)
	assert.ErrorIs(t, service.AbandonQuest(ctx, "h1", "q1"), ErrQuestNotActive)
	_, err = service.CompleteQuest(ctx, "h1", "q1")
	assert.ErrorIs(t, err, ErrQuestNotActive)

	require.NoError(t, service.AcceptQuest(ctx, "h1", "q1"))
	assert.ErrorIs(t, service.AcceptQuest(ctx, "h1", "q1"), ErrQuestAlreadyTaken)

	c, err := service.Character(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, QuestStatusActive, c.QuestState("q1").Status)

	res, err := service.CompleteQuest(ctx, "h1", "q1")
	require.NoError(t, err)
	// q1 pays exactly the level 1 threshold
	require.NotNil(t, res)
	assert.True(t, res.DidLevelUp)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 0, res.RemainingExperience)

	c, err = service.Character(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, QuestStatusCompleted, c.QuestState("q1").Status)
	assert.Equal(t, 100, c.QuestState("q1").Progress)

	// completed quests can not be retaken, completed again, or abandoned
	assert.ErrorIs(t, service.AcceptQuest(ctx, "h1", "q1"), ErrQuestAlreadyTaken)
	_, err = service.CompleteQuest(ctx, "h1", "q1")
	assert.ErrorIs(t, err, ErrQuestNotActive)
	assert.ErrorIs(t, service.AbandonQuest(ctx, "h1", "q1"), ErrQuestNotActive)
}

func TestAbandonQuest(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	require.NoError(t, service.AcceptQuest(ctx, "h1", "q2"))
	require.NoError(t, service.AbandonQuest(ctx, "h1", "q2"))

	c, err := service.Character(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, QuestStatusAvailable, c.QuestState("q2").Status)
	assert.Equal(t, 0, c.QuestState("q2").Progress)

	// back to available means it can be accepted again
	require.NoError(t, service.AcceptQuest(ctx, "h1", "q2"))
}

func TestCompleteQuest_rewards(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)
	require.NoError(t, service.AcceptQuest(ctx, "h1", "q2"))

	res, err := service.CompleteQuest(ctx, "h1", "q2")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, 100, res.RemainingExperience)

	c, err := service.Character(ctx, "h1")
	require.NoError(t, err)
	// 1 quest bonus point + 2 from the level up
	assert.Equal(t, 3, c.StatPoints)
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, 100, c.Experience)
}

func TestCompleteQuest_grantFailureKeepsQuestCompleted(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newTestService(t)

	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)
	require.NoError(t, service.AcceptQuest(ctx, "h1", "q2"))

	repo.updateFieldsErr = errors.New("db gone")
	res, err := service.CompleteQuest(ctx, "h1", "q2")
	require.NoError(t, err)
	assert.Nil(t, res)

	c, err := service.Character(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, QuestStatusCompleted, c.QuestState("q2").Status)
	assert.Equal(t, 1, c.StatPoints)
	assert.Equal(t, 0, c.Experience) // grant failed, no experience
}

func TestEquipShadow(t *testing.T) {
	ctx := context.Background()
	service, _, _ := newTestService(t)

	_, err := service.CreateDefault(ctx, "h1", "Jinwoo")
	require.NoError(t, err)

	assert.ErrorIs(t, service.EquipShadow(ctx, "h1", "nope", true), ErrUnknownShadow)

	require.NoError(t, service.EquipShadow(ctx, "h1", "sh1", true))
	require.NoError(t, service.EquipShadow(ctx, "h1", "sh2", true))
	require.NoError(t, service.EquipShadow(ctx, "h1", "sh3", true))

	assert.ErrorIs(t, service.EquipShadow(ctx, "h1", "sh1", true), ErrShadowAlreadyEquipped)
	assert.ErrorIs(t, service.EquipShadow(ctx, "h1", "sh4", true), ErrEquipLimitReached)

	require.NoError(t, service.EquipShadow(ctx, "h1", "sh2", false))
	// unequipping again is a no-op
	require.NoError(t, service.EquipShadow(ctx, "h1", "sh2", false))

	require.NoError(t, service.EquipShadow(ctx, "h1", "sh4", true))

	c, err := service.Character(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, []string{"sh1", "sh3", "sh4"}, c.EquippedShadows)
}

func TestChangeStreamRefreshesSnapshot(t *testing.T) {
	ctx := context.Background()
	service, repo, _ := newTestService(t)

	require.NoError(t, repo.Create(ctx, NewDefault("h1", "Jinwoo")))

	// first read loads the snapshot and starts tracking
	c, err := service.Character(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, 1, c.Level)

	updated := NewDefault("h1", "Jinwoo")
	updated.Level = 7
	repo.emit(*updated)

	require.Eventually(t, func() bool {
		c, err := service.Character(ctx, "h1")
		return err == nil && c.Level == 7
	}, time.Second, 10*time.Millisecond)
}
