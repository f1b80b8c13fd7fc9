package character

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/internal/progression"
	"github.com/arisefit/hunterhub/internal/quests"
)

type charactersRepo interface {
	Get(ctx context.Context, id string) (*Character, error)
	Create(ctx context.Context, c *Character) error
	Delete(ctx context.Context, id string) error
	UpdateFields(ctx context.Context, id string, fields Fields) error
	SetQuest(ctx context.Context, id, questID string, state QuestState) error
	CompleteQuest(ctx context.Context, id, questID string, state QuestState, bonusStatPoints int) error
	SetEquippedShadows(ctx context.Context, id string, shadows []string) error
	Subscribe(ctx context.Context, id string) (<-chan Character, func(), error)
}

// LevelUp is emitted once per experience grant that raised the level,
// regardless of how many levels were gained in one go.
type LevelUp struct {
	CharacterID string
	NewLevel    int
	Rewards     progression.Result
}

type LevelUpFunc func(levelUp LevelUp)

// Service keeps an in-memory snapshot per character and writes only the
// fields each operation changes. Snapshots are refreshed through the
// repo change stream, so concurrent writers eventually converge.
type Service struct {
	repo               charactersRepo
	catalog            *quests.Catalog
	maxEquippedShadows int
	onLevelUp          LevelUpFunc

	mutex     sync.RWMutex
	snapshots map[string]*Character
	tracked   map[string]func()

	trackCtx    context.Context
	trackCancel context.CancelFunc
}

func NewService(
	repo charactersRepo,
	catalog *quests.Catalog,
	maxEquippedShadows int,
	onLevelUp LevelUpFunc,
) *Service {
	trackCtx, trackCancel := context.WithCancel(context.Background())
	return &Service{
		repo:               repo,
		catalog:            catalog,
		maxEquippedShadows: maxEquippedShadows,
		onLevelUp:          onLevelUp,
		snapshots:          map[string]*Character{},
		tracked:            map[string]func(){},
		trackCtx:           trackCtx,
		trackCancel:        trackCancel,
	}
}

// Close stops all change stream subscriptions.
func (s *Service) Close() {
	s.trackCancel()
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for id, stop := range s.tracked {
		stop()
		delete(s.tracked, id)
	}
}

// CreateDefault creates and stores the starting character for a new hunter.
func (s *Service) CreateDefault(ctx context.Context, id, hunterName string) (*Character, error) {
	c := NewDefault(id, hunterName)
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.storeSnapshot(c)
	return c.Clone(), nil
}

// Delete removes the character for good. Used to undo a character created
// by a signup that could not finish; there is no user-facing delete.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.mutex.Lock()
	delete(s.snapshots, id)
	if stop, ok := s.tracked[id]; ok {
		stop()
		delete(s.tracked, id)
	}
	s.mutex.Unlock()
	return nil
}

// Character returns the current snapshot, loading it from the repo on
// first access.
func (s *Service) Character(ctx context.Context, id string) (*Character, error) {
	return s.snapshot(ctx, id)
}

// GrantExperience applies gained experience through the progression rules
// and persists the outcome. Returns what the gain resolved to.
func (s *Service) GrantExperience(ctx context.Context, id string, amount int) (*progression.Result, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	c, err := s.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	res := progression.ResolveExperienceGain(c.ProgressionState(), amount)

	fields := Fields{
		"experience":            res.RemainingExperience,
		"experienceToNextLevel": res.NewExperienceThreshold,
	}
	c.Experience = res.RemainingExperience
	c.ExperienceToNextLevel = res.NewExperienceThreshold
	if res.DidLevelUp {
		c.Level = res.NewLevel
		c.StatPoints += res.GainedStatPoints
		c.MaxHitPoints += res.GainedMaxHitPoints
		c.HitPoints = c.MaxHitPoints // level up fully restores HP
		fields["level"] = c.Level
		fields["statPoints"] = c.StatPoints
		fields["maxHitPoints"] = c.MaxHitPoints
		fields["hitPoints"] = c.HitPoints
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	s.storeSnapshot(c)

	if res.DidLevelUp && s.onLevelUp != nil {
		s.onLevelUp(LevelUp{
			CharacterID: id,
			NewLevel:    res.NewLevel,
			Rewards:     res,
		})
	}

	return &res, nil
}

// AllocateStatPoint spends one unspent stat point on the given stat.
func (s *Service) AllocateStatPoint(ctx context.Context, id, stat string) (*Character, error) {
	c, err := s.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.StatPoints <= 0 {
		return nil, ErrNoPointsAvailable
	}
	value, ok := c.StatValue(stat)
	if !ok {
		return nil, ErrInvalidStat
	}

	c.StatPoints--
	value++
	switch stat {
	case StatStrength:
		c.Strength = value
	case StatVitality:
		c.Vitality = value
	case StatAgility:
		c.Agility = value
	}

	if err := s.repo.UpdateFields(ctx, id, Fields{
		stat:         value,
		"statPoints": c.StatPoints,
	}); err != nil {
		return nil, err
	}
	s.storeSnapshot(c)

	return c.Clone(), nil
}

func (s *Service) AcceptQuest(ctx context.Context, id, questID string) error {
	if _, ok := s.catalog.Get(questID); !ok {
		return ErrUnknownQuest
	}

	c, err := s.snapshot(ctx, id)
	if err != nil {
		return err
	}
	if c.QuestState(questID).Status != QuestStatusAvailable {
		return ErrQuestAlreadyTaken
	}

	state := QuestState{Status: QuestStatusActive, Progress: 0}
	if err := s.repo.SetQuest(ctx, id, questID, state); err != nil {
		return err
	}

	c.Quests[questID] = state
	s.storeSnapshot(c)
	return nil
}

// AbandonQuest puts an active quest back to available, dropping progress.
func (s *Service) AbandonQuest(ctx context.Context, id, questID string) error {
	if _, ok := s.catalog.Get(questID); !ok {
		return ErrUnknownQuest
	}

	c, err := s.snapshot(ctx, id)
	if err != nil {
		return err
	}
	if c.QuestState(questID).Status != QuestStatusActive {
		return ErrQuestNotActive
	}

	state := QuestState{Status: QuestStatusAvailable, Progress: 0}
	if err := s.repo.SetQuest(ctx, id, questID, state); err != nil {
		return err
	}

	c.Quests[questID] = state
	s.storeSnapshot(c)
	return nil
}

// CompleteQuest marks an active quest completed, grants its stat point
// reward atomically with the status change, then grants its experience
// reward. If the experience grant fails the quest stays completed; the
// grant is logged and skipped, never rolled back.
func (s *Service) CompleteQuest(ctx context.Context, id, questID string) (*progression.Result, error) {
	def, ok := s.catalog.Get(questID)
	if !ok {
		return nil, ErrUnknownQuest
	}

	c, err := s.snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.QuestState(questID).Status != QuestStatusActive {
		return nil, ErrQuestNotActive
	}

	state := QuestState{Status: QuestStatusCompleted, Progress: 100}
	if err := s.repo.CompleteQuest(ctx, id, questID, state, def.RewardStatPoints); err != nil {
		return nil, err
	}

	c.Quests[questID] = state
	c.StatPoints += def.RewardStatPoints
	s.storeSnapshot(c)

	if def.RewardExperience <= 0 {
		return nil, nil
	}

	res, err := s.GrantExperience(ctx, id, def.RewardExperience)
	if err != nil {
		log.Errorf("complete quest %s for %s: grant experience: %s", questID, id, err)
		return nil, nil
	}
	return res, nil
}

// EquipShadow equips or unequips a shadow. Unequipping a shadow that is
// not equipped is a no-op.
func (s *Service) EquipShadow(ctx context.Context, id, shadowID string, equip bool) error {
	if _, ok := KnownShadow(shadowID); !ok {
		return ErrUnknownShadow
	}

	c, err := s.snapshot(ctx, id)
	if err != nil {
		return err
	}

	if equip {
		if c.HasShadowEquipped(shadowID) {
			return ErrShadowAlreadyEquipped
		}
		if len(c.EquippedShadows) >= s.maxEquippedShadows {
			return ErrEquipLimitReached
		}
		c.EquippedShadows = append(c.EquippedShadows, shadowID)
	} else {
		if !c.HasShadowEquipped(shadowID) {
			return nil
		}
		kept := make([]string, 0, len(c.EquippedShadows)-1)
		for _, equipped := range c.EquippedShadows {
			if equipped != shadowID {
				kept = append(kept, equipped)
			}
		}
		c.EquippedShadows = kept
	}

	if err := s.repo.SetEquippedShadows(ctx, id, c.EquippedShadows); err != nil {
		return err
	}
	s.storeSnapshot(c)
	return nil
}

func (s *Service) snapshot(ctx context.Context, id string) (*Character, error) {
	s.mutex.RLock()
	c, ok := s.snapshots[id]
	s.mutex.RUnlock()
	if ok {
		return c.Clone(), nil
	}

	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.storeSnapshot(c)
	s.ensureTracked(id)
	return c.Clone(), nil
}

func (s *Service) storeSnapshot(c *Character) {
	s.mutex.Lock()
	s.snapshots[c.ID] = c.Clone()
	s.mutex.Unlock()
}

// ensureTracked starts consuming the change stream for the character, so
// writes done by other instances land in the local snapshot too.
func (s *Service) ensureTracked(id string) {
	s.mutex.Lock()
	if _, ok := s.tracked[id]; ok {
		s.mutex.Unlock()
		return
	}
	// reserve the slot before subscribing, releasing the lock first
	s.tracked[id] = func() {}
	s.mutex.Unlock()

	updates, stop, err := s.repo.Subscribe(s.trackCtx, id)
	if err != nil {
		log.Errorf("track character %s: %s", id, err)
		s.mutex.Lock()
		delete(s.tracked, id)
		s.mutex.Unlock()
		return
	}

	s.mutex.Lock()
	s.tracked[id] = stop
	s.mutex.Unlock()

	go func() {
		for c := range updates {
			s.storeSnapshot(&c)
		}
	}()
}
