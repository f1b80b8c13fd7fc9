package character

import (
	"context"
	"fmt"
	"sync"
)

// repoMock is an in-memory charactersRepo used in tests.
type repoMock struct {
	mutex       sync.Mutex
	characters  map[string]*Character
	subscribers map[string][]chan Character

	getErr          error
	deleteErr       error
	updateFieldsErr error
	setQuestErr     error
	completeErr     error
	setShadowsErr   error
}

func newRepoMock() *repoMock {
	return &repoMock{
		characters:  map[string]*Character{},
		subscribers: map[string][]chan Character{},
	}
}

func (m *repoMock) Get(_ context.Context, id string) (*Character, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	c, ok := m.characters[id]
	if !ok {
		return nil, ErrCharacterNotFound
	}
	return c.Clone(), nil
}

func (m *repoMock) Create(_ context.Context, c *Character) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.characters[c.ID] = c.Clone()
	return nil
}

func (m *repoMock) Delete(_ context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.characters[id]; !ok {
		return ErrCharacterNotFound
	}
	delete(m.characters, id)
	return nil
}

func (m *repoMock) UpdateFields(_ context.Context, id string, fields Fields) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.updateFieldsErr != nil {
		return m.updateFieldsErr
	}
	c, ok := m.characters[id]
	if !ok {
		return ErrCharacterNotFound
	}
	return applyFields(c, fields)
}

func (m *repoMock) SetQuest(_ context.Context, id, questID string, state QuestState) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.setQuestErr != nil {
		return m.setQuestErr
	}
	c, ok := m.characters[id]
	if !ok {
		return ErrCharacterNotFound
	}
	c.Quests[questID] = state
	return nil
}

func (m *repoMock) CompleteQuest(_ context.Context, id, questID string, state QuestState, bonusStatPoints int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.completeErr != nil {
		return m.completeErr
	}
	c, ok := m.characters[id]
	if !ok {
		return ErrCharacterNotFound
	}
	c.Quests[questID] = state
	c.StatPoints += bonusStatPoints
	return nil
}

func (m *repoMock) SetEquippedShadows(_ context.Context, id string, shadows []string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.setShadowsErr != nil {
		return m.setShadowsErr
	}
	c, ok := m.characters[id]
	if !ok {
		return ErrCharacterNotFound
	}
	c.EquippedShadows = append([]string{}, shadows...)
	return nil
}

func (m *repoMock) Subscribe(_ context.Context, id string) (<-chan Character, func(), error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	updates := make(chan Character)
	m.subscribers[id] = append(m.subscribers[id], updates)
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(updates)
		})
	}
	return updates, stop, nil
}

// emit pushes a character update to all stream subscribers, mimicking the
// pub/sub message that follows a write from another instance.
func (m *repoMock) emit(c Character) {
	m.mutex.Lock()
	subscribers := append([]chan Character{}, m.subscribers[c.ID]...)
	m.mutex.Unlock()
	for _, updates := range subscribers {
		updates <- c
	}
}

func applyFields(c *Character, fields Fields) error {
	for field, value := range fields {
		number, ok := value.(int)
		if !ok {
			return fmt.Errorf("unexpected value type for field %q", field)
		}
		switch field {
		case "level":
			c.Level = number
		case "experience":
			c.Experience = number
		case "experienceToNextLevel":
			c.ExperienceToNextLevel = number
		case "statPoints":
			c.StatPoints = number
		case "hitPoints":
			c.HitPoints = number
		case "maxHitPoints":
			c.MaxHitPoints = number
		case "strength":
			c.Strength = number
		case "vitality":
			c.Vitality = number
		case "agility":
			c.Agility = number
		default:
			return fmt.Errorf("unknown character field %q", field)
		}
	}
	return nil
}
