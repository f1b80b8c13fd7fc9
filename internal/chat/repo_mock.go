package chat

import (
	"context"
	"sync"
)

// repoMock is an in-memory chatRepo used in tests.
type repoMock struct {
	mutex    sync.Mutex
	messages []Message
	addErr   error
}

func newRepoMock() *repoMock {
	return &repoMock{}
}

func (m *repoMock) Add(_ context.Context, msg Message) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *repoMock) Last(_ context.Context, limit int) ([]Message, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if limit >= len(m.messages) {
		return append([]Message{}, m.messages...), nil
	}
	return append([]Message{}, m.messages[len(m.messages)-limit:]...), nil
}
