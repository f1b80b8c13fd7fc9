package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// mentionToken in a message summons an AI reply from the System.
	mentionToken = "@system"
	systemSender = "System"

	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type chatRepo interface {
	Add(ctx context.Context, msg Message) error
	Last(ctx context.Context, limit int) ([]Message, error)
}

type aiClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service stores chat messages and, when the System is mentioned,
// generates a reply. A failing AI upstream degrades to canned replies
// instead of failing the post.
type Service struct {
	repo     chatRepo
	ai       aiClient
	fallback aiClient
}

func NewService(repo chatRepo, ai, fallback aiClient) *Service {
	return &Service{
		repo:     repo,
		ai:       ai,
		fallback: fallback,
	}
}

// PostMessage stores the hunter's message and returns all messages the
// post produced, the System reply included when one was summoned.
func (s *Service) PostMessage(ctx context.Context, characterID, sender, text string) ([]Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if len(text) > maxMessageLength {
		return nil, ErrMessageTooLong
	}

	msg := Message{
		ID:          uuid.NewString(),
		CharacterID: characterID,
		Sender:      sender,
		Text:        text,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.Add(ctx, msg); err != nil {
		return nil, err
	}

	messages := []Message{msg}
	if !strings.Contains(strings.ToLower(text), mentionToken) {
		return messages, nil
	}

	reply := s.generateReply(ctx, sender, text)
	sysMsg := Message{
		ID:        uuid.NewString(),
		Sender:    systemSender,
		Text:      reply,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Add(ctx, sysMsg); err != nil {
		// the hunter's message is already in, give the reply up
		log.Errorf("store system reply: %s", err)
		return messages, nil
	}

	return append(messages, sysMsg), nil
}

// Announce stores a message from the System itself, e.g. a level up
// or rank unlock broadcast.
func (s *Service) Announce(ctx context.Context, text string) (Message, error) {
	msg := Message{
		ID:        uuid.NewString(),
		Sender:    systemSender,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Add(ctx, msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (s *Service) Messages(ctx context.Context, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.Last(ctx, limit)
}

func (s *Service) generateReply(ctx context.Context, sender, text string) string {
	prompt := fmt.Sprintf(
		"You are the System, the terse guide of hunters in a fitness RPG. "+
			"Hunter %s wrote: %q. Reply with short, motivating fitness guidance.",
		sender, text,
	)
	reply, err := s.ai.Generate(ctx, prompt)
	if err == nil {
		return reply
	}

	log.Errorf("generate system reply: %s", err)
	reply, _ = s.fallback.Generate(ctx, text)
	return reply
}
