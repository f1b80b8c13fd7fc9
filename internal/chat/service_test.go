package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/arisefit/hunterhub/internal/ai"
)

func TestPostMessage(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	aiMock := NewMockaiClient(ctrl)
	repo := newRepoMock()
	service := NewService(repo, aiMock, ai.NewFallbackGenerator())

	text := gofakeit.Sentence(8)
	messages, err := service.PostMessage(ctx, "h1", "Jinwoo", text)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "Jinwoo", messages[0].Sender)
	assert.Equal(t, "h1", messages[0].CharacterID)
	assert.Equal(t, strings.TrimSpace(text), messages[0].Text)
	assert.NotEmpty(t, messages[0].ID)

	stored, err := service.Messages(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestPostMessage_mention(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	aiMock := NewMockaiClient(ctrl)
	repo := newRepoMock()
	service := NewService(repo, aiMock, ai.NewFallbackGenerator())

	aiMock.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("Push through, hunter.", nil)

	messages, err := service.PostMessage(ctx, "h1", "Jinwoo", "hey @system, any tips?")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Jinwoo", messages[0].Sender)
	assert.Equal(t, systemSender, messages[1].Sender)
	assert.Equal(t, "Push through, hunter.", messages[1].Text)
	assert.Empty(t, messages[1].CharacterID)
}

func TestPostMessage_mentionFallback(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	aiMock := NewMockaiClient(ctrl)
	repo := newRepoMock()
	service := NewService(repo, aiMock, ai.NewFallbackGenerator())

	aiMock.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return("", errors.New("upstream down"))

	messages, err := service.PostMessage(ctx, "h1", "Jinwoo", "@System are you there?")
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, systemSender, messages[1].Sender)
	assert.NotEmpty(t, messages[1].Text)
}

func TestPostMessage_validation(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	service := NewService(newRepoMock(), NewMockaiClient(ctrl), ai.NewFallbackGenerator())

	_, err := service.PostMessage(ctx, "h1", "Jinwoo", "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = service.PostMessage(ctx, "h1", "Jinwoo", "   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	_, err = service.PostMessage(ctx, "h1", "Jinwoo", strings.Repeat("a", maxMessageLength+1))
	assert.ErrorIs(t, err, ErrMessageTooLong)
}

func TestMessages_limit(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	repo := newRepoMock()
	service := NewService(repo, NewMockaiClient(ctrl), ai.NewFallbackGenerator())

	for i := 0; i < 5; i++ {
		_, err := service.PostMessage(ctx, "h1", "Jinwoo", gofakeit.Sentence(5))
		require.NoError(t, err)
	}

	messages, err := service.Messages(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	// zero limit falls back to the default
	messages, err = service.Messages(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, messages, 5)
}
