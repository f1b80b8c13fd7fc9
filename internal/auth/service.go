package auth

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/arisefit/hunterhub/pkg"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "hunterhub-session||"

	minUsernameLength = 3
	minPasswordLength = 8
)

var (
	ErrInvalidUsername    = errors.New("username too short")
	ErrInvalidPassword    = errors.New("password too short")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotLoggedIn        = errors.New("not logged in")
)

type accountsRepo interface {
	Create(ctx context.Context, account Account) error
	Get(ctx context.Context, username string) (*Account, error)
}

type characterStore interface {
	CreateDefault(ctx context.Context, id, hunterName string) error
	Delete(ctx context.Context, id string) error
}

// CharacterStoreFuncs adapts plain funcs to the characterStore
// dependency, keeps this package from depending on the character one.
type CharacterStoreFuncs struct {
	CreateDefaultFunc func(ctx context.Context, id, hunterName string) error
	DeleteFunc        func(ctx context.Context, id string) error
}

func (f CharacterStoreFuncs) CreateDefault(ctx context.Context, id, hunterName string) error {
	return f.CreateDefaultFunc(ctx, id, hunterName)
}

func (f CharacterStoreFuncs) Delete(ctx context.Context, id string) error {
	return f.DeleteFunc(ctx, id)
}

// Session is a logged-in hunter.
type Session struct {
	Token       string `json:"token"`
	CharacterID string `json:"characterId"`
}

// Service handles signup, login and logout. Sessions live in redis under
// their token, with a native TTL, holding the character id.
type Service struct {
	accounts    accountsRepo
	characters  characterStore
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewService(
	accounts accountsRepo,
	characters characterStore,
	redisClient *redis.Client,
	ttl time.Duration,
) *Service {
	return &Service{
		accounts:       accounts,
		characters:     characters,
		redisClient:    redisClient,
		ttl:            ttl,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

// Signup creates the account and its starting character, then logs in.
func (s *Service) Signup(ctx context.Context, username, password, hunterName string) (*Session, error) {
	if len(username) < minUsernameLength {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}
	if hunterName == "" {
		hunterName = username
	}

	passwordHash, err := pkg.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// the account row references the character row, so the character has
	// to exist first
	characterID := uuid.NewString()
	if err := s.characters.CreateDefault(ctx, characterID, hunterName); err != nil {
		return nil, err
	}

	if err := s.accounts.Create(ctx, Account{
		Username:     username,
		PasswordHash: passwordHash,
		CharacterID:  characterID,
		CreatedAt:    time.Now(),
	}); err != nil {
		// a failed signup must not leave an orphaned character behind
		if delErr := s.characters.Delete(ctx, characterID); delErr != nil {
			log.Errorf("signup %s: remove character %s after failed account create: %s", username, characterID, delErr)
		}
		return nil, err
	}

	return s.createSession(ctx, characterID)
}

func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	account, err := s.accounts.Get(ctx, username)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !pkg.CheckPasswordHash(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(ctx, account.CharacterID)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	removed, err := s.redisClient.Del(ctx, sessionKeyPrefix+token).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrNotLoggedIn
	}
	return nil
}

func (s *Service) createSession(ctx context.Context, characterID string) (*Session, error) {
	token, err := s.RandStringFunc(35)
	if err != nil {
		return nil, err
	}

	if err := s.redisClient.Set(ctx, sessionKeyPrefix+token, characterID, s.ttl).Err(); err != nil {
		return nil, err
	}

	return &Session{
		Token:       token,
		CharacterID: characterID,
	}, nil
}
