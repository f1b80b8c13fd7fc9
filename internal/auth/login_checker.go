package auth

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
)

// LoginChecker resolves session tokens to character ids. Expiry is
// handled by the session key TTL in redis.
type LoginChecker struct {
	redisClient *redis.Client
}

func NewLoginChecker(redisClient *redis.Client) *LoginChecker {
	return &LoginChecker{redisClient: redisClient}
}

func (c *LoginChecker) CharacterID(ctx context.Context, token string) (string, error) {
	characterID, err := c.redisClient.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	return characterID, nil
}
