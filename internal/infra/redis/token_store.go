package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore keeps revoked access token ids in Redis until they would have expired.
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

func (s *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(tokenID), "1", ttl).Err()
}

func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *TokenStore) key(tokenID string) string {
	return "auth:revoked:" + tokenID
}
