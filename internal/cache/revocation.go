package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore keeps revoked token ids in Redis until they expire.
// A nil client makes every token look live.
type RevocationStore struct {
	rdb *redis.Client
}

func NewRevocationStore(rdb *redis.Client) *RevocationStore {
	return &RevocationStore{rdb: rdb}
}

func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, RevokedTokenKey(jti), "1", ttl).Err()
}

func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil {
		return false, nil
	}
	n, err := s.rdb.Exists(ctx, RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
