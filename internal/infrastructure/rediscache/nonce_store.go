package rediscache

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sailorswift/sailor-swift-api/internal/application"
)

func keyWalletNonce(address string) string { return "wallet:nonce:" + address }

// NonceStore hands out one-time wallet-authentication nonces with a TTL.
// A nonce is bound to the address it was issued for and deleted on consume,
// so a captured signature cannot be replayed.
type NonceStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewNonceStore(rdb *redis.Client, ttl time.Duration) *NonceStore {
	return &NonceStore{rdb: rdb, ttl: ttl}
}

func (s *NonceStore) Issue(ctx context.Context, address string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	nonce := base64.RawURLEncoding.EncodeToString(b)
	if err := s.rdb.Set(ctx, keyWalletNonce(address), nonce, s.ttl).Err(); err != nil {
		return "", err
	}
	return nonce, nil
}

func (s *NonceStore) Consume(ctx context.Context, address, nonce string) bool {
	key := keyWalletNonce(address)
	stored, err := s.rdb.Get(ctx, key).Result()
	if err != nil || stored == "" || stored != nonce {
		return false
	}
	s.rdb.Del(ctx, key)
	return true
}

var _ application.NonceStore = (*NonceStore)(nil)
