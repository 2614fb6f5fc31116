// Package keystore answers whether a caller-supplied API key is allow-listed.
package keystore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Authorizer reports membership of a candidate key in the allow-list. Key
// values are never logged by any implementation.
type Authorizer interface {
	IsAuthorized(ctx context.Context, key string) bool
}

// HashKey returns the hex SHA-256 digest stored in the allow-list. Only the
// digest ever leaves the process.
func HashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// RedisKeystore checks candidate keys against a Redis set of key hashes. A
// store error denies access rather than letting the request through.
type RedisKeystore struct {
	client  *redis.Client
	setName string
	logger  *zap.Logger
}

func NewRedisKeystore(client *redis.Client, setName string, logger *zap.Logger) *RedisKeystore {
	return &RedisKeystore{
		client:  client,
		setName: setName,
		logger:  logger,
	}
}

func (k *RedisKeystore) IsAuthorized(ctx context.Context, key string) bool {
	if key == "" {
		return false
	}

	member, err := k.client.SIsMember(ctx, k.setName, HashKey(key)).Result()
	if err != nil {
		// fail closed
		k.logger.Error("api key lookup failed", zap.Error(err))
		return false
	}
	return member
}

// Static authorizes a fixed key set, for development and tests.
type Static map[string]bool

func NewStatic(keys []string) Static {
	s := make(Static, len(keys))
	for _, k := range keys {
		s[k] = true
	}
	return s
}

func (s Static) IsAuthorized(ctx context.Context, key string) bool {
	return s[key]
}

// Chain accepts a key when any member does.
type Chain []Authorizer

func (c Chain) IsAuthorized(ctx context.Context, key string) bool {
	for _, a := range c {
		if a.IsAuthorized(ctx, key) {
			return true
		}
	}
	return false
}
