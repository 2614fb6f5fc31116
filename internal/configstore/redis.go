package configstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore reads provider descriptors from Redis. Each provider lives at
// `<prefix><providerId>` with the descriptor JSON as the string value.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var ids []string

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan provider keys: %w", err)
	}

	return ids, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (string, bool, error) {
	val, err := s.client.Get(ctx, s.prefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get provider %q: %w", id, err)
	}
	return val, true, nil
}
