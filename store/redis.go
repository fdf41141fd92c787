// api/store/redis.go
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	gate_errors "github.com/dev-mohitbeniwal/datagate/api/errors"
	logger "github.com/dev-mohitbeniwal/datagate/api/logging"
)

// RedisStore keeps content bytes in Redis under a "content:" prefix.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore verifies connectivity before returning the store.
func NewRedisStore(addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis")
	return &RedisStore{client: client}, nil
}

func contentKey(id string) string {
	return fmt.Sprintf("content:%s", id)
}

func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.client.Get(ctx, contentKey(id)).Bytes()
	if err == redis.Nil {
		return nil, gate_errors.ErrContentNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return data, nil
}

func (s *RedisStore) Put(ctx context.Context, id string, data []byte) error {
	if err := s.client.Set(ctx, contentKey(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store content: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, contentKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *RedisStore) Close() {
	if err := s.client.Close(); err != nil {
		logger.Error("Error closing Redis connection", zap.Error(err))
	}
}
