// Package cache is the read-through cache in front of the remote data
// store. Entries are keyed by their query parameters; invalidation is the
// only mutation primitive. Redis being down degrades to loading, never to a
// user-facing error.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store wraps the redis client used for read-through caching.
type Store struct {
	client *redis.Client
	logger zerolog.Logger
}

// New builds a cache store. A nil client yields a store that always loads.
func New(client *redis.Client, logger zerolog.Logger) *Store {
	return &Store{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
	}
}

func genKey(key string) string {
	return key + ":gen"
}

// Fetch returns the cached value for key, loading and storing it on a miss.
// A load that raced an invalidation is returned to the caller but not
// written back, so a stale response never lands in a live slot.
func Fetch[T any](ctx context.Context, s *Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if s == nil || s.client == nil {
		return load(ctx)
	}

	if cached, err := s.client.Get(ctx, key).Result(); err == nil {
		var value T
		if unmarshalErr := json.Unmarshal([]byte(cached), &value); unmarshalErr == nil {
			return value, nil
		}
		s.logger.Warn().Str("key", key).Msg("discarding undecodable cache entry")
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}

	generation, _ := s.client.Get(ctx, genKey(key)).Result()

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	if current, _ := s.client.Get(ctx, genKey(key)).Result(); current != generation {
		s.logger.Debug().Str("key", key).Msg("skipping cache write for invalidated key")
		return value, nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return value, nil
	}
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}

	return value, nil
}

// Invalidate drops the given keys and bumps their generations so in-flight
// loads for them are not written back.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if s == nil || s.client == nil || len(keys) == 0 {
		return
	}

	pipe := s.client.Pipeline()
	for _, key := range keys {
		pipe.Del(ctx, key)
		pipe.Incr(ctx, genKey(key))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Strs("keys", keys).Msg("cache invalidation failed")
	}
}
