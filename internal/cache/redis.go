package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "linkedintel"

// RedisBackend stores each namespace as a hash of JSON-encoded records.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// OpenRedis parses redisURL and verifies connectivity.
func OpenRedis(ctx context.Context, redisURL, prefix string) (*RedisBackend, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(redisURL))
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisBackend(client, prefix), nil
}

// NewRedisBackend wraps an existing client. Keys are prefixed with prefix.
func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (b *RedisBackend) Store(namespace string) Store {
	return &redisStore{client: b.client, key: b.prefix + ":" + namespace}
}

func (b *RedisBackend) Version(ctx context.Context) (int64, bool, error) {
	version, err := b.client.Get(ctx, b.prefix+":"+versionName).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("reading cache version: %w", err)
	}
	return version, true, nil
}

func (b *RedisBackend) SetVersion(ctx context.Context, version int64) error {
	if err := b.client.Set(ctx, b.prefix+":"+versionName, version, 0).Err(); err != nil {
		return fmt.Errorf("writing cache version: %w", err)
	}
	return nil
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

type redisStore struct {
	client *redis.Client
	key    string
}

func (s *redisStore) Get(ctx context.Context, key string) (*Record, error) {
	data, err := s.client.HGet(ctx, s.key, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache record %q: %w", key, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding cache record %q: %w", key, err)
	}
	return &rec, nil
}

func (s *redisStore) Set(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding cache record %q: %w", rec.Key, err)
	}
	if err := s.client.HSet(ctx, s.key, rec.Key, data).Err(); err != nil {
		return fmt.Errorf("writing cache record %q: %w", rec.Key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.HDel(ctx, s.key, keys...).Err(); err != nil {
		return fmt.Errorf("deleting cache records: %w", err)
	}
	return nil
}

func (s *redisStore) List(ctx context.Context) ([]*Record, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("listing cache records: %w", err)
	}

	out := make([]*Record, 0, len(values))
	for key, raw := range values {
		var rec Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decoding cache record %q: %w", key, err)
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clearing %s: %w", s.key, err)
	}
	return nil
}
