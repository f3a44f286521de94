package cache

import (
	"context"
	"fmt"
	"strings"
)

// Store persists records of one namespace. Get returns nil without an error when
// the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (*Record, error)
	Set(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) ([]*Record, error)
	Clear(ctx context.Context) error
}

// Backend owns the namespaces and the dataset version marker.
type Backend interface {
	Store(namespace string) Store
	// Version returns the stored marker and whether one was set.
	Version(ctx context.Context) (int64, bool, error)
	SetVersion(ctx context.Context, version int64) error
	Close() error
}

// BackendConfig selects and configures a backend.
type BackendConfig struct {
	Kind       string `mapstructure:"kind"`
	SQLitePath string `mapstructure:"sqlite-path"`
	RedisURL   string `mapstructure:"redis-url"`
	RedisKey   string `mapstructure:"redis-prefix"`
}

// Open builds the backend named by cfg.Kind: memory (default), sqlite or redis.
func Open(ctx context.Context, cfg BackendConfig) (Backend, error) {
	switch kind := strings.ToLower(strings.TrimSpace(cfg.Kind)); kind {
	case "", "memory":
		return NewMemoryBackend(), nil
	case "sqlite":
		return OpenSQLite(ctx, cfg.SQLitePath)
	case "redis":
		return OpenRedis(ctx, cfg.RedisURL, cfg.RedisKey)
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Kind)
	}
}
