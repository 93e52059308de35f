// Package kv is the durable string key-value storage behind every activation.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/juststeveking/lookout/internal/config"
)

// ErrNotFound is returned by Get when the key does not exist
var ErrNotFound = errors.New("kv: key not found")

// Store is a string-keyed get/put/delete store
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open connects to the backend selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case "", "bolt":
		return NewBolt(cfg.Bolt, logger)
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(ctx, cfg.Redis, logger)
	case "postgres":
		return NewPostgres(ctx, cfg.Postgres, logger)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
