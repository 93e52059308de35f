package kv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/juststeveking/lookout/internal/config"
)

var boltBucket = []byte("lookout")

// Bolt keeps values in a single local database file, so separate runs on
// the same machine share state without a server.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the database file. An empty path uses the
// default next to the config file.
func NewBolt(cfg config.BoltConfig, logger *slog.Logger) (*Bolt, error) {
	path := cfg.Path
	if path == "" {
		var err error
		if path, err = config.GetStorePath(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	// A second run still holding the file lock fails fast instead of hanging.
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare store %s: %w", path, err)
	}

	if logger != nil {
		logger.Debug("opened bolt store", "path", path)
	}
	return &Bolt{db: db}, nil
}

func (b *Bolt) Get(_ context.Context, key string) (string, error) {
	var (
		value string
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("bolt get %s: %w", key, err)
	}
	if !found {
		return "", ErrNotFound
	}
	return value, nil
}

func (b *Bolt) Put(_ context.Context, key, value string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("bolt put %s: %w", key, err)
	}
	return nil
}

func (b *Bolt) Delete(_ context.Context, key string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("bolt delete %s: %w", key, err)
	}
	return nil
}

func (b *Bolt) Close() error {
	return b.db.Close()
}
