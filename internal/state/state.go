// Package state persists the latest snapshot of check results.
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/juststeveking/lookout/internal/kv"
	"github.com/juststeveking/lookout/internal/monitor"
)

const (
	StateKey       = "state"
	LastCheckedKey = "lastChecked"
)

// Store writes and reads the snapshot and the time it was taken
type Store struct {
	kv  kv.Store
	now func() time.Time
}

func New(store kv.Store) *Store {
	return &Store{kv: store, now: time.Now}
}

// Persist writes the snapshot and the current time. Errors are returned unchanged
// in meaning; nothing is retried.
func (s *Store) Persist(ctx context.Context, snapshot monitor.Snapshot) error {
	if snapshot == nil {
		snapshot = monitor.Snapshot{}
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := s.kv.Put(ctx, StateKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}
	if err := s.kv.Put(ctx, LastCheckedKey, s.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("failed to persist last checked time: %w", err)
	}
	return nil
}

// Load returns the last persisted snapshot. A store that was never written
// returns an empty snapshot and the zero time.
func (s *Store) Load(ctx context.Context) (monitor.Snapshot, time.Time, error) {
	raw, err := s.kv.Get(ctx, StateKey)
	if errors.Is(err, kv.ErrNotFound) {
		return monitor.Snapshot{}, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read state: %w", err)
	}

	var snapshot monitor.Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode state: %w", err)
	}

	var checkedAt time.Time
	rawTime, err := s.kv.Get(ctx, LastCheckedKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, time.Time{}, fmt.Errorf("failed to read last checked time: %w", err)
	default:
		checkedAt, err = time.Parse(time.RFC3339Nano, rawTime)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to parse last checked time: %w", err)
		}
	}

	return snapshot, checkedAt, nil
}
