package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/juststeveking/lookout/internal/kv"
)

// LegacyStateKey held every channel's state in one document:
// {"lastFailedChecks": [...], "channels": {"<name>": {...}}}
const LegacyStateKey = "notificationState"

// LastFailedChecksKey holds the names that were down on the last pass
const LastFailedChecksKey = LegacyStateKey + ":lastFailedChecks"

// ChannelStateKey is where a channel's own state lives
func ChannelStateKey(channel string) string {
	return LegacyStateKey + ":channel:" + channel
}

// StateStore reads and writes per-channel notification state. Reads fall
// back to the legacy document; only writes touch the new keys.
type StateStore struct {
	kv     kv.Store
	logger *slog.Logger
}

func NewStateStore(store kv.Store, logger *slog.Logger) *StateStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &StateStore{kv: store, logger: logger}
}

// GetChannelState returns the channel's state, or nil when there is none.
// Corrupt documents are logged and reported as absent.
func GetChannelState[T any](ctx context.Context, s *StateStore, channel string) (*T, error) {
	raw, ok, err := s.channelDocument(ctx, channel)
	if err != nil || !ok {
		return nil, err
	}

	var value T
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		s.logger.Warn("ignoring unreadable channel state",
			"channel", channel,
			"error", err,
		)
		return nil, nil
	}
	return &value, nil
}

// UpdateChannelState applies update to the current state. Returning nil
// deletes the channel's key.
func UpdateChannelState[T any](ctx context.Context, s *StateStore, channel string, update func(prev *T) *T) error {
	prev, err := GetChannelState[T](ctx, s, channel)
	if err != nil {
		return err
	}
	return SetChannelState(ctx, s, channel, update(prev))
}

// SetChannelState replaces the channel's state. nil deletes the key.
func SetChannelState[T any](ctx context.Context, s *StateStore, channel string, next *T) error {
	key := ChannelStateKey(channel)

	if next == nil {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s state: %w", channel, err)
		}
		return nil
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode %s state: %w", channel, err)
	}
	if err := s.kv.Put(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s state: %w", channel, err)
	}
	return nil
}

// LastFailedChecks returns the names that were down on the previous pass
func (s *StateStore) LastFailedChecks(ctx context.Context) ([]string, error) {
	raw, err := s.kv.Get(ctx, LastFailedChecksKey)
	switch {
	case err == nil:
	case errors.Is(err, kv.ErrNotFound):
		legacy, ok, err := s.legacyField(ctx, "lastFailedChecks")
		if err != nil {
			return nil, err
		}
		if !ok {
			return []string{}, nil
		}
		raw = legacy
	default:
		return nil, fmt.Errorf("failed to read last failed checks: %w", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		s.logger.Warn("ignoring unreadable last failed checks", "error", err)
		return []string{}, nil
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// UpdateLastFailedChecks overwrites the shared failed-name list
func (s *StateStore) UpdateLastFailedChecks(ctx context.Context, names []string) error {
	if names == nil {
		names = []string{}
	}

	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to encode last failed checks: %w", err)
	}
	if err := s.kv.Put(ctx, LastFailedChecksKey, string(data)); err != nil {
		return fmt.Errorf("failed to write last failed checks: %w", err)
	}
	return nil
}

// channelDocument returns the raw JSON for a channel from the new key,
// or from the legacy document when the new key was never written.
func (s *StateStore) channelDocument(ctx context.Context, channel string) (string, bool, error) {
	raw, err := s.kv.Get(ctx, ChannelStateKey(channel))
	if err == nil {
		return raw, true, nil
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return "", false, fmt.Errorf("failed to read %s state: %w", channel, err)
	}

	return s.legacyField(ctx, "channels."+channel)
}

func (s *StateStore) legacyField(ctx context.Context, path string) (string, bool, error) {
	doc, err := s.kv.Get(ctx, LegacyStateKey)
	if errors.Is(err, kv.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read legacy notification state: %w", err)
	}

	if !gjson.Valid(doc) {
		s.logger.Warn("ignoring unreadable legacy notification state")
		return "", false, nil
	}

	field := gjson.Get(doc, path)
	if !field.Exists() || field.Type == gjson.Null {
		return "", false, nil
	}
	return field.Raw, true, nil
}
