// Package telegram sends one downtime alert per outage and threads the
// recovery message under it.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/juststeveking/lookout/internal/notify"
)

// State is what the channel remembers between runs
type State struct {
	LastMessageID int `json:"lastMessageId,string"`
}

// Channel is the chat notification channel
type Channel struct {
	sender Sender
	store  *notify.StateStore
	logger *slog.Logger
}

func NewChannel(sender Sender, store *notify.StateStore, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		sender: sender,
		store:  store,
		logger: logger.With("channel", notify.ChannelTelegram),
	}
}

func (c *Channel) Name() string {
	return notify.ChannelTelegram
}

// Notify sends at most one message per run:
//
//	alerted, still down   -> nothing
//	alerted, all up       -> clear state, reply with recovery
//	not alerted, all up   -> nothing
//	not alerted, any down -> send alert, remember its id
func (c *Channel) Notify(ctx context.Context, nctx notify.NotificationContext) error {
	prev, err := notify.GetChannelState[State](ctx, c.store, notify.ChannelTelegram)
	if err != nil {
		return err
	}
	if prev != nil && prev.LastMessageID == 0 {
		prev = nil
	}

	failed := nctx.FailedChecks()

	switch {
	case prev != nil && len(failed) > 0:
		c.logger.Debug("already notified about downtime", "message_id", prev.LastMessageID)
		return nil

	case prev != nil:
		if err := notify.SetChannelState[State](ctx, c.store, notify.ChannelTelegram, nil); err != nil {
			return err
		}

		text, err := RecoveryText(nctx.StatuspageURL)
		if err != nil {
			return fmt.Errorf("failed to render recovery message: %w", err)
		}
		if _, err := c.sender.Send(ctx, Message{Text: text, ReplyTo: prev.LastMessageID}); err != nil {
			return err
		}
		c.logger.Info("sent recovery message", "reply_to", prev.LastMessageID)
		return nil

	case len(failed) == 0:
		c.logger.Debug("no checks are down")
		return nil
	}

	text, err := DowntimeText(notify.BuildDowntimeMessage(failed), nctx.StatuspageURL)
	if err != nil {
		return fmt.Errorf("failed to render downtime message: %w", err)
	}

	id, err := c.sender.Send(ctx, Message{Text: text})
	if err != nil {
		return err
	}

	if err := notify.SetChannelState(ctx, c.store, notify.ChannelTelegram, &State{LastMessageID: id}); err != nil {
		return err
	}
	c.logger.Info("sent downtime message", "message_id", id, "failed", len(failed))
	return nil
}
