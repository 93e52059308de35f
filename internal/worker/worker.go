// Package worker runs one scheduled activation: probe, persist, notify.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/juststeveking/lookout/internal/config"
	"github.com/juststeveking/lookout/internal/kv"
	"github.com/juststeveking/lookout/internal/monitor"
	"github.com/juststeveking/lookout/internal/notify"
	"github.com/juststeveking/lookout/internal/notify/statuspage"
	"github.com/juststeveking/lookout/internal/notify/telegram"
	"github.com/juststeveking/lookout/internal/state"
)

// Worker holds everything one activation needs. Build it once per process.
type Worker struct {
	checks        []config.ResolvedCheck
	executor      *monitor.Executor
	runner        *monitor.Runner
	state         *state.Store
	notifications *notify.StateStore
	dispatcher    *notify.Dispatcher
	statuspageURL string
	logger        *slog.Logger
}

// Options tunes how a Worker is built
type Options struct {
	// DryRun registers no notification channels.
	DryRun bool
	// HTTPClient is used for probes. Nil uses the executor's default.
	HTTPClient *http.Client
	// Channels are registered in addition to the configured ones.
	Channels []notify.Channel
}

// New resolves every check and wires the runner, stores and channels
func New(cfg *config.Config, env *config.Env, store kv.Store, logger *slog.Logger, opts Options) (*Worker, error) {
	if logger == nil {
		logger = slog.Default()
	}

	checks, err := cfg.ResolveChecks(env)
	if err != nil {
		return nil, err
	}

	executor := monitor.NewExecutor(opts.HTTPClient, logger.With("component", "executor"))
	notifications := notify.NewStateStore(store, logger.With("component", "notification-state"))

	var channels []notify.Channel
	if !opts.DryRun {
		channels, err = BuildChannels(cfg, env, notifications, logger)
		if err != nil {
			return nil, err
		}
	}
	channels = append(channels, opts.Channels...)

	return &Worker{
		checks:        checks,
		executor:      executor,
		runner:        monitor.NewRunner(executor, cfg.Concurrency, logger.With("component", "runner")),
		state:         state.New(store),
		notifications: notifications,
		dispatcher:    notify.NewDispatcher(logger.With("component", "dispatcher"), channels...),
		statuspageURL: cfg.StatuspageURL,
		logger:        logger,
	}, nil
}

// Channels returns the names of the registered notification channels
func (w *Worker) Channels() []string {
	return w.dispatcher.Channels()
}

// Close releases idle probe connections
func (w *Worker) Close() {
	w.executor.Close()
}

// Activate runs one full pass. Storage failures are returned; channel
// failures are only logged.
func (w *Worker) Activate(ctx context.Context) (monitor.Snapshot, error) {
	started := time.Now()

	snapshot := w.runner.Run(ctx, w.checks)

	if err := w.state.Persist(ctx, snapshot); err != nil {
		return snapshot, err
	}

	lastFailed, err := w.notifications.LastFailedChecks(ctx)
	if err != nil {
		return snapshot, err
	}

	w.dispatcher.NotifyAll(ctx, notify.NotificationContext{
		Snapshot:         snapshot,
		LastFailedChecks: lastFailed,
		StatuspageURL:    w.statuspageURL,
	})

	if err := w.notifications.UpdateLastFailedChecks(ctx, snapshot.Failed().Names()); err != nil {
		return snapshot, err
	}

	w.logger.Info("activation finished",
		"checks", len(snapshot),
		"down", len(snapshot.Failed()),
		"duration", time.Since(started).Round(time.Millisecond),
	)
	return snapshot, nil
}

// BuildChannels creates the enabled notification channels. Telegram is only
// registered when its secrets are present; Statuspage without secrets is a
// silent no-op channel.
func BuildChannels(cfg *config.Config, env *config.Env, store *notify.StateStore, logger *slog.Logger) ([]notify.Channel, error) {
	var channels []notify.Channel

	if cfg.Notifications.Telegram.Enabled {
		token, hasToken := env.Lookup(config.TelegramBotToken)
		chatID, hasChat := env.Lookup(config.TelegramChatID)
		if hasToken && hasChat {
			sender := telegram.NewBotSender(token, chatID)
			channels = append(channels, telegram.NewChannel(sender, store, logger))
		} else {
			logger.Warn("telegram enabled but not configured",
				"has_token", hasToken,
				"has_chat_id", hasChat,
			)
		}
	}

	if cfg.Notifications.Statuspage.Enabled {
		var api statuspage.API
		apiKey, hasKey := env.Lookup(config.StatuspageAPIKey)
		pageID, hasPage := env.Lookup(config.StatuspagePageID)
		if hasKey && hasPage {
			interval, err := minInterval(cfg.Notifications.Statuspage.MinInterval)
			if err != nil {
				return nil, err
			}
			api = statuspage.NewClient(statuspage.ClientConfig{
				APIKey:      apiKey,
				PageID:      pageID,
				MinInterval: interval,
			})
		}
		channels = append(channels, statuspage.NewChannel(api, store, logger))
	}

	if cfg.Notifications.Desktop.Enabled {
		channels = append(channels, notify.NewDesktop(logger))
	}

	return channels, nil
}

func minInterval(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid notifications.statuspage.min_interval: %w", err)
	}
	return d, nil
}
