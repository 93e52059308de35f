package notify

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// Dispatcher runs every channel against the same context
type Dispatcher struct {
	channels []Channel
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger, channels ...Channel) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		channels: channels,
		logger:   logger,
	}
}

// Channels returns the registered channel names
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, ch := range d.channels {
		names = append(names, ch.Name())
	}
	return names
}

// NotifyAll runs all channels concurrently and waits for every one of them.
// Errors and panics are logged per channel and never returned.
func (d *Dispatcher) NotifyAll(ctx context.Context, nctx NotificationContext) {
	var wg conc.WaitGroup

	for _, ch := range d.channels {
		wg.Go(func() {
			if err := notifyOne(ctx, ch, nctx); err != nil {
				d.logger.Error("notification channel failed",
					"channel", ch.Name(),
					"error", err,
				)
				return
			}
			d.logger.Debug("notification channel done", "channel", ch.Name())
		})
	}

	wg.Wait()
}

func notifyOne(ctx context.Context, ch Channel, nctx NotificationContext) (err error) {
	var pc panics.Catcher
	pc.Try(func() {
		err = ch.Notify(ctx, nctx)
	})
	if r := pc.Recovered(); r != nil {
		return r.AsError()
	}
	return err
}
