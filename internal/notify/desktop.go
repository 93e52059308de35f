package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/martinlindhe/notify"
)

const appName = "Lookout"

// showDesktop raises an OS notification. Replaced in tests.
var showDesktop = notify.Notify

// Desktop sends desktop notifications when the set of failing checks changes
type Desktop struct {
	logger *slog.Logger
}

// NewDesktop creates a new desktop channel
func NewDesktop(logger *slog.Logger) *Desktop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Desktop{logger: logger.With("channel", ChannelDesktop)}
}

func (d *Desktop) Name() string {
	return ChannelDesktop
}

// Notify alerts on new or changed failures and on full recovery
func (d *Desktop) Notify(_ context.Context, nctx NotificationContext) error {
	if !nctx.FailureSetChanged() {
		return nil
	}

	failed := nctx.FailedChecks()
	if len(failed) == 0 {
		d.notifyRecovery(nctx.LastFailedChecks)
		return nil
	}

	d.notifyFailure(BuildDowntimeMessage(failed))
	return nil
}

// notifyFailure sends a desktop notification for the current outage
func (d *Desktop) notifyFailure(msg DowntimeMessage) {
	title := fmt.Sprintf("⚠️  %s", msg.Title)

	lines := make([]string, 0, len(msg.FailedChecks))
	for _, check := range msg.FailedChecks {
		if check.Error != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", check.Name, check.Error))
		} else {
			lines = append(lines, check.Name)
		}
	}

	d.logger.Debug("sending desktop alert", "title", msg.Title)
	showDesktop(appName, title, strings.Join(lines, "\n"), "")
}

// notifyRecovery sends a desktop notification when everything is back up
func (d *Desktop) notifyRecovery(recovered []string) {
	title := "✅ All checks recovered"
	message := "All checks are up and running"
	if len(recovered) > 0 {
		message = fmt.Sprintf("Recovered: %s", strings.Join(recovered, ", "))
	}

	d.logger.Debug("sending desktop recovery")
	showDesktop(appName, title, message, "")
}
