// Package notify turns check snapshots into alerts on independent channels.
package notify

import (
	"context"
	"slices"

	"github.com/juststeveking/lookout/internal/monitor"
)

// Channel names double as their notification state namespaces.
const (
	ChannelTelegram   = "telegram"
	ChannelStatuspage = "statuspage"
	ChannelDesktop    = "desktop"
)

// Channel is one notification integration
type Channel interface {
	Name() string
	Notify(ctx context.Context, nctx NotificationContext) error
}

// NotificationContext is what every channel sees in one activation
type NotificationContext struct {
	Snapshot monitor.Snapshot
	// LastFailedChecks are the names that were down on the previous pass.
	LastFailedChecks []string
	StatuspageURL    string
}

// FailedChecks returns the down results of the snapshot
func (c NotificationContext) FailedChecks() monitor.Snapshot {
	return c.Snapshot.Failed()
}

// FailureSetChanged reports whether the set of failing names differs from
// the previous pass. Order is ignored.
func (c NotificationContext) FailureSetChanged() bool {
	current := c.FailedChecks().Names()
	previous := slices.Clone(c.LastFailedChecks)
	slices.Sort(current)
	slices.Sort(previous)
	return !slices.Equal(slices.Compact(current), slices.Compact(previous))
}
