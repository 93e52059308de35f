// Package statuspage mirrors check results onto a Statuspage page: one
// component per check and a single grouped incident for whatever is down.
package statuspage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/juststeveking/lookout/internal/notify"
)

// State is what the channel remembers between runs
type State struct {
	IncidentID            string `json:"incidentId"`
	IncidentComponentsKey string `json:"incidentComponentsKey"`
}

// Channel is the status page sync channel
type Channel struct {
	api    API
	store  *notify.StateStore
	logger *slog.Logger
}

// NewChannel creates the channel. A nil api means Statuspage is not
// configured and every Notify is a silent no-op.
func NewChannel(api API, store *notify.StateStore, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Channel{
		api:    api,
		store:  store,
		logger: logger.With("channel", notify.ChannelStatuspage),
	}
}

func (c *Channel) Name() string {
	return notify.ChannelStatuspage
}

// Notify syncs components first, then the incident
func (c *Channel) Notify(ctx context.Context, nctx notify.NotificationContext) error {
	if c.api == nil {
		c.logger.Debug("statuspage not configured, skipping")
		return nil
	}

	byName, err := SyncComponents(ctx, c.api, nctx.Snapshot, c.logger)
	if err != nil {
		return err
	}

	return c.syncIncident(ctx, nctx, byName)
}

func (c *Channel) syncIncident(ctx context.Context, nctx notify.NotificationContext, byName map[string]Component) error {
	active, err := c.activeIncident(ctx)
	if err != nil {
		return err
	}

	state, err := notify.GetChannelState[State](ctx, c.store, notify.ChannelStatuspage)
	if err != nil {
		return err
	}

	lastKey := ""
	if active != nil {
		lastKey = active.ComponentsKey()
		if state != nil && state.IncidentID == active.ID {
			lastKey = state.IncidentComponentsKey
		}
	}

	plan := PlanIncident(nctx.FailedChecks(), byName, active, lastKey)
	logger := c.logger.With("action", plan.Action.String())

	switch plan.Action {
	case ActionCreate:
		logger.Info("creating incident", "name", plan.Data.Name, "components", plan.Data.ComponentIDs)
		incident, err := c.api.CreateIncident(ctx, IncidentRequest{
			Name:         plan.Data.Name,
			Status:       IncidentInvestigating,
			Body:         plan.Data.Body,
			ComponentIDs: plan.Data.ComponentIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to create incident: %w", err)
		}
		return c.remember(ctx, state, incident.ID, plan.Data.ComponentsKey)

	case ActionUpdate:
		logger.Info("updating incident", "incident", plan.IncidentID, "components", plan.Data.ComponentIDs)
		_, err := c.api.UpdateIncident(ctx, plan.IncidentID, IncidentRequest{
			Name:         plan.Data.Name,
			Body:         plan.Data.Body,
			ComponentIDs: plan.Data.ComponentIDs,
		})
		if err != nil {
			return fmt.Errorf("failed to update incident %s: %w", plan.IncidentID, err)
		}
		return c.remember(ctx, state, plan.IncidentID, plan.Data.ComponentsKey)

	case ActionResolve:
		if err := c.resolve(ctx, logger, plan.IncidentID); err != nil {
			return err
		}
		return notify.SetChannelState[State](ctx, c.store, notify.ChannelStatuspage, nil)
	}

	if active == nil {
		if state != nil {
			return notify.SetChannelState[State](ctx, c.store, notify.ChannelStatuspage, nil)
		}
		return nil
	}

	logger.Debug("incident already up to date", "incident", active.ID)
	return c.remember(ctx, state, active.ID, lastKey)
}

// resolve closes the incident, then writes and publishes its postmortem
func (c *Channel) resolve(ctx context.Context, logger *slog.Logger, incidentID string) error {
	incident, err := c.api.GetIncident(ctx, incidentID)
	if err != nil {
		return fmt.Errorf("failed to get incident %s: %w", incidentID, err)
	}
	details := incident.LatestDetails()

	logger.Info("resolving incident", "incident", incidentID)
	if _, err := c.api.UpdateIncident(ctx, incidentID, IncidentRequest{
		Status: IncidentResolved,
		Body:   RecoveryBody,
	}); err != nil {
		return fmt.Errorf("failed to resolve incident %s: %w", incidentID, err)
	}

	if err := c.api.CreatePostmortem(ctx, incidentID, PostmortemBody(details)); err != nil {
		return fmt.Errorf("failed to create postmortem for %s: %w", incidentID, err)
	}
	if err := c.api.PublishPostmortem(ctx, incidentID); err != nil {
		return fmt.Errorf("failed to publish postmortem for %s: %w", incidentID, err)
	}

	logger.Info("published postmortem", "incident", incidentID)
	return nil
}

// activeIncident returns the unresolved incident this channel manages, or nil
func (c *Channel) activeIncident(ctx context.Context) (*Incident, error) {
	unresolved, err := c.api.ListUnresolvedIncidents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved incidents: %w", err)
	}
	if len(unresolved) == 0 {
		return nil, nil
	}
	if len(unresolved) > 1 {
		c.logger.Warn("more than one unresolved incident, using the most recent",
			"count", len(unresolved),
			"incident", unresolved[0].ID,
		)
	}
	return &unresolved[0], nil
}

// remember persists the incident fingerprint when it changed
func (c *Channel) remember(ctx context.Context, prev *State, incidentID, key string) error {
	next := State{IncidentID: incidentID, IncidentComponentsKey: key}
	if prev != nil && *prev == next {
		return nil
	}
	return notify.SetChannelState(ctx, c.store, notify.ChannelStatuspage, &next)
}
