package statuspage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/juststeveking/lookout/internal/monitor"
)

// DesiredStatus maps a check verdict onto a component status
func DesiredStatus(status monitor.Status) ComponentStatus {
	if status == monitor.StatusUp {
		return ComponentOperational
	}
	return ComponentMajorOutage
}

// SyncComponents makes sure every check has a component with the matching
// status. Calls are made one after another. It returns components by name.
func SyncComponents(ctx context.Context, api API, snapshot monitor.Snapshot, logger *slog.Logger) (map[string]Component, error) {
	components, err := api.ListComponents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list components: %w", err)
	}

	byName := make(map[string]Component, len(components))
	for _, c := range components {
		byName[c.Name] = c
	}

	for _, check := range snapshot {
		desired := DesiredStatus(check.Status)

		component, ok := byName[check.Name]
		if !ok {
			logger.Info("creating component", "component", check.Name, "status", desired)
			created, err := api.CreateComponent(ctx, check.Name, desired)
			if err != nil {
				return nil, fmt.Errorf("failed to create component %s: %w", check.Name, err)
			}
			byName[check.Name] = created
			continue
		}

		if component.Status == desired {
			continue
		}

		logger.Info("updating component",
			"component", check.Name,
			"from", component.Status,
			"to", desired,
		)
		updated, err := api.UpdateComponentStatus(ctx, component.ID, desired)
		if err != nil {
			return nil, fmt.Errorf("failed to update component %s: %w", check.Name, err)
		}
		byName[check.Name] = updated
	}

	return byName, nil
}
