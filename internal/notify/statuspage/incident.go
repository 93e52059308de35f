package statuspage

import (
	"slices"

	"github.com/juststeveking/lookout/internal/monitor"
	"github.com/juststeveking/lookout/internal/notify"
)

const (
	RecoveryBody = "All services have recovered."

	fallbackIncidentDetails = "One or more services experienced a disruption."
	resolutionStatement     = "All services are back up and running and the incident has been resolved."
)

// Action is what incident sync does this run
type Action int

const (
	ActionNone Action = iota
	ActionCreate
	ActionUpdate
	ActionResolve
)

func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionUpdate:
		return "update"
	case ActionResolve:
		return "resolve"
	}
	return "none"
}

// IncidentData describes the grouped incident for the current failures
type IncidentData struct {
	Name          string
	Body          string
	ComponentIDs  []string
	ComponentsKey string
}

// Plan is the outcome of PlanIncident
type Plan struct {
	Action     Action
	IncidentID string
	Data       IncidentData
}

// BuildIncidentData derives the incident fields from the failed checks.
// Checks without a component are left out of ComponentIDs.
func BuildIncidentData(failed monitor.Snapshot, byName map[string]Component) IncidentData {
	msg := notify.BuildDowntimeMessage(failed)

	ids := make([]string, 0, len(failed))
	for _, check := range failed {
		if c, ok := byName[check.Name]; ok && c.ID != "" {
			ids = append(ids, c.ID)
		}
	}
	slices.Sort(ids)
	ids = slices.Compact(ids)

	return IncidentData{
		Name:          msg.Title,
		Body:          msg.Body,
		ComponentIDs:  ids,
		ComponentsKey: ComponentsKey(ids),
	}
}

// PlanIncident decides how the single grouped incident changes. active is
// the unresolved remote incident, if any; lastKey is the components key it
// was last written with.
func PlanIncident(failed monitor.Snapshot, byName map[string]Component, active *Incident, lastKey string) Plan {
	if len(failed) == 0 {
		if active == nil {
			return Plan{Action: ActionNone}
		}
		return Plan{Action: ActionResolve, IncidentID: active.ID}
	}

	data := BuildIncidentData(failed, byName)

	if active == nil {
		return Plan{Action: ActionCreate, Data: data}
	}
	if data.ComponentsKey != lastKey {
		return Plan{Action: ActionUpdate, IncidentID: active.ID, Data: data}
	}
	return Plan{Action: ActionNone, IncidentID: active.ID, Data: data}
}

// PostmortemBody renders the postmortem for a resolved incident
func PostmortemBody(details string) string {
	if details == "" {
		details = fallbackIncidentDetails
	}
	return "## Issue\n" + details + "\n## Resolution\n" + resolutionStatement + "\n"
}
