package statuspage

import (
	"slices"
	"strings"
)

type ComponentStatus string

const (
	ComponentOperational ComponentStatus = "operational"
	ComponentMajorOutage ComponentStatus = "major_outage"
)

type IncidentStatus string

const (
	IncidentInvestigating IncidentStatus = "investigating"
	IncidentIdentified    IncidentStatus = "identified"
	IncidentMonitoring    IncidentStatus = "monitoring"
	IncidentResolved      IncidentStatus = "resolved"
	IncidentPostmortem    IncidentStatus = "postmortem"
)

// Terminal reports whether no further updates are expected for the status
func (s IncidentStatus) Terminal() bool {
	return s == IncidentResolved || s == IncidentPostmortem
}

type Component struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Status ComponentStatus `json:"status"`
}

type IncidentUpdate struct {
	ID     string         `json:"id"`
	Status IncidentStatus `json:"status"`
	Body   string         `json:"body"`
}

type Incident struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Status IncidentStatus `json:"status"`
	// IncidentUpdates is newest first.
	IncidentUpdates []IncidentUpdate `json:"incident_updates"`
	Components      []Component      `json:"components"`
}

// ComponentsKey is the fingerprint of the components attached to the incident
func (i Incident) ComponentsKey() string {
	ids := make([]string, 0, len(i.Components))
	for _, c := range i.Components {
		ids = append(ids, c.ID)
	}
	return ComponentsKey(ids)
}

// LatestDetails returns the body of the newest non-terminal update, or ""
func (i Incident) LatestDetails() string {
	for _, u := range i.IncidentUpdates {
		if !u.Status.Terminal() {
			return u.Body
		}
	}
	return ""
}

// IncidentRequest is the body of an incident create or update. Zero fields are omitted.
type IncidentRequest struct {
	Name         string         `json:"name,omitempty"`
	Status       IncidentStatus `json:"status,omitempty"`
	Body         string         `json:"body,omitempty"`
	ComponentIDs []string       `json:"component_ids,omitempty"`
}

// ComponentsKey is the sorted, comma-joined set of component ids
func ComponentsKey(ids []string) string {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}
