package statuspage

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/juststeveking/lookout/internal/monitor"
)

func TestPlanIncident(t *testing.T) {
	byName := map[string]Component{
		"api": {ID: "comp-1", Name: "api"},
		"web": {ID: "comp-2", Name: "web"},
	}
	apiDown := monitor.Snapshot{{Name: "api", Status: monitor.StatusDown}}
	bothDown := monitor.Snapshot{
		{Name: "web", Status: monitor.StatusDown},
		{Name: "api", Status: monitor.StatusDown},
	}
	active := &Incident{ID: "inc-1"}

	tests := []struct {
		name    string
		failed  monitor.Snapshot
		active  *Incident
		lastKey string
		want    Action
	}{
		{"nothing down, no incident", nil, nil, "", ActionNone},
		{"nothing down, incident open", nil, active, "comp-1", ActionResolve},
		{"first failure", apiDown, nil, "", ActionCreate},
		{"same set", apiDown, active, "comp-1", ActionNone},
		{"set grew", bothDown, active, "comp-1", ActionUpdate},
		{"same set in another order", bothDown, active, "comp-1,comp-2", ActionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanIncident(tt.failed, byName, tt.active, tt.lastKey)
			if plan.Action != tt.want {
				t.Errorf("Action = %s, want %s", plan.Action, tt.want)
			}
			if tt.active != nil && plan.IncidentID != tt.active.ID {
				t.Errorf("Expected plan for %s, got %q", tt.active.ID, plan.IncidentID)
			}
		})
	}
}

func TestBuildIncidentDataSkipsUnknownComponents(t *testing.T) {
	data := BuildIncidentData(monitor.Snapshot{
		{Name: "web", Status: monitor.StatusDown},
		{Name: "ghost", Status: monitor.StatusDown},
		{Name: "api", Status: monitor.StatusDown},
	}, map[string]Component{
		"api": {ID: "b"},
		"web": {ID: "a"},
	})

	if diff := cmp.Diff([]string{"a", "b"}, data.ComponentIDs); diff != "" {
		t.Errorf("Unexpected ids (-want +got):\n%s", diff)
	}
	if data.ComponentsKey != "a,b" {
		t.Errorf("Unexpected key %q", data.ComponentsKey)
	}
	if data.Name != "Multiple Systems Disrupted" {
		t.Errorf("Unexpected name %q", data.Name)
	}
}

func TestLatestDetails(t *testing.T) {
	incident := Incident{IncidentUpdates: []IncidentUpdate{
		{Status: IncidentPostmortem, Body: "pm"},
		{Status: IncidentResolved, Body: "resolved"},
		{Status: IncidentMonitoring, Body: "latest"},
		{Status: IncidentInvestigating, Body: "first"},
	}}
	if got := incident.LatestDetails(); got != "latest" {
		t.Errorf("LatestDetails() = %q, want %q", got, "latest")
	}
	if got := (Incident{}).LatestDetails(); got != "" {
		t.Errorf("Expected empty details, got %q", got)
	}
}

func TestPostmortemBodyFallback(t *testing.T) {
	want := "## Issue\nOne or more services experienced a disruption.\n" +
		"## Resolution\nAll services are back up and running and the incident has been resolved.\n"
	if got := PostmortemBody(""); got != want {
		t.Errorf("PostmortemBody(\"\") = %q, want %q", got, want)
	}
}

func TestComponentsKeySorts(t *testing.T) {
	if got := ComponentsKey([]string{"z", "a", "m"}); got != "a,m,z" {
		t.Errorf("ComponentsKey = %q", got)
	}
	incident := Incident{Components: []Component{{ID: "2"}, {ID: "1"}}}
	if got := incident.ComponentsKey(); got != "1,2" {
		t.Errorf("Incident.ComponentsKey = %q", got)
	}
}
