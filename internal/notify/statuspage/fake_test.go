package statuspage

import (
	"context"
	"fmt"
	"slices"
)

// fakeAPI keeps a tiny in-memory page and records every call in order
type fakeAPI struct {
	components []Component
	unresolved []Incident
	calls      []string
	requests   []IncidentRequest
	postmortem string
	nextID     int
	failOn     string
}

func (f *fakeAPI) record(call string) error {
	f.calls = append(f.calls, call)
	if call == f.failOn {
		return fmt.Errorf("%s failed", call)
	}
	return nil
}

func (f *fakeAPI) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) ListComponents(context.Context) ([]Component, error) {
	if err := f.record("ListComponents"); err != nil {
		return nil, err
	}
	return slices.Clone(f.components), nil
}

func (f *fakeAPI) CreateComponent(_ context.Context, name string, status ComponentStatus) (Component, error) {
	if err := f.record("CreateComponent"); err != nil {
		return Component{}, err
	}
	f.nextID++
	c := Component{ID: fmt.Sprintf("new-%d", f.nextID), Name: name, Status: status}
	f.components = append(f.components, c)
	return c, nil
}

func (f *fakeAPI) UpdateComponentStatus(_ context.Context, id string, status ComponentStatus) (Component, error) {
	if err := f.record("UpdateComponentStatus"); err != nil {
		return Component{}, err
	}
	for i := range f.components {
		if f.components[i].ID == id {
			f.components[i].Status = status
			return f.components[i], nil
		}
	}
	return Component{}, fmt.Errorf("component %s not found", id)
}

func (f *fakeAPI) ListUnresolvedIncidents(context.Context) ([]Incident, error) {
	if err := f.record("ListUnresolvedIncidents"); err != nil {
		return nil, err
	}
	return slices.Clone(f.unresolved), nil
}

func (f *fakeAPI) GetIncident(_ context.Context, id string) (Incident, error) {
	if err := f.record("GetIncident"); err != nil {
		return Incident{}, err
	}
	for _, inc := range f.unresolved {
		if inc.ID == id {
			return inc, nil
		}
	}
	return Incident{}, fmt.Errorf("incident %s not found", id)
}

func (f *fakeAPI) CreateIncident(_ context.Context, req IncidentRequest) (Incident, error) {
	if err := f.record("CreateIncident"); err != nil {
		return Incident{}, err
	}
	f.requests = append(f.requests, req)
	f.nextID++
	inc := Incident{
		ID:              fmt.Sprintf("inc-%d", f.nextID),
		Name:            req.Name,
		Status:          req.Status,
		IncidentUpdates: []IncidentUpdate{{ID: "upd-1", Status: req.Status, Body: req.Body}},
		Components:      f.lookup(req.ComponentIDs),
	}
	f.unresolved = append([]Incident{inc}, f.unresolved...)
	return inc, nil
}

func (f *fakeAPI) UpdateIncident(_ context.Context, id string, req IncidentRequest) (Incident, error) {
	if err := f.record("UpdateIncident"); err != nil {
		return Incident{}, err
	}
	f.requests = append(f.requests, req)
	for i, inc := range f.unresolved {
		if inc.ID != id {
			continue
		}
		status := req.Status
		if status == "" {
			status = inc.Status
		}
		inc.IncidentUpdates = append([]IncidentUpdate{{Status: status, Body: req.Body}}, inc.IncidentUpdates...)
		if req.ComponentIDs != nil {
			inc.Components = f.lookup(req.ComponentIDs)
		}
		if status.Terminal() {
			f.unresolved = slices.Delete(f.unresolved, i, i+1)
		} else {
			f.unresolved[i] = inc
		}
		return inc, nil
	}
	return Incident{}, fmt.Errorf("incident %s not found", id)
}

func (f *fakeAPI) CreatePostmortem(_ context.Context, _ string, body string) error {
	if err := f.record("CreatePostmortem"); err != nil {
		return err
	}
	f.postmortem = body
	return nil
}

func (f *fakeAPI) PublishPostmortem(context.Context, string) error {
	return f.record("PublishPostmortem")
}

func (f *fakeAPI) lookup(ids []string) []Component {
	var out []Component
	for _, id := range ids {
		for _, c := range f.components {
			if c.ID == id {
				out = append(out, c)
			}
		}
	}
	return out
}
