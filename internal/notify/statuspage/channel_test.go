package statuspage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/juststeveking/lookout/internal/kv"
	"github.com/juststeveking/lookout/internal/logging"
	"github.com/juststeveking/lookout/internal/monitor"
	"github.com/juststeveking/lookout/internal/notify"
)

func newTestChannel(api API) (*Channel, *notify.StateStore, *kv.Memory) {
	mem := kv.NewMemory()
	store := notify.NewStateStore(mem, logging.Discard())
	return NewChannel(api, store, logging.Discard()), store, mem
}

func snapshotOf(status map[string]monitor.Status, order ...string) notify.NotificationContext {
	var snapshot monitor.Snapshot
	for _, name := range order {
		r := monitor.Result{Name: name, Target: "https://" + name + ".example.com", Status: status[name]}
		if r.Status == monitor.StatusDown {
			r.Error = "HTTP 500 Internal Server Error"
		}
		snapshot = append(snapshot, r)
	}
	return notify.NotificationContext{Snapshot: snapshot}
}

func pageWithComponents() *fakeAPI {
	return &fakeAPI{components: []Component{
		{ID: "comp-2", Name: "web", Status: ComponentOperational},
		{ID: "comp-1", Name: "api", Status: ComponentOperational},
	}}
}

func TestTwoChecksDownCreateOnceThenNoop(t *testing.T) {
	api := pageWithComponents()
	ch, store, _ := newTestChannel(api)
	ctx := context.Background()

	down := snapshotOf(map[string]monitor.Status{"api": monitor.StatusDown, "web": monitor.StatusDown}, "api", "web")

	if err := ch.Notify(ctx, down); err != nil {
		t.Fatalf("first Notify failed: %v", err)
	}

	if api.count("CreateIncident") != 1 {
		t.Fatalf("Expected one incident to be created, calls: %v", api.calls)
	}
	created := api.requests[0]
	if diff := cmp.Diff([]string{"comp-1", "comp-2"}, created.ComponentIDs); diff != "" {
		t.Errorf("Unexpected component ids (-want +got):\n%s", diff)
	}
	if created.Status != IncidentInvestigating || created.Name != "Multiple Systems Disrupted" {
		t.Errorf("Unexpected incident request %+v", created)
	}

	state, err := notify.GetChannelState[State](ctx, store, notify.ChannelStatuspage)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&State{IncidentID: "inc-1", IncidentComponentsKey: "comp-1,comp-2"}, state); diff != "" {
		t.Errorf("Unexpected channel state (-want +got):\n%s", diff)
	}

	api.calls = nil
	if err := ch.Notify(ctx, down); err != nil {
		t.Fatalf("second Notify failed: %v", err)
	}
	if n := api.count("CreateIncident") + api.count("UpdateIncident") + api.count("UpdateComponentStatus"); n != 0 {
		t.Errorf("Expected no writes on the second run, calls: %v", api.calls)
	}
}

func TestSingleCheckDownTitle(t *testing.T) {
	api := pageWithComponents()
	ch, _, _ := newTestChannel(api)

	ctx := snapshotOf(map[string]monitor.Status{"api": monitor.StatusDown, "web": monitor.StatusUp}, "api", "web")
	if err := ch.Notify(context.Background(), ctx); err != nil {
		t.Fatal(err)
	}

	if len(api.requests) != 1 || api.requests[0].Name != "api Down" {
		t.Errorf("Expected 'api Down' incident, got %+v", api.requests)
	}
	if api.requests[0].Body != "Affected services:\n\n🔴 api: HTTP 500 Internal Server Error" {
		t.Errorf("Unexpected body %q", api.requests[0].Body)
	}
}

func TestChangedFailureSetUpdatesSameIncident(t *testing.T) {
	api := pageWithComponents()
	ch, store, _ := newTestChannel(api)
	ctx := context.Background()

	if err := ch.Notify(ctx, snapshotOf(map[string]monitor.Status{"api": monitor.StatusDown, "web": monitor.StatusUp}, "api", "web")); err != nil {
		t.Fatal(err)
	}
	if err := ch.Notify(ctx, snapshotOf(map[string]monitor.Status{"api": monitor.StatusDown, "web": monitor.StatusDown}, "api", "web")); err != nil {
		t.Fatal(err)
	}

	if api.count("CreateIncident") != 1 || api.count("UpdateIncident") != 1 {
		t.Fatalf("Expected create then update, calls: %v", api.calls)
	}
	update := api.requests[1]
	if update.Status != "" {
		t.Errorf("Update should not change status, got %s", update.Status)
	}
	if diff := cmp.Diff([]string{"comp-1", "comp-2"}, update.ComponentIDs); diff != "" {
		t.Errorf("Unexpected component ids (-want +got):\n%s", diff)
	}

	state, _ := notify.GetChannelState[State](ctx, store, notify.ChannelStatuspage)
	if state == nil || state.IncidentID != "inc-1" || state.IncidentComponentsKey != "comp-1,comp-2" {
		t.Errorf("Unexpected state after update %+v", state)
	}
}

func TestRecoveryResolvesThenPublishesPostmortem(t *testing.T) {
	api := pageWithComponents()
	api.unresolved = []Incident{{
		ID:     "inc-9",
		Status: IncidentInvestigating,
		IncidentUpdates: []IncidentUpdate{
			{Status: IncidentIdentified, Body: "Affected services:\n\n🔴 api: HTTP 502 Bad Gateway"},
			{Status: IncidentInvestigating, Body: "older"},
		},
		Components: []Component{{ID: "comp-1"}},
	}}
	ch, store, mem := newTestChannel(api)
	ctx := context.Background()

	notify.SetChannelState(ctx, store, notify.ChannelStatuspage, &State{IncidentID: "inc-9", IncidentComponentsKey: "comp-1"})

	up := snapshotOf(map[string]monitor.Status{"api": monitor.StatusUp, "web": monitor.StatusUp}, "api", "web")
	if err := ch.Notify(ctx, up); err != nil {
		t.Fatal(err)
	}

	want := []string{
		"ListComponents",
		"ListUnresolvedIncidents",
		"GetIncident",
		"UpdateIncident",
		"CreatePostmortem",
		"PublishPostmortem",
	}
	if diff := cmp.Diff(want, api.calls); diff != "" {
		t.Errorf("Unexpected call order (-want +got):\n%s", diff)
	}

	resolve := api.requests[0]
	if resolve.Status != IncidentResolved || resolve.Body != "All services have recovered." {
		t.Errorf("Unexpected resolve request %+v", resolve)
	}

	wantPostmortem := "## Issue\nAffected services:\n\n🔴 api: HTTP 502 Bad Gateway\n" +
		"## Resolution\nAll services are back up and running and the incident has been resolved.\n"
	if api.postmortem != wantPostmortem {
		t.Errorf("Unexpected postmortem:\n got %q\nwant %q", api.postmortem, wantPostmortem)
	}

	if _, err := mem.Get(ctx, notify.ChannelStateKey(notify.ChannelStatuspage)); !errors.Is(err, kv.ErrNotFound) {
		t.Errorf("Expected channel state to be cleared, got %v", err)
	}
}

func TestAllUpWithoutIncidentIsNoop(t *testing.T) {
	api := pageWithComponents()
	ch, _, mem := newTestChannel(api)

	up := snapshotOf(map[string]monitor.Status{"api": monitor.StatusUp, "web": monitor.StatusUp}, "api", "web")
	if err := ch.Notify(context.Background(), up); err != nil {
		t.Fatal(err)
	}

	want := []string{"ListComponents", "ListUnresolvedIncidents"}
	if diff := cmp.Diff(want, api.calls); diff != "" {
		t.Errorf("Unexpected calls (-want +got):\n%s", diff)
	}
	if keys := mem.Keys(); len(keys) != 0 {
		t.Errorf("Expected nothing written, got %v", keys)
	}
}

func TestComponentSync(t *testing.T) {
	api := &fakeAPI{components: []Component{
		{ID: "comp-1", Name: "api", Status: ComponentMajorOutage},
		{ID: "comp-2", Name: "web", Status: ComponentOperational},
	}}

	snapshot := monitor.Snapshot{
		{Name: "api", Status: monitor.StatusUp},
		{Name: "web", Status: monitor.StatusUp},
		{Name: "db", Status: monitor.StatusDown},
	}

	byName, err := SyncComponents(context.Background(), api, snapshot, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"ListComponents", "UpdateComponentStatus", "CreateComponent"}
	if diff := cmp.Diff(want, api.calls); diff != "" {
		t.Errorf("Unexpected calls (-want +got):\n%s", diff)
	}
	if byName["api"].Status != ComponentOperational {
		t.Errorf("Expected api to be operational, got %s", byName["api"].Status)
	}
	if db := byName["db"]; db.ID == "" || db.Status != ComponentMajorOutage {
		t.Errorf("Expected db to be created in major outage, got %+v", db)
	}
}

func TestUnconfiguredChannelIsSilent(t *testing.T) {
	ch, _, mem := newTestChannel(nil)

	down := snapshotOf(map[string]monitor.Status{"api": monitor.StatusDown}, "api")
	if err := ch.Notify(context.Background(), down); err != nil {
		t.Errorf("Expected silent no-op, got %v", err)
	}
	if keys := mem.Keys(); len(keys) != 0 {
		t.Errorf("Expected nothing written, got %v", keys)
	}
}

func TestMultipleUnresolvedPicksFirst(t *testing.T) {
	api := pageWithComponents()
	api.unresolved = []Incident{
		{ID: "newest", Status: IncidentInvestigating, Components: []Component{{ID: "comp-1"}}},
		{ID: "older", Status: IncidentInvestigating, Components: []Component{{ID: "comp-2"}}},
	}
	ch, store, _ := newTestChannel(api)
	ctx := context.Background()

	down := snapshotOf(map[string]monitor.Status{"api": monitor.StatusDown, "web": monitor.StatusUp}, "api", "web")
	if err := ch.Notify(ctx, down); err != nil {
		t.Fatal(err)
	}

	if api.count("CreateIncident")+api.count("UpdateIncident") != 0 {
		t.Errorf("Expected the newest incident to already match, calls: %v", api.calls)
	}
	state, _ := notify.GetChannelState[State](ctx, store, notify.ChannelStatuspage)
	if state == nil || state.IncidentID != "newest" {
		t.Errorf("Expected state to track the newest incident, got %+v", state)
	}
}

func TestAPIErrorsAreReturned(t *testing.T) {
	api := pageWithComponents()
	api.failOn = "CreateIncident"
	ch, _, mem := newTestChannel(api)

	down := snapshotOf(map[string]monitor.Status{"api": monitor.StatusDown}, "api")
	if err := ch.Notify(context.Background(), down); err == nil {
		t.Error("Expected create failure to be returned")
	}
	if keys := mem.Keys(); len(keys) != 0 {
		t.Errorf("Expected no state after failure, got %v", keys)
	}
}
