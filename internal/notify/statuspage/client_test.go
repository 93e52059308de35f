package statuspage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "OAuth key" {
			t.Errorf("Expected OAuth header, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(ts.Close)

	client := NewClient(ClientConfig{
		APIKey:      "key",
		PageID:      "page",
		BaseURL:     ts.URL,
		MinInterval: -1,
	})
	return client, &reqs
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	io.WriteString(w, body)
}

func TestClientComponents(t *testing.T) {
	client, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, `[{"id":"c1","name":"api","status":"operational","position":1}]`)
		default:
			writeJSON(w, `{"id":"c2","name":"web","status":"major_outage"}`)
		}
	})
	ctx := context.Background()

	components, err := client.ListComponents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]Component{{ID: "c1", Name: "api", Status: ComponentOperational}}, components); diff != "" {
		t.Errorf("Unexpected components (-want +got):\n%s", diff)
	}

	if _, err := client.CreateComponent(ctx, "web", ComponentMajorOutage); err != nil {
		t.Fatal(err)
	}
	if _, err := client.UpdateComponentStatus(ctx, "c2", ComponentOperational); err != nil {
		t.Fatal(err)
	}

	want := []recordedRequest{
		{Method: "GET", Path: "/pages/page/components.json"},
		{Method: "POST", Path: "/pages/page/components.json", Body: `{"component":{"name":"web","status":"major_outage"}}`},
		{Method: "PATCH", Path: "/pages/page/components/c2.json", Body: `{"component":{"status":"operational"}}`},
	}
	if diff := cmp.Diff(want, *reqs); diff != "" {
		t.Errorf("Unexpected requests (-want +got):\n%s", diff)
	}
}

func TestClientIncidentLifecycle(t *testing.T) {
	client, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "unresolved.json"):
			writeJSON(w, `[{"id":"i1","name":"api Down","status":"investigating","components":[{"id":"c1"}],"incident_updates":[{"id":"u1","status":"investigating","body":"details"}]}]`)
		case strings.Contains(r.URL.Path, "postmortem"):
			w.WriteHeader(http.StatusOK)
		default:
			writeJSON(w, `{"id":"i1","status":"investigating"}`)
		}
	})
	ctx := context.Background()

	incidents, err := client.ListUnresolvedIncidents(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(incidents) != 1 || incidents[0].LatestDetails() != "details" || incidents[0].ComponentsKey() != "c1" {
		t.Errorf("Unexpected incidents %+v", incidents)
	}

	created, err := client.CreateIncident(ctx, IncidentRequest{
		Name:         "api Down",
		Status:       IncidentInvestigating,
		Body:         "body",
		ComponentIDs: []string{"c1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if created.ID != "i1" {
		t.Errorf("Expected incident id i1, got %s", created.ID)
	}

	if _, err := client.UpdateIncident(ctx, "i1", IncidentRequest{Status: IncidentResolved, Body: RecoveryBody}); err != nil {
		t.Fatal(err)
	}
	if err := client.CreatePostmortem(ctx, "i1", "pm"); err != nil {
		t.Fatal(err)
	}
	if err := client.PublishPostmortem(ctx, "i1"); err != nil {
		t.Fatal(err)
	}

	got := *reqs
	if len(got) != 5 {
		t.Fatalf("Expected 5 requests, got %d", len(got))
	}
	if got[1].Body != `{"incident":{"name":"api Down","status":"investigating","body":"body","component_ids":["c1"]}}` {
		t.Errorf("Unexpected create body %s", got[1].Body)
	}
	if got[2].Method != "PATCH" || got[2].Body != `{"incident":{"status":"resolved","body":"All services have recovered."}}` {
		t.Errorf("Unexpected resolve request %+v", got[2])
	}
	if got[3].Method != "PUT" || got[3].Path != "/pages/page/incidents/i1/postmortem" || got[3].Body != `{"postmortem":{"body_draft":"pm"}}` {
		t.Errorf("Unexpected postmortem request %+v", got[3])
	}
	if got[4].Path != "/pages/page/incidents/i1/postmortem/publish" {
		t.Errorf("Unexpected publish path %s", got[4].Path)
	}
}

func TestClientAPIError(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":"Could not authenticate"}`)
	})

	_, err := client.ListComponents(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || !strings.Contains(apiErr.Body, "Could not authenticate") {
		t.Errorf("Unexpected API error %+v", apiErr)
	}
}

func TestClientThrottles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `[]`)
	}))
	defer ts.Close()

	client := NewClient(ClientConfig{
		APIKey:      "key",
		PageID:      "page",
		BaseURL:     ts.URL,
		MinInterval: 50 * time.Millisecond,
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.ListComponents(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	// The first call uses the burst; the next two wait.
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("Expected requests to be spaced out, took %s", elapsed)
	}
}
