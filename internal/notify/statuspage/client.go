package statuspage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL     = "https://api.statuspage.io/v1"
	DefaultMinInterval = 1100 * time.Millisecond
)

// API is the subset of the Statuspage API the channel needs
type API interface {
	ListComponents(ctx context.Context) ([]Component, error)
	CreateComponent(ctx context.Context, name string, status ComponentStatus) (Component, error)
	UpdateComponentStatus(ctx context.Context, componentID string, status ComponentStatus) (Component, error)
	ListUnresolvedIncidents(ctx context.Context) ([]Incident, error)
	GetIncident(ctx context.Context, incidentID string) (Incident, error)
	CreateIncident(ctx context.Context, req IncidentRequest) (Incident, error)
	UpdateIncident(ctx context.Context, incidentID string, req IncidentRequest) (Incident, error)
	CreatePostmortem(ctx context.Context, incidentID, body string) error
	PublishPostmortem(ctx context.Context, incidentID string) error
}

// APIError is a non-2xx answer from Statuspage
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("statuspage API error %s: %s", e.Status, strings.TrimSpace(e.Body))
}

// ClientConfig configures a Client
type ClientConfig struct {
	APIKey  string
	PageID  string
	BaseURL string
	// MinInterval spaces out requests. Zero uses DefaultMinInterval; negative disables throttling.
	MinInterval time.Duration
	HTTPClient  *http.Client
}

// Client talks to one Statuspage page. Requests are serialized through a
// rate limiter.
type Client struct {
	apiKey  string
	pageID  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	limit := rate.Inf
	switch {
	case cfg.MinInterval == 0:
		limit = rate.Every(DefaultMinInterval)
	case cfg.MinInterval > 0:
		limit = rate.Every(cfg.MinInterval)
	}

	return &Client{
		apiKey:  cfg.APIKey,
		pageID:  cfg.PageID,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (c *Client) ListComponents(ctx context.Context) ([]Component, error) {
	var components []Component
	err := c.do(ctx, http.MethodGet, c.pagePath("components.json"), nil, &components)
	return components, err
}

func (c *Client) CreateComponent(ctx context.Context, name string, status ComponentStatus) (Component, error) {
	body := map[string]any{"component": map[string]any{"name": name, "status": status}}

	var component Component
	err := c.do(ctx, http.MethodPost, c.pagePath("components.json"), body, &component)
	return component, err
}

func (c *Client) UpdateComponentStatus(ctx context.Context, componentID string, status ComponentStatus) (Component, error) {
	body := map[string]any{"component": map[string]any{"status": status}}

	var component Component
	err := c.do(ctx, http.MethodPatch, c.pagePath("components", componentID+".json"), body, &component)
	return component, err
}

func (c *Client) ListUnresolvedIncidents(ctx context.Context) ([]Incident, error) {
	var incidents []Incident
	err := c.do(ctx, http.MethodGet, c.pagePath("incidents", "unresolved.json"), nil, &incidents)
	return incidents, err
}

func (c *Client) GetIncident(ctx context.Context, incidentID string) (Incident, error) {
	var incident Incident
	err := c.do(ctx, http.MethodGet, c.pagePath("incidents", incidentID+".json"), nil, &incident)
	return incident, err
}

func (c *Client) CreateIncident(ctx context.Context, req IncidentRequest) (Incident, error) {
	var incident Incident
	err := c.do(ctx, http.MethodPost, c.pagePath("incidents.json"), map[string]any{"incident": req}, &incident)
	return incident, err
}

func (c *Client) UpdateIncident(ctx context.Context, incidentID string, req IncidentRequest) (Incident, error) {
	var incident Incident
	err := c.do(ctx, http.MethodPatch, c.pagePath("incidents", incidentID+".json"), map[string]any{"incident": req}, &incident)
	return incident, err
}

func (c *Client) CreatePostmortem(ctx context.Context, incidentID, body string) error {
	req := map[string]any{"postmortem": map[string]any{"body_draft": body}}
	return c.do(ctx, http.MethodPut, c.pagePath("incidents", incidentID, "postmortem"), req, nil)
}

func (c *Client) PublishPostmortem(ctx context.Context, incidentID string) error {
	req := map[string]any{"postmortem": map[string]any{
		"notify_subscribers": false,
		"notify_twitter":     false,
	}}
	return c.do(ctx, http.MethodPut, c.pagePath("incidents", incidentID, "postmortem", "publish"), req, nil)
}

func (c *Client) pagePath(elem ...string) string {
	parts := []string{"pages", url.PathEscape(c.pageID)}
	for _, e := range elem {
		parts = append(parts, url.PathEscape(e))
	}
	return "/" + strings.Join(parts, "/")
}

// do sends one request and decodes a JSON answer into out when out is non-nil
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "OAuth "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("statuspage %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read statuspage response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(data)}
	}

	// Some endpoints answer with an empty body.
	if out == nil || len(bytes.TrimSpace(data)) == 0 ||
		!strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode statuspage response: %w", err)
	}
	return nil
}
