package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"
)

// MaxRetryCount bounds retry_count. With doubling backoff the last wait is
// already over eight minutes.
const MaxRetryCount = 10

// Auth represents authentication configuration for a check
type Auth struct {
	Type         string `yaml:"type,omitempty"` // "bearer", "basic", "access", or empty
	Token        string `yaml:"token,omitempty"`
	Username     string `yaml:"username,omitempty"`
	Password     string `yaml:"password,omitempty"`
	ClientID     string `yaml:"client_id,omitempty"`
	ClientSecret string `yaml:"client_secret,omitempty"`
}

// CheckConfig represents one endpoint to probe, as written by the user
type CheckConfig struct {
	Name          string            `yaml:"name"`
	Target        string            `yaml:"target"`
	ProbeTarget   string            `yaml:"probe_target,omitempty"`
	Method        string            `yaml:"method,omitempty"`
	ExpectedCodes []int             `yaml:"expected_codes,omitempty"`
	Timeout       string            `yaml:"timeout,omitempty"`
	RetryCount    int               `yaml:"retry_count,omitempty"`
	Headers       map[string]string `yaml:"headers,omitempty"`
	Body          string            `yaml:"body,omitempty"`
	Auth          *Auth             `yaml:"auth,omitempty"`
}

// ResolvedCheck is a CheckConfig with every default materialized and every
// secret reference expanded. It does not change for the rest of a run.
type ResolvedCheck struct {
	Name          string
	Target        string
	ProbeTarget   string
	Method        string
	ExpectedCodes []int
	Timeout       time.Duration
	RetryCount    int
	Headers       http.Header
	Body          string
}

// Validate reports problems that Resolve cannot paper over
func (c CheckConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("check name is required")
	}
	if c.Target == "" {
		return fmt.Errorf("check '%s': target is required", c.Name)
	}
	if c.RetryCount < 0 || c.RetryCount > MaxRetryCount {
		return fmt.Errorf("check '%s': retry_count must be between 0 and %d", c.Name, MaxRetryCount)
	}
	if c.Method != "" && !validMethod(c.Method) {
		return fmt.Errorf("check '%s': invalid method %q", c.Name, c.Method)
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("check '%s': invalid timeout: %w", c.Name, err)
		}
		if d <= 0 {
			return fmt.Errorf("check '%s': timeout must be positive", c.Name)
		}
	}
	if c.Auth != nil {
		switch strings.ToLower(c.Auth.Type) {
		case "", "bearer", "basic", "access":
		default:
			return fmt.Errorf("check '%s': unknown auth type %q", c.Name, c.Auth.Type)
		}
	}
	return nil
}

// Resolve materializes defaults and expands ${NAME} references against env
func (c CheckConfig) Resolve(env *Env) (ResolvedCheck, error) {
	if err := c.Validate(); err != nil {
		return ResolvedCheck{}, err
	}

	method := strings.ToUpper(c.Method)
	if method == "" {
		method = DefaultMethod
	}

	probeTarget := c.ProbeTarget
	if probeTarget == "" {
		probeTarget = c.Target
	}

	expected := c.ExpectedCodes
	if len(expected) == 0 {
		expected = []int{http.StatusOK}
	}

	timeoutSpec := c.Timeout
	if timeoutSpec == "" {
		timeoutSpec = DefaultTimeout
	}
	timeout, err := time.ParseDuration(timeoutSpec)
	if err != nil {
		return ResolvedCheck{}, fmt.Errorf("check '%s': invalid timeout: %w", c.Name, err)
	}

	headers := make(http.Header, len(c.Headers)+1)
	for key, value := range c.Headers {
		headers.Set(key, env.Expand(value))
	}
	applyAuth(headers, c.Auth, env)

	return ResolvedCheck{
		Name:          c.Name,
		Target:        c.Target,
		ProbeTarget:   probeTarget,
		Method:        method,
		ExpectedCodes: append([]int(nil), expected...),
		Timeout:       timeout,
		RetryCount:    c.RetryCount,
		Headers:       headers,
		Body:          env.Expand(c.Body),
	}, nil
}

// ResolveChecks resolves every configured check in configuration order
func (c *Config) ResolveChecks(env *Env) ([]ResolvedCheck, error) {
	resolved := make([]ResolvedCheck, 0, len(c.Checks))
	for _, check := range c.Checks {
		r, err := check.Resolve(env)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}

func applyAuth(headers http.Header, auth *Auth, env *Env) {
	if auth == nil {
		return
	}

	switch strings.ToLower(auth.Type) {
	case "bearer":
		if token := env.Expand(auth.Token); token != "" {
			headers.Set("Authorization", "Bearer "+token)
		}
	case "basic":
		username := env.Expand(auth.Username)
		password := env.Expand(auth.Password)
		if username != "" && password != "" {
			r := http.Request{Header: headers}
			r.SetBasicAuth(username, password)
		}
	case "access":
		// Cloudflare Access service token; falls back to the well-known secrets.
		clientID := env.Expand(auth.ClientID)
		if clientID == "" {
			clientID = env.Get(AccessClientID)
		}
		clientSecret := env.Expand(auth.ClientSecret)
		if clientSecret == "" {
			clientSecret = env.Get(AccessClientSecret)
		}
		if clientID != "" && clientSecret != "" {
			headers.Set("CF-Access-Client-Id", clientID)
			headers.Set("CF-Access-Client-Secret", clientSecret)
		}
	}
}

// validMethod reports whether method is an HTTP token
func validMethod(method string) bool {
	return strings.IndexFunc(method, func(r rune) bool {
		return !httpguts.IsTokenRune(r)
	}) == -1
}
