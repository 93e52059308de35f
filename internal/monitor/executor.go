package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/juststeveking/lookout/internal/config"
)

// AccessPathPrefix is where Cloudflare Access serves its login and error pages.
const AccessPathPrefix = "/cdn-cgi/access/"

const maxRedirects = 10

var UserAgent = "lookout uptime check"

// Executor probes a single check, retrying with exponential backoff
type Executor struct {
	client *http.Client
	logger *slog.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an executor. A nil client gets a default one that
// follows up to 10 redirects, so access login redirects stay visible.
func NewExecutor(client *http.Client, logger *slog.Logger) *Executor {
	if client == nil {
		client = &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("too many redirects")
				}
				return nil
			},
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		client: client,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Close closes the HTTP client's connection pool
func (e *Executor) Close() {
	if e.client != nil {
		e.client.CloseIdleConnections()
	}
}

// Execute runs the check until it succeeds or its attempts are used up.
// It never fails: every problem ends up in Result.Error.
func (e *Executor) Execute(ctx context.Context, check config.ResolvedCheck) Result {
	result := Result{
		Name:   check.Name,
		Target: check.Target,
		Status: StatusUp,
	}

	policy := NewRetryPolicy(check.RetryCount)
	logger := e.logger.With("check", check.Name)
	logger.Debug("checking", "url", check.ProbeTarget)

	var failure string
	for attempt := 1; ; attempt++ {
		failure = e.attempt(ctx, check)

		step := policy.Next(attempt, failure == "")
		if step.Done {
			break
		}

		logger.Warn("check failed, retrying",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"wait", step.Wait,
			"reason", failure,
		)

		if err := e.sleep(ctx, step.Wait); err != nil {
			break
		}
	}

	if failure != "" {
		result.Status = StatusDown
		result.Error = failure
		logger.Info("check is down", "reason", failure)
	}

	return result
}

// attempt performs one request and returns the failure reason, or "" on success
func (e *Executor) attempt(ctx context.Context, check config.ResolvedCheck) string {
	ctx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	var body io.Reader
	if check.Body != "" {
		body = strings.NewReader(check.Body)
	}

	req, err := http.NewRequestWithContext(ctx, check.Method, check.ProbeTarget, body)
	if err != nil {
		return fmt.Sprintf("failed to create request: %v", err)
	}

	req.Header = check.Headers.Clone()
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", UserAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return describeError(err, check.Timeout)
	}
	// Only status and final URL matter; the body is never read.
	resp.Body.Close()

	return FailureReason(check, resp)
}

// FailureReason classifies a response. An access login page is always a
// failure, even if its status code is expected.
func FailureReason(check config.ResolvedCheck, resp *http.Response) string {
	if IsAccessRedirect(resp) {
		return fmt.Sprintf("Protected by Access (HTTP %d)", resp.StatusCode)
	}

	for _, code := range check.ExpectedCodes {
		if resp.StatusCode == code {
			return ""
		}
	}

	return strings.TrimSpace(fmt.Sprintf("HTTP %d %s", resp.StatusCode, statusText(resp)))
}

// IsAccessRedirect reports whether the response ended on an access login or error page
func IsAccessRedirect(resp *http.Response) bool {
	if resp.Request == nil || resp.Request.URL == nil {
		return false
	}
	return strings.HasPrefix(resp.Request.URL.Path, AccessPathPrefix)
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func describeError(err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Sprintf("Timeout after %s", timeout)
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Unknown error"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
