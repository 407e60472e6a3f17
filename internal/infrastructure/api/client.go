// Package api implements the quote pipeline collaborators over the quotation HTTP API
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/damon-houk/currency-quote/internal/infrastructure/logger"
	"github.com/damon-houk/currency-quote/internal/infrastructure/middleware"
	"github.com/damon-houk/currency-quote/internal/infrastructure/observability"
)

const (
	// DefaultBaseURL is the public quotation API
	DefaultBaseURL = "https://economia.awesomeapi.com.br"

	lastQuotePath      = "/json/last/"
	historyQuotePath   = "/json/daily/"
	availablePairsPath = "/json/available"

	maxErrorBody = 512

	// MaxBackoff bounds the wait between two attempts
	MaxBackoff = time.Minute
	maxShift   = 30
)

// RetryStrategy selects how the delay between attempts grows
type RetryStrategy int

const (
	// ExponentialRetry waits base, 2*base, 4*base, ...
	ExponentialRetry RetryStrategy = iota
	// LinearRetry waits base, 2*base, 3*base, ...
	LinearRetry
)

// String returns the strategy name used in logs
func (s RetryStrategy) String() string {
	if s == LinearRetry {
		return "linear"
	}
	return "exponential"
}

// RetryPolicy bounds the attempts made for one request
type RetryPolicy struct {
	Strategy    RetryStrategy
	MaxAttempts int
	BaseDelay   time.Duration
}

// Delay returns how long to wait after the given failed attempt (1-based), never more than MaxBackoff
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if p.BaseDelay <= 0 {
		return 0
	}

	var delay time.Duration
	if p.Strategy == LinearRetry {
		if time.Duration(attempt) > MaxBackoff/p.BaseDelay {
			return MaxBackoff
		}
		delay = p.BaseDelay * time.Duration(attempt)
	} else {
		shift := attempt - 1
		if shift > maxShift {
			return MaxBackoff
		}
		delay = p.BaseDelay << uint(shift)
	}

	if delay <= 0 || delay > MaxBackoff {
		return MaxBackoff
	}
	return delay
}

// DefaultQuotePolicy is used for the last and history endpoints
func DefaultQuotePolicy() RetryPolicy {
	return RetryPolicy{Strategy: ExponentialRetry, MaxAttempts: 3, BaseDelay: time.Second}
}

// DefaultValidatorPolicy is used for the available pairs endpoint
func DefaultValidatorPolicy() RetryPolicy {
	return RetryPolicy{Strategy: LinearRetry, MaxAttempts: 3, BaseDelay: time.Second}
}

// statusError is returned for non-200 responses
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API returned error status: %d, body: %s", e.StatusCode, e.Body)
}

func (e *statusError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Client performs JSON GET requests against the quotation API with retries
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
	tracer     observability.Tracer
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new quotation API client. The transport of httpClient is wrapped with
// request-id, tracing and logging middleware.
func NewClient(baseURL string, httpClient *http.Client, log logger.Logger, tracer observability.Tracer) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}
	if tracer == nil {
		tracer = observability.NopTracer{}
	}

	wrapped := &http.Client{Timeout: 10 * time.Second}
	if httpClient != nil {
		*wrapped = *httpClient
	}
	wrapped.Transport = middleware.Chain(wrapped.Transport,
		middleware.RequestID(),
		middleware.Tracing(tracer),
		middleware.Logging(log),
	)

	return &Client{
		baseURL:    baseURL,
		httpClient: wrapped,
		logger:     log,
		tracer:     tracer,
		sleep:      sleepContext,
	}
}

// getJSON fetches path and decodes the body into out, retrying per policy
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, policy RetryPolicy, out interface{}) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	maxAttempts := policy.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var body []byte
	var err error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, err = c.fetch(ctx, reqURL)
		if err == nil {
			break
		}

		if !retryable(ctx, err) || attempt == maxAttempts {
			break
		}

		backoff := policy.Delay(attempt)
		c.logger.Warn("Request failed, retrying", map[string]interface{}{
			"url":      reqURL,
			"attempt":  attempt,
			"max":      maxAttempts,
			"strategy": policy.Strategy.String(),
			"backoff":  backoff.String(),
			"error":    err.Error(),
		})

		if sleepErr := c.sleep(ctx, backoff); sleepErr != nil {
			return sleepErr
		}
	}

	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (c *Client) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Debug("Error closing response body", map[string]interface{}{"error": closeErr.Error()})
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &statusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	return true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
