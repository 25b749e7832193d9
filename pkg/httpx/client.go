package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const maxResponseSizeBytes = 2 << 20

var (
	// ErrExhausted marks a request that spent its whole retry budget.
	ErrExhausted = errors.New("retry budget exhausted")
	// ErrDecode marks a response body that could not be decoded. Never retried.
	ErrDecode = errors.New("decode response")
)

// ExhaustedError wraps the last failure after the retry budget ran out and
// records how many attempts were made.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry budget exhausted after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

func (e *ExhaustedError) Is(target error) bool { return target == ErrExhausted }

// AttemptsFrom reports the attempt count carried by err, if any.
func AttemptsFrom(err error) (int, bool) {
	var ee *ExhaustedError
	if errors.As(err, &ee) {
		return ee.Attempts, true
	}
	return 0, false
}

// StatusError reports a non-2xx HTTP status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected http status=%d body=%.200s", e.Code, e.Body)
}

// StatusCode extracts the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

// RetryPolicy bounds retries of transient HTTP failures with exponential
// backoff: delay for attempt n is InitialDelay * Base^(n-1).
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Base         float64
	Retryable    map[int]bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		Base:         2,
		Retryable: map[int]bool{
			http.StatusTooManyRequests:     true,
			http.StatusInternalServerError: true,
			http.StatusServiceUnavailable:  true,
			http.StatusGatewayTimeout:      true,
		},
	}
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	d := float64(p.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= p.Base
	}
	return time.Duration(d)
}

func (p RetryPolicy) retryable(status int) bool {
	return p.Retryable[status]
}

// Client is a JSON GET client with retry semantics. All tool-backing
// endpoints in this app go through it.
type Client struct {
	httpClient *http.Client
	policy     RetryPolicy
	userAgent  string
	sleep      func(ctx context.Context, d time.Duration) error
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		if p.MaxAttempts > 0 {
			c.policy = p
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithSleep overrides the inter-attempt wait. Used by tests.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		policy:     DefaultRetryPolicy(),
		sleep:      sleepWithContext,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// GetJSON performs a GET and decodes the JSON body into out. It retries
// transient statuses per the policy and reports how many attempts ran.
// Non-retryable statuses and malformed bodies fail on the spot.
func (c *Client) GetJSON(ctx context.Context, rawURL string, query url.Values, out any) (attempts int, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("parse url: %w", err)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, c.policy.delay(attempt-1)); err != nil {
				return attempt - 1, err
			}
		}

		retry, err := c.do(ctx, u.String(), out)
		if err == nil {
			return attempt, nil
		}
		lastErr = err
		if !retry {
			return attempt, err
		}
		log.Debug().
			Str("url", u.Host).
			Int("attempt", attempt).
			Err(err).
			Msg("transient http failure, will retry")
	}

	return c.policy.MaxAttempts, &ExhaustedError{Attempts: c.policy.MaxAttempts, Last: lastErr}
}

func (c *Client) do(ctx context.Context, target string, out any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network-level errors are transient by assumption.
		return true, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := &StatusError{Code: resp.StatusCode, Body: string(raw)}
		return c.policy.retryable(resp.StatusCode), err
	}

	if out == nil {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return false, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
