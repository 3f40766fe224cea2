package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://api.coinbase.com/v2"
	DefaultAPIVersion  = "2024-01-01"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 3
	DefaultRetryDelay  = 1 * time.Second
	DefaultMaxDelay    = 10 * time.Second
	DefaultBackoffMult = 2.0
	DefaultThrottle    = 100 * time.Millisecond
)

// Client is an authenticated exchange REST client with bounded
// exponential-backoff retries.
type Client struct {
	baseURL     string
	token       string
	apiVersion  string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	throttle    time.Duration
	jitter      *rand.Rand
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL sets the API base URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithTimeout sets HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryDelay sets initial retry delay.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxDelay sets maximum retry delay.
func WithMaxDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.maxDelay = d
	}
}

// WithThrottle sets the delay applied between paginated calls.
func WithThrottle(d time.Duration) ClientOption {
	return func(c *Client) {
		c.throttle = d
	}
}

// WithHTTPClient sets custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// WithJitterSeed sets the jitter source seed for deterministic tests.
func WithJitterSeed(seed int64) ClientOption {
	return func(c *Client) {
		c.jitter = rand.New(rand.NewSource(seed))
	}
}

// NewClient creates an exchange client. The token is held in memory only and
// never appears in errors or output.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		token:       token,
		apiVersion:  DefaultAPIVersion,
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		throttle:    DefaultThrottle,
		jitter:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiError is the exchange error envelope.
type apiError struct {
	Errors []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"errors"`
}

// get performs an authenticated GET with retries and exponential backoff.
// Credential rejections are not retried; 429 and transport failures are,
// up to maxRetries before surfacing the typed error.
func (c *Client) get(ctx context.Context, endpoint string, result interface{}) error {
	delay := c.retryDelay
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrUnreachable, ctx.Err())
			case <-time.After(delay):
			}
			// Exponential backoff
			delay = time.Duration(float64(delay) * c.backoffMult)
			if delay > c.maxDelay {
				delay = c.maxDelay
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strings.TrimLeft(endpoint, "/"), nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("CB-VERSION", c.apiVersion)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %v", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %v", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			// Credential rejections are terminal
			return credentialError(body)
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("status 429")
			continue
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("%w: unexpected status %d", ErrUnreachable, resp.StatusCode)
		}

		if result != nil {
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("%w: unmarshal response: %v", ErrUnreachable, err)
			}
		}
		return nil
	}

	if strings.Contains(lastErr.Error(), "429") {
		return fmt.Errorf("%w: retry budget exhausted", ErrRateLimited)
	}
	return fmt.Errorf("%w: retry budget exhausted: %v", ErrUnreachable, lastErr)
}

// credentialError maps a 401/403 body to the credential error kind.
func credentialError(body []byte) error {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil {
		for _, item := range e.Errors {
			if item.ID == "expired_token" || strings.Contains(strings.ToLower(item.Message), "expired") {
				return ErrCredentialExpired
			}
		}
	}
	return ErrCredentialInvalid
}

// pause sleeps for the inter-page throttle plus random jitter, staying under
// the exchange's published rate limit. Context-aware.
func (c *Client) pause(ctx context.Context) error {
	if c.throttle <= 0 {
		return nil
	}
	jitter := time.Duration(c.jitter.Int63n(int64(c.throttle)/2 + 1))
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrUnreachable, ctx.Err())
	case <-time.After(c.throttle + jitter):
		return nil
	}
}
