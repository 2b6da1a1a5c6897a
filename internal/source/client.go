package source

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 5
	defaultBackoff    = time.Second
)

// Client fetches raw feed bodies over HTTP with retries
type Client struct {
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	logger     *zap.Logger
}

// ClientOption customizes a Client
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithMaxRetries sets how many attempts a request gets
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the base delay; attempt n waits base * 2^n
func WithBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.backoff = d
	}
}

func NewClient(logger *zap.Logger, opts ...ClientOption) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
		logger:     logger.Named("source_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the body of url. Rate limiting (429), server errors and
// transport failures are retried with exponential backoff; other 4xx fail at once.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	log := c.logger.With(zap.String("url", url))

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(math.Pow(2, float64(attempt-1))) * c.backoff
			log.Debug("retrying request",
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries),
				zap.Duration("backoff", wait))
			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json, application/xml")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("request failed", zap.Int("attempt", attempt+1), zap.Error(err))
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response body: %w", err)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			log.Warn("rate limited", zap.Int("attempt", attempt+1))
			lastErr = fmt.Errorf("rate limited")
			continue
		case resp.StatusCode >= 500:
			log.Warn("server error", zap.Int("status", resp.StatusCode), zap.Int("attempt", attempt+1))
			lastErr = fmt.Errorf("source returned %d", resp.StatusCode)
			continue
		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("source returned %d: %s", resp.StatusCode, truncate(body, 200))
		}

		log.Debug("request completed", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(body)))
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
