// Package httpx is the shared JSON-over-HTTP client used by the remote
// gateways: bounded timeouts, retry with exponential backoff for 5xx and
// network errors, and 404 reported as absence.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/heartmarshall/pokedex-backend/internal/domain"
)

// maxBodySize caps response bodies; the full PokeAPI listing is a few MB.
const maxBodySize = 32 << 20

// Client performs GET requests and decodes JSON bodies.
type Client struct {
	http       *http.Client
	log        *slog.Logger
	maxRetries uint64
	initial    time.Duration
}

// New creates a Client. maxRetries is the number of retries after the first
// attempt for calls made with GetJSONRetry.
func New(logger *slog.Logger, timeout time.Duration, maxRetries uint64) *Client {
	return &Client{
		http:       &http.Client{Timeout: timeout},
		log:        logger,
		maxRetries: maxRetries,
		initial:    250 * time.Millisecond,
	}
}

// WithInitialInterval overrides the first backoff interval (tests use 1ms).
func (c *Client) WithInitialInterval(d time.Duration) *Client {
	c.initial = d
	return c
}

// GetJSON performs a single GET and decodes the body into dst.
// Returns found=false, err=nil on HTTP 404.
func (c *Client) GetJSON(ctx context.Context, url string, dst any) (bool, error) {
	found, err := c.do(ctx, url, dst)
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	return found, err
}

// GetJSONRetry is GetJSON retried with exponential backoff on network
// errors and 5xx responses.
func (c *Client) GetJSONRetry(ctx context.Context, url string, dst any) (bool, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial
	b.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.maxRetries), ctx)

	var found bool
	op := func() error {
		var err error
		found, err = c.do(ctx, url, dst)
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.log.WarnContext(ctx, "retrying request",
			slog.String("url", url),
			slog.String("reason", err.Error()),
			slog.Duration("wait", wait),
		)
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return false, err
	}
	return found, nil
}

// do runs one attempt. Errors that must not be retried are wrapped in
// backoff.Permanent.
func (c *Client) do(ctx context.Context, url string, dst any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	c.log.DebugContext(ctx, "http request", slog.String("url", url))

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return false, backoff.Permanent(fmt.Errorf("%w: %w", domain.ErrNetwork, ctx.Err()))
		}
		return false, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode >= 500:
		return false, fmt.Errorf("%w: unexpected status %d", domain.ErrNetwork, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return false, backoff.Permanent(fmt.Errorf("%w: unexpected status %d", domain.ErrNetwork, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return false, fmt.Errorf("%w: read body: %w", domain.ErrNetwork, err)
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return false, backoff.Permanent(fmt.Errorf("%w: decode json: %w", domain.ErrNetwork, err))
	}

	return true, nil
}
