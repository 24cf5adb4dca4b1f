package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxRetries  = 2
	defaultUserAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultReferer     = "https://volleyballlife.com/"
	maxResponseBytes   = 1 << 20 // score payloads are a few KB; cap defends against bad URLs
	initialRetryDelay  = 300 * time.Millisecond
)

// Error is a transport-level fetch failure. Parse problems are not Errors:
// the normalizer absorbs those.
type Error struct {
	URL string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client performs HTTP GETs against upstream score endpoints.
// The upstream expects browser-ish headers, so we send them.
type Client struct {
	httpClient *http.Client
	maxRetries uint64
}

// NewClient creates a fetch client with a bounded per-request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: defaultMaxRetries,
	}
}

// Fetch GETs the URL and returns the raw body. Transient failures are
// retried with exponential backoff a bounded number of times; the final
// failure surfaces as a *Error.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialRetryDelay
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.maxRetries), ctx)

	err := backoff.Retry(func() error {
		b, err := c.fetchOnce(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	}, policy)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", defaultReferer)
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			// Client errors won't heal on retry.
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	return body, nil
}
