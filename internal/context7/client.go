package context7

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/54b3r/docsbot-go/internal/metrics"
)

const (
	// requestTimeout is the per-request network timeout on the session.
	requestTimeout = 20 * time.Second

	// maxRetries is the total attempt budget for rate-limited requests.
	maxRetries = 3

	// defaultBackoffBase is the wait after the first 429; attempt n waits
	// base << n (1s, 2s, 4s). No jitter — the upstream limit is per-key,
	// so synchronized retries across processes are not a concern here.
	defaultBackoffBase = time.Second
)

// Config holds the settings for constructing a Client.
type Config struct {
	// BaseURL is the API base URL including the version prefix
	// (e.g. "https://context7.com/api/v2").
	BaseURL string

	// APIKey is the optional bearer token. Empty means unauthenticated.
	APIKey string

	// RateLimit is the sustained outbound request rate in requests/second.
	// Zero disables client-side limiting.
	RateLimit float64

	// RateBurst is the maximum outbound burst when RateLimit is set.
	RateBurst int
}

// Client talks to the Context7 REST API. It is safe for concurrent use:
// the underlying session supports concurrent outstanding requests, and each
// call runs its own retry loop with no shared mutable state beyond the
// session itself.
type Client struct {
	// baseURL is the API base URL without a trailing slash.
	baseURL string

	// apiKey is the optional bearer token.
	apiKey string

	// log receives the per-attempt structured request log.
	log *slog.Logger

	// metrics records request attempts and latencies. Nil-safe.
	metrics *metrics.Metrics

	// limiter throttles outbound requests. Nil when disabled.
	limiter *rate.Limiter

	// mu guards session.
	mu sync.Mutex

	// session is the lazily created HTTP client. It is dropped by Close
	// and transparently recreated on next use.
	session *http.Client

	// sleep performs the backoff wait. Overridden in tests to avoid
	// real sleeping.
	sleep func(time.Duration)

	// backoffBase is the wait unit for the 2^attempt backoff schedule.
	backoffBase time.Duration
}

// New constructs a Client. log must not be nil; m may be nil to disable
// metrics (useful in tests).
func New(cfg Config, log *slog.Logger, m *metrics.Metrics) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		log:         log,
		metrics:     m,
		limiter:     limiter,
		sleep:       time.Sleep,
		backoffBase: defaultBackoffBase,
	}
}

// getSession returns the shared HTTP client, creating it if it does not
// exist or was closed.
func (c *Client) getSession() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		c.session = &http.Client{Timeout: requestTimeout}
	}
	return c.session
}

// Close releases the underlying session if open. It is idempotent and safe
// to call when the session was never created; a subsequent request creates
// a fresh session.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.CloseIdleConnections()
		c.session = nil
	}
}

// get issues one logical GET against path, retrying transparently on 429
// with the 2^attempt backoff schedule. A non-429 status ≥400 fails
// immediately with *HTTPError; exhausting the attempt budget fails with
// ErrRateLimited. The response body is returned fully read.
func (c *Client) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	session := c.getSession()

	reqURL, err := c.buildURL(path, params)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("context7: rate limiter wait: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("context7: create request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		c.log.Debug("context7: GET",
			slog.String("path", path),
			slog.Any("params", params),
			slog.Int("attempt", attempt+1),
		)

		t0 := time.Now()
		resp, err := session.Do(req)
		elapsed := time.Since(t0)

		if err != nil {
			c.metrics.ObserveRequest(path, metrics.OutcomeError, elapsed.Seconds())
			c.log.Error("context7: request failed",
				slog.String("path", path),
				slog.Int("attempt", attempt+1),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("context7: GET %s: %w", path, err)
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			wait := c.backoffBase << attempt
			c.metrics.ObserveRequest(path, metrics.OutcomeRateLimited, elapsed.Seconds())
			c.log.Warn("context7: rate limited, backing off",
				slog.String("method", http.MethodGet),
				slog.String("path", path),
				slog.Any("params", params),
				slog.Int("attempt", attempt+1),
				slog.Int("status", resp.StatusCode),
				slog.Duration("elapsed", elapsed),
				slog.Duration("wait", wait),
			)
			c.sleep(wait)
			continue
		}

		if resp.StatusCode >= 400 {
			c.metrics.ObserveRequest(path, metrics.OutcomeError, elapsed.Seconds())
			c.log.Error("context7: upstream error",
				slog.String("method", http.MethodGet),
				slog.String("path", path),
				slog.Any("params", params),
				slog.Int("attempt", attempt+1),
				slog.Int("status", resp.StatusCode),
				slog.Duration("elapsed", elapsed),
				slog.String("body", excerpt(body, maxErrorBody)),
			)
			return nil, newHTTPError(resp.StatusCode, path, body)
		}

		if readErr != nil {
			c.metrics.ObserveRequest(path, metrics.OutcomeError, elapsed.Seconds())
			return nil, fmt.Errorf("context7: read response body: %w", readErr)
		}

		c.metrics.ObserveRequest(path, metrics.OutcomeOK, elapsed.Seconds())
		c.log.Info("context7: GET ok",
			slog.String("method", http.MethodGet),
			slog.String("path", path),
			slog.Any("params", params),
			slog.Int("attempt", attempt+1),
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", elapsed),
		)
		return body, nil
	}

	return nil, ErrRateLimited
}

// buildURL joins the base URL, path, and query parameters.
func (c *Client) buildURL(path string, params map[string]string) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", fmt.Errorf("context7: invalid URL %q: %w", c.baseURL+path, err)
	}

	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SearchLibrary queries the library search endpoint. The service answers
// either with a bare list or with an object wrapping the list under a
// "results" or "libraries" key; both shapes yield a flat list here.
func (c *Client) SearchLibrary(ctx context.Context, libraryName, query string) ([]Library, error) {
	body, err := c.get(ctx, "/libs/search", map[string]string{
		"libraryName": libraryName,
		"query":       query,
	})
	if err != nil {
		return nil, err
	}
	return parseLibraries(body), nil
}

// GetContext fetches documentation snippets for a query against one library.
// The response envelope is normalized through the ordered shape rules in
// normalize.go; an unrecognized shape degrades to an empty list with a
// diagnostic log entry, never an error.
func (c *Client) GetContext(ctx context.Context, libraryID, query string) ([]Snippet, error) {
	body, err := c.get(ctx, "/context", map[string]string{
		"libraryId": libraryID,
		"query":     query,
		"type":      string(ResponseJSON),
	})
	if err != nil {
		return nil, err
	}

	snips, ok := extractSnippets(body)
	if !ok {
		c.log.Warn("context7: could not extract snippets from response",
			slog.String("library_id", libraryID),
			slog.String("body", excerpt(body, 500)),
		)
		return nil, nil
	}
	return snips, nil
}

// GetContextText fetches the context for a query as plain text. The body is
// returned verbatim, no parsing.
func (c *Client) GetContextText(ctx context.Context, libraryID, query string) (string, error) {
	body, err := c.get(ctx, "/context", map[string]string{
		"libraryId": libraryID,
		"query":     query,
		"type":      string(ResponseText),
	})
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// excerpt returns at most n characters of b as a string, cutting on a rune
// boundary so a multibyte character is never split.
func excerpt(b []byte, n int) string {
	s := string(b)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
