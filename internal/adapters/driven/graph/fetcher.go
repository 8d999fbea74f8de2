package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/graph-cli/internal/core/domain"
	"github.com/custodia-labs/graph-cli/internal/core/ports/driven"
	"github.com/custodia-labs/graph-cli/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.ResourceFetcher = (*Fetcher)(nil)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 3
	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Fetcher performs authenticated GET requests against Microsoft Graph.
type Fetcher struct {
	base        http.RoundTripper
	timeout     time.Duration
	limiter     *RateLimiter
	maxAttempts int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTransport sets the underlying transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		if rt != nil {
			f.base = rt
		}
	}
}

// WithRateLimiter replaces the default rate limiter.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(f *Fetcher) {
		if rl != nil {
			f.limiter = rl
		}
	}
}

// WithMaxAttempts bounds attempts for retryable statuses.
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxAttempts = n
		}
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		base:        http.DefaultTransport,
		timeout:     defaultTimeout,
		limiter:     NewRateLimiter(DefaultRateLimit),
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchJSON GETs url with token as the bearer credential and decodes the
// JSON body into v.
func (f *Fetcher) FetchJSON(ctx context.Context, url, token string, v any) error {
	if token == "" {
		return &domain.HTTPError{URL: url, Err: fmt.Errorf("%w: empty access token", domain.ErrInvalidInput)}
	}

	client := &http.Client{
		Timeout: f.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}),
			Base:   f.base,
		},
	}

	for attempt := 1; ; attempt++ {
		if !f.limiter.Allow() {
			logger.Debug("graph: waiting for rate limiter")
			if err := f.limiter.Wait(ctx); err != nil {
				return &domain.HTTPError{URL: url, Err: err}
			}
		}

		status, body, header, err := f.get(ctx, client, url)
		if err != nil {
			logger.Debug("graph: request error: %v", err)
			return &domain.HTTPError{URL: url, Err: err}
		}
		logger.Debug("graph: GET %s status %d, body length %d", url, status, len(body))

		if status >= 200 && status < 300 {
			if err := json.Unmarshal(body, v); err != nil {
				return &domain.HTTPError{URL: url, StatusCode: status, Err: fmt.Errorf("decode response: %w", err)}
			}
			return nil
		}

		if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable {
			f.limiter.RecordRateLimitError(retryAfter(header))
		}
		if IsRetryable(status) && attempt < f.maxAttempts {
			logger.Debug("graph: retrying after status %d (attempt %d/%d)", status, attempt, f.maxAttempts)
			continue
		}

		code, message := parseErrorBody(body)
		return &domain.HTTPError{
			URL:        url,
			StatusCode: status,
			Code:       code,
			Message:    message,
			Err:        WrapError(status),
		}
	}
}

func (f *Fetcher) get(ctx context.Context, client *http.Client, url string) (int, []byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	reader := io.Reader(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reader = io.LimitReader(resp.Body, maxErrorBody)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, resp.Header, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
