package panda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	BaseURL         = "https://api-v2.pandavideo.com.br"
	DataURL         = "https://data.pandavideo.com"
	DashboardURL    = "https://dashboard.pandavideo.com.br"
	RateLimitPerMin = 600

	// MinTokenLength is the shortest token accepted as configured. It is a
	// presence check, not a format check.
	MinTokenLength = 20
)

// TokenSource supplies the Panda API token
type TokenSource interface {
	PandaToken() string
}

// Cache stores raw response bodies by key
type Cache interface {
	Has(ctx context.Context, key string) bool
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Doer sends HTTP requests; *http.Client satisfies it
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	tokens       TokenSource
	cache        Cache
	httpClient   Doer
	limiter      *rate.Limiter
	baseURL      string
	dataURL      string
	dashboardURL string
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(d Doer) Option {
	return func(c *Client) { c.httpClient = d }
}

// WithTimeout sets the timeout of the default HTTP client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithBaseURLs overrides the API and analytics data hosts
func WithBaseURLs(api, data string) Option {
	return func(c *Client) {
		if api != "" {
			c.baseURL = api
		}
		if data != "" {
			c.dataURL = data
		}
	}
}

// WithDashboardURL overrides the dashboard host used for canonical video URLs
func WithDashboardURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.dashboardURL = u
		}
	}
}

// WithRateLimit sets the number of requests allowed per minute
func WithRateLimit(perMin int) Option {
	return func(c *Client) {
		if perMin > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), 10)
		}
	}
}

// NewClient builds a Panda API client. cache may be nil, in which case
// nothing is cached.
func NewClient(tokens TokenSource, cache Cache, opts ...Option) *Client {
	c := &Client{
		tokens: tokens,
		cache:  cache,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:      rate.NewLimiter(rate.Every(time.Minute/RateLimitPerMin), 10),
		baseURL:      BaseURL,
		dataURL:      DataURL,
		dashboardURL: DashboardURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ValidToken reports whether token passes the presence check
func ValidToken(token string) bool {
	return len(token) >= MinTokenLength
}

// Enabled reports whether a usable token is configured
func (c *Client) Enabled() bool {
	return ValidToken(c.token())
}

// DashboardURL returns the dashboard host the client links videos to
func (c *Client) DashboardURL() string {
	return c.dashboardURL
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.PandaToken()
}

// CacheKey is the cache key of an endpoint on a given host
func CacheKey(endpoint, baseURL string) string {
	return fmt.Sprintf("panda_%s_%s", endpoint, baseURL)
}

func (c *Client) doRequest(ctx context.Context, reqURL, token string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// The token is sent as-is, without a scheme prefix.
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", token)

	slog.Debug("panda request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}

// get fetches baseURL+endpoint and decodes the JSON body into result. With
// useCache, a stored body is returned without touching the network and a
// fresh 200 body is stored for later calls.
func (c *Client) get(ctx context.Context, endpoint, baseURL string, useCache bool, result interface{}) error {
	useCache = useCache && c.cache != nil
	key := CacheKey(endpoint, baseURL)

	if useCache && c.cache.Has(ctx, key) {
		body, err := c.cache.Get(ctx, key)
		if err == nil {
			return decode([]byte(body), result)
		}
		slog.Warn("cache read failed, fetching from panda", "key", key, "error", err)
	}

	token := c.token()
	if !ValidToken(token) {
		return ErrMissingCredential
	}

	body, err := c.doRequest(ctx, baseURL+endpoint, token)
	if err != nil {
		return err
	}

	if err := decode(body, result); err != nil {
		return err
	}

	if useCache {
		if err := c.cache.Set(ctx, key, string(body)); err != nil {
			slog.Warn("cache write failed", "key", key, "error", err)
		}
	}

	return nil
}

func decode(body []byte, result interface{}) error {
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
