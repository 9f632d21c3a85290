// Package youapi talks to the You.com Search API.
package youapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-logr/logr"

	"yousearch/internal/domain"
)

// DefaultBaseURL is the You.com search endpoint
const DefaultBaseURL = "https://ydc-index.io/v1/search"

// DefaultTimeout bounds a single request when no timeout is configured
const DefaultTimeout = 30 * time.Second

// APIError is returned when the API answers with a non-2xx status
type APIError struct {
	StatusCode int
	Status     string
}

func (e *APIError) Error() string {
	return "API request failed: " + e.Status
}

// Client is a You.com search backend
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        logr.Logger
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another endpoint
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = u
		}
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(log logr.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client. An empty apiKey is accepted; Search then
// fails with domain.ErrMissingAPIKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasKey reports whether a credential is configured
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// Search runs one query against the API
func (c *Client) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+requestParams(query, opts).Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.log.V(1).Info("searching", "query", query, "freshness", opts.Freshness, "country", opts.Country, "safesearch", opts.SafeSearch, "count", opts.Count)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error querying You.com API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Info("search request rejected", "status", resp.StatusCode)
		return nil, &APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	var out domain.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("error querying You.com API: failed to decode response: %w", err)
	}

	c.log.V(1).Info("search finished", "web", len(out.Results.Web), "news", len(out.Results.News), "elapsed", time.Since(start).String())
	return &out, nil
}

func requestParams(query string, opts domain.SearchOptions) url.Values {
	v := url.Values{}
	v.Set("query", query)
	if opts.Count > 0 {
		v.Set("count", strconv.Itoa(opts.Count))
	}
	if opts.Offset > 0 {
		v.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.Freshness != "" {
		v.Set("freshness", opts.Freshness)
	}
	if opts.Country != "" {
		v.Set("country", opts.Country)
	}
	if opts.SafeSearch != "" {
		v.Set("safesearch", opts.SafeSearch)
	}
	return v
}
