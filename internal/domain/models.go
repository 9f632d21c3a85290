package domain

import (
	"context"
	"errors"
)

// ErrMissingAPIKey is returned by a search backend that has no credential configured
var ErrMissingAPIKey = errors.New("missing_api_key")

// Default filter values
const (
	SafeSearchModerate = "moderate"
	SafeSearchOff      = "off"
	SafeSearchStrict   = "strict"
)

// SearchResult represents a single web or news hit
type SearchResult struct {
	Title        string   `json:"title" yaml:"title"`
	URL          string   `json:"url" yaml:"url"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Snippets     []string `json:"snippets,omitempty" yaml:"snippets,omitempty"`
	FaviconURL   string   `json:"favicon_url,omitempty" yaml:"favicon_url,omitempty"`
	Age          string   `json:"age,omitempty" yaml:"age,omitempty"`           // relative time like "2 hours ago"
	PageAge      string   `json:"page_age,omitempty" yaml:"page_age,omitempty"` // ISO 8601 date
	ThumbnailURL string   `json:"thumbnail_url,omitempty" yaml:"thumbnail_url,omitempty"`
}

// SearchResults holds the two result buckets returned by the API
type SearchResults struct {
	Web  []SearchResult `json:"web" yaml:"web"`
	News []SearchResult `json:"news" yaml:"news"`
}

// Metadata carries optional response metadata
type Metadata struct {
	Latency float64 `json:"latency,omitempty" yaml:"latency,omitempty"`
}

// SearchResponse is the backend response for one query
type SearchResponse struct {
	Results  SearchResults `json:"results" yaml:"results"`
	Metadata *Metadata     `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Combined returns web results followed by news results
func (r SearchResults) Combined() []SearchResult {
	out := make([]SearchResult, 0, len(r.Web)+len(r.News))
	out = append(out, r.Web...)
	return append(out, r.News...)
}

// Count returns the total number of results in both buckets
func (r SearchResults) Count() int {
	return len(r.Web) + len(r.News)
}

// Filters are the user-facing search filters. Empty strings mean "any".
type Filters struct {
	Freshness  string `json:"freshness,omitempty" toml:"freshness"`
	Country    string `json:"country,omitempty" toml:"country"`
	SafeSearch string `json:"safesearch,omitempty" toml:"safesearch"`
}

// DefaultFilters returns the filters used before the user picks any
func DefaultFilters() Filters {
	return Filters{SafeSearch: SafeSearchModerate}
}

// SearchOptions are the request parameters passed to a search backend
type SearchOptions struct {
	Freshness  string
	Country    string
	SafeSearch string
	Count      int // 0 means backend default
	Offset     int
}

// FreshnessValues lists the accepted freshness filter values in display order
var FreshnessValues = []string{"", "day", "week", "month", "year"}

// CountryValues lists the accepted country filter values in display order
var CountryValues = []string{"", "US", "GB", "CA", "DE", "FR", "JP"}

// SafeSearchValues lists the accepted safesearch levels in display order
var SafeSearchValues = []string{SafeSearchModerate, SafeSearchOff, SafeSearchStrict}

// SearchBackend runs one search. Implementations return ErrMissingAPIKey
// when they have no credential.
type SearchBackend interface {
	Search(ctx context.Context, query string, opts SearchOptions) (*SearchResponse, error)
}
