package youapi

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"yousearch/internal/domain"
)

// Demo is a backend that needs no credential and returns canned results
// built from the query
type Demo struct{}

// Search returns five web results and one news result for query
func (Demo) Search(ctx context.Context, query string, _ domain.SearchOptions) (*domain.SearchResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return MockResults(query), nil
}

// MockResults builds the demo result set for query
func MockResults(query string) *domain.SearchResponse {
	esc := url.PathEscape(query)
	return &domain.SearchResponse{
		Results: domain.SearchResults{
			Web: []domain.SearchResult{
				{
					Title:       query + " - Wikipedia",
					URL:         "https://en.wikipedia.org/wiki/" + url.PathEscape(strings.Join(strings.Fields(query), "_")),
					Description: fmt.Sprintf("This is a demo result for %q. Configure YOU_API_KEY for real search results.", query),
					Snippets: []string{
						"Demo snippet 1: Learn more about " + query + " and related topics.",
						"Demo snippet 2: This result is simulated for testing purposes.",
					},
					FaviconURL: "https://en.wikipedia.org/favicon.ico",
					Age:        "Demo mode",
				},
				{
					Title:       "Understanding " + query + " - A Complete Guide",
					URL:         "https://example.com/guide/" + esc,
					Description: "Comprehensive guide to " + query + ". This is a mock result.",
					Snippets:    []string{"Everything you need to know about " + query + "."},
					FaviconURL:  "https://example.com/favicon.ico",
					Age:         "2 hours ago",
				},
				{
					Title:       query + " Tutorial for Beginners",
					URL:         "https://tutorial.example.com/" + esc,
					Description: "Step-by-step tutorial on " + query + ". Demo mode active.",
					Snippets:    []string{"Getting started with " + query + " is easier than you think."},
					FaviconURL:  "https://tutorial.example.com/favicon.ico",
					Age:         "1 day ago",
				},
				{
					Title:       "Latest News: " + query,
					URL:         "https://news.example.com/topic/" + esc,
					Description: "Recent developments about " + query + ".",
					Snippets:    []string{"Breaking: New discoveries about " + query + "."},
					FaviconURL:  "https://news.example.com/favicon.ico",
					Age:         "30 minutes ago",
				},
				{
					Title:       query + " - Official Documentation",
					URL:         "https://docs.example.com/" + esc,
					Description: "Official documentation for " + query + ".",
					Snippets:    []string{"Full API reference for " + query + "."},
					FaviconURL:  "https://docs.example.com/favicon.ico",
					Age:         "1 week ago",
				},
			},
			News: []domain.SearchResult{
				{
					Title:       "[DEMO] " + query + " Makes Headlines",
					URL:         "https://news.example.com/" + esc,
					Description: "Demo news result. Set YOU_API_KEY for real news.",
					Age:         "Demo mode",
				},
			},
		},
	}
}
