// Package session turns raw query-box input into searches and commands and
// owns the resulting session state.
package session

import (
	"slices"

	"yousearch/internal/domain"
)

// DefaultErrorMessage is shown when a failed search carries no message
const DefaultErrorMessage = "Search failed"

// ErrorKind classifies a failed submission
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	// ErrorConfiguration means the backend has no usable credential
	ErrorConfiguration
	// ErrorRequest is any other backend failure
	ErrorRequest
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorConfiguration:
		return "configuration"
	case ErrorRequest:
		return "request"
	default:
		return "none"
	}
}

// Error is the visible error state of a session
type Error struct {
	Kind    ErrorKind
	Message string
}

// IsZero reports whether there is no error
func (e Error) IsZero() bool {
	return e.Kind == ErrorNone
}

// Snapshot is an immutable copy of the session state
type Snapshot struct {
	RawQuery    string
	CleanQuery  string
	Filters     domain.Filters // effective filters of the last search
	UIFilters   domain.Filters // sticky filters
	ActiveBangs []string
	Count       int
	IsNews      bool

	Results *domain.SearchResponse
	Err     Error
	Loading bool
	Elapsed float64 // seconds

	HasSearched bool
	HelpVisible bool
	Seq         uint64
}

// Web returns the web bucket of the current results
func (s Snapshot) Web() []domain.SearchResult {
	if s.Results == nil {
		return nil
	}
	return s.Results.Results.Web
}

// News returns the news bucket of the current results
func (s Snapshot) News() []domain.SearchResult {
	if s.Results == nil {
		return nil
	}
	return s.Results.Results.News
}

// Visible returns the combined list the UI shows, web first
func (s Snapshot) Visible() []domain.SearchResult {
	if s.Results == nil {
		return nil
	}
	return s.Results.Results.Combined()
}

// ResultCount is the length of Visible
func (s Snapshot) ResultCount() int {
	if s.Results == nil {
		return 0
	}
	return s.Results.Results.Count()
}

// Latency returns the API-reported latency, if any
func (s Snapshot) Latency() (float64, bool) {
	if s.Results == nil || s.Results.Metadata == nil {
		return 0, false
	}
	return s.Results.Metadata.Latency, true
}

func (s Snapshot) clone() Snapshot {
	out := s
	out.ActiveBangs = slices.Clone(s.ActiveBangs)
	if s.Results != nil {
		out.Results = cloneResponse(s.Results)
	}
	return out
}

func cloneResponse(r *domain.SearchResponse) *domain.SearchResponse {
	out := &domain.SearchResponse{
		Results: domain.SearchResults{
			Web:  cloneResults(r.Results.Web),
			News: cloneResults(r.Results.News),
		},
	}
	if r.Metadata != nil {
		md := *r.Metadata
		out.Metadata = &md
	}
	return out
}

func cloneResults(in []domain.SearchResult) []domain.SearchResult {
	if in == nil {
		return nil
	}
	out := make([]domain.SearchResult, len(in))
	for i, r := range in {
		r.Snippets = slices.Clone(r.Snippets)
		out[i] = r
	}
	return out
}
