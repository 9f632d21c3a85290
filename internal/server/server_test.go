package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yousearch/internal/domain"
	"yousearch/internal/youapi"
)

type stubBackend struct {
	mu    sync.Mutex
	err   error
	query string
	opts  domain.SearchOptions
}

func (b *stubBackend) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.query, b.opts = query, opts
	if b.err != nil {
		return nil, b.err
	}
	return youapi.MockResults(query), nil
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s := NewServer(&stubBackend{}, ":0")
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	rec := do(t, s, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[healthBody](t, rec)
	assert.Equal(t, healthBody{
		Status:    "healthy",
		Service:   "YouSearch",
		API:       "You.com Search API",
		Timestamp: "2025-03-01T12:00:00Z",
	}, body)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSearchGetJSON(t *testing.T) {
	backend := &stubBackend{}
	s := NewServer(backend, ":0")

	rec := do(t, s, http.MethodGet, "/api/search?query=go+!week&country=DE&count=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode[searchResponse](t, rec)
	assert.Equal(t, "go !week", body.Query)
	assert.Len(t, body.Results.Results.Web, 5)

	assert.Equal(t, "go", backend.query)
	assert.Equal(t, domain.SearchOptions{Freshness: "week", Country: "DE", SafeSearch: "moderate", Count: 3}, backend.opts)
}

func TestSearchTextFormat(t *testing.T) {
	s := NewServer(&stubBackend{}, ":0", WithDemo(true))

	for _, format := range []string{"text", "llm"} {
		rec := do(t, s, http.MethodGet, "/api/search?q=zig&format="+format, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "=== DEMO MODE ==="))
		assert.Contains(t, rec.Body.String(), "=== WEB SEARCH RESULTS ===")
		assert.Contains(t, rec.Body.String(), "1. zig - Wikipedia")
	}
}

func TestSearchPost(t *testing.T) {
	backend := &stubBackend{}
	s := NewServer(backend, ":0")

	rec := do(t, s, http.MethodPost, "/api/search", `{"q":"rust","safesearch":"off"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rust", decode[searchResponse](t, rec).Query)
	assert.Equal(t, "off", backend.opts.SafeSearch)

	rec = do(t, s, http.MethodPost, "/api/search", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchMissingQuery(t *testing.T) {
	s := NewServer(&stubBackend{}, ":0")

	for _, target := range []string{"/api/search", "/api/search?q=!us"} {
		rec := do(t, s, http.MethodGet, target, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "No query provided", decode[errorBody](t, rec).Error)
	}

	rec := do(t, s, http.MethodPost, "/api/search", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide a search query", decode[errorBody](t, rec).Message)

	rec = do(t, s, http.MethodGet, "/api/search?q=x&count=many", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchErrors(t *testing.T) {
	backend := &stubBackend{err: domain.ErrMissingAPIKey}
	s := NewServer(backend, ":0")

	rec := do(t, s, http.MethodGet, "/api/search?q=x", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "missing_api_key", decode[errorBody](t, rec).Error)

	backend.err = errors.New("API request failed: Unauthorized")
	rec = do(t, s, http.MethodGet, "/api/search?q=x", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, errorBody{Error: "Search failed", Message: "API request failed: Unauthorized"}, decode[errorBody](t, rec))
}

func TestOptionsAndNotFound(t *testing.T) {
	s := NewServer(&stubBackend{}, ":0")

	rec := do(t, s, http.MethodOptions, "/api/search", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))

	rec = do(t, s, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStartStop(t *testing.T) {
	s := NewServer(&stubBackend{}, "127.0.0.1:0")
	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Stop())
	assert.NoError(t, <-done)
}
