// Package server exposes searches over a small JSON/text HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/julienschmidt/httprouter"

	"yousearch/internal/domain"
	"yousearch/internal/session"
	"yousearch/internal/youapi"
)

// Server provides the HTTP interface to a search backend
type Server struct {
	backend domain.SearchBackend
	demo    bool
	addr    string
	log     logr.Logger
	now     func() time.Time
	server  *http.Server
	router  *httprouter.Router
}

// Option configures a Server
type Option func(*Server)

// WithDemo marks responses as produced by the demo backend
func WithDemo(demo bool) Option {
	return func(s *Server) { s.demo = demo }
}

// WithLogger sets the request logger
func WithLogger(log logr.Logger) Option {
	return func(s *Server) { s.log = log }
}

// NewServer creates a server listening on addr once started
func NewServer(backend domain.SearchBackend, addr string, opts ...Option) *Server {
	s := &Server{
		backend: backend,
		addr:    addr,
		log:     logr.Discard(),
		now:     time.Now,
		router:  httprouter.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the router for embedding or testing
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Stop is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.log.Info("starting server", "addr", ln.Addr().String(), "demo", s.demo)
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/api/health", s.handleHealth)
	s.router.GET("/health", s.handleHealth)

	s.router.GET("/api/search", s.handleSearchGet)
	s.router.POST("/api/search", s.handleSearchPost)
	s.router.GET("/search", s.handleSearchGet)

	s.router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCorsHeaders(w)
		w.WriteHeader(http.StatusNoContent)
	})
	s.router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sendJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
	})
}

// searchRequest is the POST body; GET uses the same names as query params
type searchRequest struct {
	Q          string `json:"q"`
	Query      string `json:"query"`
	Format     string `json:"format"`
	Freshness  string `json:"freshness"`
	Country    string `json:"country"`
	SafeSearch string `json:"safesearch"`
	Count      int    `json:"count"`
}

func (r searchRequest) query() string {
	if r.Q != "" {
		return r.Q
	}
	return r.Query
}

type searchResponse struct {
	Query    string                `json:"query"`
	DemoMode bool                  `json:"demoMode,omitempty"`
	Results  domain.SearchResponse `json:"results"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type healthBody struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	API       string `json:"api"`
	DemoMode  bool   `json:"demoMode"`
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	sendJSON(w, http.StatusOK, healthBody{
		Status:    "healthy",
		Service:   "YouSearch",
		API:       "You.com Search API",
		DemoMode:  s.demo,
		Timestamp: s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleSearchGet(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	req := searchRequest{
		Q:          q.Get("q"),
		Query:      q.Get("query"),
		Format:     q.Get("format"),
		Freshness:  q.Get("freshness"),
		Country:    q.Get("country"),
		SafeSearch: q.Get("safesearch"),
	}
	if c := q.Get("count"); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil || n < 0 {
			sendJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid count", Message: "count must be a positive integer"})
			return
		}
		req.Count = n
	}
	s.search(w, r, req, `Please provide a search query using the "q" or "query" parameter`)
}

func (s *Server) handleSearchPost(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid request body", Message: err.Error()})
		return
	}
	s.search(w, r, req, "Please provide a search query")
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, req searchRequest, hint string) {
	raw := req.query()

	orch := session.New(s.backend,
		session.WithLogger(s.log),
		session.WithFilters(domain.Filters{Freshness: req.Freshness, Country: req.Country, SafeSearch: req.SafeSearch}),
		session.WithDefaultCount(req.Count),
	)
	snap, _ := orch.Submit(r.Context(), raw)

	if !snap.HasSearched {
		sendJSON(w, http.StatusBadRequest, errorBody{Error: "No query provided", Message: hint})
		return
	}

	switch snap.Err.Kind {
	case session.ErrorConfiguration:
		sendJSON(w, http.StatusInternalServerError, errorBody{
			Error:   domain.ErrMissingAPIKey.Error(),
			Message: "API key is required. Set YOU_API_KEY environment variable or api_key in the config file",
		})
		return
	case session.ErrorRequest:
		sendJSON(w, http.StatusInternalServerError, errorBody{Error: session.DefaultErrorMessage, Message: snap.Err.Message})
		return
	}

	s.log.V(1).Info("served search", "query", snap.CleanQuery, "results", snap.ResultCount(), "seconds", snap.Elapsed)

	if req.Format == "text" || req.Format == "llm" {
		text := youapi.FormatForLLM(snap.Results)
		if s.demo {
			text = youapi.DemoBanner + "\n" + text
		}
		setCorsHeaders(w)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
		return
	}

	sendJSON(w, http.StatusOK, searchResponse{Query: req.query(), DemoMode: s.demo, Results: *snap.Results})
}

func setCorsHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func sendJSON(w http.ResponseWriter, status int, v any) {
	setCorsHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
