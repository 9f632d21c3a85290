// Package mcpserver exposes search as an MCP tool over stdio.
package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"yousearch/internal/domain"
	"yousearch/internal/session"
	"yousearch/internal/version"
	"yousearch/internal/youapi"
)

const (
	serverName   = "yousearch"
	toolName     = "you_search"
	defaultLimit = 10
)

// SearchInput defines the input parameters for the you_search tool
type SearchInput struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// ResultCount is the number of results per bucket
type ResultCount struct {
	Web  int `json:"web"`
	News int `json:"news"`
}

// SearchOutput is the structured output of the you_search tool
type SearchOutput struct {
	Query       string               `json:"query"`
	Results     domain.SearchResults `json:"results"`
	ResultCount ResultCount          `json:"resultCount"`
	DemoMode    bool                 `json:"demoMode,omitempty"`
}

// Tools holds the tool handlers and their backend
type Tools struct {
	backend domain.SearchBackend
	demo    bool
	log     logr.Logger
}

// New creates the tool set. demo prefixes text output with the demo banner.
func New(backend domain.SearchBackend, demo bool, log logr.Logger) *Tools {
	return &Tools{backend: backend, demo: demo, log: log.WithName("mcp")}
}

// Server builds an MCP server with every tool registered
func (t *Tools) Server() *mcp.Server {
	server := mcp.NewServer(serverName, version.Version, &mcp.ServerOptions{
		Instructions: "This server provides web and news search via the You.com Search API. Queries accept bangs such as !day, !us, !news and !20.",
	})
	server.AddTools(
		mcp.NewServerTool(
			toolName,
			"Search the web using You.com Search API. Returns web results with titles, URLs, descriptions, and snippets.",
			t.Search,
			mcp.Input(
				mcp.Property("query", mcp.Description("The search query"), mcp.Required(true)),
				mcp.Property("limit", mcp.Description("Maximum number of results to return (default: 10)")),
			),
		),
	)
	return server
}

// Run serves the tools on stdin/stdout until ctx is done or the client
// disconnects
func (t *Tools) Run(ctx context.Context) error {
	t.log.Info("starting MCP server", "version", version.Version, "demo", t.demo)
	err := t.Server().Run(ctx, mcp.NewStdioTransport())
	if err == nil || errors.Is(err, context.Canceled) || isClosedPipe(err) {
		t.log.Info("MCP server shut down")
		return nil
	}
	return fmt.Errorf("MCP server error: %w", err)
}

// Search is the you_search handler
func (t *Tools) Search(ctx context.Context, ss *mcp.ServerSession, params *mcp.CallToolParamsFor[SearchInput]) (*mcp.CallToolResultFor[SearchOutput], error) {
	input := params.Arguments
	if strings.TrimSpace(input.Query) == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	orch := session.New(t.backend, session.WithLogger(t.log), session.WithDefaultCount(limit))
	snap, _ := orch.Submit(ctx, input.Query)

	if !snap.Err.IsZero() || snap.Results == nil {
		msg := snap.Err.Message
		if snap.Err.Kind == session.ErrorConfiguration {
			msg = "API key is required. Set YOU_API_KEY environment variable or pass api_key parameter"
		} else if msg == "" {
			msg = "query contains no search text"
		}
		t.log.Info("tool call failed", "query", input.Query, "error", msg)
		return &mcp.CallToolResultFor[SearchOutput]{
			Content: []mcp.Content{&mcp.TextContent{Text: "Error searching You.com: " + msg}},
			IsError: true,
		}, nil
	}

	text := youapi.FormatForLLM(snap.Results)
	if t.demo {
		text = youapi.DemoBanner + "\n" + text
	}

	out := SearchOutput{
		Query:   input.Query,
		Results: snap.Results.Results,
		ResultCount: ResultCount{
			Web:  len(snap.Web()),
			News: len(snap.News()),
		},
		DemoMode: t.demo,
	}
	t.log.V(1).Info("tool call finished", "query", input.Query, "web", out.ResultCount.Web, "news", out.ResultCount.News)

	return &mcp.CallToolResultFor[SearchOutput]{
		Content:           []mcp.Content{&mcp.TextContent{Text: text}},
		StructuredContent: out,
	}, nil
}

func isClosedPipe(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "connection closed") || strings.Contains(msg, "io: read/write on closed pipe")
}
