// Package export renders a result set for the clipboard.
package export

import (
	"encoding/json"
	"fmt"
	"strings"

	"yousearch/internal/domain"
)

// Format is an export format accepted by ":export"
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
)

// Payload is the JSON document produced by FormatJSON
type Payload struct {
	Query   string                `json:"query" yaml:"query"`
	Results domain.SearchResponse `json:"results" yaml:"results"`
}

// Markdown renders web results as a numbered link list followed by a
// "## News" section
func Markdown(web, news []domain.SearchResult) string {
	var lines []string

	for i, r := range web {
		lines = append(lines, fmt.Sprintf("%d. [%s](%s)", i+1, r.Title, r.URL))
		if r.Description != "" {
			lines = append(lines, "   "+r.Description)
		}
		if len(r.Snippets) > 0 {
			lines = append(lines, "   > "+r.Snippets[0])
		}
		lines = append(lines, "")
	}

	if len(news) > 0 {
		lines = append(lines, "## News", "")
		for i, r := range news {
			lines = append(lines, fmt.Sprintf("%d. [%s](%s)", i+1, r.Title, r.URL))
			if r.Description != "" {
				lines = append(lines, "   "+r.Description)
			}
			lines = append(lines, "")
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// JSON renders the query and raw response as indented JSON
func JSON(query string, resp domain.SearchResponse) (string, error) {
	data, err := json.MarshalIndent(Payload{Query: query, Results: resp}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}
	return string(data), nil
}

// ParseFormat maps a command argument to a format. Anything other than
// "json" exports markdown.
func ParseFormat(arg string) Format {
	if strings.EqualFold(arg, string(FormatJSON)) {
		return FormatJSON
	}
	return FormatMarkdown
}
