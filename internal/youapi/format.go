package youapi

import (
	"fmt"
	"strings"

	"yousearch/internal/domain"
)

const (
	maxLLMWeb      = 10
	maxLLMNews     = 5
	maxLLMSnippets = 3
)

// DemoBanner prefixes LLM text produced from demo results
const DemoBanner = "=== DEMO MODE ===\nNo API key configured. Showing mock results.\nGet a free API key at https://you.com/platform\n"

// FormatForLLM renders results as plain text sections suited to a language
// model prompt
func FormatForLLM(resp *domain.SearchResponse) string {
	if resp == nil {
		return ""
	}

	var lines []string

	if web := resp.Results.Web; web != nil {
		lines = append(lines, "=== WEB SEARCH RESULTS ===\n")
		for i, r := range web[:min(len(web), maxLLMWeb)] {
			lines = append(lines, resultLines(i, r)...)
			if len(r.Snippets) > 0 {
				lines = append(lines, "   Snippets:")
				for _, s := range r.Snippets[:min(len(r.Snippets), maxLLMSnippets)] {
					lines = append(lines, "   - "+s)
				}
			}
			lines = append(lines, "")
		}
	}

	if news := resp.Results.News; len(news) > 0 {
		lines = append(lines, "\n=== NEWS RESULTS ===\n")
		for i, r := range news[:min(len(news), maxLLMNews)] {
			lines = append(lines, resultLines(i, r)...)
			lines = append(lines, "")
		}
	}

	return strings.Join(lines, "\n")
}

func resultLines(i int, r domain.SearchResult) []string {
	title := r.Title
	if title == "" {
		title = "No title"
	}
	out := []string{
		fmt.Sprintf("%d. %s", i+1, title),
		"   URL: " + r.URL,
	}
	if r.Description != "" {
		out = append(out, "   Description: "+r.Description)
	}
	return out
}
