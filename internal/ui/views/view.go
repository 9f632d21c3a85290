package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"yousearch/internal/bang"
	"yousearch/internal/command"
	"yousearch/internal/domain"
	"yousearch/internal/keynav"
	"yousearch/internal/session"
)

// ViewData is everything the renderer needs for one frame
type ViewData struct {
	Width, Height int

	Input        string // rendered text input
	InputValue   string
	InputFocused bool

	Snapshot session.Snapshot
	Results  []domain.SearchResult // visible list, web first
	WebCount int
	Active   int

	Spinner       string
	Status        string
	StatusIsError bool

	HistoryPos, HistoryTotal int
	Timeline                 []string

	Examples   []string
	ConfigPath string
	Demo       bool
}

// Renderer composes the main screen
type Renderer struct {
	theme *Theme
}

// NewRenderer creates a new renderer
func NewRenderer(theme *Theme) *Renderer {
	return &Renderer{theme: theme}
}

// Render draws a full frame
func (r *Renderer) Render(d ViewData) string {
	s := r.theme.Styles()
	width := max(d.Width, 40)

	var top strings.Builder
	top.WriteString(r.renderHeader(d, s))
	top.WriteString("\n")
	top.WriteString(r.renderSearchBox(d, s, width))
	top.WriteString("\n")
	if hints := r.renderCommandHints(d, s); hints != "" {
		top.WriteString(hints)
		top.WriteString("\n")
	}
	if bangs := r.renderBangs(d.InputValue, s); bangs != "" {
		top.WriteString(bangs)
		top.WriteString("\n")
	}
	top.WriteString(r.renderFilterBar(d.Snapshot.UIFilters, s))
	top.WriteString("\n")

	bottom := r.renderFooter(d, s, width)

	header := top.String()
	bodyHeight := d.Height - lipgloss.Height(header) - lipgloss.Height(bottom)
	body := r.renderBody(d, s, width, bodyHeight)

	return header + body + "\n" + bottom
}

func (r *Renderer) renderHeader(d ViewData, s *Styles) string {
	title := s.Title.Render("YouSearch")
	if d.Demo {
		title += " " + s.StatusWarning.Render("[demo]")
	}
	return title + "  " + s.Dim.Render("You.com web search")
}

func (r *Renderer) renderSearchBox(d ViewData, s *Styles, width int) string {
	box := s.SearchBox
	if d.InputFocused {
		box = s.SearchFocused
	}
	return box.Width(width - 4).Render(d.Input)
}

func (r *Renderer) renderCommandHints(d ViewData, s *Styles) string {
	if !d.InputFocused {
		return ""
	}
	suggestions := command.Suggestions(d.InputValue)
	if len(suggestions) == 0 {
		return ""
	}
	var b strings.Builder
	for i, c := range suggestions {
		if i > 0 {
			b.WriteString("\n")
		}
		name := s.Suggestion.Render(command.Prefix + string(c.Type))
		args := ""
		if len(c.Args) > 0 {
			args = " " + s.Dim.Render(strings.Join(c.Args, "|"))
		}
		fmt.Fprintf(&b, "  %s%s  %s", name, args, s.Help.Render(c.Description))
	}
	b.WriteString("\n" + s.Help.Render("  tab to complete"))
	return b.String()
}

// renderBangs shows every recognized bang in the query as "[!token]"
func (r *Renderer) renderBangs(input string, s *Styles) string {
	if command.IsCommand(input) {
		return ""
	}
	active := bang.Parse(input).ActiveBangs
	if len(active) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(active))
	parts := make([]string, 0, len(active))
	for _, tok := range active {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		parts = append(parts, s.Bang.Render("["+tok+"]"))
	}
	return strings.Join(parts, " ")
}

func (r *Renderer) renderFilterBar(f domain.Filters, s *Styles) string {
	item := func(key, label, value, def string) string {
		shown := value
		if shown == "" {
			shown = "any"
		}
		style := s.Filter
		if value != def {
			style = s.FilterActive
		}
		return s.Key.Render(key) + " " + s.Filter.Render(label+":") + " " + style.Render(shown)
	}
	return strings.Join([]string{
		item("f", "time", f.Freshness, ""),
		item("c", "country", f.Country, ""),
		item("s", "safe", f.SafeSearch, domain.SafeSearchModerate),
	}, s.Dim.Render("  ·  "))
}

func (r *Renderer) renderBody(d ViewData, s *Styles, width, height int) string {
	snap := d.Snapshot

	var parts []string
	switch snap.Err.Kind {
	case session.ErrorConfiguration:
		parts = append(parts, r.renderOnboarding(d, s, width))
	case session.ErrorRequest:
		parts = append(parts, s.ErrorBox.Width(width-4).Render(
			s.StatusError.Bold(true).Render("Error")+"\n"+
				s.ResultText.Render(snap.Err.Message)+"\n"+
				s.Help.Render("press r to try again")))
	}

	switch {
	case snap.Loading:
		parts = append(parts, "\n"+d.Spinner+" "+s.StatusLoading.Render("Searching..."))
	case !snap.Err.IsZero():
	case !snap.HasSearched:
		parts = append(parts, r.renderEmpty(d, s))
	case len(d.Results) == 0:
		parts = append(parts, "\n"+s.Title.Render("No results found")+"\n"+
			s.Dim.Render("Try a different search query"))
	default:
		parts = append(parts, r.renderResults(d, s, width, height-lipgloss.Height(strings.Join(parts, "\n"))))
	}

	body := strings.Join(parts, "\n")
	return clampHeight(body, height)
}

func (r *Renderer) renderOnboarding(d ViewData, s *Styles, width int) string {
	var b strings.Builder
	b.WriteString(s.Title.Render("Welcome to YouSearch!"))
	b.WriteString("\n\n")
	b.WriteString(s.ResultText.Render("Add your You.com API key to get started."))
	b.WriteString("\n")
	b.WriteString(s.Dim.Render("Get one free at https://you.com/platform"))
	b.WriteString("\n\n")
	b.WriteString(s.Key.Render("export YOU_API_KEY=...") + s.Dim.Render("  or set api_key in"))
	b.WriteString("\n")
	path := d.ConfigPath
	if path == "" {
		path = "config.toml"
	}
	b.WriteString(s.ResultURL.Render(path))
	b.WriteString("\n\n")
	b.WriteString(s.Dim.Render("Run with --demo to try it with sample results."))
	return s.InfoBox.Width(width - 4).Render(b.String())
}

func (r *Renderer) renderEmpty(d ViewData, s *Styles) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(s.Title.Render("Start searching"))
	b.WriteString("\n")
	b.WriteString(s.Dim.Render("Enter a query above to find results from across the web"))
	if len(d.Examples) > 0 {
		b.WriteString("\n\n")
		b.WriteString(s.Help.Render("Try:"))
		for i, ex := range d.Examples {
			fmt.Fprintf(&b, "\n  %s %s", s.Key.Render(fmt.Sprintf("%d", i+1)), s.ResultText.Render(ex))
		}
	}
	b.WriteString("\n\n")
	b.WriteString(s.Help.Render("Bangs: !day !week !month !year · !us !gb !de ... · !strict · !10 !20 !50 · !news"))
	return b.String()
}

// renderResults lays out the result cards and scrolls so the focused one is visible
func (r *Renderer) renderResults(d ViewData, s *Styles, width, height int) string {
	var lines []string
	activeStart, activeEnd := 0, 0

	meta := fmt.Sprintf("%d results", len(d.Results))
	if d.Snapshot.Elapsed > 0 {
		meta += fmt.Sprintf(" in %.2fs", d.Snapshot.Elapsed)
	}
	lines = append(lines, s.Dim.Render(meta))

	for i, res := range d.Results {
		if i == 0 && d.WebCount > 0 {
			lines = append(lines, "", s.Section.Render("Web"))
		}
		if i == d.WebCount {
			lines = append(lines, "", s.Section.Render("News"))
		}
		if i == d.Active {
			activeStart = len(lines)
		}
		lines = append(lines, strings.Split(r.renderCard(i, res, i == d.Active, s, width), "\n")...)
		if i == d.Active {
			activeEnd = len(lines)
		}
		lines = append(lines, "")
	}

	if height <= 0 || len(lines) <= height {
		return strings.Join(lines, "\n")
	}

	offset := 0
	if d.Active != keynav.None && activeEnd > height {
		offset = min(activeEnd-height, activeStart)
	}
	end := min(offset+height, len(lines))
	window := lines[offset:end]
	if offset > 0 {
		window[0] = s.Dim.Italic(true).Render("↑ (more above)")
	}
	if end < len(lines) {
		window[len(window)-1] = s.Dim.Italic(true).Render("↓ (more below)")
	}
	return strings.Join(window, "\n")
}

func (r *Renderer) renderCard(i int, res domain.SearchResult, active bool, s *Styles, width int) string {
	marker := "  "
	title := s.ResultTitle
	if active {
		marker = s.Highlight.Render("▸ ")
		title = s.Highlight
	}
	inner := width - 6

	var b strings.Builder
	b.WriteString(marker)
	b.WriteString(title.Render(fmt.Sprintf("%d. %s", i+1, truncate(res.Title, inner))))
	b.WriteString("\n    ")
	urlLine := truncate(res.URL, inner)
	if res.Age != "" {
		urlLine += s.Dim.Render(" · " + res.Age)
	}
	b.WriteString(s.ResultURL.Render(urlLine))
	if res.Description != "" {
		b.WriteString("\n")
		b.WriteString(indent(s.ResultText.Width(inner).Render(res.Description), 4))
	}
	if active && len(res.Snippets) > 0 {
		b.WriteString("\n")
		b.WriteString(indent(s.Snippet.Width(inner).Render("“"+res.Snippets[0]+"”"), 4))
	}
	return b.String()
}

func (r *Renderer) renderFooter(d ViewData, s *Styles, width int) string {
	var b strings.Builder
	if d.HistoryTotal >= 2 && len(d.Timeline) > 0 {
		b.WriteString(r.renderTimeline(d, s, width))
		b.WriteString("\n")
	}

	switch {
	case d.Status != "" && d.StatusIsError:
		b.WriteString(s.StatusError.Render(d.Status))
	case d.Status != "":
		b.WriteString(s.StatusSuccess.Render(d.Status))
	default:
		b.WriteString(s.Status.Render(r.statusLine(d)))
	}
	b.WriteString("\n")

	hints := "j/k navigate · enter open · / search · esc clear · ? help"
	if d.InputFocused {
		hints = "enter search · tab complete · esc leave input"
	}
	b.WriteString(s.Help.Render(truncate(hints, width)))
	return b.String()
}

func (r *Renderer) statusLine(d ViewData) string {
	snap := d.Snapshot
	var parts []string
	if snap.HasSearched && !snap.Loading && snap.Err.IsZero() {
		parts = append(parts, fmt.Sprintf("%d results", snap.ResultCount()))
		parts = append(parts, fmt.Sprintf("%.2fs", snap.Elapsed))
		if lat, ok := snap.Latency(); ok {
			parts = append(parts, fmt.Sprintf("api %.2fs", lat))
		}
	}
	if d.HistoryTotal > 0 && d.HistoryPos >= 0 {
		parts = append(parts, fmt.Sprintf("history %d/%d", d.HistoryPos+1, d.HistoryTotal))
	}
	if d.Active != keynav.None && d.Active < len(d.Results) {
		parts = append(parts, truncate(d.Results[d.Active].URL, 60))
	}
	if len(parts) == 0 {
		return "ready"
	}
	return strings.Join(parts, " · ")
}

// renderTimeline draws one dot per history entry with the current one filled
func (r *Renderer) renderTimeline(d ViewData, s *Styles, width int) string {
	var b strings.Builder
	for i := range d.Timeline {
		if i > 0 {
			b.WriteString(" ")
		}
		if i == d.HistoryPos {
			b.WriteString(s.Highlight.Render("●"))
		} else {
			b.WriteString(s.Dim.Render("○"))
		}
	}
	if d.HistoryPos >= 0 && d.HistoryPos < len(d.Timeline) {
		b.WriteString("  ")
		b.WriteString(s.Dim.Render(truncate(d.Timeline[d.HistoryPos], max(width/2, 10))))
	}
	b.WriteString(s.Help.Render("  [ ] back/forward"))
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}

func clampHeight(s string, height int) string {
	if height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
