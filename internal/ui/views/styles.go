package views

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme names accepted by SetTheme
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title         lipgloss.Style
	Dim           lipgloss.Style
	Status        lipgloss.Style
	Filter        lipgloss.Style
	FilterActive  lipgloss.Style
	Bang          lipgloss.Style
	Section       lipgloss.Style
	ResultTitle   lipgloss.Style
	ResultURL     lipgloss.Style
	ResultText    lipgloss.Style
	Snippet       lipgloss.Style
	Highlight     lipgloss.Style
	HighlightBg   lipgloss.Style
	SearchBox     lipgloss.Style
	SearchFocused lipgloss.Style
	Suggestion    lipgloss.Style
	InfoBox       lipgloss.Style
	ErrorBox      lipgloss.Style
	Popup         lipgloss.Style
	Key           lipgloss.Style
	Help          lipgloss.Style
	StatusError   lipgloss.Style
	StatusWarning lipgloss.Style
	StatusLoading lipgloss.Style
	StatusSuccess lipgloss.Style
}

type palette struct {
	accent, text, dim, subtle, bg, red, yellow, green, link, key string
}

var darkPalette = palette{
	accent: "99", text: "252", dim: "241", subtle: "238", bg: "238",
	red: "203", yellow: "214", green: "78", link: "39", key: "220",
}

var lightPalette = palette{
	accent: "55", text: "235", dim: "244", subtle: "250", bg: "254",
	red: "160", yellow: "130", green: "28", link: "25", key: "94",
}

// NewStyles creates the dark theme styles
func NewStyles() *Styles {
	return newStyles(darkPalette)
}

// StylesFor returns the styles for a theme name; unknown names get dark
func StylesFor(theme string) *Styles {
	if theme == ThemeLight {
		return newStyles(lightPalette)
	}
	return newStyles(darkPalette)
}

func newStyles(p palette) *Styles {
	c := func(s string) lipgloss.Color { return lipgloss.Color(s) }
	return &Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(c(p.accent)),
		Dim:          lipgloss.NewStyle().Foreground(c(p.dim)),
		Status:       lipgloss.NewStyle().Foreground(c(p.dim)),
		Filter:       lipgloss.NewStyle().Foreground(c(p.dim)),
		FilterActive: lipgloss.NewStyle().Foreground(c(p.yellow)).Bold(true),
		Bang:         lipgloss.NewStyle().Foreground(c(p.accent)),
		Section:      lipgloss.NewStyle().Bold(true).Foreground(c(p.link)),
		ResultTitle:  lipgloss.NewStyle().Bold(true).Foreground(c(p.text)),
		ResultURL:    lipgloss.NewStyle().Foreground(c(p.green)),
		ResultText:   lipgloss.NewStyle().Foreground(c(p.text)),
		Snippet:      lipgloss.NewStyle().Foreground(c(p.dim)).Italic(true),
		Highlight:    lipgloss.NewStyle().Foreground(c(p.key)).Bold(true),
		HighlightBg:  lipgloss.NewStyle().Background(c(p.bg)),
		SearchBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(p.subtle)).
			Padding(0, 1),
		SearchFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(p.accent)).
			Padding(0, 1),
		Suggestion: lipgloss.NewStyle().Foreground(c(p.key)),
		InfoBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(c(p.accent)).
			Padding(1, 2),
		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(c(p.red)).
			Padding(0, 1),
		Popup: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(p.accent)).
			Padding(1, 2),
		Key:           lipgloss.NewStyle().Foreground(c(p.key)),
		Help:          lipgloss.NewStyle().Foreground(c(p.dim)),
		StatusError:   lipgloss.NewStyle().Foreground(c(p.red)),
		StatusWarning: lipgloss.NewStyle().Foreground(c(p.yellow)),
		StatusLoading: lipgloss.NewStyle().Foreground(c(p.dim)),
		StatusSuccess: lipgloss.NewStyle().Foreground(c(p.green)),
	}
}

// Theme holds the active styles. SetTheme is called from command execution,
// which runs off the UI goroutine.
type Theme struct {
	mu     sync.RWMutex
	name   string
	styles *Styles
}

// NewTheme creates a theme holder; unknown names fall back to dark
func NewTheme(name string) *Theme {
	if name != ThemeLight {
		name = ThemeDark
	}
	return &Theme{name: name, styles: StylesFor(name)}
}

// SetTheme switches the active styles
func (t *Theme) SetTheme(name string) {
	s := StylesFor(name)
	t.mu.Lock()
	defer t.mu.Unlock()
	t.name = name
	t.styles = s
}

// Name returns the active theme name
func (t *Theme) Name() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.name
}

// Styles returns the active styles
func (t *Theme) Styles() *Styles {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.styles
}
