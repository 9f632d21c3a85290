package views

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PopupRenderer handles popup/modal rendering
type PopupRenderer struct {
	theme *Theme
}

// NewPopupRenderer creates a new popup renderer
func NewPopupRenderer(theme *Theme) *PopupRenderer {
	return &PopupRenderer{theme: theme}
}

// RenderPopupOverlay draws popupContent centered over a greyed-out copy of
// mainContent
func (pr *PopupRenderer) RenderPopupOverlay(mainContent, popupContent string, height, width int) string {
	styled := pr.theme.Styles().Popup.Render(popupContent)
	popupLines := strings.Split(styled, "\n")

	modalW := lipgloss.Width(styled)
	modalH := len(popupLines)
	x := max((width-modalW)/2, 0)
	y := max((height-modalH)/2, 0)

	base := strings.Split(ansiRE.ReplaceAllString(mainContent, ""), "\n")
	for len(base) < max(height, y+modalH) {
		base = append(base, "")
	}

	grey := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	out := make([]string, len(base))
	for i, line := range base {
		if i < y || i >= y+modalH {
			out[i] = grey.Render(line)
			continue
		}
		left, right := splitPlain(line, x, modalW)
		out[i] = grey.Render(left) + popupLines[i-y] + grey.Render(right)
	}
	return strings.Join(out, "\n")
}

// ANSI escape sequence regex to strip styles/colors
var ansiRE = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// splitPlain returns the part of a plain line left of column x, padded to x,
// and the part right of x+w
func splitPlain(line string, x, w int) (string, string) {
	r := []rune(line)
	var left string
	if len(r) >= x {
		left = string(r[:x])
	} else {
		left = string(r) + strings.Repeat(" ", x-len(r))
	}
	right := ""
	if len(r) > x+w {
		right = string(r[x+w:])
	}
	return left, right
}

// StripANSI removes color codes, mostly for tests and plain output
func StripANSI(s string) string {
	return ansiRE.ReplaceAllString(s, "")
}
