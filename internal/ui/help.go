package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"

	"yousearch/internal/bang"
	"yousearch/internal/command"
)

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}

// HelpRenderer handles help content rendering
type HelpRenderer struct{}

// NewHelpRenderer creates a new help renderer
func NewHelpRenderer() *HelpRenderer {
	return &HelpRenderer{}
}

// renderHelpContent renders the help popup, scrolled by scrollOffset lines
func (r *HelpRenderer) renderHelpContent(height int, scrollOffset int) string {
	content := r.RenderHelpContentPlain()
	lines := strings.Split(content, "\n")

	totalLines := len(lines)

	// Account for popup border and padding
	visibleHeight := height - 6
	if visibleHeight < 5 {
		visibleHeight = 5
	}

	if totalLines <= visibleHeight {
		return content
	}

	maxOffset := totalLines - visibleHeight
	scrollOffset = min(max(scrollOffset, 0), maxOffset)

	endLine := min(scrollOffset+visibleHeight, totalLines)
	visibleLines := append([]string(nil), lines[scrollOffset:endLine]...)

	more := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	if scrollOffset > 0 {
		visibleLines[0] = more.Render("↑ (more above)")
	}
	if endLine < totalLines {
		visibleLines[len(visibleLines)-1] = more.Render("↓ (more below)")
	}

	return strings.Join(visibleLines, "\n")
}

// RenderHelpContentPlain generates the full help text with colors, for the pager
func (r *HelpRenderer) RenderHelpContentPlain() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99"))

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39"))

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220"))

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	row := func(b *strings.Builder, key, desc string) {
		fmt.Fprintf(b, "  %s %s\n", keyStyle.Render(fmt.Sprintf("%-14s", key)), descStyle.Render(desc))
	}

	var help strings.Builder

	help.WriteString(titleStyle.Render("YouSearch Help"))
	help.WriteString("\n\n")

	help.WriteString(sectionStyle.Render("Results"))
	help.WriteString("\n")
	row(&help, "j/k, ↓/↑", "Move focus down/up")
	row(&help, "Enter", "Open focused result in the browser")
	row(&help, "y", "Copy focused result URL")
	row(&help, "/", "Focus the search box")
	row(&help, "Esc", "Clear focus / leave the search box")
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Search"))
	help.WriteString("\n")
	row(&help, "i, Enter", "Edit the query")
	row(&help, ":", "Type a command")
	row(&help, "Tab", "Complete the command")
	row(&help, "f", "Cycle time filter")
	row(&help, "c", "Cycle country filter")
	row(&help, "s", "Cycle safe search")
	row(&help, "[ / ]", "Previous / next search")
	row(&help, "r", "Retry after an error")
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Commands"))
	help.WriteString("\n")
	for _, c := range command.Catalog() {
		row(&help, c.Usage(), c.Description)
	}
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Bangs"))
	help.WriteString("\n")
	var (
		lastCat bang.Category
		tokens  []string
	)
	flush := func() {
		if len(tokens) > 0 {
			row(&help, string(lastCat), strings.Join(tokens, " "))
		}
		tokens = tokens[:0]
	}
	for _, b := range bang.Table() {
		if b.Category != lastCat {
			flush()
			lastCat = b.Category
		}
		tokens = append(tokens, b.Token)
	}
	flush()
	help.WriteString("\n")

	help.WriteString(sectionStyle.Render("Other"))
	help.WriteString("\n")
	row(&help, "?", "Toggle this help")
	row(&help, "H", "Open help in a pager")
	row(&help, "q, Ctrl+C", "Quit")

	return strings.TrimRight(help.String(), "\n")
}

// HelpOps handles help operations
type HelpOps struct {
	program *tea.Program // reference to Bubble Tea program for terminal management
}

// NewHelpOps creates a new help operations instance
func NewHelpOps(program *tea.Program) *HelpOps {
	return &HelpOps{
		program: program,
	}
}

// ShowHelpInPager shows help content using ov pager
func (h *HelpOps) ShowHelpInPager(helpContent string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}

	defer func() {
		// Give ov time to exit before taking the terminal back
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(helpContent))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}
