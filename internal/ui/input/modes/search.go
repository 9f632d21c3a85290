package modes

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"yousearch/internal/command"
	"yousearch/internal/ui/input/types"
)

// SearchMode edits the query. Tab completes a partially typed command.
type SearchMode struct {
	TextInputMode
}

func NewSearchMode(ti *textinput.Model) *SearchMode {
	return &SearchMode{
		TextInputMode: NewTextInputMode(types.ModeSearch, "search", "› ", ti),
	}
}

func (m *SearchMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	if msg.String() == "tab" {
		value := ""
		if m.textInput != nil {
			value = m.textInput.Value()
		}
		if !command.IsCommand(value) {
			return nil, true
		}
		completed := command.Complete(value)
		if completed == value {
			return nil, true
		}
		return []types.Action{types.CompleteAction{Text: completed}}, true
	}
	return m.TextInputMode.HandleKey(msg, ctx)
}
