package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"yousearch/internal/ui/input/types"
)

// MaxExamples is how many example queries the start screen offers
const MaxExamples = 4

type NormalMode struct{}

func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true

	case tea.KeyEnter:
		return []types.Action{types.ChangeModeAction{Mode: types.ModeSearch}}, true
	}

	switch key := msg.String(); key {
	case "q":
		return []types.Action{types.QuitAction{}}, true

	case "i":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeSearch}}, true

	case ":":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeSearch, Data: ":"}}, true

	case "f":
		return []types.Action{types.CycleFilterAction{Filter: "freshness"}}, true

	case "c":
		return []types.Action{types.CycleFilterAction{Filter: "country"}}, true

	case "s":
		return []types.Action{types.CycleFilterAction{Filter: "safesearch"}}, true

	case "[":
		return []types.Action{types.HistoryAction{Direction: "back"}}, true

	case "]":
		return []types.Action{types.HistoryAction{Direction: "forward"}}, true

	case "?":
		return []types.Action{types.ToggleHelpAction{}}, true

	case "H":
		return []types.Action{types.ShowHelpPagerAction{}}, true

	case "r":
		if ctx.HasError() && !ctx.Loading() {
			return []types.Action{types.RetryAction{}}, true
		}

	case "y":
		if ctx.ResultCount() > 0 {
			return []types.Action{types.CopyURLAction{}}, true
		}

	case "1", "2", "3", "4":
		if !ctx.HasSearched() {
			return []types.Action{types.RunExampleAction{Index: int(key[0] - '1')}}, true
		}
	}

	return nil, false
}
