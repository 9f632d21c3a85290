package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yousearch/internal/ui/input/types"
)

type fakeContext struct {
	results  int
	searched bool
	failed   bool
	loading  bool
}

func (c fakeContext) ResultCount() int  { return c.results }
func (c fakeContext) HasSearched() bool { return c.searched }
func (c fakeContext) HasError() bool    { return c.failed }
func (c fakeContext) Loading() bool     { return c.loading }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(h *Handler, ctx types.Context, s string) {
	for _, r := range s {
		h.HandleKey(runes(string(r)), ctx)
	}
}

func TestNormalModeKeys(t *testing.T) {
	h := New()
	ctx := fakeContext{}

	tests := []struct {
		key  tea.KeyMsg
		want types.Action
	}{
		{runes("q"), types.QuitAction{}},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, types.QuitAction{Force: true}},
		{runes("f"), types.CycleFilterAction{Filter: "freshness"}},
		{runes("c"), types.CycleFilterAction{Filter: "country"}},
		{runes("s"), types.CycleFilterAction{Filter: "safesearch"}},
		{runes("["), types.HistoryAction{Direction: "back"}},
		{runes("]"), types.HistoryAction{Direction: "forward"}},
		{runes("?"), types.ToggleHelpAction{}},
		{runes("H"), types.ShowHelpPagerAction{}},
		{runes("2"), types.RunExampleAction{Index: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			actions, _ := h.HandleKey(tt.key, ctx)
			require.Len(t, actions, 1)
			assert.Equal(t, tt.want, actions[0])
			assert.Equal(t, types.ModeNormal, h.CurrentMode())
		})
	}
}

func TestNormalModeConditionalKeys(t *testing.T) {
	h := New()

	actions, _ := h.HandleKey(runes("r"), fakeContext{})
	assert.Empty(t, actions, "retry needs an error")

	actions, _ = h.HandleKey(runes("r"), fakeContext{failed: true})
	assert.Equal(t, []types.Action{types.RetryAction{}}, actions)

	actions, _ = h.HandleKey(runes("r"), fakeContext{failed: true, loading: true})
	assert.Empty(t, actions)

	actions, _ = h.HandleKey(runes("y"), fakeContext{})
	assert.Empty(t, actions)

	actions, _ = h.HandleKey(runes("y"), fakeContext{results: 3})
	assert.Equal(t, []types.Action{types.CopyURLAction{}}, actions)

	actions, _ = h.HandleKey(runes("1"), fakeContext{searched: true})
	assert.Empty(t, actions, "examples are only offered before the first search")
}

func TestTypingAndSubmit(t *testing.T) {
	h := New()
	ctx := fakeContext{}

	_, cmd := h.HandleKey(runes("i"), ctx)
	assert.NotNil(t, cmd)
	require.Equal(t, types.ModeSearch, h.CurrentMode())
	assert.True(t, h.InText())

	typeText(h, ctx, "go !week")
	assert.Equal(t, "go !week", h.Value())

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, ctx)
	require.NotEmpty(t, actions)
	assert.Equal(t, types.SubmitTextAction{Text: "go !week", Mode: types.ModeSearch}, actions[0])
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
	assert.Equal(t, "go !week", h.Value(), "the query stays in the box")
}

func TestTypedKeysDoNotTriggerShortcuts(t *testing.T) {
	h := New()
	ctx := fakeContext{results: 5}
	h.Focus(ctx, "")

	actions, _ := h.HandleKey(runes("q"), ctx)
	require.Len(t, actions, 1)
	assert.Equal(t, types.UpdateTextAction{Text: "q"}, actions[0])
	assert.Equal(t, types.ModeSearch, h.CurrentMode())
}

func TestEscapeKeepsText(t *testing.T) {
	h := New()
	ctx := fakeContext{}
	h.Focus(ctx, "")
	typeText(h, ctx, "rust")

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)
	assert.Contains(t, actions, types.Action(types.CancelTextAction{}))
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
	assert.Equal(t, "rust", h.Value())
}

func TestColonSeedsCommand(t *testing.T) {
	h := New()
	ctx := fakeContext{}

	h.HandleKey(runes(":"), ctx)
	assert.Equal(t, types.ModeSearch, h.CurrentMode())
	assert.Equal(t, ":", h.Value())
}

func TestTabCompletesCommand(t *testing.T) {
	h := New()
	ctx := fakeContext{}
	h.Focus(ctx, ":th")

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyTab}, ctx)
	assert.Contains(t, actions, types.Action(types.CompleteAction{Text: ":theme "}))
	assert.Equal(t, ":theme ", h.Value())
}

func TestTabIgnoredForPlainQuery(t *testing.T) {
	h := New()
	ctx := fakeContext{}
	h.Focus(ctx, "golang")

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyTab}, ctx)
	assert.Empty(t, actions)
	assert.Equal(t, "golang", h.Value())
}

func TestBlurAndSetValue(t *testing.T) {
	h := New()
	ctx := fakeContext{}
	h.Focus(ctx, "abc")
	h.Blur(ctx)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
	assert.Equal(t, "abc", h.Value())

	h.SetValue("")
	assert.Empty(t, h.Value())
}
