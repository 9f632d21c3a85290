package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"yousearch/internal/ui/input/modes"
	"yousearch/internal/ui/input/types"
)

type Handler struct {
	currentMode types.Mode
	modes       map[types.Mode]types.ModeHandler
	textInput   *textinput.Model // Shared text input for text modes
}

func New() *Handler {
	ti := textinput.New()
	ti.Placeholder = "Search the web..."
	ti.CharLimit = 400

	h := &Handler{
		currentMode: types.ModeNormal,
		textInput:   &ti,
		modes:       make(map[types.Mode]types.ModeHandler),
	}

	h.modes[types.ModeNormal] = modes.NewNormalMode()
	h.modes[types.ModeSearch] = modes.NewSearchMode(h.textInput)

	return h
}

func (h *Handler) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, tea.Cmd) {
	handler := h.modes[h.currentMode]
	if handler == nil {
		return nil, nil
	}

	actions, consumed := handler.HandleKey(msg, ctx)

	// Unconsumed keys in normal mode go nowhere
	if !consumed && !h.isTextMode(h.currentMode) {
		return nil, nil
	}

	var cmd tea.Cmd
	var allActions []types.Action

	for _, action := range actions {
		switch a := action.(type) {
		case types.ChangeModeAction:
			allActions = append(allActions, h.switchMode(a.Mode, a.Data, ctx)...)
			if h.isTextMode(h.currentMode) {
				cmd = textinput.Blink
			}
		case types.CompleteAction:
			h.textInput.SetValue(a.Text)
			h.textInput.CursorEnd()
			allActions = append(allActions, a, types.UpdateTextAction{Text: a.Text})
		default:
			allActions = append(allActions, action)
		}
	}

	// Feed unconsumed keys to the text input
	if h.isTextMode(h.currentMode) && !consumed {
		*h.textInput, cmd = h.textInput.Update(msg)
		allActions = append(allActions, types.UpdateTextAction{Text: h.textInput.Value()})
	}

	return allActions, cmd
}

func (h *Handler) switchMode(mode types.Mode, data string, ctx types.Context) []types.Action {
	var out []types.Action
	if old := h.modes[h.currentMode]; old != nil {
		out = append(out, old.Exit(ctx)...)
	}
	h.currentMode = mode
	if data != "" && h.isTextMode(mode) {
		h.textInput.SetValue(data)
	}
	if next := h.modes[h.currentMode]; next != nil {
		out = append(out, next.Enter(ctx)...)
	}
	return out
}

func (h *Handler) CurrentMode() types.Mode {
	if h == nil {
		return types.ModeNormal
	}
	return h.currentMode
}

// InText reports whether the text input currently has focus
func (h *Handler) InText() bool {
	return h.isTextMode(h.CurrentMode())
}

func (h *Handler) isTextMode(mode types.Mode) bool {
	return mode == types.ModeSearch
}

// Focus switches to search mode, optionally seeding the input
func (h *Handler) Focus(ctx types.Context, data string) tea.Cmd {
	h.switchMode(types.ModeSearch, data, ctx)
	return textinput.Blink
}

// Blur returns to normal mode and keeps the typed text
func (h *Handler) Blur(ctx types.Context) {
	if h.isTextMode(h.currentMode) {
		h.switchMode(types.ModeNormal, "", ctx)
	}
}

// Value returns the text in the input
func (h *Handler) Value() string {
	return h.textInput.Value()
}

// SetValue replaces the text in the input
func (h *Handler) SetValue(s string) {
	h.textInput.SetValue(s)
	h.textInput.CursorEnd()
}

// TextInput returns the shared text input model
func (h *Handler) TextInput() *textinput.Model {
	return h.textInput
}

// Update handles non-keyboard messages for text input
func (h *Handler) Update(msg tea.Msg) tea.Cmd {
	if h.isTextMode(h.currentMode) {
		var cmd tea.Cmd
		*h.textInput, cmd = h.textInput.Update(msg)
		return cmd
	}
	return nil
}
