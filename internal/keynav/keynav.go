// Package keynav tracks which result has keyboard focus.
//
// The focused index is remembered together with the result count it was
// computed for. When the live count changes (a new search finished) the
// reported index drops back to -1 without anyone having to reset it.
package keynav

import (
	"yousearch/internal/domain"
	"yousearch/internal/eventbus"
)

// Keys the controller reacts to, spelled the way bubbletea's KeyMsg.String() does
const (
	KeyDown        = "j"
	KeyUp          = "k"
	KeyOpen        = "enter"
	KeyEscape      = "esc"
	KeyFocusSearch = "/"
)

// None is the index reported when nothing is focused
const None = -1

// State is the stored focus and the count it belongs to
type State struct {
	Index    int
	ForCount int
}

// Result tells the caller what happened to a key
type Result struct {
	Handled bool // the key was consumed; suppress its default action
	Blur    bool // the text input should lose focus
}

// Options wires the controller to its collaborators
type Options struct {
	OnOpen        func(index int)
	OnFocusSearch func()
	Bus           eventbus.EventBus
}

// Controller is the keyboard navigation state machine
type Controller struct {
	state   State
	count   int
	enabled bool
	opts    Options
}

// New creates a controller. It ignores keys until Mount is called.
func New(opts Options) *Controller {
	if opts.Bus == nil {
		opts.Bus = eventbus.Null{}
	}
	return &Controller{
		state: State{Index: None, ForCount: 0},
		opts:  opts,
	}
}

// Mount starts handling keys and returns the teardown func
func (c *Controller) Mount() func() {
	c.enabled = true
	return func() { c.enabled = false }
}

// Enabled reports whether keys are being handled
func (c *Controller) Enabled() bool {
	return c.enabled
}

// SetResultCount updates the live result count. The stored state is left
// alone; ActiveIndex reports None until the next navigation key.
func (c *Controller) SetResultCount(n int) {
	if n < 0 {
		n = 0
	}
	old := c.ActiveIndex()
	c.count = n
	c.publishMove(old)
}

// ResultCount returns the live result count
func (c *Controller) ResultCount() int {
	return c.count
}

// State returns the stored state, which may be stale
func (c *Controller) State() State {
	return c.state
}

// ActiveIndex returns the effective focused index
func (c *Controller) ActiveIndex() int {
	if c.state.ForCount != c.count {
		return None
	}
	return c.state.Index
}

// HandleKey processes one key press. inInput is true when a text input has
// focus; only Escape is acted on in that case.
func (c *Controller) HandleKey(key string, inInput bool) Result {
	if !c.enabled {
		return Result{}
	}

	if key == KeyEscape {
		if inInput {
			return Result{Blur: true}
		}
		c.update(func(int) int { return None })
		return Result{}
	}

	if inInput || c.count == 0 {
		return Result{}
	}

	switch key {
	case KeyDown:
		c.update(func(prev int) int { return min(prev+1, c.count-1) })
		return Result{Handled: true}

	case KeyUp:
		c.update(func(prev int) int { return max(prev-1, None) })
		return Result{Handled: true}

	case KeyOpen:
		idx := c.ActiveIndex()
		if idx < 0 {
			return Result{}
		}
		if c.opts.OnOpen != nil {
			c.opts.OnOpen(idx)
		}
		return Result{Handled: true}

	case KeyFocusSearch:
		if c.opts.OnFocusSearch != nil {
			c.opts.OnFocusSearch()
		}
		return Result{Handled: true}
	}

	return Result{}
}

// update applies fn to the effective index and rebinds the state to the
// current count
func (c *Controller) update(fn func(prev int) int) {
	old := c.ActiveIndex()
	c.state = State{Index: fn(old), ForCount: c.count}
	c.publishMove(old)
}

func (c *Controller) publishMove(old int) {
	if now := c.ActiveIndex(); now != old {
		c.opts.Bus.Publish(domain.CursorMovedEvent{OldIndex: old, NewIndex: now})
	}
}
