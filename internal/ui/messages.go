package ui

import (
	"time"

	"yousearch/internal/eventbus"
	"yousearch/internal/session"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// tickMsg is sent on a timer for animations
type tickMsg time.Time

// submitDoneMsg carries the outcome of a submission
type submitDoneMsg struct {
	snap     session.Snapshot
	err      error
	restored bool // the session was rebuilt from the state store
}

// openResultMsg reports whether the browser could be launched
type openResultMsg struct {
	url string
	err error
}

// copyURLMsg reports a clipboard write of a result URL
type copyURLMsg struct {
	url string
	err error
}

// configSavedMsg reports a config write triggered from the UI
type configSavedMsg struct {
	err error
}

// clearStatusMsg clears the status line if it still shows the message with id
type clearStatusMsg struct {
	id int
}

// quitMsg signals that the application should quit
type quitMsg struct{}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
