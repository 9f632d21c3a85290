package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchStarted    EventType = "SearchStarted"
	EventSearchCompleted  EventType = "SearchCompleted"
	EventSearchFailed     EventType = "SearchFailed"
	EventSessionCleared   EventType = "SessionCleared"
	EventHelpToggled      EventType = "HelpToggled"
	EventThemeChanged     EventType = "ThemeChanged"
	EventResultsExported  EventType = "ResultsExported"
	EventResultOpened     EventType = "ResultOpened"
	EventHistoryNavigated EventType = "HistoryNavigated"
	EventCursorMoved      EventType = "CursorMoved"
	EventConfigSaved      EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchStartedEvent is emitted when a search request is dispatched
type SearchStartedEvent struct {
	Seq     uint64
	Query   string
	Filters Filters
}

func (e SearchStartedEvent) Type() EventType { return EventSearchStarted }

// SearchCompletedEvent is emitted when the latest search request succeeds
type SearchCompletedEvent struct {
	Seq     uint64
	Query   string
	Results int
	Seconds float64
}

func (e SearchCompletedEvent) Type() EventType { return EventSearchCompleted }

// SearchFailedEvent is emitted when the latest search request fails
type SearchFailedEvent struct {
	Seq     uint64
	Query   string
	Message string
	Config  bool // true when the failure is a missing credential
}

func (e SearchFailedEvent) Type() EventType { return EventSearchFailed }

// SessionClearedEvent is emitted when the session is reset to empty
type SessionClearedEvent struct{}

func (e SessionClearedEvent) Type() EventType { return EventSessionCleared }

// HelpToggledEvent is emitted when help visibility changes
type HelpToggledEvent struct {
	Visible bool
}

func (e HelpToggledEvent) Type() EventType { return EventHelpToggled }

// ThemeChangedEvent is emitted after the theme setter accepted a theme
type ThemeChangedEvent struct {
	Theme string
}

func (e ThemeChangedEvent) Type() EventType { return EventThemeChanged }

// ResultsExportedEvent is emitted after results were copied to the clipboard
type ResultsExportedEvent struct {
	Format string
	Bytes  int
}

func (e ResultsExportedEvent) Type() EventType { return EventResultsExported }

// ResultOpenedEvent is emitted when a result is opened in the browser
type ResultOpenedEvent struct {
	Index int
	URL   string
}

func (e ResultOpenedEvent) Type() EventType { return EventResultOpened }

// HistoryNavigatedEvent is emitted on back/forward navigation in the state store
type HistoryNavigatedEvent struct {
	Query    string
	Position int
}

func (e HistoryNavigatedEvent) Type() EventType { return EventHistoryNavigated }

// CursorMovedEvent is emitted when the focused result changes
type CursorMovedEvent struct {
	OldIndex int
	NewIndex int
}

func (e CursorMovedEvent) Type() EventType { return EventCursorMoved }

// ConfigSavedEvent is emitted when configuration is written to disk
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
