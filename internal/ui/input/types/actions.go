package types

// Mode transition actions
type ChangeModeAction struct {
	Mode Mode
	Data string // Optional text to seed the input with
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

type SubmitTextAction struct {
	Text string
	Mode Mode // Which mode submitted the text
}

func (a SubmitTextAction) Type() string { return "submit_text" }

type CancelTextAction struct{}

func (a CancelTextAction) Type() string { return "cancel_text" }

// CompleteAction replaces the input with its first command suggestion
type CompleteAction struct {
	Text string
}

func (a CompleteAction) Type() string { return "complete" }

// Filter actions
type CycleFilterAction struct {
	Filter string // "freshness", "country" or "safesearch"
}

func (a CycleFilterAction) Type() string { return "cycle_filter" }

// History actions
type HistoryAction struct {
	Direction string // "back" or "forward"
}

func (a HistoryAction) Type() string { return "history" }

type RetryAction struct{}

func (a RetryAction) Type() string { return "retry" }

// RunExampleAction searches for one of the example queries on the start screen
type RunExampleAction struct {
	Index int
}

func (a RunExampleAction) Type() string { return "run_example" }

type CopyURLAction struct{}

func (a CopyURLAction) Type() string { return "copy_url" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type ShowHelpPagerAction struct{}

func (a ShowHelpPagerAction) Type() string { return "show_help_pager" }

type QuitAction struct {
	Force bool // true for Ctrl+C, false for 'q'
}

func (a QuitAction) Type() string { return "quit" }
