package ui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-logr/logr"

	"yousearch/internal/config"
	"yousearch/internal/domain"
	"yousearch/internal/eventbus"
	"yousearch/internal/history"
	"yousearch/internal/keynav"
	"yousearch/internal/platform"
	"yousearch/internal/session"
	"yousearch/internal/ui/input"
	"yousearch/internal/ui/input/modes"
	inputtypes "yousearch/internal/ui/input/types"
	"yousearch/internal/ui/views"
)

// statusTimeout is how long transient status messages stay up
const statusTimeout = 3 * time.Second

var exampleQueries = []string{
	"latest AI research news",
	"golang generics tutorial !year",
	"best hiking trails !us",
	"climate policy !news !week",
}

// Options wires the model to the rest of the application
type Options struct {
	Context       context.Context
	Bus           eventbus.EventBus
	Config        *config.Config
	ConfigService config.ConfigService // nil disables saving
	Session       *session.Orchestrator
	Store         *history.Store // nil disables back/forward
	Theme         *views.Theme
	Logger        logr.Logger
	Demo          bool
}

// Model represents the UI state
type Model struct {
	ctx    context.Context
	bus    eventbus.EventBus
	config *config.Config
	cfgSvc config.ConfigService
	log    logr.Logger
	demo   bool

	session *session.Orchestrator
	store   *history.Store
	snap    session.Snapshot

	width       int
	height      int
	inPagerMode bool
	helpScroll  int
	spinner     spinner.Model
	spinning    bool

	status        string
	statusIsError bool
	statusID      int

	theme        *views.Theme
	renderer     *views.Renderer
	popup        *views.PopupRenderer
	helpRenderer *HelpRenderer
	inputHandler *input.Handler
	nav          *keynav.Controller
	unmountNav   func()

	// commands queued by keynav callbacks during a key press
	pending []tea.Cmd

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(opts Options) *Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Bus == nil {
		opts.Bus = eventbus.Null{}
	}
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Theme == nil {
		opts.Theme = views.NewTheme(opts.Config.Theme)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &Model{
		ctx:          opts.Context,
		bus:          opts.Bus,
		config:       opts.Config,
		cfgSvc:       opts.ConfigService,
		log:          opts.Logger.WithName("ui"),
		demo:         opts.Demo,
		session:      opts.Session,
		store:        opts.Store,
		spinner:      sp,
		theme:        opts.Theme,
		renderer:     views.NewRenderer(opts.Theme),
		popup:        views.NewPopupRenderer(opts.Theme),
		helpRenderer: NewHelpRenderer(),
		inputHandler: input.New(),
	}
	m.snap = m.session.Snapshot()

	m.nav = keynav.New(keynav.Options{
		OnOpen:        m.openResult,
		OnFocusSearch: m.focusSearch,
		Bus:           opts.Bus,
	})
	m.unmountNav = m.nav.Mount()
	m.nav.SetResultCount(len(m.visibleResults()))

	// The search box has focus on start
	m.inputHandler.Focus(m, "")

	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.store != nil && !m.store.Read().Empty() {
		cmds = append(cmds, m.restoreSession())
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.inputHandler.TextInput().Width = max(msg.Width-10, 10)
		return m, nil

	case tea.KeyMsg:
		if m.snap.HelpVisible {
			return m, m.handleHelpKey(msg)
		}

		inText := m.inputHandler.InText()
		res := m.nav.HandleKey(navKey(msg, inText), inText)
		if res.Blur {
			m.inputHandler.Blur(m)
			return m, nil
		}
		if res.Handled {
			return m, tea.Batch(m.takePending()...)
		}

		actions, cmd := m.inputHandler.HandleKey(msg, m)

		cmds := m.takePending()
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		for _, action := range actions {
			if actionCmd := m.processAction(action); actionCmd != nil {
				cmds = append(cmds, actionCmd)
			}
		}
		return m, tea.Batch(cmds...)

	default:
		return m.handleNonKeyboardMsg(msg)
	}
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.inPagerMode {
		return ""
	}

	timeline, pos := m.timeline()
	results := m.visibleResults()
	data := views.ViewData{
		Width:         m.width,
		Height:        m.height,
		Input:         m.inputHandler.TextInput().View(),
		InputValue:    m.inputHandler.Value(),
		InputFocused:  m.inputHandler.InText(),
		Snapshot:      m.snap,
		Results:       results,
		WebCount:      min(len(m.snap.Web()), len(results)),
		Active:        m.nav.ActiveIndex(),
		Spinner:       m.spinner.View(),
		Status:        m.status,
		StatusIsError: m.statusIsError,
		HistoryPos:    pos,
		HistoryTotal:  len(timeline),
		Timeline:      timeline,
		Examples:      exampleQueries[:min(len(exampleQueries), modes.MaxExamples)],
		Demo:          m.demo,
	}
	if m.cfgSvc != nil {
		data.ConfigPath = m.cfgSvc.Path()
	}

	main := m.renderer.Render(data)
	if m.snap.HelpVisible {
		return m.popup.RenderPopupOverlay(main, m.helpRenderer.renderHelpContent(m.height, m.helpScroll), m.height, m.width)
	}
	return main
}

// ResultCount implements the input context
func (m *Model) ResultCount() int { return len(m.visibleResults()) }

// HasSearched implements the input context
func (m *Model) HasSearched() bool { return m.snap.HasSearched }

// HasError implements the input context
func (m *Model) HasError() bool { return !m.snap.Err.IsZero() }

// Loading implements the input context
func (m *Model) Loading() bool { return m.snap.Loading }

// visibleResults is the list keyboard navigation walks: web then news.
// With show_news off only web results are listed, unless the query asked
// for news.
func (m *Model) visibleResults() []domain.SearchResult {
	if !m.config.UI.ShowNews && !m.snap.IsNews {
		return m.snap.Web()
	}
	return m.snap.Visible()
}

// timeline returns the non-empty history queries and the index of the
// current one, or -1 when the current entry is a cleared session
func (m *Model) timeline() ([]string, int) {
	if m.store == nil {
		return nil, -1
	}
	raw, pos := m.store.Timeline()
	out := make([]string, 0, len(raw))
	current := -1
	for i, q := range raw {
		if q == "" {
			continue
		}
		if i == pos {
			current = len(out)
		}
		out = append(out, q)
	}
	return out, current
}

// refresh pulls the latest session state and rebinds keyboard navigation
func (m *Model) refresh() {
	m.snap = m.session.Snapshot()
	m.nav.SetResultCount(len(m.visibleResults()))
}

func (m *Model) takePending() []tea.Cmd {
	cmds := m.pending
	m.pending = nil
	return cmds
}

func (m *Model) openResult(index int) {
	results := m.visibleResults()
	if index < 0 || index >= len(results) {
		return
	}
	url := results[index].URL
	m.bus.Publish(domain.ResultOpenedEvent{Index: index, URL: url})
	m.pending = append(m.pending, func() tea.Msg {
		return openResultMsg{url: url, err: platform.OpenURL(url)}
	})
}

func (m *Model) focusSearch() {
	m.pending = append(m.pending, m.inputHandler.Focus(m, ""))
}

// submit runs one line of input through the session off the UI goroutine
func (m *Model) submit(raw string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		snap, err := m.session.Submit(ctx, raw)
		return submitDoneMsg{snap: snap, err: err}
	}
}

func (m *Model) restoreSession() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		snap := m.session.SyncFromStore(ctx)
		return submitDoneMsg{snap: snap, restored: true}
	}
}

func (m *Model) saveConfig() tea.Cmd {
	if m.cfgSvc == nil {
		return nil
	}
	theme, filters := m.config.Theme, m.config.Filters
	svc := m.cfgSvc
	return func() tea.Msg {
		// m.config carries env and flag overrides; only UI-owned fields
		// are written back over the file
		cfg, err := svc.Load()
		if err != nil {
			return configSavedMsg{err: err}
		}
		cfg.Theme = theme
		cfg.Filters = filters
		return configSavedMsg{err: svc.Save(cfg)}
	}
}

// setStatus shows a transient status message
func (m *Model) setStatus(text string, isError bool) tea.Cmd {
	m.statusID++
	id := m.statusID
	m.status = text
	m.statusIsError = isError
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{id: id} })
}

// fetchHelpPager returns a command that shows help using ov pager
func (m *Model) fetchHelpPager(helpContent string) tea.Cmd {
	program := m.program
	return func() tea.Msg {
		program.Send(pauseRenderingMsg{})
		err := NewHelpOps(program).ShowHelpInPager(helpContent)
		program.Send(resumeRenderingMsg{})
		return helpPagerMsg{err: err}
	}
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return m.processAction(inputtypes.QuitAction{Force: true})
	case "esc", "?", "q":
		m.helpScroll = 0
		return m.submit(":help")
	case "j", "down":
		m.helpScroll++
	case "k", "up":
		m.helpScroll = max(m.helpScroll-1, 0)
	case "H":
		return m.processAction(inputtypes.ShowHelpPagerAction{})
	}
	return nil
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.SubmitTextAction:
		return m.submit(a.Text)

	case inputtypes.CycleFilterAction:
		f := m.snap.UIFilters
		switch a.Filter {
		case "freshness":
			f.Freshness = cycle(domain.FreshnessValues, f.Freshness)
		case "country":
			f.Country = cycle(domain.CountryValues, f.Country)
		case "safesearch":
			f.SafeSearch = cycle(domain.SafeSearchValues, f.SafeSearch)
		}
		m.session.SetFilters(f)
		m.refresh()
		m.config.Filters = m.snap.UIFilters
		cmds := []tea.Cmd{m.saveConfig()}
		if m.snap.HasSearched && m.snap.RawQuery != "" {
			cmds = append(cmds, m.submit(m.snap.RawQuery))
		}
		return tea.Batch(cmds...)

	case inputtypes.HistoryAction:
		if m.store == nil {
			return nil
		}
		if a.Direction == "back" {
			if !m.store.Back() {
				return m.setStatus("No earlier search", false)
			}
			return nil
		}
		if !m.store.Forward() {
			return m.setStatus("No later search", false)
		}
		return nil

	case inputtypes.RetryAction:
		if m.snap.RawQuery == "" {
			return nil
		}
		return m.submit(m.snap.RawQuery)

	case inputtypes.RunExampleAction:
		if a.Index < 0 || a.Index >= len(exampleQueries) {
			return nil
		}
		q := exampleQueries[a.Index]
		m.inputHandler.SetValue(q)
		return m.submit(q)

	case inputtypes.CopyURLAction:
		results := m.visibleResults()
		idx := max(m.nav.ActiveIndex(), 0)
		if idx >= len(results) {
			return nil
		}
		url := results[idx].URL
		return func() tea.Msg {
			return copyURLMsg{url: url, err: platform.WriteClipboard(url)}
		}

	case inputtypes.ToggleHelpAction:
		m.helpScroll = 0
		return m.submit(":help")

	case inputtypes.ShowHelpPagerAction:
		if m.program == nil {
			return m.processAction(inputtypes.ToggleHelpAction{})
		}
		return m.fetchHelpPager(m.helpRenderer.RenderHelpContentPlain())

	case inputtypes.QuitAction:
		return func() tea.Msg { return quitMsg{} }
	}

	return nil
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		return m, m.handleEvent(msg.Event)

	case submitDoneMsg:
		m.refresh()
		if msg.restored {
			m.inputHandler.SetValue(msg.snap.RawQuery)
		}
		if msg.err != nil {
			return m, m.setStatus(msg.err.Error(), true)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.snap.Loading {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tickMsg:
		// Don't continue tick loop if we're in pager mode
		if m.inPagerMode {
			return m, nil
		}
		m.refresh()
		return m, tea.Batch(tick(), m.startSpinner())

	case openResultMsg:
		if msg.err != nil {
			m.log.Error(msg.err, "failed to open result", "url", msg.url)
			return m, m.setStatus(fmt.Sprintf("Failed to open %s: %v", msg.url, msg.err), true)
		}
		return m, m.setStatus("Opened "+msg.url, false)

	case copyURLMsg:
		if msg.err != nil {
			return m, m.setStatus(fmt.Sprintf("failed to copy URL: %v", msg.err), true)
		}
		return m, m.setStatus("Copied "+msg.url, false)

	case configSavedMsg:
		if msg.err != nil {
			m.log.Error(msg.err, "failed to save config")
			return m, m.setStatus(fmt.Sprintf("failed to save config: %v", msg.err), true)
		}
		return m, nil

	case helpPagerMsg:
		if msg.err != nil {
			// Pager failed: log and fall back to the popup
			m.log.Error(msg.err, "help pager failed")
			if !m.snap.HelpVisible {
				return m, m.submit(":help")
			}
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, tick()

	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = ""
			m.statusIsError = false
		}
		return m, nil

	case quitMsg:
		if m.unmountNav != nil {
			m.unmountNav()
		}
		return m, tea.Quit

	default:
		if cmd := m.inputHandler.Update(msg); cmd != nil {
			return m, cmd
		}
		return m, nil
	}
}

// handleEvent applies a domain event forwarded from the bus
func (m *Model) handleEvent(event eventbus.DomainEvent) tea.Cmd {
	m.refresh()

	switch e := event.(type) {
	case domain.SearchStartedEvent:
		return m.startSpinner()

	case domain.SessionClearedEvent:
		m.inputHandler.SetValue("")
		m.config.Filters = m.snap.UIFilters
		return m.saveConfig()

	case domain.HistoryNavigatedEvent:
		m.inputHandler.SetValue(e.Query)

	case domain.ThemeChangedEvent:
		m.config.Theme = e.Theme
		return tea.Batch(m.saveConfig(), m.setStatus("Theme: "+e.Theme, false))

	case domain.ResultsExportedEvent:
		return m.setStatus(fmt.Sprintf("Copied results as %s (%d bytes)", e.Format, e.Bytes), false)

	case domain.HelpToggledEvent:
		m.helpScroll = 0
	}
	return nil
}

func (m *Model) startSpinner() tea.Cmd {
	if !m.snap.Loading || m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// navKey maps arrow keys onto the navigation keys outside the text input
func navKey(msg tea.KeyMsg, inText bool) string {
	key := msg.String()
	if inText {
		return key
	}
	switch key {
	case "down":
		return keynav.KeyDown
	case "up":
		return keynav.KeyUp
	}
	return key
}

// cycle returns the value after cur in values, wrapping around
func cycle(values []string, cur string) string {
	if len(values) == 0 {
		return cur
	}
	i := slices.Index(values, cur)
	return values[(i+1)%len(values)]
}

// tick returns a command that sends a tick message after a delay
func tick() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
