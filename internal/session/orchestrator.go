package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"yousearch/internal/bang"
	"yousearch/internal/command"
	"yousearch/internal/domain"
	"yousearch/internal/eventbus"
	"yousearch/internal/history"
)

// StateStore persists the shareable session location
type StateStore interface {
	Read() history.Location
	Write(loc history.Location) error
	Clear() error
	Subscribe(fn func(history.Location)) func()
}

type nullStore struct{}

func (nullStore) Read() history.Location                  { return history.Location{Filters: domain.DefaultFilters()} }
func (nullStore) Write(history.Location) error            { return nil }
func (nullStore) Clear() error                            { return nil }
func (nullStore) Subscribe(func(history.Location)) func() { return func() {} }

// Orchestrator runs submissions against a search backend. All methods are
// safe for concurrent use; only the response of the latest submission is
// ever applied.
type Orchestrator struct {
	mu      sync.Mutex
	backend domain.SearchBackend
	store   StateStore
	bus     eventbus.EventBus
	log     logr.Logger
	exec    *Executor
	now     func() time.Time
	count   int

	seq   uint64
	state Snapshot
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithStore sets the state store searches are persisted to
func WithStore(s StateStore) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.store = s
		}
	}
}

// WithBus sets the bus session events are published on
func WithBus(b eventbus.EventBus) Option {
	return func(o *Orchestrator) {
		if b != nil {
			o.bus = b
		}
	}
}

// WithLogger sets the logger
func WithLogger(l logr.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithCommands routes ":"-prefixed input to exec instead of searching it
func WithCommands(exec *Executor) Option {
	return func(o *Orchestrator) { o.exec = exec }
}

// WithClock replaces time.Now for timing searches
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithFilters sets the initial sticky filters
func WithFilters(f domain.Filters) Option {
	return func(o *Orchestrator) { o.state.UIFilters = normalizeFilters(f) }
}

// WithDefaultCount sets the result count requested when no count bang is
// given. Zero leaves it to the backend.
func WithDefaultCount(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.count = n
		}
	}
}

// New creates an orchestrator for backend
func New(backend domain.SearchBackend, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: backend,
		store:   nullStore{},
		bus:     eventbus.Null{},
		log:     logr.Discard(),
		now:     time.Now,
		state:   Snapshot{UIFilters: domain.DefaultFilters()},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Snapshot returns a copy of the current session state
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// SetFilters replaces the sticky UI filters. It does not trigger a search.
func (o *Orchestrator) SetFilters(f domain.Filters) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.state.UIFilters = normalizeFilters(f)
}

// Submit handles one line of query-box input and blocks until any search it
// starts has finished. The returned error is only set when a command's side
// effect failed; search failures are recorded in the session instead.
func (o *Orchestrator) Submit(ctx context.Context, raw string) (Snapshot, error) {
	if o.exec != nil && command.IsCommand(raw) {
		return o.runCommand(raw)
	}
	return o.search(ctx, raw, true), nil
}

// SyncFromStore rebuilds the session from the state store: the stored query
// is searched again with the stored filters, or the session is reset when
// there is no query. Nothing is written back to the store.
func (o *Orchestrator) SyncFromStore(ctx context.Context) Snapshot {
	loc := o.store.Read()
	if loc.Empty() {
		o.mu.Lock()
		o.resetLocked(normalizeFilters(loc.Filters))
		o.mu.Unlock()
		o.bus.Publish(domain.SessionClearedEvent{})
		return o.Snapshot()
	}

	o.SetFilters(loc.Filters)
	return o.search(ctx, loc.Query, false)
}

// Watch re-syncs the session whenever the store navigates back or forward.
// Each sync runs on its own goroutine bound to ctx. The returned func stops
// watching, cancels in-flight syncs and waits for them to return.
func (o *Orchestrator) Watch(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	var (
		mu      sync.Mutex
		stopped bool
		wg      sync.WaitGroup
	)

	unsubscribe := o.store.Subscribe(func(loc history.Location) {
		ev := domain.HistoryNavigatedEvent{Query: loc.Query}
		if p, ok := o.store.(interface{ Position() (int, int) }); ok {
			ev.Position, _ = p.Position()
		}

		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		o.bus.Publish(ev)
		wg.Add(1)
		go func() {
			defer wg.Done()
			o.SyncFromStore(ctx)
		}()
	})

	return func() {
		unsubscribe()
		mu.Lock()
		stopped = true
		mu.Unlock()
		cancel()
		wg.Wait()
	}
}

func (o *Orchestrator) search(ctx context.Context, raw string, persist bool) Snapshot {
	ov := bang.Parse(raw)
	if !ov.HasQuery() {
		return o.Snapshot()
	}

	count := ov.Count
	if count == 0 {
		count = o.count
	}

	o.mu.Lock()
	effective := MergeFilters(o.state.UIFilters, ov)
	o.seq++
	seq := o.seq
	o.state = Snapshot{
		RawQuery:    raw,
		CleanQuery:  ov.CleanQuery,
		Filters:     effective,
		UIFilters:   o.state.UIFilters,
		ActiveBangs: ov.ActiveBangs,
		Count:       count,
		IsNews:      ov.IsNews,
		Loading:     true,
		HasSearched: true,
		HelpVisible: o.state.HelpVisible,
		Seq:         seq,
	}
	o.mu.Unlock()

	if persist {
		if err := o.store.Write(history.Location{Query: ov.CleanQuery, Filters: effective}); err != nil {
			o.log.Error(err, "failed to persist session location")
		}
	}
	o.bus.Publish(domain.SearchStartedEvent{Seq: seq, Query: ov.CleanQuery, Filters: effective})

	start := o.now()
	resp, err := o.backend.Search(ctx, ov.CleanQuery, searchOptions(effective, count))
	elapsed := o.now().Sub(start).Seconds()

	o.mu.Lock()
	if seq != o.seq {
		o.mu.Unlock()
		o.log.V(1).Info("discarding stale search response", "seq", seq, "query", ov.CleanQuery)
		return o.Snapshot()
	}
	o.state.Loading = false
	o.state.Elapsed = elapsed
	var event domain.DomainEvent
	if err != nil {
		o.state.Err = classify(err)
		event = domain.SearchFailedEvent{
			Seq:     seq,
			Query:   ov.CleanQuery,
			Message: o.state.Err.Message,
			Config:  o.state.Err.Kind == ErrorConfiguration,
		}
	} else {
		if resp == nil {
			resp = &domain.SearchResponse{}
		}
		resp = cloneResponse(resp)
		if ov.IsNews {
			mergeNews(resp)
		}
		o.state.Results = resp
		event = domain.SearchCompletedEvent{Seq: seq, Query: ov.CleanQuery, Results: resp.Results.Count(), Seconds: elapsed}
	}
	snap := o.state.clone()
	o.mu.Unlock()

	if err != nil {
		o.log.Info("search failed", "query", ov.CleanQuery, "kind", snap.Err.Kind.String(), "error", err.Error())
	} else {
		o.log.V(1).Info("search completed", "query", ov.CleanQuery, "results", snap.ResultCount(), "seconds", elapsed)
	}
	o.bus.Publish(event)
	return snap
}

func (o *Orchestrator) runCommand(raw string) (Snapshot, error) {
	parsed := command.Parse(raw)
	if parsed == nil {
		o.log.V(1).Info("ignoring unknown command", "input", strings.TrimSpace(raw))
		return o.Snapshot(), nil
	}

	effect, err := o.exec.Execute(*parsed, o.Snapshot())
	if err != nil {
		o.log.Error(err, "command failed", "command", parsed.Type)
	}

	switch effect {
	case EffectToggleHelp:
		o.mu.Lock()
		o.state.HelpVisible = !o.state.HelpVisible
		visible := o.state.HelpVisible
		o.mu.Unlock()
		o.bus.Publish(domain.HelpToggledEvent{Visible: visible})

	case EffectClear:
		o.mu.Lock()
		o.resetLocked(domain.DefaultFilters())
		o.mu.Unlock()
		if cerr := o.store.Clear(); cerr != nil {
			o.log.Error(cerr, "failed to clear session location")
			if err == nil {
				err = cerr
			}
		}
		o.bus.Publish(domain.SessionClearedEvent{})
	}

	return o.Snapshot(), err
}

// resetLocked empties the session and invalidates any in-flight search
func (o *Orchestrator) resetLocked(ui domain.Filters) {
	o.seq++
	o.state = Snapshot{
		UIFilters:   ui,
		HelpVisible: o.state.HelpVisible,
		Seq:         o.seq,
	}
}

// classify maps a backend error to the session error state
func classify(err error) Error {
	msg := err.Error()
	if errors.Is(err, domain.ErrMissingAPIKey) || msg == domain.ErrMissingAPIKey.Error() {
		return Error{Kind: ErrorConfiguration, Message: domain.ErrMissingAPIKey.Error()}
	}
	if msg == "" {
		msg = DefaultErrorMessage
	}
	return Error{Kind: ErrorRequest, Message: msg}
}

func normalizeFilters(f domain.Filters) domain.Filters {
	if f.SafeSearch == "" {
		f.SafeSearch = domain.SafeSearchModerate
	}
	return f
}
