package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yousearch/internal/domain"
	"yousearch/internal/eventbus"
	"yousearch/internal/history"
)

type searchCall struct {
	Query string
	Opts  domain.SearchOptions
}

type fakeBackend struct {
	mu    sync.Mutex
	calls []searchCall
	resp  *domain.SearchResponse
	err   error
	gates map[string]chan struct{}
}

func (f *fakeBackend) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{Query: query, Opts: opts})
	gate := f.gates[query]
	resp, err := f.resp, f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &domain.SearchResponse{Results: domain.SearchResults{Web: []domain.SearchResult{{Title: query, URL: "https://" + query}}}}, nil
	}
	return resp, nil
}

func (f *fakeBackend) Calls() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]searchCall(nil), f.calls...)
}

type recordingBus struct {
	eventbus.Null
	mu     sync.Mutex
	events []domain.DomainEvent
}

func (b *recordingBus) Publish(e domain.DomainEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) Types() []domain.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.EventType
	for _, e := range b.events {
		out = append(out, e.Type())
	}
	return out
}

// steppingClock advances by step on every call
func steppingClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(step)
		return t
	}
}

func result(title string) domain.SearchResult {
	return domain.SearchResult{Title: title, URL: "https://example.com/" + title}
}

func TestNewsBangMovesWebIntoNews(t *testing.T) {
	backend := &fakeBackend{resp: &domain.SearchResponse{Results: domain.SearchResults{
		Web:  []domain.SearchResult{result("A"), result("B")},
		News: []domain.SearchResult{result("C")},
	}}}
	o := New(backend)

	snap, err := o.Submit(context.Background(), "!news ai policy")
	require.NoError(t, err)

	assert.Empty(t, snap.Web())
	assert.Equal(t, []domain.SearchResult{result("C"), result("A"), result("B")}, snap.News())
	assert.True(t, snap.IsNews)
	assert.Equal(t, "ai policy", snap.CleanQuery)
	assert.Equal(t, []string{"!news"}, snap.ActiveBangs)

	// the backend's own response is untouched
	assert.Len(t, backend.resp.Results.Web, 2)
}

func TestMissingKeyIsConfigurationError(t *testing.T) {
	o := New(&fakeBackend{err: domain.ErrMissingAPIKey})
	snap, _ := o.Submit(context.Background(), "go")
	assert.Equal(t, Error{Kind: ErrorConfiguration, Message: "missing_api_key"}, snap.Err)

	o = New(&fakeBackend{err: errors.New("missing_api_key")})
	snap, _ = o.Submit(context.Background(), "go")
	assert.Equal(t, ErrorConfiguration, snap.Err.Kind, "matched by message too")

	o = New(&fakeBackend{err: errors.New("timeout")})
	snap, _ = o.Submit(context.Background(), "go")
	assert.Equal(t, Error{Kind: ErrorRequest, Message: "timeout"}, snap.Err)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Results)
}

func TestEmptyErrorMessageDefaults(t *testing.T) {
	o := New(&fakeBackend{err: errors.New("")})
	snap, _ := o.Submit(context.Background(), "go")
	assert.Equal(t, Error{Kind: ErrorRequest, Message: DefaultErrorMessage}, snap.Err)
}

func TestResubmitIsIdempotent(t *testing.T) {
	o := New(&fakeBackend{}, WithClock(steppingClock(time.Second)))

	first, _ := o.Submit(context.Background(), "go !week")
	second, _ := o.Submit(context.Background(), "go !week")

	first.Elapsed, second.Elapsed = 0, 0
	first.Seq, second.Seq = 0, 0
	assert.Equal(t, first, second)
}

func TestBlankQueryIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	bus := &recordingBus{}
	store := history.New()
	o := New(backend, WithBus(bus), WithStore(store))

	before := o.Snapshot()
	for _, in := range []string{"", "   ", "!us !day", "!10"} {
		snap, err := o.Submit(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, before, snap, in)
	}
	assert.Empty(t, backend.Calls())
	assert.Empty(t, bus.Types())
	assert.Equal(t, "", store.Raw())
}

func TestEffectiveFiltersAndCount(t *testing.T) {
	backend := &fakeBackend{}
	store := history.New()
	o := New(backend, WithStore(store), WithFilters(domain.Filters{Freshness: "month", Country: "FR"}))

	snap, _ := o.Submit(context.Background(), "rust !de !strict !20")

	require.Len(t, backend.Calls(), 1)
	assert.Equal(t, searchCall{
		Query: "rust",
		Opts:  domain.SearchOptions{Freshness: "month", Country: "DE", SafeSearch: "strict", Count: 20},
	}, backend.Calls()[0])
	assert.Equal(t, domain.Filters{Freshness: "month", Country: "DE", SafeSearch: "strict"}, snap.Filters)
	assert.Equal(t, domain.Filters{Freshness: "month", Country: "FR", SafeSearch: "moderate"}, snap.UIFilters, "bangs are not sticky")
	assert.Equal(t, 20, snap.Count)

	assert.Equal(t, "country=DE&freshness=month&q=rust&safesearch=strict", store.Raw())
}

func TestTimingUsesClock(t *testing.T) {
	o := New(&fakeBackend{}, WithClock(steppingClock(1500*time.Millisecond)))
	snap, _ := o.Submit(context.Background(), "go")
	assert.InDelta(t, 1.5, snap.Elapsed, 1e-9)
	assert.True(t, snap.HasSearched)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeBackend{gates: map[string]chan struct{}{"slow": gate}}
	bus := &recordingBus{}
	o := New(backend, WithBus(bus))

	done := make(chan Snapshot)
	go func() {
		snap, _ := o.Submit(context.Background(), "slow")
		done <- snap
	}()
	require.Eventually(t, func() bool { return len(backend.Calls()) == 1 }, time.Second, time.Millisecond)

	fast, _ := o.Submit(context.Background(), "fast")
	assert.Equal(t, "fast", fast.Visible()[0].Title)

	close(gate)
	stale := <-done

	assert.Equal(t, "fast", stale.CleanQuery)
	assert.Equal(t, "fast", o.Snapshot().Visible()[0].Title)
	assert.Equal(t, []domain.EventType{
		domain.EventSearchStarted,
		domain.EventSearchStarted,
		domain.EventSearchCompleted,
	}, bus.Types())
}

func TestSnapshotIsACopy(t *testing.T) {
	o := New(&fakeBackend{})
	snap, _ := o.Submit(context.Background(), "go !day")
	snap.ActiveBangs[0] = "changed"
	snap.Results.Results.Web[0].Title = "changed"

	again := o.Snapshot()
	assert.Equal(t, "!day", again.ActiveBangs[0])
	assert.Equal(t, "go", again.Visible()[0].Title)
}

func TestCommandsAreSearchedWithoutExecutor(t *testing.T) {
	backend := &fakeBackend{}
	o := New(backend)

	snap, err := o.Submit(context.Background(), ":help me")
	require.NoError(t, err)
	assert.Equal(t, ":help me", snap.CleanQuery)
	assert.Len(t, backend.Calls(), 1)
}

func TestSyncFromStore(t *testing.T) {
	backend := &fakeBackend{}
	store := history.New()
	require.NoError(t, store.Write(history.Location{Query: "zig", Filters: domain.Filters{Country: "JP", SafeSearch: "off"}}))
	o := New(backend, WithStore(store))

	snap := o.SyncFromStore(context.Background())

	assert.Equal(t, "zig", snap.CleanQuery)
	assert.Equal(t, domain.Filters{Country: "JP", SafeSearch: "off"}, snap.UIFilters)
	assert.Equal(t, domain.SearchOptions{Country: "JP", SafeSearch: "off"}, backend.Calls()[0].Opts)
	pos, total := store.Position()
	assert.Equal(t, 1, pos)
	assert.Equal(t, 2, total, "sync does not write")

	require.NoError(t, store.Clear())
	snap = o.SyncFromStore(context.Background())
	assert.Equal(t, "", snap.CleanQuery)
	assert.Nil(t, snap.Results)
	assert.False(t, snap.HasSearched)
}

func TestWatchFollowsHistoryNavigation(t *testing.T) {
	backend := &fakeBackend{}
	store := history.New()
	bus := &recordingBus{}
	o := New(backend, WithStore(store), WithBus(bus))
	stop := o.Watch(context.Background())
	defer stop()

	_, _ = o.Submit(context.Background(), "one")
	_, _ = o.Submit(context.Background(), "two")
	require.True(t, store.Back())

	require.Eventually(t, func() bool {
		s := o.Snapshot()
		return s.CleanQuery == "one" && !s.Loading
	}, time.Second, time.Millisecond)
	assert.Contains(t, bus.Types(), domain.EventHistoryNavigated)
	assert.Len(t, backend.Calls(), 3)
}

type searchFunc func(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)

func (f searchFunc) Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error) {
	return f(ctx, query, opts)
}

func TestStopWatchWaitsForInFlightSync(t *testing.T) {
	var (
		block    atomic.Bool
		finished atomic.Bool
		calls    atomic.Int32
	)
	started := make(chan struct{}, 1)
	backend := searchFunc(func(ctx context.Context, _ string, _ domain.SearchOptions) (*domain.SearchResponse, error) {
		calls.Add(1)
		if !block.Load() {
			return &domain.SearchResponse{}, nil
		}
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		finished.Store(true)
		return nil, ctx.Err()
	})

	store := history.New()
	o := New(backend, WithStore(store))
	stop := o.Watch(context.Background())

	_, _ = o.Submit(context.Background(), "one")
	_, _ = o.Submit(context.Background(), "two")
	block.Store(true)
	require.True(t, store.Back())

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("navigation did not start a sync")
	}

	stop()
	assert.True(t, finished.Load(), "stop returns only after the sync has returned")

	before := calls.Load()
	require.True(t, store.Forward())
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, calls.Load(), "no sync after stop")
}

func TestDefaultCountYieldsToBang(t *testing.T) {
	backend := &fakeBackend{}
	o := New(backend, WithDefaultCount(7))

	_, _ = o.Submit(context.Background(), "go")
	_, _ = o.Submit(context.Background(), "go !50")

	calls := backend.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, 7, calls[0].Opts.Count)
	assert.Equal(t, 50, calls[1].Opts.Count)
}
