// Package history keeps the shareable session location: the current query and
// filters encoded as a URL query string, plus a back/forward stack of earlier
// locations. Back and Forward notify subscribers the way a browser's popstate
// does; Write and Clear never do.
package history

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-logr/logr"
	"github.com/pelletier/go-toml/v2"

	"yousearch/internal/domain"
)

// MaxEntries bounds the back/forward stack
const MaxEntries = 50

// Location is a decoded history entry
type Location struct {
	Query   string
	Filters domain.Filters
}

// Empty reports whether the location has no query
func (l Location) Empty() bool {
	return l.Query == ""
}

// Encode renders a location as a query string. Moderate safesearch is the
// default and is left out.
func Encode(loc Location) string {
	v := url.Values{}
	if loc.Query != "" {
		v.Set("q", loc.Query)
	}
	if loc.Filters.Freshness != "" {
		v.Set("freshness", loc.Filters.Freshness)
	}
	if loc.Filters.Country != "" {
		v.Set("country", loc.Filters.Country)
	}
	if s := loc.Filters.SafeSearch; s != "" && s != domain.SafeSearchModerate {
		v.Set("safesearch", s)
	}
	return v.Encode()
}

// Decode parses a query string. "query" is accepted as an alias of "q".
func Decode(raw string) Location {
	v, err := url.ParseQuery(raw)
	if err != nil {
		return Location{Filters: domain.DefaultFilters()}
	}
	q := v.Get("q")
	if q == "" {
		q = v.Get("query")
	}
	safe := v.Get("safesearch")
	if safe == "" {
		safe = domain.SafeSearchModerate
	}
	return Location{
		Query: q,
		Filters: domain.Filters{
			Freshness:  v.Get("freshness"),
			Country:    v.Get("country"),
			SafeSearch: safe,
		},
	}
}

// Store is an in-memory history, optionally mirrored to a TOML state file
type Store struct {
	mu        sync.Mutex
	entries   []string
	pos       int
	listeners map[uint64]func(Location)
	nextID    uint64
	path      string
	log       logr.Logger
}

type stateFile struct {
	Entries  []string `toml:"entries"`
	Position int      `toml:"position"`
}

// New creates an empty store that lives only in memory
func New() *Store {
	return &Store{
		entries:   []string{""},
		listeners: make(map[uint64]func(Location)),
		log:       logr.Discard(),
	}
}

// Open creates a store backed by path, restoring its entries when the file
// exists
func Open(path string) (*Store, error) {
	s := New()
	s.path = path

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	var st stateFile
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	if len(st.Entries) > 0 {
		s.entries = st.Entries
		s.pos = st.Position
		if s.pos < 0 || s.pos >= len(s.entries) {
			s.pos = len(s.entries) - 1
		}
	}
	return s, nil
}

// SetLogger sets the logger for errors that Back and Forward cannot return
func (s *Store) SetLogger(log logr.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.log = log
}

// Read returns the current location
func (s *Store) Read() Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Decode(s.entries[s.pos])
}

// Write pushes a new location, dropping any forward entries. Writing the
// current location again is a no-op.
func (s *Store) Write(loc Location) error {
	return s.push(Encode(loc))
}

// Clear pushes an empty location
func (s *Store) Clear() error {
	return s.push("")
}

func (s *Store) push(encoded string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entries[s.pos] == encoded {
		return nil
	}
	s.entries = append(s.entries[:s.pos+1], encoded)
	if len(s.entries) > MaxEntries {
		s.entries = append([]string(nil), s.entries[len(s.entries)-MaxEntries:]...)
	}
	s.pos = len(s.entries) - 1
	return s.saveLocked()
}

// Back moves to the previous location and notifies subscribers.
// It returns false when already at the oldest entry.
func (s *Store) Back() bool {
	return s.move(-1)
}

// Forward moves to the next location and notifies subscribers
func (s *Store) Forward() bool {
	return s.move(1)
}

func (s *Store) move(delta int) bool {
	s.mu.Lock()
	next := s.pos + delta
	if next < 0 || next >= len(s.entries) {
		s.mu.Unlock()
		return false
	}
	s.pos = next
	loc := Decode(s.entries[s.pos])
	if err := s.saveLocked(); err != nil {
		s.log.Error(err, "failed to persist history position", "position", s.pos)
	}
	listeners := make([]func(Location), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(loc)
	}
	return true
}

// Subscribe registers fn for back/forward notifications and returns the
// unsubscribe func
func (s *Store) Subscribe(fn func(Location)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Entries returns the non-empty locations in the stack, oldest first
func (s *Store) Entries() []Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Location, 0, len(s.entries))
	for _, e := range s.entries {
		if loc := Decode(e); !loc.Empty() {
			out = append(out, loc)
		}
	}
	return out
}

// Position returns the current index into the raw stack and its length
func (s *Store) Position() (pos, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos, len(s.entries)
}

// Timeline returns the query of every stack entry, "" for cleared ones, and
// the current position
func (s *Store) Timeline() ([]string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	for i, e := range s.entries {
		out[i] = Decode(e).Query
	}
	return out, s.pos
}

// Raw returns the encoded current location, e.g. "q=go&freshness=week"
func (s *Store) Raw() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[s.pos]
}

func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}
	data, err := toml.Marshal(stateFile{Entries: s.entries, Position: s.pos})
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	return nil
}
