package artifact

import (
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Entry is the state of one key.
type Entry struct {
	IsLoading bool   `json:"isLoading"`
	Payload   string `json:"payload,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Settled returns e with the loading flag cleared. A restored entry cannot
// resume the generation that was in flight when it was saved.
func (e Entry) Settled() Entry {
	e.IsLoading = false
	return e
}

// Ready reports whether the entry holds a payload.
func (e Entry) Ready() bool {
	return !e.IsLoading && e.Payload != ""
}

// Status renders the entry for tables and logs.
func (e Entry) Status() string {
	switch {
	case e.IsLoading:
		return "loading"
	case e.Error != "":
		return "failed"
	case e.Payload != "":
		return "ready"
	default:
		return "idle"
	}
}

// ChangeFunc observes every mutation. It runs after the store lock is released.
type ChangeFunc func(store, key string, entry Entry)

// Store maps content keys to entries.
type Store struct {
	name string

	mu       sync.Mutex
	entries  map[string]Entry
	attempts map[string]string
	onChange ChangeFunc
}

// Option customizes a Store.
type Option func(*Store)

// WithObserver registers fn to be told about every mutation.
func WithObserver(fn ChangeFunc) Option {
	return func(s *Store) {
		s.onChange = fn
	}
}

// New returns an empty store. name labels the store in logs and metrics.
func New(name string, opts ...Option) *Store {
	s := &Store{
		name:     name,
		entries:  make(map[string]Entry),
		attempts: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the store label.
func (s *Store) Name() string { return s.name }

// Attempt is the handle for one generation started with Begin.
type Attempt struct {
	store *Store
	key   string
	token string
}

// Key returns the key this attempt writes to.
func (a *Attempt) Key() string { return a.key }

// Current reports whether no newer Begin has happened for the key.
func (a *Attempt) Current() bool {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return a.store.attempts[a.key] == a.token
}

// Complete records payload if this attempt is still current.
func (a *Attempt) Complete(payload string) bool {
	return a.store.settle(a.key, a.token, Entry{Payload: payload})
}

// Fail records message if this attempt is still current.
func (a *Attempt) Fail(message string) bool {
	return a.store.settle(a.key, a.token, Entry{Error: failureMessage(message)})
}

// Begin marks key loading, discarding any previous payload or error.
func (s *Store) Begin(key string) *Attempt {
	token := uuid.NewString()
	s.mu.Lock()
	s.entries[key] = Entry{IsLoading: true}
	s.attempts[key] = token
	s.mu.Unlock()
	s.notify(key, Entry{IsLoading: true})
	return &Attempt{store: s, key: key, token: token}
}

// Complete records payload for key regardless of which attempt owns it.
func (s *Store) Complete(key, payload string) {
	s.settle(key, "", Entry{Payload: payload})
}

// Fail records message for key regardless of which attempt owns it.
func (s *Store) Fail(key, message string) {
	s.settle(key, "", Entry{Error: failureMessage(message)})
}

func (s *Store) settle(key, token string, entry Entry) bool {
	s.mu.Lock()
	if token != "" && s.attempts[key] != token {
		s.mu.Unlock()
		return false
	}
	delete(s.attempts, key)
	s.entries[key] = entry
	s.mu.Unlock()
	s.notify(key, entry)
	return true
}

func failureMessage(message string) string {
	if message = strings.TrimSpace(message); message != "" {
		return message
	}
	return "generation failed"
}

// Get returns the entry for key.
func (s *Store) Get(key string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// Keys returns the stored keys in lexical order.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.entries))
}

// Len returns the number of keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Loading returns the number of keys with a generation in flight.
func (s *Store) Loading() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, entry := range s.entries {
		if entry.IsLoading {
			n++
		}
	}
	return n
}

// Snapshot copies the current entries.
func (s *Store) Snapshot() map[string]Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.entries)
}

// Restore replaces the contents with entries, settling anything loading.
// Outstanding attempts are invalidated.
func (s *Store) Restore(entries map[string]Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry, len(entries))
	for key, entry := range entries {
		s.entries[key] = entry.Settled()
	}
	clear(s.attempts)
}

// Clear drops every entry and invalidates outstanding attempts.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	clear(s.attempts)
}

func (s *Store) notify(key string, entry Entry) {
	if s.onChange != nil {
		s.onChange(s.name, key, entry)
	}
}
