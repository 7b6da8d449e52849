package state

import (
	"sync"
	"time"

	"github.com/five82/otter/internal/entity"
	"github.com/five82/otter/internal/health"
)

// ConnectionKind enumerates the connection states.
type ConnectionKind int

const (
	Disconnected ConnectionKind = iota
	Connecting
	Connected
	Errored
)

// Connection is the connection status. Message is set only for Errored.
type Connection struct {
	Kind    ConnectionKind
	Message string
}

// String renders the status for display.
func (c Connection) String() string {
	switch c.Kind {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Errored:
		return "error: " + c.Message
	default:
		return "disconnected"
	}
}

// IsError reports whether the last refresh failed.
func (c Connection) IsError() bool {
	return c.Kind == Errored
}

// Snapshot represents the latest data available to the render layer.
type Snapshot struct {
	Config              *entity.ServerConfig
	Entities            []entity.State
	Connection          Connection
	LastUpdate          time.Time
	History             health.History
	ConsecutiveFailures int
}

// IsOffline returns true when Home Assistant has been unreachable for
// multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Listener receives the snapshot after every mutation.
type Listener func(Snapshot)

// Store coordinates concurrent updates to the snapshot and publishes them to
// subscribers.
type Store struct {
	mu        sync.RWMutex
	snapshot  Snapshot
	listeners []subscription
	nextID    int
}

type subscription struct {
	id int
	fn Listener
}

// Subscribe registers fn and returns a function that removes it. Listeners
// run outside the lock, in registration order, on the mutating goroutine.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// SetConnecting marks a refresh as in flight. Data is untouched.
func (s *Store) SetConnecting() {
	s.mutate(func(snap *Snapshot) {
		snap.Connection = Connection{Kind: Connecting}
	})
}

// SetDisconnected marks the engine as not configured. Data is untouched.
func (s *Store) SetDisconnected() {
	s.mutate(func(snap *Snapshot) {
		snap.Connection = Connection{Kind: Disconnected}
	})
}

// SetError records a failed refresh. The previous config and entities are
// kept so the last known values stay visible.
func (s *Store) SetError(message string) {
	s.mutate(func(snap *Snapshot) {
		snap.Connection = Connection{Kind: Errored, Message: message}
		snap.ConsecutiveFailures++
	})
}

// Apply replaces config and entities after a successful refresh and records
// the parsed health readings in the history window.
func (s *Store) Apply(cfg entity.ServerConfig, states []entity.State, readings []health.Reading, now time.Time) {
	s.mutate(func(snap *Snapshot) {
		snap.Config = &cfg
		snap.Entities = cloneStates(states)
		snap.Connection = Connection{Kind: Connected}
		snap.LastUpdate = now
		snap.History.Record(readings)
		snap.ConsecutiveFailures = 0
	})
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snapshot)
	snap := s.copyLocked()
	listeners := make([]Listener, len(s.listeners))
	for i, sub := range s.listeners {
		listeners[i] = sub.fn
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (s *Store) copyLocked() Snapshot {
	snap := s.snapshot
	if s.snapshot.Config != nil {
		cfg := *s.snapshot.Config
		snap.Config = &cfg
	}
	snap.Entities = cloneStates(s.snapshot.Entities)
	snap.History = s.snapshot.History.Clone()
	return snap
}

func cloneStates(items []entity.State) []entity.State {
	if len(items) == 0 {
		return nil
	}
	dup := make([]entity.State, len(items))
	copy(dup, items)
	return dup
}
