package account

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// EventKind names a session transition.
type EventKind string

const (
	EventLogin  EventKind = "session.login"
	EventLogout EventKind = "session.logout"
)

// Event is delivered to subscribers whenever the session changes.
type Event struct {
	Kind  EventKind `json:"event"`
	Actor Actor     `json:"actor"`
	At    time.Time `json:"timestamp"`
}

// SessionStore is the single accessor views read the current actor through.
// Subscribers are notified on login and logout instead of polling storage.
type SessionStore struct {
	mu      sync.RWMutex
	current Actor
	nextID  int
	subs    map[int]chan Event
}

// NewSessionStore creates an empty (guest) session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{subs: make(map[int]chan Event)}
}

// Current returns the acting user, a guest when nobody is signed in.
func (s *SessionStore) Current() Actor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Login replaces the current actor and notifies subscribers.
func (s *SessionStore) Login(actor Actor) {
	s.mu.Lock()
	s.current = actor
	s.mu.Unlock()
	s.publish(Event{Kind: EventLogin, Actor: actor, At: time.Now()})
}

// Logout resets the session to a guest and notifies subscribers.
func (s *SessionStore) Logout() {
	s.mu.Lock()
	prev := s.current
	s.current = Guest()
	s.mu.Unlock()
	s.publish(Event{Kind: EventLogout, Actor: prev, At: time.Now()})
}

// Subscribe registers a listener. The returned cancel func must be called
// once the listener goes away; it closes the channel.
func (s *SessionStore) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Event, 8)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
	return ch, cancel
}

// publish is non-blocking: a subscriber with a full buffer misses the event.
func (s *SessionStore) publish(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			log.Warn().Int("subscriber", id).Str("event", string(ev.Kind)).Msg("session subscriber buffer full, dropping event")
		}
	}
}
