package core

import (
	"sync"
	"time"
)

// Session represents a conversational container tracking mutable key/value
// state, an ordered event history, and any action requests pending human
// approval. It is safe for concurrent access.
//
// Contract:
//   - State mutations update the Updated timestamp
//   - GetEvents returns a defensive copy to avoid external mutation
//   - GetConversationHistory filters events to user/assistant/tool roles and
//     excludes partial streaming fragments
//   - Pending requests are the serializable suspension point: a session with
//     pending requests can be checkpointed and later resumed by resolving
//     them one Decision at a time
//   - Clone performs deep copies of maps/slices for safe divergence.
type Session struct {
	ID      string          `json:"id"`
	State   map[string]any  `json:"state"`
	Events  []Event         `json:"events"`
	Pending []ActionRequest `json:"pending,omitempty"`
	Created time.Time       `json:"created"`
	Updated time.Time       `json:"updated"`
	mu      sync.RWMutex
}

// NewSession creates a new session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, State: map[string]any{}, Events: []Event{}, Created: now, Updated: now}
}

// GetState returns the value and existence flag for a state key.
func (s *Session) GetState(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.State[key]
	return v, ok
}

// SetState sets a key/value pair in session state updating the Updated timestamp.
func (s *Session) SetState(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State[key] = value
	s.Updated = time.Now()
}

// MergeState merges the provided key/value pairs into State.
func (s *Session) MergeState(delta map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range delta {
		s.State[k] = v
	}
	s.Updated = time.Now()
}

// AddEvent appends an event to the history updating the Updated timestamp.
func (s *Session) AddEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, ev)
	s.Updated = time.Now()
}

// GetEvents returns a defensive copy of the full event slice.
func (s *Session) GetEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.Events))
	copy(events, s.Events)
	return events
}

// GetConversationHistory returns filtered events suitable for providing
// conversational context to models (excludes partials and non-conversational roles).
func (s *Session) GetConversationHistory() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	allowed := map[string]bool{"user": true, "assistant": true, "tool": true}
	res := make([]Event, 0, len(s.Events))
	for _, ev := range s.Events {
		if ev.Content == nil || !allowed[ev.Content.Role] {
			continue
		}
		if ev.IsPartial() {
			continue
		}
		res = append(res, ev)
	}
	return res
}

// SetPending records the action requests awaiting approval. A non-empty set
// marks the session as suspended at the approval boundary.
func (s *Session) SetPending(reqs []ActionRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Pending = make([]ActionRequest, 0, len(reqs))
	for _, r := range reqs {
		s.Pending = append(s.Pending, r.Clone())
	}
	s.Updated = time.Now()
}

// GetPending returns a copy of the action requests awaiting approval.
func (s *Session) GetPending() []ActionRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]ActionRequest, 0, len(s.Pending))
	for _, r := range s.Pending {
		res = append(res, r.Clone())
	}
	return res
}

// ClearPending discards the pending request set once every request has been
// resolved.
func (s *Session) ClearPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Pending = nil
	s.Updated = time.Now()
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{
		ID:      s.ID,
		State:   make(map[string]any, len(s.State)),
		Events:  make([]Event, len(s.Events)),
		Pending: make([]ActionRequest, 0, len(s.Pending)),
		Created: s.Created,
		Updated: s.Updated,
	}
	for k, v := range s.State {
		clone.State[k] = v
	}
	copy(clone.Events, s.Events)
	for _, r := range s.Pending {
		clone.Pending = append(clone.Pending, r.Clone())
	}
	if len(clone.Pending) == 0 {
		clone.Pending = nil
	}
	return clone
}

// SessionStore persists sessions and their evolving state / event history.
type SessionStore interface {
	Create(id string) (*Session, error)
	Get(id string) (*Session, error)
	AppendEvent(sessionID string, event Event) error
	ApplyDelta(sessionID string, delta map[string]any) error
	SetPending(sessionID string, reqs []ActionRequest) error
}
