// Package checkpoint persists session snapshots at suspension points so a
// loop waiting on human approval can be resumed later. Pending action
// requests travel with the snapshot, making the approval boundary the
// serializable point of the loop.
package checkpoint

import (
	"sync"

	"github.com/hupe1980/inboxgate/core"
)

// Saver stores and retrieves session snapshots.
type Saver interface {
	// Save stores a snapshot of the session, replacing any prior snapshot
	// with the same id.
	Save(sess *core.Session) error

	// Load returns the latest snapshot for the id. The bool reports whether
	// a snapshot exists.
	Load(id string) (*core.Session, bool, error)

	// Delete discards the snapshot for the id. Deleting a missing snapshot
	// is a no-op.
	Delete(id string) error
}

// InMemorySaver is a volatile Saver keeping snapshots in a process local map.
// Snapshots are cloned on both save and load so callers and the saver never
// share mutable state.
type InMemorySaver struct {
	mu        sync.RWMutex
	snapshots map[string]*core.Session
}

// NewInMemorySaver constructs an empty in-memory saver.
func NewInMemorySaver() *InMemorySaver {
	return &InMemorySaver{snapshots: make(map[string]*core.Session)}
}

// Save implements Saver.
func (s *InMemorySaver) Save(sess *core.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[sess.ID] = sess.Clone()
	return nil
}

// Load implements Saver.
func (s *InMemorySaver) Load(id string) (*core.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[id]
	if !ok {
		return nil, false, nil
	}
	return snap.Clone(), true, nil
}

// Delete implements Saver.
func (s *InMemorySaver) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, id)
	return nil
}

var _ Saver = (*InMemorySaver)(nil)
