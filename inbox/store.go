// Package inbox implements the in-memory record store the approval loop
// operates on: an ordered collection of immutable records keyed by id plus
// the processed set tracking which records have been finalized.
package inbox

import (
	"sync"

	"github.com/hupe1980/inboxgate/core"
)

// Status is the derived processing state of a record.
type Status string

const (
	// StatusNew marks a record that has not been replied to or deleted yet.
	StatusNew Status = "NEW"
	// StatusDone marks a record whose id is in the processed set.
	StatusDone Status = "DONE"
)

// Record is one inbox item. Records are immutable once created; the store
// only supports whole-record presence/absence, never in-place field edits.
type Record struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// RecordView pairs a record with its derived status for listing.
type RecordView struct {
	Record
	Status Status `json:"status"`
}

// Store is an ordered collection of Records keyed by unique id, owning the
// processed set. The session loop is the store's sole mutator during a run;
// the mutex guards against accidental concurrent access from observers.
//
// Contract:
//   - List never suspends and returns records in insertion order
//   - Get/Remove fail with core.ErrNotFound for unknown ids
//   - MarkProcessed is idempotent; a processed id always corresponds to a
//     record that existed at the time of processing
//   - Remove deletes the record and marks its id processed
type Store struct {
	mu        sync.RWMutex
	records   []Record
	processed map[string]struct{}
	order     []string // processed ids in processing order
}

// NewStore constructs a store seeded with the given records. Duplicate ids
// keep the first occurrence.
func NewStore(records ...Record) *Store {
	s := &Store{processed: make(map[string]struct{})}
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		s.records = append(s.records, r)
	}
	return s
}

// List returns all records in order with their derived status.
func (s *Store) List() []RecordView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := make([]RecordView, 0, len(s.records))
	for _, r := range s.records {
		status := StatusNew
		if _, done := s.processed[r.ID]; done {
			status = StatusDone
		}
		views = append(views, RecordView{Record: r, Status: status})
	}
	return views
}

// Get returns the record with the given id or core.ErrNotFound.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, core.ErrNotFound
}

// MarkProcessed adds the id to the processed set. Marking an already
// processed id is a no-op, so double processing cannot grow the set.
func (s *Store) MarkProcessed(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := s.processed[id]; done {
		return
	}
	s.processed[id] = struct{}{}
	s.order = append(s.order, id)
}

// Remove deletes the record and marks its id processed. Unknown ids return
// core.ErrNotFound and leave the store untouched.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, r := range s.records {
		if r.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ErrNotFound
	}
	s.records = append(s.records[:idx], s.records[idx+1:]...)
	if _, done := s.processed[id]; !done {
		s.processed[id] = struct{}{}
		s.order = append(s.order, id)
	}
	return nil
}

// IsProcessed reports whether the id is in the processed set.
func (s *Store) IsProcessed(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, done := s.processed[id]
	return done
}

// Processed returns the processed ids in processing order.
func (s *Store) Processed() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// Remaining counts records still present in the store whose id is not in the
// processed set. It is the pure input for prompt selection: the loop computes
// it before each model step and injects it into runtime context.
func (s *Store) Remaining() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.records {
		if _, done := s.processed[r.ID]; !done {
			n++
		}
	}
	return n
}

// Len returns the number of records currently in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
