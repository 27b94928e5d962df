package scheduler

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store holds the live schedule entries. It hands out identifiers and
// keeps the insertion sequence used to break priority ties. The Store's
// lock covers only membership and attributes; admission decisions are the
// Scheduler's.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	seq     uint64
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Add creates a new entry in the Inactive state and returns its
// identifier.
func (s *Store) Add(owner string, priority int32, resumable bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.seq++
	s.entries[id] = &Entry{
		id:        id,
		owner:     owner,
		priority:  priority,
		resumable: resumable,
		holds:     make(map[string]struct{}),
		state:     StateInactive,
		seq:       s.seq,
	}
	return id
}

// Remove deletes the entry. The returned snapshot reflects the entry's
// state at removal time.
func (s *Store) Remove(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return Snapshot{}, ErrEntryNotFound
	}
	delete(s.entries, id)
	return e.snapshot(), nil
}

// RemoveOwned deletes every entry belonging to owner and returns their
// identifiers. Used when a client disconnects.
func (s *Store) RemoveOwned(owner string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed []string
	for id, e := range s.entries {
		if e.owner == owner {
			delete(s.entries, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// AddHold places a named hold on the entry. Each key can be held at most
// once.
func (s *Store) AddHold(id, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	if _, dup := e.holds[key]; dup {
		return ErrHoldExists
	}
	e.holds[key] = struct{}{}
	return nil
}

// RemoveHold releases a named hold from the entry.
func (s *Store) RemoveHold(id, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	if _, held := e.holds[key]; !held {
		return ErrHoldNotFound
	}
	delete(e.holds, key)
	return nil
}

// Get returns a snapshot of the entry.
func (s *Store) Get(id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return Snapshot{}, ErrEntryNotFound
	}
	return e.snapshot(), nil
}

// Has reports whether the entry exists.
func (s *Store) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// List returns snapshots of all entries in scheduling order: priority
// descending, ties broken by insertion order.
func (s *Store) List() []Snapshot {
	s.mu.Lock()
	ordered := s.ordered()
	out := make([]Snapshot, len(ordered))
	for i, e := range ordered {
		out[i] = e.snapshot()
	}
	s.mu.Unlock()
	return out
}

// ordered returns the entries in scheduling order. Callers must hold mu.
func (s *Store) ordered() []*Entry {
	es := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		es = append(es, e)
	}
	sort.Slice(es, func(i, j int) bool {
		if es[i].priority != es[j].priority {
			return es[i].priority > es[j].priority
		}
		return es[i].seq < es[j].seq
	})
	return es
}

// apply sets each listed entry's state and returns the identifiers whose
// state actually changed, in scheduling order. Entries not listed keep
// their state. Callers must hold mu.
func (s *Store) apply(states map[string]State) []Snapshot {
	var changed []Snapshot
	for _, e := range s.ordered() {
		want, ok := states[e.id]
		if !ok || e.state == want {
			continue
		}
		e.state = want
		changed = append(changed, e.snapshot())
	}
	return changed
}
