package scheduler

import (
	"errors"
	"sort"
)

var (
	ErrEntryNotFound = errors.New("schedule entry not found")
	ErrHoldNotFound  = errors.New("hold not found on entry")
	ErrHoldExists    = errors.New("hold already present on entry")
)

// State is an entry's admission state. Entries start Inactive and are
// promoted and demoted only by the scheduler's evaluation step. Removed is
// terminal and only ever appears in change notifications.
type State string

const (
	StateInactive State = "inactive"
	StateActive   State = "active"
	StateRemoved  State = "removed"
)

// Entry is one client-submitted unit of schedulable work. Entries are
// owned by the Store and must only be touched while holding its lock;
// callers outside the package see Snapshot copies.
type Entry struct {
	id        string
	owner     string
	priority  int32
	resumable bool
	holds     map[string]struct{}
	state     State
	seq       uint64
}

// Snapshot is a read-only copy of an entry's attributes.
type Snapshot struct {
	Id        string
	Owner     string
	Priority  int32
	Resumable bool
	Holds     []string
	State     State
}

func (e *Entry) snapshot() Snapshot {
	holds := make([]string, 0, len(e.holds))
	for k := range e.holds {
		holds = append(holds, k)
	}
	sort.Strings(holds)
	return Snapshot{
		Id:        e.id,
		Owner:     e.owner,
		Priority:  e.priority,
		Resumable: e.resumable,
		Holds:     holds,
		State:     e.state,
	}
}
