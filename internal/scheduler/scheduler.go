package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/shiftdl/shiftdl/pkg/logger"
)

// maxSleepCap bounds how long the run loop sleeps between evaluations even
// when no period transition is due sooner.
const maxSleepCap = time.Minute

// NotifyFunc receives the committed state changes of one evaluation.
// Called outside the scheduler's lock; implementations may call back into
// the scheduler.
type NotifyFunc func(changes []Snapshot)

// Scheduler computes which entries may transfer under the current
// conditions. All mutating operations coalesce into a single evaluation
// goroutine; Evaluate is also exposed directly so tests can step the
// scheduler synchronously.
type Scheduler struct {
	log   logger.Logger
	clock Clock
	store *Store

	mu         sync.Mutex
	conditions Conditions
	notify     NotifyFunc

	// usage accounting for the currently matched period instance
	usageStart time.Time
	usageBytes uint64

	kick chan struct{}
}

func New(log logger.Logger, clock Clock, notify NotifyFunc) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if notify == nil {
		notify = func([]Snapshot) {}
	}
	return &Scheduler{
		log:    log,
		clock:  clock,
		store:  NewStore(),
		notify: notify,
		kick:   make(chan struct{}, 1),
	}
}

// Store exposes read access to the entry store.
func (s *Scheduler) Store() *Store { return s.store }

// Run evaluates on demand and at period transitions until ctx is
// cancelled. Blocking; run it in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	timer := time.NewTimer(maxSleepCap)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.kick:
		case <-timer.C:
		}
		s.Evaluate()

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(s.nextWake())
	}
}

// Kick requests an asynchronous re-evaluation. Multiple kicks before the
// run loop wakes coalesce into one evaluation.
func (s *Scheduler) Kick() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// nextWake returns how long the run loop may sleep: until the next tariff
// period transition, capped at maxSleepCap.
func (s *Scheduler) nextWake() time.Duration {
	s.mu.Lock()
	t := s.conditions.Tariff
	s.mu.Unlock()
	if t == nil {
		return maxSleepCap
	}
	now := s.clock.Now()
	next, ok := t.NextTransition(now)
	if !ok {
		return maxSleepCap
	}
	d := next.Sub(now)
	if d <= 0 || d > maxSleepCap {
		return maxSleepCap
	}
	return d
}

// Submit registers a new entry for the given owner and returns its
// identifier. The entry starts Inactive; the triggered evaluation may
// promote it immediately.
func (s *Scheduler) Submit(owner string, priority int32, resumable bool) string {
	id := s.store.Add(owner, priority, resumable)
	s.Kick()
	return id
}

// Remove deletes an entry. Watchers see a terminal Removed change.
func (s *Scheduler) Remove(id string) error {
	snap, err := s.store.Remove(id)
	if err != nil {
		return err
	}
	snap.State = StateRemoved
	s.notify([]Snapshot{snap})
	s.Kick()
	return nil
}

// AddHold vetoes activation of the entry under the given key until
// released. An Active entry is demoted on the next evaluation.
func (s *Scheduler) AddHold(id, key string) error {
	if err := s.store.AddHold(id, key); err != nil {
		return err
	}
	s.Kick()
	return nil
}

// RemoveHold releases a hold previously placed with AddHold.
func (s *Scheduler) RemoveHold(id, key string) error {
	if err := s.store.RemoveHold(id, key); err != nil {
		return err
	}
	s.Kick()
	return nil
}

// ReportUsage records bytes transferred by the entry against the current
// period instance's capacity. Reports for unknown entries are dropped:
// a client may still be flushing counters for work the scheduler already
// removed.
func (s *Scheduler) ReportUsage(id string, bytes uint64) {
	if !s.store.Has(id) {
		return
	}
	s.mu.Lock()
	s.usageBytes += bytes
	s.mu.Unlock()
	s.Kick()
}

// SetConditions replaces the network/tariff snapshot.
func (s *Scheduler) SetConditions(c Conditions) {
	s.mu.Lock()
	s.conditions = c
	s.mu.Unlock()
	s.Kick()
}

// ReapOwner removes every entry owned by the given client. Used on
// disconnect.
func (s *Scheduler) ReapOwner(owner string) {
	ids := s.store.RemoveOwned(owner)
	if len(ids) == 0 {
		return
	}
	changes := make([]Snapshot, len(ids))
	for i, id := range ids {
		changes[i] = Snapshot{Id: id, Owner: owner, State: StateRemoved}
	}
	s.notify(changes)
	s.Kick()
}

// List returns all entries in scheduling order.
func (s *Scheduler) List() []Snapshot {
	return s.store.List()
}

// Evaluate recomputes every entry's state from the current conditions and
// commits the result as one transaction. The committed diff is passed to
// the notify callback; an evaluation that changes nothing notifies
// nothing.
func (s *Scheduler) Evaluate() []Snapshot {
	s.mu.Lock()
	allowed := s.capacityPermitsLocked()
	connected := s.conditions.Connected
	s.mu.Unlock()

	states := make(map[string]State)
	for _, e := range s.store.List() {
		switch {
		case !connected, !allowed, len(e.Holds) > 0:
			states[e.Id] = StateInactive
		default:
			states[e.Id] = StateActive
		}
	}

	s.store.mu.Lock()
	changed := s.store.apply(states)
	s.store.mu.Unlock()

	if len(changed) > 0 {
		s.log.Info("Schedule changed: %d entries transitioned", len(changed))
		s.notify(changed)
	}
	return changed
}

// capacityPermitsLocked reports whether the tariff leaves headroom for
// transfers right now. Callers must hold mu. It also rolls the usage
// counter over when a new period instance has begun.
func (s *Scheduler) capacityPermitsLocked() bool {
	t := s.conditions.Tariff
	if t == nil {
		return true
	}
	p, iv, ok := t.LookupPeriod(s.clock.Now())
	if !ok {
		// An instant in a gap between periods is unconstrained.
		return true
	}
	if !iv.Start.Equal(s.usageStart) {
		s.usageStart = iv.Start
		s.usageBytes = 0
	}
	if p.Unlimited() {
		return true
	}
	return s.usageBytes < p.CapacityLimit()
}
