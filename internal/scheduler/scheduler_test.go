package scheduler

import (
	"testing"
	"time"

	"github.com/shiftdl/shiftdl/pkg/logger"
	"github.com/shiftdl/shiftdl/pkg/tariff"
)

type recorder struct {
	batches [][]Snapshot
}

func (r *recorder) notify(changes []Snapshot) {
	r.batches = append(r.batches, changes)
}

func (r *recorder) all() []Snapshot {
	var out []Snapshot
	for _, b := range r.batches {
		out = append(out, b...)
	}
	return out
}

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *FixedClock, *recorder) {
	t.Helper()
	clock := &FixedClock{T: now}
	rec := &recorder{}
	s := New(logger.NewNopLogger(), clock, rec.notify)
	return s, clock, rec
}

func connectedConditions(tf *tariff.Tariff) Conditions {
	return Conditions{Connected: true, Tariff: tf}
}

func stateOf(t *testing.T, s *Scheduler, id string) State {
	t.Helper()
	snap, err := s.Store().Get(id)
	if err != nil {
		t.Fatalf("Get(%s): %v", id, err)
	}
	return snap.State
}

func TestEvaluateActivatesWhenConnected(t *testing.T) {
	s, _, rec := newTestScheduler(t, time.Now())
	s.SetConditions(Conditions{Connected: true})

	id := s.Submit("client-1", 0, true)
	if stateOf(t, s, id) != StateInactive {
		t.Error("entries must start inactive")
	}

	changed := s.Evaluate()
	if len(changed) != 1 || changed[0].Id != id || changed[0].State != StateActive {
		t.Fatalf("unexpected diff %+v", changed)
	}
	if stateOf(t, s, id) != StateActive {
		t.Error("entry not committed as active")
	}
	if len(rec.batches) != 1 {
		t.Errorf("notify batches = %d, want 1", len(rec.batches))
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	s, _, rec := newTestScheduler(t, time.Now())
	s.SetConditions(Conditions{Connected: true})
	s.Submit("client-1", 0, true)

	s.Evaluate()
	if changed := s.Evaluate(); len(changed) != 0 {
		t.Errorf("second evaluation produced diff %+v", changed)
	}
	if len(rec.batches) != 1 {
		t.Errorf("redundant evaluation notified: %d batches", len(rec.batches))
	}
}

func TestEvaluateNoConnection(t *testing.T) {
	s, _, _ := newTestScheduler(t, time.Now())
	s.SetConditions(Conditions{Connected: true})
	id := s.Submit("client-1", 5, false)
	s.Evaluate()

	s.SetConditions(Conditions{Connected: false})
	changed := s.Evaluate()
	if len(changed) != 1 || changed[0].State != StateInactive {
		t.Fatalf("unexpected diff %+v", changed)
	}
	if stateOf(t, s, id) != StateInactive {
		t.Error("entry should be inactive without a connection")
	}
}

func TestHoldsVetoActivation(t *testing.T) {
	s, _, _ := newTestScheduler(t, time.Now())
	s.SetConditions(Conditions{Connected: true})
	id := s.Submit("client-1", 0, true)
	s.Evaluate()
	if stateOf(t, s, id) != StateActive {
		t.Fatal("precondition: entry active")
	}

	if err := s.AddHold(id, "policy/battery"); err != nil {
		t.Fatalf("AddHold: %v", err)
	}
	s.Evaluate()
	if stateOf(t, s, id) != StateInactive {
		t.Error("held entry must be demoted")
	}

	if err := s.AddHold(id, "policy/battery"); err != ErrHoldExists {
		t.Errorf("duplicate hold error = %v, want ErrHoldExists", err)
	}

	if err := s.RemoveHold(id, "policy/battery"); err != nil {
		t.Fatalf("RemoveHold: %v", err)
	}
	s.Evaluate()
	if stateOf(t, s, id) != StateActive {
		t.Error("released entry must be re-promoted")
	}

	if err := s.RemoveHold(id, "policy/battery"); err != ErrHoldNotFound {
		t.Errorf("double release error = %v, want ErrHoldNotFound", err)
	}
}

func TestSchedulingOrder(t *testing.T) {
	s, _, _ := newTestScheduler(t, time.Now())
	s.SetConditions(Conditions{Connected: true})

	low := s.Submit("c", 1, true)
	highOld := s.Submit("c", 9, true)
	highNew := s.Submit("c", 9, true)

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("list length %d", len(list))
	}
	if list[0].Id != highOld || list[1].Id != highNew || list[2].Id != low {
		t.Errorf("order = %s, %s, %s; want high-old, high-new, low",
			list[0].Id, list[1].Id, list[2].Id)
	}

	// All eligible entries activate; the diff follows scheduling order.
	changed := s.Evaluate()
	if len(changed) != 3 {
		t.Fatalf("diff length %d", len(changed))
	}
	if changed[0].Id != highOld || changed[2].Id != low {
		t.Error("diff out of scheduling order")
	}
}

// capTariff has a single daily period over [22:00, 06:00) UTC with a
// 1000 byte capacity.
func capTariff(t *testing.T) *tariff.Tariff {
	t.Helper()
	p, err := tariff.NewPeriod(
		time.Date(2026, time.January, 1, 22, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 2, 6, 0, 0, 0, time.UTC),
		tariff.RecurDay, 1, 1000)
	if err != nil {
		t.Fatal(err)
	}
	tf, err := tariff.NewBuilder().SetName("night-cap").AddPeriod(p).Tariff()
	if err != nil {
		t.Fatal(err)
	}
	return tf
}

func TestCapacityExhaustion(t *testing.T) {
	inPeriod := time.Date(2026, time.January, 10, 23, 0, 0, 0, time.UTC)
	s, clock, _ := newTestScheduler(t, inPeriod)
	s.SetConditions(connectedConditions(capTariff(t)))
	id := s.Submit("client-1", 0, true)

	s.Evaluate()
	if stateOf(t, s, id) != StateActive {
		t.Fatal("entry should be active with headroom")
	}

	s.ReportUsage(id, 400)
	s.Evaluate()
	if stateOf(t, s, id) != StateActive {
		t.Error("entry should stay active below the limit")
	}

	s.ReportUsage(id, 600)
	s.Evaluate()
	if stateOf(t, s, id) != StateInactive {
		t.Error("entry must deactivate once the limit is reached")
	}

	// The next instance of the period starts with a fresh counter.
	clock.T = time.Date(2026, time.January, 11, 23, 0, 0, 0, time.UTC)
	s.Evaluate()
	if stateOf(t, s, id) != StateActive {
		t.Error("usage must reset at the next period instance")
	}
}

func TestUsageForUnknownEntryIgnored(t *testing.T) {
	inPeriod := time.Date(2026, time.January, 10, 23, 0, 0, 0, time.UTC)
	s, _, _ := newTestScheduler(t, inPeriod)
	s.SetConditions(connectedConditions(capTariff(t)))
	id := s.Submit("client-1", 0, true)
	s.Evaluate()

	s.ReportUsage("no-such-entry", 1_000_000)
	s.Evaluate()
	if stateOf(t, s, id) != StateActive {
		t.Error("usage for unknown entries must not count against capacity")
	}
}

func TestGapBetweenPeriodsIsUnconstrained(t *testing.T) {
	// Midday falls outside the nightly period entirely.
	midday := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
	s, _, _ := newTestScheduler(t, midday)
	s.SetConditions(connectedConditions(capTariff(t)))
	id := s.Submit("client-1", 0, true)

	s.Evaluate()
	if stateOf(t, s, id) != StateActive {
		t.Error("instants in tariff gaps are unconstrained")
	}
}

func TestRemoveNotifiesTerminalState(t *testing.T) {
	s, _, rec := newTestScheduler(t, time.Now())
	s.SetConditions(Conditions{Connected: true})
	id := s.Submit("client-1", 0, true)
	s.Evaluate()

	if err := s.Remove(id); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	var sawRemoved bool
	for _, c := range rec.all() {
		if c.Id == id && c.State == StateRemoved {
			sawRemoved = true
		}
	}
	if !sawRemoved {
		t.Error("watchers must see a terminal removed change")
	}
	if err := s.Remove(id); err != ErrEntryNotFound {
		t.Errorf("second remove error = %v, want ErrEntryNotFound", err)
	}
}

func TestReapOwner(t *testing.T) {
	s, _, rec := newTestScheduler(t, time.Now())
	s.SetConditions(Conditions{Connected: true})
	a := s.Submit("client-a", 0, true)
	b := s.Submit("client-b", 0, true)
	s.Evaluate()

	s.ReapOwner("client-a")
	if s.Store().Has(a) {
		t.Error("reaped owner's entry still present")
	}
	if !s.Store().Has(b) {
		t.Error("other owner's entry removed")
	}
	var sawRemoved bool
	for _, c := range rec.all() {
		if c.Id == a && c.State == StateRemoved {
			sawRemoved = true
		}
	}
	if !sawRemoved {
		t.Error("reap must notify a removed change")
	}
}
