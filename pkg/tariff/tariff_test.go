package tariff

import (
	"testing"
	"time"
)

func buildTariff(t *testing.T, name string, periods ...*Period) *Tariff {
	t.Helper()
	b := NewBuilder().SetName(name)
	for _, p := range periods {
		b.AddPeriod(p)
	}
	tf, err := b.Tariff()
	if err != nil {
		t.Fatalf("building tariff: %v", err)
	}
	return tf
}

func TestBuilderValidation(t *testing.T) {
	if _, err := NewBuilder().SetName("empty").Tariff(); err == nil {
		t.Error("tariff without periods should be rejected")
	}

	p := mustPeriod(t,
		date(2026, time.January, 1, 0, 0), date(2026, time.February, 1, 0, 0),
		RecurNone, 0, CapacityUnlimited)

	for _, name := range []string{"", "a/b", "a\\b", "x\xff"} {
		if _, err := NewBuilder().SetName(name).AddPeriod(p).Tariff(); err == nil {
			t.Errorf("name %q should be rejected", name)
		}
	}

	if _, err := NewBuilder().SetName("tärîff ✓").AddPeriod(p).Tariff(); err != nil {
		t.Errorf("unicode name rejected: %v", err)
	}
}

func TestLookupFirstMatchWins(t *testing.T) {
	// An all-of-January period and a nested mid-January period, in both
	// storage orders. Whichever is stored first must win.
	wide := mustPeriod(t,
		date(2026, time.January, 1, 0, 0), date(2026, time.February, 1, 0, 0),
		RecurNone, 0, 1e9)
	narrow := mustPeriod(t,
		date(2026, time.January, 10, 0, 0), date(2026, time.January, 20, 0, 0),
		RecurNone, 0, 2e6)

	when := date(2026, time.January, 15, 12, 0)

	tf := buildTariff(t, "wide-first", wide, narrow)
	p, _, ok := tf.LookupPeriod(when)
	if !ok || p != wide {
		t.Errorf("wide-first lookup matched %v, want wide period", p)
	}

	tf = buildTariff(t, "narrow-first", narrow, wide)
	p, iv, ok := tf.LookupPeriod(when)
	if !ok || p != narrow {
		t.Errorf("narrow-first lookup matched %v, want narrow period", p)
	}
	if !iv.Start.Equal(narrow.Start()) || !iv.End.Equal(narrow.End()) {
		t.Errorf("matched interval %v, want narrow period bounds", iv)
	}
}

func TestLookupGap(t *testing.T) {
	p := mustPeriod(t,
		date(2026, time.January, 1, 0, 0), date(2026, time.January, 2, 0, 0),
		RecurWeek, 1, CapacityUnlimited)
	tf := buildTariff(t, "gappy", p)

	if _, _, ok := tf.LookupPeriod(date(2026, time.January, 5, 0, 0)); ok {
		t.Error("instant in the gap between instances should not match")
	}
}

func TestNextTransition(t *testing.T) {
	// Weekly period [Jan 1, Jan 2) and a one-shot [Jan 4, Jan 5).
	weekly := mustPeriod(t,
		date(2026, time.January, 1, 0, 0), date(2026, time.January, 2, 0, 0),
		RecurWeek, 1, CapacityUnlimited)
	once := mustPeriod(t,
		date(2026, time.January, 4, 0, 0), date(2026, time.January, 5, 0, 0),
		RecurNone, 0, 5e6)
	tf := buildTariff(t, "transitions", weekly, once)

	cases := []struct {
		when time.Time
		want time.Time
	}{
		// Inside the weekly instance: its end comes first.
		{date(2026, time.January, 1, 12, 0), date(2026, time.January, 2, 0, 0)},
		// In the gap: the one-shot's start comes before the next weekly.
		{date(2026, time.January, 3, 0, 0), date(2026, time.January, 4, 0, 0)},
		// Inside the one-shot: its end.
		{date(2026, time.January, 4, 12, 0), date(2026, time.January, 5, 0, 0)},
		// After the one-shot: only the weekly family remains.
		{date(2026, time.January, 6, 0, 0), date(2026, time.January, 8, 0, 0)},
	}
	for _, tc := range cases {
		got, ok := tf.NextTransition(tc.when)
		if !ok {
			t.Errorf("NextTransition(%v): no transition, want %v", tc.when, tc.want)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("NextTransition(%v) = %v, want %v", tc.when, got, tc.want)
		}
	}
}

func TestNextTransitionExhausted(t *testing.T) {
	once := mustPeriod(t,
		date(2026, time.January, 4, 0, 0), date(2026, time.January, 5, 0, 0),
		RecurNone, 0, CapacityUnlimited)
	tf := buildTariff(t, "one-shot", once)

	if _, ok := tf.NextTransition(date(2026, time.June, 1, 0, 0)); ok {
		t.Error("no transitions should remain after the only instance ends")
	}
}
