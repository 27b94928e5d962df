package tariff

import (
	"math"
	"time"
)

// Recurrence is the rule by which a period repeats. It is a closed set:
// the zero value means the period happens exactly once.
type Recurrence uint8

const (
	RecurNone Recurrence = iota
	RecurDay
	RecurWeek
	RecurMonth
	RecurYear
)

// recurrenceNames is indexed by Recurrence and used both for CLI parsing
// and for the dump rendering unit names.
var recurrenceNames = [...]string{"none", "day", "week", "month", "year"}

func (r Recurrence) valid() bool {
	return r <= RecurYear
}

func (r Recurrence) String() string {
	if !r.valid() {
		return "unknown"
	}
	return recurrenceNames[r]
}

// ParseRecurrence maps the CLI spelling of a recurrence kind to its value.
func ParseRecurrence(s string) (Recurrence, error) {
	for i, name := range recurrenceNames {
		if s == name {
			return Recurrence(i), nil
		}
	}
	return RecurNone, validationErrorf("unknown repeat type '%s'", s)
}

// maxSpan is an upper bound on the real-time length of one recurrence
// unit, used to jump close to the right instance before stepping. The
// month and year bounds carry slack for long months and leap years.
func (r Recurrence) maxSpan() time.Duration {
	switch r {
	case RecurDay:
		return 24 * time.Hour
	case RecurWeek:
		return 7 * 24 * time.Hour
	case RecurMonth:
		return 32 * 24 * time.Hour
	case RecurYear:
		return 367 * 24 * time.Hour
	default:
		return 0
	}
}

// CapacityUnlimited is the sentinel capacity meaning no data volume limit
// applies within the period.
const CapacityUnlimited uint64 = math.MaxUint64

// maxYear bounds recurrence expansion; instances beyond it are treated as
// nonexistent.
const maxYear = 9999

// Interval is one concrete instance of a period: [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Period is one scheduling window of a tariff. The start and end instants
// carry fixed UTC offsets which are preserved verbatim through
// serialisation: tariffs are anchored to local wall-clock billing
// boundaries, not to UTC.
type Period struct {
	start      time.Time
	end        time.Time
	recurrence Recurrence
	multiple   uint32
	capacity   uint64
}

// ValidatePeriod checks the period invariants: start must precede end, the
// recurrence kind must be known, and a recurrence multiple must be present
// exactly when the period recurs.
func ValidatePeriod(start, end time.Time, rec Recurrence, multiple uint32) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return validationErrorf("invalid start/end times for period")
	}
	if !rec.valid() {
		return validationErrorf("invalid repeat type for period")
	}
	if (rec == RecurNone) != (multiple == 0) {
		return validationErrorf("invalid repeat properties for period")
	}
	return nil
}

// NewPeriod validates the given properties and constructs a Period.
// Pass CapacityUnlimited for periods without a volume limit.
func NewPeriod(start, end time.Time, rec Recurrence, multiple uint32, capacity uint64) (*Period, error) {
	if err := ValidatePeriod(start, end, rec, multiple); err != nil {
		return nil, err
	}
	return &Period{
		start:      start,
		end:        end,
		recurrence: rec,
		multiple:   multiple,
		capacity:   capacity,
	}, nil
}

// Start returns the start instant (inclusive) of the base instance.
func (p *Period) Start() time.Time { return p.start }

// End returns the end instant (exclusive) of the base instance.
func (p *Period) End() time.Time { return p.end }

// Recurrence returns the recurrence kind.
func (p *Period) Recurrence() Recurrence { return p.recurrence }

// Multiple returns the recurrence multiple N ("repeats every N units");
// zero when the period does not recur.
func (p *Period) Multiple() uint32 { return p.multiple }

// CapacityLimit returns the data volume limit in bytes for one instance of
// the period, or CapacityUnlimited.
func (p *Period) CapacityLimit() uint64 { return p.capacity }

// Unlimited reports whether the period has no capacity limit.
func (p *Period) Unlimited() bool { return p.capacity == CapacityUnlimited }

// instance returns the k-th instance of the period family. Both bounds are
// always derived from the base instants, never from a previous instance:
// calendar addition is not transitive across month-length boundaries, so
// stepping from instance to instance would compound rollover errors.
func (p *Period) instance(k uint64) Interval {
	if k == 0 || p.recurrence == RecurNone {
		return Interval{Start: p.start, End: p.end}
	}
	n := int(k * uint64(p.multiple))
	var start, end time.Time
	switch p.recurrence {
	case RecurDay:
		start = p.start.AddDate(0, 0, n)
		end = p.end.AddDate(0, 0, n)
	case RecurWeek:
		start = p.start.AddDate(0, 0, 7*n)
		end = p.end.AddDate(0, 0, 7*n)
	case RecurMonth:
		start = p.start.AddDate(0, n, 0)
		end = p.end.AddDate(0, n, 0)
	case RecurYear:
		start = p.start.AddDate(n, 0, 0)
		end = p.end.AddDate(n, 0, 0)
	}
	return Interval{Start: start, End: end}
}

// latestInstanceAt returns the instance with the greatest index whose start
// is at or before when, together with its index. It requires
// when >= p.start.
func (p *Period) latestInstanceAt(when time.Time) (Interval, uint64) {
	if p.recurrence == RecurNone {
		return Interval{Start: p.start, End: p.end}, 0
	}
	// Lower bound on the instance index: elapsed time divided by an upper
	// bound on the instance spacing can only undershoot.
	elapsed := when.Sub(p.start)
	k := uint64(elapsed/p.recurrence.maxSpan()) / uint64(p.multiple)
	iv := p.instance(k)
	for {
		next := p.instance(k + 1)
		if next.Start.After(when) {
			return iv, k
		}
		k++
		iv = next
	}
}

// Contains reports whether when falls within any instance of the period
// family, and returns that instance. Only the instance whose start is at
// or before when is probed: period families may have gaps, and neighbouring
// instances never need testing because instance starts increase
// monotonically with the index.
func (p *Period) Contains(when time.Time) (Interval, bool) {
	if when.Before(p.start) {
		return Interval{}, false
	}
	iv, _ := p.latestInstanceAt(when)
	if !iv.Start.After(when) && when.Before(iv.End) {
		return iv, true
	}
	return Interval{}, false
}

// NextInstance returns the first instance whose start is strictly after
// the given instant. The second return is false when the period does not
// recur and its only instance has already started, or when the next
// instance would exceed the supported calendar range.
func (p *Period) NextInstance(after time.Time) (Interval, bool) {
	if p.start.After(after) {
		return Interval{Start: p.start, End: p.end}, true
	}
	if p.recurrence == RecurNone {
		return Interval{}, false
	}
	_, k := p.latestInstanceAt(after)
	next := p.instance(k + 1)
	if next.Start.Year() > maxYear {
		return Interval{}, false
	}
	return next, true
}
