package tariff

import (
	"time"
	"unicode/utf8"
)

// Tariff is a named, ordered collection of periods. Period order is the
// lookup order: the first period containing an instant wins. Tariffs are
// immutable once built; construct them with a Builder.
type Tariff struct {
	name    string
	periods []*Period
}

// ValidateName checks that name is usable as a tariff identifier: it must
// be non-empty, valid UTF-8, and free of path separators so it can safely
// appear in file names.
func ValidateName(name string) error {
	if name == "" {
		return validationErrorf("tariff name must be non-empty")
	}
	if !utf8.ValidString(name) {
		return validationErrorf("tariff name must be valid UTF-8")
	}
	for _, r := range name {
		if r == '/' || r == '\\' {
			return validationErrorf("tariff name must not contain path separators")
		}
	}
	return nil
}

// Name returns the tariff's identifier.
func (t *Tariff) Name() string { return t.name }

// Periods returns the tariff's periods in storage order. The returned
// slice must not be modified.
func (t *Tariff) Periods() []*Period { return t.periods }

// LookupPeriod returns the first period, in storage order, with an
// instance containing when, together with that instance. It returns
// (nil, Interval{}, false) when no period matches.
func (t *Tariff) LookupPeriod(when time.Time) (*Period, Interval, bool) {
	for _, p := range t.periods {
		if iv, ok := p.Contains(when); ok {
			return p, iv, true
		}
	}
	return nil, Interval{}, false
}

// NextTransition returns the earliest instant strictly after when at which
// the result of LookupPeriod could change: the nearest upcoming instance
// start or instance end across all periods. It returns false when no
// further transitions exist.
//
// Transitions are a superset of actual changes: an instance boundary of a
// lower-priority period may leave the lookup result untouched. Callers
// re-evaluate at each transition rather than predicting the outcome.
func (t *Tariff) NextTransition(when time.Time) (time.Time, bool) {
	var next time.Time
	consider := func(c time.Time) {
		if !c.After(when) {
			return
		}
		if next.IsZero() || c.Before(next) {
			next = c
		}
	}
	for _, p := range t.periods {
		if iv, ok := p.Contains(when); ok {
			consider(iv.End)
		}
		if iv, ok := p.NextInstance(when); ok {
			consider(iv.Start)
			consider(iv.End)
		}
	}
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}
