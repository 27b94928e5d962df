package tariff

// Builder accumulates the properties of a tariff and constructs an
// immutable Tariff. Periods are kept in insertion order; that order is the
// lookup precedence.
type Builder struct {
	name    string
	periods []*Period
	err     error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// SetName sets the tariff name. An invalid name is recorded and reported
// by Tariff.
func (b *Builder) SetName(name string) *Builder {
	if b.err == nil {
		b.err = ValidateName(name)
	}
	if b.err == nil {
		b.name = name
	}
	return b
}

// AddPeriod appends a period to the tariff. Earlier periods take
// precedence in lookups.
func (b *Builder) AddPeriod(p *Period) *Builder {
	if b.err == nil && p == nil {
		b.err = validationErrorf("nil period")
	}
	if b.err == nil {
		b.periods = append(b.periods, p)
	}
	return b
}

// Tariff constructs the tariff, reporting the first error encountered
// while building. A tariff must have a valid name and at least one period.
func (b *Builder) Tariff() (*Tariff, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.name == "" {
		return nil, validationErrorf("tariff name must be non-empty")
	}
	if len(b.periods) == 0 {
		return nil, validationErrorf("tariff must have at least one period")
	}
	periods := make([]*Period, len(b.periods))
	copy(periods, b.periods)
	return &Tariff{name: b.name, periods: periods}, nil
}
