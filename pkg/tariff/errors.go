package tariff

import "fmt"

// ValidationError reports malformed tariff or period input. It is returned
// at construction time; invalid values are never silently coerced.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid tariff: " + e.Reason
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ParseError reports a corrupt or truncated persisted tariff. Callers are
// expected to fall back to "no tariff" when loading fails.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "error parsing tariff: " + e.Reason + ": " + e.Err.Error()
	}
	return "error parsing tariff: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func parseErrorf(err error, format string, args ...interface{}) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...), Err: err}
}
