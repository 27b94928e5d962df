package tariff

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// ParseInstant parses a CLI-supplied instant. Any offset present is
// preserved as a fixed zone; offsets may omit minutes ("+01") or the
// colon ("+0130").
func ParseInstant(s string) (time.Time, error) {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05Z07",
		"2006-01-02T15:04:05Z0700",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("invalid date/time '%s': %w", s, lastErr)
}

// FormatInstant renders an instant for dump output, with the UTC offset in
// hours and appending minutes (and seconds) only when the offset needs
// them: +00, -01, +05:30, +05:30:30.
func FormatInstant(t time.Time) string {
	_, off := t.Zone()
	sign := "+"
	if off < 0 {
		sign = "-"
		off = -off
	}
	h, m, sec := off/3600, (off%3600)/60, off%60
	zone := fmt.Sprintf("%s%02d", sign, h)
	if m != 0 || sec != 0 {
		zone += fmt.Sprintf(":%02d", m)
	}
	if sec != 0 {
		zone += fmt.Sprintf(":%02d", sec)
	}
	return t.Format("2006-01-02T15:04:05") + zone
}

// siUnits covers the full range of a uint64 byte count.
var siUnits = []struct {
	factor uint64
	name   string
}{
	{1e18, "EB"},
	{1e15, "PB"},
	{1e12, "TB"},
	{1e9, "GB"},
	{1e6, "MB"},
	{1e3, "kB"},
}

// FormatCapacity renders a capacity limit for dump output: a scaled figure
// with the exact comma-grouped byte count in parentheses. Values below
// 1 kB scale to whole bytes.
func FormatCapacity(capacity uint64) string {
	if capacity == CapacityUnlimited {
		return "unlimited"
	}
	for _, u := range siUnits {
		if capacity >= u.factor {
			return fmt.Sprintf("%.1f %s (%s bytes)",
				float64(capacity)/float64(u.factor), u.name,
				humanize.Comma(int64(capacity)))
		}
	}
	return fmt.Sprintf("%d bytes (%s bytes)", capacity, humanize.Comma(int64(capacity)))
}

// FormatPeriod renders one period as dump lines, each terminated by a
// newline.
func FormatPeriod(p *Period) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Period %s – %s:\n", FormatInstant(p.start), FormatInstant(p.end))
	switch {
	case p.recurrence == RecurNone:
		sb.WriteString(" • Never repeats\n")
	case p.multiple == 1:
		fmt.Fprintf(&sb, " • Repeats every %d %s\n", p.multiple, p.recurrence)
	default:
		fmt.Fprintf(&sb, " • Repeats every %d %ss\n", p.multiple, p.recurrence)
	}
	fmt.Fprintf(&sb, " • Capacity limit: %s\n", FormatCapacity(p.capacity))
	return sb.String()
}

// FormatTariff renders the whole tariff for the dump command: an
// underlined header followed by one block per period in storage order.
func FormatTariff(t *Tariff) string {
	var sb strings.Builder
	header := fmt.Sprintf("Tariff '%s'", t.name)
	sb.WriteString(header)
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat("-", utf8.RuneCountInString(header)))
	sb.WriteString("\n\n")
	for i, p := range t.periods {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(FormatPeriod(p))
	}
	return sb.String()
}
