package tariff

import (
	"strings"
	"testing"
	"time"
)

func TestFormatInstantOffsets(t *testing.T) {
	cases := []struct {
		offset int // seconds
		want   string
	}{
		{0, "2026-01-01T22:00:00+00"},
		{-3600, "2026-01-01T22:00:00-01"},
		{1800, "2026-01-01T22:00:00+00:30"},
		{5*3600 + 30*60, "2026-01-01T22:00:00+05:30"},
		{-(9*3600 + 30*60), "2026-01-01T22:00:00-09:30"},
		{5*3600 + 30*60 + 30, "2026-01-01T22:00:00+05:30:30"},
		{-(3600 + 15), "2026-01-01T22:00:00-01:00:15"},
		{45, "2026-01-01T22:00:00+00:00:45"},
	}
	for _, tc := range cases {
		instant := time.Date(2026, time.January, 1, 22, 0, 0, 0, time.FixedZone("", tc.offset))
		if got := FormatInstant(instant); got != tc.want {
			t.Errorf("FormatInstant(offset %d) = %q, want %q", tc.offset, got, tc.want)
		}
	}
}

func TestFormatCapacity(t *testing.T) {
	cases := []struct {
		capacity uint64
		want     string
	}{
		{CapacityUnlimited, "unlimited"},
		{0, "0 bytes (0 bytes)"},
		{500, "500 bytes (500 bytes)"},
		{999, "999 bytes (999 bytes)"},
		{1000, "1.0 kB (1,000 bytes)"},
		{15000000, "15.0 MB (15,000,000 bytes)"},
		{2500000000, "2.5 GB (2,500,000,000 bytes)"},
		{3200000000000, "3.2 TB (3,200,000,000,000 bytes)"},
	}
	for _, tc := range cases {
		if got := FormatCapacity(tc.capacity); got != tc.want {
			t.Errorf("FormatCapacity(%d) = %q, want %q", tc.capacity, got, tc.want)
		}
	}
}

func TestFormatPeriod(t *testing.T) {
	p := mustPeriod(t,
		date(2026, time.January, 1, 22, 0), date(2026, time.January, 2, 6, 0),
		RecurDay, 1, 15000000)
	want := "Period 2026-01-01T22:00:00+00 – 2026-01-02T06:00:00+00:\n" +
		" • Repeats every 1 day\n" +
		" • Capacity limit: 15.0 MB (15,000,000 bytes)\n"
	if got := FormatPeriod(p); got != want {
		t.Errorf("FormatPeriod =\n%q\nwant\n%q", got, want)
	}

	p = mustPeriod(t,
		date(2026, time.March, 1, 0, 0), date(2026, time.March, 2, 0, 0),
		RecurYear, 2, CapacityUnlimited)
	want = "Period 2026-03-01T00:00:00+00 – 2026-03-02T00:00:00+00:\n" +
		" • Repeats every 2 years\n" +
		" • Capacity limit: unlimited\n"
	if got := FormatPeriod(p); got != want {
		t.Errorf("FormatPeriod =\n%q\nwant\n%q", got, want)
	}

	p = mustPeriod(t,
		date(2026, time.March, 1, 0, 0), date(2026, time.March, 2, 0, 0),
		RecurNone, 0, 500)
	got := FormatPeriod(p)
	if !strings.Contains(got, " • Never repeats\n") {
		t.Errorf("missing never-repeats line in %q", got)
	}
	if !strings.Contains(got, " • Capacity limit: 500 bytes (500 bytes)\n") {
		t.Errorf("missing sub-kB capacity line in %q", got)
	}
}

func TestFormatTariff(t *testing.T) {
	nightly := mustPeriod(t,
		date(2026, time.January, 1, 22, 0), date(2026, time.January, 2, 6, 0),
		RecurDay, 1, 15000000)
	oneOff := mustPeriod(t,
		date(2026, time.March, 1, 0, 0), date(2026, time.March, 2, 0, 0),
		RecurNone, 0, CapacityUnlimited)
	tf := buildTariff(t, "off-peak", nightly, oneOff)

	got := FormatTariff(tf)
	lines := strings.Split(got, "\n")
	if lines[0] != "Tariff 'off-peak'" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != strings.Repeat("-", len("Tariff 'off-peak'")) {
		t.Errorf("underline = %q", lines[1])
	}
	if lines[2] != "" {
		t.Errorf("expected blank line after header, got %q", lines[2])
	}
	if strings.Count(got, "Period ") != 2 {
		t.Errorf("expected two period blocks in %q", got)
	}
	// Blocks appear in storage order.
	if strings.Index(got, "Repeats every 1 day") > strings.Index(got, "Never repeats") {
		t.Error("period blocks out of storage order")
	}
}

func TestFormatTariffUnicodeHeader(t *testing.T) {
	p := mustPeriod(t,
		date(2026, time.January, 1, 0, 0), date(2026, time.January, 2, 0, 0),
		RecurNone, 0, CapacityUnlimited)
	tf := buildTariff(t, "tärîff", p)

	lines := strings.Split(FormatTariff(tf), "\n")
	// The underline matches the display width, not the byte length.
	if len(lines[1]) != len([]rune(lines[0])) {
		t.Errorf("underline length %d, header rune count %d", len(lines[1]), len([]rune(lines[0])))
	}
}

func TestParseInstant(t *testing.T) {
	cases := []struct {
		in   string
		unix int64
		off  int
	}{
		{"2026-01-01T22:00:00Z", 1767304800, 0},
		{"2026-01-01T22:00:00+05:30", 1767304800 - (5*3600 + 30*60), 5*3600 + 30*60},
		{"2026-01-01T22:00:00-01", 1767304800 + 3600, -3600},
		{"2026-01-01T22:00:00+0030", 1767304800 - 1800, 1800},
	}
	for _, tc := range cases {
		got, err := ParseInstant(tc.in)
		if err != nil {
			t.Errorf("ParseInstant(%q): %v", tc.in, err)
			continue
		}
		if got.Unix() != tc.unix {
			t.Errorf("ParseInstant(%q).Unix() = %d, want %d", tc.in, got.Unix(), tc.unix)
		}
		if _, off := got.Zone(); off != tc.off {
			t.Errorf("ParseInstant(%q) offset = %d, want %d", tc.in, off, tc.off)
		}
	}

	for _, in := range []string{"", "yesterday", "2026-13-01T00:00:00Z", "2026-01-01"} {
		if _, err := ParseInstant(in); err == nil {
			t.Errorf("ParseInstant(%q) should fail", in)
		}
	}
}
