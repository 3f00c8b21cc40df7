package util

import (
	"time"
)

const isoDate = "2006-01-02"

// ParseISODate parses a YYYY-MM-DD date. Returns (t, true) if it parsed.
func ParseISODate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatISODate renders a time as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(isoDate)
}

// FiscalYearOf extracts the fiscal year from a provider fiscal period end
// date ("2024-09-28" -> 2024). Returns (0, false) when the prefix is not a
// plausible year.
func FiscalYearOf(fiscalDateEnding string) (int, bool) {
	t, ok := ParseISODate(fiscalDateEnding)
	if !ok {
		return 0, false
	}
	y := t.Year()
	if y < 1900 || y > 2200 {
		return 0, false
	}
	return y, true
}
