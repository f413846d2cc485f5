package util

import "time"

// MonthLayout is the calendar key used for monthly observations ("2006-01").
const MonthLayout = "2006-01"

// DateLayout is the full date format used by the FRED API.
const DateLayout = "2006-01-02"

// MonthKey formats t as a month-granularity calendar key.
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// ParseMonth parses a "YYYY-MM" key. Returns (t, true) if it parsed.
func ParseMonth(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDate parses a "YYYY-MM-DD" date. Returns (t, true) if it parsed.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// AddMonths shifts t by n calendar months, pinned to the first of the month
// so repeated shifts never drift on short months.
func AddMonths(t time.Time, n int) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
}

// FetchRange returns the observation window [now-(monthsBack+1) months, now].
// One extra month so the oldest visible cell still has a predecessor.
func FetchRange(now time.Time, monthsBack int) (time.Time, time.Time) {
	return AddMonths(now, -(monthsBack + 1)), now.UTC()
}
