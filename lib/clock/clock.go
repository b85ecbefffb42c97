package clock

import "time"

func Now() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// MonthRange returns the bounds of a calendar month in server-local time:
// the first instant of the month and the first instant of the next month.
// Month is 1-based.
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 1, 0)
}
