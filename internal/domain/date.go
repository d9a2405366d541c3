package domain

import "time"

// DateLayout is the calendar-day format used in records and the API.
const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
// Paths are timezone-naive: every date comparison goes through Day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddWeeks moves a calendar day by n weeks.
func AddWeeks(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, 7*n)
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// WholeWeeksBetween floors DaysBetween to weeks.
func WholeWeeksBetween(a, b time.Time) int {
	days := DaysBetween(a, b)
	if days < 0 {
		return 0
	}
	return days / 7
}

// ParseDay parses a DateLayout string into a calendar day.
func ParseDay(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}
