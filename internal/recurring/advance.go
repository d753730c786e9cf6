package recurring

import (
	"time"

	invoicedomain "github.com/smallbiznis/bizledger/internal/invoice/domain"
)

// Advance returns the next due date for a recurring cadence. Month and
// year arithmetic clamps day-of-month overflow (Jan 31 + 1 month lands
// on the last day of February, not March 3).
func Advance(t time.Time, frequency invoicedomain.RecurringFrequency) (time.Time, error) {
	switch frequency {
	case invoicedomain.FrequencyWeekly:
		return t.AddDate(0, 0, 7), nil
	case invoicedomain.FrequencyMonthly:
		return addMonthsClamped(t, 1), nil
	case invoicedomain.FrequencyQuarterly:
		return addMonthsClamped(t, 3), nil
	case invoicedomain.FrequencyYearly:
		return addMonthsClamped(t, 12), nil
	}
	return time.Time{}, invoicedomain.ErrInvalidFrequency
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	// Anchor on the first of the month so AddDate cannot roll over.
	anchor := time.Date(year, month, 1, hour, minute, sec, t.Nanosecond(), t.Location()).AddDate(0, months, 0)
	if last := daysIn(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
