package core

import "time"

// AddMonths advances a date by n whole calendar months, clamping the day
// to the last valid day of the target month (Jan 31 + 1 month is the last
// day of February, not March 2/3).
func AddMonths(d Date, n int) Date {
	year, month, day := d.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := lastDayOfMonth(first.Year(), first.Month())
	if day > last {
		day = last
	}
	return NewDate(first.Year(), first.Month(), day)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ExpandRecurrence produces the full monthly series for a base entry:
// the base itself plus count-1 copies advanced by one calendar month each.
// Copies share type, category, description and amount, and get a derived
// ID (base ID + offset), a shifted date and timestamp, IsRecurring=true
// and a 1-based series position. A count below 1 is treated as 1.
func ExpandRecurrence(base Transaction, count int) []Transaction {
	if count < 1 {
		count = 1
	}
	base.Recurrence = count
	base.RecurrenceIndex = 1
	base.IsRecurring = false

	out := make([]Transaction, 0, count)
	out = append(out, base)

	clock := time.UnixMilli(base.Timestamp).UTC()
	for i := 1; i < count; i++ {
		copy := base
		copy.ID = base.ID + int64(i)
		copy.Date = AddMonths(base.Date, i)
		shifted := time.Date(
			copy.Date.Year(), copy.Date.Month(), copy.Date.Day(),
			clock.Hour(), clock.Minute(), clock.Second(), 0, time.UTC,
		)
		copy.Timestamp = shifted.UnixMilli()
		copy.IsRecurring = true
		copy.RecurrenceIndex = i + 1
		out = append(out, copy)
	}
	return out
}
