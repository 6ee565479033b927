package analytics

import (
	"math"
	"time"

	"hrdesk/pkg/domain"
)

// NextPayday computes the payday schedule relative to now. Weekly pays on
// Fridays, biweekly on the 15th and the last day of the month, monthly on
// the last day. A payday falling on today counts as the next payday.
// Unknown frequencies use the biweekly schedule.
func NextPayday(now time.Time, frequency domain.PayFrequency) domain.PaydayInfo {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !frequency.Valid() {
		frequency = domain.PayBiweekly
	}

	var next, last time.Time
	switch frequency {
	case domain.PayWeekly:
		offset := (int(time.Friday) - int(today.Weekday()) + 7) % 7
		next = today.AddDate(0, 0, offset)
		last = next.AddDate(0, 0, -7)
	case domain.PayMonthly:
		next = endOfMonth(today)
		last = endOfMonth(firstOfMonth(today).AddDate(0, 0, -1))
	default:
		mid := time.Date(today.Year(), today.Month(), 15, 0, 0, 0, 0, today.Location())
		if !today.After(mid) {
			next = mid
			last = endOfMonth(firstOfMonth(today).AddDate(0, 0, -1))
		} else {
			next = endOfMonth(today)
			last = mid
		}
	}

	days := int(math.Round(next.Sub(today).Hours() / 24))
	hours := int(math.Ceil(next.Sub(now).Hours()))
	if hours < 0 {
		hours = 0
	}
	return domain.PaydayInfo{
		NextPayday:     domain.FormatDate(next),
		LastPayday:     domain.FormatDate(last),
		Frequency:      frequency,
		DaysRemaining:  days,
		HoursRemaining: hours,
	}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return firstOfMonth(t).AddDate(0, 1, -1)
}
