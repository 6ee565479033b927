package analytics

import (
	"hrdesk/pkg/domain"
)

// Level thresholds.
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.6
)

// Level buckets an attendance rate.
func Level(rate float64) domain.AttendanceLevel {
	switch {
	case rate >= HighThreshold:
		return domain.LevelHigh
	case rate >= MediumThreshold:
		return domain.LevelMedium
	case rate > 0:
		return domain.LevelLow
	default:
		return domain.LevelNone
	}
}

// maxCalendarDays bounds CalendarLevels so a reversed or absurd range
// cannot allocate without limit.
const maxCalendarDays = 366

// CalendarLevels returns the attendance level of every day in [from, to].
// Malformed or reversed ranges yield nil.
func CalendarLevels(employees []domain.Employee, records []domain.AttendanceRecord, from, to string) []domain.CalendarDay {
	start, err := domain.ParseDate(from)
	if err != nil {
		return nil
	}
	end, err := domain.ParseDate(to)
	if err != nil || end.Before(start) {
		return nil
	}
	idx := newDayIndex(employees, records)
	var out []domain.CalendarDay
	for d := start; !d.After(end) && len(out) < maxCalendarDays; d = d.AddDate(0, 0, 1) {
		summary := idx.summary(domain.FormatDate(d))
		out = append(out, domain.CalendarDay{
			Date:           summary.Date,
			AttendanceRate: summary.AttendanceRate,
			Level:          Level(summary.AttendanceRate),
		})
	}
	return out
}
