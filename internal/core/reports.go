package core

import (
	"context"

	"hrdesk/internal/analytics"
	"hrdesk/pkg/domain"
)

// PerformanceWindowDays is the look-back of GetEmployeePerformance.
const PerformanceWindowDays = 30

// GetAttendanceStats computes the dashboard statistics for date, today
// when empty. The result is cached on the model but always recomputed.
func (s *Service) GetAttendanceStats(ctx context.Context, date string) (domain.AttendanceStats, error) {
	if date == "" {
		date = s.today()
	}
	var out domain.AttendanceStats
	err := s.observe(ctx, "get_attendance_stats", func(ctx context.Context) error {
		return s.view(ctx, func(v domain.TransactionView) error {
			out = analytics.AttendanceStats(v.ListEmployees(), v.ListAttendanceRecords(), date)
			return nil
		})
	})
	if err == nil && domain.ValidDate(date) {
		s.store.CacheStats(date, out)
	}
	return out, err
}

// GetEmployeePerformance summarises attendance over the last
// PerformanceWindowDays days for one employee, or for all when id is empty.
func (s *Service) GetEmployeePerformance(ctx context.Context, id string) ([]domain.PerformanceMetric, error) {
	now := s.clock.Now()
	from := domain.FormatDate(now.AddDate(0, 0, -(PerformanceWindowDays - 1)))
	to := domain.FormatDate(now)
	var out []domain.PerformanceMetric
	err := s.observe(ctx, "get_employee_performance", func(ctx context.Context) error {
		return s.view(ctx, func(v domain.TransactionView) error {
			employees := v.ListEmployees()
			if id != "" {
				e, ok := v.FindEmployee(id)
				if !ok {
					return notFound(domain.EntityEmployee, id)
				}
				employees = []domain.Employee{e}
			}
			out = analytics.Performance(employees, v.ListAttendanceRecords(), from, to, v.Settings().Payroll.StandardHours)
			return nil
		})
	})
	return out, err
}

// GetNextPayday reports the payday schedule for the configured frequency.
func (s *Service) GetNextPayday(ctx context.Context) (domain.PaydayInfo, error) {
	var out domain.PaydayInfo
	err := s.observe(ctx, "get_next_payday", func(ctx context.Context) error {
		return s.view(ctx, func(v domain.TransactionView) error {
			out = analytics.NextPayday(s.clock.Now(), v.Settings().Payroll.PayFrequency)
			return nil
		})
	})
	return out, err
}

// GetCalendarLevels returns per-day attendance levels for [from, to].
func (s *Service) GetCalendarLevels(ctx context.Context, from, to string) ([]domain.CalendarDay, error) {
	var out []domain.CalendarDay
	err := s.observe(ctx, "get_calendar_levels", func(ctx context.Context) error {
		return s.view(ctx, func(v domain.TransactionView) error {
			out = analytics.CalendarLevels(v.ListEmployees(), v.ListAttendanceRecords(), from, to)
			return nil
		})
	})
	if out == nil {
		out = []domain.CalendarDay{}
	}
	return out, err
}
