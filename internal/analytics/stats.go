// Package analytics derives statistics from employees and attendance
// records. Every function is pure: callers pass the collections in and
// persist nothing.
package analytics

import (
	"sort"
	"strings"

	"hrdesk/pkg/domain"
)

// UnassignedDepartment groups employees without a department.
const UnassignedDepartment = "Unassigned"

// IssueThreshold is the department rate under which a department is
// reported as having issues.
const IssueThreshold = 0.75

// TrendDays is the length of the weekly trend.
const TrendDays = 7

// dayIndex holds the active employees and their records grouped by date.
type dayIndex struct {
	active []domain.Employee
	byDate map[string]map[string]domain.AttendanceRecord
}

func newDayIndex(employees []domain.Employee, records []domain.AttendanceRecord) dayIndex {
	idx := dayIndex{byDate: make(map[string]map[string]domain.AttendanceRecord)}
	activeIDs := make(map[string]struct{})
	for _, e := range employees {
		if !e.IsActive() {
			continue
		}
		idx.active = append(idx.active, e)
		activeIDs[e.ID] = struct{}{}
	}
	for _, r := range records {
		if _, ok := activeIDs[r.EmployeeID]; !ok {
			continue
		}
		day := idx.byDate[r.Date]
		if day == nil {
			day = make(map[string]domain.AttendanceRecord)
			idx.byDate[r.Date] = day
		}
		day[r.EmployeeID] = r
	}
	return idx
}

func (idx dayIndex) summarize(date string, employees []domain.Employee) domain.DaySummary {
	s := domain.DaySummary{Date: date, TotalEmployees: len(employees)}
	day := idx.byDate[date]
	for _, e := range employees {
		rec, ok := day[e.ID]
		switch {
		case !ok:
			s.Absent++
		case rec.Status.IsPresent():
			s.Present++
		case rec.Status.IsLate():
			s.Late++
		case rec.Status.IsAbsent():
			s.Absent++
		}
	}
	s.AttendanceRate = rate(s.Present+s.Late, s.TotalEmployees)
	return s
}

func (idx dayIndex) summary(date string) domain.DaySummary {
	return idx.summarize(date, idx.active)
}

func rate(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// DaySummary returns the head-count for one day over active employees.
func DaySummary(employees []domain.Employee, records []domain.AttendanceRecord, date string) domain.DaySummary {
	return newDayIndex(employees, records).summary(date)
}

// AttendanceStats computes the dashboard statistics for date. An active
// employee without a record for the day counts as absent; statuses other
// than the known ones count towards the total only.
func AttendanceStats(employees []domain.Employee, records []domain.AttendanceRecord, date string) domain.AttendanceStats {
	idx := newDayIndex(employees, records)
	today := idx.summary(date)
	stats := domain.AttendanceStats{
		Date:           date,
		TotalEmployees: today.TotalEmployees,
		PresentToday:   today.Present,
		LateToday:      today.Late,
		AbsentToday:    today.Absent,
		AttendanceRate: today.AttendanceRate,
		Today:          today,
		WeeklyTrend:    idx.trend(date),
		Departments:    idx.departments(date),
	}
	for _, d := range stats.Departments {
		if d.TotalEmployees > 0 && d.AttendanceRate >= 1 {
			stats.DepartmentsFullAttendance++
		}
		if d.AttendanceRate < IssueThreshold {
			stats.DepartmentsWithIssues++
		}
	}
	return stats
}

func (idx dayIndex) trend(date string) []domain.TrendPoint {
	end, err := domain.ParseDate(date)
	if err != nil {
		return nil
	}
	out := make([]domain.TrendPoint, 0, TrendDays)
	for i := TrendDays - 1; i >= 0; i-- {
		d := end.AddDate(0, 0, -i)
		s := idx.summary(domain.FormatDate(d))
		out = append(out, domain.TrendPoint{
			Date:           s.Date,
			Day:            d.Weekday().String()[:3],
			AttendanceRate: s.AttendanceRate,
			Present:        s.Present,
			Late:           s.Late,
			Absent:         s.Absent,
		})
	}
	return out
}

func departmentOf(e domain.Employee) string {
	if d := strings.TrimSpace(e.Department); d != "" {
		return d
	}
	return UnassignedDepartment
}

func (idx dayIndex) departments(date string) []domain.DepartmentStats {
	groups := make(map[string][]domain.Employee)
	for _, e := range idx.active {
		name := departmentOf(e)
		groups[name] = append(groups[name], e)
	}
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]domain.DepartmentStats, 0, len(names))
	for _, name := range names {
		s := idx.summarize(date, groups[name])
		out = append(out, domain.DepartmentStats{
			Department:     name,
			TotalEmployees: s.TotalEmployees,
			Present:        s.Present,
			Late:           s.Late,
			Absent:         s.Absent,
			AttendanceRate: s.AttendanceRate,
		})
	}
	return out
}
