package analytics

import (
	"hrdesk/pkg/domain"
)

// Performance summarises each employee's attendance within [from, to].
// Empty bounds are open. Records of other employees are ignored.
func Performance(employees []domain.Employee, records []domain.AttendanceRecord, from, to string, standardHours float64) []domain.PerformanceMetric {
	byEmployee := make(map[string][]domain.AttendanceRecord)
	for _, r := range records {
		if from != "" && r.Date < from {
			continue
		}
		if to != "" && r.Date > to {
			continue
		}
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}

	out := make([]domain.PerformanceMetric, 0, len(employees))
	for _, e := range employees {
		m := domain.PerformanceMetric{EmployeeID: e.ID, Name: e.Name, Department: e.Department}
		for _, r := range byEmployee[e.ID] {
			m.DaysTracked++
			switch {
			case r.Status.IsPresent():
				m.DaysPresent++
			case r.Status.IsLate():
				m.DaysLate++
			case r.Status.IsAbsent():
				m.DaysAbsent++
			}
			h := RecordHours(r)
			m.TotalHours += h
			_, ot := SplitHours(h, standardHours)
			m.OvertimeHours += ot
		}
		attended := m.DaysPresent + m.DaysLate
		m.AttendanceRate = rate(attended, m.DaysTracked)
		m.PunctualityRate = rate(m.DaysPresent, attended)
		if attended > 0 {
			m.AverageHours = domain.Round2(m.TotalHours / float64(attended))
		}
		m.TotalHours = domain.Round2(m.TotalHours)
		m.OvertimeHours = domain.Round2(m.OvertimeHours)
		m.Level = Level(m.AttendanceRate)
		out = append(out, m)
	}
	return out
}
