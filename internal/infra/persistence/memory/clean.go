package memory

import (
	"strings"

	"hrdesk/pkg/domain"
)

// CleanSnapshot drops records that cannot be used: employees without an id
// or name, attendance records without an id, employee id or date, and
// repeated ids or employee days. The first occurrence of a repeated record
// wins. Kept records are returned untouched and in order. The error value
// reports the dropped counts; it is empty when nothing was removed.
func CleanSnapshot(s Snapshot) (Snapshot, domain.CorruptedStateError) {
	var dropped domain.CorruptedStateError
	out := s

	employees := make(map[string]struct{}, len(s.Employees))
	out.Employees = make([]Employee, 0, len(s.Employees))
	for _, e := range s.Employees {
		_, dup := employees[e.ID]
		if dup || strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" {
			dropped.Employees++
			continue
		}
		employees[e.ID] = struct{}{}
		out.Employees = append(out.Employees, e)
	}

	ids := make(map[string]struct{}, len(s.AttendanceRecords))
	days := make(map[string]struct{}, len(s.AttendanceRecords))
	out.AttendanceRecords = make([]AttendanceRecord, 0, len(s.AttendanceRecords))
	for _, r := range s.AttendanceRecords {
		if strings.TrimSpace(r.ID) == "" || strings.TrimSpace(r.EmployeeID) == "" || strings.TrimSpace(r.Date) == "" {
			dropped.Attendance++
			continue
		}
		day := dayKey(r.EmployeeID, r.Date)
		_, dupID := ids[r.ID]
		_, dupDay := days[day]
		if dupID || dupDay {
			dropped.Attendance++
			continue
		}
		ids[r.ID] = struct{}{}
		days[day] = struct{}{}
		out.AttendanceRecords = append(out.AttendanceRecords, r)
	}
	return out, dropped
}
