// Package memory provides the in-memory model: the authoritative copy of
// every collection, mutated only through transactions on a cloned state.
package memory

import (
	"strings"
	"time"

	"hrdesk/pkg/domain"
)

// Compile-time contract assertion ensuring Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Employee aliases domain.Employee.
	Employee = domain.Employee
	// AttendanceRecord aliases domain.AttendanceRecord.
	AttendanceRecord = domain.AttendanceRecord
	// PayrollRecord aliases domain.PayrollRecord.
	PayrollRecord = domain.PayrollRecord
	// Settings aliases domain.Settings.
	Settings = domain.Settings
	// Snapshot aliases domain.Snapshot.
	Snapshot = domain.Snapshot
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView.
	TransactionView = domain.TransactionView
	// TransactionResult aliases domain.TransactionResult.
	TransactionResult = domain.TransactionResult
)

// memoryState keeps insertion order next to the id maps so listings are
// stable across exports and imports.
type memoryState struct {
	employees     map[string]Employee
	employeeOrder []string

	attendance      map[string]AttendanceRecord
	attendanceOrder []string
	// attendanceByDay maps dayKey(employeeID, date) to a record id.
	attendanceByDay map[string]string

	payroll []PayrollRecord

	settings  Settings
	analytics domain.AnalyticsCache
}

func newMemoryState() memoryState {
	return memoryState{
		employees:       make(map[string]Employee),
		attendance:      make(map[string]AttendanceRecord),
		attendanceByDay: make(map[string]string),
		settings:        domain.DefaultSettings(),
	}
}

func dayKey(employeeID, date string) string {
	return employeeID + "|" + date
}

func (s memoryState) clone() memoryState {
	cloned := memoryState{
		employees:       make(map[string]Employee, len(s.employees)),
		employeeOrder:   append([]string(nil), s.employeeOrder...),
		attendance:      make(map[string]AttendanceRecord, len(s.attendance)),
		attendanceOrder: append([]string(nil), s.attendanceOrder...),
		attendanceByDay: make(map[string]string, len(s.attendanceByDay)),
		payroll:         append([]PayrollRecord(nil), s.payroll...),
		settings:        cloneSettings(s.settings),
		analytics:       cloneAnalytics(s.analytics),
	}
	for k, v := range s.employees {
		cloned.employees[k] = cloneEmployee(v)
	}
	for k, v := range s.attendance {
		cloned.attendance[k] = v
	}
	for k, v := range s.attendanceByDay {
		cloned.attendanceByDay[k] = v
	}
	return cloned
}

func cloneEmployee(e Employee) Employee {
	cp := e
	if e.LastWageUpdate != nil {
		wu := *e.LastWageUpdate
		cp.LastWageUpdate = &wu
	}
	return cp
}

func cloneSettings(s Settings) Settings {
	cp := s
	cp.Departments = append([]string(nil), s.Departments...)
	return cp
}

func cloneAnalytics(a domain.AnalyticsCache) domain.AnalyticsCache {
	cp := domain.AnalyticsCache{LastUpdated: a.LastUpdated}
	if a.AttendanceStats != nil {
		cp.AttendanceStats = make(map[string]domain.AttendanceStats, len(a.AttendanceStats))
		for k, v := range a.AttendanceStats {
			cp.AttendanceStats[k] = v
		}
	}
	return cp
}

func (s *memoryState) putEmployee(e Employee) {
	if _, exists := s.employees[e.ID]; !exists {
		s.employeeOrder = append(s.employeeOrder, e.ID)
	}
	s.employees[e.ID] = cloneEmployee(e)
}

func (s *memoryState) removeEmployee(id string) {
	delete(s.employees, id)
	s.employeeOrder = removeID(s.employeeOrder, id)
}

func (s *memoryState) putAttendance(r AttendanceRecord) {
	if prev, exists := s.attendance[r.ID]; exists {
		delete(s.attendanceByDay, dayKey(prev.EmployeeID, prev.Date))
	} else {
		s.attendanceOrder = append(s.attendanceOrder, r.ID)
	}
	s.attendance[r.ID] = r
	s.attendanceByDay[dayKey(r.EmployeeID, r.Date)] = r.ID
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}

func (s memoryState) employeeList() []Employee {
	out := make([]Employee, 0, len(s.employeeOrder))
	for _, id := range s.employeeOrder {
		out = append(out, cloneEmployee(s.employees[id]))
	}
	return out
}

func (s memoryState) attendanceList() []AttendanceRecord {
	out := make([]AttendanceRecord, 0, len(s.attendanceOrder))
	for _, id := range s.attendanceOrder {
		out = append(out, s.attendance[id])
	}
	return out
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	return Snapshot{
		Employees:         state.employeeList(),
		AttendanceRecords: state.attendanceList(),
		PayrollRecords:    append([]PayrollRecord{}, state.payroll...),
		Settings:          cloneSettings(state.settings),
		Analytics:         cloneAnalytics(state.analytics),
	}
}

// memoryStateFromSnapshot rebuilds indexes from a snapshot. Duplicate ids
// keep the first occurrence, as does a second record for the same
// employee and day.
// memoryStateFromSnapshot skips repeated ids and employee days so the
// indexes stay consistent. CleanSnapshot counts the same records.
func memoryStateFromSnapshot(s Snapshot) memoryState {
	state := newMemoryState()
	for _, e := range s.Employees {
		if _, dup := state.employees[e.ID]; dup {
			continue
		}
		state.putEmployee(e)
	}
	for _, r := range s.AttendanceRecords {
		if _, dup := state.attendance[r.ID]; dup {
			continue
		}
		if _, dup := state.attendanceByDay[dayKey(r.EmployeeID, r.Date)]; dup {
			continue
		}
		state.putAttendance(r)
	}
	state.payroll = append([]PayrollRecord(nil), s.PayrollRecords...)
	state.settings = normalizeSettings(s.Settings)
	state.analytics = cloneAnalytics(s.Analytics)
	return state
}

// normalizeSettings fills zero-valued fields from the defaults so documents
// written by older versions, or partial fixtures, still calculate.
func normalizeSettings(s Settings) Settings {
	d := domain.DefaultSettings()
	out := cloneSettings(s)
	if strings.TrimSpace(out.Company.Name) == "" {
		out.Company.Name = d.Company.Name
	}
	if out.Company.Timezone == "" {
		out.Company.Timezone = d.Company.Timezone
	}
	if out.Payroll.StandardWage <= 0 {
		out.Payroll.StandardWage = d.Payroll.StandardWage
	}
	if out.Payroll.OvertimeMultiplier <= 0 {
		out.Payroll.OvertimeMultiplier = d.Payroll.OvertimeMultiplier
	}
	if !out.Payroll.PayFrequency.Valid() {
		out.Payroll.PayFrequency = d.Payroll.PayFrequency
	}
	if out.Payroll.Currency == "" {
		out.Payroll.Currency = d.Payroll.Currency
	}
	if out.Payroll.StandardHours <= 0 {
		out.Payroll.StandardHours = d.Payroll.StandardHours
	}
	if out.Payroll.TaxRate < 0 {
		out.Payroll.TaxRate = 0
	}
	if out.Attendance.WorkStart == "" {
		out.Attendance.WorkStart = d.Attendance.WorkStart
	}
	if out.Attendance.WorkEnd == "" {
		out.Attendance.WorkEnd = d.Attendance.WorkEnd
	}
	if out.Attendance.FullDayHours <= 0 {
		out.Attendance.FullDayHours = d.Attendance.FullDayHours
	}
	if out.Departments == nil {
		out.Departments = d.Departments
	}
	return out
}

// stampTime returns t, or now when t is zero.
func stampTime(t, now time.Time) time.Time {
	if t.IsZero() {
		return now
	}
	return t
}
