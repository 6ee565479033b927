package domain

import "time"

// Snapshot is the full persisted state of the data layer. It is written as
// one document on every mutation.
type Snapshot struct {
	Employees         []Employee         `json:"employees"`
	AttendanceRecords []AttendanceRecord `json:"attendanceRecords"`
	PayrollRecords    []PayrollRecord    `json:"payrollRecords"`
	Settings          Settings           `json:"settings"`
	Analytics         AnalyticsCache     `json:"analytics"`
	SavedAt           time.Time          `json:"savedAt,omitempty"`
}

// Reduced returns the degraded form of the snapshot written when the full
// document exceeds the storage quota: employees and settings only.
func (s Snapshot) Reduced() Snapshot {
	return Snapshot{
		Employees: s.Employees,
		Settings:  s.Settings,
		SavedAt:   s.SavedAt,
	}
}

// AnalyticsCache holds opportunistically cached statistics. It is never
// authoritative: readers always recompute.
type AnalyticsCache struct {
	LastUpdated     time.Time                  `json:"lastUpdated,omitempty"`
	AttendanceStats map[string]AttendanceStats `json:"attendanceStats,omitempty"`
}
