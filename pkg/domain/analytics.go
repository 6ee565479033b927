package domain

// AttendanceLevel buckets an attendance rate for calendar-style views.
type AttendanceLevel string

// Attendance levels, highest first.
const (
	LevelHigh   AttendanceLevel = "high"
	LevelMedium AttendanceLevel = "medium"
	LevelLow    AttendanceLevel = "low"
	LevelNone   AttendanceLevel = "none"
)

// DaySummary is the attendance head-count for one day.
type DaySummary struct {
	Date           string  `json:"date"`
	TotalEmployees int     `json:"total"`
	Present        int     `json:"present"`
	Late           int     `json:"late"`
	Absent         int     `json:"absent"`
	AttendanceRate float64 `json:"attendanceRate"`
}

// TrendPoint is one day of the weekly attendance trend.
type TrendPoint struct {
	Date           string  `json:"date"`
	Day            string  `json:"day"`
	AttendanceRate float64 `json:"attendanceRate"`
	Present        int     `json:"present"`
	Late           int     `json:"late"`
	Absent         int     `json:"absent"`
}

// DepartmentStats is a per-department attendance rollup for one day.
type DepartmentStats struct {
	Department     string  `json:"department"`
	TotalEmployees int     `json:"totalEmployees"`
	Present        int     `json:"present"`
	Late           int     `json:"late"`
	Absent         int     `json:"absent"`
	AttendanceRate float64 `json:"attendanceRate"`
}

// AttendanceStats is the dashboard statistics object. The top-level
// PresentToday/LateToday/AbsentToday/AttendanceRate/TotalEmployees fields
// are the legacy shape; Today carries the same values in the nested shape.
// Both are always populated identically for older consumers.
type AttendanceStats struct {
	Date                      string            `json:"date"`
	TotalEmployees            int               `json:"totalEmployees"`
	PresentToday              int               `json:"presentToday"`
	LateToday                 int               `json:"lateToday"`
	AbsentToday               int               `json:"absentToday"`
	AttendanceRate            float64           `json:"attendanceRate"`
	Today                     DaySummary        `json:"today"`
	WeeklyTrend               []TrendPoint      `json:"weeklyTrend"`
	Departments               []DepartmentStats `json:"departments"`
	DepartmentsFullAttendance int               `json:"departmentsFullAttendance"`
	DepartmentsWithIssues     int               `json:"departmentsWithIssues"`
}

// CalendarDay is the attendance level of one calendar day.
type CalendarDay struct {
	Date           string          `json:"date"`
	AttendanceRate float64         `json:"attendanceRate"`
	Level          AttendanceLevel `json:"level"`
}

// PayrollResult is returned by a payroll calculation.
type PayrollResult struct {
	PayrollRecord
	EmployeeName string  `json:"employeeName"`
	TotalHours   float64 `json:"totalHours"`
	DaysWorked   int     `json:"daysWorked"`
}

// PaydayInfo describes the payday schedule relative to today.
type PaydayInfo struct {
	NextPayday     string       `json:"nextPayday"`
	LastPayday     string       `json:"lastPayday"`
	Frequency      PayFrequency `json:"frequency"`
	DaysRemaining  int          `json:"daysRemaining"`
	HoursRemaining int          `json:"hoursRemaining"`
}

// PerformanceMetric summarises one employee's attendance over a window.
type PerformanceMetric struct {
	EmployeeID      string          `json:"employeeId"`
	Name            string          `json:"name"`
	Department      string          `json:"department"`
	DaysTracked     int             `json:"daysTracked"`
	DaysPresent     int             `json:"daysPresent"`
	DaysLate        int             `json:"daysLate"`
	DaysAbsent      int             `json:"daysAbsent"`
	AttendanceRate  float64         `json:"attendanceRate"`
	PunctualityRate float64         `json:"punctualityRate"`
	TotalHours      float64         `json:"totalHours"`
	AverageHours    float64         `json:"averageHours"`
	OvertimeHours   float64         `json:"overtimeHours"`
	Level           AttendanceLevel `json:"level"`
}
