// Package domain defines the persistent HR entities, value types, patches and
// rule evaluation primitives shared by the hrdesk data layer.
package domain

import "time"

// EntityType identifies the type of record stored in the data layer.
type EntityType string

// Supported entity type identifiers used in Change records and errors.
const (
	// EntityEmployee identifies an employee record.
	EntityEmployee EntityType = "employee"
	// EntityAttendance identifies an attendance record.
	EntityAttendance EntityType = "attendance_record"
	// EntityPayroll identifies a payroll record.
	EntityPayroll EntityType = "payroll_record"
	// EntitySettings identifies the singleton settings document.
	EntitySettings EntityType = "settings"
)

// Role distinguishes administrators from regular employees.
type Role string

// Supported roles.
const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

// EmployeeStatus tracks whether an employee is currently employed.
type EmployeeStatus string

// Supported employee statuses.
const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// AttendanceStatus is the free-form status of an attendance record. The
// constants below are the values the analytics engine understands; other
// values are stored verbatim and counted as neither present nor late.
type AttendanceStatus string

// Known attendance statuses.
const (
	AttendancePresent  AttendanceStatus = "present"
	AttendanceLate     AttendanceStatus = "late"
	AttendanceTardy    AttendanceStatus = "tardy"
	AttendanceAbsent   AttendanceStatus = "absent"
	AttendanceOvertime AttendanceStatus = "overtime"
)

// IsPresent reports whether the status counts as on-time attendance.
func (s AttendanceStatus) IsPresent() bool {
	return s == AttendancePresent || s == AttendanceOvertime
}

// IsLate reports whether the status counts as late attendance.
func (s AttendanceStatus) IsLate() bool {
	return s == AttendanceLate || s == AttendanceTardy
}

// IsAbsent reports whether the status is an explicit absence.
func (s AttendanceStatus) IsAbsent() bool {
	return s == AttendanceAbsent
}

// PayFrequency controls the payday schedule.
type PayFrequency string

// Supported pay frequencies.
const (
	PayWeekly   PayFrequency = "weekly"
	PayBiweekly PayFrequency = "biweekly"
	PayMonthly  PayFrequency = "monthly"
)

// Valid reports whether the frequency is one of the supported schedules.
func (f PayFrequency) Valid() bool {
	switch f {
	case PayWeekly, PayBiweekly, PayMonthly:
		return true
	}
	return false
}

// Base carries identity and bookkeeping timestamps.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WageUpdate records the most recent hourly rate change.
type WageUpdate struct {
	PreviousRate float64   `json:"previousRate"`
	NewRate      float64   `json:"newRate"`
	Reason       string    `json:"reason,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Employee is a person with an account on the dashboard.
type Employee struct {
	Base
	Username string `json:"username"`
	// Password is opaque; a bcrypt hash or a plain fixture value.
	Password       string         `json:"password,omitempty"`
	Role           Role           `json:"role"`
	Name           string         `json:"name"`
	Email          string         `json:"email,omitempty"`
	Department     string         `json:"department,omitempty"`
	Position       string         `json:"position,omitempty"`
	HireDate       string         `json:"hireDate,omitempty"`
	StartDate      string         `json:"startDate,omitempty"`
	HourlyRate     float64        `json:"hourlyRate"`
	LastWageUpdate *WageUpdate    `json:"lastWageUpdate,omitempty"`
	Status         EmployeeStatus `json:"status"`
}

// IsActive reports whether the employee counts towards attendance.
func (e Employee) IsActive() bool {
	return e.Status == "" || e.Status == EmployeeActive
}

// AttendanceRecord is one employee's attendance for one calendar day.
type AttendanceRecord struct {
	Base
	EmployeeID  string           `json:"employeeId"`
	Date        string           `json:"date"`
	ClockIn     string           `json:"clockIn,omitempty"`
	ClockOut    string           `json:"clockOut,omitempty"`
	HoursWorked float64          `json:"hoursWorked"`
	Status      AttendanceStatus `json:"status"`
	Notes       string           `json:"notes,omitempty"`
}

// PayrollRecord is the immutable result of one payroll calculation.
type PayrollRecord struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	PeriodStart   string    `json:"periodStart"`
	PeriodEnd     string    `json:"periodEnd"`
	RegularHours  float64   `json:"regularHours"`
	OvertimeHours float64   `json:"overtimeHours"`
	HourlyRate    float64   `json:"hourlyRate"`
	GrossPay      float64   `json:"grossPay"`
	TaxAmount     float64   `json:"taxAmount"`
	NetPay        float64   `json:"netPay"`
	Currency      string    `json:"currency"`
	CalculatedAt  time.Time `json:"calculatedAt"`
}

// CompanyProfile describes the organisation.
type CompanyProfile struct {
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// PayrollSettings parameterises payroll calculation and payday scheduling.
type PayrollSettings struct {
	StandardWage       float64      `json:"standardWage"`
	OvertimeMultiplier float64      `json:"overtimeMultiplier"`
	PayFrequency       PayFrequency `json:"payFrequency"`
	Currency           string       `json:"currency"`
	StandardHours      float64      `json:"standardHours"`
	TaxRate            float64      `json:"taxRate"`
}

// AttendanceSettings holds working-day thresholds.
type AttendanceSettings struct {
	WorkStart            string  `json:"workStart"`
	WorkEnd              string  `json:"workEnd"`
	LateThresholdMinutes int     `json:"lateThresholdMinutes"`
	FullDayHours         float64 `json:"fullDayHours"`
}

// Settings is the singleton configuration document.
type Settings struct {
	Company     CompanyProfile     `json:"company"`
	Payroll     PayrollSettings    `json:"payroll"`
	Attendance  AttendanceSettings `json:"attendance"`
	Departments []string           `json:"departments"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// DefaultSettings returns the settings used when none were persisted.
func DefaultSettings() Settings {
	return Settings{
		Company: CompanyProfile{Name: "HR Desk", Timezone: "UTC"},
		Payroll: PayrollSettings{
			StandardWage:       15,
			OvertimeMultiplier: 1.5,
			PayFrequency:       PayBiweekly,
			Currency:           "USD",
			StandardHours:      8,
			TaxRate:            0.2,
		},
		Attendance: AttendanceSettings{
			WorkStart:            "09:00",
			WorkEnd:              "17:00",
			LateThresholdMinutes: 15,
			FullDayHours:         8,
		},
		Departments: []string{"Engineering", "Operations", "Sales", "Human Resources"},
	}
}

// Change captures a single mutation applied within a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
