package domain

import "strings"

// EmployeePatch lists the employee fields an update may change. Nil fields
// are left untouched; identity (ID, CreatedAt) is never patched.
type EmployeePatch struct {
	Username   *string         `json:"username,omitempty"`
	Password   *string         `json:"password,omitempty"`
	Role       *Role           `json:"role,omitempty"`
	Name       *string         `json:"name,omitempty"`
	Email      *string         `json:"email,omitempty"`
	Department *string         `json:"department,omitempty"`
	Position   *string         `json:"position,omitempty"`
	HireDate   *string         `json:"hireDate,omitempty"`
	StartDate  *string         `json:"startDate,omitempty"`
	HourlyRate *float64        `json:"hourlyRate,omitempty"`
	Status     *EmployeeStatus `json:"status,omitempty"`
}

// Apply merges the patch into e field by field.
func (p EmployeePatch) Apply(e *Employee) {
	if p.Username != nil {
		e.Username = strings.TrimSpace(*p.Username)
	}
	if p.Password != nil {
		e.Password = *p.Password
	}
	if p.Role != nil {
		e.Role = *p.Role
	}
	if p.Name != nil {
		e.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		e.Email = strings.TrimSpace(*p.Email)
	}
	if p.Department != nil {
		e.Department = strings.TrimSpace(*p.Department)
	}
	if p.Position != nil {
		e.Position = *p.Position
	}
	if p.HireDate != nil {
		e.HireDate = *p.HireDate
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	if p.HourlyRate != nil {
		e.HourlyRate = *p.HourlyRate
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
}

// AttendancePatch lists the attendance fields an update may change.
type AttendancePatch struct {
	Date        *string           `json:"date,omitempty"`
	ClockIn     *string           `json:"clockIn,omitempty"`
	ClockOut    *string           `json:"clockOut,omitempty"`
	HoursWorked *float64          `json:"hoursWorked,omitempty"`
	Status      *AttendanceStatus `json:"status,omitempty"`
	Notes       *string           `json:"notes,omitempty"`
}

// Apply merges the patch into r. When either clock value changes the worked
// hours are recomputed from the clocks and take precedence over HoursWorked.
func (p AttendancePatch) Apply(r *AttendanceRecord) {
	if p.Date != nil {
		r.Date = *p.Date
	}
	if p.HoursWorked != nil {
		r.HoursWorked = *p.HoursWorked
	}
	clocksChanged := false
	if p.ClockIn != nil {
		r.ClockIn = *p.ClockIn
		clocksChanged = true
	}
	if p.ClockOut != nil {
		r.ClockOut = *p.ClockOut
		clocksChanged = true
	}
	if clocksChanged {
		r.HoursWorked = HoursBetween(r.ClockIn, r.ClockOut)
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
}

// CompanyPatch patches CompanyProfile.
type CompanyPatch struct {
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Timezone *string `json:"timezone,omitempty"`
}

// PayrollPatch patches PayrollSettings.
type PayrollPatch struct {
	StandardWage       *float64      `json:"standardWage,omitempty"`
	OvertimeMultiplier *float64      `json:"overtimeMultiplier,omitempty"`
	PayFrequency       *PayFrequency `json:"payFrequency,omitempty"`
	Currency           *string       `json:"currency,omitempty"`
	StandardHours      *float64      `json:"standardHours,omitempty"`
	TaxRate            *float64      `json:"taxRate,omitempty"`
}

// AttendanceSettingsPatch patches AttendanceSettings.
type AttendanceSettingsPatch struct {
	WorkStart            *string  `json:"workStart,omitempty"`
	WorkEnd              *string  `json:"workEnd,omitempty"`
	LateThresholdMinutes *int     `json:"lateThresholdMinutes,omitempty"`
	FullDayHours         *float64 `json:"fullDayHours,omitempty"`
}

// SettingsPatch merges into Settings section by section. A non-nil
// Departments slice replaces the department list as a whole.
type SettingsPatch struct {
	Company     *CompanyPatch            `json:"company,omitempty"`
	Payroll     *PayrollPatch            `json:"payroll,omitempty"`
	Attendance  *AttendanceSettingsPatch `json:"attendance,omitempty"`
	Departments []string                 `json:"departments,omitempty"`
}

// Apply merges the patch into s.
func (p SettingsPatch) Apply(s *Settings) {
	if c := p.Company; c != nil {
		setString(&s.Company.Name, c.Name)
		setString(&s.Company.Address, c.Address)
		setString(&s.Company.Email, c.Email)
		setString(&s.Company.Phone, c.Phone)
		setString(&s.Company.Timezone, c.Timezone)
	}
	if pp := p.Payroll; pp != nil {
		setFloat(&s.Payroll.StandardWage, pp.StandardWage)
		setFloat(&s.Payroll.OvertimeMultiplier, pp.OvertimeMultiplier)
		if pp.PayFrequency != nil {
			s.Payroll.PayFrequency = *pp.PayFrequency
		}
		setString(&s.Payroll.Currency, pp.Currency)
		setFloat(&s.Payroll.StandardHours, pp.StandardHours)
		setFloat(&s.Payroll.TaxRate, pp.TaxRate)
	}
	if a := p.Attendance; a != nil {
		setString(&s.Attendance.WorkStart, a.WorkStart)
		setString(&s.Attendance.WorkEnd, a.WorkEnd)
		if a.LateThresholdMinutes != nil {
			s.Attendance.LateThresholdMinutes = *a.LateThresholdMinutes
		}
		setFloat(&s.Attendance.FullDayHours, a.FullDayHours)
	}
	if p.Departments != nil {
		s.Departments = append([]string(nil), p.Departments...)
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
