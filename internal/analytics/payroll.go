package analytics

import (
	"hrdesk/pkg/domain"
)

// RecordHours returns the hours a record counts for: the stored value, or
// the clock span when none was stored.
func RecordHours(r domain.AttendanceRecord) float64 {
	if r.HoursWorked > 0 {
		return r.HoursWorked
	}
	return domain.HoursBetween(r.ClockIn, r.ClockOut)
}

// SplitHours divides worked hours at the standard-hours threshold.
func SplitHours(hours, standardHours float64) (regular, overtime float64) {
	if hours <= 0 {
		return 0, 0
	}
	if standardHours <= 0 || hours <= standardHours {
		return hours, 0
	}
	return standardHours, hours - standardHours
}

// PayrollRate is the employee's hourly rate, or the standard wage when the
// employee has none.
func PayrollRate(e domain.Employee, settings domain.PayrollSettings) float64 {
	if e.HourlyRate > 0 {
		return e.HourlyRate
	}
	return settings.StandardWage
}

// CalculatePayroll computes pay for employee over [start, end]. Each
// record's hours are split at the standard-hours threshold. The returned
// record has no id; the caller assigns one when it is appended.
func CalculatePayroll(employee domain.Employee, records []domain.AttendanceRecord, settings domain.PayrollSettings, start, end string) (domain.PayrollResult, error) {
	if !domain.ValidDate(start) {
		return domain.PayrollResult{}, domain.ValidationError{Entity: domain.EntityPayroll, Field: "periodStart", Reason: "must be YYYY-MM-DD"}
	}
	if !domain.ValidDate(end) {
		return domain.PayrollResult{}, domain.ValidationError{Entity: domain.EntityPayroll, Field: "periodEnd", Reason: "must be YYYY-MM-DD"}
	}
	if end < start {
		return domain.PayrollResult{}, domain.ValidationError{Entity: domain.EntityPayroll, Field: "periodEnd", Reason: "before periodStart"}
	}

	var regular, overtime float64
	days := 0
	for _, r := range records {
		if r.EmployeeID != employee.ID || r.Date < start || r.Date > end {
			continue
		}
		h := RecordHours(r)
		if h <= 0 {
			continue
		}
		reg, ot := SplitHours(h, settings.StandardHours)
		regular += reg
		overtime += ot
		days++
	}

	hourly := PayrollRate(employee, settings)
	multiplier := settings.OvertimeMultiplier
	if multiplier <= 0 {
		multiplier = 1
	}
	gross := domain.Round2(regular*hourly + overtime*hourly*multiplier)
	tax := domain.Round2(gross * settings.TaxRate)

	return domain.PayrollResult{
		PayrollRecord: domain.PayrollRecord{
			EmployeeID:    employee.ID,
			PeriodStart:   start,
			PeriodEnd:     end,
			RegularHours:  domain.Round2(regular),
			OvertimeHours: domain.Round2(overtime),
			HourlyRate:    hourly,
			GrossPay:      gross,
			TaxAmount:     tax,
			NetPay:        domain.Round2(gross - tax),
			Currency:      settings.Currency,
		},
		EmployeeName: employee.Name,
		TotalHours:   domain.Round2(regular + overtime),
		DaysWorked:   days,
	}, nil
}
