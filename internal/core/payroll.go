package core

import (
	"context"

	"hrdesk/internal/analytics"
	"hrdesk/internal/events"
	"hrdesk/pkg/domain"
)

// PayrollFilter narrows GetPayrollData. A record matches a date range when
// its period overlaps it.
type PayrollFilter struct {
	EmployeeID string
	StartDate  string
	EndDate    string
}

// CalculatePayroll computes pay for employeeID over [start, end] and
// appends the result to the payroll history.
func (s *Service) CalculatePayroll(ctx context.Context, employeeID, start, end string) (domain.PayrollResult, error) {
	var result domain.PayrollResult
	_, err := s.mutate(ctx, "calculate_payroll", domain.EntityPayroll, func(tx domain.Transaction) (string, []events.Event, error) {
		view := tx.Snapshot()
		e, ok := view.FindEmployee(employeeID)
		if !ok {
			return "", nil, notFound(domain.EntityEmployee, employeeID)
		}
		calc, err := analytics.CalculatePayroll(e, view.ListAttendanceRecords(), view.Settings().Payroll, start, end)
		if err != nil {
			return "", nil, err
		}
		rec, err := tx.AppendPayrollRecord(calc.PayrollRecord)
		if err != nil {
			return "", nil, err
		}
		calc.PayrollRecord = rec
		result = calc
		ev := mutationEvent(events.PayrollCalculated, domain.EntityPayroll, rec.ID, nil, rec)
		ev.Data = calc
		return rec.ID, []events.Event{ev}, nil
	})
	return result, err
}

// GetPayrollData returns the payroll history matching filter in
// calculation order. A malformed range yields an empty result.
func (s *Service) GetPayrollData(ctx context.Context, filter PayrollFilter) ([]domain.PayrollRecord, error) {
	out := []domain.PayrollRecord{}
	err := s.observe(ctx, "get_payroll_data", func(ctx context.Context) error {
		if (filter.StartDate != "" && !domain.ValidDate(filter.StartDate)) ||
			(filter.EndDate != "" && !domain.ValidDate(filter.EndDate)) ||
			(filter.StartDate != "" && filter.EndDate != "" && filter.EndDate < filter.StartDate) {
			return nil
		}
		return s.view(ctx, func(v domain.TransactionView) error {
			for _, p := range v.ListPayrollRecords() {
				if filter.EmployeeID != "" && p.EmployeeID != filter.EmployeeID {
					continue
				}
				if filter.StartDate != "" && p.PeriodEnd < filter.StartDate {
					continue
				}
				if filter.EndDate != "" && p.PeriodStart > filter.EndDate {
					continue
				}
				out = append(out, p)
			}
			return nil
		})
	})
	return out, err
}
