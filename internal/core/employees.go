package core

import (
	"context"
	"sort"
	"strings"

	"hrdesk/internal/auth"
	"hrdesk/internal/events"
	"hrdesk/pkg/domain"
)

// WageUpdateResult is returned by UpdateEmployeeWage and carried as the
// employeeWageUpdated event data.
type WageUpdateResult struct {
	Employee domain.Employee `json:"employee"`
	OldRate  float64         `json:"oldRate"`
	NewRate  float64         `json:"newRate"`
}

// GetEmployees returns every employee in insertion order.
func (s *Service) GetEmployees(ctx context.Context) ([]domain.Employee, error) {
	var out []domain.Employee
	err := s.observe(ctx, "get_employees", func(ctx context.Context) error {
		return s.view(ctx, func(v domain.TransactionView) error {
			out = v.ListEmployees()
			return nil
		})
	})
	return out, err
}

// GetEmployee returns one employee.
func (s *Service) GetEmployee(ctx context.Context, id string) (domain.Employee, error) {
	var out domain.Employee
	err := s.observe(ctx, "get_employee", func(ctx context.Context) error {
		return s.view(ctx, func(v domain.TransactionView) error {
			e, ok := v.FindEmployee(id)
			if !ok {
				return notFound(domain.EntityEmployee, id)
			}
			out = e
			return nil
		})
	})
	return out, err
}

// AddEmployee creates an employee. A missing id is generated; plain
// passwords are stored as bcrypt hashes.
func (s *Service) AddEmployee(ctx context.Context, e domain.Employee) (domain.Employee, error) {
	e.Name = strings.TrimSpace(e.Name)
	e.Username = strings.TrimSpace(e.Username)
	if e.Name == "" {
		return domain.Employee{}, domain.ValidationError{Entity: domain.EntityEmployee, Field: "name", Reason: "required"}
	}
	if e.HireDate != "" && !domain.ValidDate(e.HireDate) {
		return domain.Employee{}, domain.ValidationError{Entity: domain.EntityEmployee, Field: "hireDate", Reason: "must be YYYY-MM-DD"}
	}
	if e.Password != "" && !auth.IsHash(e.Password) {
		hashed, err := auth.HashPassword(e.Password)
		if err != nil {
			return domain.Employee{}, err
		}
		e.Password = hashed
	}

	var created domain.Employee
	_, err := s.mutate(ctx, "add_employee", domain.EntityEmployee, func(tx domain.Transaction) (string, []events.Event, error) {
		var err error
		created, err = tx.CreateEmployee(e)
		if err != nil {
			return e.ID, nil, err
		}
		return created.ID, []events.Event{mutationEvent(events.EmployeeAdded, domain.EntityEmployee, created.ID, nil, created)}, nil
	})
	return created, err
}

// UpdateEmployee merges patch into the employee. A rate change is
// recorded as the last wage update.
func (s *Service) UpdateEmployee(ctx context.Context, id string, patch domain.EmployeePatch) (domain.Employee, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return domain.Employee{}, domain.ValidationError{Entity: domain.EntityEmployee, Field: "name", Reason: "required"}
	}
	if patch.Password != nil && *patch.Password != "" && !auth.IsHash(*patch.Password) {
		hashed, err := auth.HashPassword(*patch.Password)
		if err != nil {
			return domain.Employee{}, err
		}
		patch.Password = &hashed
	}

	var updated domain.Employee
	_, err := s.mutate(ctx, "update_employee", domain.EntityEmployee, func(tx domain.Transaction) (string, []events.Event, error) {
		before, ok := tx.Snapshot().FindEmployee(id)
		if !ok {
			return id, nil, notFound(domain.EntityEmployee, id)
		}
		now := s.clock.Now()
		var err error
		updated, err = tx.UpdateEmployee(id, func(e *domain.Employee) error {
			patch.Apply(e)
			if e.HourlyRate != before.HourlyRate {
				e.LastWageUpdate = &domain.WageUpdate{PreviousRate: before.HourlyRate, NewRate: e.HourlyRate, Reason: "profile update", UpdatedAt: now}
			}
			return nil
		})
		if err != nil {
			return id, nil, err
		}
		return id, []events.Event{mutationEvent(events.EmployeeUpdated, domain.EntityEmployee, id, before, updated)}, nil
	})
	return updated, err
}

// UpdateEmployeeWage sets a new hourly rate and records the change.
func (s *Service) UpdateEmployeeWage(ctx context.Context, id string, newRate float64, reason string) (WageUpdateResult, error) {
	if newRate <= 0 {
		return WageUpdateResult{}, domain.ValidationError{Entity: domain.EntityEmployee, Field: "hourlyRate", Reason: "must be positive"}
	}
	var result WageUpdateResult
	_, err := s.mutate(ctx, "update_employee_wage", domain.EntityEmployee, func(tx domain.Transaction) (string, []events.Event, error) {
		before, ok := tx.Snapshot().FindEmployee(id)
		if !ok {
			return id, nil, notFound(domain.EntityEmployee, id)
		}
		now := s.clock.Now()
		updated, err := tx.UpdateEmployee(id, func(e *domain.Employee) error {
			e.HourlyRate = newRate
			e.LastWageUpdate = &domain.WageUpdate{PreviousRate: before.HourlyRate, NewRate: newRate, Reason: reason, UpdatedAt: now}
			return nil
		})
		if err != nil {
			return id, nil, err
		}
		result = WageUpdateResult{Employee: updated, OldRate: before.HourlyRate, NewRate: newRate}
		ev := mutationEvent(events.EmployeeWageUpdated, domain.EntityEmployee, id, before, updated)
		ev.Data = result
		return id, []events.Event{ev}, nil
	})
	return result, err
}

// DeleteEmployee removes the employee. Its attendance and payroll history
// is kept.
func (s *Service) DeleteEmployee(ctx context.Context, id string) (bool, error) {
	_, err := s.mutate(ctx, "delete_employee", domain.EntityEmployee, func(tx domain.Transaction) (string, []events.Event, error) {
		removed, err := tx.DeleteEmployee(id)
		if err != nil {
			return id, nil, err
		}
		return id, []events.Event{mutationEvent(events.EmployeeDeleted, domain.EntityEmployee, id, removed, nil)}, nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// GetDepartments returns the configured departments plus any department
// used by an employee, sorted and de-duplicated case-insensitively.
func (s *Service) GetDepartments(ctx context.Context) ([]string, error) {
	var out []string
	err := s.observe(ctx, "get_departments", func(ctx context.Context) error {
		return s.view(ctx, func(v domain.TransactionView) error {
			out = departments(v)
			return nil
		})
	})
	return out, err
}

func departments(v domain.TransactionView) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	for _, d := range v.Settings().Departments {
		add(d)
	}
	for _, e := range v.ListEmployees() {
		add(e.Department)
	}
	sort.Strings(out)
	return out
}

// GetEmployeesByDepartment returns the employees of dept, matched
// case-insensitively. An unknown department yields an empty result.
func (s *Service) GetEmployeesByDepartment(ctx context.Context, dept string) ([]domain.Employee, error) {
	var out []domain.Employee
	err := s.observe(ctx, "get_employees_by_department", func(ctx context.Context) error {
		return s.view(ctx, func(v domain.TransactionView) error {
			out = filterByDepartment(v.ListEmployees(), dept)
			return nil
		})
	})
	return out, err
}

func filterByDepartment(list []domain.Employee, dept string) []domain.Employee {
	want := strings.TrimSpace(dept)
	out := []domain.Employee{}
	if want == "" {
		return out
	}
	for _, e := range list {
		if strings.EqualFold(strings.TrimSpace(e.Department), want) {
			out = append(out, e)
		}
	}
	return out
}
