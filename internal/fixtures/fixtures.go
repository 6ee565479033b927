// Package fixtures provides the seed data used when nothing has been
// persisted yet: the bundled fixture document, a minimal synthesized
// dataset and a random generator for demo installs.
package fixtures

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"hrdesk/pkg/domain"
)

//go:embed fixture.json
var embedded []byte

// Embedded returns the raw bundled fixture document.
func Embedded() []byte {
	return append([]byte(nil), embedded...)
}

// Load decodes the fixture at path, or the bundled fixture when path is
// empty.
func Load(path string) (domain.Snapshot, error) {
	raw := embedded
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return domain.Snapshot{}, fmt.Errorf("fixtures: read %s: %w", path, err)
		}
		raw = b
	}
	return Decode(raw)
}

// Decode parses a fixture document. A document without employees is
// rejected so callers fall through to the synthesized dataset.
func Decode(raw []byte) (domain.Snapshot, error) {
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("fixtures: decode: %w", err)
	}
	if len(snap.Employees) == 0 {
		return domain.Snapshot{}, fmt.Errorf("fixtures: document has no employees")
	}
	return snap, nil
}

// Synthesize builds the minimal dataset: one admin and one employee, each
// with an attendance record for today.
func Synthesize(now time.Time) domain.Snapshot {
	today := domain.FormatDate(now)
	admin := domain.Employee{
		Base:       domain.Base{ID: "emp-admin", CreatedAt: now, UpdatedAt: now},
		Username:   "admin",
		Password:   "admin123",
		Role:       domain.RoleAdmin,
		Name:       "Administrator",
		Department: "Human Resources",
		Position:   "HR Manager",
		HireDate:   today,
		HourlyRate: 35,
		Status:     domain.EmployeeActive,
	}
	staff := domain.Employee{
		Base:       domain.Base{ID: "emp-001", CreatedAt: now, UpdatedAt: now},
		Username:   "employee",
		Password:   "password123",
		Role:       domain.RoleEmployee,
		Name:       "Sample Employee",
		Department: "Operations",
		Position:   "Associate",
		HireDate:   today,
		HourlyRate: 20,
		Status:     domain.EmployeeActive,
	}
	return domain.Snapshot{
		Employees: []domain.Employee{admin, staff},
		AttendanceRecords: []domain.AttendanceRecord{
			{Base: domain.Base{ID: "att-" + today + "-admin", CreatedAt: now, UpdatedAt: now}, EmployeeID: admin.ID, Date: today, ClockIn: "09:00", ClockOut: "17:00", HoursWorked: 8, Status: domain.AttendancePresent},
			{Base: domain.Base{ID: "att-" + today + "-001", CreatedAt: now, UpdatedAt: now}, EmployeeID: staff.ID, Date: today, ClockIn: "09:20", ClockOut: "17:00", HoursWorked: 7.67, Status: domain.AttendanceLate},
		},
		Settings: domain.DefaultSettings(),
	}
}
