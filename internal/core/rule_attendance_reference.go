package core

import (
	"context"
	"fmt"

	"hrdesk/pkg/domain"
)

// NewAttendanceReferenceRule blocks attendance writes for employees that do
// not exist. Records left behind by a deleted employee stay readable.
func NewAttendanceReferenceRule() domain.Rule {
	return attendanceReferenceRule{}
}

type attendanceReferenceRule struct{}

func (attendanceReferenceRule) Name() string { return "attendance_reference" }

func (r attendanceReferenceRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, c := range changes {
		if c.Entity != domain.EntityAttendance || c.Action == domain.ActionDelete {
			continue
		}
		rec, ok := c.After.(domain.AttendanceRecord)
		if !ok {
			continue
		}
		if _, exists := view.FindEmployee(rec.EmployeeID); !exists {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("attendance record %s references missing employee %s", rec.ID, rec.EmployeeID),
				Entity:   domain.EntityAttendance,
				EntityID: rec.ID,
			})
		}
	}
	return res, nil
}
