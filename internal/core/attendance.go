package core

import (
	"context"
	"sort"
	"strings"
	"time"

	"hrdesk/internal/events"
	"hrdesk/pkg/domain"
)

// Attendance event actions.
const (
	ActionAdd    = "add"
	ActionUpdate = "update"
)

// AttendanceFilter narrows GetAttendanceRecords. Zero fields match
// everything; Date is shorthand for StartDate == EndDate.
type AttendanceFilter struct {
	EmployeeID string
	Date       string
	StartDate  string
	EndDate    string
	Status     domain.AttendanceStatus
}

// normalize validates the filter. It reports false when the filter cannot
// match anything.
func (f AttendanceFilter) normalize() (AttendanceFilter, bool) {
	if f.Date != "" {
		f.StartDate, f.EndDate = f.Date, f.Date
	}
	if f.StartDate != "" && !domain.ValidDate(f.StartDate) {
		return f, false
	}
	if f.EndDate != "" && !domain.ValidDate(f.EndDate) {
		return f, false
	}
	if f.StartDate != "" && f.EndDate != "" && f.EndDate < f.StartDate {
		return f, false
	}
	return f, true
}

func (f AttendanceFilter) match(r domain.AttendanceRecord) bool {
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	if f.StartDate != "" && r.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && r.Date > f.EndDate {
		return false
	}
	if f.Status != "" && !strings.EqualFold(string(r.Status), string(f.Status)) {
		return false
	}
	return true
}

// GetAttendanceRecords returns the records matching filter ordered by date.
// A malformed filter yields an empty result and no error.
func (s *Service) GetAttendanceRecords(ctx context.Context, filter AttendanceFilter) ([]domain.AttendanceRecord, error) {
	out := []domain.AttendanceRecord{}
	err := s.observe(ctx, "get_attendance_records", func(ctx context.Context) error {
		f, ok := filter.normalize()
		if !ok {
			return nil
		}
		return s.view(ctx, func(v domain.TransactionView) error {
			for _, r := range v.ListAttendanceRecords() {
				if f.match(r) {
					out = append(out, r)
				}
			}
			return nil
		})
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, err
}

// AddAttendanceRecord stores the record for its employee and day. An
// existing record for the same day is replaced wholesale; only its id and
// creation time survive. A missing date means today;
// missing hours and status are derived from the clock times.
func (s *Service) AddAttendanceRecord(ctx context.Context, rec domain.AttendanceRecord) (domain.AttendanceRecord, error) {
	if strings.TrimSpace(rec.EmployeeID) == "" {
		return domain.AttendanceRecord{}, domain.ValidationError{Entity: domain.EntityAttendance, Field: "employeeId", Reason: "required"}
	}
	if rec.Date == "" {
		rec.Date = s.today()
	}
	if !domain.ValidDate(rec.Date) {
		return domain.AttendanceRecord{}, domain.ValidationError{Entity: domain.EntityAttendance, Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if rec.HoursWorked == 0 {
		rec.HoursWorked = domain.HoursBetween(rec.ClockIn, rec.ClockOut)
	}

	var stored domain.AttendanceRecord
	_, err := s.mutate(ctx, "add_attendance_record", domain.EntityAttendance, func(tx domain.Transaction) (string, []events.Event, error) {
		view := tx.Snapshot()
		if _, ok := view.FindEmployee(rec.EmployeeID); !ok {
			return rec.ID, nil, notFound(domain.EntityEmployee, rec.EmployeeID)
		}
		if rec.Status == "" {
			rec.Status = deriveStatus(rec, view.Settings().Attendance)
		}
		before, existed := view.FindAttendanceByDay(rec.EmployeeID, rec.Date)
		var (
			created bool
			err     error
		)
		stored, created, err = tx.UpsertAttendanceRecord(rec)
		if err != nil {
			return rec.ID, nil, err
		}
		ev := mutationEvent(events.AttendanceUpdated, domain.EntityAttendance, stored.ID, nil, stored)
		ev.Action = ActionAdd
		if !created {
			ev.Action = ActionUpdate
			if existed {
				ev.Before = domain.PayloadOf(before)
			}
		}
		return stored.ID, []events.Event{ev}, nil
	})
	return stored, err
}

// UpdateAttendanceRecord merges patch into an existing record.
func (s *Service) UpdateAttendanceRecord(ctx context.Context, id string, patch domain.AttendancePatch) (domain.AttendanceRecord, error) {
	if patch.Date != nil && !domain.ValidDate(*patch.Date) {
		return domain.AttendanceRecord{}, domain.ValidationError{Entity: domain.EntityAttendance, Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	var updated domain.AttendanceRecord
	_, err := s.mutate(ctx, "update_attendance_record", domain.EntityAttendance, func(tx domain.Transaction) (string, []events.Event, error) {
		before, ok := tx.Snapshot().FindAttendanceRecord(id)
		if !ok {
			return id, nil, notFound(domain.EntityAttendance, id)
		}
		var err error
		updated, err = tx.UpdateAttendanceRecord(id, func(r *domain.AttendanceRecord) error {
			patch.Apply(r)
			return nil
		})
		if err != nil {
			return id, nil, err
		}
		ev := mutationEvent(events.AttendanceUpdated, domain.EntityAttendance, id, before, updated)
		ev.Action = ActionUpdate
		return id, []events.Event{ev}, nil
	})
	return updated, err
}

// deriveStatus classifies a record without an explicit status: no clock-in
// is an absence, a clock-in past the late threshold is late and a shift
// longer than a full day is overtime.
func deriveStatus(r domain.AttendanceRecord, cfg domain.AttendanceSettings) domain.AttendanceStatus {
	in, err := time.Parse(domain.ClockLayout, r.ClockIn)
	if err != nil {
		return domain.AttendanceAbsent
	}
	if start, err := time.Parse(domain.ClockLayout, cfg.WorkStart); err == nil {
		limit := start.Add(time.Duration(cfg.LateThresholdMinutes) * time.Minute)
		if in.After(limit) {
			return domain.AttendanceLate
		}
	}
	if cfg.FullDayHours > 0 && r.HoursWorked > cfg.FullDayHours {
		return domain.AttendanceOvertime
	}
	return domain.AttendancePresent
}
