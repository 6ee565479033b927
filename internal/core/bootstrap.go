package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrdesk/internal/events"
	"hrdesk/internal/fixtures"
	"hrdesk/internal/infra/persistence/memory"
	"hrdesk/internal/infra/persistence/snapshot"
	"hrdesk/pkg/domain"
)

// Snapshot sources reported by Bootstrap.
const (
	SourcePersisted   = "persisted"
	SourceFixture     = "fixture"
	SourceSynthesized = "synthesized"
)

// BackfillNote marks attendance rows created by the backfill.
const BackfillNote = "auto-generated"

// Bootstrap fills the model from storage, falling back to the fixture and
// then to the synthesized dataset. Loaded data is cleaned and today is
// backfilled so every active employee has an attendance row. When storage
// fails with anything other than a missing snapshot the seed data is used
// in memory only and persistence stays suspended until Reload succeeds.
func (s *Service) Bootstrap(ctx context.Context) error {
	snap, err := s.adapter.Load(ctx)
	source := SourcePersisted
	if err != nil {
		if !errors.Is(err, snapshot.ErrSnapshotNotFound) {
			s.logger.Error("storage unreadable, running from seed data without saving", "error", err)
			s.suspended.Store(true)
		}
		snap, source = s.seed()
	}

	cleaned, dropped := memory.CleanSnapshot(snap)
	if !dropped.Empty() {
		s.logger.Warn("discarded invalid records", "employees", dropped.Employees, "attendance", dropped.Attendance)
	}
	s.store.ImportState(cleaned)
	s.logger.Info("data layer loaded", "source", source, "employees", len(cleaned.Employees), "attendance", len(cleaned.AttendanceRecords))

	if source != SourcePersisted || !dropped.Empty() {
		if source == SourceFixture {
			s.adapter.MarkFixtureLoaded()
		}
		if err := s.save(ctx); err != nil {
			s.logger.Error("initial save failed", "error", err)
		}
	}

	if _, err := s.BackfillToday(ctx); err != nil {
		return fmt.Errorf("core: backfill today: %w", err)
	}
	return nil
}

func (s *Service) seed() (domain.Snapshot, string) {
	snap, err := fixtures.Load(s.fixturePath)
	if err == nil {
		return snap, SourceFixture
	}
	s.logger.Warn("fixture unavailable, synthesizing dataset", "path", s.fixturePath, "error", err)
	return fixtures.Synthesize(s.clock.Now()), SourceSynthesized
}

// save writes the snapshot without pinging other tabs.
func (s *Service) save(ctx context.Context) error {
	if s.suspended.Load() {
		return nil
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	outcome, err := s.adapter.Save(ctx, s.store.ExportState())
	if err == nil && outcome == snapshot.SaveDegraded {
		s.logger.Warn("snapshot saved in reduced form", "status", string(s.adapter.Status()))
	}
	return err
}

// BackfillToday runs BackfillDay for the current date.
func (s *Service) BackfillToday(ctx context.Context) (int, error) {
	return s.BackfillDay(ctx, s.today())
}

// BackfillDay adds a placeholder attendance row for every active employee
// without one on date. Statuses follow a fixed rotation by employee order
// so repeated runs agree. It returns the number of rows added.
func (s *Service) BackfillDay(ctx context.Context, date string) (int, error) {
	if !domain.ValidDate(date) {
		return 0, domain.ValidationError{Entity: domain.EntityAttendance, Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	missing := 0
	if err := s.view(ctx, func(v domain.TransactionView) error {
		for _, e := range v.ListEmployees() {
			if _, ok := v.FindAttendanceByDay(e.ID, date); e.IsActive() && !ok {
				missing++
			}
		}
		return nil
	}); err != nil || missing == 0 {
		return 0, err
	}

	added := 0
	_, err := s.mutate(ctx, "backfill_attendance", domain.EntityAttendance, func(tx domain.Transaction) (string, []events.Event, error) {
		view := tx.Snapshot()
		cfg := view.Settings().Attendance
		var pending []events.Event
		for i, e := range view.ListEmployees() {
			if !e.IsActive() {
				continue
			}
			if _, ok := view.FindAttendanceByDay(e.ID, date); ok {
				continue
			}
			rec, _, err := tx.UpsertAttendanceRecord(placeholder(e.ID, date, i, cfg))
			if err != nil {
				return "", nil, err
			}
			ev := mutationEvent(events.AttendanceUpdated, domain.EntityAttendance, rec.ID, nil, rec)
			ev.Action = ActionAdd
			pending = append(pending, ev)
			added++
		}
		return date, pending, nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func placeholder(employeeID, date string, i int, cfg domain.AttendanceSettings) domain.AttendanceRecord {
	r := domain.AttendanceRecord{EmployeeID: employeeID, Date: date, Notes: BackfillNote}
	switch {
	case i%7 == 6:
		r.Status = domain.AttendanceAbsent
	case i%5 == 4:
		r.Status = domain.AttendanceLate
		r.ClockIn = lateClockIn(cfg)
	default:
		r.Status = domain.AttendancePresent
		r.ClockIn = cfg.WorkStart
	}
	return r
}

func lateClockIn(cfg domain.AttendanceSettings) string {
	start, err := time.Parse(domain.ClockLayout, cfg.WorkStart)
	if err != nil {
		return ""
	}
	return start.Add(time.Duration(cfg.LateThresholdMinutes+10) * time.Minute).Format(domain.ClockLayout)
}

// Reload replaces the model with the persisted snapshot and emits dataSync
// with action. Records dropped by cleaning are written back without a ping.
// A missing snapshot leaves the model untouched.
func (s *Service) Reload(ctx context.Context, action string) error {
	return s.observe(ctx, "reload", func(ctx context.Context) error {
		snap, err := s.adapter.Load(ctx)
		if err != nil {
			return fmt.Errorf("core: reload: %w", err)
		}
		cleaned, dropped := memory.CleanSnapshot(snap)
		s.store.ImportState(cleaned)
		s.suspended.Store(false)
		if !dropped.Empty() {
			s.logger.Warn("discarded invalid records on reload", "employees", dropped.Employees, "attendance", dropped.Attendance)
			if err := s.save(ctx); err != nil {
				s.logger.Error("save cleaned snapshot failed", "error", err)
			}
		}
		s.notifier.Emit(events.Event{Name: events.DataSync, Action: action, At: s.clock.Now()})
		return nil
	})
}
