package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"hrdesk/pkg/domain"
)

func fixedStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(nil)
	now := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return now })
	return store
}

func TestStoreRunInTransactionAndSnapshots(t *testing.T) {
	store := fixedStore(t)
	ctx := context.Background()
	res, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		created, err := tx.CreateEmployee(domain.Employee{Name: "Ann", Username: "ann"})
		if err != nil {
			return err
		}
		if created.ID == "" {
			t.Fatalf("expected generated ID")
		}
		if created.Status != domain.EmployeeActive || created.Role != domain.RoleEmployee {
			t.Fatalf("expected defaults, got %+v", created)
		}
		if len(tx.Snapshot().ListEmployees()) != 1 {
			t.Fatalf("snapshot mismatch")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run transaction: %v", err)
	}
	if len(res.Changes) != 1 || res.Changes[0].Action != domain.ActionCreate {
		t.Fatalf("expected one create change, got %+v", res.Changes)
	}

	snapshot := store.ExportState()
	if len(snapshot.Employees) != 1 {
		t.Fatalf("expected exported employee")
	}
	store.ImportState(Snapshot{})
	if len(store.ExportState().Employees) != 0 {
		t.Fatalf("expected cleared state")
	}
	store.ImportState(snapshot)
	if len(store.ExportState().Employees) != 1 {
		t.Fatalf("expected restored state")
	}
	if store.RulesEngine() == nil || store.NowFunc() == nil {
		t.Fatalf("expected accessors")
	}
}

func TestStoreRuleViolation(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	store.RulesEngine().Register(blockingRule{})
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateEmployee(domain.Employee{Name: "Fail"})
		return e
	})
	var rv domain.RuleViolationError
	if !errors.As(err, &rv) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if len(store.ExportState().Employees) != 0 {
		t.Fatalf("blocked transaction must not commit")
	}
}

type blockingRule struct{}

func (blockingRule) Name() string { return "block" }

func (blockingRule) Evaluate(ctx context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	res.Merge(domain.Result{Violations: []domain.Violation{{Rule: "block", Severity: domain.SeverityBlock}}})
	return res, nil
}

func TestStoreFailedTransactionLeavesStateUntouched(t *testing.T) {
	store := fixedStore(t)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateEmployee(domain.Employee{Base: domain.Base{ID: "e1"}, Name: "Ann"}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil {
		t.Fatalf("expected abort error")
	}
	if len(store.ExportState().Employees) != 0 {
		t.Fatalf("aborted transaction leaked state")
	}
}

func TestEmployeeErrors(t *testing.T) {
	store := fixedStore(t)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateEmployee(domain.Employee{Name: "  "}); !domain.IsValidation(err) {
			t.Fatalf("expected validation error for blank name, got %v", err)
		}
		if _, err := tx.CreateEmployee(domain.Employee{Base: domain.Base{ID: "e1"}, Name: "Ann"}); err != nil {
			return err
		}
		if _, err := tx.CreateEmployee(domain.Employee{Base: domain.Base{ID: "e1"}, Name: "Bob"}); !domain.IsValidation(err) {
			t.Fatalf("expected duplicate id error, got %v", err)
		}
		if _, err := tx.UpdateEmployee("missing", func(*domain.Employee) error { return nil }); !domain.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		if _, err := tx.DeleteEmployee("missing"); !domain.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		mutErr := errors.New("mutator failed")
		if _, err := tx.UpdateEmployee("e1", func(*domain.Employee) error { return mutErr }); !errors.Is(err, mutErr) {
			t.Fatalf("expected mutator error, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestUpdateEmployeePreservesIdentity(t *testing.T) {
	store := fixedStore(t)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.CreateEmployee(domain.Employee{Base: domain.Base{ID: "e1"}, Name: "Ann", HourlyRate: 20})
		return err
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	later := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return later })
	res, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.UpdateEmployee("e1", func(e *domain.Employee) error {
			e.ID = "hijack"
			e.HourlyRate = 25
			e.LastWageUpdate = &domain.WageUpdate{PreviousRate: 20, NewRate: 25}
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	before, _ := res.Changes[0].Before.(domain.Employee)
	after, _ := res.Changes[0].After.(domain.Employee)
	if before.HourlyRate != 20 || after.HourlyRate != 25 {
		t.Fatalf("unexpected change payloads %+v -> %+v", before, after)
	}
	got := store.ExportState().Employees[0]
	if got.ID != "e1" || !got.UpdatedAt.Equal(later) || got.CreatedAt.Equal(later) {
		t.Fatalf("identity or timestamps wrong: %+v", got)
	}
	got.LastWageUpdate.NewRate = 99
	if store.ExportState().Employees[0].LastWageUpdate.NewRate != 25 {
		t.Fatalf("exported employee shares wage pointer with state")
	}
}

func TestDeleteEmployeeKeepsHistory(t *testing.T) {
	store := fixedStore(t)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, err := tx.CreateEmployee(domain.Employee{Base: domain.Base{ID: "e1"}, Name: "Ann"}); err != nil {
			return err
		}
		_, _, err := tx.UpsertAttendanceRecord(domain.AttendanceRecord{EmployeeID: "e1", Date: "2024-03-04", Status: domain.AttendancePresent})
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, err := tx.DeleteEmployee("e1")
		return err
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap := store.ExportState()
	if len(snap.Employees) != 0 || len(snap.AttendanceRecords) != 1 {
		t.Fatalf("expected attendance history to survive, got %+v", snap)
	}
}

func TestUpsertAttendanceByDay(t *testing.T) {
	store := fixedStore(t)
	ctx := context.Background()
	var first domain.AttendanceRecord
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		rec, created, err := tx.UpsertAttendanceRecord(domain.AttendanceRecord{EmployeeID: "e1", Date: "2024-03-04", ClockIn: "09:00", Status: domain.AttendancePresent})
		if err != nil {
			return err
		}
		if !created {
			t.Fatalf("expected create")
		}
		first = rec
		return nil
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	res, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		rec, created, err := tx.UpsertAttendanceRecord(domain.AttendanceRecord{EmployeeID: "e1", Date: "2024-03-04", ClockIn: "09:00", ClockOut: "17:00", HoursWorked: 8, Status: domain.AttendancePresent})
		if err != nil {
			return err
		}
		if created || rec.ID != first.ID || !rec.CreatedAt.Equal(first.CreatedAt) {
			t.Fatalf("expected merge into existing record, got %+v", rec)
		}
		found, ok := tx.Snapshot().FindAttendanceByDay("e1", "2024-03-04")
		if !ok || found.HoursWorked != 8 {
			t.Fatalf("day index stale: %+v", found)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if res.Changes[0].Action != domain.ActionUpdate {
		t.Fatalf("expected update action, got %s", res.Changes[0].Action)
	}
	if n := len(store.ExportState().AttendanceRecords); n != 1 {
		t.Fatalf("expected single record per day, got %d", n)
	}
}

func TestUpsertAttendanceValidation(t *testing.T) {
	store := fixedStore(t)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, _, err := tx.UpsertAttendanceRecord(domain.AttendanceRecord{Date: "2024-03-04"}); !domain.IsValidation(err) {
			t.Fatalf("expected missing employee error, got %v", err)
		}
		if _, _, err := tx.UpsertAttendanceRecord(domain.AttendanceRecord{EmployeeID: "e1", Date: "03/04/2024"}); !domain.IsValidation(err) {
			t.Fatalf("expected bad date error, got %v", err)
		}
		if _, err := tx.UpdateAttendanceRecord("missing", func(*domain.AttendanceRecord) error { return nil }); !domain.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestUpdateAttendanceMovesDayIndex(t *testing.T) {
	store := fixedStore(t)
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		a, _, err := tx.UpsertAttendanceRecord(domain.AttendanceRecord{EmployeeID: "e1", Date: "2024-03-04"})
		if err != nil {
			return err
		}
		if _, _, err := tx.UpsertAttendanceRecord(domain.AttendanceRecord{EmployeeID: "e1", Date: "2024-03-05"}); err != nil {
			return err
		}
		if _, err := tx.UpdateAttendanceRecord(a.ID, func(r *domain.AttendanceRecord) error {
			r.Date = "2024-03-05"
			return nil
		}); !domain.IsValidation(err) {
			t.Fatalf("expected day collision error, got %v", err)
		}
		if _, err := tx.UpdateAttendanceRecord(a.ID, func(r *domain.AttendanceRecord) error {
			r.Date = "2024-03-06"
			return nil
		}); err != nil {
			return err
		}
		view := tx.Snapshot()
		if _, ok := view.FindAttendanceByDay("e1", "2024-03-04"); ok {
			t.Fatalf("old day index entry should be gone")
		}
		if got, ok := view.FindAttendanceByDay("e1", "2024-03-06"); !ok || got.ID != a.ID {
			t.Fatalf("new day index entry missing")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
}

func TestPayrollAndSettings(t *testing.T) {
	store := fixedStore(t)
	res, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.AppendPayrollRecord(domain.PayrollRecord{}); !domain.IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		p, err := tx.AppendPayrollRecord(domain.PayrollRecord{EmployeeID: "e1", GrossPay: 220})
		if err != nil {
			return err
		}
		if p.ID == "" || p.CalculatedAt.IsZero() {
			t.Fatalf("expected stamped payroll record: %+v", p)
		}
		_, err = tx.UpdateSettings(func(s *domain.Settings) error {
			s.Company.Name = "Acme"
			s.Departments = append(s.Departments, "Legal")
			return nil
		})
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if len(res.Changes) != 2 {
		t.Fatalf("expected two changes, got %d", len(res.Changes))
	}
	snap := store.ExportState()
	if len(snap.PayrollRecords) != 1 || snap.Settings.Company.Name != "Acme" || snap.Settings.UpdatedAt.IsZero() {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	snap.Settings.Departments[0] = "mutated"
	if store.ExportState().Settings.Departments[0] == "mutated" {
		t.Fatalf("exported settings share departments slice")
	}
}

func TestViewIsReadOnlyCopy(t *testing.T) {
	store := fixedStore(t)
	store.ImportState(Snapshot{Employees: []domain.Employee{{Base: domain.Base{ID: "e1"}, Name: "Ann"}}})
	err := store.View(context.Background(), func(v domain.TransactionView) error {
		emps := v.ListEmployees()
		emps[0].Name = "changed"
		if got, _ := v.FindEmployee("e1"); got.Name != "Ann" {
			t.Fatalf("view listing aliased state")
		}
		if v.Settings().Payroll.StandardHours != 8 {
			t.Fatalf("expected default settings")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("view: %v", err)
	}
}

func TestCacheStats(t *testing.T) {
	store := fixedStore(t)
	if _, ok := store.CachedStats("2024-03-04"); ok {
		t.Fatalf("expected empty cache")
	}
	store.CacheStats("2024-03-04", domain.AttendanceStats{TotalEmployees: 3})
	got, ok := store.CachedStats("2024-03-04")
	if !ok || got.TotalEmployees != 3 {
		t.Fatalf("cache miss: %+v", got)
	}
	if store.ExportState().Analytics.LastUpdated.IsZero() {
		t.Fatalf("expected analytics timestamp")
	}
}
