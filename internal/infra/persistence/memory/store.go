package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hrdesk/pkg/domain"
)

// Store is the in-memory model. Reads see committed state only; writes go
// through RunInTransaction which commits a cloned state atomically.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an empty model governed by engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc overrides the clock used to stamp records.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.nowFn = fn
	s.mu.Unlock()
}

// ExportState returns a deep copy of the committed state in insertion order.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the committed state with snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	state := memoryStateFromSnapshot(snapshot)
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// RulesEngine exposes the configured rules engine.
func (s *Store) RulesEngine() *RulesEngine {
	return s.engine
}

// NowFunc exposes the store clock.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// CacheStats stores computed statistics in the analytics cache. The cache
// is advisory and is written outside of the rules engine.
func (s *Store) CacheStats(key string, stats domain.AttendanceStats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.analytics.AttendanceStats == nil {
		s.state.analytics.AttendanceStats = make(map[string]domain.AttendanceStats)
	}
	s.state.analytics.AttendanceStats[key] = stats
	s.state.analytics.LastUpdated = s.nowFn()
}

// CachedStats returns a previously cached statistics entry.
func (s *Store) CachedStats(key string) (domain.AttendanceStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats, ok := s.state.analytics.AttendanceStats[key]
	return stats, ok
}

// RunInTransaction executes fn against a private copy of the state. The
// copy is committed only when fn succeeds and the rules engine reports no
// blocking violation.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (TransactionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return TransactionResult{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, newTransactionView(&tx.state), tx.changes)
		if err != nil {
			return TransactionResult{}, err
		}
		result = res
		if res.HasBlocking() {
			return TransactionResult{Result: res}, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return TransactionResult{Result: result, Changes: tx.changes}, nil
}

// View executes fn against a read-only copy of the committed state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()
	return fn(newTransactionView(&snapshot))
}

type transaction struct {
	state   memoryState
	now     time.Time
	changes []Change
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

func (tx *transaction) CreateEmployee(e Employee) (Employee, error) {
	if strings.TrimSpace(e.Name) == "" {
		return Employee{}, domain.ValidationError{Entity: domain.EntityEmployee, Field: "name", Reason: "required"}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, exists := tx.state.employees[e.ID]; exists {
		return Employee{}, domain.ValidationError{Entity: domain.EntityEmployee, Field: "id", Reason: "already exists"}
	}
	e.CreatedAt = stampTime(e.CreatedAt, tx.now)
	e.UpdatedAt = tx.now
	if e.Status == "" {
		e.Status = domain.EmployeeActive
	}
	if e.Role == "" {
		e.Role = domain.RoleEmployee
	}
	tx.state.putEmployee(e)
	tx.recordChange(Change{Entity: domain.EntityEmployee, Action: domain.ActionCreate, After: cloneEmployee(e)})
	return cloneEmployee(e), nil
}

func (tx *transaction) UpdateEmployee(id string, mutator func(*Employee) error) (Employee, error) {
	current, ok := tx.state.employees[id]
	if !ok {
		return Employee{}, domain.NotFoundError{Entity: domain.EntityEmployee, ID: id}
	}
	before := cloneEmployee(current)
	current = cloneEmployee(current)
	if err := mutator(&current); err != nil {
		return Employee{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.putEmployee(current)
	tx.recordChange(Change{Entity: domain.EntityEmployee, Action: domain.ActionUpdate, Before: before, After: cloneEmployee(current)})
	return cloneEmployee(current), nil
}

// DeleteEmployee removes the employee only. Attendance and payroll records
// that reference it are kept as history.
func (tx *transaction) DeleteEmployee(id string) (Employee, error) {
	current, ok := tx.state.employees[id]
	if !ok {
		return Employee{}, domain.NotFoundError{Entity: domain.EntityEmployee, ID: id}
	}
	tx.state.removeEmployee(id)
	tx.recordChange(Change{Entity: domain.EntityEmployee, Action: domain.ActionDelete, Before: cloneEmployee(current)})
	return cloneEmployee(current), nil
}

// UpsertAttendanceRecord replaces the record for the same employee and date
// when one exists; only its id and creation time are kept. Otherwise a new
// record is inserted.
func (tx *transaction) UpsertAttendanceRecord(r AttendanceRecord) (AttendanceRecord, bool, error) {
	if strings.TrimSpace(r.EmployeeID) == "" {
		return AttendanceRecord{}, false, domain.ValidationError{Entity: domain.EntityAttendance, Field: "employeeId", Reason: "required"}
	}
	if !domain.ValidDate(r.Date) {
		return AttendanceRecord{}, false, domain.ValidationError{Entity: domain.EntityAttendance, Field: "date", Reason: "must be YYYY-MM-DD"}
	}
	if existingID, ok := tx.state.attendanceByDay[dayKey(r.EmployeeID, r.Date)]; ok {
		before := tx.state.attendance[existingID]
		r.ID = existingID
		r.CreatedAt = before.CreatedAt
		r.UpdatedAt = tx.now
		tx.state.putAttendance(r)
		tx.recordChange(Change{Entity: domain.EntityAttendance, Action: domain.ActionUpdate, Before: before, After: r})
		return r, false, nil
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, exists := tx.state.attendance[r.ID]; exists {
		return AttendanceRecord{}, false, domain.ValidationError{Entity: domain.EntityAttendance, Field: "id", Reason: "already exists"}
	}
	r.CreatedAt = stampTime(r.CreatedAt, tx.now)
	r.UpdatedAt = tx.now
	tx.state.putAttendance(r)
	tx.recordChange(Change{Entity: domain.EntityAttendance, Action: domain.ActionCreate, After: r})
	return r, true, nil
}

func (tx *transaction) UpdateAttendanceRecord(id string, mutator func(*AttendanceRecord) error) (AttendanceRecord, error) {
	current, ok := tx.state.attendance[id]
	if !ok {
		return AttendanceRecord{}, domain.NotFoundError{Entity: domain.EntityAttendance, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return AttendanceRecord{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	if current.EmployeeID != before.EmployeeID || current.Date != before.Date {
		if otherID, taken := tx.state.attendanceByDay[dayKey(current.EmployeeID, current.Date)]; taken && otherID != id {
			return AttendanceRecord{}, domain.ValidationError{Entity: domain.EntityAttendance, Field: "date", Reason: "record already exists for that day"}
		}
	}
	tx.state.putAttendance(current)
	tx.recordChange(Change{Entity: domain.EntityAttendance, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

func (tx *transaction) AppendPayrollRecord(p PayrollRecord) (PayrollRecord, error) {
	if strings.TrimSpace(p.EmployeeID) == "" {
		return PayrollRecord{}, domain.ValidationError{Entity: domain.EntityPayroll, Field: "employeeId", Reason: "required"}
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CalculatedAt.IsZero() {
		p.CalculatedAt = tx.now
	}
	tx.state.payroll = append(tx.state.payroll, p)
	tx.recordChange(Change{Entity: domain.EntityPayroll, Action: domain.ActionCreate, After: p})
	return p, nil
}

func (tx *transaction) UpdateSettings(mutator func(*Settings) error) (Settings, error) {
	before := cloneSettings(tx.state.settings)
	current := cloneSettings(tx.state.settings)
	if err := mutator(&current); err != nil {
		return Settings{}, err
	}
	current.UpdatedAt = tx.now
	tx.state.settings = current
	tx.recordChange(Change{Entity: domain.EntitySettings, Action: domain.ActionUpdate, Before: before, After: cloneSettings(current)})
	return cloneSettings(current), nil
}

type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func (v transactionView) ListEmployees() []Employee {
	return v.state.employeeList()
}

func (v transactionView) ListAttendanceRecords() []AttendanceRecord {
	return v.state.attendanceList()
}

func (v transactionView) ListPayrollRecords() []PayrollRecord {
	return append([]PayrollRecord(nil), v.state.payroll...)
}

func (v transactionView) FindEmployee(id string) (Employee, bool) {
	e, ok := v.state.employees[id]
	if !ok {
		return Employee{}, false
	}
	return cloneEmployee(e), true
}

func (v transactionView) FindAttendanceRecord(id string) (AttendanceRecord, bool) {
	r, ok := v.state.attendance[id]
	return r, ok
}

func (v transactionView) FindAttendanceByDay(employeeID, date string) (AttendanceRecord, bool) {
	id, ok := v.state.attendanceByDay[dayKey(employeeID, date)]
	if !ok {
		return AttendanceRecord{}, false
	}
	return v.state.attendance[id], true
}

func (v transactionView) Settings() Settings {
	return cloneSettings(v.state.settings)
}
