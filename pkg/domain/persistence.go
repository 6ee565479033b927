package domain

import "context"

// Transaction exposes the mutations a model implementation must support
// within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateEmployee(Employee) (Employee, error)
	UpdateEmployee(id string, mutator func(*Employee) error) (Employee, error)
	DeleteEmployee(id string) (Employee, error)
	UpsertAttendanceRecord(AttendanceRecord) (rec AttendanceRecord, created bool, err error)
	UpdateAttendanceRecord(id string, mutator func(*AttendanceRecord) error) (AttendanceRecord, error)
	AppendPayrollRecord(PayrollRecord) (PayrollRecord, error)
	UpdateSettings(mutator func(*Settings) error) (Settings, error)
}

// TransactionView provides read-only access to snapshot data.
type TransactionView interface {
	RuleView
	ListPayrollRecords() []PayrollRecord
	FindAttendanceByDay(employeeID, date string) (AttendanceRecord, bool)
}

// PersistentStore is the abstraction higher layers use over the in-memory
// model. Mutations run inside RunInTransaction; reads observe committed state.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (TransactionResult, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	ExportState() Snapshot
	ImportState(Snapshot)
}

// TransactionResult is what a committed transaction reports back: the rule
// evaluation result and the ordered changes it applied.
type TransactionResult struct {
	Result  Result
	Changes []Change
}
