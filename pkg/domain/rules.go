package domain

import (
	"context"
	"fmt"
)

// Severity decides what a violation does to the transaction it was raised in.
type Severity string

const (
	// SeverityBlock aborts the transaction.
	SeverityBlock Severity = "block"
	// SeverityWarn is logged and the transaction commits.
	SeverityWarn Severity = "warn"
)

// Violation is a single finding raised by a rule against one entity.
type Violation struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Entity   EntityType `json:"entity"`
	EntityID string     `json:"entityId,omitempty"`
}

// Result collects the violations of every rule run for a transaction.
type Result struct {
	Violations []Violation
}

// Merge adds the violations of other to r.
func (r *Result) Merge(other Result) {
	r.Violations = append(r.Violations, other.Violations...)
}

// Blocking returns the violations with SeverityBlock.
func (r Result) Blocking() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			out = append(out, v)
		}
	}
	return out
}

// HasBlocking reports whether the transaction must be rejected.
func (r Result) HasBlocking() bool {
	return len(r.Blocking()) > 0
}

// RuleView is the read side of the staged model that rules inspect.
type RuleView interface {
	ListEmployees() []Employee
	ListAttendanceRecords() []AttendanceRecord
	FindEmployee(id string) (Employee, bool)
	FindAttendanceRecord(id string) (AttendanceRecord, bool)
	Settings() Settings
}

// Rule checks the staged changes of a transaction before it commits.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine runs its registered rules in registration order.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine returns an engine with the given rules registered.
func NewRulesEngine(rules ...Rule) *RulesEngine {
	return &RulesEngine{rules: append([]Rule(nil), rules...)}
}

// Register adds rules to the end of the evaluation order.
func (e *RulesEngine) Register(rules ...Rule) {
	e.rules = append(e.rules, rules...)
}

// Names lists the registered rules in evaluation order.
func (e *RulesEngine) Names() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	return names
}

// Evaluate runs every rule against the staged view. The first rule error
// aborts evaluation.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var res Result
	for _, rule := range e.rules {
		r, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, fmt.Errorf("rule %s: %w", rule.Name(), err)
		}
		res.Merge(r)
	}
	return res, nil
}
