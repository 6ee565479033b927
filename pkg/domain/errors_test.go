package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	nf := fmt.Errorf("lookup: %w", NotFoundError{Entity: EntityEmployee, ID: "e9"})
	if !IsNotFound(nf) {
		t.Fatalf("expected wrapped not-found to match")
	}
	if nf.Error() != "lookup: employee e9 not found" {
		t.Fatalf("unexpected message %q", nf.Error())
	}
	if IsValidation(nf) {
		t.Fatalf("not-found must not classify as validation")
	}

	ve := ValidationError{Entity: EntityEmployee, Field: "name", Reason: "required"}
	if !IsValidation(ve) || ve.Error() != "invalid employee name: required" {
		t.Fatalf("unexpected validation error %q", ve.Error())
	}

	rv := RuleViolationError{Result: Result{Violations: []Violation{
		{Rule: "a", Severity: SeverityWarn, Message: "soft"},
		{Rule: "b", Severity: SeverityBlock, Message: "hard"},
	}}}
	if !IsValidation(rv) {
		t.Fatalf("rule violations classify as validation")
	}
	if !strings.Contains(rv.Error(), "hard") || strings.Contains(rv.Error(), "soft") {
		t.Fatalf("only blocking messages expected: %q", rv.Error())
	}
	if !errors.Is(fmt.Errorf("login: %w", ErrInvalidCredentials), ErrInvalidCredentials) {
		t.Fatalf("wrapped sentinel should match")
	}
}

func TestCorruptedStateErrorEmpty(t *testing.T) {
	if !(CorruptedStateError{}).Empty() {
		t.Fatalf("zero value should be empty")
	}
	e := CorruptedStateError{Employees: 1, Attendance: 2}
	if e.Empty() || !strings.Contains(e.Error(), "1 invalid employees") {
		t.Fatalf("unexpected %q", e.Error())
	}
}

type staticRule struct {
	name string
	res  Result
	err  error
}

func (r staticRule) Name() string { return r.name }
func (r staticRule) Evaluate(context.Context, RuleView, []Change) (Result, error) {
	return r.res, r.err
}

func TestRulesEngineAggregates(t *testing.T) {
	engine := NewRulesEngine(staticRule{name: "warn", res: Result{Violations: []Violation{{Severity: SeverityWarn}}}})
	engine.Register(staticRule{name: "block", res: Result{Violations: []Violation{{Severity: SeverityBlock}}}})
	if names := engine.Names(); len(names) != 2 || names[0] != "warn" || names[1] != "block" {
		t.Fatalf("unexpected rule order %v", names)
	}
	res, err := engine.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Violations) != 2 || !res.HasBlocking() {
		t.Fatalf("unexpected result %+v", res)
	}

	failing := NewRulesEngine()
	failing.Register(staticRule{name: "err", err: errors.New("boom")})
	if _, err := failing.Evaluate(context.Background(), nil, nil); err == nil || !strings.Contains(err.Error(), "rule err: boom") {
		t.Fatalf("expected rule error to propagate, got %v", err)
	}
}

func TestChangePayloadDecode(t *testing.T) {
	p := PayloadOf(Employee{Base: Base{ID: "e1"}, Name: "Ann"})
	if !p.Defined() {
		t.Fatalf("expected defined payload")
	}
	got, ok := DecodePayload[Employee](p)
	if !ok || got.ID != "e1" || got.Name != "Ann" {
		t.Fatalf("decode mismatch: %+v", got)
	}
	raw := p.Raw()
	raw[0] = 'x'
	if _, ok := DecodePayload[Employee](p); !ok {
		t.Fatalf("mutating Raw() must not affect the payload")
	}
	if _, ok := DecodePayload[Employee](PayloadOf(nil)); ok {
		t.Fatalf("undefined payload must not decode")
	}
	b, _ := ChangePayload{}.MarshalJSON()
	if string(b) != "null" {
		t.Fatalf("expected null, got %s", b)
	}
}
