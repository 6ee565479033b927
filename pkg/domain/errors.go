package domain

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError is returned when a referenced entity does not exist.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ValidationError reports a missing or invalid field.
type ValidationError struct {
	Entity EntityType
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("invalid %s %s: %s", e.Entity, e.Field, e.Reason)
}

// ErrInvalidCredentials is returned by authentication for an unknown user,
// a wrong password or an inactive account.
var ErrInvalidCredentials = errors.New("invalid credentials")

// CorruptedStateError summarises the records dropped by the load-time
// cleaning pass. It is logged, never returned across the public API.
type CorruptedStateError struct {
	Employees  int
	Attendance int
}

// Empty reports whether nothing was dropped.
func (e CorruptedStateError) Empty() bool {
	return e.Employees == 0 && e.Attendance == 0
}

func (e CorruptedStateError) Error() string {
	return fmt.Sprintf("discarded %d invalid employees and %d invalid attendance records", e.Employees, e.Attendance)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsValidation reports whether err wraps a ValidationError or a blocking
// rule violation.
func IsValidation(err error) bool {
	var ve ValidationError
	if errors.As(err, &ve) {
		return true
	}
	var rv RuleViolationError
	return errors.As(err, &rv)
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	var msgs []string
	for _, v := range e.Result.Blocking() {
		msgs = append(msgs, v.Message)
	}
	if len(msgs) == 0 {
		return "transaction blocked by rules"
	}
	return "transaction blocked by rules: " + strings.Join(msgs, "; ")
}
