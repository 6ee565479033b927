package core

import (
	"hrdesk/pkg/domain"
)

// NewDefaultRulesEngine returns the engine with the built-in rules
// registered.
func NewDefaultRulesEngine() *domain.RulesEngine {
	return domain.NewRulesEngine(
		NewUniqueUsernameRule(),
		NewAttendanceReferenceRule(),
		NewPayBoundsRule(),
	)
}

// changedEmployees returns the post-change state of every employee created
// or updated in changes.
func changedEmployees(changes []domain.Change) []domain.Employee {
	var out []domain.Employee
	for _, c := range changes {
		if c.Entity != domain.EntityEmployee || c.Action == domain.ActionDelete {
			continue
		}
		if e, ok := c.After.(domain.Employee); ok {
			out = append(out, e)
		}
	}
	return out
}
