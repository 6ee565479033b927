package core

import (
	"context"
	"fmt"
	"strings"

	"hrdesk/pkg/domain"
)

// NewUniqueUsernameRule blocks two employees sharing a username. Usernames
// compare case-insensitively; empty usernames are ignored.
func NewUniqueUsernameRule() domain.Rule {
	return uniqueUsernameRule{}
}

type uniqueUsernameRule struct{}

func (uniqueUsernameRule) Name() string { return "unique_username" }

func (r uniqueUsernameRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	changed := changedEmployees(changes)
	if len(changed) == 0 {
		return domain.Result{}, nil
	}
	owners := make(map[string][]string)
	for _, e := range view.ListEmployees() {
		key := strings.ToLower(strings.TrimSpace(e.Username))
		if key == "" {
			continue
		}
		owners[key] = append(owners[key], e.ID)
	}

	res := domain.Result{}
	for _, e := range changed {
		key := strings.ToLower(strings.TrimSpace(e.Username))
		if ids := owners[key]; key != "" && len(ids) > 1 {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     r.Name(),
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("username %q is already taken", e.Username),
				Entity:   domain.EntityEmployee,
				EntityID: e.ID,
			})
		}
	}
	return res, nil
}
