package core

import (
	"context"
	"fmt"

	"hrdesk/pkg/domain"
)

// MaxReasonableRate is the hourly rate above which a warning is raised.
const MaxReasonableRate = 1000

// NewPayBoundsRule blocks negative hourly rates and payroll settings that
// would make calculations meaningless.
func NewPayBoundsRule() domain.Rule {
	return payBoundsRule{}
}

type payBoundsRule struct{}

func (payBoundsRule) Name() string { return "pay_bounds" }

func (r payBoundsRule) Evaluate(_ context.Context, view domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, e := range changedEmployees(changes) {
		switch {
		case e.HourlyRate < 0:
			res.Violations = append(res.Violations, r.violation(domain.SeverityBlock, domain.EntityEmployee, e.ID,
				fmt.Sprintf("hourly rate %.2f for %s is negative", e.HourlyRate, e.ID)))
		case e.HourlyRate > MaxReasonableRate:
			res.Violations = append(res.Violations, r.violation(domain.SeverityWarn, domain.EntityEmployee, e.ID,
				fmt.Sprintf("hourly rate %.2f for %s is unusually high", e.HourlyRate, e.ID)))
		}
	}

	if !settingsChanged(changes) {
		return res, nil
	}
	p := view.Settings().Payroll
	if p.TaxRate < 0 || p.TaxRate > 1 {
		res.Violations = append(res.Violations, r.violation(domain.SeverityBlock, domain.EntitySettings, "",
			fmt.Sprintf("tax rate %.2f must be between 0 and 1", p.TaxRate)))
	}
	if p.StandardHours <= 0 {
		res.Violations = append(res.Violations, r.violation(domain.SeverityBlock, domain.EntitySettings, "",
			"standard hours must be positive"))
	}
	if p.StandardWage < 0 {
		res.Violations = append(res.Violations, r.violation(domain.SeverityBlock, domain.EntitySettings, "",
			"standard wage must not be negative"))
	}
	if !p.PayFrequency.Valid() {
		res.Violations = append(res.Violations, r.violation(domain.SeverityBlock, domain.EntitySettings, "",
			fmt.Sprintf("unknown pay frequency %q", p.PayFrequency)))
	}
	if p.OvertimeMultiplier < 1 {
		res.Violations = append(res.Violations, r.violation(domain.SeverityWarn, domain.EntitySettings, "",
			fmt.Sprintf("overtime multiplier %.2f pays overtime below the regular rate", p.OvertimeMultiplier)))
	}
	return res, nil
}

func settingsChanged(changes []domain.Change) bool {
	for _, c := range changes {
		if c.Entity == domain.EntitySettings {
			return true
		}
	}
	return false
}

func (r payBoundsRule) violation(sev domain.Severity, entity domain.EntityType, id, msg string) domain.Violation {
	return domain.Violation{Rule: r.Name(), Severity: sev, Message: msg, Entity: entity, EntityID: id}
}
