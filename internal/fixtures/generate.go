package fixtures

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit"
	"golang.org/x/crypto/bcrypt"

	"hrdesk/pkg/domain"
)

// GenerateOptions controls Generate.
type GenerateOptions struct {
	Employees int
	Days      int
	Seed      int64
	// Today is the last generated attendance day.
	Today time.Time
	// Password is hashed with bcrypt and shared by every generated account.
	Password string
}

// Generate builds a random but reproducible dataset: an admin plus
// Employees staff accounts and Days days of attendance ending at Today.
// Weekends are skipped.
func Generate(opts GenerateOptions) (domain.Snapshot, error) {
	if opts.Employees < 1 {
		opts.Employees = 10
	}
	if opts.Days < 1 {
		opts.Days = 14
	}
	if opts.Today.IsZero() {
		opts.Today = time.Now().UTC()
	}
	if opts.Password == "" {
		opts.Password = "password123"
	}
	gofakeit.Seed(opts.Seed)

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.MinCost)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("fixtures: hash password: %w", err)
	}

	settings := domain.DefaultSettings()
	snap := domain.Snapshot{Settings: settings}
	hire := domain.FormatDate(opts.Today.AddDate(-1, 0, 0))

	for i := 0; i <= opts.Employees; i++ {
		e := domain.Employee{
			Base:       domain.Base{ID: fmt.Sprintf("emp-%03d", i), CreatedAt: opts.Today, UpdatedAt: opts.Today},
			Username:   fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Password:   string(hash),
			Role:       domain.RoleEmployee,
			Name:       gofakeit.Name(),
			Email:      gofakeit.Email(),
			Department: settings.Departments[gofakeit.Number(0, len(settings.Departments)-1)],
			Position:   gofakeit.JobTitle(),
			HireDate:   hire,
			StartDate:  hire,
			HourlyRate: float64(gofakeit.Number(15, 45)),
			Status:     domain.EmployeeActive,
		}
		if i == 0 {
			e.ID = "emp-admin"
			e.Username = "admin"
			e.Role = domain.RoleAdmin
			e.Department = "Human Resources"
		}
		snap.Employees = append(snap.Employees, e)
	}

	for d := opts.Days - 1; d >= 0; d-- {
		day := opts.Today.AddDate(0, 0, -d)
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		date := domain.FormatDate(day)
		for _, e := range snap.Employees {
			snap.AttendanceRecords = append(snap.AttendanceRecords, randomRecord(e.ID, date, opts.Today))
		}
	}
	return snap, nil
}

func randomRecord(employeeID, date string, now time.Time) domain.AttendanceRecord {
	r := domain.AttendanceRecord{
		Base:       domain.Base{ID: fmt.Sprintf("att-%s-%s", date, employeeID), CreatedAt: now, UpdatedAt: now},
		EmployeeID: employeeID,
		Date:       date,
	}
	switch roll := gofakeit.Number(1, 100); {
	case roll <= 8:
		r.Status = domain.AttendanceAbsent
		return r
	case roll <= 22:
		r.Status = domain.AttendanceLate
		r.ClockIn = fmt.Sprintf("09:%02d", gofakeit.Number(16, 59))
	default:
		r.Status = domain.AttendancePresent
		r.ClockIn = fmt.Sprintf("08:%02d", gofakeit.Number(30, 59))
	}
	r.ClockOut = fmt.Sprintf("%02d:%02d", gofakeit.Number(16, 19), gofakeit.Number(0, 59))
	r.HoursWorked = domain.HoursBetween(r.ClockIn, r.ClockOut)
	if r.HoursWorked > 9 {
		r.Status = domain.AttendanceOvertime
	}
	return r
}
