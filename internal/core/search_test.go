package core

import (
	"context"
	"testing"

	"hrdesk/pkg/domain"
)

func TestSearchEmployees(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	cases := []struct {
		name  string
		query string
		first string
	}{
		{"accent folding", "maria", "emp-002"},
		{"accented query", "GARCÍA", "emp-002"},
		{"username", "tnguyen", "emp-003"},
		{"typo in name", "Jordon", "emp-001"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.SearchEmployees(ctx, tc.query, 0)
			if err != nil {
				t.Fatalf("SearchEmployees: %v", err)
			}
			if len(got) == 0 || got[0].Employee.ID != tc.first {
				t.Fatalf("expected %s first, got %+v", tc.first, got)
			}
		})
	}

	none, _ := svc.SearchEmployees(ctx, "   ", 0)
	if none == nil || len(none) != 0 {
		t.Fatalf("blank query should be empty, got %+v", none)
	}
	limited, _ := svc.SearchEmployees(ctx, "engineer", 1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}

func TestSuggestDepartment(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	if got, ok := svc.SuggestDepartment(ctx, "Enginering"); !ok || got != "Engineering" {
		t.Fatalf("expected Engineering, got %q %v", got, ok)
	}
	if _, err := svc.AddEmployee(ctx, domain.Employee{Name: "Zoé", Username: "zoe", Department: "Recherche"}); err != nil {
		t.Fatalf("AddEmployee: %v", err)
	}
	if got, ok := svc.SuggestDepartment(ctx, "recherce"); !ok || got != "Recherche" {
		t.Fatalf("expected Recherche, got %q %v", got, ok)
	}
	if _, ok := svc.SuggestDepartment(ctx, ""); ok {
		t.Fatalf("empty name has no suggestion")
	}
}
