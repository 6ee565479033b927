package domain

import "testing"

func TestHoursBetween(t *testing.T) {
	cases := []struct {
		name    string
		in, out string
		want    float64
	}{
		{"regular day", "09:00", "17:00", 8},
		{"partial hour", "09:10", "17:30", 8.33},
		{"overnight wraps", "22:00", "06:00", 8},
		{"missing clock out", "09:00", "", 0},
		{"malformed", "nine", "17:00", 0},
		{"same time", "09:00", "09:00", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HoursBetween(tc.in, tc.out); got != tc.want {
				t.Fatalf("HoursBetween(%q, %q) = %v, want %v", tc.in, tc.out, got, tc.want)
			}
		})
	}
}

func TestParseDateWrapsError(t *testing.T) {
	if _, err := ParseDate("2024-13-40"); err == nil {
		t.Fatalf("expected parse error")
	}
	got, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if FormatDate(got) != "2024-02-29" {
		t.Fatalf("round trip mismatch: %s", FormatDate(got))
	}
	if ValidDate("yesterday") {
		t.Fatalf("expected invalid date")
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(8.333333); got != 8.33 {
		t.Fatalf("expected 8.33, got %v", got)
	}
	if got := Round2(219.999); got != 220 {
		t.Fatalf("expected 220, got %v", got)
	}
}
