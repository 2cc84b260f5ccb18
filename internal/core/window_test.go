package core

import (
	"errors"
	"testing"
	"time"
)

func TestMonthWindow(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	cases := []struct {
		name      string
		year      int
		month     int
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "mid-year month",
			year:      2025, month: 3,
			wantStart: time.Date(2025, 3, 1, 0, 0, 0, 0, tokyo),
			wantEnd:   time.Date(2025, 4, 1, 0, 0, 0, 0, tokyo),
		},
		{
			name:      "december rolls into next year",
			year:      2025, month: 12,
			wantStart: time.Date(2025, 12, 1, 0, 0, 0, 0, tokyo),
			wantEnd:   time.Date(2026, 1, 1, 0, 0, 0, 0, tokyo),
		},
		{
			name:      "leap february",
			year:      2024, month: 2,
			wantStart: time.Date(2024, 2, 1, 0, 0, 0, 0, tokyo),
			wantEnd:   time.Date(2024, 3, 1, 0, 0, 0, 0, tokyo),
		},
	}
	for _, tc := range cases {
		w, err := MonthWindow(tc.year, tc.month, tokyo)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !w.Start.Equal(tc.wantStart) || !w.End.Equal(tc.wantEnd) {
			t.Fatalf("%s: got [%v, %v), want [%v, %v)", tc.name, w.Start, w.End, tc.wantStart, tc.wantEnd)
		}
	}
}

func TestMonthWindowRejectsOutOfRange(t *testing.T) {
	for _, month := range []int{0, 13, -1} {
		if _, err := MonthWindow(2025, month, time.UTC); !errors.Is(err, ErrInvalidMonth) {
			t.Fatalf("month %d: expected ErrInvalidMonth, got %v", month, err)
		}
	}
	if _, err := MonthWindow(0, 5, time.UTC); !errors.Is(err, ErrInvalidYear) {
		t.Fatalf("expected ErrInvalidYear, got %v", err)
	}
}

func TestWindowIsHalfOpen(t *testing.T) {
	w, err := MonthWindow(2025, 12, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.Contains(w.Start) {
		t.Fatal("start instant must be included")
	}
	if w.Contains(w.End) {
		t.Fatal("end instant must be excluded")
	}
	if !w.Contains(w.End.Add(-time.Second)) {
		t.Fatal("last second of December must be included")
	}
}

func TestCurrentMonthWindow(t *testing.T) {
	now := time.Date(2025, 8, 31, 23, 59, 0, 0, time.UTC)
	w := CurrentMonthWindow(now)
	if !w.Contains(now) {
		t.Fatal("current month window must contain now")
	}
	if w.Start.Day() != 1 || w.End.Day() != 1 {
		t.Fatalf("window must run first-of-month to first-of-month, got [%v, %v)", w.Start, w.End)
	}
	if w.End.Month() != time.September {
		t.Fatalf("expected September end, got %v", w.End.Month())
	}
}
