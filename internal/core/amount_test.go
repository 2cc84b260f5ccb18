package core

import (
	"math"
	"testing"
)

func TestCoerceAmountString(t *testing.T) {
	cases := []struct {
		in  string
		out int64
	}{
		{"12400", 12400},
		{"12,400", 12400},
		{"¥8,600", 8600},
		{" 1 200 ", 1200},
		{"-3.7", -4}, // round half away from zero
		{"3.7", 4},
		{"2.5", 3},
		{"-2.5", -3},
		{"2.4", 2},
		{"+500", 500},
		{"99999999999999999999", math.MaxInt64}, // beyond int64, saturates
		{"-99999999999999999999", math.MinInt64},
		{"abc", 0},
		{"1.2.3", 0},
		{"", 0},
		{"¥", 0},
	}
	for _, tc := range cases {
		if got := CoerceAmountString(tc.in); got != tc.out {
			t.Fatalf("%q expected %d, got %d", tc.in, tc.out, got)
		}
	}
}

func TestCoerceAmount(t *testing.T) {
	cases := []struct {
		name string
		in   any
		out  int64
	}{
		{"nil", nil, 0},
		{"int", 42, 42},
		{"int64", int64(-9), -9},
		{"float", 3.7, 4},
		{"negative float", -3.7, -4},
		{"json number", float64(12400), 12400},
		{"huge float", 1e30, int64(math.MaxInt64)},
		{"huge negative float", -1e30, int64(math.MinInt64)},
		{"string", "¥8,600", 8600},
		{"bool", true, 0},
		{"slice", []string{"x"}, 0},
	}
	for _, tc := range cases {
		if got := CoerceAmount(tc.in); got != tc.out {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.out, got)
		}
	}
}
