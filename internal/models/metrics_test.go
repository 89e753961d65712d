package models

import "testing"

func TestValueString(t *testing.T) {
	tests := []struct {
		name     string
		value    Value
		expected string
	}{
		{"whole float keeps decimal", Float(50), "50.0"},
		{"fractional float", Float(0.52), "0.52"},
		{"rounded gb", Float(3.73), "3.73"},
		{"integer counter", Int(123456789), "123456789"},
		{"zero integer", Int(0), "0"},
		{"negative float", Float(-1.5), "-1.5"},
		{"large float uses exponent", Float(1e21), "1e+21"},
		{"exponent threshold", Float(1e16), "1e+16"},
		{"below exponent threshold", Float(1e15), "1000000000000000.0"},
		{"tiny float uses exponent", Float(0.00001), "1e-05"},
		{"small float stays fixed", Float(0.0001), "0.0001"},
		{"mantissa kept", Float(1.5e17), "1.5e+17"},
		{"zero", Float(0), "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in       float64
		decimals int
		expected float64
	}{
		{45.231, 1, 45.2},
		{1.157407, 1, 1.2},
		{3.999, 2, 4.0},
		{0.25, 1, 0.2},
		{-0.25, 1, -0.2},
		{0.35, 1, 0.3},
		{45.25, 1, 45.2},
		{45.35, 1, 45.4},
		{1.25, 1, 1.2},
		{0.125, 2, 0.12},
		{0.375, 2, 0.38},
		{2.675, 2, 2.67},
	}

	for _, tt := range tests {
		if got := Round(tt.in, tt.decimals); got != tt.expected {
			t.Errorf("Round(%v, %d) = %v, want %v", tt.in, tt.decimals, got, tt.expected)
		}
	}
}

func TestSnapshotKeysSorted(t *testing.T) {
	s := Snapshot{
		UptimeDays:  Float(1.2),
		CPULoad1Min: Float(0.5),
		DiskFreeGB:  Float(10),
	}
	keys := s.Keys()
	want := []MetricKey{CPULoad1Min, DiskFreeGB, UptimeDays}
	if len(keys) != len(want) {
		t.Fatalf("Keys() returned %d keys, want %d", len(keys), len(want))
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
