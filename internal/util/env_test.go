package util

import (
	"testing"
	"time"
)

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"off", true, false},
		{"", true, true},
		{"maybe", false, false},
		{"maybe", true, true},
	}
	for _, tc := range tests {
		t.Setenv("TRIPFLOW_TEST_BOOL", tc.value)
		if got := ParseBoolEnv("TRIPFLOW_TEST_BOOL", tc.defaultValue); got != tc.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tc.value, tc.defaultValue, got, tc.want)
		}
	}
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("TRIPFLOW_TEST_INT", "42")
	if got := ParseIntEnv("TRIPFLOW_TEST_INT", 7); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	t.Setenv("TRIPFLOW_TEST_INT", "not a number")
	if got := ParseIntEnv("TRIPFLOW_TEST_INT", 7); got != 7 {
		t.Errorf("expected default 7, got %d", got)
	}
	t.Setenv("TRIPFLOW_TEST_INT", "")
	if got := ParseIntEnv("TRIPFLOW_TEST_INT", 7); got != 7 {
		t.Errorf("expected default 7 for empty value, got %d", got)
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("TRIPFLOW_TEST_DUR", "90m")
	if got := ParseDurationEnv("TRIPFLOW_TEST_DUR", time.Hour); got != 90*time.Minute {
		t.Errorf("expected 90m, got %v", got)
	}
	t.Setenv("TRIPFLOW_TEST_DUR", "soon")
	if got := ParseDurationEnv("TRIPFLOW_TEST_DUR", time.Hour); got != time.Hour {
		t.Errorf("expected default 1h, got %v", got)
	}
}
