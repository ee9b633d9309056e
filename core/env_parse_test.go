package core

import (
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_STRING_VAR", "value")
	if got := GetEnvOrDefault("TEST_STRING_VAR", "fallback"); got != "value" {
		t.Errorf("GetEnvOrDefault(set) = %q", got)
	}
	if got := GetEnvOrDefault("TEST_STRING_VAR_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnvOrDefault(unset) = %q", got)
	}
}

func TestParseIntEnv(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "42")
	if got := ParseIntEnv("TEST_INT_VAR", 7); got != 42 {
		t.Errorf("ParseIntEnv(valid) = %d", got)
	}

	t.Setenv("TEST_INT_BAD", "not-a-number")
	if got := ParseIntEnv("TEST_INT_BAD", 7); got != 7 {
		t.Errorf("ParseIntEnv(invalid) = %d, want default", got)
	}
}

func TestParseFloat64Env(t *testing.T) {
	t.Setenv("TEST_FLOAT_VAR", "3.5")
	if got := ParseFloat64Env("TEST_FLOAT_VAR", 1.0); got != 3.5 {
		t.Errorf("ParseFloat64Env(valid) = %v", got)
	}
	if got := ParseFloat64Env("TEST_FLOAT_UNSET", 1.0); got != 1.0 {
		t.Errorf("ParseFloat64Env(unset) = %v", got)
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"on", true},
		{"false", false},
		{"0", false},
		{"no", false},
		{"off", false},
	}
	for _, tt := range tests {
		t.Setenv("TEST_BOOL_VAR", tt.value)
		if got := ParseBoolEnv("TEST_BOOL_VAR", !tt.want); got != tt.want {
			t.Errorf("ParseBoolEnv(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}

	t.Setenv("TEST_BOOL_VAR", "maybe")
	if got := ParseBoolEnv("TEST_BOOL_VAR", true); got != true {
		t.Error("ParseBoolEnv(invalid) should keep the default")
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("TEST_DURATION_VAR", "30")
	if got := ParseDurationEnv("TEST_DURATION_VAR", 10); got != 30*time.Second {
		t.Errorf("ParseDurationEnv(valid) = %v", got)
	}
	if got := ParseDurationEnv("TEST_DURATION_UNSET", 10); got != 10*time.Second {
		t.Errorf("ParseDurationEnv(unset) = %v", got)
	}
}
