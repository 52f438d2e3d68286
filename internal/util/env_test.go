package util

import "testing"

func TestGetEnvString(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	if got := GetEnvString("TEST_STRING", "fallback"); got != "value" {
		t.Fatalf("unexpected value: got %q", got)
	}
	if got := GetEnvString("TEST_STRING_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("unexpected fallback: got %q", got)
	}
}

func TestGetEnvNumeric(t *testing.T) {
	t.Setenv("TEST_NUM", "42.5")
	if got := GetEnvNumeric("TEST_NUM", 7); got != 42.5 {
		t.Fatalf("unexpected value: got %v", got)
	}

	t.Setenv("TEST_NUM_BAD", "not a number")
	if got := GetEnvNumeric("TEST_NUM_BAD", 7); got != 7 {
		t.Fatalf("unparsable value must fall back: got %v", got)
	}

	if got := GetEnvNumeric("TEST_NUM_MISSING", 7); got != 7 {
		t.Fatalf("missing value must fall back: got %v", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !GetEnvBool("TEST_BOOL", false) {
		t.Fatalf("expected true")
	}

	t.Setenv("TEST_BOOL_BAD", "yes")
	if GetEnvBool("TEST_BOOL_BAD", false) {
		t.Fatalf("non true/false values must fall back")
	}
}
