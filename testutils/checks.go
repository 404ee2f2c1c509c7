// Package testutils contains convenient testing checkers that compare a produced
// value against an expected value (or condition).
// There are value checks like `CheckEqual(expected, produced, t)`, and
// checks that should run deferred like `defer ShouldPanic(t)`.
package testutils

import (
	"errors"
	"reflect"
)

// The T interface is fulfilled by *testing.T but can be implemented by a T mock if needed.
type T interface {
	Helper()
	Fatalf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Log(...interface{})
}

// CheckEqual checks if two values are deeply equal and calls t.Fatalf if not
func CheckEqual(expected interface{}, got interface{}, t T) {
	t.Helper()
	if !reflect.DeepEqual(expected, got) {
		t.Fatalf("Expected: %v, got %v", expected, got)
	}
}

// CheckNil checks if value is nil
func CheckNil(got interface{}, t T) {
	t.Helper()
	if got != nil && !reflect.ValueOf(got).IsNil() {
		t.Fatalf("Expected: nil, got %v", got)
	}
}

// CheckError checks if there is an error
func CheckError(got error, t T) {
	t.Helper()
	if got == nil {
		t.Fatalf("Expected: error, got %v", got)
	}
}

// CheckErrorIs checks that got wraps the expected error
func CheckErrorIs(expected, got error, t T) {
	t.Helper()
	if !errors.Is(got, expected) {
		t.Fatalf("Expected: error %v, got %v", expected, got)
	}
}

// CheckNotError checks if error value is not nil
func CheckNotError(got error, t T) {
	t.Helper()
	if got != nil {
		t.Fatalf("Expected: no error, got %v", got)
	}
}

// CheckTrue checks if value is true
func CheckTrue(got bool, t T) {
	t.Helper()
	if !got {
		t.Fatalf("Expected: true, got %v", got)
	}
}

// CheckFalse checks if value is false
func CheckFalse(got bool, t T) {
	t.Helper()
	if got {
		t.Fatalf("Expected: false, got %v", got)
	}
}

// ShouldPanic is used to assert that a function does panic
// Usage: defer testutils.ShouldPanic(t) at the point where the rest is expected to panic
func ShouldPanic(t T) {
	t.Helper()
	if r := recover(); r == nil {
		t.Errorf("Expected panic but got none")
	}
}
