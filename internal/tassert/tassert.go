// Package tassert collects the handful of test assertions used throughout
// this module's test suites, in the spirit of the teacher's tools/tassert
// helper (referenced from transport/stream_bundle_test.go) adapted down to
// what this module's tests actually need.
package tassert

import "testing"

// Fatal fails the test immediately if cond is false.
func Fatal(t *testing.T, cond bool, msg string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(msg, args...)
	}
}

// CheckError fails the test if err is non-nil.
func CheckError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// CheckFatal fails the test (stopping it) if err is non-nil.
func CheckFatal(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("fatal: %v", err)
	}
}

// Errorf fails the test (without stopping it) if cond is false.
func Errorf(t *testing.T, cond bool, msg string, args ...any) {
	t.Helper()
	if !cond {
		t.Errorf(msg, args...)
	}
}
