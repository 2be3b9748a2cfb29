// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"testing"
)

// DefaultTolerance is the float tolerance used by NearlyEqual.
const DefaultTolerance = 1e-9

// NearlyEqual fails the test when got and want differ by more than
// DefaultTolerance.
func NearlyEqual(t testing.TB, name string, got, want float64) {
	t.Helper()
	WithinTolerance(t, name, got, want, DefaultTolerance)
}

// WithinTolerance fails the test when got and want differ by more than tol.
func WithinTolerance(t testing.TB, name string, got, want, tol float64) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Fatalf("%s = %v, want %v (tolerance %v)", name, got, want, tol)
	}
}
