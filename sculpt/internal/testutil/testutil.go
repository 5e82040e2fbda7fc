// Package testutil provides shared test assertion helpers for the sculpt
// engine packages.
package testutil

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if !scalar.EqualWithinRel(want, got, relTol) {
		t.Errorf("%s: got %v, want %v (relTol=%v)", name, got, want, relTol)
	}
}

// AssertVecEqual compares two vectors with absolute tolerance per component.
func AssertVecEqual(t *testing.T, name string, want, got r3.Vec, absTol float64) {
	t.Helper()
	if !scalar.EqualWithinAbs(want.X, got.X, absTol) ||
		!scalar.EqualWithinAbs(want.Y, got.Y, absTol) ||
		!scalar.EqualWithinAbs(want.Z, got.Z, absTol) {
		t.Errorf("%s: got %v, want %v (tol=%v)", name, got, want, absTol)
	}
}
