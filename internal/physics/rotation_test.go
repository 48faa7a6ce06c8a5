package physics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
)

var testFields = []r3.Vec{
	{Z: 1},
	{Z: -2},
	{X: 1},
	{Y: -3},
	{X: 1, Y: 1, Z: 1},
	{X: -0.2, Y: 0.7, Z: -0.1},
	{X: 1e-14, Z: -1},
}

func vecClose(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}

func TestRotateBFieldAlignsWithZ(t *testing.T) {
	for _, b := range testFields {
		r, err := RotateBField(b)
		if err != nil {
			t.Fatalf("b=%v: %v", b, err)
		}
		got := Apply(r, r3.Scale(1/r3.Norm(b), b))
		if !vecClose(got, r3.Vec{Z: 1}, 1e-12) {
			t.Errorf("b=%v rotated to %v, want +z", b, got)
		}
		if d := mat.Det(r); math.Abs(d-1) > 1e-12 {
			t.Errorf("b=%v det = %g, want 1", b, d)
		}
	}
}

func TestRotateBFieldRoundTrip(t *testing.T) {
	v := r3.Vec{X: 0.3, Y: -1.2, Z: 2.5}
	for _, b := range testFields {
		r, err := RotateBField(b)
		if err != nil {
			t.Fatal(err)
		}
		inv, err := RotateBFieldInverse(b)
		if err != nil {
			t.Fatal(err)
		}
		got := Apply(inv, Apply(r, v))
		if !vecClose(got, v, 1e-12) {
			t.Errorf("b=%v round trip %v, want %v", b, got, v)
		}
	}
}

func TestRotateBFieldZero(t *testing.T) {
	if _, err := RotateBField(r3.Vec{}); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
	if _, err := RotateBFieldInverse(r3.Vec{}); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestDecomposeVelocity(t *testing.T) {
	v := r3.Vec{X: 1, Y: 2, Z: 3}
	b := r3.Vec{X: 0, Y: 0, Z: -5}

	par, perp, err := DecomposeVelocity(v, b)
	if err != nil {
		t.Fatal(err)
	}
	if !vecClose(par, r3.Vec{Z: 3}, 1e-15) {
		t.Errorf("parallel = %v", par)
	}
	if !vecClose(perp, r3.Vec{X: 1, Y: 2}, 1e-15) {
		t.Errorf("perpendicular = %v", perp)
	}

	if _, _, err := DecomposeVelocity(v, r3.Vec{}); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}
