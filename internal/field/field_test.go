package field

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestUniform(t *testing.T) {
	u := NewUniform(0, 0, 1)

	b, err := u.EvaluateAt(10, -3, 2)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{Z: 1}, b)
}

func TestScalarFunc(t *testing.T) {
	f := ScalarFunc(func(x, y, z float64) (float64, error) { return 2 * z, nil })

	b, err := f.EvaluateAt(0, 0, 1.5)
	require.NoError(t, err)
	assert.Equal(t, r3.Vec{Z: 3}, b)
}

func TestFuncPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	f := Func(func(x, y, z float64) (r3.Vec, error) { return r3.Vec{}, boom })

	_, err := Superposition{NewUniform(0, 0, 1), f}.EvaluateAt(0, 0, 0)
	assert.ErrorIs(t, err, boom)
}

func TestBounded(t *testing.T) {
	b := Bounded{Model: NewUniform(0, 0, 1), Radius: 1, ZMin: -1, ZMax: 1}

	v, err := b.EvaluateAt(0.5, 0.5, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v.Z)

	_, err = b.EvaluateAt(1, 1, 0)
	assert.ErrorIs(t, err, ErrOutsideRegion)

	_, err = b.EvaluateAt(0, 0, 2)
	assert.ErrorIs(t, err, ErrOutsideRegion)
}

func TestAnalyticCoilCentre(t *testing.T) {
	c := NewAnalyticCoil(0.005, 40, 0)

	b, err := c.EvaluateAt(0, 0, 0)
	require.NoError(t, err)

	want := MagneticConstant * 40 / (2 * 0.005)
	assert.InDelta(t, want, b.Z, want*1e-12)
	assert.Zero(t, b.X)
	assert.Zero(t, b.Y)
}

func TestAnalyticCoilNearAxisContinuity(t *testing.T) {
	c := NewAnalyticCoil(0.01, 10, 0.02)

	onAxis, err := c.EvaluateAt(0, 0, 0.025)
	require.NoError(t, err)
	near, err := c.EvaluateAt(1e-9, 0, 0.025)
	require.NoError(t, err)

	assert.InDelta(t, onAxis.Z, near.Z, math.Abs(onAxis.Z)*1e-6)
}

func TestCoilMatchesAnalytic(t *testing.T) {
	const radius = 0.005
	numeric := NewCoil(2001, radius, 40, 0.001)
	exact := NewAnalyticCoil(radius, 40, 0.001)

	points := []r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 0.3 * radius, Y: 0.2 * radius, Z: 0.4 * radius},
		{X: -0.5 * radius, Y: 0.1 * radius, Z: -1.5 * radius},
	}

	for _, p := range points {
		bn, err := numeric.EvaluateAt(p.X, p.Y, p.Z)
		require.NoError(t, err)
		be, err := exact.EvaluateAt(p.X, p.Y, p.Z)
		require.NoError(t, err)

		diff := r3.Norm(r3.Sub(bn, be))
		assert.Less(t, diff, 1e-3*r3.Norm(be), "point %v: numeric %v exact %v", p, bn, be)
	}
}

func TestBathTubSymmetry(t *testing.T) {
	bg := r3.Vec{Z: 1.0}
	trap := NewAnalyticBathTub(0.005, 40, -0.01, 0.01, bg)

	centre, err := trap.EvaluateAt(0, 0, 0)
	require.NoError(t, err)

	single, err := NewAnalyticCoil(0.005, 40, 0.01).EvaluateAt(0, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0+2*single.Z, centre.Z, 1e-12)

	// Radial contributions of the two coils cancel in the mid-plane.
	off, err := trap.EvaluateAt(0.002, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, off.X, 1e-12)

	// Field grows towards the coils: the trap is a magnetic bottle.
	nearCoil, err := trap.EvaluateAt(0, 0, 0.009)
	require.NoError(t, err)
	assert.Greater(t, nearCoil.Z, centre.Z)
}

func TestSolenoidSingleCoil(t *testing.T) {
	sol := NewSolenoid(101, 0.01, 5, -1, 1, 1)
	require.Len(t, sol, 1)

	got, err := sol.EvaluateAt(0, 0, 0)
	require.NoError(t, err)
	want, err := NewCoil(101, 0.01, 5, 0).EvaluateAt(0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEvaluateGrid(t *testing.T) {
	f := Func(func(x, y, z float64) (r3.Vec, error) {
		return r3.Vec{X: x, Y: y, Z: z}, nil
	})
	xs := []float64{0, 1, 2}
	ys := []float64{10, 20}
	zs := []float64{100, 200, 300, 400}

	out, err := Evaluate(f, xs, ys, zs)
	require.NoError(t, err)
	require.Len(t, out, 24)

	for k, z := range zs {
		for j, y := range ys {
			for i, x := range xs {
				assert.Equal(t, r3.Vec{X: x, Y: y, Z: z}, out[i+3*(j+2*k)])
			}
		}
	}

	mag, err := Magnitude(NewUniform(3, 4, 0), xs, ys, zs)
	require.NoError(t, err)
	for _, m := range mag {
		assert.InDelta(t, 5.0, m, 1e-15)
	}
}

func TestEvaluateGridPropagatesError(t *testing.T) {
	b := Bounded{Model: NewUniform(0, 0, 1), Radius: 1, ZMin: -1, ZMax: 1}

	_, err := Evaluate(b, []float64{0, 5}, []float64{0}, []float64{0})
	assert.ErrorIs(t, err, ErrOutsideRegion)
}

func TestBiotSavartStraightWire(t *testing.T) {
	// Long straight wire along z: |B| = μ0 I / (2π d), circulating about +z.
	pts := make([]r3.Vec, 20001)
	for i := range pts {
		pts[i] = r3.Vec{Z: -1 + 2*float64(i)/20000}
	}
	wire := NewBiotSavart(pts, 1, MagneticConstant)
	require.Equal(t, 20000, wire.Segments())

	b, err := wire.EvaluateAt(0.01, 0, 0)
	require.NoError(t, err)

	want := MagneticConstant / (2 * math.Pi * 0.01)
	assert.InDelta(t, want, b.Y, want*1e-3)
	assert.InDelta(t, 0, b.X, want*1e-9)
	assert.InDelta(t, 0, b.Z, want*1e-9)
}
