package field

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/spatial/r3"
)

// AnalyticCoil is the exact field of a thin circular current loop of the
// given radius in the plane z = Z, centred on the z axis, expressed with
// complete elliptic integrals.
type AnalyticCoil struct {
	Radius  float64
	Current float64
	Z       float64
}

func NewAnalyticCoil(radius, current, z float64) AnalyticCoil {
	return AnalyticCoil{Radius: radius, Current: current, Z: z}
}

// CentralField is |B| at the centre of the loop.
func (c AnalyticCoil) CentralField() float64 {
	return c.Current * MagneticConstant / c.Radius / 2
}

func (c AnalyticCoil) EvaluateAt(x, y, z float64) (r3.Vec, error) {
	rad := math.Hypot(x, y)
	zRel := z - c.Z

	// On axis the radial component vanishes and the elliptic form is singular.
	if rad/c.Radius < 1e-10 {
		r2 := c.Radius * c.Radius
		bz := MagneticConstant * c.Current * r2 / (2 * math.Pow(r2+zRel*zRel, 1.5))
		return r3.Vec{Z: bz}, nil
	}

	rn := rad / c.Radius
	rn2 := rn * rn
	zn2 := (zRel / c.Radius) * (zRel / c.Radius)

	alpha := (1+rn)*(1+rn) + zn2
	rootAlphaPi := math.Sqrt(alpha) * math.Pi
	m := 4 * rn / alpha
	intE := mathext.CompleteE(m)
	intK := mathext.CompleteK(m)
	gamma := alpha - 4*rn

	b0 := c.CentralField()
	br := b0 * (intE*((1+rn2+zn2)/gamma) - intK) / rootAlphaPi * (zRel / rad)
	bz := b0 * (intE*((1-rn2-zn2)/gamma) + intK) / rootAlphaPi

	return r3.Vec{X: br * x / rad, Y: br * y / rad, Z: bz}, nil
}
