package field

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/unit/constant"
)

// MagneticConstant is the vacuum permeability μ0 in H/m.
const MagneticConstant = float64(constant.MagneticConstant)

// BiotSavart numerically integrates the Biot-Savart law over a piecewise
// linear wire. Each segment contributes as a point current element located at
// its midpoint.
type BiotSavart struct {
	centres  []r3.Vec
	elements []r3.Vec
	prefix   float64
}

// NewBiotSavart builds a wire through the given points carrying current
// (amperes) in a medium of permeability mu.
func NewBiotSavart(path []r3.Vec, current, mu float64) *BiotSavart {
	n := len(path) - 1
	if n < 0 {
		n = 0
	}
	bs := &BiotSavart{
		centres:  make([]r3.Vec, n),
		elements: make([]r3.Vec, n),
		prefix:   current * mu / (4 * math.Pi),
	}
	for i := 0; i < n; i++ {
		bs.centres[i] = r3.Scale(0.5, r3.Add(path[i], path[i+1]))
		bs.elements[i] = r3.Sub(path[i+1], path[i])
	}
	return bs
}

func (bs *BiotSavart) EvaluateAt(x, y, z float64) (r3.Vec, error) {
	p := r3.Vec{X: x, Y: y, Z: z}
	var sum r3.Vec
	for i, c := range bs.centres {
		r := r3.Sub(p, c)
		rmag := r3.Norm(r)
		if rmag == 0 {
			continue
		}
		sum = r3.Add(sum, r3.Scale(1/(rmag*rmag*rmag), r3.Cross(bs.elements[i], r)))
	}
	return r3.Scale(bs.prefix, sum), nil
}

// Segments returns the number of current elements.
func (bs *BiotSavart) Segments() int { return len(bs.elements) }

// NewCoil approximates a circular loop of the given radius in the plane z,
// centred on the z axis, with nTheta points along its circumference.
func NewCoil(nTheta int, radius, current, z float64) *BiotSavart {
	if nTheta < 2 {
		nTheta = 2
	}
	phi := floats.Span(make([]float64, nTheta), 0, 2*math.Pi)
	path := make([]r3.Vec, nTheta)
	for i, p := range phi {
		path[i] = r3.Vec{X: radius * math.Cos(p), Y: radius * math.Sin(p), Z: z}
	}
	return NewBiotSavart(path, current, MagneticConstant)
}
