// Package field provides magnetic field models consumed by the particle
// solvers.
//
// The solvers depend only on the [Model] capability. Concrete models are
// immutable after construction and safe to share between goroutines.
package field

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
)

// ErrOutsideRegion is returned by models that are only defined inside a
// bounded region.
var ErrOutsideRegion = errors.New("field: point outside valid region")

// Model evaluates the magnetic field, in tesla, at a point given in metres.
type Model interface {
	EvaluateAt(x, y, z float64) (r3.Vec, error)
}

// Uniform is a constant field. Solvers detect it and cache the cyclotron
// frequency instead of re-evaluating the field every step.
type Uniform struct {
	B r3.Vec
}

func NewUniform(bx, by, bz float64) Uniform {
	return Uniform{B: r3.Vec{X: bx, Y: by, Z: bz}}
}

func (u Uniform) EvaluateAt(x, y, z float64) (r3.Vec, error) {
	return u.B, nil
}

// Func adapts a plain function to Model.
type Func func(x, y, z float64) (r3.Vec, error)

func (f Func) EvaluateAt(x, y, z float64) (r3.Vec, error) {
	return f(x, y, z)
}

// ScalarFunc adapts a provider that only returns the z component.
type ScalarFunc func(x, y, z float64) (float64, error)

func (f ScalarFunc) EvaluateAt(x, y, z float64) (r3.Vec, error) {
	bz, err := f(x, y, z)
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Vec{Z: bz}, nil
}

// Superposition sums the fields of its members.
type Superposition []Model

func (s Superposition) EvaluateAt(x, y, z float64) (r3.Vec, error) {
	var total r3.Vec
	for _, m := range s {
		b, err := m.EvaluateAt(x, y, z)
		if err != nil {
			return r3.Vec{}, err
		}
		total = r3.Add(total, b)
	}
	return total, nil
}

// Bounded restricts a model to the cylinder r <= Radius, ZMin <= z <= ZMax
// around the z axis.
type Bounded struct {
	Model      Model
	Radius     float64
	ZMin, ZMax float64
}

func (b Bounded) EvaluateAt(x, y, z float64) (r3.Vec, error) {
	if x*x+y*y > b.Radius*b.Radius || z < b.ZMin || z > b.ZMax {
		return r3.Vec{}, fmt.Errorf("%w: (%g, %g, %g)", ErrOutsideRegion, x, y, z)
	}
	return b.Model.EvaluateAt(x, y, z)
}

// Evaluate samples m on the grid xs × ys × zs. The result is indexed
// [k][j][i] flattened with x varying fastest, i.e. i + nx*(j + ny*k).
// Large grids are evaluated in parallel, so m must be safe for concurrent use.
func Evaluate(m Model, xs, ys, zs []float64) ([]r3.Vec, error) {
	nx, ny, nz := len(xs), len(ys), len(zs)
	n := nx * ny * nz
	out := make([]r3.Vec, n)
	if n == 0 {
		return out, nil
	}

	errs := make([]error, n)
	dynamo.ParallelFor(n, 256, func(start, end int) {
		for idx := start; idx < end; idx++ {
			i := idx % nx
			j := (idx / nx) % ny
			k := idx / (nx * ny)
			out[idx], errs[idx] = m.EvaluateAt(xs[i], ys[j], zs[k])
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Magnitude samples |B| on the grid xs × ys × zs, ordered as in Evaluate.
func Magnitude(m Model, xs, ys, zs []float64) ([]float64, error) {
	b, err := Evaluate(m, xs, ys, zs)
	if err != nil {
		return nil, err
	}
	mag := make([]float64, len(b))
	for i, v := range b {
		mag[i] = r3.Norm(v)
	}
	return mag, nil
}
