package physics

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
)

// parallelTol bounds |b̂ × ẑ| below which b is treated as lying on the z axis.
const parallelTol = 1e-12

// RotateBField returns the rotation matrix taking the direction of b onto
// +z. An antiparallel field is turned over by a half rotation about x.
func RotateBField(b r3.Vec) (*mat.Dense, error) {
	norm := r3.Norm(b)
	if norm == 0 {
		return nil, dynamo.InvalidParameter("cannot rotate a zero field")
	}
	bhat := r3.Scale(1/norm, b)
	k := r3.Cross(bhat, r3.Vec{Z: 1})
	s := r3.Norm(k)
	c := bhat.Z

	if s < parallelTol {
		if c > 0 {
			return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}), nil
		}
		return mat.NewDense(3, 3, []float64{1, 0, 0, 0, -1, 0, 0, 0, -1}), nil
	}

	// Rodrigues: R = I + K + K²(1-c)/s² with K the cross-product matrix of k.
	kx := mat.NewDense(3, 3, []float64{
		0, -k.Z, k.Y,
		k.Z, 0, -k.X,
		-k.Y, k.X, 0,
	})
	var k2 mat.Dense
	k2.Mul(kx, kx)
	k2.Scale((1-c)/(s*s), &k2)

	r := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	r.Add(r, kx)
	r.Add(r, &k2)
	return r, nil
}

// RotateBFieldInverse returns the rotation taking +z back onto the direction
// of b, the transpose of RotateBField(b).
func RotateBFieldInverse(b r3.Vec) (*mat.Dense, error) {
	r, err := RotateBField(b)
	if err != nil {
		return nil, err
	}
	return mat.DenseCopyOf(r.T()), nil
}

// Apply multiplies the 3×3 matrix m by v.
func Apply(m mat.Matrix, v r3.Vec) r3.Vec {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(3, []float64{v.X, v.Y, v.Z}))
	return r3.Vec{X: out.AtVec(0), Y: out.AtVec(1), Z: out.AtVec(2)}
}

// DecomposeVelocity splits v into components parallel and perpendicular to b.
func DecomposeVelocity(v, b r3.Vec) (par, perp r3.Vec, err error) {
	norm := r3.Norm(b)
	if norm == 0 {
		return r3.Vec{}, r3.Vec{}, dynamo.InvalidParameter("cannot decompose against a zero field")
	}
	bhat := r3.Scale(1/norm, b)
	par = r3.Scale(r3.Dot(v, bhat), bhat)
	return par, r3.Sub(v, par), nil
}
