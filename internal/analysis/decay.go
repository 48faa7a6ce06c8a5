package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/etrack/internal/dynamo"
)

// DecayRate fits |v⊥|(t) = A·exp(-μt) by least squares on log|v⊥| and
// returns μ. The perpendicular component is taken relative to b, which must
// be non-zero.
func DecayRate(tr *dynamo.Trajectory, b r3.Vec) (float64, error) {
	if tr.Len() < 2 {
		return 0, fmt.Errorf("%w: got %d", ErrTooFewSamples, tr.Len())
	}
	if r3.Norm(b) == 0 {
		return 0, dynamo.InvalidParameter("field direction must be non-zero")
	}
	unit := r3.Unit(b)

	logSpeed := make([]float64, tr.Len())
	for i, v := range tr.Velocities {
		perp := r3.Sub(v, r3.Scale(r3.Dot(v, unit), unit))
		s := r3.Norm(perp)
		if s == 0 {
			return 0, dynamo.InvalidParameter("perpendicular speed vanishes at sample %d", i)
		}
		logSpeed[i] = math.Log(s)
	}

	_, slope := stat.LinearRegression(tr.Times, logSpeed, nil, false)
	return -slope, nil
}
