package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
)

// Deviation summarises the distance between two trajectories sampled at the
// same times.
type Deviation struct {
	MaxPosition float64 `json:"max_position"`
	RMSPosition float64 `json:"rms_position"`
	MaxVelocity float64 `json:"max_velocity"`
	// MaxRelVelocity is MaxVelocity over the largest reference speed.
	MaxRelVelocity float64 `json:"max_rel_velocity"`
}

// CompareAnalytic measures how far got strays from ref. Both trajectories
// must hold the same number of samples at matching times.
func CompareAnalytic(got, ref *dynamo.Trajectory) (Deviation, error) {
	n := got.Len()
	if n == 0 || n != ref.Len() {
		return Deviation{}, fmt.Errorf("%w: %d samples against %d", dynamo.ErrDimensionMismatch, n, ref.Len())
	}
	span := math.Abs(ref.Times[n-1] - ref.Times[0])
	if floats.Distance(got.Times, ref.Times, math.Inf(1)) > 1e-9*span {
		return Deviation{}, dynamo.InvalidParameter("sample times differ")
	}

	pos := make([]float64, n)
	vel := make([]float64, n)
	speed := make([]float64, n)
	for i := 0; i < n; i++ {
		pos[i] = r3.Norm(r3.Sub(got.Positions[i], ref.Positions[i]))
		vel[i] = r3.Norm(r3.Sub(got.Velocities[i], ref.Velocities[i]))
		speed[i] = r3.Norm(ref.Velocities[i])
	}

	d := Deviation{
		MaxPosition: floats.Max(pos),
		RMSPosition: floats.Norm(pos, 2) / math.Sqrt(float64(n)),
		MaxVelocity: floats.Max(vel),
	}
	if vmax := floats.Max(speed); vmax > 0 {
		d.MaxRelVelocity = d.MaxVelocity / vmax
	}
	return d, nil
}
