package solver

import (
	"math"

	"github.com/san-kum/etrack/internal/dynamo"
)

// Plan is the fixed step schedule of one solve. StepSize divides TEnd
// exactly into Steps steps and never exceeds MaxStep.
type Plan struct {
	Omega0   float64 `json:"omega0"`
	TEnd     float64 `json:"t_end"`
	MaxStep  float64 `json:"max_step"`
	StepSize float64 `json:"step_size"`
	Steps    int     `json:"steps"`
}

// PlanSteps sizes a run of nRotations gyro-orbits at angular frequency
// omega0 so that no step rotates by more than cfl radians.
func PlanSteps(nRotations, omega0, cfl float64) (Plan, error) {
	if !(nRotations > 0) || math.IsInf(nRotations, 0) {
		return Plan{}, dynamo.InvalidParameter("rotations must be positive, got %g", nRotations)
	}
	if !(cfl > 0) || math.IsInf(cfl, 0) {
		return Plan{}, dynamo.InvalidParameter("cfl must be positive, got %g", cfl)
	}
	if omega0 == 0 {
		return Plan{}, dynamo.ErrZeroField
	}
	if !(omega0 > 0) || math.IsInf(omega0, 0) {
		return Plan{}, dynamo.InvalidParameter("omega0 must be positive, got %g", omega0)
	}

	angle := nRotations * 2 * math.Pi
	steps := int(math.Ceil(angle / cfl))
	tEnd := angle / omega0

	return Plan{
		Omega0:   omega0,
		TEnd:     tEnd,
		MaxStep:  cfl / omega0,
		StepSize: tEnd / float64(steps),
		Steps:    steps,
	}, nil
}

// Time is the time of sample i. The final sample is pinned to TEnd.
func (p Plan) Time(i int) float64 {
	if i >= p.Steps {
		return p.TEnd
	}
	return float64(i) * p.StepSize
}
