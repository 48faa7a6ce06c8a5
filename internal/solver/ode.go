package solver

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
)

type observeFunc func(x dynamo.State) (pos, vel r3.Vec, energy float64)

// solveODE integrates sys from x0 over plan.TEnd. Fixed-step methods take
// plan.Steps steps of plan.StepSize; RK45 starts at plan.StepSize, never
// exceeds plan.MaxStep and clips its last step onto TEnd.
func solveODE(sys dynamo.System, method Method, x0 dynamo.State, plan Plan, tol float64, radiating bool, observe observeFunc) (*dynamo.Trajectory, error) {
	integrator, err := integratorFor(method)
	if err != nil {
		return nil, err
	}

	cfg := dynamo.Config{
		Dt:            plan.StepSize,
		Duration:      plan.TEnd,
		ValidateState: true,
	}
	if method.Adaptive() {
		cfg.Adaptive = true
		cfg.Tolerance = tol
		cfg.MaxDt = plan.MaxStep
		cfg.MinDt = plan.StepSize * 1e-6
	}

	res, err := dynamo.New(sys, integrator).Run(x0, cfg)
	if err != nil {
		return nil, err
	}

	tr := dynamo.NewTrajectory(len(res.States), radiating)
	for i, x := range res.States {
		pos, vel, energy := observe(x)
		tr.Append(res.Times[i], pos, vel, energy)
	}
	if !method.Adaptive() {
		tr.Times[len(tr.Times)-1] = plan.TEnd
	}
	tr.StepSize = plan.StepSize
	tr.Steps = res.StepsTaken
	return tr, nil
}
