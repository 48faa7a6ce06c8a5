package optim

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/etrack/internal/analysis"
	"github.com/san-kum/etrack/internal/config"
	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/experiment"
)

// Point is one solve of a convergence study. Deviation is the largest
// velocity error relative to the analytic solution, as a fraction of the
// speed.
type Point struct {
	Method    string  `json:"method"`
	CFL       float64 `json:"cfl"`
	Steps     int     `json:"steps"`
	Deviation float64 `json:"deviation"`
}

func measure(base *config.Config, reg *experiment.Registry, method string, cfl float64) (Point, error) {
	cfg := base.Clone()
	cfg.Solver.Method = method
	cfg.Solver.CFL = cfl

	exp, err := experiment.New(cfg, reg)
	if err != nil {
		return Point{}, err
	}
	tr, err := exp.Run()
	if err != nil {
		return Point{}, err
	}
	ref, err := exp.Reference(tr)
	if err != nil {
		return Point{}, err
	}
	dev, err := analysis.CompareAnalytic(tr, ref)
	if err != nil {
		return Point{}, err
	}
	return Point{Method: method, CFL: cfl, Steps: tr.Steps, Deviation: dev.MaxRelVelocity}, nil
}

// Convergence solves base once per method and CFL. base must use a uniform
// field.
func Convergence(ctx context.Context, base *config.Config, reg *experiment.Registry, methods []string, cfls []float64) ([]Point, error) {
	points := make([]Point, 0, len(methods)*len(cfls))
	for _, method := range methods {
		for _, cfl := range cfls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			p, err := measure(base, reg, method, cfl)
			if err != nil {
				return nil, fmt.Errorf("%s cfl=%g: %w", method, cfl, err)
			}
			points = append(points, p)
		}
	}
	return points, nil
}

// Order fits deviation ∝ cfl^k over the points of one method and returns k.
func Order(points []Point, method string) (float64, error) {
	var x, y []float64
	for _, p := range points {
		if p.Method != method || !(p.Deviation > 0) {
			continue
		}
		x = append(x, math.Log(p.CFL))
		y = append(y, math.Log(p.Deviation))
	}
	if len(x) < 2 {
		return 0, dynamo.InvalidParameter("need two points for %s, got %d", method, len(x))
	}
	_, slope := stat.LinearRegression(x, y, nil, false)
	return slope, nil
}

// CheapestCFL searches methods × cfls for the run with the fewest steps
// whose deviation stays within target.
func CheapestCFL(ctx context.Context, base *config.Config, reg *experiment.Registry, methods []string, cfls []float64, target float64) (Point, error) {
	indices := make([]float64, len(methods))
	for i := range methods {
		indices[i] = float64(i)
	}

	var found []Point
	g := NewGridSearch([]string{"method", "cfl"}, [][]float64{indices, cfls})
	params, steps, err := g.Search(ctx, func(params map[string]float64) (float64, error) {
		p, err := measure(base, reg, methods[int(params["method"])], params["cfl"])
		if err != nil {
			return 0, err
		}
		if p.Deviation > target {
			return math.Inf(1), nil
		}
		found = append(found, p)
		return float64(p.Steps), nil
	})
	if err != nil {
		return Point{}, err
	}
	if math.IsInf(steps, 1) || params == nil {
		return Point{}, dynamo.InvalidParameter("no run within deviation %g", target)
	}

	method := methods[int(params["method"])]
	for _, p := range found {
		if p.Method == method && p.CFL == params["cfl"] {
			return p, nil
		}
	}
	return Point{}, dynamo.InvalidParameter("no run within deviation %g", target)
}
