package dynamo_test

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
	"github.com/san-kum/etrack/internal/integrators"
	"github.com/san-kum/etrack/internal/physics"
)

func ExampleSimulator_Run() {
	p := physics.Electron()
	f := field.Uniform{B: r3.Vec{Z: 1}}

	sys, err := physics.NewModel(physics.KindLorentz, p, f, 0)
	if err != nil {
		fmt.Println(err)
		return
	}
	s := dynamo.New(sys, integrators.NewRK4())

	cfg := dynamo.DefaultConfig()
	cfg.Dt = 1e-12
	cfg.Duration = 1e-10
	result, err := s.Run(dynamo.State{0, 0, 0, 1, 0, 0}, cfg)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(len(result.States), result.StepsTaken)
	// Output: 101 100
}
