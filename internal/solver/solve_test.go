package solver_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
	"github.com/san-kum/etrack/internal/physics"
	"github.com/san-kum/etrack/internal/solver"
)

// maxDeviation is the largest position distance between tr and the analytic
// solution evaluated at the same times.
func maxDeviation(tr *dynamo.Trajectory, ref *dynamo.Trajectory) float64 {
	worst := 0.0
	for i := range tr.Times {
		worst = math.Max(worst, r3.Norm(r3.Sub(tr.Positions[i], ref.Positions[i])))
	}
	return worst
}

var _ = Describe("Solve", func() {
	var opts solver.Options

	BeforeEach(func() {
		opts = solver.DefaultOptions()
	})

	Describe("closed orbit of an electron in 1 T", func() {
		DescribeTable("returns to its start after one rotation",
			func(method solver.Method) {
				opts.Method = method
				tr, err := solver.Solve(opts)
				Expect(err).NotTo(HaveOccurred())

				omega0 := physics.ElementaryCharge / physics.ElectronMass
				last := tr.Len() - 1
				Expect(tr.Times[0]).To(Equal(0.0))
				Expect(tr.Times[last]).To(BeNumerically("~", 2*math.Pi/omega0, 1e-12*2*math.Pi/omega0))

				Expect(tr.Positions[0]).To(Equal(r3.Vec{X: 1}))
				Expect(tr.Velocities[0]).To(Equal(r3.Vec{Y: 1}))
				Expect(r3.Norm(tr.Velocities[last])).To(BeNumerically("~", 1, 1e-6))
				Expect(tr.Radiated).To(BeNil())
			},
			Entry("boris", solver.MethodBoris),
			Entry("rk4", solver.MethodRK4),
			Entry("rk45", solver.MethodRK45),
		)

		// Launched from the origin so positions stay at the scale of the
		// orbit and rounding does not swamp the closure error.
		DescribeTable("closes to a small fraction of the Larmor radius",
			func(method solver.Method) {
				opts.Method = method
				opts.Initial = dynamo.State{0, 0, 0, 0, 1, 0}
				tr, err := solver.Solve(opts)
				Expect(err).NotTo(HaveOccurred())

				radius := 1 / (physics.ElementaryCharge / physics.ElectronMass)
				last := tr.Len() - 1
				Expect(tr.Positions[0]).To(Equal(r3.Vec{}))
				Expect(r3.Norm(tr.Positions[last])).To(BeNumerically("<", 1e-3*radius))

				farthest := 0.0
				for _, p := range tr.Positions {
					farthest = math.Max(farthest, r3.Norm(p))
				}
				Expect(farthest).To(BeNumerically("~", 2*radius, 1e-3*radius))
			},
			Entry("boris", solver.MethodBoris),
			Entry("rk4", solver.MethodRK4),
			Entry("rk45", solver.MethodRK45),
		)
	})

	Describe("step-count determinism", func() {
		It("takes ceil(2π n / cfl) steps and ends exactly on t_end", func() {
			opts.NRotations = 3
			opts.CFL = 1e-2
			tr, err := solver.Solve(opts)
			Expect(err).NotTo(HaveOccurred())

			steps := int(math.Ceil(3 * 2 * math.Pi / 1e-2))
			Expect(tr.Steps).To(Equal(steps))
			Expect(tr.Len()).To(Equal(steps + 1))

			omega0 := physics.ElementaryCharge / physics.ElectronMass / physics.GammaFromV(r3.Vec{Y: 1})
			tEnd := 3 * 2 * math.Pi / omega0
			Expect(tr.Times[steps]).To(BeNumerically("~", tEnd, 1e-15*tEnd))
			Expect(tr.StepSize).To(BeNumerically("~", tEnd/float64(steps), 1e-15*tEnd))

			again, err := solver.Solve(opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(again).To(Equal(tr))
		})

		It("pins the last fixed-step ODE sample to t_end", func() {
			opts.Method = solver.MethodRK4
			opts.CFL = 0.07
			tr, err := solver.Solve(opts)
			Expect(err).NotTo(HaveOccurred())

			plan, _ := solver.PlanSteps(1, physics.ElementaryCharge/physics.ElectronMass, 0.07)
			Expect(tr.Steps).To(Equal(plan.Steps))
			Expect(tr.Times[tr.Len()-1]).To(BeNumerically("~", plan.TEnd, 1e-15*plan.TEnd))
		})

		It("clips the adaptive path onto t_end", func() {
			opts.Method = solver.MethodRK45
			tr, err := solver.Solve(opts)
			Expect(err).NotTo(HaveOccurred())

			plan, _ := solver.PlanSteps(1, physics.ElementaryCharge/physics.ElectronMass, solver.DefaultCFL)
			Expect(tr.Times[tr.Len()-1]).To(BeNumerically("~", plan.TEnd, 1e-15*plan.TEnd))
			for i := 1; i < tr.Len(); i++ {
				Expect(tr.Times[i] - tr.Times[i-1]).To(BeNumerically("<=", plan.MaxStep*(1+1e-9)))
			}
		})
	})

	Describe("agreement with the analytic solution", func() {
		const speed = 1e6
		radius := physics.ElectronMass * speed / physics.ElementaryCharge

		DescribeTable("stays within O(cfl²) of the closed form",
			func(kind physics.Kind, method solver.Method, relativistic bool) {
				opts.Kind = kind
				opts.Method = method
				opts.Speed = speed
				tr, err := solver.Solve(opts)
				Expect(err).NotTo(HaveOccurred())

				ref, err := physics.AnalyticSolution(tr.Times, opts.B0, r3.Vec{X: 1}, r3.Vec{Y: speed},
					opts.Particle, physics.AnalyticOptions{Relativistic: relativistic})
				Expect(err).NotTo(HaveOccurred())

				Expect(maxDeviation(tr, ref)).To(BeNumerically("<", 10*opts.CFL*opts.CFL*radius))
			},
			Entry("boris", physics.KindLorentz, solver.MethodBoris, true),
			Entry("rk4 lorentz", physics.KindLorentz, solver.MethodRK4, false),
			Entry("rk45 lorentz", physics.KindLorentz, solver.MethodRK45, false),
			Entry("rk4 relativistic lorentz", physics.KindRelativisticLorentz, solver.MethodRK4, true),
		)

		It("follows the oblique-field helix", func() {
			opts.Method = solver.MethodRK4
			opts.B0 = r3.Vec{X: 0.6, Z: 0.8}
			opts.Initial = dynamo.State{0, 0, 0, 1e5, 2e5, -1e5}
			tr, err := solver.Solve(opts)
			Expect(err).NotTo(HaveOccurred())

			ref, err := physics.AnalyticSolution(tr.Times, opts.B0, r3.Vec{}, r3.Vec{X: 1e5, Y: 2e5, Z: -1e5},
				opts.Particle, physics.AnalyticOptions{})
			Expect(err).NotTo(HaveOccurred())

			r := physics.ElectronMass * 2.5e5 / physics.ElementaryCharge
			Expect(maxDeviation(tr, ref)).To(BeNumerically("<", 1e-5*r))
		})
	})

	Describe("radiation reaction", func() {
		BeforeEach(func() {
			opts.Kind = physics.KindFordOConnell
			opts.Particle.Tau = 1e-13
			opts.Speed = 1e6
			opts.NRotations = 2
		})

		DescribeTable("radiated energy is non-decreasing and balances the kinetic loss",
			func(method solver.Method) {
				opts.Method = method
				tr, err := solver.Solve(opts)
				Expect(err).NotTo(HaveOccurred())
				Expect(tr.Radiated).To(HaveLen(tr.Len()))
				Expect(tr.Radiated[0]).To(Equal(0.0))

				for i := 1; i < tr.Len(); i++ {
					Expect(tr.Radiated[i]).To(BeNumerically(">=", tr.Radiated[i-1]))
				}

				v1 := r3.Norm(tr.Velocities[tr.Len()-1])
				Expect(v1).To(BeNumerically("<", opts.Speed))
				lost := 0.5 * physics.ElectronMass * (opts.Speed*opts.Speed - v1*v1)
				Expect(tr.Radiated[tr.Len()-1]).To(BeNumerically("~", lost, 1e-2*lost))
			},
			Entry("boris", solver.MethodBoris),
			Entry("rk4", solver.MethodRK4),
			Entry("rk45", solver.MethodRK45),
		)

		It("carries an initial radiated energy forward", func() {
			opts.Method = solver.MethodRK4
			opts.Initial = dynamo.State{1, 0, 0, 0, 1e6, 0, 5e-20}
			tr, err := solver.Solve(opts)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.Radiated[0]).To(Equal(5e-20))
			Expect(tr.Radiated[tr.Len()-1]).To(BeNumerically(">", 5e-20))
		})
	})

	Describe("zero field", func() {
		DescribeTable("moves in a straight line",
			func(method solver.Method) {
				opts.Method = method
				opts.Field = field.NewUniform(0, 0, 0)
				tr, err := solver.Solve(opts)
				Expect(err).NotTo(HaveOccurred())

				for i, t := range tr.Times {
					want := r3.Vec{X: 1, Y: t}
					Expect(r3.Norm(r3.Sub(tr.Positions[i], want))).To(BeNumerically("<", 1e-15))
					Expect(tr.Velocities[i]).To(Equal(r3.Vec{Y: 1}))
				}
			},
			Entry("boris", solver.MethodBoris),
			Entry("rk4", solver.MethodRK4),
		)

		It("cannot size the steps when B0 vanishes", func() {
			opts.B0 = r3.Vec{}
			_, err := solver.Solve(opts)
			Expect(err).To(MatchError(dynamo.ErrZeroField))
		})
	})

	Describe("errors", func() {
		It("rejects an initial state of the wrong length", func() {
			opts.Kind = physics.KindFordOConnell
			opts.Initial = dynamo.State{0, 0, 0, 1, 0, 0}
			_, err := solver.Solve(opts)
			Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
		})

		It("rejects negative tau", func() {
			opts.Particle.Tau = -1
			_, err := solver.Solve(opts)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})

		It("rejects speeds at or above c", func() {
			opts.Speed = 2 * physics.SpeedOfLight
			_, err := solver.Solve(opts)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})

		DescribeTable("propagates field errors unmodified",
			func(method solver.Method) {
				opts.Method = method
				opts.Field = field.Bounded{Model: field.NewUniform(0, 0, 1), Radius: 0.5, ZMin: -1, ZMax: 1}
				_, err := solver.Solve(opts)
				Expect(err).To(MatchError(field.ErrOutsideRegion))

				var simErr *dynamo.SimulationError
				Expect(errors.As(err, &simErr)).To(BeTrue())
				Expect(simErr.Step).To(Equal(0))
			},
			Entry("boris", solver.MethodBoris),
			Entry("rk4", solver.MethodRK4),
			Entry("rk45", solver.MethodRK45),
		)
	})
})

var _ = Describe("SolvePlanar", func() {
	It("matches the planar closed form with weak radiation", func() {
		opts := solver.DefaultOptions()
		opts.Method = solver.MethodRK4
		opts.Particle.Tau = 1e-15
		opts.Speed = 1e6

		tr, err := solver.SolvePlanar(opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Radiated).To(HaveLen(tr.Len()))

		ref, err := physics.AnalyticSolution1D(tr.Times, 1, [2]float64{1, 0}, []float64{1e6}, opts.Particle)
		Expect(err).NotTo(HaveOccurred())

		radius := physics.ElectronMass * 1e6 / physics.ElementaryCharge
		for i := range tr.Times {
			d := math.Hypot(tr.Positions[i].X-ref.X[i], tr.Positions[i].Y-ref.Y[i])
			Expect(d).To(BeNumerically("<", 1e-5*radius))
		}

		last := tr.Len() - 1
		Expect(math.Hypot(tr.Velocities[last].X, tr.Velocities[last].Y)).To(BeNumerically("<", 1e6))
	})

	It("requires an ODE method", func() {
		_, err := solver.SolvePlanar(solver.DefaultOptions())
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("checks the planar state length", func() {
		opts := solver.DefaultOptions()
		opts.Method = solver.MethodRK4
		opts.Initial = dynamo.State{0, 0, 0, 1, 0, 0, 0}
		_, err := solver.SolvePlanar(opts)
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
	})
})
