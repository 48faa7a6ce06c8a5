package solver_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
	"github.com/san-kum/etrack/internal/physics"
	"github.com/san-kum/etrack/internal/solver"
)

var _ = Describe("Boris", func() {
	DescribeTable("preserves |u| in a magnetic field without radiation",
		func(b, u r3.Vec, dt float64) {
			pusher, err := solver.NewBoris(physics.KindLorentz, physics.Electron(), field.Uniform{B: b})
			Expect(err).NotTo(HaveOccurred())

			x := r3.Vec{X: 1}
			for i := 0; i < 100; i++ {
				_, next, err := pusher.Advance(x, u, dt)
				Expect(err).NotTo(HaveOccurred())
				Expect(r3.Norm(next)).To(BeNumerically("~", r3.Norm(u), 1e-12*r3.Norm(u)))
				u = next
			}
		},
		Entry("axial field", r3.Vec{Z: 1}, r3.Vec{Y: 1}, 1e-14),
		Entry("oblique field", r3.Vec{X: 0.3, Y: -0.2, Z: 0.9}, r3.Vec{X: 2e6, Y: -1e6, Z: 5e5}, 5e-13),
		Entry("relativistic speed", r3.Vec{Y: 2}, r3.Vec{X: 1.5e8, Z: 1e8}, 1e-12),
		Entry("huge rotation angle", r3.Vec{Z: 10}, r3.Vec{X: 1, Y: 1}, 1e-9),
	)

	It("moves in a straight line through a zero field", func() {
		pusher, err := solver.NewBoris(physics.KindLorentz, physics.Electron(), field.NewUniform(0, 0, 0))
		Expect(err).NotTo(HaveOccurred())

		u := r3.Vec{X: 3, Y: -4, Z: 1}
		x, next, err := pusher.Advance(r3.Vec{}, u, 0.5)
		Expect(err).NotTo(HaveOccurred())
		Expect(next).To(Equal(u))

		gamma := physics.GammaFromU(u)
		want := r3.Scale(0.5/gamma, u)
		Expect(r3.Norm(r3.Sub(x, want))).To(BeNumerically("<", 1e-15))
	})

	It("samples the field once per step at the half-step position", func() {
		var visited []r3.Vec
		f := field.Func(func(x, y, z float64) (r3.Vec, error) {
			visited = append(visited, r3.Vec{X: x, Y: y, Z: z})
			return r3.Vec{Z: 1}, nil
		})
		pusher, err := solver.NewBoris(physics.KindLorentz, physics.Electron(), f)
		Expect(err).NotTo(HaveOccurred())

		_, _, err = pusher.Advance(r3.Vec{}, r3.Vec{X: 2}, 1e-12)
		Expect(err).NotTo(HaveOccurred())
		Expect(visited).To(HaveLen(1))
		Expect(visited[0].X).To(BeNumerically("~", 1e-12, 1e-24))
	})

	It("loses energy when radiation reaction is on", func() {
		p := physics.Electron()
		p.Tau = 1e-13
		pusher, err := solver.NewBoris(physics.KindFordOConnell, p, field.NewUniform(0, 0, 1))
		Expect(err).NotTo(HaveOccurred())

		u := r3.Vec{Y: 1e6}
		_, next, err := pusher.Advance(r3.Vec{}, u, 1e-14)
		Expect(err).NotTo(HaveOccurred())
		Expect(r3.Norm(next)).To(BeNumerically("<", r3.Norm(u)))
	})

	It("ignores tau for non-radiating kinds", func() {
		p := physics.Electron()
		p.Tau = 1e-13
		pusher, err := solver.NewBoris(physics.KindLorentz, p, field.NewUniform(0, 0, 1))
		Expect(err).NotTo(HaveOccurred())

		u := r3.Vec{Y: 1e6}
		_, next, err := pusher.Advance(r3.Vec{}, u, 1e-14)
		Expect(err).NotTo(HaveOccurred())
		Expect(r3.Norm(next)).To(BeNumerically("~", r3.Norm(u), 1e-9))
	})

	It("rejects a starting speed at or above c", func() {
		pusher, err := solver.NewBoris(physics.KindLorentz, physics.Electron(), field.NewUniform(0, 0, 1))
		Expect(err).NotTo(HaveOccurred())
		plan, err := solver.PlanSteps(1, 1.7588e11, 1e-1)
		Expect(err).NotTo(HaveOccurred())

		_, err = pusher.Solve(r3.Vec{}, r3.Vec{Z: physics.SpeedOfLight}, 0, plan)
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("returns field errors unmodified with step context", func() {
		bounded := field.Bounded{Model: field.NewUniform(0, 0, 1), Radius: 1e-3, ZMin: -1, ZMax: 1}
		pusher, err := solver.NewBoris(physics.KindLorentz, physics.Electron(), bounded)
		Expect(err).NotTo(HaveOccurred())

		plan, err := solver.PlanSteps(1, 1.7588e11, 1e-1)
		Expect(err).NotTo(HaveOccurred())

		// Streams along the axis and leaves through the end cap after a
		// couple of steps.
		_, err = pusher.Solve(r3.Vec{Z: 0.9999}, r3.Vec{Z: 1e8}, 0, plan)
		Expect(err).To(MatchError(field.ErrOutsideRegion))

		var simErr *dynamo.SimulationError
		Expect(errors.As(err, &simErr)).To(BeTrue())
		Expect(simErr.Step).To(Equal(2))
	})
})
