package solver_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/solver"
)

var _ = Describe("PlanSteps", func() {
	DescribeTable("sizes the run from rotations and cfl alone",
		func(nRot, omega0, cfl float64) {
			plan, err := solver.PlanSteps(nRot, omega0, cfl)
			Expect(err).NotTo(HaveOccurred())

			steps := int(math.Ceil(nRot * 2 * math.Pi / cfl))
			Expect(plan.Steps).To(Equal(steps))
			Expect(plan.TEnd).To(BeNumerically("~", nRot*2*math.Pi/omega0, 1e-15*plan.TEnd))
			Expect(plan.StepSize).To(Equal(plan.TEnd / float64(steps)))
			Expect(plan.StepSize).To(BeNumerically("<=", plan.MaxStep))
			Expect(plan.Time(plan.Steps)).To(Equal(plan.TEnd))

			again, _ := solver.PlanSteps(nRot, omega0, cfl)
			Expect(again).To(Equal(plan))
		},
		Entry("one electron orbit", 1.0, 1.7588e11, 1e-3),
		Entry("sweep resolution", 3000.0, 1.7588e11, 1e-1),
		Entry("fractional rotations", 2.5, 3.0, 0.07),
		Entry("slow gyration", 1.0, 1e-3, 1e-2),
	)

	It("rejects a zero field", func() {
		_, err := solver.PlanSteps(1, 0, 1e-3)
		Expect(err).To(MatchError(dynamo.ErrZeroField))
	})

	DescribeTable("rejects invalid parameters",
		func(nRot, omega0, cfl float64) {
			_, err := solver.PlanSteps(nRot, omega0, cfl)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		},
		Entry("zero rotations", 0.0, 1.0, 1e-3),
		Entry("negative rotations", -1.0, 1.0, 1e-3),
		Entry("zero cfl", 1.0, 1.0, 0.0),
		Entry("nan cfl", 1.0, 1.0, math.NaN()),
		Entry("negative omega", 1.0, -1.0, 1e-3),
	)
})
