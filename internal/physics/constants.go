package physics

import "gonum.org/v1/gonum/unit/constant"

const (
	ElementaryCharge = float64(constant.ElementaryCharge)
	SpeedOfLight     = float64(constant.LightSpeedInVacuum)
	MagneticConstant = float64(constant.MagneticConstant)

	// ElectronMass is the CODATA 2018 electron rest mass in kg.
	ElectronMass = 9.1093837015e-31

	// KeV is one kilo-electronvolt in joules.
	KeV = 1e3 * ElementaryCharge
)
