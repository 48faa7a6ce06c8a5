package field

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// BathTub is a magnetic bottle formed by two coaxial current loops on top of
// a background field.
type BathTub struct {
	Coils      [2]Model
	Background r3.Vec
}

// NewBathTub builds the trap from Biot-Savart loops of nTheta points.
func NewBathTub(nTheta int, radius, current, z1, z2 float64, background r3.Vec) *BathTub {
	return &BathTub{
		Coils:      [2]Model{NewCoil(nTheta, radius, current, z1), NewCoil(nTheta, radius, current, z2)},
		Background: background,
	}
}

// NewAnalyticBathTub builds the trap from exact elliptic-integral loops.
func NewAnalyticBathTub(radius, current, z1, z2 float64, background r3.Vec) *BathTub {
	return &BathTub{
		Coils:      [2]Model{NewAnalyticCoil(radius, current, z1), NewAnalyticCoil(radius, current, z2)},
		Background: background,
	}
}

func (b *BathTub) EvaluateAt(x, y, z float64) (r3.Vec, error) {
	b1, err := b.Coils[0].EvaluateAt(x, y, z)
	if err != nil {
		return r3.Vec{}, err
	}
	b2, err := b.Coils[1].EvaluateAt(x, y, z)
	if err != nil {
		return r3.Vec{}, err
	}
	return r3.Add(r3.Add(b1, b2), b.Background), nil
}

// NewSolenoid approximates a solenoid by nCoils equally spaced loops between
// zMin and zMax.
func NewSolenoid(nTheta int, radius, current, zMin, zMax float64, nCoils int) Superposition {
	if nCoils < 1 {
		nCoils = 1
	}
	zs := []float64{0.5 * (zMin + zMax)}
	if nCoils > 1 {
		zs = floats.Span(make([]float64, nCoils), zMin, zMax)
	}
	coils := make(Superposition, len(zs))
	for i, z := range zs {
		coils[i] = NewCoil(nTheta, radius, current, z)
	}
	return coils
}
