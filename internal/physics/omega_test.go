package physics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/dynamo"
)

func TestCalculateOmegaShapes(t *testing.T) {
	tests := []struct {
		name    string
		b       []float64
		want    r3.Vec
		wantErr error
	}{
		{"scalar", []float64{2}, r3.Vec{Z: 4}, nil},
		{"vector", []float64{1, -1, 0.5}, r3.Vec{X: 2, Y: -2, Z: 1}, nil},
		{"empty", nil, r3.Vec{}, dynamo.ErrInvalidShape},
		{"pair", []float64{1, 2}, r3.Vec{}, dynamo.ErrInvalidShape},
		{"four", []float64{1, 2, 3, 4}, r3.Vec{}, dynamo.ErrInvalidShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateOmega(tt.b, 2, 1, 0)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("omega = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCalculateOmegaElectron(t *testing.T) {
	omega, err := CalculateOmega([]float64{1}, -ElementaryCharge, ElectronMass, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := -1.75882001076e11
	if math.Abs(omega.Z-want)/math.Abs(want) > 1e-9 {
		t.Errorf("electron cyclotron frequency = %g, want %g", omega.Z, want)
	}
}

func TestCalculateOmegaEnergyCorrection(t *testing.T) {
	const energy = 18.6
	rest := OmegaVec(r3.Vec{Z: 1}, -ElementaryCharge, ElectronMass, 0)
	hot := OmegaVec(r3.Vec{Z: 1}, -ElementaryCharge, ElectronMass, energy)

	gamma := 1 + energy*KeV/(ElectronMass*SpeedOfLight*SpeedOfLight)
	if math.Abs(rest.Z/hot.Z-gamma) > 1e-12 {
		t.Errorf("omega ratio = %g, want gamma %g", rest.Z/hot.Z, gamma)
	}
}

func TestLarmorTau(t *testing.T) {
	tau := LarmorTau(-ElementaryCharge, ElectronMass)
	// 2 r_e / 3c for the electron.
	want := 6.2664e-24
	if math.Abs(tau-want)/want > 1e-3 {
		t.Errorf("LarmorTau = %g, want ~%g", tau, want)
	}
}

func TestSpeedFromKineticEnergy(t *testing.T) {
	for _, keV := range []float64{0.001, 1, 18.6, 511, 5000} {
		v := SpeedFromKineticEnergy(keV, ElectronMass)
		if v <= 0 || v >= SpeedOfLight {
			t.Fatalf("speed %g out of range for %g keV", v, keV)
		}
		kinetic := (GammaFromV(r3.Vec{X: v}) - 1) * ElectronMass * SpeedOfLight * SpeedOfLight / KeV
		if math.Abs(kinetic-keV)/keV > 1e-6 {
			t.Errorf("round trip energy = %g keV, want %g", kinetic, keV)
		}
	}
}

func TestGammaConsistency(t *testing.T) {
	v := r3.Vec{X: 0.3 * SpeedOfLight, Y: -0.4 * SpeedOfLight, Z: 0.1 * SpeedOfLight}
	u, err := MomentumPerMass(v)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(GammaFromU(u)-GammaFromV(v)) > 1e-12 {
		t.Errorf("gamma from u = %g, from v = %g", GammaFromU(u), GammaFromV(v))
	}

	if _, err := MomentumPerMass(r3.Vec{Z: SpeedOfLight}); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter at c, got %v", err)
	}
}

func TestParticleValidate(t *testing.T) {
	tests := []struct {
		name string
		p    Particle
		ok   bool
	}{
		{"electron", Electron(), true},
		{"larmor", Electron().WithLarmorTau(), true},
		{"negative tau", Particle{Charge: -1, Mass: 1, Tau: -1e-3}, false},
		{"zero mass", Particle{Charge: -1, Mass: 0}, false},
		{"nan charge", Particle{Charge: math.NaN(), Mass: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}
