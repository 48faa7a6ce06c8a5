package config

import (
	"slices"
	"sort"
)

// Presets are named starting points for `etrack run --preset`.
var Presets = map[string]*Config{
	"electron-1t": {
		Field: FieldConfig{Type: FieldUniform, B: []float64{0, 0, 1}},
		Solver: SolverConfig{
			Kind: "lorentz", Method: "boris", CFL: 1e-3, Tolerance: 1e-9, Rotations: 10,
		},
		Init:  InitConfig{Speed: 1e7},
		Sweep: SweepConfig{ThetaMax: 1.5707963267948966, Count: 8},
	},
	"ford-decay": {
		Particle: ParticleConfig{Tau: 1e-12},
		Field:    FieldConfig{Type: FieldUniform, B: []float64{0, 0, 1}},
		Solver: SolverConfig{
			Kind: "ford", Method: "rk4", CFL: 1e-2, Tolerance: 1e-9, Rotations: 20,
		},
		Init:  InitConfig{Speed: 1e6},
		Sweep: SweepConfig{ThetaMax: 1.5707963267948966, Count: 4},
	},
	"relativistic-18kev": {
		Particle: ParticleConfig{LarmorTau: true},
		Field:    FieldConfig{Type: FieldUniform, B: []float64{0, 0, 1}},
		Solver: SolverConfig{
			Kind: "relativistic-ford", Method: "boris", CFL: 1e-3, Tolerance: 1e-9, Rotations: 5,
		},
		Init:  InitConfig{KineticKeV: 18.6},
		Sweep: SweepConfig{ThetaMax: 1.5707963267948966, Count: 8},
	},
	"bathtub-trap": {
		Field: FieldConfig{
			Type:    FieldAnalyticBathTub,
			B:       []float64{0, 0, 1},
			Radius:  0.05,
			Current: 500,
			Z1:      -0.05,
			Z2:      0.05,
			Bound:   &BoundConfig{Radius: 0.1, ZMin: -0.2, ZMax: 0.2},
		},
		Solver: SolverConfig{
			Kind: "lorentz", Method: "boris", CFL: 1e-2, Tolerance: 1e-9, Rotations: 50,
		},
		Init: InitConfig{
			KineticKeV: 18.6,
			Position:   []float64{0, 0, 0},
			Theta:      0.2,
		},
		Sweep: SweepConfig{ThetaMax: 0.5, Count: 6, CFL: 1e-2},
	},
	"solenoid-scan": {
		Field: FieldConfig{
			Type:     FieldSolenoid,
			Radius:   0.1,
			Current:  8000,
			Z1:       -0.5,
			Z2:       0.5,
			Coils:    11,
			Segments: 64,
			Bound:    &BoundConfig{Radius: 0.09, ZMin: -0.5, ZMax: 0.5},
		},
		Solver: SolverConfig{
			Kind: "lorentz", Method: "boris", CFL: 1e-2, Tolerance: 1e-9, Rotations: 2,
		},
		Init:  InitConfig{Speed: 1e6},
		Sweep: SweepConfig{ThetaMin: 0, ThetaMax: 1.2, Count: 8, CFL: 1e-1},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Field.B = slices.Clone(c.Field.B)
	out.Init.Position = slices.Clone(c.Init.Position)
	out.Init.Velocity = slices.Clone(c.Init.Velocity)
	if c.Field.Bound != nil {
		b := *c.Field.Bound
		out.Field.Bound = &b
	}
	return &out
}
