package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/physics"
	"github.com/san-kum/etrack/internal/solver"
)

const (
	DefaultSpeed     = 1e6
	DefaultRotations = 1.0
	DefaultSegments  = 256
)

// Field types understood by the experiment registry.
const (
	FieldUniform         = "uniform"
	FieldCoil            = "coil"
	FieldAnalyticCoil    = "analytic-coil"
	FieldBathTub         = "bathtub"
	FieldAnalyticBathTub = "analytic-bathtub"
	FieldSolenoid        = "solenoid"
)

var FieldTypes = []string{
	FieldUniform, FieldCoil, FieldAnalyticCoil, FieldBathTub, FieldAnalyticBathTub, FieldSolenoid,
}

type Config struct {
	Particle ParticleConfig `yaml:"particle"`
	Field    FieldConfig    `yaml:"field"`
	Solver   SolverConfig   `yaml:"solver"`
	Init     InitConfig     `yaml:"init"`
	Sweep    SweepConfig    `yaml:"sweep"`
}

// ParticleConfig defaults to an electron. Charge and Mass override the
// species when non-zero; LarmorTau replaces Tau with the classical value.
type ParticleConfig struct {
	Charge    float64 `yaml:"charge,omitempty"`
	Mass      float64 `yaml:"mass,omitempty"`
	Tau       float64 `yaml:"tau"`
	LarmorTau bool    `yaml:"larmor_tau"`
}

// FieldConfig describes the driving field. B is the uniform field, or the
// background of a bathtub, and when set also sizes the steps; a single
// component is taken as B_z. Coil fields use Radius and Current; Z places a
// single coil, Z1 and Z2 the two bathtub coils or the solenoid ends.
type FieldConfig struct {
	Type     string       `yaml:"type"`
	B        []float64    `yaml:"b,flow,omitempty"`
	Radius   float64      `yaml:"radius,omitempty"`
	Current  float64      `yaml:"current,omitempty"`
	Z        float64      `yaml:"z,omitempty"`
	Z1       float64      `yaml:"z1,omitempty"`
	Z2       float64      `yaml:"z2,omitempty"`
	Coils    int          `yaml:"coils,omitempty"`
	Segments int          `yaml:"segments,omitempty"`
	Bound    *BoundConfig `yaml:"bound,omitempty"`
}

// BoundConfig limits the field to a cylinder about the z axis.
type BoundConfig struct {
	Radius float64 `yaml:"radius"`
	ZMin   float64 `yaml:"z_min"`
	ZMax   float64 `yaml:"z_max"`
}

type SolverConfig struct {
	Kind      string  `yaml:"kind"`
	Method    string  `yaml:"method"`
	EnergyKeV float64 `yaml:"energy_kev,omitempty"`
	CFL       float64 `yaml:"cfl"`
	Tolerance float64 `yaml:"tolerance"`
	Rotations float64 `yaml:"rotations"`
}

// InitConfig sets the start. KineticKeV, when non-zero, fixes the speed
// instead of Speed. Without Position the analytic start is used; with
// Position and no Velocity the particle is launched at Theta radians from
// the x axis in the xz plane.
type InitConfig struct {
	Speed      float64   `yaml:"speed"`
	KineticKeV float64   `yaml:"kinetic_kev,omitempty"`
	Position   []float64 `yaml:"position,flow,omitempty"`
	Velocity   []float64 `yaml:"velocity,flow,omitempty"`
	Theta      float64   `yaml:"theta,omitempty"`
}

// SweepConfig drives `etrack sweep`: Count launch angles over
// [ThetaMin, ThetaMax] radians.
type SweepConfig struct {
	ThetaMin float64 `yaml:"theta_min"`
	ThetaMax float64 `yaml:"theta_max"`
	Count    int     `yaml:"count"`
	Workers  int     `yaml:"workers,omitempty"`
	CFL      float64 `yaml:"cfl,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Field: FieldConfig{
			Type: FieldUniform,
			B:    []float64{0, 0, 1},
		},
		Solver: SolverConfig{
			Kind:      physics.KindLorentz.String(),
			Method:    solver.MethodBoris.String(),
			CFL:       solver.DefaultCFL,
			Tolerance: solver.DefaultTolerance,
			Rotations: DefaultRotations,
		},
		Init: InitConfig{
			Speed: DefaultSpeed,
		},
		Sweep: SweepConfig{
			ThetaMax: 1.5707963267948966,
			Count:    8,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks names and ranges without building anything.
func (c *Config) Validate() error {
	if _, err := physics.ParseKind(c.Solver.Kind); err != nil {
		return err
	}
	if _, err := solver.ParseMethod(c.Solver.Method); err != nil {
		return err
	}
	if !slices.Contains(FieldTypes, c.Field.Type) {
		return dynamo.InvalidParameter("unknown field type %q", c.Field.Type)
	}
	if n := len(c.Field.B); n != 0 && n != 1 && n != 3 {
		return fmt.Errorf("%w: field b has %d components", dynamo.ErrInvalidShape, n)
	}
	if c.Field.Type != FieldUniform && !(c.Field.Radius > 0) {
		return dynamo.InvalidParameter("%s field needs a positive radius", c.Field.Type)
	}
	if c.Field.Type == FieldSolenoid && c.Field.Coils < 1 {
		return dynamo.InvalidParameter("solenoid needs at least one coil")
	}
	if !(c.Solver.CFL > 0) {
		return dynamo.InvalidParameter("cfl must be positive, got %g", c.Solver.CFL)
	}
	if !(c.Solver.Rotations > 0) {
		return dynamo.InvalidParameter("rotations must be positive, got %g", c.Solver.Rotations)
	}
	if c.Solver.Tolerance < 0 {
		return dynamo.InvalidParameter("tolerance must be non-negative, got %g", c.Solver.Tolerance)
	}
	if c.Solver.EnergyKeV < 0 || c.Init.KineticKeV < 0 {
		return dynamo.InvalidParameter("energies must be non-negative")
	}
	for name, v := range map[string][]float64{"position": c.Init.Position, "velocity": c.Init.Velocity} {
		if len(v) != 0 && len(v) != 3 {
			return fmt.Errorf("%w: init %s has %d components", dynamo.ErrInvalidShape, name, len(v))
		}
	}
	if len(c.Init.Velocity) != 0 && len(c.Init.Position) == 0 {
		return dynamo.InvalidParameter("init velocity needs a position")
	}
	if c.Sweep.Count < 0 {
		return dynamo.InvalidParameter("sweep count must be non-negative, got %d", c.Sweep.Count)
	}
	return c.BuildParticle().Validate()
}

// Kind and Method assume a validated config.
func (c *Config) Kind() physics.Kind {
	k, _ := physics.ParseKind(c.Solver.Kind)
	return k
}

func (c *Config) Method() solver.Method {
	m, _ := solver.ParseMethod(c.Solver.Method)
	return m
}

func (c *Config) BuildParticle() physics.Particle {
	p := physics.Electron()
	if c.Particle.Charge != 0 {
		p.Charge = c.Particle.Charge
	}
	if c.Particle.Mass != 0 {
		p.Mass = c.Particle.Mass
	}
	p.Tau = c.Particle.Tau
	if c.Particle.LarmorTau {
		p = p.WithLarmorTau()
	}
	return p
}

// InitialSpeed is the launch speed in m/s.
func (c *Config) InitialSpeed() float64 {
	if c.Init.KineticKeV > 0 {
		return physics.SpeedFromKineticEnergy(c.Init.KineticKeV, c.BuildParticle().Mass)
	}
	return c.Init.Speed
}
