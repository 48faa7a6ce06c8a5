package experiment

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/etrack/internal/config"
	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
	"github.com/san-kum/etrack/internal/metrics"
	"github.com/san-kum/etrack/internal/physics"
	"github.com/san-kum/etrack/internal/solver"
)

// FieldBuilder turns a field section into a model.
type FieldBuilder func(cfg config.FieldConfig) (field.Model, error)

type Registry struct {
	fields map[string]FieldBuilder
}

func NewRegistry() *Registry {
	r := &Registry{
		fields: make(map[string]FieldBuilder),
	}

	r.fields[config.FieldUniform] = func(cfg config.FieldConfig) (field.Model, error) {
		return field.Uniform{B: Vector(cfg.B)}, nil
	}
	r.fields[config.FieldCoil] = func(cfg config.FieldConfig) (field.Model, error) {
		return withBackground(field.NewCoil(segments(cfg), cfg.Radius, cfg.Current, cfg.Z), cfg), nil
	}
	r.fields[config.FieldAnalyticCoil] = func(cfg config.FieldConfig) (field.Model, error) {
		return withBackground(field.NewAnalyticCoil(cfg.Radius, cfg.Current, cfg.Z), cfg), nil
	}
	r.fields[config.FieldBathTub] = func(cfg config.FieldConfig) (field.Model, error) {
		return field.NewBathTub(segments(cfg), cfg.Radius, cfg.Current, cfg.Z1, cfg.Z2, Vector(cfg.B)), nil
	}
	r.fields[config.FieldAnalyticBathTub] = func(cfg config.FieldConfig) (field.Model, error) {
		return field.NewAnalyticBathTub(cfg.Radius, cfg.Current, cfg.Z1, cfg.Z2, Vector(cfg.B)), nil
	}
	r.fields[config.FieldSolenoid] = func(cfg config.FieldConfig) (field.Model, error) {
		if cfg.Coils < 1 {
			return nil, dynamo.InvalidParameter("solenoid needs at least one coil")
		}
		return withBackground(field.NewSolenoid(segments(cfg), cfg.Radius, cfg.Current, cfg.Z1, cfg.Z2, cfg.Coils), cfg), nil
	}

	return r
}

// Register adds or replaces a field type.
func (r *Registry) Register(name string, b FieldBuilder) {
	r.fields[name] = b
}

// BuildField builds the named field and applies the optional bound.
func (r *Registry) BuildField(cfg config.FieldConfig) (field.Model, error) {
	fn, ok := r.fields[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown field: %s", cfg.Type)
	}
	m, err := fn(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.Bound != nil {
		m = field.Bounded{Model: m, Radius: cfg.Bound.Radius, ZMin: cfg.Bound.ZMin, ZMax: cfg.Bound.ZMax}
	}
	return m, nil
}

func (r *Registry) ListFields() []string {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(physics.Kinds()))
	for _, k := range physics.Kinds() {
		names = append(names, k.String())
	}
	return names
}

func (r *Registry) ListMethods() []string {
	names := make([]string, 0, len(solver.Methods()))
	for _, m := range solver.Methods() {
		names = append(names, m.String())
	}
	return names
}

func (r *Registry) DefaultMetrics(p physics.Particle) []dynamo.Metric {
	return metrics.Standard(p.Mass)
}

// Vector reads a field vector; a single component is B_z.
func Vector(b []float64) r3.Vec {
	switch len(b) {
	case 1:
		return r3.Vec{Z: b[0]}
	case 3:
		return r3.Vec{X: b[0], Y: b[1], Z: b[2]}
	}
	return r3.Vec{}
}

func segments(cfg config.FieldConfig) int {
	if cfg.Segments > 0 {
		return cfg.Segments
	}
	return config.DefaultSegments
}

func withBackground(m field.Model, cfg config.FieldConfig) field.Model {
	if len(cfg.B) == 0 {
		return m
	}
	return field.Superposition{m, field.Uniform{B: Vector(cfg.B)}}
}
