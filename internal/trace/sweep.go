package trace

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/etrack/internal/dynamo"
	"github.com/san-kum/etrack/internal/field"
)

// SweepConfig is the part of a trace shared by every angle of a sweep.
type SweepConfig struct {
	B0         float64
	Speed      float64
	Field      field.Model
	NRotations float64
	Options    Options
	// Workers bounds concurrent traces; zero means GOMAXPROCS.
	Workers int
}

// Angles returns n launch angles evenly spaced over [min, max].
func Angles(min, max float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{min}
	}
	return floats.Span(make([]float64, n), min, max)
}

// Sweep traces one electron per angle. Results keep the order of angles.
// The first failure cancels traces not yet started and is returned with
// its angle.
func Sweep(ctx context.Context, angles []float64, cfg SweepConfig) ([]*dynamo.Trajectory, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*dynamo.Trajectory, len(angles))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, theta := range angles {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tr, err := ElectronTrace(theta, cfg.B0, cfg.Speed, cfg.Field, cfg.NRotations, cfg.Options)
			if err != nil {
				return fmt.Errorf("theta=%g: %w", theta, err)
			}
			results[i] = tr
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
