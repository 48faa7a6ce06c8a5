package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/etrack/internal/dynamo"
)

var (
	ErrTooFewSamples = errors.New("analysis: too few samples")
	ErrNonUniform    = errors.New("analysis: samples are not uniformly spaced")
)

// uniformStep returns the sample spacing, or ErrNonUniform when the spacing
// varies by more than one part in 1e6.
func uniformStep(times []float64) (float64, error) {
	if len(times) < 4 {
		return 0, fmt.Errorf("%w: got %d", ErrTooFewSamples, len(times))
	}
	dt := times[1] - times[0]
	for i := 2; i < len(times); i++ {
		if math.Abs(times[i]-times[i-1]-dt) > 1e-6*dt {
			return 0, fmt.Errorf("%w: step %d is %g, first step %g", ErrNonUniform, i, times[i]-times[i-1], dt)
		}
	}
	return dt, nil
}

// GyroFrequency estimates the signed angular frequency of the velocity
// rotation in the x-y plane from the spectrum of vx + i·vy. A positive result
// means counterclockwise rotation about +z. The trajectory must be sampled
// uniformly.
func GyroFrequency(tr *dynamo.Trajectory) (float64, error) {
	dt, err := uniformStep(tr.Times)
	if err != nil {
		return 0, err
	}

	// The closing sample repeats the phase of the first one for a whole number
	// of turns.
	n := tr.Len() - 1
	signal := make([]complex128, n)
	for i := 0; i < n; i++ {
		signal[i] = complex(tr.Velocities[i].X, tr.Velocities[i].Y)
	}
	spectrum := fft.FFT(signal)

	peak := 1
	for k := 2; k < n; k++ {
		if cmplx.Abs(spectrum[k]) > cmplx.Abs(spectrum[peak]) {
			peak = k
		}
	}

	a := cmplx.Abs(spectrum[(peak-1+n)%n])
	b := cmplx.Abs(spectrum[peak])
	c := cmplx.Abs(spectrum[(peak+1)%n])
	offset := 0.0
	if den := a - 2*b + c; den != 0 {
		offset = 0.5 * (a - c) / den
	}

	bin := float64(peak) + offset
	if peak > n/2 {
		bin -= float64(n)
	}
	return 2 * math.Pi * bin / (float64(n) * dt), nil
}

// PowerSpectrum returns |X_k|²/N for k in [0, N/2].
func PowerSpectrum(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return nil
	}
	spectrum := fft.FFTReal(signal)

	power := make([]float64, n/2+1)
	for k := range power {
		mag := cmplx.Abs(spectrum[k])
		power[k] = mag * mag / float64(n)
	}
	return power
}
