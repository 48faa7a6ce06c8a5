// Package analysis post-processes particle trajectories.
//
//   - [GyroFrequency]: dominant rotation frequency from the transverse velocity
//   - [PowerSpectrum]: one-sided power spectrum of a uniformly sampled signal
//   - [CompareAnalytic]: deviation of a numerical trajectory from a reference
//   - [DecayRate]: exponential decay rate of the perpendicular speed
//
// # Example
//
//	omega, err := analysis.GyroFrequency(tr)
//	if err != nil {
//	    return err
//	}
//	period := 2 * math.Pi / math.Abs(omega)
package analysis
