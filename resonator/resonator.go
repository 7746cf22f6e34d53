// Package resonator classifies the outcome of resonator-spectroscopy
// calibration experiments: it turns a swept-frequency measurement dataset
// into, per qubit, a fitted resonance and a pass/fail verdict with a reason.
package resonator

import (
	"fmt"
)

// Default classification thresholds. Callers tune individual thresholds
// through a Config; a zero Config field falls back to the corresponding
// default.
var (
	DefaultSNRMin                   = 2.5
	DefaultSNRDistorted             = 5.0
	DefaultAsymmetryMin             = 0.4
	DefaultAsymmetryMax             = 2.5
	DefaultSkewnessMax              = 1.5
	DefaultDistortedFractionLowSNR  = 0.2
	DefaultDistortedFractionHighSNR = 0.3
	DefaultFWHMAbsoluteThresholdHz  = 1e6
	DefaultNRMSEThreshold           = 0.14
	DefaultRSquaredThreshold        = 0.90
)

// A Config holds the tunable thresholds of the outcome classifier. The zero
// value of any field means "use the default".
type Config struct {
	// SNRMin is the minimum acceptable peak SNR.
	SNRMin float64

	// SNRDistorted is the SNR below which a too-wide peak is reported as
	// low-SNR distortion rather than plain distortion.
	SNRDistorted float64

	// AsymmetryMin and AsymmetryMax bound the acceptable ratio of the
	// peak's half-widths.
	AsymmetryMin float64
	AsymmetryMax float64

	// SkewnessMax bounds the acceptable |skewness| of the peak.
	SkewnessMax float64

	// DistortedFractionLowSNR and DistortedFractionHighSNR are the maximum
	// acceptable FWHM/sweep-span ratios below and above SNRDistorted.
	DistortedFractionLowSNR  float64
	DistortedFractionHighSNR float64

	// FWHMAbsoluteThresholdHz is the absolute linewidth above which a peak
	// is too wide regardless of sweep span.
	FWHMAbsoluteThresholdHz float64

	// NRMSEThreshold and RSquaredThreshold gate the circle-fit override: a
	// fit with r_squared above and nrmse below them is successful outright.
	NRMSEThreshold    float64
	RSquaredThreshold float64
}

// DefaultConfig returns a Config with every threshold at its default.
func DefaultConfig() Config {
	return Config{
		SNRMin:                   DefaultSNRMin,
		SNRDistorted:             DefaultSNRDistorted,
		AsymmetryMin:             DefaultAsymmetryMin,
		AsymmetryMax:             DefaultAsymmetryMax,
		SkewnessMax:              DefaultSkewnessMax,
		DistortedFractionLowSNR:  DefaultDistortedFractionLowSNR,
		DistortedFractionHighSNR: DefaultDistortedFractionHighSNR,
		FWHMAbsoluteThresholdHz:  DefaultFWHMAbsoluteThresholdHz,
		NRMSEThreshold:           DefaultNRMSEThreshold,
		RSquaredThreshold:        DefaultRSquaredThreshold,
	}
}

// withDefaults resolves zero-valued thresholds to their defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SNRMin == 0 {
		c.SNRMin = d.SNRMin
	}
	if c.SNRDistorted == 0 {
		c.SNRDistorted = d.SNRDistorted
	}
	if c.AsymmetryMin == 0 {
		c.AsymmetryMin = d.AsymmetryMin
	}
	if c.AsymmetryMax == 0 {
		c.AsymmetryMax = d.AsymmetryMax
	}
	if c.SkewnessMax == 0 {
		c.SkewnessMax = d.SkewnessMax
	}
	if c.DistortedFractionLowSNR == 0 {
		c.DistortedFractionLowSNR = d.DistortedFractionLowSNR
	}
	if c.DistortedFractionHighSNR == 0 {
		c.DistortedFractionHighSNR = d.DistortedFractionHighSNR
	}
	if c.FWHMAbsoluteThresholdHz == 0 {
		c.FWHMAbsoluteThresholdHz = d.FWHMAbsoluteThresholdHz
	}
	if c.NRMSEThreshold == 0 {
		c.NRMSEThreshold = d.NRMSEThreshold
	}
	if c.RSquaredThreshold == 0 {
		c.RSquaredThreshold = d.RSquaredThreshold
	}
	return c
}

// FitParameters stores the relevant resonator-spectroscopy fit parameters for
// a single qubit. Immutable once produced by an analysis run.
type FitParameters struct {
	// Frequency is the fitted resonator frequency in Hz.
	Frequency float64

	// FWHM is the fitted linewidth in Hz.
	FWHM float64

	// Outcome is the classification verdict, OutcomeSuccessful or one of
	// the failure reason strings.
	Outcome string
}

// A MissingFieldError reports a fit field that is absent, or not a finite
// number, for a particular qubit.
type MissingFieldError struct {
	Field string
	Qubit string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("fit field %q missing or non-finite for qubit %s", e.Field, e.Qubit)
}
