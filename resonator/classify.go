package resonator

import "math"

// Outcome strings produced by Classify. OutcomeSuccessful marks a passed
// calibration; every other value is a failure reason.
const (
	OutcomeSuccessful = "successful"

	OutcomeLowSNR = "The SNR isn't large enough, consider increasing the number of shots"

	OutcomeBandwidthArtifact = "OPX bandwidth artifact detected, check your experiment bandwidth settings"

	OutcomeSeveralPeaks = "Several peaks were detected"

	OutcomeNoPeaksLowSNR = "The SNR isn't large enough, consider increasing the number of shots " +
		"and ensure you are looking at the correct frequency range"

	OutcomeNoPeaks = "No peaks were detected, consider changing the frequency range"

	OutcomeShapeDistorted = "The peak shape is distorted"

	OutcomeLowSNRDistorted = "The SNR isn't large enough and the peak shape is distorted"

	OutcomeDistortedPeak = "Distorted peak detected"
)

// Classify maps a qubit's quality metrics to an outcome string. Rules are
// checked in a fixed order and the first match wins: a statistically good
// circle fit is accepted before any shape heuristic runs, then SNR, the
// bandwidth-artifact flag, peak count, peak shape, and peak width are checked
// in turn. Classify is pure and total: for finite metrics it always returns
// one of the Outcome constants.
func Classify(m Metrics, cfg Config) string {
	cfg = cfg.withDefaults()

	if m.RSquared > cfg.RSquaredThreshold && m.NRMSE < cfg.NRMSEThreshold {
		return OutcomeSuccessful
	}
	if m.SNR < cfg.SNRMin {
		return OutcomeLowSNR
	}
	if m.BandwidthArtifact {
		return OutcomeBandwidthArtifact
	}
	if m.NumPeaks > 1 {
		return OutcomeSeveralPeaks
	}
	if m.NumPeaks == 0 {
		// The SNR guard here cannot fire given the check above; kept to
		// match the established cascade.
		if m.SNR < cfg.SNRMin {
			return OutcomeNoPeaksLowSNR
		}
		return OutcomeNoPeaks
	}
	if peakShapeDistorted(m, cfg) {
		return OutcomeShapeDistorted
	}
	if peakTooWide(m, cfg) {
		if m.SNR < cfg.SNRDistorted {
			return OutcomeLowSNRDistorted
		}
		return OutcomeDistortedPeak
	}
	return OutcomeSuccessful
}

// peakShapeDistorted reports whether asymmetry or skewness falls outside the
// acceptable band.
func peakShapeDistorted(m Metrics, cfg Config) bool {
	if m.Asymmetry < cfg.AsymmetryMin || m.Asymmetry > cfg.AsymmetryMax {
		return true
	}
	return math.Abs(m.Skewness) > cfg.SkewnessMax
}

// peakTooWide reports whether the peak is too wide relative to the sweep span
// or in absolute terms. A zero sweep span disables the relative check.
func peakTooWide(m Metrics, cfg Config) bool {
	fraction := cfg.DistortedFractionHighSNR
	if m.SNR < cfg.SNRDistorted {
		fraction = cfg.DistortedFractionLowSNR
	}
	if m.SweepSpan > 0 && m.FWHM/m.SweepSpan > fraction {
		return true
	}
	return m.FWHM > cfg.FWHMAbsoluteThresholdHz
}
