package resonator

import (
	"math"

	"github.com/Quantum-Elements/qua-libs/resonator/dataset"
	"github.com/Quantum-Elements/qua-libs/resonator/fitter"
)

// Metrics is the flat set of per-qubit quality metrics the classifier
// consumes. Computed fresh per classification call, never persisted.
type Metrics struct {
	// NumPeaks is the number of resonance peaks the detector found.
	NumPeaks int

	// SNR is the detected peak's signal-to-noise ratio.
	SNR float64

	// FWHM is the detected linewidth in Hz.
	FWHM float64

	// SweepSpan is the swept frequency range in Hz, 0 when no sweep axis
	// is known.
	SweepSpan float64

	// Asymmetry is the ratio of the peak's half-widths.
	Asymmetry float64

	// Skewness is the peak's weighted skewness.
	Skewness float64

	// BandwidthArtifact holds the inverse of the detector's raw
	// opx_bandwidth_artifact flag, preserving the polarity the
	// classification cascade was tuned against.
	BandwidthArtifact bool

	// NRMSE and RSquared are the circle-fit residual scores.
	NRMSE    float64
	RSquared float64
}

// ExtractMetrics reads the classifier's quality metrics for one qubit from a
// detector fit dataset and a circle-fit model. Any required field that is
// absent or non-finite yields a *MissingFieldError; metrics are never
// silently defaulted.
func ExtractMetrics(fit *dataset.Dataset, model *fitter.S21Model, qubit string) (Metrics, error) {
	var m Metrics

	numPeaks, err := fitScalar(fit, fitter.FieldNumPeaks, qubit)
	if err != nil {
		return Metrics{}, err
	}
	m.NumPeaks = int(numPeaks)

	if m.SNR, err = fitScalar(fit, fitter.FieldSNR, qubit); err != nil {
		return Metrics{}, err
	}
	if m.FWHM, err = fitScalar(fit, fitter.FieldFWHM, qubit); err != nil {
		return Metrics{}, err
	}
	if m.Asymmetry, err = fitScalar(fit, fitter.FieldAsymmetry, qubit); err != nil {
		return Metrics{}, err
	}
	if m.Skewness, err = fitScalar(fit, fitter.FieldSkewness, qubit); err != nil {
		return Metrics{}, err
	}
	raw, err := fitScalar(fit, fitter.FieldBandwidthArtifact, qubit)
	if err != nil {
		return Metrics{}, err
	}
	m.BandwidthArtifact = !(raw != 0)

	m.SweepSpan = fit.Span("detuning", "full_freq")

	if model == nil {
		return Metrics{}, &MissingFieldError{Field: "quality_metrics", Qubit: qubit}
	}
	if m.NRMSE, err = modelMetric(model, fitter.KeyNRMSE, qubit); err != nil {
		return Metrics{}, err
	}
	if m.RSquared, err = modelMetric(model, fitter.KeyRSquared, qubit); err != nil {
		return Metrics{}, err
	}
	return m, nil
}

func fitScalar(fit *dataset.Dataset, field, qubit string) (float64, error) {
	v, ok := fit.Scalar(field, qubit)
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &MissingFieldError{Field: field, Qubit: qubit}
	}
	return v, nil
}

func modelMetric(model *fitter.S21Model, key, qubit string) (float64, error) {
	v, ok := model.QualityMetrics[key]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &MissingFieldError{Field: key, Qubit: qubit}
	}
	return v, nil
}
