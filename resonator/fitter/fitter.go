// Package fitter defines the boundary to the numerical fitting collaborators
// used by resonator-spectroscopy analysis: swept-amplitude peak/dip detection
// and S21 circle-fit resonator modeling.
package fitter

import (
	"github.com/Quantum-Elements/qua-libs/resonator/dataset"
)

// Per-qubit scalar fields a Detector attaches to its fit dataset.
const (
	FieldNumPeaks          = "num_peaks"
	FieldSNR               = "snr"
	FieldFWHM              = "fwhm"
	FieldAsymmetry         = "asymmetry"
	FieldSkewness          = "skewness"
	FieldBandwidthArtifact = "opx_bandwidth_artifact"
	FieldPosition          = "position"
)

// Keys every S21Model quality-metrics map carries.
const (
	KeyNRMSE    = "nrmse"
	KeyRSquared = "r_squared"
)

// A Detector locates resonance peaks or dips in a swept amplitude field.
type Detector interface {
	// Detect scans the named (qubit × sample) amplitude field of ds and
	// returns a fit dataset over the same qubits and sweep axis, with the
	// Field* per-qubit scalars attached. FieldBandwidthArtifact is 1 when a
	// control-hardware bandwidth artifact is present and 0 otherwise;
	// FieldNumPeaks is a whole number.
	Detect(ds *dataset.Dataset, field string) (*dataset.Dataset, error)
}

// A Resonance holds the fitted center frequency and linewidth for one qubit,
// both in Hz. Frequency is absolute RF when the dataset carries a full_freq
// grid, otherwise it is on the sweep axis.
type Resonance struct {
	Frequency float64
	FWHM      float64
}

// An S21Model is the per-qubit result object of a circle fit. Analysis code
// treats it as opaque except for QualityMetrics, which carries at least
// KeyNRMSE and KeyRSquared.
type S21Model struct {
	QualityMetrics map[string]float64

	// Fitted model parameters, filled in as far as the fitter knows them.
	Frequency float64
	FWHM      float64
	Baseline  float64
	Depth     float64
}

// A CircleFitter fits an S21 resonator model to each qubit's sweep.
type CircleFitter interface {
	// Fit returns one Resonance and one S21Model per qubit of ds, keyed by
	// qubit name, fitting the named amplitude field.
	Fit(ds *dataset.Dataset, field string) (map[string]Resonance, map[string]*S21Model, error)
}
