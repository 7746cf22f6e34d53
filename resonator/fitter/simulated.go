package fitter

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Quantum-Elements/qua-libs/resonator/dataset"
)

// DefaultEdgeFraction is the fraction of the sweep, at each end, within which
// a detected dip is attributed to control-hardware bandwidth roll-off.
var DefaultEdgeFraction = 0.05

// SimulatedOpts packages together the arguments necessary to construct a
// Simulated fitter.
type SimulatedOpts struct {
	// EdgeFraction overrides DefaultEdgeFraction. Must be in [0, 0.5).
	EdgeFraction float64
}

// A Simulated fitter detects Lorentzian dips in swept amplitude data and fits
// the same Lorentzian model back to it. It stands in for the production
// peak-detection and circle-fit collaborators in tests and benchmarks, much
// like a simulated quantum channel stands in for real optics.
type Simulated struct {
	edgeFraction float64
}

// NewSimulated returns a Simulated fitter configured per opts, or an error if
// the options are nonsensical.
func NewSimulated(opts SimulatedOpts) (*Simulated, error) {
	ef := opts.EdgeFraction
	if ef == 0 {
		ef = DefaultEdgeFraction
	}
	if ef < 0 || ef >= 0.5 {
		return nil, fmt.Errorf("edge fraction %v outside [0, 0.5)", ef)
	}
	return &Simulated{edgeFraction: ef}, nil
}

// Detect implements the Detector interface.
func (s *Simulated) Detect(ds *dataset.Dataset, field string) (*dataset.Dataset, error) {
	grid, ok := ds.Grid(field)
	if !ok {
		return nil, fmt.Errorf("field %q not in dataset", field)
	}
	fit, err := dataset.New(ds.Qubits(), ds.AxisName(), ds.Axis())
	if err != nil {
		return nil, err
	}
	n := ds.NumQubits()
	numPeaks := make([]float64, n)
	snr := make([]float64, n)
	fwhm := make([]float64, n)
	asym := make([]float64, n)
	skew := make([]float64, n)
	artifact := make([]float64, n)
	pos := make([]float64, n)
	for i, row := range grid {
		tr := s.analyze(ds.Axis(), row)
		numPeaks[i] = float64(tr.numPeaks)
		snr[i] = tr.snr
		fwhm[i] = tr.fwhm
		asym[i] = tr.asymmetry
		skew[i] = tr.skewness
		if tr.artifact {
			artifact[i] = 1
		}
		pos[i] = tr.center
	}
	for name, vals := range map[string][]float64{
		FieldNumPeaks:          numPeaks,
		FieldSNR:               snr,
		FieldFWHM:              fwhm,
		FieldAsymmetry:         asym,
		FieldSkewness:          skew,
		FieldBandwidthArtifact: artifact,
		FieldPosition:          pos,
	} {
		if err := fit.SetScalars(name, vals); err != nil {
			return nil, err
		}
	}
	return fit, nil
}

// Fit implements the CircleFitter interface by refitting the detected
// Lorentzian and scoring its residuals.
func (s *Simulated) Fit(ds *dataset.Dataset, field string) (map[string]Resonance, map[string]*S21Model, error) {
	grid, ok := ds.Grid(field)
	if !ok {
		return nil, nil, fmt.Errorf("field %q not in dataset", field)
	}
	resonances := make(map[string]Resonance, ds.NumQubits())
	models := make(map[string]*S21Model, ds.NumQubits())
	x := ds.Axis()
	for i, q := range ds.Qubits() {
		row := grid[i]
		tr := s.analyze(x, row)
		model := make([]float64, len(row))
		w := tr.fwhm
		if w <= 0 {
			w = (x[len(x)-1] - x[0]) / 10
		}
		for j, f := range x {
			u := 2 * (f - tr.center) / w
			model[j] = tr.baseline - tr.prominence/(1+u*u)
		}
		nrmse, r2 := residualScores(row, model)

		freq := tr.center
		if full, ok := ds.Row("full_freq", q); ok {
			freq = tr.center + full[0] - x[0]
		}
		resonances[q] = Resonance{Frequency: freq, FWHM: tr.fwhm}
		models[q] = &S21Model{
			QualityMetrics: map[string]float64{
				KeyNRMSE:    nrmse,
				KeyRSquared: r2,
			},
			Frequency: freq,
			FWHM:      tr.fwhm,
			Baseline:  tr.baseline,
			Depth:     tr.prominence,
		}
	}
	return resonances, models, nil
}

type trace struct {
	baseline   float64
	prominence float64
	center     float64
	fwhm       float64
	snr        float64
	asymmetry  float64
	skewness   float64
	numPeaks   int
	artifact   bool
}

func (s *Simulated) analyze(x, v []float64) trace {
	n := len(v)
	baseline := median(v)
	minIdx := 0
	for i := range v {
		if v[i] < v[minIdx] {
			minIdx = i
		}
	}
	prom := baseline - v[minIdx]
	tr := trace{
		baseline:   baseline,
		prominence: prom,
		center:     x[n/2],
		asymmetry:  1,
	}
	if prom <= 0 {
		return tr
	}

	noise := edgeNoise(v)
	if noise <= 0 {
		noise = prom * 1e-9
	}
	tr.snr = prom / noise

	half := baseline - prom/2
	left := crossLeft(x, v, minIdx, half)
	right := crossRight(x, v, minIdx, half)
	tr.fwhm = right - left
	tr.center = dipCenter(x, v, minIdx)

	lw := tr.center - left
	rw := right - tr.center
	switch {
	case lw <= 0 || rw <= 0:
		tr.asymmetry = 1e3
	default:
		tr.asymmetry = lw / rw
	}

	weights := make([]float64, n)
	var wsum float64
	for i := range v {
		if d := baseline - v[i]; d > 0 {
			weights[i] = d
			wsum += d
		}
	}
	if wsum > 0 {
		tr.skewness = stat.Skew(x, weights)
	}

	tr.numPeaks = countDips(v, half)

	margin := int(s.edgeFraction * float64(n))
	if margin < 1 {
		margin = 1
	}
	tr.artifact = minIdx < margin || minIdx >= n-margin
	return tr
}

// edgeNoise estimates the noise floor from the outer tenths of the sweep,
// assumed to sit off resonance.
func edgeNoise(v []float64) float64 {
	n := len(v)
	k := n / 10
	if k < 2 {
		k = 2
	}
	if 2*k > n {
		k = n / 2
	}
	edges := make([]float64, 0, 2*k)
	edges = append(edges, v[:k]...)
	edges = append(edges, v[n-k:]...)
	return stat.StdDev(edges, nil)
}

func crossLeft(x, v []float64, from int, level float64) float64 {
	for i := from; i > 0; i-- {
		if v[i-1] >= level {
			return interp(x[i-1], x[i], v[i-1], v[i], level)
		}
	}
	return x[0]
}

func crossRight(x, v []float64, from int, level float64) float64 {
	for i := from; i < len(v)-1; i++ {
		if v[i+1] >= level {
			return interp(x[i], x[i+1], v[i], v[i+1], level)
		}
	}
	return x[len(x)-1]
}

func interp(x0, x1, v0, v1, level float64) float64 {
	if v1 == v0 {
		return x1
	}
	return x0 + (x1-x0)*(v0-level)/(v0-v1)
}

// dipCenter refines the dip position with a parabolic fit through the minimum
// and its neighbors.
func dipCenter(x, v []float64, minIdx int) float64 {
	if minIdx == 0 || minIdx == len(v)-1 {
		return x[minIdx]
	}
	a, b, c := v[minIdx-1], v[minIdx], v[minIdx+1]
	den := a - 2*b + c
	if den <= 0 {
		return x[minIdx]
	}
	step := (x[minIdx+1] - x[minIdx-1]) / 2
	return x[minIdx] + step*(a-c)/(2*den)
}

// countDips counts maximal runs of at least two consecutive samples below
// level.
func countDips(v []float64, level float64) int {
	count, run := 0, 0
	for _, s := range v {
		if s < level {
			run++
			if run == 2 {
				count++
			}
		} else {
			run = 0
		}
	}
	return count
}

func median(v []float64) float64 {
	c := append([]float64(nil), v...)
	sort.Float64s(c)
	n := len(c)
	if n%2 == 1 {
		return c[n/2]
	}
	return (c[n/2-1] + c[n/2]) / 2
}

func residualScores(v, model []float64) (nrmse, r2 float64) {
	mean := stat.Mean(v, nil)
	lo, hi := v[0], v[0]
	var ssRes, ssTot float64
	for i := range v {
		d := v[i] - model[i]
		ssRes += d * d
		m := v[i] - mean
		ssTot += m * m
		if v[i] < lo {
			lo = v[i]
		}
		if v[i] > hi {
			hi = v[i]
		}
	}
	if hi > lo {
		nrmse = math.Sqrt(ssRes/float64(len(v))) / (hi - lo)
	}
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return nrmse, r2
}

// A TraceSpec describes one synthetic resonator trace in raw I/Q units.
type TraceSpec struct {
	// Center is the dip position on the sweep axis, in Hz.
	Center float64

	// FWHM is the dip linewidth in Hz.
	FWHM float64

	// Depth is the fractional dip depth, in (0, 1].
	Depth float64

	// Noise is the gaussian noise standard deviation relative to the
	// off-resonance amplitude.
	Noise float64

	// PhaseSlope is the linear phase slope across the sweep, in rad/Hz,
	// modeling cable delay.
	PhaseSlope float64

	// ExtraDips places additional dips of the same width and depth at the
	// given sweep positions.
	ExtraDips []float64
}

// Synthesize returns a raw measurement dataset with I and Q grids over the
// given qubits and detuning axis, one trace per qubit per spec. The same seed
// always produces the same dataset.
func Synthesize(qubits []string, detuning []float64, specs []TraceSpec, seed int64) (*dataset.Dataset, error) {
	if len(specs) != len(qubits) {
		return nil, fmt.Errorf("got %d trace specs for %d qubits", len(specs), len(qubits))
	}
	ds, err := dataset.New(qubits, "detuning", detuning)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	iGrid := make([][]float64, len(qubits))
	qGrid := make([][]float64, len(qubits))
	for qi, spec := range specs {
		iRow := make([]float64, len(detuning))
		qRow := make([]float64, len(detuning))
		for j, f := range detuning {
			amp := 1 - spec.Depth*lorentzian(f, spec.Center, spec.FWHM)
			for _, c := range spec.ExtraDips {
				amp -= spec.Depth * lorentzian(f, c, spec.FWHM)
			}
			amp += spec.Noise * rng.NormFloat64()
			phase := spec.PhaseSlope*f - spec.Depth*math.Atan(2*(f-spec.Center)/spec.FWHM)
			iRow[j] = amp * math.Cos(phase)
			qRow[j] = amp * math.Sin(phase)
		}
		iGrid[qi] = iRow
		qGrid[qi] = qRow
	}
	if err := ds.SetGrid("I", iGrid); err != nil {
		return nil, err
	}
	if err := ds.SetGrid("Q", qGrid); err != nil {
		return nil, err
	}
	return ds, nil
}

func lorentzian(f, center, fwhm float64) float64 {
	u := 2 * (f - center) / fwhm
	return 1 / (1 + u*u)
}

// DetuningAxis returns n evenly spaced detuning samples spanning span Hz,
// centered on zero.
func DetuningAxis(span float64, n int) []float64 {
	axis := make([]float64, n)
	for i := range axis {
		axis[i] = -span/2 + span*float64(i)/float64(n-1)
	}
	return axis
}
