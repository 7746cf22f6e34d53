package resonator

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/Quantum-Elements/qua-libs/calconf"
	"github.com/Quantum-Elements/qua-libs/resonator/dataset"
	"github.com/Quantum-Elements/qua-libs/resonator/fitter"
)

// demodUnitsPerVolt is the raw-demodulation scale of the control processor:
// volts = raw * 4096 / readout_length.
const demodUnitsPerVolt = 4096.0

// A PipelineOpts packages together the arguments necessary to construct a new
// Pipeline. Detector and CircleFit have no defaults and must be non-nil.
type PipelineOpts struct {
	// Detector locates resonance dips in the amplitude sweep. Must be
	// non-nil.
	Detector fitter.Detector

	// CircleFit fits the S21 resonator model per qubit. Must be non-nil.
	CircleFit fitter.CircleFitter

	// Config holds the classification thresholds. Zero fields fall back to
	// the package defaults.
	Config Config

	// Workers bounds the number of goroutines classifying qubits
	// concurrently. Values below 2 keep the loop sequential.
	Workers int
}

// A Pipeline runs one resonator-spectroscopy analysis: preprocessing, fitting
// through the external collaborators, per-qubit metric extraction and
// classification, and assembly of the annotated result dataset.
type Pipeline struct {
	detector  fitter.Detector
	circleFit fitter.CircleFitter
	cfg       Config
	workers   int
}

// NewPipeline returns a new Pipeline configured in accordance with opts, or
// an error if the options are nonsensical.
func NewPipeline(opts PipelineOpts) (*Pipeline, error) {
	if opts.Detector == nil {
		return nil, errors.New("must provide Detector")
	}
	if opts.CircleFit == nil {
		return nil, errors.New("must provide CircleFit")
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("negative worker count %d", opts.Workers)
	}
	return &Pipeline{
		detector:  opts.Detector,
		circleFit: opts.CircleFit,
		cfg:       opts.Config.withDefaults(),
		workers:   opts.Workers,
	}, nil
}

// ProcessRaw derives the physical fields the fit stages consume from raw I/Q
// readings: voltages, amplitude, slope-removed phase, and each qubit's
// absolute RF frequency axis. The input dataset is not modified; the returned
// dataset shares its backing arrays for untouched fields.
func (p *Pipeline) ProcessRaw(ds *dataset.Dataset, qubits []calconf.Qubit) (*dataset.Dataset, error) {
	if err := checkQubitOrder(ds, qubits); err != nil {
		return nil, err
	}
	rawI, ok := ds.Grid("I")
	if !ok {
		return nil, fmt.Errorf("raw dataset has no I field")
	}
	rawQ, ok := ds.Grid("Q")
	if !ok {
		return nil, fmt.Errorf("raw dataset has no Q field")
	}

	out := ds.Copy()
	n := ds.NumQubits()
	samples := ds.Samples()
	axis := ds.Axis()

	vI := make([][]float64, n)
	vQ := make([][]float64, n)
	amp := make([][]float64, n)
	phase := make([][]float64, n)
	fullFreq := make([][]float64, n)
	for qi, q := range qubits {
		scale := demodUnitsPerVolt / q.Resonator.ReadoutLength
		vI[qi] = make([]float64, samples)
		vQ[qi] = make([]float64, samples)
		amp[qi] = make([]float64, samples)
		for j := 0; j < samples; j++ {
			vI[qi][j] = rawI[qi][j] * scale
			vQ[qi][j] = rawQ[qi][j] * scale
			amp[qi][j] = math.Hypot(vI[qi][j], vQ[qi][j])
		}
		phase[qi] = detrendedPhase(axis, vI[qi], vQ[qi])

		fullFreq[qi] = make([]float64, samples)
		rf := q.Resonator.RFFrequency()
		for j, det := range axis {
			fullFreq[qi][j] = det + rf
		}
	}

	for name, grid := range map[string][][]float64{
		"I": vI, "Q": vQ, "IQ_abs": amp, "phase": phase, "full_freq": fullFreq,
	} {
		if err := out.SetGrid(name, grid); err != nil {
			return nil, err
		}
	}
	out.SetAttrs("IQ_abs", dataset.Attrs{"long_name": "IQ amplitude", "units": "V"})
	out.SetAttrs("phase", dataset.Attrs{"long_name": "phase", "units": "rad"})
	out.SetAttrs("full_freq", dataset.Attrs{"long_name": "RF frequency", "units": "Hz"})
	return out, nil
}

// Fit runs the external fit collaborators over a processed dataset and
// classifies every qubit. It returns the annotated fit dataset, with
// res_freq, fwhm and outcome attached along the qubit axis in input order,
// and the per-qubit fit parameters. Collaborator errors propagate wrapped.
func (p *Pipeline) Fit(ds *dataset.Dataset) (*dataset.Dataset, map[string]FitParameters, error) {
	fit, err := p.detector.Detect(ds, "IQ_abs")
	if err != nil {
		return nil, nil, fmt.Errorf("peak detection: %w", err)
	}
	resonances, models, err := p.circleFit.Fit(ds, "IQ_abs")
	if err != nil {
		return nil, nil, fmt.Errorf("circle fit: %w", err)
	}

	qubits := ds.Qubits()
	resFreq := make([]float64, len(qubits))
	fwhm := make([]float64, len(qubits))
	for i, q := range qubits {
		res, ok := resonances[q]
		if !ok {
			return nil, nil, fmt.Errorf("circle fit returned no resonance for qubit %s", q)
		}
		resFreq[i] = res.Frequency
		fwhm[i] = res.FWHM
	}
	if err := fit.SetScalars("res_freq", resFreq); err != nil {
		return nil, nil, err
	}
	if err := fit.SetScalars("fwhm", fwhm); err != nil {
		return nil, nil, err
	}
	fit.SetAttrs("res_freq", dataset.Attrs{"long_name": "resonator frequency", "units": "Hz"})
	fit.SetAttrs("fwhm", dataset.Attrs{"long_name": "resonator fwhm", "units": "Hz"})

	outcomes, err := p.classifyAll(fit, models, qubits)
	if err != nil {
		return nil, nil, err
	}
	if err := fit.SetLabels("outcome", outcomes); err != nil {
		return nil, nil, err
	}
	fit.SetAttrs("outcome", dataset.Attrs{"long_name": "fit outcome", "units": ""})

	results := make(map[string]FitParameters, len(qubits))
	for i, q := range qubits {
		results[q] = FitParameters{
			Frequency: resFreq[i],
			FWHM:      fwhm[i],
			Outcome:   outcomes[i],
		}
	}
	return fit, results, nil
}

// Run analyzes a raw measurement dataset end to end: ProcessRaw followed by
// Fit.
func (p *Pipeline) Run(ds *dataset.Dataset, qubits []calconf.Qubit) (*dataset.Dataset, map[string]FitParameters, error) {
	processed, err := p.ProcessRaw(ds, qubits)
	if err != nil {
		return nil, nil, err
	}
	return p.Fit(processed)
}

// classifyAll extracts metrics and classifies every qubit, in input order.
// Qubits share no mutable state, so with Workers > 1 the loop fans out across
// goroutines; results land in per-index slots and need no further
// synchronization.
func (p *Pipeline) classifyAll(fit *dataset.Dataset, models map[string]*fitter.S21Model, qubits []string) ([]string, error) {
	outcomes := make([]string, len(qubits))
	errs := make([]error, len(qubits))
	work := func(i int) {
		m, err := ExtractMetrics(fit, models[qubits[i]], qubits[i])
		if err != nil {
			errs[i] = err
			return
		}
		outcomes[i] = Classify(m, p.cfg)
	}

	if p.workers > 1 {
		idx := make(chan int)
		var wg sync.WaitGroup
		for w := 0; w < p.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range idx {
					work(i)
				}
			}()
		}
		for i := range qubits {
			idx <- i
		}
		close(idx)
		wg.Wait()
	} else {
		for i := range qubits {
			work(i)
		}
	}

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return outcomes, nil
}

func checkQubitOrder(ds *dataset.Dataset, qubits []calconf.Qubit) error {
	names := ds.Qubits()
	if len(qubits) != len(names) {
		return fmt.Errorf("got %d qubit configs for %d dataset qubits", len(qubits), len(names))
	}
	for i, q := range qubits {
		if q.Name != names[i] {
			return fmt.Errorf("qubit config %d is %q, dataset has %q", i, q.Name, names[i])
		}
	}
	return nil
}

// detrendedPhase returns the unwrapped I/Q phase with its best-fit linear
// slope removed, so that cable delay does not tilt the resonance phase
// response.
func detrendedPhase(axis, i, q []float64) []float64 {
	phase := make([]float64, len(i))
	var offset float64
	for j := range i {
		p := math.Atan2(q[j], i[j]) + offset
		if j > 0 {
			for p-phase[j-1] > math.Pi {
				p -= 2 * math.Pi
				offset -= 2 * math.Pi
			}
			for p-phase[j-1] < -math.Pi {
				p += 2 * math.Pi
				offset += 2 * math.Pi
			}
		}
		phase[j] = p
	}
	alpha, beta := stat.LinearRegression(axis, phase, nil, false)
	for j, f := range axis {
		phase[j] -= alpha + beta*f
	}
	return phase
}
