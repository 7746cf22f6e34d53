// sweepbench.go runs the resonator-spectroscopy analysis pipeline for each
// entry in the cartesian product of a collection of simulated sweep
// parameters, e.g. noise level and dip linewidth, and outputs a CSV of
// classification results for each combination.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/template"

	flag "github.com/spf13/pflag"

	"github.com/Quantum-Elements/qua-libs/calconf"
	"github.com/Quantum-Elements/qua-libs/resonator"
	"github.com/Quantum-Elements/qua-libs/resonator/fitter"
)

var (
	qubits  = flag.IntSlice("qubits", []int{4}, "The number of qubits per simulated experiment.")
	samples = flag.IntSlice("samples", []int{401}, "The number of sweep samples per qubit.")
	spanMHz = flag.Float64Slice("spanMHz", []float64{100}, "The swept detuning span, in MHz.")
	widthKHz = flag.Float64Slice("widthKHz", []float64{250},
		"The simulated resonance linewidth (FWHM), in kHz.")
	depth = flag.Float64Slice("depth", []float64{0.6}, "The fractional dip depth in (0, 1].")
	noise = flag.Float64Slice("noise", []float64{0.01},
		"The gaussian noise standard deviation relative to the off-resonance amplitude.")
	dips = flag.IntSlice("dips", []int{1}, "The number of dips per trace.")
	edge = flag.BoolSlice("edge", []bool{false},
		"Whether to park the dip at the sweep edge, provoking the bandwidth-artifact flag.")
	seed    = flag.Int64("seed", 1234, "The simulation seed.")
	verbose = flag.Bool("verbose", false, "Whether to log per-qubit fit summaries to stderr.")
)

var (
	inputs  = []string{"qubits", "samples", "spanMHz", "widthKHz", "depth", "noise", "dips", "edge"}
	columns = []string{"Qubits", "Samples", "SpanMHz", "WidthKHz", "Depth", "Noise", "Dips", "Edge",
		"Successes", "Failures", "FirstOutcome"}
)

// An Experiment packages together the result of classifying a single
// parameterization for easy formatting.
type Experiment struct {
	// Fields corresponding to experiment parameters
	Qubits   int
	Samples  int
	SpanMHz  float64
	WidthKHz float64
	Depth    float64
	Noise    float64
	Dips     int
	Edge     bool

	// Fields corresponding to experiment results
	Successes    int
	Failures     int
	FirstOutcome string
}

func main() {
	flag.Parse()
	fmt.Println(header())
	tmpl := template.Must(template.New("line").Parse(lineTmpl()))
	var args [][]interface{}
	for _, inp := range inputs {
		args = append(args, lookupInput(inp))
	}
	applyCartesian(func(args []interface{}) {
		exp := &Experiment{
			Qubits:   args[inpIndex("qubits")].(int),
			Samples:  args[inpIndex("samples")].(int),
			SpanMHz:  args[inpIndex("spanMHz")].(float64),
			WidthKHz: args[inpIndex("widthKHz")].(float64),
			Depth:    args[inpIndex("depth")].(float64),
			Noise:    args[inpIndex("noise")].(float64),
			Dips:     args[inpIndex("dips")].(int),
			Edge:     args[inpIndex("edge")].(bool),
		}
		if err := bench(exp); err != nil {
			log.Printf("Benching %+v: %v", exp, err)
			return
		}
		if err := tmpl.Execute(os.Stdout, exp); err != nil {
			log.Fatalf("BUG: could not fill in line template: %v", err)
		}
	}, args)
}

func inpIndex(v string) int {
	for i, inp := range inputs {
		if inp == v {
			return i
		}
	}
	return -1
}

func bench(exp *Experiment) error {
	span := exp.SpanMHz * 1e6
	width := exp.WidthKHz * 1e3
	axis := fitter.DetuningAxis(span, exp.Samples)

	names := make([]string, exp.Qubits)
	cfgQubits := make([]calconf.Qubit, exp.Qubits)
	specs := make([]fitter.TraceSpec, exp.Qubits)
	for i := range names {
		names[i] = fmt.Sprintf("q%d", i)
		cfgQubits[i] = calconf.Qubit{
			Name: names[i],
			Resonator: calconf.Resonator{
				LOFrequency:           7.0e9,
				IntermediateFrequency: float64(i) * 50e6,
				ReadoutLength:         calconf.DefaultReadoutLength,
			},
		}
		center := (float64(i) - float64(exp.Qubits)/2) * span / 50
		if exp.Edge {
			center = -span / 2 * 0.98
		}
		spec := fitter.TraceSpec{
			Center:     center,
			FWHM:       width,
			Depth:      exp.Depth,
			Noise:      exp.Noise,
			PhaseSlope: 2e-8,
		}
		for d := 1; d < exp.Dips; d++ {
			spec.ExtraDips = append(spec.ExtraDips, center+float64(d)*span/4)
		}
		specs[i] = spec
	}

	ds, err := fitter.Synthesize(names, axis, specs, *seed)
	if err != nil {
		return err
	}
	sim, err := fitter.NewSimulated(fitter.SimulatedOpts{})
	if err != nil {
		return err
	}
	pipeline, err := resonator.NewPipeline(resonator.PipelineOpts{
		Detector:  sim,
		CircleFit: sim,
	})
	if err != nil {
		return err
	}
	fit, results, err := pipeline.Run(ds, cfgQubits)
	if err != nil {
		return err
	}
	if *verbose {
		resonator.LogResults(names, results, nil)
	}

	outcomes, _ := fit.Labels("outcome")
	for _, o := range outcomes {
		if o == resonator.OutcomeSuccessful {
			exp.Successes++
		} else {
			exp.Failures++
		}
	}
	// Outcome strings contain commas; quote them to keep the CSV parsable.
	exp.FirstOutcome = fmt.Sprintf("%q", outcomes[0])
	return nil
}

func header() string {
	return strings.Join(columns, ", ")
}

func lineTmpl() string {
	var els []string
	for _, c := range columns {
		els = append(els, "{{."+c+"}}")
	}
	return strings.Join(els, ", ") + "\n"
}

func lookupInput(name string) []interface{} {
	var r []interface{}
	if v, err := flag.CommandLine.GetIntSlice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else if v, err := flag.CommandLine.GetFloat64Slice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else if v, err := flag.CommandLine.GetBoolSlice(name); err == nil {
		for _, val := range v {
			r = append(r, val)
		}
	} else {
		log.Fatalf("Unknown type for input %s", name)
	}
	return r
}

func applyCartesian(f func([]interface{}), args [][]interface{}) {
	for i := range args {
		if len(args[i]) == 1 {
			continue
		}
		l := make([][]interface{}, len(args))
		r := make([][]interface{}, len(args))
		copy(l, args)
		copy(r, args)
		l[i] = args[i][:1]
		r[i] = args[i][1:]
		applyCartesian(f, l)
		applyCartesian(f, r)
		return
	}
	x := make([]interface{}, 0, len(args))
	for _, a := range args {
		x = append(x, a[0])
	}
	f(x)
}
