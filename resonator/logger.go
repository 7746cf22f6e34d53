package resonator

import (
	"fmt"
	"log"
	"sort"
)

// AsFitParameters converts a loosely-typed result record into a
// FitParameters. It accepts FitParameters by value or pointer, or a
// map[string]any with "frequency", "fwhm" and "outcome" keys. Unlike metric
// extraction, this is display-only and lenient: missing fields default to an
// "unknown" outcome and zero numeric values.
func AsFitParameters(record any) FitParameters {
	switch r := record.(type) {
	case FitParameters:
		return r
	case *FitParameters:
		if r != nil {
			return *r
		}
	case map[string]any:
		p := FitParameters{Outcome: "unknown"}
		if v, ok := toFloat(r["frequency"]); ok {
			p.Frequency = v
		}
		if v, ok := toFloat(r["fwhm"]); ok {
			p.FWHM = v
		}
		if s, ok := r["outcome"].(string); ok {
			p.Outcome = s
		}
		return p
	}
	return FitParameters{Outcome: "unknown"}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// LogResults emits one human-readable summary line per qubit through emit. A
// nil order logs qubits in sorted-name order; a nil emit logs through the
// standard logger.
func LogResults(order []string, results map[string]FitParameters, emit func(string)) {
	if emit == nil {
		emit = func(s string) { log.Print(s) }
	}
	if order == nil {
		order = make([]string, 0, len(results))
		for q := range results {
			order = append(order, q)
		}
		sort.Strings(order)
	}
	for _, q := range order {
		r, ok := results[q]
		if !ok {
			continue
		}
		emit(FormatResult(q, r))
	}
}

// FormatResult renders the summary line for one qubit's fit parameters.
func FormatResult(qubit string, r FitParameters) string {
	status := fmt.Sprintf("Results for qubit %s: ", qubit)
	if r.Outcome == OutcomeSuccessful {
		status += " SUCCESS!\n"
	} else {
		status += fmt.Sprintf(" FAIL! Reason: %s\n", r.Outcome)
	}
	freq := fmt.Sprintf("\tResonator frequency: %.3f GHz | ", r.Frequency*1e-9)
	fwhm := fmt.Sprintf("FWHM: %.1f kHz | ", r.FWHM*1e-3)
	return status + freq + fwhm
}
