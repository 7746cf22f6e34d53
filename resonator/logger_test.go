package resonator

import (
	"reflect"
	"testing"
)

func TestFormatResult(t *testing.T) {
	tcs := []struct {
		name  string
		qubit string
		r     FitParameters
		want  string
	}{
		{
			name:  "success",
			qubit: "q0",
			r:     FitParameters{Frequency: 7.25e9, FWHM: 1.5e5, Outcome: OutcomeSuccessful},
			want:  "Results for qubit q0:  SUCCESS!\n\tResonator frequency: 7.250 GHz | FWHM: 150.0 kHz | ",
		}, {
			name:  "failure",
			qubit: "q3",
			r:     FitParameters{Frequency: 6.8041e9, FWHM: 2.34e6, Outcome: OutcomeSeveralPeaks},
			want: "Results for qubit q3:  FAIL! Reason: Several peaks were detected\n" +
				"\tResonator frequency: 6.804 GHz | FWHM: 2340.0 kHz | ",
		}, {
			name:  "zero record",
			qubit: "q9",
			r:     FitParameters{Outcome: "unknown"},
			want:  "Results for qubit q9:  FAIL! Reason: unknown\n\tResonator frequency: 0.000 GHz | FWHM: 0.0 kHz | ",
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatResult(tc.qubit, tc.r); got != tc.want {
				t.Errorf("FormatResult() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLogResultsOrder(t *testing.T) {
	results := map[string]FitParameters{
		"qB": {Frequency: 7e9, Outcome: OutcomeSuccessful},
		"qA": {Frequency: 6e9, Outcome: OutcomeLowSNR},
		"qC": {Frequency: 8e9, Outcome: OutcomeSuccessful},
	}

	var got []string
	emit := func(s string) { got = append(got, s) }

	LogResults([]string{"qC", "qA", "qB"}, results, emit)
	want := []string{
		FormatResult("qC", results["qC"]),
		FormatResult("qA", results["qA"]),
		FormatResult("qB", results["qB"]),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("explicit order: got %v, want %v", got, want)
	}

	got = nil
	LogResults(nil, results, emit)
	want = []string{
		FormatResult("qA", results["qA"]),
		FormatResult("qB", results["qB"]),
		FormatResult("qC", results["qC"]),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("nil order: got %v, want %v", got, want)
	}

	// Unknown qubits in the order are skipped, not fabricated.
	got = nil
	LogResults([]string{"qA", "qZ"}, results, emit)
	if len(got) != 1 {
		t.Errorf("order with unknown qubit: emitted %d lines, want 1", len(got))
	}
}

func TestAsFitParameters(t *testing.T) {
	tcs := []struct {
		name   string
		record any
		want   FitParameters
	}{
		{
			name:   "struct value",
			record: FitParameters{Frequency: 7e9, FWHM: 1e5, Outcome: OutcomeSuccessful},
			want:   FitParameters{Frequency: 7e9, FWHM: 1e5, Outcome: OutcomeSuccessful},
		}, {
			name:   "struct pointer",
			record: &FitParameters{Frequency: 7e9, Outcome: OutcomeLowSNR},
			want:   FitParameters{Frequency: 7e9, Outcome: OutcomeLowSNR},
		}, {
			name: "map record",
			record: map[string]any{
				"frequency": 6.5e9,
				"fwhm":      2e5,
				"outcome":   OutcomeSuccessful,
			},
			want: FitParameters{Frequency: 6.5e9, FWHM: 2e5, Outcome: OutcomeSuccessful},
		}, {
			name:   "map with missing fields",
			record: map[string]any{"frequency": 6.5e9},
			want:   FitParameters{Frequency: 6.5e9, Outcome: "unknown"},
		}, {
			name:   "map with integer frequency",
			record: map[string]any{"frequency": 7, "outcome": OutcomeSuccessful},
			want:   FitParameters{Frequency: 7, Outcome: OutcomeSuccessful},
		}, {
			name:   "nil pointer",
			record: (*FitParameters)(nil),
			want:   FitParameters{Outcome: "unknown"},
		}, {
			name:   "unrelated type",
			record: 42,
			want:   FitParameters{Outcome: "unknown"},
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if got := AsFitParameters(tc.record); got != tc.want {
				t.Errorf("AsFitParameters() = %+v, want %+v", got, tc.want)
			}
		})
	}
}
