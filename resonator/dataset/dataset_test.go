package dataset

import (
	"math"
	"testing"
)

func newTestDataset(t *testing.T) *Dataset {
	t.Helper()
	ds, err := New([]string{"q0", "q1"}, "detuning", []float64{-1e6, 0, 1e6})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return ds
}

func TestNewValidation(t *testing.T) {
	tcs := []struct {
		name     string
		qubits   []string
		axisName string
		axis     []float64
	}{
		{"no qubits", nil, "detuning", []float64{0}},
		{"empty qubit name", []string{""}, "detuning", []float64{0}},
		{"duplicate qubit", []string{"q0", "q0"}, "detuning", []float64{0}},
		{"no samples", []string{"q0"}, "detuning", nil},
		{"no axis name", []string{"q0"}, "", []float64{0}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.qubits, tc.axisName, tc.axis); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGridShapeChecks(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.SetGrid("I", [][]float64{{1, 2, 3}}); err == nil {
		t.Error("wrong row count: expected error")
	}
	if err := ds.SetGrid("I", [][]float64{{1, 2}, {3, 4}}); err == nil {
		t.Error("wrong sample count: expected error")
	}
	if err := ds.SetGrid("I", [][]float64{{1, 2, 3}, {4, 5, 6}}); err != nil {
		t.Errorf("valid grid: %v", err)
	}
	row, ok := ds.Row("I", "q1")
	if !ok || row[2] != 6 {
		t.Errorf("Row(I, q1) = %v, %v; want [4 5 6], true", row, ok)
	}
	if _, ok := ds.Row("I", "q7"); ok {
		t.Error("Row for unknown qubit: expected !ok")
	}
	if _, ok := ds.Row("Q", "q0"); ok {
		t.Error("Row for unknown field: expected !ok")
	}
}

func TestScalarsAndLabels(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.SetScalars("snr", []float64{3}); err == nil {
		t.Error("short scalars: expected error")
	}
	if err := ds.SetScalars("snr", []float64{3, 9}); err != nil {
		t.Fatalf("SetScalars: %v", err)
	}
	if v, ok := ds.Scalar("snr", "q1"); !ok || v != 9 {
		t.Errorf("Scalar(snr, q1) = %v, %v; want 9, true", v, ok)
	}
	if _, ok := ds.Scalar("snr", "q7"); ok {
		t.Error("Scalar for unknown qubit: expected !ok")
	}

	if err := ds.SetLabels("outcome", []string{"a"}); err == nil {
		t.Error("short labels: expected error")
	}
	if err := ds.SetLabels("outcome", []string{"a", "b"}); err != nil {
		t.Fatalf("SetLabels: %v", err)
	}
	if l, ok := ds.Labels("outcome"); !ok || l[1] != "b" {
		t.Errorf("Labels(outcome) = %v, %v", l, ok)
	}
}

func TestSpan(t *testing.T) {
	ds := newTestDataset(t)
	if got := ds.Span("detuning", "full_freq"); math.Abs(got-2e6) > 1 {
		t.Errorf("axis span = %v, want 2e6", got)
	}

	full := [][]float64{{7e9, 7.001e9, 7.002e9}, {8e9, 8.001e9, 8.002e9}}
	if err := ds.SetGrid("full_freq", full); err != nil {
		t.Fatalf("SetGrid: %v", err)
	}
	// Grid fallback spans all qubits' values.
	if got := ds.Span("missing", "full_freq"); math.Abs(got-1.002e9) > 1 {
		t.Errorf("grid span = %v, want 1.002e9", got)
	}

	if got := ds.Span("missing", "also_missing"); got != 0 {
		t.Errorf("unresolved span = %v, want 0", got)
	}
}

func TestCopyIsolation(t *testing.T) {
	ds := newTestDataset(t)
	if err := ds.SetScalars("snr", []float64{1, 2}); err != nil {
		t.Fatalf("SetScalars: %v", err)
	}

	c := ds.Copy()
	if err := c.SetScalars("fwhm", []float64{5, 6}); err != nil {
		t.Fatalf("SetScalars on copy: %v", err)
	}
	if _, ok := ds.Scalar("fwhm", "q0"); ok {
		t.Error("field added to copy leaked into original")
	}
	if v, ok := c.Scalar("snr", "q1"); !ok || v != 2 {
		t.Errorf("copy lost existing field: %v, %v", v, ok)
	}
}

func TestQubitOrder(t *testing.T) {
	ds := newTestDataset(t)
	got := ds.Qubits()
	if len(got) != 2 || got[0] != "q0" || got[1] != "q1" {
		t.Errorf("Qubits() = %v, want [q0 q1]", got)
	}
	if i, ok := ds.QubitIndex("q1"); !ok || i != 1 {
		t.Errorf("QubitIndex(q1) = %d, %v", i, ok)
	}
	if _, ok := ds.QubitIndex("q9"); ok {
		t.Error("QubitIndex for unknown qubit: expected !ok")
	}
}
