package calconf

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const validYAML = `
qubits:
  - name: q0
    resonator:
      lo_frequency: 7.0e+09
      intermediate_frequency: 250.0e+06
      readout_length: 2000
  - name: q1
    resonator:
      lo_frequency: 7.0e+09
      intermediate_frequency: -120.0e+06
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := c.Names(); !reflect.DeepEqual(got, []string{"q0", "q1"}) {
		t.Errorf("Names() = %v, want [q0 q1]", got)
	}

	q0, ok := c.Qubit("q0")
	if !ok {
		t.Fatal("missing q0")
	}
	if got, want := q0.Resonator.RFFrequency(), 7.25e9; math.Abs(got-want) > 1 {
		t.Errorf("q0 RF = %v, want %v", got, want)
	}
	if q0.Resonator.ReadoutLength != 2000 {
		t.Errorf("q0 readout length = %v, want 2000", q0.Resonator.ReadoutLength)
	}

	// Negative IFs are legitimate lower-sideband wiring.
	q1, _ := c.Qubit("q1")
	if got, want := q1.Resonator.RFFrequency(), 6.88e9; math.Abs(got-want) > 1 {
		t.Errorf("q1 RF = %v, want %v", got, want)
	}
	if q1.Resonator.ReadoutLength != DefaultReadoutLength {
		t.Errorf("q1 readout length = %v, want default %v", q1.Resonator.ReadoutLength, DefaultReadoutLength)
	}

	if _, ok := c.Qubit("q9"); ok {
		t.Error("Qubit(q9): expected !ok")
	}
}

func TestParseRejects(t *testing.T) {
	tcs := []struct {
		name string
		yaml string
	}{
		{"not yaml", ":\tnope"},
		{"no qubits", "qubits: []"},
		{"unnamed qubit", "qubits:\n  - resonator: {lo_frequency: 7.0e+09}"},
		{
			"duplicate names",
			"qubits:\n  - name: q0\n  - name: q0",
		}, {
			"non-finite frequency",
			"qubits:\n  - name: q0\n    resonator: {lo_frequency: .nan}",
		}, {
			"negative readout length",
			"qubits:\n  - name: q0\n    resonator: {readout_length: -5}",
		},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quam_state.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Qubits) != 2 {
		t.Errorf("loaded %d qubits, want 2", len(c.Qubits))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
