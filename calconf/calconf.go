// Package calconf loads the slice of the experiment configuration that
// resonator-spectroscopy analysis consumes: per-qubit readout resonator
// frequencies and readout timing.
package calconf

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultReadoutLength is the readout pulse length assumed when a qubit's
// configuration omits it, in ns.
var DefaultReadoutLength = 1024.0

// A Resonator describes one qubit's readout resonator as wired into the
// control processor: an upconversion LO plus an intermediate frequency.
type Resonator struct {
	// LOFrequency is the local oscillator frequency in Hz.
	LOFrequency float64 `yaml:"lo_frequency"`

	// IntermediateFrequency is the IF applied on top of the LO, in Hz. May
	// be negative.
	IntermediateFrequency float64 `yaml:"intermediate_frequency"`

	// ReadoutLength is the readout pulse length in ns. Defaults to
	// DefaultReadoutLength.
	ReadoutLength float64 `yaml:"readout_length"`
}

// RFFrequency returns the absolute RF frequency of the resonator.
func (r Resonator) RFFrequency() float64 {
	return r.LOFrequency + r.IntermediateFrequency
}

// A Qubit names one qubit and its readout resonator.
type Qubit struct {
	Name      string    `yaml:"name"`
	Resonator Resonator `yaml:"resonator"`
}

// A Config holds the per-qubit experiment configuration records, in wiring
// order.
type Config struct {
	Qubits []Qubit `yaml:"qubits"`
}

// Parse decodes and validates a YAML experiment configuration.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding experiment configuration: %w", err)
	}
	if len(c.Qubits) == 0 {
		return nil, fmt.Errorf("experiment configuration lists no qubits")
	}
	seen := make(map[string]bool, len(c.Qubits))
	for i := range c.Qubits {
		q := &c.Qubits[i]
		if q.Name == "" {
			return nil, fmt.Errorf("qubit %d has no name", i)
		}
		if seen[q.Name] {
			return nil, fmt.Errorf("duplicate qubit %q", q.Name)
		}
		seen[q.Name] = true
		if !isFinite(q.Resonator.LOFrequency) || !isFinite(q.Resonator.IntermediateFrequency) {
			return nil, fmt.Errorf("qubit %q: resonator frequencies must be finite", q.Name)
		}
		if q.Resonator.ReadoutLength == 0 {
			q.Resonator.ReadoutLength = DefaultReadoutLength
		}
		if q.Resonator.ReadoutLength <= 0 || !isFinite(q.Resonator.ReadoutLength) {
			return nil, fmt.Errorf("qubit %q: readout length must be positive", q.Name)
		}
	}
	return &c, nil
}

// Load reads and parses the experiment configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading experiment configuration: %w", err)
	}
	return Parse(data)
}

// Qubit returns the named qubit's record.
func (c *Config) Qubit(name string) (Qubit, bool) {
	for _, q := range c.Qubits {
		if q.Name == name {
			return q, true
		}
	}
	return Qubit{}, false
}

// Names returns the qubit names in wiring order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Qubits))
	for i, q := range c.Qubits {
		names[i] = q.Name
	}
	return names
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
