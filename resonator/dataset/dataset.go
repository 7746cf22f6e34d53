// Package dataset provides a small labeled dataset for swept-frequency
// measurements: an ordered qubit axis, a shared sweep axis, and named fields
// aligned to one or both axes.
package dataset

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Attrs holds display metadata for a field, e.g. long_name and units.
type Attrs map[string]string

// A Dataset is a collection of named fields over a fixed (qubit, sample)
// grid. Grid fields hold one row of samples per qubit, scalar fields hold one
// float per qubit, and label fields hold one string per qubit. Fields added
// after construction must match the grid shape.
type Dataset struct {
	qubits   []string
	axisName string
	axis     []float64

	grids   map[string][][]float64
	scalars map[string][]float64
	labels  map[string][]string
	attrs   map[string]Attrs
}

// New returns a Dataset over the given qubits and sweep axis, or an error if
// the qubit names are empty or duplicated, or the axis has no samples.
func New(qubits []string, axisName string, axis []float64) (*Dataset, error) {
	if len(qubits) == 0 {
		return nil, fmt.Errorf("dataset needs at least one qubit")
	}
	if len(axis) == 0 {
		return nil, fmt.Errorf("dataset needs at least one sweep sample")
	}
	if axisName == "" {
		return nil, fmt.Errorf("dataset needs a sweep axis name")
	}
	seen := make(map[string]bool, len(qubits))
	for _, q := range qubits {
		if q == "" {
			return nil, fmt.Errorf("empty qubit name")
		}
		if seen[q] {
			return nil, fmt.Errorf("duplicate qubit name %q", q)
		}
		seen[q] = true
	}
	return &Dataset{
		qubits:   append([]string(nil), qubits...),
		axisName: axisName,
		axis:     append([]float64(nil), axis...),
		grids:    make(map[string][][]float64),
		scalars:  make(map[string][]float64),
		labels:   make(map[string][]string),
		attrs:    make(map[string]Attrs),
	}, nil
}

// Qubits returns the qubit names in dataset order.
func (d *Dataset) Qubits() []string {
	return append([]string(nil), d.qubits...)
}

// NumQubits returns the length of the qubit axis.
func (d *Dataset) NumQubits() int {
	return len(d.qubits)
}

// Samples returns the length of the sweep axis.
func (d *Dataset) Samples() int {
	return len(d.axis)
}

// AxisName returns the name of the sweep axis.
func (d *Dataset) AxisName() string {
	return d.axisName
}

// Axis returns a view of the sweep axis values. Modifying the returned slice
// modifies the dataset.
func (d *Dataset) Axis() []float64 {
	return d.axis
}

// QubitIndex returns the position of the named qubit on the qubit axis.
func (d *Dataset) QubitIndex(qubit string) (int, bool) {
	for i, q := range d.qubits {
		if q == qubit {
			return i, true
		}
	}
	return 0, false
}

// SetGrid attaches a (qubit × sample) field. The row count must match the
// qubit axis and every row must match the sweep axis.
func (d *Dataset) SetGrid(name string, rows [][]float64) error {
	if len(rows) != len(d.qubits) {
		return fmt.Errorf("field %q: got %d rows, want %d", name, len(rows), len(d.qubits))
	}
	for i, row := range rows {
		if len(row) != len(d.axis) {
			return fmt.Errorf("field %q, qubit %s: got %d samples, want %d", name, d.qubits[i], len(row), len(d.axis))
		}
	}
	d.grids[name] = rows
	return nil
}

// Grid returns the named (qubit × sample) field as a view.
func (d *Dataset) Grid(name string) ([][]float64, bool) {
	g, ok := d.grids[name]
	return g, ok
}

// Row returns one qubit's row of the named grid field as a view.
func (d *Dataset) Row(name, qubit string) ([]float64, bool) {
	g, ok := d.grids[name]
	if !ok {
		return nil, false
	}
	i, ok := d.QubitIndex(qubit)
	if !ok {
		return nil, false
	}
	return g[i], true
}

// SetScalars attaches a per-qubit scalar field, one value per qubit in
// dataset order.
func (d *Dataset) SetScalars(name string, vals []float64) error {
	if len(vals) != len(d.qubits) {
		return fmt.Errorf("field %q: got %d values, want %d", name, len(vals), len(d.qubits))
	}
	d.scalars[name] = vals
	return nil
}

// Scalar returns the named per-qubit scalar for one qubit.
func (d *Dataset) Scalar(name, qubit string) (float64, bool) {
	vals, ok := d.scalars[name]
	if !ok {
		return 0, false
	}
	i, ok := d.QubitIndex(qubit)
	if !ok {
		return 0, false
	}
	return vals[i], true
}

// SetLabels attaches a per-qubit string field, one value per qubit in dataset
// order.
func (d *Dataset) SetLabels(name string, vals []string) error {
	if len(vals) != len(d.qubits) {
		return fmt.Errorf("field %q: got %d values, want %d", name, len(vals), len(d.qubits))
	}
	d.labels[name] = vals
	return nil
}

// Labels returns the named per-qubit string field as a view.
func (d *Dataset) Labels(name string) ([]string, bool) {
	l, ok := d.labels[name]
	return l, ok
}

// SetAttrs attaches display metadata to the named field.
func (d *Dataset) SetAttrs(name string, a Attrs) {
	d.attrs[name] = a
}

// FieldAttrs returns the display metadata for the named field, or nil.
func (d *Dataset) FieldAttrs(name string) Attrs {
	return d.attrs[name]
}

// Span returns max-minus-min over the first of the named candidates that
// resolves: a candidate matching the sweep axis name uses the axis values, a
// candidate naming a grid field uses all of that field's values. Returns 0 if
// no candidate resolves.
func (d *Dataset) Span(candidates ...string) float64 {
	for _, name := range candidates {
		if name == d.axisName {
			return floats.Max(d.axis) - floats.Min(d.axis)
		}
		if g, ok := d.grids[name]; ok {
			lo, hi := g[0][0], g[0][0]
			for _, row := range g {
				if m := floats.Min(row); m < lo {
					lo = m
				}
				if m := floats.Max(row); m > hi {
					hi = m
				}
			}
			return hi - lo
		}
	}
	return 0
}

// Copy returns a shallow copy: field maps are fresh, so adding fields to the
// copy leaves the original untouched, but field contents share backing
// arrays with the original.
func (d *Dataset) Copy() *Dataset {
	c := &Dataset{
		qubits:   d.qubits,
		axisName: d.axisName,
		axis:     d.axis,
		grids:    make(map[string][][]float64, len(d.grids)),
		scalars:  make(map[string][]float64, len(d.scalars)),
		labels:   make(map[string][]string, len(d.labels)),
		attrs:    make(map[string]Attrs, len(d.attrs)),
	}
	for k, v := range d.grids {
		c.grids[k] = v
	}
	for k, v := range d.scalars {
		c.scalars[k] = v
	}
	for k, v := range d.labels {
		c.labels[k] = v
	}
	for k, v := range d.attrs {
		c.attrs[k] = v
	}
	return c
}
