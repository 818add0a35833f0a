// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strings"

	"github.com/db47h/divsim"
)

// Wave records the levels of a set of wires on every simulation step.
type Wave struct {
	names  []string
	probes []*Probe
	rows   [][]bool
}

// NewWave returns a new Wave recording the named wires. Wire names must be
// wires of the circuit the Wave parts are mounted into.
func NewWave(wires ...string) *Wave {
	w := &Wave{names: wires, rows: make([][]bool, len(wires))}
	for _, n := range wires {
		w.probes = append(w.probes, NewProbe(n))
	}
	return w
}

// Parts returns the probe parts to mount into the circuit.
func (w *Wave) Parts() divsim.Parts {
	ps := make(divsim.Parts, 0, len(w.probes))
	for _, p := range w.probes {
		ps = append(ps, p.Part("in="+p.Name()))
	}
	return ps
}

// Record runs the circuit for n steps and records the wire levels after
// each step.
func (w *Wave) Record(c *divsim.Circuit, n int) {
	for ; n > 0; n-- {
		c.Step()
		w.Sample()
	}
}

// Sample records the current wire levels.
func (w *Wave) Sample() {
	for i, p := range w.probes {
		w.rows[i] = append(w.rows[i], p.Level())
	}
}

// Len returns the number of recorded samples.
func (w *Wave) Len() int {
	if len(w.rows) == 0 {
		return 0
	}
	return len(w.rows[0])
}

// Trace returns the recorded levels for the named wire, or nil if the wire is
// not recorded.
func (w *Wave) Trace(wire string) []bool {
	for i, n := range w.names {
		if n == wire {
			return w.rows[i]
		}
	}
	return nil
}

// Render renders the recorded waveforms, one line per wire, every sample
// drawn as scale characters.
func (w *Wave) Render(scale int) string {
	if scale < 1 {
		scale = 1
	}
	width := 0
	for _, n := range w.names {
		if len(n) > width {
			width = len(n)
		}
	}
	var b strings.Builder
	for i, n := range w.names {
		b.WriteString(n)
		b.WriteString(strings.Repeat(" ", width-len(n)+2))
		for _, v := range w.rows[i] {
			if v {
				b.WriteString(strings.Repeat("‾", scale))
			} else {
				b.WriteString(strings.Repeat("_", scale))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// String renders the recorded waveforms with one character per sample.
func (w *Wave) String() string { return w.Render(1) }
