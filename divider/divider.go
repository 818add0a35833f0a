// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package divider implements a clock divider dividing its input clock
// frequency by 3 while keeping a 50% duty cycle.
//
// The divider is made of two modulo 3 counters, one advancing on the rising
// edge of the clock, the other on the falling edge. Each counter output is
// high for one out of three clock cycles. The falling edge counter is reset one
// state ahead of the rising edge one (S1 vs. S0), so that its output goes
// high half a clock cycle before the rising counter's output and ORing both
// outputs gives a signal that is high for 1.5 clock cycles out of 3:
//
//	clk   ‾‾__‾‾__‾‾__‾‾__‾‾__‾‾__
//	rise  ____‾‾‾‾________‾‾‾‾____
//	fall  __‾‾‾‾________‾‾‾‾______
//	out   __‾‾‾‾‾‾______‾‾‾‾‾‾____
package divider

import (
	"github.com/db47h/divsim"
	"github.com/db47h/divsim/hwlib"
)

// common pin names
const (
	pRst = "rst"
	pOut = "out"
)

// Core is a divide by 3 clock divider with a 50% duty cycle output.
type Core struct {
	rise *Counter
	fall *Counter
}

// NewCore returns a new divider in reset state.
func NewCore() *Core {
	d := &Core{
		rise: NewCounter(divsim.Rising),
		fall: NewCounter(divsim.Falling),
	}
	d.Reset()
	return d
}

// Reset resets the rising edge counter to S0 and the falling edge counter to
// S1. When the divider is mounted in a running circuit, Reset must be called
// while the clock is low so that the rising edge counter is the first one to
// advance.
func (d *Core) Reset() {
	d.rise.Reset(S0)
	d.fall.Reset(S1)
}

// Observe returns the current level of the divided output.
func (d *Core) Observe() bool {
	return d.rise.Output() || d.fall.Output()
}

// States returns the current states of the rising and falling edge counters.
func (d *Core) States() (rise, fall State) {
	return d.rise.State(), d.fall.State()
}

// Chip returns the divider as a chip.
//
//	Inputs: rst
//	Outputs: out
//	Function: out = clk / 3, 50% duty cycle. rst is active high.
//
// rst is synchronized on the falling edge of the clock before reaching the
// counters: the first edge seen by the counters after rst goes low is always a
// rising edge.
//
// The returned NewPartFn must be used only once since every instance would
// share the same counters.
func (d *Core) Chip() (divsim.NewPartFn, error) {
	return divsim.Chip("DIV3", pRst, pOut,
		hwlib.EdgeDFF(divsim.Falling)("in=rst, out=srst"),
		d.rise.Part(S0).NewPart("rst=srst, out=qr"),
		d.fall.Part(S1).NewPart("rst=srst, out=qf"),
		hwlib.Or("a=qr, b=qf, out=out"),
	)
}
