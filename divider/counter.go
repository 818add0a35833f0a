// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package divider

import (
	"strconv"

	"github.com/db47h/divsim"
)

// State is the state of a Counter.
type State uint8

// Counter states.
const (
	S0 State = iota
	S1
	S2
)

func (s State) String() string {
	switch s {
	case S0, S1, S2:
		return "S" + strconv.Itoa(int(s))
	}
	return "State(" + strconv.Itoa(int(s)) + ")"
}

// Valid returns true if s is one of S0, S1 or S2.
func (s State) Valid() bool { return s <= S2 }

// A Counter is a modulo 3 counter advanced on a single clock edge. Its output
// is asserted when in state S2, that is for one out of three triggering
// edges.
type Counter struct {
	state   State
	trigger divsim.Edge
}

// NewCounter returns a new Counter triggered on edge e, in state S0.
func NewCounter(e divsim.Edge) *Counter {
	return &Counter{trigger: e}
}

// Trigger returns the clock edge the counter advances on.
func (c *Counter) Trigger() divsim.Edge { return c.trigger }

// State returns the current state.
func (c *Counter) State() State { return c.state }

// Output returns true iff the counter is in state S2.
func (c *Counter) Output() bool { return c.state == S2 }

// Advance moves the counter to its next state: S0 -> S1 -> S2 -> S0.
// A counter found in an invalid state is forced back to S0.
func (c *Counter) Advance() {
	switch c.state {
	case S0:
		c.state = S1
	case S1:
		c.state = S2
	case S2:
		c.state = S0
	default:
		c.state = S0
	}
}

// Reset sets the counter state to s.
func (c *Counter) Reset(s State) {
	c.state = s
}

// Part returns a PartSpec mounting c into a circuit. On every triggering edge
// of clk, the counter reloads init if rst is high, otherwise it advances.
//
//	Inputs: rst
//	Outputs: out
//	Function: out = state == S2
//
// The returned PartSpec must be mounted only once: the counter state is shared
// by all its instances.
func (c *Counter) Part(init State) *divsim.PartSpec {
	name := "CNT3R"
	if c.trigger == divsim.Falling {
		name = "CNT3F"
	}
	return &divsim.PartSpec{
		Name:    name,
		Inputs:  []string{pRst},
		Outputs: []string{pOut},
		Mount: func(s *divsim.Socket) []divsim.Component {
			rst, out := s.Pin(pRst), s.Pin(pOut)
			return []divsim.Component{
				func(cc *divsim.Circuit) {
					if cc.At(c.trigger) {
						if cc.Get(rst) {
							c.Reset(init)
						} else {
							c.Advance()
						}
					}
					cc.Set(out, c.Output())
				},
			}
		},
	}
}
