// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"sync/atomic"

	"github.com/db47h/divsim"
)

// Input creates a function based input.
//
//	Outputs: out
//	Function: out = f()
func Input(f func() bool) divsim.NewPartFn {
	p := &divsim.PartSpec{
		Name:    "Input",
		Inputs:  nil,
		Outputs: []string{pOut},
		Mount: func(s *divsim.Socket) []divsim.Component {
			pin := s.Pin(pOut)
			return []divsim.Component{
				func(c *divsim.Circuit) {
					c.Set(pin, f())
				},
			}
		},
	}
	return p.NewPart
}

// Output creates an output. The fn function is called with the named pin
// state on every circuit update.
//
//	Inputs: in
//	Function: f(in)
func Output(f func(bool)) divsim.NewPartFn {
	p := &divsim.PartSpec{
		Name:    "Output",
		Inputs:  []string{pIn},
		Outputs: nil,
		Mount: func(s *divsim.Socket) []divsim.Component {
			in := s.Pin(pIn)
			return []divsim.Component{
				func(c *divsim.Circuit) { f(c.Get(in)) },
			}
		},
	}
	return p.NewPart
}

// A Probe samples a wire on every circuit update. It is safe to read its level
// from another goroutine than the one stepping the circuit.
type Probe struct {
	name  string
	level atomic.Bool
}

// NewProbe returns a new probe with the given name.
func NewProbe(name string) *Probe {
	return &Probe{name: name}
}

// Name returns the probe name.
func (p *Probe) Name() string { return p.name }

// Level returns the wire level seen at the last circuit update.
func (p *Probe) Level() bool { return p.level.Load() }

// Part returns the probe as a part.
//
//	Inputs: in
func (p *Probe) Part(w string) divsim.Part {
	return Output(func(v bool) { p.level.Store(v) })(w)
}
