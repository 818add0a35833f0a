// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides the basic parts the divider is built from: logic
// gates, flip-flops, and parts connecting a circuit to Go code.
package hwlib

import (
	"github.com/db47h/divsim"
)

const (
	pA   = "a"
	pB   = "b"
	pIn  = "in"
	pOut = "out"
)

// unary returns the PartSpec of a single input gate out = fn(in).
func unary(name string, fn func(bool) bool) *divsim.PartSpec {
	return &divsim.PartSpec{
		Name:    name,
		Inputs:  []string{pIn},
		Outputs: []string{pOut},
		Mount: func(s *divsim.Socket) []divsim.Component {
			in, out := s.Pin(pIn), s.Pin(pOut)
			return []divsim.Component{func(c *divsim.Circuit) {
				c.Set(out, fn(c.Get(in)))
			}}
		},
	}
}

// binary returns the PartSpec of a two input gate out = fn(a, b).
func binary(name string, fn func(a, b bool) bool) *divsim.PartSpec {
	return &divsim.PartSpec{
		Name:    name,
		Inputs:  []string{pA, pB},
		Outputs: []string{pOut},
		Mount: func(s *divsim.Socket) []divsim.Component {
			a, b, out := s.Pin(pA), s.Pin(pB), s.Pin(pOut)
			return []divsim.Component{func(c *divsim.Circuit) {
				c.Set(out, fn(c.Get(a), c.Get(b)))
			}}
		},
	}
}

var (
	notSpec  = unary("NOT", func(in bool) bool { return !in })
	andSpec  = binary("AND", func(a, b bool) bool { return a && b })
	nandSpec = binary("NAND", func(a, b bool) bool { return !(a && b) })
	orSpec   = binary("OR", func(a, b bool) bool { return a || b })
	norSpec  = binary("NOR", func(a, b bool) bool { return !(a || b) })
)

// Not returns an inverter: out = !in.
func Not(w string) divsim.Part { return notSpec.NewPart(w) }

// And returns an AND gate: out = a && b.
func And(w string) divsim.Part { return andSpec.NewPart(w) }

// Nand returns a NAND gate: out = !(a && b).
func Nand(w string) divsim.Part { return nandSpec.NewPart(w) }

// Or returns an OR gate: out = a || b. The divider merges its two counter
// outputs with one.
func Or(w string) divsim.Part { return orSpec.NewPart(w) }

// Nor returns a NOR gate: out = !(a || b).
func Nor(w string) divsim.Part { return norSpec.NewPart(w) }
