// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/divsim"

// DFF returns a data flip flop clocked on the rising edge of clk.
//
//	Inputs: in
//	Outputs: out
//	Function: out(t) = in(t-1) // where t is the current clock cycle.
func DFF(w string) divsim.Part {
	return EdgeDFF(divsim.Rising)(w)
}

// EdgeDFF returns a NewPartFn for data flip flops clocked on the given edge.
//
//	Inputs: in
//	Outputs: out
//	Function: out = in, sampled on every triggering edge
func EdgeDFF(e divsim.Edge) divsim.NewPartFn {
	name := "DFF"
	if e == divsim.Falling {
		name = "NDFF"
	}
	return (&divsim.PartSpec{
		Name:    name,
		Inputs:  []string{pIn},
		Outputs: []string{pOut},
		Mount: func(s *divsim.Socket) []divsim.Component {
			in, out := s.Pin(pIn), s.Pin(pOut)
			var curOut bool
			return []divsim.Component{
				func(c *divsim.Circuit) {
					if c.At(e) {
						curOut = c.Get(in)
					}
					c.Set(out, curOut)
				}}
		}}).NewPart
}
