// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package divsim

import (
	"github.com/pkg/errors"
)

type chip struct {
	PartSpec       // PartSpec for this chip
	parts    Parts // sub parts
}

func (c *chip) mount(s *Socket) []Component {
	var updaters []Component

	for _, p := range c.parts {
		sub := newSocket(s.c)
		for _, cn := range p.Conns {
			sub.m[cn.PP] = s.PinOrNew(cn.CP)
		}
		// unconnected inputs are wired to False, unconnected outputs
		// get a dangling wire of their own.
		for _, in := range p.Inputs {
			if _, ok := sub.m[in]; !ok {
				sub.m[in] = cstFalse
			}
		}
		for _, out := range p.Outputs {
			if _, ok := sub.m[out]; !ok {
				sub.m[out] = s.c.allocPin()
			}
		}
		updaters = append(updaters, p.Mount(sub)...)
	}
	return updaters
}

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and outputs will be the inputs
// and outputs of the chip.
//
// An Xor gate could be created like this:
//
//	xor, err := Chip("XOR", "a, b", "out",
//		hwlib.Nand("a=a, b=b, out=nandAB"),
//		hwlib.Nand("a=a, b=nandAB, out=w0"),
//		hwlib.Nand("a=b, b=nandAB, out=w1"),
//		hwlib.Nand("a=w0, b=w1, out=out"),
//	)
//
// The returned value is a NewPartFn that can be used to compose the new part
// with others into other chips.
//
// Wiring rules: every wire read by a part input must be driven by a chip input,
// a constant (true, false, clk) or exactly one part output. A part output may
// only be connected to a single wire, which must be read by some part or be
// one of the chip outputs.
func Chip(name string, inputs string, outputs string, parts ...Part) (NewPartFn, error) {
	ins, err := ParseIOSpec(inputs)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	outs, err := ParseIOSpec(outputs)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}

	// drivers maps wire names to the part pin driving them.
	drivers := make(map[string]string, len(ins)+len(parts))
	for _, k := range []string{True, False, Clk} {
		drivers[k] = k
	}
	for _, i := range ins {
		drivers[i] = i
	}
	readers := make(map[string]string)

	for _, p := range parts {
		seen := make(map[string]bool, len(p.Conns))
		for _, cn := range p.Conns {
			pn := p.Name + "." + cn.PP
			if seen[cn.PP] {
				return nil, errors.New("pin " + pn + " connected more than once")
			}
			seen[cn.PP] = true
			switch {
			case p.isInput(cn.PP):
				readers[cn.CP] = pn
			case p.isOutput(cn.PP):
				switch cn.CP {
				case True, False, Clk:
					return nil, errors.New(pn + ":" + cn.CP + ": output pin connected to constant " + cn.CP + " input")
				}
				if d, ok := drivers[cn.CP]; ok {
					if d == cn.CP {
						return nil, errors.New(pn + ":" + cn.CP + ": chip input pin used as output")
					}
					return nil, errors.New(pn + ":" + cn.CP + ": output pin already used as output")
				}
				drivers[cn.CP] = pn
			default:
				return nil, errors.New("invalid pin name " + cn.PP + " for part " + p.Name)
			}
		}
	}

	for w, r := range readers {
		if _, ok := drivers[w]; !ok {
			return nil, errors.New("pin " + w + " not connected to any output (read by " + r + ")")
		}
	}
	isOut := make(map[string]bool, len(outs))
	for _, o := range outs {
		isOut[o] = true
		if _, ok := drivers[o]; !ok {
			return nil, errors.New("chip output " + o + " not connected to any output")
		}
	}
	for w, d := range drivers {
		if d == w {
			continue // chip inputs and constants
		}
		if _, ok := readers[w]; !ok && !isOut[w] {
			return nil, errors.New("pin " + w + " not connected to any input")
		}
	}

	c := &chip{
		PartSpec{
			Name:    name,
			Inputs:  ins,
			Outputs: outs,
		},
		parts,
	}
	c.PartSpec.Mount = c.mount
	return c.PartSpec.NewPart, nil
}
