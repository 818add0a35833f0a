// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package divsim

// A Component is the update function of a mounted part. It is called once per
// simulation step, reads its inputs with Circuit.Get and writes its outputs
// with Circuit.Set.
type Component func(c *Circuit)

// A MountFn allocates a part in a circuit. It looks up the part's pin numbers
// in the socket and returns the components updating them.
//
// An inverter mounts like this:
//
//	Mount: func(s *Socket) []Component {
//		in, out := s.Pin("in"), s.Pin("out")
//		return []Component{
//			func(c *Circuit) { c.Set(out, !c.Get(in)) },
//		}
//	}
type MountFn func(s *Socket) []Component

// A PartSpec is the blueprint of a part: its name, its pins and how to mount
// it. Its NewPart method is the NewPartFn used to place it in a chip:
//
//	div, _ := Chip("DIV", "rst", "out",
//		dffSpec.NewPart("in=rst, out=srst"),
//		cntSpec.NewPart("rst=srst, out=out"),
//	)
type PartSpec struct {
	Name    string
	Inputs  []string // distinct input pin names
	Outputs []string // distinct output pin names
	Mount   MountFn
}

// NewPart returns a Part placing p with the given connections. It panics if
// the connection string does not parse.
func (p *PartSpec) NewPart(connections string) Part {
	conns, err := ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{PartSpec: p, Conns: conns}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func (p *PartSpec) isInput(name string) bool  { return contains(p.Inputs, name) }
func (p *PartSpec) isOutput(name string) bool { return contains(p.Outputs, name) }

// A NewPartFn places a part given a connection string like "a=x, out=y". See
// ParseConnections.
type NewPartFn func(c string) Part

// A Part is a PartSpec placed in a host chip.
type Part struct {
	*PartSpec
	Conns []Connection
}

// Parts is a list of parts.
type Parts []Part
