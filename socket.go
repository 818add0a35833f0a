// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package divsim

// Names of the pins every circuit provides. False and GND are the same pin.
const (
	True  = "true"
	False = "false"
	GND   = "false"
	Clk   = "clk"
)

// fixed pin numbers
const (
	cstFalse = iota
	cstTrue
	cstClk
	cstCount
)

// A Socket resolves pin names to pin numbers while a part is mounted. Each
// chip level gets its own socket, so pin names are local to the chip.
type Socket struct {
	m map[string]int
	c *Circuit
}

func newSocket(c *Circuit) *Socket {
	m := make(map[string]int, cstCount)
	m[False], m[True], m[Clk] = cstFalse, cstTrue, cstClk
	return &Socket{m: m, c: c}
}

// Pin returns the number of the named pin. It panics if the socket has no
// such pin, which means the part's Mount function asked for a pin it did not
// declare.
func (s *Socket) Pin(name string) int {
	if n, ok := s.m[name]; ok {
		return n
	}
	panic("pin " + name + " does not exist")
}

// PinOrNew is like Pin but allocates a fresh circuit pin for an unknown name.
// Chips use it for their internal wires.
func (s *Socket) PinOrNew(name string) int {
	if n, ok := s.m[name]; ok {
		return n
	}
	n := s.c.allocPin()
	s.m[name] = n
	return n
}
