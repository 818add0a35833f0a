// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package divsim

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// A Circuit runs mounted parts in lockstep.
//
// Wire states are held in two frames: during a step, components read the
// current frame and write the next one, and the frames are swapped once all
// components have run. Every part therefore adds one step of propagation
// delay. The clk pin is driven by the circuit itself, high for the first half
// of each cycle of SPC steps.
type Circuit struct {
	cur   []bool // wire states read during the current step
	next  []bool // wire states written during the current step
	cs    []Component
	wires int
	spc   uint // steps per clock cycle, a power of two
	steps uint

	wake []chan struct{}
	wg   sync.WaitGroup
}

// NewCircuit mounts the given parts into a new circuit.
//
// Components are spread over workers goroutines; workers <= 0 selects
// GOMAXPROCS.
//
// stepsPerCycle is rounded up to a power of two, 2 at least. Since parts in
// series add one step of delay each, it must leave enough steps in half a
// cycle for clocked outputs to settle.
//
// Dispose must be called to stop the worker goroutines once the circuit is no
// longer used.
func NewCircuit(workers int, stepsPerCycle uint, parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}
	c := &Circuit{wires: cstCount, spc: roundSPC(stepsPerCycle)}
	top, err := Chip("CIRCUIT", "", "", parts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chip wrapper")
	}
	c.cs = append(top("").Mount(newSocket(c)), clockGen)
	c.cur = make([]bool, c.wires)
	c.next = make([]bool, c.wires)
	c.cur[cstTrue], c.next[cstTrue] = true, true
	c.cur[cstClk] = true

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	for _, batch := range split(c.cs, workers) {
		wake := make(chan struct{}, 1)
		c.wake = append(c.wake, wake)
		go c.run(batch, wake)
	}
	return c, nil
}

// split splits cs into at most n batches of similar size.
func split(cs []Component, n int) [][]Component {
	if n < 1 {
		n = 1
	}
	size := (len(cs) + n - 1) / n
	var batches [][]Component
	for len(cs) > 0 {
		if size > len(cs) {
			size = len(cs)
		}
		batches = append(batches, cs[:size])
		cs = cs[size:]
	}
	return batches
}

func roundSPC(spc uint) uint {
	if spc < 2 {
		return 2
	}
	p := uint(1)
	for p < spc {
		p <<= 1
	}
	return p
}

// clockGen drives the clk pin for the next step.
func clockGen(c *Circuit) {
	if c.cur[cstFalse] || !c.cur[cstTrue] {
		panic("true or false constants have been overwritten")
	}
	c.next[cstClk] = (c.steps+1)&(c.spc-1) < c.spc/2
}

func (c *Circuit) run(cs []Component, wake <-chan struct{}) {
	for range wake {
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
	c.wg.Done()
}

// Dispose stops the worker goroutines. The circuit must not be used
// afterwards.
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wake))
	for _, w := range c.wake {
		close(w)
	}
	c.wg.Wait()
	c.wake = nil
}

func (c *Circuit) allocPin() int {
	c.wires++
	return c.wires - 1
}

// Steps returns the number of steps run so far.
func (c *Circuit) Steps() uint { return c.steps }

// SPC returns the number of steps per clock cycle.
func (c *Circuit) SPC() uint { return c.spc }

// phase returns the position of the current step within its clock cycle.
func (c *Circuit) phase() uint { return c.steps & (c.spc - 1) }

// AtTick returns true if the current step is a rising clock edge, the first
// step of a cycle.
func (c *Circuit) AtTick() bool { return c.phase() == 0 }

// AtTock returns true if the current step is a falling clock edge, the first
// step of the second half of a cycle.
func (c *Circuit) AtTock() bool { return c.phase() == c.spc/2 }

// At returns true if the current step is an e clock edge.
func (c *Circuit) At(e Edge) bool {
	if e == Falling {
		return c.AtTock()
	}
	return c.AtTick()
}

// Get returns the state of pin n in the current frame. Pin numbers are
// obtained from a Socket in a MountFn.
func (c *Circuit) Get(n int) bool { return c.cur[n] }

// Set sets the state of pin n for the next step.
func (c *Circuit) Set(n int, s bool) { c.next[n] = s }

// Step runs all components once and advances the step counter.
func (c *Circuit) Step() {
	c.wg.Add(len(c.wake))
	for _, w := range c.wake {
		w <- struct{}{}
	}
	c.wg.Wait()
	c.steps++
	c.cur, c.next = c.next, c.cur
}

// Tick runs the simulation to the end of the high half of the current clock
// cycle. It does nothing if the clock is already low.
func (c *Circuit) Tick() {
	for c.phase() < c.spc/2 {
		c.Step()
	}
}

// Tock runs the simulation to the end of the low half of the current clock
// cycle. The next step is then a rising edge and the outputs of clocked parts
// have settled. It does nothing if the clock is high.
func (c *Circuit) Tock() {
	for c.phase() >= c.spc/2 {
		c.Step()
	}
}

// TickTock runs the simulation to the end of the current clock cycle.
func (c *Circuit) TickTock() {
	c.Tick()
	c.Tock()
}

// Size returns the number of components in the circuit.
func (c *Circuit) Size() int { return len(c.cs) }
