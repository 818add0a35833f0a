/*
Package divsim provides a naive discrete-step hardware simulator and an API to
compose basic components (logic gates, flip-flops, counters) into more complex
ones.

A Circuit runs a set of components in lockstep: every step, each component
reads the current state of its input wires and sets the next state of its
output wires. The clock signal (pin "clk") is generated by the circuit itself,
each clock cycle spanning a configurable number of steps. Clocked components
use AtTick and AtTock to detect the rising and falling edges.

The subpackages build on it:

	hwlib    basic parts: inputs, outputs, probes, gates and flip-flops
	divider  the divide-by-3, 50% duty cycle clock divider
	bench    a discrete-event scheduler running testbench tasks in simulated time
	measure  frequency and duty cycle measurements on a running circuit
	report   result sinks
	hwtest   testing helpers
*/
package divsim
