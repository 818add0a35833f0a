package divider

import (
	"testing"
	"testing/quick"

	"github.com/db47h/divsim"
)

func TestCounter_sequence(t *testing.T) {
	c := NewCounter(divsim.Rising)
	if c.Trigger() != divsim.Rising {
		t.Fatalf("bad trigger %v", c.Trigger())
	}
	exp := []State{S1, S2, S0, S1, S2, S0}
	for i, s := range exp {
		c.Advance()
		if c.State() != s {
			t.Fatalf("advance #%d: expected %v, got %v", i, s, c.State())
		}
		if c.Output() != (s == S2) {
			t.Fatalf("advance #%d: bad output %v in state %v", i, c.Output(), s)
		}
	}
}

// for any three consecutive advances, the output is asserted exactly once.
func TestCounter_oneInThree(t *testing.T) {
	f := func(init uint8, skip uint8) bool {
		c := NewCounter(divsim.Falling)
		c.Reset(State(init % 3))
		for i := 0; i < int(skip%7); i++ {
			c.Advance()
		}
		n := 0
		for i := 0; i < 3; i++ {
			c.Advance()
			if c.Output() {
				n++
			}
		}
		return n == 1
	}
	if err := quick.Check(f, nil); err != nil {
		t.Error(err)
	}
}

func TestCounter_invalidState(t *testing.T) {
	for _, s := range []State{3, 4, 0x80, 0xff} {
		c := NewCounter(divsim.Rising)
		c.state = s
		if s.Valid() {
			t.Fatalf("%v reported as valid", s)
		}
		if c.Output() {
			t.Fatalf("%v: output asserted in invalid state", s)
		}
		c.Advance()
		if c.State() != S0 || c.Output() {
			t.Fatalf("%v: expected recovery to S0, got %v, output %v", s, c.State(), c.Output())
		}
	}
}

func TestState_String(t *testing.T) {
	td := map[State]string{S0: "S0", S1: "S1", S2: "S2", 7: "State(7)"}
	for s, exp := range td {
		if got := s.String(); got != exp {
			t.Errorf("expected %q, got %q", exp, got)
		}
	}
}
