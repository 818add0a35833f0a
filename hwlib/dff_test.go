package hwlib_test

import (
	"math/rand"
	"testing"

	hw "github.com/db47h/divsim"
	hl "github.com/db47h/divsim/hwlib"
)

func randBool() bool {
	return rand.Int63()&(1<<62) != 0
}

func TestDFF(t *testing.T) {
	var in, out bool

	c, err := hw.NewCircuit(0, testTPC,
		hl.Input(func() bool { return in })("out=in"),
		hl.DFF("in=in, out=out"),
		hl.Output(func(o bool) { out = o })("in=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	var prev bool
	for i := 0; i < 100; i++ {
		// inputs are delayed by one step, so the DFF does not see the new
		// value on the rising edge right after we change it.
		in = randBool()
		c.TickTock()
		if prev != out {
			t.Fatalf("bad output at cycle %d: expected out = %v, got %v", i, prev, out)
		}
		prev = in
	}
}

func TestEdgeDFF_falling(t *testing.T) {
	var in, out bool

	c, err := hw.NewCircuit(0, testTPC,
		hl.Input(func() bool { return in })("out=in"),
		hl.EdgeDFF(hw.Falling)("in=in, out=out"),
		hl.Output(func(o bool) { out = o })("in=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	in = true
	// the first falling edge samples the new value.
	c.Tick()
	c.Step()
	c.Step()
	if !out {
		t.Fatal("falling edge DFF did not latch input")
	}
	in = false
	// no falling edge until the next Tick.
	c.Tock()
	if !out {
		t.Fatal("falling edge DFF changed on rising edge")
	}
	c.Tick()
	c.Step()
	c.Step()
	if out {
		t.Fatal("falling edge DFF did not latch input")
	}
}

func Test_bit_register(t *testing.T) {
	reg, err := hw.Chip("BitReg", "in, load", "out",
		hl.Not("in=load, out=nload"),
		hl.And("a=out, b=nload, out=keep"),
		hl.And("a=in, b=load, out=set"),
		hl.Or("a=keep, b=set, out=muxOut"),
		hl.DFF("in=muxOut, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}

	var in, load, out bool

	c, err := hw.NewCircuit(0, testTPC,
		hl.Input(func() bool { return in })("out=dffI"),
		hl.Input(func() bool { return load })("out=dffLD"),
		reg("in=dffI, load=dffLD, out=dffO"),
		hl.Output(func(b bool) { out = b })("in=dffO"),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	p := in
	for i := 0; i < 1000; i++ {
		in = randBool()
		load = randBool()
		c.TickTock()
		if p != out {
			t.Fatal("p != out")
		}
		if load {
			p = in
		}
	}
}
