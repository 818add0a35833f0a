// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides helpers for testing parts against each other.
package hwtest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/divsim"
	"github.com/db47h/divsim/hwlib"
	"github.com/pkg/errors"
)

// samePins reports the first difference between two pin lists.
func samePins(kind string, a, b []string) error {
	if len(a) != len(b) {
		return errors.Errorf("%s count mismatch: %v vs %v", kind, a, b)
	}
	for i := range a {
		if a[i] != b[i] {
			return errors.Errorf("%s %d mismatch: %q vs %q", kind, i, a[i], b[i])
		}
	}
	return nil
}

// ComparePart runs want and got side by side on the same random inputs and
// fails t as soon as their outputs differ. Outputs are compared at the end of
// each half clock cycle, and inputs change every 4 cycles. Both parts must
// have the same pin names in the same order.
func ComparePart(t *testing.T, spc uint, cycles int, want, got divsim.NewPartFn) {
	t.Helper()

	ws, gs := want("").PartSpec, got("").PartSpec
	if err := samePins("input", ws.Inputs, gs.Inputs); err != nil {
		t.Fatal(err)
	}
	if err := samePins("output", ws.Outputs, gs.Outputs); err != nil {
		t.Fatal(err)
	}

	in := make([]bool, len(ws.Inputs))
	out := make([][2]bool, len(ws.Outputs))

	var parts divsim.Parts
	var shared []string
	for i, n := range ws.Inputs {
		i := i
		shared = append(shared, n+"="+n)
		parts = append(parts, hwlib.Input(func() bool { return in[i] })("out="+n))
	}
	// Inputs are shared, outputs go to separate wires suffixed by the part
	// index.
	for k, fn := range []divsim.NewPartFn{want, got} {
		conns := append([]string(nil), shared...)
		for i, n := range ws.Outputs {
			i, k := i, k
			w := fmt.Sprintf("%s_%d", n, k)
			conns = append(conns, n+"="+w)
			parts = append(parts, hwlib.Output(func(v bool) { out[i][k] = v })("in="+w))
		}
		parts = append(parts, fn(strings.Join(conns, ", ")))
	}

	c, err := divsim.NewCircuit(0, spc, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	check := func(cycle int, half string) {
		t.Helper()
		for i, o := range out {
			if o[0] == o[1] {
				continue
			}
			var b strings.Builder
			for j, n := range ws.Inputs {
				fmt.Fprintf(&b, " %s=%v", n, in[j])
			}
			t.Fatalf("cycle %d (%s),%s: %s = %v, got %v", cycle, half, b.String(), ws.Outputs[i], o[0], o[1])
		}
	}

	start := time.Now()
	for i := 0; i < cycles; i++ {
		if i%4 == 0 {
			for j := range in {
				in[j] = rand.Intn(2) == 1
			}
		}
		c.Tick()
		check(i, "high")
		c.Tock()
		check(i, "low")
	}
	t.Logf("%d components, %d cycles in %v", c.Size(), cycles, time.Since(start))
}
