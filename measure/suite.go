// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package measure

import (
	"context"
	"log/slog"

	"github.com/db47h/divsim"
	"github.com/db47h/divsim/bench"
	"github.com/db47h/divsim/divider"
	"github.com/db47h/divsim/hwlib"
	"github.com/db47h/divsim/report"
	"github.com/pkg/errors"
)

// MinResetCycles is the minimum number of clock cycles reset must be held for
// the divider to settle.
const MinResetCycles = 2

// SuiteConfig configures a test suite run.
type SuiteConfig struct {
	Clock       divsim.Clock
	Workers     int
	ResetCycles int
	// Reset the divider again after the first measurements and check that it
	// restarts in the same phase relationship.
	MidRunReset bool
	Frequency   FrequencyConfig
	Duty        DutyConfig
}

// ExpectedMHz returns the expected divided frequency: cfg.Frequency.ExpectedMHz
// if set, a third of the clock frequency otherwise.
func (cfg *SuiteConfig) ExpectedMHz() float64 {
	if cfg.Frequency.ExpectedMHz > 0 {
		return cfg.Frequency.ExpectedMHz
	}
	return cfg.Clock.FreqMHz() / 3
}

// A Suite runs the standard divider testbench sequence: reset, phase check,
// frequency test, duty cycle test, and optionally a mid-run reset followed by a
// second phase check and frequency test.
type Suite struct {
	cfg  SuiteConfig
	sink report.Sink
	log  *slog.Logger

	rst   bool
	core  *divider.Core
	c     *divsim.Circuit
	probe *hwlib.Probe
	h     *Harness
}

// NewSuite builds the circuit under test. Call Close to release it.
func NewSuite(cfg SuiteConfig, sink report.Sink, opts ...Option) (*Suite, error) {
	if cfg.ResetCycles < MinResetCycles {
		return nil, errors.Errorf("reset must be held for at least %d cycles, got %d", MinResetCycles, cfg.ResetCycles)
	}
	s := &Suite{cfg: cfg, sink: sink, core: divider.NewCore(), probe: hwlib.NewProbe("out")}
	div, err := s.core.Chip()
	if err != nil {
		return nil, errors.Wrap(err, "build divider")
	}
	s.c, err = divsim.NewCircuit(cfg.Workers, cfg.Clock.StepsPerCycle,
		hwlib.Input(func() bool { return s.rst })("out=rst"),
		div("rst=rst, out=y"),
		s.probe.Part("in=y"))
	if err != nil {
		return nil, errors.Wrap(err, "build circuit")
	}
	s.h = NewHarness(nil, sink, opts...)
	s.log = s.h.log
	s.h.b, err = bench.New(s.c, cfg.Clock, bench.WithLogger(s.log))
	if err != nil {
		s.c.Dispose()
		return nil, err
	}
	return s, nil
}

// Close releases the circuit.
func (s *Suite) Close() {
	s.c.Dispose()
}

// Harness returns the suite harness.
func (s *Suite) Harness() *Harness { return s.h }

// States returns the states of the divider counters.
func (s *Suite) States() (rise, fall divider.State) { return s.core.States() }

// Output returns the divided output signal.
func (s *Suite) Output() bench.Signal { return s.probe }

// Reset holds the divider reset input high for the configured number of clock
// cycles, then releases it and runs one more cycle so that the release reaches
// the counters. The divider is then in its reset state, the next simulation
// step being a rising clock edge.
func (s *Suite) Reset() {
	s.rst = true
	s.h.b.Cycles(s.cfg.ResetCycles)
	s.rst = false
	s.h.b.Cycles(1)
	s.log.Debug("reset released", slog.String("at", s.h.b.Now().String()))
}

// Run runs the suite and sends a summary to the sink if it implements
// report.Summarizer. It returns an error if any test did not pass.
func (s *Suite) Run(ctx context.Context) (report.Summary, error) {
	sum := report.Summary{RunID: s.h.runID}
	add := func(r report.Result, err error) error {
		sum.Add(r)
		if err != nil && r.Verdict != report.Error {
			// reporting failed
			return err
		}
		return nil
	}
	out := s.Output()
	expected := s.cfg.ExpectedMHz()

	freq := s.cfg.Frequency
	freq.ExpectedMHz = expected
	steps := []func() error{
		func() error {
			s.Reset()
			rise, fall := s.States()
			return add(s.h.PhaseCheck("reset phase", rise, fall))
		},
		func() error { return add(s.h.FrequencyTest(ctx, out, freq)) },
		func() error { return add(s.h.DutyCycleTest(ctx, out, s.cfg.Duty)) },
	}
	if s.cfg.MidRunReset {
		again := freq
		again.Name = withDefault(freq.Name, "frequency") + " after reset"
		steps = append(steps,
			func() error {
				s.Reset()
				rise, fall := s.States()
				return add(s.h.PhaseCheck("reset phase after mid-run reset", rise, fall))
			},
			func() error { return add(s.h.FrequencyTest(ctx, out, again)) },
		)
	}

	for _, step := range steps {
		if err := step(); err != nil {
			return sum, err
		}
		if err := ctx.Err(); err != nil {
			return sum, errors.Wrap(err, "test suite aborted")
		}
	}

	if ss, ok := s.sink.(report.Summarizer); ok {
		if err := ss.Summarize(sum); err != nil {
			return sum, errors.Wrap(err, "summary")
		}
	}
	s.log.Info("test suite complete",
		slog.Int("passed", sum.Passed),
		slog.Int("failed", sum.Failed),
		slog.Int("errors", sum.Errors))
	if !sum.OK() {
		return sum, errors.Errorf("%d of %d tests did not pass", sum.Failed+sum.Errors, sum.Total())
	}
	return sum, nil
}

func withDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
