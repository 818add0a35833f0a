// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package measure

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/db47h/divsim"
	"github.com/db47h/divsim/bench"
	"github.com/db47h/divsim/divider"
	"github.com/db47h/divsim/report"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// FrequencyConfig configures a frequency test. Zero values select defaults,
// except for ExpectedMHz which must be set. Use ExactTolerance to require the
// measured value to match exactly.
type FrequencyConfig struct {
	Name        string
	ExpectedMHz float64
	Tolerance   float64
	Window      divsim.Time
}

func (c FrequencyConfig) withDefaults() FrequencyConfig {
	if c.Name == "" {
		c.Name = "frequency"
	}
	c.Tolerance = tolerance(c.Tolerance)
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	return c
}

// DutyConfig configures a duty cycle test. Zero values select defaults. The
// default StallTimeout is DefaultStallCycles clock periods. Expected must lie
// strictly between 0 and 100: a constant signal has no edges to time.
type DutyConfig struct {
	Name         string
	Expected     float64
	Tolerance    float64
	Periods      int
	StallTimeout divsim.Time
}

func (c DutyConfig) withDefaults(clk divsim.Clock) DutyConfig {
	if c.Name == "" {
		c.Name = "duty cycle"
	}
	if c.Expected == 0 {
		c.Expected = DefaultDuty
	}
	c.Tolerance = tolerance(c.Tolerance)
	if c.Periods == 0 {
		c.Periods = DefaultPeriods
	}
	if c.StallTimeout == 0 {
		c.StallTimeout = DefaultStallCycles * clk.Period
	}
	return c
}

func tolerance(t float64) float64 {
	switch {
	case t == 0:
		return DefaultTolerance
	case t < 0:
		return 0
	}
	return t
}

// A Harness runs measurements on a bench and reports them to a sink.
type Harness struct {
	b     *bench.Bench
	sink  report.Sink
	log   *slog.Logger
	runID string
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the harness logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.log = l
		}
	}
}

// WithRunID sets the run ID attached to results. The default is a random UUID.
func WithRunID(id string) Option {
	return func(h *Harness) { h.runID = id }
}

// NewHarness returns a new Harness.
func NewHarness(b *bench.Bench, sink report.Sink, opts ...Option) *Harness {
	h := &Harness{b: b, sink: sink, log: slog.Default(), runID: uuid.NewString()}
	for _, o := range opts {
		o(h)
	}
	h.log = h.log.With(slog.String("run_id", h.runID))
	return h
}

// RunID returns the run ID attached to results.
func (h *Harness) RunID() string { return h.runID }

// Bench returns the bench the harness runs on.
func (h *Harness) Bench() *bench.Bench { return h.b }

func (h *Harness) emit(r *report.Result) error {
	r.RunID = h.runID
	if h.sink == nil {
		return nil
	}
	return errors.Wrap(h.sink.Report(*r), "report")
}

// fail reports a test that could not complete.
func (h *Harness) fail(r report.Result, err error) (report.Result, error) {
	r.Verdict = report.Error
	r.Reason = err.Error()
	h.log.Debug("test aborted", slog.String("test", r.Name), slog.Any("error", err))
	if rerr := h.emit(&r); rerr != nil {
		h.log.Error("report failed", slog.Any("error", rerr))
	}
	return r, err
}

// FrequencyTest measures the frequency of sig by counting its rising edges
// over cfg.Window of simulated time, rounded up to a whole simulation step.
// A timer and the edge counter race against
// each other; edges coinciding with or following the end of the window are not
// counted.
//
// The returned error is non-nil only if the measurement could not complete, in
// which case the result verdict is report.Error. A measurement out of
// tolerance is not an error.
func (h *Harness) FrequencyTest(ctx context.Context, sig bench.Signal, cfg FrequencyConfig) (report.Result, error) {
	cfg = cfg.withDefaults()
	r := report.Result{
		Name:      cfg.Name,
		Expected:  cfg.ExpectedMHz,
		Unit:      "MHz",
		Tolerance: cfg.Tolerance,
	}
	if cfg.ExpectedMHz <= 0 {
		return h.fail(r, errors.Errorf("invalid expected frequency %g MHz", cfg.ExpectedMHz))
	}
	if cfg.Window < 0 {
		return h.fail(r, errors.Errorf("invalid sample window %v", cfg.Window))
	}

	start := h.b.Now()
	edges := 0
	winner, err := h.b.Race(ctx,
		func(ctx context.Context, t *bench.Task) error {
			return t.Delay(cfg.Window)
		},
		func(ctx context.Context, t *bench.Task) error {
			for {
				if _, err := t.WaitEdge(sig, divsim.Rising); err != nil {
					return err
				}
				edges++
			}
		})
	if err == nil && winner != 0 {
		err = errors.New("edge counter returned before the end of the sample window")
	}
	elapsed := h.b.Now() - start
	r.Params = []report.Param{
		{Key: "start", Value: start.String()},
		{Key: "sample window", Value: elapsed.String()},
		{Key: "edges", Value: strconv.Itoa(edges)},
	}
	if err != nil {
		return h.fail(r, errors.Wrap(err, "frequency test"))
	}

	r.Measured = FrequencyMHz(edges, elapsed)
	evaluate(&r)
	h.log.Debug("frequency measured",
		slog.String("test", r.Name),
		slog.Int("edges", edges),
		slog.Float64("mhz", r.Measured))
	err = h.emit(&r)
	return r, err
}

// DutyCycleTest measures the duty cycle of sig over cfg.Periods signal periods.
// Each period is sampled as a rising edge, the following falling edge and the
// next rising edge. Every wait is bounded by cfg.StallTimeout; a signal that
// stops toggling aborts the test with an error wrapping
// bench.ErrStalledSignal.
//
// The returned error is non-nil only if the measurement could not complete, in
// which case the result verdict is report.Error.
func (h *Harness) DutyCycleTest(ctx context.Context, sig bench.Signal, cfg DutyConfig) (report.Result, error) {
	cfg = cfg.withDefaults(h.b.Clock())
	r := report.Result{
		Name:      cfg.Name,
		Expected:  cfg.Expected,
		Unit:      "%",
		Tolerance: cfg.Tolerance,
	}
	if cfg.Periods < 0 {
		return h.fail(r, errors.Errorf("invalid period count %d", cfg.Periods))
	}
	if cfg.Expected <= 0 || cfg.Expected >= 100 {
		return h.fail(r, errors.Errorf("invalid expected duty cycle %g%%", cfg.Expected))
	}

	var high, period divsim.Time
	n := 0
	err := h.b.Run(ctx, func(ctx context.Context, t *bench.Task) error {
		limit := cfg.StallTimeout
		for ; n < cfg.Periods; n++ {
			t0, err := t.WaitEdgeWithin(sig, divsim.Rising, limit)
			if err != nil {
				return errors.Wrapf(err, "period %d start", n+1)
			}
			t1, err := t.WaitEdgeWithin(sig, divsim.Falling, limit)
			if err != nil {
				return errors.Wrapf(err, "period %d high time", n+1)
			}
			t2, err := t.WaitEdgeWithin(sig, divsim.Rising, limit)
			if err != nil {
				return errors.Wrapf(err, "period %d end", n+1)
			}
			high += t1 - t0
			period += t2 - t0
		}
		return nil
	})
	r.Params = []report.Param{
		{Key: "periods", Value: strconv.Itoa(n)},
		{Key: "total high time", Value: high.String()},
		{Key: "total period", Value: period.String()},
	}
	if err != nil {
		return h.fail(r, errors.Wrap(err, "duty cycle test"))
	}

	r.Measured = DutyPercent(high, period)
	evaluate(&r)
	h.log.Debug("duty cycle measured",
		slog.String("test", r.Name),
		slog.Float64("percent", r.Measured))
	err = h.emit(&r)
	return r, err
}

// PhaseCheck reports whether the rising and falling counters of a divider are
// in their reset states, S0 and S1 respectively. The result has no unit.
func (h *Harness) PhaseCheck(name string, rise, fall divider.State) (report.Result, error) {
	r := report.Result{
		Name: name,
		Params: []report.Param{
			{Key: "rising counter", Value: rise.String()},
			{Key: "falling counter", Value: fall.String()},
		},
		Verdict: report.Pass,
	}
	if rise != divider.S0 || fall != divider.S1 {
		r.Verdict = report.Fail
		r.Reason = fmt.Sprintf("counters in %v/%v, expected %v/%v", rise, fall, divider.S0, divider.S1)
	}
	err := h.emit(&r)
	return r, err
}
