// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package measure_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/db47h/divsim"
	"github.com/db47h/divsim/bench"
	"github.com/db47h/divsim/divider"
	"github.com/db47h/divsim/hwlib"
	"github.com/db47h/divsim/measure"
	"github.com/db47h/divsim/report"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClock(t *testing.T) divsim.Clock {
	t.Helper()
	clk, err := divsim.NewClock(10*divsim.Nanosecond, 16)
	require.NoError(t, err)
	return clk
}

func newHarness(t *testing.T) (*measure.Harness, *report.Recorder) {
	t.Helper()
	clk := testClock(t)
	c, err := divsim.NewCircuit(1, clk.StepsPerCycle, hwlib.NewProbe("clk").Part("in=clk"))
	require.NoError(t, err)
	t.Cleanup(c.Dispose)
	b, err := bench.New(c, clk)
	require.NoError(t, err)
	rec := &report.Recorder{}
	return measure.NewHarness(b, rec, measure.WithRunID("test-run")), rec
}

// periodic returns a signal with the given period, high for the first high
// units of time of each period, starting at the current bench time.
func periodic(h *measure.Harness, period, high divsim.Time) bench.Signal {
	b := h.Bench()
	start := b.Now()
	return bench.SignalFunc(func() bool {
		return (b.Now()-start)%period < high
	})
}

func TestFrequencyTest(t *testing.T) {
	h, rec := newHarness(t)
	// rising edges at 30ns, 60ns, ...: 16 of them within 500ns.
	sig := periodic(h, 30*divsim.Nanosecond, 15*divsim.Nanosecond)
	r, err := h.FrequencyTest(context.Background(), sig, measure.FrequencyConfig{ExpectedMHz: 100.0 / 3})
	require.NoError(t, err)
	assert.Equal(t, report.Pass, r.Verdict)
	assert.Equal(t, 32.0, r.Measured)
	assert.InDelta(t, 4.0, r.ErrorPct, 0.001)
	assert.Equal(t, 5.0, r.Tolerance)
	assert.Equal(t, "MHz", r.Unit)
	assert.Equal(t, "test-run", r.RunID)
	assert.Contains(t, r.Params, report.Param{Key: "edges", Value: "16"})
	require.Len(t, rec.Results, 1)
	assert.Equal(t, r, rec.Results[0])
	assert.Equal(t, 500*divsim.Nanosecond, h.Bench().Now())
}

func TestFrequencyTest_edgeAtWindowEnd(t *testing.T) {
	h, _ := newHarness(t)
	// rising edges at 100ns, 200ns, ..., 500ns. The last one coincides with
	// the end of the window and must not be counted.
	sig := periodic(h, 100*divsim.Nanosecond, 50*divsim.Nanosecond)
	r, err := h.FrequencyTest(context.Background(), sig, measure.FrequencyConfig{ExpectedMHz: 10})
	require.NoError(t, err)
	assert.Contains(t, r.Params, report.Param{Key: "edges", Value: "4"})
	assert.Equal(t, 8.0, r.Measured)
	assert.Equal(t, report.Fail, r.Verdict)
	assert.Equal(t, "error 20.00% exceeds tolerance 5.00%", r.Reason)
}

func TestFrequencyTest_partialStep(t *testing.T) {
	h, _ := newHarness(t)
	sig := periodic(h, 30*divsim.Nanosecond, 15*divsim.Nanosecond)
	// 500.3ns is rounded up to 801 steps of 625ps.
	r, err := h.FrequencyTest(context.Background(), sig,
		measure.FrequencyConfig{ExpectedMHz: 32, Window: 500300 * divsim.Picosecond})
	require.NoError(t, err)
	assert.Contains(t, r.Params, report.Param{Key: "sample window", Value: "500625ps"})
	assert.Contains(t, r.Params, report.Param{Key: "edges", Value: "16"})
	assert.InDelta(t, 16/500.625*1000, r.Measured, 1e-9)
	assert.Equal(t, 500625*divsim.Picosecond, h.Bench().Now())
}

func TestFrequencyTest_exact(t *testing.T) {
	h, _ := newHarness(t)
	sig := periodic(h, 30*divsim.Nanosecond, 15*divsim.Nanosecond)
	r, err := h.FrequencyTest(context.Background(), sig,
		measure.FrequencyConfig{ExpectedMHz: 32, Tolerance: measure.ExactTolerance})
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Tolerance)
	assert.Equal(t, report.Pass, r.Verdict)

	sig = periodic(h, 30*divsim.Nanosecond, 15*divsim.Nanosecond)
	r, err = h.FrequencyTest(context.Background(), sig,
		measure.FrequencyConfig{ExpectedMHz: 32.5, Tolerance: measure.ExactTolerance})
	require.NoError(t, err)
	assert.Equal(t, report.Fail, r.Verdict)
}

func TestFrequencyTest_invalid(t *testing.T) {
	h, rec := newHarness(t)
	r, err := h.FrequencyTest(context.Background(), periodic(h, 30, 15), measure.FrequencyConfig{})
	require.Error(t, err)
	assert.Equal(t, report.Error, r.Verdict)
	require.Len(t, rec.Results, 1)
	assert.Equal(t, report.Error, rec.Results[0].Verdict)
}

func TestDutyCycleTest(t *testing.T) {
	h, rec := newHarness(t)
	sig := periodic(h, 300*divsim.Nanosecond, 150*divsim.Nanosecond)
	r, err := h.DutyCycleTest(context.Background(), sig, measure.DutyConfig{Periods: 3})
	require.NoError(t, err)
	assert.Equal(t, report.Pass, r.Verdict)
	assert.Equal(t, 50.0, r.Measured)
	assert.Equal(t, "%", r.Unit)
	assert.Equal(t, []report.Param{
		{Key: "periods", Value: "3"},
		{Key: "total high time", Value: "450ns"},
		{Key: "total period", Value: "900ns"},
	}, r.Params)
	assert.Len(t, rec.Results, 1)
}

func TestDutyCycleTest_outOfTolerance(t *testing.T) {
	h, _ := newHarness(t)
	sig := periodic(h, 100*divsim.Nanosecond, 30*divsim.Nanosecond)
	r, err := h.DutyCycleTest(context.Background(), sig, measure.DutyConfig{})
	require.NoError(t, err)
	assert.InDelta(t, 30.0, r.Measured, 1e-9)
	assert.Equal(t, report.Fail, r.Verdict)
	assert.Equal(t, "error 40.00% exceeds tolerance 5.00%", r.Reason)
}

func TestDutyCycleTest_badExpected(t *testing.T) {
	h, rec := newHarness(t)
	sig := periodic(h, 300*divsim.Nanosecond, 150*divsim.Nanosecond)
	for _, exp := range []float64{-10, 100, 120} {
		r, err := h.DutyCycleTest(context.Background(), sig, measure.DutyConfig{Expected: exp})
		require.Error(t, err)
		assert.Equal(t, report.Error, r.Verdict)
	}
	assert.Len(t, rec.Results, 3)
	assert.Equal(t, divsim.Time(0), h.Bench().Now())
}

func TestHarness_abortLogging(t *testing.T) {
	clk := testClock(t)
	c, err := divsim.NewCircuit(1, clk.StepsPerCycle, hwlib.NewProbe("clk").Part("in=clk"))
	require.NoError(t, err)
	defer c.Dispose()
	b, err := bench.New(c, clk)
	require.NoError(t, err)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	rec := &report.Recorder{}
	h := measure.NewHarness(b, rec, measure.WithLogger(log))
	_, err = h.DutyCycleTest(context.Background(), bench.SignalFunc(func() bool { return false }), measure.DutyConfig{})
	require.Error(t, err)
	// the sinks report the aborted test, the harness itself stays quiet.
	require.Len(t, rec.Results, 1)
	assert.Equal(t, report.Error, rec.Results[0].Verdict)
	assert.Empty(t, buf.String())
}

func TestDutyCycleTest_stalled(t *testing.T) {
	h, rec := newHarness(t)
	stuck := bench.SignalFunc(func() bool { return true })
	start := h.Bench().Now()
	r, err := h.DutyCycleTest(context.Background(), stuck, measure.DutyConfig{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, bench.ErrStalledSignal), "got %v", err)
	assert.Equal(t, report.Error, r.Verdict)
	assert.Contains(t, r.Reason, "stalled signal")
	// default timeout: 100 clock periods.
	assert.Equal(t, start+divsim.Microsecond, h.Bench().Now())
	require.Len(t, rec.Results, 1)
	assert.Equal(t, report.Error, rec.Results[0].Verdict)
}

func TestDutyCycleTest_stalledMidway(t *testing.T) {
	h, _ := newHarness(t)
	b := h.Bench()
	// toggles for 200ns, then stays high.
	sig := bench.SignalFunc(func() bool {
		now := b.Now()
		return now >= 200*divsim.Nanosecond || now%(40*divsim.Nanosecond) < 20*divsim.Nanosecond
	})
	r, err := h.DutyCycleTest(context.Background(), sig, measure.DutyConfig{StallTimeout: 100 * divsim.Nanosecond})
	require.Error(t, err)
	assert.True(t, errors.Is(err, bench.ErrStalledSignal))
	assert.Equal(t, report.Error, r.Verdict)
}

func TestPhaseCheck(t *testing.T) {
	h, rec := newHarness(t)
	r, err := h.PhaseCheck("reset phase", divider.S0, divider.S1)
	require.NoError(t, err)
	assert.Equal(t, report.Pass, r.Verdict)

	r, err = h.PhaseCheck("reset phase", divider.S1, divider.S1)
	require.NoError(t, err)
	assert.Equal(t, report.Fail, r.Verdict)
	assert.Equal(t, "counters in S1/S1, expected S0/S1", r.Reason)
	assert.Len(t, rec.Results, 2)
}

func TestHarness_cancelled(t *testing.T) {
	h, _ := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, err := h.FrequencyTest(ctx, periodic(h, 30*divsim.Nanosecond, 15*divsim.Nanosecond),
		measure.FrequencyConfig{ExpectedMHz: 33})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, report.Error, r.Verdict)
}
