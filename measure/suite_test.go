// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package measure_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/db47h/divsim/divider"
	"github.com/db47h/divsim/measure"
	"github.com/db47h/divsim/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suiteConfig(t *testing.T) measure.SuiteConfig {
	return measure.SuiteConfig{
		Clock:       testClock(t),
		Workers:     2,
		ResetCycles: 3,
		MidRunReset: true,
	}
}

func TestSuite_Run(t *testing.T) {
	rec := &report.Recorder{}
	var buf bytes.Buffer
	s, err := measure.NewSuite(suiteConfig(t), report.Multi{rec, report.NewText(&buf)}, measure.WithRunID("suite"))
	require.NoError(t, err)
	defer s.Close()

	sum, err := s.Run(context.Background())
	require.NoError(t, err, buf.String())
	assert.True(t, sum.OK())
	assert.Equal(t, 5, sum.Passed)
	require.NotNil(t, rec.Summary)
	assert.Equal(t, sum, *rec.Summary)

	var names []string
	for _, r := range rec.Results {
		names = append(names, r.Name)
		assert.Equal(t, report.Pass, r.Verdict, r.Name+": "+r.Reason)
		assert.Equal(t, "suite", r.RunID)
	}
	assert.Equal(t, []string{
		"reset phase",
		"frequency",
		"duty cycle",
		"reset phase after mid-run reset",
		"frequency after reset",
	}, names)

	duty, ok := rec.Find("duty cycle")
	require.True(t, ok)
	assert.Equal(t, 50.0, duty.Measured)

	// 100MHz clock: 16 or 17 rising edges of the 33.33MHz output fit in a
	// 500ns window depending on its phase.
	for _, name := range []string{"frequency", "frequency after reset"} {
		f, ok := rec.Find(name)
		require.True(t, ok)
		assert.Contains(t, []float64{32, 34}, f.Measured, name)
		assert.InDelta(t, 100.0/3, f.Expected, 1e-9)
	}
	assert.Contains(t, buf.String(), "PASS: 5 tests, 5 passed, 0 failed, 0 errors")
}

func TestSuite_failing(t *testing.T) {
	cfg := suiteConfig(t)
	cfg.MidRunReset = false
	// expecting the undivided clock frequency.
	cfg.Frequency.ExpectedMHz = 100
	rec := &report.Recorder{}
	s, err := measure.NewSuite(cfg, rec)
	require.NoError(t, err)
	defer s.Close()

	sum, err := s.Run(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "1 of 3 tests did not pass")
	assert.Equal(t, report.Summary{RunID: s.Harness().RunID(), Passed: 2, Failed: 1}, sum)
	f, ok := rec.Find("frequency")
	require.True(t, ok)
	assert.Equal(t, report.Fail, f.Verdict)
}

func TestSuite_Reset(t *testing.T) {
	s, err := measure.NewSuite(suiteConfig(t), nil)
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 3; i++ {
		s.Reset()
		rise, fall := s.States()
		assert.Equal(t, divider.S0, rise, "pass %d", i)
		assert.Equal(t, divider.S1, fall, "pass %d", i)
		s.Harness().Bench().Cycles(4 + i)
	}
}

func TestNewSuite_errors(t *testing.T) {
	cfg := suiteConfig(t)
	cfg.ResetCycles = 1
	_, err := measure.NewSuite(cfg, nil)
	assert.EqualError(t, err, "reset must be held for at least 2 cycles, got 1")
}
