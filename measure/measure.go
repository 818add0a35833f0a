// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package measure measures the frequency and duty cycle of a signal in a
// running circuit and reports the results.
package measure

import (
	"fmt"
	"math"

	"github.com/db47h/divsim"
	"github.com/db47h/divsim/report"
)

// Defaults.
const (
	DefaultTolerance   = 5.0
	DefaultWindow      = 500 * divsim.Nanosecond
	DefaultDuty        = 50.0
	DefaultPeriods     = 10
	DefaultStallCycles = 100
)

// ExactTolerance is a tolerance requiring the measured value to equal the
// expected one. A zero tolerance in a test config selects DefaultTolerance.
const ExactTolerance = -1.0

// FrequencyMHz returns the frequency in MHz of a signal showing the given
// number of rising edges over window.
func FrequencyMHz(edges int, window divsim.Time) float64 {
	return float64(edges) / window.Nanoseconds() * 1000
}

// DutyPercent returns the duty cycle in percent of a signal spending high over
// period.
func DutyPercent(high, period divsim.Time) float64 {
	if period <= 0 {
		return 0
	}
	return float64(high) / float64(period) * 100
}

// ErrorPercent returns the relative error of measured against expected, in
// percent.
func ErrorPercent(measured, expected float64) float64 {
	if expected == 0 {
		if measured == 0 {
			return 0
		}
		return math.Inf(1)
	}
	return math.Abs(measured-expected) / math.Abs(expected) * 100
}

// evaluate fills in r.ErrorPct, r.Verdict and r.Reason. A result is within
// tolerance if its relative error is less than or equal to r.Tolerance.
func evaluate(r *report.Result) {
	r.ErrorPct = ErrorPercent(r.Measured, r.Expected)
	if r.ErrorPct <= r.Tolerance {
		r.Verdict = report.Pass
		r.Reason = ""
		return
	}
	r.Verdict = report.Fail
	r.Reason = fmt.Sprintf("error %.2f%% exceeds tolerance %.2f%%", r.ErrorPct, r.Tolerance)
}
