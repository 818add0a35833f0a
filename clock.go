// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package divsim

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Time is a simulated time in picoseconds.
type Time int64

// Time units.
const (
	Picosecond  Time = 1
	Nanosecond       = 1000 * Picosecond
	Microsecond      = 1000 * Nanosecond
	Millisecond      = 1000 * Microsecond
)

var timeUnits = []struct {
	sfx string
	u   Time
}{
	{"ps", Picosecond},
	{"ns", Nanosecond},
	{"us", Microsecond},
	{"µs", Microsecond},
	{"ms", Millisecond},
}

// Nanoseconds returns t as a floating point number of nanoseconds.
func (t Time) Nanoseconds() float64 {
	return float64(t) / float64(Nanosecond)
}

// String returns t formatted with the largest unit that represents it
// exactly, like "10ns" or "625ps".
func (t Time) String() string {
	if t == 0 {
		return "0s"
	}
	switch {
	case t%Millisecond == 0:
		return strconv.FormatInt(int64(t/Millisecond), 10) + "ms"
	case t%Microsecond == 0:
		return strconv.FormatInt(int64(t/Microsecond), 10) + "us"
	case t%Nanosecond == 0:
		return strconv.FormatInt(int64(t/Nanosecond), 10) + "ns"
	}
	return strconv.FormatInt(int64(t), 10) + "ps"
}

// ParseTime parses a time string like "10ns", "2.5ns" or "1us". The result is
// rounded to the nearest picosecond.
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "0s" {
		return 0, nil
	}
	for _, u := range timeUnits {
		if !strings.HasSuffix(s, u.sfx) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, u.sfx)), 64)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid time %q", s)
		}
		if v < 0 {
			return 0, errors.Errorf("negative time %q", s)
		}
		ps := v*float64(u.u) + 0.5
		if math.IsNaN(ps) || math.IsInf(ps, 1) || ps >= math.MaxInt64 {
			return 0, errors.Errorf("time %q out of range", s)
		}
		return Time(ps), nil
	}
	return 0, errors.Errorf("missing or unknown unit in time %q", s)
}

// Edge identifies a clock or signal transition.
type Edge int

// Transition types.
const (
	Rising Edge = iota
	Falling
)

func (e Edge) String() string {
	switch e {
	case Rising:
		return "rising"
	case Falling:
		return "falling"
	}
	return "Edge(" + strconv.Itoa(int(e)) + ")"
}

// Clock describes the clock source driving a circuit: its period and the
// number of simulation steps per period.
type Clock struct {
	Period        Time
	StepsPerCycle uint
}

// NewClock checks the clock parameters and returns a Clock. stepsPerCycle is
// rounded the same way NewCircuit does and the period must be a multiple of
// the resulting value.
func NewClock(period Time, stepsPerCycle uint) (Clock, error) {
	spc := roundSPC(stepsPerCycle)
	if period <= 0 {
		return Clock{}, errors.Errorf("invalid clock period %v", period)
	}
	if period%Time(spc) != 0 {
		return Clock{}, errors.Errorf("clock period %v is not a multiple of %d steps", period, spc)
	}
	return Clock{Period: period, StepsPerCycle: spc}, nil
}

// Step returns the simulated duration of one simulation step.
func (c Clock) Step() Time {
	return c.Period / Time(c.StepsPerCycle)
}

// FreqMHz returns the clock frequency in MHz.
func (c Clock) FreqMHz() float64 {
	return 1000 / c.Period.Nanoseconds()
}

// At returns the simulated time of the given step count.
func (c Clock) At(steps uint) Time {
	return Time(steps) * c.Step()
}
