// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package report defines measurement results and the sinks they are written
// to.
package report

import (
	"strconv"

	"github.com/pkg/errors"
)

// Verdict is the outcome of a test.
type Verdict int

// Verdicts.
const (
	Pass Verdict = iota
	Fail
	Error
)

func (v Verdict) String() string {
	switch v {
	case Pass:
		return "PASS"
	case Fail:
		return "FAIL"
	case Error:
		return "ERROR"
	}
	return "Verdict(" + strconv.Itoa(int(v)) + ")"
}

// Param is a named test parameter or intermediate value.
type Param struct {
	Key   string
	Value string
}

// Result is the result of a single test.
//
// Measured and Expected are only meaningful for tests that have a Unit. Verdict
// Error means that the measurement could not complete; Reason then holds the
// error message.
type Result struct {
	RunID     string
	Name      string
	Params    []Param
	Measured  float64
	Expected  float64
	Unit      string
	ErrorPct  float64
	Tolerance float64
	Verdict   Verdict
	Reason    string
}

// Passed returns true if r.Verdict is Pass.
func (r *Result) Passed() bool { return r.Verdict == Pass }

// A Sink receives test results.
type Sink interface {
	Report(r Result) error
}

// A Summarizer is a Sink that also handles end of run summaries.
type Summarizer interface {
	Summarize(s Summary) error
}

// Summary counts the results of a test run.
type Summary struct {
	RunID  string
	Passed int
	Failed int
	Errors int
}

// Add accounts for r.
func (s *Summary) Add(r Result) {
	switch {
	case r.Passed():
		s.Passed++
	case r.Verdict == Fail:
		s.Failed++
	default:
		s.Errors++
	}
}

// Total returns the number of results.
func (s Summary) Total() int { return s.Passed + s.Failed + s.Errors }

// OK returns true if all tests passed.
func (s Summary) OK() bool { return s.Failed == 0 && s.Errors == 0 }

// Multi is a Sink that forwards results to several sinks.
type Multi []Sink

// Report implements Sink. Every sink receives r, the first error is returned.
func (m Multi) Report(r Result) error {
	var err error
	for _, s := range m {
		if e := s.Report(r); e != nil && err == nil {
			err = errors.Wrapf(e, "report %s", r.Name)
		}
	}
	return err
}

// Summarize implements Summarizer for the sinks that support it.
func (m Multi) Summarize(sum Summary) error {
	var err error
	for _, s := range m {
		if ss, ok := s.(Summarizer); ok {
			if e := ss.Summarize(sum); e != nil && err == nil {
				err = errors.Wrap(e, "summary")
			}
		}
	}
	return err
}

// Recorder is a Sink that keeps results in memory.
type Recorder struct {
	Results []Result
	Summary *Summary
}

// Report implements Sink.
func (rec *Recorder) Report(r Result) error {
	rec.Results = append(rec.Results, r)
	return nil
}

// Summarize implements Summarizer.
func (rec *Recorder) Summarize(s Summary) error {
	rec.Summary = &s
	return nil
}

// Find returns the last recorded result with the given name.
func (rec *Recorder) Find(name string) (Result, bool) {
	for i := len(rec.Results) - 1; i >= 0; i-- {
		if rec.Results[i].Name == name {
			return rec.Results[i], true
		}
	}
	return Result{}, false
}
