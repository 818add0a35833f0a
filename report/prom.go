// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package report

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "divsim"

// Prom exports results as Prometheus metrics. Gauges hold the values of the
// last result of each test.
type Prom struct {
	reg       *prometheus.Registry
	measured  *prometheus.GaugeVec
	expected  *prometheus.GaugeVec
	errorPct  *prometheus.GaugeVec
	tolerance *prometheus.GaugeVec
	results   *prometheus.CounterVec
	passed    prometheus.Gauge
}

// NewProm returns a new Prom sink registering its metrics into a new
// registry.
func NewProm() *Prom {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Prom{
		reg: reg,
		measured: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "measured_value",
			Help:      "Last measured value by test and unit",
		}, []string{"test", "unit"}),
		expected: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "expected_value",
			Help:      "Expected value by test and unit",
		}, []string{"test", "unit"}),
		errorPct: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "error_percent",
			Help:      "Relative error of the last measurement in percent",
		}, []string{"test"}),
		tolerance: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "tolerance_percent",
			Help:      "Accepted relative error in percent",
		}, []string{"test"}),
		results: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "results_total",
			Help:      "Test results by test and verdict",
		}, []string{"test", "verdict"}),
		passed: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "run_passed",
			Help:      "1 if all tests of the last run passed, 0 otherwise",
		}),
	}
}

// Gatherer returns the registry holding the metrics.
func (p *Prom) Gatherer() prometheus.Gatherer { return p.reg }

// Report implements Sink.
func (p *Prom) Report(r Result) error {
	p.results.WithLabelValues(r.Name, r.Verdict.String()).Inc()
	if r.Unit == "" || r.Verdict == Error {
		return nil
	}
	p.measured.WithLabelValues(r.Name, r.Unit).Set(r.Measured)
	p.expected.WithLabelValues(r.Name, r.Unit).Set(r.Expected)
	p.errorPct.WithLabelValues(r.Name).Set(r.ErrorPct)
	p.tolerance.WithLabelValues(r.Name).Set(r.Tolerance)
	return nil
}

// Summarize implements Summarizer.
func (p *Prom) Summarize(s Summary) error {
	if s.OK() {
		p.passed.Set(1)
	} else {
		p.passed.Set(0)
	}
	return nil
}

// WriteFile writes the metrics to path in the Prometheus text format, as
// expected by the node exporter textfile collector.
func (p *Prom) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, p.reg); err != nil {
		return errors.Wrap(err, "write metrics")
	}
	return nil
}
