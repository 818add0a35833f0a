// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package report

import (
	"context"
	"log/slog"
)

// Log writes results as structured log records. Passed tests are logged at
// level Info, failures at level Warn and errors at level Error.
type Log struct {
	log *slog.Logger
}

// NewLog returns a new Log sink. A nil logger selects slog.Default().
func NewLog(l *slog.Logger) *Log {
	if l == nil {
		l = slog.Default()
	}
	return &Log{log: l}
}

func level(v Verdict) slog.Level {
	switch v {
	case Pass:
		return slog.LevelInfo
	case Fail:
		return slog.LevelWarn
	}
	return slog.LevelError
}

// Report implements Sink.
func (l *Log) Report(r Result) error {
	attrs := []slog.Attr{
		slog.String("run_id", r.RunID),
		slog.String("test", r.Name),
		slog.String("verdict", r.Verdict.String()),
	}
	if r.Unit != "" && r.Verdict != Error {
		attrs = append(attrs,
			slog.Float64("measured", r.Measured),
			slog.Float64("expected", r.Expected),
			slog.String("unit", r.Unit),
			slog.Float64("error_pct", r.ErrorPct),
			slog.Float64("tolerance", r.Tolerance))
	}
	if len(r.Params) > 0 {
		ps := make([]any, 0, len(r.Params))
		for _, p := range r.Params {
			ps = append(ps, slog.String(p.Key, p.Value))
		}
		attrs = append(attrs, slog.Group("params", ps...))
	}
	if r.Reason != "" {
		attrs = append(attrs, slog.String("reason", r.Reason))
	}
	l.log.LogAttrs(context.Background(), level(r.Verdict), "test result", attrs...)
	return nil
}

// Summarize implements Summarizer.
func (l *Log) Summarize(s Summary) error {
	lvl := slog.LevelInfo
	if !s.OK() {
		lvl = slog.LevelWarn
	}
	l.log.LogAttrs(context.Background(), lvl, "test run complete",
		slog.String("run_id", s.RunID),
		slog.Int("total", s.Total()),
		slog.Int("passed", s.Passed),
		slog.Int("failed", s.Failed),
		slog.Int("errors", s.Errors))
	return nil
}
