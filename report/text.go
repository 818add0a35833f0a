// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package report

import (
	"fmt"
	"io"
	"strings"
)

// Text writes human readable results to an io.Writer.
type Text struct {
	w io.Writer
}

// NewText returns a new Text sink writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Report implements Sink.
func (t *Text) Report(r Result) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== %s", r.Name)
	if r.RunID != "" {
		fmt.Fprintf(&sb, " (run %s)", r.RunID)
	}
	sb.WriteByte('\n')
	for _, p := range r.Params {
		fmt.Fprintf(&sb, "    %s: %s\n", p.Key, p.Value)
	}
	if r.Unit != "" && r.Verdict != Error {
		fmt.Fprintf(&sb, "    measured: %.3f %s\n", r.Measured, r.Unit)
		fmt.Fprintf(&sb, "    expected: %.3f %s\n", r.Expected, r.Unit)
		fmt.Fprintf(&sb, "    error: %.2f%% (tolerance %.2f%%)\n", r.ErrorPct, r.Tolerance)
	}
	sb.WriteString("--- ")
	sb.WriteString(r.Verdict.String())
	if r.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(r.Reason)
	}
	sb.WriteByte('\n')
	_, err := io.WriteString(t.w, sb.String())
	return err
}

// Summarize implements Summarizer.
func (t *Text) Summarize(s Summary) error {
	verdict := "PASS"
	if !s.OK() {
		verdict = "FAIL"
	}
	_, err := fmt.Fprintf(t.w, "%s: %d tests, %d passed, %d failed, %d errors\n",
		verdict, s.Total(), s.Passed, s.Failed, s.Errors)
	return err
}
