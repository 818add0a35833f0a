// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/db47h/divsim/measure"
	"github.com/db47h/divsim/report"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	metricsPath string
	quiet       bool

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the divider testbench",
		Long: `Run resets the divider, checks the phase relationship of its counters,
measures the frequency and duty cycle of its output and, unless disabled,
resets it again mid-run and repeats the phase check and frequency test.

The command exits with a non-zero status if any test did not pass.`,
		Args: cobra.NoArgs,
		RunE: runTestbench,
	}
)

func init() {
	runCmd.Flags().Var(&period, "period", "clock period, like 10ns (overrides the configuration)")
	runCmd.Flags().StringVar(&metricsPath, "metrics", "", "write Prometheus metrics to this file")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print results to stdout")
}

func runTestbench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	sc, err := cfg.Suite()
	if err != nil {
		return err
	}

	sinks := report.Multi{report.NewLog(slog.Default())}
	if !quiet {
		sinks = append(sinks, report.NewText(cmd.OutOrStdout()))
	}
	var prom *report.Prom
	if metricsPath != "" {
		prom = report.NewProm()
		sinks = append(sinks, prom)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	s, err := measure.NewSuite(sc, sinks, measure.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	defer s.Close()

	slog.Info("starting testbench",
		slog.String("run_id", s.Harness().RunID()),
		slog.String("clock", sc.Clock.Period.String()),
		slog.Uint64("steps_per_cycle", uint64(sc.Clock.StepsPerCycle)),
		slog.Float64("expected_mhz", sc.ExpectedMHz()))

	_, runErr := s.Run(ctx)
	if prom != nil {
		if err := prom.WriteFile(metricsPath); err != nil {
			return err
		}
	}
	if runErr != nil && errors.Is(runErr, context.Canceled) {
		return errors.Wrap(runErr, "interrupted")
	}
	return runErr
}
