// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command divsim simulates the divide-by-3 clock divider and runs its
// testbench.
//
// Usage:
//
//	divsim run [--config file] [--period 10ns] [--metrics file]
//	divsim wave [--cycles n]
//	divsim config
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/db47h/divsim/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	period     config.Time

	rootCmd = &cobra.Command{
		Use:           "divsim",
		Short:         "Simulate and test a divide-by-3, 50% duty cycle clock divider",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := parseLevel(logLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn or error")
	rootCmd.AddCommand(runCmd, waveCmd, configCmd)
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return l, errors.Errorf("invalid log level %q", s)
	}
	return l, nil
}

// loadConfig loads the configuration file and applies the flags of cmd that
// override configuration values.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if f := cmd.Flags().Lookup("period"); f != nil && f.Changed {
		cfg.Clock.Period = period
		if err := cfg.Validate(); err != nil {
			return cfg, errors.Wrap(err, "invalid config")
		}
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("divsim failed", slog.Any("error", err))
		os.Exit(1)
	}
}
