// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"

	"github.com/db47h/divsim"
	"github.com/db47h/divsim/divider"
	"github.com/db47h/divsim/hwlib"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	waveCycles int
	waveReset  int
	waveSteps  uint

	waveCmd = &cobra.Command{
		Use:   "wave",
		Short: "Print the divider waveforms",
		Long: `Wave runs the divider with reset held for the first cycles and prints
the clock, reset and output waveforms, one character per simulation step.`,
		Args: cobra.NoArgs,
		RunE: printWave,
	}
)

func init() {
	waveCmd.Flags().IntVarP(&waveCycles, "cycles", "n", 12, "number of clock cycles to record")
	waveCmd.Flags().IntVar(&waveReset, "reset", 2, "number of clock cycles reset is held for")
	waveCmd.Flags().UintVar(&waveSteps, "steps", 8, "simulation steps per clock cycle")
}

func printWave(cmd *cobra.Command, args []string) error {
	if waveCycles <= 0 {
		return errors.Errorf("invalid cycle count %d", waveCycles)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var rst bool
	core := divider.NewCore()
	div, err := core.Chip()
	if err != nil {
		return err
	}
	w := hwlib.NewWave(divsim.Clk, "rst", "out")
	parts := append(divsim.Parts{
		hwlib.Input(func() bool { return rst })("out=rst"),
		div("rst=rst, out=out"),
	}, w.Parts()...)
	c, err := divsim.NewCircuit(cfg.Workers, waveSteps, parts...)
	if err != nil {
		return err
	}
	defer c.Dispose()

	spc := int(c.SPC())
	for i := 0; i < waveCycles; i++ {
		rst = i < waveReset
		w.Record(c, spc)
	}
	slog.Debug("waveform recorded", slog.Int("steps", w.Len()), slog.Int("cycles", waveCycles))
	_, err = fmt.Fprint(cmd.OutOrStdout(), w.String())
	return err
}
