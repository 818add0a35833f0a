// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package config loads the divsim test run configuration.
//
// Configuration is loaded with priority: environment > file > defaults.
package config

import (
	"os"
	"strconv"

	"github.com/db47h/divsim"
	"github.com/db47h/divsim/measure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Time is a divsim.Time that marshals to and from YAML as a string with a
// unit, like "10ns".
type Time divsim.Time

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Time) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	v, err := divsim.ParseTime(s)
	if err != nil {
		return errors.Wrapf(err, "line %d", n.Line)
	}
	*t = Time(v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t Time) MarshalYAML() (interface{}, error) {
	return divsim.Time(t).String(), nil
}

// String returns t formatted like "10ns".
func (t Time) String() string { return divsim.Time(t).String() }

// Set parses s into t. Together with String and Type, it makes *Time usable as
// a command line flag value.
func (t *Time) Set(s string) error {
	v, err := divsim.ParseTime(s)
	if err != nil {
		return err
	}
	*t = Time(v)
	return nil
}

// Type returns the flag value type name.
func (t *Time) Type() string { return "time" }

// ClockConfig configures the simulated clock.
type ClockConfig struct {
	Period        Time `yaml:"period"`
	StepsPerCycle uint `yaml:"steps_per_cycle"`
}

// FrequencyConfig configures the frequency test. An ExpectedMHz of 0 selects a
// third of the clock frequency.
type FrequencyConfig struct {
	ExpectedMHz float64 `yaml:"expected_mhz"`
	Tolerance   float64 `yaml:"tolerance"`
	Window      Time    `yaml:"window"`
}

// DutyConfig configures the duty cycle test.
type DutyConfig struct {
	Expected     float64 `yaml:"expected"`
	Tolerance    float64 `yaml:"tolerance"`
	Periods      int     `yaml:"periods"`
	StallTimeout Time    `yaml:"stall_timeout"`
}

// Config is the test run configuration.
type Config struct {
	Clock       ClockConfig     `yaml:"clock"`
	Workers     int             `yaml:"workers"`
	ResetCycles int             `yaml:"reset_cycles"`
	MidRunReset bool            `yaml:"mid_run_reset"`
	Frequency   FrequencyConfig `yaml:"frequency"`
	Duty        DutyConfig      `yaml:"duty"`
}

// Default returns the default configuration: a 100MHz clock simulated with 16
// steps per cycle.
func Default() Config {
	return Config{
		Clock: ClockConfig{
			Period:        Time(10 * divsim.Nanosecond),
			StepsPerCycle: 16,
		},
		Workers:     1,
		ResetCycles: 3,
		MidRunReset: true,
		Frequency: FrequencyConfig{
			Tolerance: measure.DefaultTolerance,
			Window:    Time(measure.DefaultWindow),
		},
		Duty: DutyConfig{
			Expected:  measure.DefaultDuty,
			Tolerance: measure.DefaultTolerance,
			Periods:   measure.DefaultPeriods,
		},
	}
}

// Load loads the configuration from the YAML file at path, then applies
// environment overrides and validates the result. An empty path or a missing
// file selects the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadConfigFile(path, &cfg); err != nil {
			return cfg, errors.Wrap(err, "load config file")
		}
	}
	if err := loadConfigFromEnv(&cfg); err != nil {
		return cfg, errors.Wrap(err, "load config from environment")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, path)
	}
	return nil
}

func loadConfigFromEnv(cfg *Config) error {
	for _, e := range []struct {
		name string
		set  func(string) error
	}{
		{"DIVSIM_CLOCK_PERIOD", timeVar(&cfg.Clock.Period)},
		{"DIVSIM_STEPS_PER_CYCLE", func(v string) error {
			n, err := strconv.ParseUint(v, 10, 0)
			cfg.Clock.StepsPerCycle = uint(n)
			return err
		}},
		{"DIVSIM_WORKERS", intVar(&cfg.Workers)},
		{"DIVSIM_RESET_CYCLES", intVar(&cfg.ResetCycles)},
		{"DIVSIM_MID_RUN_RESET", func(v string) (err error) {
			cfg.MidRunReset, err = strconv.ParseBool(v)
			return err
		}},
		{"DIVSIM_EXPECTED_MHZ", floatVar(&cfg.Frequency.ExpectedMHz)},
		{"DIVSIM_FREQ_TOLERANCE", floatVar(&cfg.Frequency.Tolerance)},
		{"DIVSIM_WINDOW", timeVar(&cfg.Frequency.Window)},
		{"DIVSIM_DUTY_TOLERANCE", floatVar(&cfg.Duty.Tolerance)},
		{"DIVSIM_PERIODS", intVar(&cfg.Duty.Periods)},
		{"DIVSIM_STALL_TIMEOUT", timeVar(&cfg.Duty.StallTimeout)},
	} {
		if v := os.Getenv(e.name); v != "" {
			if err := e.set(v); err != nil {
				return errors.Wrapf(err, "%s=%q", e.name, v)
			}
		}
	}
	return nil
}

func intVar(p *int) func(string) error {
	return func(v string) (err error) {
		*p, err = strconv.Atoi(v)
		return err
	}
}

func floatVar(p *float64) func(string) error {
	return func(v string) (err error) {
		*p, err = strconv.ParseFloat(v, 64)
		return err
	}
}

func timeVar(p *Time) func(string) error { return p.Set }

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if _, err := divsim.NewClock(divsim.Time(c.Clock.Period), c.Clock.StepsPerCycle); err != nil {
		return err
	}
	if c.ResetCycles < measure.MinResetCycles {
		return errors.Errorf("reset_cycles must be at least %d, got %d", measure.MinResetCycles, c.ResetCycles)
	}
	if c.Frequency.ExpectedMHz < 0 {
		return errors.Errorf("frequency.expected_mhz must not be negative, got %g", c.Frequency.ExpectedMHz)
	}
	if c.Frequency.Tolerance < 0 || c.Duty.Tolerance < 0 {
		return errors.New("tolerances must not be negative")
	}
	if c.Frequency.Window <= 0 {
		return errors.Errorf("frequency.window must be positive, got %v", divsim.Time(c.Frequency.Window))
	}
	if c.Duty.Expected <= 0 || c.Duty.Expected >= 100 {
		return errors.Errorf("duty.expected must be within (0, 100), got %g", c.Duty.Expected)
	}
	if c.Duty.Periods <= 0 {
		return errors.Errorf("duty.periods must be positive, got %d", c.Duty.Periods)
	}
	if c.Duty.StallTimeout < 0 {
		return errors.Errorf("duty.stall_timeout must not be negative, got %v", divsim.Time(c.Duty.StallTimeout))
	}
	return nil
}

// Suite returns the measure.SuiteConfig for c.
func (c Config) Suite() (measure.SuiteConfig, error) {
	clk, err := divsim.NewClock(divsim.Time(c.Clock.Period), c.Clock.StepsPerCycle)
	if err != nil {
		return measure.SuiteConfig{}, err
	}
	return measure.SuiteConfig{
		Clock:       clk,
		Workers:     c.Workers,
		ResetCycles: c.ResetCycles,
		MidRunReset: c.MidRunReset,
		Frequency: measure.FrequencyConfig{
			ExpectedMHz: c.Frequency.ExpectedMHz,
			Tolerance:   tolerance(c.Frequency.Tolerance),
			Window:      divsim.Time(c.Frequency.Window),
		},
		Duty: measure.DutyConfig{
			Expected:     c.Duty.Expected,
			Tolerance:    tolerance(c.Duty.Tolerance),
			Periods:      c.Duty.Periods,
			StallTimeout: divsim.Time(c.Duty.StallTimeout),
		},
	}, nil
}

// tolerance maps a configured tolerance of 0 to an exact match.
func tolerance(t float64) float64 {
	if t == 0 {
		return measure.ExactTolerance
	}
	return t
}

// Marshal returns the YAML encoding of c.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
