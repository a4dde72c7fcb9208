package config

import (
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	knots := Default()
	knots.Model = Knots
	if err := knots.Validate(); err != nil {
		t.Fatalf("knot defaults invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"unknown model", func(c *Config) { c.Model = "spline" }, "unknown model"},
		{"no processes", func(c *Config) { c.Processes = 0 }, "at least one process"},
		{"zero window", func(c *Config) { c.T = 0 }, "T must be positive"},
		{"negative prior", func(c *Config) { c.BetaPrior = -1 }, "gamma prior"},
		{"block not pow2", func(c *Config) { c.BlockSize = 300 }, "BlockSize"},
		{"sample block too big", func(c *Config) { c.SampleBlockSize = 2048 }, "SampleBlockSize"},
		{"negative retries", func(c *Config) { c.MaxSampleRetries = -1 }, "MaxSampleRetries"},
		{"one knot", func(c *Config) { c.Model = Knots; c.NKnots = 1 }, "at least 2 knots"},
		{"zero spacing", func(c *Config) { c.Model = Knots; c.LamDt = 0 }, "LamDt"},
		{"tod period", func(c *Config) { c.TimeOfDayBuckets = 4; c.TimeOfDayPeriod = 0 }, "TimeOfDayPeriod"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.T = -1
	cfg.AlphaPrior = 0
	cfg.BlockSize = 3
	if got := len(multierr.Errors(cfg.Validate())); got != 3 {
		t.Errorf("got %d errors, want 3", got)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("HAWKES_MODEL", "KNOTS")
	t.Setenv("HAWKES_PROCESSES", "4")
	t.Setenv("HAWKES_LAM_DT", "0.5")
	t.Setenv("HAWKES_BLOCK_SIZE", "512")
	t.Setenv("HAWKES_SEED", "42")
	t.Setenv("HAWKES_LOG_LEVEL", "debug")

	cfg, err := FromEnv(Default(), "HAWKES")
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Model != Knots || cfg.Processes != 4 || cfg.LamDt != 0.5 ||
		cfg.BlockSize != 512 || cfg.Seed != 42 || cfg.LogLevel != "debug" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.AlphaPrior != Default().AlphaPrior {
		t.Errorf("unset field changed: AlphaPrior = %v", cfg.AlphaPrior)
	}
}

func TestFromEnvBadValues(t *testing.T) {
	t.Setenv("HAWKES_T", "forever")
	t.Setenv("HAWKES_BLOCK_SIZE", "big")

	_, err := FromEnv(Default(), "HAWKES")
	if got := len(multierr.Errors(err)); got != 2 {
		t.Fatalf("got %d errors (%v), want 2", got, err)
	}
	if !strings.Contains(err.Error(), "HAWKES_T") {
		t.Errorf("error %q does not name the variable", err)
	}
}

func TestTEnd(t *testing.T) {
	cfg := Default()
	cfg.TStart, cfg.T = 10, 5
	if cfg.TEnd() != 15 {
		t.Errorf("TEnd() = %v, want 15", cfg.TEnd())
	}
}
