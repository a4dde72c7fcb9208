// Package config holds the settings of a background-rate sampling run.
package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	guda "github.com/LynnColeArt/gudahawkes"
	"go.uber.org/multierr"
)

// ModelType selects the background-rate representation.
type ModelType string

const (
	// Homogeneous uses one constant rate per process.
	Homogeneous ModelType = "homogeneous"
	// Knots uses a log-intensity value per knot, interpolated in time.
	Knots ModelType = "knots"
)

// Config describes a sampling run. Start from Default and override fields;
// Validate rejects zero sizes and windows.
type Config struct {
	Model ModelType

	// Number of point processes K.
	Processes int

	// Observation window.
	TStart float64
	T      float64

	// Knot model.
	NKnots int
	LamDt  float64

	// Gamma prior on the homogeneous rate.
	AlphaPrior float64
	BetaPrior  float64

	// Threads per block for reductions and for the racing Gamma sampler.
	BlockSize       int
	SampleBlockSize int

	// Fresh-draw relaunches allowed for work items that report
	// SAMPLE_FAILURE.
	MaxSampleRetries int

	// Time-of-day modulation, disabled when TimeOfDayBuckets is 0.
	TimeOfDayPeriod  float64
	TimeOfDayBuckets int

	Seed     uint64
	LogLevel string
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Model:            Homogeneous,
		Processes:        1,
		T:                1,
		NKnots:           2,
		LamDt:            1,
		AlphaPrior:       1,
		BetaPrior:        1,
		BlockSize:        guda.DefaultBlockSize,
		SampleBlockSize:  guda.DefaultRaceBlockSize,
		MaxSampleRetries: 3,
		TimeOfDayPeriod:  24 * 60 * 60,
		LogLevel:         "info",
	}
}

// FromEnv overrides fields of cfg with PREFIX_* environment variables,
// e.g. HAWKES_BLOCK_SIZE=512.
func FromEnv(cfg Config, prefix string) (Config, error) {
	var errs error
	get := func(name string) (string, bool) {
		return os.LookupEnv(prefix + "_" + name)
	}
	setFloat := func(name string, dst *float64) {
		if v, ok := get(name); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s_%s: %w", prefix, name, err))
				return
			}
			*dst = f
		}
	}
	setInt := func(name string, dst *int) {
		if v, ok := get(name); ok {
			i, err := strconv.Atoi(v)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s_%s: %w", prefix, name, err))
				return
			}
			*dst = i
		}
	}

	if v, ok := get("MODEL"); ok {
		cfg.Model = ModelType(strings.ToLower(v))
	}
	setInt("PROCESSES", &cfg.Processes)
	setFloat("TSTART", &cfg.TStart)
	setFloat("T", &cfg.T)
	setInt("N_KNOTS", &cfg.NKnots)
	setFloat("LAM_DT", &cfg.LamDt)
	setFloat("ALPHA_PRIOR", &cfg.AlphaPrior)
	setFloat("BETA_PRIOR", &cfg.BetaPrior)
	setInt("BLOCK_SIZE", &cfg.BlockSize)
	setInt("SAMPLE_BLOCK_SIZE", &cfg.SampleBlockSize)
	setInt("MAX_SAMPLE_RETRIES", &cfg.MaxSampleRetries)
	setFloat("TOD_PERIOD", &cfg.TimeOfDayPeriod)
	setInt("TOD_BUCKETS", &cfg.TimeOfDayBuckets)
	if v, ok := get("SEED"); ok {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s_SEED: %w", prefix, err))
		} else {
			cfg.Seed = s
		}
	}
	if v, ok := get("LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	return cfg, errs
}

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs error
	fail := func(format string, args ...interface{}) {
		errs = multierr.Append(errs, fmt.Errorf(format, args...))
	}

	switch c.Model {
	case Homogeneous, Knots:
	default:
		fail("unknown model %q", c.Model)
	}
	if c.Processes < 1 {
		fail("need at least one process, got %d", c.Processes)
	}
	if !positive(c.T) {
		fail("T must be positive, got %v", c.T)
	}
	if !positive(c.AlphaPrior) || !positive(c.BetaPrior) {
		fail("gamma prior must be positive, got (%v, %v)", c.AlphaPrior, c.BetaPrior)
	}
	if c.Model == Knots {
		if c.NKnots < 2 {
			fail("knot model needs at least 2 knots, got %d", c.NKnots)
		}
		if !positive(c.LamDt) {
			fail("LamDt must be positive, got %v", c.LamDt)
		}
	}
	for name, bs := range map[string]int{"BlockSize": c.BlockSize, "SampleBlockSize": c.SampleBlockSize} {
		if !isPow2(bs) || bs > guda.MaxThreadsPerBlock {
			fail("%s must be a power of two no larger than %d, got %d", name, guda.MaxThreadsPerBlock, bs)
		}
	}
	if c.MaxSampleRetries < 0 {
		fail("MaxSampleRetries must not be negative, got %d", c.MaxSampleRetries)
	}
	if c.TimeOfDayBuckets < 0 {
		fail("TimeOfDayBuckets must not be negative, got %d", c.TimeOfDayBuckets)
	}
	if c.TimeOfDayBuckets > 0 && !positive(c.TimeOfDayPeriod) {
		fail("TimeOfDayPeriod must be positive, got %v", c.TimeOfDayPeriod)
	}
	return errs
}

// TEnd returns the end of the observation window.
func (c Config) TEnd() float64 {
	return c.TStart + c.T
}
