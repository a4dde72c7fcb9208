// Package mcmc runs the background-rate stages of a Hawkes-process Gibbs
// sweep on a guda device: background counting, the conjugate Gamma update,
// rate expansion, time-of-day modulation and scoring.
package mcmc

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat/distuv"

	guda "github.com/LynnColeArt/gudahawkes"
	"github.com/LynnColeArt/gudahawkes/internal/config"
	"github.com/LynnColeArt/gudahawkes/internal/logutil"
	"github.com/LynnColeArt/gudahawkes/kernels"
)

var (
	// ErrEventShape reports events that do not fit the configured model.
	ErrEventShape = errors.New("malformed events")

	// ErrNotReady is returned by steps run before Setup.
	ErrNotReady = errors.New("pipeline has no events")

	// ErrClosed is returned by calls after Close.
	ErrClosed = errors.New("pipeline closed")

	// ErrWrongModel is returned when a step does not match the configured
	// background model.
	ErrWrongModel = errors.New("step does not match background model")

	// ErrInvalidShape reports a Gamma posterior the sampler cannot draw
	// from (shape below 1 or a non-positive rate).
	ErrInvalidShape = errors.New("invalid gamma posterior")

	// ErrSampleFailure reports work items that rejected every candidate on
	// every attempt.
	ErrSampleFailure = errors.New("gamma sampler exhausted retries")
)

// HomogeneousState is the outcome of one StepHomogeneous.
type HomogeneousState struct {
	Counts    []int32   // background events per process
	AlphaPost []float64 // posterior shape per process
	BetaPost  []float64 // posterior rate per process
	Rates     []float64 // sampled background rate per process
	LogLik    []float64 // background log-likelihood per process
}

// Pipeline owns the device buffers of one model and runs its stages in
// order on a private stream. It is not safe for concurrent use.
type Pipeline struct {
	dev     *guda.Context
	stream  *guda.Stream
	cfg     config.Config
	k       int
	logger  *zap.Logger
	metrics *metrics
	runID   string

	uniform distuv.Uniform
	normal  distuv.Normal

	fixed allocator // K-sized, lives until Close
	data  allocator // N-sized, replaced by Setup

	counts    []int32
	alphaPost []float64
	betaPost  []float64
	rates     []float64
	ll        []float64
	todProb   []float64
	processes []int

	n          int
	times      []float64
	c, z       []int32
	rateMatrix []float64
	offsets    []int32
	fracs      []float64
	buckets    []int32

	ready  bool
	closed bool
}

// New creates a pipeline on dev (the default context when nil). Collectors
// are registered with reg when it is non-nil; a nil logger falls back to
// logutil.GetLogger.
func New(dev *guda.Context, cfg config.Config, logger *zap.Logger, reg prometheus.Registerer) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if dev == nil {
		dev = guda.Default()
	}
	if logger == nil {
		logger = logutil.GetLogger()
	}

	runID := uuid.NewString()
	src := rand.NewPCG(cfg.Seed, cfg.Seed^0x6a09e667f3bcc909)
	p := &Pipeline{
		dev:     dev,
		stream:  dev.CreateStream(),
		cfg:     cfg,
		k:       cfg.Processes,
		logger:  logger.With(zap.String("run_id", runID), zap.String("model", string(cfg.Model))),
		metrics: newMetrics(reg),
		runID:   runID,
		uniform: distuv.Uniform{Min: 0, Max: 1, Src: src},
		normal:  distuv.Normal{Mu: 0, Sigma: 1, Src: src},
		fixed:   allocator{dev: dev},
		data:    allocator{dev: dev},
	}

	k := p.k
	p.counts = p.fixed.i32(k)
	p.alphaPost = p.fixed.f64(k)
	p.betaPost = p.fixed.f64(k)
	p.rates = p.fixed.f64(k)
	p.ll = p.fixed.f64(k)
	if cfg.TimeOfDayBuckets > 0 {
		p.todProb = p.fixed.f64(cfg.TimeOfDayBuckets)
		for i := range p.todProb {
			p.todProb[i] = 1
		}
	}
	if err := p.fixed.err; err != nil {
		return nil, multierr.Append(err, p.fixed.release())
	}
	p.processes = make([]int, k)
	for i := range p.processes {
		p.processes[i] = i
	}
	return p, nil
}

// RunID identifies this pipeline in logs.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Setup copies events to the device and runs the per-dataset stages: knot
// binning for the knot model and time-of-day bucketing when enabled. It may
// be called again to replace the data.
func (p *Pipeline) Setup(ctx context.Context, ev Events) error {
	if p.closed {
		return ErrClosed
	}
	if ev.Len() == 0 {
		return fmt.Errorf("%w: no events", ErrEventShape)
	}
	if err := ev.validate(p.k, p.cfg.TStart, p.cfg.TEnd()); err != nil {
		return err
	}

	p.ready = false
	if err := p.data.release(); err != nil {
		return fmt.Errorf("release buffers: %w", err)
	}
	n := ev.Len()
	p.n = n
	p.times = p.data.f64(n)
	p.c = p.data.i32(n)
	p.z = p.data.i32(n)
	p.rateMatrix = p.data.f64(p.k * n)
	if p.cfg.Model == config.Knots {
		p.offsets = p.data.i32(n)
		p.fracs = p.data.f64(n)
	}
	if p.cfg.TimeOfDayBuckets > 0 {
		p.buckets = p.data.i32(n)
	}
	if p.data.err != nil {
		return fmt.Errorf("allocate event buffers: %w", p.data.err)
	}
	copy(p.times, ev.Times)
	copy(p.c, ev.C)
	copy(p.z, ev.Z)

	if p.cfg.Model == config.Knots {
		err := p.stage(ctx, "binize", func() error {
			return kernels.Binize(p.stream, kernels.BinArgs{
				Times:   p.times,
				TStart:  p.cfg.TStart,
				LamDt:   p.cfg.LamDt,
				Offsets: p.offsets,
				Fracs:   p.fracs,
			})
		})
		if err != nil {
			return err
		}
		if err := kernels.CheckBins(p.offsets, p.fracs, p.cfg.NKnots); err != nil {
			return fmt.Errorf("%w: %w", ErrEventShape, err)
		}
	}
	if p.cfg.TimeOfDayBuckets > 0 {
		err := p.stage(ctx, "tod_buckets", func() error {
			return kernels.TimeOfDayBuckets(p.stream, kernels.BucketArgs{
				Times:    p.times,
				Period:   p.cfg.TimeOfDayPeriod,
				NBuckets: p.cfg.TimeOfDayBuckets,
				Bucket:   p.buckets,
			})
		})
		if err != nil {
			return err
		}
	}

	p.ready = true
	p.logger.Info("pipeline ready", zap.Int("events", n), zap.Int("processes", p.k))
	return nil
}

// SetTimeOfDay replaces the per-bucket rate factors used by the modulate
// stage. All factors start at 1.
func (p *Pipeline) SetTimeOfDay(prob []float64) error {
	if len(prob) != len(p.todProb) {
		return fmt.Errorf("time-of-day table has %d buckets, want %d", len(prob), len(p.todProb))
	}
	for i, v := range prob {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("time-of-day bucket %d: factor %v", i, v)
		}
	}
	copy(p.todProb, prob)
	return nil
}

// UpdateParents replaces the parent assignment, typically after the
// parent-sampling step of the sweep.
func (p *Pipeline) UpdateParents(z []int32) error {
	if err := p.check(""); err != nil {
		return err
	}
	if len(z) != p.n {
		return fmt.Errorf("%w: %d parents for %d events", ErrEventShape, len(z), p.n)
	}
	for j, v := range z {
		if err := checkParent(j, v); err != nil {
			return err
		}
	}
	copy(p.z, z)
	return nil
}

// StepHomogeneous resamples the constant background rate of every process
// from its Gamma posterior given the current parents, then expands and
// scores the new rates.
func (p *Pipeline) StepHomogeneous(ctx context.Context) (HomogeneousState, error) {
	if err := p.check(config.Homogeneous); err != nil {
		return HomogeneousState{}, err
	}
	bs := p.cfg.BlockSize

	err := p.stage(ctx, "count", func() error {
		return kernels.CountBackground(p.stream, kernels.CountArgs{
			C: p.c, Z: p.z, K: p.k, Counts: p.counts, BlockSize: bs,
		})
	})
	if err != nil {
		return HomogeneousState{}, err
	}

	err = p.stage(ctx, "posterior", func() error {
		return kernels.UpdatePosterior(p.stream, kernels.PosteriorArgs{
			Counts:     p.counts,
			AlphaPrior: p.cfg.AlphaPrior,
			BetaPrior:  p.cfg.BetaPrior,
			T:          p.cfg.T,
			AlphaPost:  p.alphaPost,
			BetaPost:   p.betaPost,
		})
	})
	if err != nil {
		return HomogeneousState{}, err
	}

	if err := p.sample(ctx); err != nil {
		return HomogeneousState{}, err
	}

	err = p.stage(ctx, "expand", func() error {
		return kernels.ExpandHomogeneous(p.stream, kernels.HomogeneousExpandArgs{
			Rates: p.rates, N: p.n, RateMatrix: p.rateMatrix,
		})
	})
	if err != nil {
		return HomogeneousState{}, err
	}
	if err := p.modulate(ctx); err != nil {
		return HomogeneousState{}, err
	}

	err = p.stage(ctx, "score", func() error {
		return kernels.LogLikelihoodHomogeneous(p.stream, kernels.HomogeneousLogLikelihoodArgs{
			Rates:      p.rates,
			T:          p.cfg.T,
			RateMatrix: p.rateMatrix,
			C:          p.c,
			Z:          p.z,
			N:          p.n,
			LL:         p.ll,
			BlockSize:  bs,
		})
	})
	if err != nil {
		return HomogeneousState{}, err
	}

	return HomogeneousState{
		Counts:    append([]int32(nil), p.counts...),
		AlphaPost: append([]float64(nil), p.alphaPost...),
		BetaPost:  append([]float64(nil), p.betaPost...),
		Rates:     append([]float64(nil), p.rates...),
		LogLik:    append([]float64(nil), p.ll...),
	}, nil
}

// EvaluateKnots expands a proposal of knot log-intensities (K×NKnots,
// row-major) into the rate matrix and returns the background
// log-likelihood of every process.
func (p *Pipeline) EvaluateKnots(ctx context.Context, knots []float64) ([]float64, error) {
	if err := p.check(config.Knots); err != nil {
		return nil, err
	}
	nk := p.cfg.NKnots
	if len(knots) != p.k*nk {
		return nil, fmt.Errorf("%d knot values, want %d×%d", len(knots), p.k, nk)
	}

	buf, err := p.dev.MallocFloat64(len(knots))
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := p.dev.Free(buf); ferr != nil {
			p.logger.Warn("free knot buffer", zap.Error(ferr))
		}
	}()
	copy(buf, knots)

	err = p.stage(ctx, "expand", func() error {
		var errs error
		for k := 0; k < p.k; k++ {
			errs = multierr.Append(errs, kernels.ExpandKnots(p.stream, kernels.KnotExpandArgs{
				Knots:      buf,
				NKnots:     nk,
				Process:    k,
				Offsets:    p.offsets,
				Fracs:      p.fracs,
				N:          p.n,
				RateMatrix: p.rateMatrix,
			}))
		}
		return errs
	})
	if err != nil {
		return nil, err
	}
	if err := p.modulate(ctx); err != nil {
		return nil, err
	}

	err = p.stage(ctx, "score", func() error {
		return kernels.LogLikelihood(p.stream, kernels.LogLikelihoodArgs{
			Knots:      buf,
			NKnots:     nk,
			LamDt:      p.cfg.LamDt,
			RateMatrix: p.rateMatrix,
			C:          p.c,
			Z:          p.z,
			N:          p.n,
			Processes:  p.processes,
			LL:         p.ll,
			BlockSize:  p.cfg.BlockSize,
		})
	})
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), p.ll...), nil
}

// RateMatrix returns a copy of the K×N background rate matrix written by
// the last step.
func (p *Pipeline) RateMatrix() []float64 {
	return append([]float64(nil), p.rateMatrix...)
}

// Close returns every buffer to the context's pool and stops the
// pipeline's stream. The pipeline cannot be used afterwards.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed, p.ready = true, false
	err := multierr.Append(p.stream.Synchronize(), p.dev.DestroyStream(p.stream))
	err = multierr.Append(err, p.data.release())
	err = multierr.Append(err, p.fixed.release())
	alloc, peak := p.dev.Buffers().Stats()
	p.logger.Debug("pipeline closed", zap.Int64("pool_bytes", alloc), zap.Int64("pool_peak_bytes", peak))
	return err
}

func (p *Pipeline) check(model config.ModelType) error {
	switch {
	case p.closed:
		return ErrClosed
	case !p.ready:
		return ErrNotReady
	case model != "" && model != p.cfg.Model:
		return fmt.Errorf("%w: %s step on %s model", ErrWrongModel, model, p.cfg.Model)
	}
	return nil
}

func (p *Pipeline) modulate(ctx context.Context) error {
	if p.cfg.TimeOfDayBuckets == 0 {
		return nil
	}
	return p.stage(ctx, "modulate", func() error {
		return kernels.ModulateTimeOfDay(p.stream, kernels.TimeOfDayArgs{
			RateMatrix: p.rateMatrix,
			K:          p.k,
			N:          p.n,
			Prob:       p.todProb,
			Bucket:     p.buckets,
		})
	})
}

// stage launches one kernel stage and waits for it. Later stages only read
// what earlier stages wrote after this returns.
func (p *Pipeline) stage(ctx context.Context, name string, launch func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := launch()
	if serr := p.stream.Synchronize(); err == nil {
		err = serr
	}
	elapsed := time.Since(start)
	p.metrics.stageSeconds.WithLabelValues(name).Observe(elapsed.Seconds())
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	p.logger.Debug("stage complete", zap.String("stage", name), zap.Duration("elapsed", elapsed))
	return nil
}
