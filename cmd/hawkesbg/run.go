package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/LynnColeArt/gudahawkes/internal/config"
	"github.com/LynnColeArt/gudahawkes/internal/logutil"
	"github.com/LynnColeArt/gudahawkes/internal/synth"
	"github.com/LynnColeArt/gudahawkes/mcmc"
)

type runOptions struct {
	cfg         config.Config
	model       string
	rates       []float64
	childProb   float64
	sweeps      int
	dumpMetrics bool
}

func newRunCmd(base config.Config) *cobra.Command {
	opts := &runOptions{cfg: base, model: string(base.Model)}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Sample background rates for synthetic events",
		Example: `  # Homogeneous model, three processes, 200 sweeps
  hawkesbg run --processes 3 --rates 0.5,2,4 --t 100 --sweeps 200

  # Score the knot model at the generating rates
  hawkesbg run --model knots --knots 11 --lam-dt 10 --t 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return opts.run(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.model, "model", opts.model, "background model: homogeneous or knots")
	f.IntVar(&opts.cfg.Processes, "processes", base.Processes, "number of processes K")
	f.Float64Var(&opts.cfg.TStart, "tstart", base.TStart, "start of the observation window")
	f.Float64Var(&opts.cfg.T, "t", base.T, "length of the observation window")
	f.IntVar(&opts.cfg.NKnots, "knots", base.NKnots, "knots per process (knot model)")
	f.Float64Var(&opts.cfg.LamDt, "lam-dt", base.LamDt, "knot spacing (knot model)")
	f.Float64Var(&opts.cfg.AlphaPrior, "alpha-prior", base.AlphaPrior, "Gamma prior shape")
	f.Float64Var(&opts.cfg.BetaPrior, "beta-prior", base.BetaPrior, "Gamma prior rate")
	f.IntVar(&opts.cfg.BlockSize, "block-size", base.BlockSize, "threads per reduction block")
	f.IntVar(&opts.cfg.SampleBlockSize, "sample-block-size", base.SampleBlockSize, "racing threads per Gamma draw")
	f.IntVar(&opts.cfg.MaxSampleRetries, "retries", base.MaxSampleRetries, "relaunches for failed Gamma draws")
	f.IntVar(&opts.cfg.TimeOfDayBuckets, "tod-buckets", base.TimeOfDayBuckets, "time-of-day buckets, 0 disables modulation")
	f.Float64Var(&opts.cfg.TimeOfDayPeriod, "tod-period", base.TimeOfDayPeriod, "length of one day in time units")
	f.Uint64Var(&opts.cfg.Seed, "seed", base.Seed, "random seed")
	f.Float64SliceVar(&opts.rates, "rates", nil, "generating background rate per process (default 1 each)")
	f.Float64Var(&opts.childProb, "child-prob", 0.2, "share of synthetic events attributed to a parent")
	f.IntVar(&opts.sweeps, "sweeps", 100, "homogeneous sweeps to run")
	f.BoolVar(&opts.dumpMetrics, "metrics", false, "print collected metrics when done")
	return cmd
}

func (o *runOptions) run(ctx context.Context) error {
	o.cfg.Model = config.ModelType(o.model)
	if err := o.cfg.Validate(); err != nil {
		return err
	}
	rates := o.rates
	if len(rates) == 0 {
		rates = make([]float64, o.cfg.Processes)
		for i := range rates {
			rates[i] = 1
		}
	}
	if len(rates) != o.cfg.Processes {
		return fmt.Errorf("%d rates for %d processes", len(rates), o.cfg.Processes)
	}

	logger := logutil.GetLogger()
	data, err := synth.Generate(synth.Params{
		Rates:     rates,
		TStart:    o.cfg.TStart,
		T:         o.cfg.T,
		ChildProb: o.childProb,
		Seed:      o.cfg.Seed,
	})
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	p, err := mcmc.New(nil, o.cfg, logger, reg)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("close pipeline", zap.Error(err))
		}
	}()
	if err := p.Setup(ctx, mcmc.Events(data)); err != nil {
		return err
	}
	logger.Info("synthetic events generated",
		zap.String("run_id", p.RunID()),
		zap.Int("events", len(data.Times)),
		zap.Ints("background", data.BackgroundCounts(o.cfg.Processes)))

	switch o.cfg.Model {
	case config.Knots:
		err = o.scoreKnots(ctx, p, rates)
	default:
		err = o.sweep(ctx, p, data)
	}
	if err != nil {
		return err
	}

	if o.dumpMetrics {
		families, err := reg.Gather()
		if err != nil {
			return err
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(os.Stdout, mf); err != nil {
				return err
			}
		}
	}
	return nil
}

func (o *runOptions) sweep(ctx context.Context, p *mcmc.Pipeline, data synth.Events) error {
	k := o.cfg.Processes
	samples := make([][]float64, k)
	var last mcmc.HomogeneousState
	for i := 0; i < o.sweeps; i++ {
		st, err := p.StepHomogeneous(ctx)
		if err != nil {
			return fmt.Errorf("sweep %d: %w", i, err)
		}
		for j, r := range st.Rates {
			samples[j] = append(samples[j], r)
		}
		last = st
	}
	if o.sweeps == 0 {
		return nil
	}

	counts := data.BackgroundCounts(k)
	fmt.Printf("%-8s %10s %12s %12s %12s %14s\n", "process", "background", "post. mean", "sample mean", "sample sd", "loglik")
	for j := 0; j < k; j++ {
		mean, sd := stat.MeanStdDev(samples[j], nil)
		if len(samples[j]) < 2 {
			sd = math.NaN()
		}
		fmt.Printf("%-8d %10d %12.5g %12.5g %12.5g %14.6g\n",
			j, counts[j], last.AlphaPost[j]/last.BetaPost[j], mean, sd, last.LogLik[j])
	}
	return nil
}

func (o *runOptions) scoreKnots(ctx context.Context, p *mcmc.Pipeline, rates []float64) error {
	nk := o.cfg.NKnots
	knots := make([]float64, len(rates)*nk)
	for k, r := range rates {
		for i := 0; i < nk; i++ {
			knots[k*nk+i] = math.Log(r)
		}
	}
	ll, err := p.EvaluateKnots(ctx, knots)
	if err != nil {
		return err
	}
	fmt.Printf("%-8s %10s %14s\n", "process", "rate", "loglik")
	for k, v := range ll {
		fmt.Printf("%-8d %10.5g %14.6g\n", k, rates[k], v)
	}
	return nil
}
