package mcmc

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	guda "github.com/LynnColeArt/gudahawkes"
	"github.com/LynnColeArt/gudahawkes/kernels"
)

// sample draws p.rates from Gamma(alphaPost, betaPost). Work items that
// reject every candidate are relaunched with fresh variates, up to
// MaxSampleRetries times. Items that succeeded keep their draw.
func (p *Pipeline) sample(ctx context.Context) error {
	pending := p.processes
	for attempt := 0; ; attempt++ {
		failed, err := p.sampleOnce(ctx, pending)
		if err != nil {
			return err
		}
		if len(failed) == 0 {
			return nil
		}
		if attempt == p.cfg.MaxSampleRetries {
			p.metrics.sampleFailures.Add(float64(len(failed)))
			p.logger.Warn("gamma sampling failed", zap.Ints("processes", failed), zap.Int("attempts", attempt+1))
			return fmt.Errorf("sample: processes %v after %d attempts: %w", failed, attempt+1, ErrSampleFailure)
		}
		p.metrics.sampleRetries.Add(float64(len(failed)))
		p.logger.Warn("retrying gamma sample", zap.Ints("processes", failed), zap.Int("attempt", attempt+1))
		pending = failed
	}
}

// sampleOnce runs one SampleGamma launch over the listed processes and
// returns the ones that reported SAMPLE_FAILURE.
func (p *Pipeline) sampleOnce(ctx context.Context, procs []int) ([]int, error) {
	m, bs := len(procs), p.cfg.SampleBlockSize

	scratch := allocator{dev: p.dev}
	defer func() {
		if err := scratch.release(); err != nil {
			p.logger.Warn("free sample scratch", zap.Error(err))
		}
	}()
	alpha := scratch.f64(m)
	beta := scratch.f64(m)
	rates := scratch.f64(m)
	uniforms := scratch.f64(m * bs)
	normals := scratch.f64(m * bs)
	if scratch.err != nil {
		return nil, fmt.Errorf("sample: %w", scratch.err)
	}
	status := make([]kernels.Status, m)

	for i, k := range procs {
		alpha[i], beta[i] = p.alphaPost[k], p.betaPost[k]
	}
	for i := range uniforms {
		// distuv.Uniform draws from [0, 1); the sampler wants (0, 1].
		uniforms[i] = 1 - p.uniform.Rand()
		normals[i] = p.normal.Rand()
	}

	err := p.stage(ctx, "sample", func() error {
		return kernels.SampleGamma(p.stream, kernels.GammaArgs{
			Alpha:     alpha,
			Beta:      beta,
			Uniforms:  uniforms,
			Normals:   normals,
			Rates:     rates,
			Status:    status,
			Grid:      guda.Dim3{X: m},
			BlockSize: bs,
		})
	})
	if err != nil {
		return nil, err
	}

	var failed []int
	for i, k := range procs {
		switch status[i] {
		case kernels.StatusSuccess:
			p.rates[k] = rates[i]
		case kernels.StatusSampleFailure:
			failed = append(failed, k)
		case kernels.StatusInvalidParameter:
			p.metrics.invalidShapes.Inc()
			return nil, fmt.Errorf("sample: process %d: Gamma(%v, %v): %w", k, alpha[i], beta[i], ErrInvalidShape)
		default:
			return nil, fmt.Errorf("sample: process %d: unexpected status %v", k, status[i])
		}
	}
	return failed, nil
}
