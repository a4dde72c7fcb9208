package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	guda "github.com/LynnColeArt/gudahawkes"
	"github.com/LynnColeArt/gudahawkes/internal/config"
	"github.com/LynnColeArt/gudahawkes/internal/logutil"
	"github.com/LynnColeArt/gudahawkes/kernels"
)

func newGammaCmd(base config.Config) *cobra.Command {
	var (
		alpha, beta float64
		items       int
		blockSize   int
		seed        uint64
	)
	cmd := &cobra.Command{
		Use:   "gamma",
		Short: "Draw Gamma variates with the racing sampler and report their moments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if items <= 0 {
				return fmt.Errorf("--items must be positive, got %d", items)
			}
			return runGamma(alpha, beta, items, blockSize, seed)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&alpha, "alpha", 2.5, "shape (at least 1)")
	f.Float64Var(&beta, "beta", 1, "rate")
	f.IntVar(&items, "items", 4096, "number of draws, one block each")
	f.IntVar(&blockSize, "block-size", base.SampleBlockSize, "racing threads per draw")
	f.Uint64Var(&seed, "seed", base.Seed, "random seed")
	return cmd
}

func runGamma(alpha, beta float64, items, bs int, seed uint64) error {
	src := rand.NewPCG(seed, seed+1)
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: src}
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}

	args := kernels.GammaArgs{
		Alpha:     make([]float64, items),
		Beta:      make([]float64, items),
		Uniforms:  make([]float64, items*bs),
		Normals:   make([]float64, items*bs),
		Rates:     make([]float64, items),
		Status:    make([]kernels.Status, items),
		Grid:      guda.Dim3{X: items},
		BlockSize: bs,
	}
	for i := range args.Alpha {
		args.Alpha[i], args.Beta[i] = alpha, beta
	}
	for i := range args.Uniforms {
		args.Uniforms[i] = 1 - uniform.Rand()
		args.Normals[i] = normal.Rand()
	}

	s := guda.Default().DefaultStream()
	if err := kernels.SampleGamma(s, args); err != nil {
		return err
	}
	if err := s.Synchronize(); err != nil {
		return err
	}

	var draws []float64
	byStatus := make(map[kernels.Status]int)
	for i, st := range args.Status {
		byStatus[st]++
		if st == kernels.StatusSuccess {
			draws = append(draws, args.Rates[i])
		}
	}
	logutil.GetLogger().Info("gamma sampling done",
		zap.Int("items", items),
		zap.Int("succeeded", byStatus[kernels.StatusSuccess]),
		zap.Int("failed", byStatus[kernels.StatusSampleFailure]),
		zap.Int("invalid", byStatus[kernels.StatusInvalidParameter]))
	if len(draws) < 2 {
		return fmt.Errorf("only %d successful draws", len(draws))
	}

	mean, variance := stat.MeanVariance(draws, nil)
	ref := distuv.Gamma{Alpha: alpha, Beta: beta}
	fmt.Printf("%-10s %12s %12s\n", "", "sampled", "expected")
	fmt.Printf("%-10s %12.6g %12.6g\n", "mean", mean, ref.Mean())
	fmt.Printf("%-10s %12.6g %12.6g\n", "variance", variance, ref.Variance())
	return nil
}
