package kernels

import (
	guda "github.com/LynnColeArt/gudahawkes"
)

// PosteriorArgs describes an UpdatePosterior launch.
type PosteriorArgs struct {
	Counts     []int32 // background events per process
	AlphaPrior float64
	BetaPrior  float64
	T          float64 // observation window length
	AlphaPost  []float64
	BetaPost   []float64
}

// UpdatePosterior applies the Gamma-Poisson conjugate update for a constant
// background rate: alpha' = alpha + count, beta' = beta + T.
func UpdatePosterior(s *guda.Stream, a PosteriorArgs) error {
	k := len(a.Counts)
	c := checks{op: "UpdatePosterior"}
	c.positive("Counts", k)
	c.len("AlphaPost", len(a.AlphaPost), k)
	c.len("BetaPost", len(a.BetaPost), k)
	if c.err != nil {
		return c.err
	}

	return s.Launch(func(tid guda.ThreadID) {
		i := tid.Global()
		if i >= k {
			return
		}
		a.AlphaPost[i] = a.AlphaPrior + float64(a.Counts[i])
		a.BetaPost[i] = a.BetaPrior + a.T
	}, guda.Grid1D(k, guda.DefaultBlockSize), guda.Dim3{X: guda.DefaultBlockSize})
}
