package kernels

import (
	"math"

	guda "github.com/LynnColeArt/gudahawkes"
)

// LogLikelihoodArgs describes a LogLikelihood launch.
type LogLikelihoodArgs struct {
	Knots      []float64 // K×NKnots log intensities
	NKnots     int
	LamDt      float64
	RateMatrix []float64 // K×N, as written by ExpandKnots
	C          []int32
	Z          []int32
	N          int
	Processes  []int     // processes to score, one block each
	LL         []float64 // indexed by process id
	BlockSize  int       // power of two, defaults to guda.DefaultBlockSize
}

// LogLikelihood scores the knot background model of each listed process:
//
//	LL[k] = -∫ λ_k(t) dt + Σ_{j: C[j]=k, Z[j]=-1} ln RateMatrix[k,j]
//
// The integral is the trapezoid rule over the knots: interior knots weigh
// lam_dt, the two end knots lam_dt/2. Both sums are block reductions that
// share the scratch buffer, separated by a barrier.
func LogLikelihood(s *guda.Stream, a LogLikelihoodArgs) error {
	bs, err := reductionBlock(a.BlockSize, guda.DefaultBlockSize)
	if err != nil {
		return err
	}
	n, nk := a.N, a.NKnots
	c := checks{op: "LogLikelihood"}
	c.positive("NKnots", nk)
	c.positive("Processes", len(a.Processes))
	c.len("C", len(a.C), n)
	c.len("Z", len(a.Z), n)
	if !(a.LamDt > 0) {
		c.fail("LamDt must be positive, got %v", a.LamDt)
	}
	for _, k := range a.Processes {
		if k < 0 {
			c.fail("negative process id %d", k)
			continue
		}
		c.len("Knots", len(a.Knots), (k+1)*nk)
		c.len("RateMatrix", len(a.RateMatrix), (k+1)*n)
		c.len("LL", len(a.LL), k+1)
	}
	if c.err != nil {
		return c.err
	}

	return s.LaunchCooperative(func(tid guda.ThreadID, blk *guda.Block) {
		k, t := a.Processes[tid.Block()], tid.Thread()
		knots := a.Knots[k*nk : (k+1)*nk]
		row := a.RateMatrix[k*n : (k+1)*n]

		var partial float64
		for i := t; i < nk; i += bs {
			w := -a.LamDt
			if i == 0 || i == nk-1 {
				w = -a.LamDt / 2
			}
			partial += w * math.Exp(knots[i])
		}
		blk.Shared[t] = partial

		var integral float64
		BlockReduce(tid, blk, OpSum, &integral)
		blk.Sync()

		blk.Shared[t] = spikeSum(t, bs, int32(k), row, a.C, a.Z)

		var spikes float64
		BlockReduce(tid, blk, OpSum, &spikes)
		if t == 0 {
			a.LL[k] = integral + spikes
		}
	}, guda.Dim3{X: len(a.Processes)}, guda.Dim3{X: bs})
}

// HomogeneousLogLikelihoodArgs describes a LogLikelihoodHomogeneous launch.
type HomogeneousLogLikelihoodArgs struct {
	Rates      []float64 // constant rate per process
	T          float64   // observation window length
	RateMatrix []float64 // K×N, as written by ExpandHomogeneous
	C          []int32
	Z          []int32
	N          int
	LL         []float64 // one value per process
	BlockSize  int       // power of two, defaults to guda.DefaultBlockSize
}

// LogLikelihoodHomogeneous scores the constant background model of every
// process: LL[k] = -Rates[k]*T + Σ ln RateMatrix[k,j] over the background
// events of k. One block per process.
func LogLikelihoodHomogeneous(s *guda.Stream, a HomogeneousLogLikelihoodArgs) error {
	bs, err := reductionBlock(a.BlockSize, guda.DefaultBlockSize)
	if err != nil {
		return err
	}
	k, n := len(a.Rates), a.N
	c := checks{op: "LogLikelihoodHomogeneous"}
	c.positive("Rates", k)
	c.len("C", len(a.C), n)
	c.len("Z", len(a.Z), n)
	c.len("RateMatrix", len(a.RateMatrix), k*n)
	c.len("LL", len(a.LL), k)
	if c.err != nil {
		return c.err
	}

	return s.LaunchCooperative(func(tid guda.ThreadID, blk *guda.Block) {
		p, t := tid.Block(), tid.Thread()
		blk.Shared[t] = spikeSum(t, bs, int32(p), a.RateMatrix[p*n:(p+1)*n], a.C, a.Z)

		var spikes float64
		BlockReduce(tid, blk, OpSum, &spikes)
		if t == 0 {
			a.LL[p] = -a.Rates[p]*a.T + spikes
		}
	}, guda.Dim3{X: k}, guda.Dim3{X: bs})
}

// spikeSum is thread t's strided share of Σ ln row[j] over the background
// events of process k.
func spikeSum(t, stride int, k int32, row []float64, c, z []int32) float64 {
	var sum float64
	for j := t; j < len(row); j += stride {
		if c[j] == k && z[j] == Background {
			sum += math.Log(row[j])
		}
	}
	return sum
}
