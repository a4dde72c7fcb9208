package kernels

import (
	"math"

	guda "github.com/LynnColeArt/gudahawkes"
)

// GammaArgs describes a SampleGamma launch. The launch grid has one block
// per work item; work item w = blockIdx.Y*Grid.X + blockIdx.X.
type GammaArgs struct {
	Alpha []float64 // shape per work item, must be >= 1
	Beta  []float64 // rate per work item

	// Pre-drawn variates, BlockSize per work item: thread t of item w
	// reads index w*BlockSize+t. Uniforms lie in (0, 1], Normals are
	// standard normal.
	Uniforms []float64
	Normals  []float64

	Rates  []float64 // sampled rate per work item, written on success only
	Status []Status  // result code per work item

	Grid      guda.Dim3
	BlockSize int // power of two, defaults to guda.DefaultRaceBlockSize
}

// SampleGamma draws one Gamma(Alpha[w], Beta[w]) variate per work item with
// the Marsaglia-Tsang method. Every thread of a work item evaluates one
// candidate and the block keeps the accepted one with the lowest thread
// index.
//
// Items with shape below 1 (or a non-positive rate) report
// StatusInvalidParameter. Items where no thread accepted report
// StatusSampleFailure and should be retried with fresh variates. In both
// cases Rates is left untouched.
func SampleGamma(s *guda.Stream, a GammaArgs) error {
	bs, err := reductionBlock(a.BlockSize, guda.DefaultRaceBlockSize)
	if err != nil {
		return err
	}
	items := a.Grid.Size()
	c := checks{op: "SampleGamma"}
	c.len("Alpha", len(a.Alpha), items)
	c.len("Beta", len(a.Beta), items)
	c.len("Rates", len(a.Rates), items)
	c.len("Status", len(a.Status), items)
	c.len("Uniforms", len(a.Uniforms), items*bs)
	c.len("Normals", len(a.Normals), items*bs)
	if c.err != nil {
		return c.err
	}

	return s.LaunchCooperative(func(tid guda.ThreadID, blk *guda.Block) {
		w, t := tid.Block(), tid.Thread()

		alpha, beta := a.Alpha[w], a.Beta[w]
		if !(alpha >= 1) || !(beta > 0) || math.IsInf(beta, 0) {
			if t == 0 {
				a.Status[w] = StatusInvalidParameter
			}
			return
		}

		blk.Shared[t], blk.Flags[t] = marsagliaTsang(alpha, a.Uniforms[w*bs+t], a.Normals[w*bs+t])
		blk.Index[t] = t
		blk.Sync()

		// Same halving as BlockReduce, carrying the accept flag and the
		// candidate's thread index so slot 0 ends with the accepted
		// candidate of lowest index.
		for half := bs / 2; half > 0; half /= 2 {
			if t < half && blk.Flags[t+half] && (!blk.Flags[t] || blk.Index[t+half] < blk.Index[t]) {
				blk.Shared[t] = blk.Shared[t+half]
				blk.Index[t] = blk.Index[t+half]
				blk.Flags[t] = true
			}
			blk.Sync()
		}

		if t == 0 {
			if blk.Flags[0] {
				a.Rates[w] = blk.Shared[0] / beta
				a.Status[w] = StatusSuccess
			} else {
				a.Status[w] = StatusSampleFailure
			}
		}
	}, a.Grid, guda.Dim3{X: bs})
}

// marsagliaTsang evaluates one candidate of Gamma(alpha, 1). Variates
// outside their domain reject, so the reduction only ever sees finite
// candidates.
func marsagliaTsang(alpha, u, n float64) (float64, bool) {
	if !(u > 0 && u <= 1) || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	d := alpha - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	v := 1 + c*n
	v = v * v * v
	if v <= 0 {
		return 0, false
	}
	n2 := n * n
	if u <= 1-0.0331*n2*n2 || math.Log(u) < 0.5*n2+d*(1-v+math.Log(v)) {
		return d * v, true
	}
	return 0, false
}
