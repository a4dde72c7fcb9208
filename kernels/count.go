package kernels

import (
	guda "github.com/LynnColeArt/gudahawkes"
)

// Background marks an event attributed to the background rate in Z.
const Background int32 = -1

// CountArgs describes a CountBackground launch.
type CountArgs struct {
	C         []int32 // process id per event
	Z         []int32 // parent indicator per event
	K         int
	Counts    []int32 // background events per process
	BlockSize int     // power of two, defaults to guda.DefaultBlockSize
}

// CountBackground counts, for each process, the events assigned to it whose
// parent is the background. One block handles one process; each thread
// counts a strided slice of the events before the block sums the partials.
func CountBackground(s *guda.Stream, a CountArgs) error {
	bs, err := reductionBlock(a.BlockSize, guda.DefaultBlockSize)
	if err != nil {
		return err
	}
	n := len(a.C)
	c := checks{op: "CountBackground"}
	c.positive("K", a.K)
	c.len("Z", len(a.Z), n)
	c.len("Counts", len(a.Counts), a.K)
	if c.err != nil {
		return c.err
	}

	return s.LaunchCooperative(func(tid guda.ThreadID, blk *guda.Block) {
		k, t := int32(tid.Block()), tid.Thread()

		var partial float64
		for j := t; j < n; j += bs {
			if a.C[j] == k && a.Z[j] == Background {
				partial++
			}
		}
		blk.Shared[t] = partial

		var total float64
		BlockReduce(tid, blk, OpSum, &total)
		if t == 0 {
			a.Counts[k] = int32(total)
		}
	}, guda.Dim3{X: a.K}, guda.Dim3{X: bs})
}
