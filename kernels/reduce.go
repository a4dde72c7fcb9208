package kernels

import (
	guda "github.com/LynnColeArt/gudahawkes"
)

// ReduceOp selects the combine operator of a block reduction.
type ReduceOp int

const (
	OpSum ReduceOp = iota
	OpMult
)

func (op ReduceOp) String() string {
	switch op {
	case OpSum:
		return "sum"
	case OpMult:
		return "mult"
	default:
		return "unknown"
	}
}

// Valid reports whether op is a supported operator.
func (op ReduceOp) Valid() bool {
	return op == OpSum || op == OpMult
}

func (op ReduceOp) combine(a, b float64) float64 {
	switch op {
	case OpSum:
		return a + b
	case OpMult:
		return a * b
	}
	panic(ErrUnknownReduceOp)
}

// BlockReduce collapses blk.Shared into a single value using op. Every thread
// of the block must call it after writing its own slot. The block size must
// be a power of two. Thread 0 stores the result in *out; out may be nil for
// other threads.
//
// An unknown operator panics in every thread before the first barrier, so
// the launch fails with an execution error instead of returning the buffer
// unreduced.
func BlockReduce(tid guda.ThreadID, blk *guda.Block, op ReduceOp, out *float64) {
	if !op.Valid() {
		panic(ErrUnknownReduceOp)
	}
	idx := tid.Thread()
	buf := blk.Shared

	blk.Sync()
	for half := blk.Size() / 2; half > 0; half /= 2 {
		if idx < half {
			buf[idx] = op.combine(buf[idx], buf[idx+half])
		}
		blk.Sync()
	}
	if idx == 0 && out != nil {
		*out = buf[0]
	}
}

// ReduceArgs describes a ReduceBlocks launch.
type ReduceArgs struct {
	In        []float64 // len(Out)*BlockSize values
	Out       []float64 // one result per block
	Op        ReduceOp
	BlockSize int // power of two, defaults to guda.DefaultBlockSize
}

// ReduceBlocks reduces every consecutive BlockSize chunk of In into the
// matching element of Out.
func ReduceBlocks(s *guda.Stream, a ReduceArgs) error {
	bs, err := reductionBlock(a.BlockSize, guda.DefaultBlockSize)
	if err != nil {
		return err
	}
	if !a.Op.Valid() {
		return ErrUnknownReduceOp
	}
	c := checks{op: "ReduceBlocks"}
	c.positive("Out", len(a.Out))
	c.len("In", len(a.In), len(a.Out)*bs)
	if c.err != nil {
		return c.err
	}

	in, out, op := a.In, a.Out, a.Op
	return s.LaunchCooperative(func(tid guda.ThreadID, blk *guda.Block) {
		b := tid.Block()
		blk.Shared[tid.Thread()] = in[b*bs+tid.Thread()]
		BlockReduce(tid, blk, op, &out[b])
	}, guda.Dim3{X: len(out)}, guda.Dim3{X: bs})
}
