package kernels

import (
	"fmt"

	guda "github.com/LynnColeArt/gudahawkes"
	"go.uber.org/multierr"
)

var (
	// ErrBlockNotPow2 rejects block sizes the halving reductions cannot
	// cover exactly.
	ErrBlockNotPow2 = guda.NewInvalidArgError("BlockReduce",
		fmt.Sprintf("block size must be a power of two no larger than %d", guda.MaxThreadsPerBlock))

	// ErrUnknownReduceOp is raised for reduction operators other than
	// OpSum and OpMult.
	ErrUnknownReduceOp = guda.NewInvalidArgError("BlockReduce", "unknown reduction operator")
)

func isPow2(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func reductionBlock(size, def int) (int, error) {
	if size == 0 {
		size = def
	}
	if !isPow2(size) || size > guda.MaxThreadsPerBlock {
		return 0, ErrBlockNotPow2
	}
	return size, nil
}

// checks accumulates argument problems so a launcher reports all of them at
// once.
type checks struct {
	op  string
	err error
}

func (c *checks) len(name string, got, want int) {
	if got < want {
		c.fail("%s has %d elements, need %d", name, got, want)
	}
}

func (c *checks) positive(name string, v int) {
	if v <= 0 {
		c.fail("%s must be positive, got %d", name, v)
	}
}

func (c *checks) fail(format string, args ...interface{}) {
	c.err = multierr.Append(c.err, guda.NewInvalidArgError(c.op, fmt.Sprintf(format, args...)))
}
