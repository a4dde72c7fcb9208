package mcmc

import (
	"go.uber.org/multierr"

	guda "github.com/LynnColeArt/gudahawkes"
)

// allocator hands out pool buffers and remembers them for release. The
// first allocation error sticks; later calls return nil.
type allocator struct {
	dev   *guda.Context
	owned []interface{}
	err   error
}

func (a *allocator) f64(n int) []float64 {
	if a.err != nil {
		return nil
	}
	buf, err := a.dev.MallocFloat64(n)
	if err != nil {
		a.err = err
		return nil
	}
	a.owned = append(a.owned, buf)
	return buf
}

func (a *allocator) i32(n int) []int32 {
	if a.err != nil {
		return nil
	}
	buf, err := a.dev.MallocInt32(n)
	if err != nil {
		a.err = err
		return nil
	}
	a.owned = append(a.owned, buf)
	return buf
}

// release frees every owned buffer and clears the sticky error.
func (a *allocator) release() error {
	var errs error
	for _, buf := range a.owned {
		errs = multierr.Append(errs, a.dev.Free(buf))
	}
	a.owned, a.err = nil, nil
	return errs
}
