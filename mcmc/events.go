package mcmc

import (
	"fmt"

	"github.com/LynnColeArt/gudahawkes/kernels"
)

// Events is the observed data of a multivariate Hawkes process, sorted by
// time. Z holds
// the current parent assignment: -1 for the background, otherwise the
// index of the parent event.
type Events struct {
	Times []float64
	C     []int32
	Z     []int32
}

// Len returns the number of events.
func (e Events) Len() int {
	return len(e.Times)
}

func (e Events) validate(k int, tStart, tEnd float64) error {
	n := e.Len()
	if len(e.C) != n || len(e.Z) != n {
		return fmt.Errorf("%w: %d times, %d processes, %d parents", ErrEventShape, n, len(e.C), len(e.Z))
	}
	for j := 0; j < n; j++ {
		if t := e.Times[j]; !(t >= tStart && t <= tEnd) {
			return fmt.Errorf("%w: event %d at %v outside [%v, %v]", ErrEventShape, j, t, tStart, tEnd)
		}
		if j > 0 && e.Times[j] < e.Times[j-1] {
			return fmt.Errorf("%w: event %d at %v before event %d", ErrEventShape, j, e.Times[j], j-1)
		}
		if c := e.C[j]; c < 0 || int(c) >= k {
			return fmt.Errorf("%w: event %d: process %d outside [0, %d)", ErrEventShape, j, c, k)
		}
		if err := checkParent(j, e.Z[j]); err != nil {
			return err
		}
	}
	return nil
}

func checkParent(j int, z int32) error {
	if z < kernels.Background || (z != kernels.Background && int(z) >= j) {
		return fmt.Errorf("%w: event %d: parent %d is not background or an earlier event", ErrEventShape, j, z)
	}
	return nil
}
