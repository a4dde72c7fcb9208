package kernels

import (
	"fmt"
	"math"

	guda "github.com/LynnColeArt/gudahawkes"
)

// Fractions computed slightly below zero by rounding are clamped to zero
// when they lie above this floor.
const fracClampFloor = -0.001

// BinArgs describes a Binize launch.
type BinArgs struct {
	Times   []float64
	TStart  float64
	LamDt   float64 // knot spacing
	Offsets []int32 // knot index to the left of each event
	Fracs   []float64
}

// Binize computes, per event, the index of the knot interval containing the
// event and the fractional position inside it.
func Binize(s *guda.Stream, a BinArgs) error {
	n := len(a.Times)
	c := checks{op: "Binize"}
	c.len("Offsets", len(a.Offsets), n)
	c.len("Fracs", len(a.Fracs), n)
	if !(a.LamDt > 0) || math.IsInf(a.LamDt, 0) {
		c.fail("LamDt must be positive and finite, got %v", a.LamDt)
	}
	if c.err != nil {
		return c.err
	}
	if n == 0 {
		return nil
	}

	return s.Launch(func(tid guda.ThreadID) {
		j := tid.Global()
		if j >= n {
			return
		}
		dt := a.Times[j] - a.TStart
		offset := math.Floor(dt / a.LamDt)
		if !(offset >= math.MinInt32 && offset <= math.MaxInt32) {
			// NaN or unrepresentable; CheckBins reports the event.
			a.Offsets[j] = -1
			a.Fracs[j] = math.NaN()
			return
		}
		frac := (dt - offset*a.LamDt) / a.LamDt
		if frac < 0 && frac > fracClampFloor {
			frac = 0
		}
		a.Offsets[j] = int32(offset)
		a.Fracs[j] = frac
	}, guda.Grid1D(n, guda.DefaultBlockSize), guda.Dim3{X: guda.DefaultBlockSize})
}

// CheckBins verifies that every event falls inside the knot grid: offsets
// in [0, nKnots-2] with fractions in [0, 1). An event sitting exactly on
// the last knot (offset nKnots-1, fraction 0) is also accepted.
func CheckBins(offsets []int32, fracs []float64, nKnots int) error {
	if len(offsets) != len(fracs) {
		return guda.NewInvalidArgError("CheckBins",
			fmt.Sprintf("%d offsets for %d fractions", len(offsets), len(fracs)))
	}
	for j, off := range offsets {
		frac := fracs[j]
		switch {
		case !(frac >= 0 && frac < 1):
			return guda.NewNumericalError("CheckBins",
				fmt.Sprintf("event %d: fraction %v outside [0, 1)", j, frac))
		case off < 0 || int(off) > nKnots-1 || (int(off) == nKnots-1 && frac != 0):
			return guda.NewNumericalError("CheckBins",
				fmt.Sprintf("event %d: offset %d outside knot grid of %d knots", j, off, nKnots))
		}
	}
	return nil
}
