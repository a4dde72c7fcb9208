package kernels

import (
	"math"

	guda "github.com/LynnColeArt/gudahawkes"
)

// HomogeneousExpandArgs describes an ExpandHomogeneous launch.
type HomogeneousExpandArgs struct {
	Rates      []float64 // one rate per process
	N          int
	RateMatrix []float64 // K×N
}

// ExpandHomogeneous writes each process's constant rate into every entry of
// its rate-matrix row. One thread per event walks the K processes.
func ExpandHomogeneous(s *guda.Stream, a HomogeneousExpandArgs) error {
	k, n := len(a.Rates), a.N
	c := checks{op: "ExpandHomogeneous"}
	c.positive("Rates", k)
	c.len("RateMatrix", len(a.RateMatrix), k*n)
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
		for p := 0; p < k; p++ {
			a.RateMatrix[p*n+j] = a.Rates[p]
		}
	}, guda.Grid1D(n, guda.DefaultBlockSize), guda.Dim3{X: guda.DefaultBlockSize})
}

// KnotExpandArgs describes an ExpandKnots launch.
type KnotExpandArgs struct {
	Knots      []float64 // K×NKnots log intensities
	NKnots     int
	Process    int
	Offsets    []int32 // from Binize
	Fracs      []float64
	N          int
	RateMatrix []float64 // K×N
}

// ExpandKnots fills row Process of the rate matrix with the background
// intensity at each event time. The intensity interpolates linearly between
// the exponentiated knots around the event:
//
//	rate = exp(knot[off])*(1-frac) + exp(knot[off+1])*frac
func ExpandKnots(s *guda.Stream, a KnotExpandArgs) error {
	n := a.N
	c := checks{op: "ExpandKnots"}
	c.positive("NKnots", a.NKnots)
	c.len("Offsets", len(a.Offsets), n)
	c.len("Fracs", len(a.Fracs), n)
	if a.Process < 0 {
		c.fail("Process must be non-negative, got %d", a.Process)
	}
	c.len("Knots", len(a.Knots), (a.Process+1)*a.NKnots)
	c.len("RateMatrix", len(a.RateMatrix), (a.Process+1)*n)
	if c.err != nil {
		return c.err
	}
	if n == 0 {
		return nil
	}

	knots := a.Knots[a.Process*a.NKnots : (a.Process+1)*a.NKnots]
	row := a.RateMatrix[a.Process*n : (a.Process+1)*n]
	return s.Launch(func(tid guda.ThreadID) {
		j := tid.Global()
		if j >= n {
			return
		}
		off, frac := a.Offsets[j], a.Fracs[j]
		rate := math.Exp(knots[off]) * (1 - frac)
		if frac != 0 {
			rate += math.Exp(knots[off+1]) * frac
		}
		row[j] = rate
	}, guda.Grid1D(n, guda.DefaultBlockSize), guda.Dim3{X: guda.DefaultBlockSize})
}
