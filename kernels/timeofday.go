package kernels

import (
	"math"

	guda "github.com/LynnColeArt/gudahawkes"
)

// TimeOfDayArgs describes a ModulateTimeOfDay launch.
type TimeOfDayArgs struct {
	RateMatrix []float64 // K×N
	K, N       int
	Prob       []float64 // probability factor per bucket
	Bucket     []int32   // bucket per event
}

// ModulateTimeOfDay scales every rate by the time-of-day factor of its
// event: RateMatrix[k,j] *= Prob[Bucket[j]].
func ModulateTimeOfDay(s *guda.Stream, a TimeOfDayArgs) error {
	k, n := a.K, a.N
	c := checks{op: "ModulateTimeOfDay"}
	c.positive("K", k)
	c.positive("Prob", len(a.Prob))
	c.len("Bucket", len(a.Bucket), n)
	c.len("RateMatrix", len(a.RateMatrix), k*n)
	for j, b := range a.Bucket[:min(n, len(a.Bucket))] {
		if b < 0 || int(b) >= len(a.Prob) {
			c.fail("event %d: bucket %d outside table of %d", j, b, len(a.Prob))
			break
		}
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
		f := a.Prob[a.Bucket[j]]
		for p := 0; p < k; p++ {
			a.RateMatrix[p*n+j] *= f
		}
	}, guda.Grid1D(n, guda.DefaultBlockSize), guda.Dim3{X: guda.DefaultBlockSize})
}

// BucketArgs describes a TimeOfDayBuckets launch.
type BucketArgs struct {
	Times    []float64
	Period   float64 // length of one day in time units
	NBuckets int
	Bucket   []int32
}

// TimeOfDayBuckets assigns each event the index of the equal-width slice of
// the period its time falls in.
func TimeOfDayBuckets(s *guda.Stream, a BucketArgs) error {
	n := len(a.Times)
	c := checks{op: "TimeOfDayBuckets"}
	c.positive("NBuckets", a.NBuckets)
	c.len("Bucket", len(a.Bucket), n)
	if !(a.Period > 0) || math.IsInf(a.Period, 0) {
		c.fail("Period must be positive and finite, got %v", a.Period)
	}
	if c.err != nil {
		return c.err
	}
	if n == 0 {
		return nil
	}

	nb := a.NBuckets
	return s.Launch(func(tid guda.ThreadID) {
		j := tid.Global()
		if j >= n {
			return
		}
		phase := math.Mod(a.Times[j], a.Period)
		if phase < 0 {
			phase += a.Period
		}
		b := int(phase / a.Period * float64(nb))
		if b >= nb {
			b = nb - 1
		}
		a.Bucket[j] = int32(b)
	}, guda.Grid1D(n, guda.DefaultBlockSize), guda.Dim3{X: guda.DefaultBlockSize})
}
