package kernels

import (
	"math"
	"testing"

	guda "github.com/LynnColeArt/gudahawkes"
)

func TestExpandKnots(t *testing.T) {
	s := guda.StreamOrFail(t)
	const n = 4

	// Process 1 holds exp values 1, 2, 4. Process 0 must stay untouched.
	knots := []float64{
		9, 9, 9,
		0, math.Log(2), math.Log(4),
	}
	offsets := []int32{0, 1, 0, 2}
	fracs := []float64{0.25, 0.5, 0, 0}
	rm := make([]float64, 2*n)

	guda.LaunchResultOrFail(t, ExpandKnots(s, KnotExpandArgs{
		Knots: knots, NKnots: 3, Process: 1,
		Offsets: offsets, Fracs: fracs, N: n, RateMatrix: rm,
	}))
	guda.SynchronizeStreamOrFail(t, s)

	want := []float64{1.25, 3, 1, 4}
	for j := range want {
		if !nearlyEqual(rm[n+j], want[j], 1e-15) {
			t.Errorf("event %d: rate %v, want %v", j, rm[n+j], want[j])
		}
		if rm[j] != 0 {
			t.Errorf("process 0 row written at %d: %v", j, rm[j])
		}
	}
}

func TestExpandKnotsRejectsShortKnots(t *testing.T) {
	s := guda.StreamOrFail(t)
	err := ExpandKnots(s, KnotExpandArgs{
		Knots: make([]float64, 3), NKnots: 3, Process: 1,
		Offsets: make([]int32, 2), Fracs: make([]float64, 2), N: 2,
		RateMatrix: make([]float64, 4),
	})
	if !guda.IsInvalidArgError(err) {
		t.Errorf("error = %v, want invalid argument", err)
	}
}

func TestExpandHomogeneous(t *testing.T) {
	s := guda.StreamOrFail(t)
	const n = 1000

	rates := []float64{0.5, 2, 7.25}
	rm := make([]float64, len(rates)*n)
	guda.LaunchResultOrFail(t, ExpandHomogeneous(s, HomogeneousExpandArgs{Rates: rates, N: n, RateMatrix: rm}))
	guda.SynchronizeStreamOrFail(t, s)

	for k, r := range rates {
		for j := 0; j < n; j++ {
			if rm[k*n+j] != r {
				t.Fatalf("RateMatrix[%d,%d] = %v, want %v", k, j, rm[k*n+j], r)
			}
		}
	}
}
