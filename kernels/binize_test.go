package kernels

import (
	"math"
	"testing"

	guda "github.com/LynnColeArt/gudahawkes"
)

func TestBinize(t *testing.T) {
	s := guda.StreamOrFail(t)

	cases := []struct {
		name       string
		time       float64
		tStart     float64
		lamDt      float64
		wantOffset int32
		wantFrac   float64
	}{
		{"mid bin", 10 + 2.5*0.5, 10, 0.5, 2, 0.5},
		{"on boundary", 10 + 3*0.5, 10, 0.5, 3, 0},
		{"at start", 10, 10, 0.5, 0, 0},
		// 1.7/0.1 rounds up to 17 and leaves a fraction of about -2e-15.
		{"rounding below zero", 1.7, 0, 0.1, 17, 0},
	}

	times := make([]float64, 1)
	offsets := make([]int32, 1)
	fracs := make([]float64, 1)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			times[0] = tc.time
			guda.LaunchResultOrFail(t, Binize(s, BinArgs{
				Times: times, TStart: tc.tStart, LamDt: tc.lamDt,
				Offsets: offsets, Fracs: fracs,
			}))
			guda.SynchronizeStreamOrFail(t, s)

			if offsets[0] != tc.wantOffset || fracs[0] != tc.wantFrac {
				t.Errorf("got (%d, %v), want (%d, %v)", offsets[0], fracs[0], tc.wantOffset, tc.wantFrac)
			}
		})
	}
}

func TestBinizeManyEvents(t *testing.T) {
	s := guda.StreamOrFail(t)
	const n, lamDt = 5000, 0.25

	times := make([]float64, n)
	for j := range times {
		times[j] = float64(j) * 0.01
	}
	offsets := make([]int32, n)
	fracs := make([]float64, n)
	guda.LaunchResultOrFail(t, Binize(s, BinArgs{Times: times, LamDt: lamDt, Offsets: offsets, Fracs: fracs}))
	guda.SynchronizeStreamOrFail(t, s)

	nKnots := int(times[n-1]/lamDt) + 2
	if err := CheckBins(offsets, fracs, nKnots); err != nil {
		t.Fatal(err)
	}
	for j := range times {
		got := (float64(offsets[j]) + fracs[j]) * lamDt
		if !nearlyEqual(got, times[j], 1e-12) {
			t.Fatalf("event %d: reconstructed time %v, want %v", j, got, times[j])
		}
	}
}

func TestBinizeRejectsBadSpacing(t *testing.T) {
	s := guda.StreamOrFail(t)
	err := Binize(s, BinArgs{Times: []float64{1}, LamDt: 0, Offsets: make([]int32, 1), Fracs: make([]float64, 1)})
	if !guda.IsInvalidArgError(err) {
		t.Errorf("error = %v, want invalid argument", err)
	}
}

func TestCheckBins(t *testing.T) {
	cases := []struct {
		name    string
		offsets []int32
		fracs   []float64
		ok      bool
	}{
		{"inside", []int32{0, 1, 2}, []float64{0, 0.5, 0.99}, true},
		{"on last knot", []int32{3}, []float64{0}, true},
		{"past last knot", []int32{3}, []float64{0.1}, false},
		{"negative offset", []int32{-1}, []float64{0.5}, false},
		{"negative fraction", []int32{1}, []float64{-0.01}, false},
		{"fraction one", []int32{1}, []float64{1}, false},
		{"length mismatch", []int32{1, 2}, []float64{0}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckBins(tc.offsets, tc.fracs, 4)
			if (err == nil) != tc.ok {
				t.Errorf("CheckBins error = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestBinizeUnrepresentableTimes(t *testing.T) {
	s := guda.StreamOrFail(t)

	times := []float64{math.NaN(), 1e300, math.Inf(-1), 2.5}
	offsets := make([]int32, len(times))
	fracs := make([]float64, len(times))
	guda.LaunchResultOrFail(t, Binize(s, BinArgs{
		Times: times, TStart: 0, LamDt: 1, Offsets: offsets, Fracs: fracs,
	}))
	guda.SynchronizeStreamOrFail(t, s)

	for j := 0; j < 3; j++ {
		if offsets[j] != -1 || !math.IsNaN(fracs[j]) {
			t.Errorf("event %d (t=%v): got (%d, %v), want (-1, NaN)", j, times[j], offsets[j], fracs[j])
		}
		if err := CheckBins(offsets[j:j+1], fracs[j:j+1], 4); err == nil {
			t.Errorf("CheckBins accepted event %d", j)
		}
	}
	if offsets[3] != 2 || fracs[3] != 0.5 {
		t.Errorf("finite event binned as (%d, %v)", offsets[3], fracs[3])
	}
}
